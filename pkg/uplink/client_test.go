package uplink_test

import (
	"context"
	"crypto/x509"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/weareqrystal/uplink-sdks/pkg/cert"
	"github.com/weareqrystal/uplink-sdks/pkg/connection"
	"github.com/weareqrystal/uplink-sdks/pkg/link"
	linkmocks "github.com/weareqrystal/uplink-sdks/pkg/link/mocks"
	"github.com/weareqrystal/uplink-sdks/pkg/log"
	"github.com/weareqrystal/uplink-sdks/pkg/timesync"
	"github.com/weareqrystal/uplink-sdks/pkg/transport"
	"github.com/weareqrystal/uplink-sdks/pkg/transport/mocks"
	"github.com/weareqrystal/uplink-sdks/pkg/uplink"
)

const goodCreds = "abcdefghij:abcde"

// fakeClock is a controllable timesync.Source.
type fakeClock struct {
	mu     sync.Mutex
	synced bool
	now    time.Time
	starts int
}

func newSyncedClock() *fakeClock {
	return &fakeClock{synced: true, now: time.Unix(int64(timesync.MinEpoch)+3600, 0)}
}

func (f *fakeClock) Synced() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.synced
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) StartSync() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	return nil
}

func (f *fakeClock) set(synced bool, now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.synced = synced
	f.now = now
}

type eventRecorder struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *eventRecorder) Log(e log.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) attempts() []log.AttemptEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []log.AttemptEvent
	for _, e := range r.events {
		if e.Attempt != nil {
			out = append(out, *e.Attempt)
		}
	}
	return out
}

func newClient(factory transport.Factory, clock timesync.Source) *uplink.Client {
	cfg := uplink.DefaultConfig()
	cfg.Link = link.Always
	cfg.TimeSource = clock
	cfg.Transport = factory
	return uplink.New(cfg)
}

func expectHeaders(h *mocks.MockHandle, deviceID, token string) {
	h.EXPECT().SetHeader(connection.HeaderDeviceID, deviceID).Return().Once()
	h.EXPECT().SetHeader(connection.HeaderAuthorization, "Bearer "+token).Return().Once()
}

func TestAttemptNoLinkShortCircuits(t *testing.T) {
	l := linkmocks.NewMockLink(t)
	l.EXPECT().IsConnected().Return(false).Twice()

	// Neither the clock nor the transport may be consulted.
	clock := &fakeClock{}
	factory := mocks.NewMockFactory(t)

	cfg := uplink.DefaultConfig()
	cfg.Link = l
	cfg.TimeSource = clock
	cfg.Transport = factory
	c := uplink.New(cfg)

	assert.Equal(t, uplink.ResultNoLink, c.Attempt(context.Background(), goodCreds))
	assert.Equal(t, uplink.ResultNoLink, c.Attempt(context.Background(), "garbage"))
	assert.Zero(t, clock.starts)
}

func TestAttemptTimeNotReady(t *testing.T) {
	clock := &fakeClock{}
	factory := mocks.NewMockFactory(t)
	c := newClient(factory, clock)

	for i := 0; i < 5; i++ {
		assert.Equal(t, uplink.ResultTimeNotReady, c.Attempt(context.Background(), goodCreds))
	}
	assert.Equal(t, 1, clock.starts, "sync is requested only once while unsynced")

	// Credential errors are not reported before the clock is trusted.
	assert.Equal(t, uplink.ResultTimeNotReady, c.Attempt(context.Background(), "short:abcde"))
}

func TestAttemptClockBelowFloor(t *testing.T) {
	clock := &fakeClock{synced: true, now: time.Unix(86400, 0)}
	c := newClient(mocks.NewMockFactory(t), clock)
	assert.Equal(t, uplink.ResultTimeNotReady, c.Attempt(context.Background(), goodCreds))
}

func TestAttemptCredentialValidation(t *testing.T) {
	tests := []struct {
		name  string
		creds string
		want  uplink.Result
	}{
		{"empty", "", uplink.ResultEmptyCredentials},
		{"no separator", "abcdefghijabcde", uplink.ResultMalformedCredentials},
		{"empty device id", ":abcdefghij", uplink.ResultMalformedCredentials},
		{"short device id", "short:abcde", uplink.ResultInvalidDeviceID},
		{"device id 9", strings.Repeat("d", 9) + ":abcde", uplink.ResultInvalidDeviceID},
		{"device id 41", strings.Repeat("d", 41) + ":abcde", uplink.ResultInvalidDeviceID},
		{"token 4", "abcdefghij:abcd", uplink.ResultInvalidToken},
		{"empty token", "abcdefghij:", uplink.ResultInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The transport must stay untouched on validation failures.
			factory := mocks.NewMockFactory(t)
			c := newClient(factory, newSyncedClock())
			assert.Equal(t, tt.want, c.Attempt(context.Background(), tt.creds))
			assert.Equal(t, connection.StateDisconnected, c.Status().Connection)
		})
	}
}

func TestAttemptCredentialBoundsPass(t *testing.T) {
	tests := []struct {
		name  string
		creds string
	}{
		{"device id 10", strings.Repeat("d", 10) + ":abcde"},
		{"device id 40", strings.Repeat("d", 40) + ":abcde"},
		{"token 5", "abcdefghij:abcde"},
		{"token with separator", "abcdefghij:abc:de"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := mocks.NewMockFactory(t)
			handle := mocks.NewMockHandle(t)
			factory.EXPECT().Open(mock.Anything).Return(handle, nil).Once()
			handle.EXPECT().SetHeader(mock.Anything, mock.Anything).Return().Times(2)
			handle.EXPECT().Perform(mock.Anything, mock.Anything, mock.Anything).Return(http.StatusNoContent, nil).Once()

			c := newClient(factory, newSyncedClock())
			assert.Equal(t, uplink.ResultOK, c.Attempt(context.Background(), tt.creds))
		})
	}
}

func TestAttemptReusesConnection(t *testing.T) {
	factory := mocks.NewMockFactory(t)
	handle := mocks.NewMockHandle(t)

	factory.EXPECT().Open(mock.MatchedBy(func(o transport.Options) bool {
		return o.URL == uplink.DefaultEndpoint && o.KeepAlive != nil && o.KeepAlive.Count == 3
	})).Return(handle, nil).Once()
	expectHeaders(handle, "abcdefghij", "abcde")
	handle.EXPECT().Perform(mock.Anything, mock.Anything, "").Return(http.StatusNoContent, nil).Times(3)

	rec := &eventRecorder{}
	cfg := uplink.DefaultConfig()
	cfg.Link = link.Always
	cfg.TimeSource = newSyncedClock()
	cfg.Transport = factory
	cfg.EventLogger = rec
	c := uplink.New(cfg)

	for i := 0; i < 3; i++ {
		require.Equal(t, uplink.ResultOK, c.Attempt(context.Background(), goodCreds))
	}

	attempts := rec.attempts()
	require.Len(t, attempts, 3)
	assert.False(t, attempts[0].Reused)
	assert.True(t, attempts[1].Reused)
	assert.True(t, attempts[2].Reused)
	assert.Equal(t, http.StatusNoContent, attempts[2].StatusCode)
}

func TestAttemptServerRejectedKeepsConnection(t *testing.T) {
	factory := mocks.NewMockFactory(t)
	handle := mocks.NewMockHandle(t)

	factory.EXPECT().Open(mock.Anything).Return(handle, nil).Once()
	expectHeaders(handle, "abcdefghij", "abcde")
	handle.EXPECT().Perform(mock.Anything, mock.Anything, mock.Anything).Return(http.StatusUnauthorized, nil).Once()
	handle.EXPECT().Perform(mock.Anything, mock.Anything, mock.Anything).Return(http.StatusInternalServerError, nil).Once()

	c := newClient(factory, newSyncedClock())
	assert.Equal(t, uplink.ResultServerRejected, c.Attempt(context.Background(), goodCreds))
	id := c.Status().ConnectionID
	assert.Equal(t, uplink.ResultServerRejected, c.Attempt(context.Background(), goodCreds))

	st := c.Status()
	assert.Equal(t, connection.StateConnected, st.Connection)
	assert.Equal(t, id, st.ConnectionID)
	assert.Equal(t, uplink.ResultServerRejected, st.LastResult)
}

func TestAttemptTransportErrorRebuilds(t *testing.T) {
	factory := mocks.NewMockFactory(t)
	first := mocks.NewMockHandle(t)
	second := mocks.NewMockHandle(t)

	factory.EXPECT().Open(mock.Anything).Return(first, nil).Once()
	factory.EXPECT().Open(mock.Anything).Return(second, nil).Once()

	expectHeaders(first, "abcdefghij", "abcde")
	first.EXPECT().Perform(mock.Anything, mock.Anything, mock.Anything).Return(0, errors.New("connection reset by peer")).Once()
	first.EXPECT().Close().Return(nil).Once()

	// The rebuilt handle gets its headers again.
	expectHeaders(second, "abcdefghij", "abcde")
	second.EXPECT().Perform(mock.Anything, mock.Anything, mock.Anything).Return(http.StatusOK, nil).Once()

	c := newClient(factory, newSyncedClock())
	assert.Equal(t, uplink.ResultTransportError, c.Attempt(context.Background(), goodCreds))
	assert.Equal(t, connection.StateDisconnected, c.Status().Connection)
	assert.Equal(t, uplink.ResultOK, c.Attempt(context.Background(), goodCreds))
}

func TestAttemptClientInitFailedRetries(t *testing.T) {
	factory := mocks.NewMockFactory(t)
	handle := mocks.NewMockHandle(t)

	factory.EXPECT().Open(mock.Anything).Return(nil, errors.New("no memory")).Once()
	factory.EXPECT().Open(mock.Anything).Return(handle, nil).Once()
	expectHeaders(handle, "abcdefghij", "abcde")
	handle.EXPECT().Perform(mock.Anything, mock.Anything, mock.Anything).Return(http.StatusNoContent, nil).Once()

	c := newClient(factory, newSyncedClock())
	assert.Equal(t, uplink.ResultClientInitFailed, c.Attempt(context.Background(), goodCreds))
	assert.Equal(t, uplink.ResultOK, c.Attempt(context.Background(), goodCreds))
}

func TestAttemptCredentialRotation(t *testing.T) {
	factory := mocks.NewMockFactory(t)
	handle := mocks.NewMockHandle(t)

	factory.EXPECT().Open(mock.Anything).Return(handle, nil).Once()
	expectHeaders(handle, "abcdefghij", "abcde")
	expectHeaders(handle, "klmnopqrst", "vwxyz")
	handle.EXPECT().Perform(mock.Anything, mock.Anything, mock.Anything).Return(http.StatusNoContent, nil).Times(2)

	c := newClient(factory, newSyncedClock())
	assert.Equal(t, uplink.ResultOK, c.Attempt(context.Background(), goodCreds))
	assert.Equal(t, uplink.ResultOK, c.Attempt(context.Background(), "klmnopqrst:vwxyz"))
	assert.Equal(t, "klmnopqrst", c.Status().DeviceID)
}

func TestAttemptInvalidRotationKeepsConnection(t *testing.T) {
	factory := mocks.NewMockFactory(t)
	handle := mocks.NewMockHandle(t)

	factory.EXPECT().Open(mock.Anything).Return(handle, nil).Once()
	expectHeaders(handle, "abcdefghij", "abcde")
	handle.EXPECT().Perform(mock.Anything, mock.Anything, mock.Anything).Return(http.StatusNoContent, nil).Twice()

	c := newClient(factory, newSyncedClock())
	require.Equal(t, uplink.ResultOK, c.Attempt(context.Background(), goodCreds))
	assert.Equal(t, uplink.ResultInvalidToken, c.Attempt(context.Background(), "abcdefghij:ab"))
	assert.Equal(t, connection.StateConnected, c.Status().Connection)
	assert.Equal(t, uplink.ResultOK, c.Attempt(context.Background(), goodCreds))
}

func TestAttemptClockRegression(t *testing.T) {
	factory := mocks.NewMockFactory(t)
	handle := mocks.NewMockHandle(t)
	factory.EXPECT().Open(mock.Anything).Return(handle, nil).Once()
	handle.EXPECT().SetHeader(mock.Anything, mock.Anything).Return().Times(2)
	handle.EXPECT().Perform(mock.Anything, mock.Anything, mock.Anything).Return(http.StatusNoContent, nil).Once()

	clock := newSyncedClock()
	synced := clock.Now()
	c := newClient(factory, clock)

	require.Equal(t, uplink.ResultOK, c.Attempt(context.Background(), goodCreds))

	clock.set(false, synced.Add(-time.Hour))
	assert.Equal(t, uplink.ResultTimeNotReady, c.Attempt(context.Background(), goodCreds))
	assert.Equal(t, 0, clock.starts, "staleness does not itself start a sync")

	// Next attempt is on the unsynced path and asks for a sync.
	assert.Equal(t, uplink.ResultTimeNotReady, c.Attempt(context.Background(), goodCreds))
	assert.Equal(t, 1, clock.starts)
	assert.False(t, c.Status().Time.Ready)
}

func TestAttemptPayload(t *testing.T) {
	factory := mocks.NewMockFactory(t)
	handle := mocks.NewMockHandle(t)
	body := []byte(`{"temp":21.5}`)

	factory.EXPECT().Open(mock.Anything).Return(handle, nil).Once()
	handle.EXPECT().SetHeader(mock.Anything, mock.Anything).Return().Times(2)
	handle.EXPECT().Perform(mock.Anything, body, "application/json").Return(http.StatusAccepted, nil).Once()

	c := newClient(factory, newSyncedClock())
	assert.Equal(t, uplink.ResultOK, c.AttemptPayload(context.Background(), goodCreds, body, "application/json"))
}

func TestResetAndClose(t *testing.T) {
	factory := mocks.NewMockFactory(t)
	handle := mocks.NewMockHandle(t)
	factory.EXPECT().Open(mock.Anything).Return(handle, nil).Once()
	handle.EXPECT().SetHeader(mock.Anything, mock.Anything).Return().Times(2)
	handle.EXPECT().Perform(mock.Anything, mock.Anything, mock.Anything).Return(http.StatusNoContent, nil).Once()
	handle.EXPECT().Close().Return(nil).Once()

	c := newClient(factory, newSyncedClock())
	require.Equal(t, uplink.ResultOK, c.Attempt(context.Background(), goodCreds))

	c.Reset()
	assert.Equal(t, connection.StateDisconnected, c.Status().Connection)

	c.Close()
	assert.Equal(t, uplink.ResultClientInitFailed, c.Attempt(context.Background(), goodCreds))
}

func TestIndependentClients(t *testing.T) {
	a := newClient(mocks.NewMockFactory(t), &fakeClock{})
	b := newClient(mocks.NewMockFactory(t), &fakeClock{synced: true, now: time.Unix(1, 0)})

	assert.Equal(t, uplink.ResultTimeNotReady, a.Attempt(context.Background(), goodCreds))
	assert.Equal(t, uplink.ResultTimeNotReady, b.Attempt(context.Background(), goodCreds))

	b2 := newClient(mocks.NewMockFactory(t), newSyncedClock())
	assert.Equal(t, uplink.ResultInvalidDeviceID, b2.Attempt(context.Background(), "short:abcde"))
	assert.False(t, a.Status().Time.Ready)
}

func TestEndToEnd(t *testing.T) {
	var mu sync.Mutex
	status := http.StatusNoContent
	var gotDID, gotAuth string

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotDID = r.Header.Get(connection.HeaderDeviceID)
		gotAuth = r.Header.Get(connection.HeaderAuthorization)
		w.WriteHeader(status)
	}))
	defer srv.Close()

	pool := x509.NewCertPool()
	pool.AddCert(srv.Certificate())

	cfg := uplink.DefaultConfig()
	cfg.Endpoint = srv.URL + "/api/v1/heartbeat"
	cfg.Link = link.Always
	cfg.TimeSource = newSyncedClock()
	cfg.Bundle = cert.PoolBundle{Pool: pool}
	c := uplink.New(cfg)
	defer c.Close()

	assert.Equal(t, uplink.ResultOK, c.Attempt(context.Background(), goodCreds))
	mu.Lock()
	assert.Equal(t, "abcdefghij", gotDID)
	assert.Equal(t, "Bearer abcde", gotAuth)
	status = http.StatusUnauthorized
	mu.Unlock()

	id := c.Status().ConnectionID
	assert.Equal(t, uplink.ResultServerRejected, c.Attempt(context.Background(), goodCreds))
	assert.Equal(t, id, c.Status().ConnectionID, "connection untouched after rejection")

	assert.Equal(t, uplink.ResultInvalidDeviceID, c.Attempt(context.Background(), "short:abcde"))
}

func TestEndToEndRedirectRejected(t *testing.T) {
	var mu sync.Mutex
	followed := 0
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/elsewhere" {
			mu.Lock()
			followed++
			mu.Unlock()
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	}))
	defer srv.Close()

	pool := x509.NewCertPool()
	pool.AddCert(srv.Certificate())

	cfg := uplink.DefaultConfig()
	cfg.Endpoint = srv.URL + "/api/v1/heartbeat"
	cfg.Link = link.Always
	cfg.TimeSource = newSyncedClock()
	cfg.Bundle = cert.PoolBundle{Pool: pool}
	c := uplink.New(cfg)
	defer c.Close()

	assert.Equal(t, uplink.ResultServerRejected, c.Attempt(context.Background(), goodCreds))
	mu.Lock()
	assert.Zero(t, followed)
	mu.Unlock()
}
