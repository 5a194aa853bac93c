package interactive

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weareqrystal/uplink-sdks/pkg/connection"
	"github.com/weareqrystal/uplink-sdks/pkg/persistence"
	"github.com/weareqrystal/uplink-sdks/pkg/scheduler"
	"github.com/weareqrystal/uplink-sdks/pkg/timesync"
	"github.com/weareqrystal/uplink-sdks/pkg/uplink"
)

type fakeClient struct {
	result   uplink.Result
	lastRaw  string
	lastBody []byte
	attempts int
	resets   int
	status   uplink.Status
}

func (f *fakeClient) Attempt(_ context.Context, raw string) uplink.Result {
	f.attempts++
	f.lastRaw = raw
	f.lastBody = nil
	return f.result
}

func (f *fakeClient) AttemptPayload(_ context.Context, raw string, body []byte, _ string) uplink.Result {
	f.attempts++
	f.lastRaw = raw
	f.lastBody = body
	return f.result
}

func (f *fakeClient) Status() uplink.Status { return f.status }
func (f *fakeClient) Reset()                { f.resets++ }

type fakeScheduler struct {
	running  bool
	started  []scheduler.Config
	stops    int
	startErr error
}

func (f *fakeScheduler) Start(cfg scheduler.Config) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started = append(f.started, cfg)
	f.running = true
	return nil
}

func (f *fakeScheduler) Stop() {
	f.stops++
	f.running = false
}

func (f *fakeScheduler) IsRunning() bool { return f.running }

func (f *fakeScheduler) State() scheduler.State {
	if f.running {
		return scheduler.StateRunning
	}
	return scheduler.StateIdle
}

func newTestConsole(client *fakeClient, sched *fakeScheduler, opts Options) (*Console, *bytes.Buffer) {
	var out bytes.Buffer
	return newConsole(client, sched, opts, &out), &out
}

func TestConsoleBeat(t *testing.T) {
	t.Run("sends heartbeat with configured credentials", func(t *testing.T) {
		client := &fakeClient{result: uplink.ResultOK}
		var observed []uplink.Result
		c, out := newTestConsole(client, &fakeScheduler{}, Options{
			Credentials: "device-0001:secret",
			Observe:     func(r uplink.Result) { observed = append(observed, r) },
		})

		assert.True(t, c.execute(context.Background(), "beat"))
		assert.Equal(t, 1, client.attempts)
		assert.Equal(t, "device-0001:secret", client.lastRaw)
		assert.Nil(t, client.lastBody)
		assert.Equal(t, []uplink.Result{uplink.ResultOK}, observed)
		assert.Contains(t, out.String(), "Result: OK")
	})

	t.Run("sends JSON body", func(t *testing.T) {
		client := &fakeClient{result: uplink.ResultServerRejected}
		c, out := newTestConsole(client, &fakeScheduler{}, Options{Credentials: "device-0001:secret"})

		c.execute(context.Background(), `b {"temp": 21}`)
		assert.Equal(t, []byte(`{"temp": 21}`), client.lastBody)
		assert.Contains(t, out.String(), "SERVER_REJECTED")
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		client := &fakeClient{}
		c, out := newTestConsole(client, &fakeScheduler{}, Options{})

		c.execute(context.Background(), "beat {nope")
		assert.Zero(t, client.attempts)
		assert.Contains(t, out.String(), "not valid JSON")
	})

	t.Run("refused while scheduler runs", func(t *testing.T) {
		client := &fakeClient{}
		c, out := newTestConsole(client, &fakeScheduler{running: true}, Options{})

		c.execute(context.Background(), "beat")
		assert.Zero(t, client.attempts)
		assert.Contains(t, out.String(), "Scheduler is running")
	})
}

func TestConsoleStartStop(t *testing.T) {
	sched := &fakeScheduler{}
	c, out := newTestConsole(&fakeClient{}, sched, Options{
		SchedulerConfig: func() scheduler.Config {
			return scheduler.Config{Credentials: "device-0001:secret", Interval: time.Minute}
		},
	})

	c.execute(context.Background(), "start")
	require.Len(t, sched.started, 1)
	assert.Equal(t, time.Minute, sched.started[0].Interval)
	assert.Contains(t, out.String(), "Scheduler started")

	c.execute(context.Background(), "stop")
	assert.Equal(t, 1, sched.stops)

	out.Reset()
	c.execute(context.Background(), "stop")
	assert.Equal(t, 1, sched.stops)
	assert.Contains(t, out.String(), "not running")
}

func TestConsoleStartError(t *testing.T) {
	sched := &fakeScheduler{startErr: scheduler.ErrAlreadyRunning}
	c, out := newTestConsole(&fakeClient{}, sched, Options{
		SchedulerConfig: func() scheduler.Config { return scheduler.Config{} },
	})

	c.execute(context.Background(), "start")
	assert.Contains(t, out.String(), "Start failed: scheduler already running")
}

func TestConsoleStatus(t *testing.T) {
	client := &fakeClient{status: uplink.Status{
		Time:         timesync.State{Ready: true, LastSyncEpoch: 1767244200},
		Connection:   connection.StateConnected,
		ConnectionID: "conn-1",
		DeviceID:     "device-0001",
		LastResult:   uplink.ResultOK,
		LastAttempt:  time.Unix(1767244200, 0).UTC(),
	}}
	c, out := newTestConsole(client, &fakeScheduler{}, Options{})

	c.execute(context.Background(), "status")
	s := out.String()
	assert.Contains(t, s, "Scheduler:   IDLE")
	assert.Contains(t, s, "Time sync:   SYNCED")
	assert.Contains(t, s, "Connection:  CONNECTED")
	assert.Contains(t, s, "device-0001")
	assert.Contains(t, s, "Last result: OK")
}

func TestConsoleSummary(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		c, out := newTestConsole(&fakeClient{}, &fakeScheduler{}, Options{})
		c.execute(context.Background(), "summary")
		assert.Contains(t, out.String(), "No run summary")
	})

	t.Run("counts", func(t *testing.T) {
		sum := &persistence.RunSummary{}
		now := time.Unix(1767244200, 0)
		sum.Observe(uplink.ResultOK.String(), true, now)
		sum.Observe(uplink.ResultNoLink.String(), false, now.Add(time.Minute))

		c, out := newTestConsole(&fakeClient{}, &fakeScheduler{}, Options{
			Summary: func() *persistence.RunSummary { return sum },
		})
		c.execute(context.Background(), "summary")
		s := out.String()
		assert.Contains(t, s, "Attempts: 2 (consecutive failures: 1)")
		assert.Contains(t, s, "NO_LINK")
	})
}

func TestConsoleMisc(t *testing.T) {
	client := &fakeClient{}
	c, out := newTestConsole(client, &fakeScheduler{}, Options{})

	assert.True(t, c.execute(context.Background(), "   "))
	assert.True(t, c.execute(context.Background(), "reset"))
	assert.Equal(t, 1, client.resets)

	assert.True(t, c.execute(context.Background(), "frobnicate"))
	assert.Contains(t, out.String(), "Unknown command: frobnicate")

	assert.False(t, c.execute(context.Background(), "quit"))
}
