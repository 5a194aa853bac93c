package connection

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/weareqrystal/uplink-sdks/pkg/cert"
	"github.com/weareqrystal/uplink-sdks/pkg/credentials"
	"github.com/weareqrystal/uplink-sdks/pkg/log"
	"github.com/weareqrystal/uplink-sdks/pkg/transport"
)

// Connection errors.
var (
	ErrClientInit       = errors.New("client init failed")
	ErrConnectionClosed = errors.New("connection closed")
	ErrMissingFactory   = errors.New("transport factory is required")
)

// Request headers set on every handle.
const (
	HeaderDeviceID      = "X-Qrystal-Uplink-DID"
	HeaderAuthorization = "Authorization"
)

// State represents the connection state.
type State uint8

const (
	// StateDisconnected indicates no handle exists.
	StateDisconnected State = iota

	// StateConnected indicates a handle exists and carries headers.
	StateConnected

	// StateClosed indicates the cache has been closed.
	StateClosed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnected:
		return "CONNECTED"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Config configures a Cache.
type Config struct {
	// Factory opens handles. Required.
	Factory transport.Factory

	// URL is the endpoint every handle is bound to.
	URL string

	// KeepAlive configures probing. Zero fields use transport defaults.
	KeepAlive transport.KeepAliveConfig

	// Bundle provides trusted roots. Nil uses the system pool.
	Bundle cert.Bundle

	// Timeout bounds one request. Zero uses transport.DefaultTimeout.
	Timeout time.Duration

	// Logger receives lifecycle output. Nil disables logging.
	Logger *slog.Logger

	// EventLogger captures state change events. Nil disables capture.
	EventLogger log.Logger
}

// Cache holds at most one handle, bound to the last accepted credentials.
type Cache struct {
	mu sync.Mutex

	config Config
	events log.Logger

	state    State
	handle   transport.Handle
	accepted string
	deviceID string
	connID   string

	onStateChange func(oldState, newState State)
}

// NewCache creates a Cache in the DISCONNECTED state.
func NewCache(config Config) *Cache {
	return &Cache{
		config: config,
		events: log.OrNoop(config.EventLogger),
		state:  StateDisconnected,
	}
}

// OnStateChange sets a callback for state changes. The callback runs with
// the cache locked and must not call back into it.
func (c *Cache) OnStateChange(fn func(oldState, newState State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStateChange = fn
}

// Current returns the live handle if raw equals the last accepted
// credentials, or nil otherwise.
func (c *Cache) Current(raw string) transport.Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle == nil || raw != c.accepted {
		return nil
	}
	return c.handle
}

// Ensure returns a handle carrying creds' headers, creating one when none
// exists. raw becomes the accepted credentials only after the headers
// were applied. Failures wrap ErrClientInit.
func (c *Cache) Ensure(raw string, creds credentials.Credentials) (transport.Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return nil, ErrConnectionClosed
	}

	if c.handle == nil {
		if c.config.Factory == nil {
			return nil, fmt.Errorf("%w: %w", ErrClientInit, ErrMissingFactory)
		}
		ka := c.config.KeepAlive
		h, err := c.config.Factory.Open(transport.Options{
			URL:       c.config.URL,
			KeepAlive: &ka,
			Bundle:    c.config.Bundle,
			Timeout:   c.config.Timeout,
		})
		if err != nil {
			c.events.Log(c.stamp(log.NewError(log.StageConnection, err, false)))
			return nil, fmt.Errorf("%w: %w", ErrClientInit, err)
		}
		applyHeaders(h, creds)

		c.handle = h
		c.connID = uuid.NewString()
		c.accepted = raw
		c.deviceID = creds.DeviceID
		c.setState(StateConnected, "created token="+credentials.Fingerprint(creds.Token))
		return h, nil
	}

	if raw != c.accepted {
		applyHeaders(c.handle, creds)
		c.accepted = raw
		c.deviceID = creds.DeviceID
		reason := "credentials rotated token=" + credentials.Fingerprint(creds.Token)
		c.debugLog("connection: headers replaced", "conn_id", c.connID, "device_id", creds.DeviceID)
		c.events.Log(c.stamp(log.NewStateChange(log.StateEntityConnection,
			StateConnected.String(), StateConnected.String(), reason)))
	}
	return c.handle, nil
}

func applyHeaders(h transport.Handle, creds credentials.Credentials) {
	h.SetHeader(HeaderDeviceID, creds.DeviceID)
	h.SetHeader(HeaderAuthorization, creds.BearerValue())
}

// Invalidate closes the handle and forgets the accepted credentials.
// It is a no-op when no handle exists.
func (c *Cache) Invalidate(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle == nil {
		return
	}
	c.teardown()
	c.setState(StateDisconnected, reason)
}

// Close tears down any handle and rejects further Ensure calls.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return
	}
	c.teardown()
	c.setState(StateClosed, "closed")
}

func (c *Cache) teardown() {
	if c.handle != nil {
		if err := c.handle.Close(); err != nil {
			c.debugLog("connection: close failed", "conn_id", c.connID, "error", err)
		}
	}
	c.handle = nil
	c.accepted = ""
}

// State returns the current state.
func (c *Cache) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ConnectionID returns the ID of the current handle epoch, or "" when
// disconnected.
func (c *Cache) ConnectionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle == nil {
		return ""
	}
	return c.connID
}

// DeviceID returns the device ID of the accepted credentials, or "".
func (c *Cache) DeviceID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle == nil {
		return ""
	}
	return c.deviceID
}

// setState must be called with c.mu held.
func (c *Cache) setState(newState State, reason string) {
	old := c.state
	c.state = newState

	if c.config.Logger != nil {
		c.config.Logger.Info("connection: state change",
			"from", old.String(), "to", newState.String(), "conn_id", c.connID, "reason", reason)
	}
	c.events.Log(c.stamp(log.NewStateChange(log.StateEntityConnection, old.String(), newState.String(), reason)))

	if c.onStateChange != nil && old != newState {
		c.onStateChange(old, newState)
	}
}

func (c *Cache) stamp(e log.Event) log.Event {
	e.ConnectionID = c.connID
	e.DeviceID = c.deviceID
	return e
}

func (c *Cache) debugLog(msg string, args ...any) {
	if c.config.Logger != nil {
		c.config.Logger.Debug(msg, args...)
	}
}
