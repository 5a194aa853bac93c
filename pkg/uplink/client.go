package uplink

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/weareqrystal/uplink-sdks/pkg/connection"
	"github.com/weareqrystal/uplink-sdks/pkg/credentials"
	"github.com/weareqrystal/uplink-sdks/pkg/link"
	"github.com/weareqrystal/uplink-sdks/pkg/log"
	"github.com/weareqrystal/uplink-sdks/pkg/metrics"
	"github.com/weareqrystal/uplink-sdks/pkg/timesync"
	"github.com/weareqrystal/uplink-sdks/pkg/transport"
)

// Client drives uplink attempts. It owns the time sync gate and the
// connection cache; independent clients share nothing.
type Client struct {
	mu sync.Mutex

	link   link.Link
	gate   *timesync.Gate
	cache  *connection.Cache
	bounds credentials.Bounds

	logger *slog.Logger
	events log.Logger

	// statusMu guards the last outcome so Status does not wait for an
	// in-flight attempt.
	statusMu sync.Mutex
	last     Result
	lastAt   time.Time
}

// Status is a point-in-time view of a Client.
type Status struct {
	Time         timesync.State
	Connection   connection.State
	ConnectionID string
	DeviceID     string

	// LastResult and LastAttempt are zero until the first attempt.
	LastResult  Result
	LastAttempt time.Time
}

// New creates a Client. Nil collaborators get host defaults.
func New(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Link == nil {
		cfg.Link = link.NewInterfaceLink("", cfg.Logger)
	}
	if cfg.TimeSource == nil {
		cfg.TimeSource = timesync.NewSystemSource(cfg.Logger)
	}
	if cfg.Transport == nil {
		cfg.Transport = transport.NewHTTPFactory(cfg.Logger)
	}

	return &Client{
		link: cfg.Link,
		gate: timesync.NewGate(timesync.Config{
			Source:          cfg.TimeSource,
			MinEpoch:        cfg.MinEpoch,
			StalenessWindow: cfg.StalenessWindow,
			Logger:          cfg.Logger,
			EventLogger:     cfg.EventLogger,
		}),
		cache: connection.NewCache(connection.Config{
			Factory:     cfg.Transport,
			URL:         cfg.Endpoint,
			KeepAlive:   cfg.KeepAlive,
			Bundle:      cfg.Bundle,
			Timeout:     cfg.Timeout,
			Logger:      cfg.Logger,
			EventLogger: cfg.EventLogger,
		}),
		bounds: cfg.Bounds,
		logger: cfg.Logger,
		events: log.OrNoop(cfg.EventLogger),
	}
}

// Attempt sends one empty-bodied heartbeat.
func (c *Client) Attempt(ctx context.Context, raw string) Result {
	return c.AttemptPayload(ctx, raw, nil, "")
}

// AttemptPayload sends one heartbeat carrying body. contentType is sent
// only when body is non-empty.
func (c *Client) AttemptPayload(ctx context.Context, raw string, body []byte, contentType string) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	o := c.attempt(ctx, raw, body, contentType)
	elapsed := time.Since(start)

	c.statusMu.Lock()
	c.last, c.lastAt = o.result, start
	c.statusMu.Unlock()

	c.record(ctx, start, elapsed, o, len(body))
	return o.result
}

// outcome is the result of one pass through the pipeline.
type outcome struct {
	result   Result
	stage    log.Stage
	status   int
	reused   bool
	deviceID string
	connID   string
}

func (c *Client) attempt(ctx context.Context, raw string, body []byte, contentType string) outcome {
	if !c.link.IsConnected() {
		return outcome{result: ResultNoLink, stage: log.StageLink}
	}

	if err := c.gate.Check(); err != nil {
		c.debugLog("uplink: time gate", "error", err)
		return outcome{result: ResultTimeNotReady, stage: log.StageTime}
	}

	if raw == "" {
		return outcome{result: ResultEmptyCredentials, stage: log.StageCredentials}
	}

	before := c.cache.ConnectionID()
	h := c.cache.Current(raw)
	if h == nil {
		creds, err := credentials.Parse(raw, c.bounds)
		if err != nil {
			c.debugLog("uplink: credentials rejected", "error", err)
			return outcome{result: credentialResult(err), stage: log.StageCredentials}
		}
		h, err = c.cache.Ensure(raw, creds)
		if err != nil {
			if c.logger != nil {
				c.logger.Warn("uplink: connection setup failed", "error", err)
			}
			return outcome{result: ResultClientInitFailed, stage: log.StageConnection, deviceID: creds.DeviceID}
		}
	}

	o := outcome{
		stage:    log.StageRequest,
		deviceID: c.cache.DeviceID(),
		connID:   c.cache.ConnectionID(),
	}
	o.reused = before != "" && before == o.connID
	o.result, o.status = c.execute(ctx, h, o, body, contentType)
	return o
}

// execute performs the request. Any transport error invalidates the cache.
func (c *Client) execute(ctx context.Context, h transport.Handle, o outcome, body []byte, contentType string) (Result, int) {
	status, err := h.Perform(ctx, body, contentType)
	if err != nil {
		stale := transport.IsStaleConnection(err)
		reason := "transport error"
		if stale {
			reason = "stale keep-alive"
		}
		if c.logger != nil {
			c.logger.Warn("uplink: request failed", "conn_id", o.connID, "reason", reason, "error", err)
		}

		ev := log.NewError(log.StageRequest, err, stale)
		ev.ConnectionID = o.connID
		ev.DeviceID = o.deviceID
		c.events.Log(ev)

		c.cache.Invalidate(reason)
		return ResultTransportError, 0
	}

	if status >= 200 && status < 300 {
		return ResultOK, status
	}
	return ResultServerRejected, status
}

func credentialResult(err error) Result {
	switch {
	case errors.Is(err, credentials.ErrEmpty):
		return ResultEmptyCredentials
	case errors.Is(err, credentials.ErrInvalidDeviceID):
		return ResultInvalidDeviceID
	case errors.Is(err, credentials.ErrInvalidToken):
		return ResultInvalidToken
	default:
		return ResultMalformedCredentials
	}
}

func (c *Client) record(ctx context.Context, start time.Time, elapsed time.Duration, o outcome, payload int) {
	c.debugLog("uplink: attempt",
		"result", o.result.String(),
		"stage", o.stage.String(),
		"status", o.status,
		"duration", elapsed,
		"reused", o.reused)

	c.events.Log(log.Event{
		Timestamp:    start,
		ConnectionID: o.connID,
		DeviceID:     o.deviceID,
		Category:     log.CategoryAttempt,
		Attempt: &log.AttemptEvent{
			Result:      o.result.String(),
			Stage:       o.stage,
			StatusCode:  o.status,
			Duration:    elapsed,
			PayloadSize: payload,
			Reused:      o.reused,
		},
	})

	if err := metrics.RecordAttempt(context.WithoutCancel(ctx), o.result.String(), o.stage.String(), elapsed, payload); err != nil {
		c.debugLog("uplink: metrics record failed", "error", err)
	}
}

// Reset drops the cached connection. It waits for an in-flight attempt.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Invalidate("reset")
}

// Close releases the connection for good. Later attempts return
// ResultClientInitFailed once the gates pass.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Close()
}

// Status returns a snapshot of the client state without waiting for an
// in-flight attempt.
func (c *Client) Status() Status {
	c.statusMu.Lock()
	last, lastAt := c.last, c.lastAt
	c.statusMu.Unlock()

	return Status{
		Time:         c.gate.State(),
		Connection:   c.cache.State(),
		ConnectionID: c.cache.ConnectionID(),
		DeviceID:     c.cache.DeviceID(),
		LastResult:   last,
		LastAttempt:  lastAt,
	}
}

func (c *Client) debugLog(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
