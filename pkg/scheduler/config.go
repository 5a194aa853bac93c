package scheduler

import (
	"time"

	"github.com/weareqrystal/uplink-sdks/pkg/uplink"
)

// Defaults.
const (
	DefaultInterval       = 30 * time.Second
	DefaultFastRetryDelay = 2 * time.Second
	DefaultStopTimeout    = 5 * time.Second

	// DefaultStackSizeBytes is recorded for parity with embedded hosts.
	// Goroutine stacks grow on demand.
	DefaultStackSizeBytes = 4096

	// MaxPriority is the highest accepted priority.
	MaxPriority = 24

	// DefaultPriority is the middle of 0..MaxPriority.
	DefaultPriority = MaxPriority / 2

	// PriorityLowest selects priority 0. Any negative value does.
	PriorityLowest = -1
)

// PayloadFunc returns the body for the next attempt. A nil body sends a
// plain heartbeat.
type PayloadFunc func() (body []byte, contentType string, err error)

// Config configures one background run. It is copied at Start.
type Config struct {
	// Credentials is the "deviceId:token" string. Required.
	Credentials string

	// Interval between attempts. Zero uses DefaultInterval.
	Interval time.Duration

	// FastRetryDelay replaces Interval after TIME_NOT_READY.
	// Zero uses DefaultFastRetryDelay.
	FastRetryDelay time.Duration

	// Callback receives every result. It runs on the scheduler goroutine
	// and must stay valid until Stop returns.
	Callback func(uplink.Result)

	// Payload provides request bodies. Nil sends plain heartbeats.
	Payload PayloadFunc

	// StackSizeBytes is logged only. Zero uses DefaultStackSizeBytes.
	StackSizeBytes int

	// Priority in 0..MaxPriority, higher is more urgent. Zero uses
	// DefaultPriority; pass PriorityLowest to request priority 0.
	// Larger values are clamped to MaxPriority.
	Priority int

	// StopTimeout bounds how long Stop waits for the loop to exit.
	// Zero uses DefaultStopTimeout.
	StopTimeout time.Duration
}

// withDefaults fills zero fields and clamps Priority.
func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.FastRetryDelay <= 0 {
		c.FastRetryDelay = DefaultFastRetryDelay
	}
	if c.StopTimeout <= 0 {
		c.StopTimeout = DefaultStopTimeout
	}
	if c.StackSizeBytes <= 0 {
		c.StackSizeBytes = DefaultStackSizeBytes
	}
	switch {
	case c.Priority < 0:
		c.Priority = 0
	case c.Priority == 0:
		c.Priority = DefaultPriority
	}
	if c.Priority > MaxPriority {
		c.Priority = MaxPriority
	}
	return c
}

// delayAfter returns the wait before the next attempt.
func (c Config) delayAfter(r uplink.Result) time.Duration {
	if r == uplink.ResultTimeNotReady {
		return c.FastRetryDelay
	}
	return c.Interval
}
