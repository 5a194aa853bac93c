package transport

import (
	"net"
	"time"
)

// Keep-alive constants.
const (
	// DefaultKeepAliveIdle is the idle time before the first probe.
	DefaultKeepAliveIdle = 5 * time.Second

	// DefaultKeepAliveInterval is the interval between probes.
	DefaultKeepAliveInterval = 5 * time.Second

	// DefaultKeepAliveCount is the number of unanswered probes before the
	// kernel drops the connection.
	DefaultKeepAliveCount = 3

	// MaxDetectionDelay is the maximum time to detect a dead peer.
	// Calculated as: Idle + Interval * Count
	// Default: 5 + 5 * 3 = 20 seconds
	MaxDetectionDelay = 20 * time.Second
)

// KeepAliveConfig configures TCP keep-alive probing.
type KeepAliveConfig struct {
	// Idle is the time a connection must be idle before probing starts.
	Idle time.Duration

	// Interval is the time between probes.
	Interval time.Duration

	// Count is the number of unanswered probes before disconnect.
	Count int
}

// DefaultKeepAliveConfig returns the default keep-alive configuration.
func DefaultKeepAliveConfig() KeepAliveConfig {
	return KeepAliveConfig{
		Idle:     DefaultKeepAliveIdle,
		Interval: DefaultKeepAliveInterval,
		Count:    DefaultKeepAliveCount,
	}
}

// DetectionDelay calculates the maximum detection delay for this configuration.
func (c KeepAliveConfig) DetectionDelay() time.Duration {
	return c.Idle + c.Interval*time.Duration(c.Count)
}

// withDefaults fills zero fields from the defaults.
func (c KeepAliveConfig) withDefaults() KeepAliveConfig {
	if c.Idle <= 0 {
		c.Idle = DefaultKeepAliveIdle
	}
	if c.Interval <= 0 {
		c.Interval = DefaultKeepAliveInterval
	}
	if c.Count <= 0 {
		c.Count = DefaultKeepAliveCount
	}
	return c
}

// dialer returns a net.Dialer that applies c, or disables probing when c is nil.
func dialer(c *KeepAliveConfig, timeout time.Duration) *net.Dialer {
	d := &net.Dialer{Timeout: timeout}
	if c == nil {
		d.KeepAlive = -1
		return d
	}
	cfg := c.withDefaults()
	d.KeepAliveConfig = net.KeepAliveConfig{
		Enable:   true,
		Idle:     cfg.Idle,
		Interval: cfg.Interval,
		Count:    cfg.Count,
	}
	return d
}
