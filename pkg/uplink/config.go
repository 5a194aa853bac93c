package uplink

import (
	"log/slog"
	"time"

	"github.com/weareqrystal/uplink-sdks/pkg/cert"
	"github.com/weareqrystal/uplink-sdks/pkg/credentials"
	"github.com/weareqrystal/uplink-sdks/pkg/link"
	"github.com/weareqrystal/uplink-sdks/pkg/log"
	"github.com/weareqrystal/uplink-sdks/pkg/timesync"
	"github.com/weareqrystal/uplink-sdks/pkg/transport"
)

// Service endpoints.
const (
	DefaultEndpoint   = "https://on.uplink.qrystal.partners/api/v1/heartbeat"
	TelemetryEndpoint = "https://on.uplink.qrystal.partners/api/v1/telemetry"
)

// Config configures a Client.
type Config struct {
	// Endpoint is the URL posted to. Empty uses DefaultEndpoint.
	Endpoint string

	// Bounds are the credential length limits. Zero fields use defaults.
	Bounds credentials.Bounds

	// MinEpoch is the clock sanity floor. Zero uses timesync.MinEpoch.
	MinEpoch uint32

	// StalenessWindow bounds forward clock drift.
	// Zero uses timesync.DefaultStalenessWindow.
	StalenessWindow time.Duration

	// KeepAlive configures TCP probing. Zero fields use transport defaults.
	KeepAlive transport.KeepAliveConfig

	// Timeout bounds one request. Zero uses transport.DefaultTimeout.
	Timeout time.Duration

	// Bundle provides trusted roots. Nil uses the system pool.
	Bundle cert.Bundle

	// Link reports link state. Nil uses any up non-loopback interface.
	Link link.Link

	// TimeSource provides sync status and the clock. Nil uses the host clock.
	TimeSource timesync.Source

	// Transport opens connection handles. Nil uses net/http.
	Transport transport.Factory

	// Logger receives operational logs. Nil disables logging.
	Logger *slog.Logger

	// EventLogger captures uplink events. Nil disables capture.
	EventLogger log.Logger
}

// DefaultConfig returns a Config for the production service.
func DefaultConfig() Config {
	return Config{
		Endpoint:        DefaultEndpoint,
		Bounds:          credentials.DefaultBounds(),
		MinEpoch:        timesync.MinEpoch,
		StalenessWindow: timesync.DefaultStalenessWindow,
		KeepAlive:       transport.DefaultKeepAliveConfig(),
		Timeout:         transport.DefaultTimeout,
	}
}
