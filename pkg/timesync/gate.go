package timesync

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/weareqrystal/uplink-sdks/pkg/log"
)

// Gate errors.
var (
	// ErrNotReady indicates the clock is not trustworthy yet.
	ErrNotReady = errors.New("time not ready")

	// ErrStale indicates a previously synced clock regressed or drifted
	// past the staleness window. It wraps ErrNotReady.
	ErrStale = fmt.Errorf("%w: clock stale", ErrNotReady)
)

// Default values.
const (
	// MinEpoch is the sanity floor for a synced clock
	// (2026-01-01T05:09:09Z). Readings below it are treated as garbage.
	MinEpoch uint32 = 1767244149

	// DefaultStalenessWindow bounds forward clock movement between checks.
	DefaultStalenessWindow = 24 * time.Hour
)

// Source is the time synchronization collaborator.
type Source interface {
	// Synced reports whether synchronization has completed.
	Synced() bool

	// Now returns the current wall clock.
	Now() time.Time

	// StartSync requests that synchronization be started.
	StartSync() error
}

// State is the gate state.
type State struct {
	// Ready is true while the gate is SYNCED.
	Ready bool

	// LastSyncEpoch is the clock reading (Unix seconds) recorded at the
	// last UNSYNCED to SYNCED transition.
	LastSyncEpoch uint32
}

// String returns SYNCED or UNSYNCED.
func (s State) String() string {
	if s.Ready {
		return "SYNCED"
	}
	return "UNSYNCED"
}

// Config configures a Gate.
type Config struct {
	// Source provides sync status and the clock. Required.
	Source Source

	// MinEpoch overrides the sanity floor. Zero uses MinEpoch.
	MinEpoch uint32

	// StalenessWindow overrides the forward drift bound.
	// Zero uses DefaultStalenessWindow.
	StalenessWindow time.Duration

	// Logger receives state transitions. Nil disables logging.
	Logger *slog.Logger

	// EventLogger captures state change events. Nil disables capture.
	EventLogger log.Logger
}

// DefaultConfig returns a Config with default limits for source.
func DefaultConfig(source Source) Config {
	return Config{
		Source:          source,
		MinEpoch:        MinEpoch,
		StalenessWindow: DefaultStalenessWindow,
	}
}

// Gate tracks whether the device clock is trustworthy.
type Gate struct {
	mu sync.Mutex

	source   Source
	minEpoch uint32
	window   uint32
	logger   *slog.Logger
	events   log.Logger

	state State

	// syncRequested is set once StartSync succeeded and cleared when the
	// source reports synced.
	syncRequested bool
}

// NewGate creates a Gate in the UNSYNCED state.
func NewGate(cfg Config) *Gate {
	if cfg.MinEpoch == 0 {
		cfg.MinEpoch = MinEpoch
	}
	if cfg.StalenessWindow <= 0 {
		cfg.StalenessWindow = DefaultStalenessWindow
	}
	return &Gate{
		source:   cfg.Source,
		minEpoch: cfg.MinEpoch,
		window:   uint32(cfg.StalenessWindow / time.Second),
		logger:   cfg.Logger,
		events:   log.OrNoop(cfg.EventLogger),
	}
}

// Check returns nil when the clock can be trusted for this attempt.
// It returns ErrNotReady (possibly wrapped as ErrStale) otherwise.
func (g *Gate) Check() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state.Ready {
		return g.checkSynced()
	}
	return g.checkUnsynced()
}

func (g *Gate) checkUnsynced() error {
	if !g.source.Synced() {
		if !g.syncRequested {
			if err := g.source.StartSync(); err != nil {
				g.debugLog("timesync: start failed", "error", err)
			} else {
				g.syncRequested = true
				g.debugLog("timesync: sync requested")
			}
		}
		return ErrNotReady
	}
	g.syncRequested = false

	now := epoch(g.source.Now())
	if now < g.minEpoch {
		g.debugLog("timesync: clock below floor", "epoch", now, "floor", g.minEpoch)
		return fmt.Errorf("%w: epoch %d below floor %d", ErrNotReady, now, g.minEpoch)
	}

	g.state = State{Ready: true, LastSyncEpoch: now}
	g.transition("UNSYNCED", "SYNCED", "source synced")
	return nil
}

func (g *Gate) checkSynced() error {
	now := epoch(g.source.Now())
	last := g.state.LastSyncEpoch

	var reason string
	switch {
	case now < last:
		reason = fmt.Sprintf("clock regressed by %ds", last-now)
	case now-last > g.window:
		reason = fmt.Sprintf("clock advanced %ds past last sync", now-last)
	default:
		return nil
	}

	g.state.Ready = false
	g.transition("SYNCED", "UNSYNCED", reason)
	return fmt.Errorf("%w: %s", ErrStale, reason)
}

// State returns a copy of the current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Reset returns the gate to UNSYNCED, forgetting any outstanding sync request.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	wasReady := g.state.Ready
	g.state = State{}
	g.syncRequested = false
	if wasReady {
		g.transition("SYNCED", "UNSYNCED", "reset")
	}
}

func (g *Gate) transition(from, to, reason string) {
	if g.logger != nil {
		g.logger.Info("timesync: state change", "from", from, "to", to, "reason", reason)
	}
	g.events.Log(log.NewStateChange(log.StateEntityTimeSync, from, to, reason))
}

func (g *Gate) debugLog(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Debug(msg, args...)
	}
}

func epoch(t time.Time) uint32 {
	sec := t.Unix()
	if sec < 0 {
		return 0
	}
	return uint32(sec)
}
