package timesync

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

// SystemSource reads the host clock and its kernel sync status.
type SystemSource struct {
	// StartCommand is run by StartSync, e.g. {"timedatectl", "set-ntp", "true"}.
	// Empty makes StartSync a no-op.
	StartCommand []string

	// CommandTimeout bounds StartCommand. Zero means 10s.
	CommandTimeout time.Duration

	// Logger receives debug output. Nil disables logging.
	Logger *slog.Logger

	synced func() (bool, error)
	now    func() time.Time
}

// NewSystemSource returns a Source backed by the host clock.
func NewSystemSource(logger *slog.Logger) *SystemSource {
	return &SystemSource{Logger: logger}
}

// Synced reports the kernel's view of clock synchronization. Errors
// reading the status count as not synced.
func (s *SystemSource) Synced() bool {
	read := s.synced
	if read == nil {
		read = kernelSynced
	}
	ok, err := read()
	if err != nil {
		if s.Logger != nil {
			s.Logger.Debug("timesync: status read failed", "error", err)
		}
		return false
	}
	return ok
}

// Now returns the current wall clock.
func (s *SystemSource) Now() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// StartSync runs StartCommand if configured.
func (s *SystemSource) StartSync() error {
	if len(s.StartCommand) == 0 {
		return nil
	}

	timeout := s.CommandTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, s.StartCommand[0], s.StartCommand[1:]...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("start sync %q: %w: %s", s.StartCommand[0], err, out)
	}
	if s.Logger != nil {
		s.Logger.Info("timesync: sync started", "command", s.StartCommand[0])
	}
	return nil
}

var _ Source = (*SystemSource)(nil)
