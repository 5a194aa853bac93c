package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes events to an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("category", event.Category.String()),
	}
	if event.ConnectionID != "" {
		attrs = append(attrs, slog.String("conn_id", event.ConnectionID))
	}
	if event.DeviceID != "" {
		attrs = append(attrs, slog.String("device_id", event.DeviceID))
	}
	if event.RunID != "" {
		attrs = append(attrs, slog.String("run_id", event.RunID))
	}

	switch {
	case event.Attempt != nil:
		attrs = append(attrs,
			slog.String("result", event.Attempt.Result),
			slog.String("stage", event.Attempt.Stage.String()),
			slog.Duration("duration", event.Attempt.Duration),
		)
		if event.Attempt.StatusCode != 0 {
			attrs = append(attrs, slog.Int("status", event.Attempt.StatusCode))
		}
		if event.Attempt.PayloadSize != 0 {
			attrs = append(attrs, slog.Int("payload_size", event.Attempt.PayloadSize))
		}
		attrs = append(attrs, slog.Bool("reused", event.Attempt.Reused))
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_stage", event.Error.Stage.String()),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Stale {
			attrs = append(attrs, slog.Bool("stale", true))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "uplink event", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
