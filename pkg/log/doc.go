// Package log captures uplink events for later analysis.
//
// This package defines the Logger interface and Event types that record
// what happened on each uplink attempt and on every state change of the
// connection cache, the time sync gate and the background scheduler.
// It is separate from operational logging (slog): event capture produces
// a complete machine-readable trace of a device's uplink history.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	cfg.EventLogger = log.NewSlogAdapter(slog.Default())
//
//	// On the device: append to a binary file
//	cfg.EventLogger, _ = log.NewFileLogger("/var/lib/uplink/device.ulog")
//
//	// Both
//	cfg.EventLogger = log.NewMultiLogger(console, file)
//
// # Event Types
//
//   - Attempt: one uplink attempt and its outcome (AttemptEvent)
//   - State: connection, time sync and scheduler transitions (StateChangeEvent)
//   - Error: failures worth keeping beyond the outcome code (ErrorEventData)
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with integer keys, using
// the .ulog extension. The uplink-log command views, filters and exports
// them.
package log
