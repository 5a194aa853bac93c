// Package timesync decides whether the device clock can be trusted.
//
// A Gate latches between two states. While UNSYNCED it asks its Source
// to start synchronization once and fails until the source reports
// completion with a plausible clock. While SYNCED it re-reads the clock
// on every check and drops back to UNSYNCED when the clock moved
// backwards or jumped forward past the staleness window.
//
// The Source is deliberately small so that SNTP daemons, GPS receivers
// or test fakes can all drive the same Gate:
//
//	gate := timesync.NewGate(timesync.Config{
//	    Source: timesync.NewSystemSource(nil),
//	    Logger: slog.Default(),
//	})
//	if err := gate.Check(); err != nil {
//	    // not yet
//	}
package timesync
