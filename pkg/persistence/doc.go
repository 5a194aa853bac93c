// Package persistence keeps a device's uplink run summary across restarts.
//
// The summary is a small JSON file: per-result counters, the last outcome
// and the last successful heartbeat. It is written after attempts and
// read back when the device binary starts.
package persistence
