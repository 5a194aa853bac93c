// Package telemetry encodes request bodies for the telemetry endpoint.
//
// A heartbeat carries no body. The telemetry variant posts a small
// document, JSON by default, with the matching Content-Type.
package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Format is a body encoding.
type Format uint8

const (
	FormatJSON Format = iota
	FormatCBOR
)

// Content types.
const (
	ContentTypeJSON = "application/json"
	ContentTypeCBOR = "application/cbor"
)

// ErrUnknownFormat is returned for an unsupported Format or format name.
var ErrUnknownFormat = errors.New("unknown telemetry format")

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatCBOR:
		return "cbor"
	default:
		return "unknown"
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatCBOR:
		return ContentTypeCBOR
	default:
		return ContentTypeJSON
	}
}

// ParseFormat parses "json" or "cbor".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "json":
		return FormatJSON, nil
	case "cbor":
		return FormatCBOR, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Encode marshals v and returns the body and its content type.
func Encode(v any, f Format) ([]byte, string, error) {
	var (
		data []byte
		err  error
	)
	switch f {
	case FormatJSON:
		data, err = json.Marshal(v)
	case FormatCBOR:
		data, err = cbor.Marshal(v)
	default:
		return nil, "", fmt.Errorf("%w: %d", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, "", fmt.Errorf("encode telemetry: %w", err)
	}
	return data, f.ContentType(), nil
}

// Snapshot is the default telemetry document sent by the device binary.
type Snapshot struct {
	Timestamp     time.Time `json:"ts" cbor:"1,keyasint"`
	Hostname      string    `json:"host,omitempty" cbor:"2,keyasint,omitempty"`
	UptimeSeconds int64     `json:"uptime_s" cbor:"3,keyasint"`
	Goroutines    int       `json:"goroutines" cbor:"4,keyasint"`
	HeapBytes     uint64    `json:"heap_bytes" cbor:"5,keyasint"`
	LastResult    string    `json:"last_result,omitempty" cbor:"6,keyasint,omitempty"`
}

// Collector builds Snapshots relative to a start time.
type Collector struct {
	started time.Time
	now     func() time.Time
}

// NewCollector creates a Collector whose uptime counts from now.
func NewCollector() *Collector {
	return &Collector{started: time.Now(), now: time.Now}
}

// Snapshot samples the process. lastResult is the previous uplink outcome.
func (c *Collector) Snapshot(lastResult string) Snapshot {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	host, _ := os.Hostname()
	now := c.now()

	return Snapshot{
		Timestamp:     now.UTC(),
		Hostname:      host,
		UptimeSeconds: int64(now.Sub(c.started) / time.Second),
		Goroutines:    runtime.NumGoroutine(),
		HeapBytes:     ms.HeapAlloc,
		LastResult:    lastResult,
	}
}
