// Package metrics records uplink attempt statistics with OpenCensus.
package metrics

import (
	"context"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	MAttempts = stats.Int64("uplink/attempts", "Number of uplink attempts", stats.UnitDimensionless)

	MLatencyMs = stats.Float64("uplink/latency", "The latency in milliseconds per attempt", stats.UnitMilliseconds)

	MPayloadBytes = stats.Int64("uplink/payload_bytes", "Request body bytes sent", stats.UnitBytes)
)

var (
	KeyResult, _ = tag.NewKey("result")
	KeyStage, _  = tag.NewKey("stage")
)

var (
	AttemptsView = &view.View{
		Name:        "uplink/attempts",
		Measure:     MAttempts,
		Description: "Number of attempts by outcome",
		Aggregation: view.Count(),
		TagKeys:     []tag.Key{KeyResult, KeyStage},
	}

	LatencyView = &view.View{
		Name:        "uplink/latency",
		Measure:     MLatencyMs,
		Description: "The distribution of attempt latencies",

		Aggregation: view.Distribution(0, 5, 25, 50, 100, 250, 500, 1000, 2000, 5000, 10000, 30000),
		TagKeys:     []tag.Key{KeyResult},
	}

	PayloadBytesView = &view.View{
		Name:        "uplink/payload_bytes",
		Measure:     MPayloadBytes,
		Description: "Request body bytes sent",
		Aggregation: view.Sum(),
		TagKeys:     []tag.Key{KeyResult},
	}
)

// Views returns every uplink view.
func Views() []*view.View {
	return []*view.View{AttemptsView, LatencyView, PayloadBytesView}
}

// Register registers the uplink views with the default exporter pipeline.
func Register() error {
	return view.Register(Views()...)
}

// Unregister removes the uplink views.
func Unregister() {
	view.Unregister(Views()...)
}

// RecordAttempt records one attempt. Nothing is exported until Register
// was called.
func RecordAttempt(ctx context.Context, result, stage string, latency time.Duration, payloadBytes int) error {
	ctx, err := tag.New(ctx, tag.Upsert(KeyResult, result), tag.Upsert(KeyStage, stage))
	if err != nil {
		return err
	}
	ms := []stats.Measurement{
		MAttempts.M(1),
		MLatencyMs.M(inMilliseconds(latency)),
	}
	if payloadBytes > 0 {
		ms = append(ms, MPayloadBytes.M(int64(payloadBytes)))
	}
	stats.Record(ctx, ms...)
	return nil
}

func inMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}
