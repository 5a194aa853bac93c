package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/weareqrystal/uplink-sdks/pkg/log"
)

func TestStatsSample(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"Total Events: 4",
		"ATTEMPT:",
		"STATE:",
		"ERROR:",
		"Attempts: 2 (reused connection: 1)",
		"OK:",
		"TRANSPORT_ERROR:",
		"Failures by Stage:",
		"REQUEST:",
		"Request Latency: mean 100.000ms, max 120.000ms (2 requests)",
		"Connections: 2",
		"[abc12345] 3 events, 1 attempts",
		"Device: device-0001",
		"Errors: 1 (stale keep-alive: 1)",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestStatsClockLosses(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Category: log.CategoryState, StateChange: &log.StateChangeEvent{
			Entity: log.StateEntityTimeSync, OldState: "UNSYNCED", NewState: "SYNCED",
		}},
		{Timestamp: ts.Add(time.Hour), Category: log.CategoryState, StateChange: &log.StateChangeEvent{
			Entity: log.StateEntityTimeSync, OldState: "SYNCED", NewState: "UNSYNCED",
		}},
		{Timestamp: ts.Add(2 * time.Hour), Category: log.CategoryState, StateChange: &log.StateChangeEvent{
			Entity: log.StateEntityConnection, OldState: "CONNECTED", NewState: "DISCONNECTED",
		}},
	}

	var buf bytes.Buffer
	if err := RunStats(createTestLogFile(t, events), &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Clock sync lost: 1 times") {
		t.Errorf("expected one clock loss:\n%s", output)
	}
	if !strings.Contains(output, "Duration:   2h0m0s") {
		t.Errorf("expected 2h time range:\n%s", output)
	}
	if !strings.Contains(output, "Connections: 0") {
		t.Errorf("events without connection ID should not create connections:\n%s", output)
	}
}

func TestStatsFailureStages(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	s := newStats()
	s.add(log.Event{Timestamp: ts, Category: log.CategoryAttempt, Attempt: &log.AttemptEvent{Result: "NO_LINK", Stage: log.StageLink}})
	s.add(log.Event{Timestamp: ts, Category: log.CategoryAttempt, Attempt: &log.AttemptEvent{Result: "NO_LINK", Stage: log.StageLink}})
	s.add(log.Event{Timestamp: ts, Category: log.CategoryAttempt, Attempt: &log.AttemptEvent{Result: "INVALID_TOKEN", Stage: log.StageCredentials}})

	if s.FailuresByStage[log.StageLink] != 2 {
		t.Errorf("expected 2 link failures, got %d", s.FailuresByStage[log.StageLink])
	}
	if s.FailuresByStage[log.StageCredentials] != 1 {
		t.Errorf("expected 1 credential failure, got %d", s.FailuresByStage[log.StageCredentials])
	}
	if s.Latency.Count != 0 {
		t.Errorf("pre-request failures should not count toward latency, got %d", s.Latency.Count)
	}
	if s.Latency.Mean() != 0 {
		t.Errorf("expected zero mean, got %v", s.Latency.Mean())
	}
}

func TestStatsEmptyFile(t *testing.T) {
	var buf bytes.Buffer
	if err := RunStats(createTestLogFile(t, nil), &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Total Events: 0") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}
