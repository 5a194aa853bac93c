package log

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestFileLoggerCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "device.ulog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("log file was not created")
	}
}

func TestFileLoggerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.ulog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	ts := time.Date(2026, 3, 1, 12, 0, 0, 123, time.UTC)
	logger.Log(Event{
		Timestamp:    ts,
		ConnectionID: "conn-1",
		DeviceID:     "device-0001",
		Category:     CategoryAttempt,
		Attempt: &AttemptEvent{
			Result:     "OK",
			Stage:      StageRequest,
			StatusCode: 204,
			Duration:   150 * time.Millisecond,
		},
	})
	logger.Log(NewStateChange(StateEntityConnection, "DISCONNECTED", "CONNECTED", "created"))
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	first, err := r.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if !first.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", first.Timestamp, ts)
	}
	if first.Attempt == nil || first.Attempt.StatusCode != 204 || first.Attempt.Result != "OK" {
		t.Errorf("Attempt = %+v", first.Attempt)
	}
	if first.Attempt.Duration != 150*time.Millisecond {
		t.Errorf("Duration = %v", first.Attempt.Duration)
	}

	second, err := r.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if second.StateChange == nil || second.StateChange.NewState != "CONNECTED" {
		t.Errorf("StateChange = %+v", second.StateChange)
	}

	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestFileLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.ulog")

	for i := 0; i < 2; i++ {
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		logger.Log(NewStateChange(StateEntityScheduler, "IDLE", "RUNNING", ""))
		logger.Close()
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	count := 0
	for {
		if _, err := r.Next(); err != nil {
			break
		}
		count++
	}
	if count != 2 {
		t.Errorf("read %d events, want 2", count)
	}
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.ulog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				logger.Log(NewStateChange(StateEntityTimeSync, "UNSYNCED", "SYNCED", ""))
			}
		}()
	}
	wg.Wait()
	logger.Close()

	if logger.Dropped() != 0 {
		t.Errorf("Dropped = %d", logger.Dropped())
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	count := 0
	for {
		if _, err := r.Next(); err != nil {
			break
		}
		count++
	}
	if count != 200 {
		t.Errorf("read %d events, want 200", count)
	}
}

func TestFileLoggerCloseIdempotent(t *testing.T) {
	logger, err := NewFileLogger(filepath.Join(t.TempDir(), "device.ulog"))
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close returned %v", err)
	}

	// Logging after close is ignored.
	logger.Log(NewStateChange(StateEntityConnection, "", "CONNECTED", ""))
}
