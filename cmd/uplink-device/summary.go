package main

import (
	"log/slog"
	"sync"
	"time"

	"github.com/weareqrystal/uplink-sdks/pkg/persistence"
	"github.com/weareqrystal/uplink-sdks/pkg/uplink"
)

// tracker folds attempt results into a RunSummary and persists it.
type tracker struct {
	mu      sync.Mutex
	store   *persistence.StateStore
	summary *persistence.RunSummary
	logger  *slog.Logger
	now     func() time.Time
}

// newTracker loads the previous summary from store. A nil store keeps
// the summary in memory only.
func newTracker(store *persistence.StateStore, logger *slog.Logger) *tracker {
	t := &tracker{
		store:   store,
		summary: &persistence.RunSummary{},
		logger:  logger,
		now:     time.Now,
	}
	if store == nil {
		return t
	}

	prev, err := store.Load()
	switch {
	case err != nil:
		logger.Warn("ignoring unreadable run summary", "path", store.Path(), "error", err)
	case prev != nil:
		t.summary = prev
		logger.Info("loaded run summary", "path", store.Path(), "attempts", prev.Total())
	}
	return t
}

// observe records one result and saves the summary.
func (t *tracker) observe(r uplink.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.summary.Observe(r.String(), r == uplink.ResultOK, t.now())
	if t.store == nil {
		return
	}
	if err := t.store.Save(t.summary); err != nil {
		t.logger.Warn("failed to save run summary", "error", err)
	}
}

// setDevice records the device ID the summary belongs to.
func (t *tracker) setDevice(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.summary.DeviceID = id
}

// snapshot returns a copy of the current summary.
func (t *tracker) snapshot() *persistence.RunSummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	cp := *t.summary
	cp.Counts = make(map[string]uint64, len(t.summary.Counts))
	for k, v := range t.summary.Counts {
		cp.Counts[k] = v
	}
	return &cp
}

// lastResult returns the most recent result name, or "".
func (t *tracker) lastResult() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.summary.LastResult
}
