package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// RunSummary is the persisted uplink history of a device.
type RunSummary struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `json:"saved_at"`

	// DeviceID is the device the counters belong to.
	DeviceID string `json:"device_id,omitempty"`

	// Counts holds the number of attempts per result name.
	Counts map[string]uint64 `json:"counts,omitempty"`

	// LastResult is the name of the most recent result.
	LastResult string `json:"last_result,omitempty"`

	// LastAttemptAt is when the most recent attempt started.
	LastAttemptAt time.Time `json:"last_attempt_at,omitempty"`

	// LastOKAt is when the server last accepted a heartbeat.
	LastOKAt time.Time `json:"last_ok_at,omitempty"`

	// ConsecutiveFailures counts non-OK results since the last OK.
	ConsecutiveFailures uint64 `json:"consecutive_failures"`
}

// Observe folds one attempt into the summary.
func (s *RunSummary) Observe(result string, ok bool, at time.Time) {
	if s.Counts == nil {
		s.Counts = make(map[string]uint64)
	}
	s.Counts[result]++
	s.LastResult = result
	s.LastAttemptAt = at
	if ok {
		s.LastOKAt = at
		s.ConsecutiveFailures = 0
	} else {
		s.ConsecutiveFailures++
	}
}

// Total returns the number of observed attempts.
func (s *RunSummary) Total() uint64 {
	var n uint64
	for _, c := range s.Counts {
		n += c
	}
	return n
}

// StateStore manages persistence of a RunSummary to a JSON file.
type StateStore struct {
	mu   sync.Mutex
	path string
}

// NewStateStore creates a new state store.
func NewStateStore(path string) *StateStore {
	return &StateStore{path: path}
}

// Path returns the file path.
func (s *StateStore) Path() string {
	return s.path
}

// Save persists the summary to disk. The file is replaced atomically.
func (s *StateStore) Save(state *RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Ensure parent directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	state.Version = StateVersion
	state.SavedAt = time.Now()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Load reads the summary from disk.
// Returns nil, nil if the file doesn't exist (empty state).
func (s *StateStore) Load() (*RunSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &RunSummary{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}

	return state, nil
}

// Clear removes the state file.
func (s *StateStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
