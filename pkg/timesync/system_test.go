package timesync

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystemSourceSyncedError(t *testing.T) {
	s := &SystemSource{synced: func() (bool, error) { return false, errors.New("EPERM") }}
	assert.False(t, s.Synced())

	s.synced = func() (bool, error) { return true, nil }
	assert.True(t, s.Synced())
}

func TestSystemSourceNow(t *testing.T) {
	fixed := time.Unix(int64(MinEpoch), 0)
	s := &SystemSource{now: func() time.Time { return fixed }}
	assert.Equal(t, fixed, s.Now())
}

func TestSystemSourceStartSyncNoCommand(t *testing.T) {
	s := NewSystemSource(nil)
	assert.NoError(t, s.StartSync())
}

func TestSystemSourceStartSyncCommandFails(t *testing.T) {
	s := &SystemSource{StartCommand: []string{"/nonexistent/ntp-start"}}
	assert.Error(t, s.StartSync())
}
