//go:build linux

package timesync

import (
	"golang.org/x/sys/unix"
)

// adjtimex(2) constants.
const (
	staUnsync = 0x0040 // STA_UNSYNC
	timeError = 5      // TIME_ERROR
)

func kernelSynced() (bool, error) {
	var tx unix.Timex
	state, err := unix.Adjtimex(&tx)
	if err != nil {
		return false, err
	}
	if state == timeError {
		return false, nil
	}
	return tx.Status&staUnsync == 0, nil
}
