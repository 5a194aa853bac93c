//go:build linux

package scheduler

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// applyPriority pins the calling goroutine to its OS thread and sets the
// thread's nice value. A thread whose niceness was changed is never
// unlocked, so it exits with the goroutine instead of rejoining the pool.
func applyPriority(priority int) error {
	nice := niceFor(priority)
	if nice == 0 {
		return nil
	}
	runtime.LockOSThread()
	if err := unix.Setpriority(unix.PRIO_PROCESS, unix.Gettid(), nice); err != nil {
		runtime.UnlockOSThread()
		return err
	}
	return nil
}
