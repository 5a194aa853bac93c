//go:build !linux

package scheduler

func applyPriority(int) error {
	return nil
}
