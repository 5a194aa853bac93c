package scheduler

// niceFor maps 0..MaxPriority onto nice values 19..-20.
// The default priority maps to 0.
func niceFor(priority int) int {
	if priority < 0 {
		priority = 0
	}
	if priority > MaxPriority {
		priority = MaxPriority
	}
	return 19 - priority*39/MaxPriority
}
