package domain

import "github.com/jonboulle/clockwork"

// clock is the package-level time source. Dataset timestamps come from
// the files themselves; the clock only feeds wall-time concerns (store
// load time, render timing), and tests freeze it via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Clock returns the active time source.
func Clock() clockwork.Clock {
	return clock
}
