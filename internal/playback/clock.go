package playback

import "time"

// Clock schedules deferred callbacks. The default implementation wraps
// time.AfterFunc; tests substitute a simulated clock to drive the debounce
// and grace windows deterministically.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancelable handle to a scheduled callback.
type Timer interface {
	// Stop cancels the timer if it has not fired yet and reports whether it
	// did. Stopping an already-fired timer is a no-op.
	Stop() bool
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// NewRealClock returns a Clock backed by the runtime timer wheel.
func NewRealClock() Clock {
	return realClock{}
}
