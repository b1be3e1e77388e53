package toast

import "time"

// Timer is a cancellable pending callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped the timer; false means it already fired or was stopped.
	Stop() bool
}

// Scheduler creates timers. Implementations must not invoke fn from inside
// AfterFunc itself.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// SystemScheduler runs callbacks on a runtime timer goroutine.
type SystemScheduler struct{}

// AfterFunc implements Scheduler.
func (SystemScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// LoopScheduler delivers timer callbacks through Dispatch, which is expected
// to run them on a single event loop (for example Session.Dispatch). That
// keeps every notification state change on the loop that renders it.
type LoopScheduler struct {
	Dispatch func(func())
}

// AfterFunc implements Scheduler.
func (s LoopScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	if s.Dispatch == nil {
		return time.AfterFunc(d, fn)
	}
	return time.AfterFunc(d, func() { s.Dispatch(fn) })
}
