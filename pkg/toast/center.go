package toast

import (
	"sync"
	"time"
)

// State is the visibility state of a Center.
type State uint8

const (
	StateVisible State = iota
	StateDismissed
)

// String returns the state name.
func (s State) String() string {
	if s == StateVisible {
		return "visible"
	}
	return "dismissed"
}

// Reason records why a Center left the Visible state.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonTimeout
	ReasonManual
	ReasonSuperseded
	ReasonTeardown
)

// String returns the reason name, used as a metrics label.
func (r Reason) String() string {
	switch r {
	case ReasonTimeout:
		return "timeout"
	case ReasonManual:
		return "manual"
	case ReasonSuperseded:
		return "superseded"
	case ReasonTeardown:
		return "teardown"
	default:
		return "none"
	}
}

// Completed reports whether the reason runs the completion callback.
func (r Reason) Completed() bool {
	return r == ReasonTimeout || r == ReasonManual
}

// Center renders one notification and owns its visible/dismissed lifecycle.
// A Center is used for exactly one activation and is never reused.
type Center struct {
	id        uint64
	req       Request
	sched     Scheduler
	onDismiss func()

	mu     sync.Mutex
	state  State
	reason Reason
	timer  Timer
}

// NewCenter creates a Visible center for req. Activate starts its countdown.
// onDismiss may be nil.
func NewCenter(req Request, sched Scheduler, onDismiss func()) *Center {
	return newCenter(0, req.withDefaults(DefaultDuration), sched, onDismiss)
}

func newCenter(id uint64, req Request, sched Scheduler, onDismiss func()) *Center {
	if sched == nil {
		sched = SystemScheduler{}
	}
	return &Center{
		id:        id,
		req:       req,
		sched:     sched,
		onDismiss: onDismiss,
		state:     StateVisible,
	}
}

// Activate schedules the auto-dismiss timer. Calling it again, or after the
// center was dismissed, does nothing.
func (c *Center) Activate() {
	c.mu.Lock()
	if c.state != StateVisible || c.timer != nil {
		c.mu.Unlock()
		return
	}
	d := c.req.Duration
	c.mu.Unlock()

	t := c.sched.AfterFunc(d, c.expire)

	c.mu.Lock()
	if c.state != StateVisible || c.timer != nil {
		c.mu.Unlock()
		t.Stop()
		return
	}
	c.timer = t
	c.mu.Unlock()
}

// Dismiss closes the notification as if the user clicked its close button.
// Only the first call has any effect.
func (c *Center) Dismiss() {
	c.finish(ReasonManual)
}

// Stop tears the center down without running the completion callback.
// It is used when the owning view goes away.
func (c *Center) Stop() {
	c.finish(ReasonTeardown)
}

func (c *Center) expire() {
	c.finish(ReasonTimeout)
}

// finish moves the center to Dismissed. The timer is released before any
// other state changes and the callback runs with no lock held.
func (c *Center) finish(reason Reason) bool {
	c.mu.Lock()
	if c.state != StateVisible {
		c.mu.Unlock()
		return false
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.state = StateDismissed
	c.reason = reason
	cb := c.onDismiss
	c.mu.Unlock()

	if reason.Completed() && cb != nil {
		cb()
	}
	return true
}

// ID returns the host-assigned sequence number (zero for standalone centers).
func (c *Center) ID() uint64 { return c.id }

// Request returns the normalised request this center displays.
func (c *Center) Request() Request { return c.req }

// Duration returns the auto-dismiss delay.
func (c *Center) Duration() time.Duration { return c.req.Duration }

// State returns the current state.
func (c *Center) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Reason returns why the center was dismissed, or ReasonNone while visible.
func (c *Center) Reason() Reason {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reason
}

// Visible reports whether the center is still showing.
func (c *Center) Visible() bool {
	return c.State() == StateVisible
}
