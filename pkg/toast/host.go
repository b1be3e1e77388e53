package toast

import (
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/taskboard/pkg/vdom"
)

// Notifier is the capability handed to code that wants to show feedback.
type Notifier interface {
	Notify(req Request)
}

// EventType distinguishes lifecycle events delivered to observers.
type EventType uint8

const (
	EventShown EventType = iota
	EventDismissed
)

// Event describes a notification lifecycle change.
type Event struct {
	Type    EventType
	ID      uint64
	Request Request
	Reason  Reason // set for EventDismissed
}

// Observer receives lifecycle events. Observers run synchronously with no
// host lock held and must not block.
type Observer func(Event)

// HostOption configures a Host.
type HostOption func(*Host)

// WithScheduler sets the scheduler used for auto-dismiss timers.
// Default: SystemScheduler.
func WithScheduler(s Scheduler) HostOption {
	return func(h *Host) {
		if s != nil {
			h.sched = s
		}
	}
}

// WithDefaultDuration sets the duration used for requests without one.
// Default: DefaultDuration.
func WithDefaultDuration(d time.Duration) HostOption {
	return func(h *Host) {
		if d > 0 {
			h.defaultDuration = d
		}
	}
}

// WithLogger sets the host logger.
func WithLogger(logger *slog.Logger) HostOption {
	return func(h *Host) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithObserver registers a lifecycle observer.
func WithObserver(o Observer) HostOption {
	return func(h *Host) {
		if o != nil {
			h.observers = append(h.observers, o)
		}
	}
}

// Host holds at most one live notification for a UI tree.
type Host struct {
	sched     Scheduler
	logger    *slog.Logger
	observers []Observer

	mu              sync.Mutex
	defaultDuration time.Duration
	current         *Center
	nextID          uint64
	closed          bool
}

var _ Notifier = (*Host)(nil)

// NewHost creates an empty host.
func NewHost(opts ...HostOption) *Host {
	h := &Host{
		sched:           SystemScheduler{},
		logger:          slog.Default().With("component", "toast"),
		defaultDuration: DefaultDuration,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Notify shows req, superseding any live notification. It panics with a
// *UsageError if req has no description or the host was closed.
func (h *Host) Notify(req Request) {
	if req.Description == "" {
		panic(&UsageError{Op: "Notify", Err: ErrEmptyDescription})
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		panic(&UsageError{Op: "Notify", Err: ErrHostClosed})
	}
	req = req.withDefaults(h.defaultDuration)
	h.nextID++
	c := newCenter(h.nextID, req, h.sched, nil)
	c.onDismiss = func() { h.complete(c) }

	prev := h.current
	h.current = c
	superseded := prev != nil && prev.finish(ReasonSuperseded)
	h.mu.Unlock()

	c.Activate()

	if superseded {
		h.logger.Debug("notification superseded", "id", prev.id, "by", c.id)
		h.emit(Event{Type: EventDismissed, ID: prev.id, Request: prev.req, Reason: ReasonSuperseded})
	}
	h.logger.Debug("notification shown", "id", c.id, "kind", string(req.Kind), "duration", req.Duration)
	h.emit(Event{Type: EventShown, ID: c.id, Request: req})
}

// complete runs when a center is dismissed by timeout or by the user.
// The slot is cleared only if that center is still the live one.
func (h *Host) complete(c *Center) {
	h.mu.Lock()
	if h.current == c {
		h.current = nil
	}
	h.mu.Unlock()

	reason := c.Reason()
	h.logger.Debug("notification dismissed", "id", c.id, "reason", reason.String())

	if c.req.OnDismiss != nil {
		c.req.OnDismiss()
	}
	h.emit(Event{Type: EventDismissed, ID: c.id, Request: c.req, Reason: reason})
}

// Dismiss closes the live notification as a manual dismissal.
// It does nothing when the slot is empty.
func (h *Host) Dismiss() {
	h.mu.Lock()
	c := h.current
	h.mu.Unlock()
	if c != nil {
		c.Dismiss()
	}
}

// Current returns the live request, if any.
func (h *Host) Current() (Request, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current == nil {
		return Request{}, false
	}
	return h.current.req, true
}

// Center returns the live center, or nil.
func (h *Host) Center() *Center {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Active reports whether a notification is showing.
func (h *Host) Active() bool {
	_, ok := h.Current()
	return ok
}

// SetDefaultDuration changes the duration applied to later requests that do
// not specify one. Non-positive values are ignored.
func (h *Host) SetDefaultDuration(d time.Duration) {
	if d <= 0 {
		return
	}
	h.mu.Lock()
	h.defaultDuration = d
	h.mu.Unlock()
}

// Render returns the overlay for the live notification, or nil.
func (h *Host) Render() *vdom.VNode {
	h.mu.Lock()
	c := h.current
	h.mu.Unlock()
	if c == nil {
		return nil
	}
	return c.Render()
}

// Close tears the host down: the live notification is removed, its timer
// cancelled, and later Notify calls panic. Close is idempotent.
func (h *Host) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	c := h.current
	h.current = nil
	torn := c != nil && c.finish(ReasonTeardown)
	h.mu.Unlock()

	if torn {
		h.emit(Event{Type: EventDismissed, ID: c.id, Request: c.req, Reason: ReasonTeardown})
	}
}

func (h *Host) emit(ev Event) {
	for _, o := range h.observers {
		o(ev)
	}
}
