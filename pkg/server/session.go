package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/vango-dev/taskboard/pkg/middleware"
	"github.com/vango-dev/taskboard/pkg/render"
)

// Event is a browser event queued for the event loop.
type Event struct {
	HID   string
	Name  string
	Value string
	Seq   uint64
}

// frameHistory is how many recent renders keep their targets for
// resolving events sent against an older frame.
const frameHistory = 16

// Session is the per-connection state container.
type Session struct {
	ID        string
	CreatedAt time.Time

	// Connection
	conn       *websocket.Conn
	mu         sync.Mutex // Protects conn writes
	closed     atomic.Bool
	lastActive atomic.Int64

	// Rendering, owned by the event loop
	root      Component
	renderer  *render.Renderer
	lastHTML  string
	renderSeq atomic.Uint64
	frames    map[uint64]map[string]string // targets per recent render seq

	// Channels
	events     chan *Event
	dispatchCh chan func()
	done       chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	config  *SessionConfig
	logger  *slog.Logger
	limiter *rate.Limiter
	handler middleware.Handler
	metrics *middleware.Metrics

	closeMu sync.Mutex
	onClose []func()

	// Stats
	eventCount  atomic.Uint64
	renderCount atomic.Uint64
	bytesSent   atomic.Uint64
	bytesRecv   atomic.Uint64
}

// generateSessionID generates a cryptographically random session ID.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

// newSession creates a session for conn. conn may be nil for sessions that
// only render once, such as the page shell.
func newSession(conn *websocket.Conn, config *SessionConfig, logger *slog.Logger, metrics *middleware.Metrics, mws []middleware.Middleware) *Session {
	if config == nil {
		config = DefaultSessionConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	now := time.Now()
	id := generateSessionID()
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		ID:         id,
		CreatedAt:  now,
		conn:       conn,
		renderer:   render.NewRenderer(render.RendererConfig{}),
		frames:     make(map[uint64]map[string]string),
		events:     make(chan *Event, config.MaxEventQueue),
		dispatchCh: make(chan func(), config.MaxEventQueue),
		done:       make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
		config:     config,
		logger:     logger.With("session_id", id),
		metrics:    metrics,
	}
	s.lastActive.Store(now.UnixNano())

	if config.EventsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(config.EventsPerSecond), config.EventBurst)
	}

	chain := make([]middleware.Middleware, 0, len(mws)+1)
	chain = append(chain, mws...)
	chain = append(chain, middleware.Recover())
	s.handler = middleware.Chain(s.invoke, chain...)
	return s
}

// MountRoot sets the root component. It must be called before Start.
func (s *Session) MountRoot(root Component) {
	s.root = root
}

// Context returns a context cancelled when the session closes. Use it for
// work started on behalf of the session.
func (s *Session) Context() context.Context {
	return s.ctx
}

// OnClose registers fn to run once when the session closes. If the session
// is already closed fn runs immediately.
func (s *Session) OnClose(fn func()) {
	if fn == nil {
		return
	}
	s.closeMu.Lock()
	if s.closed.Load() {
		s.closeMu.Unlock()
		fn()
		return
	}
	s.onClose = append(s.onClose, fn)
	s.closeMu.Unlock()
}

// Start starts all session loops.
func (s *Session) Start() {
	go s.ReadLoop()
	go s.WriteLoop()
	go s.EventLoop()
}

// EventLoop mounts the root, sends the first render, then processes queued
// events and dispatched callbacks until the session closes.
func (s *Session) EventLoop() {
	s.mount()

	for {
		select {
		case event := <-s.events:
			s.handleEvent(event)

		case fn := <-s.dispatchCh:
			s.executeDispatch(fn)

		case <-s.done:
			return
		}
	}
}

func (s *Session) mount() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("mount panic", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	if m, ok := s.root.(Mounter); ok {
		m.Mount()
	}
	s.render()
}

// handleEvent runs the handler bound to the event target and re-renders.
func (s *Session) handleEvent(event *Event) {
	s.eventCount.Add(1)

	if err := s.checkSeq(event); err != nil {
		s.logger.Debug("dropping event", "hid", event.HID, "event", event.Name, "error", err)
		s.metrics.RecordDropped("stale")
		return
	}

	err := s.handler(s.ctx, middleware.Event{
		SessionID: s.ID,
		HID:       event.HID,
		Name:      event.Name,
		Value:     event.Value,
	})
	if err != nil {
		var pe *middleware.PanicError
		switch {
		case errors.As(err, &pe):
			s.logger.Error("handler panic", "hid", event.HID, "event", event.Name, "panic", pe.Value, "stack", string(pe.Stack))
			s.sendError(CodeHandlerError, "event handler failed")
		case errors.Is(err, ErrHandlerNotFound):
			s.logger.Debug("no handler for event", "hid", event.HID, "event", event.Name)
			s.metrics.RecordDropped("no_handler")
		default:
			s.logger.Warn("event handler error", "hid", event.HID, "event", event.Name, "error", err)
		}
	}

	s.render()
}

// checkSeq returns ErrStaleEvent when an event sent against an older frame
// no longer addresses the element it was aimed at. Value events always pass
// so no keystroke is lost; Lookup rejects them when the handler is gone.
func (s *Session) checkSeq(event *Event) error {
	current := s.renderSeq.Load()
	if event.Seq >= current || event.Name == "input" || event.Name == "change" {
		return nil
	}
	then, ok := s.frames[event.Seq][event.HID]
	if !ok {
		return fmt.Errorf("%w: seq %d is not in the last %d frames", ErrStaleEvent, event.Seq, frameHistory)
	}
	if now, ok := s.renderer.Target(event.HID); !ok || now != then {
		return fmt.Errorf("%w: %s moved since seq %d (now %d)", ErrStaleEvent, event.HID, event.Seq, current)
	}
	return nil
}

// invoke calls the handler registered by the last render.
func (s *Session) invoke(_ context.Context, ev middleware.Event) error {
	h, ok := s.renderer.Lookup(ev.HID, ev.Name)
	if !ok || h == nil {
		return ErrHandlerNotFound
	}
	switch fn := h.(type) {
	case func():
		fn()
	case func(string):
		fn(ev.Value)
	default:
		return &HandlerTypeError{HID: ev.HID, Event: ev.Name, Handler: h}
	}
	return nil
}

// executeDispatch runs a dispatched function with panic recovery, then
// re-renders.
func (s *Session) executeDispatch(fn func()) {
	func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("dispatch panic",
					"panic", r,
					"stack", string(debug.Stack()))
			}
		}()
		fn()
	}()

	s.render()
}

// render renders the root and sends a frame when the HTML changed.
func (s *Session) render() {
	if s.root == nil || s.closed.Load() {
		return
	}
	html, err := s.renderer.RenderToString(s.root.Render())
	if err != nil {
		s.logger.Error("render error", "error", err)
		return
	}
	if html == s.lastHTML {
		return
	}
	s.lastHTML = html
	seq := s.renderSeq.Add(1)
	s.frames[seq] = s.renderer.Targets()
	delete(s.frames, seq-frameHistory)
	s.renderCount.Add(1)
	s.metrics.RecordRender(len(html))
	s.sendFrame(RenderFrame{Type: FrameRender, HTML: html, Seq: seq})
}

// LastHTML returns the HTML of the last render.
func (s *Session) LastHTML() string {
	return s.lastHTML
}

// RenderSeq returns the sequence number of the last render frame.
func (s *Session) RenderSeq() uint64 {
	return s.renderSeq.Load()
}

// QueueEvent queues an event for processing.
func (s *Session) QueueEvent(event *Event) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	select {
	case s.events <- event:
		return nil
	default:
		s.logger.Warn("event queue full, dropping event", "hid", event.HID)
		s.metrics.RecordDropped("queue_full")
		return ErrEventQueueFull
	}
}

// allowEvent applies the per-session rate limit.
func (s *Session) allowEvent() bool {
	return s.limiter == nil || s.limiter.Allow()
}

// Dispatch queues a function to run on the session's event loop.
// It is safe to call from any goroutine except the event loop itself. When
// the queue is full Dispatch blocks until the loop drains it, so timer
// expiries and API results are never lost. The session re-renders after fn
// returns. Calls on a closed session are discarded.
func (s *Session) Dispatch(fn func()) {
	if s.closed.Load() {
		return
	}
	select {
	case s.dispatchCh <- fn:
		return
	case <-s.done:
		return
	default:
	}
	s.logger.Debug("dispatch queue full, waiting for event loop")
	select {
	case s.dispatchCh <- fn:
	case <-s.done:
	}
}

// Close gracefully closes the session. Close hooks run once, in
// registration order.
func (s *Session) Close() {
	s.closeMu.Lock()
	if s.closed.Swap(true) {
		s.closeMu.Unlock()
		return
	}
	hooks := s.onClose
	s.onClose = nil
	s.closeMu.Unlock()

	close(s.done)
	s.cancel()

	for _, fn := range hooks {
		s.runHook(fn)
	}

	if s.conn != nil {
		_ = s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		_ = s.conn.Close()

		s.logger.Info("session closed",
			"events", s.eventCount.Load(),
			"renders", s.renderCount.Load(),
			"bytes_sent", s.bytesSent.Load(),
			"bytes_recv", s.bytesRecv.Load())
	}
}

func (s *Session) runHook(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("close hook panic", "panic", r)
		}
	}()
	fn()
}

// IsClosed returns whether the session is closed.
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done returns a channel that's closed when the session is done.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Logger returns the session logger.
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// Config returns the session configuration.
func (s *Session) Config() *SessionConfig {
	return s.config
}

// LastActive returns the time of the last message from the client.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

func (s *Session) touch(n int) {
	s.lastActive.Store(time.Now().UnixNano())
	s.bytesRecv.Add(uint64(n))
}

// SessionStats contains session statistics.
type SessionStats struct {
	ID         string
	CreatedAt  time.Time
	LastActive time.Time
	Events     uint64
	Renders    uint64
	BytesSent  uint64
	BytesRecv  uint64
}

// Stats returns session statistics.
func (s *Session) Stats() SessionStats {
	return SessionStats{
		ID:         s.ID,
		CreatedAt:  s.CreatedAt,
		LastActive: s.LastActive(),
		Events:     s.eventCount.Load(),
		Renders:    s.renderCount.Load(),
		BytesSent:  s.bytesSent.Load(),
		BytesRecv:  s.bytesRecv.Load(),
	}
}
