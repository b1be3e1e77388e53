package server

import (
	"errors"
	"fmt"
)

// Sentinel errors for common session and server error conditions.
var (
	// ErrSessionClosed is returned when an operation is attempted on a closed session.
	ErrSessionClosed = errors.New("server: session closed")

	// ErrHandlerNotFound is returned when no handler is registered for an HID and event.
	ErrHandlerNotFound = errors.New("server: handler not found")

	// ErrEventQueueFull is returned when the event queue is full and an event is dropped.
	ErrEventQueueFull = errors.New("server: event queue full")

	// ErrStaleEvent is returned for events sent against an older render whose
	// target has since moved or been forgotten.
	ErrStaleEvent = errors.New("server: stale event")

	// ErrRateLimited is returned when a session exceeds its event rate.
	ErrRateLimited = errors.New("server: rate limited")

	// ErrMaxSessionsReached is returned when the maximum number of sessions is reached.
	ErrMaxSessionsReached = errors.New("server: max sessions reached")

	// ErrNoRoot is returned when a session is started without a root component.
	ErrNoRoot = errors.New("server: no root component")
)

// SessionError wraps an error with session context for debugging.
type SessionError struct {
	SessionID string
	Op        string // Operation that failed
	Err       error  // Underlying error
}

// Error returns the error message with session context.
func (e *SessionError) Error() string {
	if e.SessionID == "" {
		return fmt.Sprintf("server: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("server: session %s: %s: %v", e.SessionID, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *SessionError) Unwrap() error {
	return e.Err
}

// NewSessionError creates a new SessionError.
func NewSessionError(sessionID, op string, err error) *SessionError {
	return &SessionError{
		SessionID: sessionID,
		Op:        op,
		Err:       err,
	}
}

// HandlerTypeError is returned when a bound handler has a signature the
// session cannot call for the event.
type HandlerTypeError struct {
	HID     string
	Event   string
	Handler any
}

// Error returns the error message.
func (e *HandlerTypeError) Error() string {
	return fmt.Sprintf("server: handler for %s on %s has unsupported type %T", e.Event, e.HID, e.Handler)
}
