package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"
)

// Event is a browser event routed to a bound handler.
type Event struct {
	SessionID string
	HID       string
	Name      string
	Value     string
}

// Handler processes an event.
type Handler func(ctx context.Context, ev Event) error

// Middleware wraps a Handler.
type Middleware func(next Handler) Handler

// Chain wraps h with mws. The first middleware is the outermost.
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			h = mws[i](h)
		}
	}
	return h
}

// PanicError is returned by Recover when a handler panics.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panic: %v", e.Value)
}

// Recover converts handler panics into *PanicError.
func Recover() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, ev Event) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &PanicError{Value: r, Stack: debug.Stack()}
				}
			}()
			return next(ctx, ev)
		}
	}
}

// Logging logs each event at debug level and failures at error level.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Handler) Handler {
		return func(ctx context.Context, ev Event) error {
			start := time.Now()
			err := next(ctx, ev)
			attrs := []any{
				"session_id", ev.SessionID,
				"hid", ev.HID,
				"event", ev.Name,
				"duration", time.Since(start),
			}
			if err != nil {
				if pe, ok := err.(*PanicError); ok {
					attrs = append(attrs, "stack", string(pe.Stack))
				}
				logger.ErrorContext(ctx, "event handler failed", append(attrs, "error", err)...)
				return err
			}
			logger.DebugContext(ctx, "event handled", attrs...)
			return nil
		}
	}
}
