package toast

import (
	"errors"
	"fmt"
)

var (
	// ErrNoHost is returned when a notifier is requested from a context that
	// was never given one.
	ErrNoHost = errors.New("toast: no notification host in scope")

	// ErrHostClosed is raised by Notify after the host has been closed.
	ErrHostClosed = errors.New("toast: host closed")

	// ErrEmptyDescription is raised by Notify for a request without a message.
	ErrEmptyDescription = errors.New("toast: request has no description")
)

// UsageError reports a wiring mistake. It is raised by panic from Notify and
// MustFrom so integration mistakes surface immediately.
type UsageError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *UsageError) Error() string {
	return fmt.Sprintf("toast: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying sentinel for errors.Is.
func (e *UsageError) Unwrap() error {
	return e.Err
}
