package tasks

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrEmptyDescription is returned when creating a task with a blank
	// description.
	ErrEmptyDescription = errors.New("tasks: empty description")

	// ErrBadResponse is returned when a 2xx body cannot be decoded.
	ErrBadResponse = errors.New("tasks: malformed response")
)

// StatusError reports a non-2xx response from the task API.
type StatusError struct {
	Op         string
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("tasks: %s: unexpected status %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
}

// Temporary reports whether the status is a server-side or throttling error.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// IsNotFound reports whether err is a 404 StatusError.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
