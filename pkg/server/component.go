package server

import "github.com/vango-dev/taskboard/pkg/vdom"

// Component is the root of a session's UI tree.
type Component = vdom.Component

// RootFunc builds the root component for a session. It runs once per
// session, on the goroutine that accepted the connection.
type RootFunc func(s *Session) Component

// Mounter is implemented by root components that start work when a live
// session begins, such as loading data. Mount runs on the event loop
// before the first render frame is sent. It is not called for the
// server-rendered page shell.
type Mounter interface {
	Mount()
}
