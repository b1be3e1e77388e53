// Package app assembles the taskboard UI for each live session: a todo
// list backed by the task API and the notification host that reports its
// failures.
package app
