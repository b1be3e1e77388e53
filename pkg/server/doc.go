// Package server provides the live session runtime for taskboard.
//
// A browser loads the server-rendered page, then opens one WebSocket to
// the live path. Each connection gets a Session that owns the root
// component, a renderer and the handler registry of the last render.
//
// # Session Lifecycle
//
// The session runs three goroutines:
//   - ReadLoop: receives JSON frames, rate-limits events and queues them
//   - EventLoop: runs handlers and dispatched callbacks, then re-renders
//   - WriteLoop: sends heartbeat pings
//
// Every state change happens on the EventLoop. Work started elsewhere
// (HTTP calls, timers) posts its result back with Session.Dispatch:
//
//	go func() {
//	    items, err := api.List(s.Context())
//	    s.Dispatch(func() {
//	        list.apply(items, err)
//	    })
//	}()
//
// After each loop turn the root is rendered again. When the HTML changed
// the session sends a render frame carrying a new sequence number. An event
// sent against an older frame still runs when its HID names the same element
// in both frames; otherwise it is dropped as stale. Input and change events
// always run so typing ahead of a render keeps every keystroke.
//
// # Wire Format
//
//	client -> server  {"t":"event","hid":"h3","ev":"click","v":"","seq":4}
//	client -> server  {"t":"ping"}
//	server -> client  {"t":"pong"}
//	server -> client  {"t":"render","html":"...","seq":5}
//	server -> client  {"t":"error","code":"rate_limited","message":"..."}
package server
