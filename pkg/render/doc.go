// Package render turns vdom trees into HTML.
//
// The Renderer walks a VNode tree, escapes text and attribute values, and
// assigns a hydration ID (data-hid) to every element that carries event
// handlers. The handlers themselves are never serialised; they are collected
// into a registry keyed by HID so the live server can route browser events
// back to Go functions.
//
// HIDs are assigned in document order starting at h1 for every render, so
// two renders of the same tree produce identical markup.
package render
