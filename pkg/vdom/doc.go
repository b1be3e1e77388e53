// Package vdom provides the in-memory UI tree rendered by taskboard.
//
// All UI state lives on the server. Components build a VNode tree on every
// render, the render package turns it into HTML, and the live server pushes
// the result to the browser after each event-loop turn.
//
// # Core Types
//
// VNode is the fundamental building block representing elements, text,
// fragments, components, and raw HTML. Props holds attributes and event
// handlers. Attr and EventHandler are used to build Props.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("card"), ID("main"),
//	    H1(Text("Title")),
//	    P(Text("Content")),
//	    Button(OnClick(handler), Text("Go")),
//	)
//
// Arguments may be nil, which makes conditional attributes and children
// easy to express with If and When.
package vdom
