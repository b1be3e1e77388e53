// Package vtest provides testing helpers for taskboard components.
//
// Components are plain Go values that render a vdom tree, so most tests
// render, assert on the HTML, fire a handler, and render again:
//
//	list := todo.New(api, host)
//	vtest.ExpectContains(t, list.Render(), "Todo List")
//	vtest.Click(t, list.Render(), "Add")
//	vtest.ExpectContains(t, host.Render(), "Failed to add task")
//
// # Finding Elements
//
// Click, Input and Change locate an interactive element by a label: its
// aria-label, its placeholder, its id, or its visible text. The first match
// in document order wins.
package vtest
