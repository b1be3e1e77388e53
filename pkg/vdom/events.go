package vdom

// event creates an EventHandler with the given name and handler.
// The name is prefixed with "on" (e.g., "click" becomes "onclick").
func event(name string, handler any) EventHandler {
	return EventHandler{Event: "on" + name, Handler: handler}
}

// OnClick handles click events. The handler is a func().
func OnClick(handler func()) EventHandler { return event("click", handler) }

// OnInput handles input events. The handler receives the element value.
func OnInput(handler func(string)) EventHandler { return event("input", handler) }

// OnChange handles change events. The handler receives the element value.
func OnChange(handler func(string)) EventHandler { return event("change", handler) }

// OnSubmit handles form submit events.
func OnSubmit(handler func()) EventHandler { return event("submit", handler) }

// OnKeyDown handles keydown events. The handler receives the key name.
func OnKeyDown(handler func(string)) EventHandler { return event("keydown", handler) }
