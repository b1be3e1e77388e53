package vdom

import (
	"fmt"
	"sort"
	"strings"
)

// VKind says what a VNode holds.
type VKind uint8

const (
	KindElement VKind = iota
	KindText
	KindFragment
	KindComponent
	KindRaw // unescaped HTML
)

var kindNames = [...]string{"element", "text", "fragment", "component", "raw"}

func (k VKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// VNode is one node of a rendered UI tree. Trees are rebuilt on every
// render and never mutated afterwards, except for HID which the renderer
// fills in.
type VNode struct {
	Kind     VKind
	Tag      string // elements only
	Props    Props  // attributes, plus "on<event>" handlers
	Children []*VNode
	Key      string // identity among siblings; not rendered
	Text     string // text and raw nodes
	Comp     Component
	HID      string
}

// Props holds attributes and event handlers. Handler keys are "on" followed
// by the DOM event name ("onclick").
type Props map[string]any

// IsEventKey reports whether a prop key names an event handler ("onclick").
func IsEventKey(key string) bool {
	return len(key) > 2 && strings.HasPrefix(key, "on")
}

// IsInteractive reports whether the node is an element with at least one
// handler. Only interactive nodes get a HID.
func (v *VNode) IsInteractive() bool {
	if v == nil || v.Kind != KindElement {
		return false
	}
	for key := range v.Props {
		if IsEventKey(key) {
			return true
		}
	}
	return false
}

// Events returns the DOM event names the node handles, sorted.
func (v *VNode) Events() []string {
	var events []string
	for key := range v.Props {
		if IsEventKey(key) {
			events = append(events, strings.ToLower(key[2:]))
		}
	}
	sort.Strings(events)
	return events
}

// Handlers returns the node's handlers keyed by prop ("onclick").
func (v *VNode) Handlers() map[string]any {
	hs := make(map[string]any)
	for key, h := range v.Props {
		if IsEventKey(key) {
			hs[key] = h
		}
	}
	return hs
}

// Target identifies an interactive element across renders by tag, key, id
// and aria-label. Positional HIDs can move to another element when the tree
// changes; equal targets mean the HID still names the same thing.
func (v *VNode) Target() string {
	var b strings.Builder
	b.WriteString(v.Tag)
	if v.Key != "" {
		b.WriteString("[" + v.Key + "]")
	}
	if id, ok := v.Props["id"].(string); ok && id != "" {
		b.WriteString("#" + id)
	}
	if label, ok := v.Props["aria-label"].(string); ok && label != "" {
		b.WriteString("|" + label)
	}
	return b.String()
}

// Attr is a single attribute. The zero Attr is ignored.
type Attr struct {
	Key   string
	Value any
}

// EventHandler binds a handler (func() or func(string)) to an event prop.
type EventHandler struct {
	Event   string
	Handler any
}

// Component is anything that can render to a VNode.
type Component interface {
	Render() *VNode
}

// ComponentFunc adapts a render function to Component.
type ComponentFunc func() *VNode

// Render calls f.
func (f ComponentFunc) Render() *VNode { return f() }

// Func creates a component from a render function.
func Func(render func() *VNode) Component {
	return ComponentFunc(render)
}
