package vtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/vango-dev/taskboard/pkg/render"
	"github.com/vango-dev/taskboard/pkg/vdom"
)

// RenderToString renders a VNode and returns the HTML string.
// Render errors are returned as an empty string.
func RenderToString(node *vdom.VNode) string {
	r := render.NewRenderer(render.RendererConfig{})
	html, err := r.RenderToString(node)
	if err != nil {
		return ""
	}
	return html
}

// ExpectContains asserts that rendered output contains expected substring.
//
//	vtest.ExpectContains(t, comp.Render(), "Welcome")
func ExpectContains(t *testing.T, node *vdom.VNode, expected string) {
	t.Helper()
	html := RenderToString(node)
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 800))
	}
}

// ExpectNotContains asserts that rendered output does not contain substring.
func ExpectNotContains(t *testing.T, node *vdom.VNode, unexpected string) {
	t.Helper()
	html := RenderToString(node)
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 800))
	}
}

// ExpectAttribute asserts that rendered output contains an attribute value.
//
//	vtest.ExpectAttribute(t, comp.Render(), "role", "alert")
func ExpectAttribute(t *testing.T, node *vdom.VNode, attr, value string) {
	t.Helper()
	html := RenderToString(node)
	needle := attr + `="` + value + `"`
	if !strings.Contains(html, needle) {
		t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(html, 800))
	}
}

// Count returns how many times substr occurs in the rendered output.
func Count(node *vdom.VNode, substr string) int {
	return strings.Count(RenderToString(node), substr)
}

// Click renders node, finds the interactive element matching label and runs
// its click handler. The test fails if no such element exists.
func Click(t *testing.T, node *vdom.VNode, label string) {
	t.Helper()
	if err := Fire(node, label, "click", ""); err != nil {
		t.Fatal(err)
	}
}

// Input runs the input handler of the element matching label with value.
func Input(t *testing.T, node *vdom.VNode, label, value string) {
	t.Helper()
	if err := Fire(node, label, "input", value); err != nil {
		t.Fatal(err)
	}
}

// Change runs the change handler of the element matching label with value.
func Change(t *testing.T, node *vdom.VNode, label, value string) {
	t.Helper()
	if err := Fire(node, label, "change", value); err != nil {
		t.Fatal(err)
	}
}

// Fire dispatches event ("click", "input", ...) to the first element
// matching label, passing value to handlers that accept one.
func Fire(node *vdom.VNode, label, event, value string) error {
	tree := Resolve(node)
	r := render.NewRenderer(render.RendererConfig{})
	if _, err := r.RenderToString(tree); err != nil {
		return err
	}

	var target *vdom.VNode
	vdom.Walk(tree, func(n *vdom.VNode) {
		if target != nil || n.HID == "" {
			return
		}
		if _, ok := n.Props["on"+event]; !ok {
			return
		}
		if matches(n, label) {
			target = n
		}
	})
	if target == nil {
		return fmt.Errorf("vtest: no element labelled %q handles %s", label, event)
	}

	h, _ := r.Lookup(target.HID, event)
	switch fn := h.(type) {
	case func():
		fn()
	case func(string):
		fn(value)
	default:
		return fmt.Errorf("vtest: unsupported handler type %T", h)
	}
	return nil
}

// Resolve returns a copy of node with every component replaced by its
// rendered output, so the tree walked by a test is the tree the renderer
// assigned HIDs to.
func Resolve(node *vdom.VNode) *vdom.VNode {
	if node == nil {
		return nil
	}
	if node.Kind == vdom.KindComponent {
		if node.Comp == nil {
			return nil
		}
		return Resolve(node.Comp.Render())
	}
	cp := *node
	if len(node.Children) > 0 {
		cp.Children = make([]*vdom.VNode, 0, len(node.Children))
		for _, child := range node.Children {
			if c := Resolve(child); c != nil {
				cp.Children = append(cp.Children, c)
			}
		}
	}
	return &cp
}

func matches(n *vdom.VNode, label string) bool {
	for _, key := range []string{"aria-label", "placeholder", "id"} {
		if v, ok := n.Props[key].(string); ok && v == label {
			return true
		}
	}
	return strings.TrimSpace(TextContent(n)) == label
}

// TextContent returns the concatenated text of node and its descendants.
func TextContent(node *vdom.VNode) string {
	var b strings.Builder
	vdom.Walk(node, func(n *vdom.VNode) {
		if n.Kind == vdom.KindText {
			b.WriteString(n.Text)
		}
	})
	return b.String()
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
