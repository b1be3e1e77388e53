package vdom

import "testing"

func TestFragmentSkipsNil(t *testing.T) {
	frag := Fragment(nil, Text("a"), []*VNode{nil, Text("b")}, "c", If(false, Text("d")))
	if len(frag.Children) != 3 {
		t.Fatalf("children = %d, want 3", len(frag.Children))
	}
}

func TestConditionals(t *testing.T) {
	a, b := Text("a"), Text("b")
	if If(true, a) != a || If(false, a) != nil {
		t.Error("If returned wrong node")
	}
	if IfElse(false, a, b) != b {
		t.Error("IfElse returned wrong node")
	}

	called := false
	When(false, func() *VNode { called = true; return a })
	if called {
		t.Error("When evaluated its function for a false condition")
	}
}

func TestRange(t *testing.T) {
	nodes := Range([]string{"x", "", "z"}, func(s string, i int) *VNode {
		if s == "" {
			return nil
		}
		return Li(Key(i), Text(s))
	})
	if len(nodes) != 2 {
		t.Fatalf("Range produced %d nodes, want 2", len(nodes))
	}
	if nodes[1].Key != "2" {
		t.Errorf("second key = %q, want 2", nodes[1].Key)
	}
}

func TestWalkVisitsInDocumentOrder(t *testing.T) {
	tree := Div(Span(Text("a")), P(Text("b")))
	var tags []string
	Walk(tree, func(n *VNode) {
		if n.Kind == KindElement {
			tags = append(tags, n.Tag)
		}
	})
	want := []string{"div", "span", "p"}
	if len(tags) != len(want) {
		t.Fatalf("visited %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("visit %d = %s, want %s", i, tags[i], want[i])
		}
	}
}
