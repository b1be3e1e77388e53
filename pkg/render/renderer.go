package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/vango-dev/taskboard/pkg/vdom"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables newline-separated output for block elements.
	// Should only be used in development as it increases output size.
	Pretty bool
}

// Handlers maps an event prop ("onclick") to its Go handler.
type Handlers map[string]any

// Renderer handles server-side rendering of VNode trees to HTML.
// A Renderer is not safe for concurrent use; each session owns one.
type Renderer struct {
	config     RendererConfig
	hidCounter uint32
	handlers   map[string]Handlers
	targets    map[string]string
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	return &Renderer{
		config:   config,
		handlers: make(map[string]Handlers),
		targets:  make(map[string]string),
	}
}

// RenderToString renders a VNode tree to an HTML string.
// The HID counter and handler registry are reset first.
func (r *Renderer) RenderToString(node *vdom.VNode) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a VNode tree to the given writer.
// The HID counter and handler registry are reset first.
func (r *Renderer) RenderToWriter(w io.Writer, node *vdom.VNode) error {
	r.Reset()
	return r.renderNode(w, node)
}

// Handlers returns the handler registry collected during the last render,
// keyed by HID.
func (r *Renderer) Handlers() map[string]Handlers {
	return r.handlers
}

// Lookup returns the handler registered for hid and event name ("click").
func (r *Renderer) Lookup(hid, event string) (any, bool) {
	hs, ok := r.handlers[hid]
	if !ok {
		return nil, false
	}
	h, ok := hs["on"+event]
	return h, ok
}

// Target returns the identity of the element that carried hid in the last
// render. Two renders bind the same element to a HID when their targets are
// equal.
func (r *Renderer) Target(hid string) (string, bool) {
	t, ok := r.targets[hid]
	return t, ok
}

// Targets returns the identities of all interactive elements of the last
// render, keyed by HID.
func (r *Renderer) Targets() map[string]string {
	return r.targets
}

// Reset clears the HID counter and handler registry.
func (r *Renderer) Reset() {
	r.hidCounter = 0
	r.handlers = make(map[string]Handlers)
	r.targets = make(map[string]string)
}

func (r *Renderer) renderNode(w io.Writer, node *vdom.VNode) error {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case vdom.KindElement:
		return r.renderElement(w, node)
	case vdom.KindText:
		_, err := io.WriteString(w, escapeHTML(node.Text))
		return err
	case vdom.KindFragment:
		for _, child := range node.Children {
			if err := r.renderNode(w, child); err != nil {
				return err
			}
		}
		return nil
	case vdom.KindComponent:
		if node.Comp == nil {
			return nil
		}
		return r.renderNode(w, node.Comp.Render())
	case vdom.KindRaw:
		_, err := io.WriteString(w, node.Text)
		return err
	default:
		return fmt.Errorf("render: unknown node kind: %d", node.Kind)
	}
}

func (r *Renderer) renderElement(w io.Writer, node *vdom.VNode) error {
	tag := node.Tag
	if tag == "" {
		return fmt.Errorf("render: element without tag")
	}

	if _, err := io.WriteString(w, "<"+tag); err != nil {
		return err
	}

	if node.IsInteractive() {
		r.hidCounter++
		hid := "h" + strconv.FormatUint(uint64(r.hidCounter), 10)
		node.HID = hid
		if _, err := fmt.Fprintf(w, ` data-hid="%s"`, hid); err != nil {
			return err
		}
		r.registerHandlers(hid, node)
	}

	if err := r.renderAttributes(w, node); err != nil {
		return err
	}

	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}
	if isVoidElement(tag) {
		return r.newline(w)
	}

	for _, child := range node.Children {
		if err := r.renderNode(w, child); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "</%s>", tag); err != nil {
		return err
	}
	return r.newline(w)
}

func (r *Renderer) newline(w io.Writer) error {
	if !r.config.Pretty {
		return nil
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// renderAttributes renders attributes in sorted order for deterministic
// output, followed by data-on-<event> markers the thin client binds to.
func (r *Renderer) renderAttributes(w io.Writer, node *vdom.VNode) error {
	if len(node.Props) == 0 {
		return nil
	}

	keys := make([]string, 0, len(node.Props))
	for key := range node.Props {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := node.Props[key]

		if vdom.IsEventKey(key) {
			continue
		}
		if strings.HasPrefix(key, "_") {
			continue
		}

		if isBooleanAttr(key) {
			if b, ok := value.(bool); ok {
				if b {
					if _, err := io.WriteString(w, " "+key); err != nil {
						return err
					}
				}
				continue
			}
		}

		s, ok := attrToString(value)
		if !ok {
			continue
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, key, escapeAttr(s)); err != nil {
			return err
		}
	}

	for _, ev := range node.Events() {
		if _, err := fmt.Fprintf(w, ` data-on-%s="true"`, ev); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) registerHandlers(hid string, node *vdom.VNode) {
	r.handlers[hid] = node.Handlers()
	r.targets[hid] = node.Target()
}

// attrToString converts an attribute value to a string. A nil value is not
// rendered at all.
func attrToString(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	default:
		return fmt.Sprintf("%v", v), true
	}
}
