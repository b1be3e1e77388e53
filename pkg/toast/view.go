package toast

import (
	"strconv"

	"github.com/vango-dev/taskboard/pkg/vdom"
)

// overlayStyle pins the notification to the bottom-right corner, outside
// normal document flow.
const overlayStyle = "position:fixed;bottom:1rem;right:1rem;z-index:50;" +
	"display:flex;align-items:center;justify-content:space-between;gap:0.75rem;" +
	"width:100%;max-width:20rem;padding:1rem;border-radius:0.5rem;" +
	"background:#fff;color:#6b7280;box-shadow:0 1px 3px rgba(0,0,0,0.2)"

var iconColors = map[Kind]string{
	KindSuccess: "#22c55e",
	KindError:   "#ef4444",
	KindWarning: "#eab308",
	KindInfo:    "#3b82f6",
}

// Render returns the overlay for a visible center and nil once dismissed.
func (c *Center) Render() *vdom.VNode {
	if !c.Visible() {
		return nil
	}
	req := c.req

	return vdom.Div(
		vdom.Class("toast", "toast-"+string(req.Kind)),
		vdom.Role("alert"),
		vdom.AriaLive("assertive"),
		vdom.Data("toast-id", strconv.FormatUint(c.id, 10)),
		vdom.Data("kind", string(req.Kind)),
		vdom.StyleAttr(overlayStyle),

		vdom.Div(vdom.Class("toast-body"), vdom.StyleAttr("display:flex;align-items:center;gap:0.75rem"),
			vdom.Span(
				vdom.Class("toast-icon"),
				vdom.Data("icon", string(req.Kind)),
				vdom.AriaHidden(true),
				vdom.StyleAttr("color:"+iconColors[req.Kind]),
				vdom.Text(Icon(req.Kind)),
			),
			vdom.Div(
				vdom.If(req.Title != "", vdom.Strong(vdom.Class("toast-title"), vdom.Text(req.Title))),
				vdom.Div(vdom.Class("toast-message"), vdom.StyleAttr("font-size:0.875rem"), vdom.Text(req.Description)),
			),
		),

		vdom.Button(
			vdom.Key("toast-"+strconv.FormatUint(c.id, 10)),
			vdom.Type("button"),
			vdom.Class("toast-close"),
			vdom.AriaLabel("Close"),
			vdom.OnClick(c.Dismiss),
			vdom.Span(vdom.Class("sr-only"), vdom.Text("Close")),
			vdom.Span(vdom.AriaHidden(true), vdom.Text("×")),
		),
	)
}
