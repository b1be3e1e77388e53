package render

import (
	"fmt"
	"io"

	"github.com/vango-dev/taskboard/pkg/vdom"
)

// DefaultClientScript is the path the live server serves the thin client on.
const DefaultClientScript = "/_taskboard/client.js"

// DefaultRootID is the id of the element whose contents the thin client
// replaces on every render frame.
const DefaultRootID = "taskboard-root"

// PageData contains all data needed to render a complete HTML page.
type PageData struct {
	// Body is the root VNode for the page content. It is rendered inside
	// the root container.
	Body *vdom.VNode

	// Title is the page title.
	Title string

	// Lang is the language attribute for the html element.
	// Defaults to "en" if not specified.
	Lang string

	// Styles contains inline CSS blocks added to the head.
	Styles []string

	// ClientScript is the path to the thin client JavaScript.
	// Defaults to DefaultClientScript.
	ClientScript string

	// RootID overrides DefaultRootID.
	RootID string

	// LivePath is the WebSocket endpoint the thin client connects to.
	LivePath string
}

// RenderPage renders a complete HTML document to the given writer.
// Handlers found in Body are collected exactly as RenderToWriter does.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}
	script := page.ClientScript
	if script == "" {
		script = DefaultClientScript
	}
	rootID := page.RootID
	if rootID == "" {
		rootID = DefaultRootID
	}

	if _, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html lang=\"%s\">\n<head>\n", escapeAttr(lang)); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "<meta charset=\"utf-8\">\n<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n"); err != nil {
		return err
	}
	if page.Title != "" {
		if _, err := fmt.Fprintf(w, "<title>%s</title>\n", escapeHTML(page.Title)); err != nil {
			return err
		}
	}
	for _, css := range page.Styles {
		if _, err := fmt.Fprintf(w, "<style>%s</style>\n", css); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "</head>\n<body>\n"); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, `<div id="%s" data-live="%s">`, escapeAttr(rootID), escapeAttr(page.LivePath)); err != nil {
		return err
	}
	if err := r.RenderToWriter(w, page.Body); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "</div>\n"); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "<script src=\"%s\" defer></script>\n</body>\n</html>\n", escapeAttr(script)); err != nil {
		return err
	}
	return nil
}
