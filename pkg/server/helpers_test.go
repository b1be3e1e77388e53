package server

import (
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/vango-dev/taskboard/pkg/middleware"
	"github.com/vango-dev/taskboard/pkg/toast"
	"github.com/vango-dev/taskboard/pkg/toast/toasttest"
	"github.com/vango-dev/taskboard/pkg/vdom"
)

// testRoot is a small UI with a notification host.
type testRoot struct {
	host    *toast.Host
	name    string
	mounted int
}

func (c *testRoot) Mount() { c.mounted++ }

func (c *testRoot) Render() *vdom.VNode {
	return vdom.Div(
		vdom.Button(vdom.ID("notify"), vdom.OnClick(func() {
			c.host.Notify(toast.Request{Description: "Saved " + c.name, Kind: toast.KindSuccess})
		}), vdom.Text("Notify")),
		vdom.Input(vdom.ID("name"), vdom.Value(c.name), vdom.OnInput(func(v string) { c.name = v })),
		vdom.Button(vdom.ID("boom"), vdom.OnClick(func() { panic("boom") }), vdom.Text("Boom")),
		c.host.Render(),
	)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestSession returns an unconnected session with a mounted testRoot
// whose host runs on a fake clock.
func newTestSession(t *testing.T) (*Session, *testRoot, *toasttest.FakeScheduler) {
	t.Helper()
	sched := toasttest.NewFakeScheduler()
	s := newSession(nil, DefaultSessionConfig(), discardLogger(), nil, nil)
	root := &testRoot{host: toast.NewHost(toast.WithScheduler(sched), toast.WithLogger(discardLogger()))}
	s.OnClose(root.host.Close)
	s.MountRoot(root)
	s.mount()
	t.Cleanup(s.Close)
	return s, root, sched
}

var hidByID = regexp.MustCompile(`data-hid="(h\d+)" id="([a-z]+)"`)
var closeHID = regexp.MustCompile(`<button data-hid="(h\d+)" aria-label="Close"`)

// hidFor finds the HID of the element with the given id in html.
func hidFor(t *testing.T, html, id string) string {
	t.Helper()
	for _, m := range hidByID.FindAllStringSubmatch(html, -1) {
		if m[2] == id {
			return m[1]
		}
	}
	t.Fatalf("no interactive element with id %q in:\n%s", id, html)
	return ""
}

func closeButtonHID(t *testing.T, html string) string {
	t.Helper()
	m := closeHID.FindStringSubmatch(html)
	if m == nil {
		t.Fatalf("no close button in:\n%s", html)
	}
	return m[1]
}

func eventFor(hid, name string) middleware.Event {
	return middleware.Event{HID: hid, Name: name}
}
