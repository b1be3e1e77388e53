package app_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/taskboard/internal/app"
	"github.com/vango-dev/taskboard/internal/todo"
	"github.com/vango-dev/taskboard/pkg/server"
	"github.com/vango-dev/taskboard/pkg/tasks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAPI serves two tasks and fails every DELETE.
func fakeAPI(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var deletes atomic.Int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode([]tasks.Task{
				{ID: 1, Description: "Write report"},
				{ID: 2, Description: "Buy milk", Completed: true},
			})
		case http.MethodDelete:
			deletes.Add(1)
			http.Error(w, "nope", http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	t.Cleanup(api.Close)
	return api, &deletes
}

func newTestApp(t *testing.T) (*app.App, *server.Server, *httptest.Server, *atomic.Int32) {
	t.Helper()
	api, deletes := fakeAPI(t)
	a := app.New(tasks.NewClient(api.URL), app.WithLogger(discardLogger()))

	srv := server.New(nil)
	srv.SetLogger(discardLogger())
	srv.SetRootComponent(a.Root)
	srv.AddStyle(app.Styles)
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		srv.Sessions().Shutdown()
		ts.Close()
	})
	return a, srv, ts, deletes
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/_live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// waitRender reads render frames until one satisfies ok.
func waitRender(t *testing.T, conn *websocket.Conn, ok func(html string) bool) (string, uint64) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var frame server.RenderFrame
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if err := json.Unmarshal(data, &frame); err != nil || frame.Type != server.FrameRender {
			continue
		}
		if ok(frame.HTML) {
			return frame.HTML, frame.Seq
		}
	}
}

func contains(s string) func(string) bool {
	return func(html string) bool { return strings.Contains(html, s) }
}

var deleteHID = regexp.MustCompile(`data-hid="(h\d+)"[^>]*aria-label="Delete Write report"`)

func clickDelete(t *testing.T, conn *websocket.Conn, html string, seq uint64) {
	t.Helper()
	m := deleteHID.FindStringSubmatch(html)
	if m == nil {
		t.Fatalf("no delete button in:\n%s", html)
	}
	err := conn.WriteJSON(server.ClientFrame{Type: server.FrameEvent, HID: m[1], Event: "click", Seq: seq})
	if err != nil {
		t.Fatal(err)
	}
}

func TestPageShellShowsLoading(t *testing.T) {
	_, _, ts, _ := newTestApp(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	for _, want := range []string{"Todo List", "Loading...", "Add a new task", ".todo-item"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestLiveSessionLoadsTasks(t *testing.T) {
	_, _, ts, _ := newTestApp(t)
	conn := dial(t, ts)

	html, _ := waitRender(t, conn, contains("Write report"))
	if strings.Contains(html, "Loading...") {
		t.Error("loading indicator should be gone once tasks arrive")
	}
	if !strings.Contains(html, "Buy milk") {
		t.Errorf("missing second task:\n%s", html)
	}
}

func TestDeleteFailureShowsToast(t *testing.T) {
	_, _, ts, deletes := newTestApp(t)
	conn := dial(t, ts)

	html, seq := waitRender(t, conn, contains("Write report"))
	clickDelete(t, conn, html, seq)

	html, _ = waitRender(t, conn, contains(todo.MsgDeleteFailed))
	if !strings.Contains(html, "Write report") {
		t.Error("task should remain after a failed delete")
	}
	if !strings.Contains(html, `role="alert"`) {
		t.Errorf("toast overlay missing:\n%s", html)
	}
	if deletes.Load() != 1 {
		t.Errorf("deletes = %d, want 1", deletes.Load())
	}
}

func TestToastDurationHotReload(t *testing.T) {
	a, _, ts, _ := newTestApp(t)
	conn := dial(t, ts)

	html, seq := waitRender(t, conn, contains("Write report"))
	a.SetToastDuration(50 * time.Millisecond)
	if a.ToastDuration() != 50*time.Millisecond {
		t.Fatalf("ToastDuration = %v", a.ToastDuration())
	}

	clickDelete(t, conn, html, seq)
	waitRender(t, conn, contains(todo.MsgDeleteFailed))

	start := time.Now()
	waitRender(t, conn, func(h string) bool { return !strings.Contains(h, todo.MsgDeleteFailed) })
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("toast took %v to expire", elapsed)
	}
}

func TestHostsTrackSessions(t *testing.T) {
	a, srv, ts, _ := newTestApp(t)
	conn := dial(t, ts)
	waitRender(t, conn, contains("Write report"))

	if got := a.Hosts(); got != 1 {
		t.Fatalf("Hosts = %d, want 1", got)
	}

	srv.Sessions().Shutdown()

	deadline := time.Now().Add(2 * time.Second)
	for a.Hosts() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("Hosts = %d after shutdown, want 0", a.Hosts())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSetToastDurationIgnoresNonPositive(t *testing.T) {
	a := app.New(nil, app.WithToastDuration(time.Second))
	a.SetToastDuration(0)
	a.SetToastDuration(-time.Second)
	if a.ToastDuration() != time.Second {
		t.Errorf("ToastDuration = %v, want 1s", a.ToastDuration())
	}
}
