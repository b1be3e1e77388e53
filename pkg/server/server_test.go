package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/taskboard/pkg/middleware"
	"github.com/vango-dev/taskboard/pkg/toast"
)

func newTestServer(t *testing.T, cfg *ServerConfig) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(cfg)
	srv.SetLogger(discardLogger())
	srv.SetRootComponent(func(s *Session) Component {
		host := toast.NewHost(
			toast.WithScheduler(toast.LoopScheduler{Dispatch: s.Dispatch}),
			toast.WithLogger(discardLogger()),
		)
		s.OnClose(host.Close)
		return &testRoot{host: host}
	})
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		srv.Sessions().Shutdown()
		ts.Close()
	})
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readFrame reads the next frame of the given type, skipping others.
func readFrame(t *testing.T, conn *websocket.Conn, typ string) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read %s frame: %v", typ, err)
		}
		var frame map[string]any
		if err := json.Unmarshal(data, &frame); err != nil {
			t.Fatalf("decode frame %s: %v", data, err)
		}
		if frame["t"] == typ {
			return frame
		}
	}
}

func sendEvent(t *testing.T, conn *websocket.Conn, hid, ev, value string, seq uint64) {
	t.Helper()
	err := conn.WriteJSON(ClientFrame{Type: FrameEvent, HID: hid, Event: ev, Value: value, Seq: seq})
	if err != nil {
		t.Fatalf("write event: %v", err)
	}
}

func renderOf(t *testing.T, frame map[string]any) (string, uint64) {
	t.Helper()
	html, _ := frame["html"].(string)
	seq, _ := frame["seq"].(float64)
	return html, uint64(seq)
}

func TestServerPageShell(t *testing.T) {
	_, ts := newTestServer(t, &ServerConfig{Title: "Board"})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	html := string(body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, want := range []string{
		"<title>Board</title>",
		`data-live="/_live"`,
		`<script src="/_taskboard/client.js" defer></script>`,
		`id="notify"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q:\n%s", want, html)
		}
	}
}

func TestServerThinClientETag(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/_taskboard/client.js")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	etag := resp.Header.Get("ETag")
	if resp.StatusCode != http.StatusOK || etag == "" || len(body) == 0 {
		t.Fatalf("status=%d etag=%q len=%d", resp.StatusCode, etag, len(body))
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/javascript") {
		t.Errorf("Content-Type = %q", ct)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/_taskboard/client.js", nil)
	req.Header.Set("If-None-Match", etag)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotModified {
		t.Errorf("conditional status = %d, want 304", resp.StatusCode)
	}
}

func TestEtagMatches(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{`"abc"`, true},
		{`W/"abc"`, true},
		{`"x", "abc"`, true},
		{`"x"`, false},
		{`*`, true},
	}
	for _, tt := range tests {
		if got := etagMatches(tt.header, `"abc"`); got != tt.want {
			t.Errorf("etagMatches(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

func TestServerHealthz(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestServerMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	srv := New(nil)
	srv.SetLogger(discardLogger())
	srv.SetMetrics(middleware.NewMetrics(middleware.WithRegistry(reg)), reg)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	srv.metrics.SessionOpened()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "taskboard_active_sessions 1") {
		t.Errorf("metrics output missing active sessions:\n%s", body)
	}
}

func TestServerWithoutRoot(t *testing.T) {
	srv := New(nil)
	srv.SetLogger(discardLogger())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestServerLiveToastLifecycle(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	conn := dial(t, ts, "/_live")

	html, seq := renderOf(t, readFrame(t, conn, FrameRender))
	if seq != 1 {
		t.Fatalf("first render seq = %d, want 1", seq)
	}
	if srv.Sessions().Count() != 1 {
		t.Errorf("Count() = %d, want 1", srv.Sessions().Count())
	}

	sendEvent(t, conn, hidFor(t, html, "notify"), "click", "", seq)
	html, seq = renderOf(t, readFrame(t, conn, FrameRender))
	if strings.Count(html, `role="alert"`) != 1 {
		t.Fatalf("expected one overlay:\n%s", html)
	}

	sendEvent(t, conn, closeButtonHID(t, html), "click", "", seq)
	html, _ = renderOf(t, readFrame(t, conn, FrameRender))
	if strings.Contains(html, `role="alert"`) {
		t.Errorf("overlay still present after close click:\n%s", html)
	}
}

func TestServerLiveToastTimeout(t *testing.T) {
	srv := New(nil)
	srv.SetLogger(discardLogger())
	srv.SetRootComponent(func(s *Session) Component {
		host := toast.NewHost(
			toast.WithScheduler(toast.LoopScheduler{Dispatch: s.Dispatch}),
			toast.WithDefaultDuration(50*time.Millisecond),
			toast.WithLogger(discardLogger()),
		)
		s.OnClose(host.Close)
		return &testRoot{host: host}
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	defer srv.Sessions().Shutdown()

	conn := dial(t, ts, "/_live")
	html, seq := renderOf(t, readFrame(t, conn, FrameRender))
	sendEvent(t, conn, hidFor(t, html, "name"), "input", "x", seq)
	html, seq = renderOf(t, readFrame(t, conn, FrameRender))

	sendEvent(t, conn, hidFor(t, html, "notify"), "click", "", seq)
	html, _ = renderOf(t, readFrame(t, conn, FrameRender))
	if !strings.Contains(html, "Saved x") {
		t.Fatalf("toast text missing:\n%s", html)
	}

	html, _ = renderOf(t, readFrame(t, conn, FrameRender))
	if strings.Contains(html, `role="alert"`) {
		t.Errorf("overlay not removed by its timer:\n%s", html)
	}
}

func TestServerPingPong(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dial(t, ts, "/_live")
	readFrame(t, conn, FrameRender)

	if err := conn.WriteJSON(map[string]string{"t": "ping"}); err != nil {
		t.Fatal(err)
	}
	readFrame(t, conn, FramePong)
}

func TestServerInvalidFrame(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dial(t, ts, "/_live")
	readFrame(t, conn, FrameRender)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"t":"bogus"}`)); err != nil {
		t.Fatal(err)
	}
	frame := readFrame(t, conn, FrameError)
	if frame["code"] != CodeInvalidFrame {
		t.Errorf("code = %v, want %s", frame["code"], CodeInvalidFrame)
	}
}

func TestServerMaxSessions(t *testing.T) {
	_, ts := newTestServer(t, &ServerConfig{MaxSessions: 1})
	first := dial(t, ts, "/_live")
	readFrame(t, first, FrameRender)

	second := dial(t, ts, "/_live")
	_ = second.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := second.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseTryAgainLater) {
		t.Errorf("second session read error = %v, want close 1013", err)
	}
}

func TestServerShutdownClosesSessions(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	conn := dial(t, ts, "/_live")
	readFrame(t, conn, FrameRender)

	srv.Sessions().Shutdown()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	if n := srv.Sessions().Count(); n != 0 {
		t.Errorf("Count() = %d after shutdown, want 0", n)
	}
}
