package app

import (
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/taskboard/internal/todo"
	"github.com/vango-dev/taskboard/pkg/middleware"
	"github.com/vango-dev/taskboard/pkg/server"
	"github.com/vango-dev/taskboard/pkg/tasks"
	"github.com/vango-dev/taskboard/pkg/toast"
	"github.com/vango-dev/taskboard/pkg/vdom"
)

// Styles is the page stylesheet.
const Styles = `
body { font-family: system-ui, sans-serif; background: #fff; margin: 0; }
.todo { max-width: 28rem; margin: 2rem auto; padding: 1.5rem; background: #f3f4f6; border-radius: .5rem; }
.todo-title { text-align: center; color: #2563eb; }
.todo-input, .todo-filters { display: flex; gap: .5rem; margin-bottom: 1rem; }
.todo-input input { flex: 1; }
.todo-items { list-style: none; padding: 0; }
.todo-item { display: flex; align-items: center; gap: .5rem; background: #fff; padding: .75rem; margin-bottom: .5rem; border-radius: .5rem; }
.todo-text { flex: 1; }
.todo-text.done { text-decoration: line-through; color: #6b7280; }
.btn.active { outline: 2px solid #1e3a8a; }
.sr-only { position: absolute; width: 1px; height: 1px; overflow: hidden; clip: rect(0,0,0,0); }
`

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger handed to each session's components.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMetrics records notification metrics.
func WithMetrics(m *middleware.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithToastDuration sets the default notification duration.
func WithToastDuration(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.toastDuration = d
		}
	}
}

// App builds session roots and tracks their notification hosts so settings
// can change while the server runs.
type App struct {
	svc     tasks.Service
	logger  *slog.Logger
	metrics *middleware.Metrics

	mu            sync.Mutex
	toastDuration time.Duration
	hosts         map[*toast.Host]struct{}
}

// New creates an App using svc for all task operations.
func New(svc tasks.Service, opts ...Option) *App {
	a := &App{
		svc:           svc,
		logger:        slog.Default(),
		toastDuration: toast.DefaultDuration,
		hosts:         make(map[*toast.Host]struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Root is a server.RootFunc. Notification timers are delivered through the
// session's event loop and the host is torn down with the session.
func (a *App) Root(s *server.Session) server.Component {
	logger := s.Logger()

	a.mu.Lock()
	host := toast.NewHost(
		toast.WithScheduler(toast.LoopScheduler{Dispatch: s.Dispatch}),
		toast.WithDefaultDuration(a.toastDuration),
		toast.WithLogger(logger.With("component", "toast")),
		toast.WithObserver(a.metrics.ToastObserver()),
	)
	a.hosts[host] = struct{}{}
	a.mu.Unlock()

	s.OnClose(func() {
		a.mu.Lock()
		delete(a.hosts, host)
		a.mu.Unlock()
		host.Close()
	})

	list := todo.New(a.svc, nil, s,
		todo.WithContext(toast.WithNotifier(s.Context(), host)),
		todo.WithLogger(logger.With("component", "todo")),
	)
	return &Root{List: list, Host: host}
}

// SetToastDuration changes the default duration for new notifications in
// every live session and in sessions created later.
func (a *App) SetToastDuration(d time.Duration) {
	if d <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if d == a.toastDuration {
		return
	}
	a.toastDuration = d
	for h := range a.hosts {
		h.SetDefaultDuration(d)
	}
	a.logger.Info("toast duration updated", "duration", d.String(), "sessions", len(a.hosts))
}

// ToastDuration returns the current default notification duration.
func (a *App) ToastDuration() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.toastDuration
}

// Hosts returns the number of live notification hosts.
func (a *App) Hosts() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.hosts)
}

// Root is the page body of one session.
type Root struct {
	List *todo.List
	Host *toast.Host
}

// Mount starts loading tasks.
func (r *Root) Mount() {
	r.List.Mount()
}

// Render draws the list with the notification overlay on top.
func (r *Root) Render() *vdom.VNode {
	return vdom.Main(vdom.Class("app"),
		r.List.Render(),
		r.Host.Render(),
	)
}
