package server

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/taskboard/pkg/middleware"
	"github.com/vango-dev/taskboard/pkg/render"
)

// Server is the HTTP/WebSocket server for taskboard.
type Server struct {
	config   *ServerConfig
	sessions *SessionManager
	root     RootFunc
	upgrader websocket.Upgrader

	middleware []middleware.Middleware
	metrics    *middleware.Metrics
	gatherer   prometheus.Gatherer
	styles     []string

	handlerOnce sync.Once
	handler     http.Handler

	httpMu     sync.Mutex
	httpServer *http.Server

	logger *slog.Logger
}

// New creates a new Server with the given configuration. Unset fields take
// their defaults.
func New(config *ServerConfig) *Server {
	if config == nil {
		config = DefaultServerConfig()
	}
	config.applyDefaults()

	logger := slog.Default().With("component", "server")
	if err := config.Validate(); err != nil {
		logger.Error("config validation failed", "error", err)
	}

	s := &Server{
		config:   config,
		sessions: NewSessionManager(config.MaxSessions, logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		logger: logger,
	}
	s.sessions.SetOnSessionCreate(func(*Session) { s.metrics.SessionOpened() })
	s.sessions.SetOnSessionClose(func(*Session) { s.metrics.SessionClosed() })
	return s
}

// SetRootComponent sets the factory that builds each session's root.
func (s *Server) SetRootComponent(fn RootFunc) {
	s.root = fn
}

// Use appends event middleware. The first middleware is the outermost.
func (s *Server) Use(mws ...middleware.Middleware) {
	s.middleware = append(s.middleware, mws...)
}

// SetMetrics enables metrics recording and, when gatherer is non-nil, the
// metrics endpoint.
func (s *Server) SetMetrics(m *middleware.Metrics, gatherer prometheus.Gatherer) {
	s.metrics = m
	s.gatherer = gatherer
}

// AddStyle adds an inline CSS block to the page head.
func (s *Server) AddStyle(css string) {
	s.styles = append(s.styles, css)
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	s.handlerOnce.Do(func() {
		r := chi.NewRouter()
		r.Use(chimw.RequestID)
		r.Use(chimw.Recoverer)

		r.Get("/", s.servePage)
		r.Get(s.config.LivePath, s.HandleWebSocket)
		r.Get(render.DefaultClientScript, s.serveThinClient)
		r.Head(render.DefaultClientScript, s.serveThinClient)
		r.Get("/healthz", s.serveHealth)
		if s.gatherer != nil {
			r.Handle(s.config.MetricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
		}
		s.handler = r
	})
	return s.handler
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Handler().ServeHTTP(w, r)
}

// servePage renders the page shell. The root is built against a session
// that is never started, so Mount does not run and no work is kicked off.
func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	if s.root == nil {
		http.Error(w, ErrNoRoot.Error(), http.StatusInternalServerError)
		return
	}

	shell := newSession(nil, s.config.SessionConfig, s.logger, nil, nil)
	defer shell.Close()

	root := s.root(shell)

	renderer := render.NewRenderer(render.RendererConfig{Pretty: s.config.DevMode})
	var buf bytes.Buffer
	err := renderer.RenderPage(&buf, render.PageData{
		Body:     root.Render(),
		Title:    s.config.Title,
		Styles:   s.styles,
		LivePath: s.config.LivePath,
	})
	if err != nil {
		s.logger.Error("page render failed", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) serveHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

// HandleWebSocket upgrades the request and starts a live session.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.root == nil {
		http.Error(w, ErrNoRoot.Error(), http.StatusInternalServerError)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		s.metrics.RecordWebSocketError("upgrade")
		return
	}

	session := newSession(conn, s.config.SessionConfig, s.logger, s.metrics, s.middleware)
	if err := s.sessions.Add(session); err != nil {
		s.logger.Warn("rejecting session", "error", err)
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(s.config.SessionConfig.WriteTimeout),
		)
		_ = conn.Close()
		return
	}

	session.MountRoot(s.root(session))
	session.logger.Info("session started", "remote", r.RemoteAddr)
	session.Start()
}

// Run starts the server and blocks until ctx is cancelled or the listener
// fails. Cancelling ctx shuts the server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is like Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if err := s.config.Validate(); err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}
	s.httpMu.Lock()
	s.httpServer = srv
	s.httpMu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes all sessions and gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.sessions.Shutdown()

	s.httpMu.Lock()
	srv := s.httpServer
	s.httpMu.Unlock()
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Sessions returns the session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// Config returns the server configuration.
func (s *Server) Config() *ServerConfig {
	return s.config
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// SetLogger sets the server logger.
func (s *Server) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}
