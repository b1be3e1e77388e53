package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/taskboard/internal/app"
	"github.com/vango-dev/taskboard/internal/config"
	"github.com/vango-dev/taskboard/internal/errors"
	"github.com/vango-dev/taskboard/pkg/middleware"
	"github.com/vango-dev/taskboard/pkg/server"
	"github.com/vango-dev/taskboard/pkg/tasks"
)

type serveFlags struct {
	addr   string
	apiURL string
	dev    bool
}

func serveCmd(g *globalFlags) *cobra.Command {
	var f serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the taskboard server",
		Long: `Start the HTTP and WebSocket server.

The configuration file is watched while the server runs. Changing
toast.duration applies to every open page without a restart.

Examples:
  taskboard serve
  taskboard serve --addr=:3000
  taskboard serve -c taskboard.yaml --dev`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, g, f)
		},
	}

	cmd.Flags().StringVarP(&f.addr, "addr", "a", "", "Listen address (default from config)")
	cmd.Flags().StringVar(&f.apiURL, "api-url", "", "Task API base URL (default from config)")
	cmd.Flags().BoolVar(&f.dev, "dev", false, "Enable development mode")

	return cmd
}

func runServe(ctx context.Context, g *globalFlags, f serveFlags) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	if f.addr != "" {
		cfg.Server.Address = f.addr
	}
	if f.apiURL != "" {
		cfg.API.BaseURL = f.apiURL
	}
	if f.dev {
		cfg.Server.Dev = true
	}

	logger := setupLogger(cfg)

	var (
		metrics *middleware.Metrics
		reg     *prometheus.Registry
	)
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics = middleware.NewMetrics(middleware.WithRegistry(reg))
	}

	srv, a := buildServer(cfg, logger, metrics, reg)

	ln, err := net.Listen("tcp", cfg.Server.Address)
	if err != nil {
		return errors.New("TB401").
			WithSuggestion("Pick another address with --addr or server.address").
			Wrap(err)
	}

	if path := cfg.Path(); path != "" {
		go func() {
			err := config.Watch(ctx, path, logger, func(c *config.Config) {
				a.SetToastDuration(c.Toast.Duration.Std())
			})
			if err != nil {
				logger.Warn("config watch disabled", "error", err)
			}
		}()
	}

	info("Listening on %s", ln.Addr().String())
	if err := srv.Serve(ctx, ln); err != nil {
		return errors.New("TB402").Wrap(err)
	}
	return nil
}

// buildServer wires the task client, app and server from cfg. metrics and
// reg are nil when metrics are disabled.
func buildServer(cfg *config.Config, logger *slog.Logger, metrics *middleware.Metrics, reg *prometheus.Registry) (*server.Server, *app.App) {
	var obs tasks.Observer
	if metrics != nil {
		obs = metrics
	}
	client := newTaskClient(cfg, obs)

	a := app.New(client,
		app.WithLogger(logger),
		app.WithMetrics(metrics),
		app.WithToastDuration(cfg.Toast.Duration.Std()),
	)

	srvCfg := server.DefaultServerConfig()
	srvCfg.Address = cfg.Server.Address
	srvCfg.DevMode = cfg.Server.Dev
	srvCfg.MaxSessions = cfg.Server.MaxSessions
	srvCfg.MetricsPath = cfg.Metrics.Path
	srvCfg.SessionConfig.MaxEventQueue = cfg.Session.MaxEventQueue
	srvCfg.SessionConfig.EventsPerSecond = cfg.Session.EventsPerSecond
	srvCfg.SessionConfig.EventBurst = cfg.Session.EventBurst

	srv := server.New(srvCfg)
	srv.SetLogger(logger.With("component", "server"))
	srv.SetRootComponent(a.Root)
	srv.AddStyle(app.Styles)
	if metrics != nil {
		srv.Use(metrics.Prometheus())
		srv.SetMetrics(metrics, reg)
	}
	srv.Use(
		middleware.OpenTelemetry(),
		middleware.Logging(logger.With("component", "events")),
	)
	return srv, a
}
