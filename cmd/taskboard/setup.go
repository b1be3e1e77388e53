package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel"

	"github.com/vango-dev/taskboard/internal/config"
	"github.com/vango-dev/taskboard/pkg/tasks"
)

// loadConfig loads the file named by --config, or the first default file in
// the working directory, or defaults alone.
func loadConfig(g *globalFlags) (*config.Config, error) {
	path := g.configPath
	if path == "" {
		path = config.Find(".")
	}
	return config.Load(path)
}

// newLogger builds the process logger from the log section.
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func setupLogger(cfg *config.Config) *slog.Logger {
	logger := newLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)
	return logger
}

// newTaskClient builds the API client. obs may be nil.
func newTaskClient(cfg *config.Config, obs tasks.Observer) *tasks.Client {
	opts := []tasks.Option{
		tasks.WithTimeout(cfg.API.Timeout.Std()),
		tasks.WithTracer(otel.Tracer("taskboard/tasks")),
	}
	if obs != nil {
		opts = append(opts, tasks.WithObserver(obs))
	}
	return tasks.NewClient(cfg.API.BaseURL, opts...)
}
