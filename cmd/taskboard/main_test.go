package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/taskboard/internal/config"
	"github.com/vango-dev/taskboard/internal/errors"
	"github.com/vango-dev/taskboard/pkg/middleware"
	"github.com/vango-dev/taskboard/pkg/tasks"
)

func TestVersionShort(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version", "--short"})

	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out.String()) != version {
		t.Errorf("output = %q, want %q", out.String(), version)
	}
}

func TestCommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "export", "version"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("--config flag missing")
	}
}

func TestErrorFormatFlag(t *testing.T) {
	defer errors.DisableJSON()

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--error-format", "yaml", "version"})
	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "--error-format") {
		t.Errorf("Execute() error = %v, want invalid --error-format", err)
	}

	root = newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--error-format", "json", "version", "--short"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	errors.Fprint(&buf, errors.New("TB301"))
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("error output is not JSON: %v\n%s", err, buf.String())
	}
	if decoded["code"] != "TB301" {
		t.Errorf("code = %v, want TB301", decoded["code"])
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if rec["msg"] != "shown" || rec["k"] != "v" {
		t.Errorf("record = %v", rec)
	}
}

func TestNewStore(t *testing.T) {
	_, err := newStore(config.ExportConfig{}, "")
	if errors.CodeOf(err) != "TB301" {
		t.Errorf("missing bucket: err = %v, want TB301", err)
	}

	store, err := newStore(config.ExportConfig{Bucket: "b", Region: "us-east-1"}, "")
	if err != nil || store == nil {
		t.Errorf("S3 store: %v", err)
	}

	dir := filepath.Join(t.TempDir(), "out")
	if _, err := newStore(config.ExportConfig{}, dir); err != nil {
		t.Fatalf("disk store: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("directory not created: %v", err)
	}
}

func TestApplyExportFlags(t *testing.T) {
	c := config.New().Export
	applyExportFlags(&c, exportFlags{bucket: "b", endpoint: "http://minio:9000"})
	if c.Bucket != "b" || c.Endpoint != "http://minio:9000" || c.Region != "us-east-1" {
		t.Errorf("ExportConfig = %+v", c)
	}
}

func TestRunExportToDirectory(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]tasks.Task{{ID: 1, Description: "Write report"}})
	}))
	defer api.Close()

	t.Setenv("TASKBOARD_API_URL", api.URL)
	t.Setenv("TASKBOARD_LOG_LEVEL", "error")
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "taskboard.yaml")
	if err := os.WriteFile(cfgPath, []byte("export:\n  prefix: snaps\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "out")
	err := runExport(context.Background(), &globalFlags{configPath: cfgPath}, exportFlags{dir: out})
	if err != nil {
		t.Fatalf("runExport: %v", err)
	}

	matches, _ := filepath.Glob(filepath.Join(out, "snaps", "tasks-*.json"))
	if len(matches) != 1 {
		t.Fatalf("snapshots = %v", matches)
	}
}

func TestBuildServer(t *testing.T) {
	cfg := config.New()
	cfg.API.BaseURL = "http://127.0.0.1:1"
	cfg.Server.MaxSessions = 3
	reg := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(middleware.WithRegistry(reg))

	srv, a := buildServer(cfg, newLogger(cfg.Log, &bytes.Buffer{}), metrics, reg)

	if srv.Config().MaxSessions != 3 {
		t.Errorf("MaxSessions = %d", srv.Config().MaxSessions)
	}
	if a.ToastDuration() != cfg.Toast.Duration.Std() {
		t.Errorf("ToastDuration = %v", a.ToastDuration())
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/metrics status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.Contains(rec.Body.String(), "Todo List") {
		t.Errorf("page missing list:\n%s", rec.Body.String())
	}
}
