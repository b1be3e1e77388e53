package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/taskboard/internal/errors"
)

const (
	// DefaultAddress is the default listen address.
	DefaultAddress = ":8080"

	// DefaultBaseURL is the default task API endpoint.
	DefaultBaseURL = "https://todo-list-api-2hsk.onrender.com/tasks"

	// DefaultAPITimeout bounds a single task API call.
	DefaultAPITimeout = 10 * time.Second

	// DefaultToastDuration is how long a toast stays visible.
	DefaultToastDuration = 3 * time.Second

	// DefaultMetricsPath is where Prometheus metrics are served.
	DefaultMetricsPath = "/metrics"
)

// FileNames lists the files Find looks for, in order.
var FileNames = []string{"taskboard.yaml", "taskboard.yml", "taskboard.json"}

// Config is the complete taskboard configuration.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	API     APIConfig     `json:"api" yaml:"api"`
	Toast   ToastConfig   `json:"toast" yaml:"toast"`
	Session SessionConfig `json:"session" yaml:"session"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
	Log     LogConfig     `json:"log" yaml:"log"`
	Export  ExportConfig  `json:"export" yaml:"export"`

	// path stores the file the config was loaded from.
	path string
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// Address is the listen address.
	Address string `json:"address,omitempty" yaml:"address,omitempty"`

	// Dev enables development mode (verbose client logging).
	Dev bool `json:"dev,omitempty" yaml:"dev,omitempty"`

	// MaxSessions limits concurrent live sessions. 0 means unlimited.
	MaxSessions int `json:"max_sessions,omitempty" yaml:"max_sessions,omitempty"`
}

// APIConfig configures the remote task API.
type APIConfig struct {
	BaseURL string   `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// ToastConfig configures notifications.
type ToastConfig struct {
	// Duration applies to toasts that do not set their own.
	Duration Duration `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// SessionConfig configures per-session event handling.
type SessionConfig struct {
	MaxEventQueue   int     `json:"max_event_queue,omitempty" yaml:"max_event_queue,omitempty"`
	EventsPerSecond float64 `json:"events_per_second,omitempty" yaml:"events_per_second,omitempty"`
	EventBurst      int     `json:"event_burst,omitempty" yaml:"event_burst,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// ExportConfig configures task snapshot uploads.
type ExportConfig struct {
	Bucket string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// Endpoint overrides the S3 endpoint, for S3-compatible stores.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Address: DefaultAddress,
		},
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: Duration(DefaultAPITimeout),
		},
		Toast: ToastConfig{
			Duration: Duration(DefaultToastDuration),
		},
		Session: SessionConfig{
			MaxEventQueue:   256,
			EventsPerSecond: 50,
			EventBurst:      20,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    DefaultMetricsPath,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Export: ExportConfig{
			Prefix: "taskboard/",
			Region: "us-east-1",
		},
	}
}

// Load reads the file at path, applies environment overrides and validates
// the result. An empty path loads defaults and the environment only.
func Load(path string) (*Config, error) {
	cfg := New()
	if path != "" {
		var err error
		if cfg, err = LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads configuration from a JSON or YAML file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("TB101").
				WithDetail("No configuration file at " + path).
				WithSuggestion("Create taskboard.yaml or omit --config to use defaults")
		}
		return nil, errors.New("TB101").Wrap(err)
	}

	cfg := New()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = decodeJSON(data, cfg)
		if err != nil {
			return nil, parseError(path, jsonErrorLine(data, err), err).
				WithSuggestion("Check that " + filepath.Base(path) + " is valid JSON")
		}
	case ".yaml", ".yml":
		if len(bytes.TrimSpace(data)) > 0 {
			if err = yaml.Unmarshal(data, cfg); err != nil {
				return nil, parseError(path, yamlErrorLine(err), err).
					WithSuggestion("Check the indentation and value types in " + filepath.Base(path))
			}
		}
	default:
		return nil, errors.New("TB104").
			WithDetail("Cannot read " + path + ": use .json, .yaml or .yml")
	}

	cfg.path = path
	cfg.applyDefaults()
	return cfg, nil
}

func decodeJSON(data []byte, cfg *Config) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

func parseError(path string, line int, err error) *errors.Error {
	e := errors.New("TB102").Wrap(err)
	if line > 0 {
		e.WithLocation(path, line, 0)
	}
	return e
}

// jsonErrorLine converts a decoder offset into a 1-based line number.
func jsonErrorLine(data []byte, err error) int {
	var offset int64
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case stderrors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case stderrors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return 0
	}
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	return bytes.Count(data[:offset], []byte("\n")) + 1
}

var yamlLineRe = regexp.MustCompile(`line (\d+)`)

func yamlErrorLine(err error) int {
	m := yamlLineRe.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// applyDefaults fills in values a file set to empty.
func (c *Config) applyDefaults() {
	d := New()
	if c.Server.Address == "" {
		c.Server.Address = d.Server.Address
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = d.API.Timeout
	}
	if c.Toast.Duration == 0 {
		c.Toast.Duration = d.Toast.Duration
	}
	if c.Session.MaxEventQueue == 0 {
		c.Session.MaxEventQueue = d.Session.MaxEventQueue
	}
	if c.Session.EventsPerSecond == 0 {
		c.Session.EventsPerSecond = d.Session.EventsPerSecond
	}
	if c.Session.EventBurst == 0 {
		c.Session.EventBurst = d.Session.EventBurst
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = d.Metrics.Path
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Export.Region == "" {
		c.Export.Region = d.Export.Region
	}
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	var problems []string
	if c.API.Timeout <= 0 {
		problems = append(problems, "api.timeout must be positive")
	}
	if c.Toast.Duration <= 0 {
		problems = append(problems, "toast.duration must be positive")
	}
	if c.Server.MaxSessions < 0 {
		problems = append(problems, "server.max_sessions must not be negative")
	}
	if c.Session.MaxEventQueue < 0 || c.Session.EventsPerSecond < 0 || c.Session.EventBurst < 0 {
		problems = append(problems, "session limits must not be negative")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		problems = append(problems, "metrics.path must start with /")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, "log.level must be debug, info, warn or error")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		problems = append(problems, "log.format must be text or json")
	}
	if len(problems) == 0 {
		return nil
	}
	e := errors.New("TB103").WithDetail(strings.Join(problems, "; "))
	if c.path != "" {
		e.WithSuggestion("Fix the values in " + c.path)
	}
	return e
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Find returns the first of FileNames present in dir, or "".
func Find(dir string) string {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
