package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/taskboard/pkg/tasks"
	"github.com/vango-dev/taskboard/pkg/toast"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "taskboard").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for event and API durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "taskboard",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors for a taskboard server.
// All methods are safe on a nil *Metrics and do nothing.
type Metrics struct {
	eventsTotal     *prometheus.CounterVec
	eventDuration   *prometheus.HistogramVec
	eventErrors     *prometheus.CounterVec
	eventsDropped   *prometheus.CounterVec
	rendersSent     prometheus.Counter
	renderBytes     prometheus.Histogram
	activeSessions  prometheus.Gauge
	wsErrors        *prometheus.CounterVec
	toastsShown     *prometheus.CounterVec
	toastsDismissed *prometheus.CounterVec
	toastsActive    prometheus.Gauge
	taskDuration    *prometheus.HistogramVec
	taskErrors      *prometheus.CounterVec
}

var _ tasks.Observer = (*Metrics)(nil)

// NewMetrics registers the taskboard collectors. Registering twice on the
// same registry panics, as with promauto.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, labels)
	}
	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}

	return &Metrics{
		eventsTotal: counterVec("events_total", "Total number of live events processed", "event", "status"),

		eventDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "event_duration_seconds",
			Help:        "Event processing duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"event"}),

		eventErrors:   counterVec("event_errors_total", "Total number of event processing errors", "event", "error_type"),
		eventsDropped: counterVec("events_dropped_total", "Events dropped before reaching a handler", "reason"),

		rendersSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_sent_total",
			Help:        "Total number of render frames sent to clients",
			ConstLabels: config.ConstLabels,
		}),

		renderBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_bytes",
			Help:        "Size of render frames in bytes",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{256, 1024, 4096, 16384, 65536, 262144},
		}),

		activeSessions: gauge("active_sessions", "Number of active live sessions"),
		wsErrors:       counterVec("websocket_errors_total", "Total WebSocket errors by type", "type"),

		toastsShown:     counterVec("toasts_shown_total", "Notifications shown by kind", "kind"),
		toastsDismissed: counterVec("toasts_dismissed_total", "Notifications dismissed by reason", "reason"),
		toastsActive:    gauge("toasts_active", "Notifications currently visible across all sessions"),

		taskDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "task_api_duration_seconds",
			Help:        "Task API call duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"op"}),

		taskErrors: counterVec("task_api_errors_total", "Task API call failures", "op", "error_type"),
	}
}

// Prometheus returns middleware that records event count, duration and
// errors.
func (m *Metrics) Prometheus() Middleware {
	return func(next Handler) Handler {
		if m == nil {
			return next
		}
		return func(ctx context.Context, ev Event) error {
			name := ev.Name
			if name == "" {
				name = "unknown"
			}
			start := time.Now()
			err := next(ctx, ev)
			m.eventDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

			status := "success"
			if err != nil {
				status = "error"
				m.eventErrors.WithLabelValues(name, categorizeError(err)).Inc()
			}
			m.eventsTotal.WithLabelValues(name, status).Inc()
			return err
		}
	}
}

// categorizeError maps an error onto a small fixed label set.
func categorizeError(err error) string {
	var pe *PanicError
	if errors.As(err, &pe) {
		return "panic"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var se *tasks.StatusError
	if errors.As(err, &se) {
		if se.StatusCode == 404 {
			return "not_found"
		}
		return "status"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"):
		return "timeout"
	case strings.Contains(msg, "rate limit"):
		return "rate_limit"
	case strings.Contains(msg, "not found"):
		return "not_found"
	case strings.Contains(msg, "websocket"):
		return "websocket"
	default:
		return "internal"
	}
}

// SessionOpened records a new live session.
func (m *Metrics) SessionOpened() {
	if m != nil {
		m.activeSessions.Inc()
	}
}

// SessionClosed records a live session ending.
func (m *Metrics) SessionClosed() {
	if m != nil {
		m.activeSessions.Dec()
	}
}

// RecordRender records one render frame of size bytes.
func (m *Metrics) RecordRender(size int) {
	if m != nil {
		m.rendersSent.Inc()
		m.renderBytes.Observe(float64(size))
	}
}

// RecordDropped records an event dropped before dispatch.
func (m *Metrics) RecordDropped(reason string) {
	if m != nil {
		m.eventsDropped.WithLabelValues(reason).Inc()
	}
}

// RecordWebSocketError records a WebSocket error.
func (m *Metrics) RecordWebSocketError(errorType string) {
	if m != nil {
		m.wsErrors.WithLabelValues(errorType).Inc()
	}
}

// ToastObserver returns a toast.Observer feeding the notification metrics.
func (m *Metrics) ToastObserver() toast.Observer {
	return func(ev toast.Event) {
		if m == nil {
			return
		}
		switch ev.Type {
		case toast.EventShown:
			m.toastsShown.WithLabelValues(string(ev.Request.Kind)).Inc()
			m.toastsActive.Inc()
		case toast.EventDismissed:
			m.toastsDismissed.WithLabelValues(ev.Reason.String()).Inc()
			m.toastsActive.Dec()
		}
	}
}

// ObserveTaskCall implements tasks.Observer.
func (m *Metrics) ObserveTaskCall(op string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.taskDuration.WithLabelValues(op).Observe(d.Seconds())
	if err != nil {
		m.taskErrors.WithLabelValues(op, categorizeError(err)).Inc()
	}
}
