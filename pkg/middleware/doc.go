// Package middleware provides the event pipeline and observability
// middleware for taskboard live sessions.
//
// A live session turns every browser event into a middleware.Event and
// passes it through a Handler chain before the bound Go handler runs:
//
//	h := middleware.Chain(dispatch,
//	    middleware.Recover(),
//	    middleware.OpenTelemetry(),
//	    metrics.Prometheus(),
//	)
//
// # OpenTelemetry
//
// OpenTelemetry creates one span per event, carrying the session ID, the
// target HID and the event name. Handlers receive the span context, so HTTP
// calls made from a handler inherit the trace:
//
//	req, _ := http.NewRequestWithContext(ctx, "GET", url, nil)
//
// The tracer comes from the global provider; configure it in main() with
// otel.SetTracerProvider before starting the server.
//
// # Prometheus
//
// Metrics collects event, session, render, notification and task API
// metrics on a configurable registry:
//   - taskboard_events_total: events processed by name and status
//   - taskboard_event_duration_seconds: event processing duration
//   - taskboard_active_sessions: current live sessions
//   - taskboard_toasts_shown_total: notifications shown by kind
//   - taskboard_toasts_dismissed_total: notifications dismissed by reason
//   - taskboard_task_api_duration_seconds: task API latency by operation
//
// Expose them with promhttp.HandlerFor on the same registry.
package middleware
