package middleware

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for taskboard sessions.
const defaultTracerName = "taskboard"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "taskboard").
	TracerName string

	// IncludeValue records the event value as a span attribute.
	// Input values may contain user text - disabled by default.
	IncludeValue bool

	// Filter determines which events to trace.
	// If nil, all events are traced.
	Filter func(ev Event) bool

	// AttributeExtractor adds custom attributes for each traced event.
	AttributeExtractor func(ev Event) []attribute.KeyValue

	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithIncludeValue enables recording event values.
func WithIncludeValue(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeValue = include
	}
}

// WithEventFilter sets a filter function for events.
func WithEventFilter(filter func(ev Event) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(ev Event) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
	}
}

// OpenTelemetry creates middleware that traces every live event.
//
// The span is stored on the context passed to the next handler, so
// SpanFromContext and outbound HTTP calls see it.
func OpenTelemetry(opts ...OTelOption) Middleware {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}
	config.tracer = otel.Tracer(config.TracerName)

	return func(next Handler) Handler {
		return func(ctx context.Context, ev Event) error {
			if config.Filter != nil && !config.Filter(ev) {
				return next(ctx, ev)
			}

			attrs := []attribute.KeyValue{
				attribute.String("taskboard.session_id", ev.SessionID),
				attribute.String("taskboard.event_type", ev.Name),
				attribute.String("taskboard.event_target", ev.HID),
			}
			if config.IncludeValue {
				attrs = append(attrs, attribute.String("taskboard.event_value", ev.Value))
			}
			if config.AttributeExtractor != nil {
				attrs = append(attrs, config.AttributeExtractor(ev)...)
			}

			spanCtx, span := config.tracer.Start(ctx, formatSpanName(ev),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
				trace.WithTimestamp(time.Now()),
			)
			defer span.End()

			err := next(spanCtx, ev)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else {
				span.SetStatus(codes.Ok, "")
			}
			return err
		}
	}
}

// SpanFromContext returns the current span. It never returns nil; outside
// a traced event the span is a no-op.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

func formatSpanName(ev Event) string {
	name := ev.Name
	if name == "" {
		name = "event"
	}
	return fmt.Sprintf("taskboard.%s", name)
}
