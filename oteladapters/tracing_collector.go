package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/adyshev/eventbus/eventbus"
)

// TracingCollector implements eventbus.TracingCollector using the
// OpenTelemetry tracing API: one span per publish call, with trace context
// propagated through the handler invocations.
type TracingCollector struct {
	tracer trace.Tracer
}

// NewTracingCollector creates a tracing collector on top of the given
// tracer, which should come from your OpenTelemetry TracerProvider.
func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

// StartSpan starts an OpenTelemetry span with the given name and attributes.
func (t *TracingCollector) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, eventbus.SpanContext) {
	spanCtx, span := t.tracer.Start(ctx, name, trace.WithAttributes(toSpanAttributes(attrs)...))

	return spanCtx, &spanContext{span: span}
}

// FinishSpan completes the span with the given status and final attributes.
func (t *TracingCollector) FinishSpan(spanCtx eventbus.SpanContext, status string, attrs map[string]string) {
	wrapped, ok := spanCtx.(*spanContext)
	if !ok {
		return
	}

	wrapped.span.SetAttributes(toSpanAttributes(attrs)...)
	wrapped.SetStatus(status)
	wrapped.span.End()
}

var _ eventbus.TracingCollector = (*TracingCollector)(nil)

// spanContext implements eventbus.SpanContext by wrapping an OpenTelemetry span.
type spanContext struct {
	span trace.Span
}

// SetStatus maps the generic status string to an OpenTelemetry status code.
func (s *spanContext) SetStatus(status string) {
	switch status {
	case "ok", "success", "completed":
		s.span.SetStatus(codes.Ok, "")
	case "error", "failed", "failure":
		s.span.SetStatus(codes.Error, "publish failed")
	default:
		s.span.SetStatus(codes.Unset, "")
	}
}

// AddAttribute adds a string attribute to the span.
func (s *spanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

func toSpanAttributes(attrs map[string]string) []attribute.KeyValue {
	spanAttrs := make([]attribute.KeyValue, 0, len(attrs))
	for key, value := range attrs {
		spanAttrs = append(spanAttrs, attribute.String(key, value))
	}

	return spanAttrs
}
