package eventbus

import (
	"context"
	"strconv"
	"time"
)

// Logger interface for operational logging of subscription changes and
// publish dispatch.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ContextualLogger interface for context-aware logging with automatic trace
// correlation. It follows the same dependency-free pattern as
// MetricsCollector and TracingCollector, so any logging backend that
// supports context-based correlation can be plugged in.
type ContextualLogger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// MetricsCollector interface for collecting bus performance and operational
// metrics: publish durations, event and handler counts, handler failures.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

// SpanContext represents an active tracing span that can be finished and
// updated with attributes.
type SpanContext interface {
	SetStatus(status string)
	AddAttribute(key, value string)
}

// TracingCollector interface for collecting distributed tracing information
// from publish calls. Dependency-free, so any tracing backend
// (OpenTelemetry, Jaeger, Zipkin, ...) can be plugged in by implementing it.
type TracingCollector interface {
	StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, SpanContext)
	FinishSpan(spanCtx SpanContext, status string, attrs map[string]string)
}

// Metric and span names emitted by the buses.
const (
	metricPublishDuration = "eventbus_publish_duration_seconds"
	metricEventsPublished = "eventbus_events_published_total"
	metricHandlerFailures = "eventbus_handler_failures_total"
	spanNamePublish       = "eventbus.publish"

	spanStatusOK    = "ok"
	spanStatusError = "error"
)

// observability bundles the optional collectors shared by both bus flavors.
// All methods are nil-safe.
type observability struct {
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
	tracingCollector TracingCollector
}

func (o *observability) debug(ctx context.Context, msg string, args ...any) {
	if o.contextualLogger != nil {
		o.contextualLogger.DebugContext(ctx, msg, args...)
		return
	}

	if o.logger != nil {
		o.logger.Debug(msg, args...)
	}
}

func (o *observability) startPublishSpan(ctx context.Context, flavor string, batchSize int) (context.Context, SpanContext) {
	if o.tracingCollector == nil {
		return ctx, nil
	}

	return o.tracingCollector.StartSpan(ctx, spanNamePublish, map[string]string{
		"flavor":     flavor,
		"batch_size": strconv.Itoa(batchSize),
	})
}

func (o *observability) finishPublishSpan(span SpanContext, err error) {
	if o.tracingCollector == nil || span == nil {
		return
	}

	status := spanStatusOK
	attrs := map[string]string(nil)
	if err != nil {
		status = spanStatusError
		attrs = map[string]string{"error": err.Error()}
	}

	o.tracingCollector.FinishSpan(span, status, attrs)
}

func (o *observability) recordPublish(flavor string, batchSize int, duration time.Duration, err error) {
	if o.metricsCollector == nil {
		return
	}

	labels := map[string]string{"flavor": flavor}

	o.metricsCollector.RecordDuration(metricPublishDuration, duration, labels)

	if err != nil {
		o.metricsCollector.IncrementCounter(metricHandlerFailures, labels)
		return
	}

	o.metricsCollector.RecordValue(metricEventsPublished, float64(batchSize), labels)
}
