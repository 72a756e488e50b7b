package oteladapters_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/adyshev/eventbus/oteladapters"
)

func recordedTracer(t *testing.T) (*oteladapters.TracingCollector, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() {
		_ = provider.Shutdown(t.Context())
	})

	return oteladapters.NewTracingCollector(provider.Tracer("eventbus-test")), recorder
}

func spanAttributes(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}

	return attrs
}

func Test_TracingCollector_StartSpanPropagatesTheSpanContext(t *testing.T) {
	collector, _ := recordedTracer(t)

	ctx, span := collector.StartSpan(t.Context(), "eventbus.publish", map[string]string{"flavor": "predicate"})

	require.NotNil(t, span)
	assert.True(t, trace.SpanFromContext(ctx).SpanContext().IsValid())

	collector.FinishSpan(span, "ok", nil)
}

func Test_TracingCollector_FinishSpanWithOKStatus(t *testing.T) {
	collector, recorder := recordedTracer(t)

	_, span := collector.StartSpan(t.Context(), "eventbus.publish", map[string]string{
		"flavor":     "predicate",
		"batch_size": "4",
	})
	collector.FinishSpan(span, "ok", nil)

	ended := recorder.Ended()
	require.Len(t, ended, 1)

	assert.Equal(t, "eventbus.publish", ended[0].Name())
	assert.Equal(t, codes.Ok, ended[0].Status().Code)

	attrs := spanAttributes(ended[0])
	assert.Equal(t, "predicate", attrs["flavor"].AsString())
	assert.Equal(t, "4", attrs["batch_size"].AsString())
}

func Test_TracingCollector_FinishSpanWithErrorStatusAndFinalAttributes(t *testing.T) {
	collector, recorder := recordedTracer(t)

	_, span := collector.StartSpan(t.Context(), "eventbus.publish", nil)
	collector.FinishSpan(span, "error", map[string]string{"error": "projection out of disk"})

	ended := recorder.Ended()
	require.Len(t, ended, 1)

	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "projection out of disk", spanAttributes(ended[0])["error"].AsString())
}

func Test_TracingCollector_AddAttributeUpdatesTheActiveSpan(t *testing.T) {
	collector, recorder := recordedTracer(t)

	_, span := collector.StartSpan(t.Context(), "eventbus.publish", nil)
	span.AddAttribute("subscriber", "projection")
	collector.FinishSpan(span, "ok", nil)

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "projection", spanAttributes(ended[0])["subscriber"].AsString())
}

func Test_TracingCollector_FinishSpanIgnoresForeignSpanContexts(t *testing.T) {
	collector, recorder := recordedTracer(t)

	collector.FinishSpan(foreignSpanContext{}, "ok", nil)

	assert.Empty(t, recorder.Ended())
}

type foreignSpanContext struct{}

func (foreignSpanContext) SetStatus(_ string) {}

func (foreignSpanContext) AddAttribute(_, _ string) {}
