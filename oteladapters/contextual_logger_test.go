package oteladapters_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/embedded"

	"github.com/adyshev/eventbus/oteladapters"
)

/***** SlogBridgeLogger *****/

type capturedRecord struct {
	level   slog.Level
	message string
	attrs   map[string]any
}

// recordingSlogHandler captures every record it handles.
type recordingSlogHandler struct {
	records *[]capturedRecord
	grouped []slog.Attr
}

func newRecordingSlogHandler() *recordingSlogHandler {
	return &recordingSlogHandler{records: &[]capturedRecord{}}
}

func (h *recordingSlogHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (h *recordingSlogHandler) Handle(_ context.Context, record slog.Record) error {
	captured := capturedRecord{
		level:   record.Level,
		message: record.Message,
		attrs:   make(map[string]any),
	}

	record.Attrs(func(attr slog.Attr) bool {
		captured.attrs[attr.Key] = attr.Value.Any()
		return true
	})

	*h.records = append(*h.records, captured)

	return nil
}

func (h *recordingSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &recordingSlogHandler{records: h.records, grouped: append(h.grouped, attrs...)}
}

func (h *recordingSlogHandler) WithGroup(_ string) slog.Handler {
	return h
}

func Test_SlogBridgeLogger_ForwardsMessagesAndKeyValuePairs(t *testing.T) {
	handler := newRecordingSlogHandler()
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(handler)

	logger.DebugContext(t.Context(), "publishing events", "batch_size", 4)
	logger.InfoContext(t.Context(), "subscription added", "subscriptions", 1)
	logger.WarnContext(t.Context(), "slow handler")
	logger.ErrorContext(t.Context(), "handler failed", "error", "projection out of disk")

	records := *handler.records
	require.Len(t, records, 4)

	assert.Equal(t, slog.LevelDebug, records[0].level)
	assert.Equal(t, "publishing events", records[0].message)
	assert.Equal(t, int64(4), records[0].attrs["batch_size"])

	assert.Equal(t, slog.LevelInfo, records[1].level)
	assert.Equal(t, slog.LevelWarn, records[2].level)

	assert.Equal(t, slog.LevelError, records[3].level)
	assert.Equal(t, "projection out of disk", records[3].attrs["error"])
}

func Test_NewSlogBridgeLogger_UsesTheGlobalLoggerProvider(t *testing.T) {
	logger := oteladapters.NewSlogBridgeLogger("eventbus-test")

	require.NotNil(t, logger)
	// The global provider defaults to a no-op; emitting must not panic.
	logger.InfoContext(t.Context(), "subscription added")
}

/***** OTelLogger *****/

// recordingOTelLogger captures emitted OpenTelemetry log records.
type recordingOTelLogger struct {
	embedded.Logger

	records []log.Record
}

func (l *recordingOTelLogger) Emit(_ context.Context, record log.Record) {
	l.records = append(l.records, record)
}

func (l *recordingOTelLogger) Enabled(_ context.Context, _ log.EnabledParameters) bool {
	return true
}

func Test_OTelLogger_EmitsRecordsWithSeverityAndAttributes(t *testing.T) {
	backend := &recordingOTelLogger{}
	logger := oteladapters.NewOTelLogger(backend)

	logger.InfoContext(t.Context(), "subscription added", "subscriptions", 2, "flavor", "predicate")

	require.Len(t, backend.records, 1)
	record := backend.records[0]

	assert.Equal(t, log.SeverityInfo, record.Severity())
	assert.Equal(t, "subscription added", record.Body().AsString())

	attrs := make(map[string]string)
	record.WalkAttributes(func(kv log.KeyValue) bool {
		attrs[kv.Key] = kv.Value.AsString()
		return true
	})

	assert.Equal(t, "2", attrs["subscriptions"])
	assert.Equal(t, "predicate", attrs["flavor"])
}

func Test_OTelLogger_SeverityMapping(t *testing.T) {
	backend := &recordingOTelLogger{}
	logger := oteladapters.NewOTelLogger(backend)

	logger.DebugContext(t.Context(), "debug")
	logger.InfoContext(t.Context(), "info")
	logger.WarnContext(t.Context(), "warn")
	logger.ErrorContext(t.Context(), "error")

	require.Len(t, backend.records, 4)
	assert.Equal(t, log.SeverityDebug, backend.records[0].Severity())
	assert.Equal(t, log.SeverityInfo, backend.records[1].Severity())
	assert.Equal(t, log.SeverityWarn, backend.records[2].Severity())
	assert.Equal(t, log.SeverityError, backend.records[3].Severity())
}

func Test_OTelLogger_SkipsNonStringKeys(t *testing.T) {
	backend := &recordingOTelLogger{}
	logger := oteladapters.NewOTelLogger(backend)

	logger.InfoContext(t.Context(), "message", 42, "value", "valid_key", "kept")

	require.Len(t, backend.records, 1)

	attrs := make(map[string]string)
	backend.records[0].WalkAttributes(func(kv log.KeyValue) bool {
		attrs[kv.Key] = kv.Value.AsString()
		return true
	})

	assert.Equal(t, map[string]string{"valid_key": "kept"}, attrs)
}
