package eventbus_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adyshev/eventbus/event"
	"github.com/adyshev/eventbus/eventbus"
)

/***** fixtures *****/

const (
	somethingHappenedEventType     = "SomethingHappened"
	somethingElseHappenedEventType = "SomethingElseHappened"
)

type fakeEvent struct {
	eventType    event.TopicString
	originatorID uuid.UUID
}

func (f fakeEvent) EventType() event.TopicString {
	return f.eventType
}

func (f fakeEvent) OriginatorID() uuid.UUID {
	return f.originatorID
}

func (f fakeEvent) Attributes() map[string]any {
	return map[string]any{"originator_id": f.originatorID}
}

func someBatch(eventTypes ...event.TopicString) event.Events {
	batch := make(event.Events, 0, len(eventTypes))
	for _, eventType := range eventTypes {
		batch = append(batch, fakeEvent{eventType: eventType, originatorID: uuid.New()})
	}

	return batch
}

func newBus(t *testing.T) *eventbus.EventBus {
	t.Helper()

	bus, err := eventbus.NewEventBus()
	require.NoError(t, err)

	return bus
}

/***** subscription registry *****/

func Test_EventBus_NilPredicateFiresForEveryBatch(t *testing.T) {
	bus := newBus(t)

	var received []event.Events
	bus.Subscribe(func(_ context.Context, events event.Events) error {
		received = append(received, events)
		return nil
	}, nil)

	batch := someBatch(somethingHappenedEventType, somethingElseHappenedEventType)
	require.NoError(t, bus.Publish(t.Context(), batch))

	require.Len(t, received, 1)
	assert.Equal(t, batch, received[0])
}

func Test_EventBus_DuplicatePairIsIgnored(t *testing.T) {
	bus := newBus(t)

	calls := 0
	handler := func(_ context.Context, _ event.Events) error {
		calls++
		return nil
	}
	predicate := func(_ event.Events) bool { return true }

	bus.Subscribe(handler, predicate)
	bus.Subscribe(handler, predicate)

	require.NoError(t, bus.Publish(t.Context(), someBatch(somethingHappenedEventType)))

	assert.Equal(t, 1, calls)
}

func Test_EventBus_SameHandlerWithDifferentPredicatesFiresPerPair(t *testing.T) {
	bus := newBus(t)

	calls := 0
	handler := func(_ context.Context, _ event.Events) error {
		calls++
		return nil
	}

	bus.Subscribe(handler, nil)
	bus.Subscribe(handler, func(_ event.Events) bool { return true })

	require.NoError(t, bus.Publish(t.Context(), someBatch(somethingHappenedEventType)))

	assert.Equal(t, 2, calls)
}

func Test_EventBus_NilHandlerIsIgnored(t *testing.T) {
	bus := newBus(t)

	bus.Subscribe(nil, nil)

	assert.True(t, bus.IsEmpty())
}

func Test_EventBus_UnsubscribeRemovesThePair(t *testing.T) {
	bus := newBus(t)

	calls := 0
	handler := func(_ context.Context, _ event.Events) error {
		calls++
		return nil
	}

	bus.Subscribe(handler, nil)
	bus.Unsubscribe(handler, nil)

	require.NoError(t, bus.Publish(t.Context(), someBatch(somethingHappenedEventType)))

	assert.Equal(t, 0, calls)
	assert.True(t, bus.IsEmpty())
}

func Test_EventBus_UnsubscribeAbsentPairIsANoOp(t *testing.T) {
	bus := newBus(t)

	handler := func(_ context.Context, _ event.Events) error { return nil }
	bus.Subscribe(handler, nil)

	bus.Unsubscribe(func(_ context.Context, _ event.Events) error { return nil }, nil)

	assert.False(t, bus.IsEmpty())
}

/***** dispatch semantics *****/

func Test_EventBus_PredicateEvaluatedOnceForSharedPredicate(t *testing.T) {
	bus := newBus(t)

	evaluations := 0
	containsSomething := func(events event.Events) bool {
		evaluations++
		for _, ev := range events {
			if ev.EventType() == somethingHappenedEventType {
				return true
			}
		}
		return false
	}

	var firedHandlers []string
	bus.Subscribe(func(_ context.Context, _ event.Events) error {
		firedHandlers = append(firedHandlers, "first")
		return nil
	}, containsSomething)
	bus.Subscribe(func(_ context.Context, _ event.Events) error {
		firedHandlers = append(firedHandlers, "second")
		return nil
	}, containsSomething)
	bus.Subscribe(func(_ context.Context, _ event.Events) error {
		firedHandlers = append(firedHandlers, "third")
		return nil
	}, containsSomething)

	require.NoError(t, bus.Publish(t.Context(), someBatch(somethingHappenedEventType)))

	assert.Equal(t, 1, evaluations)
	assert.Equal(t, []string{"first", "second", "third"}, firedHandlers)
}

func Test_EventBus_UnsatisfiedPredicateSkipsAllItsSubscriptions(t *testing.T) {
	bus := newBus(t)

	evaluations := 0
	neverSatisfied := func(_ event.Events) bool {
		evaluations++
		return false
	}

	calls := 0
	bus.Subscribe(func(_ context.Context, _ event.Events) error {
		calls++
		return nil
	}, neverSatisfied)
	bus.Subscribe(func(_ context.Context, _ event.Events) error {
		calls++
		return nil
	}, neverSatisfied)

	require.NoError(t, bus.Publish(t.Context(), someBatch(somethingHappenedEventType)))

	assert.Equal(t, 1, evaluations)
	assert.Equal(t, 0, calls)
}

func Test_EventBus_SatisfiedPredicateDeliversTheWholeBatch(t *testing.T) {
	// The predicate matches one event kind; the handler still receives the
	// complete batch, non-matching events included.
	bus := newBus(t)

	var received event.Events
	bus.Subscribe(func(_ context.Context, events event.Events) error {
		received = events
		return nil
	}, func(events event.Events) bool {
		for _, ev := range events {
			if ev.EventType() == somethingHappenedEventType {
				return true
			}
		}
		return false
	})

	batch := someBatch(somethingElseHappenedEventType, somethingHappenedEventType)
	require.NoError(t, bus.Publish(t.Context(), batch))

	assert.Equal(t, batch, received)
}

func Test_EventBus_PredicateCacheIsScopedToOnePublishCall(t *testing.T) {
	bus := newBus(t)

	evaluations := 0
	bus.Subscribe(func(_ context.Context, _ event.Events) error { return nil }, func(_ event.Events) bool {
		evaluations++
		return true
	})

	require.NoError(t, bus.Publish(t.Context(), someBatch(somethingHappenedEventType)))
	require.NoError(t, bus.Publish(t.Context(), someBatch(somethingHappenedEventType)))

	assert.Equal(t, 2, evaluations)
}

func Test_EventBus_HandlerErrorAbortsDeliveryAndPropagates(t *testing.T) {
	bus := newBus(t)

	handlerErr := errors.New("projection out of disk")

	firstCalled, thirdCalled := false, false
	bus.Subscribe(func(_ context.Context, _ event.Events) error {
		firstCalled = true
		return nil
	}, nil)
	bus.Subscribe(func(_ context.Context, _ event.Events) error {
		return handlerErr
	}, nil)
	bus.Subscribe(func(_ context.Context, _ event.Events) error {
		thirdCalled = true
		return nil
	}, nil)

	err := bus.Publish(t.Context(), someBatch(somethingHappenedEventType))

	assert.ErrorIs(t, err, eventbus.ErrHandlerFailed)
	assert.ErrorIs(t, err, handlerErr)
	assert.True(t, firstCalled)
	assert.False(t, thirdCalled)
}

func Test_EventBus_MutationDuringPublishDoesNotAffectTheInFlightCall(t *testing.T) {
	bus := newBus(t)

	lateCalls := 0
	lateHandler := func(_ context.Context, _ event.Events) error {
		lateCalls++
		return nil
	}

	bus.Subscribe(func(_ context.Context, _ event.Events) error {
		bus.Subscribe(lateHandler, nil)
		return nil
	}, nil)

	require.NoError(t, bus.Publish(t.Context(), someBatch(somethingHappenedEventType)))
	assert.Equal(t, 0, lateCalls)

	require.NoError(t, bus.Publish(t.Context(), someBatch(somethingHappenedEventType)))
	assert.Equal(t, 1, lateCalls)
}

/***** housekeeping *****/

func Test_EventBus_AssertEmptyAndClear(t *testing.T) {
	bus := newBus(t)

	require.NoError(t, bus.AssertEmpty())

	bus.Subscribe(func(_ context.Context, _ event.Events) error { return nil }, nil)

	err := bus.AssertEmpty()
	assert.ErrorIs(t, err, eventbus.ErrSubscriptionsNotEmpty)

	bus.Clear()

	assert.True(t, bus.IsEmpty())
	assert.NoError(t, bus.AssertEmpty())
}

func Test_NewEventBus_NilCollectorOptionFails(t *testing.T) {
	testCases := []struct {
		name   string
		option eventbus.Option
	}{
		{name: "nil logger", option: eventbus.WithLogger(nil)},
		{name: "nil contextual logger", option: eventbus.WithContextualLogger(nil)},
		{name: "nil metrics collector", option: eventbus.WithMetrics(nil)},
		{name: "nil tracing collector", option: eventbus.WithTracing(nil)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := eventbus.NewEventBus(tc.option)
			assert.ErrorIs(t, err, eventbus.ErrNilCollector)
		})
	}
}

/***** observability *****/

type spyMetricsCollector struct {
	durations map[string]time.Duration
	counters  map[string]int
	values    map[string]float64
	labels    map[string]map[string]string
}

func newSpyMetricsCollector() *spyMetricsCollector {
	return &spyMetricsCollector{
		durations: make(map[string]time.Duration),
		counters:  make(map[string]int),
		values:    make(map[string]float64),
		labels:    make(map[string]map[string]string),
	}
}

func (c *spyMetricsCollector) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	c.durations[metric] = duration
	c.labels[metric] = labels
}

func (c *spyMetricsCollector) IncrementCounter(metric string, labels map[string]string) {
	c.counters[metric]++
	c.labels[metric] = labels
}

func (c *spyMetricsCollector) RecordValue(metric string, value float64, labels map[string]string) {
	c.values[metric] = value
	c.labels[metric] = labels
}

type spySpan struct {
	status     string
	attributes map[string]string
}

func (s *spySpan) SetStatus(status string) {
	s.status = status
}

func (s *spySpan) AddAttribute(key, value string) {
	if s.attributes == nil {
		s.attributes = make(map[string]string)
	}
	s.attributes[key] = value
}

type spyTracingCollector struct {
	spans      []*spySpan
	startAttrs []map[string]string
	statuses   []string
}

func (c *spyTracingCollector) StartSpan(
	ctx context.Context,
	_ string,
	attrs map[string]string,
) (context.Context, eventbus.SpanContext) {

	span := &spySpan{}
	c.spans = append(c.spans, span)
	c.startAttrs = append(c.startAttrs, attrs)

	return ctx, span
}

func (c *spyTracingCollector) FinishSpan(_ eventbus.SpanContext, status string, _ map[string]string) {
	c.statuses = append(c.statuses, status)
}

func Test_EventBus_RecordsMetricsAndSpansOnPublish(t *testing.T) {
	metrics := newSpyMetricsCollector()
	tracing := &spyTracingCollector{}

	bus, err := eventbus.NewEventBus(eventbus.WithMetrics(metrics), eventbus.WithTracing(tracing))
	require.NoError(t, err)

	bus.Subscribe(func(_ context.Context, _ event.Events) error { return nil }, nil)

	require.NoError(t, bus.Publish(t.Context(), someBatch(somethingHappenedEventType, somethingElseHappenedEventType)))

	assert.Contains(t, metrics.durations, "eventbus_publish_duration_seconds")
	assert.Equal(t, 2.0, metrics.values["eventbus_events_published_total"])
	assert.Equal(t, "predicate", metrics.labels["eventbus_events_published_total"]["flavor"])

	require.Len(t, tracing.startAttrs, 1)
	assert.Equal(t, "2", tracing.startAttrs[0]["batch_size"])
	assert.Equal(t, []string{"ok"}, tracing.statuses)
}

func Test_EventBus_RecordsHandlerFailures(t *testing.T) {
	metrics := newSpyMetricsCollector()
	tracing := &spyTracingCollector{}

	bus, err := eventbus.NewEventBus(eventbus.WithMetrics(metrics), eventbus.WithTracing(tracing))
	require.NoError(t, err)

	bus.Subscribe(func(_ context.Context, _ event.Events) error {
		return errors.New("projection out of disk")
	}, nil)

	require.Error(t, bus.Publish(t.Context(), someBatch(somethingHappenedEventType)))

	assert.Equal(t, 1, metrics.counters["eventbus_handler_failures_total"])
	assert.NotContains(t, metrics.values, "eventbus_events_published_total")
	assert.Equal(t, []string{"error"}, tracing.statuses)
}
