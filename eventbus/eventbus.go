package eventbus

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/adyshev/eventbus/event"
)

// ErrSubscriptionsNotEmpty is returned by AssertEmpty when subscriptions remain.
var ErrSubscriptionsNotEmpty = errors.New("event handler subscriptions still exist")

// ErrHandlerFailed is joined with the handler's own error when a handler
// fails during publish.
var ErrHandlerFailed = errors.New("handler failed during publish")

// Predicate decides whether a subscription fires for a batch of events. It
// must be a pure function over the batch: the bus evaluates each distinct
// predicate at most once per publish call and reuses the result for every
// subscription sharing it.
type Predicate func(events event.Events) bool

// Handler receives a published batch of events, in order. A returned error
// propagates to the publisher and aborts delivery to subsequent subscribers.
type Handler func(ctx context.Context, events event.Events) error

// subscription is one (predicate, handler) pair. The identity keys are the
// function code pointers: the closest Go analogue of function identity,
// used for pair dedup and for the per-publish predicate cache.
type subscription struct {
	predicate    Predicate
	handler      Handler
	predicateKey uintptr
	handlerKey   uintptr
}

// EventBus is the predicate-pair flavor of the bus. The zero value is not
// usable; construct it with NewEventBus.
type EventBus struct {
	mu            sync.Mutex
	subscriptions []subscription

	observability
}

// NewEventBus creates an EventBus with the given options.
func NewEventBus(options ...Option) (*EventBus, error) {
	bus := &EventBus{}

	for _, option := range options {
		if err := option(&bus.observability); err != nil {
			return nil, err
		}
	}

	return bus, nil
}

// Subscribe adds the (predicate, handler) pair to the subscription list. A
// nil predicate means the handler fires for every published batch.
// Registering the exact same pair twice is a no-op; a nil handler is ignored.
func (b *EventBus) Subscribe(handler Handler, predicate Predicate) {
	if handler == nil {
		return
	}

	sub := subscription{
		predicate:    predicate,
		handler:      handler,
		predicateKey: funcKey(predicate),
		handlerKey:   funcKey(handler),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, existing := range b.subscriptions {
		if existing.predicateKey == sub.predicateKey && existing.handlerKey == sub.handlerKey {
			return
		}
	}

	b.subscriptions = append(b.subscriptions, sub)

	if b.logger != nil {
		b.logger.Info("subscription added", "subscriptions", len(b.subscriptions))
	}
}

// Unsubscribe removes the (predicate, handler) pair from the subscription
// list. Unsubscribing a pair that is not present is a no-op.
func (b *EventBus) Unsubscribe(handler Handler, predicate Predicate) {
	predicateKey := funcKey(predicate)
	handlerKey := funcKey(handler)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscriptions = slices.DeleteFunc(b.subscriptions, func(existing subscription) bool {
		return existing.predicateKey == predicateKey && existing.handlerKey == handlerKey
	})
}

// Publish delivers the batch to all subscribed handlers whose predicate is
// satisfied (or which have no predicate), in subscription order.
//
// Each distinct predicate is evaluated at most once for the whole batch; a
// satisfied predicate delivers the entire batch to its handlers, including
// any events the predicate did not specifically match. A handler error
// aborts delivery immediately and propagates, joined with ErrHandlerFailed.
func (b *EventBus) Publish(ctx context.Context, events event.Events) error {
	start := time.Now()

	ctx, span := b.startPublishSpan(ctx, "predicate", len(events))

	err := b.dispatch(ctx, events)

	b.finishPublishSpan(span, err)
	b.recordPublish("predicate", len(events), time.Since(start), err)

	return err
}

func (b *EventBus) dispatch(ctx context.Context, events event.Events) error {
	snapshot := b.snapshot()

	b.debug(ctx, "publishing events", "batch_size", len(events), "subscriptions", len(snapshot))

	// Cached predicate results mean no predicate is evaluated
	// more than once for the same publish call.
	cache := make(map[uintptr]bool)

	for _, sub := range snapshot {
		if sub.predicate != nil {
			satisfied, evaluated := cache[sub.predicateKey]
			if !evaluated {
				satisfied = sub.predicate(events)
				cache[sub.predicateKey] = satisfied
			}

			if !satisfied {
				continue
			}
		}

		if err := sub.handler(ctx, events); err != nil {
			return errors.Join(ErrHandlerFailed, err)
		}
	}

	return nil
}

// snapshot returns a point-in-time copy of the subscription list, so that
// registry mutations made during a publish call cannot affect it.
func (b *EventBus) snapshot() []subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	return slices.Clone(b.subscriptions)
}

// IsEmpty reports whether no subscriptions remain.
func (b *EventBus) IsEmpty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.subscriptions) == 0
}

// AssertEmpty fails loudly if subscriptions remain, to catch leaked test or
// development subscriptions at teardown.
func (b *EventBus) AssertEmpty() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if remaining := len(b.subscriptions); remaining > 0 {
		return fmt.Errorf("%w: %d remaining", ErrSubscriptionsNotEmpty, remaining)
	}

	return nil
}

// Clear drops all subscriptions.
func (b *EventBus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscriptions = nil
}

// funcKey returns the code pointer identifying a function value; nil
// functions map to 0.
func funcKey(fn any) uintptr {
	value := reflect.ValueOf(fn)
	if !value.IsValid() || value.IsNil() {
		return 0
	}

	return value.Pointer()
}
