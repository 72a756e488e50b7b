package eventbus

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/adyshev/eventbus/event"
)

// EventHandler is the self-filtering subscription flavor: a handler object
// that exposes its own filtering rule. Handler objects must be comparable
// (typically pointers); the bus deduplicates them by identity.
type EventHandler interface {
	// Filter returns the handler's intrinsic filtering rule. It is consulted
	// once per handler per publish call.
	Filter() HandlerFilter

	// Handle receives the complete ordered batch. A handler that cares about
	// only some event kinds in the batch filters internally.
	Handle(ctx context.Context, events event.Events) error
}

// HandlerBus is the self-filtering handler flavor of the bus. The zero
// value is not usable; construct it with NewHandlerBus.
type HandlerBus struct {
	mu       sync.Mutex
	handlers []EventHandler

	observability
}

// NewHandlerBus creates a HandlerBus with the given options.
func NewHandlerBus(options ...Option) (*HandlerBus, error) {
	bus := &HandlerBus{}

	for _, option := range options {
		if err := option(&bus.observability); err != nil {
			return nil, err
		}
	}

	return bus, nil
}

// Subscribe adds the handler to the subscription list. Subscribing the same
// handler object twice is a no-op; a nil handler is ignored.
func (b *HandlerBus) Subscribe(handler EventHandler) {
	if handler == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if slices.Contains(b.handlers, handler) {
		return
	}

	b.handlers = append(b.handlers, handler)

	if b.logger != nil {
		b.logger.Info("handler subscribed", "handlers", len(b.handlers))
	}
}

// Unsubscribe removes the handler from the subscription list.
// Unsubscribing a handler that is not present is a no-op.
func (b *HandlerBus) Unsubscribe(handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers = slices.DeleteFunc(b.handlers, func(existing EventHandler) bool {
		return existing == handler
	})
}

// Publish delivers the batch to all subscribed handlers whose filter
// accepts it, in subscription order. Each handler's filter is evaluated
// once per publish call; there is no cross-handler caching, since filters
// are per-object. A handler error aborts delivery immediately and
// propagates, joined with ErrHandlerFailed.
func (b *HandlerBus) Publish(ctx context.Context, events event.Events) error {
	start := time.Now()

	ctx, span := b.startPublishSpan(ctx, "handler", len(events))

	err := b.dispatch(ctx, events)

	b.finishPublishSpan(span, err)
	b.recordPublish("handler", len(events), time.Since(start), err)

	return err
}

func (b *HandlerBus) dispatch(ctx context.Context, events event.Events) error {
	snapshot := b.snapshot()

	b.debug(ctx, "publishing events", "batch_size", len(events), "handlers", len(snapshot))

	for _, handler := range snapshot {
		if !handler.Filter().Accepts(events) {
			continue
		}

		if err := handler.Handle(ctx, events); err != nil {
			return errors.Join(ErrHandlerFailed, err)
		}
	}

	return nil
}

// snapshot returns a point-in-time copy of the handler list, so that
// registry mutations made during a publish call cannot affect it.
func (b *HandlerBus) snapshot() []EventHandler {
	b.mu.Lock()
	defer b.mu.Unlock()

	return slices.Clone(b.handlers)
}

// IsEmpty reports whether no handlers remain.
func (b *HandlerBus) IsEmpty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.handlers) == 0
}

// AssertEmpty fails loudly if handlers remain, to catch leaked test or
// development subscriptions at teardown.
func (b *HandlerBus) AssertEmpty() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if remaining := len(b.handlers); remaining > 0 {
		return fmt.Errorf("%w: %d remaining", ErrSubscriptionsNotEmpty, remaining)
	}

	return nil
}

// Clear drops all handlers.
func (b *HandlerBus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers = nil
}
