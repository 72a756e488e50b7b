// Package aggregate provides the aggregate root: an entity that batches the
// events it produces in a pending queue and flushes them as one unit on an
// explicit save.
package aggregate

import (
	"context"
	"slices"

	"github.com/adyshev/eventbus/entity"
	"github.com/adyshev/eventbus/event"
)

// Root is the aggregate root capability. Concrete aggregates embed it:
//
//	type GiftCard struct {
//		aggregate.Root
//		Balance int64
//	}
//
// Root carries identity, version and timestamps, plus the ordered queue of
// not-yet-published events. Every event applied to the aggregate since the
// last successful Save sits in the queue, in causal order, never reordered
// or filtered.
type Root struct {
	entity.Base
	entity.Versioned
	entity.Timestamped

	pending event.Events
}

// NewRoot builds the aggregate root capability from a Created event.
func NewRoot(created event.Created) Root {
	return Root{
		Base:        entity.NewBase(created),
		Versioned:   entity.NewVersioned(created),
		Timestamped: entity.NewTimestamped(created),
	}
}

// Defer appends the events to the pending queue instead of publishing them.
// The entity protocol calls it for every applied event, the Created event
// included.
func (r *Root) Defer(events event.Events) {
	r.pending = append(r.pending, events...)
}

// PendingEvents returns a copy of the not-yet-published events, in causal order.
func (r *Root) PendingEvents() event.Events {
	return slices.Clone(r.pending)
}

// Save atomically drains the entire pending queue and publishes it as a
// single batch, so subscribers see all events from one or more commands as
// one unit. An empty queue is a no-op: no publish call is made.
//
// The queue is drained before publishing and is not restored if publishing
// fails: the aggregate's in-memory state is already mutated, so the caller
// must re-issue the failed command(s), not re-save. Saving once per command
// keeps the retry granularity clean.
func (r *Root) Save(ctx context.Context) error {
	if len(r.pending) == 0 {
		return nil
	}

	batch := r.pending
	r.pending = nil

	publisher := r.Publisher()
	if publisher == nil {
		return entity.ErrNoPublisher
	}

	return publisher.Publish(ctx, batch)
}
