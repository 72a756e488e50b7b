package entity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adyshev/eventbus/event"
	"github.com/adyshev/eventbus/topic"
)

// Event is an event that can be applied to an entity: it is self-describing
// via the event contract and projects itself into the entity via Mutate.
type Event interface {
	event.Event
	event.Mutator
}

// FactoryResolver resolves a topic tag to the factory that constructs the
// concrete entity type. *topic.Registry is the default implementation.
type FactoryResolver interface {
	Resolve(tag topic.TopicString) (topic.Factory, error)
}

// Create creates a new entity of type T, registered under the given topic tag.
//
// It builds a Created event carrying the identity (a fresh one is generated
// when id is uuid.Nil), the tag and the given creation attributes, resolves
// the tag to a factory, folds the event into a freshly constructed entity at
// version 0, attaches the publisher, and publishes the Created event — or
// defers it, when the new entity batches its events (aggregate roots).
//
// An unregistered tag, a factory error, a factory returning nil, or a
// factory returning a type other than T all fail with an error matching
// ErrEntityNotConstructed (except the unregistered tag, which surfaces
// topic.ErrTopicNotRegistered directly).
func Create[T Entity](
	ctx context.Context,
	resolver FactoryResolver,
	publisher Publisher,
	tag topic.TopicString,
	id uuid.UUID,
	attributes map[string]any,
) (T, error) {

	var zero T

	if id == uuid.Nil {
		id = uuid.New()
	}

	created := event.BuildCreated(event.NewStamp(id, 0, time.Now()), tag, attributes)

	factory, err := resolver.Resolve(tag)
	if err != nil {
		return zero, err
	}

	constructed, err := factory(created)
	if err != nil {
		return zero, errors.Join(ErrEntityNotConstructed, err)
	}

	if constructed == nil {
		return zero, fmt.Errorf("%w: factory for topic %q returned nil", ErrEntityNotConstructed, tag)
	}

	obj, ok := constructed.(T)
	if !ok {
		return zero, fmt.Errorf("%w: factory for topic %q returned %T", ErrEntityNotConstructed, tag, constructed)
	}

	obj.base().publisher = publisher

	if err := record(ctx, obj, event.Events{created}); err != nil {
		return zero, err
	}

	return obj, nil
}

// Trigger applies the given event to the entity and publishes it (or defers
// it, for aggregate roots).
//
// Consistency checks run in order before any mutation: discarded check,
// identity check, version check (versioned entities only). A failed check
// leaves the entity's state and version untouched.
func Trigger(ctx context.Context, obj Entity, ev Event) error {
	if err := apply(obj, ev); err != nil {
		return err
	}

	return record(ctx, obj, event.Events{ev})
}

// ChangeAttribute changes the named attribute to the given value by
// triggering an AttributeChanged event. The name must be an exported field
// of the concrete entity.
func ChangeAttribute(ctx context.Context, obj Entity, name string, value any) error {
	return Trigger(ctx, obj, event.BuildAttributeChanged(NextStamp(obj), name, value))
}

// Discard puts the entity into its terminal state by triggering a Discarded
// event. Subsequent triggers fail with ErrEntityIsDiscarded.
func Discard(ctx context.Context, obj Entity) error {
	return Trigger(ctx, obj, event.BuildDiscarded(NextStamp(obj)))
}

// NextStamp returns the event stamp for the next event triggered on obj:
// the entity's identity, the next version for versioned entities, and the
// current time.
func NextStamp(obj Entity) event.Stamp {
	var nextVersion uint64
	if versioned, ok := obj.(VersionedEntity); ok {
		nextVersion = versioned.Version() + 1
	}

	return event.NewStamp(obj.ID(), nextVersion, time.Now())
}

// apply runs the consistency checks, the event's mutation, and the
// capability folding, in that order.
func apply(obj Entity, ev Event) error {
	if obj.IsDiscarded() {
		return fmt.Errorf("%w: entity %s rejects event %q", ErrEntityIsDiscarded, obj.ID(), ev.EventType())
	}

	if ev.OriginatorID() != obj.ID() {
		return fmt.Errorf("%w: entity %s, event originator %s, event type %q",
			ErrOriginatorIDConflict, obj.ID(), ev.OriginatorID(), ev.EventType())
	}

	if versioned, ok := obj.(VersionedEntity); ok {
		carrier, carriesVersion := ev.(event.Versioned)
		if !carriesVersion {
			return fmt.Errorf("%w: event %q carries no version, entity %s is at version %d",
				ErrOriginatorVersionConflict, ev.EventType(), obj.ID(), versioned.Version())
		}

		if carrier.OriginatorVersion() != versioned.Version()+1 {
			return fmt.Errorf("%w: event %q takes entity %s to version %d, but entity is at version %d",
				ErrOriginatorVersionConflict, ev.EventType(), obj.ID(),
				carrier.OriginatorVersion(), versioned.Version())
		}
	}

	if err := ev.Mutate(obj); err != nil {
		return err
	}

	fold(obj, ev)

	return nil
}

// fold updates the capability fields after a successful mutation: version,
// last-modified (and updated-on for attribute changes), and the terminal flag.
func fold(obj Entity, ev Event) {
	if versioned, ok := obj.(VersionedEntity); ok {
		if carrier, ok := ev.(event.Versioned); ok {
			versioned.versioned().version = carrier.OriginatorVersion()
		}
	}

	if timestamped, ok := obj.(TimestampedEntity); ok {
		if carrier, ok := ev.(event.Timestamped); ok {
			state := timestamped.timestamped()
			state.lastModified = carrier.OccurredAt()

			if _, isAttributeChange := ev.(event.AttributeChanged); isAttributeChange {
				state.updatedOn = carrier.OccurredAt()
			}
		}
	}

	if _, isDiscard := ev.(event.Discarded); isDiscard {
		obj.base().discarded = true
	}
}

// record hands the applied events to the entity's publisher, or to the
// entity's own pending queue when it defers publication.
func record(ctx context.Context, obj Entity, events event.Events) error {
	if deferrer, ok := obj.(Deferrer); ok {
		deferrer.Defer(events)
		return nil
	}

	publisher := obj.Publisher()
	if publisher == nil {
		return fmt.Errorf("%w: entity %s", ErrNoPublisher, obj.ID())
	}

	return publisher.Publish(ctx, events)
}
