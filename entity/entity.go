package entity

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/adyshev/eventbus/event"
)

// Publisher receives the events an entity produces. Both event bus flavors
// satisfy it.
type Publisher interface {
	Publish(ctx context.Context, events event.Events) error
}

// Deferrer is implemented by entities that collect produced events for
// later publication instead of publishing them immediately (aggregate
// roots). Defer must keep the events in causal order.
type Deferrer interface {
	Defer(events event.Events)
}

// Entity is the contract satisfied by every domain entity. It is sealed:
// concrete entities satisfy it by embedding Base.
type Entity interface {
	// ID returns the immutable identity of the entity.
	ID() uuid.UUID

	// IsDiscarded reports whether the entity has entered its terminal state.
	IsDiscarded() bool

	// Publisher returns where this entity's events are published.
	Publisher() Publisher

	base() *Base
}

// VersionedEntity is satisfied by entities that embed Versioned in addition
// to Base. Such entities enforce the version-consistency protocol.
type VersionedEntity interface {
	Entity

	// Version returns the count of events folded into the entity,
	// starting from 0 at creation.
	Version() uint64

	versioned() *Versioned
}

// TimestampedEntity is satisfied by entities that embed Timestamped in
// addition to Base.
type TimestampedEntity interface {
	Entity

	CreatedOn() time.Time
	UpdatedOn() time.Time
	LastModified() time.Time

	timestamped() *Timestamped
}

/***** Base *****/

// Base carries the identity capability of an entity: an immutable ID, the
// discarded flag and the publisher attached at creation.
type Base struct {
	id        uuid.UUID
	discarded bool
	publisher Publisher
}

// NewBase builds the identity capability from a Created event.
func NewBase(created event.Created) Base {
	return Base{id: created.OriginatorID()}
}

// ID returns the immutable identity of the entity.
func (b *Base) ID() uuid.UUID {
	return b.id
}

// IsDiscarded reports whether the entity has entered its terminal state.
func (b *Base) IsDiscarded() bool {
	return b.discarded
}

// Publisher returns where this entity's events are published.
func (b *Base) Publisher() Publisher {
	return b.publisher
}

func (b *Base) base() *Base {
	return b
}

/***** Versioned *****/

// Versioned carries the version capability: a counter that always equals
// the number of events folded into the entity since creation.
type Versioned struct {
	version uint64
}

// NewVersioned builds the version capability from a Created event.
// A Created event carries version 0.
func NewVersioned(created event.Created) Versioned {
	return Versioned{version: created.OriginatorVersion()}
}

// Version returns the current version of the entity.
func (v *Versioned) Version() uint64 {
	return v.version
}

func (v *Versioned) versioned() *Versioned {
	return v
}

/***** Timestamped *****/

// Timestamped carries the timestamp capability: creation, last attribute
// update and last modification times.
type Timestamped struct {
	createdOn    time.Time
	updatedOn    time.Time
	lastModified time.Time
}

// NewTimestamped builds the timestamp capability from a Created event.
// All three timestamps start at the creation time.
func NewTimestamped(created event.Created) Timestamped {
	occurredAt := created.OccurredAt()

	return Timestamped{
		createdOn:    occurredAt,
		updatedOn:    occurredAt,
		lastModified: occurredAt,
	}
}

// CreatedOn returns when the entity was created.
func (t *Timestamped) CreatedOn() time.Time {
	return t.createdOn
}

// UpdatedOn returns when an attribute of the entity was last changed.
func (t *Timestamped) UpdatedOn() time.Time {
	return t.updatedOn
}

// LastModified returns when the entity was last mutated by any event.
func (t *Timestamped) LastModified() time.Time {
	return t.lastModified
}

func (t *Timestamped) timestamped() *Timestamped {
	return t
}
