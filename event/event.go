package event

import (
	"time"

	"github.com/google/uuid"
)

// TopicString is a stable string identifier used to resolve an entity or
// event's concrete type.
type TopicString = string

// Events is an alias type for a slice of Event.
type Events = []Event

// Event is the contract every domain event satisfies.
type Event interface {
	// EventType returns the stable type tag identifying the concrete event kind.
	EventType() TopicString

	// OriginatorID returns the identity of the entity this event belongs to.
	OriginatorID() uuid.UUID

	// Attributes returns the full named field set of the event,
	// used for content-address hashing.
	Attributes() map[string]any
}

// Versioned is implemented by events that carry an originator version.
type Versioned interface {
	OriginatorVersion() uint64
}

// Timestamped is implemented by events that carry an occurred-at timestamp.
type Timestamped interface {
	OccurredAt() time.Time
}

// Mutator is implemented by events that project themselves into an entity.
// Mutate is invoked exactly once per logical application; the default for
// events without a state transition is to leave obj unchanged and return nil.
type Mutator interface {
	Mutate(obj any) error
}

// ToOccurredAt normalizes a time to UTC with microsecond precision.
func ToOccurredAt(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

/***** capability structs *****/

// WithOriginatorID carries the identity of the originating entity.
type WithOriginatorID struct {
	originatorID uuid.UUID
}

// OriginatorID returns the identity of the entity this event belongs to.
func (w WithOriginatorID) OriginatorID() uuid.UUID {
	return w.originatorID
}

// WithOriginatorVersion carries the version the originator will have once
// the event has been applied. A Created event carries version 0 and a newly
// created entity is at version 0.
type WithOriginatorVersion struct {
	originatorVersion uint64
}

// OriginatorVersion returns the version the originator will have once the
// event has been applied.
func (w WithOriginatorVersion) OriginatorVersion() uint64 {
	return w.originatorVersion
}

// WithOccurredAt carries the timestamp of the event.
type WithOccurredAt struct {
	occurredAt time.Time
}

// OccurredAt returns when this event occurred.
func (w WithOccurredAt) OccurredAt() time.Time {
	return w.occurredAt
}

/***** Stamp *****/

// Stamp composes the three event capabilities. Built-in event kinds and
// domain events embed it so the entity protocol can run its consistency
// checks and capability folding uniformly.
type Stamp struct {
	WithOriginatorID
	WithOriginatorVersion
	WithOccurredAt
}

// NewStamp builds a Stamp for the given originator identity, target version
// and timestamp. The timestamp is normalized with ToOccurredAt; a zero
// timestamp is replaced with the current time.
func NewStamp(originatorID uuid.UUID, originatorVersion uint64, occurredAt time.Time) Stamp {
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	return Stamp{
		WithOriginatorID:      WithOriginatorID{originatorID: originatorID},
		WithOriginatorVersion: WithOriginatorVersion{originatorVersion: originatorVersion},
		WithOccurredAt:        WithOccurredAt{occurredAt: ToOccurredAt(occurredAt)},
	}
}

// Attributes returns the capability fields shared by all stamped events.
// Concrete event kinds extend this map with their own fields.
func (s Stamp) Attributes() map[string]any {
	return map[string]any{
		"originator_id":      s.originatorID,
		"originator_version": s.originatorVersion,
		"occurred_at":        s.occurredAt,
	}
}
