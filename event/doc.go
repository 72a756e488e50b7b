// Package event provides the immutable event values that entity and
// aggregate state is projected from.
//
// Events are value types built with factory functions and read through
// accessor methods; no setters exist, so an event can never change after
// construction. Concrete event kinds declare which capability fields they
// carry by embedding the capability structs:
//   - WithOriginatorID: identity of the entity the event belongs to
//   - WithOriginatorVersion: the version the entity will have after mutation
//   - WithOccurredAt: when the event occurred
//
// Stamp composes all three and is what the built-in kinds (Created,
// AttributeChanged, Discarded) and typical domain events embed.
//
// Events are content-addressable: a Hasher computes a SHA-256 digest over
// the canonical JSON encoding of the event's attributes, its type tag and a
// configurable salt, so two events are equal iff their kind and full field
// set produce the same digest.
package event
