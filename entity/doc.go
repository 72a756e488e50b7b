// Package entity implements the event-application and version-consistency
// protocol for domain entities.
//
// A concrete entity is a struct that embeds the capability structs it needs:
//
//	type Reader struct {
//		entity.Base        // identity, discarded flag, publisher
//		entity.Versioned   // monotonic version counter
//		entity.Timestamped // created-on, updated-on, last-modified
//		Name string
//	}
//
// Embedding Base makes the struct satisfy the Entity interface; embedding
// Versioned or Timestamped opts into the corresponding consistency checks
// and timestamp folding. State is produced exclusively by applying events:
// Create folds a Created event into a fresh entity via a topic factory, and
// Trigger applies further events in place after checking, in order, that
// the entity is not discarded, that the event's originator identity matches
// and, for versioned entities, that the event's originator version is
// exactly the current version plus one. A failed check leaves the entity
// untouched.
//
// Applied events are forwarded to the entity's Publisher immediately, unless
// the entity defers publication by implementing Deferrer (aggregate roots).
package entity
