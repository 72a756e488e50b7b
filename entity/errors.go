package entity

import (
	"errors"
	"fmt"
)

// ErrMismatchedOriginator is the umbrella error for applying an event to an
// inappropriate entity. Both identity and version conflicts match it with
// errors.Is.
var ErrMismatchedOriginator = errors.New("event does not belong to this originator")

// ErrOriginatorIDConflict is returned when an event's originator identity
// does not equal the identity of the entity it is applied to.
var ErrOriginatorIDConflict = fmt.Errorf("%w: originator id does not match entity id", ErrMismatchedOriginator)

// ErrOriginatorVersionConflict is returned when an event's originator
// version is not exactly the entity's current version plus one.
var ErrOriginatorVersionConflict = fmt.Errorf("%w: originator version does not follow entity version", ErrMismatchedOriginator)

// ErrEntityIsDiscarded is returned when a trigger is attempted on an entity
// in its terminal state.
var ErrEntityIsDiscarded = errors.New("entity is discarded")

// ErrEntityNotConstructed is returned when a topic factory fails to produce
// an entity from a Created event.
var ErrEntityNotConstructed = errors.New("creation event did not construct an entity")

// ErrNoPublisher is returned when an entity without an attached publisher
// needs to publish events.
var ErrNoPublisher = errors.New("entity has no publisher attached")
