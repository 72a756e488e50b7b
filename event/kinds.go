package event

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
)

// ErrNotAPointer is returned when a mutation target is not a non-nil pointer.
var ErrNotAPointer = errors.New("mutation target must be a non-nil pointer to an entity")

// ErrAttributeNotSettable is returned when an AttributeChanged event names a
// field that does not exist on the target entity or cannot be assigned.
var ErrAttributeNotSettable = errors.New("attribute is not a settable field of the entity")

// CreatedEventTypeSuffix is appended to the originator topic to form the
// event type tag of a Created event.
const CreatedEventTypeSuffix = ".Created"

// AttributeChangedEventType is the event type identifier.
const AttributeChangedEventType = "AttributeChanged"

// DiscardedEventType is the event type identifier.
const DiscardedEventType = "Discarded"

/***** Created *****/

// Created is triggered when an entity is created. It carries the originator
// topic, which the type resolver turns back into a concrete entity factory,
// plus the named creation attributes of the entity.
type Created struct {
	Stamp
	originatorTopic TopicString
	attributes      map[string]any
}

// BuildCreated creates a new Created event. The attribute map is copied, so
// later changes by the caller do not leak into the event.
func BuildCreated(stamp Stamp, originatorTopic TopicString, attributes map[string]any) Created {
	return Created{
		Stamp:           stamp,
		originatorTopic: originatorTopic,
		attributes:      maps.Clone(attributes),
	}
}

// EventType returns the event type identifier, derived from the originator topic.
func (e Created) EventType() TopicString {
	return e.originatorTopic + CreatedEventTypeSuffix
}

// OriginatorTopic returns the topic of the entity type to construct.
func (e Created) OriginatorTopic() TopicString {
	return e.originatorTopic
}

// Attribute returns the named creation attribute, or nil if absent.
func (e Created) Attribute(name string) any {
	return e.attributes[name]
}

// Attributes returns the stamp fields, the originator topic and all
// creation attributes.
func (e Created) Attributes() map[string]any {
	attrs := e.Stamp.Attributes()
	attrs["originator_topic"] = e.originatorTopic
	maps.Copy(attrs, e.attributes)

	return attrs
}

// Mutate leaves obj unchanged: construction from a Created event is
// performed by the topic factory, not by the event itself.
func (e Created) Mutate(_ any) error {
	return nil
}

/***** AttributeChanged *****/

// AttributeChanged is triggered when a named attribute is assigned a new value.
type AttributeChanged struct {
	Stamp
	name  string
	value any
}

// BuildAttributeChanged creates a new AttributeChanged event.
func BuildAttributeChanged(stamp Stamp, name string, value any) AttributeChanged {
	return AttributeChanged{Stamp: stamp, name: name, value: value}
}

// EventType returns the event type identifier.
func (e AttributeChanged) EventType() TopicString {
	return AttributeChangedEventType
}

// Name returns the name of the changed attribute.
func (e AttributeChanged) Name() string {
	return e.name
}

// Value returns the new value of the changed attribute.
func (e AttributeChanged) Value() any {
	return e.value
}

// Attributes returns the stamp fields plus the attribute name and value.
func (e AttributeChanged) Attributes() map[string]any {
	attrs := e.Stamp.Attributes()
	attrs["name"] = e.name
	attrs["value"] = e.value

	return attrs
}

// Mutate assigns the new value to the named exported field of obj.
func (e AttributeChanged) Mutate(obj any) error {
	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: got %T", ErrNotAPointer, obj)
	}

	field := rv.Elem().FieldByName(e.name)
	if !field.IsValid() || !field.CanSet() {
		return fmt.Errorf("%w: %q on %T", ErrAttributeNotSettable, e.name, obj)
	}

	if e.value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	value := reflect.ValueOf(e.value)
	if !value.Type().AssignableTo(field.Type()) {
		return fmt.Errorf("%w: cannot assign %T to field %q of %T",
			ErrAttributeNotSettable, e.value, e.name, obj)
	}

	field.Set(value)

	return nil
}

/***** Discarded *****/

// Discarded is triggered when an entity is discarded. Applying it puts the
// entity into its terminal state; any further trigger fails.
type Discarded struct {
	Stamp
}

// BuildDiscarded creates a new Discarded event.
func BuildDiscarded(stamp Stamp) Discarded {
	return Discarded{Stamp: stamp}
}

// EventType returns the event type identifier.
func (e Discarded) EventType() TopicString {
	return DiscardedEventType
}

// Mutate leaves obj unchanged: the discarded flag is folded by the entity
// protocol after the mutation step.
func (e Discarded) Mutate(_ any) error {
	return nil
}
