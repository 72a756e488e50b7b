// Package topic maps stable string tags to entity factories. It replaces
// dynamic type resolution with an explicit registry that is populated once
// per entity type at process start and looked up on demand.
package topic

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/adyshev/eventbus/event"
)

// TopicString is a stable string identifier for an entity type.
type TopicString = event.TopicString

// ErrTopicNotRegistered is returned when resolving a tag no factory was registered for.
var ErrTopicNotRegistered = errors.New("topic is not registered")

// ErrTopicAlreadyRegistered is returned when registering a tag twice.
// The tag to entity type mapping must stay a bijection.
var ErrTopicAlreadyRegistered = errors.New("topic is already registered")

// ErrNilFactory is returned when registering a nil factory.
var ErrNilFactory = errors.New("factory must not be nil")

// Factory builds a concrete entity from a Created event. It returns the new
// entity, or an error if the event's creation attributes are missing or of
// the wrong type.
type Factory func(created event.Created) (any, error)

// Registry is a thread-safe mapping from topic tags to entity factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[TopicString]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[TopicString]Factory)}
}

// Register adds a factory for the given tag. Registering the same tag twice
// or registering a nil factory fails.
func (r *Registry) Register(tag TopicString, factory Factory) error {
	if factory == nil {
		return fmt.Errorf("%w: topic %q", ErrNilFactory, tag)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[tag]; exists {
		return fmt.Errorf("%w: %q", ErrTopicAlreadyRegistered, tag)
	}

	r.factories[tag] = factory

	return nil
}

// Resolve returns the factory registered for the given tag.
func (r *Registry) Resolve(tag TopicString) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[tag]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrTopicNotRegistered, tag)
	}

	return factory, nil
}

// Topics returns all registered tags in sorted order.
func (r *Registry) Topics() []TopicString {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]TopicString, 0, len(r.factories))
	for tag := range r.factories {
		tags = append(tags, tag)
	}

	slices.Sort(tags)

	return tags
}
