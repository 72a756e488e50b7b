package eventbus

import (
	"slices"

	"github.com/adyshev/eventbus/event"
)

/***** HandlerFilter *****/

// HandlerFilter is the intrinsic filtering rule of a self-filtering event
// handler. It matches either every published batch (wildcard) or batches
// containing at least one event whose type tag is in a fixed declared set.
type HandlerFilter struct {
	eventTypes      []event.TopicString
	matchesAnyEvent bool
}

// EventTypes returns the declared event type tags, sorted and deduplicated.
func (f HandlerFilter) EventTypes() []event.TopicString {
	return slices.Clone(f.eventTypes)
}

// MatchesAnyEvent reports whether this is the wildcard filter.
func (f HandlerFilter) MatchesAnyEvent() bool {
	return f.matchesAnyEvent
}

// Accepts reports whether the batch satisfies the filter: the wildcard
// accepts everything, a declared set accepts a batch containing at least
// one event of a declared type. An accepting handler receives the whole
// batch, not just the matching events.
func (f HandlerFilter) Accepts(events event.Events) bool {
	if f.matchesAnyEvent {
		return true
	}

	for _, ev := range events {
		if _, found := slices.BinarySearch(f.eventTypes, ev.EventType()); found {
			return true
		}
	}

	return false
}

/***** HandlerFilterBuilder *****/

// HandlerFilterBuilder builds a HandlerFilter. It only allows the two
// useful shapes:
//
//   - BuildHandlerFilter().MatchingAnyEvent()
//   - BuildHandlerFilter().Matching().AnyEventTypeOf(eventType, ...).Finalize()
type HandlerFilterBuilder interface {
	// Matching starts a filter with a declared event type set.
	Matching() EmptyHandlerFilterBuilder

	// MatchingAnyEvent directly creates the wildcard filter.
	MatchingAnyEvent() HandlerFilter
}

// EmptyHandlerFilterBuilder is a started filter still lacking event types.
type EmptyHandlerFilterBuilder interface {
	// AnyEventTypeOf adds one or multiple event types to the declared set.
	//
	// It sanitizes the input:
	//	- removing empty event types ("")
	//	- sorting the event types
	//	- removing duplicate event types
	AnyEventTypeOf(eventType event.TopicString, eventTypes ...event.TopicString) CompletedHandlerFilterBuilder
}

// CompletedHandlerFilterBuilder is a filter ready to be finalized.
type CompletedHandlerFilterBuilder interface {
	// AndAnyEventTypeOf adds further event types to the declared set.
	AndAnyEventTypeOf(eventType event.TopicString, eventTypes ...event.TopicString) CompletedHandlerFilterBuilder

	// Finalize returns the filter once it has at least one event type.
	Finalize() HandlerFilter
}

// handlerFilterBuilder implements all the interfaces of HandlerFilterBuilder.
type handlerFilterBuilder struct {
	filter HandlerFilter
}

// BuildHandlerFilter creates a HandlerFilterBuilder which must eventually be
// finalized with Finalize() or MatchingAnyEvent().
func BuildHandlerFilter() HandlerFilterBuilder {
	return handlerFilterBuilder{}
}

// MatchingAnyEvent directly creates the wildcard filter.
func (fb handlerFilterBuilder) MatchingAnyEvent() HandlerFilter {
	fb.filter.matchesAnyEvent = true

	return fb.filter
}

// Matching starts a filter with a declared event type set.
func (fb handlerFilterBuilder) Matching() EmptyHandlerFilterBuilder {
	return fb
}

// AnyEventTypeOf adds one or multiple event types to the declared set.
func (fb handlerFilterBuilder) AnyEventTypeOf(
	eventType event.TopicString,
	eventTypes ...event.TopicString,
) CompletedHandlerFilterBuilder {

	fb.filter.eventTypes = sanitizeEventTypes(fb.filter.eventTypes, eventType, eventTypes...)

	return fb
}

// AndAnyEventTypeOf adds further event types to the declared set.
func (fb handlerFilterBuilder) AndAnyEventTypeOf(
	eventType event.TopicString,
	eventTypes ...event.TopicString,
) CompletedHandlerFilterBuilder {

	fb.filter.eventTypes = sanitizeEventTypes(fb.filter.eventTypes, eventType, eventTypes...)

	return fb
}

// Finalize returns the filter once it has at least one event type.
func (fb handlerFilterBuilder) Finalize() HandlerFilter {
	return fb.filter
}

// sanitizeEventTypes merges the inputs into the existing set, removing
// empties and duplicates and keeping the set sorted.
func sanitizeEventTypes(
	existing []event.TopicString,
	eventType event.TopicString,
	eventTypes ...event.TopicString,
) []event.TopicString {

	merged := slices.Clone(existing)

	for _, candidate := range append([]event.TopicString{eventType}, eventTypes...) {
		if candidate == "" {
			continue
		}

		merged = append(merged, candidate)
	}

	slices.Sort(merged)

	return slices.Compact(merged)
}
