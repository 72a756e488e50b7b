// Package eventbus provides the in-process publish/subscribe mechanism that
// fans applied domain events out to interested observers.
//
// Two interchangeable subscription flavors are supported:
//
//   - EventBus registers (predicate, handler) pairs. On publish, each
//     distinct predicate is evaluated at most once for the whole batch; its
//     boolean result is cached by predicate identity and reused for every
//     other subscription sharing that predicate within the same call.
//   - HandlerBus registers handler objects that expose their own
//     HandlerFilter, matching either any event or a fixed set of event type
//     tags.
//
// In both flavors a batch is delivered as the complete ordered event
// sequence, even when only some events match — handlers that care about a
// subset filter internally. Handlers are invoked in subscription order, and
// a handler failure propagates to the publisher with no isolation between
// handlers: reliability is the caller's responsibility.
//
// The subscription registries are safe for concurrent use; a publish call
// iterates a point-in-time snapshot, so subscribing or unsubscribing from
// within a handler never affects the in-flight call.
package eventbus
