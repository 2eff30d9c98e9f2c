// Package ports define the EventBus interface for event-driven communication.
// The event bus replaces callbacks and enables loose coupling between components.
package ports

import (
	"github.com/thall/resona/internal/domain"
)

// EventBus is the interface for publishing and subscribing to events.
// It decouples event producers (services) from event consumers (UI
// collaborators, logging, the sequencer).
//
// Thread-safety: Implementations must be thread-safe as events may be
// published and subscribed from multiple goroutines simultaneously.
//
// Example usage:
//
//	// In a service: publish an event
//	bus.Publish(domain.NewSongStartedEvent(song))
//
//	// In a collaborator: subscribe to events
//	subID := bus.Subscribe(domain.EventSongStarted, func(event domain.Event) {
//	    e := event.(domain.SongStartedEvent)
//	    ui.SetPlayState(true, e.Song.Title)
//	})
//
//	// Later: unsubscribe
//	bus.Unsubscribe(subID)
type EventBus interface {
	// Publish publishes an event to all subscribers of that event type.
	// Handlers are invoked synchronously in subscription order; they must
	// process events quickly or dispatch to a background goroutine.
	Publish(event domain.Event)

	// Subscribe registers a handler for events of the specified type.
	// The same handler can be registered multiple times; each
	// subscription gets a unique SubscriptionID.
	Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID

	// Unsubscribe removes a previously registered event handler.
	// If the subscription ID is invalid or already removed, this is a no-op.
	Unsubscribe(id domain.SubscriptionID)

	// SubscribeAll registers a handler that receives all events
	// regardless of type. Useful for logging and debugging.
	SubscribeAll(handler domain.EventHandler) domain.SubscriptionID

	// HasSubscribers returns true if there are active subscriptions for
	// the given event type.
	HasSubscribers(eventType domain.EventType) bool

	// Close shuts down the event bus and clears all subscriptions.
	// After calling Close, no more events should be published or subscribed.
	Close() error
}
