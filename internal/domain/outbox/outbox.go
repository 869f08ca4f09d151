package outbox

import "context"

// Event is a domain fact identified by name. Payloads are plain values so they can
// cross goroutines without sharing Product or Store state.
type Event interface {
	EventName() string
}

// Handler processes a delivered event.
type Handler func(ctx context.Context, e Event) error

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Subscriber registers handlers by event name. Handlers registered for the same
// name are all invoked for each event.
type Subscriber interface {
	Subscribe(eventName string, h Handler)
}
