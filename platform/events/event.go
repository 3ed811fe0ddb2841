// Package events is the in-process event bus the lead and auth contexts use
// to report lifecycle changes without depending on their consumers.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is implemented by every published event. Embedding BaseEvent
// supplies ID and OccurredAt.
type Event interface {
	// EventName is the subscription key, e.g. "leads.lead.created".
	EventName() string
	ID() string
	OccurredAt() time.Time
}

// BaseEvent stamps an event with a unique id and a UTC publish time.
type BaseEvent struct {
	EventID   string    `json:"eventId"`
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) ID() string { return e.EventID }

func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// NewBaseEvent returns a BaseEvent with a fresh id, stamped now.
func NewBaseEvent() BaseEvent {
	return BaseEvent{EventID: uuid.NewString(), Timestamp: time.Now().UTC()}
}

// Handler reacts to one published event. Errors are logged by the bus and
// never reach the publisher of an asynchronous Publish.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus fans events out to the handlers subscribed under their EventName.
type Bus interface {
	// Publish returns immediately; handlers run in the background.
	Publish(ctx context.Context, event Event)
	// PublishSync runs handlers and returns the first error.
	PublishSync(ctx context.Context, event Event) error
	// Subscribe must be called during wiring, before the first Publish.
	Subscribe(eventName string, handler Handler)
}
