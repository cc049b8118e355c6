// Package eventbus carries run lifecycle events between the engine and its
// observers over a watermill publisher/subscriber pair.
package eventbus

import (
	"context"

	"github.com/flowprobe/flowprobe/pkg/events"
)

// Event is anything publishable on the bus.
type Event interface {
	GetType() events.EventType
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

type EventHandler func(ctx context.Context, event any) error

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
