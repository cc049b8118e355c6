package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flowprobe/flowprobe/pkg/events"
)

// ErrAlreadySubscribed is returned when Handle is called for an event type
// that already has a handler.
var ErrAlreadySubscribed = errors.New("handler already registered for event type")

// WatermillEventBus routes engine events over any watermill transport:
// gochannel in-process, kafka when observers live elsewhere.
type WatermillEventBus struct {
	publisher     message.Publisher
	subscriber    message.Subscriber
	subscriptions map[events.EventType]EventHandler
}

func NewWatermillEventBus(pub message.Publisher, sub message.Subscriber) *WatermillEventBus {
	return &WatermillEventBus{
		publisher:     pub,
		subscriber:    sub,
		subscriptions: make(map[events.EventType]EventHandler),
	}
}

func (eb *WatermillEventBus) GenerateID() string {
	return watermill.NewULID()
}

func (eb *WatermillEventBus) Publish(_ context.Context, key string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.GetType(), err)
	}

	msg := message.NewMessage("msg-"+eb.GenerateID(), payload)
	msg.Metadata.Set(events.EventKeyMetadataKey, key)
	msg.Metadata.Set(events.EventTypeMetadataKey, string(event.GetType()))

	return eb.publisher.Publish(events.Topic, msg)
}

// Handle registers the handler invoked for one event type. Registration
// happens before Subscribe; there is one handler per type.
func (eb *WatermillEventBus) Handle(eventType events.EventType, handler EventHandler) error {
	if _, exists := eb.subscriptions[eventType]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadySubscribed, eventType)
	}

	eb.subscriptions[eventType] = handler

	return nil
}

// Subscribe starts consuming the event topic and dispatching to registered
// handlers. Events with no handler are acknowledged and dropped.
func (eb *WatermillEventBus) Subscribe(ctx context.Context) error {
	messages, err := eb.subscriber.Subscribe(ctx, events.Topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", events.Topic, err)
	}

	go func() {
		for msg := range messages {
			eventType := events.EventType(msg.Metadata.Get(events.EventTypeMetadataKey))

			handler, exists := eb.subscriptions[eventType]
			if !exists {
				msg.Ack()

				continue
			}

			event := newEvent(eventType)
			if event == nil {
				msg.Nack()

				continue
			}

			if err := json.Unmarshal(msg.Payload, event); err != nil {
				msg.Nack()

				continue
			}

			if err := handler(ctx, event); err != nil {
				msg.Nack()

				continue
			}

			msg.Ack()
		}
	}()

	return nil
}

func (eb *WatermillEventBus) Close() error {
	if err := eb.publisher.Close(); err != nil {
		return fmt.Errorf("failed to close publisher: %w", err)
	}

	return eb.subscriber.Close()
}

func newEvent(eventType events.EventType) any {
	switch eventType {
	case events.RunStartedEvent:
		return &events.RunStarted{}
	case events.StepCompletedEvent:
		return &events.StepCompleted{}
	case events.RunFinishedEvent:
		return &events.RunFinished{}
	case events.ResourceTrackedEvent:
		return &events.ResourceTracked{}
	case events.CleanupStartedEvent:
		return &events.CleanupStarted{}
	case events.CleanupResourceStartedEvent:
		return &events.CleanupResourceStarted{}
	case events.CleanupResourceCompletedEvent:
		return &events.CleanupResourceCompleted{}
	case events.CleanupFinishedEvent:
		return &events.CleanupFinished{}
	default:
		return nil
	}
}
