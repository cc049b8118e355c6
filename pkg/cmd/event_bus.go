package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/flowprobe/flowprobe/pkg/channels/gochannel"
	"github.com/flowprobe/flowprobe/pkg/channels/kafka"
	"github.com/flowprobe/flowprobe/pkg/eventbus"
)

// NewEventBus creates the run-event bus. gochannel keeps events in process;
// kafka fans them out to external observers.
func NewEventBus(provider string, logger *slog.Logger) (eventbus.EventBus, error) {
	switch provider {
	case "kafka":
		pub, sub, err := kafka.CreateChannel(watermill.NewSlogLogger(logger), "flowprobe")
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	case "", "gochannel":
		pub, sub, err := gochannel.CreateChannel(watermill.NewSlogLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("failed to create gochannel pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	default:
		return nil, fmt.Errorf("unsupported event bus provider: %s", provider)
	}
}
