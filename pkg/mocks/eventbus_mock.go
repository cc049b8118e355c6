package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/flowprobe/flowprobe/pkg/eventbus"
	"github.com/flowprobe/flowprobe/pkg/events"
)

// MockEventBus is a mock implementation of eventbus.EventBus.
type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, key string, event eventbus.Event) error {
	args := m.Called(ctx, key, event)

	return args.Error(0)
}

func (m *MockEventBus) Handle(eventType events.EventType, handler eventbus.EventHandler) error {
	args := m.Called(eventType, handler)

	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockEventBus) Close() error {
	args := m.Called()

	return args.Error(0)
}

func (m *MockEventBus) GenerateID() string {
	args := m.Called()

	return args.String(0)
}

// CapturingPublisher records every published event, for tests asserting on
// the event stream rather than on publish mechanics.
type CapturingPublisher struct {
	mu     sync.Mutex
	Events []eventbus.Event
}

func (p *CapturingPublisher) Publish(_ context.Context, _ string, event eventbus.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Events = append(p.Events, event)

	return nil
}

// Types returns the event types in publish order.
func (p *CapturingPublisher) Types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()

	types := make([]events.EventType, 0, len(p.Events))
	for _, event := range p.Events {
		types = append(types, event.GetType())
	}

	return types
}

// GenerateID satisfies the bus surface for tests that need ids.
func (p *CapturingPublisher) GenerateID() string {
	return uuid.New().String()
}
