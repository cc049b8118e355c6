// Package mocks provides test doubles for the engine's interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockInvoker is a mock implementation of protocol.Invoker.
type MockInvoker struct {
	mock.Mock
}

func (m *MockInvoker) Invoke(ctx context.Context, callable string, payload map[string]any) (map[string]any, error) {
	args := m.Called(ctx, callable, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(map[string]any), args.Error(1)
}

// ScriptedInvoker returns canned responses per callable without testify
// expectations, for tests that only care about downstream behavior.
type ScriptedInvoker struct {
	// Responses maps callable names to the payload returned for them.
	Responses map[string]map[string]any
	// Err, when set, is returned for every call.
	Err error
	// Calls records every invocation in order.
	Calls []ScriptedCall
}

// ScriptedCall is one recorded invocation.
type ScriptedCall struct {
	Callable string
	Payload  map[string]any
}

func (s *ScriptedInvoker) Invoke(_ context.Context, callable string, payload map[string]any) (map[string]any, error) {
	s.Calls = append(s.Calls, ScriptedCall{Callable: callable, Payload: payload})

	if s.Err != nil {
		return nil, s.Err
	}

	if response, ok := s.Responses[callable]; ok {
		return response, nil
	}

	return map[string]any{"id": "mock-id", "status": "ok"}, nil
}
