package chat

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowprobe/flowprobe/pkg/capability"
	"github.com/flowprobe/flowprobe/pkg/mocks"
	"github.com/flowprobe/flowprobe/pkg/models"
	"github.com/flowprobe/flowprobe/pkg/protocol"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreate_UsesChannelFromContext(t *testing.T) {
	invoker := &mocks.ScriptedInvoker{
		Responses: map[string]map[string]any{
			"slack-post-message": {"ts": "1700000000.000200"},
		},
	}
	handler := NewHandler(invoker, testLogger())

	stepCtx := &models.StepContext{
		RunID:      "run-1",
		AccountIDs: map[string]string{capability.ContextKeyChannel: "C024BE91L"},
	}

	response, err := handler.Create(context.Background(), models.ResourceTypeMessage,
		map[string]any{}, stepCtx)

	require.NoError(t, err)
	assert.Equal(t, "1700000000.000200", response.ExternalID)
	assert.Contains(t, response.DisplayName, "run-1")

	require.Len(t, invoker.Calls, 1)
	assert.Equal(t, "C024BE91L", invoker.Calls[0].Payload["channel"])
}

func TestCreate_DataChannelWinsOverContext(t *testing.T) {
	invoker := &mocks.ScriptedInvoker{}
	handler := NewHandler(invoker, testLogger())

	stepCtx := &models.StepContext{
		RunID:      "run-1",
		AccountIDs: map[string]string{capability.ContextKeyChannel: "C024BE91L"},
	}

	_, err := handler.Create(context.Background(), models.ResourceTypeMessage,
		map[string]any{"channel": "C999", "text": "hello"}, stepCtx)

	require.NoError(t, err)
	assert.Equal(t, "C999", invoker.Calls[0].Payload["channel"])
	assert.Equal(t, "hello", invoker.Calls[0].Payload["text"])
}

func TestCreate_MissingChannel(t *testing.T) {
	handler := NewHandler(&mocks.ScriptedInvoker{}, testLogger())

	_, err := handler.Create(context.Background(), models.ResourceTypeMessage,
		map[string]any{}, &models.StepContext{RunID: "run-1"})

	require.ErrorIs(t, err, protocol.ErrMissingContext)
	assert.Contains(t, err.Error(), "channel")
}

func TestDelete_FallsBackToRecordedChannel(t *testing.T) {
	invoker := &mocks.ScriptedInvoker{}
	handler := NewHandler(invoker, testLogger())

	resource := &models.TrackedResource{
		ExternalID: "1700000000.000200",
		RawData:    map[string]any{"channel": "C024BE91L"},
	}

	err := handler.Delete(context.Background(), resource, &models.StepContext{})

	require.NoError(t, err)
	require.Len(t, invoker.Calls, 1)
	assert.Equal(t, "slack-delete-message", invoker.Calls[0].Callable)
	assert.Equal(t, "C024BE91L", invoker.Calls[0].Payload["channel"])
	assert.Equal(t, "1700000000.000200", invoker.Calls[0].Payload["ts"])
}
