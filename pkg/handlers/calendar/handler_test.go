package calendar

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

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

func calendarContext() *models.StepContext {
	return &models.StepContext{
		RunID:      "run-1",
		AccountIDs: map[string]string{capability.ContextKeyCalendar: "primary"},
	}
}

func TestCreate_SynthesizesTimeWindow(t *testing.T) {
	invoker := &mocks.ScriptedInvoker{
		Responses: map[string]map[string]any{
			"calendar-create-event": {"event_id": "evt_1"},
		},
	}
	handler := NewHandler(invoker, testLogger())

	response, err := handler.Create(context.Background(), models.ResourceTypeEvent,
		map[string]any{}, calendarContext())

	require.NoError(t, err)
	assert.Equal(t, "evt_1", response.ExternalID)
	assert.Equal(t, "Flowprobe test event", response.DisplayName)

	require.Len(t, invoker.Calls, 1)
	payload := invoker.Calls[0].Payload
	assert.Equal(t, "primary", payload["calendar_id"])

	start, err := time.Parse(time.RFC3339, payload["start"].(string))
	require.NoError(t, err)
	end, err := time.Parse(time.RFC3339, payload["end"].(string))
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, end.Sub(start))
	assert.True(t, start.After(time.Now().UTC()))
}

func TestCreate_KeepsAuthoredWindow(t *testing.T) {
	invoker := &mocks.ScriptedInvoker{}
	handler := NewHandler(invoker, testLogger())

	data := map[string]any{
		"summary":   "Quarterly review",
		"start":     "2026-09-01T10:00:00Z",
		"end":       "2026-09-01T11:00:00Z",
		"attendees": []any{"jane@example.com"},
	}

	response, err := handler.Create(context.Background(), models.ResourceTypeEvent,
		data, calendarContext())

	require.NoError(t, err)
	assert.Equal(t, "Quarterly review", response.DisplayName)

	payload := invoker.Calls[0].Payload
	assert.Equal(t, "2026-09-01T10:00:00Z", payload["start"])
	assert.Equal(t, "2026-09-01T11:00:00Z", payload["end"])
	assert.Equal(t, []any{"jane@example.com"}, payload["attendees"])
}

func TestCreate_MissingCalendar(t *testing.T) {
	handler := NewHandler(&mocks.ScriptedInvoker{}, testLogger())

	_, err := handler.Create(context.Background(), models.ResourceTypeEvent,
		map[string]any{}, &models.StepContext{RunID: "run-1"})

	require.ErrorIs(t, err, protocol.ErrMissingContext)
	assert.Contains(t, err.Error(), "calendar_id")
}

func TestDelete_CancelsByEventID(t *testing.T) {
	invoker := &mocks.ScriptedInvoker{}
	handler := NewHandler(invoker, testLogger())

	err := handler.Delete(context.Background(),
		&models.TrackedResource{ExternalID: "evt_1"}, calendarContext())

	require.NoError(t, err)
	require.Len(t, invoker.Calls, 1)
	assert.Equal(t, "calendar-delete-event", invoker.Calls[0].Callable)
	assert.Equal(t, "evt_1", invoker.Calls[0].Payload["event_id"])
}
