// Package calendar drives the calendar integration: creating, moving and
// cancelling events.
package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/flowprobe/flowprobe/pkg/capability"
	"github.com/flowprobe/flowprobe/pkg/models"
	"github.com/flowprobe/flowprobe/pkg/protocol"
)

// Handler shapes generic operation data into calendar event calls.
type Handler struct {
	invoker protocol.Invoker
	logger  *slog.Logger
}

// NewHandler creates the calendar handler.
func NewHandler(invoker protocol.Invoker, logger *slog.Logger) *Handler {
	return &Handler{
		invoker: invoker,
		logger:  logger.With("module", "calendar_handler"),
	}
}

func (h *Handler) Integration() models.Integration {
	return models.IntegrationGoogleCalendar
}

// Create books an event, synthesizing a summary and a near-future time
// window when the author supplied none.
func (h *Handler) Create(ctx context.Context, _ models.ResourceType, data map[string]any, stepCtx *models.StepContext) (*protocol.HandlerResponse, error) {
	calendarID := stepCtx.AccountID(capability.ContextKeyCalendar)
	if calendarID == "" {
		return nil, fmt.Errorf("%w: calendar_id", protocol.ErrMissingContext)
	}

	summary, _ := data["summary"].(string)
	if summary == "" {
		summary = "Flowprobe test event"
	}

	start, _ := data["start"].(string)
	end, _ := data["end"].(string)

	if start == "" {
		startAt := time.Now().UTC().Add(time.Hour).Truncate(time.Minute)
		start = startAt.Format(time.RFC3339)
		end = startAt.Add(30 * time.Minute).Format(time.RFC3339)
	}

	payload := map[string]any{
		"calendar_id": calendarID,
		"summary":     summary,
		"start":       start,
		"end":         end,
	}

	if attendees, ok := data["attendees"]; ok {
		payload["attendees"] = attendees
	}

	response, err := h.invoker.Invoke(ctx, "calendar-create-event", payload)
	if err != nil {
		return nil, fmt.Errorf("calendar create event failed: %w", err)
	}

	return &protocol.HandlerResponse{
		Data:        response,
		ExternalID:  stringField(response, "event_id"),
		DisplayName: summary,
	}, nil
}

func (h *Handler) Read(ctx context.Context, _ models.ResourceType, data map[string]any, stepCtx *models.StepContext) (*protocol.HandlerResponse, error) {
	payload := map[string]any{
		"calendar_id": stepCtx.AccountID(capability.ContextKeyCalendar),
		"event_id":    stringField(data, "event_id"),
	}

	response, err := h.invoker.Invoke(ctx, "calendar-get-event", payload)
	if err != nil {
		return nil, fmt.Errorf("calendar read event failed: %w", err)
	}

	return &protocol.HandlerResponse{Data: response}, nil
}

func (h *Handler) Update(ctx context.Context, _ models.ResourceType, data map[string]any, stepCtx *models.StepContext) (*protocol.HandlerResponse, error) {
	payload := map[string]any{
		"calendar_id": stepCtx.AccountID(capability.ContextKeyCalendar),
		"event_id":    stringField(data, "event_id"),
		"changes":     data,
	}

	response, err := h.invoker.Invoke(ctx, "calendar-update-event", payload)
	if err != nil {
		return nil, fmt.Errorf("calendar update event failed: %w", err)
	}

	return &protocol.HandlerResponse{Data: response}, nil
}

func (h *Handler) Delete(ctx context.Context, resource *models.TrackedResource, stepCtx *models.StepContext) error {
	payload := map[string]any{
		"calendar_id": stepCtx.AccountID(capability.ContextKeyCalendar),
		"event_id":    resource.ExternalID,
	}

	if _, err := h.invoker.Invoke(ctx, "calendar-delete-event", payload); err != nil {
		return fmt.Errorf("calendar delete event %s failed: %w", resource.ExternalID, err)
	}

	return nil
}

func stringField(data map[string]any, key string) string {
	value, _ := data[key].(string)

	return value
}
