// Package booking drives the scheduling-link integration: creating
// single-use links, reading bookings and cancelling them.
package booking

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flowprobe/flowprobe/pkg/models"
	"github.com/flowprobe/flowprobe/pkg/protocol"
)

// Handler shapes generic operation data into scheduling calls.
type Handler struct {
	invoker protocol.Invoker
	logger  *slog.Logger
}

// NewHandler creates the booking handler.
func NewHandler(invoker protocol.Invoker, logger *slog.Logger) *Handler {
	return &Handler{
		invoker: invoker,
		logger:  logger.With("module", "booking_handler"),
	}
}

func (h *Handler) Integration() models.Integration {
	return models.IntegrationCalendly
}

func (h *Handler) Create(ctx context.Context, resourceType models.ResourceType, data map[string]any, stepCtx *models.StepContext) (*protocol.HandlerResponse, error) {
	eventType, _ := data["event_type"].(string)
	if eventType == "" {
		eventType = "intro-call"
	}

	invitee, _ := data["invitee"].(string)
	if invitee == "" {
		invitee = "flowprobe-" + stepCtx.RunID + "@example.com"
	}

	callable := "calendly-create-link"
	if resourceType == models.ResourceTypeBooking {
		callable = "calendly-create-booking"
	}

	payload := map[string]any{
		"event_type": eventType,
		"invitee":    invitee,
	}

	response, err := h.invoker.Invoke(ctx, callable, payload)
	if err != nil {
		return nil, fmt.Errorf("booking create %s failed: %w", resourceType, err)
	}

	externalID := stringField(response, "booking_id")
	if externalID == "" {
		externalID = stringField(response, "link_id")
	}

	return &protocol.HandlerResponse{
		Data:        response,
		ExternalID:  externalID,
		DisplayName: eventType + " for " + invitee,
	}, nil
}

func (h *Handler) Read(ctx context.Context, _ models.ResourceType, data map[string]any, _ *models.StepContext) (*protocol.HandlerResponse, error) {
	payload := map[string]any{"booking_id": stringField(data, "booking_id")}

	response, err := h.invoker.Invoke(ctx, "calendly-get-booking", payload)
	if err != nil {
		return nil, fmt.Errorf("booking read failed: %w", err)
	}

	return &protocol.HandlerResponse{Data: response}, nil
}

func (h *Handler) Update(_ context.Context, _ models.ResourceType, _ map[string]any, _ *models.StepContext) (*protocol.HandlerResponse, error) {
	return nil, fmt.Errorf("%w: bookings are cancelled and recreated, never updated", protocol.ErrOperationNotSupported)
}

// Delete cancels a booking or deactivates a link.
func (h *Handler) Delete(ctx context.Context, resource *models.TrackedResource, _ *models.StepContext) error {
	payload := map[string]any{
		"id":   resource.ExternalID,
		"kind": string(resource.ResourceType),
	}

	if _, err := h.invoker.Invoke(ctx, "calendly-cancel", payload); err != nil {
		return fmt.Errorf("booking cancel %s failed: %w", resource.ExternalID, err)
	}

	return nil
}

func stringField(data map[string]any, key string) string {
	value, _ := data[key].(string)

	return value
}
