// Package recorder drives the call recording / meeting bot integration.
// It is strictly read-only: transcripts and recordings belong to the bot.
package recorder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flowprobe/flowprobe/pkg/models"
	"github.com/flowprobe/flowprobe/pkg/protocol"
)

// Handler reads transcripts and recordings.
type Handler struct {
	invoker protocol.Invoker
	logger  *slog.Logger
}

// NewHandler creates the recorder handler.
func NewHandler(invoker protocol.Invoker, logger *slog.Logger) *Handler {
	return &Handler{
		invoker: invoker,
		logger:  logger.With("module", "recorder_handler"),
	}
}

func (h *Handler) Integration() models.Integration {
	return models.IntegrationFireflies
}

func (h *Handler) Create(_ context.Context, resourceType models.ResourceType, _ map[string]any, _ *models.StepContext) (*protocol.HandlerResponse, error) {
	return nil, fmt.Errorf("%w: recorder is read-only, cannot create %s", protocol.ErrOperationNotSupported, resourceType)
}

func (h *Handler) Read(ctx context.Context, resourceType models.ResourceType, data map[string]any, _ *models.StepContext) (*protocol.HandlerResponse, error) {
	callable := "fireflies-get-transcript"
	if resourceType == models.ResourceTypeRecording {
		callable = "fireflies-get-recording"
	}

	payload := map[string]any{"meeting_id": stringField(data, "meeting_id")}

	response, err := h.invoker.Invoke(ctx, callable, payload)
	if err != nil {
		return nil, fmt.Errorf("recorder read %s failed: %w", resourceType, err)
	}

	return &protocol.HandlerResponse{Data: response}, nil
}

func (h *Handler) Update(_ context.Context, resourceType models.ResourceType, _ map[string]any, _ *models.StepContext) (*protocol.HandlerResponse, error) {
	return nil, fmt.Errorf("%w: recorder is read-only, cannot update %s", protocol.ErrOperationNotSupported, resourceType)
}

func (h *Handler) Delete(_ context.Context, resource *models.TrackedResource, _ *models.StepContext) error {
	return fmt.Errorf("%w: recorder is read-only, cannot delete %s", protocol.ErrOperationNotSupported, resource.ResourceType)
}

func stringField(data map[string]any, key string) string {
	value, _ := data[key].(string)

	return value
}
