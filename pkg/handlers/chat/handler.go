// Package chat drives the team chat integration: posting, editing and
// deleting channel messages.
package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flowprobe/flowprobe/pkg/capability"
	"github.com/flowprobe/flowprobe/pkg/models"
	"github.com/flowprobe/flowprobe/pkg/protocol"
)

// Handler shapes generic operation data into chat message calls.
type Handler struct {
	invoker protocol.Invoker
	logger  *slog.Logger
}

// NewHandler creates the chat handler.
func NewHandler(invoker protocol.Invoker, logger *slog.Logger) *Handler {
	return &Handler{
		invoker: invoker,
		logger:  logger.With("module", "chat_handler"),
	}
}

func (h *Handler) Integration() models.Integration {
	return models.IntegrationSlack
}

// Create posts a message. The channel comes from the step context unless the
// step data names one explicitly.
func (h *Handler) Create(ctx context.Context, _ models.ResourceType, data map[string]any, stepCtx *models.StepContext) (*protocol.HandlerResponse, error) {
	channel := stringField(data, "channel")
	if channel == "" {
		channel = stepCtx.AccountID(capability.ContextKeyChannel)
	}

	if channel == "" {
		return nil, fmt.Errorf("%w: channel", protocol.ErrMissingContext)
	}

	text, _ := data["text"].(string)
	if text == "" {
		text = "Automated workflow test message (run " + stepCtx.RunID + ")"
	}

	payload := map[string]any{
		"channel": channel,
		"text":    text,
	}

	response, err := h.invoker.Invoke(ctx, "slack-post-message", payload)
	if err != nil {
		return nil, fmt.Errorf("chat post failed: %w", err)
	}

	return &protocol.HandlerResponse{
		Data:        response,
		ExternalID:  stringField(response, "ts"),
		DisplayName: text,
	}, nil
}

func (h *Handler) Read(ctx context.Context, _ models.ResourceType, data map[string]any, stepCtx *models.StepContext) (*protocol.HandlerResponse, error) {
	payload := map[string]any{
		"channel": channelFor(data, stepCtx),
		"ts":      stringField(data, "ts"),
	}

	response, err := h.invoker.Invoke(ctx, "slack-get-message", payload)
	if err != nil {
		return nil, fmt.Errorf("chat read failed: %w", err)
	}

	return &protocol.HandlerResponse{Data: response}, nil
}

func (h *Handler) Update(ctx context.Context, _ models.ResourceType, data map[string]any, stepCtx *models.StepContext) (*protocol.HandlerResponse, error) {
	payload := map[string]any{
		"channel": channelFor(data, stepCtx),
		"ts":      stringField(data, "ts"),
		"text":    stringField(data, "text"),
	}

	response, err := h.invoker.Invoke(ctx, "slack-update-message", payload)
	if err != nil {
		return nil, fmt.Errorf("chat update failed: %w", err)
	}

	return &protocol.HandlerResponse{Data: response}, nil
}

func (h *Handler) Delete(ctx context.Context, resource *models.TrackedResource, stepCtx *models.StepContext) error {
	channel := stepCtx.AccountID(capability.ContextKeyChannel)
	if channel == "" {
		channel = stringField(resource.RawData, "channel")
	}

	payload := map[string]any{
		"channel": channel,
		"ts":      resource.ExternalID,
	}

	if _, err := h.invoker.Invoke(ctx, "slack-delete-message", payload); err != nil {
		return fmt.Errorf("chat delete message %s failed: %w", resource.ExternalID, err)
	}

	return nil
}

func channelFor(data map[string]any, stepCtx *models.StepContext) string {
	if channel := stringField(data, "channel"); channel != "" {
		return channel
	}

	return stepCtx.AccountID(capability.ContextKeyChannel)
}

func stringField(data map[string]any, key string) string {
	value, _ := data[key].(string)

	return value
}
