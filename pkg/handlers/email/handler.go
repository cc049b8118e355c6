// Package email drives the transactional email sender. Sending is the only
// side effect; sent mail cannot be recalled, so cleanup is never automatic.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/flowprobe/flowprobe/pkg/models"
	"github.com/flowprobe/flowprobe/pkg/protocol"
	"github.com/google/uuid"
)

// Handler shapes generic operation data into send/read email calls.
type Handler struct {
	invoker protocol.Invoker
	logger  *slog.Logger
}

// NewHandler creates the email handler.
func NewHandler(invoker protocol.Invoker, logger *slog.Logger) *Handler {
	return &Handler{
		invoker: invoker,
		logger:  logger.With("module", "email_handler"),
	}
}

func (h *Handler) Integration() models.Integration {
	return models.IntegrationResend
}

// Create sends an email, synthesizing recipient and subject when missing so
// a smoke run never fails on cosmetic fields.
func (h *Handler) Create(ctx context.Context, _ models.ResourceType, data map[string]any, stepCtx *models.StepContext) (*protocol.HandlerResponse, error) {
	to, _ := data["to"].(string)
	if to == "" {
		to = fmt.Sprintf("flowprobe-%s@example.com", strings.Split(uuid.New().String(), "-")[0])
	}

	subject, _ := data["subject"].(string)
	if subject == "" {
		subject = "Flowprobe test email (run " + stepCtx.RunID + ")"
	}

	html, _ := data["html"].(string)
	if html == "" {
		html = "<p>Sent by an automated workflow test run.</p>"
	}

	payload := map[string]any{
		"to":      to,
		"subject": subject,
		"html":    html,
	}

	response, err := h.invoker.Invoke(ctx, "resend-send-email", payload)
	if err != nil {
		return nil, fmt.Errorf("email send failed: %w", err)
	}

	return &protocol.HandlerResponse{
		Data:        response,
		ExternalID:  stringField(response, "email_id"),
		DisplayName: subject,
	}, nil
}

func (h *Handler) Read(ctx context.Context, _ models.ResourceType, data map[string]any, _ *models.StepContext) (*protocol.HandlerResponse, error) {
	payload := map[string]any{"email_id": stringField(data, "email_id")}

	response, err := h.invoker.Invoke(ctx, "resend-get-email", payload)
	if err != nil {
		return nil, fmt.Errorf("email read failed: %w", err)
	}

	return &protocol.HandlerResponse{Data: response}, nil
}

func (h *Handler) Update(_ context.Context, _ models.ResourceType, _ map[string]any, _ *models.StepContext) (*protocol.HandlerResponse, error) {
	return nil, fmt.Errorf("%w: email cannot be updated after sending", protocol.ErrOperationNotSupported)
}

func (h *Handler) Delete(_ context.Context, resource *models.TrackedResource, _ *models.StepContext) error {
	return fmt.Errorf("%w: sent email %s cannot be recalled", protocol.ErrOperationNotSupported, resource.ExternalID)
}

func stringField(data map[string]any, key string) string {
	value, _ := data[key].(string)

	return value
}
