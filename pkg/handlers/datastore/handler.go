// Package datastore drives the application's own internal record store.
package datastore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flowprobe/flowprobe/pkg/models"
	"github.com/flowprobe/flowprobe/pkg/protocol"
)

// Handler shapes generic operation data into internal record store calls.
type Handler struct {
	invoker protocol.Invoker
	logger  *slog.Logger
}

// NewHandler creates the datastore handler.
func NewHandler(invoker protocol.Invoker, logger *slog.Logger) *Handler {
	return &Handler{
		invoker: invoker,
		logger:  logger.With("module", "datastore_handler"),
	}
}

func (h *Handler) Integration() models.Integration {
	return models.IntegrationDatastore
}

func (h *Handler) Create(ctx context.Context, _ models.ResourceType, data map[string]any, stepCtx *models.StepContext) (*protocol.HandlerResponse, error) {
	collection, _ := data["collection"].(string)
	if collection == "" {
		collection = "test_records"
	}

	record, ok := data["record"].(map[string]any)
	if !ok {
		record = data
	}

	payload := map[string]any{
		"org_id":     stepCtx.OrgID,
		"collection": collection,
		"record":     record,
	}

	response, err := h.invoker.Invoke(ctx, "datastore-create-record", payload)
	if err != nil {
		return nil, fmt.Errorf("datastore create failed: %w", err)
	}

	return &protocol.HandlerResponse{
		Data:        response,
		ExternalID:  stringField(response, "record_id"),
		DisplayName: collection + " record",
	}, nil
}

func (h *Handler) Read(ctx context.Context, _ models.ResourceType, data map[string]any, stepCtx *models.StepContext) (*protocol.HandlerResponse, error) {
	payload := map[string]any{
		"org_id":    stepCtx.OrgID,
		"record_id": stringField(data, "record_id"),
	}

	response, err := h.invoker.Invoke(ctx, "datastore-get-record", payload)
	if err != nil {
		return nil, fmt.Errorf("datastore read failed: %w", err)
	}

	return &protocol.HandlerResponse{Data: response}, nil
}

func (h *Handler) Update(ctx context.Context, _ models.ResourceType, data map[string]any, stepCtx *models.StepContext) (*protocol.HandlerResponse, error) {
	payload := map[string]any{
		"org_id":    stepCtx.OrgID,
		"record_id": stringField(data, "record_id"),
		"changes":   data,
	}

	response, err := h.invoker.Invoke(ctx, "datastore-update-record", payload)
	if err != nil {
		return nil, fmt.Errorf("datastore update failed: %w", err)
	}

	return &protocol.HandlerResponse{Data: response}, nil
}

func (h *Handler) Delete(ctx context.Context, resource *models.TrackedResource, stepCtx *models.StepContext) error {
	payload := map[string]any{
		"org_id":    stepCtx.OrgID,
		"record_id": resource.ExternalID,
	}

	if _, err := h.invoker.Invoke(ctx, "datastore-delete-record", payload); err != nil {
		return fmt.Errorf("datastore delete record %s failed: %w", resource.ExternalID, err)
	}

	return nil
}

func stringField(data map[string]any, key string) string {
	value, _ := data[key].(string)

	return value
}
