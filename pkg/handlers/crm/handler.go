// Package crm drives the CRM object store integration: contacts, companies,
// deals, tickets and notes.
package crm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/flowprobe/flowprobe/pkg/models"
	"github.com/flowprobe/flowprobe/pkg/protocol"
	"github.com/google/uuid"
)

// Handler shapes generic operation data into CRM object calls.
type Handler struct {
	invoker protocol.Invoker
	logger  *slog.Logger
}

// NewHandler creates the CRM handler.
func NewHandler(invoker protocol.Invoker, logger *slog.Logger) *Handler {
	return &Handler{
		invoker: invoker,
		logger:  logger.With("module", "crm_handler"),
	}
}

func (h *Handler) Integration() models.Integration {
	return models.IntegrationHubSpot
}

// Create builds object properties from the generic data, filling cosmetic
// fields a test author usually omits, and returns the new object's id.
func (h *Handler) Create(ctx context.Context, resourceType models.ResourceType, data map[string]any, stepCtx *models.StepContext) (*protocol.HandlerResponse, error) {
	properties := objectProperties(data)
	fillDefaults(resourceType, properties, stepCtx)

	payload := map[string]any{
		"object_type": string(resourceType),
		"properties":  properties,
	}

	response, err := h.invoker.Invoke(ctx, "hubspot-create-object", payload)
	if err != nil {
		return nil, fmt.Errorf("crm create %s failed: %w", resourceType, err)
	}

	return &protocol.HandlerResponse{
		Data:        response,
		ExternalID:  stringField(response, "id"),
		DisplayName: displayName(resourceType, properties),
	}, nil
}

func (h *Handler) Read(ctx context.Context, resourceType models.ResourceType, data map[string]any, _ *models.StepContext) (*protocol.HandlerResponse, error) {
	payload := map[string]any{
		"object_type": string(resourceType),
		"id":          stringField(data, "id"),
	}

	response, err := h.invoker.Invoke(ctx, "hubspot-get-object", payload)
	if err != nil {
		return nil, fmt.Errorf("crm read %s failed: %w", resourceType, err)
	}

	return &protocol.HandlerResponse{Data: response}, nil
}

func (h *Handler) Update(ctx context.Context, resourceType models.ResourceType, data map[string]any, _ *models.StepContext) (*protocol.HandlerResponse, error) {
	payload := map[string]any{
		"object_type": string(resourceType),
		"id":          stringField(data, "id"),
		"properties":  objectProperties(data),
	}

	response, err := h.invoker.Invoke(ctx, "hubspot-update-object", payload)
	if err != nil {
		return nil, fmt.Errorf("crm update %s failed: %w", resourceType, err)
	}

	return &protocol.HandlerResponse{Data: response}, nil
}

func (h *Handler) Delete(ctx context.Context, resource *models.TrackedResource, _ *models.StepContext) error {
	payload := map[string]any{
		"object_type": string(resource.ResourceType),
		"id":          resource.ExternalID,
	}

	if _, err := h.invoker.Invoke(ctx, "hubspot-delete-object", payload); err != nil {
		return fmt.Errorf("crm delete %s %s failed: %w", resource.ResourceType, resource.ExternalID, err)
	}

	return nil
}

func objectProperties(data map[string]any) map[string]any {
	if properties, ok := data["properties"].(map[string]any); ok {
		return properties
	}

	properties := make(map[string]any, len(data))
	for key, value := range data {
		properties[key] = value
	}

	return properties
}

// fillDefaults synthesizes the cosmetic fields each object kind needs so a
// test run never fails purely on a missing name or email.
func fillDefaults(resourceType models.ResourceType, properties map[string]any, stepCtx *models.StepContext) {
	suffix := strings.Split(uuid.New().String(), "-")[0]

	switch resourceType {
	case models.ResourceTypeContact:
		if stringField(properties, "email") == "" {
			properties["email"] = fmt.Sprintf("flowprobe-%s@example.com", suffix)
		}

		if stringField(properties, "firstname") == "" {
			properties["firstname"] = "Flowprobe"
		}

		if stringField(properties, "lastname") == "" {
			properties["lastname"] = "Test " + suffix
		}
	case models.ResourceTypeCompany:
		if stringField(properties, "name") == "" {
			properties["name"] = "Flowprobe Test Co " + suffix
		}
	case models.ResourceTypeDeal:
		if stringField(properties, "dealname") == "" {
			properties["dealname"] = "Flowprobe Test Deal " + suffix
		}
	case models.ResourceTypeTicket:
		if stringField(properties, "subject") == "" {
			properties["subject"] = "Flowprobe Test Ticket " + suffix
		}
	case models.ResourceTypeNote:
		if stringField(properties, "body") == "" {
			properties["body"] = "Created by test run " + stepCtx.RunID
		}
	}
}

func displayName(resourceType models.ResourceType, properties map[string]any) string {
	for _, key := range []string{"email", "name", "dealname", "subject"} {
		if value := stringField(properties, key); value != "" {
			return value
		}
	}

	return string(resourceType)
}

func stringField(data map[string]any, key string) string {
	value, _ := data[key].(string)

	return value
}
