package protocol

import (
	"context"

	"github.com/flowprobe/flowprobe/pkg/models"
)

// HandlerResponse is what an integration handler returns from a successful
// call: the integration-shaped payload plus the extracted external id and a
// display name for tracking. ExternalID is empty for non-create operations.
type HandlerResponse struct {
	Data        map[string]any
	ExternalID  string
	DisplayName string
}

// IntegrationHandler shapes generic operation data into one integration's
// expected request fields, invokes the integration and normalizes the
// response. One implementation per member of the closed integration set.
//
// Handlers synthesize cosmetic defaults (titles, addresses, timestamps) so a
// test run never fails purely on a missing cosmetic field. They do not talk
// to the resource tracker; registration is the executor's job.
type IntegrationHandler interface {
	Integration() models.Integration

	Create(ctx context.Context, resourceType models.ResourceType, data map[string]any, stepCtx *models.StepContext) (*HandlerResponse, error)
	Read(ctx context.Context, resourceType models.ResourceType, data map[string]any, stepCtx *models.StepContext) (*HandlerResponse, error)
	Update(ctx context.Context, resourceType models.ResourceType, data map[string]any, stepCtx *models.StepContext) (*HandlerResponse, error)

	// Delete removes a previously created resource by external id. The
	// cleanup service drives this through the same dispatch table the
	// executor uses.
	Delete(ctx context.Context, resource *models.TrackedResource, stepCtx *models.StepContext) error
}
