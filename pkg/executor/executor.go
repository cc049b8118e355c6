// Package executor dispatches single logical operations against the closed
// integration set, normalizes operation aliases, enforces capabilities, and
// registers created resources with the run's tracker.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flowprobe/flowprobe/pkg/capability"
	"github.com/flowprobe/flowprobe/pkg/models"
	"github.com/flowprobe/flowprobe/pkg/otelhelper"
	"github.com/flowprobe/flowprobe/pkg/protocol"
	"github.com/flowprobe/flowprobe/pkg/tracker"
)

// Executor performs integration operations for exactly one test run: it is
// bound to that run's tracker and processes calls strictly sequentially.
type Executor struct {
	capabilities *capability.Registry
	handlers     map[models.Integration]protocol.IntegrationHandler
	tracker      *tracker.Tracker
	tracer       trace.Tracer
	logger       *slog.Logger
}

// NewExecutor wires an executor to a capability registry, a handler set and
// the run's resource tracker. Spans go to the globally installed tracer
// provider; without one they are no-ops.
func NewExecutor(capabilities *capability.Registry, handlers map[models.Integration]protocol.IntegrationHandler, resourceTracker *tracker.Tracker, logger *slog.Logger) *Executor {
	return &Executor{
		capabilities: capabilities,
		handlers:     handlers,
		tracker:      resourceTracker,
		tracer:       otel.Tracer("flowprobe.executor"),
		logger:       logger.With("module", "integration_executor"),
	}
}

// NormalizeOperation folds operation aliases onto the four canonical verbs.
func NormalizeOperation(operation string) (models.Operation, bool) {
	switch strings.ToLower(strings.TrimSpace(operation)) {
	case "create", "write", "insert", "send", "post":
		return models.OperationCreate, true
	case "read", "get", "fetch", "list":
		return models.OperationRead, true
	case "update", "patch", "edit":
		return models.OperationUpdate, true
	case "delete", "remove", "destroy", "cancel":
		return models.OperationDelete, true
	default:
		return "", false
	}
}

// Execute runs one operation. Capability and missing-context problems are
// rejected locally before any remote call; remote failures come back as
// Success=false results. Only programming errors escape the handlers, and
// the recover boundary converts even those into the same structured shape.
//
// The delete verb is accepted by NormalizeOperation but rejected here:
// deletion belongs to the cleanup service via Delete, so a mid-run delete
// cannot desync the resource ledger.
func (e *Executor) Execute(ctx context.Context, integrationName, operation string, resourceType models.ResourceType, data map[string]any, stepCtx *models.StepContext) (result *models.ExecutionResult) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "executor execute",
		otelhelper.StepAttributes(stepCtx.RunID, stepCtx.StepID, integrationName, operation)...)

	defer func() {
		if result != nil && !result.Success {
			otelhelper.SetError(span, errors.New(result.Error))
		}

		span.End()
	}()

	logger := e.logger.With(
		"integration", integrationName,
		"operation", operation,
		"resource_type", resourceType,
		"step_id", stepCtx.StepID,
	)

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "Integration handler panicked", "panic", r)
			result = &models.ExecutionResult{
				Success: false,
				Error:   fmt.Sprintf("internal error executing %s %s: %v", integrationName, operation, r),
			}
		}
	}()

	integration, ok := models.ParseIntegration(strings.ToLower(integrationName))
	if !ok {
		return failure("integration %q is not known", integrationName)
	}

	op, ok := NormalizeOperation(operation)
	if !ok {
		return failure("operation %q is not recognized", operation)
	}

	cap, err := e.capabilities.Lookup(integration)
	if err != nil {
		return failure("%s", err.Error())
	}

	if !cap.SupportsOperation(op) {
		return failure("integration %q does not support %s operations", integration, op)
	}

	if resourceType != "" && !cap.ManagesResourceType(resourceType) {
		return failure("integration %q does not manage %q resources", integration, resourceType)
	}

	handler, ok := e.handlers[integration]
	if !ok {
		return failure("no handler wired for integration %q", integration)
	}

	logger.InfoContext(ctx, "Dispatching integration operation")

	response, err := e.dispatch(ctx, handler, op, resourceType, data, stepCtx)
	if err != nil {
		logger.ErrorContext(ctx, "Integration operation failed", "error", err)

		return &models.ExecutionResult{Success: false, Error: err.Error()}
	}

	result = &models.ExecutionResult{Success: true, Data: response.Data}

	if op == models.OperationCreate {
		result.Resource = e.registerResource(integration, resourceType, response, stepCtx)
	}

	return result
}

// Delete drives one resource's removal through the same handler table. The
// cleanup service calls this; it is the delete sibling of Execute.
func (e *Executor) Delete(ctx context.Context, resource *models.TrackedResource, stepCtx *models.StepContext) error {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "executor delete",
		attribute.String(otelhelper.IntegrationKey, string(resource.Integration)),
		attribute.String(otelhelper.ResourceIDKey, resource.ID),
		attribute.String(otelhelper.ResourceTypeKey, string(resource.ResourceType)),
	)
	defer span.End()

	handler, ok := e.handlers[resource.Integration]
	if !ok {
		err := fmt.Errorf("no handler wired for integration %q", resource.Integration)
		otelhelper.SetError(span, err)

		return err
	}

	if err := handler.Delete(ctx, resource, stepCtx); err != nil {
		otelhelper.SetError(span, err)

		return err
	}

	return nil
}

func (e *Executor) dispatch(ctx context.Context, handler protocol.IntegrationHandler, op models.Operation, resourceType models.ResourceType, data map[string]any, stepCtx *models.StepContext) (*protocol.HandlerResponse, error) {
	switch op {
	case models.OperationCreate:
		return handler.Create(ctx, resourceType, data, stepCtx)
	case models.OperationRead:
		return handler.Read(ctx, resourceType, data, stepCtx)
	case models.OperationUpdate:
		return handler.Update(ctx, resourceType, data, stepCtx)
	case models.OperationDelete:
		return nil, fmt.Errorf("delete is driven by the cleanup service, not step execution")
	default:
		return nil, fmt.Errorf("unhandled operation %q", op)
	}
}

// registerResource records a successful creation in the run ledger with a
// best-effort view URL.
func (e *Executor) registerResource(integration models.Integration, resourceType models.ResourceType, response *protocol.HandlerResponse, stepCtx *models.StepContext) *models.TrackedResource {
	viewURL := e.capabilities.BuildViewURL(integration, resourceType, response.ExternalID, stepCtx)

	return e.tracker.AddResource(tracker.AddResourceOptions{
		Integration:       integration,
		ResourceType:      resourceType,
		DisplayName:       response.DisplayName,
		ExternalID:        response.ExternalID,
		ViewURL:           viewURL,
		CreatedByStepID:   stepCtx.StepID,
		CreatedByStepName: stepCtx.StepName,
		RawData:           response.Data,
	})
}

func failure(format string, args ...any) *models.ExecutionResult {
	return &models.ExecutionResult{
		Success: false,
		Error:   fmt.Sprintf(format, args...),
	}
}
