// Package runner executes one discovered scenario path against a workflow,
// step by step, and always closes the run with a cleanup sweep.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/flowprobe/flowprobe/pkg/capability"
	"github.com/flowprobe/flowprobe/pkg/cleanup"
	"github.com/flowprobe/flowprobe/pkg/eventbus"
	"github.com/flowprobe/flowprobe/pkg/events"
	"github.com/flowprobe/flowprobe/pkg/executor"
	"github.com/flowprobe/flowprobe/pkg/models"
	"github.com/flowprobe/flowprobe/pkg/protocol"
	"github.com/flowprobe/flowprobe/pkg/tracker"
)

// defaultResourceTypes maps each integration to the resource type a test run
// exercises when the step does not name one.
var defaultResourceTypes = map[models.Integration]models.ResourceType{
	models.IntegrationHubSpot:        models.ResourceTypeContact,
	models.IntegrationGoogleCalendar: models.ResourceTypeEvent,
	models.IntegrationResend:         models.ResourceTypeEmail,
	models.IntegrationSlack:          models.ResourceTypeMessage,
	models.IntegrationCalendly:       models.ResourceTypeSchedulingLink,
	models.IntegrationFireflies:      models.ResourceTypeTranscript,
	models.IntegrationDatastore:      models.ResourceTypeRecord,
}

// Options configure a single run.
type Options struct {
	// OrgID and AccountIDs seed the step context handed to handlers.
	OrgID      string
	AccountIDs map[string]string
	// Variables are merged into every step payload.
	Variables map[string]any
	// ContinueOnStepFailure keeps walking the path after a failed step.
	ContinueOnStepFailure bool
	// CleanupDelay overrides the pause between cleanup deletions.
	CleanupDelay time.Duration
}

// Runner owns the per-run wiring: each Run gets its own tracker, executor
// and cleanup service so concurrent runs never share resource state.
type Runner struct {
	capabilities *capability.Registry
	invoker      protocol.Invoker
	publisher    eventbus.EventPublisher
	callbacks    cleanup.Callbacks
	logger       *slog.Logger
}

// NewRunner wires a runner. publisher may be nil.
func NewRunner(
	capabilities *capability.Registry,
	invoker protocol.Invoker,
	publisher eventbus.EventPublisher,
	callbacks cleanup.Callbacks,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		capabilities: capabilities,
		invoker:      invoker,
		publisher:    publisher,
		callbacks:    callbacks,
		logger:       logger.With("module", "runner"),
	}
}

// Run walks the scenario path through the workflow. Cleanup always runs,
// even when the walk aborts early, and its result is attached to the report.
func (r *Runner) Run(ctx context.Context, workflow *models.Workflow, path *models.ScenarioPath, opts Options) (*models.RunReport, error) {
	steps, err := indexSteps(workflow, path)
	if err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	trk := tracker.NewTracker(r.logger)
	exec := executor.NewExecutor(r.capabilities, executor.DefaultHandlers(r.invoker, r.logger), trk, r.logger)

	report := &models.RunReport{
		ID:         runID,
		WorkflowID: workflow.ID,
		PathHash:   path.PathHash,
		StartedAt:  time.Now().UTC(),
	}

	stepCtx := &models.StepContext{
		RunID:      runID,
		OrgID:      firstNonEmpty(opts.OrgID, workflow.OrgID),
		AccountIDs: opts.AccountIDs,
		Variables:  opts.Variables,
	}

	r.logger.InfoContext(ctx, "Starting run",
		"run_id", runID,
		"workflow_id", workflow.ID,
		"total_steps", len(path.StepIDs))

	r.publish(ctx, runID, events.RunStarted{
		BaseEvent:  r.base(events.RunStartedEvent, runID, workflow.ID),
		PathHash:   path.PathHash,
		TotalSteps: len(path.StepIDs),
	})

	failed := false

	for _, stepID := range path.StepIDs {
		record := r.runStep(ctx, workflow, exec, steps[stepID], stepCtx)
		report.StepRecords = append(report.StepRecords, record)

		r.publish(ctx, runID, events.StepCompleted{
			BaseEvent: r.base(events.StepCompletedEvent, runID, workflow.ID),
			StepID:    record.StepID,
			Success:   record.Success,
			Error:     record.Error,
		})

		if !record.Success {
			failed = true

			if !opts.ContinueOnStepFailure {
				r.logger.WarnContext(ctx, "Aborting run after step failure",
					"run_id", runID,
					"step_id", record.StepID)

				break
			}
		}
	}

	report.Cleanup = r.runCleanup(ctx, workflow, runID, trk, exec, stepCtx, opts)
	report.Success = !failed && report.Cleanup.Success
	report.CompletedAt = time.Now().UTC()

	r.publish(ctx, runID, events.RunFinished{
		BaseEvent: r.base(events.RunFinishedEvent, runID, workflow.ID),
		Success:   report.Success,
	})

	r.logger.InfoContext(ctx, "Run finished",
		"run_id", runID,
		"success", report.Success,
		"steps", len(report.StepRecords))

	return report, nil
}

// runStep executes one workflow step. Steps without an integration
// (conditions, transforms, triggers) pass through as successes.
func (r *Runner) runStep(ctx context.Context, workflow *models.Workflow, exec *executor.Executor, step *models.WorkflowStep, stepCtx *models.StepContext) *models.StepRunRecord {
	record := &models.StepRunRecord{
		StepID:    step.ID,
		StepName:  step.Name,
		StartedAt: time.Now().UTC(),
	}

	stepCtx.StepID = step.ID
	stepCtx.StepName = step.Name

	if step.Integration == "" {
		record.Success = true
		record.CompletedAt = time.Now().UTC()

		return record
	}

	record.Integration = step.Integration
	operation := primaryOperation(step)
	record.Operation = operation

	if mock := mockFor(workflow, step); mock != nil {
		r.applyMock(ctx, mock, record)

		return record
	}

	integration, ok := models.ParseIntegration(step.Integration)
	resourceType := models.ResourceType("")

	if ok {
		resourceType = defaultResourceTypes[integration]
	}

	result := exec.Execute(ctx, step.Integration, operation, resourceType, r.stepPayload(stepCtx), stepCtx)

	record.Success = result.Success
	record.Error = result.Error
	record.CompletedAt = time.Now().UTC()

	return record
}

func (r *Runner) runCleanup(
	ctx context.Context,
	workflow *models.Workflow,
	runID string,
	trk *tracker.Tracker,
	exec *executor.Executor,
	stepCtx *models.StepContext,
	opts Options,
) *models.CleanupResult {
	cleanupOpts := cleanup.Options{
		RunID:      runID,
		WorkflowID: workflow.ID,
		Delay:      opts.CleanupDelay,
	}

	if workflow.TestConfig != nil {
		continueOnFailure := workflow.TestConfig.ContinueCleanupOnFailure
		cleanupOpts.ContinueOnFailure = &continueOnFailure

		if cleanupOpts.Delay <= 0 && workflow.TestConfig.CleanupDelayMS > 0 {
			cleanupOpts.Delay = time.Duration(workflow.TestConfig.CleanupDelayMS) * time.Millisecond
		}
	}

	service := cleanup.NewService(r.capabilities, exec, trk, r.publisher, r.callbacks, r.logger)

	return service.Run(ctx, stepCtx, cleanupOpts)
}

func (r *Runner) applyMock(ctx context.Context, mock *models.MockEntry, record *models.StepRunRecord) {
	if mock.DelayMS > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(time.Duration(mock.DelayMS) * time.Millisecond):
		}
	}

	record.Success = true
	record.CompletedAt = time.Now().UTC()
}

func (r *Runner) stepPayload(stepCtx *models.StepContext) map[string]any {
	payload := make(map[string]any, len(stepCtx.Variables))
	for key, value := range stepCtx.Variables {
		payload[key] = value
	}

	return payload
}

func (r *Runner) base(eventType events.EventType, runID, workflowID string) events.BaseEvent {
	return events.BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		RunID:      runID,
		WorkflowID: workflowID,
	}
}

func (r *Runner) publish(ctx context.Context, runID string, event eventbus.Event) {
	if r.publisher == nil {
		return
	}

	if err := r.publisher.Publish(ctx, runID, event); err != nil {
		r.logger.WarnContext(ctx, "Failed to publish run event", "error", err)
	}
}

// mockFor returns the mock entry for a step when mocking is both enabled for
// the integration and allowed by the step's test config.
func mockFor(workflow *models.Workflow, step *models.WorkflowStep) *models.MockEntry {
	if workflow.MockConfig == nil || step.Integration == "" {
		return nil
	}

	mock, ok := workflow.MockConfig[strings.ToLower(step.Integration)]
	if !ok || mock == nil || !mock.Enabled {
		return nil
	}

	if step.TestConfig != nil {
		if step.TestConfig.Mockable != nil && !*step.TestConfig.Mockable {
			return nil
		}

		if step.TestConfig.RequiresRealAPI != nil && *step.TestConfig.RequiresRealAPI {
			return nil
		}
	}

	return mock
}

// primaryOperation picks the operation a step run exercises: the first
// configured operation, else read.
func primaryOperation(step *models.WorkflowStep) string {
	if step.TestConfig != nil && len(step.TestConfig.Operations) > 0 {
		return step.TestConfig.Operations[0]
	}

	return string(models.OperationRead)
}

func indexSteps(workflow *models.Workflow, path *models.ScenarioPath) (map[string]*models.WorkflowStep, error) {
	steps := make(map[string]*models.WorkflowStep, len(workflow.Steps))
	for _, step := range workflow.Steps {
		steps[step.ID] = step
	}

	for _, stepID := range path.StepIDs {
		if _, ok := steps[stepID]; !ok {
			return nil, fmt.Errorf("path references step %q not present in workflow %s", stepID, workflow.ID)
		}
	}

	return steps, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
