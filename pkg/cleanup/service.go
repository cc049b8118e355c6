// Package cleanup deletes the resources a run created, walking them in
// reverse creation order so dependents go before their parents.
package cleanup

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flowprobe/flowprobe/pkg/capability"
	"github.com/flowprobe/flowprobe/pkg/eventbus"
	"github.com/flowprobe/flowprobe/pkg/events"
	"github.com/flowprobe/flowprobe/pkg/executor"
	"github.com/flowprobe/flowprobe/pkg/models"
	"github.com/flowprobe/flowprobe/pkg/otelhelper"
	"github.com/flowprobe/flowprobe/pkg/tracker"
)

// DefaultDelay is the pause between consecutive deletions, long enough to
// avoid tripping provider rate limits.
const DefaultDelay = 200 * time.Millisecond

// Callbacks receive progress notifications during a sweep. Every field is
// optional.
type Callbacks struct {
	OnStart            func(total int)
	OnResourceStart    func(resource *models.TrackedResource, index, total int)
	OnResourceComplete func(resource *models.TrackedResource, err error)
	OnComplete         func(result *models.CleanupResult)
}

// Options configure a sweep.
type Options struct {
	// ContinueOnFailure keeps the sweep going after a failed deletion.
	// Defaults to true.
	ContinueOnFailure *bool
	// Delay overrides DefaultDelay between deletions.
	Delay time.Duration
	// RunID and WorkflowID identify the run in emitted events.
	RunID      string
	WorkflowID string
}

func (o Options) continueOnFailure() bool {
	if o.ContinueOnFailure == nil {
		return true
	}

	return *o.ContinueOnFailure
}

func (o Options) delay() time.Duration {
	if o.Delay <= 0 {
		return DefaultDelay
	}

	return o.Delay
}

// Service runs cleanup sweeps against a tracker.
type Service struct {
	capabilities *capability.Registry
	executor     *executor.Executor
	tracker      *tracker.Tracker
	publisher    eventbus.EventPublisher
	callbacks    Callbacks
	tracer       trace.Tracer
	logger       *slog.Logger
}

// NewService wires a cleanup service. publisher may be nil, in which case no
// events are emitted.
func NewService(
	capabilities *capability.Registry,
	exec *executor.Executor,
	trk *tracker.Tracker,
	publisher eventbus.EventPublisher,
	callbacks Callbacks,
	logger *slog.Logger,
) *Service {
	return &Service{
		capabilities: capabilities,
		executor:     exec,
		tracker:      trk,
		publisher:    publisher,
		callbacks:    callbacks,
		tracer:       otel.Tracer("flowprobe.cleanup"),
		logger:       logger.With("module", "cleanup"),
	}
}

// Run sweeps every tracked resource. Resources whose integration cannot
// delete are marked not_supported up front and skipped; the rest are deleted
// newest first. The returned result is never nil.
func (s *Service) Run(ctx context.Context, stepCtx *models.StepContext, opts Options) *models.CleanupResult {
	startedAt := time.Now().UTC()
	result := &models.CleanupResult{
		TotalResources: s.tracker.Len(),
		StartedAt:      startedAt,
	}

	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "cleanup sweep",
		attribute.String(otelhelper.RunIDKey, opts.RunID),
		attribute.String(otelhelper.WorkflowIDKey, opts.WorkflowID),
	)

	defer func() {
		if result.FailedCount > 0 {
			otelhelper.SetError(span, errors.New("cleanup finished with failures"))
		}

		span.End()
	}()

	s.logger.InfoContext(ctx, "Starting cleanup", "total_resources", result.TotalResources)

	if s.callbacks.OnStart != nil {
		s.callbacks.OnStart(result.TotalResources)
	}

	s.publish(ctx, opts, events.CleanupStarted{
		BaseEvent:      s.base(events.CleanupStartedEvent, opts),
		TotalResources: result.TotalResources,
	})

	s.markUnsupported(ctx)

	ordered := s.tracker.ResourcesInCleanupOrder()
	for index, resource := range ordered {
		if resource.CleanupStatus == models.CleanupStatusNotSupported {
			result.SkippedCount++
			continue
		}

		if resource.CleanupStatus == models.CleanupStatusSuccess {
			result.SuccessCount++

			continue
		}

		if s.callbacks.OnResourceStart != nil {
			s.callbacks.OnResourceStart(resource, index, len(ordered))
		}

		s.publish(ctx, opts, events.CleanupResourceStarted{
			BaseEvent: s.base(events.CleanupResourceStartedEvent, opts),
			Resource:  resource,
			Index:     index,
			Total:     len(ordered),
		})

		err := s.deleteResource(ctx, resource, stepCtx)
		if err != nil {
			result.FailedCount++
			result.FailedResources = append(result.FailedResources, models.FailedResource{
				Resource: resource,
				Error:    err.Error(),
			})

			s.logger.ErrorContext(ctx, "Resource cleanup failed",
				"resource_id", resource.ID,
				"integration", resource.Integration,
				"error", err)
		} else {
			result.SuccessCount++
		}

		if s.callbacks.OnResourceComplete != nil {
			s.callbacks.OnResourceComplete(resource, err)
		}

		completed := events.CleanupResourceCompleted{
			BaseEvent: s.base(events.CleanupResourceCompletedEvent, opts),
			Resource:  resource,
			Success:   err == nil,
		}
		if err != nil {
			completed.Error = err.Error()
		}

		s.publish(ctx, opts, completed)

		if err != nil && !opts.continueOnFailure() {
			s.logger.WarnContext(ctx, "Aborting cleanup after failure", "resource_id", resource.ID)
			s.skipRemaining(ctx, ordered[index+1:], result)

			break
		}

		if index < len(ordered)-1 {
			select {
			case <-ctx.Done():
				s.logger.WarnContext(ctx, "Cleanup cancelled", "error", ctx.Err())
				s.skipRemaining(ctx, ordered[index+1:], result)

				return s.finish(ctx, opts, result, startedAt)
			case <-time.After(opts.delay()):
			}
		}
	}

	return s.finish(ctx, opts, result, startedAt)
}

func (s *Service) finish(ctx context.Context, opts Options, result *models.CleanupResult, startedAt time.Time) *models.CleanupResult {
	result.Success = result.FailedCount == 0
	result.ManualCleanupInstructions = s.tracker.ManualCleanupInstructions()
	result.CompletedAt = time.Now().UTC()
	result.DurationMS = result.CompletedAt.Sub(startedAt).Milliseconds()

	if s.callbacks.OnComplete != nil {
		s.callbacks.OnComplete(result)
	}

	s.publish(ctx, opts, events.CleanupFinished{
		BaseEvent: s.base(events.CleanupFinishedEvent, opts),
		Result:    result,
	})

	s.logger.InfoContext(ctx, "Cleanup finished",
		"success", result.Success,
		"succeeded", result.SuccessCount,
		"failed", result.FailedCount,
		"skipped", result.SkippedCount)

	return result
}

// skipRemaining settles the resources an aborted sweep never reached so
// every record lands in exactly one result bucket.
func (s *Service) skipRemaining(ctx context.Context, remaining []*models.TrackedResource, result *models.CleanupResult) {
	for _, resource := range remaining {
		switch resource.CleanupStatus {
		case models.CleanupStatusSuccess:
			result.SuccessCount++
		case models.CleanupStatusNotSupported:
			result.SkippedCount++
		default:
			if err := s.tracker.UpdateCleanupStatus(resource.ID, models.CleanupStatusSkipped, ""); err != nil {
				s.logger.ErrorContext(ctx, "Failed to mark resource skipped",
					"resource_id", resource.ID,
					"error", err)
			}

			result.SkippedCount++
		}
	}
}

// markUnsupported flags every resource belonging to an integration without a
// delete capability before the sweep starts.
func (s *Service) markUnsupported(ctx context.Context) {
	for _, integration := range models.AllIntegrations() {
		if s.capabilities.SupportsCleanup(integration) {
			continue
		}

		marked := s.tracker.MarkIntegrationNotSupported(integration)
		if marked > 0 {
			s.logger.InfoContext(ctx, "Integration does not support deletion, resources kept",
				"integration", integration,
				"count", marked)
		}
	}
}

func (s *Service) deleteResource(ctx context.Context, resource *models.TrackedResource, stepCtx *models.StepContext) error {
	err := s.executor.Delete(ctx, resource, stepCtx)

	status := models.CleanupStatusSuccess
	errMsg := ""

	if err != nil {
		status = models.CleanupStatusFailed
		errMsg = err.Error()
	}

	if updateErr := s.tracker.UpdateCleanupStatus(resource.ID, status, errMsg); updateErr != nil {
		s.logger.ErrorContext(ctx, "Failed to update cleanup status",
			"resource_id", resource.ID,
			"error", updateErr)
	}

	return err
}

func (s *Service) base(eventType events.EventType, opts Options) events.BaseEvent {
	return events.BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		RunID:      opts.RunID,
		WorkflowID: opts.WorkflowID,
	}
}

func (s *Service) publish(ctx context.Context, opts Options, event eventbus.Event) {
	if s.publisher == nil {
		return
	}

	key := opts.RunID
	if key == "" {
		key = "cleanup"
	}

	if err := s.publisher.Publish(ctx, key, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish cleanup event", "error", err)
	}
}
