package cleanup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/flowprobe/flowprobe/pkg/capability"
	"github.com/flowprobe/flowprobe/pkg/events"
	"github.com/flowprobe/flowprobe/pkg/executor"
	"github.com/flowprobe/flowprobe/pkg/mocks"
	"github.com/flowprobe/flowprobe/pkg/models"
	"github.com/flowprobe/flowprobe/pkg/tracker"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	invoker *mocks.ScriptedInvoker
	tracker *tracker.Tracker
	service *Service
	bus     *mocks.CapturingPublisher
}

func newFixture(callbacks Callbacks) *fixture {
	logger := testLogger()
	invoker := &mocks.ScriptedInvoker{}
	runTracker := tracker.NewTracker(logger)
	registry := capability.NewRegistry()
	exec := executor.NewExecutor(registry, executor.DefaultHandlers(invoker, logger), runTracker, logger)
	bus := &mocks.CapturingPublisher{}

	return &fixture{
		invoker: invoker,
		tracker: runTracker,
		service: NewService(registry, exec, runTracker, bus, callbacks, logger),
		bus:     bus,
	}
}

func fastOptions() Options {
	return Options{Delay: time.Nanosecond, RunID: "run-1", WorkflowID: "wf-1"}
}

func TestRun_DeletesInReverseCreationOrder(t *testing.T) {
	f := newFixture(Callbacks{})

	f.tracker.AddResource(tracker.AddResourceOptions{
		Integration: models.IntegrationHubSpot, ResourceType: models.ResourceTypeContact, ExternalID: "contact-1",
	})
	f.tracker.AddResource(tracker.AddResourceOptions{
		Integration: models.IntegrationHubSpot, ResourceType: models.ResourceTypeDeal, ExternalID: "deal-1",
	})

	result := f.service.Run(context.Background(), &models.StepContext{RunID: "run-1"}, fastOptions())

	require.NotNil(t, result)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.TotalResources)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Zero(t, result.FailedCount)
	assert.Zero(t, result.SkippedCount)

	// The deal was created last, so its deletion goes first.
	require.Len(t, f.invoker.Calls, 2)
	assert.Equal(t, "deal-1", f.invoker.Calls[0].Payload["id"])
	assert.Equal(t, "contact-1", f.invoker.Calls[1].Payload["id"])

	for _, resource := range f.tracker.Resources() {
		assert.Equal(t, models.CleanupStatusSuccess, resource.CleanupStatus)
	}
}

func TestRun_SkipsNonDeletableIntegrations(t *testing.T) {
	f := newFixture(Callbacks{})

	email := f.tracker.AddResource(tracker.AddResourceOptions{
		Integration: models.IntegrationResend, ResourceType: models.ResourceTypeEmail, ExternalID: "em_1",
	})
	contact := f.tracker.AddResource(tracker.AddResourceOptions{
		Integration: models.IntegrationHubSpot, ResourceType: models.ResourceTypeContact, ExternalID: "contact-1",
	})

	result := f.service.Run(context.Background(), &models.StepContext{RunID: "run-1"}, fastOptions())

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.TotalResources)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.SkippedCount)
	assert.Equal(t, result.TotalResources, result.SuccessCount+result.FailedCount+result.SkippedCount)

	assert.Equal(t, models.CleanupStatusNotSupported, email.CleanupStatus)
	assert.Equal(t, models.CleanupStatusSuccess, contact.CleanupStatus)

	// Only the contact reached the invoker.
	require.Len(t, f.invoker.Calls, 1)
	assert.Equal(t, "contact-1", f.invoker.Calls[0].Payload["id"])

	// The skipped email still gets a manual instruction.
	require.Len(t, result.ManualCleanupInstructions, 1)
	assert.Contains(t, result.ManualCleanupInstructions[0], "resend")
}

func TestRun_FailureKeepsGoingByDefault(t *testing.T) {
	f := newFixture(Callbacks{})
	f.invoker.Err = errors.New("remote says no")

	f.tracker.AddResource(tracker.AddResourceOptions{
		Integration: models.IntegrationHubSpot, ResourceType: models.ResourceTypeContact, ExternalID: "contact-1",
	})
	f.tracker.AddResource(tracker.AddResourceOptions{
		Integration: models.IntegrationSlack, ResourceType: models.ResourceTypeMessage, ExternalID: "msg-1",
	})

	result := f.service.Run(context.Background(), &models.StepContext{RunID: "run-1"}, fastOptions())

	assert.False(t, result.Success)
	assert.Equal(t, 2, result.FailedCount)
	assert.Zero(t, result.SuccessCount)
	require.Len(t, result.FailedResources, 2)
	assert.Contains(t, result.FailedResources[0].Error, "remote says no")

	// Both deletions were attempted despite the first failing.
	assert.Len(t, f.invoker.Calls, 2)
	assert.Len(t, result.ManualCleanupInstructions, 2)
}

func TestRun_AbortsWhenContinueOnFailureIsOff(t *testing.T) {
	f := newFixture(Callbacks{})
	f.invoker.Err = errors.New("remote says no")

	f.tracker.AddResource(tracker.AddResourceOptions{
		Integration: models.IntegrationHubSpot, ResourceType: models.ResourceTypeContact, ExternalID: "contact-1",
	})
	f.tracker.AddResource(tracker.AddResourceOptions{
		Integration: models.IntegrationSlack, ResourceType: models.ResourceTypeMessage, ExternalID: "msg-1",
	})

	stop := false
	opts := fastOptions()
	opts.ContinueOnFailure = &stop

	result := f.service.Run(context.Background(), &models.StepContext{RunID: "run-1"}, opts)

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.FailedCount)
	assert.Equal(t, 1, result.SkippedCount)
	assert.Zero(t, result.SuccessCount)
	assert.Equal(t, result.TotalResources, result.SuccessCount+result.FailedCount+result.SkippedCount)
	assert.Len(t, f.invoker.Calls, 1)

	// The unreached contact is settled as skipped and still shows up for the
	// operator.
	summary := f.tracker.Summary()
	assert.Equal(t, 1, summary[models.CleanupStatusSkipped])
	assert.Equal(t, 1, summary[models.CleanupStatusFailed])
	assert.Len(t, result.ManualCleanupInstructions, 2)
}

func TestRun_CountsAlreadyDeletedResources(t *testing.T) {
	f := newFixture(Callbacks{})

	contact := f.tracker.AddResource(tracker.AddResourceOptions{
		Integration: models.IntegrationHubSpot, ResourceType: models.ResourceTypeContact, ExternalID: "contact-1",
	})
	f.tracker.AddResource(tracker.AddResourceOptions{
		Integration: models.IntegrationHubSpot, ResourceType: models.ResourceTypeDeal, ExternalID: "deal-1",
	})
	require.NoError(t, f.tracker.UpdateCleanupStatus(contact.ID, models.CleanupStatusSuccess, ""))

	result := f.service.Run(context.Background(), &models.StepContext{RunID: "run-1"}, fastOptions())

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, result.TotalResources, result.SuccessCount+result.FailedCount+result.SkippedCount)

	// Only the deal reached the invoker.
	require.Len(t, f.invoker.Calls, 1)
	assert.Equal(t, "deal-1", f.invoker.Calls[0].Payload["id"])
}

func TestRun_ContextCancelStopsPacing(t *testing.T) {
	f := newFixture(Callbacks{})

	f.tracker.AddResource(tracker.AddResourceOptions{
		Integration: models.IntegrationHubSpot, ResourceType: models.ResourceTypeContact, ExternalID: "contact-1",
	})
	f.tracker.AddResource(tracker.AddResourceOptions{
		Integration: models.IntegrationHubSpot, ResourceType: models.ResourceTypeDeal, ExternalID: "deal-1",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := fastOptions()
	opts.Delay = time.Hour

	result := f.service.Run(ctx, &models.StepContext{RunID: "run-1"}, opts)

	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.SkippedCount)
	assert.Equal(t, result.TotalResources, result.SuccessCount+result.FailedCount+result.SkippedCount)
	assert.Len(t, f.invoker.Calls, 1)
}

func TestRun_CallbacksFire(t *testing.T) {
	var (
		startedTotal int
		started      []string
		completed    []string
		finalResult  *models.CleanupResult
	)

	f := newFixture(Callbacks{
		OnStart: func(total int) { startedTotal = total },
		OnResourceStart: func(resource *models.TrackedResource, _, _ int) {
			started = append(started, resource.ExternalID)
		},
		OnResourceComplete: func(resource *models.TrackedResource, err error) {
			completed = append(completed, resource.ExternalID)
			assert.NoError(t, err)
		},
		OnComplete: func(result *models.CleanupResult) { finalResult = result },
	})

	f.tracker.AddResource(tracker.AddResourceOptions{
		Integration: models.IntegrationHubSpot, ResourceType: models.ResourceTypeContact, ExternalID: "contact-1",
	})
	f.tracker.AddResource(tracker.AddResourceOptions{
		Integration: models.IntegrationHubSpot, ResourceType: models.ResourceTypeDeal, ExternalID: "deal-1",
	})

	f.service.Run(context.Background(), &models.StepContext{RunID: "run-1"}, fastOptions())

	assert.Equal(t, 2, startedTotal)
	assert.Equal(t, []string{"deal-1", "contact-1"}, started)
	assert.Equal(t, []string{"deal-1", "contact-1"}, completed)
	require.NotNil(t, finalResult)
	assert.True(t, finalResult.Success)
}

func TestRun_EmitsEventSequence(t *testing.T) {
	f := newFixture(Callbacks{})

	f.tracker.AddResource(tracker.AddResourceOptions{
		Integration: models.IntegrationHubSpot, ResourceType: models.ResourceTypeContact, ExternalID: "contact-1",
	})

	f.service.Run(context.Background(), &models.StepContext{RunID: "run-1"}, fastOptions())

	assert.Equal(t, []events.EventType{
		events.CleanupStartedEvent,
		events.CleanupResourceStartedEvent,
		events.CleanupResourceCompletedEvent,
		events.CleanupFinishedEvent,
	}, f.bus.Types())

	first, ok := f.bus.Events[0].(events.CleanupStarted)
	require.True(t, ok)
	assert.Equal(t, "run-1", first.RunID)
	assert.Equal(t, "wf-1", first.WorkflowID)
	assert.Equal(t, 1, first.TotalResources)
}

func TestRun_EmitsSweepSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	f := newFixture(Callbacks{})
	f.tracker.AddResource(tracker.AddResourceOptions{
		Integration: models.IntegrationHubSpot, ResourceType: models.ResourceTypeContact, ExternalID: "contact-1",
	})

	f.service.Run(context.Background(), &models.StepContext{RunID: "run-1"}, fastOptions())

	var names []string
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}

	assert.Contains(t, names, "cleanup sweep")
	assert.Contains(t, names, "executor delete")
}

func TestRun_EmptyTracker(t *testing.T) {
	f := newFixture(Callbacks{})

	result := f.service.Run(context.Background(), &models.StepContext{RunID: "run-1"}, fastOptions())

	assert.True(t, result.Success)
	assert.Zero(t, result.TotalResources)
	assert.Empty(t, f.invoker.Calls)
	assert.Empty(t, result.ManualCleanupInstructions)
}
