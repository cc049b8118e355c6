// Package events defines the lifecycle notifications a test run emits:
// run progress, resource tracking and the cleanup sweep.
package events

import (
	"time"

	"github.com/flowprobe/flowprobe/pkg/models"
)

type EventType string

// Topic is the single stream all run lifecycle events are published on.
const Topic = "flowprobe.events"

const EventKeyMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Run lifecycle.
	RunStartedEvent    EventType = "run.started"
	StepCompletedEvent EventType = "run.step.completed"
	RunFinishedEvent   EventType = "run.finished"

	// Resource tracking.
	ResourceTrackedEvent EventType = "resource.tracked"

	// Cleanup sweep lifecycle.
	CleanupStartedEvent           EventType = "cleanup.started"
	CleanupResourceStartedEvent   EventType = "cleanup.resource.started"
	CleanupResourceCompletedEvent EventType = "cleanup.resource.completed"
	CleanupFinishedEvent          EventType = "cleanup.finished"
)

// BaseEvent carries the fields every run event shares.
type BaseEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	RunID      string    `json:"run_id"`
	WorkflowID string    `json:"workflow_id,omitempty"`
}

type RunStarted struct {
	BaseEvent

	PathHash   string `json:"path_hash"`
	TotalSteps int    `json:"total_steps"`
}

func (e RunStarted) GetType() EventType { return RunStartedEvent }

type StepCompleted struct {
	BaseEvent

	StepID  string `json:"step_id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (e StepCompleted) GetType() EventType { return StepCompletedEvent }

type RunFinished struct {
	BaseEvent

	Success bool `json:"success"`
}

func (e RunFinished) GetType() EventType { return RunFinishedEvent }

type ResourceTracked struct {
	BaseEvent

	Resource *models.TrackedResource `json:"resource"`
}

func (e ResourceTracked) GetType() EventType { return ResourceTrackedEvent }

type CleanupStarted struct {
	BaseEvent

	TotalResources int `json:"total_resources"`
}

func (e CleanupStarted) GetType() EventType { return CleanupStartedEvent }

type CleanupResourceStarted struct {
	BaseEvent

	Resource *models.TrackedResource `json:"resource"`
	Index    int                     `json:"index"`
	Total    int                     `json:"total"`
}

func (e CleanupResourceStarted) GetType() EventType { return CleanupResourceStartedEvent }

type CleanupResourceCompleted struct {
	BaseEvent

	Resource *models.TrackedResource `json:"resource"`
	Success  bool                    `json:"success"`
	Error    string                  `json:"error,omitempty"`
}

func (e CleanupResourceCompleted) GetType() EventType { return CleanupResourceCompletedEvent }

type CleanupFinished struct {
	BaseEvent

	Result *models.CleanupResult `json:"result"`
}

func (e CleanupFinished) GetType() EventType { return CleanupFinishedEvent }
