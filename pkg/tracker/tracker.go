// Package tracker keeps the ordered, append-only ledger of every resource a
// test run creates, and the per-resource cleanup state machine.
package tracker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flowprobe/flowprobe/pkg/models"
	"github.com/google/uuid"
)

var (
	// ErrResourceNotFound is returned when a status update names an unknown id.
	ErrResourceNotFound = errors.New("tracked resource not found")

	// ErrStatusFinal is returned when an update would regress a settled status.
	ErrStatusFinal = errors.New("cleanup status is already final")
)

// Tracker owns the ledger for exactly one test run. It is not safe for
// concurrent use; each run constructs its own tracker.
//
// The ledger is an arena of records plus an insertion-order index, so the
// reverse cleanup order is just the index walked backwards rather than a
// second structure to keep in sync. The arena holds pointers so every record
// has one stable identity: a pointer handed out by AddResource observes all
// later status updates.
type Tracker struct {
	arena  []*models.TrackedResource
	order  []int          // arena offsets in creation order
	byID   map[string]int // resource id -> arena offset
	logger *slog.Logger
}

// AddResourceOptions carries everything known about a resource at creation.
type AddResourceOptions struct {
	Integration       models.Integration
	ResourceType      models.ResourceType
	DisplayName       string
	ExternalID        string
	ViewURL           string
	CreatedByStepID   string
	CreatedByStepName string
	RawData           map[string]any
}

// NewTracker creates an empty ledger.
func NewTracker(logger *slog.Logger) *Tracker {
	return &Tracker{
		arena:  make([]*models.TrackedResource, 0, 16),
		order:  make([]int, 0, 16),
		byID:   make(map[string]int),
		logger: logger.With("module", "resource_tracker"),
	}
}

// AddResource appends a resource to the ledger in pending state. Records are
// created exactly once and never removed.
func (t *Tracker) AddResource(opts AddResourceOptions) *models.TrackedResource {
	resource := &models.TrackedResource{
		ID:                uuid.New().String(),
		Integration:       opts.Integration,
		ResourceType:      opts.ResourceType,
		DisplayName:       opts.DisplayName,
		ExternalID:        opts.ExternalID,
		ViewURL:           opts.ViewURL,
		CreatedByStepID:   opts.CreatedByStepID,
		CreatedByStepName: opts.CreatedByStepName,
		CreatedAt:         time.Now().UTC(),
		CleanupStatus:     models.CleanupStatusPending,
		RawData:           opts.RawData,
	}

	offset := len(t.arena)
	t.arena = append(t.arena, resource)
	t.order = append(t.order, offset)
	t.byID[resource.ID] = offset

	t.logger.Debug("Tracked resource",
		"resource_id", resource.ID,
		"integration", resource.Integration,
		"resource_type", resource.ResourceType,
		"external_id", resource.ExternalID,
	)

	return resource
}

// Resources returns the ledger in creation order.
func (t *Tracker) Resources() []*models.TrackedResource {
	out := make([]*models.TrackedResource, len(t.order))
	for i, offset := range t.order {
		out[i] = t.arena[offset]
	}

	return out
}

// ResourcesInCleanupOrder returns the ledger reversed: dependents before the
// resources they reference. A deal created after a contact is torn down
// first.
func (t *Tracker) ResourcesInCleanupOrder() []*models.TrackedResource {
	out := make([]*models.TrackedResource, len(t.order))
	for i := range t.order {
		out[i] = t.arena[t.order[len(t.order)-1-i]]
	}

	return out
}

// Get returns a resource by tracker id.
func (t *Tracker) Get(id string) (*models.TrackedResource, error) {
	offset, ok := t.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, id)
	}

	return t.arena[offset], nil
}

// UpdateCleanupStatus advances the state machine for one resource. success
// and not_supported are final; failed may be overwritten by a later
// re-attempt.
func (t *Tracker) UpdateCleanupStatus(id string, status models.CleanupStatus, cleanupErr string) error {
	resource, err := t.Get(id)
	if err != nil {
		return err
	}

	current := resource.CleanupStatus
	if current.IsTerminal() && current != models.CleanupStatusFailed {
		return fmt.Errorf("%w: %s is %s", ErrStatusFinal, id, current)
	}

	now := time.Now().UTC()
	resource.CleanupStatus = status
	resource.CleanupError = cleanupErr
	resource.CleanupAttemptedAt = &now

	return nil
}

// MarkIntegrationNotSupported bulk-settles every pending resource of one
// integration. The cleanup service calls this up front for integrations the
// capability registry marks non-deletable, short-circuiting the per-resource
// checks.
func (t *Tracker) MarkIntegrationNotSupported(integration models.Integration) int {
	marked := 0

	for _, offset := range t.order {
		resource := t.arena[offset]
		if resource.Integration != integration || resource.CleanupStatus != models.CleanupStatusPending {
			continue
		}

		now := time.Now().UTC()
		resource.CleanupStatus = models.CleanupStatusNotSupported
		resource.CleanupAttemptedAt = &now
		marked++
	}

	if marked > 0 {
		t.logger.Info("Marked integration resources as not supported for cleanup",
			"integration", integration, "count", marked)
	}

	return marked
}

// Summary reports how many resources sit in each cleanup state.
func (t *Tracker) Summary() map[models.CleanupStatus]int {
	summary := make(map[models.CleanupStatus]int)
	for _, offset := range t.order {
		summary[t.arena[offset].CleanupStatus]++
	}

	return summary
}

// Len returns the total number of tracked resources.
func (t *Tracker) Len() int {
	return len(t.order)
}
