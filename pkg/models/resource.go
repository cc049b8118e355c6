package models

import "time"

// CleanupStatus is the per-resource cleanup state machine. pending is the
// only non-terminal state; failed may be overwritten by a re-attempt.
type CleanupStatus string

const (
	CleanupStatusPending      CleanupStatus = "pending"
	CleanupStatusSuccess      CleanupStatus = "success"
	CleanupStatusFailed       CleanupStatus = "failed"
	CleanupStatusSkipped      CleanupStatus = "skipped"
	CleanupStatusNotSupported CleanupStatus = "not_supported"
)

// IsTerminal reports whether the status ends the state machine for a run.
func (s CleanupStatus) IsTerminal() bool {
	return s == CleanupStatusSuccess || s == CleanupStatusFailed || s == CleanupStatusNotSupported
}

// TrackedResource is one side-effecting artifact created during a test run.
// It is owned by the resource tracker for its whole lifetime: the record is
// never deleted, only its cleanup status advances.
type TrackedResource struct {
	ID                 string         `json:"id"`
	Integration        Integration    `json:"integration"`
	ResourceType       ResourceType   `json:"resource_type"`
	DisplayName        string         `json:"display_name"`
	ExternalID         string         `json:"external_id,omitempty"`
	ViewURL            string         `json:"view_url,omitempty"`
	CreatedByStepID    string         `json:"created_by_step_id"`
	CreatedByStepName  string         `json:"created_by_step_name"`
	CreatedAt          time.Time      `json:"created_at"`
	CleanupStatus      CleanupStatus  `json:"cleanup_status"`
	CleanupError       string         `json:"cleanup_error,omitempty"`
	CleanupAttemptedAt *time.Time     `json:"cleanup_attempted_at,omitempty"`
	RawData            map[string]any `json:"raw_data,omitempty"` // integration-shaped payload, diagnostics only
}
