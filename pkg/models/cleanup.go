package models

import "time"

// FailedResource pairs a resource with the error that left it uncleaned.
type FailedResource struct {
	Resource *TrackedResource `json:"resource"`
	Error    string           `json:"error"`
}

// CleanupResult is the final report of a cleanup sweep. Success means zero
// failed deletions; skipped and not_supported resources are expected
// outcomes and do not count against it.
type CleanupResult struct {
	Success                   bool             `json:"success"`
	TotalResources            int              `json:"total_resources"`
	SuccessCount              int              `json:"success_count"`
	FailedCount               int              `json:"failed_count"`
	SkippedCount              int              `json:"skipped_count"`
	FailedResources           []FailedResource `json:"failed_resources,omitempty"`
	ManualCleanupInstructions []string         `json:"manual_cleanup_instructions,omitempty"`
	DurationMS                int64            `json:"duration_ms"`
	StartedAt                 time.Time        `json:"started_at"`
	CompletedAt               time.Time        `json:"completed_at"`
}
