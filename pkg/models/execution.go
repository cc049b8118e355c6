package models

import "time"

// StepContext carries the run- and step-scoped identifiers handlers need to
// shape requests, build view URLs and attribute tracked resources.
type StepContext struct {
	RunID      string            `json:"run_id"`
	StepID     string            `json:"step_id"`
	StepName   string            `json:"step_name"`
	OrgID      string            `json:"org_id,omitempty"`
	AccountIDs map[string]string `json:"account_ids,omitempty"` // integration-specific context: portal id, workspace, calendar id
	Variables  map[string]any    `json:"variables,omitempty"`
}

// AccountID returns the integration-specific identifier for a key, empty
// when the caller supplied none.
func (c *StepContext) AccountID(key string) string {
	if c == nil || c.AccountIDs == nil {
		return ""
	}

	return c.AccountIDs[key]
}

// ExecutionResult is the structured outcome of one integration operation.
// Remote failures land here as Success=false, never as a panic or a lost
// error: callers branch on Success.
type ExecutionResult struct {
	Success  bool             `json:"success"`
	Data     map[string]any   `json:"data,omitempty"`
	Resource *TrackedResource `json:"resource,omitempty"` // set when a create registered a resource
	Error    string           `json:"error,omitempty"`
}

// StepRunRecord is one step's outcome inside a run report.
type StepRunRecord struct {
	StepID      string    `json:"step_id"`
	StepName    string    `json:"step_name"`
	Integration string    `json:"integration,omitempty"`
	Operation   string    `json:"operation,omitempty"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// RunReport is the persisted record of one scenario-path run, including the
// cleanup sweep that closed it.
type RunReport struct {
	ID          string           `json:"id"`
	WorkflowID  string           `json:"workflow_id"`
	PathHash    string           `json:"path_hash"`
	StepRecords []*StepRunRecord `json:"step_records"`
	Cleanup     *CleanupResult   `json:"cleanup,omitempty"`
	Success     bool             `json:"success"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt time.Time        `json:"completed_at"`
}
