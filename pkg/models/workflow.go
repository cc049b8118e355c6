package models

import "time"

// Workflow is the engine-native, execution-ready rendering of a process
// structure: ordered steps with computed dependencies, schemas, test
// configuration and a default mock configuration per integration.
type Workflow struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"           validate:"required"`
	Description   string                `json:"description"`
	ProcessMapID  string                `json:"process_map_id"`
	OrgID         string                `json:"org_id"`
	Steps         []*WorkflowStep       `json:"steps"          validate:"required,min=1,dive"`
	Connections   []*WorkflowConnection `json:"connections"`
	MockConfig    map[string]*MockEntry `json:"mock_config,omitempty"` // keyed by integration
	TestConfig    *WorkflowTestConfig   `json:"test_config,omitempty"`
	Metadata      map[string]any        `json:"metadata,omitempty"`
	SchemaVersion string                `json:"schema_version"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// WorkflowStep is one executable step. Dependencies are computed from the
// process structure's incoming connections, never authored directly.
type WorkflowStep struct {
	ID           string          `json:"id"           validate:"required"`
	Name         string          `json:"name"         validate:"required"`
	Type         StepType        `json:"type"         validate:"required"`
	Integration  string          `json:"integration,omitempty"`
	Description  string          `json:"description,omitempty"`
	InputSchema  *JSONSchema     `json:"input_schema,omitempty"`
	OutputSchema *JSONSchema     `json:"output_schema,omitempty"`
	Dependencies []string        `json:"dependencies"`
	TestConfig   *StepTestConfig `json:"test_config,omitempty"`
}

// WorkflowConnection carries one process connection into the workflow,
// with the branch condition resolved from the label or the style.
type WorkflowConnection struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Condition string `json:"condition,omitempty"`
}

// StepTestConfig controls how a step behaves under test execution.
type StepTestConfig struct {
	Mockable        *bool    `json:"mockable,omitempty"`
	RequiresRealAPI *bool    `json:"requires_real_api,omitempty"`
	Operations      []string `json:"operations,omitempty"`
	TimeoutMS       int      `json:"timeout_ms,omitempty"`
	RetryCount      int      `json:"retry_count,omitempty"`
}

// Merge overlays node-level overrides on top of a step-type default. The
// receiver is the default; any field set on the override wins.
func (c *StepTestConfig) Merge(override *StepTestConfig) *StepTestConfig {
	merged := *c
	if override == nil {
		return &merged
	}

	if override.Mockable != nil {
		merged.Mockable = override.Mockable
	}

	if override.RequiresRealAPI != nil {
		merged.RequiresRealAPI = override.RequiresRealAPI
	}

	if len(override.Operations) > 0 {
		merged.Operations = override.Operations
	}

	if override.TimeoutMS > 0 {
		merged.TimeoutMS = override.TimeoutMS
	}

	if override.RetryCount > 0 {
		merged.RetryCount = override.RetryCount
	}

	return &merged
}

// WorkflowTestConfig holds run-wide test settings.
type WorkflowTestConfig struct {
	ContinueCleanupOnFailure bool `json:"continue_cleanup_on_failure"`
	CleanupDelayMS           int  `json:"cleanup_delay_ms,omitempty"`
}

// MockEntry configures the simulated response for one integration.
type MockEntry struct {
	Enabled  bool           `json:"enabled"`
	Response map[string]any `json:"response,omitempty"`
	DelayMS  int            `json:"delay_ms,omitempty"`
}
