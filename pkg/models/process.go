// Package models defines the core domain models for the workflow test engine.
package models

// SupportedSchemaVersions lists the process structure schema versions the
// converter understands.
var SupportedSchemaVersions = []string{"1.0", "1.1"}

// StepType classifies what a process node does when executed.
type StepType string

const (
	StepTypeTrigger      StepType = "trigger"
	StepTypeAction       StepType = "action"
	StepTypeCondition    StepType = "condition"
	StepTypeTransform    StepType = "transform"
	StepTypeExternalCall StepType = "external_call"
	StepTypeStorage      StepType = "storage"
	StepTypeNotification StepType = "notification"
)

// ConnectionStyle marks how strongly a connection binds two nodes.
type ConnectionStyle string

const (
	ConnectionStyleOptional ConnectionStyle = "optional"
	ConnectionStyleCritical ConnectionStyle = "critical"
)

// ProcessStructure is the authored description of a business process. It is
// immutable input to the converter; the engine never mutates it.
type ProcessStructure struct {
	SchemaVersion string               `json:"schema_version" validate:"required"`
	Metadata      map[string]any       `json:"metadata,omitempty"`
	Nodes         []*ProcessNode       `json:"nodes"          validate:"required,min=1,dive"`
	Connections   []*ProcessConnection `json:"connections"    validate:"dive"`
	Subgraphs     map[string][]string  `json:"subgraphs,omitempty"`
}

// ProcessNode is a single authored step.
type ProcessNode struct {
	ID             string          `json:"id"              validate:"required"`
	Label          string          `json:"label"           validate:"required"`
	StepType       StepType        `json:"step_type"       validate:"required,oneof=trigger action condition transform external_call storage notification"`
	Integration    string          `json:"integration,omitempty"`
	ExecutionOrder int             `json:"execution_order"`
	Shape          string          `json:"shape,omitempty"` // "decision" marks an authored branch node
	TestConfig     *StepTestConfig `json:"test_config,omitempty"`
}

// IsDecisionShape reports whether the author drew this node as a decision.
func (n *ProcessNode) IsDecisionShape() bool {
	return n.Shape == "decision"
}

// ProcessConnection is a labeled edge between two nodes. The label names the
// branch condition when the source node is a decision point.
type ProcessConnection struct {
	From  string          `json:"from"  validate:"required"`
	To    string          `json:"to"    validate:"required"`
	Label string          `json:"label,omitempty"`
	Style ConnectionStyle `json:"style,omitempty" validate:"omitempty,oneof=optional critical"`
}
