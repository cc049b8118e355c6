// Package convert maps an authored process structure onto the engine's
// native workflow representation: ordered steps, computed dependencies,
// per-step schemas and test-execution defaults.
package convert

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/flowprobe/flowprobe/pkg/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Options carries the caller-scoped identifiers and overrides for one
// conversion.
type Options struct {
	ProcessMapID        string
	OrgID               string
	TestConfigOverrides map[string]*models.StepTestConfig // keyed by node id
}

// Converter turns process structures into workflows. Construct one per call
// scope; it holds no shared mutable state beyond the validator.
type Converter struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewConverter creates a converter.
func NewConverter(logger *slog.Logger) *Converter {
	return &Converter{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With("module", "converter"),
	}
}

// Convert validates the structure and produces an execution-ready workflow.
// Node order follows executionOrder as a deterministic default sequence, but
// the computed dependency sets are the sole ordering truth for execution.
func (c *Converter) Convert(structure *models.ProcessStructure, opts Options) (*models.Workflow, error) {
	if err := c.Validate(structure); err != nil {
		return nil, fmt.Errorf("process structure failed validation: %w", err)
	}

	nodes := make([]*models.ProcessNode, len(structure.Nodes))
	copy(nodes, structure.Nodes)
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].ExecutionOrder < nodes[j].ExecutionOrder
	})

	incoming := incomingSources(structure.Connections)

	steps := make([]*models.WorkflowStep, 0, len(nodes))
	for _, node := range nodes {
		steps = append(steps, c.convertNode(node, incoming[node.ID], opts))
	}

	connections := make([]*models.WorkflowConnection, 0, len(structure.Connections))
	for _, connection := range structure.Connections {
		connections = append(connections, convertConnection(connection))
	}

	name, _ := structure.Metadata["name"].(string)
	if name == "" {
		name = "Process " + opts.ProcessMapID
	}

	description, _ := structure.Metadata["description"].(string)

	now := time.Now().UTC()

	workflow := &models.Workflow{
		ID:            uuid.New().String(),
		Name:          name,
		Description:   description,
		ProcessMapID:  opts.ProcessMapID,
		OrgID:         opts.OrgID,
		Steps:         steps,
		Connections:   connections,
		MockConfig:    defaultMockConfig(nodes),
		TestConfig:    &models.WorkflowTestConfig{ContinueCleanupOnFailure: true},
		Metadata:      structure.Metadata,
		SchemaVersion: structure.SchemaVersion,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	c.logger.Info("Converted process structure",
		"workflow_id", workflow.ID,
		"steps", len(steps),
		"connections", len(connections),
	)

	return workflow, nil
}

func (c *Converter) convertNode(node *models.ProcessNode, dependencies []string, opts Options) *models.WorkflowStep {
	inputSchema, outputSchema := c.selectSchemas(node)

	testConfig := testConfigDefaults(node.StepType).Merge(node.TestConfig)
	if override, ok := opts.TestConfigOverrides[node.ID]; ok {
		testConfig = testConfig.Merge(override)
	}

	if dependencies == nil {
		dependencies = []string{}
	}

	return &models.WorkflowStep{
		ID:           node.ID,
		Name:         node.Label,
		Type:         node.StepType,
		Integration:  strings.ToLower(node.Integration),
		Description:  describeNode(node),
		InputSchema:  inputSchema,
		OutputSchema: outputSchema,
		Dependencies: dependencies,
		TestConfig:   testConfig,
	}
}

// selectSchemas prefers an integration-specific schema pair over the
// step-type generic one, falling back when the integration is absent or
// unrecognized.
func (c *Converter) selectSchemas(node *models.ProcessNode) (*models.JSONSchema, *models.JSONSchema) {
	if node.Integration != "" {
		if integration, ok := models.ParseIntegration(strings.ToLower(node.Integration)); ok {
			if input, output, found := integrationSchemas(integration); found {
				return input, output
			}
		}
	}

	return genericSchemas(node.StepType)
}

// incomingSources indexes connection sources by target node: the computed
// dependency set for each step.
func incomingSources(connections []*models.ProcessConnection) map[string][]string {
	incoming := make(map[string][]string)
	for _, connection := range connections {
		incoming[connection.To] = append(incoming[connection.To], connection.From)
	}

	return incoming
}

// convertConnection carries a labeled edge over, translating style into a
// condition string when no explicit label exists.
func convertConnection(connection *models.ProcessConnection) *models.WorkflowConnection {
	condition := connection.Label
	if condition == "" {
		switch connection.Style {
		case models.ConnectionStyleOptional:
			condition = "optional"
		case models.ConnectionStyleCritical:
			condition = "required"
		}
	}

	return &models.WorkflowConnection{
		From:      connection.From,
		To:        connection.To,
		Condition: condition,
	}
}

// defaultMockConfig gives every integration referenced by the node list a
// controllable simulated-response entry.
func defaultMockConfig(nodes []*models.ProcessNode) map[string]*models.MockEntry {
	mockConfig := make(map[string]*models.MockEntry)

	for _, node := range nodes {
		if node.Integration == "" {
			continue
		}

		key := strings.ToLower(node.Integration)
		if _, seen := mockConfig[key]; seen {
			continue
		}

		mockConfig[key] = &models.MockEntry{
			Enabled:  true,
			Response: map[string]any{"ok": true},
		}
	}

	return mockConfig
}

func describeNode(node *models.ProcessNode) string {
	if node.IsDecisionShape() {
		return fmt.Sprintf("%s (decision)", node.Label)
	}

	return node.Label
}
