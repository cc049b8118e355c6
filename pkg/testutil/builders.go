// Package testutil provides test data builders shared across package tests.
package testutil

import (
	"github.com/google/uuid"

	"github.com/flowprobe/flowprobe/pkg/models"
)

// CreateTestNode creates a process node with default values that can be
// overridden.
func CreateTestNode(id string, order int, overrides ...func(*models.ProcessNode)) *models.ProcessNode {
	node := &models.ProcessNode{
		ID:             id,
		Label:          "Node " + id,
		StepType:       models.StepTypeAction,
		ExecutionOrder: order,
		Shape:          "rectangle",
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithTrigger marks the node as the process trigger.
func WithTrigger() func(*models.ProcessNode) {
	return func(n *models.ProcessNode) {
		n.StepType = models.StepTypeTrigger
	}
}

// WithDecision gives the node a decision shape.
func WithDecision() func(*models.ProcessNode) {
	return func(n *models.ProcessNode) {
		n.StepType = models.StepTypeCondition
		n.Shape = "decision"
	}
}

// WithIntegration binds the node to an external integration.
func WithIntegration(integration string) func(*models.ProcessNode) {
	return func(n *models.ProcessNode) {
		n.StepType = models.StepTypeExternalCall
		n.Integration = integration
	}
}

// Connect builds a plain connection between two nodes.
func Connect(from, to string) *models.ProcessConnection {
	return &models.ProcessConnection{From: from, To: to}
}

// ConnectLabeled builds a labeled connection, as drawn out of decision nodes.
func ConnectLabeled(from, to, label string) *models.ProcessConnection {
	return &models.ProcessConnection{From: from, To: to, Label: label}
}

// CreateTestStructure assembles a process structure around the given nodes
// and connections.
func CreateTestStructure(nodes []*models.ProcessNode, connections []*models.ProcessConnection) *models.ProcessStructure {
	return &models.ProcessStructure{
		SchemaVersion: "1.0",
		Metadata:      map[string]any{"name": "Test Process"},
		Nodes:         nodes,
		Connections:   connections,
	}
}

// LinearStructure builds trigger -> action -> ... -> action with n nodes.
func LinearStructure(n int) *models.ProcessStructure {
	nodes := make([]*models.ProcessNode, 0, n)
	connections := make([]*models.ProcessConnection, 0, n-1)

	for i := range n {
		id := string(rune('a' + i))

		if i == 0 {
			nodes = append(nodes, CreateTestNode(id, i+1, WithTrigger()))
		} else {
			nodes = append(nodes, CreateTestNode(id, i+1))
			connections = append(connections, Connect(string(rune('a'+i-1)), id))
		}
	}

	return CreateTestStructure(nodes, connections)
}

// CreateTestWorkflow builds a minimal valid workflow for storage tests.
func CreateTestWorkflow(overrides ...func(*models.Workflow)) *models.Workflow {
	workflow := &models.Workflow{
		ID:            uuid.New().String(),
		Name:          "Test Workflow",
		ProcessMapID:  "pm-" + uuid.New().String()[:8],
		OrgID:         "org-test",
		SchemaVersion: "1.0",
		Steps: []*models.WorkflowStep{
			{ID: "a", Name: "Start", Type: models.StepTypeTrigger},
			{ID: "b", Name: "Create contact", Type: models.StepTypeExternalCall, Integration: "hubspot"},
		},
		Connections: []*models.WorkflowConnection{
			{From: "a", To: "b"},
		},
	}

	for _, override := range overrides {
		override(workflow)
	}

	return workflow
}
