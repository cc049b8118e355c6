package convert

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowprobe/flowprobe/pkg/models"
	"github.com/flowprobe/flowprobe/pkg/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConverter_Convert_LinearProcess(t *testing.T) {
	converter := NewConverter(testLogger())

	structure := testutil.CreateTestStructure(
		[]*models.ProcessNode{
			testutil.CreateTestNode("start", 1, testutil.WithTrigger()),
			testutil.CreateTestNode("create-contact", 2, testutil.WithIntegration("HubSpot")),
			testutil.CreateTestNode("notify", 3),
		},
		[]*models.ProcessConnection{
			testutil.Connect("start", "create-contact"),
			testutil.Connect("create-contact", "notify"),
		},
	)

	workflow, err := converter.Convert(structure, Options{ProcessMapID: "pm-1", OrgID: "org-1"})
	require.NoError(t, err)

	assert.NotEmpty(t, workflow.ID)
	assert.Equal(t, "Test Process", workflow.Name)
	assert.Equal(t, "pm-1", workflow.ProcessMapID)
	assert.Equal(t, "org-1", workflow.OrgID)
	assert.Equal(t, "1.0", workflow.SchemaVersion)

	require.Len(t, workflow.Steps, 3)
	assert.Equal(t, "start", workflow.Steps[0].ID)
	assert.Equal(t, "create-contact", workflow.Steps[1].ID)
	assert.Equal(t, "notify", workflow.Steps[2].ID)

	// Integration keys are lower-cased on the way through.
	assert.Equal(t, "hubspot", workflow.Steps[1].Integration)

	// Dependencies mirror incoming connections.
	assert.Empty(t, workflow.Steps[0].Dependencies)
	assert.Equal(t, []string{"start"}, workflow.Steps[1].Dependencies)
	assert.Equal(t, []string{"create-contact"}, workflow.Steps[2].Dependencies)

	require.NotNil(t, workflow.TestConfig)
	assert.True(t, workflow.TestConfig.ContinueCleanupOnFailure)
}

func TestConverter_Convert_StepsSortedByExecutionOrder(t *testing.T) {
	converter := NewConverter(testLogger())

	structure := testutil.CreateTestStructure(
		[]*models.ProcessNode{
			testutil.CreateTestNode("third", 3),
			testutil.CreateTestNode("first", 1, testutil.WithTrigger()),
			testutil.CreateTestNode("second", 2),
		},
		[]*models.ProcessConnection{
			testutil.Connect("first", "second"),
			testutil.Connect("second", "third"),
		},
	)

	workflow, err := converter.Convert(structure, Options{ProcessMapID: "pm-1", OrgID: "org-1"})
	require.NoError(t, err)

	ids := []string{workflow.Steps[0].ID, workflow.Steps[1].ID, workflow.Steps[2].ID}
	assert.Equal(t, []string{"first", "second", "third"}, ids)
}

func TestConverter_Convert_DefaultMockConfig(t *testing.T) {
	converter := NewConverter(testLogger())

	structure := testutil.CreateTestStructure(
		[]*models.ProcessNode{
			testutil.CreateTestNode("start", 1, testutil.WithTrigger()),
			testutil.CreateTestNode("crm", 2, testutil.WithIntegration("hubspot")),
			testutil.CreateTestNode("crm2", 3, testutil.WithIntegration("HUBSPOT")),
			testutil.CreateTestNode("chat", 4, testutil.WithIntegration("slack")),
		},
		[]*models.ProcessConnection{
			testutil.Connect("start", "crm"),
			testutil.Connect("crm", "crm2"),
			testutil.Connect("crm2", "chat"),
		},
	)

	workflow, err := converter.Convert(structure, Options{ProcessMapID: "pm-1", OrgID: "org-1"})
	require.NoError(t, err)

	// One entry per distinct integration, keyed lower-case.
	require.Len(t, workflow.MockConfig, 2)
	require.Contains(t, workflow.MockConfig, "hubspot")
	require.Contains(t, workflow.MockConfig, "slack")
	assert.True(t, workflow.MockConfig["hubspot"].Enabled)
}

func TestConverter_Convert_TestConfigMerge(t *testing.T) {
	converter := NewConverter(testLogger())

	node := testutil.CreateTestNode("call", 2, testutil.WithIntegration("resend"))
	node.TestConfig = &models.StepTestConfig{TimeoutMS: 1234}

	structure := testutil.CreateTestStructure(
		[]*models.ProcessNode{
			testutil.CreateTestNode("start", 1, testutil.WithTrigger()),
			node,
		},
		[]*models.ProcessConnection{
			testutil.Connect("start", "call"),
		},
	)

	overrides := map[string]*models.StepTestConfig{
		"call": {RetryCount: 7},
	}

	workflow, err := converter.Convert(structure, Options{
		ProcessMapID:        "pm-1",
		OrgID:               "org-1",
		TestConfigOverrides: overrides,
	})
	require.NoError(t, err)

	step := workflow.Steps[1]
	require.NotNil(t, step.TestConfig)

	// Node value beats the step-type default, override beats both; untouched
	// fields keep the external_call defaults.
	assert.Equal(t, 1234, step.TestConfig.TimeoutMS)
	assert.Equal(t, 7, step.TestConfig.RetryCount)
	assert.Equal(t, []string{"create", "read"}, step.TestConfig.Operations)
}

func TestConverter_Convert_IntegrationSchemaWins(t *testing.T) {
	converter := NewConverter(testLogger())

	structure := testutil.CreateTestStructure(
		[]*models.ProcessNode{
			testutil.CreateTestNode("start", 1, testutil.WithTrigger()),
			testutil.CreateTestNode("email", 2, testutil.WithIntegration("resend")),
			testutil.CreateTestNode("plain", 3),
		},
		[]*models.ProcessConnection{
			testutil.Connect("start", "email"),
			testutil.Connect("email", "plain"),
		},
	)

	workflow, err := converter.Convert(structure, Options{ProcessMapID: "pm-1", OrgID: "org-1"})
	require.NoError(t, err)

	emailStep := workflow.Steps[1]
	require.NotNil(t, emailStep.InputSchema)
	assert.Equal(t, "Email", emailStep.InputSchema.Title)

	plainStep := workflow.Steps[2]
	require.NotNil(t, plainStep.InputSchema)
	assert.Equal(t, "Step input", plainStep.InputSchema.Title)
}

func TestConverter_Convert_ConnectionConditions(t *testing.T) {
	converter := NewConverter(testLogger())

	structure := testutil.CreateTestStructure(
		[]*models.ProcessNode{
			testutil.CreateTestNode("a", 1, testutil.WithTrigger()),
			testutil.CreateTestNode("b", 2),
			testutil.CreateTestNode("c", 3),
			testutil.CreateTestNode("d", 4),
		},
		[]*models.ProcessConnection{
			testutil.ConnectLabeled("a", "b", "approved"),
			{From: "b", To: "c", Style: models.ConnectionStyleOptional},
			{From: "c", To: "d", Style: models.ConnectionStyleCritical},
		},
	)

	workflow, err := converter.Convert(structure, Options{ProcessMapID: "pm-1", OrgID: "org-1"})
	require.NoError(t, err)

	require.Len(t, workflow.Connections, 3)
	assert.Equal(t, "approved", workflow.Connections[0].Condition)
	assert.Equal(t, "optional", workflow.Connections[1].Condition)
	assert.Equal(t, "required", workflow.Connections[2].Condition)
}

func TestConverter_Convert_NameFallback(t *testing.T) {
	converter := NewConverter(testLogger())

	structure := testutil.CreateTestStructure(
		[]*models.ProcessNode{testutil.CreateTestNode("a", 1, testutil.WithTrigger())},
		nil,
	)
	structure.Metadata = nil

	workflow, err := converter.Convert(structure, Options{ProcessMapID: "pm-42", OrgID: "org-1"})
	require.NoError(t, err)

	assert.Equal(t, "Process pm-42", workflow.Name)
}

func TestConverter_Validate_Errors(t *testing.T) {
	converter := NewConverter(testLogger())

	tests := []struct {
		name      string
		structure *models.ProcessStructure
		wantErr   error
	}{
		{
			name:      "nil structure",
			structure: nil,
			wantErr:   ErrNoNodes,
		},
		{
			name: "unsupported schema version",
			structure: &models.ProcessStructure{
				SchemaVersion: "9.9",
				Nodes:         []*models.ProcessNode{testutil.CreateTestNode("a", 1)},
			},
			wantErr: ErrUnsupportedSchemaVersion,
		},
		{
			name:      "no nodes",
			structure: &models.ProcessStructure{SchemaVersion: "1.0"},
			wantErr:   ErrNoNodes,
		},
		{
			name: "node missing label",
			structure: &models.ProcessStructure{
				SchemaVersion: "1.0",
				Nodes: []*models.ProcessNode{
					{ID: "a", StepType: models.StepTypeAction},
				},
			},
			wantErr: ErrInvalidNode,
		},
		{
			name: "dangling connection",
			structure: &models.ProcessStructure{
				SchemaVersion: "1.0",
				Nodes:         []*models.ProcessNode{testutil.CreateTestNode("a", 1)},
				Connections: []*models.ProcessConnection{
					testutil.Connect("a", "ghost"),
				},
			},
			wantErr: ErrDanglingConnection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := converter.Validate(tt.structure)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseDocument(t *testing.T) {
	valid := []byte(`{
		"schema_version": "1.0",
		"nodes": [
			{"id": "a", "label": "Start", "step_type": "trigger", "execution_order": 1}
		],
		"connections": []
	}`)

	structure, err := ParseDocument(valid)
	require.NoError(t, err)
	assert.Equal(t, "1.0", structure.SchemaVersion)
	require.Len(t, structure.Nodes, 1)
	assert.Equal(t, models.StepTypeTrigger, structure.Nodes[0].StepType)

	_, err = ParseDocument([]byte(`{not json`))
	require.Error(t, err)

	// Structurally valid JSON that misses required document fields.
	_, err = ParseDocument([]byte(`{"nodes": [{"id": "a"}]}`))
	require.Error(t, err)
}
