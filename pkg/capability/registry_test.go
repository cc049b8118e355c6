package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowprobe/flowprobe/pkg/models"
)

func TestRegistry_Lookup(t *testing.T) {
	registry := NewRegistry()

	for _, integration := range models.AllIntegrations() {
		record, err := registry.Lookup(integration)
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, integration, record.Integration)
		assert.NotEmpty(t, record.DisplayName)
		assert.NotEmpty(t, record.ResourceTypes)
	}

	_, err := registry.Lookup(models.Integration("jira"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestRegistry_SupportsOperation(t *testing.T) {
	registry := NewRegistry()

	tests := []struct {
		name        string
		integration models.Integration
		op          models.Operation
		want        bool
	}{
		{"hubspot create", models.IntegrationHubSpot, models.OperationCreate, true},
		{"hubspot delete", models.IntegrationHubSpot, models.OperationDelete, true},
		{"resend update", models.IntegrationResend, models.OperationUpdate, false},
		{"resend delete", models.IntegrationResend, models.OperationDelete, false},
		{"fireflies create", models.IntegrationFireflies, models.OperationCreate, false},
		{"fireflies read", models.IntegrationFireflies, models.OperationRead, true},
		{"calendly update", models.IntegrationCalendly, models.OperationUpdate, false},
		{"calendly delete", models.IntegrationCalendly, models.OperationDelete, true},
		{"unknown integration", models.Integration("jira"), models.OperationRead, false},
		{"unknown verb", models.IntegrationHubSpot, models.Operation("archive"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, registry.SupportsOperation(tt.integration, tt.op))
		})
	}
}

func TestRegistry_SupportsCleanup(t *testing.T) {
	registry := NewRegistry()

	assert.True(t, registry.SupportsCleanup(models.IntegrationHubSpot))
	assert.True(t, registry.SupportsCleanup(models.IntegrationSlack))
	assert.True(t, registry.SupportsCleanup(models.IntegrationDatastore))
	assert.False(t, registry.SupportsCleanup(models.IntegrationResend))
	assert.False(t, registry.SupportsCleanup(models.IntegrationFireflies))
	assert.False(t, registry.SupportsCleanup(models.Integration("jira")))
}

func TestBuildViewURL_HubSpot(t *testing.T) {
	registry := NewRegistry()
	stepCtx := &models.StepContext{AccountIDs: map[string]string{ContextKeyPortalID: "244667"}}

	contact := registry.BuildViewURL(models.IntegrationHubSpot, models.ResourceTypeContact, "12345", stepCtx)
	assert.Equal(t, "https://app.hubspot.com/contacts/244667/record/0-1/12345", contact)

	deal := registry.BuildViewURL(models.IntegrationHubSpot, models.ResourceTypeDeal, "987", stepCtx)
	assert.Equal(t, "https://app.hubspot.com/contacts/244667/deal/987", deal)

	ticket := registry.BuildViewURL(models.IntegrationHubSpot, models.ResourceTypeTicket, "55", stepCtx)
	assert.Equal(t, "https://app.hubspot.com/contacts/244667/record/0-5/55", ticket)

	noPortal := registry.BuildViewURL(models.IntegrationHubSpot, models.ResourceTypeContact, "12345", &models.StepContext{})
	assert.Empty(t, noPortal)

	unknownKind := registry.BuildViewURL(models.IntegrationHubSpot, models.ResourceTypeEmail, "12345", stepCtx)
	assert.Empty(t, unknownKind)
}

func TestBuildViewURL_Slack(t *testing.T) {
	registry := NewRegistry()
	stepCtx := &models.StepContext{AccountIDs: map[string]string{
		ContextKeyWorkspace: "acme",
		ContextKeyChannel:   "C024BE91L",
	}}

	// Message timestamps lose their dot in archive permalinks.
	url := registry.BuildViewURL(models.IntegrationSlack, models.ResourceTypeMessage, "1700000000.000200", stepCtx)
	assert.Equal(t, "https://acme.slack.com/archives/C024BE91L/p1700000000000200", url)

	noWorkspace := registry.BuildViewURL(models.IntegrationSlack, models.ResourceTypeMessage, "1700000000.000200", &models.StepContext{
		AccountIDs: map[string]string{ContextKeyChannel: "C024BE91L"},
	})
	assert.Empty(t, noWorkspace)
}

func TestBuildViewURL_SimplePatterns(t *testing.T) {
	registry := NewRegistry()

	email := registry.BuildViewURL(models.IntegrationResend, models.ResourceTypeEmail, "em_1", nil)
	assert.Equal(t, "https://resend.com/emails/em_1", email)

	event := registry.BuildViewURL(models.IntegrationGoogleCalendar, models.ResourceTypeEvent, "evt42", nil)
	assert.Equal(t, "https://calendar.google.com/calendar/u/0/r/eventedit/evt42", event)

	// The datastore has no UI, so resources carry no deep link.
	record := registry.BuildViewURL(models.IntegrationDatastore, models.ResourceTypeRecord, "r1", nil)
	assert.Empty(t, record)

	assert.Empty(t, registry.BuildViewURL(models.IntegrationResend, models.ResourceTypeEmail, "", nil))
	assert.Empty(t, registry.BuildViewURL(models.Integration("jira"), models.ResourceTypeRecord, "r1", nil))
}
