// Package capability holds the static knowledge of what each integration
// supports: CRUD verbs, managed resource kinds, delete endpoints and
// human-viewable URL templates.
package capability

import (
	"fmt"

	"github.com/flowprobe/flowprobe/pkg/models"
)

// Context keys handlers and the registry look up on a step context.
const (
	ContextKeyPortalID  = "portal_id" // CRM portal the run operates in
	ContextKeyWorkspace = "workspace" // chat workspace subdomain
	ContextKeyChannel   = "channel"   // chat channel id
	ContextKeyCalendar  = "calendar_id"
)

// Registry answers capability questions for the closed integration set.
// Records are static; a Registry is safe for concurrent readers.
type Registry struct {
	capabilities map[models.Integration]*models.IntegrationCapability
}

// NewRegistry builds the registry with one record per known integration.
func NewRegistry() *Registry {
	records := []*models.IntegrationCapability{
		{
			Integration:    models.IntegrationHubSpot,
			DisplayName:    "HubSpot",
			SupportsCreate: true,
			SupportsRead:   true,
			SupportsUpdate: true,
			SupportsDelete: true,
			ResourceTypes: []models.ResourceType{
				models.ResourceTypeContact,
				models.ResourceTypeCompany,
				models.ResourceTypeDeal,
				models.ResourceTypeTicket,
				models.ResourceTypeNote,
			},
			ViewURLPattern: "https://app.hubspot.com/contacts/{portal}/record/{typeCode}/{id}",
			DeleteEndpoint: "hubspot-delete-object",
		},
		{
			Integration:    models.IntegrationGoogleCalendar,
			DisplayName:    "Google Calendar",
			SupportsCreate: true,
			SupportsRead:   true,
			SupportsUpdate: true,
			SupportsDelete: true,
			ResourceTypes:  []models.ResourceType{models.ResourceTypeEvent},
			ViewURLPattern: "https://calendar.google.com/calendar/u/0/r/eventedit/{id}",
			DeleteEndpoint: "calendar-delete-event",
		},
		{
			Integration:    models.IntegrationResend,
			DisplayName:    "Resend",
			SupportsCreate: true,
			SupportsRead:   true,
			SupportsUpdate: false,
			SupportsDelete: false,
			ResourceTypes:  []models.ResourceType{models.ResourceTypeEmail},
			ViewURLPattern: "https://resend.com/emails/{id}",
			Notes:          "sent email cannot be recalled; cleanup is always manual",
		},
		{
			Integration:    models.IntegrationSlack,
			DisplayName:    "Slack",
			SupportsCreate: true,
			SupportsRead:   true,
			SupportsUpdate: true,
			SupportsDelete: true,
			ResourceTypes:  []models.ResourceType{models.ResourceTypeMessage},
			ViewURLPattern: "https://{workspace}.slack.com/archives/{channel}/p{id}",
			DeleteEndpoint: "slack-delete-message",
		},
		{
			Integration:    models.IntegrationCalendly,
			DisplayName:    "Calendly",
			SupportsCreate: true,
			SupportsRead:   true,
			SupportsUpdate: false,
			SupportsDelete: true,
			ResourceTypes: []models.ResourceType{
				models.ResourceTypeSchedulingLink,
				models.ResourceTypeBooking,
			},
			ViewURLPattern: "https://calendly.com/app/scheduled_events/{id}",
			DeleteEndpoint: "calendly-cancel",
			Notes:          "delete cancels the booking or deactivates the link",
		},
		{
			Integration:    models.IntegrationFireflies,
			DisplayName:    "Fireflies",
			SupportsCreate: false,
			SupportsRead:   true,
			SupportsUpdate: false,
			SupportsDelete: false,
			ResourceTypes: []models.ResourceType{
				models.ResourceTypeTranscript,
				models.ResourceTypeRecording,
			},
			ViewURLPattern: "https://app.fireflies.ai/view/{id}",
			Notes:          "read-only; transcripts are owned by the recording bot",
		},
		{
			Integration:    models.IntegrationDatastore,
			DisplayName:    "Internal Datastore",
			SupportsCreate: true,
			SupportsRead:   true,
			SupportsUpdate: true,
			SupportsDelete: true,
			ResourceTypes:  []models.ResourceType{models.ResourceTypeRecord},
			DeleteEndpoint: "datastore-delete-record",
		},
	}

	capabilities := make(map[models.Integration]*models.IntegrationCapability, len(records))
	for _, record := range records {
		capabilities[record.Integration] = record
	}

	return &Registry{capabilities: capabilities}
}

// Lookup returns the capability record for an integration.
func (r *Registry) Lookup(integration models.Integration) (*models.IntegrationCapability, error) {
	capability, ok := r.capabilities[integration]
	if !ok {
		return nil, fmt.Errorf("integration %q is not registered", integration)
	}

	return capability, nil
}

// SupportsOperation checks a verb against an integration before any remote
// call is attempted, so unsupported combinations fail fast and locally.
func (r *Registry) SupportsOperation(integration models.Integration, op models.Operation) bool {
	capability, ok := r.capabilities[integration]
	if !ok {
		return false
	}

	return capability.SupportsOperation(op)
}

// SupportsCleanup reports whether resources of this integration can be
// deleted automatically.
func (r *Registry) SupportsCleanup(integration models.Integration) bool {
	capability, ok := r.capabilities[integration]
	if !ok {
		return false
	}

	return capability.SupportsDelete
}
