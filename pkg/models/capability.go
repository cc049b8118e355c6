package models

// Integration identifies one external system in the closed set the engine
// knows how to drive. The set is fixed at compile time; there is no runtime
// "unknown integration" fallback on the happy path.
type Integration string

const (
	IntegrationHubSpot        Integration = "hubspot"
	IntegrationGoogleCalendar Integration = "googlecalendar"
	IntegrationResend         Integration = "resend"
	IntegrationSlack          Integration = "slack"
	IntegrationCalendly       Integration = "calendly"
	IntegrationFireflies      Integration = "fireflies"
	IntegrationDatastore      Integration = "datastore"
)

// AllIntegrations enumerates the closed set in a stable order.
func AllIntegrations() []Integration {
	return []Integration{
		IntegrationHubSpot,
		IntegrationGoogleCalendar,
		IntegrationResend,
		IntegrationSlack,
		IntegrationCalendly,
		IntegrationFireflies,
		IntegrationDatastore,
	}
}

// ParseIntegration maps a free-form integration key (as authored in a process
// structure) onto the closed set.
func ParseIntegration(name string) (Integration, bool) {
	switch Integration(name) {
	case IntegrationHubSpot, IntegrationGoogleCalendar, IntegrationResend,
		IntegrationSlack, IntegrationCalendly, IntegrationFireflies,
		IntegrationDatastore:
		return Integration(name), true
	default:
		return "", false
	}
}

// Operation is a logical CRUD verb against an integration resource.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationRead   Operation = "read"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// ResourceType names a kind of resource an integration manages.
type ResourceType string

const (
	ResourceTypeContact        ResourceType = "contact"
	ResourceTypeCompany        ResourceType = "company"
	ResourceTypeDeal           ResourceType = "deal"
	ResourceTypeTicket         ResourceType = "ticket"
	ResourceTypeNote           ResourceType = "note"
	ResourceTypeEvent          ResourceType = "event"
	ResourceTypeEmail          ResourceType = "email"
	ResourceTypeMessage        ResourceType = "message"
	ResourceTypeSchedulingLink ResourceType = "scheduling_link"
	ResourceTypeBooking        ResourceType = "booking"
	ResourceTypeTranscript     ResourceType = "transcript"
	ResourceTypeRecording      ResourceType = "meeting_recording"
	ResourceTypeRecord         ResourceType = "record"
)

// IntegrationCapability is static, read-only configuration describing what
// one integration supports. One record per integration.
type IntegrationCapability struct {
	Integration    Integration    `json:"integration"`
	DisplayName    string         `json:"display_name"`
	SupportsCreate bool           `json:"supports_create"`
	SupportsRead   bool           `json:"supports_read"`
	SupportsUpdate bool           `json:"supports_update"`
	SupportsDelete bool           `json:"supports_delete"`
	ResourceTypes  []ResourceType `json:"resource_types"`
	ViewURLPattern string         `json:"view_url_pattern,omitempty"`
	DeleteEndpoint string         `json:"delete_endpoint,omitempty"`
	Notes          string         `json:"notes,omitempty"`
}

// SupportsOperation reports whether the capability record allows the verb.
func (c *IntegrationCapability) SupportsOperation(op Operation) bool {
	switch op {
	case OperationCreate:
		return c.SupportsCreate
	case OperationRead:
		return c.SupportsRead
	case OperationUpdate:
		return c.SupportsUpdate
	case OperationDelete:
		return c.SupportsDelete
	default:
		return false
	}
}

// ManagesResourceType reports whether the integration manages the given kind.
func (c *IntegrationCapability) ManagesResourceType(rt ResourceType) bool {
	for _, t := range c.ResourceTypes {
		if t == rt {
			return true
		}
	}

	return false
}
