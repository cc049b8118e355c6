package convert

import "github.com/flowprobe/flowprobe/pkg/models"

func boolPtr(v bool) *bool { return &v }

// testConfigDefaults returns the per-step-type defaults merged under any
// authored override. External calls get the longest timeout and retries;
// notifications are fire-and-forget with a short timeout.
func testConfigDefaults(stepType models.StepType) *models.StepTestConfig {
	switch stepType {
	case models.StepTypeExternalCall:
		return &models.StepTestConfig{
			Mockable:   boolPtr(true),
			Operations: []string{"create", "read"},
			TimeoutMS:  30000,
			RetryCount: 2,
		}
	case models.StepTypeStorage:
		return &models.StepTestConfig{
			Mockable:   boolPtr(true),
			Operations: []string{"read", "write"},
			TimeoutMS:  10000,
			RetryCount: 1,
		}
	case models.StepTypeNotification:
		return &models.StepTestConfig{
			Mockable:   boolPtr(true),
			Operations: []string{"write"},
			TimeoutMS:  5000,
		}
	case models.StepTypeTrigger:
		return &models.StepTestConfig{
			Mockable:  boolPtr(true),
			TimeoutMS: 5000,
		}
	default:
		return &models.StepTestConfig{
			Mockable:   boolPtr(true),
			Operations: []string{"read"},
			TimeoutMS:  10000,
			RetryCount: 1,
		}
	}
}

// genericSchemas maps a step type to its default input/output schema pair.
func genericSchemas(stepType models.StepType) (*models.JSONSchema, *models.JSONSchema) {
	switch stepType {
	case models.StepTypeTrigger:
		return objectSchema("Trigger payload", map[string]*models.Property{
				"event": {Type: "string", Description: "Event name that fired the process"},
				"data":  {Type: "object"},
			}),
			objectSchema("Trigger output", map[string]*models.Property{
				"triggered_at": {Type: "string", Format: "date-time"},
			})
	case models.StepTypeCondition:
		return objectSchema("Condition input", map[string]*models.Property{
				"value": {Type: "string"},
			}),
			objectSchema("Condition result", map[string]*models.Property{
				"branch": {Type: "string", Description: "Label of the branch taken"},
			})
	case models.StepTypeTransform:
		return objectSchema("Transform input", map[string]*models.Property{
				"source": {Type: "object"},
			}),
			objectSchema("Transform output", map[string]*models.Property{
				"result": {Type: "object"},
			})
	case models.StepTypeStorage:
		return objectSchema("Record payload", map[string]*models.Property{
				"record": {Type: "object"},
			}),
			objectSchema("Stored record", map[string]*models.Property{
				"record_id": {Type: "string"},
			})
	case models.StepTypeNotification:
		return objectSchema("Notification payload", map[string]*models.Property{
				"recipient": {Type: "string"},
				"message":   {Type: "string"},
			}),
			objectSchema("Notification result", map[string]*models.Property{
				"delivered": {Type: "boolean"},
			})
	default:
		return objectSchema("Step input", map[string]*models.Property{
				"data": {Type: "object"},
			}),
			objectSchema("Step output", map[string]*models.Property{
				"result": {Type: "object"},
			})
	}
}

// integrationSchemas maps a lower-cased integration key to schemas specific
// to that system's payloads. These win over the step-type generics.
func integrationSchemas(integration models.Integration) (*models.JSONSchema, *models.JSONSchema, bool) {
	switch integration {
	case models.IntegrationHubSpot:
		return objectSchema("CRM object properties", map[string]*models.Property{
				"object_type": {Type: "string", Enum: []any{"contact", "company", "deal", "ticket", "note"}},
				"properties":  {Type: "object"},
			}),
			objectSchema("CRM object", map[string]*models.Property{
				"id":         {Type: "string"},
				"properties": {Type: "object"},
			}), true
	case models.IntegrationGoogleCalendar:
		return objectSchema("Calendar event", map[string]*models.Property{
				"summary":   {Type: "string"},
				"start":     {Type: "string", Format: "date-time"},
				"end":       {Type: "string", Format: "date-time"},
				"attendees": {Type: "array", Items: &models.Property{Type: "string", Format: "email"}},
			}),
			objectSchema("Created event", map[string]*models.Property{
				"event_id":  {Type: "string"},
				"html_link": {Type: "string", Format: "uri"},
			}), true
	case models.IntegrationResend:
		return objectSchema("Email", map[string]*models.Property{
				"to":      {Type: "string", Format: "email"},
				"subject": {Type: "string"},
				"html":    {Type: "string"},
			}),
			objectSchema("Sent email", map[string]*models.Property{
				"email_id": {Type: "string"},
			}), true
	case models.IntegrationSlack:
		return objectSchema("Chat message", map[string]*models.Property{
				"channel": {Type: "string"},
				"text":    {Type: "string"},
			}),
			objectSchema("Posted message", map[string]*models.Property{
				"ts":      {Type: "string"},
				"channel": {Type: "string"},
			}), true
	case models.IntegrationCalendly:
		return objectSchema("Scheduling request", map[string]*models.Property{
				"event_type": {Type: "string"},
				"invitee":    {Type: "string", Format: "email"},
			}),
			objectSchema("Booking", map[string]*models.Property{
				"booking_id": {Type: "string"},
				"link":       {Type: "string", Format: "uri"},
			}), true
	case models.IntegrationFireflies:
		return objectSchema("Transcript query", map[string]*models.Property{
				"meeting_id": {Type: "string"},
			}),
			objectSchema("Transcript", map[string]*models.Property{
				"transcript_id": {Type: "string"},
				"sentences":     {Type: "array", Items: &models.Property{Type: "object"}},
			}), true
	case models.IntegrationDatastore:
		return objectSchema("Record payload", map[string]*models.Property{
				"collection": {Type: "string"},
				"record":     {Type: "object"},
			}),
			objectSchema("Stored record", map[string]*models.Property{
				"record_id": {Type: "string"},
			}), true
	default:
		return nil, nil, false
	}
}

func objectSchema(title string, properties map[string]*models.Property) *models.JSONSchema {
	return &models.JSONSchema{
		Type:       "object",
		Title:      title,
		Properties: properties,
	}
}
