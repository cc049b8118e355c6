package capability

import (
	"strings"

	"github.com/flowprobe/flowprobe/pkg/models"
)

// hubspotTypeCodes maps CRM resource kinds to the object type codes used in
// record URLs.
var hubspotTypeCodes = map[models.ResourceType]string{
	models.ResourceTypeContact: "0-1",
	models.ResourceTypeCompany: "0-2",
	models.ResourceTypeDeal:    "0-3",
	models.ResourceTypeTicket:  "0-5",
	models.ResourceTypeNote:    "0-46",
}

// BuildViewURL renders a human-viewable deep link for a resource, or an
// empty string when the integration has no URL template or the step context
// is missing a required identifier. An empty result means "no UI deep link
// available"; it is never an error.
func (r *Registry) BuildViewURL(integration models.Integration, resourceType models.ResourceType, externalID string, stepCtx *models.StepContext) string {
	capability, ok := r.capabilities[integration]
	if !ok || capability.ViewURLPattern == "" || externalID == "" {
		return ""
	}

	switch integration {
	case models.IntegrationHubSpot:
		portal := stepCtx.AccountID(ContextKeyPortalID)
		if portal == "" {
			return ""
		}

		// Deals keep the classic pipeline URL; every other kind uses the
		// record shape with its object type code.
		if resourceType == models.ResourceTypeDeal {
			return "https://app.hubspot.com/contacts/" + portal + "/deal/" + externalID
		}

		typeCode, ok := hubspotTypeCodes[resourceType]
		if !ok {
			return ""
		}

		url := strings.ReplaceAll(capability.ViewURLPattern, "{portal}", portal)
		url = strings.ReplaceAll(url, "{typeCode}", typeCode)

		return strings.ReplaceAll(url, "{id}", externalID)

	case models.IntegrationSlack:
		// The archive link needs the workspace subdomain and channel from
		// the run context; the message timestamp is the external id.
		workspace := stepCtx.AccountID(ContextKeyWorkspace)
		channel := stepCtx.AccountID(ContextKeyChannel)

		if workspace == "" || channel == "" {
			return ""
		}

		url := strings.ReplaceAll(capability.ViewURLPattern, "{workspace}", workspace)
		url = strings.ReplaceAll(url, "{channel}", channel)

		return strings.ReplaceAll(url, "{id}", strings.ReplaceAll(externalID, ".", ""))

	default:
		return strings.ReplaceAll(capability.ViewURLPattern, "{id}", externalID)
	}
}
