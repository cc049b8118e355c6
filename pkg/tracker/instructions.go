package tracker

import (
	"fmt"

	"github.com/flowprobe/flowprobe/pkg/models"
)

// ManualCleanupInstructions renders one actionable line per resource left in
// failed, skipped or not_supported state, grouped by integration. Each line
// prefers a view URL, falls back to the external id, and finally to the
// creating step, so an operator always has something to act on.
func (t *Tracker) ManualCleanupInstructions() []string {
	grouped := make(map[models.Integration][]*models.TrackedResource)

	var groupOrder []models.Integration

	for _, offset := range t.order {
		resource := t.arena[offset]
		if resource.CleanupStatus != models.CleanupStatusFailed &&
			resource.CleanupStatus != models.CleanupStatusSkipped &&
			resource.CleanupStatus != models.CleanupStatusNotSupported {
			continue
		}

		if _, seen := grouped[resource.Integration]; !seen {
			groupOrder = append(groupOrder, resource.Integration)
		}

		grouped[resource.Integration] = append(grouped[resource.Integration], resource)
	}

	instructions := make([]string, 0, len(grouped))

	for _, integration := range groupOrder {
		for _, resource := range grouped[integration] {
			instructions = append(instructions, manualInstruction(resource))
		}
	}

	return instructions
}

func manualInstruction(resource *models.TrackedResource) string {
	name := resource.DisplayName
	if name == "" {
		name = string(resource.ResourceType)
	}

	switch {
	case resource.ViewURL != "":
		return fmt.Sprintf("[%s] delete %s %q: %s",
			resource.Integration, resource.ResourceType, name, resource.ViewURL)
	case resource.ExternalID != "":
		return fmt.Sprintf("[%s] delete %s %q (external id %s)",
			resource.Integration, resource.ResourceType, name, resource.ExternalID)
	default:
		return fmt.Sprintf("[%s] delete %s %q created by step %q",
			resource.Integration, resource.ResourceType, name, resource.CreatedByStepName)
	}
}
