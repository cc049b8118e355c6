package web

import "github.com/flowprobe/flowprobe/pkg/models"

// ConvertRequest is the body of POST /process-structures/convert.
type ConvertRequest struct {
	ProcessStructure    *models.ProcessStructure          `json:"process_structure"     validate:"required"`
	ProcessMapID        string                            `json:"process_map_id"        validate:"required"`
	OrgID               string                            `json:"org_id"                validate:"required"`
	TestConfigOverrides map[string]*models.StepTestConfig `json:"test_config_overrides,omitempty"`
}

// DiscoverRequest is the body of POST /process-structures/discover.
type DiscoverRequest struct {
	ProcessStructure    *models.ProcessStructure `json:"process_structure"     validate:"required"`
	MaxPaths            int                      `json:"max_paths,omitempty"`
	IncludePartialPaths bool                     `json:"include_partial_paths,omitempty"`
}
