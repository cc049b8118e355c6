package convert

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/flowprobe/flowprobe/pkg/models"
	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

var (
	// ErrUnsupportedSchemaVersion is returned for unknown schema versions.
	ErrUnsupportedSchemaVersion = errors.New("unsupported process structure schema version")

	// ErrNoNodes is returned when a structure declares no nodes at all.
	ErrNoNodes = errors.New("process structure has no nodes")

	// ErrInvalidNode is returned when a node is missing id, label or step type.
	ErrInvalidNode = errors.New("invalid process node")

	// ErrDanglingConnection is returned when a connection references an
	// unknown node id.
	ErrDanglingConnection = errors.New("connection references unknown node")
)

// documentSchema is the wire-level contract a raw process structure document
// must satisfy before decoding is even attempted.
var documentSchema = map[string]any{
	"type":     "object",
	"required": []string{"schema_version", "nodes"},
	"properties": map[string]any{
		"schema_version": map[string]any{"type": "string"},
		"nodes": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"id", "label", "step_type"},
			},
		},
		"connections": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"from", "to"},
			},
		},
	},
}

// ParseDocument validates a raw JSON document against the wire schema and
// decodes it. Malformed documents fail here rather than partially converting.
func ParseDocument(raw []byte) (*models.ProcessStructure, error) {
	var document any
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, fmt.Errorf("process structure is not valid JSON: %w", err)
	}

	schemaLoader := gojsonschema.NewGoLoader(documentSchema)
	documentLoader := gojsonschema.NewGoLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("failed to validate process structure document: %w", err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, resultErr := range result.Errors() {
			details = append(details, resultErr.String())
		}

		return nil, fmt.Errorf("process structure document is invalid: %s", strings.Join(details, "; "))
	}

	var structure models.ProcessStructure
	if err := json.Unmarshal(raw, &structure); err != nil {
		return nil, fmt.Errorf("failed to decode process structure: %w", err)
	}

	return &structure, nil
}

// Validate checks a decoded process structure is well-formed: a known schema
// version, at least one node, non-empty node identity fields, and no
// connection pointing at a node that does not exist.
func (c *Converter) Validate(structure *models.ProcessStructure) error {
	if structure == nil {
		return ErrNoNodes
	}

	if !slices.Contains(models.SupportedSchemaVersions, structure.SchemaVersion) {
		return fmt.Errorf("%w: %q", ErrUnsupportedSchemaVersion, structure.SchemaVersion)
	}

	if len(structure.Nodes) == 0 {
		return ErrNoNodes
	}

	if err := c.validate.Struct(structure); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return fmt.Errorf("%w: %s", ErrInvalidNode, validationErrs.Error())
		}

		return fmt.Errorf("%w: %s", ErrInvalidNode, err.Error())
	}

	nodeIDs := make(map[string]struct{}, len(structure.Nodes))
	for _, node := range structure.Nodes {
		nodeIDs[node.ID] = struct{}{}
	}

	for _, connection := range structure.Connections {
		if _, ok := nodeIDs[connection.From]; !ok {
			return fmt.Errorf("%w: from %q", ErrDanglingConnection, connection.From)
		}

		if _, ok := nodeIDs[connection.To]; !ok {
			return fmt.Errorf("%w: to %q", ErrDanglingConnection, connection.To)
		}
	}

	return nil
}
