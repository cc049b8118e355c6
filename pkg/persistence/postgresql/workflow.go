package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flowprobe/flowprobe/pkg/models"
	"github.com/flowprobe/flowprobe/pkg/persistence"
)

// WorkflowRepository handles workflow-related database operations.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

const workflowColumns = `
	id
  , name
  , description
  , process_map_id
  , org_id
  , steps
  , connections
  , mock_config
  , test_config
  , metadata
  , schema_version
  , created_at
  , updated_at
`

// GetAll returns all workflows that have not been soft deleted.
func (r *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	query := `
		SELECT ` + workflowColumns + `
		FROM workflows
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer func(ctx context.Context, r *WorkflowRepository) {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}(ctx, r)

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	return workflows, nil
}

// GetByID returns a workflow by its ID.
func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := `
		SELECT ` + workflowColumns + `
		FROM workflows
		WHERE id = $1 AND deleted_at IS NULL
	`

	workflow, err := scanWorkflow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrWorkflowNotFound
		}

		return nil, fmt.Errorf("failed to fetch workflow %s: %w", id, err)
	}

	return workflow, nil
}

// Save upserts a workflow.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	steps, err := json.Marshal(workflow.Steps)
	if err != nil {
		return fmt.Errorf("failed to marshal steps: %w", err)
	}

	connections, err := json.Marshal(workflow.Connections)
	if err != nil {
		return fmt.Errorf("failed to marshal connections: %w", err)
	}

	mockConfig, err := json.Marshal(workflow.MockConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal mock config: %w", err)
	}

	testConfig, err := json.Marshal(workflow.TestConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal test config: %w", err)
	}

	metadata, err := json.Marshal(workflow.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `
		INSERT INTO workflows (
			id, name, description, process_map_id, org_id, steps, connections,
			mock_config, test_config, metadata, schema_version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			process_map_id = EXCLUDED.process_map_id,
			org_id = EXCLUDED.org_id,
			steps = EXCLUDED.steps,
			connections = EXCLUDED.connections,
			mock_config = EXCLUDED.mock_config,
			test_config = EXCLUDED.test_config,
			metadata = EXCLUDED.metadata,
			schema_version = EXCLUDED.schema_version,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		workflow.ID,
		workflow.Name,
		workflow.Description,
		workflow.ProcessMapID,
		workflow.OrgID,
		steps,
		connections,
		mockConfig,
		testConfig,
		metadata,
		workflow.SchemaVersion,
		workflow.CreatedAt,
		workflow.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", workflow.ID, err)
	}

	return nil
}

// Delete soft deletes a workflow by setting deleted_at.
func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE workflows SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL", id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result for workflow %s: %w", id, err)
	}

	if affected == 0 {
		return persistence.ErrWorkflowNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var (
		workflow    models.Workflow
		steps       []byte
		connections []byte
		mockConfig  []byte
		testConfig  []byte
		metadata    []byte
	)

	err := row.Scan(
		&workflow.ID,
		&workflow.Name,
		&workflow.Description,
		&workflow.ProcessMapID,
		&workflow.OrgID,
		&steps,
		&connections,
		&mockConfig,
		&testConfig,
		&metadata,
		&workflow.SchemaVersion,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(steps, &workflow.Steps); err != nil {
		return nil, fmt.Errorf("failed to unmarshal steps: %w", err)
	}

	if err := json.Unmarshal(connections, &workflow.Connections); err != nil {
		return nil, fmt.Errorf("failed to unmarshal connections: %w", err)
	}

	if len(mockConfig) > 0 {
		if err := json.Unmarshal(mockConfig, &workflow.MockConfig); err != nil {
			return nil, fmt.Errorf("failed to unmarshal mock config: %w", err)
		}
	}

	if len(testConfig) > 0 {
		if err := json.Unmarshal(testConfig, &workflow.TestConfig); err != nil {
			return nil, fmt.Errorf("failed to unmarshal test config: %w", err)
		}
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &workflow.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return &workflow, nil
}
