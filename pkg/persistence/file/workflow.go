package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/flowprobe/flowprobe/pkg/models"
)

// WorkflowRepository handles workflow-related file operations.
type WorkflowRepository struct {
	root string // File system root for storing workflows
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(root string) *WorkflowRepository {
	return &WorkflowRepository{root: root}
}

// GetAll returns every workflow stored under the root.
func (wr *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	root := os.DirFS(path.Join(wr.root, "workflows"))

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow files: %w", err)
	}

	workflows := make([]*models.Workflow, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		workflowID := file[:len(file)-5] // Remove .json extension

		workflow, err := wr.GetByID(ctx, workflowID)
		if err != nil {
			return nil, fmt.Errorf("failed to load workflow %s: %w", workflowID, err)
		}

		if workflow != nil {
			workflows = append(workflows, workflow)
		}
	}

	return workflows, nil
}

// GetByID loads a workflow by its ID, returning nil when it does not exist.
func (wr *WorkflowRepository) GetByID(_ context.Context, workflowID string) (*models.Workflow, error) {
	filePath := filepath.Clean(path.Join(wr.root, "workflows", workflowID+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch workflow %s: %w", workflowID, err)
	}

	var workflow models.Workflow

	err = json.Unmarshal(body, &workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow %s: %w", workflowID, err)
	}

	return &workflow, nil
}

// Save writes a workflow to the file system.
func (wr *WorkflowRepository) Save(_ context.Context, workflow *models.Workflow) error {
	err := os.MkdirAll(path.Join(wr.root, "workflows"), 0750)
	if err != nil {
		return fmt.Errorf("failed to create workflows directory: %w", err)
	}

	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal workflow %s: %w", workflow.ID, err)
	}

	filePath := path.Join(wr.root, "workflows", workflow.ID+".json")

	return os.WriteFile(filePath, data, 0600)
}

// Delete removes a workflow by its ID. Deleting a missing workflow is a no-op.
func (wr *WorkflowRepository) Delete(_ context.Context, id string) error {
	filePath := path.Join(wr.root, "workflows", id+".json")

	err := os.Remove(filePath)

	if err != nil && os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	return nil
}
