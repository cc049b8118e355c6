// Package file provides file-based persistence for workflows and run reports.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/flowprobe/flowprobe/pkg/models"
	"github.com/flowprobe/flowprobe/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root         string
	workflowRepo *WorkflowRepository
	reportRepo   *ReportRepository
}

// NewPersistence creates a new instance of Persistence rooted at the given
// directory. A file:// prefix on root is stripped.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:         cleanRoot,
		workflowRepo: NewWorkflowRepository(cleanRoot),
		reportRepo:   NewReportRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	return fp.workflowRepo.GetAll(ctx)
}

func (fp *Persistence) SaveWorkflow(ctx context.Context, workflow *models.Workflow) error {
	return fp.workflowRepo.Save(ctx, workflow)
}

func (fp *Persistence) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := fp.workflowRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if workflow == nil {
		return nil, persistence.ErrWorkflowNotFound
	}

	return workflow, nil
}

func (fp *Persistence) DeleteWorkflow(ctx context.Context, id string) error {
	return fp.workflowRepo.Delete(ctx, id)
}

func (fp *Persistence) RunReports(ctx context.Context, workflowID string) ([]*models.RunReport, error) {
	return fp.reportRepo.ByWorkflow(ctx, workflowID)
}

func (fp *Persistence) SaveRunReport(ctx context.Context, report *models.RunReport) error {
	return fp.reportRepo.Save(ctx, report)
}

func (fp *Persistence) RunReportByID(ctx context.Context, id string) (*models.RunReport, error) {
	return fp.reportRepo.GetByID(ctx, id)
}
