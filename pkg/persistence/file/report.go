package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/flowprobe/flowprobe/pkg/models"
	"github.com/flowprobe/flowprobe/pkg/persistence"
)

// ReportRepository handles run report file operations.
type ReportRepository struct {
	root string
}

// NewReportRepository creates a new run report repository.
func NewReportRepository(root string) *ReportRepository {
	return &ReportRepository{root: root}
}

// ByWorkflow returns the reports for a workflow, newest first. An empty
// workflowID returns every report.
func (rr *ReportRepository) ByWorkflow(ctx context.Context, workflowID string) ([]*models.RunReport, error) {
	root := os.DirFS(path.Join(rr.root, "reports"))

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list report files: %w", err)
	}

	reports := make([]*models.RunReport, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		reportID := file[:len(file)-5]

		report, err := rr.GetByID(ctx, reportID)
		if err != nil {
			return nil, fmt.Errorf("failed to load report %s: %w", reportID, err)
		}

		if workflowID == "" || report.WorkflowID == workflowID {
			reports = append(reports, report)
		}
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].StartedAt.After(reports[j].StartedAt)
	})

	return reports, nil
}

// GetByID loads a run report by its ID.
func (rr *ReportRepository) GetByID(_ context.Context, id string) (*models.RunReport, error) {
	filePath := filepath.Clean(path.Join(rr.root, "reports", id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrRunReportNotFound
		}

		return nil, fmt.Errorf("failed to fetch report %s: %w", id, err)
	}

	var report models.RunReport

	err = json.Unmarshal(body, &report)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal report %s: %w", id, err)
	}

	return &report, nil
}

// Save writes a run report to the file system.
func (rr *ReportRepository) Save(_ context.Context, report *models.RunReport) error {
	err := os.MkdirAll(path.Join(rr.root, "reports"), 0750)
	if err != nil {
		return fmt.Errorf("failed to create reports directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report %s: %w", report.ID, err)
	}

	filePath := path.Join(rr.root, "reports", report.ID+".json")

	return os.WriteFile(filePath, data, 0600)
}
