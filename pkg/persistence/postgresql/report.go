package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flowprobe/flowprobe/pkg/models"
	"github.com/flowprobe/flowprobe/pkg/persistence"
)

// ReportRepository handles run report database operations.
type ReportRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewReportRepository creates a new run report repository.
func NewReportRepository(db *sql.DB, logger *slog.Logger) *ReportRepository {
	return &ReportRepository{db: db, logger: logger}
}

const reportColumns = `
	id
  , workflow_id
  , path_hash
  , step_records
  , cleanup
  , success
  , started_at
  , completed_at
`

// ByWorkflow returns the reports for a workflow, newest first. An empty
// workflowID returns every report.
func (r *ReportRepository) ByWorkflow(ctx context.Context, workflowID string) ([]*models.RunReport, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM run_reports
		WHERE ($1 = '' OR workflow_id::text = $1)
		ORDER BY started_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run reports: %w", err)
	}

	defer func(ctx context.Context, r *ReportRepository) {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}(ctx, r)

	reports := make([]*models.RunReport, 0)

	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run report: %w", err)
		}

		reports = append(reports, report)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating run reports: %w", err)
	}

	return reports, nil
}

// GetByID returns a run report by its ID.
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*models.RunReport, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM run_reports
		WHERE id = $1
	`

	report, err := scanReport(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrRunReportNotFound
		}

		return nil, fmt.Errorf("failed to fetch run report %s: %w", id, err)
	}

	return report, nil
}

// Save inserts a run report. Reports are immutable once written.
func (r *ReportRepository) Save(ctx context.Context, report *models.RunReport) error {
	stepRecords, err := json.Marshal(report.StepRecords)
	if err != nil {
		return fmt.Errorf("failed to marshal step records: %w", err)
	}

	cleanup, err := json.Marshal(report.Cleanup)
	if err != nil {
		return fmt.Errorf("failed to marshal cleanup result: %w", err)
	}

	query := `
		INSERT INTO run_reports (
			id, workflow_id, path_hash, step_records, cleanup, success, started_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.ExecContext(ctx, query,
		report.ID,
		report.WorkflowID,
		report.PathHash,
		stepRecords,
		cleanup,
		report.Success,
		report.StartedAt,
		report.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run report %s: %w", report.ID, err)
	}

	return nil
}

func scanReport(row rowScanner) (*models.RunReport, error) {
	var (
		report      models.RunReport
		stepRecords []byte
		cleanup     []byte
	)

	err := row.Scan(
		&report.ID,
		&report.WorkflowID,
		&report.PathHash,
		&stepRecords,
		&cleanup,
		&report.Success,
		&report.StartedAt,
		&report.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(stepRecords, &report.StepRecords); err != nil {
		return nil, fmt.Errorf("failed to unmarshal step records: %w", err)
	}

	if len(cleanup) > 0 {
		if err := json.Unmarshal(cleanup, &report.Cleanup); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cleanup result: %w", err)
		}
	}

	return &report, nil
}
