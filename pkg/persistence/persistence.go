// Package persistence provides the storage abstraction for workflows and run
// reports.
package persistence

import (
	"context"

	"github.com/flowprobe/flowprobe/pkg/models"
)

type Persistence interface {
	Workflows(ctx context.Context) ([]*models.Workflow, error)
	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
	DeleteWorkflow(ctx context.Context, id string) error

	RunReports(ctx context.Context, workflowID string) ([]*models.RunReport, error)
	SaveRunReport(ctx context.Context, report *models.RunReport) error
	RunReportByID(ctx context.Context, id string) (*models.RunReport, error)

	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}

// ReportCache is a short-lived store for recently finished run reports, kept
// separate from the durable Persistence so the API can serve hot reports
// without a database round trip.
type ReportCache interface {
	Put(ctx context.Context, report *models.RunReport) error
	Get(ctx context.Context, id string) (*models.RunReport, error)
	Close() error
}
