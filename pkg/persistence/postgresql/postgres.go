// Package postgresql provides PostgreSQL persistence for workflows and run reports.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	// Registers the "postgres" database/sql driver.
	_ "github.com/lib/pq"

	"github.com/flowprobe/flowprobe/pkg/models"
	"github.com/flowprobe/flowprobe/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db           *sql.DB
	logger       *slog.Logger
	workflowRepo *WorkflowRepository
	reportRepo   *ReportRepository
}

// NewPersistence connects to PostgreSQL and runs pending migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	postgres := &Persistence{
		db:           database,
		logger:       logger,
		workflowRepo: NewWorkflowRepository(database, logger),
		reportRepo:   NewReportRepository(database, logger),
	}

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return postgres, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	return p.workflowRepo.GetAll(ctx)
}

func (p *Persistence) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	return p.workflowRepo.GetByID(ctx, id)
}

func (p *Persistence) SaveWorkflow(ctx context.Context, workflow *models.Workflow) error {
	return p.workflowRepo.Save(ctx, workflow)
}

// DeleteWorkflow soft deletes a workflow by setting deleted_at.
func (p *Persistence) DeleteWorkflow(ctx context.Context, id string) error {
	return p.workflowRepo.Delete(ctx, id)
}

func (p *Persistence) RunReports(ctx context.Context, workflowID string) ([]*models.RunReport, error) {
	return p.reportRepo.ByWorkflow(ctx, workflowID)
}

func (p *Persistence) SaveRunReport(ctx context.Context, report *models.RunReport) error {
	return p.reportRepo.Save(ctx, report)
}

func (p *Persistence) RunReportByID(ctx context.Context, id string) (*models.RunReport, error) {
	return p.reportRepo.GetByID(ctx, id)
}
