package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/flowprobe/flowprobe/pkg/models"
	"github.com/flowprobe/flowprobe/pkg/persistence"
	"github.com/flowprobe/flowprobe/pkg/persistence/postgresql"
	"github.com/flowprobe/flowprobe/pkg/testutil"
)

var postgresContainer *postgres.PostgresContainer

func dropDB(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	for _, table := range []string{"run_reports", "workflows", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	require.NoError(t, db.Close())
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, string) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("flowprobe_test"),
			postgres.WithUsername("flowprobe"),
			postgres.WithPassword("flowprobe"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDB(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	store, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDB(ctx, t, databaseURL)
		require.NoError(t, store.Close(ctx))
		cancel()
	})

	return store, ctx, databaseURL
}

func TestNewPersistence_Migrations(t *testing.T) {
	_, ctx, databaseURL := setupTestDB(t)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, db.Close())
	}()

	for _, table := range []string{"workflows", "run_reports", "schema_migrations"} {
		var exists bool

		err = db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = $1)`,
			table).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "%s table should exist", table)
	}
}

func TestWorkflowRoundtrip(t *testing.T) {
	store, ctx, _ := setupTestDB(t)

	workflow := testutil.CreateTestWorkflow()
	workflow.MockConfig = map[string]*models.MockEntry{
		"hubspot": {Enabled: true, Response: map[string]any{"ok": true}},
	}
	workflow.TestConfig = &models.WorkflowTestConfig{ContinueCleanupOnFailure: true}

	require.NoError(t, store.SaveWorkflow(ctx, workflow))

	loaded, err := store.WorkflowByID(ctx, workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.Name, loaded.Name)
	require.Len(t, loaded.Steps, 2)
	assert.Equal(t, "hubspot", loaded.Steps[1].Integration)
	require.NotNil(t, loaded.MockConfig["hubspot"])
	assert.True(t, loaded.MockConfig["hubspot"].Enabled)
	require.NotNil(t, loaded.TestConfig)
	assert.True(t, loaded.TestConfig.ContinueCleanupOnFailure)
}

func TestSaveWorkflow_Upsert(t *testing.T) {
	store, ctx, _ := setupTestDB(t)

	workflow := testutil.CreateTestWorkflow()
	require.NoError(t, store.SaveWorkflow(ctx, workflow))

	workflow.Name = "Renamed"
	require.NoError(t, store.SaveWorkflow(ctx, workflow))

	loaded, err := store.WorkflowByID(ctx, workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", loaded.Name)

	all, err := store.Workflows(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestWorkflowByID_NotFound(t *testing.T) {
	store, ctx, _ := setupTestDB(t)

	_, err := store.WorkflowByID(ctx, uuid.New().String())
	require.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
}

func TestDeleteWorkflow_SoftDelete(t *testing.T) {
	store, ctx, _ := setupTestDB(t)

	workflow := testutil.CreateTestWorkflow()
	require.NoError(t, store.SaveWorkflow(ctx, workflow))
	require.NoError(t, store.DeleteWorkflow(ctx, workflow.ID))

	_, err := store.WorkflowByID(ctx, workflow.ID)
	require.ErrorIs(t, err, persistence.ErrWorkflowNotFound)

	all, err := store.Workflows(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	err = store.DeleteWorkflow(ctx, workflow.ID)
	require.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
}

func TestRunReportRoundtrip(t *testing.T) {
	store, ctx, _ := setupTestDB(t)

	report := &models.RunReport{
		ID:          uuid.New().String(),
		WorkflowID:  uuid.New().String(),
		PathHash:    "a|b|c",
		Success:     true,
		StartedAt:   time.Now().UTC(),
		CompletedAt: time.Now().UTC(),
		StepRecords: []*models.StepRunRecord{
			{StepID: "a", StepName: "Start", Success: true},
			{StepID: "b", StepName: "Create contact", Integration: "hubspot", Operation: "create", Success: true},
		},
		Cleanup: &models.CleanupResult{TotalResources: 1, SuccessCount: 1, Success: true},
	}

	require.NoError(t, store.SaveRunReport(ctx, report))

	loaded, err := store.RunReportByID(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.PathHash, loaded.PathHash)
	assert.True(t, loaded.Success)
	require.Len(t, loaded.StepRecords, 2)
	assert.Equal(t, "hubspot", loaded.StepRecords[1].Integration)
	require.NotNil(t, loaded.Cleanup)
	assert.Equal(t, 1, loaded.Cleanup.SuccessCount)
}

func TestRunReports_FilterByWorkflow(t *testing.T) {
	store, ctx, _ := setupTestDB(t)

	workflowID := uuid.New().String()
	otherID := uuid.New().String()

	older := &models.RunReport{ID: uuid.New().String(), WorkflowID: workflowID, StartedAt: time.Now().UTC().Add(-time.Hour)}
	newer := &models.RunReport{ID: uuid.New().String(), WorkflowID: workflowID, StartedAt: time.Now().UTC()}
	other := &models.RunReport{ID: uuid.New().String(), WorkflowID: otherID, StartedAt: time.Now().UTC()}

	for _, report := range []*models.RunReport{older, newer, other} {
		require.NoError(t, store.SaveRunReport(ctx, report))
	}

	reports, err := store.RunReports(ctx, workflowID)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, newer.ID, reports[0].ID)

	all, err := store.RunReports(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRunReportByID_NotFound(t *testing.T) {
	store, ctx, _ := setupTestDB(t)

	_, err := store.RunReportByID(ctx, uuid.New().String())
	require.ErrorIs(t, err, persistence.ErrRunReportNotFound)
}

func TestHealthCheck(t *testing.T) {
	store, ctx, _ := setupTestDB(t)

	require.NoError(t, store.HealthCheck(ctx))
}
