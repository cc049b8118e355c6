package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create workflows table
			CREATE TABLE workflows (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				process_map_id VARCHAR(255) NOT NULL,
				org_id VARCHAR(255) NOT NULL,
				steps JSONB NOT NULL DEFAULT '[]',
				connections JSONB NOT NULL DEFAULT '[]',
				mock_config JSONB,
				test_config JSONB,
				metadata JSONB,
				schema_version VARCHAR(16) NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_workflows_process_map_id ON workflows(process_map_id);
			CREATE INDEX idx_workflows_org_id ON workflows(org_id);
			CREATE INDEX idx_workflows_created_at ON workflows(created_at);
			CREATE INDEX idx_workflows_deleted_at ON workflows(deleted_at);
		`,
		2: `
			-- Create run_reports table
			CREATE TABLE run_reports (
				id UUID PRIMARY KEY,
				workflow_id UUID NOT NULL,
				path_hash TEXT NOT NULL,
				step_records JSONB NOT NULL DEFAULT '[]',
				cleanup JSONB,
				success BOOLEAN NOT NULL,
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_run_reports_workflow_id ON run_reports(workflow_id);
			CREATE INDEX idx_run_reports_started_at ON run_reports(started_at);
		`,
	}
}
