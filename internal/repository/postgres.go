package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/infrax/infra-engine/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS workflows (
	workflow_id TEXT PRIMARY KEY,
	success     BOOLEAN NOT NULL,
	failed_step TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL,
	payload     JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS code_versions (
	workflow_id        TEXT NOT NULL REFERENCES workflows(workflow_id),
	version            INTEGER NOT NULL,
	code               TEXT NOT NULL,
	modified_by        TEXT NOT NULL,
	change_description TEXT NOT NULL DEFAULT '',
	created_at         TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (workflow_id, version)
);

CREATE INDEX IF NOT EXISTS idx_workflows_created_at ON workflows (created_at DESC);
`

// Postgres implements Store on a pgx connection pool. The full
// WorkflowResult is stored as one JSONB payload; frequently queried
// fields are mirrored in columns.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to the database and ensures the schema exists
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	log.Info("Connected to workflow database")
	return &Postgres{pool: pool}, nil
}

// Close releases the connection pool
func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) SaveWorkflow(ctx context.Context, result *types.WorkflowResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode workflow: %w", err)
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO workflows (workflow_id, success, failed_step, error, created_at, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (workflow_id) DO UPDATE
		SET success = EXCLUDED.success,
		    failed_step = EXCLUDED.failed_step,
		    error = EXCLUDED.error,
		    payload = EXCLUDED.payload
	`, result.WorkflowID, result.Success, result.FailedStep, result.Error, result.Timestamp, payload)
	if err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}
	return nil
}

func (p *Postgres) GetWorkflow(ctx context.Context, workflowID string) (*types.WorkflowResult, error) {
	var payload []byte
	err := p.pool.QueryRow(ctx, `
		SELECT payload FROM workflows WHERE workflow_id = $1
	`, workflowID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWorkflowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow: %w", err)
	}

	var result types.WorkflowResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("failed to decode workflow payload: %w", err)
	}
	return &result, nil
}

func (p *Postgres) ListWorkflows(ctx context.Context) ([]types.WorkflowSummary, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT payload FROM workflows ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	defer rows.Close()

	var summaries []types.WorkflowSummary
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan workflow row: %w", err)
		}
		var result types.WorkflowResult
		if err := json.Unmarshal(payload, &result); err != nil {
			return nil, fmt.Errorf("failed to decode workflow payload: %w", err)
		}
		summaries = append(summaries, result.Summary())
	}
	return summaries, rows.Err()
}

// AppendCodeVersion allocates the next version number inside the insert
// transaction so concurrent writers cannot create gaps or duplicates.
func (p *Postgres) AppendCodeVersion(ctx context.Context, workflowID, code string, modifiedBy types.ModifiedBy, changeDescription string) (*types.CodeVersion, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM workflows WHERE workflow_id = $1)
	`, workflowID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check workflow: %w", err)
	}
	if !exists {
		return nil, ErrWorkflowNotFound
	}

	version := &types.CodeVersion{
		WorkflowID:        workflowID,
		Code:              code,
		ModifiedBy:        modifiedBy,
		ChangeDescription: changeDescription,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO code_versions (workflow_id, version, code, modified_by, change_description, created_at)
		SELECT $1, COALESCE(MAX(version), 0) + 1, $2, $3, $4, NOW()
		FROM code_versions WHERE workflow_id = $1
		RETURNING version, created_at
	`, workflowID, code, string(modifiedBy), changeDescription).Scan(&version.Version, &version.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to insert code version: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit code version: %w", err)
	}
	return version, nil
}

func (p *Postgres) ListCodeVersions(ctx context.Context, workflowID string) ([]types.CodeVersion, error) {
	var exists bool
	if err := p.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM workflows WHERE workflow_id = $1)
	`, workflowID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check workflow: %w", err)
	}
	if !exists {
		return nil, ErrWorkflowNotFound
	}

	rows, err := p.pool.Query(ctx, `
		SELECT version, code, modified_by, change_description, created_at
		FROM code_versions
		WHERE workflow_id = $1
		ORDER BY version
	`, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to list code versions: %w", err)
	}
	defer rows.Close()

	var versions []types.CodeVersion
	for rows.Next() {
		v := types.CodeVersion{WorkflowID: workflowID}
		var modifiedBy string
		if err := rows.Scan(&v.Version, &v.Code, &modifiedBy, &v.ChangeDescription, &v.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan code version: %w", err)
		}
		v.ModifiedBy = types.ModifiedBy(modifiedBy)
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (p *Postgres) GetCodeVersion(ctx context.Context, workflowID string, version int) (*types.CodeVersion, error) {
	v := types.CodeVersion{WorkflowID: workflowID, Version: version}
	var modifiedBy string
	err := p.pool.QueryRow(ctx, `
		SELECT code, modified_by, change_description, created_at
		FROM code_versions
		WHERE workflow_id = $1 AND version = $2
	`, workflowID, version).Scan(&v.Code, &modifiedBy, &v.ChangeDescription, &v.Timestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrVersionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load code version: %w", err)
	}
	v.ModifiedBy = types.ModifiedBy(modifiedBy)
	return &v, nil
}

func (p *Postgres) LatestCode(ctx context.Context, workflowID string) (*types.CodeVersion, error) {
	v := types.CodeVersion{WorkflowID: workflowID}
	var modifiedBy string
	err := p.pool.QueryRow(ctx, `
		SELECT version, code, modified_by, change_description, created_at
		FROM code_versions
		WHERE workflow_id = $1
		ORDER BY version DESC
		LIMIT 1
	`, workflowID).Scan(&v.Version, &v.Code, &modifiedBy, &v.ChangeDescription, &v.Timestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrVersionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest code: %w", err)
	}
	v.ModifiedBy = types.ModifiedBy(modifiedBy)
	return &v, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}
