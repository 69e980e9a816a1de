// Package repository persists workflow results and their code version
// history. A Postgres implementation backs the server; an in-memory
// implementation backs tests and the CLI runner.
package repository

import (
	"context"
	"errors"

	"github.com/infrax/infra-engine/internal/types"
)

// ErrWorkflowNotFound is returned when no workflow row matches the id
var ErrWorkflowNotFound = errors.New("workflow not found")

// ErrVersionNotFound is returned when a workflow has no such code version
var ErrVersionNotFound = errors.New("code version not found")

// Store is the persistence boundary for workflow results and code
// versions. Results are written once; only the version history grows.
type Store interface {
	// SaveWorkflow stores one result, successful or failed
	SaveWorkflow(ctx context.Context, result *types.WorkflowResult) error

	// GetWorkflow returns the full stored result
	GetWorkflow(ctx context.Context, workflowID string) (*types.WorkflowResult, error)

	// ListWorkflows returns summaries, newest first
	ListWorkflows(ctx context.Context) ([]types.WorkflowSummary, error)

	// AppendCodeVersion adds an immutable entry to the workflow's code
	// history. Version numbers start at 1 and are allocated gaplessly.
	AppendCodeVersion(ctx context.Context, workflowID, code string, modifiedBy types.ModifiedBy, changeDescription string) (*types.CodeVersion, error)

	// ListCodeVersions returns the full history in version order
	ListCodeVersions(ctx context.Context, workflowID string) ([]types.CodeVersion, error)

	// GetCodeVersion returns one numbered entry
	GetCodeVersion(ctx context.Context, workflowID string, version int) (*types.CodeVersion, error)

	// LatestCode returns the highest-numbered entry
	LatestCode(ctx context.Context, workflowID string) (*types.CodeVersion, error)

	// Ping verifies the store is reachable
	Ping(ctx context.Context) error
}
