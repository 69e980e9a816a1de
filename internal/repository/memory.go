package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/infrax/infra-engine/internal/types"
)

// Memory is an in-process Store used by tests and the CLI runner. It
// applies the same version-allocation rules as the Postgres store.
type Memory struct {
	mu        sync.Mutex
	workflows map[string]*types.WorkflowResult
	versions  map[string][]types.CodeVersion
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		workflows: make(map[string]*types.WorkflowResult),
		versions:  make(map[string][]types.CodeVersion),
	}
}

func (m *Memory) SaveWorkflow(_ context.Context, result *types.WorkflowResult) error {
	copied, err := cloneResult(result)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workflows[result.WorkflowID] = copied
	return nil
}

func (m *Memory) GetWorkflow(_ context.Context, workflowID string) (*types.WorkflowResult, error) {
	m.mu.Lock()
	result, ok := m.workflows[workflowID]
	m.mu.Unlock()
	if !ok {
		return nil, ErrWorkflowNotFound
	}
	return cloneResult(result)
}

// cloneResult deep-copies through the same JSON encoding the Postgres
// store persists, so stored rows never share state with callers
func cloneResult(result *types.WorkflowResult) (*types.WorkflowResult, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode workflow: %w", err)
	}
	var copied types.WorkflowResult
	if err := json.Unmarshal(payload, &copied); err != nil {
		return nil, fmt.Errorf("failed to decode workflow: %w", err)
	}
	return &copied, nil
}

func (m *Memory) ListWorkflows(_ context.Context) ([]types.WorkflowSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	summaries := make([]types.WorkflowSummary, 0, len(m.workflows))
	for _, result := range m.workflows {
		summaries = append(summaries, result.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Timestamp.After(summaries[j].Timestamp)
	})
	return summaries, nil
}

func (m *Memory) AppendCodeVersion(_ context.Context, workflowID, code string, modifiedBy types.ModifiedBy, changeDescription string) (*types.CodeVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workflows[workflowID]; !ok {
		return nil, ErrWorkflowNotFound
	}

	version := types.CodeVersion{
		WorkflowID:        workflowID,
		Version:           len(m.versions[workflowID]) + 1,
		Code:              code,
		ModifiedBy:        modifiedBy,
		ChangeDescription: changeDescription,
		Timestamp:         time.Now().UTC(),
	}
	m.versions[workflowID] = append(m.versions[workflowID], version)
	return &version, nil
}

func (m *Memory) ListCodeVersions(_ context.Context, workflowID string) ([]types.CodeVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workflows[workflowID]; !ok {
		return nil, ErrWorkflowNotFound
	}
	return append([]types.CodeVersion{}, m.versions[workflowID]...), nil
}

func (m *Memory) GetCodeVersion(_ context.Context, workflowID string, version int) (*types.CodeVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := m.versions[workflowID]
	if version < 1 || version > len(history) {
		return nil, ErrVersionNotFound
	}
	v := history[version-1]
	return &v, nil
}

func (m *Memory) LatestCode(_ context.Context, workflowID string) (*types.CodeVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := m.versions[workflowID]
	if len(history) == 0 {
		return nil, ErrVersionNotFound
	}
	v := history[len(history)-1]
	return &v, nil
}

func (m *Memory) Ping(_ context.Context) error { return nil }
