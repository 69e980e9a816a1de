package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infrax/infra-engine/internal/types"
)

func storedWorkflow(t *testing.T, store *Memory, id string) *types.WorkflowResult {
	t.Helper()
	result := &types.WorkflowResult{
		WorkflowID: id,
		Success:    true,
		Timestamp:  time.Now().UTC(),
		StepStates: map[string]types.StepStatus{},
	}
	require.NoError(t, store.SaveWorkflow(context.Background(), result))
	return result
}

func TestMemoryGetWorkflowNotFound(t *testing.T) {
	store := NewMemory()
	_, err := store.GetWorkflow(context.Background(), "wf-missing")
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestMemorySaveAndGetWorkflow(t *testing.T) {
	store := NewMemory()
	storedWorkflow(t, store, "wf-1")

	result, err := store.GetWorkflow(context.Background(), "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "wf-1", result.WorkflowID)
	assert.True(t, result.Success)
}

// TestMemorySaveIsolatesNestedState mutates the caller's result after
// saving and a reader's result after loading; the stored row must see
// neither
func TestMemorySaveIsolatesNestedState(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	original := &types.WorkflowResult{
		WorkflowID: "wf-1",
		Success:    true,
		Timestamp:  time.Now().UTC(),
		StepStates: map[string]types.StepStatus{types.StepPlanning: {State: types.StepCompleted}},
		Cost:       &types.CostEstimate{BaseMonthlyCost: 100, Currency: "USD"},
		Code:       &types.GeneratedCode{Code: "original", Filename: "a.tf"},
	}
	require.NoError(t, store.SaveWorkflow(ctx, original))

	original.Cost.BaseMonthlyCost = 999
	original.Code.Code = "mutated after save"
	original.StepStates[types.StepPlanning] = types.StepStatus{State: types.StepFailed}

	loaded, err := store.GetWorkflow(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, loaded.Cost.BaseMonthlyCost)
	assert.Equal(t, "original", loaded.Code.Code)
	assert.Equal(t, types.StepCompleted, loaded.StepStates[types.StepPlanning].State)

	loaded.Cost.BaseMonthlyCost = 1
	reloaded, err := store.GetWorkflow(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, reloaded.Cost.BaseMonthlyCost)
}

func TestMemoryListWorkflowsNewestFirst(t *testing.T) {
	store := NewMemory()
	older := &types.WorkflowResult{WorkflowID: "wf-old", Timestamp: time.Now().Add(-time.Hour)}
	newer := &types.WorkflowResult{WorkflowID: "wf-new", Timestamp: time.Now()}
	require.NoError(t, store.SaveWorkflow(context.Background(), older))
	require.NoError(t, store.SaveWorkflow(context.Background(), newer))

	summaries, err := store.ListWorkflows(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "wf-new", summaries[0].WorkflowID)
	assert.Equal(t, "wf-old", summaries[1].WorkflowID)
}

// TestMemoryVersionsAreGapless interleaves failed appends (missing
// workflow) with successful ones and checks numbering stays 1..n
func TestMemoryVersionsAreGapless(t *testing.T) {
	store := NewMemory()
	storedWorkflow(t, store, "wf-1")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := store.AppendCodeVersion(ctx, "wf-1", "code", types.ModifiedByUser, "edit")
		require.NoError(t, err)

		// failed append against a missing workflow must not consume a number
		_, err = store.AppendCodeVersion(ctx, "wf-ghost", "code", types.ModifiedByUser, "edit")
		assert.ErrorIs(t, err, ErrWorkflowNotFound)
	}

	versions, err := store.ListCodeVersions(ctx, "wf-1")
	require.NoError(t, err)
	require.Len(t, versions, 5)
	for i, v := range versions {
		assert.Equal(t, i+1, v.Version)
	}
}

func TestMemoryGetCodeVersion(t *testing.T) {
	store := NewMemory()
	storedWorkflow(t, store, "wf-1")
	ctx := context.Background()

	_, err := store.AppendCodeVersion(ctx, "wf-1", "first", types.ModifiedByUser, "")
	require.NoError(t, err)
	_, err = store.AppendCodeVersion(ctx, "wf-1", "second", types.ModifiedByAdvisor, "advisor fix")
	require.NoError(t, err)

	v, err := store.GetCodeVersion(ctx, "wf-1", 2)
	require.NoError(t, err)
	assert.Equal(t, "second", v.Code)
	assert.Equal(t, types.ModifiedByAdvisor, v.ModifiedBy)

	_, err = store.GetCodeVersion(ctx, "wf-1", 3)
	assert.ErrorIs(t, err, ErrVersionNotFound)
	_, err = store.GetCodeVersion(ctx, "wf-1", 0)
	assert.ErrorIs(t, err, ErrVersionNotFound)
}

func TestMemoryLatestCode(t *testing.T) {
	store := NewMemory()
	storedWorkflow(t, store, "wf-1")
	ctx := context.Background()

	_, err := store.LatestCode(ctx, "wf-1")
	assert.ErrorIs(t, err, ErrVersionNotFound)

	_, err = store.AppendCodeVersion(ctx, "wf-1", "first", types.ModifiedByUser, "")
	require.NoError(t, err)
	_, err = store.AppendCodeVersion(ctx, "wf-1", "second", types.ModifiedByUser, "")
	require.NoError(t, err)

	latest, err := store.LatestCode(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, 2, latest.Version)
	assert.Equal(t, "second", latest.Code)
}
