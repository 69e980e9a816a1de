package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infrax/infra-engine/internal/advisor"
	"github.com/infrax/infra-engine/internal/codegen"
	"github.com/infrax/infra-engine/internal/cost"
	"github.com/infrax/infra-engine/internal/diagram"
	"github.com/infrax/infra-engine/internal/llm"
	"github.com/infrax/infra-engine/internal/orchestrator"
	"github.com/infrax/infra-engine/internal/planner"
	"github.com/infrax/infra-engine/internal/repository"
	"github.com/infrax/infra-engine/internal/selector"
	"github.com/infrax/infra-engine/internal/types"
)

const planResponse = `{"cloud_provider": "aws", "region": "us-east-1", ` +
	`"location_rationale": "default", "services": [{"type": "compute"}, {"type": "storage"}]}`

func newTestServer(fake *llm.Fake) (*Server, *repository.Memory) {
	store := repository.NewMemory()
	engine := orchestrator.New(
		planner.New(fake),
		selector.New(fake),
		cost.New(fake),
		codegen.New(),
		diagram.New(fake),
		store,
		nil,
	)
	return New(engine, store, advisor.New(fake), nil), store
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func runWorkflow(t *testing.T, s *Server) types.WorkflowResult {
	t.Helper()
	w := doJSON(t, s, http.MethodPost, "/api/v1/workflows/intelligent",
		map[string]string{"prompt": "web app with uploads"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result types.WorkflowResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	return result
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(&llm.Fake{})
	w := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestRunWorkflowRejectsEmptyRequest(t *testing.T) {
	s, _ := newTestServer(&llm.Fake{})
	w := doJSON(t, s, http.MethodPost, "/api/v1/workflows/intelligent", map[string]string{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRunWorkflowHappyPath(t *testing.T) {
	fake := &llm.Fake{Responses: []string{planResponse}}
	s, store := newTestServer(fake)

	result := runWorkflow(t, s)
	assert.True(t, result.Success)
	assert.NotNil(t, result.Code)

	// the result is retrievable and listed
	w := doJSON(t, s, http.MethodGet, "/api/v1/workflows/"+result.WorkflowID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/v1/workflows", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var summaries []types.WorkflowSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, result.WorkflowID, summaries[0].WorkflowID)

	versions, err := store.ListCodeVersions(context.Background(), result.WorkflowID)
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestRunWorkflowStepFailureStillReturns200(t *testing.T) {
	// model is down: planning fails, but the endpoint reports the partial result
	fake := &llm.Fake{Err: &types.UpstreamError{Service: "model endpoint", Err: assert.AnError}}
	s, _ := newTestServer(fake)

	w := doJSON(t, s, http.MethodPost, "/api/v1/workflows/intelligent",
		map[string]string{"prompt": "anything"})
	require.Equal(t, http.StatusOK, w.Code)

	var result types.WorkflowResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Equal(t, types.StepPlanning, result.FailedStep)
}

func TestGetWorkflowNotFound(t *testing.T) {
	s, _ := newTestServer(&llm.Fake{})
	w := doJSON(t, s, http.MethodGet, "/api/v1/workflows/wf-missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCodeVersionLifecycle(t *testing.T) {
	fake := &llm.Fake{Responses: []string{planResponse}}
	s, _ := newTestServer(fake)
	result := runWorkflow(t, s)
	base := "/api/v1/workflows/" + result.WorkflowID

	// append a manual edit
	w := doJSON(t, s, http.MethodPost, base+"/code", map[string]string{
		"terraform_code":     "# edited",
		"change_description": "manual tweak",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created types.CodeVersion
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 2, created.Version)
	assert.Equal(t, types.ModifiedByUser, created.ModifiedBy)

	// history lists both, numbered get works
	w = doJSON(t, s, http.MethodGet, base+"/code/versions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var versions []types.CodeVersion
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &versions))
	require.Len(t, versions, 2)

	w = doJSON(t, s, http.MethodGet, base+"/code/versions/2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, s, http.MethodGet, base+"/code/versions/9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// current code reflects the latest version
	w = doJSON(t, s, http.MethodGet, base+"/code", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var code types.GeneratedCode
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &code))
	assert.Equal(t, "# edited", code.Code)
}

func TestAppendCodeVersionRejectsBadModifier(t *testing.T) {
	fake := &llm.Fake{Responses: []string{planResponse}}
	s, _ := newTestServer(fake)
	result := runWorkflow(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/v1/workflows/"+result.WorkflowID+"/code",
		map[string]string{"terraform_code": "x", "modified_by": "robot"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestForecastEndpoint(t *testing.T) {
	fake := &llm.Fake{Responses: []string{planResponse}}
	s, _ := newTestServer(fake)
	result := runWorkflow(t, s)
	path := "/api/v1/workflows/" + result.WorkflowID + "/cost/forecast"

	w := doJSON(t, s, http.MethodPost, path, map[string]any{
		"months": 3, "growth_rate": 0.1, "pattern": "growing",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Projections []types.MonthlyProjection `json:"projections"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Projections, 3)
	assert.Equal(t, result.Cost.BaseMonthlyCost, resp.Projections[0].Cost)

	// invalid parameters are rejected, never clamped
	w = doJSON(t, s, http.MethodPost, path, map[string]any{
		"months": 120, "growth_rate": 0.1, "pattern": "growing",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestExplainCostEndpoint(t *testing.T) {
	fake := &llm.Fake{Responses: []string{planResponse, "Compute dominates the bill."}}
	s, _ := newTestServer(fake)
	result := runWorkflow(t, s)

	w := doJSON(t, s, http.MethodPost,
		"/api/v1/workflows/"+result.WorkflowID+"/cost/explain",
		map[string]string{"question": "what drives the cost?"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Compute dominates the bill.")

	w = doJSON(t, s, http.MethodPost, "/api/v1/workflows/wf-missing/cost/explain",
		map[string]string{"question": "q"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdvisorScanEndpoint(t *testing.T) {
	s, _ := newTestServer(&llm.Fake{})
	w := doJSON(t, s, http.MethodPost, "/api/v1/advisor/scan", map[string]string{
		"code": `resource "aws_db_instance" "main" { password = "hunter2" }`,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Score    int             `json:"score"`
		Findings []types.Finding `json:"findings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 70, resp.Score)
	require.Len(t, resp.Findings, 1)
	assert.Equal(t, types.SeverityCritical, resp.Findings[0].Severity)
}

func TestAdvisorValidateEndpoint(t *testing.T) {
	s, _ := newTestServer(&llm.Fake{})

	w := doJSON(t, s, http.MethodPost, "/api/v1/advisor/validate", map[string]string{
		"code": `resource "aws_s3_bucket" "b" { bucket = "x" }`,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"valid":true`)

	w = doJSON(t, s, http.MethodPost, "/api/v1/advisor/validate", map[string]string{
		"code": `resource "aws_s3_bucket" "b" {`,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"valid":false`)
}

func TestAdvisorChatEndpoint(t *testing.T) {
	fake := &llm.Fake{Responses: []string{planResponse, "Looks solid overall."}}
	s, _ := newTestServer(fake)
	result := runWorkflow(t, s)

	w := doJSON(t, s, http.MethodPost,
		fmt.Sprintf("/api/v1/workflows/%s/advisor/chat", result.WorkflowID),
		map[string]string{"message": "any security concerns?"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Looks solid overall.")
}

func TestAdvisorChatMissingWorkflow(t *testing.T) {
	s, _ := newTestServer(&llm.Fake{})
	w := doJSON(t, s, http.MethodPost, "/api/v1/workflows/wf-missing/advisor/chat",
		map[string]string{"message": "hello"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdvisorQueryUpstreamFailureMapsTo502(t *testing.T) {
	fake := &llm.Fake{Err: &types.UpstreamError{Service: "model endpoint", Err: assert.AnError}}
	s, _ := newTestServer(fake)

	w := doJSON(t, s, http.MethodPost, "/api/v1/advisor/query",
		map[string]string{"code": "x", "question": "y"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
