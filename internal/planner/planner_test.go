package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infrax/infra-engine/internal/llm"
	"github.com/infrax/infra-engine/internal/types"
)

func TestPlanParsesModelResponse(t *testing.T) {
	fake := &llm.Fake{Responses: []string{
		"Here is the plan:\n```json\n" +
			`{"cloud_provider": "aws", "region": "eu-west-1", "location_rationale": "close to European users", ` +
			`"services": [{"type": "compute", "instance_type": "t3.small"}, {"type": "database", "engine": "postgres"}]}` +
			"\n```",
	}}

	p := New(fake)
	plan, err := p.Plan(context.Background(), types.WorkflowRequest{Prompt: "web app for EU users"})
	require.NoError(t, err)

	assert.Equal(t, types.ProviderAWS, plan.CloudProvider)
	assert.Equal(t, "eu-west-1", plan.Region)
	assert.Equal(t, "close to European users", plan.LocationRationale)
	require.Len(t, plan.Services, 2)
	assert.Equal(t, types.CategoryCompute, plan.Services[0].Type)
	assert.Equal(t, "t3.small", plan.Services[0].InstanceType)
}

func TestPlanDefaultsRegionWhenUnset(t *testing.T) {
	tests := []struct {
		provider string
		region   string
	}{
		{"aws", "us-east-1"},
		{"azure", "eastus"},
		{"gcp", "us-central1"},
	}

	for _, tc := range tests {
		t.Run(tc.provider, func(t *testing.T) {
			fake := &llm.Fake{Responses: []string{
				`{"cloud_provider": "` + tc.provider + `", "services": [{"type": "compute"}]}`,
			}}
			plan, err := New(fake).Plan(context.Background(), types.WorkflowRequest{Prompt: "anything"})
			require.NoError(t, err)
			assert.Equal(t, tc.region, plan.Region)
		})
	}
}

func TestPlanPromptIncludesRequestDetails(t *testing.T) {
	fake := &llm.Fake{Responses: []string{
		`{"cloud_provider": "gcp", "region": "europe-west1", "services": [{"type": "storage"}]}`,
	}}

	_, err := New(fake).Plan(context.Background(), types.WorkflowRequest{
		Prompt:   "static site hosting",
		Location: "Germany",
	})
	require.NoError(t, err)
	require.Len(t, fake.Prompts, 1)
	assert.Contains(t, fake.Prompts[0], "static site hosting")
	assert.Contains(t, fake.Prompts[0], "Germany")
	assert.Contains(t, fake.Prompts[0], "eu-central-1")
}

func TestPlanRejectsUnparseableResponses(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"no json", "I cannot help with that."},
		{"unknown provider", `{"cloud_provider": "oracle", "services": [{"type": "compute"}]}`},
		{"no services", `{"cloud_provider": "aws", "services": []}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fake := &llm.Fake{Responses: []string{tc.response}}
			_, err := New(fake).Plan(context.Background(), types.WorkflowRequest{Prompt: "x"})
			var planErr *types.PlanningError
			require.ErrorAs(t, err, &planErr)
		})
	}
}

func TestPlanPropagatesCompletionFailure(t *testing.T) {
	upstream := &types.UpstreamError{Service: "model endpoint", Err: errors.New("connection refused")}
	fake := &llm.Fake{Err: upstream}

	_, err := New(fake).Plan(context.Background(), types.WorkflowRequest{Prompt: "x"})
	var upstreamErr *types.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
}

func TestExtractJSONHandlesNestedAndStrings(t *testing.T) {
	raw := `prefix {"a": {"b": "contains } brace", "c": "esc\"aped"}, "d": 1} suffix {"x": 2}`
	payload, ok := ExtractJSON(raw)
	require.True(t, ok)
	assert.Equal(t, `{"a": {"b": "contains } brace", "c": "esc\"aped"}, "d": 1}`, payload)

	_, ok = ExtractJSON("no json here")
	assert.False(t, ok)
}
