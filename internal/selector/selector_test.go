package selector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infrax/infra-engine/internal/llm"
	"github.com/infrax/infra-engine/internal/types"
)

func TestResolveAppliesDefaults(t *testing.T) {
	resolved, err := Resolve(types.ServiceRequirement{Type: types.CategoryCompute}, types.ProviderAWS)
	require.NoError(t, err)

	assert.Equal(t, "aws_instance", resolved.ResourceType)
	assert.Equal(t, "EC2 Instance", resolved.DisplayName)
	assert.Equal(t, "t3.micro", resolved.Attributes["instance_type"])
}

func TestResolveRequirementOverridesDefaults(t *testing.T) {
	resolved, err := Resolve(types.ServiceRequirement{
		Type:          types.CategoryDatabase,
		Engine:        "mysql",
		InstanceClass: "db.r5.large",
	}, types.ProviderAWS)
	require.NoError(t, err)

	assert.Equal(t, "mysql", resolved.Attributes["engine"])
	assert.Equal(t, "db.r5.large", resolved.Attributes["instance_class"])
}

func TestResolveUnknownCategory(t *testing.T) {
	_, err := Resolve(types.ServiceRequirement{Type: "quantum"}, types.ProviderAWS)
	var unsupported *types.UnsupportedServiceError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, types.ServiceCategory("quantum"), unsupported.Type)
	assert.Equal(t, types.ProviderAWS, unsupported.Provider)
}

func TestSelectIsDeterministic(t *testing.T) {
	plan := &types.InfrastructurePlan{
		CloudProvider: types.ProviderGCP,
		Region:        "europe-west1",
		Services: []types.ServiceRequirement{
			{Type: types.CategoryCompute},
			{Type: types.CategoryDatabase},
			{Type: types.CategoryStorage},
		},
	}

	s := New(nil)
	first, err := s.Select(context.Background(), plan)
	require.NoError(t, err)
	second, err := s.Select(context.Background(), plan)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first.Services, 3)
	assert.Equal(t, "google_compute_instance", first.Services[0].ResourceType)
}

func TestSelectDropsUnsupportedIntoOmissions(t *testing.T) {
	plan := &types.InfrastructurePlan{
		CloudProvider: types.ProviderAzure,
		Region:        "westeurope",
		Services: []types.ServiceRequirement{
			{Type: types.CategoryCompute},
			{Type: "cdn"},
			{Type: types.CategoryStorage},
		},
	}

	selection, err := New(nil).Select(context.Background(), plan)
	require.NoError(t, err)

	assert.Len(t, selection.Services, 2)
	require.Len(t, selection.Omissions, 1)
	assert.Contains(t, selection.Omissions[0], "cdn")
}

func TestSelectRationaleFailureIsSilent(t *testing.T) {
	plan := &types.InfrastructurePlan{
		CloudProvider: types.ProviderAWS,
		Region:        "us-east-1",
		Services:      []types.ServiceRequirement{{Type: types.CategoryCompute}},
	}

	fake := &llm.Fake{Err: assert.AnError}
	selection, err := New(fake).Select(context.Background(), plan)
	require.NoError(t, err)
	assert.Empty(t, selection.Rationale)
	assert.Len(t, selection.Services, 1)
}
