package cost

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infrax/infra-engine/internal/types"
)

func TestProjectGrowingScenario(t *testing.T) {
	// 100 base at 10% growth: 100, 110, 121
	projections, err := Project(100, 3, 0.10, types.PatternGrowing)
	require.NoError(t, err)
	require.Len(t, projections, 3)

	assert.Equal(t, 100.0, projections[0].Cost)
	assert.Equal(t, 110.0, projections[1].Cost)
	assert.Equal(t, 121.0, projections[2].Cost)
	assert.Equal(t, 331.0, projections[2].Cumulative)
}

func TestProjectSteadyIsConstant(t *testing.T) {
	projections, err := Project(80, 12, 0.25, types.PatternSteady)
	require.NoError(t, err)
	for _, p := range projections {
		assert.Equal(t, 80.0, p.Cost)
	}
	assert.Equal(t, 960.0, projections[11].Cumulative)
}

func TestProjectDecliningDecreases(t *testing.T) {
	projections, err := Project(100, 6, 0.2, types.PatternDeclining)
	require.NoError(t, err)
	for i := 1; i < len(projections); i++ {
		assert.Less(t, projections[i].Cost, projections[i-1].Cost)
	}
}

func TestProjectSeasonalAveragesToBase(t *testing.T) {
	projections, err := Project(200, 12, 0.3, types.PatternSeasonal)
	require.NoError(t, err)

	sum := 0.0
	for _, p := range projections {
		sum += p.Cost
	}
	assert.InDelta(t, 200.0, sum/12, 0.01)
}

// TestProjectCumulativeConsistency checks that cumulative is the running
// sum of rounded monthly costs across a grid of parameters
func TestProjectCumulativeConsistency(t *testing.T) {
	patterns := []types.UsagePattern{
		types.PatternSteady, types.PatternGrowing,
		types.PatternSeasonal, types.PatternDeclining,
	}

	for _, pattern := range patterns {
		for _, months := range []int{1, 7, 36} {
			for _, growth := range []float64{0, 0.07, 0.5} {
				projections, err := Project(123.45, months, growth, pattern)
				require.NoError(t, err)
				require.Len(t, projections, months)

				sum := 0.0
				for i, p := range projections {
					assert.Equal(t, i+1, p.Month)
					sum += p.Cost
					assert.InDelta(t, sum, p.Cumulative, 0.005,
						"pattern=%s months=%d growth=%v month=%d", pattern, months, growth, p.Month)
				}
			}
		}
	}
}

func TestProjectGrowingIsMonotonic(t *testing.T) {
	projections, err := Project(50, 24, 0.05, types.PatternGrowing)
	require.NoError(t, err)
	for i := 1; i < len(projections); i++ {
		assert.GreaterOrEqual(t, projections[i].Cost, projections[i-1].Cost)
	}
}

func TestProjectRejectsOutOfRangeParameters(t *testing.T) {
	tests := []struct {
		name    string
		months  int
		growth  float64
		pattern types.UsagePattern
		param   string
	}{
		{"months too low", 0, 0.1, types.PatternSteady, "months"},
		{"months too high", 37, 0.1, types.PatternSteady, "months"},
		{"negative growth", 12, -0.01, types.PatternSteady, "growth_rate"},
		{"growth too high", 12, 0.51, types.PatternSteady, "growth_rate"},
		{"bad pattern", 12, 0.1, "exponential", "pattern"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Project(100, tc.months, tc.growth, tc.pattern)
			var paramsErr *types.InvalidCostParametersError
			require.ErrorAs(t, err, &paramsErr)
			assert.Equal(t, tc.param, paramsErr.Parameter)
		})
	}
}

func TestProjectCostsRoundedToCents(t *testing.T) {
	projections, err := Project(99.99, 10, 0.13, types.PatternGrowing)
	require.NoError(t, err)
	for _, p := range projections {
		assert.Equal(t, p.Cost, math.Round(p.Cost*100)/100)
		assert.Equal(t, p.Cumulative, math.Round(p.Cumulative*100)/100)
	}
}
