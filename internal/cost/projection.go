package cost

import (
	"math"

	"github.com/infrax/infra-engine/internal/types"
)

const (
	// MinMonths and MaxMonths bound the forecast horizon
	MinMonths = 1
	MaxMonths = 36

	// MaxGrowthRate caps the monthly growth rate at 50%
	MaxGrowthRate = 0.5
)

// Project computes a monthly cost series from a base cost. It is pure and
// deterministic: no I/O, no clock, same inputs always give the same series.
// Out-of-range months or growthRate are rejected, never clamped.
//
// Patterns:
//
//	steady     cost(m) = base
//	growing    cost(m) = base * (1+g)^(m-1)
//	declining  cost(m) = base * (1-g)^(m-1)
//	seasonal   cost(m) = base * (1 + g*cos(2π(m-1)/12)), period 12,
//	           averaging back to base over a full cycle
func Project(baseCost float64, months int, growthRate float64, pattern types.UsagePattern) ([]types.MonthlyProjection, error) {
	if months < MinMonths || months > MaxMonths {
		return nil, &types.InvalidCostParametersError{
			Parameter: "months",
			Message:   "must be between 1 and 36",
		}
	}
	if growthRate < 0 || growthRate > MaxGrowthRate {
		return nil, &types.InvalidCostParametersError{
			Parameter: "growth_rate",
			Message:   "must be between 0 and 0.5",
		}
	}

	switch pattern {
	case types.PatternSteady, types.PatternGrowing, types.PatternSeasonal, types.PatternDeclining:
	default:
		return nil, &types.InvalidCostParametersError{
			Parameter: "pattern",
			Message:   "must be one of steady, growing, seasonal, declining",
		}
	}

	projections := make([]types.MonthlyProjection, 0, months)
	cumulative := 0.0

	for m := 1; m <= months; m++ {
		var cost float64
		switch pattern {
		case types.PatternSteady:
			cost = baseCost
		case types.PatternGrowing:
			cost = baseCost * math.Pow(1+growthRate, float64(m-1))
		case types.PatternDeclining:
			cost = baseCost * math.Pow(1-growthRate, float64(m-1))
		case types.PatternSeasonal:
			cost = baseCost * (1 + growthRate*math.Cos(2*math.Pi*float64(m-1)/12))
		}

		cost = round2(cost)
		cumulative += cost
		projections = append(projections, types.MonthlyProjection{
			Month:      m,
			Cost:       cost,
			Cumulative: round2(cumulative),
		})
	}

	return projections, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
