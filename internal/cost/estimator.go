// Package cost implements the heuristic cost model and predictive
// projections. There are no live pricing lookups: monthly cost is
// services × base rate × provider multiplier.
package cost

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/infrax/infra-engine/internal/llm"
	"github.com/infrax/infra-engine/internal/types"
)

// BaseRatePerService is the flat monthly rate per resolved service, USD
const BaseRatePerService = 50.0

// providerMultipliers approximate relative pricing between clouds
var providerMultipliers = map[types.CloudProvider]float64{
	types.ProviderAWS:   1.0,
	types.ProviderAzure: 1.05,
	types.ProviderGCP:   0.95,
}

// fallbackOpportunities are used when the savings completion fails or
// cannot be parsed; the estimate itself never fails on model errors.
var fallbackOpportunities = []string{
	"Consider reserved instances for steady workloads (up to 72% savings)",
	"Implement auto-scaling to match demand (20-40% savings)",
	"Use spot or preemptible instances for fault-tolerant workloads (70-90% savings)",
	"Optimize storage tiers based on access patterns (30-50% savings)",
	"Enable data compression and lifecycle policies (10-30% savings)",
}

// Estimator computes heuristic estimates and asks the model for an
// optimization narrative
type Estimator struct {
	completer llm.Completer
}

// New creates an estimator. completer may be nil; savings then fall back
// to zero with the static opportunity list.
func New(completer llm.Completer) *Estimator {
	return &Estimator{completer: completer}
}

// savingsResponse is the shape requested from the model
type savingsResponse struct {
	EstimatedSavings          float64  `json:"estimated_savings"`
	OptimizationOpportunities []string `json:"optimization_opportunities"`
}

// Estimate computes the monthly cost for a selection. The savings figure
// comes from one model call and is clamped by the orchestrator, not here.
func (e *Estimator) Estimate(ctx context.Context, selection *types.ServiceSelection) (*types.CostEstimate, error) {
	multiplier, ok := providerMultipliers[selection.Provider]
	if !ok {
		return nil, fmt.Errorf("no cost multiplier for provider %q", selection.Provider)
	}

	breakdown := make(map[string]float64)
	for _, svc := range selection.Services {
		breakdown[string(svc.Category)] += BaseRatePerService * multiplier
	}

	estimate := &types.CostEstimate{
		BaseMonthlyCost: float64(len(selection.Services)) * BaseRatePerService * multiplier,
		Currency:        "USD",
		CostBreakdown:   breakdown,
	}

	savings, opportunities := e.optimizationNarrative(ctx, selection, estimate.BaseMonthlyCost)
	estimate.EstimatedSavings = savings
	estimate.OptimizationOpportunities = opportunities

	log.WithFields(log.Fields{
		"provider":     selection.Provider,
		"services":     len(selection.Services),
		"monthly_cost": estimate.BaseMonthlyCost,
		"savings":      estimate.EstimatedSavings,
	}).Info("Cost estimate computed")

	return estimate, nil
}

// optimizationNarrative is best-effort: any failure degrades to zero
// savings plus the static tip list
func (e *Estimator) optimizationNarrative(ctx context.Context, selection *types.ServiceSelection, baseCost float64) (float64, []string) {
	if e.completer == nil {
		return 0, fallbackOpportunities
	}

	var names []string
	for _, svc := range selection.Services {
		names = append(names, fmt.Sprintf("%s (%s)", svc.DisplayName, svc.Category))
	}

	prompt := fmt.Sprintf(
		"You are a cloud cost optimization specialist. The following %s services cost $%.2f per month on-demand: %s. "+
			`Respond with ONLY a JSON object: {"estimated_savings": monthly USD number, "optimization_opportunities": ["specific actionable recommendations"]}`,
		strings.ToUpper(string(selection.Provider)), baseCost, strings.Join(names, ", "),
	)

	raw, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		log.WithError(err).Warn("Cost optimization analysis skipped")
		return 0, fallbackOpportunities
	}

	payload, ok := extractJSON(raw)
	if !ok {
		return 0, fallbackOpportunities
	}

	var resp savingsResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return 0, fallbackOpportunities
	}

	opportunities := resp.OptimizationOpportunities
	if len(opportunities) == 0 {
		opportunities = fallbackOpportunities
	}

	if resp.EstimatedSavings < 0 {
		return 0, opportunities
	}
	return resp.EstimatedSavings, opportunities
}

func extractJSON(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}
