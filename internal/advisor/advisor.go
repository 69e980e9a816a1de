package advisor

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/infrax/infra-engine/internal/llm"
	"github.com/infrax/infra-engine/internal/types"
)

// Advisor answers questions about infrastructure code. It is stateless;
// every call rebuilds its context from the supplied code.
type Advisor struct {
	completer llm.Completer
}

// New creates an advisor backed by the given model client
func New(completer llm.Completer) *Advisor {
	return &Advisor{completer: completer}
}

// Chat answers a free-form message grounded on the workflow's current
// code. The scan findings are included so the model can speak to them.
func (a *Advisor) Chat(ctx context.Context, code, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", &types.ValidationError{Field: "message", Message: "must not be empty"}
	}

	findings, score := Analyze(code)
	var notes strings.Builder
	for _, f := range findings {
		fmt.Fprintf(&notes, "- [%s] %s\n", f.Severity, f.Message)
	}

	prompt := fmt.Sprintf(
		"You are an infrastructure advisor reviewing the following code.\n\n"+
			"```\n%s\n```\n\n"+
			"Automated scan (score %d/100):\n%s\n"+
			"User message: %s\n\n"+
			"Answer concisely and reference concrete resources where relevant.",
		code, score, notes.String(), message,
	)

	reply, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}

	log.WithField("score", score).Debug("Advisor chat completed")
	return strings.TrimSpace(reply), nil
}

// Query answers a natural-language question over the supplied code
func (a *Advisor) Query(ctx context.Context, code, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", &types.ValidationError{Field: "question", Message: "must not be empty"}
	}

	prompt := fmt.Sprintf(
		"Given this infrastructure code:\n\n```\n%s\n```\n\n"+
			"Answer the question: %s",
		code, question,
	)

	answer, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// ExplainCost answers a question about a stored cost estimate
func (a *Advisor) ExplainCost(ctx context.Context, estimate *types.CostEstimate, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", &types.ValidationError{Field: "question", Message: "must not be empty"}
	}

	var breakdown strings.Builder
	for category, cost := range estimate.CostBreakdown {
		fmt.Fprintf(&breakdown, "- %s: $%.2f/month\n", category, cost)
	}

	prompt := fmt.Sprintf(
		"A cloud deployment has a base monthly cost of $%.2f %s with estimated "+
			"savings of $%.2f. Breakdown:\n%s\n"+
			"Answer the question: %s",
		estimate.BaseMonthlyCost, estimate.Currency, estimate.EstimatedSavings,
		breakdown.String(), question,
	)

	answer, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}
