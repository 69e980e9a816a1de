// Package planner turns a free-text infrastructure request into a
// structured plan via one model completion.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/infrax/infra-engine/internal/llm"
	"github.com/infrax/infra-engine/internal/types"
)

// Region describes one provider region offered to the model
type Region struct {
	Code     string
	Location string
}

// providerRegions is the catalog embedded in every planning prompt
var providerRegions = map[types.CloudProvider][]Region{
	types.ProviderAWS: {
		{Code: "us-east-1", Location: "Virginia, USA"},
		{Code: "us-west-2", Location: "Oregon, USA"},
		{Code: "eu-west-1", Location: "Ireland"},
		{Code: "eu-central-1", Location: "Frankfurt, Germany"},
		{Code: "ap-southeast-1", Location: "Singapore"},
		{Code: "ap-south-1", Location: "Mumbai, India"},
		{Code: "ap-northeast-1", Location: "Tokyo, Japan"},
		{Code: "sa-east-1", Location: "Sao Paulo, Brazil"},
	},
	types.ProviderAzure: {
		{Code: "eastus", Location: "Virginia, USA"},
		{Code: "westus2", Location: "Washington, USA"},
		{Code: "northeurope", Location: "Ireland"},
		{Code: "westeurope", Location: "Netherlands"},
		{Code: "southeastasia", Location: "Singapore"},
		{Code: "centralindia", Location: "Pune, India"},
		{Code: "japaneast", Location: "Tokyo, Japan"},
	},
	types.ProviderGCP: {
		{Code: "us-east1", Location: "South Carolina, USA"},
		{Code: "us-west1", Location: "Oregon, USA"},
		{Code: "europe-west1", Location: "Belgium"},
		{Code: "europe-west3", Location: "Frankfurt, Germany"},
		{Code: "asia-southeast1", Location: "Singapore"},
		{Code: "asia-south1", Location: "Mumbai, India"},
		{Code: "asia-northeast1", Location: "Tokyo, Japan"},
	},
}

// defaultRegions are the provider "global" fallbacks used when the model
// leaves region unset. A plan never leaves region empty.
var defaultRegions = map[types.CloudProvider]string{
	types.ProviderAWS:   "us-east-1",
	types.ProviderAzure: "eastus",
	types.ProviderGCP:   "us-central1",
}

// Planner produces infrastructure plans from natural-language requests
type Planner struct {
	completer llm.Completer
}

// New creates a planner backed by the given completion capability
func New(completer llm.Completer) *Planner {
	return &Planner{completer: completer}
}

// planResponse is the structured shape the model is instructed to return
type planResponse struct {
	CloudProvider     string                     `json:"cloud_provider"`
	Region            string                     `json:"region"`
	LocationRationale string                     `json:"location_rationale"`
	Services          []types.ServiceRequirement `json:"services"`
}

// Plan analyzes the request and returns a complete infrastructure plan.
// The model response must parse into the expected fields; otherwise a
// PlanningError is returned with no retry.
func (p *Planner) Plan(ctx context.Context, req types.WorkflowRequest) (*types.InfrastructurePlan, error) {
	prompt := buildPrompt(req)

	raw, err := p.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("planning completion failed: %w", err)
	}

	parsed, err := parsePlan(raw)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"provider": parsed.CloudProvider,
		"region":   parsed.Region,
		"services": len(parsed.Services),
	}).Info("Infrastructure plan created")

	return parsed, nil
}

func buildPrompt(req types.WorkflowRequest) string {
	var b strings.Builder

	b.WriteString("You are an expert cloud architect. Analyze the requirement below and produce an infrastructure plan.\n\n")

	b.WriteString("Supported providers and regions:\n")
	for _, provider := range []types.CloudProvider{types.ProviderAWS, types.ProviderAzure, types.ProviderGCP} {
		b.WriteString(string(provider) + ":")
		for _, r := range providerRegions[provider] {
			b.WriteString(fmt.Sprintf(" %s (%s);", r.Code, r.Location))
		}
		b.WriteString("\n")
	}

	b.WriteString("\nRespond with ONLY a JSON object of this shape:\n")
	b.WriteString(`{"cloud_provider": "aws|azure|gcp", "region": "region-code", "location_rationale": "why this provider and region", "services": [{"type": "compute|storage|database|networking|container", "instance_type": "...", "engine": "...", "node_count": 0}]}`)
	b.WriteString("\n\nRequirement:\n")

	if req.Prompt != "" {
		b.WriteString("Description: " + req.Prompt + "\n")
	}
	if req.RepoURL != "" {
		b.WriteString("Repository: " + req.RepoURL + "\n")
	}
	if req.Location != "" {
		b.WriteString("Target location: " + req.Location + "\n")
	} else {
		b.WriteString("Target location: not specified, infer from context or recommend a global deployment\n")
	}

	return b.String()
}

func parsePlan(raw string) (*types.InfrastructurePlan, error) {
	payload, ok := ExtractJSON(raw)
	if !ok {
		return nil, &types.PlanningError{Reason: "model response contains no JSON object"}
	}

	var resp planResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return nil, &types.PlanningError{Reason: fmt.Sprintf("model response is not valid JSON: %v", err)}
	}

	provider := types.CloudProvider(strings.ToLower(strings.TrimSpace(resp.CloudProvider)))
	if !provider.Valid() {
		return nil, &types.PlanningError{Reason: fmt.Sprintf("unknown cloud provider %q in model response", resp.CloudProvider)}
	}

	if len(resp.Services) == 0 {
		return nil, &types.PlanningError{Reason: "model response lists no services"}
	}

	region := strings.TrimSpace(resp.Region)
	if region == "" {
		region = defaultRegions[provider]
	}

	return &types.InfrastructurePlan{
		CloudProvider:     provider,
		Region:            region,
		LocationRationale: resp.LocationRationale,
		Services:          resp.Services,
	}, nil
}

// ExtractJSON pulls the first top-level JSON object out of a model
// response, tolerating markdown fences and surrounding prose.
func ExtractJSON(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}
