// Package orchestrator runs the five-step pipeline: planning, service
// selection, cost estimation, code generation, diagram generation. Steps
// run strictly in order; the first failure stops the run and the partial
// result is kept.
package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/infrax/infra-engine/internal/codegen"
	"github.com/infrax/infra-engine/internal/cost"
	"github.com/infrax/infra-engine/internal/diagram"
	"github.com/infrax/infra-engine/internal/planner"
	"github.com/infrax/infra-engine/internal/repository"
	"github.com/infrax/infra-engine/internal/selector"
	"github.com/infrax/infra-engine/internal/types"
)

// stepOrder drives execution and the skipped-state fill for steps after
// a failure
var stepOrder = []string{
	types.StepPlanning,
	types.StepServiceSelection,
	types.StepCostEstimation,
	types.StepIaCGeneration,
	types.StepDiagramGeneration,
}

// Orchestrator wires the pipeline components together. All state lives
// in the result being built; the orchestrator itself is reusable across
// concurrent runs.
type Orchestrator struct {
	planner   *planner.Planner
	selector  *selector.Selector
	estimator *cost.Estimator
	generator *codegen.Generator
	renderer  *diagram.Renderer
	store     repository.Store
	artifacts *codegen.ArtifactWriter
}

// New assembles an orchestrator. store may be nil (results are then not
// persisted); artifacts may be nil (no file copies written).
func New(
	p *planner.Planner,
	s *selector.Selector,
	e *cost.Estimator,
	g *codegen.Generator,
	r *diagram.Renderer,
	store repository.Store,
	artifacts *codegen.ArtifactWriter,
) *Orchestrator {
	return &Orchestrator{
		planner:   p,
		selector:  s,
		estimator: e,
		generator: g,
		renderer:  r,
		store:     store,
		artifacts: artifacts,
	}
}

// ValidateRequest checks request shape before any pipeline work. Exactly
// one of prompt/repo_url must be present.
func ValidateRequest(req types.WorkflowRequest) error {
	prompt := strings.TrimSpace(req.Prompt)
	repo := strings.TrimSpace(req.RepoURL)
	switch {
	case prompt == "" && repo == "":
		return &types.ValidationError{Field: "prompt", Message: "either prompt or repo_url is required"}
	case prompt != "" && repo != "":
		return &types.ValidationError{Field: "prompt", Message: "prompt and repo_url are mutually exclusive"}
	}
	if req.IaCType != "" {
		switch req.IaCType {
		case types.IaCTerraform, types.IaCPulumi, types.IaCCloudFormation:
		default:
			return &types.ValidationError{Field: "iac_type", Message: "must be terraform, pulumi or cloudformation"}
		}
	}
	return nil
}

// Run executes the pipeline for one request. The returned result is
// always non-nil once validation passes: on step failure it carries the
// outputs of every completed step plus the failed step's name and error.
// Results, failed ones included, are persisted before returning.
func (o *Orchestrator) Run(ctx context.Context, req types.WorkflowRequest) (*types.WorkflowResult, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	iacType := req.IaCType
	if iacType == "" {
		iacType = types.IaCTerraform
	}

	result := &types.WorkflowResult{
		WorkflowID: "wf-" + uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		Input:      req,
		StepStates: make(map[string]types.StepStatus),
	}

	logger := log.WithField("workflow_id", result.WorkflowID)
	logger.Info("Workflow started")

	err := o.runSteps(ctx, result, iacType)
	result.Success = err == nil
	if err != nil {
		result.Error = err.Error()
		logger.WithField("failed_step", result.FailedStep).WithError(err).Warn("Workflow failed")
	} else {
		logger.Info("Workflow completed")
	}

	if err := o.persist(ctx, result, logger); err != nil {
		return nil, err
	}
	return result, nil
}

// runSteps executes steps in order, recording per-step state. On failure
// it marks the failed step and fills the remainder as skipped.
func (o *Orchestrator) runSteps(ctx context.Context, result *types.WorkflowResult, iacType types.IaCType) error {
	steps := []struct {
		name string
		run  func(context.Context, *types.WorkflowResult) error
	}{
		{types.StepPlanning, o.stepPlan},
		{types.StepServiceSelection, o.stepSelect},
		{types.StepCostEstimation, o.stepEstimate},
		{types.StepIaCGeneration, func(ctx context.Context, r *types.WorkflowResult) error {
			return o.stepGenerate(ctx, r, iacType)
		}},
		{types.StepDiagramGeneration, o.stepDiagram},
	}

	for i, step := range steps {
		if err := step.run(ctx, result); err != nil {
			result.StepStates[step.name] = types.StepStatus{State: types.StepFailed, Error: err.Error()}
			result.FailedStep = step.name
			for _, later := range stepOrder[i+1:] {
				result.StepStates[later] = types.StepStatus{State: types.StepSkipped}
			}
			return err
		}
		result.StepStates[step.name] = types.StepStatus{State: types.StepCompleted}
	}
	return nil
}

func (o *Orchestrator) stepPlan(ctx context.Context, result *types.WorkflowResult) error {
	plan, err := o.planner.Plan(ctx, result.Input)
	if err != nil {
		return err
	}
	result.Plan = plan
	return nil
}

func (o *Orchestrator) stepSelect(ctx context.Context, result *types.WorkflowResult) error {
	selection, err := o.selector.Select(ctx, result.Plan)
	if err != nil {
		return err
	}
	result.Selection = selection
	return nil
}

func (o *Orchestrator) stepEstimate(ctx context.Context, result *types.WorkflowResult) error {
	estimate, err := o.estimator.Estimate(ctx, result.Selection)
	if err != nil {
		return err
	}
	// Savings never exceed the base cost and never go negative
	if estimate.EstimatedSavings > estimate.BaseMonthlyCost {
		estimate.EstimatedSavings = estimate.BaseMonthlyCost
	}
	if estimate.EstimatedSavings < 0 {
		estimate.EstimatedSavings = 0
	}
	result.Cost = estimate
	return nil
}

func (o *Orchestrator) stepGenerate(ctx context.Context, result *types.WorkflowResult, iacType types.IaCType) error {
	code, err := o.generator.Generate(result.Selection, iacType, "", "")
	if err != nil {
		return err
	}
	result.Code = code

	if o.artifacts != nil {
		if _, err := o.artifacts.Write(code); err != nil {
			log.WithError(err).Warn("Artifact copy not written")
		}
	}
	return nil
}

func (o *Orchestrator) stepDiagram(ctx context.Context, result *types.WorkflowResult) error {
	rendered, err := o.renderer.Render(ctx, result.Selection)
	if err != nil {
		return err
	}
	result.Diagram = rendered
	return nil
}

// persist stores the result and, on successful generation, the initial
// code version. A failed save is surfaced as an UpstreamError; a failed
// version insert is logged only, since the result itself is stored.
func (o *Orchestrator) persist(ctx context.Context, result *types.WorkflowResult, logger *log.Entry) error {
	if o.store == nil {
		return nil
	}
	if err := o.store.SaveWorkflow(ctx, result); err != nil {
		logger.WithError(err).Error("Workflow result not persisted")
		return &types.UpstreamError{Service: "workflow store", Err: err}
	}
	if result.Success && result.Code != nil {
		_, err := o.store.AppendCodeVersion(ctx, result.WorkflowID, result.Code.Code, types.ModifiedByUser, "Initial generation")
		if err != nil {
			logger.WithError(err).Error("Initial code version not persisted")
		}
	}
	return nil
}
