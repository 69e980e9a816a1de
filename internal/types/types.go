// Package types defines core types used across the orchestration engine
package types

import "time"

// CloudProvider identifies a supported cloud provider
type CloudProvider string

const (
	ProviderAWS   CloudProvider = "aws"
	ProviderAzure CloudProvider = "azure"
	ProviderGCP   CloudProvider = "gcp"
)

// Valid reports whether the provider is one of the supported clouds
func (p CloudProvider) Valid() bool {
	switch p {
	case ProviderAWS, ProviderAzure, ProviderGCP:
		return true
	}
	return false
}

// IaCType identifies the infrastructure-as-code flavor to generate
type IaCType string

const (
	IaCTerraform      IaCType = "terraform"
	IaCPulumi         IaCType = "pulumi"
	IaCCloudFormation IaCType = "cloudformation"
)

// ServiceCategory is an abstract infrastructure need before resolution
type ServiceCategory string

const (
	CategoryCompute    ServiceCategory = "compute"
	CategoryStorage    ServiceCategory = "storage"
	CategoryDatabase   ServiceCategory = "database"
	CategoryNetworking ServiceCategory = "networking"
	CategoryContainer  ServiceCategory = "container"
)

// WorkflowRequest is the input to one end-to-end pipeline execution.
// Exactly one of Prompt/RepoURL must be non-empty.
type WorkflowRequest struct {
	Prompt   string  `json:"prompt,omitempty"`
	Location string  `json:"location,omitempty"`
	RepoURL  string  `json:"repo_url,omitempty"`
	IaCType  IaCType `json:"iac_type,omitempty"` // defaults to terraform
}

// ServiceRequirement is one abstract need identified by the planner.
// Attribute fields are optional; the selector substitutes fixed defaults.
type ServiceRequirement struct {
	Type          ServiceCategory `json:"type"`
	InstanceType  string          `json:"instance_type,omitempty"`
	Engine        string          `json:"engine,omitempty"`
	InstanceClass string          `json:"instance_class,omitempty"`
	ContainerPort int             `json:"container_port,omitempty"`
	CPU           string          `json:"cpu,omitempty"`
	Memory        string          `json:"memory,omitempty"`
	NodeCount     int             `json:"node_count,omitempty"`
	VMSize        string          `json:"vm_size,omitempty"`
}

// InfrastructurePlan is the planner's structured output
type InfrastructurePlan struct {
	CloudProvider     CloudProvider        `json:"cloud_provider"`
	Region            string               `json:"region"`
	LocationRationale string               `json:"location_rationale"`
	Services          []ServiceRequirement `json:"services"`
}

// ResolvedService is a concrete provider resource derived from a requirement
type ResolvedService struct {
	Category     ServiceCategory   `json:"category"`
	ResourceType string            `json:"resource_type"` // e.g. aws_instance
	DisplayName  string            `json:"display_name"`  // e.g. EC2 Instance
	Attributes   map[string]string `json:"attributes,omitempty"`
}

// ServiceSelection holds all resolved services for one plan
type ServiceSelection struct {
	Provider  CloudProvider     `json:"provider"`
	Region    string            `json:"region"`
	Services  []ResolvedService `json:"services"`
	Omissions []string          `json:"omissions,omitempty"` // requirements dropped as unsupported
	Rationale string            `json:"rationale,omitempty"` // optional LLM refinement note
}

// MonthlyProjection is one point in a predictive cost series
type MonthlyProjection struct {
	Month      int     `json:"month"`
	Cost       float64 `json:"cost"`
	Cumulative float64 `json:"cumulative"`
}

// UsagePattern shapes a predictive cost projection
type UsagePattern string

const (
	PatternSteady    UsagePattern = "steady"
	PatternGrowing   UsagePattern = "growing"
	PatternSeasonal  UsagePattern = "seasonal"
	PatternDeclining UsagePattern = "declining"
)

// CostEstimate is the cost estimator's output
type CostEstimate struct {
	BaseMonthlyCost           float64             `json:"base_monthly_cost"`
	EstimatedSavings          float64             `json:"estimated_savings"`
	Currency                  string              `json:"currency"`
	CostBreakdown             map[string]float64  `json:"cost_breakdown"`
	MonthlyProjections        []MonthlyProjection `json:"monthly_projections,omitempty"`
	OptimizationOpportunities []string            `json:"optimization_opportunities"`
}

// GeneratedCode is the code generator's output
type GeneratedCode struct {
	IaCType           IaCType  `json:"iac_type"`
	Code              string   `json:"code"`
	Filename          string   `json:"filename"`
	SecurityNotes     []string `json:"security_notes"`
	OptimizationNotes []string `json:"optimization_notes"`
}

// ModifiedBy identifies who produced a code version
type ModifiedBy string

const (
	ModifiedByUser    ModifiedBy = "user"
	ModifiedByAdvisor ModifiedBy = "ai-advisor"
)

// CodeVersion is one immutable entry in a workflow's code history.
// Version numbers start at 1 and increase by 1 with no gaps.
type CodeVersion struct {
	WorkflowID        string     `json:"workflow_id"`
	Version           int        `json:"version"`
	Code              string     `json:"code"`
	ModifiedBy        ModifiedBy `json:"modified_by"`
	ChangeDescription string     `json:"change_description,omitempty"`
	Timestamp         time.Time  `json:"timestamp"`
}

// DiagramResult is the diagram generator's output
type DiagramResult struct {
	MermaidDiagram      string            `json:"mermaid_diagram"`
	ServiceDescriptions map[string]string `json:"service_descriptions"`
	HTMLPreview         string            `json:"html_preview,omitempty"`
}

// StepState tracks the outcome of one pipeline step
type StepState string

const (
	StepCompleted StepState = "completed"
	StepFailed    StepState = "failed"
	StepSkipped   StepState = "skipped"
)

// Pipeline step keys, in execution order
const (
	StepPlanning          = "1_planning"
	StepServiceSelection  = "2_service_selection"
	StepCostEstimation    = "3_cost_estimation"
	StepIaCGeneration     = "4_iac_generation"
	StepDiagramGeneration = "5_diagram_generation"
)

// StepStatus records per-step state for partially completed workflows
type StepStatus struct {
	State StepState `json:"state"`
	Error string    `json:"error,omitempty"`
}

// WorkflowSummary combines the most commonly displayed workflow fields
type WorkflowSummary struct {
	WorkflowID        string        `json:"workflow_id"`
	Success           bool          `json:"success"`
	Timestamp         time.Time     `json:"timestamp"`
	CloudProvider     CloudProvider `json:"cloud_provider,omitempty"`
	Region            string        `json:"region,omitempty"`
	LocationRationale string        `json:"location_rationale,omitempty"`
	IaCType           IaCType       `json:"iac_type,omitempty"`
	ServicesCount     int           `json:"services_count"`
	BaseMonthlyCost   float64       `json:"base_monthly_cost"`
	EstimatedSavings  float64       `json:"estimated_savings"`
	CodeFile          string        `json:"code_file,omitempty"`
	FailedStep        string        `json:"failed_step,omitempty"`
	Error             string        `json:"error,omitempty"`
}

// WorkflowResult is the aggregate root assembled by the orchestrator.
// Immutable once stored, except for the code version history.
type WorkflowResult struct {
	WorkflowID string                `json:"workflow_id"`
	Success    bool                  `json:"success"`
	Timestamp  time.Time             `json:"timestamp"`
	Input      WorkflowRequest       `json:"input"`
	StepStates map[string]StepStatus `json:"step_states"`

	Plan      *InfrastructurePlan `json:"plan,omitempty"`
	Selection *ServiceSelection   `json:"service_selection,omitempty"`
	Cost      *CostEstimate       `json:"cost_estimate,omitempty"`
	Code      *GeneratedCode      `json:"generated_code,omitempty"`
	Diagram   *DiagramResult      `json:"diagram,omitempty"`

	FailedStep string `json:"failed_step,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Summary derives the list/display view from a full result
func (w *WorkflowResult) Summary() WorkflowSummary {
	s := WorkflowSummary{
		WorkflowID: w.WorkflowID,
		Success:    w.Success,
		Timestamp:  w.Timestamp,
		FailedStep: w.FailedStep,
		Error:      w.Error,
	}
	if w.Plan != nil {
		s.CloudProvider = w.Plan.CloudProvider
		s.Region = w.Plan.Region
		s.LocationRationale = w.Plan.LocationRationale
	}
	if w.Selection != nil {
		s.ServicesCount = len(w.Selection.Services)
	}
	if w.Cost != nil {
		s.BaseMonthlyCost = w.Cost.BaseMonthlyCost
		s.EstimatedSavings = w.Cost.EstimatedSavings
	}
	if w.Code != nil {
		s.IaCType = w.Code.IaCType
		s.CodeFile = w.Code.Filename
	}
	return s
}

// Severity classifies an advisor finding
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Finding is one issue reported by the advisor's code analysis
type Finding struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Resource string   `json:"resource,omitempty"`
}
