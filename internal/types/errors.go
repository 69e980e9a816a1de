package types

import "fmt"

// ValidationError reports a bad or missing request field, caught before the
// orchestrator is invoked. Mapped to HTTP 422.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// PlanningError reports a model response that could not be parsed into an
// infrastructure plan
type PlanningError struct {
	Reason string
}

func (e *PlanningError) Error() string {
	return fmt.Sprintf("planning failed: %s", e.Reason)
}

// UnsupportedServiceError reports a service category with no resource mapping
// for the given provider
type UnsupportedServiceError struct {
	Type     ServiceCategory
	Provider CloudProvider
}

func (e *UnsupportedServiceError) Error() string {
	return fmt.Sprintf("unsupported service type %q for provider %q", e.Type, e.Provider)
}

// UnsupportedCombinationError reports a (provider, IaC type) pair the code
// generator cannot render
type UnsupportedCombinationError struct {
	Provider CloudProvider
	IaCType  IaCType
}

func (e *UnsupportedCombinationError) Error() string {
	return fmt.Sprintf("unsupported combination: provider %q with IaC type %q", e.Provider, e.IaCType)
}

// InvalidCostParametersError reports out-of-range projection parameters.
// These are rejected, never clamped.
type InvalidCostParametersError struct {
	Parameter string
	Message   string
}

func (e *InvalidCostParametersError) Error() string {
	return fmt.Sprintf("invalid cost parameter %s: %s", e.Parameter, e.Message)
}

// UpstreamError reports an unavailable external collaborator (model endpoint
// or store). Mapped to HTTP 502, or 504 when Timeout is set.
type UpstreamError struct {
	Service string
	Timeout bool
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s timed out: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
