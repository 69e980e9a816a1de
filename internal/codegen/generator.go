// Package codegen renders infrastructure-as-code text from a resolved
// service selection. Rendering is straight string assembly keyed by
// (provider, service category, IaC type) and is byte-deterministic for a
// fixed selection.
package codegen

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/infrax/infra-engine/internal/types"
)

// builder renders the full document for one (provider, iacType) pair
type builder func(selection *types.ServiceSelection, environment, projectName string) string

// dispatch is the fixed table of supported combinations. Anything absent
// fails fast with UnsupportedCombinationError before any text is produced.
var dispatch = map[types.IaCType]map[types.CloudProvider]builder{
	types.IaCTerraform: {
		types.ProviderAWS:   awsTerraform,
		types.ProviderAzure: azureTerraform,
		types.ProviderGCP:   gcpTerraform,
	},
	types.IaCPulumi: {
		types.ProviderAWS:   awsPulumi,
		types.ProviderAzure: azurePulumi,
		types.ProviderGCP:   gcpPulumi,
	},
	types.IaCCloudFormation: {
		types.ProviderAWS: awsCloudFormation,
	},
}

var extensions = map[types.IaCType]string{
	types.IaCTerraform:      "tf",
	types.IaCPulumi:         "py",
	types.IaCCloudFormation: "yaml",
}

// Generator renders IaC documents. The clock only feeds the artifact
// filename; generated code text never embeds it.
type Generator struct {
	now func() time.Time
}

// New creates a generator using the wall clock
func New() *Generator {
	return &Generator{now: time.Now}
}

// NewWithClock creates a generator with a fixed clock, for tests
func NewWithClock(now func() time.Time) *Generator {
	return &Generator{now: now}
}

// Generate renders the IaC document for the selection. Unsupported
// (provider, iacType) combinations fail before any text is produced.
func (g *Generator) Generate(selection *types.ServiceSelection, iacType types.IaCType, environment, projectName string) (*types.GeneratedCode, error) {
	providers, ok := dispatch[iacType]
	if !ok {
		return nil, &types.UnsupportedCombinationError{Provider: selection.Provider, IaCType: iacType}
	}
	build, ok := providers[selection.Provider]
	if !ok {
		return nil, &types.UnsupportedCombinationError{Provider: selection.Provider, IaCType: iacType}
	}

	if environment == "" {
		environment = "dev"
	}
	if projectName == "" {
		projectName = "infrax-project"
	}

	code := build(selection, environment, projectName)

	filename := fmt.Sprintf("%s_%s_%s.%s",
		selection.Provider, iacType,
		g.now().UTC().Format("20060102_150405"),
		extensions[iacType],
	)

	result := &types.GeneratedCode{
		IaCType:           iacType,
		Code:              code,
		Filename:          filename,
		SecurityNotes:     securityNotes(selection),
		OptimizationNotes: optimizationNotes(selection),
	}

	log.WithFields(log.Fields{
		"provider": selection.Provider,
		"iac_type": iacType,
		"services": len(selection.Services),
		"filename": filename,
	}).Info("Generated infrastructure code")

	return result, nil
}

// resourceName yields stable per-category names (compute_1, compute_2, ...)
// so repeated categories never collide
type nameCounter map[types.ServiceCategory]int

func (n nameCounter) next(category types.ServiceCategory) string {
	n[category]++
	return fmt.Sprintf("%s_%d", category, n[category])
}
