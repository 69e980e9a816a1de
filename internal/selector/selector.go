// Package selector maps abstract service categories to concrete
// provider-specific resource types using static lookup tables.
package selector

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/infrax/infra-engine/internal/llm"
	"github.com/infrax/infra-engine/internal/types"
)

// mapping is one (provider, category) entry in the static resolution table
type mapping struct {
	ResourceType string
	DisplayName  string
	Defaults     map[string]string
}

// resolutionTable is fixed: identical input always yields identical output.
var resolutionTable = map[types.CloudProvider]map[types.ServiceCategory]mapping{
	types.ProviderAWS: {
		types.CategoryCompute: {
			ResourceType: "aws_instance",
			DisplayName:  "EC2 Instance",
			Defaults:     map[string]string{"instance_type": "t3.micro"},
		},
		types.CategoryStorage: {
			ResourceType: "aws_s3_bucket",
			DisplayName:  "S3 Bucket",
			Defaults:     map[string]string{},
		},
		types.CategoryDatabase: {
			ResourceType: "aws_db_instance",
			DisplayName:  "RDS Instance",
			Defaults:     map[string]string{"engine": "postgres", "instance_class": "db.t3.micro"},
		},
		types.CategoryNetworking: {
			ResourceType: "aws_vpc",
			DisplayName:  "VPC",
			Defaults:     map[string]string{"cidr_block": "10.0.0.0/16"},
		},
		types.CategoryContainer: {
			ResourceType: "aws_ecs_service",
			DisplayName:  "ECS Service",
			Defaults:     map[string]string{"container_port": "80", "cpu": "256", "memory": "512"},
		},
	},
	types.ProviderAzure: {
		types.CategoryCompute: {
			ResourceType: "azurerm_linux_virtual_machine",
			DisplayName:  "Linux Virtual Machine",
			Defaults:     map[string]string{"vm_size": "Standard_B2s"},
		},
		types.CategoryStorage: {
			ResourceType: "azurerm_storage_account",
			DisplayName:  "Storage Account",
			Defaults:     map[string]string{"account_tier": "Standard"},
		},
		types.CategoryDatabase: {
			ResourceType: "azurerm_postgresql_flexible_server",
			DisplayName:  "PostgreSQL Flexible Server",
			Defaults:     map[string]string{"engine": "postgres", "instance_class": "B_Standard_B1ms"},
		},
		types.CategoryNetworking: {
			ResourceType: "azurerm_virtual_network",
			DisplayName:  "Virtual Network",
			Defaults:     map[string]string{"cidr_block": "10.0.0.0/16"},
		},
		types.CategoryContainer: {
			ResourceType: "azurerm_kubernetes_cluster",
			DisplayName:  "AKS Cluster",
			Defaults:     map[string]string{"node_count": "2"},
		},
	},
	types.ProviderGCP: {
		types.CategoryCompute: {
			ResourceType: "google_compute_instance",
			DisplayName:  "Compute Engine Instance",
			Defaults:     map[string]string{"instance_type": "e2-medium"},
		},
		types.CategoryStorage: {
			ResourceType: "google_storage_bucket",
			DisplayName:  "Cloud Storage Bucket",
			Defaults:     map[string]string{"storage_class": "STANDARD"},
		},
		types.CategoryDatabase: {
			ResourceType: "google_sql_database_instance",
			DisplayName:  "Cloud SQL Instance",
			Defaults:     map[string]string{"engine": "POSTGRES_15", "instance_class": "db-f1-micro"},
		},
		types.CategoryNetworking: {
			ResourceType: "google_compute_network",
			DisplayName:  "VPC Network",
			Defaults:     map[string]string{},
		},
		types.CategoryContainer: {
			ResourceType: "google_container_cluster",
			DisplayName:  "GKE Cluster",
			Defaults:     map[string]string{"node_count": "2"},
		},
	},
}

// Selector resolves requirements to concrete resources. The completer is
// optional; when present it contributes a best-effort selection rationale.
type Selector struct {
	completer llm.Completer
}

// New creates a selector. completer may be nil.
func New(completer llm.Completer) *Selector {
	return &Selector{completer: completer}
}

// Resolve maps a single requirement to a concrete resource. Unknown
// categories fail with UnsupportedServiceError naming the type and provider.
func Resolve(req types.ServiceRequirement, provider types.CloudProvider) (types.ResolvedService, error) {
	table, ok := resolutionTable[provider]
	if !ok {
		return types.ResolvedService{}, &types.UnsupportedServiceError{Type: req.Type, Provider: provider}
	}
	m, ok := table[req.Type]
	if !ok {
		return types.ResolvedService{}, &types.UnsupportedServiceError{Type: req.Type, Provider: provider}
	}

	attrs := make(map[string]string, len(m.Defaults))
	for k, v := range m.Defaults {
		attrs[k] = v
	}

	// Requirement attributes override defaults; missing ones keep the
	// fixed constants so output stays deterministic.
	if req.InstanceType != "" {
		attrs["instance_type"] = req.InstanceType
	}
	if req.VMSize != "" {
		attrs["vm_size"] = req.VMSize
	}
	if req.Engine != "" {
		attrs["engine"] = req.Engine
	}
	if req.InstanceClass != "" {
		attrs["instance_class"] = req.InstanceClass
	}
	if req.ContainerPort > 0 {
		attrs["container_port"] = strconv.Itoa(req.ContainerPort)
	}
	if req.CPU != "" {
		attrs["cpu"] = req.CPU
	}
	if req.Memory != "" {
		attrs["memory"] = req.Memory
	}
	if req.NodeCount > 0 {
		attrs["node_count"] = strconv.Itoa(req.NodeCount)
	}

	return types.ResolvedService{
		Category:     req.Type,
		ResourceType: m.ResourceType,
		DisplayName:  m.DisplayName,
		Attributes:   attrs,
	}, nil
}

// Select resolves every requirement in the plan. Unsupported categories are
// dropped into Omissions rather than failing the pipeline (best-effort
// degrade); the omission log feeds the generator's notes.
func (s *Selector) Select(ctx context.Context, plan *types.InfrastructurePlan) (*types.ServiceSelection, error) {
	selection := &types.ServiceSelection{
		Provider: plan.CloudProvider,
		Region:   plan.Region,
	}

	for _, req := range plan.Services {
		resolved, err := Resolve(req, plan.CloudProvider)
		if err != nil {
			log.WithFields(log.Fields{
				"type":     req.Type,
				"provider": plan.CloudProvider,
			}).Warn("Dropping unsupported service requirement")
			selection.Omissions = append(selection.Omissions, err.Error())
			continue
		}
		selection.Services = append(selection.Services, resolved)
	}

	if s.completer != nil && len(selection.Services) > 0 {
		selection.Rationale = s.refine(ctx, selection)
	}

	return selection, nil
}

// refine asks the model for a short rationale. Failures are silent: the
// rationale is informational and never affects the resolved set.
func (s *Selector) refine(ctx context.Context, selection *types.ServiceSelection) string {
	var names []string
	for _, svc := range selection.Services {
		names = append(names, svc.ResourceType)
	}

	prompt := fmt.Sprintf(
		"You are a %s solutions architect. In two sentences, explain why these resources fit together for a deployment in %s: %s",
		strings.ToUpper(string(selection.Provider)), selection.Region, strings.Join(names, ", "),
	)

	rationale, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		log.WithError(err).Debug("Selection refinement skipped")
		return ""
	}
	return strings.TrimSpace(rationale)
}
