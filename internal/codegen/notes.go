package codegen

import "github.com/infrax/infra-engine/internal/types"

// Note rules are fixed strings keyed by which categories appear in the
// selection. Same service list gives the same notes in the same order
// (insertion order of services, one note set per category).

var securityRules = map[types.ServiceCategory][]string{
	types.CategoryCompute: {
		"Use IAM roles or managed identities instead of static credentials",
	},
	types.CategoryStorage: {
		"Enable encryption at rest for all object storage",
		"Block public access unless explicitly required",
	},
	types.CategoryDatabase: {
		"Restrict database ingress to application subnets only",
		"Enable automated backups and point-in-time recovery",
	},
	types.CategoryNetworking: {
		"Enable flow logs on the network",
		"Apply least-privilege rules on all security groups",
	},
	types.CategoryContainer: {
		"Scan container images before deployment",
	},
}

var optimizationRules = map[types.ServiceCategory][]string{
	types.CategoryCompute: {
		"Right-size instance types based on observed workload",
		"Use auto-scaling for variable workloads",
	},
	types.CategoryStorage: {
		"Apply lifecycle policies to move cold data to cheaper tiers",
	},
	types.CategoryDatabase: {
		"Right-size the database instance class; start small and scale up",
	},
	types.CategoryNetworking: {
		"Serve static content through a CDN to reduce egress",
	},
	types.CategoryContainer: {
		"Enable cluster autoscaling to match node count to demand",
	},
}

func securityNotes(selection *types.ServiceSelection) []string {
	return collectNotes(selection, securityRules, nil)
}

func optimizationNotes(selection *types.ServiceSelection) []string {
	// Dropped requirements surface here so a partially resolved plan is
	// visible in the generated output's notes.
	return collectNotes(selection, optimizationRules, selection.Omissions)
}

func collectNotes(selection *types.ServiceSelection, rules map[types.ServiceCategory][]string, extra []string) []string {
	notes := []string{}
	seen := map[types.ServiceCategory]bool{}
	for _, svc := range selection.Services {
		if seen[svc.Category] {
			continue
		}
		seen[svc.Category] = true
		notes = append(notes, rules[svc.Category]...)
	}
	for _, omission := range extra {
		notes = append(notes, "Omitted from generation: "+omission)
	}
	return notes
}
