// Package advisor reviews infrastructure code: a deterministic security
// scan, an HCL syntax check, and model-backed chat and query helpers.
package advisor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/infrax/infra-engine/internal/types"
)

// rule is one pattern the scanner looks for. Patterns run against the
// lowercased document; resourceRe recovers the nearest resource name for
// the finding when it matches.
type rule struct {
	pattern  *regexp.Regexp
	severity types.Severity
	message  string
}

var scanRules = []rule{
	{
		pattern:  regexp.MustCompile(`(password|secret|access_key|api_key)\s*=\s*"[^"$][^"]*"`),
		severity: types.SeverityCritical,
		message:  "Hardcoded credential in configuration; use a secrets manager or variable reference",
	},
	{
		pattern:  regexp.MustCompile(`0\.0\.0\.0/0`),
		severity: types.SeverityHigh,
		message:  "Security rule open to the entire internet (0.0.0.0/0); restrict the CIDR range",
	},
	{
		pattern:  regexp.MustCompile(`acl\s*=\s*"public-read`),
		severity: types.SeverityHigh,
		message:  "Storage bucket allows public reads; remove the public ACL",
	},
	{
		pattern:  regexp.MustCompile(`(encrypted|storage_encrypted)\s*=\s*false`),
		severity: types.SeverityHigh,
		message:  "Encryption at rest is explicitly disabled",
	},
	{
		pattern:  regexp.MustCompile(`http://`),
		severity: types.SeverityMedium,
		message:  "Plain HTTP endpoint referenced; prefer HTTPS",
	},
	{
		pattern:  regexp.MustCompile(`versioning\s*\{\s*enabled\s*=\s*false`),
		severity: types.SeverityLow,
		message:  "Bucket versioning disabled; enable it to protect against accidental deletion",
	},
	{
		pattern:  regexp.MustCompile(`deletion_protection\s*=\s*false`),
		severity: types.SeverityLow,
		message:  "Deletion protection disabled on a stateful resource",
	},
}

var severityWeights = map[types.Severity]int{
	types.SeverityCritical: 30,
	types.SeverityHigh:     20,
	types.SeverityMedium:   10,
	types.SeverityLow:      5,
}

var resourceRe = regexp.MustCompile(`resource\s+"([a-z0-9_]+)"\s+"([a-z0-9_-]+)"`)

// Analyze runs the deterministic security scan over the document. Each
// rule fires at most once; findings keep rule order. The score starts at
// 100 and loses weight per finding, floored at 0.
func Analyze(code string) ([]types.Finding, int) {
	lowered := strings.ToLower(code)

	var findings []types.Finding
	score := 100
	for _, r := range scanRules {
		loc := r.pattern.FindStringIndex(lowered)
		if loc == nil {
			continue
		}
		findings = append(findings, types.Finding{
			Severity: r.severity,
			Message:  r.message,
			Resource: nearestResource(lowered, loc[0]),
		})
		score -= severityWeights[r.severity]
	}
	if score < 0 {
		score = 0
	}
	return findings, score
}

// nearestResource returns the "type.name" address of the last resource
// block opened before offset, or "" when the match precedes any resource
func nearestResource(code string, offset int) string {
	matches := resourceRe.FindAllStringSubmatchIndex(code[:offset], -1)
	if len(matches) == 0 {
		return ""
	}
	m := matches[len(matches)-1]
	return code[m[2]:m[3]] + "." + code[m[4]:m[5]]
}

// ValidateHCL parses the document as Terraform and converts any
// diagnostics to findings. An empty slice means the document parsed.
func ValidateHCL(code string) []types.Finding {
	parser := hclparse.NewParser()
	_, diags := parser.ParseHCL([]byte(code), "main.tf")

	var findings []types.Finding
	for _, d := range diags {
		severity := types.SeverityHigh
		if d.Severity == hcl.DiagWarning {
			severity = types.SeverityLow
		}
		msg := d.Summary
		if d.Detail != "" {
			msg = fmt.Sprintf("%s: %s", d.Summary, d.Detail)
		}
		resource := ""
		if d.Subject != nil {
			resource = fmt.Sprintf("line %d", d.Subject.Start.Line)
		}
		findings = append(findings, types.Finding{
			Severity: severity,
			Message:  msg,
			Resource: resource,
		})
	}
	return findings
}
