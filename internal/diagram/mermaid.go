// Package diagram renders Mermaid flowcharts for resolved service
// selections. Output must always be syntactically valid Mermaid: labels
// are entity-escaped so bracket and quote balance holds for any input.
package diagram

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/infrax/infra-engine/internal/llm"
	"github.com/infrax/infra-engine/internal/types"
)

// fallbackDescriptions guarantee every node has some description even
// when the model is unreachable
var fallbackDescriptions = map[types.ServiceCategory]string{
	types.CategoryCompute:    "Runs application workloads",
	types.CategoryStorage:    "Stores objects and static assets",
	types.CategoryDatabase:   "Holds relational application data",
	types.CategoryNetworking: "Provides network isolation and routing",
	types.CategoryContainer:  "Runs containerized services",
}

// Renderer builds Mermaid diagrams. The completer is optional and only
// feeds node descriptions; diagram text itself is deterministic.
type Renderer struct {
	completer llm.Completer
}

// New creates a renderer. completer may be nil.
func New(completer llm.Completer) *Renderer {
	return &Renderer{completer: completer}
}

// Render produces the flowchart and per-node descriptions. Description
// generation is best-effort; failures silently fall back to the static
// per-category text.
func (r *Renderer) Render(ctx context.Context, selection *types.ServiceSelection) (*types.DiagramResult, error) {
	nodes := buildNodes(selection)

	var b strings.Builder
	b.WriteString("graph TD\n")
	b.WriteString("    users((\"Users\"))\n")
	for _, n := range nodes {
		b.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", n.id, EscapeLabel(n.label)))
	}
	for _, e := range buildEdges(nodes) {
		b.WriteString(fmt.Sprintf("    %s --> %s\n", e.from, e.to))
	}

	descriptions := r.describe(ctx, nodes)

	result := &types.DiagramResult{
		MermaidDiagram:      b.String(),
		ServiceDescriptions: descriptions,
	}
	result.HTMLPreview = HTMLPreview(result.MermaidDiagram)

	log.WithFields(log.Fields{
		"provider": selection.Provider,
		"nodes":    len(nodes),
	}).Info("Diagram rendered")

	return result, nil
}

type node struct {
	id       string
	label    string
	category types.ServiceCategory
}

type edge struct {
	from string
	to   string
}

func buildNodes(selection *types.ServiceSelection) []node {
	counts := map[types.ServiceCategory]int{}
	nodes := make([]node, 0, len(selection.Services))
	for _, svc := range selection.Services {
		counts[svc.Category]++
		nodes = append(nodes, node{
			id:       fmt.Sprintf("%s_%d", svc.Category, counts[svc.Category]),
			label:    svc.DisplayName,
			category: svc.Category,
		})
	}
	return nodes
}

// buildEdges applies the fixed topology template: users enter through
// networking when present (directly to compute otherwise), compute fans
// out to database and storage, containers sit behind networking and reach
// the database. Anything unconnected stays an isolated node.
func buildEdges(nodes []node) []edge {
	first := map[types.ServiceCategory]string{}
	byCategory := map[types.ServiceCategory][]string{}
	for _, n := range nodes {
		if _, ok := first[n.category]; !ok {
			first[n.category] = n.id
		}
		byCategory[n.category] = append(byCategory[n.category], n.id)
	}

	var edges []edge
	network, hasNetwork := first[types.CategoryNetworking]

	if hasNetwork {
		edges = append(edges, edge{"users", network})
	}

	for _, compute := range byCategory[types.CategoryCompute] {
		if hasNetwork {
			edges = append(edges, edge{network, compute})
		} else {
			edges = append(edges, edge{"users", compute})
		}
	}

	for _, container := range byCategory[types.CategoryContainer] {
		if hasNetwork {
			edges = append(edges, edge{network, container})
		} else {
			edges = append(edges, edge{"users", container})
		}
	}

	// Compute and containers reach data stores
	sources := append([]string{}, byCategory[types.CategoryCompute]...)
	sources = append(sources, byCategory[types.CategoryContainer]...)
	for _, src := range sources {
		for _, db := range byCategory[types.CategoryDatabase] {
			edges = append(edges, edge{src, db})
		}
		for _, store := range byCategory[types.CategoryStorage] {
			edges = append(edges, edge{src, store})
		}
	}

	return edges
}

// EscapeLabel replaces characters significant to Mermaid syntax with
// entity codes so node labels can never unbalance the diagram
func EscapeLabel(label string) string {
	replacer := strings.NewReplacer(
		`"`, "#quot;",
		"[", "#91;",
		"]", "#93;",
		"(", "#40;",
		")", "#41;",
		"|", "#124;",
		"{", "#123;",
		"}", "#125;",
	)
	return replacer.Replace(label)
}

// describe returns a description per node label. One completion covers
// all nodes; on any failure every node keeps its static fallback.
func (r *Renderer) describe(ctx context.Context, nodes []node) map[string]string {
	descriptions := make(map[string]string, len(nodes))
	for _, n := range nodes {
		descriptions[n.label] = fallbackDescriptions[n.category]
	}

	if r.completer == nil || len(nodes) == 0 {
		return descriptions
	}

	var labels []string
	for _, n := range nodes {
		labels = append(labels, n.label)
	}

	prompt := fmt.Sprintf(
		"For each of these cloud services, write one short sentence describing its role in the architecture: %s. "+
			`Respond with ONLY a JSON object mapping service name to description.`,
		strings.Join(labels, ", "),
	)

	raw, err := r.completer.Complete(ctx, prompt)
	if err != nil {
		log.WithError(err).Debug("Diagram descriptions fell back to static text")
		return descriptions
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return descriptions
	}

	var generated map[string]string
	if err := json.Unmarshal([]byte(raw[start:end+1]), &generated); err != nil {
		return descriptions
	}

	for label, desc := range generated {
		if _, known := descriptions[label]; known && strings.TrimSpace(desc) != "" {
			descriptions[label] = strings.TrimSpace(desc)
		}
	}
	return descriptions
}

// HTMLPreview wraps a Mermaid diagram in a standalone page for quick
// viewing outside the dashboard
func HTMLPreview(mermaid string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Infrastructure Diagram</title>
  <script type="module">
    import mermaid from "https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.esm.min.mjs";
    mermaid.initialize({ startOnLoad: true });
  </script>
</head>
<body>
  <pre class="mermaid">
%s
  </pre>
</body>
</html>
`, mermaid)
}
