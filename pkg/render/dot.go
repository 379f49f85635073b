package render

import (
	"fmt"
	"strings"

	"github.com/campusworks/parkgraph/pkg/graph"
)

// DOT renders the graph in Graphviz dot syntax: two rank clusters, one per
// node class, with undirected permission edges between them. Node and edge
// order is deterministic so diffs between exports stay meaningful.
func DOT(snap *graph.Snapshot) string {
	var b strings.Builder
	b.WriteString("graph parkgraph {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box];\n")

	b.WriteString("  subgraph cluster_passes {\n")
	b.WriteString("    label=\"passes\";\n")
	for _, pass := range sortedKeys(snap.Passes) {
		fmt.Fprintf(&b, "    %s;\n", quote(pass))
	}
	b.WriteString("  }\n")

	b.WriteString("  subgraph cluster_lots {\n")
	b.WriteString("    label=\"lots\";\n")
	b.WriteString("    node [shape=ellipse];\n")
	for _, lot := range sortedKeys(snap.Lots) {
		fmt.Fprintf(&b, "    %s;\n", quote(lot))
	}
	b.WriteString("  }\n")

	for _, pass := range sortedKeys(snap.Passes) {
		for _, lot := range snap.Passes[pass] {
			fmt.Fprintf(&b, "  %s -- %s;\n", quote(pass), quote(lot))
		}
	}
	b.WriteString("}\n")
	return b.String()
}

func quote(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `\"`) + `"`
}
