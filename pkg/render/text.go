// Package render turns graph snapshots into displayable artifacts. The
// daemon has no drawing surface of its own; DOT output is handed to Graphviz
// or the web UI, text output goes straight to terminals.
package render

import (
	"fmt"
	"strings"

	"github.com/campusworks/parkgraph/pkg/graph"
)

// Text renders the pass -> lots adjacency as an aligned listing with a stats
// footer. Passes and lots appear in the same order on every call.
func Text(snap *graph.Snapshot) string {
	passes := sortedKeys(snap.Passes)

	width := 0
	for _, pass := range passes {
		if len(pass) > width {
			width = len(pass)
		}
	}

	var b strings.Builder
	for _, pass := range passes {
		lots := snap.Passes[pass]
		if len(lots) == 0 {
			fmt.Fprintf(&b, "%-*s -> (none)\n", width, pass)
			continue
		}
		fmt.Fprintf(&b, "%-*s -> %s\n", width, pass, strings.Join(lots, ", "))
	}

	lonely := lotsWithoutPasses(snap)
	if len(lonely) > 0 {
		fmt.Fprintf(&b, "unreachable lots: %s\n", strings.Join(lonely, ", "))
	}
	fmt.Fprintf(&b, "passes=%d lots=%d edges=%d\n",
		snap.Stats.Passes, snap.Stats.Lots, snap.Stats.Edges)
	return b.String()
}

func lotsWithoutPasses(snap *graph.Snapshot) []string {
	var lonely []string
	for lot, passes := range snap.Lots {
		if len(passes) == 0 {
			lonely = append(lonely, lot)
		}
	}
	graph.SortIDs(lonely)
	return lonely
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	graph.SortIDs(keys)
	return keys
}
