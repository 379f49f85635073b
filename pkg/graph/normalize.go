package graph

import (
	"sort"
	"strings"
)

// Normalize produces the canonical form of an identifier: surrounding
// whitespace stripped, then case-folded. Every map key in the store is
// canonical; display casing is tracked separately.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// SortIDs orders display-form identifiers case-insensitively. Identifiers
// that fold to the same string fall back to an exact compare so the order is
// total and runs are reproducible.
func SortIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		return lessID(ids[i], ids[j])
	})
}

func lessID(a, b string) bool {
	fa, fb := strings.ToLower(a), strings.ToLower(b)
	if fa == fb {
		return a < b
	}
	return fa < fb
}

// sortEdges orders edges by pass then lot, same collation as SortIDs.
func sortEdges(edges []Edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].PassID != edges[j].PassID {
			return lessID(edges[i].PassID, edges[j].PassID)
		}
		return lessID(edges[i].LotID, edges[j].LotID)
	})
}
