package graph

import (
	"fmt"
	"strings"
)

// ValidationReport captures structural findings about a graph. Isolated
// nodes are reported as data, not errors: a pass with no lots is legal but
// usually means the source dataset is incomplete.
type ValidationReport struct {
	Stats          Stats    `json:"stats"`
	IsolatedPasses []string `json:"isolated_passes"`
	IsolatedLots   []string `json:"isolated_lots"`
}

// Clean reports whether validation found nothing to flag.
func (r *ValidationReport) Clean() bool {
	return len(r.IsolatedPasses) == 0 && len(r.IsolatedLots) == 0
}

// Text renders the report as a human-readable block for CLI output.
func (r *ValidationReport) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "passes=%d lots=%d edges=%d\n", r.Stats.Passes, r.Stats.Lots, r.Stats.Edges)
	if r.Clean() {
		b.WriteString("no isolated nodes\n")
		return b.String()
	}
	for _, id := range r.IsolatedPasses {
		fmt.Fprintf(&b, "isolated pass: %s\n", id)
	}
	for _, id := range r.IsolatedLots {
		fmt.Fprintf(&b, "isolated lot: %s\n", id)
	}
	return b.String()
}

// Validate walks the store and reports isolated nodes and totals. The store
// is not modified.
func (s *Store) Validate() *ValidationReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report := &ValidationReport{
		Stats: Stats{
			Passes:     len(s.passLots),
			Lots:       len(s.lotPasses),
			Edges:      s.edges,
			Duplicates: s.dupes,
			Version:    s.version,
		},
		IsolatedPasses: []string{},
		IsolatedLots:   []string{},
	}

	for key, lots := range s.passLots {
		if len(lots) == 0 {
			report.IsolatedPasses = append(report.IsolatedPasses, s.displayLocked(key))
		}
	}
	for key, passes := range s.lotPasses {
		if len(passes) == 0 {
			report.IsolatedLots = append(report.IsolatedLots, s.displayLocked(key))
		}
	}
	SortIDs(report.IsolatedPasses)
	SortIDs(report.IsolatedLots)
	return report
}
