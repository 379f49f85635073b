package render

import (
	"strings"
	"testing"

	"github.com/campusworks/parkgraph/pkg/graph"
)

func renderFixture(t *testing.T) *graph.Snapshot {
	t.Helper()
	s := graph.NewStore()
	pairs := [][2]string{
		{"C", "LotC1"},
		{"C", "LotA2"},
		{"C", "LibraryGarage"},
		{"A", "LotA1"},
	}
	for _, p := range pairs {
		if err := s.AddEdge(p[0], p[1]); err != nil {
			t.Fatalf("AddEdge failed: %v", err)
		}
	}
	if err := s.AddPass("F"); err != nil {
		t.Fatalf("AddPass failed: %v", err)
	}
	if err := s.AddLot("Overflow"); err != nil {
		t.Fatalf("AddLot failed: %v", err)
	}
	return s.Snapshot()
}

func TestTextListing(t *testing.T) {
	out := Text(renderFixture(t))

	if !strings.Contains(out, "C -> LibraryGarage, LotA2, LotC1") {
		t.Errorf("missing adjacency line in:\n%s", out)
	}
	if !strings.Contains(out, "F -> (none)") {
		t.Errorf("missing grantless pass line in:\n%s", out)
	}
	if !strings.Contains(out, "unreachable lots: Overflow") {
		t.Errorf("missing unreachable lot line in:\n%s", out)
	}
	if !strings.Contains(out, "passes=3 lots=5 edges=4") {
		t.Errorf("missing stats footer in:\n%s", out)
	}

	// Pass order is sorted: A before C before F.
	if strings.Index(out, "A ") > strings.Index(out, "C ") {
		t.Error("passes out of order")
	}
}

func TestTextDeterminism(t *testing.T) {
	snap := renderFixture(t)
	if Text(snap) != Text(snap) {
		t.Error("repeated renders differ")
	}
}

func TestDOTOutput(t *testing.T) {
	out := DOT(renderFixture(t))

	if !strings.HasPrefix(out, "graph parkgraph {") {
		t.Errorf("unexpected opening: %q", out[:40])
	}
	for _, want := range []string{
		`subgraph cluster_passes`,
		`subgraph cluster_lots`,
		`"C";`,
		`"LibraryGarage";`,
		`"C" -- "LibraryGarage";`,
		`"C" -- "LotA2";`,
		`"A" -- "LotA1";`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "}") {
		t.Error("output not closed")
	}
}

func TestDOTQuoting(t *testing.T) {
	s := graph.NewStore()
	if err := s.AddEdge(`Team "A"`, "Lot 1"); err != nil {
		t.Fatalf("AddEdge failed: %v", err)
	}
	out := DOT(s.Snapshot())
	if !strings.Contains(out, `"Team \"A\"" -- "Lot 1";`) {
		t.Errorf("quotes not escaped in:\n%s", out)
	}
}
