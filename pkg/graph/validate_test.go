package graph

import (
	"reflect"
	"strings"
	"testing"
)

func TestValidateCleanGraph(t *testing.T) {
	s := NewStore()
	s.AddEdge("A", "LotA1")
	s.AddEdge("B", "LotB1")

	report := s.Validate()
	if !report.Clean() {
		t.Errorf("expected clean report, got %+v", report)
	}
	if report.Stats.Passes != 2 || report.Stats.Lots != 2 || report.Stats.Edges != 2 {
		t.Errorf("stats = %+v", report.Stats)
	}
	if !strings.Contains(report.Text(), "no isolated nodes") {
		t.Errorf("text output missing clean marker: %q", report.Text())
	}
}

func TestValidateIsolatedNodes(t *testing.T) {
	s := NewStore()
	s.AddEdge("A", "LotA1")
	s.AddPass("Visitor")
	s.AddLot("Overflow")
	s.AddPass("Evening")

	report := s.Validate()
	if report.Clean() {
		t.Fatal("expected findings")
	}
	if !reflect.DeepEqual(report.IsolatedPasses, []string{"Evening", "Visitor"}) {
		t.Errorf("isolated passes = %v", report.IsolatedPasses)
	}
	if !reflect.DeepEqual(report.IsolatedLots, []string{"Overflow"}) {
		t.Errorf("isolated lots = %v", report.IsolatedLots)
	}

	text := report.Text()
	if !strings.Contains(text, "isolated pass: Visitor") || !strings.Contains(text, "isolated lot: Overflow") {
		t.Errorf("text output missing findings: %q", text)
	}
}

func TestValidateDoesNotMutate(t *testing.T) {
	s := NewStore()
	s.AddEdge("A", "LotA1")
	before := s.Version()
	s.Validate()
	if s.Version() != before {
		t.Error("Validate advanced the store version")
	}
}
