package ingest

import (
	"context"
	"reflect"
	"testing"

	"github.com/campusworks/parkgraph/pkg/graph"
)

func TestLoaderAppliesRecords(t *testing.T) {
	src := NewMapSource("test", map[string][]string{
		"A": {"LotA1", "LotA2"},
		"B": {"LotB1"},
		"F": {},
	})
	store := graph.NewStore()

	summary, err := NewLoader(src).Load(context.Background(), store)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if summary.Loaded != 3 {
		t.Errorf("loaded = %d, want 3", summary.Loaded)
	}
	if summary.Registered != 1 {
		t.Errorf("registered = %d, want 1", summary.Registered)
	}
	if summary.Skipped != 0 {
		t.Errorf("skipped = %d, want 0", summary.Skipped)
	}
	if summary.RunID == "" {
		t.Error("summary missing run id")
	}

	lots, err := store.LotsForPass("A")
	if err != nil {
		t.Fatalf("LotsForPass failed: %v", err)
	}
	if !reflect.DeepEqual(lots, []string{"LotA1", "LotA2"}) {
		t.Errorf("lots = %v", lots)
	}

	// The grantless pass must exist with an empty result.
	empty, err := store.LotsForPass("F")
	if err != nil {
		t.Fatalf("grantless pass lookup failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no lots for F, got %v", empty)
	}
}

type sliceSource struct {
	name    string
	records []Record
}

func (s *sliceSource) Name() string                                  { return s.name }
func (s *sliceSource) Records(ctx context.Context) ([]Record, error) { return s.records, nil }

func TestLoaderSkipsInvalidRecords(t *testing.T) {
	src := &sliceSource{
		name: "fixture",
		records: []Record{
			{PassID: "A", LotID: "LotA1", Origin: "fixture", Line: 1},
			{PassID: "", LotID: "", Origin: "fixture", Line: 2},
			{PassID: "   ", LotID: "LotA2", Origin: "fixture", Line: 3},
			{PassID: "B", LotID: "LotB1", Origin: "fixture", Line: 4},
		},
	}
	store := graph.NewStore()

	summary, err := NewLoader(src).Load(context.Background(), store)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if summary.Loaded != 2 {
		t.Errorf("loaded = %d, want 2", summary.Loaded)
	}
	if summary.Skipped != 2 {
		t.Errorf("skipped = %d, want 2", summary.Skipped)
	}

	// An edge with an invalid pass is dropped whole; its lot must not
	// register either.
	if store.HasLot("lota2") {
		t.Error("lot from a skipped record leaked into the store")
	}
}

func TestLoaderCountsDuplicates(t *testing.T) {
	src := &sliceSource{
		name: "fixture",
		records: []Record{
			{PassID: "A", LotID: "LotA1"},
			{PassID: "A", LotID: "LotA1"},
			{PassID: "a", LotID: "lota1"},
		},
	}
	store := graph.NewStore()

	summary, err := NewLoader(src).Load(context.Background(), store)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if summary.Loaded != 1 {
		t.Errorf("loaded = %d, want 1", summary.Loaded)
	}
	if summary.Duplicates != 2 {
		t.Errorf("duplicates = %d, want 2", summary.Duplicates)
	}
}

type failingSource struct{}

func (failingSource) Name() string { return "broken" }
func (failingSource) Records(ctx context.Context) ([]Record, error) {
	return nil, context.DeadlineExceeded
}

func TestLoaderAbortsOnSourceFailure(t *testing.T) {
	store := graph.NewStore()
	loader := NewLoader(
		NewMapSource("ok", map[string][]string{"A": {"LotA1"}}),
		failingSource{},
	)

	if _, err := NewLoader(failingSource{}).Load(context.Background(), store); err == nil {
		t.Fatal("expected error from failing source")
	}

	// Order matters: the first source lands before the second fails. The
	// caller decides whether to keep or discard the partial store.
	store2 := graph.NewStore()
	if _, err := loader.Load(context.Background(), store2); err == nil {
		t.Fatal("expected error from failing source")
	}
}

func TestLoaderMultipleSources(t *testing.T) {
	a := NewMapSource("first", map[string][]string{"A": {"LotA1"}})
	b := NewMapSource("second", map[string][]string{"B": {"LotB1"}})
	store := graph.NewStore()

	summary, err := NewLoader(a, b).Load(context.Background(), store)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if summary.Loaded != 2 {
		t.Errorf("loaded = %d, want 2", summary.Loaded)
	}
	if !reflect.DeepEqual(summary.Sources, []string{"first", "second"}) {
		t.Errorf("sources = %v", summary.Sources)
	}
}

func TestDefaultDatasetScenarios(t *testing.T) {
	store := graph.NewStore()
	if _, err := NewLoader(DefaultDataset()).Load(context.Background(), store); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	lots, err := store.LotsForPass("C")
	if err != nil {
		t.Fatalf("LotsForPass failed: %v", err)
	}
	if !reflect.DeepEqual(lots, []string{"LibraryGarage", "LotA2", "LotC1"}) {
		t.Errorf("lots for C = %v", lots)
	}

	passes, err := store.PassesForLot("LotA2")
	if err != nil {
		t.Fatalf("PassesForLot failed: %v", err)
	}
	if !reflect.DeepEqual(passes, []string{"C"}) {
		t.Errorf("passes for LotA2 = %v", passes)
	}
}
