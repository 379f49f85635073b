package reports

import (
	"context"
	"encoding/csv"
	"testing"

	"github.com/campusworks/parkgraph/pkg/graph"
)

func reportStore(t *testing.T) *graph.Store {
	t.Helper()
	s := graph.NewStore()
	pairs := [][2]string{
		{"B", "LotB1"},
		{"A", "LotA2"},
		{"A", "LotA1"},
	}
	for _, p := range pairs {
		if err := s.AddEdge(p[0], p[1]); err != nil {
			t.Fatalf("AddEdge failed: %v", err)
		}
	}
	if err := s.AddPass("Visitor"); err != nil {
		t.Fatalf("AddPass failed: %v", err)
	}
	if err := s.AddLot("Overflow"); err != nil {
		t.Fatalf("AddLot failed: %v", err)
	}
	return s
}

func TestPermissionsReport(t *testing.T) {
	r, err := NewReportGenerator(ReportTypePermissions, reportStore(t))
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	reader, err := r.Generate(context.Background(), ReportParams{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	records, err := csv.NewReader(reader).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}

	if len(records) != 4 { // Header + 3 rows
		t.Fatalf("Expected 4 records, got %d", len(records))
	}
	if records[0][0] != "pass_id" || records[0][1] != "lot_id" {
		t.Errorf("unexpected header: %v", records[0])
	}
	// Sorted by pass then lot.
	if records[1][0] != "A" || records[1][1] != "LotA1" {
		t.Errorf("first row = %v", records[1])
	}
	if records[3][0] != "B" || records[3][1] != "LotB1" {
		t.Errorf("last row = %v", records[3])
	}
}

func TestPermissionsReportFilter(t *testing.T) {
	r := NewPermissionsReport(reportStore(t))

	reader, err := r.Generate(context.Background(), ReportParams{
		Filters: map[string]interface{}{"pass_id": " b "},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	records, err := csv.NewReader(reader).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[1][0] != "B" {
		t.Errorf("row = %v", records[1])
	}
}

func TestIsolationReport(t *testing.T) {
	r, err := NewReportGenerator(ReportTypeIsolation, reportStore(t))
	if err != nil {
		t.Fatalf("NewReportGenerator failed: %v", err)
	}

	reader, err := r.Generate(context.Background(), ReportParams{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	records, err := csv.NewReader(reader).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	if records[1][0] != "Visitor" || records[1][2] != "no_lots" {
		t.Errorf("pass row = %v", records[1])
	}
	if records[2][0] != "Overflow" || records[2][2] != "no_passes" {
		t.Errorf("lot row = %v", records[2])
	}
}

func TestUnknownReportType(t *testing.T) {
	if _, err := NewReportGenerator(ReportType("bogus"), reportStore(t)); err == nil {
		t.Fatal("expected error for unknown report type")
	}
}
