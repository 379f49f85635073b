package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
)

// IsolationReport generates a CSV of nodes with no edges: passes granting
// nothing and lots no pass can reach. Campus admins use it to spot stale or
// half-entered dataset rows.
type IsolationReport struct {
	store ReportStore
}

// NewIsolationReport creates a new IsolationReport generator.
func NewIsolationReport(s ReportStore) *IsolationReport {
	return &IsolationReport{store: s}
}

// Generate creates the CSV report from a validation pass over the graph.
func (r *IsolationReport) Generate(ctx context.Context, params ReportParams) (io.Reader, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	headers := []string{"identifier", "class", "finding"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}

	report := r.store.Validate()
	for _, id := range report.IsolatedPasses {
		if err := writer.Write([]string{id, "pass", "no_lots"}); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}
	for _, id := range report.IsolatedLots {
		if err := writer.Write([]string{id, "lot", "no_passes"}); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush writer: %w", err)
	}

	return buf, nil
}
