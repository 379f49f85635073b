package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/campusworks/parkgraph/pkg/graph"
)

// PermissionsReport generates a CSV listing of every permission edge, one
// row per pass/lot grant, sorted by pass then lot.
type PermissionsReport struct {
	store ReportStore
}

// NewPermissionsReport creates a new PermissionsReport generator.
func NewPermissionsReport(s ReportStore) *PermissionsReport {
	return &PermissionsReport{store: s}
}

// Generate creates the CSV. A "pass_id" filter restricts rows to one pass.
func (r *PermissionsReport) Generate(ctx context.Context, params ReportParams) (io.Reader, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	headers := []string{"pass_id", "lot_id"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}

	passFilter := ""
	if v, ok := params.Filters["pass_id"].(string); ok && v != "" {
		passFilter = graph.Normalize(v)
	}

	for _, edge := range r.store.EdgeList() {
		if passFilter != "" && graph.Normalize(edge.PassID) != passFilter {
			continue
		}
		if err := writer.Write([]string{edge.PassID, edge.LotID}); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush writer: %w", err)
	}

	return buf, nil
}
