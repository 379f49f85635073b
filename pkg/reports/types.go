package reports

import (
	"context"
	"io"

	"github.com/campusworks/parkgraph/pkg/graph"
)

type ReportType string

const (
	ReportTypePermissions ReportType = "permissions"
	ReportTypeIsolation   ReportType = "isolation"
)

type ReportParams struct {
	Filters map[string]interface{}
}

// ReportStore defines the graph access required by reports.
type ReportStore interface {
	EdgeList() []graph.Edge
	Validate() *graph.ValidationReport
}

type Generator interface {
	Generate(ctx context.Context, params ReportParams) (io.Reader, error)
}
