// Package ingest loads pass/lot permission records into a graph store from
// external datasets. Sources are strictly read-only: the graph is never
// written back to any of them.
package ingest

import "context"

// Record is one row of source data. Both identifiers set means a permission
// edge. An empty LotID registers the pass with no grants (a pass listed in a
// dataset before any lot is assigned); an empty PassID registers a lot the
// same way. Both empty is invalid and gets skipped by the loader.
type Record struct {
	PassID string
	LotID  string
	Origin string // source name, carried into skip logs
	Line   int    // position within the source, zero when not meaningful
}

// Source yields permission records from one external dataset.
type Source interface {
	Name() string
	Records(ctx context.Context) ([]Record, error)
}
