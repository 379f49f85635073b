// Package query resolves free-text identifiers against the permissions graph
// and dispatches to the matching traversal direction.
package query

import (
	"github.com/campusworks/parkgraph/pkg/graph"
)

// Direction tags which way a query was resolved.
type Direction string

const (
	DirectionPassToLots  Direction = "pass_to_lots"
	DirectionLotToPasses Direction = "lot_to_passes"
)

// Valid reports whether d is one of the two known directions.
func (d Direction) Valid() bool {
	return d == DirectionPassToLots || d == DirectionLotToPasses
}

// Result is the answer to a single query.
type Result struct {
	Input     string    `json:"input"`
	Canonical string    `json:"canonical"`
	Display   string    `json:"display"`
	Direction Direction `json:"direction"`
	Matches   []string  `json:"matches"`
}

// Facade validates one user-supplied identifier against an explicitly
// provided store, picks the traversal direction, and returns a stable,
// deduplicated, sorted result. It holds no global state; separate graphs
// (fixtures vs. production data) get separate facades.
type Facade struct {
	store     *graph.Store
	traverser graph.Traverser
	cache     *resultCache
}

// New creates a facade using single-hop adjacency traversal.
func New(store *graph.Store) *Facade {
	return NewWithTraverser(store, graph.NewAdjacencyTraverser(store))
}

// NewWithTraverser creates a facade with a custom traversal strategy.
func NewWithTraverser(store *graph.Store, traverser graph.Traverser) *Facade {
	return &Facade{store: store, traverser: traverser}
}

// EnableCache adds an LRU result cache of the given size. Entries are keyed
// by store version, so any mutation invalidates them by construction and no
// flush path is needed.
func (f *Facade) EnableCache(size int) error {
	cache, err := newResultCache(size)
	if err != nil {
		return err
	}
	f.cache = cache
	return nil
}

// Query normalizes the raw input, resolves which namespace it belongs to,
// and returns the identifiers reachable from it.
//
// Unknown in both namespaces fails with UnknownNodeError. Present in both
// fails with AmbiguousIdentifierError: a pass/lot name collision is a data
// defect that must be surfaced, never silently resolved. Callers that know
// the direction can disambiguate with QueryAs.
func (f *Facade) Query(raw string) (*Result, error) {
	canonical := graph.Normalize(raw)
	if canonical == "" {
		ParkgraphQueries.WithLabelValues("none", "invalid").Inc()
		return nil, &graph.InvalidIdentifierError{Field: "query", Raw: raw}
	}

	isPass := f.store.HasPass(canonical)
	isLot := f.store.HasLot(canonical)

	switch {
	case isPass && isLot:
		ParkgraphQueries.WithLabelValues("none", "ambiguous").Inc()
		return nil, &graph.AmbiguousIdentifierError{ID: canonical}
	case !isPass && !isLot:
		ParkgraphQueries.WithLabelValues("none", "unknown").Inc()
		return nil, &graph.UnknownNodeError{ID: canonical}
	case isPass:
		return f.run(raw, canonical, DirectionPassToLots)
	default:
		return f.run(raw, canonical, DirectionLotToPasses)
	}
}

// QueryAs runs a query with an explicit direction, bypassing namespace
// resolution. This is the escape hatch for colliding identifiers.
func (f *Facade) QueryAs(raw string, dir Direction) (*Result, error) {
	canonical := graph.Normalize(raw)
	if canonical == "" {
		ParkgraphQueries.WithLabelValues("none", "invalid").Inc()
		return nil, &graph.InvalidIdentifierError{Field: "query", Raw: raw}
	}

	switch dir {
	case DirectionPassToLots:
		if !f.store.HasPass(canonical) {
			ParkgraphQueries.WithLabelValues(string(dir), "unknown").Inc()
			return nil, &graph.UnknownNodeError{ID: canonical}
		}
	case DirectionLotToPasses:
		if !f.store.HasLot(canonical) {
			ParkgraphQueries.WithLabelValues(string(dir), "unknown").Inc()
			return nil, &graph.UnknownNodeError{ID: canonical}
		}
	default:
		ParkgraphQueries.WithLabelValues("none", "invalid").Inc()
		return nil, &graph.InvalidIdentifierError{Field: "direction", Raw: string(dir)}
	}

	return f.run(raw, canonical, dir)
}

func (f *Facade) run(raw, canonical string, dir Direction) (*Result, error) {
	matches, err := f.reachable(canonical, dir)
	if err != nil {
		ParkgraphQueries.WithLabelValues(string(dir), "error").Inc()
		return nil, err
	}
	if matches == nil {
		matches = []string{}
	}
	ParkgraphQueries.WithLabelValues(string(dir), "ok").Inc()
	return &Result{
		Input:     raw,
		Canonical: canonical,
		Display:   f.store.Display(canonical),
		Direction: dir,
		Matches:   matches,
	}, nil
}

func (f *Facade) reachable(canonical string, dir Direction) ([]string, error) {
	version := f.store.Version()
	if f.cache != nil {
		if matches, ok := f.cache.get(version, dir, canonical); ok {
			ParkgraphQueryCacheHits.Inc()
			return matches, nil
		}
		ParkgraphQueryCacheMisses.Inc()
	}

	class := graph.NodePass
	if dir == DirectionLotToPasses {
		class = graph.NodeLot
	}
	matches, err := f.traverser.Reachable(graph.NodeRef{Class: class, ID: canonical})
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		f.cache.put(version, dir, canonical, matches)
	}
	return matches, nil
}
