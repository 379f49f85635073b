package client

import "errors"

// Typed failures for Query. The daemon reports these as HTTP status codes;
// the SDK rehydrates them so callers can branch with errors.Is.
var (
	// ErrInvalidIdentifier means the identifier was empty after trimming.
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrUnknownNode means the identifier matched neither namespace.
	ErrUnknownNode = errors.New("unknown identifier")
	// ErrAmbiguousIdentifier means the identifier exists as both a pass and
	// a lot; retry with QueryAs.
	ErrAmbiguousIdentifier = errors.New("ambiguous identifier")
)

// Traversal directions accepted by QueryAs.
const (
	DirectionPassToLots  = "pass_to_lots"
	DirectionLotToPasses = "lot_to_passes"
)

// Result is the answer to a single query.
type Result struct {
	// Input is the raw identifier as submitted.
	Input string `json:"input"`
	// Canonical is the normalized (trimmed, lowercased) identifier.
	Canonical string `json:"canonical"`
	// Display is the identifier in its first-seen casing.
	Display string `json:"display"`
	// Direction is the traversal the daemon resolved: "pass_to_lots" or
	// "lot_to_passes".
	Direction string `json:"direction"`
	// Matches are the reachable identifiers, sorted. Empty (never nil) for
	// a known node with no edges.
	Matches []string `json:"matches"`
}

// Stats summarizes graph size.
type Stats struct {
	Passes            int    `json:"passes"`
	Lots              int    `json:"lots"`
	Edges             int    `json:"edges"`
	DuplicatesSkipped uint64 `json:"duplicates_skipped"`
	Version           uint64 `json:"version"`
}

// Snapshot is the full adjacency in both orientations.
type Snapshot struct {
	Passes map[string][]string `json:"passes"`
	Lots   map[string][]string `json:"lots"`
	Stats  Stats               `json:"stats"`
}

// ValidationReport lists structural findings.
type ValidationReport struct {
	Stats          Stats    `json:"stats"`
	IsolatedPasses []string `json:"isolated_passes"`
	IsolatedLots   []string `json:"isolated_lots"`
}

// LoadSummary describes one ingestion run.
type LoadSummary struct {
	RunID      string   `json:"run_id"`
	Sources    []string `json:"sources"`
	Loaded     int      `json:"loaded"`
	Registered int      `json:"registered"`
	Duplicates uint64   `json:"duplicates"`
	Skipped    int      `json:"skipped"`
	ElapsedMS  int64    `json:"elapsed_ms"`
}

// Health represents the health check response.
type Health struct {
	// Status is "ok" once a graph is loaded, "loading" before.
	Status  string `json:"status"`
	Passes  int    `json:"passes"`
	Lots    int    `json:"lots"`
	Edges   int    `json:"edges"`
	Version uint64 `json:"version"`
}
