package graph

// NodeClass represents which side of the bipartite permissions graph a node
// belongs to.
type NodeClass string

const (
	NodePass NodeClass = "pass"
	NodeLot  NodeClass = "lot"
)

// NodeRef identifies a node by class and canonical identifier. Keeping the
// class tag on the reference prevents cross-namespace edges at the type level.
type NodeRef struct {
	Class NodeClass `json:"class"`
	ID    string    `json:"id"`
}

// Edge represents a single permission: the pass grants access to the lot.
// Identifiers are display-form (first-seen casing).
type Edge struct {
	PassID string `json:"pass_id"`
	LotID  string `json:"lot_id"`
}

// Stats summarizes graph size.
type Stats struct {
	Passes     int    `json:"passes"`
	Lots       int    `json:"lots"`
	Edges      int    `json:"edges"`
	Duplicates uint64 `json:"duplicates_skipped"`
	Version    uint64 `json:"version"`
}

// Snapshot is a read-only copy of the graph handed to API, render, and report
// consumers. Adjacency is display-form and sorted; mutating a snapshot never
// affects the store it came from.
type Snapshot struct {
	Passes map[string][]string `json:"passes"` // pass -> lots
	Lots   map[string][]string `json:"lots"`   // lot -> passes
	Stats  Stats               `json:"stats"`
}
