package graph

// Traverser answers reachability for a node. The permissions graph is
// bipartite, so a single adjacency hop is the complete answer today; the
// interface exists so a multi-hop variant (e.g. pass equivalence edges) can
// replace the strategy without touching any caller.
type Traverser interface {
	// Reachable returns the identifiers reachable from the given node,
	// display-form and case-insensitively sorted.
	Reachable(from NodeRef) ([]string, error)
}

// AdjacencyTraverser is the single-hop strategy: one lookup in the adjacency
// map for the node's class.
type AdjacencyTraverser struct {
	store *Store
}

// NewAdjacencyTraverser creates the single-hop traverser over the store.
func NewAdjacencyTraverser(store *Store) *AdjacencyTraverser {
	return &AdjacencyTraverser{store: store}
}

func (t *AdjacencyTraverser) Reachable(from NodeRef) ([]string, error) {
	switch from.Class {
	case NodePass:
		return t.store.LotsForPass(from.ID)
	case NodeLot:
		return t.store.PassesForLot(from.ID)
	}
	return nil, &UnknownNodeError{ID: Normalize(from.ID)}
}

// BFSTraverser expands the frontier breadth-first with a visited set keyed by
// (class, id), so it stays cycle-safe if same-class edges ever appear.
// Results are the nodes of the opposite class reached within MaxDepth hops,
// case-insensitively sorted; the origin is never part of its own answer.
//
// On today's strictly bipartite graph a depth-1 BFS returns exactly what the
// adjacency lookup returns.
type BFSTraverser struct {
	store *Store
	// MaxDepth bounds frontier expansion. Zero means depth 1.
	MaxDepth int
}

// NewBFSTraverser creates a breadth-first traverser over the store.
func NewBFSTraverser(store *Store, maxDepth int) *BFSTraverser {
	return &BFSTraverser{store: store, MaxDepth: maxDepth}
}

func (t *BFSTraverser) Reachable(from NodeRef) ([]string, error) {
	depth := t.MaxDepth
	if depth <= 0 {
		depth = 1
	}

	start := NodeRef{Class: from.Class, ID: Normalize(from.ID)}

	// Probe the origin first so an unknown node fails the same way the
	// single-hop strategy fails.
	if _, err := t.neighbors(start); err != nil {
		return nil, err
	}

	visited := map[NodeRef]bool{start: true}
	frontier := []NodeRef{start}
	var found []string

	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []NodeRef
		for _, node := range frontier {
			neighbors, err := t.neighbors(node)
			if err != nil {
				// A neighbor recorded in one map always exists in the
				// other; an unknown here means the two maps diverged.
				return nil, err
			}
			for _, display := range neighbors {
				ref := NodeRef{Class: opposite(node.Class), ID: Normalize(display)}
				if visited[ref] {
					continue
				}
				visited[ref] = true
				next = append(next, ref)
				if ref.Class != from.Class {
					found = append(found, display)
				}
			}
		}
		frontier = next
	}

	SortIDs(found)
	return found, nil
}

func (t *BFSTraverser) neighbors(node NodeRef) ([]string, error) {
	switch node.Class {
	case NodePass:
		return t.store.LotsForPass(node.ID)
	case NodeLot:
		return t.store.PassesForLot(node.ID)
	}
	return nil, &UnknownNodeError{ID: node.ID}
}

func opposite(class NodeClass) NodeClass {
	if class == NodePass {
		return NodeLot
	}
	return NodePass
}
