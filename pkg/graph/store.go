package graph

import (
	"strings"
	"sync"
)

// Store is the in-memory bipartite permissions graph. Two adjacency maps are
// kept as exact inverses: every pass->lot entry has a matching lot->pass
// entry, and both sides of an edge are updated under one lock so the pairing
// can never be observed broken. A node registered once stays known for the
// lifetime of the store even if it has no edges.
//
// The store is append-only within a session. Replacing a dataset means
// building a fresh store and swapping it in, not rewinding this one.
type Store struct {
	mu        sync.RWMutex
	passLots  map[string]map[string]struct{} // canonical pass -> set of canonical lots
	lotPasses map[string]map[string]struct{} // canonical lot -> set of canonical passes
	display   map[string]string              // canonical -> first-seen trimmed casing
	edges     int
	dupes     uint64
	version   uint64
}

// NewStore creates an empty permissions graph.
func NewStore() *Store {
	return &Store{
		passLots:  make(map[string]map[string]struct{}),
		lotPasses: make(map[string]map[string]struct{}),
		display:   make(map[string]string),
	}
}

// AddEdge records that passID grants access to lotID. Both identifiers are
// normalized first; if either is empty after normalization the whole edge is
// rejected and the store is left untouched. Inserting the same pair again is
// a no-op, not an error.
func (s *Store) AddEdge(passID, lotID string) error {
	passKey := Normalize(passID)
	if passKey == "" {
		return &InvalidIdentifierError{Field: "pass_id", Raw: passID}
	}
	lotKey := Normalize(lotID)
	if lotKey == "" {
		return &InvalidIdentifierError{Field: "lot_id", Raw: lotID}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensurePassLocked(passKey, passID)
	s.ensureLotLocked(lotKey, lotID)

	if _, dup := s.passLots[passKey][lotKey]; dup {
		s.dupes++
		ParkgraphDuplicateEdges.Inc()
		return nil
	}

	s.passLots[passKey][lotKey] = struct{}{}
	s.lotPasses[lotKey][passKey] = struct{}{}
	s.edges++
	s.version++
	ParkgraphEdges.Set(float64(s.edges))
	return nil
}

// AddPass registers a pass that has no edges yet. Datasets may list a pass
// before (or without) any lot grant; the pass must still resolve to an empty
// result rather than an unknown-identifier failure. Idempotent.
func (s *Store) AddPass(passID string) error {
	key := Normalize(passID)
	if key == "" {
		return &InvalidIdentifierError{Field: "pass_id", Raw: passID}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensurePassLocked(key, passID) {
		s.version++
	}
	return nil
}

// AddLot registers a lot that has no edges yet. Idempotent.
func (s *Store) AddLot(lotID string) error {
	key := Normalize(lotID)
	if key == "" {
		return &InvalidIdentifierError{Field: "lot_id", Raw: lotID}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensureLotLocked(key, lotID) {
		s.version++
	}
	return nil
}

// ensurePassLocked registers the pass if absent and reports whether it was
// newly created. Must be called with s.mu held for writing.
func (s *Store) ensurePassLocked(key, raw string) bool {
	if _, ok := s.passLots[key]; ok {
		return false
	}
	s.passLots[key] = make(map[string]struct{})
	if _, ok := s.display[key]; !ok {
		s.display[key] = strings.TrimSpace(raw)
	}
	ParkgraphPasses.Set(float64(len(s.passLots)))
	return true
}

// ensureLotLocked registers the lot if absent and reports whether it was
// newly created. Must be called with s.mu held for writing.
func (s *Store) ensureLotLocked(key, raw string) bool {
	if _, ok := s.lotPasses[key]; ok {
		return false
	}
	s.lotPasses[key] = make(map[string]struct{})
	if _, ok := s.display[key]; !ok {
		s.display[key] = strings.TrimSpace(raw)
	}
	ParkgraphLots.Set(float64(len(s.lotPasses)))
	return true
}

// LotsForPass returns every lot reachable under the given pass: display-form,
// case-insensitively sorted, deduplicated, and safe for the caller to keep.
// A known pass with no lots yields an empty slice. A pass that was never
// inserted yields UnknownNodeError.
func (s *Store) LotsForPass(passID string) ([]string, error) {
	key := Normalize(passID)

	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.passLots[key]
	if !ok {
		return nil, &UnknownNodeError{ID: key}
	}
	return s.collectLocked(set), nil
}

// PassesForLot returns every pass granting access to the given lot. Same
// contract as LotsForPass, mirrored.
func (s *Store) PassesForLot(lotID string) ([]string, error) {
	key := Normalize(lotID)

	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.lotPasses[key]
	if !ok {
		return nil, &UnknownNodeError{ID: key}
	}
	return s.collectLocked(set), nil
}

// HasPass reports whether the identifier names a known pass. Used by the
// query layer to resolve direction without triggering UnknownNodeError.
func (s *Store) HasPass(id string) bool {
	key := Normalize(id)
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.passLots[key]
	return ok
}

// HasLot reports whether the identifier names a known lot.
func (s *Store) HasLot(id string) bool {
	key := Normalize(id)
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.lotPasses[key]
	return ok
}

// Display resolves an identifier to its first-seen casing. Unknown
// identifiers come back normalized.
func (s *Store) Display(id string) string {
	key := Normalize(id)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.displayLocked(key)
}

// Passes lists every registered pass, display-form and sorted.
func (s *Store) Passes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.passLots))
	for key := range s.passLots {
		out = append(out, s.displayLocked(key))
	}
	SortIDs(out)
	return out
}

// Lots lists every registered lot, display-form and sorted.
func (s *Store) Lots() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.lotPasses))
	for key := range s.lotPasses {
		out = append(out, s.displayLocked(key))
	}
	SortIDs(out)
	return out
}

// EdgeList returns every edge display-form, sorted by pass then lot.
func (s *Store) EdgeList() []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Edge, 0, s.edges)
	for passKey, lots := range s.passLots {
		for lotKey := range lots {
			out = append(out, Edge{
				PassID: s.displayLocked(passKey),
				LotID:  s.displayLocked(lotKey),
			})
		}
	}
	sortEdges(out)
	return out
}

// Stats returns current graph counters.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Passes:     len(s.passLots),
		Lots:       len(s.lotPasses),
		Edges:      s.edges,
		Duplicates: s.dupes,
		Version:    s.version,
	}
}

// Version returns the mutation counter. It increases on every successful
// change, so consumers can key caches on it and watchers can detect drift.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Snapshot returns a deep copy of the adjacency structure in display form.
// Mutating the result never affects the store.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{
		Passes: make(map[string][]string, len(s.passLots)),
		Lots:   make(map[string][]string, len(s.lotPasses)),
		Stats: Stats{
			Passes:     len(s.passLots),
			Lots:       len(s.lotPasses),
			Edges:      s.edges,
			Duplicates: s.dupes,
			Version:    s.version,
		},
	}
	for passKey, lots := range s.passLots {
		snap.Passes[s.displayLocked(passKey)] = s.collectLocked(lots)
	}
	for lotKey, passes := range s.lotPasses {
		snap.Lots[s.displayLocked(lotKey)] = s.collectLocked(passes)
	}
	return snap
}

// collectLocked turns a canonical set into a sorted display-form slice.
// Must be called with s.mu held.
func (s *Store) collectLocked(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, s.displayLocked(key))
	}
	SortIDs(out)
	return out
}

// displayLocked resolves a canonical key to its display casing. Must be
// called with s.mu held.
func (s *Store) displayLocked(key string) string {
	if d, ok := s.display[key]; ok {
		return d
	}
	return key
}
