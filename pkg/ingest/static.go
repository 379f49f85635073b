package ingest

import (
	"context"
	"sort"
)

// MapSource serves records from an in-code dictionary of pass -> lots.
// Iteration order is sorted so repeated loads are identical.
type MapSource struct {
	name string
	data map[string][]string
}

// NewMapSource creates a source over the given dictionary. The map is used
// as-is; callers hand over ownership.
func NewMapSource(name string, data map[string][]string) *MapSource {
	return &MapSource{name: name, data: data}
}

func (s *MapSource) Name() string {
	return s.name
}

func (s *MapSource) Records(ctx context.Context) ([]Record, error) {
	passes := make([]string, 0, len(s.data))
	for pass := range s.data {
		passes = append(passes, pass)
	}
	sort.Strings(passes)

	var records []Record
	line := 0
	for _, pass := range passes {
		lots := s.data[pass]
		if len(lots) == 0 {
			line++
			records = append(records, Record{PassID: pass, Origin: s.name, Line: line})
			continue
		}
		for _, lot := range lots {
			line++
			records = append(records, Record{PassID: pass, LotID: lot, Origin: s.name, Line: line})
		}
	}
	return records, nil
}

// DefaultDataset is the built-in campus permissions table used when no
// external source is configured. Pass F is deliberately grantless.
func DefaultDataset() *MapSource {
	return NewMapSource("builtin", map[string][]string{
		"A": {"LotA1"},
		"B": {"LotB1", "LotB2"},
		"C": {"LotC1", "LotA2", "LibraryGarage"},
		"D": {"LotD1", "LibraryGarage"},
		"E": {"LotE1"},
		"F": {},
	})
}
