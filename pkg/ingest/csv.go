package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// CSVSource reads pass/lot pairs from a two-column CSV file. A header row is
// recognized by column names (pass_id/pass and lot_id/lot in any order);
// headerless files are read positionally as pass,lot. A row with a blank lot
// cell registers the pass without a grant, and a blank pass cell registers
// the lot; rows blank on both sides are skipped by the loader.
type CSVSource struct {
	path string
}

// NewCSVSource creates a source for the given file path. The file is opened
// on each Records call, so the source survives the file being replaced.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

func (s *CSVSource) Name() string {
	return "csv:" + filepath.Base(s.path)
}

func (s *CSVSource) Records(ctx context.Context) ([]Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open csv source: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records []Record
	passCol, lotCol := 0, 1
	line := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv source %s: %w", s.path, err)
		}
		line++

		if line == 1 {
			if p, l, ok := headerColumns(row); ok {
				passCol, lotCol = p, l
				continue
			}
		}

		rec := Record{Origin: s.Name(), Line: line}
		if passCol < len(row) {
			rec.PassID = strings.TrimSpace(row[passCol])
		}
		if lotCol < len(row) {
			rec.LotID = strings.TrimSpace(row[lotCol])
		}
		records = append(records, rec)
	}
	return records, nil
}

// headerColumns reports the pass and lot column positions if the row looks
// like a header.
func headerColumns(row []string) (int, int, bool) {
	passCol, lotCol := -1, -1
	for i, cell := range row {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case "pass_id", "pass":
			passCol = i
		case "lot_id", "lot", "lots":
			lotCol = i
		}
	}
	if passCol >= 0 && lotCol >= 0 {
		return passCol, lotCol, true
	}
	return 0, 0, false
}
