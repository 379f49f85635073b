package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultSQLiteTable is queried when no table name is configured.
const DefaultSQLiteTable = "permissions"

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteSource reads pass/lot pairs from a SQLite database. The database is
// opened read-only: campus registration systems export these files and
// nothing here may touch them. Expected shape is a table with pass_id and
// lot_id text columns; a NULL lot_id registers the pass without a grant.
type SQLiteSource struct {
	db    *sql.DB
	label string
	table string
}

// NewSQLiteSource opens the database at path. An empty table name selects
// DefaultSQLiteTable.
func NewSQLiteSource(path, table string) (*SQLiteSource, error) {
	if table == "" {
		table = DefaultSQLiteTable
	}
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid sqlite table name %q", table)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite source: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite source: %w", err)
	}

	return &SQLiteSource{db: db, label: "sqlite:" + path, table: table}, nil
}

func (s *SQLiteSource) Name() string {
	return s.label
}

// Close releases the underlying database handle.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

func (s *SQLiteSource) Records(ctx context.Context) ([]Record, error) {
	query := fmt.Sprintf(
		"SELECT pass_id, lot_id FROM %s ORDER BY pass_id, lot_id",
		s.table,
	)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sqlite source: %w", err)
	}
	defer rows.Close()

	var records []Record
	line := 0
	for rows.Next() {
		var pass, lot sql.NullString
		if err := rows.Scan(&pass, &lot); err != nil {
			return nil, fmt.Errorf("failed to scan sqlite row: %w", err)
		}
		line++
		records = append(records, Record{
			PassID: strings.TrimSpace(pass.String),
			LotID:  strings.TrimSpace(lot.String),
			Origin: s.label,
			Line:   line,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sqlite rows: %w", err)
	}
	return records, nil
}
