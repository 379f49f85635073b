package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DefaultPostgresTable is queried when no table name is configured.
const DefaultPostgresTable = "permissions"

// PostgresSource reads pass/lot pairs from a PostgreSQL table, for campuses
// that keep the permissions dataset in their registration database. Same
// contract as SQLiteSource: read-only, NULL lot_id registers a grantless
// pass.
type PostgresSource struct {
	db    *sql.DB
	table string
}

// NewPostgresSource connects using a pgx DSN. An empty table name selects
// DefaultPostgresTable.
func NewPostgresSource(dsn, table string) (*PostgresSource, error) {
	if table == "" {
		table = DefaultPostgresTable
	}
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid postgres table name %q", table)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres source: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres source: %w", err)
	}

	return &PostgresSource{db: db, table: table}, nil
}

func (s *PostgresSource) Name() string {
	return "postgres:" + s.table
}

// Close releases the connection pool.
func (s *PostgresSource) Close() error {
	return s.db.Close()
}

func (s *PostgresSource) Records(ctx context.Context) ([]Record, error) {
	query := fmt.Sprintf(
		"SELECT pass_id, lot_id FROM %s ORDER BY pass_id, lot_id",
		s.table,
	)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query postgres source: %w", err)
	}
	defer rows.Close()

	var records []Record
	line := 0
	for rows.Next() {
		var pass, lot sql.NullString
		if err := rows.Scan(&pass, &lot); err != nil {
			return nil, fmt.Errorf("failed to scan postgres row: %w", err)
		}
		line++
		records = append(records, Record{
			PassID: strings.TrimSpace(pass.String),
			LotID:  strings.TrimSpace(lot.String),
			Origin: s.Name(),
			Line:   line,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read postgres rows: %w", err)
	}
	return records, nil
}
