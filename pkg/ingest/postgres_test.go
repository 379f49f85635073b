package ingest

import (
	"context"
	"os"
	"testing"

	"github.com/campusworks/parkgraph/pkg/graph"
)

// Requires a reachable PostgreSQL instance with a permissions table; skipped
// otherwise. Example:
//
//	PARKGRAPH_TEST_POSTGRES_DSN=postgres://localhost:5432/parkgraph go test ./pkg/ingest/
func TestPostgresSource(t *testing.T) {
	dsn := os.Getenv("PARKGRAPH_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("PARKGRAPH_TEST_POSTGRES_DSN not set")
	}

	src, err := NewPostgresSource(dsn, "")
	if err != nil {
		t.Fatalf("NewPostgresSource failed: %v", err)
	}
	defer src.Close()

	store := graph.NewStore()
	summary, err := NewLoader(src).Load(context.Background(), store)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := store.Stats().Edges; got != summary.Loaded {
		t.Errorf("store has %d edges, summary says %d", got, summary.Loaded)
	}
}

func TestPostgresSourceRejectsBadTableName(t *testing.T) {
	if _, err := NewPostgresSource("postgres://localhost/x", "no good"); err == nil {
		t.Fatal("expected error for invalid table name")
	}
}
