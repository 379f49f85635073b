package export

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campusworks/parkgraph/pkg/graph"
	"github.com/campusworks/parkgraph/pkg/render"
)

// Format names an export rendering.
type Format string

const (
	FormatDOT  Format = "dot"
	FormatText Format = "text"
)

// Exporter renders graph snapshots and files them in the archive under
// timestamped keys.
type Exporter struct {
	store ArchiveStore
}

// NewExporter creates an exporter over the given archive.
func NewExporter(store ArchiveStore) *Exporter {
	return &Exporter{store: store}
}

// Export renders the snapshot in the requested format and archives it.
// Returns the key the artifact was filed under.
func (e *Exporter) Export(ctx context.Context, snap *graph.Snapshot, format Format) (string, error) {
	var content, ext string
	switch format {
	case FormatDOT:
		content, ext = render.DOT(snap), "dot"
	case FormatText:
		content, ext = render.Text(snap), "txt"
	default:
		return "", fmt.Errorf("unknown export format: %s", format)
	}

	key := e.makeKey("graph", ext)
	if err := e.store.Put(ctx, key, strings.NewReader(content)); err != nil {
		return "", fmt.Errorf("failed to archive %s export: %w", format, err)
	}
	return key, nil
}

// Archive files arbitrary rendered content (report CSVs and the like) under
// a key derived from name and extension.
func (e *Exporter) Archive(ctx context.Context, name, ext string, reader io.Reader) (string, error) {
	key := e.makeKey(name, ext)
	if err := e.store.Put(ctx, key, reader); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", name, err)
	}
	return key, nil
}

// List returns the archived export keys.
func (e *Exporter) List(ctx context.Context) ([]string, error) {
	return e.store.List(ctx, "exports")
}

// makeKey builds exports/<ts>-<name>-<short id>.<ext>. The short id keeps
// exports within the same second from colliding.
func (e *Exporter) makeKey(name, ext string) string {
	ts := time.Now().UTC().Format("20060102T150405Z")
	short := uuid.NewString()[:8]
	return fmt.Sprintf("exports/%s-%s-%s.%s", ts, name, short, ext)
}
