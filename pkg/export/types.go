// Package export files rendered graph artifacts (DOT, text listings, report
// CSVs) into an archive. The archive only ever holds rendered output; the
// live graph itself is never persisted here.
package export

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when the requested artifact does not exist.
var ErrNotFound = errors.New("artifact not found")

// ArchiveStore abstracts where exported artifacts land.
type ArchiveStore interface {
	// Put uploads an artifact under the given key.
	Put(ctx context.Context, key string, reader io.Reader) error

	// Get retrieves an artifact.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// List returns the keys matching the prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes an artifact.
	Delete(ctx context.Context, key string) error
}
