package ingest

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/campusworks/parkgraph/pkg/graph"
	"github.com/campusworks/parkgraph/pkg/query"
)

// Bundle pairs a store with the facade built over it. Consumers always see a
// matching pair; a half-reloaded state cannot be observed.
type Bundle struct {
	Store  *graph.Store
	Facade *query.Facade
}

// Reloader rebuilds the graph from its sources and swaps the active bundle
// atomically. Each store stays append-only for its lifetime; replacing the
// dataset means a fresh store, never rewinding the old one. A failed rebuild
// leaves the previous bundle serving.
type Reloader struct {
	loader    *Loader
	cacheSize int

	mu      sync.Mutex // serializes rebuilds
	current atomic.Pointer[Bundle]
}

// NewReloader creates a reloader. cacheSize > 0 enables the query result
// cache on every facade it builds.
func NewReloader(loader *Loader, cacheSize int) *Reloader {
	return &Reloader{loader: loader, cacheSize: cacheSize}
}

// Current returns the active bundle, or nil before the first Reload.
func (r *Reloader) Current() *Bundle {
	return r.current.Load()
}

// Reload builds a fresh store from the sources and swaps it in.
func (r *Reloader) Reload(ctx context.Context) (*Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	store := graph.NewStore()
	summary, err := r.loader.Load(ctx, store)
	if err != nil {
		ParkgraphReloads.WithLabelValues("error").Inc()
		return nil, err
	}

	facade := query.New(store)
	if r.cacheSize > 0 {
		if err := facade.EnableCache(r.cacheSize); err != nil {
			ParkgraphReloads.WithLabelValues("error").Inc()
			return nil, err
		}
	}

	r.current.Store(&Bundle{Store: store, Facade: facade})
	ParkgraphReloads.WithLabelValues("ok").Inc()
	return summary, nil
}
