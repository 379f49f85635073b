package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// wsPollInterval is how often a websocket session checks the store version
// for changes to push. Package-level so tests can tighten it.
var wsPollInterval = time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The daemon serves its own web UI from the same origin; cross-origin
	// dashboards are expected during development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleGraphWS streams graph snapshots over a websocket: one on connect,
// then one per observed version change. A reload swap counts as a change
// even if the rebuilt store landed on the same version number.
func (s *Server) handleGraphWS(w http.ResponseWriter, r *http.Request) {
	bundle := s.currentBundle()
	if bundle == nil {
		http.Error(w, `{"error":"graph_not_loaded"}`, http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		fmt.Printf(`{"level":"error","msg":"ws_upgrade_failed","trace_id":"%s","error":"%v"}`+"\n", getTraceID(r.Context()), err)
		return
	}
	defer conn.Close()

	snap := bundle.Store.Snapshot()
	if err := conn.WriteJSON(snap); err != nil {
		return
	}
	lastBundle := bundle
	lastVersion := snap.Stats.Version

	// Reader goroutine: we never expect client frames, but reading is the
	// only way to notice the peer closing.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			current := s.currentBundle()
			if current == nil {
				continue
			}
			version := current.Store.Version()
			if current == lastBundle && version == lastVersion {
				continue
			}
			snap := current.Store.Snapshot()
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
			lastBundle = current
			lastVersion = snap.Stats.Version
		}
	}
}
