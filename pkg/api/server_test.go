package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/campusworks/parkgraph/pkg/ingest"
	"github.com/campusworks/parkgraph/pkg/query"
)

// testReloader builds a live reloader over an in-code dataset that covers
// both namespaces, a grantless pass, and a multi-lot pass.
func testReloader(t *testing.T) *ingest.Reloader {
	t.Helper()
	source := ingest.NewMapSource("fixture", map[string][]string{
		"A": {"LotA1"},
		"C": {"LotC1", "LotA2", "LibraryGarage"},
		"F": {},
	})
	reloader := ingest.NewReloader(ingest.NewLoader(source), 0)
	if _, err := reloader.Reload(context.Background()); err != nil {
		t.Fatalf("initial load failed: %v", err)
	}
	return reloader
}

func testServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(testReloader(t), ":0")
}

func TestSecureHeaders(t *testing.T) {
	// Create a handler that just returns 200 OK
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Wrap it with our middleware
	secureHandler := withSecureHeaders(handler)

	// Create a request
	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	// Serve
	secureHandler.ServeHTTP(w, req)

	// Check headers
	expectedHeaders := map[string]string{
		"Content-Security-Policy":   "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:;",
		"Strict-Transport-Security": "max-age=63072000; includeSubDomains",
		"X-Content-Type-Options":    "nosniff",
		"X-Frame-Options":           "DENY",
		"Referrer-Policy":           "no-referrer",
		"X-XSS-Protection":          "1; mode=block",
	}

	for key, expected := range expectedHeaders {
		got := w.Header().Get(key)
		if got != expected {
			t.Errorf("Header %s: expected %q, got %q", key, expected, got)
		}
	}
}

func TestHandleQuery(t *testing.T) {
	server := testServer(t)

	req := httptest.NewRequest("GET", "/v1/query?id=C", nil)
	w := httptest.NewRecorder()
	server.handleQuery(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var result query.Result
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Direction != query.DirectionPassToLots {
		t.Errorf("Expected pass_to_lots, got %s", result.Direction)
	}
	want := []string{"LibraryGarage", "LotA2", "LotC1"}
	if len(result.Matches) != len(want) {
		t.Fatalf("Expected %v, got %v", want, result.Matches)
	}
	for i := range want {
		if result.Matches[i] != want[i] {
			t.Errorf("Match %d: expected %s, got %s", i, want[i], result.Matches[i])
		}
	}
}

func TestHandleQueryReverse(t *testing.T) {
	server := testServer(t)

	req := httptest.NewRequest("GET", "/v1/query?id=LotA2", nil)
	w := httptest.NewRecorder()
	server.handleQuery(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var result query.Result
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Direction != query.DirectionLotToPasses {
		t.Errorf("Expected lot_to_passes, got %s", result.Direction)
	}
	if len(result.Matches) != 1 || result.Matches[0] != "C" {
		t.Errorf("Expected [C], got %v", result.Matches)
	}
}

func TestHandleQueryZeroEdges(t *testing.T) {
	server := testServer(t)

	req := httptest.NewRequest("GET", "/v1/query?id=F", nil)
	w := httptest.NewRecorder()
	server.handleQuery(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for grantless pass, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"matches":[]`) {
		t.Errorf("Expected empty matches array, got %s", w.Body.String())
	}
}

func TestHandleGraph(t *testing.T) {
	server := testServer(t)

	req := httptest.NewRequest("GET", "/v1/graph", nil)
	w := httptest.NewRecorder()
	server.handleGraph(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var snap struct {
		Passes map[string][]string `json:"passes"`
		Lots   map[string][]string `json:"lots"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if len(snap.Passes) != 3 {
		t.Errorf("Expected 3 passes, got %d", len(snap.Passes))
	}
	if len(snap.Lots) != 4 {
		t.Errorf("Expected 4 lots, got %d", len(snap.Lots))
	}
}

func TestHandleEdges(t *testing.T) {
	server := testServer(t)

	body, _ := json.Marshal(EdgeRequest{PassID: "G", LotID: "LotG1"})
	req := httptest.NewRequest("POST", "/v1/edges", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.handleEdges(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// The new edge must be queryable immediately.
	req = httptest.NewRequest("GET", "/v1/query?id=G", nil)
	w = httptest.NewRecorder()
	server.handleQuery(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 querying new pass, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "LotG1") {
		t.Errorf("Expected LotG1 in matches, got %s", w.Body.String())
	}
}

func TestHandleValidate(t *testing.T) {
	server := testServer(t)

	req := httptest.NewRequest("GET", "/v1/validate", nil)
	w := httptest.NewRecorder()
	server.handleValidate(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	// Pass F has no lots, so the report must flag it.
	if !strings.Contains(w.Body.String(), `"isolated_passes":["F"]`) {
		t.Errorf("Expected F flagged isolated, got %s", w.Body.String())
	}

	// Text format
	req = httptest.NewRequest("GET", "/v1/validate?format=text", nil)
	w = httptest.NewRecorder()
	server.handleValidate(w, req)
	if !strings.Contains(w.Body.String(), "isolated pass: F") {
		t.Errorf("Expected text finding, got %s", w.Body.String())
	}
}

func TestHandleReload(t *testing.T) {
	server := testServer(t)

	req := httptest.NewRequest("POST", "/v1/reload", nil)
	w := httptest.NewRecorder()
	server.handleReload(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var summary ingest.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("failed to decode summary: %v", err)
	}
	if summary.Loaded != 4 {
		t.Errorf("Expected 4 edges loaded, got %d", summary.Loaded)
	}
}

func TestHandleReports(t *testing.T) {
	server := testServer(t)

	req := httptest.NewRequest("GET", "/v1/reports/permissions", nil)
	w := httptest.NewRecorder()
	server.handleReports(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Expected text/csv, got %s", ct)
	}
	if !strings.HasPrefix(w.Body.String(), "pass_id,lot_id") {
		t.Errorf("Expected CSV header, got %s", w.Body.String())
	}
}

func TestHandleRender(t *testing.T) {
	server := testServer(t)

	req := httptest.NewRequest("GET", "/v1/render?format=dot", nil)
	w := httptest.NewRecorder()
	server.handleRender(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "graph parkgraph {") {
		t.Errorf("Expected DOT output, got %s", w.Body.String())
	}

	// Default format is the text listing.
	req = httptest.NewRequest("GET", "/v1/render", nil)
	w = httptest.NewRecorder()
	server.handleRender(w, req)
	if !strings.Contains(w.Body.String(), "C -> LibraryGarage, LotA2, LotC1") {
		t.Errorf("Expected text listing, got %s", w.Body.String())
	}
}

func TestHandleHealth(t *testing.T) {
	server := testServer(t)

	req := httptest.NewRequest("GET", "/v1/health", nil)
	w := httptest.NewRecorder()
	server.handleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("Expected ok, got %s", resp.Status)
	}
	if resp.Edges != 4 {
		t.Errorf("Expected 4 edges, got %d", resp.Edges)
	}
}

func TestRoutesRegistered(t *testing.T) {
	server := testServer(t)

	// Routed through the full middleware chain.
	for _, path := range []string{"/v1/health", "/v1/graph", "/v1/validate", "/metrics"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		server.server.Handler.ServeHTTP(w, req)
		if w.Code == http.StatusNotFound {
			t.Errorf("Expected route %s to be registered", path)
		}
		if path != "/metrics" && w.Header().Get("X-Trace-ID") == "" {
			t.Errorf("Expected trace ID header on %s", path)
		}
	}
}
