package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campusworks/parkgraph/pkg/export"
	"github.com/campusworks/parkgraph/pkg/graph"
	"github.com/campusworks/parkgraph/pkg/ingest"
	"github.com/campusworks/parkgraph/pkg/query"
	"github.com/campusworks/parkgraph/pkg/render"
	"github.com/campusworks/parkgraph/pkg/reports"
)

// Context keys
type contextKey string

const traceIDKey contextKey = "trace_id"

// Interfaces for dependencies to enable mocking

// ReloaderInterface yields the live store/facade bundle and rebuilds it on
// demand. Handlers resolve Current() per request, so a reload swap is picked
// up immediately without restarting connections.
type ReloaderInterface interface {
	Current() *ingest.Bundle
	Reload(ctx context.Context) (*ingest.Summary, error)
}

// ExporterInterface archives rendered graph artifacts.
type ExporterInterface interface {
	Export(ctx context.Context, snap *graph.Snapshot, format export.Format) (string, error)
	List(ctx context.Context) ([]string, error)
}

// Server encapsulates the HTTP API server
type Server struct {
	reloader ReloaderInterface
	exporter ExporterInterface
	server   *http.Server
	staticFS fs.FS

	// TLS Config
	tlsCertFile string
	tlsKeyFile  string
}

// NewServer creates a new API server instance
func NewServer(reloader ReloaderInterface, addr string) *Server {
	mux := http.NewServeMux()

	s := &Server{
		reloader: reloader,
	}

	// Register routes
	mux.HandleFunc("/v1/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/query", s.handleQuery)
	mux.HandleFunc("/v1/graph", s.handleGraph)
	mux.HandleFunc("/v1/graph/ws", s.handleGraphWS)
	mux.HandleFunc("/v1/validate", s.handleValidate)
	mux.HandleFunc("/v1/edges", s.handleEdges)
	mux.HandleFunc("/v1/reload", s.handleReload)
	mux.HandleFunc("/v1/reports/", s.handleReports)
	mux.HandleFunc("/v1/render", s.handleRender)
	mux.HandleFunc("/v1/export", s.handleExport)

	// Static file handler (catch-all for SPA)
	mux.Handle("/", s.handleStatic())

	// Middleware: Logging, Panic Recovery, Security Headers
	handler := withLogging(withRecovery(withSecureHeaders(mux)))

	// Use default port if addr is empty
	if addr == "" {
		addr = ":8085"
	}

	s.server = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	return s
}

// SetStaticFS sets the filesystem for serving static web assets
func (s *Server) SetStaticFS(fs fs.FS) {
	s.staticFS = fs
}

// SetExporter wires the export archive. Without it /v1/export returns 503.
func (s *Server) SetExporter(e ExporterInterface) {
	s.exporter = e
}

// SetTLS configures the server to use TLS
func (s *Server) SetTLS(certFile, keyFile string) {
	s.tlsCertFile = certFile
	s.tlsKeyFile = keyFile
}

// Start runs the HTTP server (blocking)
func (s *Server) Start() error {
	if s.tlsCertFile != "" && s.tlsKeyFile != "" {
		fmt.Printf(`{"level":"info","msg":"server_starting_tls","addr":"%s"}`+"\n", s.server.Addr)
		if err := s.server.ListenAndServeTLS(s.tlsCertFile, s.tlsKeyFile); err != http.ErrServerClosed {
			return err
		}
	} else {
		fmt.Printf(`{"level":"info","msg":"server_starting","addr":"%s"}`+"\n", s.server.Addr)
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	fmt.Println(`{"level":"info","msg":"server_stopping"}`)
	return s.server.Shutdown(ctx)
}

// currentBundle resolves the live bundle, nil until the first load lands.
func (s *Server) currentBundle() *ingest.Bundle {
	if s.reloader == nil {
		return nil
	}
	return s.reloader.Current()
}

// handleQuery resolves one identifier against the live graph.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, `{"error":"missing_id"}`, http.StatusBadRequest)
		return
	}

	bundle := s.currentBundle()
	if bundle == nil {
		http.Error(w, `{"error":"graph_not_loaded"}`, http.StatusServiceUnavailable)
		return
	}

	var result *query.Result
	var err error
	if dir := r.URL.Query().Get("direction"); dir != "" {
		result, err = bundle.Facade.QueryAs(id, query.Direction(dir))
	} else {
		result, err = bundle.Facade.Query(id)
	}

	if err != nil {
		switch {
		case graph.IsInvalidIdentifier(err):
			http.Error(w, fmt.Sprintf(`{"error":"invalid_identifier","details":%q}`, err.Error()), http.StatusBadRequest)
		case graph.IsUnknownNode(err):
			http.Error(w, fmt.Sprintf(`{"error":"unknown_node","details":%q}`, err.Error()), http.StatusNotFound)
		case graph.IsAmbiguousIdentifier(err):
			http.Error(w, fmt.Sprintf(`{"error":"ambiguous_identifier","details":%q,"hint":"retry with direction=pass_to_lots or direction=lot_to_passes"}`, err.Error()), http.StatusConflict)
		default:
			fmt.Printf(`{"level":"error","msg":"query_failed","trace_id":"%s","error":"%v"}`+"\n", getTraceID(r.Context()), err)
			http.Error(w, `{"error":"internal_server_error"}`, http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		fmt.Printf(`{"level":"error","msg":"failed_to_encode_response","trace_id":"%s","error":"%v"}`+"\n", getTraceID(r.Context()), err)
	}
}

// handleGraph returns the current graph snapshot, both orientations.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	bundle := s.currentBundle()
	if bundle == nil {
		http.Error(w, `{"error":"graph_not_loaded"}`, http.StatusServiceUnavailable)
		return
	}

	snap := bundle.Store.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		fmt.Printf(`{"level":"error","msg":"failed_to_encode_graph","trace_id":"%s","error":"%v"}`+"\n", getTraceID(r.Context()), err)
	}
}

// handleValidate runs structural validation over the live graph.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	bundle := s.currentBundle()
	if bundle == nil {
		http.Error(w, `{"error":"graph_not_loaded"}`, http.StatusServiceUnavailable)
		return
	}

	report := bundle.Store.Validate()

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, report.Text())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(report); err != nil {
		fmt.Printf(`{"level":"error","msg":"failed_to_encode_report","trace_id":"%s","error":"%v"}`+"\n", getTraceID(r.Context()), err)
	}
}

// handleEdges inserts a single permission edge into the live graph.
func (s *Server) handleEdges(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	var req EdgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid_json_body"}`, http.StatusBadRequest)
		return
	}

	if req.PassID == "" || req.LotID == "" {
		http.Error(w, `{"error":"missing_required_fields"}`, http.StatusBadRequest)
		return
	}

	bundle := s.currentBundle()
	if bundle == nil {
		http.Error(w, `{"error":"graph_not_loaded"}`, http.StatusServiceUnavailable)
		return
	}

	if err := bundle.Store.AddEdge(req.PassID, req.LotID); err != nil {
		if graph.IsInvalidIdentifier(err) {
			http.Error(w, fmt.Sprintf(`{"error":"invalid_identifier","details":%q}`, err.Error()), http.StatusBadRequest)
			return
		}
		fmt.Printf(`{"level":"error","msg":"failed_to_add_edge","trace_id":"%s","error":"%v"}`+"\n", getTraceID(r.Context()), err)
		http.Error(w, `{"error":"internal_server_error"}`, http.StatusInternalServerError)
		return
	}

	resp := EdgeResponse{
		Status:  "added",
		PassID:  graph.Normalize(req.PassID),
		LotID:   graph.Normalize(req.LotID),
		Version: bundle.Store.Version(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		fmt.Printf(`{"level":"error","msg":"failed_to_encode_response","trace_id":"%s","error":"%v"}`+"\n", getTraceID(r.Context()), err)
	}

	fmt.Printf(`{"level":"info","msg":"edge_added","trace_id":"%s","pass_id":"%s","lot_id":"%s"}`+"\n",
		getTraceID(r.Context()), resp.PassID, resp.LotID)
}

// handleReload rebuilds the graph from the configured sources and swaps it in.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	if s.reloader == nil {
		http.Error(w, `{"error":"reload_not_configured"}`, http.StatusServiceUnavailable)
		return
	}

	summary, err := s.reloader.Reload(r.Context())
	if err != nil {
		fmt.Printf(`{"level":"error","msg":"reload_failed","trace_id":"%s","error":"%v"}`+"\n", getTraceID(r.Context()), err)
		http.Error(w, fmt.Sprintf(`{"error":"reload_failed","details":%q}`, err.Error()), http.StatusInternalServerError)
		return
	}

	fmt.Printf(`{"level":"info","msg":"graph_reloaded","trace_id":"%s","run_id":"%s","loaded":%d,"skipped":%d}`+"\n",
		getTraceID(r.Context()), summary.RunID, summary.Loaded, summary.Skipped)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		fmt.Printf(`{"level":"error","msg":"failed_to_encode_response","trace_id":"%s","error":"%v"}`+"\n", getTraceID(r.Context()), err)
	}
}

// handleReports generates and streams CSV reports.
func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/v1/reports/")
	if name == "" {
		http.Error(w, `{"error":"missing_report_name"}`, http.StatusBadRequest)
		return
	}

	bundle := s.currentBundle()
	if bundle == nil {
		http.Error(w, `{"error":"graph_not_loaded"}`, http.StatusServiceUnavailable)
		return
	}

	// Create generator
	gen, err := reports.NewReportGenerator(reports.ReportType(name), bundle.Store)
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error":"invalid_report_type","details":%q}`, err.Error()), http.StatusBadRequest)
		return
	}

	// Pass through filters
	params := reports.ReportParams{Filters: make(map[string]interface{})}
	if id := r.URL.Query().Get("pass_id"); id != "" {
		params.Filters["pass_id"] = id
	}

	reader, err := gen.Generate(r.Context(), params)
	if err != nil {
		fmt.Printf(`{"level":"error","msg":"failed_to_generate_report","trace_id":"%s","error":"%v"}`+"\n", getTraceID(r.Context()), err)
		http.Error(w, `{"error":"report_generation_failed"}`, http.StatusInternalServerError)
		return
	}

	// Stream response
	w.Header().Set("Content-Type", "text/csv")
	filename := fmt.Sprintf("report_%s_%d.csv", name, time.Now().Unix())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	if _, err := io.Copy(w, reader); err != nil {
		fmt.Printf(`{"level":"error","msg":"failed_to_stream_report","trace_id":"%s","error":"%v"}`+"\n", getTraceID(r.Context()), err)
	}
}

// handleRender returns the graph rendered as DOT or aligned text.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	bundle := s.currentBundle()
	if bundle == nil {
		http.Error(w, `{"error":"graph_not_loaded"}`, http.StatusServiceUnavailable)
		return
	}

	snap := bundle.Store.Snapshot()

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "text"
	}
	switch format {
	case "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		io.WriteString(w, render.DOT(snap))
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, render.Text(snap))
	default:
		http.Error(w, `{"error":"invalid_format","valid":["dot","text"]}`, http.StatusBadRequest)
	}
}

// handleExport archives a rendered artifact (POST) or lists archived keys (GET).
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		http.Error(w, `{"error":"archive_not_configured"}`, http.StatusServiceUnavailable)
		return
	}

	if r.Method == http.MethodGet {
		keys, err := s.exporter.List(r.Context())
		if err != nil {
			fmt.Printf(`{"level":"error","msg":"failed_to_list_exports","trace_id":"%s","error":"%v"}`+"\n", getTraceID(r.Context()), err)
			http.Error(w, `{"error":"internal_server_error"}`, http.StatusInternalServerError)
			return
		}
		if keys == nil {
			keys = []string{}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(ExportListResponse{Keys: keys}); err != nil {
			fmt.Printf(`{"level":"error","msg":"failed_to_encode_response","trace_id":"%s","error":"%v"}`+"\n", getTraceID(r.Context()), err)
		}
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid_json_body"}`, http.StatusBadRequest)
		return
	}

	format := export.Format(req.Format)
	if format != export.FormatDOT && format != export.FormatText {
		http.Error(w, `{"error":"invalid_format","valid":["dot","text"]}`, http.StatusBadRequest)
		return
	}

	bundle := s.currentBundle()
	if bundle == nil {
		http.Error(w, `{"error":"graph_not_loaded"}`, http.StatusServiceUnavailable)
		return
	}

	key, err := s.exporter.Export(r.Context(), bundle.Store.Snapshot(), format)
	if err != nil {
		fmt.Printf(`{"level":"error","msg":"export_failed","trace_id":"%s","error":"%v"}`+"\n", getTraceID(r.Context()), err)
		http.Error(w, `{"error":"export_failed"}`, http.StatusInternalServerError)
		return
	}

	fmt.Printf(`{"level":"info","msg":"graph_exported","trace_id":"%s","key":"%s"}`+"\n", getTraceID(r.Context()), key)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(ExportResponse{Key: key}); err != nil {
		fmt.Printf(`{"level":"error","msg":"failed_to_encode_response","trace_id":"%s","error":"%v"}`+"\n", getTraceID(r.Context()), err)
	}
}

// handleStatic serves static web assets with SPA fallback
func (s *Server) handleStatic() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.staticFS == nil {
			http.NotFound(w, r)
			return
		}

		path := r.URL.Path

		// Skip API routes
		if strings.HasPrefix(path, "/v1/") {
			http.NotFound(w, r)
			return
		}

		// Try to serve the file directly
		if file, err := s.staticFS.Open(strings.TrimPrefix(path, "/")); err == nil {
			defer file.Close()
			if stat, err := file.Stat(); err == nil && !stat.IsDir() {
				// Set content type based on extension
				if strings.HasSuffix(path, ".css") {
					w.Header().Set("Content-Type", "text/css")
				} else if strings.HasSuffix(path, ".js") {
					w.Header().Set("Content-Type", "application/javascript")
				} else if strings.HasSuffix(path, ".html") {
					w.Header().Set("Content-Type", "text/html")
				}
				io.Copy(w, file)
				return
			}
		}

		// Fallback to index.html for SPA routing
		if indexFile, err := s.staticFS.Open("index.html"); err == nil {
			defer indexFile.Close()
			w.Header().Set("Content-Type", "text/html")
			io.Copy(w, indexFile)
			return
		}

		// If index.html not found, 404
		http.NotFound(w, r)
	})
}

// handleHealth returns liveness plus current graph totals.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, `{"error":"method_not_allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	bundle := s.currentBundle()
	if bundle == nil {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"loading"}`))
		return
	}

	stats := bundle.Store.Stats()
	resp := HealthResponse{
		Status:  "ok",
		Passes:  stats.Passes,
		Lots:    stats.Lots,
		Edges:   stats.Edges,
		Version: stats.Version,
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		fmt.Printf(`{"level":"error","msg":"failed_to_encode_response","trace_id":"%s","error":"%v"}`+"\n", getTraceID(r.Context()), err)
	}
}

// Middleware: Panic Recovery
func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				fmt.Printf(`{"level":"error","msg":"panic_recovered","error":"%v","path":"%s"}`+"\n", err, r.URL.Path)
				http.Error(w, `{"error":"internal_server_error"}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Middleware: Request Logging
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// 1. Extract or Generate Trace ID
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = generateTraceID()
		}

		// 2. Inject into Context
		ctx := context.WithValue(r.Context(), traceIDKey, traceID)
		r = r.WithContext(ctx)

		// Wrap writer to capture status code
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		// 3. Set response header
		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		fmt.Printf(`{"level":"info","msg":"http_request","trace_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`+"\n",
			traceID, r.Method, r.URL.Path, ww.status, duration.Milliseconds())
	})
}

func generateTraceID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// Fallback if random fails (unlikely)
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

func getTraceID(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey).(string); ok {
		return v
	}
	return ""
}

// statusWriter captures HTTP status code
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Middleware: Secure Headers
func withSecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:;")
		w.Header().Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("X-XSS-Protection", "1; mode=block")

		next.ServeHTTP(w, r)
	})
}
