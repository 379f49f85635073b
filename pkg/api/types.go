package api

// EdgeRequest matches the POST /v1/edges body schema
type EdgeRequest struct {
	PassID string `json:"pass_id"`
	LotID  string `json:"lot_id"`
}

// EdgeResponse matches the response for POST /v1/edges
type EdgeResponse struct {
	Status  string `json:"status"`
	PassID  string `json:"pass_id"`
	LotID   string `json:"lot_id"`
	Version uint64 `json:"version"`
}

// ExportRequest matches the POST /v1/export body schema
type ExportRequest struct {
	Format string `json:"format"` // dot, text
}

// ExportResponse matches the response for POST /v1/export
type ExportResponse struct {
	Key string `json:"key"`
}

// ExportListResponse matches the response for GET /v1/export
type ExportListResponse struct {
	Keys []string `json:"keys"`
}

// HealthResponse matches the response for GET /v1/health
type HealthResponse struct {
	Status  string `json:"status"`
	Passes  int    `json:"passes"`
	Lots    int    `json:"lots"`
	Edges   int    `json:"edges"`
	Version uint64 `json:"version"`
}
