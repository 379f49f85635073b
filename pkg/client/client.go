// Package client is the Go SDK for the parkgraph daemon API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is the parkgraph SDK client.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a new parkgraph client.
// endpoint defaults to "http://127.0.0.1:8085" if empty.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = "http://127.0.0.1:8085"
	}
	return &Client{
		endpoint: endpoint,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Query resolves an identifier in whichever namespace it lives in. Returns
// ErrUnknownNode, ErrAmbiguousIdentifier, or ErrInvalidIdentifier the same
// way a direct facade call would.
func (c *Client) Query(ctx context.Context, id string) (*Result, error) {
	return c.query(ctx, id, "")
}

// QueryAs resolves an identifier with an explicit direction, disambiguating
// a pass/lot name collision.
func (c *Client) QueryAs(ctx context.Context, id, direction string) (*Result, error) {
	return c.query(ctx, id, direction)
}

func (c *Client) query(ctx context.Context, id, direction string) (*Result, error) {
	q := url.Values{}
	q.Set("id", id)
	if direction != "" {
		q.Set("direction", direction)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.endpoint+"/v1/query?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("daemon unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &result, nil
}

// Graph fetches the full adjacency snapshot.
func (c *Client) Graph(ctx context.Context) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.endpoint+"/v1/graph", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("daemon unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &snap, nil
}

// Validate runs structural validation on the daemon side.
func (c *Client) Validate(ctx context.Context) (*ValidationReport, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.endpoint+"/v1/validate", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("daemon unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var report ValidationReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &report, nil
}

// AddEdge inserts a single permission edge into the live graph.
func (c *Client) AddEdge(ctx context.Context, passID, lotID string) error {
	body, err := json.Marshal(map[string]string{
		"pass_id": passID,
		"lot_id":  lotID,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint+"/v1/edges", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("daemon unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return decodeError(resp)
	}
	return nil
}

// Reload asks the daemon to rebuild the graph from its configured sources.
func (c *Client) Reload(ctx context.Context) (*LoadSummary, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint+"/v1/reload", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("daemon unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var summary LoadSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &summary, nil
}

// Render fetches the graph rendered as "dot" or "text".
func (c *Client) Render(ctx context.Context, format string) (string, error) {
	q := url.Values{}
	if format != "" {
		q.Set("format", format)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.endpoint+"/v1/render?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("daemon unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", decodeError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Report streams a named CSV report.
func (c *Client) Report(ctx context.Context, name string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.endpoint+"/v1/reports/"+url.PathEscape(name), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("daemon unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	return io.ReadAll(resp.Body)
}

// Ping checks the health of the daemon.
func (c *Client) Ping(ctx context.Context) (Health, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.endpoint+"/v1/health", nil)
	if err != nil {
		return Health{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Health{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Health{}, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var health Health
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return Health{}, err
	}
	return health, nil
}

// WaitForReady polls health until the daemon reports a loaded graph, backing
// off between attempts. Useful right after spawning the daemon.
func (c *Client) WaitForReady(ctx context.Context, attempts int) error {
	backoff := DefaultBackoff()
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff.Next(attempt - 1)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		health, err := c.Ping(ctx)
		if err == nil && health.Status == "ok" {
			return nil
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("daemon status %q", health.Status)
		}
	}
	return fmt.Errorf("daemon not ready after %d attempts: %w", attempts, lastErr)
}

// decodeError turns a non-2xx response into the matching typed error. The
// daemon's machine-readable error code decides the mapping; the status code
// is only a fallback.
func decodeError(resp *http.Response) error {
	var body struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	msg := ""
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		msg = body.Details
		if msg == "" {
			msg = body.Error
		}
	}

	switch body.Error {
	case "invalid_identifier":
		return fmt.Errorf("%w: %s", ErrInvalidIdentifier, msg)
	case "unknown_node":
		return fmt.Errorf("%w: %s", ErrUnknownNode, msg)
	case "ambiguous_identifier":
		return fmt.Errorf("%w: %s", ErrAmbiguousIdentifier, msg)
	}

	switch resp.StatusCode {
	case http.StatusServiceUnavailable:
		return fmt.Errorf("daemon not ready: %s", msg)
	default:
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, msg)
	}
}
