// Package api is the JSON-over-HTTP client for the solver inference
// backend. One Client serves all endpoints; it holds no session state
// of its own.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gridpilot/gridpilot/internal/grid"
)

// Client talks to the inference backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets a timeout on the underlying HTTP client. The
// default client has none: a step against a slow model is allowed to
// take as long as it takes.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a Client for the given base URL, e.g.
// "http://localhost:8000".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Initialize creates a solving session for the puzzle using the given
// checkpoint and returns the backend's session handle.
func (c *Client) Initialize(ctx context.Context, puzzle grid.Puzzle, checkpointPath string) (*InitializeResponse, error) {
	req := InitializeRequest{Puzzle: puzzle.Rows(), CheckpointPath: checkpointPath}
	var resp InitializeResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/initialize", req, &resp); err != nil {
		return nil, err
	}
	if resp.SessionID == "" {
		return nil, fmt.Errorf("backend returned empty session id")
	}
	return &resp, nil
}

// Step advances the session by one inference step.
func (c *Client) Step(ctx context.Context, sessionID string) (*StepResponse, error) {
	var resp StepResponse
	path := "/api/step/" + url.PathEscape(sessionID)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SolveComplete runs the session to completion on the backend and
// returns every step taken.
func (c *Client) SolveComplete(ctx context.Context, sessionID string) (*SolveCompleteResponse, error) {
	var resp SolveCompleteResponse
	path := "/api/solve_complete/" + url.PathEscape(sessionID)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteSession releases a session on the backend. The response body
// is ignored; callers treat this as best-effort.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	path := "/api/session/" + url.PathEscape(sessionID)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// Health probes the backend and reports whether a model is loaded.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListModels returns the checkpoints available on the backend.
func (c *Client) ListModels(ctx context.Context) (*ModelsResponse, error) {
	var resp ModelsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/models", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListTestDataFiles returns the evaluation datasets on the backend.
func (c *Client) ListTestDataFiles(ctx context.Context) (*TestDataResponse, error) {
	var resp TestDataResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/test_data_files", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GeneratePuzzle asks the backend for a fresh puzzle from the given
// source ("random", or a dataset selected by testDataPath).
func (c *Client) GeneratePuzzle(ctx context.Context, source, testDataPath string) (grid.Puzzle, error) {
	req := GeneratePuzzleRequest{Source: source, TestDataPath: testDataPath}
	var resp GeneratePuzzleResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/generate_puzzle", req, &resp); err != nil {
		return grid.Puzzle{}, err
	}
	p, err := grid.FromRows(resp.Puzzle)
	if err != nil {
		return grid.Puzzle{}, fmt.Errorf("invalid puzzle from backend: %w", err)
	}
	return p, nil
}

// doJSON performs one request with a JSON body (if in is non-nil) and
// decodes the JSON response (if out is non-nil). Transport failures
// become *NetworkError; non-2xx statuses become *HTTPError carrying
// the response body text.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
