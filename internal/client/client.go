// Package client provides an API client for the contentd server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/raphaelgruber/contentd/internal/metrics"
	"github.com/raphaelgruber/contentd/internal/server"
)

// Client talks to the contentd HTTP API.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// New creates a new API client.
// If endpoint is empty, uses CONTENTD_SERVER_URL env var or defaults to localhost:8464.
// Timeout can be configured via CONTENTD_CLIENT_TIMEOUT env var (default 10m for long tasks).
func New(endpoint string) *Client {
	if endpoint == "" {
		endpoint = os.Getenv("CONTENTD_SERVER_URL")
	}
	if endpoint == "" {
		endpoint = "http://localhost:8464"
	}

	timeout := 10 * time.Minute
	if t := os.Getenv("CONTENTD_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SubmitTask submits a retrieval task and returns its ID.
func (c *Client) SubmitTask(ctx context.Context, req server.TaskRequest) (*server.TaskAccepted, error) {
	var accepted server.TaskAccepted
	if err := c.do(ctx, http.MethodPost, "/api/task", req, &accepted); err != nil {
		return nil, err
	}
	return &accepted, nil
}

// GetTask retrieves the status and, when finished, the result of a task.
func (c *Client) GetTask(ctx context.Context, taskID string) (*server.TaskStatusResponse, error) {
	var status server.TaskStatusResponse
	if err := c.do(ctx, http.MethodGet, "/api/task/"+taskID, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Health checks server liveness.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// Stats retrieves the server's operation metrics.
func (c *Client) Stats(ctx context.Context) (*metrics.Snapshot, error) {
	var snapshot metrics.Snapshot
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server error: %s", apiErr.Error)
		}
		return fmt.Errorf("server error: %s - %s", resp.Status, string(raw))
	}

	if result != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
