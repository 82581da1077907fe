// Package courseinfo provides an HTTP client for the course-info metadata API.
package courseinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client fetches course metadata from the course-info HTTP API.
// Calls are single-attempt and bounded by the configured timeout.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New constructs a course-info client. The timeout bounds each lookup.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchCourseInfo returns the metadata payload for a course id.
// An empty response body yields an empty map; transport errors, non-2xx
// statuses and malformed bodies are returned as errors for the caller
// (the metadata cache) to absorb.
func (c *Client) FetchCourseInfo(ctx context.Context, courseID string) (map[string]any, error) {
	if courseID == "" || c.baseURL == "" {
		return map[string]any{}, nil
	}
	url := fmt.Sprintf("%s/v1/course-info/%s", c.baseURL, courseID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("op=courseinfo.Fetch id=%s: %w", courseID, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("op=courseinfo.Fetch id=%s: status %d", courseID, resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("op=courseinfo.Fetch id=%s: %w", courseID, err)
	}
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("op=courseinfo.Fetch id=%s decode: %w", courseID, err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// Ping reports whether the course-info API answers at all; used by readiness.
func (c *Client) Ping(ctx context.Context) error {
	if c.baseURL == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}
