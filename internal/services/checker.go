// HTTP implementation of [ReleaseChecker]
//
// Talks to a reference-catalog proxy that indexes official releases; the
// proxy answers a search endpoint with candidate matches.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"packtrack/internal/shared"
)

const defaultCheckerBaseURL = "http://localhost:8080"

// HTTPChecker implements [ReleaseChecker] against a reference-catalog API.
type HTTPChecker struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPChecker creates a release checker client for the given base URL.
func NewHTTPChecker(baseURL string) *HTTPChecker {
	if baseURL == "" {
		baseURL = defaultCheckerBaseURL
	}

	return &HTTPChecker{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// IsOfficial reports whether the (title, artist) pair exists as an official
// release. The proxy performs its own case-insensitive partial matching; any
// non-empty result set counts as official.
//
// Calls GET /api/releases/search?title={title}&artist={artist}.
func (c *HTTPChecker) IsOfficial(ctx context.Context, title, artist string) (bool, error) {
	endpoint := fmt.Sprintf("/api/releases/search?title=%s&artist=%s",
		url.QueryEscape(title), url.QueryEscape(artist))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", shared.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("%w: checker returned status %d", shared.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var results []struct {
		Title  string `json:"title"`
		Artist string `json:"artist"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return false, fmt.Errorf("failed to decode checker response: %w", err)
	}

	return len(results) > 0, nil
}
