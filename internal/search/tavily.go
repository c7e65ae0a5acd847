// Package search provides web search via the Tavily API.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/raphaelgruber/contentd/internal/config"
	"github.com/raphaelgruber/contentd/internal/engine"
)

// TavilyEndpoint is the Tavily search API endpoint.
const TavilyEndpoint = "https://api.tavily.com/search"

// Client implements the Searcher capability against the Tavily API.
type Client struct {
	apiKey     string
	endpoint   string
	maxResults int
	depth      string
	client     *http.Client
}

// Compile-time check that Client implements Searcher.
var _ engine.Searcher = (*Client)(nil)

// NewClient creates a Tavily search client from configuration.
func NewClient(cfg config.Config) *Client {
	return &Client{
		apiKey:     cfg.TavilyAPIKey,
		endpoint:   TavilyEndpoint,
		maxResults: cfg.SearchMaxResults,
		depth:      cfg.SearchDepth,
		client:     &http.Client{},
	}
}

// searchRequest is the Tavily API request payload.
type searchRequest struct {
	APIKey            string `json:"api_key"`
	Query             string `json:"query"`
	MaxResults        int    `json:"max_results"`
	SearchDepth       string `json:"search_depth"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

// searchResult is one result in the Tavily API response.
type searchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// searchResponse is the Tavily API response payload.
type searchResponse struct {
	Answer  string         `json:"answer"`
	Results []searchResult `json:"results"`
}

// FindInformation searches for a query and returns formatted results as a
// context string. Timeouts are governed by ctx; the caller treats any error
// as an empty context.
func (c *Client) FindInformation(ctx context.Context, query string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("tavily API key not configured")
	}

	reqBody, err := json.Marshal(searchRequest{
		APIKey:            c.apiKey,
		Query:             query,
		MaxResults:        c.maxResults,
		SearchDepth:       c.depth,
		IncludeAnswer:     true,
		IncludeRawContent: true,
	})
	if err != nil {
		return "", fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search API status %d: %s", resp.StatusCode, truncateBody(body))
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode search response: %w", err)
	}

	return formatResults(result), nil
}

// formatResults renders the API response into a readable context string:
// the AI-generated summary first, then per-result title/URL/content blocks.
func formatResults(resp searchResponse) string {
	var parts []string

	if resp.Answer != "" {
		parts = append(parts, fmt.Sprintf("Summary: %s\n", resp.Answer))
	}

	for _, r := range resp.Results {
		parts = append(parts, fmt.Sprintf("\nTitle: %s\nURL: %s\nContent: %s\n---",
			r.Title, r.URL, strings.TrimSpace(r.Content)))
	}

	return strings.Join(parts, "\n")
}

func truncateBody(body []byte) string {
	const maxLen = 200
	s := string(body)
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
