package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/raphaelgruber/contentd/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(endpoint string) *Client {
	c := NewClient(config.Config{
		TavilyAPIKey:     "test-key",
		SearchMaxResults: 5,
		SearchDepth:      "advanced",
	})
	c.endpoint = endpoint
	return c
}

func TestFindInformation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-key", req.APIKey)
		assert.Equal(t, "Widget price", req.Query)
		assert.Equal(t, 5, req.MaxResults)
		assert.True(t, req.IncludeAnswer)

		json.NewEncoder(w).Encode(searchResponse{
			Answer: "Widgets cost about ten dollars.",
			Results: []searchResult{
				{Title: "Widget Store", URL: "https://shop.example.com", Content: "Widgets from $9.99 "},
			},
		})
	}))
	defer ts.Close()

	result, err := testClient(ts.URL).FindInformation(context.Background(), "Widget price")
	require.NoError(t, err)

	assert.Contains(t, result, "Summary: Widgets cost about ten dollars.")
	assert.Contains(t, result, "Title: Widget Store")
	assert.Contains(t, result, "URL: https://shop.example.com")
	assert.Contains(t, result, "Content: Widgets from $9.99")
}

func TestFindInformationMissingKey(t *testing.T) {
	c := NewClient(config.Config{})
	_, err := c.FindInformation(context.Background(), "anything")
	assert.ErrorContains(t, err, "API key not configured")
}

func TestFindInformationServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	_, err := testClient(ts.URL).FindInformation(context.Background(), "query")
	assert.ErrorContains(t, err, "status 429")
}

func TestFormatResultsEmpty(t *testing.T) {
	assert.Equal(t, "", formatResults(searchResponse{}))
}
