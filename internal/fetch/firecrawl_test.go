package fetch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-tracker/internal/common"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil), srv
}

func TestScrapeMarkdown_Success(t *testing.T) {
	markdown := strings.Repeat("# 1 Main St, Mesa, AZ 85201\n$500,000\n", 10)

	var gotAuth string
	var gotBody scrapeRequest
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"markdown": markdown},
		})
	})

	got, err := c.ScrapeMarkdown(context.Background(), "https://example.com/listing")
	require.NoError(t, err)
	assert.Equal(t, markdown, got)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "https://example.com/listing", gotBody.URL)
	assert.Equal(t, []string{"markdown"}, gotBody.Formats)
	assert.True(t, gotBody.OnlyMainContent)
}

func TestScrapeMarkdown_ServiceFailure(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "page blocked by robots.txt",
		})
	})

	_, err := c.ScrapeMarkdown(context.Background(), "https://example.com/blocked")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrFetchFailure)
	assert.Contains(t, err.Error(), "robots.txt")
}

func TestScrapeMarkdown_NonOKStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.ScrapeMarkdown(context.Background(), "https://example.com/x")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrFetchFailure)
}

func TestScrapeMarkdown_TooShortContent(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"markdown": "404"},
		})
	})

	_, err := c.ScrapeMarkdown(context.Background(), "https://example.com/gone")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrFetchFailure)
	assert.Contains(t, err.Error(), "too short")
}
