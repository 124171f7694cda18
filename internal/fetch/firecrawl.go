// Package fetch wraps the web content fetching service. One request in, one
// markdown payload (or a classified failure) out.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"listing-tracker/internal/common"
)

// Config for the Firecrawl client.
type Config struct {
	APIKey           string
	BaseURL          string        // default https://api.firecrawl.dev
	Timeout          time.Duration // http client timeout
	MinContentLength int           // shorter payloads are treated as unusable
}

type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.firecrawl.dev"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MinContentLength <= 0 {
		cfg.MinContentLength = 100
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger,
	}
}

type scrapeRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
	Timeout         int      `json:"timeout"` // milliseconds, service-side
}

type scrapeResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Markdown string `json:"markdown"`
	} `json:"data"`
	Error string `json:"error"`
}

// ScrapeMarkdown fetches the page behind url as markdown. Failures of any
// kind, including a payload under the minimum length, come back wrapped in
// common.ErrFetchFailure.
func (c *Client) ScrapeMarkdown(ctx context.Context, url string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	body, err := json.Marshal(scrapeRequest{
		URL:             url,
		Formats:         []string{"markdown"},
		OnlyMainContent: true,
		Timeout:         15000,
	})
	if err != nil {
		return "", fmt.Errorf("encode scrape request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/scrape"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build scrape request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	c.log.Info("fetch.scrape.request", "req_id", rid, "url", url)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("fetch.scrape.send_error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("%w: %v", common.ErrFetchFailure, err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.log.Warn("fetch.scrape.body_close_error", "req_id", rid, "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)

	c.log.Info("fetch.scrape.response",
		"req_id", rid,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("%w: firecrawl status %d", common.ErrFetchFailure, resp.StatusCode)
	}

	var sr scrapeResponse
	if err := json.Unmarshal(raw, &sr); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", common.ErrFetchFailure, err)
	}
	if !sr.Success {
		msg := sr.Error
		if msg == "" {
			msg = "firecrawl could not fetch the page"
		}
		return "", fmt.Errorf("%w: %s", common.ErrFetchFailure, msg)
	}
	if len(sr.Data.Markdown) < c.cfg.MinContentLength {
		return "", fmt.Errorf("%w: content too short (%d chars), likely not a parseable page",
			common.ErrFetchFailure, len(sr.Data.Markdown))
	}
	return sr.Data.Markdown, nil
}
