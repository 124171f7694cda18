package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"listing-tracker/internal/batch"
	"listing-tracker/internal/entity"
	"listing-tracker/internal/pipeline"
	"listing-tracker/internal/repository"
)

// SingleRunner is the one-URL pipeline boundary.
type SingleRunner interface {
	Run(ctx context.Context, url string, onStage pipeline.StageFunc) (*entity.Listing, error)
}

// BatchRunner is the multi-URL orchestrator boundary.
type BatchRunner interface {
	Run(ctx context.Context, urls []string) (*batch.Result, error)
}

type ScrapeHandler struct {
	single  SingleRunner
	batches BatchRunner
	status  repository.BatchStatusRepository
	log     *zap.SugaredLogger
}

func NewScrapeHandler(single SingleRunner, batches BatchRunner, status repository.BatchStatusRepository, log *zap.SugaredLogger) *ScrapeHandler {
	return &ScrapeHandler{single: single, batches: batches, status: status, log: log}
}

type scrapeRequest struct {
	URL string `json:"url"`
}

type scrapeBatchRequest struct {
	URLs []string `json:"urls"`
}

// Scrape processes one URL synchronously and returns the saved listing.
func (h *ScrapeHandler) Scrape(c *gin.Context) {
	var req scrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		c.JSON(http.StatusBadRequest, ErrorEnvelope{Error: APIError{Message: "url is required", Code: "bad_request"}})
		return
	}

	listing, err := h.single.Run(c.Request.Context(), req.URL, nil)
	if err != nil {
		h.log.Warnw("scrape failed", "url", req.URL, "err", err)
		status, code := statusFor(err)
		RespondError(c, status, code, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listing": listing})
}

// ScrapeBatch processes a list of URLs and returns the per-item outcomes.
// Individual failures are reported inside the result, never as an HTTP error.
func (h *ScrapeHandler) ScrapeBatch(c *gin.Context) {
	var req scrapeBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	res, err := h.batches.Run(c.Request.Context(), req.URLs)
	if err != nil {
		h.log.Warnw("batch failed to start", "urls", len(req.URLs), "err", err)
		status, code := statusFor(err)
		RespondError(c, status, code, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetBatch returns the live progress record for a running or finished batch.
func (h *ScrapeHandler) GetBatch(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	prog, err := h.status.GetByID(c.Request.Context(), id)
	if err != nil {
		status, code := statusFor(err)
		RespondError(c, status, code, err)
		return
	}
	c.JSON(http.StatusOK, prog)
}
