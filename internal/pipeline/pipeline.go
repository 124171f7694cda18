// Package pipeline runs the full per-URL flow: fetch, normalize, extract,
// assemble, persist.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"listing-tracker/constants"
	"listing-tracker/internal/assemble"
	"listing-tracker/internal/entity"
	"listing-tracker/internal/normalize"
	"listing-tracker/internal/repository"
)

// ContentFetcher is the content fetch collaborator boundary.
type ContentFetcher interface {
	ScrapeMarkdown(ctx context.Context, url string) (string, error)
}

// FieldExtractor is the extraction engine boundary.
type FieldExtractor interface {
	Extract(ctx context.Context, text string) (entity.ExtractedFields, error)
}

// StageFunc observes stage transitions; nil is allowed for the single-item
// path, which has no progress record.
type StageFunc func(status constants.ItemStatus, message string)

// Pipeline wires the per-URL stages together.
type Pipeline struct {
	Logger     *slog.Logger
	Fetcher    ContentFetcher
	Normalizer *normalize.Normalizer
	Extractor  FieldExtractor
	Listings   repository.ListingRepository
	Assembly   assemble.Config
}

func New(logger *slog.Logger, fetcher ContentFetcher, norm *normalize.Normalizer, extractor FieldExtractor, listings repository.ListingRepository, assembly assemble.Config) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if norm == nil {
		norm = normalize.New(normalize.Config{})
	}
	return &Pipeline{
		Logger:     logger,
		Fetcher:    fetcher,
		Normalizer: norm,
		Extractor:  extractor,
		Listings:   listings,
		Assembly:   assembly,
	}
}

// Run processes one URL end to end and returns the persisted listing. Only
// fetch failures and extraction exhaustion propagate; the engine absorbs
// transient and model-availability errors internally.
func (p *Pipeline) Run(ctx context.Context, url string, onStage StageFunc) (*entity.Listing, error) {
	start := time.Now()
	notify := func(status constants.ItemStatus, message string) {
		if onStage != nil {
			onStage(status, message)
		}
	}

	notify(constants.ItemStatusScraping, "Fetching page content...")
	raw, err := p.Fetcher.ScrapeMarkdown(ctx, url)
	if err != nil {
		p.Logger.Error("pipeline.fetch.failed", "url", url, "err", err)
		return nil, err
	}
	text := p.Normalizer.Normalize(raw)
	p.Logger.Info("pipeline.fetch.ok", "url", url, "raw_chars", len(raw), "normalized_chars", len(text))

	notify(constants.ItemStatusParsing, "Extracting listing fields...")
	fields, err := p.Extractor.Extract(ctx, text)
	if err != nil {
		p.Logger.Error("pipeline.extract.failed", "url", url, "err", err)
		return nil, err
	}

	notify(constants.ItemStatusSaving, "Saving listing...")
	listing := assemble.Assemble(fields, url, p.Assembly)
	if err := p.Listings.Create(ctx, listing); err != nil {
		p.Logger.Error("pipeline.save.failed", "url", url, "err", err)
		return nil, fmt.Errorf("save listing: %w", err)
	}

	p.Logger.Info("pipeline.ok",
		"url", url,
		"listing_id", listing.ID,
		"display_id", listing.DisplayID,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return listing, nil
}
