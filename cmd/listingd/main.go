package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"listing-tracker/internal/assemble"
	"listing-tracker/internal/batch"
	"listing-tracker/internal/common"
	"listing-tracker/internal/export"
	"listing-tracker/internal/extract"
	"listing-tracker/internal/fetch"
	"listing-tracker/internal/llm/openai"
	"listing-tracker/internal/normalize"
	"listing-tracker/internal/pipeline"
	"listing-tracker/internal/repository"
	"listing-tracker/internal/server"
)

func main() {
	// Loggers: slog (JSON) for the pipeline layers, zap for the HTTP surface.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	zl, _ := zap.NewProduction()
	defer zl.Sync()
	zlog := zl.Sugar()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pool, err := repository.Open(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := repository.Migrate(ctx, pool); err != nil {
		logger.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	listings := repository.NewListingRepository(pool, logger)
	batchStatus := repository.NewBatchStatusRepository(pool, logger)

	fetcher := fetch.NewClient(fetch.Config{
		APIKey:           cfg.Firecrawl.APIKey,
		BaseURL:          cfg.Firecrawl.BaseURL,
		Timeout:          cfg.Firecrawl.Timeout,
		MinContentLength: cfg.Firecrawl.MinContentLength,
	}, logger)

	generator := openai.NewClient(openai.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.LLM.Timeout,
	}, logger)

	engine := extract.NewEngine(logger, generator, extract.Config{
		Models:          cfg.LLM.Models,
		MaxRetries:      cfg.LLM.MaxRetries,
		RetryBackoff:    cfg.LLM.RetryBackoff,
		MaxOutputTokens: cfg.LLM.MaxOutputTokens,
	})

	pipe := pipeline.New(
		logger,
		fetcher,
		normalize.New(normalize.Config{MaxChars: cfg.Listing.NormalizerMaxChars}),
		engine,
		listings,
		assemble.Config{
			ImageSampleSize:      cfg.Listing.ImageSampleSize,
			LuxuryPriceThreshold: cfg.Listing.LuxuryPriceThreshold,
		},
	)

	orchestrator := batch.NewOrchestrator(logger, pipe, batchStatus, batch.Config{
		Stagger:   cfg.Batch.Stagger,
		Retention: cfg.Batch.Retention,
	})

	exporter := export.NewService(listings, logger)

	srv := server.NewServer(server.RouterConfig{
		ScrapeHandler:  server.NewScrapeHandler(pipe, orchestrator, batchStatus, zlog),
		ListingHandler: server.NewListingHandler(listings, exporter, zlog),
	})

	go func() {
		logger.Info("http serving", "addr", cfg.Server.HTTPAddr)
		if err := srv.Run(cfg.Server.HTTPAddr); err != nil {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")
}
