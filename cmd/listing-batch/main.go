package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

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
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		out = flag.String("out", "", "write an XLSX of all saved listings to this path after the run")
	)
	flag.Parse()

	urls := flag.Args()
	if len(urls) == 0 {
		printError("Error: at least one listing URL is required\n")
		printError("Usage: listing-batch [--out listings.xlsx] URL [URL ...]\n")
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

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

	res, err := orchestrator.Run(ctx, urls)
	if err != nil {
		logger.Error("batch run failed", "error", err)
		os.Exit(1)
	}

	if *out != "" {
		exporter := export.NewService(listings, logger)
		xlsxBytes, err := exporter.ExportListingsXLSX(ctx)
		if err != nil {
			logger.Error("failed to export listings", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
			logger.Error("failed to write output file", "error", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Batch complete!\n")
	fmt.Printf("- Batch ID: %s\n", res.BatchID)
	fmt.Printf("- URLs processed: %d\n", res.Processed)
	fmt.Printf("- Failures: %d\n", res.Failed)
	for _, item := range res.Items {
		if item.OK {
			fmt.Printf("  [ok]   %s -> %s\n", item.URL, item.DisplayID)
		} else {
			fmt.Printf("  [fail] %s: %s\n", item.URL, item.Error)
		}
	}
	if *out != "" {
		fmt.Printf("- Output: %s\n", *out)
	}
}
