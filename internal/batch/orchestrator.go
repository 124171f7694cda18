// Package batch fans a list of URLs out over the per-URL pipeline while
// keeping a live progress record that pollers can read mid-run.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"listing-tracker/constants"
	"listing-tracker/internal/common"
	"listing-tracker/internal/entity"
	"listing-tracker/internal/pipeline"
	"listing-tracker/internal/repository"
)

// Runner is the per-URL pipeline boundary.
type Runner interface {
	Run(ctx context.Context, url string, onStage pipeline.StageFunc) (*entity.Listing, error)
}

type Config struct {
	// Stagger delays item k's start by k*Stagger to spread load on the
	// fetch and model services.
	Stagger   time.Duration
	Retention time.Duration
}

func (c Config) withDefaults() Config {
	if c.Stagger <= 0 {
		c.Stagger = 500 * time.Millisecond
	}
	if c.Retention <= 0 {
		c.Retention = 7 * 24 * time.Hour
	}
	return c
}

// ItemResult is the final outcome for one URL.
type ItemResult struct {
	Index     int    `json:"index"`
	URL       string `json:"url"`
	OK        bool   `json:"ok"`
	DisplayID string `json:"displayId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Result summarizes a finished batch run.
type Result struct {
	BatchID   uuid.UUID    `json:"batchId"`
	Total     int          `json:"total"`
	Processed int          `json:"processed"`
	Failed    int          `json:"failed"`
	Items     []ItemResult `json:"results"`
}

// statusUpdate is what workers send; they never touch the progress record.
type statusUpdate struct {
	index   int
	status  constants.ItemStatus
	message string
}

type Orchestrator struct {
	log      *slog.Logger
	runner   Runner
	progress repository.BatchStatusRepository
	cfg      Config
}

func NewOrchestrator(logger *slog.Logger, runner Runner, progress repository.BatchStatusRepository, cfg Config) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{log: logger, runner: runner, progress: progress, cfg: cfg.withDefaults()}
}

// Run processes every URL concurrently and blocks until all items reach a
// terminal status. Item failures never abort the batch; only an empty URL
// list or a failure to create the progress record returns an error.
//
// A single writer goroutine owns the progress record. Workers report stage
// transitions over a channel and the writer applies them, recounts the
// aggregates, and persists each snapshot, so no two goroutines ever
// read-modify-write the record concurrently.
func (o *Orchestrator) Run(ctx context.Context, urls []string) (*Result, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: no URLs to process", common.ErrValidation)
	}

	prog := entity.NewBatchProgress(urls, o.cfg.Retention)
	if err := o.progress.Create(ctx, prog); err != nil {
		return nil, fmt.Errorf("create batch record: %w", err)
	}
	start := time.Now()
	o.log.Info("batch.start", "batch_id", prog.ID, "total", prog.Total)

	updates := make(chan statusUpdate, len(urls)*4)
	writerDone := make(chan struct{})
	go o.writeProgress(ctx, prog, updates, writerDone)

	results := make([]ItemResult, len(urls))
	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			results[i] = o.runItem(ctx, i, url, updates)
		}(i, url)
	}
	wg.Wait()
	close(updates)
	<-writerDone

	res := &Result{
		BatchID:   prog.ID,
		Total:     prog.Total,
		Processed: prog.Completed,
		Failed:    prog.Failed,
		Items:     results,
	}
	o.log.Info("batch.done",
		"batch_id", prog.ID,
		"total", res.Total,
		"processed", res.Processed,
		"failed", res.Failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// runItem drives one URL through the pipeline, reporting transitions over
// the updates channel. Each item writes only its own results slot.
func (o *Orchestrator) runItem(ctx context.Context, index int, url string, updates chan<- statusUpdate) ItemResult {
	if index > 0 {
		select {
		case <-time.After(time.Duration(index) * o.cfg.Stagger):
		case <-ctx.Done():
			updates <- statusUpdate{index, constants.ItemStatusError, "Canceled before start"}
			return ItemResult{Index: index, URL: url, Error: ctx.Err().Error()}
		}
	}

	listing, err := o.runner.Run(ctx, url, func(status constants.ItemStatus, message string) {
		updates <- statusUpdate{index, status, message}
	})
	if err != nil {
		o.log.Warn("batch.item.failed", "index", index, "url", url, "err", err)
		updates <- statusUpdate{index, constants.ItemStatusError, err.Error()}
		return ItemResult{Index: index, URL: url, Error: err.Error()}
	}

	updates <- statusUpdate{index, constants.ItemStatusSuccess, "Saved as " + listing.DisplayID}
	return ItemResult{Index: index, URL: url, OK: true, DisplayID: listing.DisplayID}
}

// writeProgress is the sole owner of prog after the batch starts. It drains
// the channel, drops any update for an already-terminal item, recounts the
// aggregates from the item list, and persists every snapshot.
func (o *Orchestrator) writeProgress(ctx context.Context, prog *entity.BatchProgress, updates <-chan statusUpdate, done chan<- struct{}) {
	defer close(done)

	for u := range updates {
		item := &prog.Items[u.index]
		if item.Status.Terminal() {
			continue
		}
		item.Status = u.status
		item.Message = u.message
		prog.Recount()
		prog.CurrentStatus = fmt.Sprintf("[%d/%d] %s", u.index+1, prog.Total, u.message)

		if err := o.progress.Put(ctx, prog); err != nil {
			o.log.Warn("batch.progress.put_failed", "batch_id", prog.ID, "err", err)
		}
	}

	prog.Recount()
	prog.CurrentStatus = fmt.Sprintf("Completed %d of %d (%d failed)", prog.Completed, prog.Total, prog.Failed)
	if err := o.progress.Put(ctx, prog); err != nil {
		o.log.Warn("batch.progress.put_failed", "batch_id", prog.ID, "err", err)
	}
}
