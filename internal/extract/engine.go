// Package extract drives the schema-constrained generation call through a
// model-candidate cascade and merges its output with the heuristic fallback.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"listing-tracker/internal/common"
	"listing-tracker/internal/entity"
	"listing-tracker/internal/heuristic"
	"listing-tracker/internal/llm"
)

const (
	defaultMaxRetries      = 2
	defaultRetryBackoff    = 3 * time.Second
	defaultMaxOutputTokens = 2048
)

// Config holds cascade behavior knobs.
type Config struct {
	// Models is the candidate cascade, primary first.
	Models []string
	// MaxRetries bounds transient-failure retries per candidate.
	MaxRetries int
	// RetryBackoff is the fixed wait between transient retries.
	RetryBackoff time.Duration
	// MaxOutputTokens is the output-size ceiling per generation call.
	MaxOutputTokens int
}

// Engine is the structured extraction engine.
type Engine struct {
	Logger    *slog.Logger
	Generator llm.Generator
	Cfg       Config
}

func NewEngine(logger *slog.Logger, gen llm.Generator, cfg Config) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = defaultRetryBackoff
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = defaultMaxOutputTokens
	}
	return &Engine{Logger: logger, Generator: gen, Cfg: cfg}
}

// Extract returns a fully merged field set for the normalized text, or
// common.ErrExtractionExhausted when neither the cascade nor the heuristic
// fallback yields a price or an address.
func (e *Engine) Extract(ctx context.Context, text string) (entity.ExtractedFields, error) {
	prompt := llm.BuildExtractionPrompt(text)
	schema := llm.BuildListingJSONSchema()

	for _, model := range e.Cfg.Models {
		fields, ok := e.tryCandidate(ctx, model, prompt, schema)
		if !ok {
			continue
		}

		// A model success with null key fields still gets the heuristic pass;
		// model-sourced values are never overwritten.
		if missingKeyFields(fields) {
			e.Logger.Info("engine.merge.heuristic_fill", "model", model)
			fields = entity.Coalesce(fields, heuristic.Extract(text))
		}
		return e.finish(fields)
	}

	// Terminal fallback: every candidate exhausted.
	e.Logger.Warn("engine.cascade.exhausted", "candidates", len(e.Cfg.Models))
	return e.finish(heuristic.Extract(text))
}

// tryCandidate issues up to 1+MaxRetries calls against one model. The second
// return is false when the cascade should advance.
func (e *Engine) tryCandidate(ctx context.Context, model, prompt string, schema map[string]any) (entity.ExtractedFields, bool) {
	for attempt := 0; ; attempt++ {
		start := time.Now()
		raw, err := e.Generator.Generate(ctx, llm.GenerateRequest{
			Model:           model,
			Prompt:          prompt,
			MaxOutputTokens: e.Cfg.MaxOutputTokens,
		})
		if err == nil {
			fields, perr := parseResult(raw, schema)
			if perr != nil {
				e.Logger.Warn("engine.candidate.bad_output",
					"model", model, "error", perr,
					"elapsed_ms", time.Since(start).Milliseconds(),
				)
				return entity.ExtractedFields{}, false
			}
			e.Logger.Info("engine.candidate.ok",
				"model", model, "attempt", attempt,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return fields, true
		}

		switch llm.KindOf(err) {
		case llm.ErrorKindTransient:
			if attempt >= e.Cfg.MaxRetries {
				e.Logger.Warn("engine.candidate.retries_exhausted", "model", model, "attempts", attempt+1)
				return entity.ExtractedFields{}, false
			}
			e.Logger.Info("engine.candidate.backoff",
				"model", model, "attempt", attempt, "backoff", e.Cfg.RetryBackoff.String(),
			)
			select {
			case <-ctx.Done():
				return entity.ExtractedFields{}, false
			case <-time.After(e.Cfg.RetryBackoff):
			}
		case llm.ErrorKindUnavailable:
			e.Logger.Warn("engine.candidate.unavailable", "model", model)
			return entity.ExtractedFields{}, false
		default:
			e.Logger.Warn("engine.candidate.failed", "model", model, "error", err)
			return entity.ExtractedFields{}, false
		}
	}
}

// finish applies the minimal-usefulness guard shared by both exit paths.
func (e *Engine) finish(fields entity.ExtractedFields) (entity.ExtractedFields, error) {
	if fields.Price == nil && fields.Address == nil {
		return entity.ExtractedFields{}, fmt.Errorf("%w: no price or address found", common.ErrExtractionExhausted)
	}
	return fields, nil
}

// parseResult strips any code-fence wrapping, validates shape, and decodes.
func parseResult(raw string, schema map[string]any) (entity.ExtractedFields, error) {
	content := []byte(llm.StripCodeFence(raw))
	if err := llm.ValidateJSONAgainstSchema(schema, content); err != nil {
		return entity.ExtractedFields{}, err
	}
	var fields entity.ExtractedFields
	if err := json.Unmarshal(content, &fields); err != nil {
		return entity.ExtractedFields{}, fmt.Errorf("unmarshal fields: %w", err)
	}
	return fields, nil
}

// missingKeyFields reports whether any merge-trigger field is null.
func missingKeyFields(f entity.ExtractedFields) bool {
	return f.SqftLot == nil || f.ARMLS == nil || f.Price == nil || f.Address == nil
}
