package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"

	"listing-tracker/internal/llm"
)

// Generate implements llm.Generator with a single JSON-mode chat completion
// against the requested model candidate. It performs no retries of its own;
// the extraction engine owns the cascade and backoff policy. Failures come
// back classified as *llm.ServiceError.
func (c *Client) Generate(ctx context.Context, req llm.GenerateRequest) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	c.log.Info("llm.generate.start",
		"req_id", rid,
		"model", req.Model,
		"prompt_len", len(req.Prompt),
		"max_output_tokens", req.MaxOutputTokens,
	)

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{
				Type: "json_object",
			},
		},
	}
	if req.MaxOutputTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxOutputTokens))
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		classified := classify(err)
		c.log.Error("llm.generate.call_error",
			"req_id", rid,
			"model", req.Model,
			"kind", int(llm.KindOf(classified)),
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", classified
	}

	if len(completion.Choices) == 0 {
		c.log.Error("llm.generate.no_choices",
			"req_id", rid, "model", req.Model,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", &llm.ServiceError{Kind: llm.ErrorKindOther, Err: fmt.Errorf("no completion choices returned")}
	}

	content := completion.Choices[0].Message.Content
	c.log.Info("llm.generate.ok",
		"req_id", rid,
		"model", req.Model,
		"output_len", len(content),
		"total_tokens", completion.Usage.TotalTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

// classify maps SDK errors onto the engine's failure classes: 429 and 5xx
// service hiccups retry in place, 404 means the model candidate is gone.
func classify(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		if errors.Is(err, context.DeadlineExceeded) {
			return &llm.ServiceError{Kind: llm.ErrorKindTransient, Err: err}
		}
		return &llm.ServiceError{Kind: llm.ErrorKindOther, Err: err}
	}

	switch apiErr.StatusCode {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable:
		return &llm.ServiceError{Kind: llm.ErrorKindTransient, Status: apiErr.StatusCode, Err: err}
	case http.StatusNotFound:
		return &llm.ServiceError{Kind: llm.ErrorKindUnavailable, Status: apiErr.StatusCode, Err: err}
	default:
		return &llm.ServiceError{Kind: llm.ErrorKindOther, Status: apiErr.StatusCode, Err: err}
	}
}
