package llm

import (
	"context"
	"errors"
	"fmt"
)

// GenerateRequest is one schema-constrained generation call against a single
// model candidate.
type GenerateRequest struct {
	Model           string
	Prompt          string
	MaxOutputTokens int
}

// Generator is the interface the extraction engine depends on.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// ErrorKind classifies a failed generation call. The extraction engine
// decides retry-in-place vs. cascade-advance from it.
type ErrorKind int

const (
	// ErrorKindOther covers everything not classified below, including
	// malformed output. Advances the cascade without retry.
	ErrorKindOther ErrorKind = iota
	// ErrorKindTransient signals rate limiting or temporary unavailability.
	// Worth retrying the same candidate after a backoff.
	ErrorKindTransient
	// ErrorKindUnavailable signals a retired or unknown model. Advances the
	// cascade immediately.
	ErrorKindUnavailable
)

// ServiceError wraps a failed generation call with its classification.
type ServiceError struct {
	Kind   ErrorKind
	Status int
	Err    error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("generation call failed (status %d): %v", e.Status, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// KindOf extracts the classification from an error chain, defaulting to
// ErrorKindOther.
func KindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ErrorKindOther
}
