// Package llm wraps the external text generation service behind a small
// interface so documentation workflows can run against Gemini, a recorded
// script, or nothing at all.
package llm

import (
	"context"
	"fmt"
)

// TextGenerator turns a prompt into generated text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to TextGenerator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Middleware decorates a TextGenerator with a cross-cutting concern.
type Middleware func(TextGenerator) TextGenerator

// Wrap applies middlewares in left-to-right order.
// Wrap(inner, A, B) => A(B(inner))
func Wrap(inner TextGenerator, mws ...Middleware) TextGenerator {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// PermanentError marks an error that retrying will not fix, such as a
// rejected API key or an empty response.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	if e.Err == nil {
		return "permanent error"
	}
	return fmt.Sprintf("permanent error: %v", e.Err)
}

func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) *PermanentError {
	return &PermanentError{Err: err}
}
