package llm

import (
	"context"
	"errors"
	"time"

	"github.com/standardbeagle/codescribe/internal/debug"
)

// DefaultRetryBase is used when Retry is given a non-positive base delay.
const DefaultRetryBase = 300 * time.Millisecond

// Retry retries Generate up to maxAttempts with exponential backoff
// starting at baseDelay. A *PermanentError is returned at once, and a
// cancelled context stops the loop, including during backoff.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = DefaultRetryBase
	}
	return func(next TextGenerator) TextGenerator {
		return &retrying{next: next, max: maxAttempts, base: baseDelay}
	}
}

type retrying struct {
	next TextGenerator
	max  int
	base time.Duration
}

func (r *retrying) Generate(ctx context.Context, prompt string) (string, error) {
	var last error
	for i := 0; i < r.max; i++ {
		out, err := r.next.Generate(ctx, prompt)
		if err == nil {
			return out, nil
		}
		var pErr *PermanentError
		if errors.As(err, &pErr) {
			return "", err
		}
		last = err
		if i == r.max-1 {
			break
		}

		delay := r.base * time.Duration(1<<i)
		debug.LogLLM("attempt %d failed: %v; retrying in %v", i+1, err, delay)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return "", last
}
