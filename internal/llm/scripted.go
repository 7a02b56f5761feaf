package llm

import (
	"context"
	"errors"
	"sync"
)

// ErrScriptExhausted is returned once a Scripted generator has no replies
// left.
var ErrScriptExhausted = errors.New("scripted generator exhausted")

// Reply is one scripted response: Err wins over Text when set.
type Reply struct {
	Text string
	Err  error
}

// Scripted replays a fixed sequence of replies and records every prompt it
// receives. It is safe for concurrent use.
type Scripted struct {
	mu      sync.Mutex
	replies []Reply
	prompts []string
	// Repeat makes the last reply answer every call after the script ends.
	Repeat bool
}

func NewScripted(replies ...Reply) *Scripted {
	return &Scripted{replies: replies}
}

// Text returns a Scripted that answers every prompt with text.
func Text(text string) *Scripted {
	return &Scripted{replies: []Reply{{Text: text}}, Repeat: true}
}

// Failing returns a Scripted that fails every prompt with err.
func Failing(err error) *Scripted {
	return &Scripted{replies: []Reply{{Err: err}}, Repeat: true}
}

func (s *Scripted) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prompts = append(s.prompts, prompt)
	idx := len(s.prompts) - 1
	if idx >= len(s.replies) {
		if !s.Repeat || len(s.replies) == 0 {
			return "", ErrScriptExhausted
		}
		idx = len(s.replies) - 1
	}
	r := s.replies[idx]
	if r.Err != nil {
		return "", r.Err
	}
	return r.Text, nil
}

// Prompts returns the prompts received so far.
func (s *Scripted) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}
