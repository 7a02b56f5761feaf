package llm

import (
	"context"
	"errors"
	"strings"

	genai "google.golang.org/genai"

	"github.com/standardbeagle/codescribe/internal/debug"
)

// Gemini is a thin wrapper around the official genai client. Retries are
// applied with middleware.
type Gemini struct {
	cli   *genai.Client
	model string
}

// NewGemini creates a client on the Gemini API backend. The API key is read
// from GEMINI_API_KEY or GOOGLE_API_KEY by the genai client.
func NewGemini(ctx context.Context, model string) (*Gemini, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, NewPermanentError(err)
	}
	return &Gemini{cli: cli, model: model}, nil
}

func (g *Gemini) Name() string { return "Gemini:" + g.model }

// Generate asks for markdown text and returns the first candidate.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	debug.LogLLM("generate model=%s prompt=%d bytes", g.model, len(prompt))

	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{ResponseMIMEType: "text/plain"},
	)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", NewPermanentError(errors.New("gemini returned no candidates"))
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", NewPermanentError(errors.New("gemini returned empty text"))
	}
	return text, nil
}
