package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/standardbeagle/codescribe/internal/debug"
	cserrors "github.com/standardbeagle/codescribe/internal/errors"
	"github.com/standardbeagle/codescribe/internal/llm"
	"github.com/standardbeagle/codescribe/internal/types"
)

// Output is one generated documentation set.
type Output struct {
	Verdict types.ClassificationVerdict `json:"verdict"`
	Pages   []Page                      `json:"pages"`
}

var errEmptyResponse = errors.New("empty response")

// Plan classifies a and returns the chosen workflow's pages without
// generating any content.
func (e *Engine) Plan(a *types.ProjectAnalysis) *Output {
	v := e.Classify(a)
	return &Output{Verdict: v, Pages: For(v.CandidateName).Pages(a)}
}

// Generate classifies a and fills the chosen workflow's pages through gen.
// Any generation failure is logged and replaced by the generic workflow's
// fixed output under the generic verdict; Generate itself never fails.
func (e *Engine) Generate(ctx context.Context, a *types.ProjectAnalysis, gen llm.TextGenerator) *Output {
	out := e.Plan(a)
	name := out.Verdict.CandidateName
	if name == types.ArchetypeGeneric {
		return out
	}

	pages, err := generatePages(ctx, name, out.Pages, gen)
	if err == nil {
		out.Pages = pages
		return out
	}

	debug.LogLLM("%v", err)
	if e.logger != nil {
		e.logger.Errorf("", 0, "%v; falling back to generic documentation", err)
	}

	v := out.Verdict
	v.Evidence = make(map[string]any, len(out.Verdict.Evidence)+1)
	for k, val := range out.Verdict.Evidence {
		v.Evidence[k] = val
	}
	v.Evidence["fallbackFrom"] = name
	v.ReasonTrail = append(append([]string{}, out.Verdict.ReasonTrail...),
		fmt.Sprintf("generation failed for %s: %v; using generic", name, err))
	v.CandidateName = types.ArchetypeGeneric

	return &Output{Verdict: v, Pages: genericWorkflow{}.Pages(a)}
}

func generatePages(ctx context.Context, workflow string, pages []Page, gen llm.TextGenerator) ([]Page, error) {
	if gen == nil {
		return nil, cserrors.NewGenerationError(workflow, "", errors.New("no text generator configured"))
	}
	out := make([]Page, len(pages))
	for i, p := range pages {
		text, err := gen.Generate(ctx, p.Prompt)
		if err == nil && strings.TrimSpace(text) == "" {
			err = errEmptyResponse
		}
		if err != nil {
			return nil, cserrors.NewGenerationError(workflow, p.Path, err)
		}
		p.Content = text
		out[i] = p
	}
	return out, nil
}
