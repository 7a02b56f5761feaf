package workflow

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/codescribe/internal/debug"
	"github.com/standardbeagle/codescribe/internal/types"
)

// RuleWebFrameworkOverridesCLI is the named carve-out in archetype
// selection: when CLI and web-app both apply and the project has strong
// web framework evidence, web-app wins.
const RuleWebFrameworkOverridesCLI = "webFrameworkOverridesCLI"

// priority lists archetypes from most to least preferred.
var priority = []string{types.ArchetypeCLI, types.ArchetypeWebApp, types.ArchetypeAPI}

// Engine evaluates every registered detector and selects one archetype.
// An Engine is stateless between calls and safe for concurrent use.
type Engine struct {
	detectors []Detector
	logger    *debug.Logger
}

type Option func(*Engine)

// WithLogger reports warnings from detectors and generation failures to l.
func WithLogger(l *debug.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine registers the CLI, API and web-app detectors, in that order.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	e.detectors = []Detector{
		cliDetector{logger: e.logger},
		apiDetector{},
		webAppDetector{},
	}
	return e
}

// Classify runs the default engine without a logger.
func Classify(a *types.ProjectAnalysis) types.ClassificationVerdict {
	return NewEngine().Classify(a)
}

// Classify evaluates each detector independently and picks the archetype by
// fixed priority. With no applicable detector the verdict is generic.
func (e *Engine) Classify(a *types.ProjectAnalysis) types.ClassificationVerdict {
	verdict := types.ClassificationVerdict{
		CandidateName: types.ArchetypeGeneric,
		ReasonTrail:   []string{},
		Evidence:      map[string]any{},
	}
	if a == nil {
		verdict.ReasonTrail = append(verdict.ReasonTrail, "no analysis; using generic")
		return verdict
	}

	applicable := make(map[string]bool, len(e.detectors))
	for _, d := range e.detectors {
		ev := d.CanHandle(a)
		verdict.Evidence[d.Name()] = ev
		if ev.Applies {
			applicable[d.Name()] = true
			verdict.ReasonTrail = append(verdict.ReasonTrail,
				fmt.Sprintf("%s applies: %s", d.Name(), strings.Join(ev.Reasons, "; ")))
		} else if len(ev.Reasons) > 0 {
			verdict.ReasonTrail = append(verdict.ReasonTrail,
				fmt.Sprintf("%s does not apply: %s", d.Name(), strings.Join(ev.Reasons, "; ")))
		} else {
			verdict.ReasonTrail = append(verdict.ReasonTrail, d.Name()+" does not apply")
		}
	}

	name, reason := selectArchetype(a, applicable)
	verdict.CandidateName = name
	verdict.ReasonTrail = append(verdict.ReasonTrail, reason)

	for _, line := range verdict.ReasonTrail {
		debug.LogClassify("%s", line)
	}
	return verdict
}

func selectArchetype(a *types.ProjectAnalysis, applicable map[string]bool) (string, string) {
	if applicable[types.ArchetypeCLI] && applicable[types.ArchetypeWebApp] {
		if web := strongWebEvidence(a); web != "" {
			return types.ArchetypeWebApp, fmt.Sprintf("selected %s by rule %s (%s)", types.ArchetypeWebApp, RuleWebFrameworkOverridesCLI, web)
		}
	}
	for _, name := range priority {
		if applicable[name] {
			return name, fmt.Sprintf("selected %s by priority", name)
		}
	}
	return types.ArchetypeGeneric, "no detector applies; using generic"
}
