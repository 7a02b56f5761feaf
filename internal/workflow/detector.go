// Package workflow classifies an analyzed project into one documentation
// archetype and drives page generation for it.
package workflow

import (
	"fmt"
	"sort"
	"strings"

	"github.com/standardbeagle/codescribe/internal/types"
)

// Evaluation is one detector's verdict on a project. Evidence groups the
// matched items by category; Reasons are the same facts as sentences.
type Evaluation struct {
	Applies  bool                `json:"applies"`
	Reasons  []string            `json:"reasons"`
	Evidence map[string][]string `json:"evidence"`
}

// Detector decides whether an archetype applies. CanHandle must only read
// the analysis.
type Detector interface {
	Name() string
	CanHandle(a *types.ProjectAnalysis) Evaluation
}

// maxEvidence caps the items kept per evidence category.
const maxEvidence = 10

func newEvaluation() Evaluation {
	return Evaluation{Reasons: []string{}, Evidence: map[string][]string{}}
}

// add records item under category as evidence that the archetype applies.
func (e *Evaluation) add(category, reason, item string) {
	e.note(category, reason, item)
	e.Applies = true
}

// note records item under category without making the archetype apply.
// The first item of a category adds a reason line; later ones only extend
// the evidence list.
func (e *Evaluation) note(category, reason, item string) {
	items := e.Evidence[category]
	for _, it := range items {
		if it == item {
			return
		}
	}
	if len(items) == 0 {
		e.Reasons = append(e.Reasons, fmt.Sprintf("%s: %s", reason, item))
	}
	if len(items) < maxEvidence {
		e.Evidence[category] = append(items, item)
	}
}

// dependencyNames returns declared dependencies and devDependencies, sorted.
func dependencyNames(a *types.ProjectAnalysis) []string {
	names := make([]string, 0, len(a.DeclaredDependencies)+len(a.DeclaredDevDependencies))
	for k := range a.DeclaredDependencies {
		names = append(names, k)
	}
	for k := range a.DeclaredDevDependencies {
		if _, dup := a.DeclaredDependencies[k]; !dup {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// segments splits a project-relative path into lowercase directory names,
// dropping the file name.
func segments(rel string) []string {
	parts := strings.Split(strings.ToLower(strings.ReplaceAll(rel, "\\", "/")), "/")
	if len(parts) <= 1 {
		return nil
	}
	return parts[:len(parts)-1]
}

func hasSegment(rel string, names map[string]bool) (string, bool) {
	for _, s := range segments(rel) {
		if names[s] {
			return s, true
		}
	}
	return "", false
}

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}
