// Package holistic computes project-wide quality heuristics from facts that
// were already extracted. Nothing here reads files or re-parses source.
package holistic

import (
	"fmt"
	"path"
	"strings"

	"github.com/standardbeagle/codescribe/internal/detect"
	"github.com/standardbeagle/codescribe/internal/filetype"
	"github.com/standardbeagle/codescribe/internal/types"
)

const (
	maxFunctionsPerFile = 10
	largeFileChars      = 1000
	largeFileMinFuncs   = 2
	maxParams           = 5
	coverageMultiplier  = 200
	securityPenalty     = 10
	performancePenalty  = 5
	complexityPenalty   = 5
	testableScore       = 80
	untestableScore     = 20
	modularScore        = 90
	monolithicScore     = 30
	complexityPerFunc   = 2
	complexityPerClass  = 3
	maxScore            = 100.0
)

// Sweep computes the insights for a. It reads Files and DetectedFrameworks
// and does not modify a.
func Sweep(a *types.ProjectAnalysis) *types.HolisticInsights {
	files := a.Files
	ins := &types.HolisticInsights{
		CodeSmells:       []types.CodeSmell{},
		SecurityFlags:    []types.HeuristicFlag{},
		PerformanceFlags: []types.HeuristicFlag{},
	}

	ins.AverageComplexity = averageComplexity(files)
	ins.CodeSmells = append(ins.CodeSmells, codeSmells(files)...)

	tests := 0
	for _, f := range files {
		if IsTestFile(f.RelativePath) {
			tests++
		}
	}
	if len(files) > 0 {
		ins.TestCoverageEstimate = min(maxScore, float64(tests)/float64(len(files))*coverageMultiplier)
	}

	ins.Patterns = patterns(files, a.DetectedFrameworks)

	ins.SecurityFlags = append(ins.SecurityFlags, securityFlags(files)...)
	ins.SecurityScore = max(0, maxScore-float64(securityPenalty*len(ins.SecurityFlags)))

	ins.PerformanceFlags = append(ins.PerformanceFlags, performanceFlags(files)...)
	ins.PerformanceScore = max(0, maxScore-float64(performancePenalty*len(ins.PerformanceFlags)))

	m := types.MaintainabilityBreakdown{
		Complexity:    max(0, maxScore-ins.AverageComplexity*complexityPenalty),
		Documentation: documentationRatio(files) * 100,
		Testability:   untestableScore,
		Modularity:    monolithicScore,
	}
	if tests > 0 {
		m.Testability = testableScore
	}
	if modular(files) {
		m.Modularity = modularScore
	}
	ins.Maintainability = m
	ins.MaintainabilityScore = (m.Complexity + m.Documentation + m.Testability + m.Modularity) / 4
	return ins
}

func complexity(f *types.FileRecord) int {
	return len(f.Functions)*complexityPerFunc + len(f.Classes)*complexityPerClass
}

func averageComplexity(files []*types.FileRecord) float64 {
	if len(files) == 0 {
		return 0
	}
	total := 0
	for _, f := range files {
		total += complexity(f)
	}
	return float64(total) / float64(len(files))
}

func codeSmells(files []*types.FileRecord) []types.CodeSmell {
	var smells []types.CodeSmell
	for _, f := range files {
		if n := len(f.Functions); n > maxFunctionsPerFile {
			smells = append(smells, types.CodeSmell{
				Kind:     "too-many-functions",
				Location: f.RelativePath,
				Detail:   fmt.Sprintf("%d functions", n),
			})
		}
		if len(f.RawContent) > largeFileChars && len(f.Functions) < largeFileMinFuncs {
			smells = append(smells, types.CodeSmell{
				Kind:     "large-file-few-functions",
				Location: f.RelativePath,
				Detail:   fmt.Sprintf("%d characters, %d functions", len(f.RawContent), len(f.Functions)),
			})
		}
		forEachFunction(f, func(fn types.FunctionFact) {
			if len(fn.ParamNames) > maxParams {
				smells = append(smells, types.CodeSmell{
					Kind:     "long-parameter-list",
					Location: fmt.Sprintf("%s:%d", f.RelativePath, fn.StartLine),
					Detail:   fmt.Sprintf("%s takes %d parameters", fn.Name, len(fn.ParamNames)),
				})
			}
		})
	}
	return smells
}

// forEachFunction visits top-level functions, then class methods.
func forEachFunction(f *types.FileRecord, fn func(types.FunctionFact)) {
	for _, x := range f.Functions {
		fn(x)
	}
	for _, c := range f.Classes {
		for _, m := range c.Methods {
			fn(m)
		}
	}
}

var testMarkers = []string{".test.", ".spec.", "_test.", "_spec.", "/test/", "/tests/", "/__tests__/", "/spec/"}

// IsTestFile reports whether a relative path looks like a test file.
func IsTestFile(rel string) bool {
	p := "/" + strings.ToLower(rel)
	for _, m := range testMarkers {
		if strings.Contains(p, m) {
			return true
		}
	}
	return strings.HasPrefix(path.Base(p), "test_")
}

func patterns(files []*types.FileRecord, frameworks []string) types.PatternMatches {
	var controller, model, view, ui, service, repository bool
	for _, f := range files {
		p := strings.ToLower(f.RelativePath)
		controller = controller || strings.Contains(p, "controller")
		model = model || strings.Contains(p, "model")
		view = view || strings.Contains(p, "view")
		ui = ui || len(f.UIComponents) > 0
		service = service || strings.Contains(p, "service")
		repository = repository || strings.Contains(p, "repository") || strings.Contains(p, "dao")
	}

	var pm types.PatternMatches
	pm.MVC = controller && model && (view || ui)
	pm.Layered = service && repository
	for _, tag := range frameworks {
		if detect.IsFrontend(tag) {
			pm.ComponentBased = true
			break
		}
	}
	return pm
}

var publicEnvPrefixes = []string{"NEXT_PUBLIC_", "VITE_", "REACT_APP_", "PUBLIC_", "NODE_ENV", "GATSBY_", "NUXT_PUBLIC_", "EXPO_PUBLIC_"}

// securityFlags applies each heuristic at most once per file.
func securityFlags(files []*types.FileRecord) []types.HeuristicFlag {
	var flags []types.HeuristicFlag
	for _, f := range files {
		c := f.RawContent
		if c == "" {
			continue
		}
		if strings.Contains(c, "eval(") || strings.Contains(c, "new Function(") {
			flags = append(flags, types.HeuristicFlag{Kind: "dynamic-code-evaluation", Location: f.RelativePath})
		}
		if strings.Contains(c, "dangerouslySetInnerHTML") || strings.Contains(c, ".innerHTML =") ||
			strings.Contains(c, ".innerHTML=") || strings.Contains(c, "v-html") {
			flags = append(flags, types.HeuristicFlag{Kind: "raw-html-injection", Location: f.RelativePath})
		}
		if isClientFile(f) && readsServerEnv(c) {
			flags = append(flags, types.HeuristicFlag{Kind: "client-server-env-access", Location: f.RelativePath})
		}
	}
	return flags
}

func isClientFile(f *types.FileRecord) bool {
	return len(f.UIComponents) > 0 || f.FileType == types.FileTypeMarkup || filetype.IsFrontendExtension(f.RelativePath)
}

// readsServerEnv reports a process.env access whose variable does not carry
// a public-to-the-browser prefix.
func readsServerEnv(content string) bool {
	const access = "process.env."
	for rest := content; ; {
		i := strings.Index(rest, access)
		if i < 0 {
			return false
		}
		rest = rest[i+len(access):]
		public := false
		for _, p := range publicEnvPrefixes {
			if strings.HasPrefix(rest, p) {
				public = true
				break
			}
		}
		if !public {
			return true
		}
	}
}

func performanceFlags(files []*types.FileRecord) []types.HeuristicFlag {
	var flags []types.HeuristicFlag
	for _, f := range files {
		c := f.RawContent
		if strings.Contains(c, "useEffect(") && !strings.Contains(c, "}, [") {
			flags = append(flags, types.HeuristicFlag{Kind: "effect-without-dependencies", Location: f.RelativePath})
		}
		if strings.Contains(c, ".map(") && strings.Contains(c, ".filter(") {
			flags = append(flags, types.HeuristicFlag{Kind: "map-filter-chain", Location: f.RelativePath})
		}
		forEachFunction(f, func(fn types.FunctionFact) {
			if strings.HasSuffix(fn.Name, "Sync") && !fn.IsAsync {
				flags = append(flags, types.HeuristicFlag{
					Kind:     "synchronous-call",
					Location: fmt.Sprintf("%s:%d", f.RelativePath, fn.StartLine),
				})
			}
		})
	}
	return flags
}

// documentationRatio is the fraction of files containing a comment marker.
func documentationRatio(files []*types.FileRecord) float64 {
	if len(files) == 0 {
		return 0
	}
	documented := 0
	for _, f := range files {
		if hasCommentMarker(f) {
			documented++
		}
	}
	return float64(documented) / float64(len(files))
}

func hasCommentMarker(f *types.FileRecord) bool {
	c := f.RawContent
	switch f.FileType {
	case types.FileTypePython, types.FileTypeShell, types.FileTypeYAMLConfig,
		types.FileTypeTOMLConfig, types.FileTypeDockerfile:
		return strings.Contains(c, "#")
	case types.FileTypeMarkup:
		return strings.Contains(c, "<!--") || strings.Contains(c, "//") || strings.Contains(c, "/*")
	}
	return strings.Contains(c, "//") || strings.Contains(c, "/*")
}

// modular reports whether some file below the project root exports symbols.
func modular(files []*types.FileRecord) bool {
	for _, f := range files {
		if strings.Contains(f.RelativePath, "/") && len(f.ExportedSymbols) > 0 {
			return true
		}
	}
	return false
}
