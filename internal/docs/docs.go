package docs

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	cserrors "github.com/standardbeagle/codescribe/internal/errors"
	"github.com/standardbeagle/codescribe/internal/slug"
	"github.com/standardbeagle/codescribe/internal/types"
	"github.com/standardbeagle/codescribe/internal/version"
	"github.com/standardbeagle/codescribe/internal/workflow"
)

const (
	IndexFile    = "index.md"
	AnalysisFile = "analysis.json"
)

type analysisFile struct {
	Generator string `json:"generator"`
	BuildID   string `json:"buildId"`
	*types.ProjectAnalysis
}

// MarshalAnalysis renders a as indented JSON tagged with the generator
// version.
func MarshalAnalysis(a *types.ProjectAnalysis) ([]byte, error) {
	return json.MarshalIndent(analysisFile{
		Generator:       version.FullInfo(),
		BuildID:         version.BuildID(),
		ProjectAnalysis: a,
	}, "", "  ")
}

// WriteAnalysis writes a to analysis.json.
func WriteAnalysis(w Writer, a *types.ProjectAnalysis) error {
	data, err := MarshalAnalysis(a)
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}
	return w.Write(AnalysisFile, string(data)+"\n")
}

// Index renders the table of contents for a generated page set. Each entry
// carries an anchor derived from its title.
func Index(projectName string, out *workflow.Output) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s documentation\n\n", projectName)
	fmt.Fprintf(&b, "Archetype: **%s**\n\n", out.Verdict.CandidateName)
	b.WriteString("## Contents\n\n")

	seen := make(map[string]int)
	section := ""
	for _, p := range out.Pages {
		if dir := path.Dir(p.Path); dir != "." && dir != section {
			section = dir
			fmt.Fprintf(&b, "\n### %s\n\n", titleCase(dir))
		}
		fmt.Fprintf(&b, "- <a id=\"%s\"></a>[%s](%s)\n", slug.Unique(p.Title, seen), p.Title, p.Path)
	}
	fmt.Fprintf(&b, "\nRaw analysis: [%s](%s)\n", AnalysisFile, AnalysisFile)
	return b.String()
}

// WriteOutput writes every page, the index and the analysis. Failed writes
// do not stop the others; all failures are returned together. The paths
// written are returned in order.
func WriteOutput(w Writer, a *types.ProjectAnalysis, out *workflow.Output) ([]string, error) {
	var written []string
	var errs []error

	for _, p := range out.Pages {
		if err := w.Write(p.Path, ensureTrailingNewline(p.Content)); err != nil {
			errs = append(errs, err)
			continue
		}
		written = append(written, p.Path)
	}
	if err := w.Write(IndexFile, Index(a.ProjectName, out)); err != nil {
		errs = append(errs, err)
	} else {
		written = append(written, IndexFile)
	}
	if err := WriteAnalysis(w, a); err != nil {
		errs = append(errs, err)
	} else {
		written = append(written, AnalysisFile)
	}

	return written, cserrors.NewMultiError(errs).ErrOrNil()
}

func ensureTrailingNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
