package workflow

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/codescribe/internal/slug"
	"github.com/standardbeagle/codescribe/internal/types"
)

// genericWorkflow renders its pages straight from the analysis. It never
// calls the model, so it is always available as the fallback output.
type genericWorkflow struct{}

func (genericWorkflow) Name() string { return types.ArchetypeGeneric }

func (genericWorkflow) Pages(a *types.ProjectAnalysis) []Page {
	return []Page{
		{Path: "overview.md", Title: "Overview", Content: renderOverview(a)},
		{Path: "file-reference.md", Title: "File Reference", Content: renderFileReference(a)},
	}
}

func renderOverview(a *types.ProjectAnalysis) string {
	var b strings.Builder
	c := a.Counts()

	fmt.Fprintf(&b, "# %s\n\n", a.ProjectName)
	if a.ManifestKind != "" {
		fmt.Fprintf(&b, "Manifest: `%s`\n\n", a.ManifestKind)
	}

	b.WriteString("## Stack\n\n")
	fmt.Fprintf(&b, "- Frameworks: %s\n", joinOrNone(a.DetectedFrameworks))
	fmt.Fprintf(&b, "- Databases: %s\n", joinOrNone(databaseTags(a)))
	fmt.Fprintf(&b, "- Deployment: %s\n\n", joinOrNone(deploymentTags(a)))

	b.WriteString("## Contents\n\n")
	b.WriteString("| Files | Functions | Classes | Components | Routes | Queries |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %d | %d |\n\n",
		c.Files, c.Functions, c.Classes, c.Components, c.Routes, c.Queries)

	if sigs := a.ArchitectureSummary.APISignatures; len(sigs) > 0 {
		b.WriteString("## API\n\n")
		for _, s := range sigs {
			fmt.Fprintf(&b, "- `%s`\n", s)
		}
		b.WriteString("\n")
	}

	if h := a.HolisticInsights; h != nil {
		b.WriteString("## Health\n\n")
		fmt.Fprintf(&b, "- Maintainability: %.1f\n", h.MaintainabilityScore)
		fmt.Fprintf(&b, "- Security: %.1f\n", h.SecurityScore)
		fmt.Fprintf(&b, "- Performance: %.1f\n", h.PerformanceScore)
		fmt.Fprintf(&b, "- Estimated test coverage: %.1f%%\n", h.TestCoverageEstimate)
	}
	return b.String()
}

func renderFileReference(a *types.ProjectAnalysis) string {
	var b strings.Builder
	b.WriteString("# File Reference\n\n")

	seen := make(map[string]int)
	for _, f := range a.Files {
		fmt.Fprintf(&b, "## <a id=\"%s\"></a>%s\n\n", slug.Unique(f.RelativePath, seen), f.RelativePath)
		fmt.Fprintf(&b, "Type: %s, %d bytes", f.FileType, f.SizeBytes)
		if f.ParseFailed {
			b.WriteString(", not parsed")
		}
		b.WriteString("\n\n")

		for _, fn := range f.Functions {
			fmt.Fprintf(&b, "- func `%s(%s)` line %d\n", fn.Name, strings.Join(fn.ParamNames, ", "), fn.StartLine)
		}
		for _, cl := range f.Classes {
			fmt.Fprintf(&b, "- class `%s` with %d methods\n", cl.Name, len(cl.Methods))
		}
		for _, c := range f.UIComponents {
			fmt.Fprintf(&b, "- component `%s`\n", c.Name)
		}
		for _, r := range f.Routes {
			fmt.Fprintf(&b, "- route `%s %s`\n", r.HTTPMethod, r.PathPattern)
		}
		if len(f.Functions)+len(f.Classes)+len(f.UIComponents)+len(f.Routes) > 0 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
