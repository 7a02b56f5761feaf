package workflow

import (
	"fmt"
	"sort"
	"strings"

	"github.com/standardbeagle/codescribe/internal/slug"
	"github.com/standardbeagle/codescribe/internal/types"
)

// Page is one documentation page. Pages built for the model carry a Prompt
// and receive Content from generation; fixed pages carry Content only.
type Page struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Prompt  string `json:"prompt,omitempty"`
	Content string `json:"content,omitempty"`
}

// Workflow builds the page set for one archetype.
type Workflow interface {
	Name() string
	Pages(a *types.ProjectAnalysis) []Page
}

// For returns the workflow of an archetype, falling back to generic for
// unknown names.
func For(name string) Workflow {
	switch name {
	case types.ArchetypeCLI:
		return cliWorkflow{}
	case types.ArchetypeWebApp:
		return webAppWorkflow{}
	case types.ArchetypeAPI:
		return apiWorkflow{}
	default:
		return genericWorkflow{}
	}
}

type cliWorkflow struct{}

func (cliWorkflow) Name() string { return types.ArchetypeCLI }

func (cliWorkflow) Pages(a *types.ProjectAnalysis) []Page {
	ctx := projectContext(a, types.ArchetypeCLI)

	var cmds strings.Builder
	for _, name := range sortedKeys(a.BinEntries) {
		fmt.Fprintf(&cmds, "- executable %s -> %s\n", name, a.BinEntries[name])
	}
	for _, name := range sortedKeys(a.Scripts) {
		fmt.Fprintf(&cmds, "- script %s: %s\n", name, a.Scripts[name])
	}
	for _, f := range a.Files {
		if isCommandPath(f.RelativePath) {
			fmt.Fprintf(&cmds, "- %s exports %s\n", f.RelativePath, joinOrNone(f.ExportedSymbols))
		}
	}

	var cfg strings.Builder
	for _, f := range filesOfType(a, types.FileTypeJSONConfig, types.FileTypeYAMLConfig, types.FileTypeTOMLConfig) {
		fmt.Fprintf(&cfg, "- %s (%s)\n", f.RelativePath, f.FileType)
	}

	return []Page{
		page("Overview", ctx+"Write an overview of this command-line tool: what it does, how to install it and a quick start example."),
		page("Commands", ctx+"Document every command and its flags. Known entry points:\n"+orNone(cmds.String())),
		page("Configuration", ctx+"Document configuration files and environment variables the tool reads. Config files:\n"+orNone(cfg.String())),
	}
}

var routingDirs = set("pages", "routes", "app")

type webAppWorkflow struct{}

func (webAppWorkflow) Name() string { return types.ArchetypeWebApp }

func (webAppWorkflow) Pages(a *types.ProjectAnalysis) []Page {
	ctx := projectContext(a, types.ArchetypeWebApp)

	var comps, state strings.Builder
	for _, f := range a.Files {
		for _, c := range f.UIComponents {
			fmt.Fprintf(&comps, "- %s in %s, props: %s, hooks: %s\n",
				c.Name, f.RelativePath, joinOrNone(c.Props), joinOrNone(c.Hooks))
			if len(c.Hooks) > 0 {
				fmt.Fprintf(&state, "- %s uses %s\n", c.Name, strings.Join(c.Hooks, ", "))
			}
		}
	}

	var routing strings.Builder
	for _, f := range a.Files {
		if seg, ok := hasSegment(f.RelativePath, routingDirs); ok {
			fmt.Fprintf(&routing, "- %s (%s)\n", f.RelativePath, seg)
		}
		for _, r := range f.Routes {
			fmt.Fprintf(&routing, "- %s %s in %s\n", r.HTTPMethod, r.PathPattern, f.RelativePath)
		}
	}

	return []Page{
		page("Overview", ctx+"Write an overview of this web application: its purpose, stack and how to run it locally."),
		page("Components", ctx+"Document the UI components, their props and how they compose. Components:\n"+orNone(comps.String())),
		page("Routing", ctx+"Document the pages and client or server routes. Known routes:\n"+orNone(routing.String())),
		page("State", ctx+"Document how state is managed and shared between components. Hook usage:\n"+orNone(state.String())),
	}
}

type apiWorkflow struct{}

func (apiWorkflow) Name() string { return types.ArchetypeAPI }

func (apiWorkflow) Pages(a *types.ProjectAnalysis) []Page {
	ctx := projectContext(a, types.ArchetypeAPI)
	pages := []Page{
		page("Overview", ctx+"Write an overview of this API: what it serves, authentication and how to run it."),
	}

	groups := routeGroups(a)
	seen := make(map[string]int)
	for _, g := range sortedGroupNames(groups) {
		var b strings.Builder
		for _, r := range groups[g] {
			fmt.Fprintf(&b, "- %s %s", r.HTTPMethod, r.PathPattern)
			if r.HandlerName != "" {
				fmt.Fprintf(&b, " -> %s", r.HandlerName)
			}
			if len(r.Middleware) > 0 {
				fmt.Fprintf(&b, " (middleware: %s)", strings.Join(r.Middleware, ", "))
			}
			b.WriteByte('\n')
		}
		title := "Endpoints: " + g
		pages = append(pages, Page{
			Path:   "endpoints/" + slug.Unique(g, seen) + ".md",
			Title:  title,
			Prompt: ctx + "Document each endpoint with parameters, request body and responses:\n" + b.String(),
		})
	}

	var model strings.Builder
	for _, db := range a.DetectedDatabases {
		fmt.Fprintf(&model, "- %s tables: %s\n", db.TypeTag, joinOrNone(db.TableNames))
	}
	for _, f := range a.Files {
		for _, q := range f.DatabaseQueries {
			fmt.Fprintf(&model, "- %s at %s: %s\n", q.OperationKind, q.LocationLabel, truncate(q.RawQueryText, 120))
		}
	}
	pages = append(pages, page("Data Model", ctx+"Document the data model and storage. Known databases and queries:\n"+orNone(model.String())))
	return pages
}

// routeGroups keys routes by the first static segment of their path.
func routeGroups(a *types.ProjectAnalysis) map[string][]types.RouteFact {
	groups := make(map[string][]types.RouteFact)
	for _, f := range a.Files {
		for _, r := range f.Routes {
			g := "root"
			for _, seg := range strings.Split(r.PathPattern, "/") {
				if seg != "" && !strings.HasPrefix(seg, ":") && !strings.HasPrefix(seg, "{") {
					g = seg
					break
				}
			}
			groups[g] = append(groups[g], r)
		}
	}
	return groups
}

func sortedGroupNames(groups map[string][]types.RouteFact) []string {
	names := make([]string, 0, len(groups))
	for g := range groups {
		names = append(names, g)
	}
	sort.Strings(names)
	return names
}

func page(title, prompt string) Page {
	return Page{Path: slug.Make(title) + ".md", Title: title, Prompt: prompt}
}

// projectContext is the fact header shared by every prompt of a workflow.
func projectContext(a *types.ProjectAnalysis, archetype string) string {
	var b strings.Builder
	c := a.Counts()
	fmt.Fprintf(&b, "You are writing markdown documentation for the %s project %q.\n", archetype, a.ProjectName)
	fmt.Fprintf(&b, "Frameworks: %s\n", joinOrNone(a.DetectedFrameworks))
	fmt.Fprintf(&b, "Databases: %s\n", joinOrNone(databaseTags(a)))
	fmt.Fprintf(&b, "Deployment: %s\n", joinOrNone(deploymentTags(a)))
	fmt.Fprintf(&b, "Files: %d, functions: %d, classes: %d, components: %d, routes: %d, queries: %d\n\n",
		c.Files, c.Functions, c.Classes, c.Components, c.Routes, c.Queries)
	return b.String()
}

func filesOfType(a *types.ProjectAnalysis, want ...types.FileType) []*types.FileRecord {
	var out []*types.FileRecord
	for _, f := range a.Files {
		for _, t := range want {
			if f.FileType == t {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

func databaseTags(a *types.ProjectAnalysis) []string {
	tags := make([]string, 0, len(a.DetectedDatabases))
	for _, d := range a.DetectedDatabases {
		tags = append(tags, d.TypeTag)
	}
	return tags
}

func deploymentTags(a *types.ProjectAnalysis) []string {
	tags := make([]string, 0, len(a.DetectedDeploymentTargets))
	for _, d := range a.DetectedDeploymentTargets {
		tags = append(tags, d.PlatformTag)
	}
	return tags
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func orNone(s string) string {
	if s == "" {
		return "- none found\n"
	}
	return s
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
