package workflow

import (
	"strings"

	"github.com/standardbeagle/codescribe/internal/debug"
	"github.com/standardbeagle/codescribe/internal/types"
)

// cliLibraries are argument parsing libraries across the supported
// ecosystems.
var cliLibraries = set(
	"commander", "yargs", "meow", "@oclif/core", "cac", "minimist", "clipanion",
	"clap", "structopt",
	"click", "typer", "docopt",
	"github.com/spf13/cobra", "github.com/urfave/cli/v2", "github.com/urfave/cli", "github.com/alecthomas/kingpin/v2",
)

// webScriptMarkers are dev/build/start conventions of web frameworks. A
// script that mentions one is not CLI evidence.
var webScriptMarkers = []string{
	"next", "vite", "react-scripts", "nuxt", "ng serve", "astro", "gatsby",
	"remix", "svelte-kit", "webpack serve",
}

var commandDirs = set("bin", "commands", "cmd")

var dependencyDirs = set("node_modules", "vendor", "components")

type cliDetector struct {
	logger *debug.Logger
}

func (cliDetector) Name() string { return types.ArchetypeCLI }

func (d cliDetector) CanHandle(a *types.ProjectAnalysis) Evaluation {
	ev := newEvaluation()

	for _, dep := range dependencyNames(a) {
		if cliLibraries[dep] {
			ev.add("dependencies", "CLI library dependency", dep)
		}
	}
	for _, name := range sortedKeys(a.BinEntries) {
		ev.add("bin", "executable declared in manifest", name)
	}
	for _, key := range sortedKeys(a.Scripts) {
		if isCLIScript(key, a.Scripts[key]) {
			ev.add("scripts", "CLI-style script", key)
		}
	}
	for _, f := range a.Files {
		if _, skip := hasSegment(f.RelativePath, dependencyDirs); skip {
			continue
		}
		if isCommandPath(f.RelativePath) {
			ev.add("paths", "command path", f.RelativePath)
		}
		if strings.HasPrefix(f.RawContent, "#!") {
			ev.add("shebang", "executable script", f.RelativePath)
		}
	}

	if ev.Applies {
		if web := webEvidence(a); web != "" {
			debug.LogClassify("cli evidence co-occurs with web evidence (%s); priority rules decide", web)
			if d.logger != nil {
				d.logger.Warnf("", 0, "CLI evidence found alongside web-app evidence (%s); archetype priority decides", web)
			}
		}
	}
	return ev
}

func isCLIScript(key, value string) bool {
	for _, m := range webScriptMarkers {
		if strings.Contains(value, m) {
			return false
		}
	}
	k := strings.ToLower(key)
	if strings.Contains(k, "cli") || strings.Contains(k, "bin") {
		return true
	}
	return strings.HasPrefix(strings.TrimSpace(value), "node ")
}

func isCommandPath(rel string) bool {
	lower := strings.ToLower(rel)
	base := lower[strings.LastIndex(lower, "/")+1:]
	if strings.Contains(base, "cli.") {
		return true
	}
	_, ok := hasSegment(rel, commandDirs)
	return ok
}

// webEvidence names the first piece of web-app evidence, or "".
func webEvidence(a *types.ProjectAnalysis) string {
	if tag := frontendTag(a); tag != "" {
		return "framework " + tag
	}
	for _, dep := range dependencyNames(a) {
		if frontendDependencies[dep] {
			return "dependency " + dep
		}
	}
	return ""
}
