package workflow

import (
	"path"
	"strings"

	"github.com/standardbeagle/codescribe/internal/detect"
	"github.com/standardbeagle/codescribe/internal/types"
)

// frontendDependencies are browser UI packages.
var frontendDependencies = set(
	"react", "react-dom", "next", "vue", "nuxt", "svelte", "@sveltejs/kit",
	"@angular/core", "solid-js", "preact", "astro", "gatsby", "@remix-run/react",
	"@builder.io/qwik",
)

// coreWebDependencies are strong enough evidence to override CLI evidence.
var coreWebDependencies = set("react", "next", "vue", "nuxt", "svelte", "@angular/core")

var uiDirs = set("components", "pages", "views")

var frameworkExtensions = set(".tsx", ".jsx", ".vue", ".svelte", ".astro")

type webAppDetector struct{}

func (webAppDetector) Name() string { return types.ArchetypeWebApp }

func (webAppDetector) CanHandle(a *types.ProjectAnalysis) Evaluation {
	ev := newEvaluation()

	for _, tag := range a.DetectedFrameworks {
		if detect.IsFrontend(tag) {
			ev.add("frameworks", "frontend framework", tag)
		}
	}
	for _, dep := range dependencyNames(a) {
		switch {
		case frontendDependencies[dep]:
			ev.add("dependencies", "frontend dependency", dep)
		case serverDependencies[dep]:
			// Server frameworks are API evidence; kept here for the trail.
			ev.note("serverDependencies", "server dependency left to api", dep)
		}
	}
	for _, f := range a.Files {
		if seg, ok := hasSegment(f.RelativePath, uiDirs); ok {
			ev.add("paths", "UI directory "+seg, f.RelativePath)
		} else if frameworkExtensions[strings.ToLower(path.Ext(f.RelativePath))] {
			ev.add("paths", "framework file", f.RelativePath)
		}
		for _, c := range f.UIComponents {
			ev.add("components", "UI component", c.Name)
		}
	}
	return ev
}

func frontendTag(a *types.ProjectAnalysis) string {
	for _, tag := range a.DetectedFrameworks {
		if detect.IsFrontend(tag) {
			return tag
		}
	}
	return ""
}

// strongWebEvidence names a frontend framework tag or core web dependency,
// or returns "".
func strongWebEvidence(a *types.ProjectAnalysis) string {
	if tag := frontendTag(a); tag != "" {
		return "framework " + tag
	}
	for _, dep := range dependencyNames(a) {
		if coreWebDependencies[dep] {
			return "dependency " + dep
		}
	}
	return ""
}
