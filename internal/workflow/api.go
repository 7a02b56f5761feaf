package workflow

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/codescribe/internal/detect"
	"github.com/standardbeagle/codescribe/internal/types"
)

// serverDependencies are HTTP server frameworks.
var serverDependencies = set(
	"express", "fastify", "koa", "@nestjs/core", "hono", "@hapi/hapi", "restify",
	"django", "flask", "fastapi",
	"actix-web", "axum", "rocket",
	"github.com/gin-gonic/gin", "github.com/labstack/echo/v4", "github.com/gofiber/fiber/v2", "github.com/go-chi/chi/v5",
)

var apiDirs = set("routes", "router", "controllers", "controller", "api", "server", "handlers")

type apiDetector struct{}

func (apiDetector) Name() string { return types.ArchetypeAPI }

func (apiDetector) CanHandle(a *types.ProjectAnalysis) Evaluation {
	ev := newEvaluation()

	for _, dep := range dependencyNames(a) {
		if serverDependencies[dep] {
			ev.add("dependencies", "server framework dependency", dep)
		}
	}
	for _, tag := range a.DetectedFrameworks {
		if detect.IsServer(tag) {
			ev.add("frameworks", "server framework", tag)
		}
	}

	routes, components := 0, 0
	for _, f := range a.Files {
		if seg, ok := apiSegment(f.RelativePath); ok {
			ev.add("paths", "API directory "+seg, f.RelativePath)
		}
		for _, r := range f.Routes {
			ev.add("routes", "route", r.HTTPMethod+" "+r.PathPattern)
		}
		routes += len(f.Routes)
		components += len(f.UIComponents)
	}
	if routes > components {
		ev.add("balance", "routes outnumber UI components", fmt.Sprintf("%d routes, %d components", routes, components))
	}
	return ev
}

func apiSegment(rel string) (string, bool) {
	for _, s := range segments(rel) {
		if apiDirs[s] || strings.Contains(s, "controller") {
			return s, true
		}
	}
	return "", false
}
