package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/codescribe/internal/analyzer"
	"github.com/standardbeagle/codescribe/internal/config"
	"github.com/standardbeagle/codescribe/internal/debug"
	"github.com/standardbeagle/codescribe/internal/docs"
	"github.com/standardbeagle/codescribe/internal/llm"
	"github.com/standardbeagle/codescribe/internal/mcp"
	"github.com/standardbeagle/codescribe/internal/output"
	"github.com/standardbeagle/codescribe/internal/types"
	"github.com/standardbeagle/codescribe/internal/watch"
	"github.com/standardbeagle/codescribe/internal/workflow"
)

// runAnalysis loads the config and analyzes its project root, echoing
// progress in verbose mode.
func runAnalysis(c *cli.Context) (*config.Config, *types.ProjectAnalysis, error) {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return nil, nil, err
	}

	a, err := analyzer.Analyze(c.Context, cfg.Project.Root,
		analyzer.WithConfig(cfg),
		analyzer.WithProgress(func(status string, percent int) {
			output.Verbose(fmt.Sprintf("%3d%% %s", percent, status))
		}),
	)
	if err != nil {
		return nil, nil, err
	}
	return cfg, a, nil
}

func analyzeCommand(c *cli.Context) error {
	_, a, err := runAnalysis(c)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		data, err := docs.MarshalAnalysis(a)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(c.App.Writer, string(data))
		return err
	}

	printSummary(a)
	return nil
}

func printSummary(a *types.ProjectAnalysis) {
	counts := a.Counts()
	output.Success(fmt.Sprintf("Analyzed %s (%d files)", a.ProjectName, counts.Files))
	if a.ManifestKind != "" {
		output.Step("Manifest: " + a.ManifestKind)
	}
	output.Step("Frameworks: " + joinOrNone(a.DetectedFrameworks))

	var dbs []string
	for _, db := range a.DetectedDatabases {
		dbs = append(dbs, db.TypeTag)
	}
	output.Step("Databases: " + joinOrNone(dbs))

	var targets []string
	for _, t := range a.DetectedDeploymentTargets {
		targets = append(targets, t.PlatformTag)
	}
	output.Step("Deployment: " + joinOrNone(targets))
	output.Step(fmt.Sprintf("Functions: %d  Classes: %d  Components: %d  Routes: %d  Queries: %d",
		counts.Functions, counts.Classes, counts.Components, counts.Routes, counts.Queries))
	if counts.ParseFailures > 0 {
		output.Step(fmt.Sprintf("Parse failures: %d", counts.ParseFailures))
	}
	if h := a.HolisticInsights; h != nil {
		output.Step(fmt.Sprintf("Maintainability: %.0f  Security: %.0f  Performance: %.0f",
			h.MaintainabilityScore, h.SecurityScore, h.PerformanceScore))
	}
	for _, w := range a.Warnings {
		output.Info(w)
	}
}

func classifyCommand(c *cli.Context) error {
	_, a, err := runAnalysis(c)
	if err != nil {
		return err
	}

	verdict := workflow.Classify(a)
	if c.Bool("json") {
		data, err := json.MarshalIndent(verdict, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(c.App.Writer, string(data))
		return err
	}

	output.Success(fmt.Sprintf("%s is a %s project", a.ProjectName, verdict.CandidateName))
	for _, reason := range verdict.ReasonTrail {
		output.Step(reason)
	}
	return nil
}

func generateCommand(c *cli.Context) error {
	cfg, a, err := runAnalysis(c)
	if err != nil {
		return err
	}

	logger := debug.NewStderrLogger()
	engine := workflow.NewEngine(workflow.WithLogger(logger))

	if c.Bool("dry-run") {
		plan := engine.Plan(a)
		output.Info(fmt.Sprintf("Would generate %d %s pages", len(plan.Pages), plan.Verdict.CandidateName))
		for _, p := range plan.Pages {
			output.Step(fmt.Sprintf("%s  %s", p.Path, p.Title))
		}
		return nil
	}

	var gen llm.TextGenerator
	gemini, err := llm.NewGemini(c.Context, cfg.Generation.Model)
	if err != nil {
		// Without a client the engine falls back to generic documentation.
		logger.Warnf("", 0, "text generator unavailable: %v", err)
	} else {
		gen = llm.Wrap(gemini, llm.Retry(cfg.Generation.MaxAttempts, cfg.Generation.RetryBase()))
		output.Verbose("Using " + gemini.Name())
	}

	out := engine.Generate(c.Context, a, gen)

	outDir := c.String("out")
	if outDir == "" {
		outDir = filepath.Join(cfg.Project.Root, cfg.Generation.OutputDir)
	}
	written, err := docs.WriteOutput(docs.NewDirWriter(outDir), a, out)
	for _, p := range written {
		output.Step(p)
	}
	if err != nil {
		return err
	}

	output.Success(fmt.Sprintf("Wrote %d %s pages to %s", len(out.Pages), out.Verdict.CandidateName, outDir))
	return nil
}

func watchCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(cfg.Project.Root, cfg, func(r watch.Result) {
		if r.Err != nil {
			output.Error(fmt.Sprintf("run %d: %v", r.Run, r.Err))
			return
		}
		if len(r.Changed) > 0 {
			output.Info(fmt.Sprintf("Changed: %s", strings.Join(r.Changed, ", ")))
		}
		output.Success(fmt.Sprintf("run %d: %s is a %s project (%d files)",
			r.Run, r.Analysis.ProjectName, r.Verdict.CandidateName, len(r.Analysis.Files)))
	})
	if err != nil {
		return err
	}

	output.Info("Watching " + cfg.Project.Root + " (Ctrl+C to stop)")
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func mcpCommand(c *cli.Context) error {
	// Stdout belongs to the stdio transport.
	debug.SetMCPMode(true)
	output.SetOutput(os.Stderr)

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := server.Start(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
