package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/codescribe/internal/analyzer"
	"github.com/standardbeagle/codescribe/internal/config"
	"github.com/standardbeagle/codescribe/internal/debug"
	"github.com/standardbeagle/codescribe/internal/types"
	"github.com/standardbeagle/codescribe/internal/workflow"
)

type AnalyzeParams struct {
	Root         string `json:"root,omitempty"`
	IncludeFiles bool   `json:"include_files,omitempty"`
}

type ClassifyParams struct {
	Root string `json:"root,omitempty"`
}

// AnalyzeResponse is the analyze_project result.
type AnalyzeResponse struct {
	ProjectName  string                    `json:"projectName"`
	RootPath     string                    `json:"rootPath"`
	ManifestKind string                    `json:"manifestKind,omitempty"`
	Counts       types.FactCounts          `json:"counts"`
	Frameworks   []string                  `json:"frameworks"`
	Databases    []types.DatabaseInfo      `json:"databases"`
	Deployment   []types.DeploymentTarget  `json:"deployment"`
	Architecture types.ArchitectureSummary `json:"architecture"`
	Insights     *types.HolisticInsights   `json:"insights,omitempty"`
	Warnings     []string                  `json:"warnings"`
	Files        []*types.FileRecord       `json:"files,omitempty"`
}

// ClassifyResponse is the classify_project result.
type ClassifyResponse struct {
	ProjectName string         `json:"projectName"`
	Verdict     string         `json:"verdict"`
	Reasons     []string       `json:"reasons"`
	Evidence    map[string]any `json:"evidence"`
}

func (s *Server) handleAnalyzeProject(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params AnalyzeParams
	if err := decodeParams(req, &params); err != nil {
		return createErrorResponse("analyze_project", err)
	}

	a, err := s.analyze(ctx, params.Root)
	if err != nil {
		return createErrorResponse("analyze_project", err)
	}

	resp := AnalyzeResponse{
		ProjectName:  a.ProjectName,
		RootPath:     a.RootPath,
		ManifestKind: a.ManifestKind,
		Counts:       a.Counts(),
		Frameworks:   a.DetectedFrameworks,
		Databases:    a.DetectedDatabases,
		Deployment:   a.DetectedDeploymentTargets,
		Architecture: a.ArchitectureSummary,
		Insights:     a.HolisticInsights,
		Warnings:     a.Warnings,
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	if params.IncludeFiles {
		resp.Files = a.Files
	}
	return createJSONResponse(resp)
}

func (s *Server) handleClassifyProject(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params ClassifyParams
	if err := decodeParams(req, &params); err != nil {
		return createErrorResponse("classify_project", err)
	}

	a, err := s.analyze(ctx, params.Root)
	if err != nil {
		return createErrorResponse("classify_project", err)
	}

	v := workflow.Classify(a)
	return createJSONResponse(ClassifyResponse{
		ProjectName: a.ProjectName,
		Verdict:     v.CandidateName,
		Reasons:     v.ReasonTrail,
		Evidence:    v.Evidence,
	})
}

func decodeParams(req *mcp.CallToolRequest, dst any) error {
	if req == nil || req.Params == nil || len(req.Params.Arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Params.Arguments, dst); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

func (s *Server) analyze(ctx context.Context, root string) (*types.ProjectAnalysis, error) {
	cfg, err := s.configFor(root)
	if err != nil {
		return nil, err
	}
	debug.LogMCP("analyzing %s", cfg.Project.Root)
	return analyzer.Analyze(ctx, cfg.Project.Root,
		analyzer.WithConfig(cfg),
		analyzer.WithLogger(quietLogger()),
		analyzer.WithCache(s.cache),
	)
}

// configFor returns the server config for its own root and loads the
// project config for any other root.
func (s *Server) configFor(root string) (*config.Config, error) {
	if root == "" && s.cfg != nil {
		return s.cfg, nil
	}
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("no root given and working directory is unavailable: %w", err)
		}
		root = cwd
	}
	if s.cfg != nil && root == s.cfg.Project.Root {
		return s.cfg, nil
	}
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("project root %s is not accessible: %w", root, err)
	}
	return config.LoadWithRoot("", root)
}
