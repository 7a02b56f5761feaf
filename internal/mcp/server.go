// Package mcp exposes analysis and classification as Model Context Protocol
// tools over stdio.
package mcp

import (
	"context"
	"fmt"
	"io"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/codescribe/internal/cache"
	"github.com/standardbeagle/codescribe/internal/config"
	"github.com/standardbeagle/codescribe/internal/debug"
	"github.com/standardbeagle/codescribe/internal/version"
)

const serverName = "codescribe-mcp-server"

// Server holds the MCP server and state shared across tool calls. Warnings
// never reach stdout; each call collects its own.
type Server struct {
	server *mcp.Server
	cfg    *config.Config
	cache  *cache.FactCache
}

// NewServer creates a server whose tools default to cfg's project root.
// cfg may be nil, in which case each call loads the config for its root.
func NewServer(cfg *config.Config) (*Server, error) {
	entries := config.DefaultCacheEntries
	if cfg != nil {
		entries = cfg.Analysis.CacheEntries
	}
	c, err := cache.New(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to create fact cache: %w", err)
	}

	s := &Server{cfg: cfg, cache: c}
	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: version.Info(),
	}, nil)
	s.registerTools()
	return s, nil
}

// Start serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Start(ctx context.Context) error {
	debug.LogMCP("Starting MCP server with stdio transport")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "analyze_project",
		Description: "Analyze a project directory: file facts, detected frameworks, databases and deployment targets, architecture summary and health insights.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"root": {
					Type:        "string",
					Description: "Project root directory (defaults to the server's project root)",
				},
				"include_files": {
					Type:        "boolean",
					Description: "Include per-file fact records in the response",
				},
			},
		},
	}, s.handleAnalyzeProject)

	s.server.AddTool(&mcp.Tool{
		Name:        "classify_project",
		Description: "Classify a project as cli, webapp, api or generic, with the evidence and reasoning behind the choice.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"root": {
					Type:        "string",
					Description: "Project root directory (defaults to the server's project root)",
				},
			},
		},
	}, s.handleClassifyProject)
}

func quietLogger() *debug.Logger {
	return debug.NewLogger(io.Discard)
}
