package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/codescribe/internal/config"
	"github.com/standardbeagle/codescribe/internal/debug"
	"github.com/standardbeagle/codescribe/internal/output"
	"github.com/standardbeagle/codescribe/internal/version"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", root, err)
		}
		root = abs
	}

	cfg, err := config.LoadWithRoot(c.String("config"), root)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = append(cfg.Exclude, excludeFlags...)
	}
	return cfg, nil
}

func newApp() *cli.App {
	return &cli.App{
		Name:                   "codescribe",
		Usage:                  "Analyze a codebase and generate documentation for it",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (default: " + config.FileName + " in the project root)",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Only analyze files matching glob patterns (e.g., --include 'src/**')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude files matching glob patterns, in addition to the defaults",
			},
			// -v belongs to the built-in --version flag.
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Show progress and debug information",
			},
		},
		Before: func(c *cli.Context) error {
			output.SetOutput(c.App.Writer)
			output.SetVerbose(c.Bool("verbose"))
			if c.Bool("verbose") {
				debug.SetDebugOutput(c.App.ErrWriter)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "analyze",
				Usage: "Analyze the project and print a summary",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Print the full analysis as JSON",
					},
				},
				Action: analyzeCommand,
			},
			{
				Name:  "classify",
				Usage: "Classify the project archetype and show the reasoning",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Print the verdict as JSON",
					},
				},
				Action: classifyCommand,
			},
			{
				Name:  "generate",
				Usage: "Generate documentation for the project",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: generation.output_dir under the root)",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Show the pages that would be generated without calling the model",
					},
				},
				Action: generateCommand,
			},
			{
				Name:   "watch",
				Usage:  "Re-analyze and classify the project whenever files change",
				Action: watchCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Start MCP (Model Context Protocol) server with stdio transport",
				Action: mcpCommand,
			},
		},
	}
}

func main() {
	// Provides GEMINI_API_KEY / GOOGLE_API_KEY for generation.
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		output.Error(err.Error())
		os.Exit(1)
	}
}
