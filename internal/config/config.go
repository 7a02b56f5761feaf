package config

import (
	"os"
	"path/filepath"
	"time"
)

// FileName is the project configuration file looked up in the project root
// and in the user's home directory.
const FileName = ".codescribe.kdl"

// Defaults shared by the config parser, the validator and callers that run
// without a config file.
const (
	DefaultBatchSize    = 4
	DefaultMaxFileSize  = 2 * 1024 * 1024
	DefaultCacheEntries = 2048
	DefaultModel        = "gemini-2.5-flash"
	DefaultMaxAttempts  = 3
	DefaultRetryBaseMs  = 300
	DefaultOutputDir    = "docs"
	DefaultFormat       = "markdown"
	DefaultDebounceMs   = 250
)

type Config struct {
	Version    int
	Project    Project
	Analysis   Analysis
	Generation Generation
	Watch      Watch
	Include    []string
	Exclude    []string
}

type Project struct {
	Root string
	Name string
}

type Analysis struct {
	BatchSize int // directories analyzed concurrently
	// FileTimeoutMs bounds the read and parse of one file. 0 disables the
	// timeout and a slow parse stalls its batch.
	FileTimeoutMs    int
	MaxFileSize      int64
	CacheEntries     int // fact cache capacity; 0 disables the cache
	RespectGitignore bool
}

type Generation struct {
	Model       string
	MaxAttempts int
	RetryBaseMs int
	OutputDir   string
	Format      string
}

type Watch struct {
	DebounceMs int
}

// FileTimeout returns the per-file timeout, zero when disabled.
func (a Analysis) FileTimeout() time.Duration {
	return time.Duration(a.FileTimeoutMs) * time.Millisecond
}

func (g Generation) RetryBase() time.Duration {
	return time.Duration(g.RetryBaseMs) * time.Millisecond
}

func (w Watch) Debounce() time.Duration {
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// Default returns the configuration used when no config file exists.
func Default(root string) *Config {
	return &Config{
		Version: 1,
		Project: Project{Root: root},
		Analysis: Analysis{
			BatchSize:        DefaultBatchSize,
			FileTimeoutMs:    0,
			MaxFileSize:      DefaultMaxFileSize,
			CacheEntries:     DefaultCacheEntries,
			RespectGitignore: true,
		},
		Generation: Generation{
			Model:       DefaultModel,
			MaxAttempts: DefaultMaxAttempts,
			RetryBaseMs: DefaultRetryBaseMs,
			OutputDir:   DefaultOutputDir,
			Format:      DefaultFormat,
		},
		Watch:   Watch{DebounceMs: DefaultDebounceMs},
		Include: []string{},
		Exclude: []string{},
	}
}

// DefaultExclusions are always excluded from discovery: dependency
// directories, build output, version control, minified and test files.
func DefaultExclusions() []string {
	return []string{
		"**/node_modules/**",
		"**/dist/**",
		"**/build/**",
		"**/.git/**",
		"**/.next/**",
		"**/coverage/**",
		"**/*.min.js",
		"**/*.test.*",
		"**/*.spec.*",
	}
}

func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

// LoadWithRoot loads configuration for the project in rootDir. An explicit
// path names the config file to use. Otherwise ~/.codescribe.kdl is used
// as a base and rootDir/.codescribe.kdl overrides it; exclusions from both
// are kept. The result is validated and has defaults applied.
func LoadWithRoot(path string, rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}
	absDir, err := filepath.Abs(searchDir)
	if err == nil {
		searchDir = absDir
	}

	var cfg *Config
	if path != "" {
		cfg, err = loadKDLFile(path)
		if err != nil {
			return nil, err
		}
	} else {
		var base *Config
		if homeDir, err := os.UserHomeDir(); err == nil && homeDir != searchDir {
			if globalCfg, err := LoadKDL(homeDir); err == nil && globalCfg != nil {
				base = globalCfg
			}
		}

		project, err := LoadKDL(searchDir)
		if err != nil {
			return nil, err
		}

		switch {
		case base != nil && project != nil:
			cfg = mergeConfigs(base, project)
		case project != nil:
			cfg = project
		case base != nil:
			cfg = base
			cfg.Project.Root = searchDir
		default:
			cfg = Default(searchDir)
		}
	}

	if rootDir != "" {
		cfg.Project.Root = searchDir
	}
	if err := NewValidator().ValidateAndSetDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeConfigs merges a base config with a project config. Project settings
// win; exclusions from both are kept, and base inclusions apply only when
// the project declares none.
func mergeConfigs(base, project *Config) *Config {
	merged := *project
	merged.Exclude = dedupe(append(append([]string{}, base.Exclude...), project.Exclude...))
	if len(project.Include) == 0 && len(base.Include) > 0 {
		merged.Include = append([]string{}, base.Include...)
	}
	return &merged
}

func dedupe(patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
