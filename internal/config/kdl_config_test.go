package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cserrors "github.com/standardbeagle/codescribe/internal/errors"
)

func TestParseKDL_Defaults(t *testing.T) {
	cfg, err := parseKDL("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, DefaultBatchSize, cfg.Analysis.BatchSize)
	assert.Equal(t, 0, cfg.Analysis.FileTimeoutMs)
	assert.Zero(t, cfg.Analysis.FileTimeout())
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.Analysis.MaxFileSize)
	assert.True(t, cfg.Analysis.RespectGitignore)
	assert.Equal(t, DefaultModel, cfg.Generation.Model)
	assert.Equal(t, DefaultMaxAttempts, cfg.Generation.MaxAttempts)
	assert.Equal(t, DefaultDebounceMs, cfg.Watch.DebounceMs)
	assert.Empty(t, cfg.Exclude)
}

func TestParseKDL_AllSections(t *testing.T) {
	kdlContent := `
project {
    root "./app"
    name "shop"
}
analysis {
    batch_size 8
    file_timeout_ms 1500
    max_file_size "512KB"
    cache_entries 0
    respect_gitignore false
}
generation {
    model "gemini-2.5-pro"
    max_attempts 5
    retry_base_ms 100
    output_dir "site/docs"
    format "markdown"
}
watch {
    debounce_ms 50
}
include "src/**" "lib/**"
exclude {
    "**/fixtures/**"
}
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)

	assert.Equal(t, "./app", cfg.Project.Root)
	assert.Equal(t, "shop", cfg.Project.Name)
	assert.Equal(t, 8, cfg.Analysis.BatchSize)
	assert.Equal(t, 1500, cfg.Analysis.FileTimeoutMs)
	assert.Equal(t, "1.5s", cfg.Analysis.FileTimeout().String())
	assert.Equal(t, int64(512*1024), cfg.Analysis.MaxFileSize)
	assert.Equal(t, 0, cfg.Analysis.CacheEntries)
	assert.False(t, cfg.Analysis.RespectGitignore)
	assert.Equal(t, "gemini-2.5-pro", cfg.Generation.Model)
	assert.Equal(t, 5, cfg.Generation.MaxAttempts)
	assert.Equal(t, "100ms", cfg.Generation.RetryBase().String())
	assert.Equal(t, "site/docs", cfg.Generation.OutputDir)
	assert.Equal(t, "50ms", cfg.Watch.Debounce().String())
	assert.Equal(t, []string{"src/**", "lib/**"}, cfg.Include)
	assert.Equal(t, []string{"**/fixtures/**"}, cfg.Exclude)
}

func TestParseKDL_UnknownSectionSuggestion(t *testing.T) {
	_, err := parseKDL("analyis {\n    batch_size 2\n}\n")
	require.Error(t, err)

	var cerr *cserrors.ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "analysis", cerr.Suggestion)
	assert.Contains(t, err.Error(), `did you mean "analysis"?`)
}

func TestParseKDL_UnknownKeySuggestion(t *testing.T) {
	_, err := parseKDL("generation {\n    modle \"x\"\n}\n")
	var cerr *cserrors.ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "generation.modle", cerr.Field)
	assert.Equal(t, "model", cerr.Suggestion)
}

func TestParseKDL_UnknownKeyNoSuggestion(t *testing.T) {
	_, err := parseKDL("telemetry {\n    enabled true\n}\n")
	var cerr *cserrors.ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Empty(t, cerr.Suggestion)
}

func TestParseKDL_InvalidSize(t *testing.T) {
	_, err := parseKDL("analysis {\n    max_file_size \"lots\"\n}\n")
	var cerr *cserrors.ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "analysis.max_file_size", cerr.Field)
}

func TestParseKDL_Malformed(t *testing.T) {
	_, err := parseKDL(`project { root "unterminated }`)
	require.Error(t, err)
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"10MB", 10 * 1024 * 1024},
		{"500kb", 500 * 1024},
		{"1GB", 1024 * 1024 * 1024},
		{"42B", 42},
		{"7", 7},
	}
	for _, tt := range tests {
		got, err := parseSize(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestLoadKDL_RelativeRoot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("project {\n    root \"src\"\n}\n"), 0o644))

	cfg, err := LoadKDL(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	absDir, _ := filepath.Abs(dir)
	assert.Equal(t, filepath.Join(absDir, "src"), cfg.Project.Root)
}

func TestLoadKDL_Missing(t *testing.T) {
	cfg, err := LoadKDL(t.TempDir())
	assert.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestSuggest(t *testing.T) {
	assert.Equal(t, "exclude", suggest("exclud", topLevelSections))
	assert.Equal(t, "batch_size", suggest("batchsize", analysisKeys))
	assert.Equal(t, "", suggest("zzzzzzzz", watchKeys))
}
