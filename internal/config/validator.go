package config

import (
	"errors"
	"fmt"
	"path/filepath"

	cserrors "github.com/standardbeagle/codescribe/internal/errors"
)

var supportedFormats = []string{"markdown"}

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults
// Returns an error if validation fails
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	v.setSmartDefaults(cfg)

	if err := v.validateProjectConfig(&cfg.Project); err != nil {
		return cserrors.NewConfigError("project", cfg.Project.Root, err)
	}

	if err := v.validateAnalysisConfig(&cfg.Analysis); err != nil {
		return cserrors.NewConfigError("analysis", "", err)
	}

	if err := v.validateGenerationConfig(&cfg.Generation); err != nil {
		cerr := cserrors.NewConfigError("generation", cfg.Generation.Format, err)
		if s := suggest(cfg.Generation.Format, supportedFormats); s != "" && s != cfg.Generation.Format {
			return cerr.WithSuggestion(s)
		}
		return cerr
	}

	if err := v.validateWatchConfig(&cfg.Watch); err != nil {
		return cserrors.NewConfigError("watch", "", err)
	}

	return nil
}

func (v *Validator) validateProjectConfig(project *Project) error {
	if project.Root == "" {
		return errors.New("project root cannot be empty")
	}
	return nil
}

func (v *Validator) validateAnalysisConfig(a *Analysis) error {
	if a.BatchSize < 1 || a.BatchSize > 64 {
		return fmt.Errorf("batch_size must be between 1 and 64, got %d", a.BatchSize)
	}
	if a.FileTimeoutMs < 0 {
		return fmt.Errorf("file_timeout_ms cannot be negative, got %d", a.FileTimeoutMs)
	}
	if a.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive, got %d", a.MaxFileSize)
	}
	if a.MaxFileSize > 100*1024*1024 {
		return fmt.Errorf("max_file_size should not exceed 100MB, got %d", a.MaxFileSize)
	}
	if a.CacheEntries < 0 {
		return fmt.Errorf("cache_entries cannot be negative, got %d", a.CacheEntries)
	}
	return nil
}

func (v *Validator) validateGenerationConfig(g *Generation) error {
	if g.MaxAttempts < 1 || g.MaxAttempts > 10 {
		return fmt.Errorf("max_attempts must be between 1 and 10, got %d", g.MaxAttempts)
	}
	if g.RetryBaseMs < 0 {
		return fmt.Errorf("retry_base_ms cannot be negative, got %d", g.RetryBaseMs)
	}
	for _, f := range supportedFormats {
		if g.Format == f {
			return nil
		}
	}
	return fmt.Errorf("unsupported output format %q", g.Format)
}

func (v *Validator) validateWatchConfig(w *Watch) error {
	if w.DebounceMs < 0 || w.DebounceMs > 60_000 {
		return fmt.Errorf("debounce_ms must be between 0 and 60000, got %d", w.DebounceMs)
	}
	return nil
}

// setSmartDefaults fills values that were left empty.
func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.Project.Name == "" && cfg.Project.Root != "" {
		cfg.Project.Name = filepath.Base(cfg.Project.Root)
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = DefaultModel
	}
	if cfg.Generation.OutputDir == "" {
		cfg.Generation.OutputDir = DefaultOutputDir
	}
	if cfg.Generation.Format == "" {
		cfg.Generation.Format = DefaultFormat
	}
	if cfg.Analysis.BatchSize == 0 {
		cfg.Analysis.BatchSize = DefaultBatchSize
	}
	if cfg.Analysis.MaxFileSize == 0 {
		cfg.Analysis.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.Include == nil {
		cfg.Include = []string{}
	}
	if cfg.Exclude == nil {
		cfg.Exclude = []string{}
	}
}
