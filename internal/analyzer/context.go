package analyzer

import (
	"github.com/standardbeagle/codescribe/internal/cache"
	"github.com/standardbeagle/codescribe/internal/config"
	"github.com/standardbeagle/codescribe/internal/debug"
	"github.com/standardbeagle/codescribe/internal/parser"
	"github.com/standardbeagle/codescribe/internal/types"
)

// ProgressFunc receives coarse progress milestones. percent never decreases
// within one run.
type ProgressFunc func(status string, percent int)

// DirectoryObserver is told when a directory starts and finishes
// processing. Calls for different directories may be concurrent.
type DirectoryObserver interface {
	DirectoryStarted(dir string)
	DirectoryFinished(dir string)
}

// Option configures one Analyze call.
type Option func(*options)

type options struct {
	cfg      *config.Config
	logger   *debug.Logger
	cache    *cache.FactCache
	progress ProgressFunc
	observer DirectoryObserver
}

// WithConfig sets the configuration. Without it a default configuration for
// the root is used and no config file is read.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithLogger routes warnings to l instead of a fresh stderr logger.
func WithLogger(l *debug.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithCache reuses facts for files whose content is unchanged.
func WithCache(c *cache.FactCache) Option {
	return func(o *options) { o.cache = c }
}

func WithProgress(fn ProgressFunc) Option {
	return func(o *options) { o.progress = fn }
}

func WithDirectoryObserver(obs DirectoryObserver) Option {
	return func(o *options) { o.observer = obs }
}

// AnalyzerContext holds everything one analysis run needs. It is built per
// Analyze call and never shared between runs.
type AnalyzerContext struct {
	Root     string
	Config   *config.Config
	Logger   *debug.Logger
	Parsers  *parser.Pool
	Cache    *cache.FactCache
	Progress *ProgressTracker
	observer DirectoryObserver

	// fill reads one file and extracts its facts.
	fill func(rec *types.FileRecord)
}

func newContext(root string, o *options) *AnalyzerContext {
	cfg := o.cfg
	if cfg == nil {
		cfg = config.Default(root)
	}
	logger := o.logger
	if logger == nil {
		logger = debug.NewStderrLogger()
	}
	ac := &AnalyzerContext{
		Root:     root,
		Config:   cfg,
		Logger:   logger,
		Parsers:  parser.NewPool(),
		Cache:    o.cache,
		Progress: NewProgressTracker(o.progress),
		observer: o.observer,
	}
	ac.fill = ac.readAndExtract
	return ac
}

// Close releases the parser pool.
func (ac *AnalyzerContext) Close() {
	ac.Parsers.Close()
}

func (ac *AnalyzerContext) directoryStarted(dir string) {
	if ac.observer != nil {
		ac.observer.DirectoryStarted(dir)
	}
}

func (ac *AnalyzerContext) directoryFinished(dir string) {
	if ac.observer != nil {
		ac.observer.DirectoryFinished(dir)
	}
}
