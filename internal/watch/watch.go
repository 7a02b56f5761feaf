// Package watch re-runs analysis and classification whenever files under a
// project root change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/codescribe/internal/analyzer"
	"github.com/standardbeagle/codescribe/internal/cache"
	"github.com/standardbeagle/codescribe/internal/config"
	"github.com/standardbeagle/codescribe/internal/debug"
	"github.com/standardbeagle/codescribe/internal/discovery"
	"github.com/standardbeagle/codescribe/internal/manifest"
	"github.com/standardbeagle/codescribe/internal/types"
	"github.com/standardbeagle/codescribe/internal/workflow"
)

// Result is delivered after every analysis run. Changed lists the
// project-relative paths that triggered the run and is empty for the
// initial run.
type Result struct {
	Analysis *types.ProjectAnalysis
	Verdict  types.ClassificationVerdict
	Changed  []string
	Err      error
	Run      int
}

type Callback func(Result)

// Watcher monitors every non-excluded directory under a root. Events are
// debounced so a burst of saves produces one run.
type Watcher struct {
	root     string
	cfg      *config.Config
	debounce time.Duration
	cache    *cache.FactCache
	logger   *debug.Logger
	engine   *workflow.Engine
	filter   *discovery.Filter
	onResult Callback

	runs atomic.Int64
}

type Option func(*Watcher)

// WithDebounce overrides the configured debounce window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

func WithLogger(l *debug.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithCache supplies the fact cache kept warm across runs. Without it the
// watcher creates one sized from the config.
func WithCache(c *cache.FactCache) Option {
	return func(w *Watcher) { w.cache = c }
}

// New prepares a watcher for root. cfg may be nil for defaults.
func New(root string, cfg *config.Config, onResult Callback, opts ...Option) (*Watcher, error) {
	abs, err := discovery.CheckRoot(root)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default(abs)
	}

	w := &Watcher{
		root:     abs,
		cfg:      cfg,
		debounce: cfg.Watch.Debounce(),
		onResult: onResult,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = debug.NewStderrLogger()
	}
	if w.cache == nil {
		if w.cache, err = cache.New(cfg.Analysis.CacheEntries); err != nil {
			return nil, fmt.Errorf("failed to create fact cache: %w", err)
		}
	}
	if w.debounce <= 0 {
		w.debounce = time.Duration(config.DefaultDebounceMs) * time.Millisecond
	}
	w.engine = workflow.NewEngine(workflow.WithLogger(w.logger))

	w.filter, err = discovery.NewFilter(abs, discovery.Options{
		Exclude:          w.exclusions(),
		RespectGitignore: cfg.Analysis.RespectGitignore,
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// exclusions mirror what an analysis run skips, plus the generated docs
// directory.
func (w *Watcher) exclusions() []string {
	ex := config.DefaultExclusions()
	ex = append(ex, w.cfg.Exclude...)
	if dir := w.cfg.Generation.OutputDir; dir != "" {
		ex = append(ex, filepath.ToSlash(dir)+"/**")
	}
	if m, err := manifest.Load(w.root); err == nil {
		for _, dir := range m.OutputDirs {
			ex = append(ex, dir+"/**")
		}
	}
	return ex
}

// Runs returns the number of completed analysis runs.
func (w *Watcher) Runs() int {
	return int(w.runs.Load())
}

// Run analyzes once, then re-analyzes after each settled batch of changes
// until ctx is cancelled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	if err := w.addWatches(fsw, w.root); err != nil {
		return err
	}
	debug.LogAnalyze("Watching %s (debounce %v)", w.root, w.debounce)

	w.analyze(ctx, nil)

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			changed := w.handleEvent(fsw, event)
			if len(changed) == 0 {
				continue
			}
			for _, rel := range changed {
				pending[rel] = struct{}{}
			}
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnf("", 0, "file watcher error: %v", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for rel := range pending {
				changed = append(changed, rel)
			}
			sort.Strings(changed)
			clear(pending)
			w.analyze(ctx, changed)
		}
	}
}

// handleEvent filters one event and returns the changed relative paths.
// New directories are watched as they appear; files already inside them
// are reported because their own events happened before the watch.
func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, event fsnotify.Event) []string {
	if event.Op == fsnotify.Chmod {
		return nil
	}

	isDir := false
	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		isDir = true
	}
	if w.filter.Excluded(event.Name, isDir) {
		return nil
	}
	debug.LogAnalyze("watch event %v %s", event.Op, event.Name)

	if isDir && event.Op.Has(fsnotify.Create) {
		if err := w.addWatches(fsw, event.Name); err != nil {
			w.logger.Warnf(event.Name, 0, "cannot watch new directory: %v", err)
		}
		if files := w.filesUnder(event.Name); len(files) > 0 {
			return files
		}
	}

	if rel, ok := w.rel(event.Name); ok {
		return []string{rel}
	}
	return nil
}

// filesUnder lists the non-excluded files below dir as relative paths.
func (w *Watcher) filesUnder(dir string) []string {
	var files []string
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != dir && w.filter.Excluded(p, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.filter.Excluded(p, false) {
			return nil
		}
		if rel, ok := w.rel(p); ok {
			files = append(files, rel)
		}
		return nil
	})
	return files
}

func (w *Watcher) rel(p string) (string, bool) {
	rel, err := filepath.Rel(w.root, p)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) addWatches(fsw *fsnotify.Watcher, dir string) error {
	dirs, err := w.filter.DirsUnder(dir)
	if err != nil {
		return err
	}
	for _, d := range dirs {
		if err := fsw.Add(d); err != nil {
			w.logger.Warnf(d, 0, "cannot watch directory: %v", err)
		}
	}
	return nil
}

func (w *Watcher) analyze(ctx context.Context, changed []string) {
	a, err := analyzer.Analyze(ctx, w.root,
		analyzer.WithConfig(w.cfg),
		analyzer.WithLogger(w.logger),
		analyzer.WithCache(w.cache),
	)
	if ctx.Err() != nil {
		return
	}
	n := int(w.runs.Add(1))
	res := Result{Analysis: a, Changed: changed, Err: err, Run: n}
	if err == nil {
		res.Verdict = w.engine.Classify(a)
	}
	if changed == nil {
		res.Changed = []string{}
	}
	if w.onResult != nil {
		w.onResult(res)
	}
}
