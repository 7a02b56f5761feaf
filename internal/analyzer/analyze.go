// Package analyzer runs one analysis of a project tree: discovery, batched
// parsing and fact extraction, detectors and the holistic sweep.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/codescribe/internal/cache"
	"github.com/standardbeagle/codescribe/internal/config"
	"github.com/standardbeagle/codescribe/internal/debug"
	"github.com/standardbeagle/codescribe/internal/detect"
	"github.com/standardbeagle/codescribe/internal/discovery"
	cserrors "github.com/standardbeagle/codescribe/internal/errors"
	"github.com/standardbeagle/codescribe/internal/extract"
	"github.com/standardbeagle/codescribe/internal/filetype"
	"github.com/standardbeagle/codescribe/internal/holistic"
	"github.com/standardbeagle/codescribe/internal/manifest"
	"github.com/standardbeagle/codescribe/internal/security"
	"github.com/standardbeagle/codescribe/internal/types"
)

// Analyze analyzes the project at root. The only error returned for a
// readable tree is ctx's; a root that is missing or not a directory yields
// a *errors.DiscoveryError. Per-file failures become shell-only records and
// warnings on the result.
func Analyze(ctx context.Context, root string, opts ...Option) (*types.ProjectAnalysis, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	abs, err := discovery.CheckRoot(root)
	if err != nil {
		return nil, err
	}

	ac := newContext(abs, o)
	defer ac.Close()
	return ac.run(ctx)
}

func (ac *AnalyzerContext) run(ctx context.Context) (*types.ProjectAnalysis, error) {
	start := time.Now()
	firstMessage := len(ac.Logger.Messages())

	m, err := manifest.Load(ac.Root)
	if err != nil {
		var merr *cserrors.ManifestError
		if errors.As(err, &merr) {
			ac.Logger.Warnf(relTo(ac.Root, merr.Path), 0, "%v; continuing without declared dependencies", merr.Underlying)
		} else {
			ac.Logger.Warnf("", 0, "%v; continuing without declared dependencies", err)
		}
	}

	res, err := discovery.Discover(ac.Root, discovery.Options{
		Include:          ac.Config.Include,
		Exclude:          ac.exclusions(m),
		RespectGitignore: ac.Config.Analysis.RespectGitignore,
		MaxFileSize:      ac.Config.Analysis.MaxFileSize,
	})
	if err != nil {
		return nil, err
	}
	for _, rel := range res.Skipped {
		ac.Logger.Warnf(rel, 0, "skipped: larger than %d bytes", ac.Config.Analysis.MaxFileSize)
	}
	ac.Progress.Report("discovery complete", PercentDiscovered)

	files, err := ac.analyzeFiles(ctx, res.Files)
	if err != nil {
		return nil, err
	}

	a := &types.ProjectAnalysis{
		ProjectName:             projectName(ac, m),
		RootPath:                ac.Root,
		ManifestKind:            string(m.Kind),
		Files:                   files,
		DeclaredDependencies:    m.Dependencies,
		DeclaredDevDependencies: m.DevDependencies,
		Scripts:                 m.Scripts,
		BinEntries:              m.Bin,
		MarkerFiles:             detect.Markers(res.Paths),
	}

	deps := dependencyStrings(files, m)
	a.DetectedFrameworks = detect.Frameworks(deps)
	a.DetectedDatabases = detect.Databases(ac.Root, deps, res.Paths, queries(files))
	a.DetectedDeploymentTargets = detect.Deployments(ac.Root, res.Paths)
	ac.Progress.Report("detectors complete", PercentDetected)

	a.ArchitectureSummary = Summarize(files, a.DetectedFrameworks)
	a.HolisticInsights = holistic.Sweep(a)
	ac.Progress.Report("holistic sweep complete", PercentComplete)

	a.Warnings = ac.Logger.Messages()[firstMessage:]
	a.GeneratedAt = time.Now()

	counts := a.Counts()
	debug.LogAnalyze("Analyzed %s in %v: %d files, %d functions, %d components, %d routes, %d parse failures",
		ac.Root, time.Since(start).Round(time.Millisecond), counts.Files, counts.Functions,
		counts.Components, counts.Routes, counts.ParseFailures)
	return a, nil
}

// exclusions combines the built-in patterns, config excludes and the
// manifest's build output directories.
func (ac *AnalyzerContext) exclusions(m *manifest.Manifest) []string {
	ex := config.DefaultExclusions()
	ex = append(ex, ac.Config.Exclude...)
	for _, dir := range m.OutputDirs {
		ex = append(ex, dir+"/**")
	}
	return ex
}

// analyzeFiles processes directories in batches of BatchSize. Every file of
// every directory in a batch is handled concurrently, and the next batch
// starts only after the current one has finished. Records are appended by
// this goroutine alone, between batches.
func (ac *AnalyzerContext) analyzeFiles(ctx context.Context, candidates []discovery.File) ([]*types.FileRecord, error) {
	groups := discovery.GroupByDirectory(candidates)
	batchSize := ac.Config.Analysis.BatchSize
	if batchSize < 1 {
		batchSize = config.DefaultBatchSize
	}
	total := (len(groups) + batchSize - 1) / batchSize

	files := make([]*types.FileRecord, 0, len(candidates))
	for b := 0; b < total; b++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		batch := groups[b*batchSize : min((b+1)*batchSize, len(groups))]
		files = append(files, ac.runBatch(ctx, batch)...)
		ac.Progress.Report(fmt.Sprintf("analyzed batch %d of %d", b+1, total),
			PercentDiscovered+PercentBatches*(b+1)/total)
	}
	return files, nil
}

func (ac *AnalyzerContext) runBatch(ctx context.Context, batch []discovery.DirGroup) []*types.FileRecord {
	results := make([][]*types.FileRecord, len(batch))

	var g errgroup.Group
	for i, group := range batch {
		g.Go(func() error {
			ac.directoryStarted(group.Dir)
			defer ac.directoryFinished(group.Dir)

			recs := make([]*types.FileRecord, len(group.Files))
			var fg errgroup.Group
			for j, f := range group.Files {
				fg.Go(func() error {
					recs[j] = ac.analyzeFile(ctx, f)
					return nil
				})
			}
			_ = fg.Wait()
			results[i] = recs
			return nil
		})
	}
	_ = g.Wait()

	var out []*types.FileRecord
	for _, recs := range results {
		out = append(out, recs...)
	}
	return out
}

// analyzeFile builds the record for one file. With a file timeout set, the
// work runs on its own goroutine and a file that overruns is recorded
// shell-only; the abandoned goroutine finishes and drops its result.
func (ac *AnalyzerContext) analyzeFile(ctx context.Context, f discovery.File) *types.FileRecord {
	rec := &types.FileRecord{
		Path:         f.Path,
		RelativePath: f.RelativePath,
		FileType:     f.Type,
		Language:     filetype.Language(f.Type),
		SizeBytes:    f.Size,
		LastModified: time.Unix(0, f.ModTime),
	}

	timeout := ac.Config.Analysis.FileTimeout()
	if timeout <= 0 {
		ac.fill(rec)
		normalize(rec)
		return rec
	}

	work := *rec
	done := make(chan struct{})
	go func() {
		defer close(done)
		ac.fill(&work)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		normalize(&work)
		return &work
	case <-timer.C:
		ac.Logger.Warnf(rec.RelativePath, 0, "%v; recorded without facts", cserrors.NewTimeoutError(rec.RelativePath, timeout))
	case <-ctx.Done():
	}
	rec.ParseFailed = true
	normalize(rec)
	return rec
}

// readAndExtract reads rec's file and fills its facts, from the cache when
// the content is unchanged.
func (ac *AnalyzerContext) readAndExtract(rec *types.FileRecord) {
	content, err := os.ReadFile(rec.Path)
	if err != nil {
		rec.ParseFailed = true
		ac.Logger.Warnf(rec.RelativePath, 0, "read failed, recorded without facts: %v", err)
		return
	}
	rec.RawContent = string(content)
	rec.ContentHash = cache.Hash(content)

	if !filetype.IsSource(rec.FileType) {
		return
	}
	if err := security.CheckSource(content); err != nil {
		rec.ParseFailed = true
		rec.RawContent = ""
		ac.Logger.Warnf(rec.RelativePath, 0, "%v; recorded without facts", err)
		return
	}
	if facts, ok := ac.Cache.Get(rec.RelativePath, rec.ContentHash); ok {
		facts.Apply(rec)
		return
	}

	tree, err := ac.Parsers.Parse(rec.RelativePath, rec.Language, content)
	if err != nil {
		rec.ParseFailed = true
		var perr *cserrors.ParseError
		if errors.As(err, &perr) {
			ac.Logger.Warnf(rec.RelativePath, perr.Line, "%v; recorded without facts", perr.Underlying)
		} else {
			ac.Logger.Warnf(rec.RelativePath, 0, "%v; recorded without facts", err)
		}
		return
	}
	defer tree.Close()

	extract.File(tree, rec)
	ac.Cache.Put(rec)
}

// normalize replaces nil fact slices with empty ones so shell records and
// full records serialize alike.
func normalize(rec *types.FileRecord) {
	if rec.Dependencies == nil {
		rec.Dependencies = []string{}
	}
	if rec.ExportedSymbols == nil {
		rec.ExportedSymbols = []string{}
	}
	if rec.Functions == nil {
		rec.Functions = []types.FunctionFact{}
	}
	if rec.Classes == nil {
		rec.Classes = []types.ClassFact{}
	}
	if rec.UIComponents == nil {
		rec.UIComponents = []types.ComponentFact{}
	}
	if rec.Routes == nil {
		rec.Routes = []types.RouteFact{}
	}
	if rec.DatabaseQueries == nil {
		rec.DatabaseQueries = []types.QueryFact{}
	}
}

// dependencyStrings is the detector haystack: every import of every file in
// order, then the manifest dependency and devDependency names, sorted.
func dependencyStrings(files []*types.FileRecord, m *manifest.Manifest) []string {
	var deps []string
	for _, f := range files {
		deps = append(deps, f.Dependencies...)
	}
	deps = append(deps, sortedKeys(m.Dependencies)...)
	return append(deps, sortedKeys(m.DevDependencies)...)
}

func queries(files []*types.FileRecord) []types.QueryFact {
	var out []types.QueryFact
	for _, f := range files {
		out = append(out, f.DatabaseQueries...)
	}
	return out
}

func projectName(ac *AnalyzerContext, m *manifest.Manifest) string {
	switch {
	case m.Name != "":
		return m.Name
	case ac.Config.Project.Name != "":
		return ac.Config.Project.Name
	default:
		return filepath.Base(ac.Root)
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func relTo(root, p string) string {
	if rel, err := filepath.Rel(root, p); err == nil {
		return filepath.ToSlash(rel)
	}
	return p
}
