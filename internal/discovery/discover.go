// Package discovery walks a project root and selects the files an analysis
// run will read.
package discovery

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/codescribe/internal/debug"
	cserrors "github.com/standardbeagle/codescribe/internal/errors"
	"github.com/standardbeagle/codescribe/internal/filetype"
	"github.com/standardbeagle/codescribe/internal/types"
)

// Options control which files are selected. Exclude is applied on top of
// the caller's defaults; include, when non-empty, is an allow-list.
type Options struct {
	Include          []string
	Exclude          []string
	RespectGitignore bool
	MaxFileSize      int64 // 0 means no limit
}

// File is one candidate for analysis.
type File struct {
	Path         string // absolute
	RelativePath string // slash-separated, relative to the root
	Dir          string // slash-separated relative directory, "." for the root
	Size         int64
	ModTime      int64 // unix nanoseconds
	Type         types.FileType
}

// Result is the outcome of one discovery walk.
type Result struct {
	Root  string
	Files []File
	// Paths lists every file that survived exclusion, regardless of type or
	// the include list. Marker-file detection reads it.
	Paths []string
	// Skipped lists files dropped for exceeding the size limit.
	Skipped []string
}

// Discover walks root and returns every non-excluded file with a known
// file type. It fails only when root cannot be read or is not a directory.
func Discover(root string, opts Options) (*Result, error) {
	abs, err := CheckRoot(root)
	if err != nil {
		return nil, err
	}

	m := newMatcher(abs, opts)

	res := &Result{Root: abs}
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == abs {
				return err
			}
			debug.LogAnalyze("Discovery error for %s: %v", p, err)
			return nil
		}

		rel, relErr := filepath.Rel(abs, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if p != abs && m.excludesDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || m.excludes(rel) {
			return nil
		}
		res.Paths = append(res.Paths, rel)

		ft := filetype.Classify(rel)
		if ft == types.FileTypeUnknown || !m.includes(rel) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			debug.LogAnalyze("Cannot stat %s: %v", p, err)
			return nil
		}
		if opts.MaxFileSize > 0 && fi.Size() > opts.MaxFileSize {
			res.Skipped = append(res.Skipped, rel)
			return nil
		}

		res.Files = append(res.Files, File{
			Path:         p,
			RelativePath: rel,
			Dir:          path.Dir(rel),
			Size:         fi.Size(),
			ModTime:      fi.ModTime().UnixNano(),
			Type:         ft,
		})
		return nil
	})
	if err != nil {
		return nil, cserrors.NewDiscoveryError(root, err)
	}

	debug.LogAnalyze("Discovered %d candidate files (%d paths, %d over size limit) under %s",
		len(res.Files), len(res.Paths), len(res.Skipped), abs)
	return res, nil
}

// CheckRoot returns the absolute form of root, or a *errors.DiscoveryError
// when root is not an accessible directory.
func CheckRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", cserrors.NewDiscoveryError(root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", cserrors.NewDiscoveryError(root, err)
	}
	if !info.IsDir() {
		return "", cserrors.NewDiscoveryError(root, errors.New("not a directory"))
	}
	return abs, nil
}

// DirGroup is the set of files sharing one containing directory.
type DirGroup struct {
	Dir   string
	Files []File
}

// GroupByDirectory buckets files by containing directory. Groups are sorted
// by directory and files within a group by relative path.
func GroupByDirectory(files []File) []DirGroup {
	index := make(map[string]int)
	var groups []DirGroup
	for _, f := range files {
		i, ok := index[f.Dir]
		if !ok {
			i = len(groups)
			index[f.Dir] = i
			groups = append(groups, DirGroup{Dir: f.Dir})
		}
		groups[i].Files = append(groups[i].Files, f)
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Dir < groups[j].Dir })
	for _, g := range groups {
		sort.Slice(g.Files, func(i, j int) bool { return g.Files[i].RelativePath < g.Files[j].RelativePath })
	}
	return groups
}

func newMatcher(abs string, opts Options) *matcher {
	exclusions := append([]string{}, opts.Exclude...)
	if opts.RespectGitignore {
		patterns, err := LoadGitignore(abs)
		if err != nil {
			debug.LogAnalyze("Ignoring unreadable .gitignore in %s: %v", abs, err)
		}
		exclusions = append(exclusions, patterns...)
	}
	return &matcher{exclude: exclusions, include: opts.Include}
}

// Filter applies the exclusion rules of a discovery walk to single paths,
// for callers that learn about files one at a time.
type Filter struct {
	root string
	m    *matcher
}

func NewFilter(root string, opts Options) (*Filter, error) {
	abs, err := CheckRoot(root)
	if err != nil {
		return nil, err
	}
	return &Filter{root: abs, m: newMatcher(abs, opts)}, nil
}

func (f *Filter) Root() string { return f.root }

// Excluded reports whether the absolute path p is outside the root or
// matched by an exclusion. Directories also match patterns that only
// cover their contents.
func (f *Filter) Excluded(p string, isDir bool) bool {
	rel, err := filepath.Rel(f.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return true
	}
	if rel == "." {
		return false
	}
	rel = filepath.ToSlash(rel)
	if isDir {
		return f.m.excludesDir(rel)
	}
	return f.m.excludes(rel)
}

// Dirs returns the root and every directory below it that a discovery walk
// would enter, as absolute paths.
func (f *Filter) Dirs() ([]string, error) {
	return f.DirsUnder(f.root)
}

// DirsUnder is Dirs for the subtree at start, which must lie under the
// root. An excluded start yields no directories.
func (f *Filter) DirsUnder(start string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == start {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != f.root && f.Excluded(p, true) {
			return filepath.SkipDir
		}
		dirs = append(dirs, p)
		return nil
	})
	if err != nil {
		return nil, cserrors.NewDiscoveryError(start, err)
	}
	return dirs, nil
}

type matcher struct {
	exclude []string
	include []string
}

// excludes checks a file path against the exclusion globs. Bad patterns are
// skipped rather than failing the walk.
func (m *matcher) excludes(rel string) bool {
	for _, pattern := range m.exclude {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// excludesDir reports whether a directory, and so everything below it, is
// excluded. A pattern such as **/dist/** matches the contents of dist, so a
// synthetic child path is tried as well as the directory itself.
func (m *matcher) excludesDir(rel string) bool {
	return m.excludes(rel) || m.excludes(rel+"/") || m.excludes(rel+"/_")
}

// includes reports whether rel passes the allow-list. An empty list admits
// every file.
func (m *matcher) includes(rel string) bool {
	if len(m.include) == 0 {
		return true
	}
	for _, pattern := range m.include {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}
