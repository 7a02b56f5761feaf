// Package cache keeps extracted file facts across analysis runs so that
// unchanged files are not parsed again.
package cache

import (
	"strconv"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/standardbeagle/codescribe/internal/types"
)

// Facts is the cached extraction result for one file version.
type Facts struct {
	Dependencies    []string
	ExportedSymbols []string
	Functions       []types.FunctionFact
	Classes         []types.ClassFact
	UIComponents    []types.ComponentFact
	Routes          []types.RouteFact
	DatabaseQueries []types.QueryFact
}

// FactCache is an LRU of Facts keyed by relative path and content hash.
// Values are copied on the way in and out, so records handed to callers
// never share slices with the cache. Safe for concurrent use.
type FactCache struct {
	entries *lru.Cache[string, *Facts]

	hits      int64 // atomic
	misses    int64 // atomic
	evictions int64 // atomic
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Entries   int
	HitRate   float64
}

// New creates a cache holding up to size entries. size <= 0 returns nil,
// and a nil *FactCache is a valid cache that never hits.
func New(size int) (*FactCache, error) {
	if size <= 0 {
		return nil, nil
	}
	fc := &FactCache{}
	entries, err := lru.NewWithEvict[string, *Facts](size, func(string, *Facts) {
		atomic.AddInt64(&fc.evictions, 1)
	})
	if err != nil {
		return nil, err
	}
	fc.entries = entries
	return fc, nil
}

// Hash is the content hash stored in FileRecord.ContentHash.
func Hash(content []byte) uint64 {
	return xxhash.Sum64(content)
}

func key(relPath string, hash uint64) string {
	return relPath + "@" + strconv.FormatUint(hash, 16)
}

// Get returns the facts cached for relPath at the given content hash.
func (c *FactCache) Get(relPath string, hash uint64) (*Facts, bool) {
	if c == nil {
		return nil, false
	}
	f, ok := c.entries.Get(key(relPath, hash))
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}
	atomic.AddInt64(&c.hits, 1)
	return f.clone(), true
}

// Put stores a copy of rec's facts. Records whose parse failed are not
// cached so a later run retries them.
func (c *FactCache) Put(rec *types.FileRecord) {
	if c == nil || rec == nil || rec.ParseFailed {
		return
	}
	c.entries.Add(key(rec.RelativePath, rec.ContentHash), FromRecord(rec))
}

// Len returns the number of cached entries.
func (c *FactCache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}

// Purge drops every entry and resets the counters.
func (c *FactCache) Purge() {
	if c == nil {
		return
	}
	c.entries.Purge()
	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
	atomic.StoreInt64(&c.evictions, 0)
}

// Stats returns a snapshot of the counters.
func (c *FactCache) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	s := Stats{
		Hits:      atomic.LoadInt64(&c.hits),
		Misses:    atomic.LoadInt64(&c.misses),
		Evictions: atomic.LoadInt64(&c.evictions),
		Entries:   c.entries.Len(),
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}

// FromRecord copies the fact slices of rec.
func FromRecord(rec *types.FileRecord) *Facts {
	f := &Facts{
		Dependencies:    rec.Dependencies,
		ExportedSymbols: rec.ExportedSymbols,
		Functions:       rec.Functions,
		Classes:         rec.Classes,
		UIComponents:    rec.UIComponents,
		Routes:          rec.Routes,
		DatabaseQueries: rec.DatabaseQueries,
	}
	return f.clone()
}

// Apply replaces rec's facts with a copy of f.
func (f *Facts) Apply(rec *types.FileRecord) {
	c := f.clone()
	rec.Dependencies = c.Dependencies
	rec.ExportedSymbols = c.ExportedSymbols
	rec.Functions = c.Functions
	rec.Classes = c.Classes
	rec.UIComponents = c.UIComponents
	rec.Routes = c.Routes
	rec.DatabaseQueries = c.DatabaseQueries
}

func (f *Facts) clone() *Facts {
	out := &Facts{
		Dependencies:    cloneStrings(f.Dependencies),
		ExportedSymbols: cloneStrings(f.ExportedSymbols),
		Functions:       cloneFunctions(f.Functions),
		DatabaseQueries: append([]types.QueryFact(nil), f.DatabaseQueries...),
	}
	if f.Classes != nil {
		out.Classes = make([]types.ClassFact, len(f.Classes))
		for i, c := range f.Classes {
			c.Methods = cloneFunctions(c.Methods)
			out.Classes[i] = c
		}
	}
	if f.UIComponents != nil {
		out.UIComponents = make([]types.ComponentFact, len(f.UIComponents))
		for i, c := range f.UIComponents {
			c.Props = cloneStrings(c.Props)
			c.Hooks = cloneStrings(c.Hooks)
			out.UIComponents[i] = c
		}
	}
	if f.Routes != nil {
		out.Routes = make([]types.RouteFact, len(f.Routes))
		for i, r := range f.Routes {
			r.Middleware = cloneStrings(r.Middleware)
			r.ParamNames = cloneStrings(r.ParamNames)
			out.Routes[i] = r
		}
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append(make([]string, 0, len(s)), s...)
}

func cloneFunctions(fns []types.FunctionFact) []types.FunctionFact {
	if fns == nil {
		return nil
	}
	out := make([]types.FunctionFact, len(fns))
	for i, fn := range fns {
		fn.ParamNames = cloneStrings(fn.ParamNames)
		out[i] = fn
	}
	return out
}
