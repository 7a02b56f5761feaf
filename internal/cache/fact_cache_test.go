package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codescribe/internal/types"
)

func sampleRecord() *types.FileRecord {
	content := []byte("router.post('/users/:id', auth, save)")
	return &types.FileRecord{
		RelativePath: "src/routes.ts",
		ContentHash:  Hash(content),
		Dependencies: []string{"express"},
		Functions:    []types.FunctionFact{{Name: "save", ParamNames: []string{"req", "res"}}},
		Classes: []types.ClassFact{{
			Name:    "Store",
			Methods: []types.FunctionFact{{Name: "get", ParamNames: []string{"id"}}},
		}},
		UIComponents: []types.ComponentFact{{Name: "Form", Props: []string{"onSubmit"}, Hooks: []string{"useState"}}},
		Routes: []types.RouteFact{{
			HTTPMethod: "POST", PathPattern: "/users/:id", HandlerName: "save",
			Middleware: []string{"auth"}, ParamNames: []string{"id"},
		}},
	}
}

func TestFactCacheHitAndMiss(t *testing.T) {
	c, err := New(8)
	require.NoError(t, err)

	rec := sampleRecord()
	_, ok := c.Get(rec.RelativePath, rec.ContentHash)
	assert.False(t, ok)

	c.Put(rec)
	facts, ok := c.Get(rec.RelativePath, rec.ContentHash)
	require.True(t, ok)
	assert.Equal(t, rec.Routes, facts.Routes)
	assert.Equal(t, rec.Classes, facts.Classes)

	// a different content hash is a different file version
	_, ok = c.Get(rec.RelativePath, rec.ContentHash+1)
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
	assert.InDelta(t, 1.0/3.0, stats.HitRate, 0.001)
}

func TestFactCacheCopiesValues(t *testing.T) {
	c, err := New(8)
	require.NoError(t, err)

	rec := sampleRecord()
	c.Put(rec)
	rec.Routes[0].Middleware[0] = "mutated"
	rec.Classes[0].Methods[0].Name = "mutated"

	facts, ok := c.Get(rec.RelativePath, rec.ContentHash)
	require.True(t, ok)
	assert.Equal(t, "auth", facts.Routes[0].Middleware[0])
	assert.Equal(t, "get", facts.Classes[0].Methods[0].Name)

	target := &types.FileRecord{}
	facts.Apply(target)
	facts.UIComponents[0].Hooks[0] = "mutated"
	assert.Equal(t, "useState", target.UIComponents[0].Hooks[0])
}

func TestFactCacheSkipsFailedParses(t *testing.T) {
	c, err := New(8)
	require.NoError(t, err)

	rec := sampleRecord()
	rec.ParseFailed = true
	c.Put(rec)
	assert.Equal(t, 0, c.Len())
}

func TestFactCacheEviction(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		c.Put(&types.FileRecord{RelativePath: fmt.Sprintf("f%d.go", i), ContentHash: uint64(i)})
	}
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, int64(1), c.Stats().Evictions)

	_, ok := c.Get("f0.go", 0)
	assert.False(t, ok)

	c.Purge()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, Stats{}, c.Stats())
}

func TestNilFactCache(t *testing.T) {
	c, err := New(0)
	require.NoError(t, err)
	assert.Nil(t, c)

	c.Put(sampleRecord())
	_, ok := c.Get("src/routes.ts", 1)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, Stats{}, c.Stats())
}

func TestFactCacheConcurrentAccess(t *testing.T) {
	c, err := New(64)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				rec := &types.FileRecord{RelativePath: fmt.Sprintf("d%d/f%d.go", i, j%10), ContentHash: uint64(j)}
				c.Put(rec)
				c.Get(rec.RelativePath, rec.ContentHash)
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 64)
}

func TestHashStable(t *testing.T) {
	assert.Equal(t, Hash([]byte("abc")), Hash([]byte("abc")))
	assert.NotEqual(t, Hash([]byte("abc")), Hash([]byte("abd")))
}
