package discovery

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codescribe/internal/config"
	cserrors "github.com/standardbeagle/codescribe/internal/errors"
	"github.com/standardbeagle/codescribe/internal/types"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func relPaths(files []File) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.RelativePath)
	}
	return out
}

func TestDiscoverDefaultExclusions(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/app.ts":                  "export const a = 1",
		"src/app.test.ts":             "test",
		"src/widget.spec.js":          "spec",
		"public/vendor.min.js":        "min",
		"node_modules/react/index.js": "module.exports = {}",
		"dist/bundle.js":              "bundle",
		"build/out.js":                "out",
		".next/server.js":             "next",
		"coverage/lcov.js":            "cov",
		"README.md":                   "# readme",
		"notes.xyz":                   "unknown type",
	})

	res, err := Discover(root, Options{Exclude: config.DefaultExclusions()})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"README.md", "src/app.ts"}, relPaths(res.Files))
	assert.Contains(t, res.Paths, "notes.xyz")
	assert.NotContains(t, res.Paths, "dist/bundle.js")
}

func TestDiscoverGitignoreAndConfig(t *testing.T) {
	root := writeTree(t, map[string]string{
		".gitignore":          "# comment\nlogs/\n/secret.go\n*.gen.go\n!keep.gen.go\n",
		"main.go":             "package main",
		"secret.go":           "package main",
		"pkg/secret.go":       "package pkg",
		"pkg/api.gen.go":      "package pkg",
		"logs/today.go":       "package logs",
		"fixtures/sample.go":  "package fixtures",
		"internal/handler.go": "package internal",
	})

	res, err := Discover(root, Options{
		Exclude:          []string{"**/fixtures/**"},
		RespectGitignore: true,
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{".gitignore", "main.go", "pkg/secret.go", "internal/handler.go"}, relPaths(res.Files))

	res, err = Discover(root, Options{})
	require.NoError(t, err)
	assert.Len(t, res.Files, 8)
}

func TestDiscoverIncludeAllowList(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/a.ts":       "a",
		"lib/b.ts":       "b",
		"Dockerfile":     "FROM node",
		"package.json":   "{}",
		"scripts/run.sh": "echo",
	})

	res, err := Discover(root, Options{Include: []string{"src/**"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.ts"}, relPaths(res.Files))
	// markers are still visible to deployment detection
	assert.Contains(t, res.Paths, "Dockerfile")
}

func TestDiscoverMaxFileSize(t *testing.T) {
	root := writeTree(t, map[string]string{
		"small.js": "x",
		"large.js": string(make([]byte, 4096)),
	})

	res, err := Discover(root, Options{MaxFileSize: 1024})
	require.NoError(t, err)
	assert.Equal(t, []string{"small.js"}, relPaths(res.Files))
	assert.Equal(t, []string{"large.js"}, res.Skipped)
}

func TestDiscoverFileMetadata(t *testing.T) {
	root := writeTree(t, map[string]string{"web/components/Button.tsx": "export const B = () => <b/>"})

	res, err := Discover(root, Options{})
	require.NoError(t, err)
	require.Len(t, res.Files, 1)

	f := res.Files[0]
	absRoot, _ := filepath.Abs(root)
	assert.Equal(t, filepath.Join(absRoot, "web", "components", "Button.tsx"), f.Path)
	assert.Equal(t, "web/components", f.Dir)
	assert.Equal(t, types.FileTypeTSX, f.Type)
	assert.Equal(t, int64(len("export const B = () => <b/>")), f.Size)
	assert.NotZero(t, f.ModTime)
}

func TestDiscoverBadRoot(t *testing.T) {
	var derr *cserrors.DiscoveryError

	_, err := Discover(filepath.Join(t.TempDir(), "missing"), Options{})
	assert.True(t, errors.As(err, &derr))

	file := filepath.Join(t.TempDir(), "file.go")
	require.NoError(t, os.WriteFile(file, []byte("package x"), 0o644))
	_, err = Discover(file, Options{})
	assert.True(t, errors.As(err, &derr))
}

func TestGroupByDirectory(t *testing.T) {
	files := []File{
		{RelativePath: "src/b.ts", Dir: "src"},
		{RelativePath: "main.ts", Dir: "."},
		{RelativePath: "src/a.ts", Dir: "src"},
		{RelativePath: "lib/c.ts", Dir: "lib"},
	}

	groups := GroupByDirectory(files)
	require.Len(t, groups, 3)
	assert.Equal(t, ".", groups[0].Dir)
	assert.Equal(t, "lib", groups[1].Dir)
	assert.Equal(t, "src", groups[2].Dir)
	assert.Equal(t, []string{"src/a.ts", "src/b.ts"}, relPaths(groups[2].Files))
	assert.Empty(t, GroupByDirectory(nil))
}

func TestConvertGitignoreLine(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"", ""},
		{"# comment", ""},
		{"!keep.txt", ""},
		{"node_modules/", "**/node_modules/**"},
		{"/out/", "out/**"},
		{"/secret.go", "secret.go"},
		{"*.log", "**/*.log"},
		{"docs/generated", "**/docs/generated"},
		{"  tmp  ", "**/tmp"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, convertGitignoreLine(tt.line), tt.line)
	}
}

func TestFilter(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/app.ts":                "x",
		"src/lib/util.ts":           "x",
		"node_modules/pkg/index.js": "x",
		"generated/out.ts":          "x",
		".gitignore":                "generated/\n",
	})

	f, err := NewFilter(root, Options{
		Exclude:          config.DefaultExclusions(),
		RespectGitignore: true,
	})
	require.NoError(t, err)

	dirs, err := f.Dirs()
	require.NoError(t, err)
	var rels []string
	for _, d := range dirs {
		rel, err := filepath.Rel(f.Root(), d)
		require.NoError(t, err)
		rels = append(rels, filepath.ToSlash(rel))
	}
	assert.Equal(t, []string{".", "src", "src/lib"}, rels)

	assert.False(t, f.Excluded(filepath.Join(f.Root(), "src", "app.ts"), false))
	assert.True(t, f.Excluded(filepath.Join(f.Root(), "node_modules", "pkg", "index.js"), false))
	assert.True(t, f.Excluded(filepath.Join(f.Root(), "generated"), true))
	assert.True(t, f.Excluded(filepath.Join(filepath.Dir(f.Root()), "elsewhere.ts"), false))
	assert.False(t, f.Excluded(f.Root(), true))

	_, err = NewFilter(filepath.Join(root, "missing"), Options{})
	var derr *cserrors.DiscoveryError
	assert.True(t, errors.As(err, &derr))
}
