package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codescribe/internal/output"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

// run executes the app with isolated HOME and API keys and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Cleanup(func() {
		output.SetOutput(os.Stdout)
		output.SetVerbose(false)
	})

	var stdout bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &bytes.Buffer{}
	err := app.Run(append([]string{"codescribe"}, args...))
	return stdout.String(), err
}

var cliProject = map[string]string{
	"package.json": `{"name": "greet", "bin": {"greet": "bin/greet.js"}, "dependencies": {"commander": "^11.0.0"}}`,
	"bin/greet.js": "#!/usr/bin/env node\nfunction main() {\n  console.log('hi')\n}\nmain()\n",
}

func TestAnalyzeJSON(t *testing.T) {
	root := writeProject(t, cliProject)

	out, err := run(t, "--root", root, "analyze", "--json")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "greet", decoded["projectName"])
	assert.True(t, strings.HasPrefix(decoded["generator"].(string), "codescribe "))
	assert.Equal(t, "package.json", decoded["manifestKind"])
}

func TestAnalyzeSummary(t *testing.T) {
	root := writeProject(t, cliProject)

	out, err := run(t, "-r", root, "analyze")
	require.NoError(t, err)
	assert.Contains(t, out, "Analyzed greet")
	assert.Contains(t, out, "Manifest: package.json")
}

func TestClassify(t *testing.T) {
	root := writeProject(t, cliProject)

	out, err := run(t, "--root", root, "classify")
	require.NoError(t, err)
	assert.Contains(t, out, "greet is a cli project")
	assert.Contains(t, out, "selected cli by priority")
}

func TestClassifyJSON(t *testing.T) {
	root := writeProject(t, cliProject)

	out, err := run(t, "--root", root, "classify", "--json")
	require.NoError(t, err)

	var verdict struct {
		CandidateName string   `json:"candidateName"`
		ReasonTrail   []string `json:"reasonTrail"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &verdict))
	assert.Equal(t, "cli", verdict.CandidateName)
	assert.NotEmpty(t, verdict.ReasonTrail)
}

func TestGenerateDryRun(t *testing.T) {
	root := writeProject(t, cliProject)

	out, err := run(t, "--root", root, "generate", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Would generate 3 cli pages")
	assert.Contains(t, out, "commands.md")
	assert.NoDirExists(t, filepath.Join(root, "docs"))
}

func TestGenerateGeneric(t *testing.T) {
	root := writeProject(t, map[string]string{
		"lib/math.js": "function add(a, b) {\n  return a + b\n}\n",
	})
	outDir := filepath.Join(t.TempDir(), "site")

	out, err := run(t, "--root", root, "generate", "--out", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "generic pages")

	for _, name := range []string{"overview.md", "file-reference.md", "index.md", "analysis.json"} {
		assert.FileExists(t, filepath.Join(outDir, name))
	}
	ref, err := os.ReadFile(filepath.Join(outDir, "file-reference.md"))
	require.NoError(t, err)
	assert.Contains(t, string(ref), "lib/math.js")
}

func TestExcludeFlagAppends(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/app.js":       "function run() {}\n",
		"fixtures/skip.js": "function skipped() {}\n",
		".codescribe.kdl":  "exclude \"**/tmp/**\"\n",
	})

	out, err := run(t, "--root", root, "--exclude", "fixtures/**", "analyze", "--json")
	require.NoError(t, err)

	var decoded struct {
		Files []struct {
			RelativePath string `json:"relativePath"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	var rels []string
	for _, f := range decoded.Files {
		rels = append(rels, f.RelativePath)
	}
	assert.Contains(t, rels, "src/app.js")
	assert.NotContains(t, rels, "fixtures/skip.js")
}

func TestBadConfig(t *testing.T) {
	root := writeProject(t, map[string]string{
		".codescribe.kdl": "analyis {\n    batch_size 2\n}\n",
	})

	_, err := run(t, "--root", root, "analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "analysis"?`)
}

func TestCommandWithoutFlags(t *testing.T) {
	root := writeProject(t, cliProject)
	t.Chdir(root)

	out, err := run(t, "classify")
	require.NoError(t, err)
	assert.Contains(t, out, "greet is a cli project")
}

func TestVersionAndVerboseFlags(t *testing.T) {
	out, err := run(t, "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "codescribe version")

	root := writeProject(t, cliProject)
	out, err = run(t, "--verbose", "--root", root, "analyze")
	require.NoError(t, err)
	assert.Contains(t, out, "discovery complete")
	assert.Contains(t, out, "Analyzed greet")
}
