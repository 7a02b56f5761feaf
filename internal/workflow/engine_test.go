package workflow

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codescribe/internal/analyzer"
	"github.com/standardbeagle/codescribe/internal/debug"
	"github.com/standardbeagle/codescribe/internal/types"
)

func emptyAnalysis() *types.ProjectAnalysis {
	return &types.ProjectAnalysis{
		ProjectName:             "empty",
		DeclaredDependencies:    map[string]string{},
		DeclaredDevDependencies: map[string]string{},
		Scripts:                 map[string]string{},
		DetectedFrameworks:      []string{},
	}
}

func TestClassifyEndToEnd(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"routes.ts":     "import { Router } from 'express';\nconst router = Router();\nrouter.post('/login', loginHandler);\nexport default router;\n",
		"LoginForm.tsx": "import React from 'react';\n\nexport function LoginForm() {\n  return <button onClick={() => {}}>Log in</button>;\n}\n",
		"package.json":  `{"name": "webapp", "dependencies": {"commander": "^11.0.0", "react": "^18.2.0"}}`,
	}
	for rel, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, rel), []byte(content), 0o644))
	}

	a, err := analyzer.Analyze(context.Background(), root, analyzer.WithLogger(debug.NewLogger(io.Discard)))
	require.NoError(t, err)

	v := Classify(a)
	assert.Equal(t, types.ArchetypeWebApp, v.CandidateName)
	assert.Contains(t, v.ReasonTrail[len(v.ReasonTrail)-1], RuleWebFrameworkOverridesCLI)

	cli, ok := v.Evidence[types.ArchetypeCLI].(Evaluation)
	require.True(t, ok)
	assert.True(t, cli.Applies)
	assert.Equal(t, []string{"commander"}, cli.Evidence["dependencies"])
}

func TestClassifyPriority(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *types.ProjectAnalysis)
		want   string
	}{
		{
			name: "cli dependency with frontend tag picks webapp",
			mutate: func(a *types.ProjectAnalysis) {
				a.DeclaredDependencies["commander"] = "^11"
				a.DetectedFrameworks = []string{"React"}
			},
			want: types.ArchetypeWebApp,
		},
		{
			name: "cli dependency with weak web evidence stays cli",
			mutate: func(a *types.ProjectAnalysis) {
				a.DeclaredDependencies["yargs"] = "^17"
				a.Files = []*types.FileRecord{{RelativePath: "src/components/Spinner.js"}}
			},
			want: types.ArchetypeCLI,
		},
		{
			name: "cli beats api without web evidence",
			mutate: func(a *types.ProjectAnalysis) {
				a.DeclaredDependencies["commander"] = "^11"
				a.DeclaredDependencies["express"] = "^4"
			},
			want: types.ArchetypeCLI,
		},
		{
			name: "webapp beats api",
			mutate: func(a *types.ProjectAnalysis) {
				a.DeclaredDependencies["vue"] = "^3"
				a.DeclaredDependencies["express"] = "^4"
			},
			want: types.ArchetypeWebApp,
		},
		{
			name: "routes only is api",
			mutate: func(a *types.ProjectAnalysis) {
				a.Files = []*types.FileRecord{{
					RelativePath: "app.js",
					Routes:       []types.RouteFact{{HTTPMethod: "GET", PathPattern: "/users"}},
				}}
			},
			want: types.ArchetypeAPI,
		},
		{
			name: "shebang file is cli",
			mutate: func(a *types.ProjectAnalysis) {
				a.Files = []*types.FileRecord{{RelativePath: "tool.py", RawContent: "#!/usr/bin/env python3\nprint('hi')\n"}}
			},
			want: types.ArchetypeCLI,
		},
		{
			name: "web build script is not cli evidence",
			mutate: func(a *types.ProjectAnalysis) {
				a.Scripts["start"] = "node node_modules/.bin/next start"
			},
			want: types.ArchetypeGeneric,
		},
		{
			name: "bin entry is cli",
			mutate: func(a *types.ProjectAnalysis) {
				a.BinEntries = map[string]string{"scribe": "./bin/scribe.js"}
			},
			want: types.ArchetypeCLI,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := emptyAnalysis()
			tt.mutate(a)
			assert.Equal(t, tt.want, Classify(a).CandidateName)
		})
	}
}

func TestClassifyGenericFallback(t *testing.T) {
	v := Classify(emptyAnalysis())
	assert.Equal(t, types.ArchetypeGeneric, v.CandidateName)
	assert.Len(t, v.Evidence, 3)
	assert.Equal(t, "no detector applies; using generic", v.ReasonTrail[len(v.ReasonTrail)-1])

	assert.Equal(t, types.ArchetypeGeneric, Classify(nil).CandidateName)
}

func TestWebAppNotesServerDependencies(t *testing.T) {
	a := emptyAnalysis()
	a.DeclaredDependencies["express"] = "^4"

	v := Classify(a)
	assert.Equal(t, types.ArchetypeAPI, v.CandidateName)

	web := v.Evidence[types.ArchetypeWebApp].(Evaluation)
	assert.False(t, web.Applies)
	assert.Equal(t, []string{"express"}, web.Evidence["serverDependencies"])
	assert.Contains(t, v.ReasonTrail, "webapp does not apply: server dependency left to api: express")
}

func TestClassifyDoesNotMutate(t *testing.T) {
	a := emptyAnalysis()
	a.DeclaredDependencies["commander"] = "^11"
	a.DetectedFrameworks = []string{"React"}
	a.Files = []*types.FileRecord{{RelativePath: "src/cli.ts", ExportedSymbols: []string{"run"}}}

	Classify(a)
	assert.Equal(t, []string{"React"}, a.DetectedFrameworks)
	assert.Equal(t, map[string]string{"commander": "^11"}, a.DeclaredDependencies)
	assert.Equal(t, []string{"run"}, a.Files[0].ExportedSymbols)
}

func TestCLIWarnsOnWebEvidence(t *testing.T) {
	var buf bytes.Buffer
	logger := debug.NewLogger(&buf)

	a := emptyAnalysis()
	a.DeclaredDependencies["commander"] = "^11"
	a.DeclaredDependencies["react"] = "^18"

	v := NewEngine(WithLogger(logger)).Classify(a)
	assert.Equal(t, types.ArchetypeWebApp, v.CandidateName)
	require.Len(t, logger.Messages(), 1)
	assert.Contains(t, buf.String(), "[WARN] CLI evidence found alongside web-app evidence (dependency react)")
}

func TestIsCLIScript(t *testing.T) {
	tests := []struct {
		key, value string
		want       bool
	}{
		{"cli", "tsx src/cli.ts", true},
		{"build:bin", "tsc", true},
		{"start", "node dist/index.js", true},
		{"dev", "vite", false},
		{"start", "next start", false},
		{"serve", "webpack serve --config web.js", false},
		{"test", "jest", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isCLIScript(tt.key, tt.value), "%s=%s", tt.key, tt.value)
	}
}

func TestIsCommandPath(t *testing.T) {
	assert.True(t, isCommandPath("src/cli.ts"))
	assert.True(t, isCommandPath("bin/run"))
	assert.True(t, isCommandPath("cmd/server/main.go"))
	assert.True(t, isCommandPath("src/commands/deploy.ts"))
	assert.False(t, isCommandPath("src/client.ts"))
	assert.False(t, isCommandPath("cmd.go"))
}
