package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codescribe/internal/config"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

// callTool invokes a handler directly with JSON-encoded params and returns
// the decoded text payload.
func callTool(t *testing.T, s *Server, tool string, params map[string]interface{}) (*mcp.CallToolResult, map[string]interface{}) {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	req := &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Name: tool, Arguments: raw}}

	var result *mcp.CallToolResult
	switch tool {
	case "analyze_project":
		result, err = s.handleAnalyzeProject(context.Background(), req)
	case "classify_project":
		result, err = s.handleClassifyProject(context.Background(), req)
	default:
		t.Fatalf("unknown tool %s", tool)
	}
	require.NoError(t, err)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &payload))
	return result, payload
}

var apiProject = map[string]string{
	"package.json":         `{"name": "orders", "dependencies": {"express": "^4.18.0", "pg": "^8.0.0"}}`,
	"src/routes/orders.js": "const express = require('express');\nconst router = express.Router();\nrouter.get('/orders', listOrders);\nmodule.exports = router;\n",
}

func TestAnalyzeProject(t *testing.T) {
	root := writeProject(t, apiProject)
	s, err := NewServer(nil)
	require.NoError(t, err)

	result, payload := callTool(t, s, "analyze_project", map[string]interface{}{"root": root})
	assert.False(t, result.IsError)
	assert.Equal(t, "orders", payload["projectName"])
	assert.Equal(t, "package.json", payload["manifestKind"])
	assert.Contains(t, payload["frameworks"], "Express")
	assert.NotContains(t, payload, "files")

	counts := payload["counts"].(map[string]interface{})
	assert.EqualValues(t, 1, counts["routes"])

	arch := payload["architecture"].(map[string]interface{})
	assert.Equal(t, []interface{}{"GET /orders"}, arch["apiSignatures"])
	assert.Contains(t, payload, "insights")
}

func TestAnalyzeProjectIncludeFiles(t *testing.T) {
	root := writeProject(t, apiProject)
	s, err := NewServer(nil)
	require.NoError(t, err)

	_, payload := callTool(t, s, "analyze_project", map[string]interface{}{"root": root, "include_files": true})
	files, ok := payload["files"].([]interface{})
	require.True(t, ok)
	assert.Len(t, files, 2)
}

func TestClassifyProject(t *testing.T) {
	root := writeProject(t, apiProject)
	s, err := NewServer(nil)
	require.NoError(t, err)

	result, payload := callTool(t, s, "classify_project", map[string]interface{}{"root": root})
	assert.False(t, result.IsError)
	assert.Equal(t, "api", payload["verdict"])
	assert.NotEmpty(t, payload["reasons"])

	evidence := payload["evidence"].(map[string]interface{})
	for _, name := range []string{"cli", "api", "webapp"} {
		assert.Contains(t, evidence, name)
	}
}

func TestDefaultRootFromConfig(t *testing.T) {
	root := writeProject(t, apiProject)
	s, err := NewServer(config.Default(root))
	require.NoError(t, err)

	_, payload := callTool(t, s, "classify_project", map[string]interface{}{})
	assert.Equal(t, "api", payload["verdict"])
}

func TestToolErrorsSetIsError(t *testing.T) {
	s, err := NewServer(nil)
	require.NoError(t, err)

	result, payload := callTool(t, s, "analyze_project", map[string]interface{}{"root": filepath.Join(t.TempDir(), "missing")})
	assert.True(t, result.IsError)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "analyze_project", payload["operation"])

	req := &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Name: "classify_project", Arguments: json.RawMessage(`{"root": 42}`)}}
	res, err := s.handleClassifyProject(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
