package debug

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// saveAndRestoreState saves the debug package state and returns a cleanup function
func saveAndRestoreState() func() {
	originalDebug := EnableDebug
	originalMode := MCPMode
	originalOutput := debugOutput
	originalFile := debugFile
	return func() {
		EnableDebug = originalDebug
		MCPMode = originalMode
		debugOutput = originalOutput
		debugFile = originalFile
	}
}

func TestIsDebugEnabled(t *testing.T) {
	defer saveAndRestoreState()()
	t.Setenv("DEBUG", "")

	EnableDebug = "false"
	MCPMode = false
	assert.False(t, IsDebugEnabled())

	EnableDebug = "true"
	assert.True(t, IsDebugEnabled())

	// MCP mode wins over the build flag
	MCPMode = true
	assert.False(t, IsDebugEnabled())

	MCPMode = false
	EnableDebug = "invalid"
	assert.False(t, IsDebugEnabled())

	t.Setenv("DEBUG", "1")
	assert.True(t, IsDebugEnabled())
}

func TestLog(t *testing.T) {
	defer saveAndRestoreState()()

	var buf bytes.Buffer
	SetDebugOutput(&buf)
	EnableDebug = "true"
	MCPMode = false
	Log("TEST", "Hello %s", "World")

	output := buf.String()
	assert.Contains(t, output, "[DEBUG:TEST]")
	assert.Contains(t, output, "Hello World")
}

func TestLog_MCPMode(t *testing.T) {
	defer saveAndRestoreState()()

	var buf bytes.Buffer
	SetDebugOutput(&buf)
	EnableDebug = "true"
	MCPMode = true
	Log("TEST", "should not appear")

	assert.Empty(t, buf.String())
}

func TestLogHelpers(t *testing.T) {
	defer saveAndRestoreState()()

	EnableDebug = "true"
	MCPMode = false

	tests := []struct {
		name    string
		logFunc func(string, ...interface{})
		prefix  string
	}{
		{"LogAnalyze", LogAnalyze, "[DEBUG:ANALYZE]"},
		{"LogParse", LogParse, "[DEBUG:PARSE]"},
		{"LogDetect", LogDetect, "[DEBUG:DETECT]"},
		{"LogClassify", LogClassify, "[DEBUG:CLASSIFY]"},
		{"LogLLM", LogLLM, "[DEBUG:LLM]"},
		{"LogMCP", LogMCP, "[DEBUG:MCP]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			SetDebugOutput(&buf)

			tt.logFunc("processing %s", "test")

			output := buf.String()
			assert.Contains(t, output, tt.prefix)
			assert.Contains(t, output, "processing test")
		})
	}
}

func TestNoOutputWithNilWriter(t *testing.T) {
	defer saveAndRestoreState()()

	SetDebugOutput(nil)
	EnableDebug = "true"
	MCPMode = false

	// These should not panic, they should just do nothing
	Log("TEST", "test %s", "message")
	LogAnalyze("test %s", "message")
	LogMCP("test %s", "message")
}

func TestInitDebugLogFile(t *testing.T) {
	defer saveAndRestoreState()()

	logPath, err := InitDebugLogFile()
	require.NoError(t, err)
	require.NotEmpty(t, logPath)
	defer os.Remove(logPath)

	EnableDebug = "true"
	MCPMode = false
	LogAnalyze("Test log message\n")

	require.NoError(t, CloseDebugLog())

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Test log message")
}

func TestLogger_FormatsLocation(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Warnf("src/app.ts", 12, "unexpected token %q", "}")
	l.Warnf("src/broken.js", 0, "parse failed")
	l.Errorf("", 0, "generation failed: %v", "timeout")

	assert.Equal(t, []string{
		`src/app.ts:12: unexpected token "}"`,
		"src/broken.js: parse failed",
		"generation failed: timeout",
	}, l.Messages())

	out := buf.String()
	assert.Contains(t, out, `[WARN] src/app.ts:12: unexpected token "}"`)
	assert.Contains(t, out, "[ERROR] generation failed: timeout")
}

func TestLogger_NilWriterStillRecords(t *testing.T) {
	l := NewLogger(nil)
	l.Warnf("a.go", 1, "x")
	assert.Len(t, l.Messages(), 1)
}

func TestLogger_Concurrent(t *testing.T) {
	l := NewLogger(nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			l.Warnf("f.go", id+1, "warning %d", id)
		}(i)
	}
	wg.Wait()
	assert.Len(t, l.Messages(), 20)
}
