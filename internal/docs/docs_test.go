package docs

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cserrors "github.com/standardbeagle/codescribe/internal/errors"
	"github.com/standardbeagle/codescribe/internal/types"
	"github.com/standardbeagle/codescribe/internal/workflow"
)

// memWriter keeps written files in memory and fails paths listed in fail.
type memWriter struct {
	mu    sync.Mutex
	files map[string]string
	fail  map[string]bool
}

func (m *memWriter) Write(relPath, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[relPath] {
		return cserrors.NewFileError("write", relPath, errors.New("disk full"))
	}
	if m.files == nil {
		m.files = map[string]string{}
	}
	m.files[relPath] = content
	return nil
}

func sampleOutput() (*types.ProjectAnalysis, *workflow.Output) {
	a := &types.ProjectAnalysis{ProjectName: "shop", Files: []*types.FileRecord{}}
	out := &workflow.Output{
		Verdict: types.ClassificationVerdict{CandidateName: types.ArchetypeAPI},
		Pages: []workflow.Page{
			{Path: "overview.md", Title: "Overview", Content: "# Shop"},
			{Path: "endpoints/orders.md", Title: "Endpoints: orders", Content: "orders\n"},
			{Path: "endpoints/users.md", Title: "Endpoints: users", Content: "users\n"},
			{Path: "data-model.md", Title: "Data Model", Content: "tables\n"},
		},
	}
	return a, out
}

func TestDirWriter(t *testing.T) {
	root := t.TempDir()
	w := NewDirWriter(root)

	require.NoError(t, w.Write("endpoints/orders.md", "hello\n"))
	data, err := os.ReadFile(filepath.Join(root, "endpoints", "orders.md"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))

	_, err = os.Stat(filepath.Join(root, "endpoints", "orders.md.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestDirWriterRejectsEscapes(t *testing.T) {
	w := NewDirWriter(t.TempDir())
	for _, p := range []string{"", "../x.md", "a/../../x.md", "/etc/passwd"} {
		err := w.Write(p, "x")
		var ferr *cserrors.FileError
		assert.True(t, errors.As(err, &ferr), "path %q", p)
		assert.ErrorIs(t, err, errOutsideRoot, "path %q", p)
	}
}

func TestIndex(t *testing.T) {
	a, out := sampleOutput()
	got := Index(a.ProjectName, out)

	want := "# shop documentation\n\n" +
		"Archetype: **api**\n\n" +
		"## Contents\n\n" +
		"- <a id=\"overview\"></a>[Overview](overview.md)\n" +
		"\n### Endpoints\n\n" +
		"- <a id=\"endpoints-orders\"></a>[Endpoints: orders](endpoints/orders.md)\n" +
		"- <a id=\"endpoints-users\"></a>[Endpoints: users](endpoints/users.md)\n" +
		"- <a id=\"data-model\"></a>[Data Model](data-model.md)\n" +
		"\nRaw analysis: [analysis.json](analysis.json)\n"
	assert.Equal(t, want, got)
}

func TestWriteOutput(t *testing.T) {
	a, out := sampleOutput()
	w := &memWriter{}

	written, err := WriteOutput(w, a, out)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"overview.md", "endpoints/orders.md", "endpoints/users.md", "data-model.md",
		IndexFile, AnalysisFile,
	}, written)
	assert.Equal(t, "# Shop\n", w.files["overview.md"])

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(w.files[AnalysisFile]), &decoded))
	assert.Equal(t, "shop", decoded["projectName"])
	assert.Contains(t, decoded["generator"], "codescribe")
	assert.NotEmpty(t, decoded["buildId"])
}

func TestWriteOutputCollectsFailures(t *testing.T) {
	a, out := sampleOutput()
	w := &memWriter{fail: map[string]bool{"endpoints/users.md": true, IndexFile: true}}

	written, err := WriteOutput(w, a, out)
	var merr *cserrors.MultiError
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 2)
	assert.Equal(t, []string{"overview.md", "endpoints/orders.md", "data-model.md", AnalysisFile}, written)
}
