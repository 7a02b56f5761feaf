// Package docs persists generated documentation: one markdown file per
// page, an index, and the raw analysis as JSON.
package docs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cserrors "github.com/standardbeagle/codescribe/internal/errors"
)

// Writer is the sink for generated files. relPath uses forward slashes and
// is relative to the sink's root.
type Writer interface {
	Write(relPath, content string) error
}

// DirWriter writes files under Root, creating directories as needed. Each
// file is written to a temporary name and renamed into place.
type DirWriter struct {
	Root string
}

func NewDirWriter(root string) *DirWriter {
	return &DirWriter{Root: root}
}

var errOutsideRoot = errors.New("path escapes the output directory")

func (w *DirWriter) Write(relPath, content string) error {
	full, err := w.resolve(relPath)
	if err != nil {
		return cserrors.NewFileError("write", relPath, err)
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return cserrors.NewFileError("mkdir", filepath.Dir(full), err)
	}

	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return cserrors.NewFileError("write", full, err)
	}
	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp)
		return cserrors.NewFileError("rename", full, err)
	}
	return nil
}

func (w *DirWriter) resolve(relPath string) (string, error) {
	if relPath == "" || filepath.IsAbs(relPath) || strings.HasPrefix(relPath, "/") {
		return "", fmt.Errorf("%w: %q", errOutsideRoot, relPath)
	}
	clean := filepath.Clean(filepath.FromSlash(relPath))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", errOutsideRoot, relPath)
	}
	return filepath.Join(w.Root, clean), nil
}
