package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// Build output directories declared by JavaScript tooling. Discovery
// excludes them alongside the fixed ignore list.

// scriptOutDirs extracts --outDir / -outDir / --out-dir values from a
// package.json script.
func scriptOutDirs(script string) []string {
	var dirs []string
	parts := strings.Fields(script)
	for i, part := range parts {
		flag, value, hasValue := strings.Cut(part, "=")
		switch flag {
		case "--outDir", "-outDir", "--out-dir", "-d":
		default:
			continue
		}
		if flag == "-d" && !strings.Contains(script, "babel") {
			continue
		}
		if !hasValue {
			if i+1 >= len(parts) {
				continue
			}
			value = parts[i+1]
		}
		if v := strings.Trim(value, `"'`); v != "" {
			dirs = append(dirs, v)
		}
	}
	return dirs
}

func tsconfigOutDir(root string) []string {
	data, err := os.ReadFile(filepath.Join(root, "tsconfig.json"))
	if err != nil {
		return nil
	}
	var tsconfig struct {
		CompilerOptions struct {
			OutDir string `json:"outDir"`
		} `json:"compilerOptions"`
	}
	if json.Unmarshal(data, &tsconfig) != nil || tsconfig.CompilerOptions.OutDir == "" {
		return nil
	}
	return []string{tsconfig.CompilerOptions.OutDir}
}

// viteOutDir looks for build.outDir: 'dir' in a vite config without
// evaluating it.
func viteOutDir(root string) []string {
	var dirs []string
	for _, name := range []string{"vite.config.js", "vite.config.ts", "vite.config.mjs"} {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			continue
		}
		content := string(data)
		idx := strings.Index(content, "outDir")
		if idx < 0 {
			continue
		}
		rest := content[idx+len("outDir"):]
		colon := strings.Index(rest, ":")
		if colon < 0 {
			continue
		}
		rest = strings.TrimSpace(rest[colon+1:])
		if rest == "" || (rest[0] != '\'' && rest[0] != '"' && rest[0] != '`') {
			continue
		}
		quote := rest[0]
		if end := strings.IndexByte(rest[1:], quote); end > 0 {
			dirs = append(dirs, rest[1:1+end])
		}
	}
	return dirs
}
