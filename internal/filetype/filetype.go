// Package filetype maps file paths to the semantic file-type tags used
// throughout an analysis run.
package filetype

import (
	"path/filepath"
	"strings"

	"github.com/standardbeagle/codescribe/internal/types"
)

// byExtension covers every tag that can be decided from the extension alone.
var byExtension = map[string]types.FileType{
	".ts":     types.FileTypeTypeScript,
	".mts":    types.FileTypeTypeScript,
	".cts":    types.FileTypeTypeScript,
	".tsx":    types.FileTypeTSX,
	".js":     types.FileTypeJavaScript,
	".mjs":    types.FileTypeJavaScript,
	".cjs":    types.FileTypeJavaScript,
	".jsx":    types.FileTypeJSX,
	".go":     types.FileTypeGo,
	".py":     types.FileTypePython,
	".rs":     types.FileTypeRust,
	".java":   types.FileTypeJava,
	".cs":     types.FileTypeCSharp,
	".cpp":    types.FileTypeCpp,
	".cc":     types.FileTypeCpp,
	".cxx":    types.FileTypeCpp,
	".c":      types.FileTypeCpp,
	".h":      types.FileTypeCpp,
	".hpp":    types.FileTypeCpp,
	".php":    types.FileTypePHP,
	".phtml":  types.FileTypePHP,
	".zig":    types.FileTypeZig,
	".json":   types.FileTypeJSONConfig,
	".yaml":   types.FileTypeYAMLConfig,
	".yml":    types.FileTypeYAMLConfig,
	".toml":   types.FileTypeTOMLConfig,
	".html":   types.FileTypeMarkup,
	".htm":    types.FileTypeMarkup,
	".vue":    types.FileTypeMarkup,
	".svelte": types.FileTypeMarkup,
	".astro":  types.FileTypeMarkup,
	".css":    types.FileTypeStylesheet,
	".scss":   types.FileTypeStylesheet,
	".sass":   types.FileTypeStylesheet,
	".less":   types.FileTypeStylesheet,
	".md":     types.FileTypeMarkdown,
	".mdx":    types.FileTypeMarkdown,
	".sh":     types.FileTypeShell,
	".bash":   types.FileTypeShell,
	".zsh":    types.FileTypeShell,
}

// byBasename wins over the extension table.
var byBasename = map[string]types.FileType{
	"dockerfile": types.FileTypeDockerfile,
	"procfile":   types.FileTypeYAMLConfig,
	"makefile":   types.FileTypeShell,
	".env":       types.FileTypeShell,
	".env.local": types.FileTypeShell,
	".gitignore": types.FileTypeShell,
	".npmrc":     types.FileTypeShell,
	".nvmrc":     types.FileTypeShell,
	"gemfile":    types.FileTypeShell,
}

// languages maps script-bearing tags to the parser language.
var languages = map[types.FileType]string{
	types.FileTypeTypeScript: "typescript",
	types.FileTypeTSX:        "tsx",
	types.FileTypeJavaScript: "javascript",
	types.FileTypeJSX:        "javascript",
	types.FileTypeGo:         "go",
	types.FileTypePython:     "python",
	types.FileTypeRust:       "rust",
	types.FileTypeJava:       "java",
	types.FileTypeCSharp:     "csharp",
	types.FileTypeCpp:        "cpp",
	types.FileTypePHP:        "php",
	types.FileTypeZig:        "zig",
}

// Classify returns the file-type tag for path.
func Classify(path string) types.FileType {
	base := strings.ToLower(filepath.Base(path))
	if ft, ok := byBasename[base]; ok {
		return ft
	}
	if strings.HasPrefix(base, "dockerfile.") || strings.HasSuffix(base, ".dockerfile") {
		return types.FileTypeDockerfile
	}
	if ft, ok := byExtension[strings.ToLower(filepath.Ext(base))]; ok {
		return ft
	}
	return types.FileTypeUnknown
}

// Language returns the parser language for ft, or "" when ft carries no
// parseable source.
func Language(ft types.FileType) string {
	return languages[ft]
}

// IsSource reports whether facts can be extracted from files of type ft.
func IsSource(ft types.FileType) bool {
	_, ok := languages[ft]
	return ok
}

// IsFrontendExtension reports whether path uses an extension that is tied to
// a UI framework (.jsx, .tsx, .vue, .svelte, .astro).
func IsFrontendExtension(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsx", ".tsx", ".vue", ".svelte", ".astro":
		return true
	}
	return false
}
