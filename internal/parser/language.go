package parser

import (
	"fmt"
	"unsafe"

	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Language names accepted by Parse. They match filetype.Language.
const (
	LanguageJavaScript = "javascript"
	LanguageTypeScript = "typescript"
	LanguageTSX        = "tsx"
	LanguageGo         = "go"
	LanguagePython     = "python"
	LanguageRust       = "rust"
	LanguageJava       = "java"
	LanguageCSharp     = "csharp"
	LanguageCpp        = "cpp"
	LanguagePHP        = "php"
	LanguageZig        = "zig"
)

var grammarPointers = map[string]func() unsafe.Pointer{
	LanguageJavaScript: tree_sitter_javascript.Language,
	LanguageTypeScript: tree_sitter_typescript.LanguageTypescript,
	LanguageTSX:        tree_sitter_typescript.LanguageTSX,
	LanguageGo:         tree_sitter_go.Language,
	LanguagePython:     tree_sitter_python.Language,
	LanguageRust:       tree_sitter_rust.Language,
	LanguageJava:       tree_sitter_java.Language,
	LanguageCSharp:     tree_sitter_csharp.Language,
	LanguageCpp:        tree_sitter_cpp.Language,
	LanguagePHP:        tree_sitter_php.LanguagePHP,
	LanguageZig:        tree_sitter_zig.Language,
}

// newTSParser creates a tree-sitter parser configured for lang.
func newTSParser(lang string) (*tree_sitter.Parser, error) {
	ptr, ok := grammarPointers[lang]
	if !ok {
		return nil, fmt.Errorf("no grammar for language %q", lang)
	}

	parser := tree_sitter.NewParser()
	language := tree_sitter.NewLanguage(ptr())
	if err := parser.SetLanguage(language); err != nil {
		parser.Close()
		return nil, fmt.Errorf("set %s grammar: %w", lang, err)
	}
	return parser, nil
}
