package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

type importFunc func(n *tree_sitter.Node, src []byte) []string

// grammar describes how one language's node kinds lower into Node variants.
// Kinds that appear in no table are traversed without being reported.
type grammar struct {
	functions map[string]bool
	classes   map[string]bool
	imports   map[string]importFunc
	exports   map[string]bool
	calls     map[string]bool
	ui        map[string]bool
	// wrappers sit between a class body and a method, e.g. Python decorators.
	wrappers map[string]bool
	// requireCalls lowers require('x') and import('x') into ImportNodes.
	requireCalls bool

	exported    func(n *tree_sitter.Node, name string, src []byte) bool
	classFilter func(n *tree_sitter.Node) bool
}

func set(kinds ...string) map[string]bool {
	m := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		m[k] = true
	}
	return m
}

var grammars = map[string]*grammar{}

func init() {
	js := &grammar{
		functions: set("function_declaration", "generator_function_declaration",
			"function_expression", "function", "generator_function", "arrow_function", "method_definition"),
		classes:      set("class_declaration", "abstract_class_declaration", "class"),
		imports:      map[string]importFunc{"import_statement": sourceField},
		exports:      set("export_statement"),
		calls:        set("call_expression"),
		ui:           set("jsx_element", "jsx_self_closing_element"),
		requireCalls: true,
		exported:     exportWrapped,
	}
	grammars[LanguageJavaScript] = js
	grammars[LanguageTypeScript] = js
	grammars[LanguageTSX] = js

	grammars[LanguageGo] = &grammar{
		functions: set("function_declaration", "method_declaration"),
		classes:   set("type_spec"),
		imports:   map[string]importFunc{"import_spec": pathField},
		calls:     set("call_expression"),
		exported:  capitalized,
		classFilter: func(n *tree_sitter.Node) bool {
			t := n.ChildByFieldName("type")
			return t != nil && (t.Kind() == "struct_type" || t.Kind() == "interface_type")
		},
	}

	grammars[LanguagePython] = &grammar{
		functions: set("function_definition"),
		classes:   set("class_definition"),
		imports: map[string]importFunc{
			"import_statement":      pythonImport,
			"import_from_statement": moduleNameField,
		},
		calls:    set("call"),
		wrappers: set("decorated_definition"),
		exported: func(_ *tree_sitter.Node, name string, _ []byte) bool {
			return !strings.HasPrefix(name, "_")
		},
	}

	grammars[LanguageRust] = &grammar{
		functions: set("function_item", "function_signature_item"),
		classes:   set("struct_item", "enum_item", "trait_item"),
		imports:   map[string]importFunc{"use_declaration": argumentField},
		exported: func(n *tree_sitter.Node, _ string, _ []byte) bool {
			return hasChildKind(n, "visibility_modifier")
		},
	}

	grammars[LanguageJava] = &grammar{
		functions: set("method_declaration", "constructor_declaration"),
		classes:   set("class_declaration", "interface_declaration", "record_declaration", "enum_declaration"),
		imports:   map[string]importFunc{"import_declaration": keywordImport("import")},
		exported:  publicModifier,
	}

	grammars[LanguageCSharp] = &grammar{
		functions: set("method_declaration", "constructor_declaration", "local_function_statement"),
		classes:   set("class_declaration", "interface_declaration", "struct_declaration", "record_declaration"),
		imports:   map[string]importFunc{"using_directive": keywordImport("using")},
		exported:  publicModifier,
	}

	grammars[LanguageCpp] = &grammar{
		functions: set("function_definition"),
		classes:   set("class_specifier", "struct_specifier"),
		imports:   map[string]importFunc{"preproc_include": pathField},
		exported: func(n *tree_sitter.Node, _ string, src []byte) bool {
			return !strings.HasPrefix(strings.TrimSpace(nodeText(n, src)), "static ")
		},
		classFilter: func(n *tree_sitter.Node) bool {
			return n.ChildByFieldName("body") != nil
		},
	}

	grammars[LanguagePHP] = &grammar{
		functions: set("function_definition", "method_declaration"),
		classes:   set("class_declaration", "interface_declaration", "trait_declaration"),
		imports:   map[string]importFunc{"namespace_use_declaration": phpUse},
		exported: func(n *tree_sitter.Node, _ string, src []byte) bool {
			text := nodeText(n, src)
			return !strings.Contains(text[:min(len(text), 32)], "private ")
		},
	}

	grammars[LanguageZig] = &grammar{
		functions: set("function_declaration"),
		classes:   set("variable_declaration"),
		imports:   map[string]importFunc{"builtin_function": zigImport},
		exported: func(n *tree_sitter.Node, _ string, src []byte) bool {
			return strings.HasPrefix(nodeText(n, src), "pub ")
		},
		classFilter: func(n *tree_sitter.Node) bool {
			return childOfKind(n, "struct_declaration", "union_declaration", "enum_declaration") != nil
		},
	}
}

// --- export rules ---

// exportWrapped reports whether a JS/TS declaration sits directly inside an
// export statement. Function-valued bindings are checked through their
// declarator and declaration.
func exportWrapped(n *tree_sitter.Node, _ string, _ []byte) bool {
	p := n.Parent()
	if p != nil && p.Kind() == "variable_declarator" {
		p = p.Parent()
		if p != nil {
			p = p.Parent()
		}
	}
	return p != nil && p.Kind() == "export_statement"
}

func capitalized(_ *tree_sitter.Node, name string, _ []byte) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

func publicModifier(n *tree_sitter.Node, _ string, src []byte) bool {
	if mods := childOfKind(n, "modifiers", "modifier"); mods != nil {
		return strings.Contains(nodeText(mods, src), "public")
	}
	return false
}

// --- import extractors ---

func sourceField(n *tree_sitter.Node, src []byte) []string {
	if s := n.ChildByFieldName("source"); s != nil {
		return []string{unquote(nodeText(s, src))}
	}
	return nil
}

func pathField(n *tree_sitter.Node, src []byte) []string {
	if p := n.ChildByFieldName("path"); p != nil {
		return []string{unquote(nodeText(p, src))}
	}
	return nil
}

func argumentField(n *tree_sitter.Node, src []byte) []string {
	if a := n.ChildByFieldName("argument"); a != nil {
		return []string{nodeText(a, src)}
	}
	return nil
}

func moduleNameField(n *tree_sitter.Node, src []byte) []string {
	if m := n.ChildByFieldName("module_name"); m != nil {
		return []string{nodeText(m, src)}
	}
	return nil
}

func pythonImport(n *tree_sitter.Node, src []byte) []string {
	var out []string
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		switch child.Kind() {
		case "dotted_name":
			out = append(out, nodeText(child, src))
		case "aliased_import":
			out = append(out, nodeText(child.ChildByFieldName("name"), src))
		}
	}
	return out
}

func keywordImport(keyword string) importFunc {
	return func(n *tree_sitter.Node, src []byte) []string {
		text := strings.TrimSpace(nodeText(n, src))
		text = strings.TrimPrefix(text, "global ")
		text = strings.TrimPrefix(text, keyword)
		text = strings.TrimSpace(strings.TrimSuffix(text, ";"))
		text = strings.TrimSpace(strings.TrimPrefix(text, "static "))
		if text == "" {
			return nil
		}
		return []string{text}
	}
}

func phpUse(n *tree_sitter.Node, src []byte) []string {
	var out []string
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child.Kind() == "namespace_use_clause" {
			out = append(out, strings.TrimSpace(nodeText(child, src)))
		}
	}
	if len(out) == 0 {
		return keywordImport("use")(n, src)
	}
	return out
}

func zigImport(n *tree_sitter.Node, src []byte) []string {
	if !strings.HasPrefix(nodeText(n, src), "@import") {
		return nil
	}
	str := firstDescendant(n, func(kind string) bool {
		return kind == "string" || kind == "string_literal"
	})
	if str == nil {
		return nil
	}
	return []string{unquote(nodeText(str, src))}
}

// --- names and parameters ---

func (g *grammar) isMethod(n *tree_sitter.Node) bool {
	p := n.Parent()
	for p != nil && g.wrappers[p.Kind()] {
		p = p.Parent()
	}
	if p == nil {
		return false
	}
	owner := p.Parent()
	return owner != nil && g.classes[owner.Kind()]
}

func functionName(n *tree_sitter.Node, src []byte) string {
	switch n.Kind() {
	case "arrow_function", "function_expression", "function", "generator_function":
		if name := bindingName(n, src); name != "" {
			return name
		}
		// x => x has an identifier child that is a parameter, not a name.
		return nodeText(n.ChildByFieldName("name"), src)
	}
	if name := n.ChildByFieldName("name"); name != nil {
		return nodeText(name, src)
	}
	if decl := n.ChildByFieldName("declarator"); decl != nil {
		return declaratorName(decl, src)
	}
	if id := childOfKind(n, "identifier"); id != nil {
		return nodeText(id, src)
	}
	return ""
}

// bindingName names an anonymous function from the binding it is assigned
// to: const Foo = () => {}, { foo: function() {} }, exports.foo = ...
func bindingName(n *tree_sitter.Node, src []byte) string {
	p := n.Parent()
	if p == nil {
		return ""
	}
	switch p.Kind() {
	case "variable_declarator":
		if name := p.ChildByFieldName("name"); name != nil && name.Kind() == "identifier" {
			return nodeText(name, src)
		}
	case "pair":
		if key := p.ChildByFieldName("key"); key != nil {
			return unquote(nodeText(key, src))
		}
	case "assignment_expression":
		if left := p.ChildByFieldName("left"); left != nil {
			switch left.Kind() {
			case "identifier":
				return nodeText(left, src)
			case "member_expression":
				return nodeText(left.ChildByFieldName("property"), src)
			}
		}
	}
	return ""
}

func declaratorName(d *tree_sitter.Node, src []byte) string {
	for d != nil {
		switch d.Kind() {
		case "identifier", "field_identifier", "qualified_identifier", "destructor_name", "operator_name":
			return nodeText(d, src)
		}
		d = d.ChildByFieldName("declarator")
	}
	return ""
}

func parametersNode(n *tree_sitter.Node) *tree_sitter.Node {
	if p := n.ChildByFieldName("parameters"); p != nil {
		return p
	}
	if p := n.ChildByFieldName("parameter"); p != nil {
		return p
	}
	if decl := n.ChildByFieldName("declarator"); decl != nil {
		fd := firstDescendant(decl, func(kind string) bool { return kind == "function_declarator" })
		if fd != nil {
			return fd.ChildByFieldName("parameters")
		}
	}
	return childOfKind(n, "parameters", "formal_parameters", "parameter_list")
}

// parameters returns the parameter names of a function node and the keys of
// any destructured object parameters.
func parameters(n *tree_sitter.Node, src []byte) (names, destructured []string) {
	params := parametersNode(n)
	if params == nil {
		return nil, nil
	}
	switch params.Kind() {
	case "identifier":
		return []string{nodeText(params, src)}, nil
	}
	for i := uint(0); i < params.NamedChildCount(); i++ {
		child := params.NamedChild(i)
		if child.Kind() == "comment" {
			continue
		}
		for _, name := range paramNames(child, src, &destructured) {
			switch name {
			case "", "*", "/", "self", "cls", "this":
				continue
			}
			names = append(names, name)
		}
	}
	return names, destructured
}

func paramNames(n *tree_sitter.Node, src []byte, destructured *[]string) []string {
	switch n.Kind() {
	case "identifier", "shorthand_property_identifier_pattern", "type_identifier":
		return []string{nodeText(n, src)}
	case "self_parameter", "self", "keyword_separator", "positional_separator":
		return nil
	case "variable_name":
		return []string{strings.TrimPrefix(nodeText(n, src), "$")}
	case "object_pattern":
		keys := objectPatternKeys(n, src)
		*destructured = append(*destructured, keys...)
		return []string{"{" + strings.Join(keys, ", ") + "}"}
	case "array_pattern":
		return []string{nodeText(n, src)}
	case "parameter_declaration", "variadic_parameter_declaration":
		// Go declares several names per declaration: func(a, b int).
		var names []string
		for i := uint(0); i < n.NamedChildCount(); i++ {
			if c := n.NamedChild(i); c.Kind() == "identifier" {
				names = append(names, nodeText(c, src))
			}
		}
		if len(names) > 0 {
			return names
		}
	}

	for _, field := range []string{"pattern", "name", "left", "declarator"} {
		if c := n.ChildByFieldName(field); c != nil {
			return paramNames(c, src, destructured)
		}
	}
	if id := firstDescendant(n, isIdentifierKind); id != nil {
		return []string{nodeText(id, src)}
	}
	return []string{"_"}
}

func objectPatternKeys(n *tree_sitter.Node, src []byte) []string {
	var keys []string
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		switch c.Kind() {
		case "shorthand_property_identifier_pattern":
			keys = append(keys, nodeText(c, src))
		case "pair_pattern":
			keys = append(keys, unquote(nodeText(c.ChildByFieldName("key"), src)))
		case "object_assignment_pattern":
			keys = append(keys, nodeText(c.ChildByFieldName("left"), src))
		case "rest_pattern":
			if id := firstDescendant(c, isIdentifierKind); id != nil {
				keys = append(keys, "..."+nodeText(id, src))
			}
		}
	}
	return keys
}

func isAsync(n *tree_sitter.Node, src []byte) bool {
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "async":
			return true
		case "function_modifiers", "modifiers", "modifier":
			if strings.Contains(nodeText(c, src), "async") {
				return true
			}
		}
	}
	return false
}

// superclass returns the first base type named in a class heritage clause.
func superclass(n *tree_sitter.Node, src []byte) string {
	var clause *tree_sitter.Node
	for _, field := range []string{"superclass", "superclasses"} {
		if clause = n.ChildByFieldName(field); clause != nil {
			break
		}
	}
	if clause == nil {
		clause = childOfKind(n, "class_heritage", "base_list", "base_class_clause", "base_clause")
	}
	if clause == nil {
		return ""
	}
	return cleanSuperclass(nodeText(clause, src))
}

func cleanSuperclass(s string) string {
	s = strings.TrimLeft(strings.TrimSpace(s), ":( ")
	for _, kw := range []string{"extends", "public", "protected", "private", "virtual"} {
		if strings.HasPrefix(s, kw+" ") || strings.HasPrefix(s, kw+"\t") || strings.HasPrefix(s, kw+"\n") {
			s = strings.TrimSpace(s[len(kw):])
		}
	}
	if end := strings.IndexAny(s, " \t\r\n,{<()"); end >= 0 {
		s = s[:end]
	}
	return s
}

func classBody(n *tree_sitter.Node) *tree_sitter.Node {
	if body := n.ChildByFieldName("body"); body != nil {
		return body
	}
	return childOfKind(n, "class_body", "declaration_list", "field_declaration_list", "block", "struct_declaration")
}
