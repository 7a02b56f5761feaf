package parser

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Walk traverses tree once, depth first in source order, and reports every
// lowered node to v. Walk keeps a stack of enclosing named functions so
// that calls and UI elements know which function they occur in; methods
// count as their class for this purpose.
func Walk(tree *Tree, v Visitor) {
	root := tree.root()
	if root == nil {
		return
	}
	g, ok := grammars[tree.Language]
	if !ok {
		return
	}
	w := &walker{g: g, src: tree.Source, v: v}
	w.visit(root)
}

type walker struct {
	g   *grammar
	src []byte
	v   Visitor

	frames  []string
	classes []string
}

func (w *walker) enclosing() string {
	if len(w.frames) == 0 {
		return ""
	}
	return w.frames[len(w.frames)-1]
}

func (w *walker) visit(n *tree_sitter.Node) {
	if n == nil {
		return
	}
	kind := n.Kind()
	framePushed, classPushed := false, false

	switch {
	case w.g.imports[kind] != nil:
		for _, src := range w.g.imports[kind](n, w.src) {
			if src != "" {
				w.v.Visit(&ImportNode{Span: spanOf(n), Source: src})
			}
		}

	case w.g.exports[kind]:
		w.v.Visit(w.lowerExport(n))
		if s := n.ChildByFieldName("source"); s != nil {
			w.v.Visit(&ImportNode{Span: spanOf(n), Source: unquote(nodeText(s, w.src))})
		}

	case w.g.functions[kind]:
		if w.g.isMethod(n) {
			name := functionName(n, w.src)
			if len(w.classes) > 0 {
				name = w.classes[len(w.classes)-1]
			}
			if name != "" {
				w.frames = append(w.frames, name)
				framePushed = true
			}
			break
		}
		fn := w.lowerFunction(n, false)
		if fn.Name != "" {
			w.v.Visit(fn)
			w.frames = append(w.frames, fn.Name)
			framePushed = true
		}

	case w.g.classes[kind]:
		if cls := w.lowerClass(n); cls != nil {
			w.v.Visit(cls)
			w.classes = append(w.classes, cls.Name)
			classPushed = true
		}

	case w.g.calls[kind]:
		if node := w.lowerCall(n); node != nil {
			w.v.Visit(node)
		}

	case w.g.ui[kind]:
		w.v.Visit(&UIElementNode{
			Span:              spanOf(n),
			Tag:               w.elementTag(n),
			EnclosingFunction: w.enclosing(),
		})
	}

	for i := uint(0); i < n.ChildCount(); i++ {
		w.visit(n.Child(i))
	}

	if framePushed {
		w.frames = w.frames[:len(w.frames)-1]
	}
	if classPushed {
		w.classes = w.classes[:len(w.classes)-1]
	}
}

func (w *walker) lowerFunction(n *tree_sitter.Node, method bool) *FunctionNode {
	name := functionName(n, w.src)
	params, destructured := parameters(n, w.src)
	fn := &FunctionNode{
		Span:         spanOf(n),
		Name:         name,
		Params:       params,
		Destructured: destructured,
		IsAsync:      isAsync(n, w.src),
		IsMethod:     method,
	}
	if !method && name != "" && w.g.exported != nil {
		fn.IsExported = w.g.exported(n, name, w.src)
	}
	return fn
}

func (w *walker) lowerClass(n *tree_sitter.Node) *ClassNode {
	if w.g.classFilter != nil && !w.g.classFilter(n) {
		return nil
	}
	name := functionName(n, w.src)
	if name == "" {
		return nil
	}
	cls := &ClassNode{
		Span:       spanOf(n),
		Name:       name,
		Superclass: superclass(n, w.src),
	}
	if w.g.exported != nil {
		cls.IsExported = w.g.exported(n, name, w.src)
	}

	body := classBody(n)
	if body == nil {
		return cls
	}
	for i := uint(0); i < body.NamedChildCount(); i++ {
		member := body.NamedChild(i)
		for w.g.wrappers[member.Kind()] {
			def := member.ChildByFieldName("definition")
			if def == nil {
				break
			}
			member = def
		}
		if w.g.functions[member.Kind()] {
			if m := w.lowerFunction(member, true); m.Name != "" {
				cls.Methods = append(cls.Methods, m)
			}
		}
	}
	return cls
}

func (w *walker) lowerExport(n *tree_sitter.Node) *ExportNode {
	exp := &ExportNode{Span: spanOf(n), Default: hasChildKind(n, "default")}

	if decl := n.ChildByFieldName("declaration"); decl != nil {
		switch decl.Kind() {
		case "lexical_declaration", "variable_declaration":
			for i := uint(0); i < decl.NamedChildCount(); i++ {
				d := decl.NamedChild(i)
				if d.Kind() != "variable_declarator" {
					continue
				}
				if name := d.ChildByFieldName("name"); name != nil && name.Kind() == "identifier" {
					exp.Names = append(exp.Names, nodeText(name, w.src))
				}
			}
		default:
			if name := decl.ChildByFieldName("name"); name != nil {
				exp.Names = append(exp.Names, nodeText(name, w.src))
			}
		}
	}

	if clause := childOfKind(n, "export_clause"); clause != nil {
		for i := uint(0); i < clause.NamedChildCount(); i++ {
			spec := clause.NamedChild(i)
			if spec.Kind() != "export_specifier" {
				continue
			}
			target := spec.ChildByFieldName("alias")
			if target == nil {
				target = spec.ChildByFieldName("name")
			}
			if target != nil {
				exp.Names = append(exp.Names, unquote(nodeText(target, w.src)))
			}
		}
	}

	if exp.Default && len(exp.Names) == 0 {
		if value := n.ChildByFieldName("value"); value != nil && value.Kind() == "identifier" {
			exp.Names = append(exp.Names, nodeText(value, w.src))
		} else {
			exp.Names = append(exp.Names, "default")
		}
	}
	return exp
}

func (w *walker) lowerCall(n *tree_sitter.Node) Node {
	callee := n.ChildByFieldName("function")
	if callee == nil {
		return nil
	}
	args := w.arguments(n.ChildByFieldName("arguments"))

	if w.g.requireCalls {
		dynamicImport := callee.Kind() == "import"
		require := callee.Kind() == "identifier" && nodeText(callee, w.src) == "require"
		if (dynamicImport || require) && len(args) > 0 && args[0].Kind == ArgString {
			return &ImportNode{Span: spanOf(n), Source: args[0].Text}
		}
	}

	call := &CallNode{
		Span:              spanOf(n),
		Callee:            nodeText(callee, w.src),
		Args:              args,
		EnclosingFunction: w.enclosing(),
	}
	switch callee.Kind() {
	case "member_expression":
		call.IsMember = true
		call.Object = nodeText(callee.ChildByFieldName("object"), w.src)
		call.Name = nodeText(callee.ChildByFieldName("property"), w.src)
	case "selector_expression":
		call.IsMember = true
		call.Object = nodeText(callee.ChildByFieldName("operand"), w.src)
		call.Name = nodeText(callee.ChildByFieldName("field"), w.src)
	case "attribute":
		call.IsMember = true
		call.Object = nodeText(callee.ChildByFieldName("object"), w.src)
		call.Name = nodeText(callee.ChildByFieldName("attribute"), w.src)
	case "identifier":
		call.Name = call.Callee
	}
	return call
}

func (w *walker) arguments(list *tree_sitter.Node) []Argument {
	if list == nil {
		return nil
	}
	var args []Argument
	for i := uint(0); i < list.NamedChildCount(); i++ {
		a := list.NamedChild(i)
		switch a.Kind() {
		case "comment":
			continue
		case "string", "interpreted_string_literal", "raw_string_literal":
			if hasChildKind(a, "interpolation") {
				args = append(args, Argument{Kind: ArgOther, Text: nodeText(a, w.src)})
				continue
			}
			args = append(args, Argument{Kind: ArgString, Text: unquote(nodeText(a, w.src))})
		case "template_string":
			if hasChildKind(a, "template_substitution") {
				args = append(args, Argument{Kind: ArgOther, Text: nodeText(a, w.src)})
				continue
			}
			args = append(args, Argument{Kind: ArgString, Text: unquote(nodeText(a, w.src))})
		case "identifier", "member_expression", "selector_expression", "attribute":
			args = append(args, Argument{Kind: ArgReference, Text: nodeText(a, w.src)})
		default:
			args = append(args, Argument{Kind: ArgOther, Text: strings.TrimSpace(nodeText(a, w.src))})
		}
	}
	return args
}

func (w *walker) elementTag(n *tree_sitter.Node) string {
	target := n
	if open := n.ChildByFieldName("open_tag"); open != nil {
		target = open
	}
	if name := target.ChildByFieldName("name"); name != nil {
		return nodeText(name, w.src)
	}
	return ""
}
