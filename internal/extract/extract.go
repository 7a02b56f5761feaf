// Package extract turns a parsed tree into the facts of a FileRecord.
package extract

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/standardbeagle/codescribe/internal/parser"
	"github.com/standardbeagle/codescribe/internal/types"
)

var routeVerbs = map[string]bool{
	"get":    true,
	"post":   true,
	"put":    true,
	"delete": true,
	"patch":  true,
}

// queryVerbs are matched case-insensitively against the terminal callee name.
var queryVerbs = map[string]bool{
	"query":  true,
	"select": true,
	"insert": true,
	"update": true,
	"delete": true,
	"from":   true,
}

// uiFrameworks maps an import source to the component framework tag.
// Files that import none of them are tagged React.
var uiFrameworks = []struct {
	source string
	tag    string
}{
	{"preact", "Preact"},
	{"solid-js", "Solid"},
	{"@builder.io/qwik", "Qwik"},
}

// File populates rec's fact slices from tree in a single traversal. Any
// facts already on rec are replaced.
func File(tree *parser.Tree, rec *types.FileRecord) {
	rec.ResetFacts()
	e := &extractor{
		rec:       rec,
		functions: make(map[string]*parser.FunctionNode),
		hooks:     make(map[string][]string),
		seen:      make(map[string]bool),
	}
	parser.Walk(tree, e)
	e.finish()
}

type extractor struct {
	rec *types.FileRecord

	functions map[string]*parser.FunctionNode
	hooks     map[string][]string
	// seen holds component names already recorded for this file.
	seen map[string]bool
	// classExports are class names exported by their own declaration.
	classExports []string
}

func (e *extractor) Visit(n parser.Node) {
	switch n := n.(type) {
	case *parser.ImportNode:
		e.rec.Dependencies = append(e.rec.Dependencies, n.Source)
	case *parser.ExportNode:
		for _, name := range n.Names {
			e.rec.AddExport(name)
		}
	case *parser.FunctionNode:
		e.functions[n.Name] = n
		e.rec.Functions = append(e.rec.Functions, functionFact(n))
		// Languages without export statements mark exports on the declaration.
		if n.IsExported && n.Name != "" {
			e.rec.AddExport(n.Name)
		}
	case *parser.ClassNode:
		e.class(n)
	case *parser.CallNode:
		e.call(n)
	case *parser.UIElementNode:
		e.element(n)
	}
}

func functionFact(n *parser.FunctionNode) types.FunctionFact {
	start, end := n.Lines()
	return types.FunctionFact{
		Name:       n.Name,
		ParamNames: append([]string(nil), n.Params...),
		IsAsync:    n.IsAsync,
		IsExported: n.IsExported,
		StartLine:  start,
		EndLine:    end,
	}
}

func (e *extractor) class(n *parser.ClassNode) {
	cls := types.ClassFact{
		Name:           n.Name,
		SuperclassName: n.Superclass,
		IsExported:     n.IsExported,
	}
	for _, m := range n.Methods {
		cls.Methods = append(cls.Methods, functionFact(m))
	}
	if n.IsExported {
		e.classExports = append(e.classExports, n.Name)
		e.rec.AddExport(n.Name)
	}
	e.rec.Classes = append(e.rec.Classes, cls)
}

func (e *extractor) call(c *parser.CallNode) {
	if isHook(c.Name) && c.EnclosingFunction != "" {
		e.hooks[c.EnclosingFunction] = appendUnique(e.hooks[c.EnclosingFunction], c.Name)
	}

	first, ok := c.FirstArg()
	if !ok || first.Kind != parser.ArgString {
		return
	}

	// The two patterns are independent; a call such as cache.delete('k')
	// produces both a route and a query.
	if c.IsMember && routeVerbs[c.Name] {
		e.rec.Routes = append(e.rec.Routes, route(c, first.Text))
	}
	if verb := strings.ToLower(c.Name); queryVerbs[verb] {
		line, _ := c.Lines()
		e.rec.DatabaseQueries = append(e.rec.DatabaseQueries, types.QueryFact{
			OperationKind:      verb,
			TableNameOrUnknown: types.UnknownTable,
			RawQueryText:       first.Text,
			LocationLabel:      fmt.Sprintf("%s:%d", e.rec.RelativePath, line),
		})
	}
}

// route builds a RouteFact from a verb call. The last identifier argument
// is the handler, identifiers between the path and the handler are
// middleware. An inline handler leaves HandlerName empty.
func route(c *parser.CallNode, path string) types.RouteFact {
	r := types.RouteFact{
		HTTPMethod:  strings.ToUpper(c.Name),
		PathPattern: path,
		ParamNames:  PathParams(path),
	}
	rest := c.Args[1:]
	if n := len(rest); n > 0 && rest[n-1].Kind == parser.ArgReference {
		r.HandlerName = rest[n-1].Text
		rest = rest[:n-1]
	}
	for _, a := range rest {
		if a.Kind == parser.ArgReference {
			r.Middleware = append(r.Middleware, a.Text)
		}
	}
	return r
}

// PathParams returns the parameter names of a route path, accepting both
// /users/:id and /users/{id} forms.
func PathParams(path string) []string {
	var params []string
	for _, seg := range strings.Split(path, "/") {
		switch {
		case strings.HasPrefix(seg, ":") && len(seg) > 1:
			params = append(params, strings.TrimSuffix(seg[1:], "?"))
		case strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") && len(seg) > 2:
			name, _, _ := strings.Cut(seg[1:len(seg)-1], ":")
			params = append(params, name)
		}
	}
	return params
}

func (e *extractor) element(n *parser.UIElementNode) {
	name := n.EnclosingFunction
	if name == "" || e.seen[name] {
		return
	}
	e.seen[name] = true

	comp := types.ComponentFact{Name: name}
	if fn, ok := e.functions[name]; ok {
		comp.Props = append([]string(nil), fn.Destructured...)
	}
	e.rec.UIComponents = append(e.rec.UIComponents, comp)
}

// finish fills in component fields that depend on the whole file: hooks
// called anywhere in the component, export status and framework.
func (e *extractor) finish() {
	tag := e.frameworkTag()
	for i := range e.rec.UIComponents {
		comp := &e.rec.UIComponents[i]
		comp.Hooks = e.hooks[comp.Name]
		comp.FrameworkTag = tag
		comp.IsExported = e.rec.HasExport(comp.Name)
		if fn, ok := e.functions[comp.Name]; ok && fn.IsExported {
			comp.IsExported = true
		}
		for _, cls := range e.classExports {
			if cls == comp.Name {
				comp.IsExported = true
			}
		}
	}
}

func (e *extractor) frameworkTag() string {
	for _, fw := range uiFrameworks {
		for _, dep := range e.rec.Dependencies {
			if dep == fw.source || strings.HasPrefix(dep, fw.source+"/") {
				return fw.tag
			}
		}
	}
	return "React"
}

func isHook(name string) bool {
	if len(name) < 4 || !strings.HasPrefix(name, "use") {
		return false
	}
	r, _ := utf8.DecodeRuneInString(name[3:])
	return unicode.IsUpper(r)
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
