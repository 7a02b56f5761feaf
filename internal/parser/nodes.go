package parser

// Node is the closed set of syntax shapes the walker reports. Raw
// tree-sitter nodes are lowered into exactly one of these variants; every
// other node kind is traversed but never surfaced.
type Node interface {
	// Lines returns the 1-based start and end line of the node.
	Lines() (start, end int)
	node()
}

// Span is the line range shared by every variant.
type Span struct {
	StartLine int
	EndLine   int
}

func (s Span) Lines() (int, int) { return s.StartLine, s.EndLine }
func (Span) node() {}

// ImportNode is an import edge: an import declaration, a require() call or a
// dynamic import().
type ImportNode struct {
	Span
	Source string
}

// ExportNode is an export wrapper and the names it makes public.
type ExportNode struct {
	Span
	Names   []string
	Default bool
}

// FunctionNode is a named function, a function-valued binding or a method.
type FunctionNode struct {
	Span
	Name   string
	Params []string
	// Destructured holds the keys of object-pattern parameters, in order.
	Destructured []string
	IsAsync      bool
	IsExported   bool
	IsMethod     bool
}

// ClassNode is a class-like declaration. Methods are lowered with the class
// and are not reported again as separate FunctionNodes.
type ClassNode struct {
	Span
	Name       string
	Superclass string
	IsExported bool
	Methods    []*FunctionNode
}

// ArgKind classifies a call argument.
type ArgKind uint8

const (
	ArgOther ArgKind = iota
	// ArgString is a string literal, or a template literal with no
	// substitutions. Text holds the unquoted value.
	ArgString
	// ArgReference is an identifier or a member access such as
	// controllers.login. Text holds the source text.
	ArgReference
)

// Argument is one call argument.
type Argument struct {
	Kind ArgKind
	Text string
}

// CallNode is a call expression.
type CallNode struct {
	Span
	// Callee is the source text of the called expression.
	Callee string
	// Object is the receiver text for member calls such as app.get.
	Object string
	// Name is the terminal identifier of the callee: the property of a
	// member access or the bare identifier.
	Name     string
	IsMember bool
	Args     []Argument
	// EnclosingFunction is the nearest enclosing named function, or "".
	EnclosingFunction string
}

// FirstArg returns the first argument, if any.
func (c *CallNode) FirstArg() (Argument, bool) {
	if len(c.Args) == 0 {
		return Argument{}, false
	}
	return c.Args[0], true
}

// UIElementNode is a JSX-like markup element.
type UIElementNode struct {
	Span
	Tag               string
	EnclosingFunction string
}

// Visitor receives lowered nodes in source order during Walk.
type Visitor interface {
	Visit(n Node)
}

// VisitorFunc adapts a function to the Visitor interface.
type VisitorFunc func(n Node)

func (f VisitorFunc) Visit(n Node) { f(n) }
