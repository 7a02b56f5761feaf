package parser

import (
	"errors"
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/codescribe/internal/debug"
	cserrors "github.com/standardbeagle/codescribe/internal/errors"
)

// ErrSyntax is the underlying error for trees that contain ERROR or MISSING
// nodes.
var ErrSyntax = errors.New("syntax error")

// ErrClosed is returned by Parse after the pool has been closed.
var ErrClosed = errors.New("parser pool closed")

// Tree is a parsed file. Close releases the native tree.
type Tree struct {
	Path     string
	Language string
	Source   []byte

	ts *tree_sitter.Tree
}

// Close releases the tree-sitter tree. It is safe to call more than once.
func (t *Tree) Close() {
	if t != nil && t.ts != nil {
		t.ts.Close()
		t.ts = nil
	}
}

func (t *Tree) root() *tree_sitter.Node {
	if t == nil || t.ts == nil {
		return nil
	}
	return t.ts.RootNode()
}

// Pool hands out tree-sitter parsers per language. A tree-sitter parser is
// not safe for concurrent use, so each Parse call checks one out for its
// duration. A Pool belongs to a single analysis run.
type Pool struct {
	mu     sync.Mutex
	free   map[string][]*tree_sitter.Parser
	open   int // native parsers created and not yet closed
	closed bool

	// parse runs the native parser; tests replace it.
	parse func(tsp *tree_sitter.Parser, source []byte) *tree_sitter.Tree
}

// NewPool creates an empty pool. Parsers are created lazily on first use.
func NewPool() *Pool {
	return &Pool{free: make(map[string][]*tree_sitter.Parser), parse: nativeParse}
}

func nativeParse(tsp *tree_sitter.Parser, source []byte) *tree_sitter.Tree {
	return tsp.Parse(source, nil)
}

func (p *Pool) acquire(lang string) (*tree_sitter.Parser, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	if list := p.free[lang]; len(list) > 0 {
		tsp := list[len(list)-1]
		p.free[lang] = list[:len(list)-1]
		p.mu.Unlock()
		return tsp, nil
	}
	p.mu.Unlock()

	tsp, err := newTSParser(lang)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.open++
	p.mu.Unlock()
	return tsp, nil
}

// discard closes a parser that will not return to the pool.
func (p *Pool) discard(tsp *tree_sitter.Parser) {
	tsp.Close()
	p.mu.Lock()
	p.open--
	p.mu.Unlock()
}

func (p *Pool) openParsers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

func (p *Pool) release(lang string, tsp *tree_sitter.Parser) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.discard(tsp)
		return
	}
	p.free[lang] = append(p.free[lang], tsp)
	p.mu.Unlock()
}

// Close releases the idle parsers. A parser still checked out by a Parse
// call is released when that call returns. Trees returned earlier stay
// valid until they are closed themselves.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for _, list := range p.free {
		for _, tsp := range list {
			tsp.Close()
			p.open--
		}
	}
	p.free = nil
}

// Parse parses content as lang. It never panics: a crash inside the native
// parser, a nil tree, or a tree containing syntax errors all come back as a
// *errors.ParseError, and the caller decides how to degrade.
func (p *Pool) Parse(path, lang string, content []byte) (tree *Tree, err error) {
	tsp, err := p.acquire(lang)
	if err != nil {
		return nil, cserrors.NewParseError(path, 0, 0, "", err)
	}

	defer func() {
		if r := recover(); r != nil {
			debug.LogParse("TREE-SITTER PANIC in file %s: %v\n", path, r)
			// The parser state is unknown after a panic; close it rather than
			// returning it to the pool.
			p.discard(tsp)
			tree = nil
			err = cserrors.NewParseError(path, 0, 0, "", fmt.Errorf("parser panic: %v", r))
			return
		}
		p.release(lang, tsp)
	}()

	// tree-sitter may touch the input buffer through cgo, so parse a copy
	// and keep that copy as the tree's source.
	source := make([]byte, len(content))
	copy(source, content)

	ts := p.parse(tsp, source)
	if ts == nil {
		return nil, cserrors.NewParseError(path, 0, 0, "", errors.New("parser returned no tree"))
	}

	root := ts.RootNode()
	if root.HasError() {
		line, col, token := firstErrorPosition(root, source)
		ts.Close()
		return nil, cserrors.NewParseError(path, line, col, token, ErrSyntax)
	}

	return &Tree{Path: path, Language: lang, Source: source, ts: ts}, nil
}

// firstErrorPosition finds the first ERROR or MISSING node in document order.
func firstErrorPosition(n *tree_sitter.Node, source []byte) (line, col int, token string) {
	if n == nil {
		return 0, 0, ""
	}
	if n.IsError() || n.IsMissing() {
		pos := n.StartPosition()
		token = nodeText(n, source)
		if n.IsMissing() {
			token = n.Kind()
		}
		if len(token) > 24 {
			token = token[:24]
		}
		return int(pos.Row) + 1, int(pos.Column) + 1, token
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil || !child.HasError() && !child.IsMissing() {
			continue
		}
		if l, c, t := firstErrorPosition(child, source); l > 0 {
			return l, c, t
		}
	}
	pos := n.StartPosition()
	return int(pos.Row) + 1, int(pos.Column) + 1, ""
}
