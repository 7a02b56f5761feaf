package parser

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

func nodeText(n *tree_sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	start, end := n.StartByte(), n.EndByte()
	if end > uint(len(source)) || start > end {
		return ""
	}
	return string(source[start:end])
}

func lineOf(n *tree_sitter.Node) int {
	return int(n.StartPosition().Row) + 1
}

func spanOf(n *tree_sitter.Node) Span {
	return Span{
		StartLine: int(n.StartPosition().Row) + 1,
		EndLine:   int(n.EndPosition().Row) + 1,
	}
}

// childOfKind returns the first direct child whose kind is one of kinds.
func childOfKind(n *tree_sitter.Node, kinds ...string) *tree_sitter.Node {
	if n == nil {
		return nil
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		k := child.Kind()
		for _, want := range kinds {
			if k == want {
				return child
			}
		}
	}
	return nil
}

// hasChildKind reports whether n has a direct child (named or anonymous) of
// the given kind, e.g. the "async" keyword.
func hasChildKind(n *tree_sitter.Node, kind string) bool {
	return childOfKind(n, kind) != nil
}

// firstDescendant returns the first node in document order, n included,
// whose kind satisfies match.
func firstDescendant(n *tree_sitter.Node, match func(kind string) bool) *tree_sitter.Node {
	if n == nil {
		return nil
	}
	if match(n.Kind()) {
		return n
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		if found := firstDescendant(n.Child(i), match); found != nil {
			return found
		}
	}
	return nil
}

// unquote strips string-literal delimiters: optional letter prefixes
// (Python r/b/f/u), then triple or single quotes, backticks, or angle
// brackets for C system includes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	trimmed := strings.TrimLeft(s, "rRbBfFuU@")
	if len(trimmed) < len(s) && trimmed != "" && strings.ContainsRune(`"'`+"`", rune(trimmed[0])) {
		s = trimmed
	}
	for _, q := range []string{`"""`, `'''`} {
		if len(s) >= 6 && strings.HasPrefix(s, q) && strings.HasSuffix(s, q) {
			return s[3 : len(s)-3]
		}
	}
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'' || first == '`') && last == first {
			return s[1 : len(s)-1]
		}
		if first == '<' && last == '>' {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func isIdentifierKind(kind string) bool {
	switch kind {
	case "identifier", "type_identifier", "property_identifier", "field_identifier",
		"shorthand_property_identifier_pattern", "name", "simple_identifier":
		return true
	}
	return false
}
