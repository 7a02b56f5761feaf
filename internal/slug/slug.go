// Package slug turns arbitrary labels into stable lowercase identifiers
// used for anchors, file names and tool keys.
package slug

import (
	"strconv"
	"strings"
	"unicode"
)

// Make lowercases s, drops every rune that is not a letter or digit, and
// joins the remaining runs with single hyphens. Make is idempotent:
// Make(Make(s)) == Make(s).
//
//	Make("Hello, World!")       → "hello-world"
//	Make("  GET /users/:id  ")  → "get-users-id"
//	Make("---")                 → ""
func Make(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	pendingHyphen := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// Unique returns Make(s), suffixed with -2, -3, ... when the base slug is
// already present in seen. The returned slug is recorded in seen.
func Unique(s string, seen map[string]int) string {
	base := Make(s)
	if base == "" {
		base = "section"
	}
	n := seen[base]
	seen[base] = n + 1
	if n == 0 {
		return base
	}
	candidate := base + "-" + strconv.Itoa(n+1)
	for seen[candidate] > 0 {
		n++
		candidate = base + "-" + strconv.Itoa(n+1)
	}
	seen[candidate] = 1
	return candidate
}
