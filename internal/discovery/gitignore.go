package discovery

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// LoadGitignore reads rootPath/.gitignore and returns its patterns as
// doublestar exclusion globs. A missing file yields no patterns.
func LoadGitignore(rootPath string) ([]string, error) {
	file, err := os.Open(filepath.Join(rootPath, ".gitignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var patterns []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if p := convertGitignoreLine(scanner.Text()); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns, scanner.Err()
}

// convertGitignoreLine converts one .gitignore line to an exclusion glob.
// Blank lines, comments and negations produce "".
func convertGitignoreLine(line string) string {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return ""
	}
	// Negation patterns are not supported.
	if strings.HasPrefix(line, "!") {
		return ""
	}

	directory := strings.HasSuffix(line, "/")
	line = strings.TrimSuffix(line, "/")
	absolute := strings.HasPrefix(line, "/")
	line = strings.TrimPrefix(line, "/")
	if line == "" {
		return ""
	}

	switch {
	case directory && absolute:
		return line + "/**"
	case directory:
		return "**/" + line + "/**"
	case absolute:
		return line
	default:
		return "**/" + line
	}
}
