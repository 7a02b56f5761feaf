package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hbollon/go-edlib"
	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	cserrors "github.com/standardbeagle/codescribe/internal/errors"
)

var (
	topLevelSections = []string{"version", "project", "analysis", "generation", "watch", "include", "exclude"}
	projectKeys      = []string{"root", "name"}
	analysisKeys     = []string{"batch_size", "file_timeout_ms", "max_file_size", "cache_entries", "respect_gitignore"}
	generationKeys   = []string{"model", "max_attempts", "retry_base_ms", "output_dir", "format"}
	watchKeys        = []string{"debounce_ms"}
)

// LoadKDL loads projectRoot/.codescribe.kdl. It returns nil, nil when the
// file does not exist.
func LoadKDL(projectRoot string) (*Config, error) {
	kdlPath := filepath.Join(projectRoot, FileName)
	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil
	}
	return loadKDLFile(kdlPath)
}

func loadKDLFile(kdlPath string) (*Config, error) {
	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, cserrors.NewFileError("read config", kdlPath, err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}

	// A relative root is relative to the directory holding the config file.
	dir := filepath.Dir(kdlPath)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	switch {
	case cfg.Project.Root == "":
		cfg.Project.Root = dir
	case !filepath.IsAbs(cfg.Project.Root):
		cfg.Project.Root = filepath.Clean(filepath.Join(dir, cfg.Project.Root))
	}
	return cfg, nil
}

// parseKDL parses config content onto the defaults. Unknown section or key
// names are rejected with a suggestion for the closest known name.
func parseKDL(content string) (*Config, error) {
	cfg := Default("")

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, cserrors.NewConfigError("", "", fmt.Errorf("failed to parse KDL config: %w", err))
	}

	for _, n := range doc.Nodes {
		switch name := nodeName(n); name {
		case "version":
			if v, ok := firstIntArg(n); ok {
				cfg.Version = v
			}
		case "project":
			for _, cn := range n.Children { // project { root "." name "foo" }
				switch nodeName(cn) {
				case "root":
					assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				case "name":
					assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
				default:
					return nil, unknownKey("project", cn, projectKeys)
				}
			}
		case "analysis":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "batch_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Analysis.BatchSize = v
					}
				case "file_timeout_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Analysis.FileTimeoutMs = v
					}
				case "max_file_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Analysis.MaxFileSize = int64(v)
					}
					if s, ok := firstStringArg(cn); ok {
						sz, err := parseSize(s)
						if err != nil {
							return nil, cserrors.NewConfigError("analysis.max_file_size", s, err)
						}
						cfg.Analysis.MaxFileSize = sz
					}
				case "cache_entries":
					if v, ok := firstIntArg(cn); ok {
						cfg.Analysis.CacheEntries = v
					}
				case "respect_gitignore":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Analysis.RespectGitignore = b
					}
				default:
					return nil, unknownKey("analysis", cn, analysisKeys)
				}
			}
		case "generation":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "model":
					assignSimpleString(cn, "model", func(v string) { cfg.Generation.Model = v })
				case "max_attempts":
					if v, ok := firstIntArg(cn); ok {
						cfg.Generation.MaxAttempts = v
					}
				case "retry_base_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Generation.RetryBaseMs = v
					}
				case "output_dir":
					assignSimpleString(cn, "output_dir", func(v string) { cfg.Generation.OutputDir = v })
				case "format":
					assignSimpleString(cn, "format", func(v string) { cfg.Generation.Format = v })
				default:
					return nil, unknownKey("generation", cn, generationKeys)
				}
			}
		case "watch":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				default:
					return nil, unknownKey("watch", cn, watchKeys)
				}
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			// Config exclusions add to the defaults; they never replace them.
			cfg.Exclude = append(cfg.Exclude, collectStringArgs(n)...)
		default:
			return nil, unknownField(name, name, topLevelSections)
		}
	}

	return cfg, nil
}

func unknownKey(section string, n *document.Node, known []string) error {
	name := nodeName(n)
	return unknownField(section+"."+name, name, known)
}

func unknownField(field, name string, known []string) error {
	err := cserrors.NewConfigError(field, name, fmt.Errorf("unknown config key %q", name))
	if s := suggest(name, known); s != "" {
		return err.WithSuggestion(s)
	}
	return err
}

// suggest returns the known name closest to name by edit distance, or ""
// when nothing is close enough to be a plausible typo.
func suggest(name string, known []string) string {
	best, bestDist := "", -1
	for _, k := range known {
		d := edlib.LevenshteinDistance(strings.ToLower(name), k)
		if bestDist < 0 || d < bestDist {
			best, bestDist = k, d
		}
	}
	limit := max(2, len(name)/3)
	if bestDist < 0 || bestDist > limit {
		return ""
	}
	return best
}

// Helper functions over the kdl-go document model.
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}
func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}
func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	// Inline form: include "a" "b"
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	// Block form: exclude { "pattern" }. Each string is a child node whose
	// name is the value.
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}

	return out
}
func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// parseSize handles size strings like "10MB", "500KB", "1GB"
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return 0, err
	}

	return num * multiplier, nil
}
