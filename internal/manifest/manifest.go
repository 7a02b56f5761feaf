// Package manifest reads the project manifest: dependency, script and
// executable declarations from package.json, Cargo.toml, pyproject.toml or
// go.mod, whichever is found first in the project root.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/mod/modfile"

	cserrors "github.com/standardbeagle/codescribe/internal/errors"
)

// Kind names the manifest format that was loaded.
type Kind string

const (
	KindNone        Kind = ""
	KindPackageJSON Kind = "package.json"
	KindCargo       Kind = "Cargo.toml"
	KindPyProject   Kind = "pyproject.toml"
	KindGoMod       Kind = "go.mod"
)

// Manifest is the normalized content of a project manifest. Maps are never
// nil.
type Manifest struct {
	Kind            Kind
	Path            string
	Name            string
	Dependencies    map[string]string
	DevDependencies map[string]string
	Scripts         map[string]string
	// Bin maps executable names to their entry point.
	Bin map[string]string
	// OutputDirs are build output directories declared by the manifest or
	// its companion build config, relative to the root.
	OutputDirs []string
}

// Empty returns a manifest with no declarations.
func Empty() *Manifest {
	return &Manifest{
		Dependencies:    map[string]string{},
		DevDependencies: map[string]string{},
		Scripts:         map[string]string{},
		Bin:             map[string]string{},
	}
}

var loaders = []struct {
	kind Kind
	load func(m *Manifest, root string, data []byte) error
}{
	{KindPackageJSON, loadPackageJSON},
	{KindCargo, loadCargo},
	{KindPyProject, loadPyProject},
	{KindGoMod, loadGoMod},
}

// Load reads the first manifest found in root. A missing manifest is not an
// error. A manifest that cannot be read or parsed yields an empty Manifest
// and a *errors.ManifestError; callers continue with reduced detection.
func Load(root string) (*Manifest, error) {
	for _, l := range loaders {
		p := filepath.Join(root, string(l.kind))
		data, err := os.ReadFile(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Empty(), cserrors.NewManifestError(p, err)
		}

		m := Empty()
		m.Kind = l.kind
		m.Path = p
		if err := l.load(m, root, data); err != nil {
			return Empty(), cserrors.NewManifestError(p, err)
		}
		m.OutputDirs = dedupe(m.OutputDirs)
		return m, nil
	}
	return Empty(), nil
}

// --- package.json ---

type packageJSON struct {
	Name             string            `json:"name"`
	Dependencies     map[string]string `json:"dependencies"`
	DevDependencies  map[string]string `json:"devDependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`
	Scripts          map[string]string `json:"scripts"`
	Bin              json.RawMessage   `json:"bin"`
	Build            struct {
		OutDir string `json:"outDir"`
	} `json:"build"`
}

func loadPackageJSON(m *Manifest, root string, data []byte) error {
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return err
	}
	m.Name = pkg.Name
	copyInto(m.Dependencies, pkg.Dependencies)
	copyInto(m.Dependencies, pkg.PeerDependencies)
	copyInto(m.DevDependencies, pkg.DevDependencies)
	copyInto(m.Scripts, pkg.Scripts)

	if len(pkg.Bin) > 0 {
		var single string
		var named map[string]string
		switch {
		case json.Unmarshal(pkg.Bin, &single) == nil:
			// "bin": "./cli.js" names the executable after the package.
			name := path.Base(pkg.Name)
			if name == "" || name == "." {
				name = "bin"
			}
			m.Bin[name] = single
		case json.Unmarshal(pkg.Bin, &named) == nil:
			copyInto(m.Bin, named)
		default:
			return fmt.Errorf("bin must be a string or an object")
		}
	}

	if pkg.Build.OutDir != "" {
		m.OutputDirs = append(m.OutputDirs, pkg.Build.OutDir)
	}
	for _, script := range pkg.Scripts {
		m.OutputDirs = append(m.OutputDirs, scriptOutDirs(script)...)
	}
	m.OutputDirs = append(m.OutputDirs, tsconfigOutDir(root)...)
	m.OutputDirs = append(m.OutputDirs, viteOutDir(root)...)
	return nil
}

// --- Cargo.toml ---

type cargoFile struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Dependencies    map[string]any `toml:"dependencies"`
	DevDependencies map[string]any `toml:"dev-dependencies"`
	Bin             []struct {
		Name string `toml:"name"`
		Path string `toml:"path"`
	} `toml:"bin"`
	Profile map[string]map[string]any `toml:"profile"`
}

func loadCargo(m *Manifest, root string, data []byte) error {
	var cargo cargoFile
	if err := toml.Unmarshal(data, &cargo); err != nil {
		return err
	}
	m.Name = cargo.Package.Name
	for name, v := range cargo.Dependencies {
		m.Dependencies[name] = tomlVersion(v)
	}
	for name, v := range cargo.DevDependencies {
		m.DevDependencies[name] = tomlVersion(v)
	}
	for _, b := range cargo.Bin {
		entry := b.Path
		if entry == "" {
			entry = filepath.ToSlash(filepath.Join("src", "bin", b.Name+".rs"))
		}
		m.Bin[b.Name] = entry
	}
	if len(m.Bin) == 0 && m.Name != "" {
		if _, err := os.Stat(filepath.Join(root, "src", "main.rs")); err == nil {
			m.Bin[m.Name] = "src/main.rs"
		}
	}
	for _, profile := range cargo.Profile {
		if dir, ok := profile["target-dir"].(string); ok {
			m.OutputDirs = append(m.OutputDirs, dir)
		}
	}
	m.OutputDirs = append(m.OutputDirs, "target")
	return nil
}

// tomlVersion accepts both dep = "1.0" and dep = { version = "1.0" }.
func tomlVersion(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case map[string]any:
		if s, ok := v["version"].(string); ok {
			return s
		}
		if _, ok := v["path"]; ok {
			return "path"
		}
		if _, ok := v["git"]; ok {
			return "git"
		}
	}
	return "*"
}

// --- pyproject.toml ---

type pyProject struct {
	Project struct {
		Name                 string              `toml:"name"`
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
		Scripts              map[string]string   `toml:"scripts"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Name            string            `toml:"name"`
			Dependencies    map[string]any    `toml:"dependencies"`
			DevDependencies map[string]any    `toml:"dev-dependencies"`
			Scripts         map[string]string `toml:"scripts"`
			Build           struct {
				TargetDir string `toml:"target-dir"`
			} `toml:"build"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

func loadPyProject(m *Manifest, _ string, data []byte) error {
	var py pyProject
	if err := toml.Unmarshal(data, &py); err != nil {
		return err
	}
	m.Name = py.Project.Name
	if m.Name == "" {
		m.Name = py.Tool.Poetry.Name
	}
	for _, req := range py.Project.Dependencies {
		name, version := splitRequirement(req)
		m.Dependencies[name] = version
	}
	for _, group := range py.Project.OptionalDependencies {
		for _, req := range group {
			name, version := splitRequirement(req)
			m.DevDependencies[name] = version
		}
	}
	for name, v := range py.Tool.Poetry.Dependencies {
		if name == "python" {
			continue
		}
		m.Dependencies[name] = tomlVersion(v)
	}
	for name, v := range py.Tool.Poetry.DevDependencies {
		m.DevDependencies[name] = tomlVersion(v)
	}
	// Console scripts are installed executables.
	copyInto(m.Bin, py.Project.Scripts)
	copyInto(m.Bin, py.Tool.Poetry.Scripts)
	if dir := py.Tool.Poetry.Build.TargetDir; dir != "" {
		m.OutputDirs = append(m.OutputDirs, dir)
	}
	return nil
}

// splitRequirement splits a PEP 508 requirement such as "requests>=2.31"
// into its name and version specifier.
func splitRequirement(req string) (name, version string) {
	req = strings.TrimSpace(req)
	end := strings.IndexAny(req, "<>=!~;[ (@")
	if end < 0 {
		return req, "*"
	}
	name = req[:end]
	version = strings.TrimSpace(req[end:])
	if i := strings.IndexByte(version, ';'); i >= 0 {
		version = strings.TrimSpace(version[:i])
	}
	if version == "" || strings.HasPrefix(version, "[") {
		version = "*"
	}
	return name, version
}

// --- go.mod ---

func loadGoMod(m *Manifest, root string, data []byte) error {
	mod, err := modfile.Parse(filepath.Join(root, "go.mod"), data, nil)
	if err != nil {
		return err
	}
	if mod.Module != nil {
		m.Name = path.Base(mod.Module.Mod.Path)
	}
	for _, req := range mod.Require {
		if req.Indirect {
			continue
		}
		m.Dependencies[req.Mod.Path] = req.Mod.Version
	}

	// Each cmd/<name> directory builds one executable.
	entries, err := os.ReadDir(filepath.Join(root, "cmd"))
	if err == nil {
		for _, e := range entries {
			if e.IsDir() {
				m.Bin[e.Name()] = "cmd/" + e.Name()
			}
		}
	}
	return nil
}

// --- helpers ---

func copyInto(dst, src map[string]string) {
	for k, v := range src {
		dst[k] = v
	}
}

func dedupe(dirs []string) []string {
	seen := make(map[string]bool, len(dirs))
	out := dirs[:0]
	for _, d := range dirs {
		d = strings.Trim(filepath.ToSlash(filepath.Clean(d)), "/")
		if d == "" || d == "." || strings.HasPrefix(d, "..") || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
