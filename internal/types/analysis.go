package types

import "time"

// FileType is the semantic tag assigned to a discovered file.
type FileType string

const (
	FileTypeTypeScript FileType = "typescript"
	FileTypeJavaScript FileType = "javascript"
	FileTypeTSX        FileType = "tsx"
	FileTypeJSX        FileType = "jsx"
	FileTypeGo         FileType = "go"
	FileTypePython     FileType = "python"
	FileTypeRust       FileType = "rust"
	FileTypeJava       FileType = "java"
	FileTypeCSharp     FileType = "csharp"
	FileTypeCpp        FileType = "cpp"
	FileTypePHP        FileType = "php"
	FileTypeZig        FileType = "zig"
	FileTypeJSONConfig FileType = "json-config"
	FileTypeYAMLConfig FileType = "yaml-config"
	FileTypeTOMLConfig FileType = "toml-config"
	FileTypeMarkup     FileType = "markup"
	FileTypeStylesheet FileType = "stylesheet"
	FileTypeMarkdown   FileType = "markdown"
	FileTypeShell      FileType = "shell"
	FileTypeDockerfile FileType = "dockerfile"
	FileTypeUnknown    FileType = "unknown"
)

// FunctionFact describes one function, method or function-valued binding.
type FunctionFact struct {
	Name       string   `json:"name"`
	ParamNames []string `json:"paramNames"`
	IsAsync    bool     `json:"isAsync"`
	IsExported bool     `json:"isExported"`
	StartLine  int      `json:"startLine"`
	EndLine    int      `json:"endLine"`
}

// ClassFact describes a class-like declaration and its methods.
type ClassFact struct {
	Name           string         `json:"name"`
	Methods        []FunctionFact `json:"methods"`
	SuperclassName string         `json:"superclassName,omitempty"`
	IsExported     bool           `json:"isExported"`
}

// ComponentFact is a UI component, keyed by the function that renders markup.
type ComponentFact struct {
	Name         string   `json:"name"`
	Props        []string `json:"props"`
	Hooks        []string `json:"hooks"`
	IsExported   bool     `json:"isExported"`
	FrameworkTag string   `json:"frameworkTag"`
}

// RouteFact is an HTTP route registration such as router.post('/login', h).
type RouteFact struct {
	HTTPMethod  string   `json:"httpMethod"`
	PathPattern string   `json:"pathPattern"`
	HandlerName string   `json:"handlerName,omitempty"`
	Middleware  []string `json:"middleware"`
	ParamNames  []string `json:"paramNames"`
}

// UnknownTable is the table name recorded for every detected query.
// Table names are not resolved from the query text.
const UnknownTable = "unknown"

// QueryFact is a raw database query call.
type QueryFact struct {
	OperationKind      string `json:"operationKind"`
	TableNameOrUnknown string `json:"tableNameOrUnknown"`
	RawQueryText       string `json:"rawQueryText"`
	LocationLabel      string `json:"locationLabel"`
}

// FileRecord is the per-file fact bundle. A record whose parse failed keeps
// its structural metadata and has empty fact slices.
type FileRecord struct {
	Path         string    `json:"path"`
	RelativePath string    `json:"relativePath"`
	FileType     FileType  `json:"fileType"`
	Language     string    `json:"language,omitempty"`
	SizeBytes    int64     `json:"sizeBytes"`
	LastModified time.Time `json:"lastModified"`
	ContentHash  uint64    `json:"contentHash"`
	ParseFailed  bool      `json:"parseFailed,omitempty"`

	RawContent string `json:"-"`

	Dependencies    []string        `json:"dependencies"`
	ExportedSymbols []string        `json:"exportedSymbols"`
	Functions       []FunctionFact  `json:"functions"`
	Classes         []ClassFact     `json:"classes"`
	UIComponents    []ComponentFact `json:"uiComponents"`
	Routes          []RouteFact     `json:"routes"`
	DatabaseQueries []QueryFact     `json:"databaseQueries"`
}

// HasExport reports whether name was recorded as exported.
func (f *FileRecord) HasExport(name string) bool {
	for _, s := range f.ExportedSymbols {
		if s == name {
			return true
		}
	}
	return false
}

// AddExport records name once; exportedSymbols has set semantics.
func (f *FileRecord) AddExport(name string) {
	if name == "" || f.HasExport(name) {
		return
	}
	f.ExportedSymbols = append(f.ExportedSymbols, name)
}

// ResetFacts empties every fact slice, leaving structural metadata intact.
func (f *FileRecord) ResetFacts() {
	f.Dependencies = nil
	f.ExportedSymbols = nil
	f.Functions = nil
	f.Classes = nil
	f.UIComponents = nil
	f.Routes = nil
	f.DatabaseQueries = nil
}

// DatabaseInfo is one detected database technology.
type DatabaseInfo struct {
	TypeTag    string   `json:"typeTag"`
	TableNames []string `json:"tableNames"`
}

// DeploymentTarget is one detected deployment platform.
type DeploymentTarget struct {
	PlatformTag string `json:"platformTag"`
}

// ArchitectureSummary is a projection over ProjectAnalysis.Files.
type ArchitectureSummary struct {
	FrontendFilePaths []string `json:"frontendFilePaths"`
	BackendFilePaths  []string `json:"backendFilePaths"`
	DatabaseFilePaths []string `json:"databaseFilePaths"`
	APISignatures     []string `json:"apiSignatures"`
}

// ProjectAnalysis is the aggregate result of one analysis run. It is
// read-only once Analyze returns.
type ProjectAnalysis struct {
	ProjectName  string `json:"projectName"`
	RootPath     string `json:"rootPath"`
	ManifestKind string `json:"manifestKind,omitempty"`

	Files []*FileRecord `json:"files"`

	DeclaredDependencies    map[string]string `json:"declaredDependencies"`
	DeclaredDevDependencies map[string]string `json:"declaredDevDependencies"`
	Scripts                 map[string]string `json:"scripts"`
	BinEntries              map[string]string `json:"binEntries,omitempty"`
	MarkerFiles             []string          `json:"markerFiles,omitempty"`

	DetectedFrameworks        []string           `json:"detectedFrameworks"`
	DetectedDatabases         []DatabaseInfo     `json:"detectedDatabases"`
	DetectedDeploymentTargets []DeploymentTarget `json:"detectedDeploymentTargets"`

	ArchitectureSummary ArchitectureSummary `json:"architectureSummary"`
	HolisticInsights    *HolisticInsights   `json:"holisticInsights,omitempty"`

	Warnings    []string  `json:"warnings,omitempty"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// HasFramework reports whether tag was detected.
func (a *ProjectAnalysis) HasFramework(tag string) bool {
	for _, f := range a.DetectedFrameworks {
		if f == tag {
			return true
		}
	}
	return false
}

// HasDependency reports whether name is declared as a dependency or
// devDependency in the project manifest.
func (a *ProjectAnalysis) HasDependency(name string) bool {
	if _, ok := a.DeclaredDependencies[name]; ok {
		return true
	}
	_, ok := a.DeclaredDevDependencies[name]
	return ok
}

// Counts totals the facts across all files.
func (a *ProjectAnalysis) Counts() FactCounts {
	var c FactCounts
	c.Files = len(a.Files)
	for _, f := range a.Files {
		c.Functions += len(f.Functions)
		c.Classes += len(f.Classes)
		c.Components += len(f.UIComponents)
		c.Routes += len(f.Routes)
		c.Queries += len(f.DatabaseQueries)
		if f.ParseFailed {
			c.ParseFailures++
		}
	}
	return c
}

// FactCounts is a summary of fact totals used for display and heuristics.
type FactCounts struct {
	Files         int `json:"files"`
	Functions     int `json:"functions"`
	Classes       int `json:"classes"`
	Components    int `json:"components"`
	Routes        int `json:"routes"`
	Queries       int `json:"queries"`
	ParseFailures int `json:"parseFailures"`
}
