package types

// CodeSmell is one flagged structural smell.
type CodeSmell struct {
	Kind     string `json:"kind"`
	Location string `json:"location"`
	Detail   string `json:"detail"`
}

// HeuristicFlag is one security or performance finding.
type HeuristicFlag struct {
	Kind     string `json:"kind"`
	Location string `json:"location"`
}

// PatternMatches records which architectural patterns were recognised.
type PatternMatches struct {
	MVC            bool `json:"mvc"`
	ComponentBased bool `json:"componentBased"`
	Layered        bool `json:"layered"`
}

// MaintainabilityBreakdown holds the four sub-scores of the maintainability
// score.
type MaintainabilityBreakdown struct {
	Complexity    float64 `json:"complexity"`
	Documentation float64 `json:"documentation"`
	Testability   float64 `json:"testability"`
	Modularity    float64 `json:"modularity"`
}

// HolisticInsights are secondary metrics derived only from extracted facts.
type HolisticInsights struct {
	AverageComplexity    float64                  `json:"averageComplexity"`
	CodeSmells           []CodeSmell              `json:"codeSmells"`
	TestCoverageEstimate float64                  `json:"testCoverageEstimate"`
	Patterns             PatternMatches           `json:"patterns"`
	SecurityFlags        []HeuristicFlag          `json:"securityFlags"`
	SecurityScore        float64                  `json:"securityScore"`
	PerformanceFlags     []HeuristicFlag          `json:"performanceFlags"`
	PerformanceScore     float64                  `json:"performanceScore"`
	Maintainability      MaintainabilityBreakdown `json:"maintainabilityBreakdown"`
	MaintainabilityScore float64                  `json:"maintainabilityScore"`
}

// Archetype names returned in ClassificationVerdict.CandidateName.
const (
	ArchetypeCLI     = "cli"
	ArchetypeAPI     = "api"
	ArchetypeWebApp  = "webapp"
	ArchetypeGeneric = "generic"
)

// ClassificationVerdict is the selected workflow archetype plus the
// evidence and reasoning used to pick it.
type ClassificationVerdict struct {
	CandidateName string         `json:"candidateName"`
	ReasonTrail   []string       `json:"reasonTrail"`
	Evidence      map[string]any `json:"evidence"`
}
