// Package schema definisce i tipi CLDK per l'output dell'analyzer Python.
package schema

// ============================================================================
// Struttura Principale
// ============================================================================

// Analysis è la struttura root dell'output dell'analyzer.
type Analysis struct {
	Metadata         Metadata          `json:"metadata"`
	Declarations     []Declaration     `json:"declarations"`
	Calls            []CallEdge        `json:"calls"`
	Tags             map[string]TagSet `json:"tags"`
	Entry            []string          `json:"entry_symbols"`
	Leaf             []string          `json:"leaf_symbols"`
	StyleFindings    []Finding         `json:"style_findings"`
	RefactorFindings []Finding         `json:"refactor_findings"`
	Hotspots         map[string]Rect   `json:"hotspots,omitempty"`
	Artifacts        map[string]string `json:"artifacts,omitempty"` // nome artifact → location
	Status           string            `json:"status"`
	Issues           []Issue           `json:"issues"`
}

// Metadata contiene informazioni sull'analisi eseguita.
type Metadata struct {
	Analyzer           string `json:"analyzer"`
	Version            string `json:"version"`
	Language           string `json:"language"`
	Timestamp          string `json:"timestamp"`
	SourcePath         string `json:"source_path"`
	Module             string `json:"module"`
	AnalysisDurationMs int64  `json:"analysis_duration_ms"`
}

// Issue rappresenta un problema non fatale rilevato durante l'analisi.
type Issue struct {
	Severity string `json:"severity"` // error|warning|info
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// Codici degli issue.
const (
	IssueSyntax          = "PARSE_SYNTAX"
	IssueLinterMissing   = "LINTER_UNAVAILABLE"
	IssueRendererMissing = "RENDERER_UNAVAILABLE"
	IssueRenderFailed    = "RENDER_FAILED"
	IssueArtifactWrite   = "ARTIFACT_WRITE"
)
