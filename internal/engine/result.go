package engine

import (
	"time"

	"github.com/codellm-devkit/codeanalyzer-py/internal/geometry"
	"github.com/codellm-devkit/codeanalyzer-py/internal/layout"
	"github.com/codellm-devkit/codeanalyzer-py/internal/report"
	"github.com/codellm-devkit/codeanalyzer-py/internal/style"
	"github.com/codellm-devkit/codeanalyzer-py/pkg/schema"
)

// Status strings reported for the rendering stage.
const (
	StatusRendered      = "Flowchart written (PNG/SVG/map)."
	StatusRenderFailed  = "Flowchart rendering failed."
	StatusNoRenderer    = "Graphviz dot not found; PNG/SVG not written."
	StatusRenderSkipped = "Flowchart rendering disabled."
	StatusSyntaxError   = "Syntax error; call graph and flowchart skipped."
)

// Result is the outcome of one analysis run. A fresh Result is built for
// every call to Analyze.
type Result struct {
	SourcePath string
	Module     string

	Declarations []schema.Declaration
	Callers      []string
	Edges        []schema.CallEdge
	Tags         map[string]schema.TagSet

	StyleFindings    []schema.Finding
	RefactorFindings []schema.Finding
	Keywords         []report.Entry
	Builtins         []report.Entry

	Styled   *style.Styled
	DOT      []byte
	Rendered *layout.Rendered
	Hotspots geometry.Map

	Artifacts map[string]string
	Status    string
	Issues    []schema.Issue

	Started  time.Time
	Duration time.Duration
}

func (r *Result) issue(severity, code, msg string) {
	r.Issues = append(r.Issues, schema.Issue{Severity: severity, Code: code, Message: msg})
}

// Report returns the data of the plain-text report.
func (r *Result) Report() report.Report {
	return report.Report{
		StyleFindings:    r.StyleFindings,
		RefactorFindings: r.RefactorFindings,
		Callers:          r.Callers,
		Edges:            r.Edges,
		Declarations:     r.Declarations,
		Keywords:         r.Keywords,
		Builtins:         r.Builtins,
	}
}

// Schema converte il risultato nel documento JSON.
func (r *Result) Schema(version string) *schema.Analysis {
	a := &schema.Analysis{
		Metadata: schema.Metadata{
			Analyzer:           "codeanalyzer-py",
			Version:            version,
			Language:           "python",
			Timestamp:          r.Started.UTC().Format(time.RFC3339),
			SourcePath:         r.SourcePath,
			Module:             r.Module,
			AnalysisDurationMs: r.Duration.Milliseconds(),
		},
		Declarations:     nonNil(r.Declarations),
		Calls:            nonNil(r.Edges),
		Tags:             r.Tags,
		StyleFindings:    nonNil(r.StyleFindings),
		RefactorFindings: nonNil(r.RefactorFindings),
		Artifacts:        r.Artifacts,
		Status:           r.Status,
		Issues:           nonNil(r.Issues),
	}
	if a.Tags == nil {
		a.Tags = map[string]schema.TagSet{}
	}
	if r.Styled != nil {
		a.Entry = r.Styled.Entry
		a.Leaf = r.Styled.Leaf
	}
	a.Entry = nonNil(a.Entry)
	a.Leaf = nonNil(a.Leaf)
	if len(r.Hotspots) > 0 {
		a.Hotspots = map[string]schema.Rect(r.Hotspots)
	}
	return a
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
