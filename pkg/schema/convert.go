package schema

import (
	"strconv"
	"strings"
)

// ToCompact converte Analysis in CompactAnalysis per output LLM.
func ToCompact(full *Analysis) *CompactAnalysis {
	compact := &CompactAnalysis{
		Meta: &CompactMeta{
			Ver:  full.Metadata.Version,
			Lang: full.Metadata.Language,
			Mod:  full.Metadata.Module,
			Dur:  full.Metadata.AnalysisDurationMs,
		},
		Entry: full.Entry,
		Leaf:  full.Leaf,
		Iss:   convertIssues(full.Issues),
	}

	if len(full.Declarations) > 0 {
		compact.Decls = make(map[string]string, len(full.Declarations))
		for _, d := range full.Declarations {
			compact.Decls[d.QualifiedName] = string(d.Kind) + ":" + strconv.Itoa(d.Line)
		}
	}

	for _, e := range full.Calls {
		compact.Calls = append(compact.Calls, compactEdge(e))
	}

	if len(full.Tags) > 0 {
		compact.Tags = make(map[string]string, len(full.Tags))
		for name, set := range full.Tags {
			if len(set) == 0 {
				continue
			}
			parts := make([]string, 0, len(set))
			for _, t := range set.Sorted() {
				parts = append(parts, string(t))
			}
			compact.Tags[name] = strings.Join(parts, ",")
		}
	}

	for _, f := range full.StyleFindings {
		compact.Find = append(compact.Find, "S:"+f.Message)
	}
	for _, f := range full.RefactorFindings {
		compact.Find = append(compact.Find, "R:"+f.Message)
	}

	return compact
}

// compactEdge formatta un arco; il conteggio compare solo se > 1.
func compactEdge(e CallEdge) string {
	s := e.Caller + ">" + e.Callee
	if e.Count > 1 {
		s += "*" + strconv.Itoa(e.Count)
	}
	return s
}

// convertIssues converte gli Issue in CompactIssue.
func convertIssues(issues []Issue) []CompactIssue {
	if len(issues) == 0 {
		return []CompactIssue{}
	}
	result := make([]CompactIssue, 0, len(issues))
	for _, iss := range issues {
		result = append(result, CompactIssue{
			Sev: iss.Severity,
			Msg: iss.Message,
		})
	}
	return result
}
