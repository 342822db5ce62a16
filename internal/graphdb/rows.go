package graphdb

import (
	"strings"

	"github.com/codellm-devkit/codeanalyzer-py/pkg/schema"
)

// DeclRows costruisce le righe UNWIND per i nodi PyDecl.
func DeclRows(a *schema.Analysis) []map[string]any {
	entry := toSet(a.Entry)
	leaf := toSet(a.Leaf)
	rows := make([]map[string]any, 0, len(a.Declarations))
	for _, d := range a.Declarations {
		tags := []string{}
		for _, t := range a.Tags[d.QualifiedName].Sorted() {
			tags = append(tags, string(t))
		}
		rows = append(rows, map[string]any{
			"name":  d.QualifiedName,
			"kind":  string(d.Kind),
			"line":  int64(d.Line),
			"tags":  tags,
			"entry": entry[d.QualifiedName],
			"leaf":  leaf[d.QualifiedName],
		})
	}
	return rows
}

// MethodRows links each method to its declaring class.
func MethodRows(a *schema.Analysis) []map[string]any {
	classes := map[string]bool{}
	for _, d := range a.Declarations {
		if d.Kind == schema.KindClass {
			classes[d.QualifiedName] = true
		}
	}
	var rows []map[string]any
	for _, d := range a.Declarations {
		if d.Kind != schema.KindMethod {
			continue
		}
		i := strings.LastIndexByte(d.QualifiedName, '.')
		if i < 0 || !classes[d.QualifiedName[:i]] {
			continue
		}
		class := d.QualifiedName[:i]
		rows = append(rows, map[string]any{"class": class, "method": d.QualifiedName})
	}
	return rows
}

// CallRows converte gli archi aggregati in righe UNWIND.
func CallRows(a *schema.Analysis) []map[string]any {
	rows := make([]map[string]any, 0, len(a.Calls))
	for _, c := range a.Calls {
		rows = append(rows, map[string]any{
			"caller": c.Caller,
			"callee": c.Callee,
			"count":  int64(c.Count),
		})
	}
	return rows
}

// Chunk splits rows into slices of at most size elements.
func Chunk(rows []map[string]any, size int) [][]map[string]any {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var out [][]map[string]any
	for len(rows) > 0 {
		n := min(size, len(rows))
		out = append(out, rows[:n])
		rows = rows[n:]
	}
	return out
}

func toSet(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}
