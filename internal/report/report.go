// Package report writes the plain-text analysis report.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/codellm-devkit/codeanalyzer-py/pkg/schema"
)

// Report is everything the text report shows.
type Report struct {
	StyleFindings    []schema.Finding
	RefactorFindings []schema.Finding
	Callers          []string          // every caller, including those without calls
	Edges            []schema.CallEdge // sorted by caller, callee
	Declarations     []schema.Declaration
	Keywords         []Entry
	Builtins         []Entry
}

// Write renders r. Declarations are listed by line.
func Write(w io.Writer, r Report) error {
	bw := bufio.NewWriter(w)

	section(bw, "Style check (flake8):")
	for _, f := range r.StyleFindings {
		fmt.Fprintln(bw, f.Message)
	}
	bw.WriteString("\n")

	section(bw, "Refactoring suggestions:")
	for _, f := range r.RefactorFindings {
		fmt.Fprintln(bw, f.Message)
	}
	bw.WriteString("\n")

	section(bw, "Call relationships (with counts):")
	byCaller := make(map[string][]string)
	for _, e := range r.Edges {
		s := e.Callee
		if e.Count > 1 {
			s = fmt.Sprintf("%s (x%d)", e.Callee, e.Count)
		}
		byCaller[e.Caller] = append(byCaller[e.Caller], s)
	}
	for _, c := range r.Callers {
		callees := byCaller[c]
		if len(callees) == 0 {
			fmt.Fprintf(bw, "%s: no calls\n", c)
			continue
		}
		fmt.Fprintf(bw, "%s: %s\n", c, strings.Join(callees, ", "))
	}
	bw.WriteString("\n")

	section(bw, "Definition positions (line):")
	decls := append([]schema.Declaration(nil), r.Declarations...)
	schema.SortDeclarations(decls)
	for _, d := range decls {
		fmt.Fprintf(bw, "%s: %d\n", d.QualifiedName, d.Line)
	}
	bw.WriteString("\n")

	section(bw, "Keywords and builtins in the code:")
	for _, list := range [][]Entry{r.Keywords, r.Builtins} {
		for _, e := range list {
			fmt.Fprintf(bw, "%s: %s\n", e.Word, e.Meaning)
		}
	}
	return bw.Flush()
}

func section(w *bufio.Writer, title string) {
	w.WriteString(title)
	w.WriteString("\n")
}
