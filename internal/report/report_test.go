package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codellm-devkit/codeanalyzer-py/pkg/schema"
)

func TestGlossary(t *testing.T) {
	kw, bi := Glossary([]byte("async def fetch(items):\n    for i in range(len(items)):\n        print(i)\n# printing\n"))

	var kws, bis []string
	for _, e := range kw {
		kws = append(kws, e.Word)
	}
	for _, e := range bi {
		bis = append(bis, e.Word)
	}
	assert.Equal(t, []string{"in", "async", "def", "for"}, kws)
	assert.Equal(t, []string{"len", "print", "range"}, bis)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, Report{
		StyleFindings:    []schema.Finding{{Category: schema.CategoryStyle, Message: "x.py:3:1: E302 expected 2 blank lines"}},
		RefactorFindings: []schema.Finding{{Category: schema.CategoryRefactor, Message: "Unused variables: y"}},
		Callers:          []string{"f", "g"},
		Edges: []schema.CallEdge{
			{Caller: "f", Callee: "f", Count: 1},
			{Caller: "f", Callee: "print", Count: 2},
		},
		Declarations: []schema.Declaration{
			{QualifiedName: "g", Kind: schema.KindFunction, Line: 9},
			{QualifiedName: "f", Kind: schema.KindFunction, Line: 2},
			{QualifiedName: "print", Kind: schema.KindExternal, Line: 1},
		},
		Keywords: []Entry{{"def", "defines a function"}},
		Builtins: []Entry{{"print", "writes to standard output"}},
	})
	require.NoError(t, err)

	want := `Style check (flake8):
x.py:3:1: E302 expected 2 blank lines

Refactoring suggestions:
Unused variables: y

Call relationships (with counts):
f: f, print (x2)
g: no calls

Definition positions (line):
print: 1
f: 2
g: 9

Keywords and builtins in the code:
def: defines a function
print: writes to standard output
`
	assert.Equal(t, want, buf.String())
}
