// Package symbols builds the declaration table of a Python module.
package symbols

import (
	"sort"

	"github.com/codellm-devkit/codeanalyzer-py/pkg/schema"
)

// Table maps qualified names to declarations. The first registration of a
// name wins; later ones are ignored.
type Table struct {
	decls   map[string]schema.Declaration
	methods map[string]map[string]struct{}
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		decls:   make(map[string]schema.Declaration),
		methods: make(map[string]map[string]struct{}),
	}
}

// Add registers name unless it is already present. It reports whether the
// entry was added.
func (t *Table) Add(name string, kind schema.Kind, line int) bool {
	if _, ok := t.decls[name]; ok {
		return false
	}
	t.decls[name] = schema.Declaration{QualifiedName: name, Kind: kind, Line: line}
	return true
}

// Lookup returns the declaration registered under name.
func (t *Table) Lookup(name string) (schema.Declaration, bool) {
	d, ok := t.decls[name]
	return d, ok
}

// Has reports whether name is declared.
func (t *Table) Has(name string) bool {
	_, ok := t.decls[name]
	return ok
}

// Len returns the number of declarations.
func (t *Table) Len() int { return len(t.decls) }

// KnownMethods returns the unqualified names of the methods found directly
// in the body of class, sorted.
func (t *Table) KnownMethods(class string) []string {
	set := t.methods[class]
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// IsMethodOf reports whether name is an immediate method of class.
func (t *Table) IsMethodOf(class, name string) bool {
	_, ok := t.methods[class][name]
	return ok
}

func (t *Table) addMethod(class, name string) {
	set, ok := t.methods[class]
	if !ok {
		set = make(map[string]struct{})
		t.methods[class] = set
	}
	set[name] = struct{}{}
}

// Declarations returns every entry sorted by line, then name.
func (t *Table) Declarations() []schema.Declaration {
	out := make([]schema.Declaration, 0, len(t.decls))
	for _, d := range t.decls {
		out = append(out, d)
	}
	schema.SortDeclarations(out)
	return out
}
