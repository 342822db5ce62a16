package symbols

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codellm-devkit/codeanalyzer-py/internal/pyast"
	"github.com/codellm-devkit/codeanalyzer-py/pkg/schema"
)

// scope is the lexical context threaded through the walk.
type scope struct {
	class string // innermost enclosing class, "" at module level
}

// Qualify returns the table key of a function named name defined in class.
func Qualify(class, name string) (string, schema.Kind) {
	if class == "" {
		return name, schema.KindFunction
	}
	return class + "." + name, schema.KindMethod
}

type builder struct {
	tree  *pyast.Tree
	table *Table
}

// Build collects classes, methods and functions of the parsed module.
// A nil tree yields an empty table.
func Build(tree *pyast.Tree) *Table {
	b := &builder{tree: tree, table: NewTable()}
	if tree == nil {
		return b.table
	}
	b.visit(tree.Root, scope{})
	return b.table
}

func (b *builder) visit(n *sitter.Node, sc scope) {
	switch n.Type() {
	case "class_definition":
		b.visitClass(n)
		return
	case "function_definition":
		name := b.tree.Name(n)
		key, kind := Qualify(sc.class, name)
		b.table.Add(key, kind, pyast.Line(n))
	}
	for _, c := range pyast.Children(n) {
		b.visit(c, sc)
	}
}

// visitClass registers the class and its immediate methods before
// descending, so calls can be re-qualified against the full method set.
func (b *builder) visitClass(n *sitter.Node) {
	name := b.tree.Name(n)
	b.table.Add(name, schema.KindClass, pyast.Line(n))
	if _, ok := b.table.methods[name]; !ok {
		b.table.methods[name] = make(map[string]struct{})
	}

	body := n.ChildByFieldName("body")
	for _, stmt := range pyast.Statements(body) {
		def := pyast.Unwrap(stmt)
		if def.Type() != "function_definition" {
			continue
		}
		m := b.tree.Name(def)
		b.table.addMethod(name, m)
		b.table.Add(name+"."+m, schema.KindMethod, pyast.Line(def))
	}

	inner := scope{class: name}
	for _, c := range pyast.Children(body) {
		b.visit(c, inner)
	}
}
