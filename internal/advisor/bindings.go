package advisor

import (
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codellm-devkit/codeanalyzer-py/internal/pyast"
)

type mode int

const (
	load mode = iota
	store
)

// bindings collects plain names by how they are used.
type bindings struct {
	tree   *pyast.Tree
	loaded map[string]struct{}
	stored map[string]struct{}
}

// UnusedBindings returns the names assigned somewhere in the module but
// never read anywhere in it, builtins excluded, sorted. Scopes are not
// distinguished.
func UnusedBindings(tree *pyast.Tree) []string {
	b := &bindings{
		tree:   tree,
		loaded: make(map[string]struct{}),
		stored: make(map[string]struct{}),
	}
	b.visit(tree.Root, load)

	var out []string
	for name := range b.stored {
		if _, ok := b.loaded[name]; ok {
			continue
		}
		if _, ok := builtins[name]; ok {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (b *bindings) field(n *sitter.Node, name string, m mode) {
	if c := n.ChildByFieldName(name); c != nil {
		b.visit(c, m)
	}
}

func (b *bindings) visit(n *sitter.Node, m mode) {
	switch n.Type() {
	case "identifier":
		name := b.tree.Text(n)
		if m == store {
			b.stored[name] = struct{}{}
		} else {
			b.loaded[name] = struct{}{}
		}
		return

	case "import_statement", "import_from_statement", "future_import_statement",
		"global_statement", "nonlocal_statement":
		return

	case "assignment":
		b.field(n, "left", store)
		b.field(n, "type", load)
		b.field(n, "right", load)
		return
	case "augmented_assignment":
		b.field(n, "left", store)
		b.field(n, "right", load)
		return
	case "for_statement":
		b.field(n, "left", store)
		b.field(n, "right", load)
		b.field(n, "body", load)
		b.field(n, "alternative", load)
		return
	case "for_in_clause":
		b.field(n, "left", store)
		b.field(n, "right", load)
		return
	case "named_expression":
		b.field(n, "name", store)
		b.field(n, "value", load)
		return
	case "as_pattern":
		if n.NamedChildCount() > 0 {
			b.visit(n.NamedChild(0), load)
		}
		if t := n.ChildByFieldName("alias"); t != nil {
			b.visit(t, store)
		}
		return
	case "except_clause", "except_group_clause":
		b.visitExcept(n)
		return

	case "attribute":
		b.field(n, "object", load)
		return
	case "subscript":
		for _, c := range pyast.Children(n) {
			b.visit(c, load)
		}
		return
	case "keyword_argument":
		b.field(n, "value", load)
		return

	case "function_definition":
		b.visitParameters(n.ChildByFieldName("parameters"))
		b.field(n, "return_type", load)
		b.field(n, "body", load)
		return
	case "lambda":
		b.visitParameters(n.ChildByFieldName("parameters"))
		b.field(n, "body", load)
		return
	case "class_definition":
		b.field(n, "superclasses", load)
		b.field(n, "body", load)
		return
	}

	for _, c := range pyast.Children(n) {
		b.visit(c, m)
	}
}

// visitExcept reads the exception expression; the "as" name is not a
// plain binding.
func (b *bindings) visitExcept(n *sitter.Node) {
	afterAs := false
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		if !c.IsNamed() {
			afterAs = c.Type() == "as"
			continue
		}
		if afterAs {
			afterAs = false
			continue
		}
		if c.Type() == "as_pattern" {
			if c.NamedChildCount() > 0 {
				b.visit(c.NamedChild(0), load)
			}
			continue
		}
		b.visit(c, load)
	}
}

// visitParameters reads defaults and annotations; parameter names are not
// plain bindings.
func (b *bindings) visitParameters(params *sitter.Node) {
	for _, p := range pyast.Children(params) {
		switch p.Type() {
		case "default_parameter":
			b.field(p, "value", load)
		case "typed_parameter":
			b.field(p, "type", load)
		case "typed_default_parameter":
			b.field(p, "type", load)
			b.field(p, "value", load)
		}
	}
}
