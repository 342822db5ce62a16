// Package pyast parses Python source with tree-sitter and offers the small
// set of node helpers the analysis passes share.
package pyast

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// ErrSyntax is returned when the source contains a syntax error.
var ErrSyntax = errors.New("python syntax error")

// Tree is a parsed module. Nodes are valid until Close.
type Tree struct {
	src  []byte
	tree *sitter.Tree
	Root *sitter.Node
}

// Parse parses code. A tree with any error or missing node is rejected
// with an error wrapping ErrSyntax.
func Parse(ctx context.Context, code []byte) (*Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, code)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	root := tree.RootNode()
	if root.HasError() {
		line := firstErrorLine(root)
		tree.Close()
		return nil, fmt.Errorf("%w at line %d", ErrSyntax, line)
	}
	return &Tree{src: code, tree: tree, Root: root}, nil
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	if t != nil && t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// Source returns the parsed bytes.
func (t *Tree) Source() []byte { return t.src }

// Text returns the source text of n.
func (t *Tree) Text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(t.src)
}

// Line returns the 1-based start line of n.
func Line(n *sitter.Node) int {
	if n == nil {
		return 0
	}
	return int(n.StartPoint().Row) + 1
}

func firstErrorLine(root *sitter.Node) int {
	line := Line(root)
	found := false
	Walk(root, func(n *sitter.Node) bool {
		if found {
			return false
		}
		if n.Type() == "ERROR" || n.IsMissing() {
			line = Line(n)
			found = true
			return false
		}
		return n.HasError()
	})
	return line
}

// Walk visits n and its descendants in source order. Returning false from
// fn skips the children of the current node.
func Walk(n *sitter.Node, fn func(*sitter.Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		Walk(n.Child(i), fn)
	}
}

// Children returns the named children of n.
func Children(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Statements returns the statements of a block, comments excluded.
func Statements(block *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for _, c := range Children(block) {
		if c.Type() == "comment" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Unwrap returns the definition inside a decorated_definition, or n itself.
func Unwrap(n *sitter.Node) *sitter.Node {
	if n != nil && n.Type() == "decorated_definition" {
		if def := n.ChildByFieldName("definition"); def != nil {
			return def
		}
	}
	return n
}

// Decorators returns the decorator nodes of a decorated_definition.
func Decorators(n *sitter.Node) []*sitter.Node {
	if n == nil || n.Type() != "decorated_definition" {
		return nil
	}
	var out []*sitter.Node
	for _, c := range Children(n) {
		if c.Type() == "decorator" {
			out = append(out, c)
		}
	}
	return out
}

// IsAsync reports whether a function_definition is declared with async def.
func IsAsync(fn *sitter.Node) bool {
	for i := 0; i < int(fn.ChildCount()); i++ {
		c := fn.Child(i)
		if c == nil {
			continue
		}
		switch c.Type() {
		case "async":
			return true
		case "def":
			return false
		}
	}
	return false
}

// ContainsYield reports whether a yield expression appears anywhere under n.
func ContainsYield(n *sitter.Node) bool {
	found := false
	Walk(n, func(c *sitter.Node) bool {
		if found {
			return false
		}
		if c.Type() == "yield" && c.IsNamed() {
			found = true
			return false
		}
		return true
	})
	return found
}

// Body returns the statement block of a compound statement. For if and
// elif it is the consequence block.
func Body(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "if_statement", "elif_clause":
		return n.ChildByFieldName("consequence")
	case "match_statement":
		return nil
	}
	if b := n.ChildByFieldName("body"); b != nil && b.Type() == "block" {
		return b
	}
	return nil
}

// Name returns the text of the name field of a definition.
func (t *Tree) Name(def *sitter.Node) string {
	return t.Text(def.ChildByFieldName("name"))
}
