package pyast

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	code := []byte("@dec\nasync def f():\n    yield 1\n\ndef g():\n    # note\n    x = 1\n    return x\n")
	tree, err := Parse(context.Background(), code)
	require.NoError(t, err)
	defer tree.Close()

	var defs []*sitter.Node
	Walk(tree.Root, func(n *sitter.Node) bool {
		if n.Type() == "function_definition" {
			defs = append(defs, n)
		}
		return true
	})
	require.Len(t, defs, 2)

	assert.Equal(t, "f", tree.Name(defs[0]))
	assert.Equal(t, 2, Line(defs[0]))
	assert.True(t, IsAsync(defs[0]))
	assert.True(t, ContainsYield(defs[0]))

	assert.Equal(t, "g", tree.Name(defs[1]))
	assert.False(t, IsAsync(defs[1]))
	assert.False(t, ContainsYield(defs[1]))
	assert.Len(t, Statements(Body(defs[1])), 2)

	top := Children(tree.Root)
	require.Len(t, top, 2)
	assert.Equal(t, "decorated_definition", top[0].Type())
	assert.Equal(t, "function_definition", Unwrap(top[0]).Type())
	assert.Equal(t, defs[0].StartByte(), Unwrap(top[0]).StartByte())
	assert.Len(t, Decorators(top[0]), 1)
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse(context.Background(), []byte("def f(:\n    pass\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestParseEmpty(t *testing.T) {
	tree, err := Parse(context.Background(), []byte("\n"))
	require.NoError(t, err)
	defer tree.Close()
	assert.Empty(t, Children(tree.Root))
}
