package geometry

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codellm-devkit/codeanalyzer-py/pkg/schema"
)

func TestExtractFile(t *testing.T) {
	m := ExtractFile(filepath.Join("testdata", "flowchart.svg"))
	assert.Equal(t, Map{
		"A":     {X: 23, Y: -78, W: 54, H: 36},
		"A.foo": {X: 110, Y: -78, W: 60, H: 36},
	}, m)

	name, ok := m.Hit(140, -60)
	require.True(t, ok)
	assert.Equal(t, "A.foo", name)
	_, ok = m.Hit(500, 500)
	assert.False(t, ok)
}

func TestExtractDegenerateInput(t *testing.T) {
	cases := map[string]string{
		"empty":     "",
		"not xml":   "digraph { a -> b }",
		"truncated": `<svg xmlns="http://www.w3.org/2000/svg"><g class="node"><title>a</title><ellipse cx="1"`,
		"no titles": `<svg xmlns="http://www.w3.org/2000/svg"><g class="node"><ellipse cx="1" cy="1" rx="1" ry="1"/></g></svg>`,
		"bad radii": `<svg><g class="node"><title>a</title><ellipse cx="1" cy="1" rx="x" ry="1"/></g></svg>`,
	}
	for name, doc := range cases {
		assert.Empty(t, Extract(strings.NewReader(doc)), name)
	}
	assert.Empty(t, ExtractFile(filepath.Join(t.TempDir(), "missing.svg")))
}

func TestExtractEllipseFallsBackToPolygon(t *testing.T) {
	doc := `<svg><g class="node"><title> n </title><ellipse cx="1"/><polygon points="1,2 5,2 5,8"/></g></svg>`
	assert.Equal(t, Map{"n": {X: 1, Y: 2, W: 4, H: 6}}, Extract(strings.NewReader(doc)))
}

func TestMapJSON(t *testing.T) {
	b, err := json.Marshal(Map{"f": schema.Rect{X: 1, Y: 2, W: 3, H: 4}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"bboxes":{"f":[1,2,3,4]}}`, string(b))

	var back Map
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, schema.Rect{X: 1, Y: 2, W: 3, H: 4}, back["f"])

	b, err = json.Marshal(Map(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"bboxes":{}}`, string(b))
}

func TestHitOverlappingBoxes(t *testing.T) {
	m := Map{
		"outer": {X: 0, Y: 0, W: 100, H: 100},
		"inner": {X: 10, Y: 10, W: 20, H: 20},
		"b":     {X: 50, Y: 50, W: 10, H: 10},
		"a":     {X: 50, Y: 50, W: 10, H: 10},
	}
	for i := 0; i < 20; i++ {
		name, ok := m.Hit(15, 15)
		require.True(t, ok)
		assert.Equal(t, "inner", name)

		name, _ = m.Hit(55, 55)
		assert.Equal(t, "a", name)

		name, _ = m.Hit(80, 80)
		assert.Equal(t, "outer", name)
	}
}
