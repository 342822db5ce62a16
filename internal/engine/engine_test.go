package engine

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codellm-devkit/codeanalyzer-py/internal/advisor"
	"github.com/codellm-devkit/codeanalyzer-py/internal/layout"
	"github.com/codellm-devkit/codeanalyzer-py/internal/lint"
	"github.com/codellm-devkit/codeanalyzer-py/internal/loader"
	"github.com/codellm-devkit/codeanalyzer-py/internal/output"
	"github.com/codellm-devkit/codeanalyzer-py/internal/style"
	"github.com/codellm-devkit/codeanalyzer-py/pkg/schema"
)

const sample = `class A:
    def foo(self):
        self.bar()

    def bar(self):
        pass


def f(n):
    if n:
        f(n - 1)
    print(n)
`

const svg = `<svg xmlns="http://www.w3.org/2000/svg"><g id="graph0" class="graph"><g id="A" class="node"><title>A</title><ellipse cx="50" cy="-60" rx="27" ry="18"/></g></g></svg>`

type memStore struct {
	mu    sync.Mutex
	items map[string][]byte
	fail  map[string]bool
}

func newMemStore() *memStore {
	return &memStore{items: map[string][]byte{}, fail: map[string]bool{}}
}

func (m *memStore) Put(_ context.Context, name string, content []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[name] {
		return "", errors.New("disk full")
	}
	m.items[name] = append([]byte(nil), content...)
	return "mem://" + name, nil
}

func (m *memStore) Remove(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, name)
	return nil
}

func script(t *testing.T, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+body), 0o755))
	return p
}

func fakeDot(t *testing.T) string {
	return script(t, "dot", "cat > /dev/null\n"+
		"case \"$1\" in\n"+
		"-Tpng) printf 'PNGDATA' ;;\n"+
		"-Tsvg) printf '%s' '"+svg+"' ;;\n"+
		"esac\n")
}

func fakeFlake8(t *testing.T) string {
	return script(t, "flake8", "echo \"$1:12:1: E302 expected 2 blank lines, found 1\"\nexit 1\n")
}

func TestAnalyzeFullPipeline(t *testing.T) {
	store := newMemStore()
	e := New(Options{
		Linter:   lint.NewRunner(fakeFlake8(t), nil),
		Renderer: layout.NewRenderer(layout.Config{Binary: fakeDot(t)}),
		Store:    store,
		Version:  "test",
	})

	res := e.Analyze(context.Background(), loader.NewSource("/virtual/sample.py", []byte(sample)))

	assert.Equal(t, "sample", res.Module)
	assert.Equal(t, []schema.CallEdge{
		{Caller: "A.foo", Callee: "A.bar", Count: 1},
		{Caller: "f", Callee: "f", Count: 1},
		{Caller: "f", Callee: "print", Count: 1},
	}, res.Edges)
	assert.True(t, res.Tags["f"].Has(schema.TagRecursive))
	assert.Equal(t, []string{"A.foo"}, res.Styled.Entry)
	assert.Equal(t, []string{"A.bar"}, res.Styled.Leaf)

	require.Len(t, res.StyleFindings, 1)
	assert.Equal(t, "E302", res.StyleFindings[0].Code)
	assert.Equal(t, 12, res.StyleFindings[0].Line)

	assert.Equal(t, StatusRendered, res.Status)
	assert.Empty(t, res.Issues)
	require.Contains(t, res.Hotspots, "A")
	assert.Equal(t, schema.Rect{X: 23, Y: -78, W: 54, H: 36}, res.Hotspots["A"])

	names := output.ArtifactNames("sample")
	for _, n := range []string{names.DOT, names.PNG, names.SVG, names.Map, names.Report, names.Analysis} {
		assert.Contains(t, store.items, n)
		assert.Equal(t, "mem://"+n, res.Artifacts[n])
	}
	assert.Equal(t, "PNGDATA", string(store.items[names.PNG]))
	assert.Contains(t, string(store.items[names.Map]), `"bboxes"`)
	assert.Contains(t, string(store.items[names.Report]), "A.foo: A.bar\n")

	var doc schema.Analysis
	require.NoError(t, json.Unmarshal(store.items[names.Analysis], &doc))
	assert.Equal(t, "python", doc.Metadata.Language)
	assert.Equal(t, "test", doc.Metadata.Version)
	assert.Equal(t, StatusRendered, doc.Status)
}

func TestAnalyzeSyntaxError(t *testing.T) {
	store := newMemStore()
	mapName := output.ArtifactNames("broken").Map
	store.items[mapName] = []byte("stale")
	e := New(Options{
		Renderer: layout.NewRenderer(layout.Config{Binary: fakeDot(t)}),
		Store:    store,
	})

	res := e.Analyze(context.Background(), loader.NewSource("broken.py", []byte("def f(:\n    pass\n")))

	assert.Empty(t, res.Declarations)
	assert.Empty(t, res.Edges)
	assert.Equal(t, []schema.Finding{advisor.SyntaxFinding()}, res.RefactorFindings)
	assert.Equal(t, StatusSyntaxError, res.Status)
	assert.Empty(t, res.Hotspots)
	assert.Nil(t, res.Rendered)
	assert.NotContains(t, store.items, mapName)
	require.NotEmpty(t, res.Issues)
	assert.Equal(t, schema.IssueSyntax, res.Issues[0].Code)
}

func TestAnalyzeRendererUnavailable(t *testing.T) {
	e := New(Options{
		Linter:   lint.NewRunner("no-such-linter-binary", nil),
		Renderer: layout.NewRenderer(layout.Config{Binary: "no-such-dot-binary"}),
	})
	res := e.Analyze(context.Background(), loader.NewSource("m.py", []byte("def main():\n    pass\n")))

	assert.Equal(t, StatusNoRenderer, res.Status)
	require.Len(t, res.StyleFindings, 1)
	assert.Contains(t, res.StyleFindings[0].Message, "no-such-linter-binary")

	codes := []string{}
	for _, is := range res.Issues {
		codes = append(codes, is.Code)
	}
	assert.ElementsMatch(t, []string{schema.IssueLinterMissing, schema.IssueRendererMissing}, codes)
	assert.Empty(t, res.Artifacts)
}

func TestAnalyzeArtifactFailuresAreSwallowed(t *testing.T) {
	store := newMemStore()
	names := output.ArtifactNames("m")
	store.fail[names.Report] = true
	e := New(Options{Store: store})

	res := e.Analyze(context.Background(), loader.NewSource("m.py", []byte("def main():\n    pass\n")))

	assert.Equal(t, StatusRenderSkipped, res.Status)
	assert.NotContains(t, res.Artifacts, names.Report)
	assert.Contains(t, res.Artifacts, names.DOT)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, schema.IssueArtifactWrite, res.Issues[0].Code)
}

func TestAnalyzeIsRepeatable(t *testing.T) {
	e := New(Options{Overrides: style.Overrides{LeafSymbols: []string{"A.foo"}}})
	src := loader.NewSource("sample.py", []byte(sample))
	first := e.Analyze(context.Background(), src)
	second := e.Analyze(context.Background(), src)

	assert.Equal(t, first.Edges, second.Edges)
	assert.Equal(t, string(first.DOT), string(second.DOT))
	assert.Contains(t, first.Styled.Leaf, "A.foo")
}

func TestAnalyzeFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "tool.py")
	require.NoError(t, os.WriteFile(p, []byte("import os\n\ndef run():\n    os.system('ls')\n"), 0o644))

	res, err := New(Options{}).AnalyzeFile(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, res.Tags["run"].Has(schema.TagIO))

	_, err = New(Options{}).AnalyzeFile(context.Background(), filepath.Join(dir, "missing.py"))
	assert.Error(t, err)
}

func TestLintTargetUsesOriginalFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.py")
	require.NoError(t, os.WriteFile(p, []byte("x = 1\n"), 0o644))

	path, cleanup, err := lintTarget(loader.NewSource(p, []byte("x = 1\n")))
	require.NoError(t, err)
	cleanup()
	assert.Equal(t, p, path)

	path, cleanup, err = lintTarget(loader.NewSource(p, []byte("x = 2\n")))
	require.NoError(t, err)
	assert.NotEqual(t, p, path)
	assert.True(t, strings.HasSuffix(path, "a.py"))
	data, _ := os.ReadFile(path)
	assert.Equal(t, "x = 2\n", string(data))
	cleanup()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestSchemaNeverNil(t *testing.T) {
	a := (&Result{}).Schema("v")
	b, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"declarations":[]`)
	assert.Contains(t, string(b), `"entry_symbols":[]`)
	assert.NotContains(t, string(b), "hotspots")
}
