package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codellm-devkit/codeanalyzer-py/internal/loader"
	"github.com/codellm-devkit/codeanalyzer-py/pkg/schema"
)

type fakeExporter struct {
	ops      []string
	exported map[string]*schema.Analysis
}

func (f *fakeExporter) Clean(_ context.Context, module string) error {
	f.ops = append(f.ops, "clean "+module)
	return nil
}

func (f *fakeExporter) Export(_ context.Context, module string, a *schema.Analysis) error {
	f.ops = append(f.ops, "export "+module)
	f.exported[module] = a
	return nil
}

func TestExportProgramKeysByPackagePath(t *testing.T) {
	root := t.TempDir()
	for dir, code := range map[string]string{
		"a": "def alpha():\n    pass\n",
		"b": "def beta():\n    pass\n",
	} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, dir, "__init__.py"), []byte(code), 0o644))
	}
	prog, err := loader.LoadWithOptions(root, loader.Options{})
	require.NoError(t, err)

	opts := &options{log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	exp := &fakeExporter{exported: map[string]*schema.Analysis{}}
	require.NoError(t, exportProgram(context.Background(), opts, exp, prog, false))

	assert.Equal(t, []string{
		"clean a/__init__", "export a/__init__",
		"clean b/__init__", "export b/__init__",
	}, exp.ops)
	require.Len(t, exp.exported, 2)
	assert.Equal(t, "alpha", exp.exported["a/__init__"].Declarations[0].QualifiedName)
	assert.Equal(t, "beta", exp.exported["b/__init__"].Declarations[0].QualifiedName)

	exp = &fakeExporter{exported: map[string]*schema.Analysis{}}
	require.NoError(t, exportProgram(context.Background(), opts, exp, prog, true))
	assert.Equal(t, []string{"export a/__init__", "export b/__init__"}, exp.ops)
}
