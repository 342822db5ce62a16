package lint

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codellm-devkit/codeanalyzer-py/pkg/schema"
)

func TestParseLine(t *testing.T) {
	f := ParseLine("module.py:12:5: E501 line too long (88 > 79 characters)")
	assert.Equal(t, schema.CategoryStyle, f.Category)
	assert.Equal(t, 12, f.Line)
	assert.Equal(t, 5, f.Column)
	assert.Equal(t, "E501", f.Code)
	assert.Equal(t, "module.py:12:5: E501 line too long (88 > 79 characters)", f.Message)

	win := ParseLine(`C:\src\module.py:3:1: W291 trailing whitespace`)
	assert.Equal(t, 3, win.Line)
	assert.Equal(t, "W291", win.Code)

	opaque := ParseLine("something unexpected")
	assert.Zero(t, opaque.Line)
	assert.Empty(t, opaque.Code)
	assert.Equal(t, "something unexpected", opaque.Message)
}

func TestParseSkipsBlankLines(t *testing.T) {
	fs := Parse([]byte("a.py:1:1: F401 'os' imported but unused\n\n   \r\na.py:2:80: E501 line too long\r\n"))
	require.Len(t, fs, 2)
	assert.Equal(t, 1, fs[0].Line)
	assert.Equal(t, 80, fs[1].Column)
	assert.Equal(t, "a.py:2:80: E501 line too long", fs[1].Message)
}

func TestRunUnavailable(t *testing.T) {
	r := NewRunner("definitely-not-a-linter-binary", nil)
	fs := r.Run(context.Background(), "x.py")
	require.Len(t, fs, 1)
	assert.Contains(t, fs[0].Message, "definitely-not-a-linter-binary")

	_, err := r.Exec(context.Background(), "x.py")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func fakeLinter(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	p := filepath.Join(t.TempDir(), "fake-flake8")
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+script), 0o755))
	return p
}

func TestRunParsesViolationsOnNonZeroExit(t *testing.T) {
	bin := fakeLinter(t, "echo \"$1:3:1: E302 expected 2 blank lines, found 1\"\nexit 1\n")
	fs := NewRunner(bin, nil).Run(context.Background(), "sample.py")
	require.Len(t, fs, 1)
	assert.Equal(t, 3, fs[0].Line)
	assert.Equal(t, "E302", fs[0].Code)
	assert.Equal(t, "sample.py:3:1: E302 expected 2 blank lines, found 1", fs[0].Message)
}

func TestRunClean(t *testing.T) {
	bin := fakeLinter(t, "exit 0\n")
	assert.Empty(t, NewRunner(bin, nil).Run(context.Background(), "sample.py"))
}

func TestRunCrashWithoutOutput(t *testing.T) {
	bin := fakeLinter(t, "echo boom >&2\nexit 2\n")
	fs := NewRunner(bin, nil).Run(context.Background(), "sample.py")
	require.Len(t, fs, 1)
	assert.Empty(t, fs[0].Code)
}
