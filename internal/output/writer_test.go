package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codellm-devkit/codeanalyzer-py/pkg/schema"
)

func sampleAnalysis() *schema.Analysis {
	tags := schema.TagSet{}
	tags.Add(schema.TagNet)
	return &schema.Analysis{
		Metadata: schema.Metadata{Analyzer: "codeanalyzer-py", Module: "sample"},
		Declarations: []schema.Declaration{
			{QualifiedName: "fetch", Kind: schema.KindFunction, Line: 3},
		},
		Calls:  []schema.CallEdge{{Caller: "fetch", Callee: "requests.get", Count: 1}},
		Tags:   map[string]schema.TagSet{"fetch": tags},
		Status: "ok",
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("compact")
	require.NoError(t, err)
	assert.Equal(t, FormatCompact, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestWriteToDir(t *testing.T) {
	dir := t.TempDir()
	err := Write(sampleAnalysis(), Config{OutputDir: dir, FileName: "sample_analysis.json", Indent: true})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "sample_analysis.json"))
	require.NoError(t, err)

	var got schema.Analysis
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "sample", got.Metadata.Module)
	assert.Equal(t, "requests.get", got.Calls[0].Callee)
	assert.Contains(t, string(data), `"fetch": [`)
}

func TestWriteCompactToDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(sampleAnalysis(), Config{OutputDir: dir, Format: FormatCompact}))

	data, err := os.ReadFile(filepath.Join(dir, "analysis.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"fetch>requests.get"`)
}

func TestWriteNone(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(sampleAnalysis(), Config{OutputDir: dir, Format: FormatNone}))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEncodeNoHTMLEscape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, map[string]string{"edge": "a>b"}, false))
	assert.Equal(t, "{\"edge\":\"a>b\"}\n", buf.String())
}
