package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"CODEANALYZER_OUTPUT_DIR", "CODEANALYZER_DOT", "CODEANALYZER_LINTER", "CODEANALYZER_FONT",
		"ARTIFACT_S3_ENDPOINT", "ARTIFACT_S3_REGION", "ARTIFACT_S3_ACCESS_KEY", "ARTIFACT_S3_SECRET_KEY",
		"ARTIFACT_S3_BUCKET", "ARTIFACT_S3_PREFIX", "ARTIFACT_S3_USE_SSL", "MINIO_ROOT_USER", "MINIO_ROOT_PASSWORD",
		"NEO4J_URI", "NEO4J_USER", "NEO4J_PASSWORD", "NEO4J_DATABASE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, "dot", cfg.DotBinary)
	assert.Equal(t, "flake8", cfg.Linter)
	assert.Empty(t, cfg.Font)
	assert.False(t, cfg.Artifact.Enabled())
	assert.True(t, cfg.Artifact.UseSSL)
	assert.Equal(t, "us-east-1", cfg.Artifact.Region)
	assert.False(t, cfg.Neo4j.Enabled())
	assert.Equal(t, "neo4j", cfg.Neo4j.User)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("CODEANALYZER_OUTPUT_DIR", "/tmp/out")
	t.Setenv("ARTIFACT_S3_ENDPOINT", "localhost:9000")
	t.Setenv("MINIO_ROOT_USER", "minio")
	t.Setenv("ARTIFACT_S3_SECRET_KEY", "secret")
	t.Setenv("ARTIFACT_S3_USE_SSL", "false")
	t.Setenv("NEO4J_URI", "bolt://localhost:7687")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.True(t, cfg.Artifact.Enabled())
	assert.Equal(t, "minio", cfg.Artifact.AccessKey)
	assert.Equal(t, "secret", cfg.Artifact.SecretKey)
	assert.False(t, cfg.Artifact.UseSSL)
	assert.True(t, cfg.Neo4j.Enabled())
}

func TestLoadDotEnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("CODEANALYZER_FONT")
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CODEANALYZER_FONT=DejaVu Sans\n"), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "DejaVu Sans", cfg.Font)
}

func TestLoadBadBool(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("ARTIFACT_S3_USE_SSL", "maybe")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, OverridesFile)
	require.NoError(t, os.WriteFile(p, []byte("entry_symbols: [main]\nleaf_symbols:\n  - Repo.save\n"), 0o644))

	ov, err := LoadOverrides(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, ov.EntrySymbols)
	assert.Equal(t, []string{"Repo.save"}, ov.LeafSymbols)

	src := filepath.Join(dir, "app.py")
	assert.Equal(t, p, FindOverrides(src))
	assert.Empty(t, FindOverrides(filepath.Join(t.TempDir(), "app.py")))
}

func TestLoadOverridesMissingOrBad(t *testing.T) {
	ov, err := LoadOverrides(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, ov.EntrySymbols)

	ov, err = LoadOverrides("")
	require.NoError(t, err)
	assert.Empty(t, ov.LeafSymbols)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("entry_symbols: {not: [a list"), 0o644))
	_, err = LoadOverrides(bad)
	assert.Error(t, err)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "  ", " b "))
	assert.Equal(t, "", firstNonEmpty())
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
