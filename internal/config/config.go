// Package config carica la configurazione dell'analyzer da env e file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/codellm-devkit/codeanalyzer-py/internal/output"
	"github.com/codellm-devkit/codeanalyzer-py/internal/style"
)

// OverridesFile is looked up next to the analysed source.
const OverridesFile = "codeanalyzer.yaml"

// DefaultOutputDir riceve gli artifact quando non configurato.
const DefaultOutputDir = "./codeanalyzer-output"

// Config raccoglie le impostazioni lette dall'ambiente.
type Config struct {
	OutputDir string
	DotBinary string
	Linter    string
	Font      string
	Artifact  output.S3Config
	Neo4j     Neo4jConfig
}

// Neo4jConfig contiene i parametri di connessione per l'export.
type Neo4jConfig struct {
	URI      string
	User     string
	Password string
	Database string
}

// Enabled reports whether a Neo4j URI is configured.
func (c Neo4jConfig) Enabled() bool { return c.URI != "" }

// Load reads .env (optional) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	useSSL, err := parseBool(os.Getenv("ARTIFACT_S3_USE_SSL"), true)
	if err != nil {
		return nil, fmt.Errorf("ARTIFACT_S3_USE_SSL: %w", err)
	}

	return &Config{
		OutputDir: firstNonEmpty(env("CODEANALYZER_OUTPUT_DIR"), DefaultOutputDir),
		DotBinary: firstNonEmpty(env("CODEANALYZER_DOT"), "dot"),
		Linter:    firstNonEmpty(env("CODEANALYZER_LINTER"), "flake8"),
		Font:      env("CODEANALYZER_FONT"),
		Artifact: output.S3Config{
			Endpoint:  env("ARTIFACT_S3_ENDPOINT"),
			Region:    firstNonEmpty(env("ARTIFACT_S3_REGION"), "us-east-1"),
			AccessKey: firstNonEmpty(env("ARTIFACT_S3_ACCESS_KEY"), env("MINIO_ROOT_USER")),
			SecretKey: firstNonEmpty(env("ARTIFACT_S3_SECRET_KEY"), env("MINIO_ROOT_PASSWORD")),
			Bucket:    firstNonEmpty(env("ARTIFACT_S3_BUCKET"), "codeanalyzer-artifacts"),
			Prefix:    env("ARTIFACT_S3_PREFIX"),
			UseSSL:    useSSL,
		},
		Neo4j: Neo4jConfig{
			URI:      env("NEO4J_URI"),
			User:     firstNonEmpty(env("NEO4J_USER"), "neo4j"),
			Password: env("NEO4J_PASSWORD"),
			Database: env("NEO4J_DATABASE"),
		},
	}, nil
}

// LoadOverrides legge il file YAML degli override; file assente → set vuoti.
func LoadOverrides(path string) (style.Overrides, error) {
	var ov style.Overrides
	if path == "" {
		return ov, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ov, nil
		}
		return ov, fmt.Errorf("read overrides: %w", err)
	}
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return style.Overrides{}, fmt.Errorf("parse overrides %s: %w", path, err)
	}
	return ov, nil
}

// FindOverrides returns the overrides file beside sourcePath, or "".
func FindOverrides(sourcePath string) string {
	p := filepath.Join(filepath.Dir(sourcePath), OverridesFile)
	if info, err := os.Stat(p); err == nil && !info.IsDir() {
		return p
	}
	return ""
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func parseBool(raw string, def bool) (bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	return strconv.ParseBool(raw)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
