// Package output gestisce la scrittura dell'output dell'analisi.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/codellm-devkit/codeanalyzer-py/pkg/schema"
)

// Format rappresenta il formato di output supportato.
type Format string

const (
	FormatJSON    Format = "json"
	FormatCompact Format = "compact"
	FormatNone    Format = "none"
)

// ParseFormat valida il nome di un formato.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatCompact, FormatNone:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// Config configura l'output writer.
type Config struct {
	OutputDir string    // directory output (vuoto = stdout)
	FileName  string    // nome del file in OutputDir (default: analysis.json)
	Format    Format    // json|compact|none (default: json)
	Indent    bool      // indentazione JSON
	Stdout    io.Writer // destinazione quando OutputDir è vuoto (default: os.Stdout)
}

// Write scrive l'analisi nel formato specificato.
func Write(analysis *schema.Analysis, cfg Config) error {
	if cfg.Format == "" {
		cfg.Format = FormatJSON
	}

	switch cfg.Format {
	case FormatJSON:
		return writeJSONGeneric(analysis, cfg)
	case FormatCompact:
		cfg.Indent = true
		return writeJSONGeneric(schema.ToCompact(analysis), cfg)
	case FormatNone:
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", cfg.Format)
	}
}

// writeJSONGeneric scrive qualsiasi struttura in formato JSON.
func writeJSONGeneric(data interface{}, cfg Config) error {
	var w io.Writer

	if cfg.OutputDir == "" {
		// Output su stdout
		w = cfg.Stdout
		if w == nil {
			w = os.Stdout
		}
	} else {
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}

		name := cfg.FileName
		if name == "" {
			name = "analysis.json"
		}
		f, err := os.Create(filepath.Join(cfg.OutputDir, name))
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	return Encode(w, data, cfg.Indent)
}

// Encode scrive data come JSON su w senza escape HTML.
func Encode(w io.Writer, data interface{}, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	// Assicura che i caratteri speciali non siano escaped
	enc.SetEscapeHTML(false)

	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// ToJSON converte un valore in JSON indentato.
func ToJSON(data interface{}) ([]byte, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	return b, nil
}
