package output

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Nomi degli artifact, derivati dal nome base del sorgente.
const (
	SuffixReport    = "_analysis.txt"
	SuffixAnalysis  = "_analysis.json"
	SuffixFlowchart = "_function_flowchart"
	SuffixMap       = "_function_flowchart_map.json"
)

// Names holds the artifact file names of one source.
type Names struct {
	Report, Analysis, DOT, PNG, SVG, Map string
}

// ArtifactNames derives every artifact name from base.
func ArtifactNames(base string) Names {
	stem := base + SuffixFlowchart
	return Names{
		Report:   base + SuffixReport,
		Analysis: base + SuffixAnalysis,
		DOT:      stem + ".dot",
		PNG:      stem + ".png",
		SVG:      stem + ".svg",
		Map:      base + SuffixMap,
	}
}

// ArtifactStore persists named analysis artifacts.
type ArtifactStore interface {
	// Put stores content under name and returns where it ended up.
	Put(ctx context.Context, name string, content []byte) (string, error)
	// Remove deletes name; a missing artifact is not an error.
	Remove(ctx context.Context, name string) error
}

// DiskStore writes artifacts into a directory.
type DiskStore struct {
	root string
}

// NewDiskStore returns a store rooted at dir.
func NewDiskStore(dir string) (*DiskStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("output dir is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve output dir: %w", err)
	}
	return &DiskStore{root: abs}, nil
}

// Root returns the directory the store writes into.
func (s *DiskStore) Root() string { return s.root }

func (s *DiskStore) path(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("artifact name is required")
	}
	p := filepath.Join(s.root, filepath.Clean(string(filepath.Separator)+name))
	return p, nil
}

// Put writes content atomically via a temporary file.
func (s *DiskStore) Put(_ context.Context, name string, content []byte) (string, error) {
	p, err := s.path(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return "", fmt.Errorf("rename %s: %w", name, err)
	}
	return p, nil
}

// Remove deletes the artifact file if present.
func (s *DiskStore) Remove(_ context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
