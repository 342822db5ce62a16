// Package loader legge i sorgenti Python da analizzare.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotPython is returned when the path does not name a .py file.
var ErrNotPython = errors.New("not a python source file")

// Source è un singolo file da analizzare.
type Source struct {
	Path string // path come fornito
	Base string // nome del file senza estensione, usato per gli artifact
	Code []byte
}

// NewSource builds a Source from in-memory code.
func NewSource(path string, code []byte) *Source {
	base := filepath.Base(path)
	return &Source{
		Path: path,
		Base: strings.TrimSuffix(base, filepath.Ext(base)),
		Code: code,
	}
}

// Load legge un file .py.
func Load(path string) (*Source, error) {
	if !strings.EqualFold(filepath.Ext(path), ".py") {
		return nil, fmt.Errorf("%s: %w", path, ErrNotPython)
	}
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return NewSource(path, code), nil
}

// Program is a simple file listing rooted at Root.
type Program struct {
	Root  string
	Files []string // path dei file .py, ordinati
}

// ModuleKey identifies path within the program: the slash-separated path
// relative to Root without the .py suffix, e.g. "pkg/__init__".
func (p *Program) ModuleKey(path string) string {
	rel := path
	if r, err := filepath.Rel(p.Root, path); err == nil && !strings.HasPrefix(r, "..") {
		rel = r
	}
	rel = filepath.ToSlash(rel)
	if ext := filepath.Ext(rel); strings.EqualFold(ext, ".py") {
		rel = strings.TrimSuffix(rel, ext)
	}
	return rel
}

// Options controlla il comportamento del loader.
type Options struct {
	IncludeTests bool
	ExcludeDirs  []string // basenames da escludere
	OnlyPath     []string // filtra per sottostringa nel path relativo
}

// defaultExcludes are directories that never hold project sources.
var defaultExcludes = []string{"venv", ".venv", "__pycache__", ".git", "site-packages", ".tox", "node_modules"}

// LoadWithOptions cammina la directory root e raccoglie i file .py secondo le opzioni.
// Se root è un file viene restituito da solo.
func LoadWithOptions(root string, opts Options) (*Program, error) {
	st, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		if !strings.EqualFold(filepath.Ext(root), ".py") {
			return nil, fmt.Errorf("%s: %w", root, ErrNotPython)
		}
		return &Program{Root: filepath.Dir(root), Files: []string{root}}, nil
	}

	ex := make(map[string]struct{}, len(defaultExcludes)+len(opts.ExcludeDirs))
	for _, d := range defaultExcludes {
		ex[d] = struct{}{}
	}
	for _, d := range opts.ExcludeDirs {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		ex[d] = struct{}{}
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := ex[d.Name()]; skip {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".py") {
			return nil
		}
		if !opts.IncludeTests && isTestFile(d.Name()) {
			return nil
		}
		if len(opts.OnlyPath) > 0 && !matchesAny(root, path, opts.OnlyPath) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return &Program{Root: root, Files: files}, nil
}

func isTestFile(name string) bool {
	return strings.HasPrefix(name, "test_") || strings.HasSuffix(name, "_test.py")
}

// matchesAny applica il filtro only-path sul path relativo.
func matchesAny(root, path string, filters []string) bool {
	rel := path
	if rp, err := filepath.Rel(root, path); err == nil {
		rel = rp
	}
	rp := filepath.ToSlash(rel)
	for _, s := range filters {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if strings.Contains(rp, s) {
			return true
		}
	}
	return false
}
