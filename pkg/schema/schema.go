package schema

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ============================================================================
// Dichiarazioni
// ============================================================================

// Kind classifica una dichiarazione Python.
type Kind string

const (
	KindClass    Kind = "class"
	KindMethod   Kind = "method"
	KindFunction Kind = "function"
	KindExternal Kind = "external"
)

// Callable reports whether the kind denotes a function or a method.
func (k Kind) Callable() bool {
	return k == KindFunction || k == KindMethod
}

// Declaration è una voce della symbol table.
type Declaration struct {
	QualifiedName string `json:"qualified_name"`
	Kind          Kind   `json:"kind"`
	Line          int    `json:"line"` // 1-based, 1 per i simboli esterni
}

// SortDeclarations ordina per riga e poi per nome.
func SortDeclarations(decls []Declaration) {
	sort.Slice(decls, func(i, j int) bool {
		if decls[i].Line != decls[j].Line {
			return decls[i].Line < decls[j].Line
		}
		return decls[i].QualifiedName < decls[j].QualifiedName
	})
}

// ============================================================================
// Tag comportamentali
// ============================================================================

// Tag è un'etichetta comportamentale associata a una dichiarazione.
type Tag string

const (
	TagAsync     Tag = "async"
	TagGenerator Tag = "generator"
	TagIO        Tag = "io"
	TagNet       Tag = "net"
	TagRecursive Tag = "recursive"
)

// TagSet è un insieme di tag.
type TagSet map[Tag]struct{}

// Add aggiunge t all'insieme.
func (s TagSet) Add(t Tag) {
	s[t] = struct{}{}
}

// Has reports whether t is in the set. A nil set has no tags.
func (s TagSet) Has(t Tag) bool {
	_, ok := s[t]
	return ok
}

// Sorted restituisce i tag in ordine alfabetico.
func (s TagSet) Sorted() []Tag {
	out := make([]Tag, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MarshalJSON emits the set as a sorted array.
func (s TagSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// ============================================================================
// Call graph
// ============================================================================

// CallEdge è un arco aggregato del multiset delle chiamate.
type CallEdge struct {
	Caller string `json:"caller"`
	Callee string `json:"callee"`
	Count  int    `json:"count"`
}

// ============================================================================
// Findings
// ============================================================================

// Category distingue i finding del linter da quelli dell'advisor.
type Category string

const (
	CategoryStyle    Category = "style"
	CategoryRefactor Category = "refactor"
)

// Finding è un messaggio diagnostico.
type Finding struct {
	Category Category `json:"category"`
	Code     string   `json:"code,omitempty"`
	Message  string   `json:"message"`
	Line     int      `json:"line,omitempty"`
	Column   int      `json:"column,omitempty"`
}

// ============================================================================
// Geometria
// ============================================================================

// Rect è un bounding box in coordinate SVG.
type Rect struct {
	X, Y, W, H float64
}

// MarshalJSON emits [x, y, w, h].
func (r Rect) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{r.X, r.Y, r.W, r.H})
}

// UnmarshalJSON accepts [x, y, w, h].
func (r *Rect) UnmarshalJSON(b []byte) error {
	var v []float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if len(v) != 4 {
		return fmt.Errorf("rect: want 4 numbers, got %d", len(v))
	}
	r.X, r.Y, r.W, r.H = v[0], v[1], v[2], v[3]
	return nil
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}
