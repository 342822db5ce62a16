// Package style turns the analysis result into a styled graph: node and
// edge attributes, entry and leaf sets, class clusters.
package style

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/codellm-devkit/codeanalyzer-py/pkg/schema"
)

// Overrides are names forced into the entry and leaf sets.
type Overrides struct {
	EntrySymbols []string `yaml:"entry_symbols"`
	LeafSymbols  []string `yaml:"leaf_symbols"`
}

// Input is the analysis data the styling depends on.
type Input struct {
	Declarations []schema.Declaration
	Edges        []schema.CallEdge
	Tags         map[string]schema.TagSet
}

// Node holds the Graphviz attributes of one declaration.
type Node struct {
	Name        string
	Kind        schema.Kind
	Shape       string
	Style       string
	FillColor   string
	Color       string
	Peripheries int
	PenWidth    string
	Entry       bool
	Leaf        bool
}

// Edge holds the Graphviz attributes of one aggregated call edge.
type Edge struct {
	schema.CallEdge
	Color    string
	PenWidth string
	Label    string
}

// Cluster groups a class node with its methods.
type Cluster struct {
	Class   string
	Members []string // sorted method names, qualified
}

// Styled is the complete styled graph. Nodes and edges are sorted.
type Styled struct {
	Nodes    []Node
	Edges    []Edge
	Clusters []Cluster
	Entry    []string
	Leaf     []string

	index map[string]int
}

// Node returns the styled node called name.
func (s *Styled) Node(name string) (Node, bool) {
	i, ok := s.index[name]
	if !ok {
		return Node{}, false
	}
	return s.Nodes[i], true
}

// Derive computes the styled graph. It does not modify in.
func Derive(in Input, ov Overrides) *Styled {
	kinds := make(map[string]schema.Kind, len(in.Declarations))
	for _, d := range in.Declarations {
		kinds[d.QualifiedName] = d.Kind
	}
	names := nodeNames(in)
	deg := computeDegrees(names, in.Edges)

	entry := make(map[string]struct{})
	leaf := make(map[string]struct{})
	for _, n := range names {
		if !kinds[n].Callable() {
			continue
		}
		if deg.in(n) == 0 {
			entry[n] = struct{}{}
		}
		if deg.out(n) == 0 {
			leaf[n] = struct{}{}
		}
	}
	for _, n := range ov.EntrySymbols {
		entry[n] = struct{}{}
	}
	for _, n := range ov.LeafSymbols {
		leaf[n] = struct{}{}
	}

	s := &Styled{
		Entry: sortedKeys(entry),
		Leaf:  sortedKeys(leaf),
		index: make(map[string]int, len(names)),
	}
	for _, n := range names {
		_, isEntry := entry[n]
		_, isLeaf := leaf[n]
		s.index[n] = len(s.Nodes)
		s.Nodes = append(s.Nodes, nodeStyle(n, kinds[n], in.Tags[n], isEntry, isLeaf))
	}
	for _, e := range in.Edges {
		s.Edges = append(s.Edges, edgeStyle(e, in.Tags))
	}
	s.Clusters = clusters(in.Declarations)
	return s
}

func nodeNames(in Input) []string {
	seen := make(map[string]struct{}, len(in.Declarations))
	for _, d := range in.Declarations {
		seen[d.QualifiedName] = struct{}{}
	}
	for _, e := range in.Edges {
		seen[e.Caller] = struct{}{}
		seen[e.Callee] = struct{}{}
	}
	return sortedKeys(seen)
}

// degrees counts call sites in and out of each node. Self loops are kept
// apart because simple graphs reject them.
type degrees struct {
	g     *simple.WeightedDirectedGraph
	ids   map[string]int64
	loops map[string]int
}

func computeDegrees(names []string, edges []schema.CallEdge) degrees {
	d := degrees{
		g:     simple.NewWeightedDirectedGraph(0, 0),
		ids:   make(map[string]int64, len(names)),
		loops: make(map[string]int),
	}
	for i, n := range names {
		d.ids[n] = int64(i)
		d.g.AddNode(simple.Node(i))
	}
	for _, e := range edges {
		if e.Caller == e.Callee {
			d.loops[e.Caller] += e.Count
			continue
		}
		from, to := simple.Node(d.ids[e.Caller]), simple.Node(d.ids[e.Callee])
		d.g.SetWeightedEdge(d.g.NewWeightedEdge(from, to, float64(e.Count)))
	}
	return d
}

func (d degrees) in(name string) int {
	id := d.ids[name]
	n := d.loops[name]
	preds := d.g.To(id)
	for preds.Next() {
		w, _ := d.g.Weight(preds.Node().ID(), id)
		n += int(w)
	}
	return n
}

func (d degrees) out(name string) int {
	id := d.ids[name]
	n := d.loops[name]
	succs := d.g.From(id)
	for succs.Next() {
		w, _ := d.g.Weight(id, succs.Node().ID())
		n += int(w)
	}
	return n
}

// nodeStyle applies, in order: kind colours, dominant tag colours, double
// periphery for recursion, thick border for entries, leaf fill.
func nodeStyle(name string, kind schema.Kind, tags schema.TagSet, entry, leaf bool) Node {
	if _, ok := kindColors[kind]; !ok {
		kind = schema.KindFunction
	}
	c := KindColors(kind)
	if t, ok := DominantTag(tags); ok {
		c = tagColors[t]
	}
	n := Node{
		Name:        name,
		Kind:        kind,
		Shape:       "rectangle",
		Style:       "filled",
		FillColor:   c.Fill,
		Color:       c.Border,
		Peripheries: 1,
		PenWidth:    "1.6",
		Entry:       entry,
		Leaf:        leaf,
	}
	switch kind {
	case schema.KindClass:
		n.Shape = "ellipse"
	case schema.KindMethod:
		n.Style = "rounded,filled"
	}
	if tags.Has(schema.TagRecursive) {
		n.Peripheries = 2
	}
	if entry {
		n.PenWidth = "3"
	}
	if leaf {
		n.FillColor = leafFill
	}
	if n.Color == "" {
		n.Color = defaultBorder
	}
	return n
}

func edgeStyle(e schema.CallEdge, tags map[string]schema.TagSet) Edge {
	out := Edge{
		CallEdge: e,
		Color:    EdgeColor(e.Caller, e.Callee, tags),
		PenWidth: PenWidth(e.Count),
	}
	if e.Count > 1 {
		out.Label = fmt.Sprint(e.Count)
	}
	return out
}

// PenWidth maps a call-site count to an edge stroke width in [1.2, 5].
func PenWidth(count int) string {
	w := 1.0 + 1.4*math.Log2(float64(max(1, count)))
	return fmt.Sprintf("%.2f", min(5.0, max(1.2, w)))
}

func clusters(decls []schema.Declaration) []Cluster {
	members := make(map[string][]string)
	for _, d := range decls {
		if d.Kind != schema.KindMethod {
			continue
		}
		cls, _, ok := strings.Cut(d.QualifiedName, ".")
		if !ok {
			continue
		}
		members[cls] = append(members[cls], d.QualifiedName)
	}
	out := make([]Cluster, 0, len(members))
	for cls, ms := range members {
		sort.Strings(ms)
		out = append(out, Cluster{Class: cls, Members: ms})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Class < out[j].Class })
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
