// Package callgraph extracts caller → callee relations and behavioural tags
// from a parsed Python module.
package callgraph

import (
	"sort"

	"github.com/codellm-devkit/codeanalyzer-py/pkg/schema"
)

// Graph holds the ordered callee list of every caller (duplicates kept,
// one entry per call site) and the tags of every declaration.
type Graph struct {
	calls map[string][]string
	tags  map[string]schema.TagSet
}

func newGraph() *Graph {
	return &Graph{
		calls: make(map[string][]string),
		tags:  make(map[string]schema.TagSet),
	}
}

func (g *Graph) ensure(caller string) {
	if _, ok := g.calls[caller]; !ok {
		g.calls[caller] = []string{}
	}
}

func (g *Graph) add(caller, callee string) {
	g.calls[caller] = append(g.calls[caller], callee)
}

func (g *Graph) tag(name string, t schema.Tag) {
	set, ok := g.tags[name]
	if !ok {
		set = schema.TagSet{}
		g.tags[name] = set
	}
	set.Add(t)
}

// Callers returns every function or method seen as a caller, sorted.
// Callables without calls are included.
func (g *Graph) Callers() []string {
	out := make([]string, 0, len(g.calls))
	for c := range g.calls {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Callees returns the callee list of caller in call-site order.
func (g *Graph) Callees(caller string) []string {
	return append([]string(nil), g.calls[caller]...)
}

// Tags returns the tags of name. The result may be nil.
func (g *Graph) Tags(name string) schema.TagSet {
	return g.tags[name]
}

// TagMap returns the tags of every tagged declaration.
func (g *Graph) TagMap() map[string]schema.TagSet {
	out := make(map[string]schema.TagSet, len(g.tags))
	for name, set := range g.tags {
		cp := make(schema.TagSet, len(set))
		for t := range set {
			cp.Add(t)
		}
		out[name] = cp
	}
	return out
}

// Edges aggregates the call multiset. Count is the number of call sites;
// the result is sorted by caller, then callee.
func (g *Graph) Edges() []schema.CallEdge {
	type key struct{ caller, callee string }
	counts := make(map[key]int)
	for caller, callees := range g.calls {
		for _, callee := range callees {
			counts[key{caller, callee}]++
		}
	}
	out := make([]schema.CallEdge, 0, len(counts))
	for k, n := range counts {
		out = append(out, schema.CallEdge{Caller: k.caller, Callee: k.callee, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Caller != out[j].Caller {
			return out[i].Caller < out[j].Caller
		}
		return out[i].Callee < out[j].Callee
	})
	return out
}
