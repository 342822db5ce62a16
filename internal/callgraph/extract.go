package callgraph

import (
	"log/slog"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codellm-devkit/codeanalyzer-py/internal/pyast"
	"github.com/codellm-devkit/codeanalyzer-py/internal/symbols"
	"github.com/codellm-devkit/codeanalyzer-py/pkg/schema"
)

var (
	ioPrimitives = set("open", "print", "read", "write", "readlines", "writelines")
	processCalls = set("os.system", "os.popen", "subprocess.run", "subprocess.Popen", "subprocess.call", "subprocess.check_output")
	fileOpeners  = set("open", "io.open", "pathlib.Path.open")
	httpModules  = set("requests", "httpx")
	httpVerbs    = set("get", "post", "put", "delete", "head", "options", "patch", "request", "stream")
	httpClients  = set("requests.Session", "httpx.Client", "httpx.AsyncClient")
)

func set(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, s := range items {
		m[s] = struct{}{}
	}
	return m
}

func in(m map[string]struct{}, s string) bool {
	_, ok := m[s]
	return ok
}

// frame is the immutable walk context.
type frame struct {
	class  string // innermost enclosing class
	caller string // innermost enclosing function or method
}

// Options configura l'estrazione.
type Options struct {
	Logger *slog.Logger
}

type extractor struct {
	tree     *pyast.Tree
	table    *symbols.Table
	graph    *Graph
	sessions map[string]struct{} // names bound to an HTTP client
	log      *slog.Logger
}

// Extract walks the module and records one callee per call site made
// inside a function or method. Calls at module or class level are not
// recorded. Every callee missing from table is added to it as external.
func Extract(tree *pyast.Tree, table *symbols.Table, opts Options) *Graph {
	return newExtractor(tree, table, newGraph(), opts).run()
}

func newExtractor(tree *pyast.Tree, table *symbols.Table, g *Graph, opts Options) *extractor {
	x := &extractor{
		tree:     tree,
		table:    table,
		graph:    g,
		sessions: make(map[string]struct{}),
		log:      opts.Logger,
	}
	if x.log == nil {
		x.log = slog.Default()
	}
	return x
}

func (x *extractor) run() *Graph {
	if x.tree == nil {
		return x.graph
	}
	x.visit(x.tree.Root, frame{})
	x.resolveExternals()
	return x.graph
}

func (x *extractor) resolveExternals() {
	for _, callees := range x.graph.calls {
		for _, callee := range callees {
			x.table.Add(callee, schema.KindExternal, 1)
		}
	}
}

func (x *extractor) visit(n *sitter.Node, fr frame) {
	switch n.Type() {
	case "class_definition":
		x.visitClass(n, fr)
		return
	case "function_definition":
		x.visitFunction(n, fr)
		return
	case "assignment":
		x.trackSessions(n)
	case "with_item":
		x.visitWithItem(n, fr)
	case "call":
		x.visitCall(n, fr)
	}
	x.visitChildren(n, fr)
}

func (x *extractor) visitChildren(n *sitter.Node, fr frame) {
	for _, c := range pyast.Children(n) {
		x.visit(c, fr)
	}
}

// visitClass skips the superclass list. The body gets no caller, so
// class-level calls are dropped even when the class is function-local.
func (x *extractor) visitClass(n *sitter.Node, _ frame) {
	inner := frame{class: x.tree.Name(n)}
	if body := n.ChildByFieldName("body"); body != nil {
		x.visitChildren(body, inner)
	}
}

func (x *extractor) visitFunction(n *sitter.Node, fr frame) {
	key, _ := symbols.Qualify(fr.class, x.tree.Name(n))
	x.graph.ensure(key)
	if pyast.IsAsync(n) {
		x.graph.tag(key, schema.TagAsync)
	}
	if pyast.ContainsYield(n) {
		x.graph.tag(key, schema.TagGenerator)
	}

	inner := frame{class: fr.class, caller: key}
	for _, field := range []string{"parameters", "return_type", "body"} {
		if c := n.ChildByFieldName(field); c != nil {
			x.visit(c, inner)
		}
	}
}

// trackSessions records names bound directly to an HTTP client instance.
// Chained assignments bind every target.
func (x *extractor) trackSessions(n *sitter.Node) {
	var targets []*sitter.Node
	cur := n
	for cur != nil && cur.Type() == "assignment" {
		targets = append(targets, cur.ChildByFieldName("left"))
		cur = cur.ChildByFieldName("right")
	}
	if cur == nil || cur.Type() != "call" {
		return
	}
	if !in(httpClients, x.fullName(cur.ChildByFieldName("function"))) {
		return
	}
	for _, t := range targets {
		if t != nil && t.Type() == "identifier" {
			x.sessions[x.tree.Text(t)] = struct{}{}
		}
	}
}

func (x *extractor) visitWithItem(n *sitter.Node, fr frame) {
	if fr.caller == "" {
		return
	}
	value := n.ChildByFieldName("value")
	if value == nil && n.NamedChildCount() > 0 {
		value = n.NamedChild(0)
	}
	if value != nil && value.Type() == "as_pattern" && value.NamedChildCount() > 0 {
		value = value.NamedChild(0)
	}
	if value == nil || value.Type() != "call" {
		return
	}
	if in(fileOpeners, x.fullName(value.ChildByFieldName("function"))) {
		x.graph.tag(fr.caller, schema.TagIO)
	}
}

func (x *extractor) visitCall(n *sitter.Node, fr frame) {
	defer func() {
		if r := recover(); r != nil {
			x.log.Debug("call site skipped", slog.Int("line", pyast.Line(n)), slog.Any("panic", r))
		}
	}()

	if fr.caller == "" {
		return
	}
	callee := x.formatCallee(n.ChildByFieldName("function"), fr)
	if callee == "" {
		return
	}
	if !strings.Contains(callee, ".") && fr.class != "" && x.table.IsMethodOf(fr.class, callee) {
		callee = fr.class + "." + callee
	}
	// a call site that fails to classify is not recorded
	x.classify(fr.caller, callee)
	x.graph.add(fr.caller, callee)
}

func (x *extractor) classify(caller, callee string) {
	head, base := "", callee
	if i := strings.Index(callee, "."); i >= 0 {
		head, base = callee[:i], callee[i+1:]
	}

	if in(ioPrimitives, base) || in(processCalls, callee) {
		x.graph.tag(caller, schema.TagIO)
	}
	if in(httpVerbs, base) && (in(httpModules, head) || in(x.sessions, head)) {
		x.graph.tag(caller, schema.TagNet)
	}
	if callee == caller {
		x.graph.tag(caller, schema.TagRecursive)
	}
}

// formatCallee renders the callee of a call expression. Anything other
// than a name or an attribute access yields "".
func (x *extractor) formatCallee(fn *sitter.Node, fr frame) string {
	if fn == nil {
		return ""
	}
	switch fn.Type() {
	case "identifier":
		return x.tree.Text(fn)
	case "attribute":
		obj := fn.ChildByFieldName("object")
		attr := x.tree.Text(fn.ChildByFieldName("attribute"))
		if obj != nil && obj.Type() == "identifier" {
			name := x.tree.Text(obj)
			if name == "self" && fr.class != "" {
				return fr.class + "." + attr
			}
			return name + "." + attr
		}
		return attr
	}
	return ""
}

// fullName joins a dotted attribute chain; non-name segments are dropped.
func (x *extractor) fullName(fn *sitter.Node) string {
	if fn == nil {
		return ""
	}
	switch fn.Type() {
	case "identifier":
		return x.tree.Text(fn)
	case "attribute":
		attr := x.tree.Text(fn.ChildByFieldName("attribute"))
		if left := x.fullName(fn.ChildByFieldName("object")); left != "" {
			return left + "." + attr
		}
		return attr
	}
	return ""
}
