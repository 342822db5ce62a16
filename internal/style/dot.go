package style

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// LabelWidth is the column at which node and cluster labels wrap.
const LabelWidth = 22

// URLScheme prefixes the URL attribute of every node so a viewer can map a
// click back to a declaration.
const URLScheme = "pyjump://"

// DOT renders the styled graph as Graphviz source. The output depends
// only on s, module and font.
func (s *Styled) DOT(module, font string) []byte {
	var b bytes.Buffer
	b.WriteString("// Function Flowchart\n")
	b.WriteString("digraph {\n")
	graphAttrs := []attr{
		{"rankdir", "LR"}, {"concentrate", "true"}, {"splines", "spline"},
		{"overlap", "false"}, {"nodesep", "0.6"}, {"ranksep", "1.0"},
	}
	if font != "" {
		graphAttrs = append([]attr{{"fontname", font}}, graphAttrs...)
	}
	fmt.Fprintf(&b, "\tgraph %s\n", attrList(graphAttrs))

	fmt.Fprintf(&b, "\tsubgraph %s {\n", quote("cluster_module_"+module))
	fmt.Fprintf(&b, "\t\tgraph %s\n", attrList([]attr{
		{"label", WrapLabel("module " + module)}, {"color", moduleColor},
	}))

	added := make(map[string]struct{})
	for _, c := range s.Clusters {
		fmt.Fprintf(&b, "\t\tsubgraph %s {\n", quote("cluster_"+c.Class))
		fmt.Fprintf(&b, "\t\t\tgraph %s\n", attrList([]attr{
			{"label", WrapLabel("class " + c.Class)}, {"color", kindColors["class"].Border}, {"rank", "same"},
		}))
		for _, name := range append([]string{c.Class}, c.Members...) {
			if _, dup := added[name]; dup {
				continue
			}
			s.writeNode(&b, "\t\t\t", name, font)
			added[name] = struct{}{}
		}
		b.WriteString("\t\t}\n")
	}
	for _, n := range s.Nodes {
		if _, ok := added[n.Name]; ok {
			continue
		}
		s.writeNode(&b, "\t\t", n.Name, font)
	}
	b.WriteString("\t}\n")

	for _, e := range s.Edges {
		attrs := []attr{
			{"arrowhead", "normal"}, {"arrowsize", "0.8"}, {"color", e.Color},
			{"penwidth", e.PenWidth}, {"label", e.Label},
		}
		if font != "" {
			attrs = append(attrs, attr{"fontname", font})
		}
		attrs = append(attrs, attr{"fontsize", "10"})
		fmt.Fprintf(&b, "\t%s -> %s %s\n", quote(e.Caller), quote(e.Callee), attrList(attrs))
	}
	b.WriteString("}\n")
	return b.Bytes()
}

func (s *Styled) writeNode(b *bytes.Buffer, indent, name, font string) {
	n, ok := s.Node(name)
	if !ok {
		// a class cluster whose class node was never declared
		n = nodeStyle(name, "", nil, false, false)
	}
	attrs := []attr{{"label", WrapLabel(name)}}
	if font != "" {
		attrs = append(attrs, attr{"fontname", font})
	}
	attrs = append(attrs,
		attr{"id", name}, attr{"URL", URLScheme + name},
		attr{"shape", n.Shape}, attr{"style", n.Style},
		attr{"fillcolor", n.FillColor}, attr{"color", n.Color},
		attr{"peripheries", fmt.Sprint(n.Peripheries)}, attr{"penwidth", n.PenWidth},
	)
	fmt.Fprintf(b, "%s%s %s\n", indent, quote(name), attrList(attrs))
}

type attr struct{ key, value string }

func attrList(attrs []attr) string {
	parts := make([]string, 0, len(attrs))
	for _, a := range attrs {
		parts = append(parts, a.key+"="+quote(a.value))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// quote returns s as a DOT double-quoted string.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}

// WrapLabel breaks text longer than LabelWidth into lines of at most
// LabelWidth characters. Lines break at spaces; a word too long for a line
// fills the rest of the current line and continues on the next.
func WrapLabel(text string) string {
	if utf8.RuneCountInString(text) <= LabelWidth {
		return text
	}
	words := strings.Fields(text)
	var lines []string
	var cur []rune
	for len(words) > 0 {
		w := []rune(words[0])
		sep := 0
		if len(cur) > 0 {
			sep = 1
		}
		if len(cur)+sep+len(w) <= LabelWidth {
			if sep == 1 {
				cur = append(cur, ' ')
			}
			cur = append(cur, w...)
			words = words[1:]
			continue
		}
		if len(w) > LabelWidth {
			if space := LabelWidth - len(cur) - sep; space > 0 {
				if sep == 1 {
					cur = append(cur, ' ')
				}
				cur = append(cur, w[:space]...)
				words[0] = string(w[space:])
			}
		}
		lines = append(lines, string(cur))
		cur = nil
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return strings.Join(lines, "\n")
}
