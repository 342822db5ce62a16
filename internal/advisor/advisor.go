// Package advisor produces refactoring suggestions from simple heuristics
// over the source text and its syntax tree.
package advisor

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codellm-devkit/codeanalyzer-py/internal/pyast"
	"github.com/codellm-devkit/codeanalyzer-py/pkg/schema"
)

// Thresholds.
const (
	MaxSelfAssignments = 3
	MaxBodyStatements  = 20
	MaxNestingDepth    = 3
	MinFunctionName    = 3
)

// Finding codes.
const (
	CodeSyntax      = "syntax"
	CodeDuplication = "duplication"
	CodeLongBody    = "long-body"
	CodeDeepNesting = "deep-nesting"
	CodeUnused      = "unused-variable"
	CodeShortName   = "short-name"
	CodeLoopAppend  = "loop-append"
)

// SyntaxFinding is the only suggestion produced for unparsable code.
func SyntaxFinding() schema.Finding {
	return refactor(CodeSyntax, 0, "Syntax error: check the code syntax. AST analysis was skipped.")
}

func refactor(code string, line int, msg string) schema.Finding {
	return schema.Finding{Category: schema.CategoryRefactor, Code: code, Line: line, Message: msg}
}

// Suggest runs every check in a fixed order. A nil tree means the code
// did not parse and yields exactly one syntax finding.
func Suggest(code []byte, tree *pyast.Tree) []schema.Finding {
	if tree == nil {
		return []schema.Finding{SyntaxFinding()}
	}
	var out []schema.Finding

	if SelfAssignments(string(code)) > MaxSelfAssignments {
		out = append(out, refactor(CodeDuplication, 0, "The same operation is repeated several times; consider extracting a function."))
	}

	var funcs, controls []*sitter.Node
	pyast.Walk(tree.Root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "function_definition":
			funcs = append(funcs, n)
		case "if_statement", "elif_clause", "for_statement", "while_statement":
			controls = append(controls, n)
		}
		return true
	})

	for _, fn := range funcs {
		if len(pyast.Statements(pyast.Body(fn))) > MaxBodyStatements {
			out = append(out, refactor(CodeLongBody, pyast.Line(fn),
				fmt.Sprintf("Function '%s' is too long (more than %d statements); consider splitting it.", tree.Name(fn), MaxBodyStatements)))
		}
	}

	for _, n := range controls {
		if NestingDepth(n) > MaxNestingDepth {
			out = append(out, refactor(CodeDeepNesting, pyast.Line(n),
				fmt.Sprintf("Nesting is too deep at line %d; consider flattening it.", pyast.Line(n))))
		}
	}

	if unused := UnusedBindings(tree); len(unused) > 0 {
		out = append(out, refactor(CodeUnused, 0, "Unused variables: "+strings.Join(unused, ", ")))
	}

	for _, fn := range funcs {
		name := tree.Name(fn)
		if utf8.RuneCountInString(name) < MinFunctionName {
			out = append(out, refactor(CodeShortName, pyast.Line(fn),
				fmt.Sprintf("Function '%s' has a very short name; use a descriptive one.", name)))
		}
	}

	if strings.Contains(string(code), "for ") && strings.Contains(string(code), "append(") {
		out = append(out, refactor(CodeLoopAppend, 0, "A list is built with for + append; consider a comprehension."))
	}
	return out
}

// NestingDepth returns the depth of the deepest statement reachable from n
// through statement bodies. A statement without a body adds nothing.
func NestingDepth(n *sitter.Node) int {
	return nestDepth(n, 0)
}

func nestDepth(n *sitter.Node, depth int) int {
	stmts := pyast.Statements(pyast.Body(pyast.Unwrap(n)))
	if len(stmts) == 0 {
		return depth
	}
	m := depth
	for _, c := range stmts {
		m = max(m, nestDepth(c, depth+1))
	}
	return m
}

// SelfAssignments counts non-overlapping occurrences of a word assigned
// from an expression starting with the same word, such as "x = x + 1".
func SelfAssignments(code string) int {
	rs := []rune(code)
	n := 0
	for i := 0; i < len(rs); {
		if end, ok := matchSelfAssign(rs, i); ok {
			n++
			i = end
			continue
		}
		i++
	}
	return n
}

func matchSelfAssign(rs []rune, i int) (int, bool) {
	j := i
	for j < len(rs) && isWord(rs[j]) {
		j++
	}
	if j == i {
		return 0, false
	}
	word := string(rs[i:j])
	k := skipSpace(rs, j)
	if k >= len(rs) || rs[k] != '=' {
		return 0, false
	}
	k = skipSpace(rs, k+1)
	end := k + (j - i)
	if end > len(rs) || string(rs[k:end]) != word {
		return 0, false
	}
	return end, true
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func skipSpace(rs []rune, i int) int {
	for i < len(rs) && unicode.IsSpace(rs[i]) {
		i++
	}
	return i
}
