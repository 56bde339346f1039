package pyparse

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// moduleDocstring returns the cleaned docstring of a module: the str literal
// forming its first statement. Comments do not count as statements.
func moduleDocstring(root *tree_sitter.Node, src []byte) string {
	x := &extractor{src: src}
	for i := uint(0); i < root.NamedChildCount(); i++ {
		stmt := root.NamedChild(i)
		if stmt.Kind() == "comment" {
			continue
		}
		if stmt.Kind() != "expression_statement" || stmt.NamedChildCount() != 1 {
			return ""
		}
		lit := stmt.NamedChild(0)
		if lit.Kind() != "string" && lit.Kind() != "concatenated_string" {
			return ""
		}
		s, ok := x.stringValue(lit)
		if !ok {
			return ""
		}
		return cleandoc(s)
	}
	return ""
}

// cleandoc normalizes docstring indentation: tabs are expanded, the first
// line is left-trimmed, the common indent of the remaining lines is removed
// and leading and trailing blank lines are dropped.
func cleandoc(doc string) string {
	lines := strings.Split(expandTabs(doc, 8), "\n")

	margin := -1
	for _, l := range lines[1:] {
		content := strings.TrimLeft(l, " ")
		if content == "" {
			continue
		}
		indent := len(l) - len(content)
		if margin < 0 || indent < margin {
			margin = indent
		}
	}

	lines[0] = strings.TrimLeft(lines[0], " ")
	if margin > 0 {
		for i := 1; i < len(lines); i++ {
			if len(lines[i]) > margin {
				lines[i] = lines[i][margin:]
			} else {
				lines[i] = ""
			}
		}
	}

	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	return strings.Join(lines, "\n")
}

func expandTabs(s string, size int) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		switch r {
		case '\t':
			n := size - col%size
			b.WriteString(strings.Repeat(" ", n))
			col += n
		case '\n', '\r':
			b.WriteRune(r)
			col = 0
		default:
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}
