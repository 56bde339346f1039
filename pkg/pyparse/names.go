package pyparse

import (
	"strconv"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// AnyType is recorded for return annotations that are not a plain name,
// dotted name, constant or subscripted name.
const AnyType = "Any"

// UnknownDecorator is recorded for decorator expressions that do not resolve
// to a name.
const UnknownDecorator = "unknown"

// canonicalName resolves a decorator expression: a name, a dotted chain, or
// a call of either (arguments are dropped).
func (x *extractor) canonicalName(n *tree_sitter.Node) string {
	if n == nil {
		return UnknownDecorator
	}
	switch n.Kind() {
	case "identifier":
		return x.text(n)
	case "attribute":
		return x.attributeChain(n)
	case "call":
		return x.canonicalName(n.ChildByFieldName("function"))
	case "parenthesized_expression":
		return x.canonicalName(n.NamedChild(0))
	}
	return UnknownDecorator
}

// attributeChain renders a.b.c. A base that is not a plain name is dropped,
// so f().g renders as "g".
func (x *extractor) attributeChain(n *tree_sitter.Node) string {
	var parts []string
	for n != nil && n.Kind() == "attribute" {
		parts = append(parts, x.text(n.ChildByFieldName("attribute")))
		n = n.ChildByFieldName("object")
	}
	if n != nil && n.Kind() == "identifier" {
		parts = append(parts, x.text(n))
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// annotation stringifies a return annotation.
func (x *extractor) annotation(n *tree_sitter.Node) string {
	if n.Kind() == "type" {
		if n.NamedChildCount() != 1 {
			return AnyType
		}
		n = n.NamedChild(0)
	}

	switch n.Kind() {
	case "identifier":
		return x.text(n)
	case "attribute":
		return x.attributeChain(n)
	case "member_type":
		return x.memberType(n)
	case "generic_type":
		if base := n.NamedChild(0); base != nil && base.Kind() == "identifier" {
			return x.text(base) + "[...]"
		}
	case "subscript":
		if base := n.ChildByFieldName("value"); base != nil && base.Kind() == "identifier" {
			return x.text(base) + "[...]"
		}
	case "none":
		return "None"
	case "true":
		return "True"
	case "false":
		return "False"
	case "ellipsis":
		return "Ellipsis"
	case "integer":
		return normalizeInt(x.text(n))
	case "float":
		return x.text(n)
	case "string", "concatenated_string":
		if s, ok := x.stringValue(n); ok {
			return s
		}
	}
	return AnyType
}

func (x *extractor) memberType(n *tree_sitter.Node) string {
	var parts []string
	for n != nil && n.Kind() == "member_type" {
		parts = append([]string{x.text(n.NamedChild(n.NamedChildCount() - 1))}, parts...)
		n = n.NamedChild(0)
		if n != nil && n.Kind() == "type" && n.NamedChildCount() == 1 {
			n = n.NamedChild(0)
		}
	}
	if n == nil {
		return AnyType
	}
	switch n.Kind() {
	case "identifier":
		parts = append([]string{x.text(n)}, parts...)
	case "attribute":
		parts = append([]string{x.attributeChain(n)}, parts...)
	}
	return strings.Join(parts, ".")
}

func normalizeInt(lit string) string {
	v, err := strconv.ParseInt(lit, 0, 64)
	if err != nil {
		return lit
	}
	return strconv.FormatInt(v, 10)
}

func lastSegment(dotted string) string {
	if i := strings.LastIndexByte(dotted, '.'); i >= 0 {
		return dotted[i+1:]
	}
	return dotted
}

// stringValue returns the value of a str literal. f-strings and bytes are
// not str constants and report false.
func (x *extractor) stringValue(n *tree_sitter.Node) (string, bool) {
	if n.Kind() == "concatenated_string" {
		var b strings.Builder
		for i := uint(0); i < n.NamedChildCount(); i++ {
			part := n.NamedChild(i)
			if part.Kind() != "string" {
				continue
			}
			s, ok := x.stringValue(part)
			if !ok {
				return "", false
			}
			b.WriteString(s)
		}
		return b.String(), true
	}
	return decodeStringLiteral(x.text(n))
}

// decodeStringLiteral decodes one Python string token such as r'x' or """doc""".
func decodeStringLiteral(lit string) (string, bool) {
	i := 0
	for i < len(lit) && lit[i] != '\'' && lit[i] != '"' {
		i++
	}
	prefix := strings.ToLower(lit[:i])
	if strings.ContainsAny(prefix, "fbt") {
		return "", false
	}
	body := lit[i:]

	var quote string
	switch {
	case strings.HasPrefix(body, `"""`), strings.HasPrefix(body, `'''`):
		quote = body[:3]
	case len(body) > 0:
		quote = body[:1]
	default:
		return "", false
	}
	if len(body) < 2*len(quote) || !strings.HasSuffix(body, quote) {
		return "", false
	}
	content := body[len(quote) : len(body)-len(quote)]

	if strings.Contains(prefix, "r") {
		return content, true
	}
	return unescape(content), true
}

// unescape applies Python str escape sequences. Unknown escapes are kept
// verbatim, as Python does.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch e := s[i]; e {
		case '\n':
		case '\\', '\'', '"':
			b.WriteByte(e)
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case 'x', 'u', 'U':
			width := 2
			switch e {
			case 'u':
				width = 4
			case 'U':
				width = 8
			}
			if end := i + 1 + width; end <= len(s) {
				if v, err := strconv.ParseUint(s[i+1:end], 16, 32); err == nil {
					b.WriteRune(rune(v))
					i = end - 1
					continue
				}
			}
			b.WriteByte('\\')
			b.WriteByte(e)
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			for j < len(s) && j < i+3 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			v, _ := strconv.ParseUint(s[i:j], 8, 32)
			b.WriteRune(rune(v))
			i = j - 1
		default:
			b.WriteByte('\\')
			b.WriteByte(e)
		}
	}
	return b.String()
}
