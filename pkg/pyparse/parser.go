// Package pyparse extracts classes, top-level functions, decorators and
// import edges from Python source using tree-sitter.
package pyparse

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// ErrSyntax is returned for source that does not parse cleanly.
var ErrSyntax = errors.New("syntax error")

// ImportClassifier decides whether an import belongs to the project.
// level is the number of leading dots of a relative import.
type ImportClassifier interface {
	Classify(module string, level int) bool
}

var pythonLanguage = tree_sitter.NewLanguage(tree_sitter_python.Language())

// Parser wraps one tree-sitter parser. It is not safe for concurrent use;
// give each worker its own Parser.
type Parser struct {
	ts         *tree_sitter.Parser
	classifier ImportClassifier
}

// NewParser creates a Python parser classifying imports with classifier.
func NewParser(classifier ImportClassifier) (*Parser, error) {
	ts := tree_sitter.NewParser()
	if err := ts.SetLanguage(pythonLanguage); err != nil {
		ts.Close()
		return nil, fmt.Errorf("loading python grammar: %w", err)
	}
	return &Parser{ts: ts, classifier: classifier}, nil
}

// Close releases the underlying tree-sitter parser.
func (p *Parser) Close() {
	p.ts.Close()
}

// ParseFile reads root/rel and parses it. rel is recorded as the module's
// file path.
func (p *Parser) ParseFile(root, rel string) (*ModuleInfo, error) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rel, err)
	}
	return p.Parse(rel, data)
}

// Parse extracts a ModuleInfo from src. Invalid UTF-8 bytes are dropped
// before parsing. A tree containing error or missing nodes yields ErrSyntax.
func (p *Parser) Parse(file string, src []byte) (*ModuleInfo, error) {
	src = []byte(strings.ToValidUTF8(string(src), ""))

	tree := p.ts.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("%s: %w", file, ErrSyntax)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("%s: %w", file, ErrSyntax)
	}

	x := &extractor{
		src:        src,
		mod:        newModule(file),
		classifier: p.classifier,
		internal:   make(map[string]bool),
		external:   make(map[string]bool),
	}
	x.mod.Docstring = moduleDocstring(root, src)
	x.walk(root)
	if x.invalid {
		return nil, fmt.Errorf("%s: %w", file, ErrSyntax)
	}

	x.mod.ImportsInternal = sortedKeys(x.internal)
	x.mod.ImportsExternal = sortedKeys(x.external)
	return x.mod, nil
}

type extractor struct {
	src        []byte
	mod        *ModuleInfo
	classifier ImportClassifier
	internal   map[string]bool
	external   map[string]bool
	// invalid is set by Python 2 statements the grammar still accepts.
	invalid bool
}

// walk visits every node in source order.
func (x *extractor) walk(n *tree_sitter.Node) {
	switch n.Kind() {
	case "class_definition":
		x.class(n)
	case "function_definition":
		if isTopLevel(n) {
			x.function(n)
		}
	case "import_statement":
		x.importStatement(n)
	case "import_from_statement":
		x.importFrom(n)
	case "future_import_statement":
		x.addImport("__future__", 0)
	case "print_statement", "exec_statement":
		x.invalid = true
		return
	}

	for i := uint(0); i < n.NamedChildCount(); i++ {
		if child := n.NamedChild(i); child != nil {
			x.walk(child)
		}
	}
}

// isTopLevel reports whether a definition is a direct statement of the
// module. A decorated definition counts through its wrapper.
func isTopLevel(n *tree_sitter.Node) bool {
	parent := n.Parent()
	if parent != nil && parent.Kind() == "decorated_definition" {
		parent = parent.Parent()
	}
	return parent != nil && parent.Kind() == "module"
}

func (x *extractor) text(n *tree_sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Utf8Text(x.src)
}

func (x *extractor) line(n *tree_sitter.Node) int {
	return int(n.StartPosition().Row) + 1
}

func (x *extractor) class(n *tree_sitter.Node) {
	cls := &ClassInfo{
		Name:       x.text(n.ChildByFieldName("name")),
		Bases:      []string{},
		Methods:    []*MethodInfo{},
		Decorators: x.decorators(n),
		Line:       x.line(n),
	}

	if supers := n.ChildByFieldName("superclasses"); supers != nil {
		for i := uint(0); i < supers.NamedChildCount(); i++ {
			base := supers.NamedChild(i)
			switch base.Kind() {
			case "identifier":
				cls.Bases = append(cls.Bases, x.text(base))
			case "attribute":
				cls.Bases = append(cls.Bases, x.attributeChain(base))
			}
		}
	}

	if body := n.ChildByFieldName("body"); body != nil {
		for i := uint(0); i < body.NamedChildCount(); i++ {
			item := body.NamedChild(i)
			if item.Kind() == "decorated_definition" {
				item = item.ChildByFieldName("definition")
			}
			if item == nil || item.Kind() != "function_definition" {
				continue
			}
			cls.Methods = append(cls.Methods, x.method(item))
		}
	}

	x.mod.Classes = append(x.mod.Classes, cls)
}

func (x *extractor) method(n *tree_sitter.Node) *MethodInfo {
	decorators := x.decorators(n)
	args := x.positionalParams(n.ChildByFieldName("parameters"), !isStatic(decorators))
	return &MethodInfo{
		Name:       x.text(n.ChildByFieldName("name")),
		Decorators: decorators,
		Args:       args,
	}
}

func isStatic(decorators []string) bool {
	for _, d := range decorators {
		if lastSegment(d) == "staticmethod" {
			return true
		}
	}
	return false
}

func (x *extractor) function(n *tree_sitter.Node) {
	fn := &FunctionInfo{
		Name:       x.text(n.ChildByFieldName("name")),
		Decorators: x.decorators(n),
		Args:       []string{},
		IsAsync:    isAsync(n),
		Line:       x.line(n),
	}
	for _, arg := range x.positionalParams(n.ChildByFieldName("parameters"), false) {
		if arg != "self" {
			fn.Args = append(fn.Args, arg)
		}
	}
	if rt := n.ChildByFieldName("return_type"); rt != nil {
		fn.ReturnType = x.annotation(rt)
	}
	x.mod.Functions = append(x.mod.Functions, fn)
}

func isAsync(n *tree_sitter.Node) bool {
	first := n.Child(0)
	return first != nil && first.Kind() == "async"
}

// positionalParams returns the positional-or-keyword parameter names:
// names before "/" are dropped and collection stops at "*", *args or **kwargs.
// With dropReceiver the first positional parameter is skipped, even when it
// is positional-only.
func (x *extractor) positionalParams(params *tree_sitter.Node, dropReceiver bool) []string {
	names := []string{}
	if params == nil {
		return names
	}
	add := func(name string) {
		if dropReceiver {
			dropReceiver = false
			return
		}
		names = append(names, name)
	}
	for i := uint(0); i < params.NamedChildCount(); i++ {
		p := params.NamedChild(i)
		switch p.Kind() {
		case "identifier":
			add(x.text(p))
		case "typed_parameter":
			first := p.NamedChild(0)
			if first == nil || first.Kind() != "identifier" {
				return names
			}
			add(x.text(first))
		case "default_parameter", "typed_default_parameter":
			if name := p.ChildByFieldName("name"); name != nil && name.Kind() == "identifier" {
				add(x.text(name))
			}
		case "positional_separator":
			names = []string{}
		case "list_splat_pattern", "dictionary_splat_pattern", "keyword_separator":
			return names
		}
	}
	return names
}

// decorators resolves the decorators wrapping a class or function definition.
func (x *extractor) decorators(def *tree_sitter.Node) []string {
	out := []string{}
	parent := def.Parent()
	if parent == nil || parent.Kind() != "decorated_definition" {
		return out
	}
	for i := uint(0); i < parent.NamedChildCount(); i++ {
		dec := parent.NamedChild(i)
		if dec.Kind() != "decorator" {
			continue
		}
		out = append(out, x.canonicalName(decoratorExpr(dec)))
	}
	return out
}

func decoratorExpr(dec *tree_sitter.Node) *tree_sitter.Node {
	for i := uint(0); i < dec.NamedChildCount(); i++ {
		if c := dec.NamedChild(i); c.Kind() != "comment" {
			return c
		}
	}
	return nil
}

func (x *extractor) importStatement(n *tree_sitter.Node) {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		name := n.NamedChild(i)
		if name.Kind() == "aliased_import" {
			name = name.ChildByFieldName("name")
		}
		if name == nil || name.Kind() != "dotted_name" {
			continue
		}
		x.addImport(rootSegment(x.dottedName(name)), 0)
	}
}

func (x *extractor) importFrom(n *tree_sitter.Node) {
	src := n.ChildByFieldName("module_name")
	if src == nil {
		return
	}

	var module string
	level := 0
	switch src.Kind() {
	case "dotted_name":
		module = x.dottedName(src)
	case "relative_import":
		for i := uint(0); i < src.NamedChildCount(); i++ {
			c := src.NamedChild(i)
			switch c.Kind() {
			case "import_prefix":
				level = strings.Count(x.text(c), ".")
			case "dotted_name":
				module = x.dottedName(c)
			}
		}
	}
	if module == "" {
		return
	}
	x.addImport(module, level)
}

// addImport records module as an internal edge, or its root segment as an
// external edge.
func (x *extractor) addImport(module string, level int) {
	if x.classifier != nil && x.classifier.Classify(module, level) {
		x.internal[module] = true
		return
	}
	x.external[rootSegment(module)] = true
}

func rootSegment(module string) string {
	root, _, _ := strings.Cut(module, ".")
	return root
}

// dottedName joins a dotted_name's identifiers, ignoring interior whitespace.
func (x *extractor) dottedName(n *tree_sitter.Node) string {
	parts := make([]string, 0, n.NamedChildCount())
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if c := n.NamedChild(i); c.Kind() == "identifier" {
			parts = append(parts, x.text(c))
		}
	}
	return strings.Join(parts, ".")
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
