// # internal/parser/css.go
package parser

import (
	"strings"

	"cascade/internal/core/errors"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_css "github.com/tree-sitter/tree-sitter-css/bindings/go"
)

// CSSExtractor handles plain CSS documents through the tree-sitter grammar.
// It reports custom properties (--name) as variables and every @import as a
// CSS import record, since plain CSS imports are never inlined.
type CSSExtractor struct {
	language *sitter.Language
}

func NewCSSExtractor() *CSSExtractor {
	return &CSSExtractor{language: sitter.NewLanguage(tree_sitter_css.Language())}
}

func (e *CSSExtractor) Extract(source []byte, filePath string) (*SymbolTable, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(e.language); err != nil {
		return nil, err
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, errors.New(errors.CodeParseError, "css parse failed")
	}
	defer tree.Close()

	table := &SymbolTable{
		Document:  filePath,
		Variables: make([]Variable, 0),
		Mixins:    make([]Mixin, 0),
		Functions: make([]Function, 0),
		Imports:   make([]Import, 0),
	}
	walkCSS(tree.RootNode(), source, table)
	return table, nil
}

func walkCSS(node *sitter.Node, source []byte, table *SymbolTable) {
	switch node.Kind() {
	case "import_statement":
		if imp, ok := cssImport(node, source); ok {
			table.Imports = append(table.Imports, imp)
		}
		return
	case "declaration":
		if v, ok := cssCustomProperty(node, source); ok {
			table.Variables = append(table.Variables, v)
		}
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		walkCSS(node.Child(i), source, table)
	}
}

func cssImport(node *sitter.Node, source []byte) (Import, bool) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "string_value":
			raw := strings.Trim(nodeText(child, source), "\"'")
			return Import{Raw: raw, Filepath: raw, CSS: true, Location: nodeLocation(node)}, true
		case "call_expression":
			raw := urlArgument(child, source)
			if raw == "" {
				continue
			}
			return Import{Raw: raw, Filepath: raw, CSS: true, Location: nodeLocation(node)}, true
		}
	}
	return Import{}, false
}

func urlArgument(call *sitter.Node, source []byte) string {
	for i := uint(0); i < call.ChildCount(); i++ {
		child := call.Child(i)
		if child.Kind() != "arguments" {
			continue
		}
		for j := uint(0); j < child.ChildCount(); j++ {
			arg := child.Child(j)
			switch arg.Kind() {
			case "string_value":
				return strings.Trim(nodeText(arg, source), "\"'")
			case "plain_value":
				return nodeText(arg, source)
			}
		}
	}
	return ""
}

func cssCustomProperty(node *sitter.Node, source []byte) (Variable, bool) {
	var name string
	value := make([]string, 0, 2)
	seenColon := false
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		kind := child.Kind()
		if kind == ":" {
			seenColon = true
			continue
		}
		if kind == ";" {
			continue
		}
		if !seenColon {
			if name == "" {
				name = nodeText(child, source)
			}
			continue
		}
		value = append(value, nodeText(child, source))
	}
	if !strings.HasPrefix(name, "--") {
		return Variable{}, false
	}
	return Variable{
		Name:     name,
		Value:    strings.Join(value, " "),
		Offset:   int(node.StartByte()),
		Location: nodeLocation(node),
	}, true
}

func nodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

func nodeLocation(node *sitter.Node) Location {
	return Location{
		Line:   int(node.StartPosition().Row) + 1,
		Column: int(node.StartPosition().Column) + 1,
	}
}
