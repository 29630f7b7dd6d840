// Package parser owns the tree-sitter grammars and the file extensions
// that select them.
package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/panbanda/cyclo/pkg/ast"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

type grammar struct {
	language   func() *sitter.Language
	extensions []string
}

var grammars = map[ast.Language]grammar{
	ast.LangPython:     {python.GetLanguage, []string{".py", ".pyw", ".pyi"}},
	ast.LangGo:         {golang.GetLanguage, []string{".go"}},
	ast.LangRust:       {rust.GetLanguage, []string{".rs"}},
	ast.LangTypeScript: {typescript.GetLanguage, []string{".ts", ".mts", ".cts"}},
	ast.LangTSX:        {tsx.GetLanguage, []string{".tsx", ".jsx"}},
	ast.LangJavaScript: {javascript.GetLanguage, []string{".js", ".mjs", ".cjs"}},
	ast.LangJava:       {java.GetLanguage, []string{".java"}},
	ast.LangC:          {c.GetLanguage, []string{".c", ".h"}},
	ast.LangCPP:        {cpp.GetLanguage, []string{".cpp", ".cc", ".cxx", ".hpp", ".hxx"}},
}

var byExtension = func() map[string]ast.Language {
	m := make(map[string]ast.Language)
	for lang, g := range grammars {
		for _, ext := range g.extensions {
			m[ext] = lang
		}
	}
	return m
}()

// DetectLanguage maps a path onto a language by its extension, ignoring case.
func DetectLanguage(path string) ast.Language {
	if lang, ok := byExtension[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return ast.LangUnknown
}

// Grammar returns the tree-sitter grammar for lang.
func Grammar(lang ast.Language) (*sitter.Language, error) {
	g, ok := grammars[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ast.ErrUnsupportedLanguage, lang)
	}
	return g.language(), nil
}

// Parser is a tree-sitter parser that switches grammar as needed.
// A Parser is not safe for concurrent use; give each worker its own.
type Parser struct {
	parser *sitter.Parser
	lang   ast.Language
}

// New creates a parser with no grammar selected.
func New() *Parser {
	return &Parser{parser: sitter.NewParser()}
}

// Result is one parsed file.
type Result struct {
	Tree     *sitter.Tree
	Language ast.Language
	Source   []byte
	Path     string
}

// Close frees the tree's C memory without waiting for the finalizer.
func (r *Result) Close() {
	if r.Tree != nil {
		r.Tree.Close()
	}
}

// Parse parses source as lang. Cancelling ctx aborts a long parse.
func (p *Parser) Parse(ctx context.Context, source []byte, lang ast.Language, path string) (*Result, error) {
	if lang != p.lang {
		g, err := Grammar(lang)
		if err != nil {
			return nil, err
		}
		p.parser.SetLanguage(g)
		p.lang = lang
	}

	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &Result{Tree: tree, Language: lang, Source: source, Path: path}, nil
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// Visitor is called with each node and its cached type. Returning false
// skips the node's children.
type Visitor func(node *sitter.Node, nodeType string) bool

// Walk traverses the tree under node depth-first in source order.
func Walk(node *sitter.Node, visit Visitor) {
	if node == nil {
		return
	}
	if !visit(node, node.Type()) {
		return
	}
	for i := range int(node.ChildCount()) {
		Walk(node.Child(i), visit)
	}
}

// FirstError returns the first ERROR or MISSING node under root in source
// order, or nil when the tree parsed cleanly.
func FirstError(root *sitter.Node) *sitter.Node {
	if root == nil || !root.HasError() {
		return nil
	}

	var bad *sitter.Node
	Walk(root, func(n *sitter.Node, nodeType string) bool {
		if bad != nil {
			return false
		}
		if nodeType == "ERROR" || n.IsMissing() {
			bad = n
			return false
		}
		// Only error-bearing subtrees can hold it.
		return n.HasError()
	})
	return bad
}

// NodeText returns the source covered by node, or "" when node is nil or
// its offsets fall outside source.
func NodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}
