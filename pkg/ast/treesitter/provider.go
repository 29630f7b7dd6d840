// Package treesitter implements ast.Provider on top of tree-sitter grammars.
package treesitter

import (
	"context"

	"github.com/panbanda/cyclo/pkg/ast"
	"github.com/panbanda/cyclo/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

var _ ast.Provider = (*Provider)(nil)

// Provider implements ast.Provider using tree-sitter.
// Like the parser it wraps, a Provider must not be shared between goroutines.
type Provider struct {
	parser *parser.Parser
	ctx    context.Context
}

// New creates a new tree-sitter based provider.
func New() *Provider {
	return NewWithParser(parser.New())
}

// NewWithParser creates a provider that reuses an existing parser.
// The provider takes ownership and closes it on Close.
func NewWithParser(p *parser.Parser) *Provider {
	return &Provider{parser: p, ctx: context.Background()}
}

// WithContext returns a provider whose parses are cancelled with ctx.
func (p *Provider) WithContext(ctx context.Context) *Provider {
	return &Provider{parser: p.parser, ctx: ctx}
}

// Parse parses source that was read from path.
func (p *Provider) Parse(path string, source []byte) (ast.File, error) {
	lang := parser.DetectLanguage(path)
	if lang == ast.LangUnknown {
		return nil, ast.ErrUnsupportedLanguage
	}

	result, err := p.parser.Parse(p.ctx, source, lang, path)
	if err != nil {
		return nil, err
	}
	return &file{result: result}, nil
}

// Language returns the detected language for a file path.
func (p *Provider) Language(path string) ast.Language {
	return parser.DetectLanguage(path)
}

// Close releases parser resources.
func (p *Provider) Close() {
	p.parser.Close()
}

// file wraps a parser.Result to implement ast.File.
type file struct {
	result *parser.Result
}

func (f *file) Path() string {
	return f.result.Path
}

func (f *file) Language() ast.Language {
	return f.result.Language
}

func (f *file) Root() ast.Node {
	return wrap(f.result.Tree.RootNode(), f.result.Source)
}

func (f *file) Close() {
	f.result.Close()
}

func (f *file) SyntaxError() error {
	root := f.result.Tree.RootNode()
	if !root.HasError() {
		return nil
	}

	bad := parser.FirstError(root)
	if bad == nil {
		// HasError without an ERROR or MISSING node; blame the root.
		bad = root
	}
	start := bad.StartPoint()
	return &ast.SyntaxError{
		Path:   f.result.Path,
		Line:   int(start.Row) + 1,
		Column: int(start.Column) + 1,
	}
}

// node adapts *sitter.Node to ast.Node.
type node struct {
	n      *sitter.Node
	source []byte
}

func wrap(n *sitter.Node, source []byte) ast.Node {
	if n == nil || n.IsNull() {
		return nil
	}
	return &node{n: n, source: source}
}

func (n *node) Kind() string { return n.n.Type() }

func (n *node) Named() bool { return n.n.IsNamed() }

func (n *node) ChildCount() int { return int(n.n.ChildCount()) }

func (n *node) Child(i int) ast.Node {
	if i < 0 || i >= int(n.n.ChildCount()) {
		return nil
	}
	return wrap(n.n.Child(i), n.source)
}

func (n *node) FieldChild(name string) ast.Node {
	return wrap(n.n.ChildByFieldName(name), n.source)
}

func (n *node) Span() ast.Span {
	start, end := n.n.StartPoint(), n.n.EndPoint()
	return ast.Span{
		StartLine:   int(start.Row) + 1,
		StartColumn: int(start.Column) + 1,
		EndLine:     int(end.Row) + 1,
	}
}

func (n *node) Text() string { return parser.NodeText(n.n, n.source) }
