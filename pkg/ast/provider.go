package ast

import (
	"errors"
	"fmt"
)

// ErrUnsupportedLanguage is returned when parsing a file with an unsupported language.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Language represents a programming language.
type Language string

const (
	LangGo         Language = "go"
	LangRust       Language = "rust"
	LangPython     Language = "python"
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
	LangTSX        Language = "tsx"
	LangJava       Language = "java"
	LangC          Language = "c"
	LangCPP        Language = "cpp"
	LangUnknown    Language = "unknown"
)

// Span is the 1-based line range a node covers.
type Span struct {
	StartLine   int
	StartColumn int
	EndLine     int
}

// Node is one typed node of a parsed syntax tree.
//
// Children include anonymous tokens (such as "&&"), so operator occurrences
// can be recognised by kind alone.
type Node interface {
	// Kind returns the grammar's node type, e.g. "if_statement".
	Kind() string

	// Named reports whether the node is a named grammar rule rather than
	// an anonymous token. A keyword token may share its kind with a rule.
	Named() bool

	// ChildCount returns the number of direct children.
	ChildCount() int

	// Child returns the i-th child, or nil when out of range.
	Child(i int) Node

	// FieldChild returns the child stored under a grammar field, or nil.
	FieldChild(name string) Node

	// Span returns the source location of the node.
	Span() Span

	// Text returns the source text covered by the node.
	Text() string
}

// File provides access to one parsed file.
type File interface {
	// Path returns the file path.
	Path() string

	// Language returns the detected language.
	Language() Language

	// Root returns the root node of the tree.
	Root() Node

	// SyntaxError returns a *SyntaxError describing the first malformed
	// region of the tree, or nil when the tree parsed cleanly.
	SyntaxError() error

	// Close releases the tree. Nodes from Root must not be used afterwards.
	Close()
}

// Provider abstracts turning source into a tree.
type Provider interface {
	// Parse parses source that was read from path.
	Parse(path string, source []byte) (File, error)

	// Language returns the detected language for a file path.
	Language(path string) Language

	// Close releases provider resources.
	Close()
}

// SyntaxError reports where a file failed to parse.
type SyntaxError struct {
	Path   string
	Line   int
	Column int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %s:%d:%d", e.Path, e.Line, e.Column)
}
