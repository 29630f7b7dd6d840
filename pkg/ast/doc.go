// Package ast defines the syntax tree contract consumed by the complexity
// engine. A provider turns file contents into a tree of Node values; the
// engine only looks at node kinds, child order, spans and, for naming, the
// text of designated field children.
//
// The tree-sitter implementation lives in the treesitter subpackage.
// StaticNode builds trees in memory, which keeps scoring tests independent
// of any grammar.
//
// Usage:
//
//	provider := treesitter.New()
//	defer provider.Close()
//
//	file, err := provider.Parse("app.py", source)
//	if err != nil {
//	    return err
//	}
//	defer file.Close()
//	if err := file.SyntaxError(); err != nil {
//	    return err
//	}
//	root := file.Root()
package ast
