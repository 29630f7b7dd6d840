package complexity

import (
	"iter"
	"slices"
	"strings"

	"github.com/panbanda/cyclo/pkg/ast"
)

// Locate yields every function unit under root in pre-order, left to right.
// Nested and class-scoped definitions are yielded as units of their own.
// The sequence is single-pass; call Locate again for a second traversal.
func Locate(root ast.Node, rules *RuleSet, path string) iter.Seq[FunctionUnit] {
	return func(yield func(FunctionUnit) bool) {
		if root == nil {
			return
		}
		l := &locator{rules: rules, path: path, yield: yield}
		l.walk(root, nil)
	}
}

type locator struct {
	rules *RuleSet
	path  string
	yield func(FunctionUnit) bool
}

// walk returns false once the consumer stops pulling.
func (l *locator) walk(n ast.Node, scope []string) bool {
	if l.rules.Boundary(n) {
		name := l.rules.FunctionName(n)
		qualified := scope
		if l.rules.qualifier != nil {
			if q := l.rules.qualifier(n); q != "" {
				qualified = append(slices.Clip(qualified), q)
			}
		}

		span := n.Span()
		unit := FunctionUnit{
			Name:          name,
			QualifiedName: strings.Join(append(slices.Clip(qualified), name), "."),
			Path:          l.path,
			Language:      l.rules.Language,
			StartLine:     span.StartLine,
			EndLine:       span.EndLine,
			Root:          n,
		}
		if !l.yield(unit) {
			return false
		}
		scope = append(slices.Clip(qualified), name)
	} else if name, ok := l.rules.scopeName(n); ok {
		scope = append(slices.Clip(scope), name)
	}

	for i := range n.ChildCount() {
		child := n.Child(i)
		if child == nil {
			continue
		}
		if !l.walk(child, scope) {
			return false
		}
	}
	return true
}
