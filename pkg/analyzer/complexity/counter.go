package complexity

import "github.com/panbanda/cyclo/pkg/ast"

// Score returns the cyclomatic complexity of a function unit:
// one plus every decision point in its own body.
func Score(unit FunctionUnit, rules *RuleSet) int {
	return 1 + CountDecisions(unit.Root, rules).Total()
}

// CountDecisions counts the decision points below root. Descent stops at
// nested function boundaries, whose constructs belong to their own unit.
// Only node kinds and shape are consulted, never source text.
func CountDecisions(root ast.Node, rules *RuleSet) Decisions {
	var d Decisions
	if root == nil {
		return d
	}
	for i := range root.ChildCount() {
		if child := root.Child(i); child != nil {
			countNode(child, root.Kind(), rules, &d)
		}
	}
	return d
}

func countNode(n ast.Node, parent string, rules *RuleSet, d *Decisions) {
	if rules.Boundary(n) {
		return
	}
	if c, ok := rules.ConstructOf(n.Kind()); ok {
		d.add(c)
	} else if c, ok := rules.OperatorOf(parent, n.Kind()); ok {
		d.add(c)
	}
	for i := range n.ChildCount() {
		if child := n.Child(i); child != nil {
			countNode(child, n.Kind(), rules, d)
		}
	}
}
