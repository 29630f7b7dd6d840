package complexity

import (
	"testing"

	"github.com/panbanda/cyclo/pkg/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var node = ast.NewStaticNode

func ident(name string) *ast.StaticNode {
	return node("identifier").WithText(name)
}

func pyFunc(name string, body ...*ast.StaticNode) *ast.StaticNode {
	fn := node("function_definition", node("def"))
	if name != "" {
		fn.WithField("name", ident(name))
	}
	return fn.WithField("body", node("block", body...))
}

func pythonRules(t *testing.T) *RuleSet {
	t.Helper()
	rules, ok := RulesFor(ast.LangPython)
	require.True(t, ok)
	return rules
}

func TestScore_NoConstructs(t *testing.T) {
	rules := pythonRules(t)
	fn := pyFunc("simple", node("return_statement", node("true")))

	assert.Equal(t, 1, Score(FunctionUnit{Root: fn}, rules))
}

func TestScore_IfElifBoolOps(t *testing.T) {
	rules := pythonRules(t)

	// if a and b or c: ... elif a: ... else: ...
	cond := node("boolean_operator",
		node("boolean_operator", ident("a"), node("and"), ident("b")),
		node("or"), ident("c"))
	ifStmt := node("if_statement", node("if"), cond, node("block"),
		node("elif_clause", node("elif"), ident("a"), node("block")),
		node("else_clause", node("else"), node("block")))
	fn := pyFunc("f", ifStmt)

	d := CountDecisions(fn, rules)
	assert.Equal(t, Decisions{If: 1, ElseIf: 1, BoolOp: 2}, d)
	assert.Equal(t, 5, Score(FunctionUnit{Root: fn}, rules))
}

func TestScore_StopsAtNestedBoundary(t *testing.T) {
	rules := pythonRules(t)

	inner := pyFunc("inner", node("for_statement", node("block")))
	outer := pyFunc("outer",
		node("try_statement", node("block", inner),
			node("except_clause", node("block"))))

	assert.Equal(t, 3, Score(FunctionUnit{Root: outer}, rules))
	assert.Equal(t, 2, Score(FunctionUnit{Root: inner}, rules))
}

func TestScore_NestingInvariant(t *testing.T) {
	rules := pythonRules(t)

	base := pyFunc("g", node("if_statement", node("block")), node("while_statement", node("block")))
	before := Score(FunctionUnit{Root: base}, rules)

	// Adding a nested definition full of constructs must not change the
	// enclosing score.
	nested := pyFunc("h",
		node("if_statement", node("block")),
		node("with_statement", node("block")),
		node("boolean_operator", ident("x"), node("or"), ident("y")))
	withNested := pyFunc("g",
		node("if_statement", node("block")),
		node("while_statement", node("block")),
		nested)

	assert.Equal(t, before, Score(FunctionUnit{Root: withNested}, rules))
	assert.Equal(t, 3, before)
}

func TestScore_ExceptGroupAndWith(t *testing.T) {
	rules := pythonRules(t)
	fn := pyFunc("f",
		node("with_statement", node("block",
			node("try_statement", node("block"),
				node("except_group_clause", node("block")),
				node("except_clause", node("block")),
				node("finally_clause", node("block"))))))

	d := CountDecisions(fn, rules)
	assert.Equal(t, 1, d.With)
	assert.Equal(t, 1, d.Try)
	assert.Equal(t, 2, d.Handler)
	assert.Equal(t, 5, 1+d.Total())
}

func TestScore_UnknownKindsIgnored(t *testing.T) {
	rules := pythonRules(t)
	fn := pyFunc("f",
		node("match_statement", node("case_clause"), node("case_clause")),
		node("conditional_expression"),
		node("list_comprehension", node("for_in_clause"), node("if_clause")))

	assert.Equal(t, 1, Score(FunctionUnit{Root: fn}, rules))
}

func TestCountDecisions_NilRoot(t *testing.T) {
	assert.Equal(t, Decisions{}, CountDecisions(nil, pythonRules(t)))
}

func TestScore_CFamilyShortCircuit(t *testing.T) {
	rules, ok := RulesFor(ast.LangGo)
	require.True(t, ok)

	// if a && b || c {} else if d {}
	cond := node("binary_expression",
		node("binary_expression", ident("a"), node("&&"), ident("b")),
		node("||"), ident("c"))
	elseIf := node("if_statement", node("if"), ident("d"), node("block"))
	fn := node("function_declaration",
		node("if_statement", node("if"), cond, node("block"), node("else"), elseIf))
	fn.WithField("name", ident("run"))

	d := CountDecisions(fn, rules)
	assert.Equal(t, 2, d.If)
	assert.Equal(t, 2, d.BoolOp)
	assert.Equal(t, 5, Score(FunctionUnit{Root: fn}, rules))
}

func TestScore_OperatorTokensNeedBinaryParent(t *testing.T) {
	rules, ok := RulesFor(ast.LangCPP)
	require.True(t, ok)

	// void f(T&& s) { return a and b; }
	param := node("parameter_declaration",
		node("type_identifier"),
		node("reference_declarator", node("&&").Token(), ident("s")))
	and := node("binary_expression", ident("a"), node("and").Token(), ident("b"))
	fn := node("function_definition",
		node("function_declarator", ident("f"), node("parameter_list", param)),
		node("compound_statement", node("return_statement", and)))

	d := CountDecisions(fn, rules)
	assert.Equal(t, 1, d.BoolOp)
	assert.Equal(t, 2, Score(FunctionUnit{Root: fn}, rules))

	c, ok := rules.OperatorOf("reference_declarator", "&&")
	assert.False(t, ok)
	c, ok = rules.OperatorOf("binary_expression", "&&")
	assert.True(t, ok)
	assert.Equal(t, ConstructBoolOp, c)
}

func TestDecisionsTotal(t *testing.T) {
	d := Decisions{If: 1, ElseIf: 2, For: 3, While: 4, Try: 5, Handler: 6, With: 7, BoolOp: 8}
	assert.Equal(t, 36, d.Total())
}

func TestBoundary_IgnoresKeywordTokens(t *testing.T) {
	rules, ok := RulesFor(ast.LangJavaScript)
	require.True(t, ok)

	keyword := node("function").Token()
	expr := node("function", keyword, node("formal_parameters"), node("statement_block"))

	assert.False(t, rules.Boundary(keyword))
	assert.True(t, rules.Boundary(expr))
}
