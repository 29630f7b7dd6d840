package complexity

import (
	"fmt"
	"strings"

	"github.com/panbanda/cyclo/pkg/ast"
)

// Construct is a category of decision point counted by the scorer.
type Construct int

const (
	ConstructIf Construct = iota
	ConstructElseIf
	ConstructFor
	ConstructWhile
	ConstructTry
	ConstructHandler
	ConstructWith
	ConstructBoolOp
)

// AnonymousName is used for function units whose definition has no name.
const AnonymousName = "<anonymous>"

// RuleSet maps one grammar's node kinds onto function boundaries and
// counted constructs.
type RuleSet struct {
	Language ast.Language

	// boundaries are the node kinds that start a new FunctionUnit. The
	// locator emits at them and the counter stops descending at them.
	boundaries map[string]bool

	// constructs are the node kinds that add one to the score.
	constructs map[string]Construct

	// operators are anonymous operator tokens counted only where they
	// operate, not where the grammar reuses them for something else.
	operators operatorRule

	// scopes are non-function kinds that contribute a segment to qualified
	// names, keyed to the field holding their name.
	scopes map[string]string

	// qualifier, when set, returns an extra name segment for a boundary
	// node, such as a Go method receiver type.
	qualifier func(ast.Node) string
}

// IsBoundary reports whether kind starts a new function unit.
func (r *RuleSet) IsBoundary(kind string) bool {
	return r.boundaries[kind]
}

// Boundary reports whether n starts a new function unit. Anonymous tokens
// never do, even when a keyword shares its kind with a definition rule.
// The locator and the counter both use this predicate.
func (r *RuleSet) Boundary(n ast.Node) bool {
	return n.Named() && r.IsBoundary(n.Kind())
}

// ConstructOf returns the construct counted for kind, if any.
func (r *RuleSet) ConstructOf(kind string) (Construct, bool) {
	c, ok := r.constructs[kind]
	return c, ok
}

// operatorRule counts a token kind only when its parent is one of the
// listed expression kinds. In C++, && is also the rvalue reference token
// of a reference_declarator.
type operatorRule struct {
	parents map[string]bool
	tokens  map[string]Construct
}

// OperatorOf returns the construct counted for an operator token of kind
// whose parent node has kind parent, if any.
func (r *RuleSet) OperatorOf(parent, kind string) (Construct, bool) {
	if !r.operators.parents[parent] {
		return 0, false
	}
	c, ok := r.operators.tokens[kind]
	return c, ok
}

// RulesFor returns the rule set for lang.
func RulesFor(lang ast.Language) (*RuleSet, bool) {
	r, ok := ruleSets[lang]
	return r, ok
}

// SupportedLanguages lists every language that has a rule set.
func SupportedLanguages() []ast.Language {
	return []ast.Language{
		ast.LangPython,
		ast.LangGo,
		ast.LangJavaScript,
		ast.LangTypeScript,
		ast.LangTSX,
		ast.LangJava,
		ast.LangRust,
		ast.LangC,
		ast.LangCPP,
	}
}

// ParseLanguages maps language names onto languages with a rule set.
// Names are case-insensitive; an unknown name wraps ast.ErrUnsupportedLanguage.
func ParseLanguages(names []string) ([]ast.Language, error) {
	langs := make([]ast.Language, 0, len(names))
	for _, name := range names {
		lang := ast.Language(strings.ToLower(strings.TrimSpace(name)))
		if _, ok := ruleSets[lang]; !ok {
			return nil, fmt.Errorf("%w: %q", ast.ErrUnsupportedLanguage, name)
		}
		langs = append(langs, lang)
	}
	return langs, nil
}

var ruleSets = buildRuleSets()

func buildRuleSets() map[ast.Language]*RuleSet {
	// && and || are anonymous tokens in every C-family grammar, so each
	// operator occurrence is its own node.
	shortCircuit := operatorRule{
		parents: makeSet("binary_expression"),
		tokens: map[string]Construct{
			"&&": ConstructBoolOp,
			"||": ConstructBoolOp,
		},
	}
	// C++ also spells them as the alternative tokens and/or.
	cppShortCircuit := operatorRule{
		parents: shortCircuit.parents,
		tokens: map[string]Construct{
			"&&":  ConstructBoolOp,
			"||":  ConstructBoolOp,
			"and": ConstructBoolOp,
			"or":  ConstructBoolOp,
		},
	}

	python := &RuleSet{
		Language:   ast.LangPython,
		boundaries: makeSet("function_definition"),
		constructs: map[string]Construct{
			"if_statement":        ConstructIf,
			"elif_clause":         ConstructElseIf,
			"for_statement":       ConstructFor,
			"while_statement":     ConstructWhile,
			"try_statement":       ConstructTry,
			"except_clause":       ConstructHandler,
			"except_group_clause": ConstructHandler,
			"with_statement":      ConstructWith,
			// a and b or c nests two boolean_operator nodes
			"boolean_operator": ConstructBoolOp,
		},
		scopes: map[string]string{"class_definition": "name"},
	}

	golang := &RuleSet{
		Language:   ast.LangGo,
		boundaries: makeSet("function_declaration", "method_declaration", "func_literal"),
		constructs: map[string]Construct{
			"if_statement":  ConstructIf,
			"for_statement": ConstructFor,
		},
		operators: shortCircuit,
		qualifier: goReceiver,
	}

	jsConstructs := map[string]Construct{
		"if_statement":     ConstructIf,
		"for_statement":    ConstructFor,
		"for_in_statement": ConstructFor,
		"while_statement":  ConstructWhile,
		"do_statement":     ConstructWhile,
		"try_statement":    ConstructTry,
		"catch_clause":     ConstructHandler,
	}
	jsBoundaries := makeSet(
		"function_declaration",
		"function_expression",
		"function",
		"arrow_function",
		"method_definition",
		"generator_function_declaration",
		"generator_function",
	)
	jsScopes := map[string]string{
		"class_declaration":          "name",
		"class":                      "name",
		"abstract_class_declaration": "name",
	}
	js := func(lang ast.Language) *RuleSet {
		return &RuleSet{
			Language:   lang,
			boundaries: jsBoundaries,
			constructs: jsConstructs,
			operators:  shortCircuit,
			scopes:     jsScopes,
		}
	}

	java := &RuleSet{
		Language:   ast.LangJava,
		boundaries: makeSet("method_declaration", "constructor_declaration", "lambda_expression"),
		constructs: map[string]Construct{
			"if_statement":                 ConstructIf,
			"for_statement":                ConstructFor,
			"enhanced_for_statement":       ConstructFor,
			"while_statement":              ConstructWhile,
			"do_statement":                 ConstructWhile,
			"try_statement":                ConstructTry,
			"try_with_resources_statement": ConstructWith,
			"catch_clause":                 ConstructHandler,
		},
		operators: shortCircuit,
		scopes: map[string]string{
			"class_declaration":     "name",
			"interface_declaration": "name",
			"enum_declaration":      "name",
			"record_declaration":    "name",
		},
	}

	rust := &RuleSet{
		Language:   ast.LangRust,
		boundaries: makeSet("function_item", "closure_expression"),
		constructs: map[string]Construct{
			"if_expression":    ConstructIf,
			"for_expression":   ConstructFor,
			"while_expression": ConstructWhile,
			"loop_expression":  ConstructWhile,
		},
		operators: shortCircuit,
		scopes: map[string]string{
			"impl_item":  "type",
			"trait_item": "name",
			"mod_item":   "name",
		},
	}

	cConstructs := map[string]Construct{
		"if_statement":    ConstructIf,
		"for_statement":   ConstructFor,
		"for_range_loop":  ConstructFor,
		"while_statement": ConstructWhile,
		"do_statement":    ConstructWhile,
		"try_statement":   ConstructTry,
		"catch_clause":    ConstructHandler,
	}
	c := &RuleSet{
		Language:   ast.LangC,
		boundaries: makeSet("function_definition"),
		constructs: cConstructs,
		operators:  shortCircuit,
	}
	cpp := &RuleSet{
		Language:   ast.LangCPP,
		boundaries: makeSet("function_definition", "lambda_expression"),
		constructs: cConstructs,
		operators:  cppShortCircuit,
		scopes: map[string]string{
			"class_specifier":      "name",
			"struct_specifier":     "name",
			"namespace_definition": "name",
		},
	}

	return map[ast.Language]*RuleSet{
		ast.LangPython:     python,
		ast.LangGo:         golang,
		ast.LangJavaScript: js(ast.LangJavaScript),
		ast.LangTypeScript: js(ast.LangTypeScript),
		ast.LangTSX:        js(ast.LangTSX),
		ast.LangJava:       java,
		ast.LangRust:       rust,
		ast.LangC:          c,
		ast.LangCPP:        cpp,
	}
}

// FunctionName returns the declared name of a boundary node, or
// AnonymousName when the grammar gives it none.
func (r *RuleSet) FunctionName(n ast.Node) string {
	if name := n.FieldChild("name"); name != nil {
		if text := name.Text(); text != "" {
			return text
		}
	}

	// C and C++ bury the name in nested declarators.
	if decl := n.FieldChild("declarator"); decl != nil {
		if text := declaratorName(decl); text != "" {
			return text
		}
	}

	return AnonymousName
}

// scopeName returns the qualified-name segment contributed by a scope node.
func (r *RuleSet) scopeName(n ast.Node) (string, bool) {
	field, ok := r.scopes[n.Kind()]
	if !ok {
		return "", false
	}
	if name := n.FieldChild(field); name != nil && name.Text() != "" {
		return name.Text(), true
	}
	return AnonymousName, true
}

func declaratorName(n ast.Node) string {
	for n != nil {
		switch n.Kind() {
		case "identifier", "field_identifier", "qualified_identifier",
			"destructor_name", "operator_name", "type_identifier":
			return n.Text()
		}
		n = n.FieldChild("declarator")
	}
	return ""
}

// goReceiver returns the receiver type name of a Go method declaration.
func goReceiver(n ast.Node) string {
	if n.Kind() != "method_declaration" {
		return ""
	}
	recv := n.FieldChild("receiver")
	if recv == nil {
		return ""
	}
	if id := firstOfKind(recv, "type_identifier"); id != nil {
		return strings.TrimSpace(id.Text())
	}
	return ""
}

func firstOfKind(n ast.Node, kind string) ast.Node {
	if n.Kind() == kind {
		return n
	}
	for i := range n.ChildCount() {
		if c := n.Child(i); c != nil {
			if found := firstOfKind(c, kind); found != nil {
				return found
			}
		}
	}
	return nil
}

// makeSet converts a list of kinds to a map for O(1) lookups.
func makeSet(items ...string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
