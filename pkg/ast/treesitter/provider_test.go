package treesitter

import (
	"context"
	"errors"
	"testing"

	"github.com/panbanda/cyclo/pkg/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderImplementsInterface(t *testing.T) {
	var _ ast.Provider = (*Provider)(nil)
}

func TestProviderParse(t *testing.T) {
	provider := New()
	defer provider.Close()

	source := []byte(`class Greeter:
    def greet(self, name):
        if name and self.loud:
            return name.upper()
        return name
`)
	file, err := provider.Parse("greeter.py", source)
	require.NoError(t, err)

	assert.Equal(t, "greeter.py", file.Path())
	assert.Equal(t, ast.LangPython, file.Language())
	assert.NoError(t, file.SyntaxError())

	root := file.Root()
	require.NotNil(t, root)
	assert.Equal(t, "module", root.Kind())

	class := root.Child(0)
	require.NotNil(t, class)
	assert.Equal(t, "class_definition", class.Kind())
	assert.Equal(t, "Greeter", class.FieldChild("name").Text())
	assert.Equal(t, 1, class.Span().StartLine)
	assert.Equal(t, 5, class.Span().EndLine)

	assert.Nil(t, class.FieldChild("no_such_field"))
	assert.Nil(t, root.Child(root.ChildCount()))
}

func TestProviderAnonymousTokens(t *testing.T) {
	provider := New()
	defer provider.Close()

	file, err := provider.Parse("cond.go", []byte("package p\n\nvar ok = a && b\n"))
	require.NoError(t, err)

	var kinds []string
	var visit func(n ast.Node)
	visit = func(n ast.Node) {
		kinds = append(kinds, n.Kind())
		if n.Kind() == "&&" {
			assert.False(t, n.Named(), "operator tokens are anonymous")
		}
		if n.Kind() == "binary_expression" {
			assert.True(t, n.Named())
		}
		for i := range n.ChildCount() {
			visit(n.Child(i))
		}
	}
	visit(file.Root())

	assert.Contains(t, kinds, "&&")
}

func TestProviderSyntaxError(t *testing.T) {
	provider := New()
	defer provider.Close()

	source := []byte("def ok():\n    return 1\n\ndef broken(:\n    pass\n")
	file, err := provider.Parse("broken.py", source)
	require.NoError(t, err)

	var syntaxErr *ast.SyntaxError
	require.True(t, errors.As(file.SyntaxError(), &syntaxErr))
	assert.Equal(t, "broken.py", syntaxErr.Path)
	assert.GreaterOrEqual(t, syntaxErr.Line, 4)
}

func TestProviderUnsupportedLanguage(t *testing.T) {
	provider := New()
	defer provider.Close()

	_, err := provider.Parse("README.md", []byte("# title"))
	assert.ErrorIs(t, err, ast.ErrUnsupportedLanguage)
}

func TestProviderLanguage(t *testing.T) {
	provider := New()
	defer provider.Close()

	assert.Equal(t, ast.LangPython, provider.Language("a/b.py"))
	assert.Equal(t, ast.LangGo, provider.Language("main.go"))
	assert.Equal(t, ast.LangUnknown, provider.Language("notes.txt"))
}

func TestProviderWithContext(t *testing.T) {
	provider := New()
	defer provider.Close()

	file, err := provider.WithContext(context.Background()).Parse("a.py", []byte("x = 1\n"))
	require.NoError(t, err)
	assert.Equal(t, "module", file.Root().Kind())
}
