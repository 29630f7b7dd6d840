package complexity

import (
	"testing"

	"github.com/panbanda/cyclo/pkg/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRulesForSupportedLanguages(t *testing.T) {
	for _, lang := range SupportedLanguages() {
		rules, ok := RulesFor(lang)
		require.True(t, ok, "no rules for %s", lang)
		assert.Equal(t, lang, rules.Language)
	}

	_, ok := RulesFor(ast.LangUnknown)
	assert.False(t, ok)
}

func TestParseLanguages(t *testing.T) {
	langs, err := ParseLanguages([]string{"Python", " go ", "cpp"})
	require.NoError(t, err)
	assert.Equal(t, []ast.Language{ast.LangPython, ast.LangGo, ast.LangCPP}, langs)

	_, err = ParseLanguages([]string{"python", "cobol"})
	assert.ErrorIs(t, err, ast.ErrUnsupportedLanguage)
	assert.Contains(t, err.Error(), "cobol")

	langs, err = ParseLanguages(nil)
	require.NoError(t, err)
	assert.Empty(t, langs)
}
