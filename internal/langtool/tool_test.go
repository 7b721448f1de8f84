package langtool

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spellingOnly(t *testing.T, lang *Language) *Tool {
	t.Helper()
	tool := NewTool(lang)
	for _, r := range tool.ActiveRules() {
		if !r.IsDictionaryBasedSpellingRule() {
			tool.DisableRule(r.ID())
		}
	}
	require.Len(t, tool.ActiveRules(), 1)
	return tool
}

func TestForCode(t *testing.T) {
	us, err := ForCode("en-us")
	require.NoError(t, err)
	assert.Equal(t, "en-US", us.Code)
	assert.Same(t, us, AmericanEnglish(), "languages are cached")

	_, err = ForCode("de-DE")
	assert.ErrorContains(t, err, "unsupported language")

	_, err = ForCode("not a tag!")
	assert.Error(t, err)
}

func TestTool_RulesCanBeDisabled(t *testing.T) {
	tool := NewTool(AmericanEnglish())
	assert.Len(t, tool.AllRules(), 4)
	assert.Len(t, tool.ActiveRules(), 4)

	tool.DisableRule("WHITESPACE_RULE")
	assert.Len(t, tool.ActiveRules(), 3)
	tool.EnableRule("WHITESPACE_RULE")
	assert.Len(t, tool.ActiveRules(), 4)
}

func TestTool_CheckAllRules(t *testing.T) {
	tool := NewTool(AmericanEnglish())
	matches, err := tool.Check("this is is a  test.")
	require.NoError(t, err)

	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.RuleID
	}
	assert.Equal(t, []string{"UPPERCASE_SENTENCE_START", "ENGLISH_WORD_REPEAT_RULE", "WHITESPACE_RULE"}, ids)
}

func TestTool_SpellingMatch(t *testing.T) {
	tool := spellingOnly(t, AmericanEnglish())
	text := "text value italic treee Company"
	matches, err := tool.Check(text)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	m := matches[0]
	assert.Equal(t, "SPELLER_RULE_EN_US", m.RuleID)
	assert.Equal(t, "Possible spelling mistake found.", m.Message)
	assert.Equal(t, "treee Company", text[m.FromPos:])
	assert.Equal(t, "tree", m.SuggestedReplacements[0])
}

func TestTool_SuggestionsKeepCapitalization(t *testing.T) {
	tool := spellingOnly(t, AmericanEnglish())
	matches, err := tool.Check("Treee planting")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Tree", matches[0].SuggestedReplacements[0])
}

func TestTool_SkipsIdentifiersAndAcronyms(t *testing.T) {
	tool := spellingOnly(t, AmericanEnglish())
	matches, err := tool.Check("Set targetName and operation_context for the HTTP API in XXX1.")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestTool_IgnoreTokens(t *testing.T) {
	tool := spellingOnly(t, AmericanEnglish())
	matches, err := tool.Check("Docspell checks statusExplation and widgetry")
	require.NoError(t, err)
	require.Len(t, matches, 2)

	for _, r := range tool.ActiveRules() {
		if adder, ok := r.(IgnoreTokenAdder); ok {
			adder.AddIgnoreTokens([]string{"docspell", " Widgetry "})
		}
	}
	matches, err = tool.Check("Docspell checks statusExplation and widgetry")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSpellingRule_RemoveIgnoreTokens(t *testing.T) {
	rule := newSpellingRule(AmericanEnglish())
	text := "A treee grows."
	tokens := Tokenize(text)

	rule.AddIgnoreTokens([]string{"treee"})
	rule.AddIgnoreTokens([]string{"Treee"})
	assert.Empty(t, rule.Match(text, tokens))

	rule.RemoveIgnoreTokens([]string{"treee"})
	assert.Empty(t, rule.Match(text, tokens), "still added once")

	rule.RemoveIgnoreTokens([]string{"TREEE", "never-added"})
	assert.Len(t, rule.Match(text, tokens), 1)
	assert.Empty(t, rule.ignore)
}

func TestTool_LanguageVariants(t *testing.T) {
	us := spellingOnly(t, AmericanEnglish())
	gb := spellingOnly(t, BritishEnglish())

	usMatches, err := us.Check("The colour of the centre")
	require.NoError(t, err)
	assert.Len(t, usMatches, 2)

	gbMatches, err := gb.Check("The colour of the centre")
	require.NoError(t, err)
	assert.Empty(t, gbMatches)

	gbMatches, err = gb.Check("The color changed")
	require.NoError(t, err)
	assert.Len(t, gbMatches, 1)
}

func TestLanguage_WithWords(t *testing.T) {
	lang, err := AmericanEnglish().WithWords(strings.NewReader("docspell\nasciidoc\n"))
	require.NoError(t, err)

	tool := spellingOnly(t, lang)
	matches, err := tool.Check("Docspell reads asciidoc")
	require.NoError(t, err)
	assert.Empty(t, matches)

	assert.False(t, AmericanEnglish().Dictionary().Contains("docspell"))
}

func TestTool_OrdinaryProse(t *testing.T) {
	prose := "The meeting was postponed because the director was abroad. " +
		"Photosynthesis turns sunlight into energy for green plants. " +
		"Once the lease was negotiated, the gardeners planted tulips, daffodils and lavender along the path. " +
		"They didn't mind the drizzle, and the children next door waved from the orchard."
	for _, lang := range []*Language{AmericanEnglish(), BritishEnglish()} {
		t.Run(lang.Code, func(t *testing.T) {
			matches, err := spellingOnly(t, lang).Check(prose)
			require.NoError(t, err)
			assert.Empty(t, matches)
		})
	}
}

func TestTool_EmptyText(t *testing.T) {
	matches, err := NewTool(AmericanEnglish()).Check("")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestTool_InvalidUTF8(t *testing.T) {
	tool := spellingOnly(t, AmericanEnglish())
	text := "na\xefve wrold"
	var matches []Match
	require.NotPanics(t, func() {
		var err error
		matches, err = tool.Check(text)
		require.NoError(t, err)
	})
	require.Len(t, matches, 2)
	assert.Equal(t, "na\xefve", text[matches[0].FromPos:matches[0].ToPos])
	assert.Equal(t, "wrold", text[matches[1].FromPos:matches[1].ToPos])
	assert.Contains(t, matches[1].SuggestedReplacements, "world")
}
