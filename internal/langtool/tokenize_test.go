package langtool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenTexts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Text
	}
	return out
}

func TestTokenize_WordsAndSentences(t *testing.T) {
	tokens := Tokenize("Hello, world! It's fine.")
	require.Equal(t, []string{"Hello", "world", "It's", "fine"}, tokenTexts(tokens))

	assert.Equal(t, 0, tokens[0].Start)
	assert.Equal(t, 5, tokens[0].End)
	assert.Equal(t, 7, tokens[1].Start)

	starts := []bool{tokens[0].SentenceStart, tokens[1].SentenceStart, tokens[2].SentenceStart, tokens[3].SentenceStart}
	assert.Equal(t, []bool{true, false, true, false}, starts)
}

func TestTokenize_SkipsAddresses(t *testing.T) {
	tokens := Tokenize("See https://example.com/docs or mail me@example.com now")
	assert.Equal(t, []string{"See", "or", "mail", "now"}, tokenTexts(tokens))
}

func TestTokenize_ByteOffsets(t *testing.T) {
	text := "café treee"
	tokens := Tokenize(text)
	require.Len(t, tokens, 2)
	assert.Equal(t, "treee", text[tokens[1].Start:tokens[1].End])
}

func TestTokenize_Punctuation(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"students' work", []string{"students", "work"}},
		{"well-known", []string{"well", "known"}},
		{"(see below)", []string{"see", "below"}},
		{"XXX1(C)", []string{"XXX1", "C"}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := tokenTexts(Tokenize(tt.in))
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenize_InvalidUTF8(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"latin-1 letter inside a word", "na\xefve wrold", []string{"na\xefve", "wrold"}},
		{"latin-1 letter at word end", "A caf\xe9 owner.", []string{"A", "caf\xe9", "owner"}},
		{"lone invalid byte", "\xff", []string{"\xff"}},
		{"apostrophe before invalid byte", "it'\xe9s", []string{"it", "\xe9s"}},
		{"replacement character is not a word rune", "a�b", []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tokens []Token
			require.NotPanics(t, func() { tokens = Tokenize(tt.text) })
			assert.Equal(t, tt.want, tokenTexts(tokens))
			for _, tok := range tokens {
				assert.Equal(t, tok.Text, tt.text[tok.Start:tok.End])
			}
		})
	}
}
