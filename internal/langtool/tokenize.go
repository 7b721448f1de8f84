package langtool

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Token is one word of checked text. Start and End are byte offsets.
type Token struct {
	Text  string
	Start int
	End   int
	// SentenceStart is set on the first word of a sentence.
	SentenceStart bool
}

// Tokenize splits text into words. Runs of non-space characters that look
// like URLs or email addresses produce no tokens.
func Tokenize(text string) []Token {
	var tokens []Token
	sentenceStart := true

	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}
		end := chunkEnd(text, i)
		chunk := text[i:end]
		if isAddress(chunk) {
			sentenceStart = endsSentence(chunk)
			i = end
			continue
		}
		words := splitWords(chunk, i)
		for k, tok := range words {
			tok.SentenceStart = sentenceStart
			tokens = append(tokens, tok)
			gapEnd := end
			if k+1 < len(words) {
				gapEnd = words[k+1].Start
			}
			sentenceStart = strings.ContainsAny(text[tok.End:gapEnd], ".!?")
		}
		if len(words) == 0 && endsSentence(chunk) {
			sentenceStart = true
		}
		i = end
	}
	return tokens
}

func chunkEnd(text string, start int) int {
	for j, r := range text[start:] {
		if unicode.IsSpace(r) {
			return start + j
		}
	}
	return len(text)
}

func isAddress(chunk string) bool {
	lower := strings.ToLower(chunk)
	return strings.Contains(lower, "://") ||
		strings.HasPrefix(lower, "www.") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.Contains(lower, "@")
}

func endsSentence(s string) bool {
	s = strings.TrimRight(s, `"')]*_`)
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}

// splitWords returns the words of a whitespace-free chunk. Apostrophes are
// kept inside a word; every other non-word rune separates words. Bytes that
// are not valid UTF-8 count as word characters, so mis-encoded letters stay
// inside their word.
func splitWords(chunk string, offset int) []Token {
	var tokens []Token
	start := -1
	flush := func(end int) {
		if start >= 0 {
			word := strings.TrimRight(chunk[start:end], "'’")
			if word != "" {
				tokens = append(tokens, Token{Text: word, Start: offset + start, End: offset + start + len(word)})
			}
			start = -1
		}
	}
	for pos := 0; pos < len(chunk); {
		r, size := utf8.DecodeRuneInString(chunk[pos:])
		invalid := r == utf8.RuneError && size == 1
		switch {
		case invalid || isWordRune(r):
			if start < 0 {
				start = pos
			}
		case (r == '\'' || r == '’') && start >= 0 && startsWithLetter(chunk[pos+size:]):
			// inner apostrophe: don't, it's
		default:
			flush(pos)
		}
		pos += size
	}
	flush(len(chunk))
	return tokens
}

func startsWithLetter(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.Is(unicode.Mn, r)
}
