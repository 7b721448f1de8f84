package langtool

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Match is one flagged span of checked text. Offsets are bytes into the
// text passed to Check.
type Match struct {
	RuleID                string   `json:"rule_id"`
	Message               string   `json:"message"`
	ShortMessage          string   `json:"short_message,omitempty"`
	FromPos               int      `json:"from_pos"`
	ToPos                 int      `json:"to_pos"`
	SuggestedReplacements []string `json:"suggested_replacements"`
}

// Rule inspects tokenized text and reports matches.
type Rule interface {
	ID() string
	Description() string
	IsDictionaryBasedSpellingRule() bool
	Match(text string, tokens []Token) []Match
}

// IgnoreTokenAdder is implemented by rules that accept extra words.
type IgnoreTokenAdder interface {
	AddIgnoreTokens(words []string)
}

// IgnoreTokenRemover is implemented by rules whose extra words can be
// withdrawn again.
type IgnoreTokenRemover interface {
	RemoveIgnoreTokens(words []string)
}

// maxSuggestions caps the replacements offered per spelling match.
const maxSuggestions = 5

// SpellingRule flags words missing from the language dictionary.
type SpellingRule struct {
	id     string
	dict   *Dictionary
	tag    language.Tag
	ignore map[string]int
}

func newSpellingRule(lang *Language) *SpellingRule {
	return &SpellingRule{
		id:     "SPELLER_RULE_" + strings.ToUpper(strings.ReplaceAll(lang.Code, "-", "_")),
		dict:   lang.dict,
		tag:    lang.Tag,
		ignore: make(map[string]int),
	}
}

func (r *SpellingRule) ID() string                          { return r.id }
func (r *SpellingRule) Description() string                 { return "Possible spelling mistake" }
func (r *SpellingRule) IsDictionaryBasedSpellingRule() bool { return true }

// AddIgnoreTokens accepts words in addition to the dictionary. Words are
// counted, so a word added twice stays ignored until removed twice.
func (r *SpellingRule) AddIgnoreTokens(words []string) {
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w != "" {
			r.ignore[foldWord(w)]++
		}
	}
}

// RemoveIgnoreTokens withdraws words added by AddIgnoreTokens.
func (r *SpellingRule) RemoveIgnoreTokens(words []string) {
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		key := foldWord(w)
		if r.ignore[key] <= 1 {
			delete(r.ignore, key)
		} else {
			r.ignore[key]--
		}
	}
}

func (r *SpellingRule) Match(text string, tokens []Token) []Match {
	var matches []Match
	for _, tok := range tokens {
		if r.skip(tok.Text) || r.dict.Contains(tok.Text) {
			continue
		}
		matches = append(matches, Match{
			RuleID:                r.id,
			Message:               "Possible spelling mistake found.",
			ShortMessage:          "Spelling mistake",
			FromPos:               tok.Start,
			ToPos:                 tok.End,
			SuggestedReplacements: r.suggest(tok.Text),
		})
	}
	return matches
}

// skip reports words the speller never flags: single letters, words with
// digits or underscores, acronyms, camelCase identifiers and ignored words.
func (r *SpellingRule) skip(word string) bool {
	if utf8.RuneCountInString(word) < 2 {
		return true
	}
	if strings.ContainsFunc(word, func(c rune) bool { return unicode.IsDigit(c) || c == '_' }) {
		return true
	}
	if isAllUpper(word) {
		return true
	}
	for i, c := range word {
		if i > 0 && unicode.IsUpper(c) {
			return true
		}
	}
	return r.ignore[foldWord(word)] > 0
}

// suggest matches the capitalization of the original word.
func (r *SpellingRule) suggest(word string) []string {
	suggestions := r.dict.Suggest(word, maxSuggestions)
	first, _ := utf8.DecodeRuneInString(word)
	if unicode.IsUpper(first) {
		title := cases.Title(r.tag)
		for i, s := range suggestions {
			suggestions[i] = title.String(s)
		}
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	return suggestions
}

// UppercaseSentenceStartRule flags sentences starting with a lower case letter.
type UppercaseSentenceStartRule struct{}

func (UppercaseSentenceStartRule) ID() string                          { return "UPPERCASE_SENTENCE_START" }
func (UppercaseSentenceStartRule) Description() string                 { return "Checks that a sentence starts with an uppercase letter" }
func (UppercaseSentenceStartRule) IsDictionaryBasedSpellingRule() bool { return false }

func (r UppercaseSentenceStartRule) Match(text string, tokens []Token) []Match {
	var matches []Match
	for _, tok := range tokens {
		if !tok.SentenceStart {
			continue
		}
		first, _ := utf8.DecodeRuneInString(tok.Text)
		if !unicode.IsLower(first) {
			continue
		}
		matches = append(matches, Match{
			RuleID:                r.ID(),
			Message:               "This sentence does not start with an uppercase letter.",
			FromPos:               tok.Start,
			ToPos:                 tok.End,
			SuggestedReplacements: []string{cases.Title(language.Und, cases.NoLower).String(tok.Text)},
		})
	}
	return matches
}

// WhitespaceRule flags repeated spaces inside a line.
type WhitespaceRule struct{}

func (WhitespaceRule) ID() string                          { return "WHITESPACE_RULE" }
func (WhitespaceRule) Description() string                 { return "Whitespace repetition" }
func (WhitespaceRule) IsDictionaryBasedSpellingRule() bool { return false }

func (r WhitespaceRule) Match(text string, _ []Token) []Match {
	var matches []Match
	for i := 0; i < len(text); i++ {
		if text[i] != ' ' || i+1 >= len(text) || text[i+1] != ' ' {
			continue
		}
		j := i
		for j < len(text) && text[j] == ' ' {
			j++
		}
		// Leading indentation is not a typo.
		if i > 0 && text[i-1] != '\n' {
			matches = append(matches, Match{
				RuleID:                r.ID(),
				Message:               "Possible typo: you repeated a whitespace",
				FromPos:               i,
				ToPos:                 j,
				SuggestedReplacements: []string{" "},
			})
		}
		i = j
	}
	return matches
}

// WordRepeatRule flags the same word written twice in a row.
type WordRepeatRule struct {
	id string
}

func (r WordRepeatRule) ID() string                        { return r.id }
func (WordRepeatRule) Description() string                 { return "Word repetition" }
func (WordRepeatRule) IsDictionaryBasedSpellingRule() bool { return false }

func (r WordRepeatRule) Match(text string, tokens []Token) []Match {
	var matches []Match
	for i := 1; i < len(tokens); i++ {
		prev, cur := tokens[i-1], tokens[i]
		if cur.SentenceStart || foldWord(prev.Text) != foldWord(cur.Text) {
			continue
		}
		if strings.TrimSpace(text[prev.End:cur.Start]) != "" {
			continue
		}
		matches = append(matches, Match{
			RuleID:                r.ID(),
			Message:               "Possible typo: you repeated a word",
			FromPos:               prev.Start,
			ToPos:                 cur.End,
			SuggestedReplacements: []string{prev.Text},
		})
	}
	return matches
}
