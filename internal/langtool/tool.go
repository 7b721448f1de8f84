package langtool

import (
	"sort"
)

// Tool checks text against the active rules of one language variant.
// A Tool is not safe for concurrent use.
type Tool struct {
	lang     *Language
	rules    []Rule
	disabled map[string]bool
}

// NewTool returns a tool with every rule of lang enabled.
func NewTool(lang *Language) *Tool {
	return &Tool{
		lang: lang,
		rules: []Rule{
			newSpellingRule(lang),
			UppercaseSentenceStartRule{},
			WhitespaceRule{},
			WordRepeatRule{id: "ENGLISH_WORD_REPEAT_RULE"},
		},
		disabled: make(map[string]bool),
	}
}

func (t *Tool) Language() *Language {
	return t.lang
}

// AllRules returns every rule, enabled or not.
func (t *Tool) AllRules() []Rule {
	return append([]Rule(nil), t.rules...)
}

// ActiveRules returns the rules that are not disabled.
func (t *Tool) ActiveRules() []Rule {
	var active []Rule
	for _, r := range t.rules {
		if !t.disabled[r.ID()] {
			active = append(active, r)
		}
	}
	return active
}

func (t *Tool) DisableRule(id string) {
	t.disabled[id] = true
}

func (t *Tool) EnableRule(id string) {
	delete(t.disabled, id)
}

// Check runs the active rules over text. Matches are ordered by position.
func (t *Tool) Check(text string) ([]Match, error) {
	if text == "" {
		return nil, nil
	}
	tokens := Tokenize(text)
	var matches []Match
	for _, r := range t.ActiveRules() {
		matches = append(matches, r.Match(text, tokens)...)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].FromPos < matches[j].FromPos
	})
	return matches, nil
}
