package langtool

import (
	"bufio"
	"io"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Dictionary is a word list with frequency ranks (1 = most common).
// It is read-only after loading and safe for concurrent lookups.
type Dictionary struct {
	words map[string]int
}

// affix is a suffix rewrite tried when a word is not found verbatim.
type affix struct {
	suffix      string
	replacement string
}

var suffixRules = []affix{
	{"ies", "y"}, {"ied", "y"}, {"ier", "y"}, {"iest", "y"}, {"ily", "y"}, {"iness", "y"},
	{"es", ""}, {"s", ""},
	{"ed", ""}, {"ed", "e"}, {"d", ""},
	{"ing", ""}, {"ing", "e"},
	{"ly", ""}, {"ally", ""},
	{"er", ""}, {"er", "e"}, {"ers", ""}, {"ers", "e"},
	{"est", ""}, {"est", "e"},
	{"ness", ""}, {"ment", ""}, {"ments", ""},
	{"able", ""}, {"able", "e"}, {"ability", "able"},
	{"ation", "e"}, {"ations", "e"}, {"ion", "e"}, {"ion", ""}, {"ions", ""},
	{"ful", ""}, {"less", ""}, {"al", ""}, {"ity", ""},
}

// Short prefixes such as "co" are not stripped: co + lour would pass colour.
var prefixRules = []string{"un", "re", "pre", "non", "sub", "over", "multi", "auto", "dis", "mis"}

// maxStripDepth bounds how many affixes are removed from one word.
const maxStripDepth = 2

// LoadDictionary reads one word per line. Blank lines and lines starting
// with '#' are skipped; ranks follow line order.
func LoadDictionary(r io.Reader) (*Dictionary, error) {
	d := &Dictionary{words: make(map[string]int)}
	if err := d.load(r); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dictionary) load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	rank := len(d.words)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rank++
		d.add(line, rank)
	}
	return scanner.Err()
}

func (d *Dictionary) add(word string, rank int) {
	key := foldWord(word)
	if existing, ok := d.words[key]; ok && existing <= rank {
		return
	}
	d.words[key] = rank
}

// Merge returns a new dictionary holding the words of d and other. Ranks of
// other are shifted after d's.
func (d *Dictionary) Merge(other *Dictionary) *Dictionary {
	merged := &Dictionary{words: make(map[string]int, len(d.words)+len(other.words))}
	for w, r := range d.words {
		merged.words[w] = r
	}
	offset := len(d.words)
	for w, r := range other.words {
		merged.add(w, offset+r)
	}
	return merged
}

// Len returns the number of distinct words.
func (d *Dictionary) Len() int {
	return len(d.words)
}

// Contains reports whether word, or a regular inflection of a known word,
// is in the dictionary.
func (d *Dictionary) Contains(word string) bool {
	return d.contains(foldWord(word), maxStripDepth)
}

func (d *Dictionary) contains(w string, depth int) bool {
	if _, ok := d.words[w]; ok {
		return true
	}
	if depth == 0 {
		return false
	}
	for _, possessive := range []string{"'s", "s'"} {
		if stem, ok := strings.CutSuffix(w, possessive); ok && stem != "" {
			if possessive == "s'" {
				stem += "s"
			}
			if d.contains(stem, depth-1) {
				return true
			}
		}
	}
	for _, rule := range suffixRules {
		stem, ok := strings.CutSuffix(w, rule.suffix)
		if !ok || utf8.RuneCountInString(stem) < 2 {
			continue
		}
		stem += rule.replacement
		if d.contains(stem, depth-1) {
			return true
		}
		// running -> runn -> run
		if n := len(stem); rule.replacement == "" && n >= 3 && stem[n-1] == stem[n-2] {
			if d.contains(stem[:n-1], depth-1) {
				return true
			}
		}
	}
	for _, prefix := range prefixRules {
		stem, ok := strings.CutPrefix(w, prefix)
		if ok && utf8.RuneCountInString(stem) >= 3 && d.contains(stem, depth-1) {
			return true
		}
	}
	return false
}

type candidate struct {
	word     string
	distance int
	rank     int
}

// Suggest returns up to max known words within two edits of word, closest
// and most common first. Results are lower case.
func (d *Dictionary) Suggest(word string, max int) []string {
	w := []rune(foldWord(word))
	var found []candidate
	for term, rank := range d.words {
		diff := utf8.RuneCountInString(term) - len(w)
		if diff < -maxSuggestDistance || diff > maxSuggestDistance {
			continue
		}
		dist := boundedDistance(w, []rune(term), maxSuggestDistance)
		if dist == 0 || dist > maxSuggestDistance {
			continue
		}
		found = append(found, candidate{word: term, distance: dist, rank: rank})
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].distance != found[j].distance {
			return found[i].distance < found[j].distance
		}
		if found[i].rank != found[j].rank {
			return found[i].rank < found[j].rank
		}
		return found[i].word < found[j].word
	})
	if len(found) > max {
		found = found[:max]
	}
	out := make([]string, len(found))
	for i, c := range found {
		out[i] = c.word
	}
	return out
}

// foldWord case-folds a word and normalizes typographic apostrophes.
func foldWord(word string) string {
	word = strings.ReplaceAll(word, "’", "'")
	return cases.Fold().String(word)
}

func isAllUpper(word string) bool {
	hasLetter := false
	for _, r := range word {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}
