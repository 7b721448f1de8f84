package langtool

import (
	"embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

//go:embed dict/*.txt
var dictFS embed.FS

// Language is a language variant with its dictionary. It is immutable and
// may be shared by any number of tools.
type Language struct {
	Tag  language.Tag
	Code string
	Name string

	dict *Dictionary
}

// Dictionary returns the variant's word list.
func (l *Language) Dictionary() *Dictionary {
	return l.dict
}

// WithWords returns a copy of l whose dictionary also holds the words read
// from r, one per line.
func (l *Language) WithWords(r io.Reader) (*Language, error) {
	extra, err := LoadDictionary(r)
	if err != nil {
		return nil, fmt.Errorf("load extra words: %w", err)
	}
	cp := *l
	cp.dict = l.dict.Merge(extra)
	return &cp, nil
}

type variant struct {
	tag  language.Tag
	name string
	file string
}

var variants = map[string]variant{
	"en-US": {tag: language.AmericanEnglish, name: "English (US)", file: "dict/en_US.txt"},
	"en-GB": {tag: language.BritishEnglish, name: "English (GB)", file: "dict/en_GB.txt"},
}

var (
	langMu    sync.Mutex
	langCache = map[string]*Language{}
)

// AmericanEnglish returns the en-US variant.
func AmericanEnglish() *Language {
	l, err := ForCode("en-US")
	if err != nil {
		panic(err) // embedded dictionaries always load
	}
	return l
}

// BritishEnglish returns the en-GB variant.
func BritishEnglish() *Language {
	l, err := ForCode("en-GB")
	if err != nil {
		panic(err)
	}
	return l
}

// SupportedCodes lists the language codes accepted by ForCode.
func SupportedCodes() []string {
	return []string{"en-GB", "en-US"}
}

// ForCode returns the language variant for a BCP 47 code such as "en-US".
// Dictionaries are loaded once per process.
func ForCode(code string) (*Language, error) {
	tag, err := language.Parse(code)
	if err != nil {
		return nil, fmt.Errorf("parse language %q: %w", code, err)
	}
	canonical := tag.String()
	v, ok := variants[canonical]
	if !ok {
		return nil, fmt.Errorf("unsupported language %q (supported: %s)", code, strings.Join(SupportedCodes(), ", "))
	}

	langMu.Lock()
	defer langMu.Unlock()
	if l, ok := langCache[canonical]; ok {
		return l, nil
	}

	dict, err := loadEmbedded("dict/en.txt", v.file)
	if err != nil {
		return nil, err
	}
	l := &Language{Tag: v.tag, Code: canonical, Name: v.name, dict: dict}
	langCache[canonical] = l
	return l, nil
}

func loadEmbedded(files ...string) (*Dictionary, error) {
	d := &Dictionary{words: make(map[string]int)}
	for _, name := range files {
		f, err := dictFS.Open(name)
		if err != nil {
			return nil, fmt.Errorf("open dictionary %s: %w", name, err)
		}
		err = d.load(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read dictionary %s: %w", name, err)
		}
	}
	return d, nil
}
