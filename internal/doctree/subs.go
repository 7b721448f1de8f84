package doctree

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// Substitutor turns raw node text into rendered text.
type Substitutor interface {
	Apply(text string) string
}

// InlineRenderer renders inline markup (emphasis, links, code) as plain text.
type InlineRenderer func(text string) string

// Subs expands attribute references, renders inline markup and applies
// typographic replacements, in that order.
type Subs struct {
	Attributes map[string]string
	Inline     InlineRenderer
	// DropMissing removes references to undefined attributes. By default
	// they are left verbatim.
	DropMissing bool
}

var (
	// {name} not preceded by a backslash.
	attributeRef = regexp2.MustCompile(`(?<!\\)\{([A-Za-z0-9_][A-Za-z0-9_-]*)\}`, regexp2.None)
	escapedRef   = regexp2.MustCompile(`\\(\{[A-Za-z0-9_][A-Za-z0-9_-]*\})`, regexp2.None)

	replacements = strings.NewReplacer(
		"(C)", "©",
		"(R)", "®",
		"(TM)", "™",
	)
)

func (s *Subs) Apply(text string) string {
	if text == "" {
		return text
	}
	out := s.expandAttributes(text)
	if s.Inline != nil {
		out = s.Inline(out)
	} else if unescaped, err := escapedRef.Replace(out, "$1", -1, -1); err == nil {
		out = unescaped
	}
	return replacements.Replace(out)
}

func (s *Subs) expandAttributes(text string) string {
	if !strings.Contains(text, "{") {
		return text
	}
	out, err := attributeRef.ReplaceFunc(text, func(m regexp2.Match) string {
		name := strings.ToLower(m.GroupByNumber(1).String())
		if v, ok := s.Attributes[name]; ok {
			return v
		}
		if s.DropMissing {
			return ""
		}
		return m.String()
	}, -1, -1)
	if err != nil {
		return text
	}
	return out
}

func applySubs(s Substitutor, text string) string {
	if s == nil || text == "" {
		return text
	}
	return s.Apply(text)
}
