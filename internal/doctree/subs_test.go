package doctree

import (
	"strings"
	"testing"
)

func TestSubs_Apply(t *testing.T) {
	attrs := map[string]string{"attr": "value", "app-name": "Docspell"}
	tests := []struct {
		name string
		subs *Subs
		in   string
		want string
	}{
		{"plain", &Subs{Attributes: attrs}, "nothing here", "nothing here"},
		{"reference", &Subs{Attributes: attrs}, "text {attr} more", "text value more"},
		{"dashed name", &Subs{Attributes: attrs}, "run {app-name}", "run Docspell"},
		{"case insensitive name", &Subs{Attributes: attrs}, "{ATTR}", "value"},
		{"missing kept", &Subs{Attributes: attrs}, "a {nope} b", "a {nope} b"},
		{"missing dropped", &Subs{Attributes: attrs, DropMissing: true}, "a {nope} b", "a  b"},
		{"escaped", &Subs{Attributes: attrs}, `keep \{attr} literal`, "keep {attr} literal"},
		{"replacements", &Subs{}, "Company(R) (C) Thing(TM)", "Company® © Thing™"},
		{"empty", &Subs{Attributes: attrs}, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.subs.Apply(tt.in); got != tt.want {
				t.Errorf("Apply(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSubs_InlineRunsAfterAttributes(t *testing.T) {
	var seen string
	s := &Subs{
		Attributes: map[string]string{"attr": "value"},
		Inline: func(text string) string {
			seen = text
			return strings.ToUpper(text)
		},
	}
	got := s.Apply("x {attr}")
	if seen != "x value" {
		t.Errorf("inline renderer saw %q, want expanded text", seen)
	}
	if got != "X VALUE" {
		t.Errorf("got %q", got)
	}
}

func TestApplySubs_NilSubstitutor(t *testing.T) {
	if got := applySubs(nil, "{attr}"); got != "{attr}" {
		t.Errorf("expected text unchanged, got %q", got)
	}
}
