package spellcheck

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/dgallion1/docspell/internal/doctree"
	"github.com/dgallion1/docspell/internal/langtool"
	"github.com/dgallion1/docspell/internal/pipeline"
)

// UnnamedDocument replaces the docname attribute when it is unset.
const UnnamedDocument = "unnamed"

// Mistake pairs a checked fragment with one rule match inside it.
type Mistake struct {
	Text     string
	Match    langtool.Match
	Location *doctree.SourceLocation
}

// Flagged returns the checked text from the start of the match to the end.
func (m Mistake) Flagged() string {
	from := m.Match.FromPos
	if from < 0 || from > len(m.Text) {
		return m.Text
	}
	return m.Text[from:]
}

// Word returns just the matched span of the checked text.
func (m Mistake) Word() string {
	from, to := m.Match.FromPos, min(m.Match.ToPos, len(m.Text))
	if from < 0 || from > to {
		return ""
	}
	return m.Text[from:to]
}

// Finding converts m to its JSON form.
func (m Mistake) Finding() pipeline.Finding {
	loc := m.Location.OrUnavailable()
	return pipeline.Finding{
		File:        loc.File(),
		Line:        loc.Line(),
		RuleID:      m.Match.RuleID,
		Message:     m.Match.Message,
		Text:        m.Word(),
		Offset:      m.Match.FromPos,
		Suggestions: m.Match.SuggestedReplacements,
	}
}

func (m Mistake) String() string {
	return FormatMistake(m)
}

// FormatMistake renders one report entry:
//
//	<file>:<line>: <message>
//	Details:
//	---> <text from the match>
//	Suggested correction(s): [a, b]
func FormatMistake(m Mistake) string {
	loc := m.Location.OrUnavailable()
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%s: %s\n", loc.File(), loc.Line(), m.Match.Message)
	b.WriteString("Details:\n")
	fmt.Fprintf(&b, "---> %s\n", m.Flagged())
	fmt.Fprintf(&b, "Suggested correction(s): [%s]\n", strings.Join(m.Match.SuggestedReplacements, ", "))
	return b.String()
}

// ReportFileName returns the report name for a document, falling back to
// UnnamedDocument when docname is empty.
func ReportFileName(docname string) string {
	if docname == "" {
		docname = UnnamedDocument
	}
	return docname + "_spelling_mistakes_report.txt"
}

// writeReport writes every buffered mistake to path and echoes each entry
// to the configured stdout.
func (w *Walker) writeReport(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return &ReportError{Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &ReportError{Path: path, Err: cerr}
		}
	}()

	bw := bufio.NewWriter(f)
	for _, m := range w.mistakes {
		entry := FormatMistake(m)
		if _, err := bw.WriteString(entry); err != nil {
			return &ReportError{Path: path, Err: err}
		}
		fmt.Fprint(w.cfg.Stdout, entry)
	}
	if err := bw.Flush(); err != nil {
		return &ReportError{Path: path, Err: err}
	}
	return nil
}
