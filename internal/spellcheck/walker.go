// Package spellcheck walks a document tree, checks the spelling of every
// text fragment and reports the mistakes it finds.
package spellcheck

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docspell/internal/doctree"
	"github.com/dgallion1/docspell/internal/langtool"
)

// DefaultLimit is the mistake count above which traversal stops visiting
// further children.
const DefaultLimit = 10

// WordsToIgnoreAttr is the document attribute listing extra accepted words,
// separated by commas.
const WordsToIgnoreAttr = "spellchecker-words-to-ignore"

// Config controls a Walker.
type Config struct {
	// Limit bounds the buffer: once it holds more than Limit mistakes no
	// further children are visited.
	Limit int
	// SkipContexts lists block contexts that are never checked.
	SkipContexts []string
	// SingleVisitLists stops the generic recursion from visiting list
	// items a second time.
	SingleVisitLists bool
	ReportDir        string
	IgnoreWords      []string
	// Stdout receives a copy of every report entry.
	Stdout io.Writer
}

func DefaultConfig() Config {
	return Config{
		Limit:        DefaultLimit,
		SkipContexts: []string{"listing"},
		ReportDir:    ".",
		Stdout:       os.Stdout,
	}
}

// RuleEngine is the checking capability the walker needs.
// *langtool.Tool implements it.
type RuleEngine interface {
	ActiveRules() []langtool.Rule
	DisableRule(id string)
	Check(text string) ([]langtool.Match, error)
}

// Walker is a tree processor that checks spelling. It keeps per-pass state
// and is not safe for concurrent use.
type Walker struct {
	cfg    Config
	engine RuleEngine
	log    *slog.Logger
	skip   map[string]bool

	mistakes []Mistake
}

// New restricts engine to dictionary-based spelling rules and returns a
// walker that uses it for every pass.
func New(cfg Config, engine RuleEngine, log *slog.Logger) *Walker {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.ReportDir == "" {
		cfg.ReportDir = "."
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	for _, r := range engine.ActiveRules() {
		if !r.IsDictionaryBasedSpellingRule() {
			engine.DisableRule(r.ID())
		}
	}

	w := &Walker{
		cfg:    cfg,
		engine: engine,
		log:    log,
		skip:   make(map[string]bool, len(cfg.SkipContexts)),
	}
	for _, c := range cfg.SkipContexts {
		w.skip[strings.TrimSpace(c)] = true
	}
	w.addIgnoreWords(cfg.IgnoreWords)
	return w
}

// Process checks a whole document. It returns nil when nothing was found,
// a *MistakesFoundError after writing the report, or a *ReportError when
// the report could not be written.
func (w *Walker) Process(doc *doctree.Document) error {
	w.mistakes = nil
	if !doc.HasBlocks() {
		return nil
	}

	docWords := SplitWords(doc.Attr(WordsToIgnoreAttr, ""))
	w.addIgnoreWords(docWords)
	defer w.removeIgnoreWords(docWords)
	reportPath := filepath.Join(w.cfg.ReportDir, ReportFileName(doc.Attr("docname", "")))

	if err := w.CheckSpelling(doc.Doctitle(), doc.SourceLocation()); err != nil {
		return fmt.Errorf("check spelling: %w", err)
	}
	if err := w.processBlocks(doc); err != nil {
		return fmt.Errorf("check spelling: %w", err)
	}

	if len(w.mistakes) == 0 {
		return nil
	}
	if err := w.writeReport(reportPath); err != nil {
		return err
	}
	w.log.Warn("spelling mistakes found", "count", len(w.mistakes), "report", reportPath)
	return &MistakesFoundError{Mistakes: w.Mistakes(), ReportPath: reportPath}
}

func (w *Walker) processBlocks(node doctree.Node) error {
	if len(w.mistakes) > w.cfg.Limit {
		return nil
	}
	parentLoc := node.SourceLocation()

	for _, child := range node.Blocks() {
		w.log.Debug("visit node", "node", child.NodeName(), "location", child.SourceLocation().OrUnavailable().String())

		var err error
		visited := false
		switch n := child.(type) {
		case *doctree.Block:
			if w.skip[n.Context] {
				break
			}
			err = w.CheckSpelling(n.ApplySubs(strings.Join(n.Lines, "\n")), parentLoc)
		case *doctree.List:
			if n.HasBlocks() {
				err = w.processBlocks(n)
				visited = w.cfg.SingleVisitLists
			}
		case *doctree.ListItem:
			err = w.CheckSpelling(n.Text(), parentLoc)
		case *doctree.Section:
			err = w.CheckSpelling(n.Title(), parentLoc)
		case *doctree.Table:
			err = w.checkTable(n, parentLoc)
		default:
			w.log.Info("unsupported node, not checked", "node", child.NodeName())
		}
		if err != nil {
			return err
		}

		if child.HasBlocks() && !visited {
			if err := w.processBlocks(child); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Walker) checkTable(t *doctree.Table, loc *doctree.SourceLocation) error {
	for _, row := range t.Rows.Body {
		for _, cell := range row {
			if err := w.CheckSpelling(cell.Text(), loc); err != nil {
				return err
			}
		}
	}
	return nil
}

// CheckSpelling checks one fragment and buffers a Mistake per match. A nil
// location is recorded as doctree.Unavailable.
func (w *Walker) CheckSpelling(text string, loc *doctree.SourceLocation) error {
	if text == "" {
		return nil
	}
	loc = loc.OrUnavailable()

	matches, err := w.engine.Check(text)
	if err != nil {
		return err
	}
	for _, m := range matches {
		w.mistakes = append(w.mistakes, Mistake{Text: text, Match: m, Location: loc})
	}
	return nil
}

// Mistakes returns the mistakes buffered by the current pass.
func (w *Walker) Mistakes() []Mistake {
	return append([]Mistake(nil), w.mistakes...)
}

func (w *Walker) addIgnoreWords(words []string) {
	if len(words) == 0 {
		return
	}
	for _, r := range w.engine.ActiveRules() {
		if adder, ok := r.(langtool.IgnoreTokenAdder); ok {
			adder.AddIgnoreTokens(words)
		}
	}
}

func (w *Walker) removeIgnoreWords(words []string) {
	if len(words) == 0 {
		return
	}
	for _, r := range w.engine.ActiveRules() {
		if remover, ok := r.(langtool.IgnoreTokenRemover); ok {
			remover.RemoveIgnoreTokens(words)
		}
	}
}

// SplitWords splits a comma-separated word list, dropping blanks.
func SplitWords(s string) []string {
	var words []string
	for _, w := range strings.Split(s, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}
