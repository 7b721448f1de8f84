package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dgallion1/docspell/internal/doctree"
	"github.com/dgallion1/docspell/internal/parser"
)

// Pipeline runs preprocessors, the parser for the file type and then every
// treeprocessor. Each Convert call is one pass. A Pipeline is as safe for
// concurrent use as its processors are.
type Pipeline struct {
	registry Registry
	opts     parser.Options
	log      *slog.Logger
	stats    *Stats
}

// New builds a pipeline from base parse options and extensions. stats may
// be nil.
func New(opts parser.Options, log *slog.Logger, stats *Stats, exts ...Extension) *Pipeline {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	p := &Pipeline{opts: opts, log: log, stats: stats}
	for _, ext := range exts {
		ext.Register(&p.registry)
	}
	return p
}

// Convert parses r as filename and runs the treeprocessors in order,
// stopping at the first error. The document is returned even when a
// treeprocessor failed.
func (p *Pipeline) Convert(r io.Reader, filename string) (*doctree.Document, error) {
	start := time.Now()
	doc, err := p.convert(r, filename)
	elapsed := time.Since(start)
	if p.stats != nil {
		p.stats.Record(elapsed.Milliseconds(), err == nil)
	}
	p.log.Debug("converted document", "file", filename, "duration_ms", elapsed.Milliseconds(), "ok", err == nil)
	return doc, err
}

func (p *Pipeline) convert(r io.Reader, filename string) (*doctree.Document, error) {
	opts := p.opts.Clone()
	for _, pre := range p.registry.preprocessors {
		if err := pre.Preprocess(&opts); err != nil {
			return nil, fmt.Errorf("preprocess: %w", err)
		}
	}

	prs, err := parser.ForFile(filename)
	if err != nil {
		return nil, err
	}
	doc, err := prs.Parse(r, filename, opts)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	for _, tp := range p.registry.treeprocessors {
		if err := tp.Process(doc); err != nil {
			return doc, err
		}
	}
	return doc, nil
}
