package spellcheck

import (
	"github.com/dgallion1/docspell/internal/parser"
	"github.com/dgallion1/docspell/internal/pipeline"
)

// SourceMapEnabler turns on source location tracking before parsing.
type SourceMapEnabler struct{}

func (SourceMapEnabler) Preprocess(opts *parser.Options) error {
	opts.SourceMap = true
	return nil
}

// Extension registers the enabler and the walker with a pipeline.
type Extension struct {
	Walker *Walker
}

func (e Extension) Register(r *pipeline.Registry) {
	r.Preprocessor(SourceMapEnabler{})
	r.Treeprocessor(e.Walker)
}
