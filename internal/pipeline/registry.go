// Package pipeline converts a source file into a document tree and runs the
// registered processors over it.
package pipeline

import (
	"github.com/dgallion1/docspell/internal/doctree"
	"github.com/dgallion1/docspell/internal/parser"
)

// Preprocessor runs before parsing and may change the parse options.
type Preprocessor interface {
	Preprocess(opts *parser.Options) error
}

// Treeprocessor runs once per pass with the parsed document.
type Treeprocessor interface {
	Process(doc *doctree.Document) error
}

// Extension registers one or more processors.
type Extension interface {
	Register(r *Registry)
}

// Registry holds processors in registration order.
type Registry struct {
	preprocessors  []Preprocessor
	treeprocessors []Treeprocessor
}

func (r *Registry) Preprocessor(p Preprocessor) {
	r.preprocessors = append(r.preprocessors, p)
}

func (r *Registry) Treeprocessor(t Treeprocessor) {
	r.treeprocessors = append(r.treeprocessors, t)
}

// ExtensionFunc adapts a plain function to an Extension.
type ExtensionFunc func(r *Registry)

func (f ExtensionFunc) Register(r *Registry) { f(r) }
