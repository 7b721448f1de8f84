package parser

import (
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docspell/internal/doctree"
)

// Options configures one parse.
type Options struct {
	// SourceMap attaches file and line information to every node.
	SourceMap bool
	// Attributes override attributes declared by the document itself.
	Attributes map[string]string
	// PDFFallback shells out to pdftotext when the Go PDF reader fails.
	PDFFallback bool
}

// Clone returns a copy whose Attributes map can be changed independently.
func (o Options) Clone() Options {
	o.Attributes = maps.Clone(o.Attributes)
	return o
}

// Parser converts raw document bytes into a document tree.
type Parser interface {
	Parse(r io.Reader, filename string, opts Options) (*doctree.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// documentAttributes merges the built-in file attributes, the attributes
// declared in the document and the caller's overrides, in that order.
func documentAttributes(filename string, declared map[string]string, opts Options) map[string]string {
	attrs := make(map[string]string)
	if filename != "" {
		base := filepath.Base(filename)
		ext := filepath.Ext(base)
		attrs["docfile"] = filename
		attrs["docname"] = strings.TrimSuffix(base, ext)
		attrs["docfilesuffix"] = ext
	}
	for k, v := range declared {
		attrs[strings.ToLower(k)] = v
	}
	for k, v := range opts.Attributes {
		attrs[strings.ToLower(k)] = v
	}
	return attrs
}

// newBuilder returns a builder whose substitutions read attrs.
func newBuilder(filename string, attrs map[string]string, inline doctree.InlineRenderer, opts Options) *doctree.Builder {
	return &doctree.Builder{
		File:      filename,
		SourceMap: opts.SourceMap,
		Subs:      &doctree.Subs{Attributes: attrs, Inline: inline},
	}
}

// container is a node that accepts children.
type container interface {
	Append(children ...doctree.Node)
}

type stackEntry struct {
	node  container
	level int
}

// sectionStack nests sections by heading level under a root container.
// Root is level 0, so every heading nests under it.
type sectionStack struct {
	entries []stackEntry
}

func newSectionStack(root container) *sectionStack {
	return &sectionStack{entries: []stackEntry{{node: root, level: 0}}}
}

func (s *sectionStack) top() container {
	return s.entries[len(s.entries)-1].node
}

// push pops every section at level or deeper, then appends sec to the
// remaining parent.
func (s *sectionStack) push(sec *doctree.Section) {
	for len(s.entries) > 1 && s.entries[len(s.entries)-1].level >= sec.Level {
		s.entries = s.entries[:len(s.entries)-1]
	}
	s.top().Append(sec)
	s.entries = append(s.entries, stackEntry{node: sec, level: sec.Level})
}
