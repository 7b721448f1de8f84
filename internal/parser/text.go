package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docspell/internal/doctree"
)

// TextParser handles plain text files. Paragraphs are separated by blank
// lines; the document has no title.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string, opts Options) (*doctree.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	attrs := documentAttributes(filename, nil, opts)
	b := newBuilder(filename, attrs, nil, opts)
	doc := b.Document("", attrs, 1)

	var current []string
	start, lineNo := 0, 0
	flush := func() {
		if len(current) > 0 {
			doc.Append(b.Block("paragraph", current, start))
			current = nil
		}
	}

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if len(current) == 0 {
			start = lineNo
		}
		current = append(current, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	return doc, nil
}
