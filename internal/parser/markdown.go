package parser

import (
	"bytes"
	"io"
	"sort"
	"strings"

	"github.com/dgallion1/docspell/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// markdown is shared by the block parser and the inline renderer.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// MarkdownParser handles Markdown files using goldmark. A leading level 1
// heading, or a title in the front matter, becomes the document title.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string, opts Options) (*doctree.Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	fm, err := splitFrontMatter(raw)
	if err != nil {
		return nil, err
	}
	src := fm.body
	root := markdown.Parser().Parse(text.NewReader(src))

	attrs := documentAttributes(filename, fm.attributes, opts)
	m := &mdBuilder{
		b:     newBuilder(filename, attrs, MarkdownInline, opts),
		src:   src,
		index: newLineIndex(src, fm.lines),
	}

	first := root.FirstChild()
	title := fm.title
	titleLine := 1
	if h, ok := first.(*ast.Heading); ok && h.Level == 1 && title == "" {
		title = m.rawLines(h)
		titleLine = m.line(h)
		first = first.NextSibling()
	}
	doc := m.b.Document(title, attrs, titleLine)

	stack := newSectionStack(doc)
	for n := first; n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			stack.push(m.b.Section(m.rawLines(h), h.Level, m.line(h)))
			continue
		}
		if node := m.block(n); node != nil {
			stack.top().Append(node)
		}
	}
	return doc, nil
}

type mdBuilder struct {
	b     *doctree.Builder
	src   []byte
	index lineIndex
}

// block converts one goldmark block node.
func (m *mdBuilder) block(n ast.Node) doctree.Node {
	line := m.line(n)
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return m.b.Block("paragraph", m.lines(n), line)
	case *ast.Heading:
		return m.b.Block("paragraph", m.lines(n), line)
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return m.b.Block("listing", m.lines(n), line)
	case *ast.Blockquote:
		quote := m.b.Block("quote", nil, line)
		m.appendChildren(quote, n.FirstChild())
		return quote
	case *ast.List:
		return m.list(n)
	case *extast.Table:
		return m.table(n)
	case *ast.ThematicBreak:
		return m.b.Other("thematic_break", line)
	case *ast.HTMLBlock:
		return m.b.Other("pass", line)
	default:
		return m.b.Other(strings.ToLower(n.Kind().String()), line)
	}
}

func (m *mdBuilder) appendChildren(parent container, first ast.Node) {
	for c := first; c != nil; c = c.NextSibling() {
		if node := m.block(c); node != nil {
			parent.Append(node)
		}
	}
}

// list keeps the first paragraph of each item as its text; the rest of
// the item becomes nested blocks.
func (m *mdBuilder) list(n *ast.List) *doctree.List {
	list := m.b.List(n.IsOrdered(), m.line(n))
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		first := c.FirstChild()
		source := ""
		switch first.(type) {
		case *ast.Paragraph, *ast.TextBlock:
			source = m.rawLines(first)
			first = first.NextSibling()
		}
		item := m.b.ListItem(source, m.line(c))
		m.appendChildren(item, first)
		list.Append(item)
	}
	return list
}

func (m *mdBuilder) table(n *extast.Table) *doctree.Table {
	var rows doctree.Rows
	for r := n.FirstChild(); r != nil; r = r.NextSibling() {
		var row doctree.Row
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			row = append(row, m.b.Cell(m.rawLines(c)))
		}
		if _, ok := r.(*extast.TableHeader); ok {
			rows.Head = append(rows.Head, row)
		} else {
			rows.Body = append(rows.Body, row)
		}
	}
	return m.b.Table(rows, m.line(n))
}

// lines returns the raw source lines of a block without line endings.
func (m *mdBuilder) lines(n ast.Node) []string {
	segs := n.Lines()
	out := make([]string, 0, segs.Len())
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		out = append(out, strings.TrimRight(string(seg.Value(m.src)), "\r\n"))
	}
	return out
}

func (m *mdBuilder) rawLines(n ast.Node) string {
	return strings.Join(m.lines(n), "\n")
}

// line is the 1-based source line of the first segment in n or its
// descendants, or 0 when none has one.
func (m *mdBuilder) line(n ast.Node) int {
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		return m.index.line(n.Lines().At(0).Start)
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Type() != ast.TypeBlock {
			continue
		}
		if l := m.line(c); l > 0 {
			return l
		}
	}
	return 0
}

// lineIndex maps byte offsets to line numbers. offset is the number of
// lines that precede the indexed source, such as front matter.
type lineIndex struct {
	starts []int
	offset int
}

func newLineIndex(src []byte, offset int) lineIndex {
	starts := []int{0}
	for i, c := range src {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return lineIndex{starts: starts, offset: offset}
}

func (li lineIndex) line(pos int) int {
	return sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > pos }) + li.offset
}

// MarkdownInline renders inline Markdown as plain text. Code spans, raw
// HTML, autolinks and images are dropped; link labels are kept.
func MarkdownInline(s string) string {
	if s == "" {
		return s
	}
	src := []byte(s)
	root := markdown.Parser().Parse(text.NewReader(src))

	var buf bytes.Buffer
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock && n.NextSibling() != nil {
				buf.WriteByte('\n')
			}
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.CodeSpan, *ast.RawHTML, *ast.AutoLink, *ast.Image:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			buf.Write(n.Value(src))
			if n.SoftLineBreak() || n.HardLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(n.Value)
		}
		return ast.WalkContinue, nil
	})

	out := util.UnescapePunctuations(buf.Bytes())
	out = util.ResolveNumericReferences(out)
	out = util.ResolveEntityNames(out)
	return strings.TrimSpace(string(out))
}
