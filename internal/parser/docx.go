package parser

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/docspell/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Word documents have no lines, so the
// location of a node is the 1-based index of its paragraph or table in
// the body.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string, opts Options) (*doctree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	file, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	attrs := documentAttributes(filename, nil, opts)
	d := &docxBuilder{b: newBuilder(filename, attrs, nil, opts)}
	items := file.Document.Body.Items

	title, titleLine := "", 1
	for i, item := range items {
		if para, ok := item.(*docx.Paragraph); ok && docxStyle(para) == "title" {
			title, titleLine = docxParagraphText(para), i+1
			break
		}
	}
	doc := d.b.Document(title, attrs, titleLine)

	stack := newSectionStack(doc)
	for i, item := range items {
		line := i + 1
		switch item := item.(type) {
		case *docx.Paragraph:
			text := docxParagraphText(item)
			if text == "" || line == titleLine && title != "" {
				d.endList()
				continue
			}
			if level := docxHeadingLevel(item); level > 0 {
				d.endList()
				stack.push(d.b.Section(text, level, line))
				continue
			}
			if level, ok := docxListLevel(item); ok {
				d.listItem(stack.top(), item, text, level, line)
				continue
			}
			d.endList()
			stack.top().Append(d.paragraph(item, text, line))
		case *docx.Table:
			d.endList()
			stack.top().Append(d.table(item, line))
		}
	}
	return doc, nil
}

type docxBuilder struct {
	b *doctree.Builder
	// lists is the chain of open lists, outermost first.
	lists []*doctree.List
	items []*doctree.ListItem
}

func (d *docxBuilder) endList() {
	d.lists, d.items = nil, nil
}

// listItem appends a numbered paragraph at the given nesting level,
// opening nested lists below the previous item as needed.
func (d *docxBuilder) listItem(parent container, para *docx.Paragraph, text string, level, line int) {
	if level > len(d.lists) {
		level = len(d.lists)
	}
	d.lists, d.items = d.lists[:min(level+1, len(d.lists))], d.items[:min(level+1, len(d.items))]
	if level == len(d.lists) {
		list := d.b.List(docxOrdered(para), line)
		if level == 0 {
			parent.Append(list)
		} else {
			d.items[level-1].Append(list)
		}
		d.lists = append(d.lists, list)
	}
	item := d.b.ListItem(text, line)
	d.lists[level].Append(item)
	d.items = append(d.items[:level], item)
}

func (d *docxBuilder) paragraph(para *docx.Paragraph, text string, line int) *doctree.Block {
	lines := strings.Split(text, "\n")
	switch docxStyle(para) {
	case "code", "sourcecode", "htmlpreformatted", "macrotext":
		return d.b.Block("listing", lines, line)
	case "quote", "intensequote":
		return d.b.Block("quote", lines, line)
	}
	return d.b.Block("paragraph", lines, line)
}

// table puts every row in the body; Word marks no header rows in the
// document part.
func (d *docxBuilder) table(t *docx.Table, line int) *doctree.Table {
	var rows doctree.Rows
	for _, tr := range t.TableRows {
		var row doctree.Row
		for _, tc := range tr.TableCells {
			var parts []string
			for _, para := range tc.Paragraphs {
				if text := docxParagraphText(para); text != "" {
					parts = append(parts, text)
				}
			}
			row = append(row, d.b.Cell(strings.Join(parts, "\n")))
		}
		rows.Body = append(rows.Body, row)
	}
	return d.b.Table(rows, line)
}

// docxStyle returns the paragraph style id, lower case and without spaces.
func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
}

func docxHeadingLevel(para *docx.Paragraph) int {
	style, ok := strings.CutPrefix(docxStyle(para), "heading")
	if !ok {
		return 0
	}
	level, err := strconv.Atoi(style)
	if err != nil || level < 1 || level > 6 {
		return 0
	}
	return level
}

// docxListLevel reports the zero-based nesting level of a numbered or
// list-styled paragraph.
func docxListLevel(para *docx.Paragraph) (int, bool) {
	if para.Properties != nil && para.Properties.NumProperties != nil {
		level := 0
		if ilvl := para.Properties.NumProperties.Ilvl; ilvl != nil {
			level, _ = strconv.Atoi(ilvl.Val)
		}
		return max(level, 0), true
	}
	if strings.HasPrefix(docxStyle(para), "list") {
		return 0, true
	}
	return 0, false
}

func docxOrdered(para *docx.Paragraph) bool {
	return strings.HasPrefix(docxStyle(para), "listnumber")
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	writeRun := func(run *docx.Run) {
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			writeRun(c)
		case *docx.Hyperlink:
			writeRun(&c.Run)
		}
	}
	return strings.TrimSpace(buf.String())
}
