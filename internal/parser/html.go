package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docspell/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. The tokenizer keeps no line numbers, so
// HTML nodes never carry a source location. <meta name content> pairs
// become document attributes.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string, opts Options) (*doctree.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	attrs := documentAttributes(filename, findMeta(root), opts)
	h := &htmlBuilder{b: newBuilder(filename, attrs, nil, opts)}
	doc := h.b.Document(findTitle(root), attrs, 0)

	stack := newSectionStack(doc)
	body := findBody(root)
	if body == nil {
		body = root
	}
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		h.walk(c, stack.top(), stack)
	}
	return doc, nil
}

type htmlBuilder struct {
	b *doctree.Builder
}

// walk appends the nodes built from n to parent. Headings open sections
// only when stack is non-nil, i.e. outside lists, tables and quotes.
func (h *htmlBuilder) walk(n *html.Node, parent container, stack *sectionStack) {
	if n.Type != html.ElementNode {
		return
	}

	if level := headingLevel(n.Data); level > 0 {
		title := textContent(n)
		if stack == nil {
			parent.Append(h.b.Block("paragraph", []string{title}, 0))
			return
		}
		stack.push(h.b.Section(title, level, 0))
		return
	}

	switch n.Data {
	case "script", "style", "nav", "footer", "header", "template", "noscript":
		return
	case "p":
		if t := textContent(n); t != "" {
			parent.Append(h.b.Block("paragraph", strings.Split(t, "\n"), 0))
		}
	case "pre":
		parent.Append(h.b.Block("listing", strings.Split(strings.TrimRight(rawText(n), "\n"), "\n"), 0))
	case "blockquote":
		quote := h.b.Block("quote", nil, 0)
		h.walkChildren(n, quote)
		parent.Append(quote)
	case "ul", "ol":
		parent.Append(h.list(n))
	case "table":
		parent.Append(h.table(n))
	case "hr":
		parent.Append(h.b.Other("thematic_break", 0))
	case "img", "video", "audio", "iframe":
		parent.Append(h.b.Other(n.Data, 0))
	default:
		// div, section, article and friends are transparent.
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if stack != nil {
				h.walk(c, stack.top(), stack)
			} else {
				h.walk(c, parent, nil)
			}
		}
	}
}

func (h *htmlBuilder) walkChildren(n *html.Node, parent container) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		h.walk(c, parent, nil)
	}
}

// list takes the inline text of each <li> as the item text; nested block
// elements become children of the item.
func (h *htmlBuilder) list(n *html.Node) *doctree.List {
	list := h.b.List(n.Data == "ol", 0)
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		var inline strings.Builder
		var nested []*html.Node
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && isBlockElement(c.Data) {
				nested = append(nested, c)
				continue
			}
			inline.WriteString(rawText(c))
		}
		item := h.b.ListItem(collapseSpace(inline.String()), 0)
		for _, c := range nested {
			h.walk(c, item, nil)
		}
		list.Append(item)
	}
	return list
}

func (h *htmlBuilder) table(n *html.Node) *doctree.Table {
	var rows doctree.Rows
	var visit func(n *html.Node, section string)
	visit = func(n *html.Node, section string) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "thead", "tbody", "tfoot":
				visit(c, c.Data)
			case "tr":
				row := h.row(c)
				switch {
				case section == "thead":
					rows.Head = append(rows.Head, row)
				case section == "tfoot":
					rows.Foot = append(rows.Foot, row)
				default:
					rows.Body = append(rows.Body, row)
				}
			}
		}
	}
	visit(n, "")
	return h.b.Table(rows, 0)
}

func (h *htmlBuilder) row(tr *html.Node) doctree.Row {
	var row doctree.Row
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			row = append(row, h.b.Cell(textContent(c)))
		}
	}
	return row
}

func isBlockElement(tag string) bool {
	switch tag {
	case "ul", "ol", "p", "pre", "blockquote", "table", "div":
		return true
	}
	return false
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

// textContent returns the text below n with runs of whitespace collapsed.
func textContent(n *html.Node) string {
	return collapseSpace(rawText(n))
}

// rawText concatenates the text nodes below n. Script, style and inline
// code elements are skipped; <br> becomes a newline.
func rawText(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "code":
				if n.Parent == nil || n.Parent.Data != "pre" {
					return
				}
			case "br":
				buf.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

// collapseSpace trims each line and joins runs of spaces and tabs.
func collapseSpace(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findMeta(n *html.Node) map[string]string {
	meta := make(map[string]string)
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			var name, content string
			for _, a := range n.Attr {
				switch a.Key {
				case "name":
					name = a.Val
				case "content":
					content = a.Val
				}
			}
			if name != "" {
				meta[strings.ToLower(name)] = content
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return meta
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
