package doctree

import (
	"strconv"
)

// NotAvailable is reported for both file and line of a missing location.
const NotAvailable = "Not available"

// SourceLocation identifies where a node originated. It is immutable and
// may be shared by several nodes.
type SourceLocation struct {
	file        string
	line        int
	unavailable bool
}

// Unavailable is the sentinel used when a node carries no location.
var Unavailable = &SourceLocation{unavailable: true}

// NewSourceLocation returns a location for a 1-based line in file.
func NewSourceLocation(file string, line int) *SourceLocation {
	return &SourceLocation{file: file, line: line}
}

// OrUnavailable returns l, or the sentinel when l is nil.
func (l *SourceLocation) OrUnavailable() *SourceLocation {
	if l == nil {
		return Unavailable
	}
	return l
}

func (l *SourceLocation) IsAvailable() bool {
	return l != nil && !l.unavailable
}

func (l *SourceLocation) File() string {
	if !l.IsAvailable() {
		return NotAvailable
	}
	return l.file
}

func (l *SourceLocation) Line() string {
	if !l.IsAvailable() {
		return NotAvailable
	}
	return strconv.Itoa(l.line)
}

// LineNumber returns the 1-based line, or 0 when unavailable.
func (l *SourceLocation) LineNumber() int {
	if !l.IsAvailable() {
		return 0
	}
	return l.line
}

// String renders the location as "file:line".
func (l *SourceLocation) String() string {
	return l.File() + ":" + l.Line()
}

// Node is one element of the parsed document tree. The set of
// implementations is closed: Document, Block, List, ListItem, Section,
// Table and Other.
type Node interface {
	// NodeName is the kind of node, e.g. "paragraph" or "section".
	NodeName() string
	// SourceLocation is nil when location tracking was off.
	SourceLocation() *SourceLocation
	Blocks() []Node
	HasBlocks() bool

	node()
}

type base struct {
	Location *SourceLocation
	Children []Node
}

func (b *base) SourceLocation() *SourceLocation { return b.Location }
func (b *base) Blocks() []Node                  { return b.Children }
func (b *base) HasBlocks() bool                 { return len(b.Children) > 0 }
func (b *base) node()                           {}

// Append adds child nodes in document order.
func (b *base) Append(children ...Node) {
	b.Children = append(b.Children, children...)
}

// Document is the root of a parsed document.
type Document struct {
	base
	// Title is the raw document title; empty when the source declares none.
	Title      string
	Attributes map[string]string

	subs Substitutor
}

func (d *Document) NodeName() string { return "document" }

// Doctitle returns the substituted document title.
func (d *Document) Doctitle() string {
	return applySubs(d.subs, d.Title)
}

// Attr returns the named attribute or fallback when it is unset.
func (d *Document) Attr(name, fallback string) string {
	if v, ok := d.Attributes[name]; ok {
		return v
	}
	return fallback
}

// Block is a generic content block such as a paragraph, quote or listing.
type Block struct {
	base
	// Context names the block style: paragraph, listing, literal, quote.
	Context string
	Lines   []string

	subs Substitutor
}

func (b *Block) NodeName() string { return b.Context }

// ApplySubs expands attribute references and inline markup in text.
func (b *Block) ApplySubs(text string) string {
	return applySubs(b.subs, text)
}

// List holds ListItem children.
type List struct {
	base
	Ordered bool
}

func (l *List) NodeName() string {
	if l.Ordered {
		return "olist"
	}
	return "ulist"
}

// ListItem is one entry of a List. Its principal text is kept apart from
// any nested blocks.
type ListItem struct {
	base
	Source string

	subs Substitutor
}

func (i *ListItem) NodeName() string { return "list_item" }

// Text returns the substituted principal text.
func (i *ListItem) Text() string {
	return applySubs(i.subs, i.Source)
}

// Section is a titled part of the document containing further blocks.
type Section struct {
	base
	RawTitle string
	Level    int

	subs Substitutor
}

func (s *Section) NodeName() string { return "section" }

// Title returns the substituted section title.
func (s *Section) Title() string {
	return applySubs(s.subs, s.RawTitle)
}

// Table is a grid of cells split into head, body and foot rows.
type Table struct {
	base
	Rows Rows
}

func (t *Table) NodeName() string { return "table" }

type Rows struct {
	Head []Row
	Body []Row
	Foot []Row
}

type Row []*Cell

type Cell struct {
	Source string

	subs Substitutor
}

// Text returns the substituted cell text.
func (c *Cell) Text() string {
	return applySubs(c.subs, c.Source)
}

// Other is any node kind without checkable text of its own.
type Other struct {
	base
	Name string
}

func (o *Other) NodeName() string { return o.Name }
