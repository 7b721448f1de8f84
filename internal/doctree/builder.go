package doctree

// Builder creates nodes for one source file. Nodes only receive a source
// location when SourceMap is set.
type Builder struct {
	File      string
	SourceMap bool
	Subs      Substitutor
}

// Location returns the location of a 1-based line, or nil when location
// tracking is off or the line is unknown.
func (b *Builder) Location(line int) *SourceLocation {
	if !b.SourceMap || line <= 0 {
		return nil
	}
	return NewSourceLocation(b.File, line)
}

func (b *Builder) Document(title string, attrs map[string]string, line int) *Document {
	if attrs == nil {
		attrs = make(map[string]string)
	}
	d := &Document{Title: title, Attributes: attrs, subs: b.Subs}
	d.Location = b.Location(line)
	return d
}

func (b *Builder) Block(context string, lines []string, line int) *Block {
	blk := &Block{Context: context, Lines: lines, subs: b.Subs}
	blk.Location = b.Location(line)
	return blk
}

func (b *Builder) List(ordered bool, line int) *List {
	l := &List{Ordered: ordered}
	l.Location = b.Location(line)
	return l
}

func (b *Builder) ListItem(text string, line int) *ListItem {
	item := &ListItem{Source: text, subs: b.Subs}
	item.Location = b.Location(line)
	return item
}

func (b *Builder) Section(title string, level, line int) *Section {
	s := &Section{RawTitle: title, Level: level, subs: b.Subs}
	s.Location = b.Location(line)
	return s
}

func (b *Builder) Table(rows Rows, line int) *Table {
	t := &Table{Rows: rows}
	t.Location = b.Location(line)
	return t
}

func (b *Builder) Cell(text string) *Cell {
	return &Cell{Source: text, subs: b.Subs}
}

func (b *Builder) Other(name string, line int) *Other {
	o := &Other{Name: name}
	o.Location = b.Location(line)
	return o
}
