package parser

import (
	"bytes"
	"testing"

	"github.com/dgallion1/docspell/internal/doctree"
	"github.com/fumiama/go-docx"
)

func buildDOCX(t *testing.T, build func(f *docx.Docx)) *bytes.Reader {
	t.Helper()
	f := docx.New().WithDefaultTheme()
	build(f)
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestDOCXParser_Structure(t *testing.T) {
	r := buildDOCX(t, func(f *docx.Docx) {
		f.AddParagraph().Style("Title").AddText("Quarterly Report")
		f.AddParagraph().AddText("Opening remarks.")
		f.AddParagraph().Style("Heading1").AddText("Results")
		f.AddParagraph().AddText("Revenue grew.")
		f.AddParagraph().Style("ListBullet").NumPr("1", "0").AddText("first point")
		f.AddParagraph().Style("ListBullet").NumPr("1", "1").AddText("nested point")
		f.AddParagraph().Style("ListBullet").NumPr("1", "0").AddText("second point")
		tbl := f.AddTable(2, 2, 0, nil)
		tbl.TableRows[0].TableCells[0].AddParagraph().AddText("Name")
		tbl.TableRows[0].TableCells[1].AddParagraph().AddText("Value")
		tbl.TableRows[1].TableCells[0].AddParagraph().AddText("alpha")
		tbl.TableRows[1].TableCells[1].AddParagraph().AddText("beta")
		f.AddParagraph().Style("Code").AddText("x := 1")
	})

	doc, err := (&DOCXParser{}).Parse(r, "report.docx", Options{SourceMap: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Doctitle() != "Quarterly Report" {
		t.Errorf("title = %q", doc.Doctitle())
	}
	if got := doc.SourceLocation().LineNumber(); got != 1 {
		t.Errorf("document line = %d, want 1", got)
	}

	top := doc.Blocks()
	if len(top) != 2 {
		t.Fatalf("expected paragraph and section at top level, got %d nodes", len(top))
	}
	intro, ok := top[0].(*doctree.Block)
	if !ok || intro.Lines[0] != "Opening remarks." || intro.SourceLocation().LineNumber() != 2 {
		t.Errorf("unexpected intro block %#v", top[0])
	}

	sec, ok := top[1].(*doctree.Section)
	if !ok {
		t.Fatalf("expected section, got %T", top[1])
	}
	if sec.Title() != "Results" || sec.Level != 1 || sec.SourceLocation().LineNumber() != 3 {
		t.Errorf("section = %q level %d line %d", sec.Title(), sec.Level, sec.SourceLocation().LineNumber())
	}

	children := sec.Blocks()
	if len(children) != 4 {
		t.Fatalf("expected 4 section children, got %d", len(children))
	}
	list, ok := children[1].(*doctree.List)
	if !ok {
		t.Fatalf("expected list, got %T", children[1])
	}
	if list.Ordered {
		t.Error("bullet list reported as ordered")
	}
	items := list.Blocks()
	if len(items) != 2 {
		t.Fatalf("expected 2 top level items, got %d", len(items))
	}
	first := items[0].(*doctree.ListItem)
	if first.Text() != "first point" || len(first.Blocks()) != 1 {
		t.Fatalf("first item = %q with %d children", first.Text(), len(first.Blocks()))
	}
	nested := first.Blocks()[0].(*doctree.List).Blocks()[0].(*doctree.ListItem)
	if nested.Text() != "nested point" || nested.SourceLocation().LineNumber() != 6 {
		t.Errorf("nested item = %q line %d", nested.Text(), nested.SourceLocation().LineNumber())
	}
	if items[1].(*doctree.ListItem).Text() != "second point" {
		t.Errorf("second item = %q", items[1].(*doctree.ListItem).Text())
	}

	table, ok := children[2].(*doctree.Table)
	if !ok {
		t.Fatalf("expected table, got %T", children[2])
	}
	if len(table.Rows.Head) != 0 || len(table.Rows.Body) != 2 {
		t.Fatalf("rows: head %d body %d", len(table.Rows.Head), len(table.Rows.Body))
	}
	if table.Rows.Body[1][1].Text() != "beta" {
		t.Errorf("cell = %q", table.Rows.Body[1][1].Text())
	}

	code, ok := children[3].(*doctree.Block)
	if !ok || code.Context != "listing" {
		t.Errorf("expected listing block, got %#v", children[3])
	}
}

func TestDOCXParser_NoSourceMap(t *testing.T) {
	r := buildDOCX(t, func(f *docx.Docx) {
		f.AddParagraph().AddText("Only text.")
	})
	doc, err := (&DOCXParser{}).Parse(r, "plain.docx", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	blocks := paragraphs(t, doc)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].SourceLocation() != nil {
		t.Errorf("expected no location, got %v", blocks[0].SourceLocation())
	}
	if doc.Doctitle() != "" {
		t.Errorf("expected empty title, got %q", doc.Doctitle())
	}
}

func TestDOCXParser_InvalidArchive(t *testing.T) {
	_, err := (&DOCXParser{}).Parse(bytes.NewReader([]byte("not a zip")), "broken.docx", Options{})
	if err == nil {
		t.Fatal("expected error for invalid docx")
	}
}

func TestDOCXHeadingLevel(t *testing.T) {
	tests := []struct {
		style string
		want  int
	}{
		{"Heading1", 1},
		{"heading 3", 3},
		{"Heading6", 6},
		{"Heading7", 0},
		{"HeadingX", 0},
		{"Normal", 0},
		{"", 0},
	}
	for _, tt := range tests {
		para := &docx.Paragraph{}
		if tt.style != "" {
			para.Properties = &docx.ParagraphProperties{Style: &docx.Style{Val: tt.style}}
		}
		if got := docxHeadingLevel(para); got != tt.want {
			t.Errorf("docxHeadingLevel(%q) = %d, want %d", tt.style, got, tt.want)
		}
	}
}
