package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/docspell/internal/doctree"
)

func TestCSVParser_SingleTable(t *testing.T) {
	input := "name,description\nwidget,A small part\ngadget,\"Quoted, with comma\"\n"
	p := &CSVParser{}
	doc, err := p.Parse(strings.NewReader(input), "parts.csv", Options{SourceMap: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Blocks()) != 1 {
		t.Fatalf("expected 1 block, got %d", len(doc.Blocks()))
	}
	table, ok := doc.Blocks()[0].(*doctree.Table)
	if !ok {
		t.Fatalf("expected *doctree.Table, got %T", doc.Blocks()[0])
	}
	if len(table.Rows.Head) != 1 || table.Rows.Head[0][1].Text() != "description" {
		t.Errorf("expected header row with description, got %+v", table.Rows.Head)
	}
	if len(table.Rows.Body) != 2 {
		t.Fatalf("expected 2 body rows, got %d", len(table.Rows.Body))
	}
	if got := table.Rows.Body[1][1].Text(); got != "Quoted, with comma" {
		t.Errorf("expected quoted cell, got %q", got)
	}
	if got := table.SourceLocation().LineNumber(); got != 1 {
		t.Errorf("expected table at line 1, got %d", got)
	}
}

func TestCSVParser_RaggedRows(t *testing.T) {
	p := &CSVParser{}
	doc, err := p.Parse(strings.NewReader("a,b,c\n1\n"), "ragged.csv", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	table := doc.Blocks()[0].(*doctree.Table)
	if len(table.Rows.Body[0]) != 1 {
		t.Errorf("expected 1 cell in ragged row, got %d", len(table.Rows.Body[0]))
	}
}

func TestCSVParser_Empty(t *testing.T) {
	p := &CSVParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.csv", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.HasBlocks() {
		t.Error("expected no blocks for empty csv")
	}
}
