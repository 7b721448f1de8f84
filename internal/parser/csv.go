package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/docspell/internal/doctree"
)

// CSVParser handles CSV files. The whole file becomes one table whose
// first record is the header row.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string, opts Options) (*doctree.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	attrs := documentAttributes(filename, nil, opts)
	b := newBuilder(filename, attrs, nil, opts)
	doc := b.Document("", attrs, 1)
	if len(records) == 0 {
		return doc, nil
	}

	toRow := func(record []string) doctree.Row {
		row := make(doctree.Row, len(record))
		for i, field := range record {
			row[i] = b.Cell(field)
		}
		return row
	}

	var rows doctree.Rows
	rows.Head = []doctree.Row{toRow(records[0])}
	for _, record := range records[1:] {
		rows.Body = append(rows.Body, toRow(record))
	}
	doc.Append(b.Table(rows, 1))
	return doc, nil
}
