package dataparse

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFDocument is the text of a PDF plus any tables recovered from its
// text layout.
type PDFDocument struct {
	Text   string
	Pages  int
	Tables []PDFTable
}

// PDFTable is a table found on one page.
type PDFTable struct {
	Page  int
	Table *Table
}

// ParsePDF extracts each page's text under a "--- Page N ---" header.
// Runs of two or more text rows with the same number of fragments are
// reported as tables, first row as header.
func ParsePDF(data []byte) (doc *PDFDocument, err error) {
	// The reader panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("pdf: malformed document: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}

	doc = &PDFDocument{}
	var parts []string
	for n := 1; n <= r.NumPage(); n++ {
		page := r.Page(n)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("pdf page %d: %w", n, err)
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, fmt.Sprintf("--- Page %d ---\n%s", n, text))
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var cells [][]string
		for _, row := range rows {
			var line []string
			for _, t := range row.Content {
				if s := strings.TrimSpace(t.S); s != "" {
					line = append(line, s)
				}
			}
			cells = append(cells, line)
		}
		for _, t := range tablesFromRows(cells) {
			doc.Tables = append(doc.Tables, PDFTable{Page: n, Table: t})
		}
	}
	doc.Text = strings.Join(parts, "\n\n")
	doc.Pages = len(parts)
	return doc, nil
}

// tablesFromRows groups consecutive rows of equal width (at least two
// cells) into tables.
func tablesFromRows(rows [][]string) []*Table {
	var (
		out []*Table
		run [][]string
	)
	flush := func() {
		if len(run) >= 2 {
			out = append(out, NewTable(run[0], run[1:]))
		}
		run = nil
	}
	for _, r := range rows {
		if len(r) < 2 || (len(run) > 0 && len(r) != len(run[0])) {
			flush()
		}
		if len(r) >= 2 {
			run = append(run, r)
		}
	}
	flush()
	return out
}
