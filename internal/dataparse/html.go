package dataparse

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ExtractHTMLTables returns every <table> in the document, outermost
// first. The header is the first <thead> row, or a first row made only of
// <th> cells; otherwise columns are named by position ("0", "1", ...).
// Blank or repeated header names are made unique as NewTable does.
// Tables without data rows are skipped.
func ExtractHTMLTables(doc string) ([]*Table, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("html: %w", err)
	}

	var tables []*Table
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Table {
			if t := tableFromNode(n); t != nil {
				tables = append(tables, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return tables, nil
}

type htmlRow struct {
	cells    []string
	allTH    bool
	inHeader bool
}

func tableFromNode(table *html.Node) *Table {
	var rows []htmlRow
	var collect func(n *html.Node, inHead bool)
	collect = func(n *html.Node, inHead bool) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Table:
				// Nested tables are reported separately.
			case atom.Thead:
				collect(c, true)
			case atom.Tbody, atom.Tfoot:
				collect(c, false)
			case atom.Tr:
				rows = append(rows, rowFromNode(c, inHead))
			}
		}
	}
	collect(table, false)

	if len(rows) == 0 {
		return nil
	}

	var header []string
	body := rows
	if rows[0].inHeader || rows[0].allTH {
		header = rows[0].cells
		body = rows[1:]
	}
	// Further <thead> rows are header levels, not data.
	body = slices.DeleteFunc(slices.Clone(body), func(r htmlRow) bool { return r.inHeader })
	width := len(header)
	for _, r := range body {
		width = max(width, len(r.cells))
	}
	if len(body) == 0 || width == 0 {
		return nil
	}
	if header == nil {
		header = make([]string, width)
		for i := range header {
			header[i] = strconv.Itoa(i)
		}
	}
	for i := len(header); i < width; i++ {
		header = append(header, strconv.Itoa(i))
	}

	cells := make([][]string, len(body))
	for i, r := range body {
		cells[i] = r.cells
	}
	return NewTable(header, cells)
}

func rowFromNode(tr *html.Node, inHead bool) htmlRow {
	row := htmlRow{allTH: true, inHeader: inHead}
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
			continue
		}
		if c.DataAtom == atom.Td {
			row.allTH = false
		}
		row.cells = append(row.cells, nodeText(c))
	}
	if len(row.cells) == 0 {
		row.allTH = false
	}
	return row
}

// nodeText concatenates the text under n with whitespace collapsed.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
