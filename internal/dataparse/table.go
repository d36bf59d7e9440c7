// Package dataparse turns downloaded files and page markup into tables and
// text, and runs the simple aggregations quiz questions ask for.
package dataparse

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"
)

var (
	// ErrNoColumn is returned when an operation names a column the table lacks.
	ErrNoColumn = errors.New("no such column")
	// ErrUnsupportedKind is returned by Parse for formats it cannot read.
	ErrUnsupportedKind = errors.New("unsupported data kind")
)

// Table is a header row plus string cells. Every row has exactly
// len(Columns) cells. Tables built by NewTable have unique column names.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable builds a table, padding or trimming rows to the header width.
// Blank header cells become "Unnamed: <position>" and repeated names get a
// ".1", ".2", ... suffix, so every column can be addressed by name.
func NewTable(columns []string, rows [][]string) *Table {
	t := &Table{Columns: uniqueColumns(columns), Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		t.Rows = append(t.Rows, fitRow(r, len(columns)))
	}
	return t
}

func uniqueColumns(columns []string) []string {
	out := make([]string, len(columns))
	taken := make(map[string]bool, len(columns))
	for _, c := range columns {
		taken[c] = true
	}
	dup := make(map[string]bool, len(columns))
	for i, c := range columns {
		name := strings.TrimSpace(c)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		} else if !dup[c] {
			dup[c] = true
			out[i] = c
			continue
		}
		base := name
		for k := 1; taken[name]; k++ {
			name = fmt.Sprintf("%s.%d", base, k)
		}
		taken[name] = true
		out[i] = name
	}
	return out
}

func fitRow(r []string, width int) []string {
	out := make([]string, width)
	copy(out, r)
	return out
}

// Index returns the position of column, or -1.
func (t *Table) Index(column string) int {
	return slices.Index(t.Columns, column)
}

// HasColumn reports whether column exists.
func (t *Table) HasColumn(column string) bool {
	return t.Index(column) >= 0
}

// Column returns the cells of one column.
func (t *Table) Column(column string) ([]string, error) {
	i := t.Index(column)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoColumn, column)
	}
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out, nil
}

// Shape returns the row and column counts.
func (t *Table) Shape() (rows, cols int) {
	return len(t.Rows), len(t.Columns)
}

// Concat stacks tables row-wise. The result has the union of all columns
// in first-seen order; cells a table does not have are left empty. A name
// repeated within one table fills a separate column per occurrence.
func Concat(tables ...*Table) *Table {
	type slot struct {
		name string
		nth  int
	}
	var columns []string
	seen := make(map[slot]int)
	slots := make([][]int, len(tables))
	for ti, t := range tables {
		nth := make(map[string]int, len(t.Columns))
		slots[ti] = make([]int, len(t.Columns))
		for i, c := range t.Columns {
			k := slot{c, nth[c]}
			nth[c]++
			pos, ok := seen[k]
			if !ok {
				pos = len(columns)
				seen[k] = pos
				columns = append(columns, c)
			}
			slots[ti][i] = pos
		}
	}

	out := &Table{Columns: columns}
	for ti, t := range tables {
		for _, row := range t.Rows {
			merged := make([]string, len(columns))
			for i, pos := range slots[ti] {
				merged[pos] = row[i]
			}
			out.Rows = append(out.Rows, merged)
		}
	}
	return out
}

// Filter keeps the rows whose column equals value.
func (t *Table) Filter(column, value string) (*Table, error) {
	i := t.Index(column)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoColumn, column)
	}
	out := &Table{Columns: t.Columns}
	for _, row := range t.Rows {
		if row[i] == value {
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}

// Sort orders rows by column. Numeric cells sort numerically and before
// any text cells; the sort is stable.
func (t *Table) Sort(column string, ascending bool) (*Table, error) {
	i := t.Index(column)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoColumn, column)
	}
	rows := slices.Clone(t.Rows)
	slices.SortStableFunc(rows, func(a, b []string) int {
		c := compareCells(a[i], b[i])
		if !ascending {
			c = -c
		}
		return c
	})
	return &Table{Columns: t.Columns, Rows: rows}, nil
}

func compareCells(a, b string) int {
	fa, aok := parseNumber(a)
	fb, bok := parseNumber(b)
	switch {
	case aok && bok:
		return cmp.Compare(fa, fb)
	case aok:
		return -1
	case bok:
		return 1
	}
	return strings.Compare(a, b)
}

// Summary describes the table for a model prompt: shape, column names,
// and the first n rows.
func (t *Table) Summary(n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Shape: (%d, %d)\n", len(t.Rows), len(t.Columns))
	fmt.Fprintf(&b, "Columns: [%s]\n", strings.Join(t.Columns, ", "))
	b.WriteString("First rows:\n")

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))
	for _, row := range t.Rows[:min(n, len(t.Rows))] {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
	return strings.TrimRight(b.String(), "\n")
}

// String renders the whole table the way Summary renders its head.
func (t *Table) String() string {
	return t.Summary(len(t.Rows))
}
