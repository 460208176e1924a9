// Package tabular holds the immutable string table passed between the
// ingestion layer and the canonicalization pipeline. Every cell is kept as
// text; typing happens once, at standardization.
package tabular

import (
	"fmt"
	"strings"
)

// Table is an ordered set of named columns over string rows. Methods never
// mutate the receiver; transformations return a new Table.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// New builds a table, copying the inputs. Short rows are padded with empty
// cells and long rows are truncated to the column count.
func New(columns []string, rows [][]string) *Table {
	t := &Table{
		columns: append([]string(nil), columns...),
		rows:    make([][]string, len(rows)),
	}
	for i, row := range rows {
		t.rows[i] = fit(row, len(columns))
	}
	t.reindex()
	return t
}

func fit(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.columns))
	for i, c := range t.columns {
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}
}

// Columns returns a copy of the column labels.
func (t *Table) Columns() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.columns...)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Width returns the number of columns.
func (t *Table) Width() int {
	if t == nil {
		return 0
	}
	return len(t.columns)
}

// Empty reports whether the table has no rows or no columns.
func (t *Table) Empty() bool {
	return t.Len() == 0 || t.Width() == 0
}

// Has reports whether the column exists.
func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Value returns the cell at row i for column, or "" when the column is absent.
func (t *Table) Value(i int, column string) string {
	c, ok := t.index[column]
	if !ok {
		return ""
	}
	return t.rows[i][c]
}

// Row returns a read-only view of row i.
func (t *Table) Row(i int) Row {
	return Row{table: t, i: i}
}

// Rows returns a deep copy of the cell grid.
func (t *Table) Rows() [][]string {
	out := make([][]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// Column returns a copy of every value in column.
func (t *Table) Column(column string) []string {
	c, ok := t.index[column]
	if !ok {
		return nil
	}
	out := make([]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[c]
	}
	return out
}

// WithColumns returns a copy with the columns relabeled. The label count must
// match the width.
func (t *Table) WithColumns(columns []string) (*Table, error) {
	if len(columns) != len(t.columns) {
		return nil, fmt.Errorf("tabular: %d labels for %d columns", len(columns), len(t.columns))
	}
	return New(columns, t.rows), nil
}

// WithColumn returns a copy where column holds values. The column is
// appended when missing, replaced otherwise.
func (t *Table) WithColumn(column string, values []string) *Table {
	columns := t.Columns()
	rows := t.Rows()
	c, ok := t.index[column]
	if !ok {
		columns = append(columns, column)
		c = len(columns) - 1
		for i := range rows {
			rows[i] = append(rows[i], "")
		}
	}
	for i := range rows {
		if i < len(values) {
			rows[i][c] = values[i]
		}
	}
	return New(columns, rows)
}

// Select returns the listed columns in the given order. Missing columns are
// filled with empty cells.
func (t *Table) Select(columns []string) *Table {
	rows := make([][]string, len(t.rows))
	for i := range t.rows {
		row := make([]string, len(columns))
		for j, c := range columns {
			row[j] = t.Value(i, c)
		}
		rows[i] = row
	}
	return New(columns, rows)
}

// Where keeps the rows for which keep returns true.
func (t *Table) Where(keep func(Row) bool) *Table {
	rows := make([][]string, 0, len(t.rows))
	for i, row := range t.rows {
		if keep(t.Row(i)) {
			rows = append(rows, row)
		}
	}
	return New(t.columns, rows)
}

// Concat stacks tables vertically. The result carries the union of columns
// in order of first appearance; cells absent from a part are empty.
func Concat(parts ...*Table) *Table {
	var columns []string
	seen := map[string]bool{}
	for _, p := range parts {
		for _, c := range p.columns {
			if !seen[c] {
				seen[c] = true
				columns = append(columns, c)
			}
		}
	}
	var rows [][]string
	for _, p := range parts {
		rows = append(rows, p.Select(columns).rows...)
	}
	return New(columns, rows)
}

// Row is a read-only view of one table row.
type Row struct {
	table *Table
	i     int
}

// Index returns the row position in its table.
func (r Row) Index() int { return r.i }

// Get returns the trimmed cell for column.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r.table.Value(r.i, column))
}

// Blank reports whether every cell in the row is empty.
func (r Row) Blank() bool {
	for _, v := range r.table.rows[r.i] {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
