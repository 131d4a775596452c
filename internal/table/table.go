// Package table defines the in-memory tabular data carrier shared by the
// loaders in tableio and the reconciliation core.
//
// A Table is an ordered list of unique column names plus an ordered list of
// rows. Every row is addressed through the table's column list: a column the
// row has no cell for reads as null. Tables are never mutated after
// construction; operations such as Reindex and Head return new tables.
package table

import (
	"errors"
	"fmt"
)

// ErrDuplicateColumn is returned when a column name appears more than once.
var ErrDuplicateColumn = errors.New("duplicate column name")

// Row maps column names to cells. A missing entry is a null cell.
type Row map[string]Cell

// Get returns the cell for col, or a null cell if the row has none.
func (r Row) Get(col string) Cell {
	if c, ok := r[col]; ok {
		return c
	}
	return Null()
}

// Table is an ordered set of columns and an ordered sequence of rows.
type Table struct {
	columns []string
	index   map[string]int
	rows    []Row
}

// New builds a Table from columns and rows. Column names must be unique.
// Cells whose column is not in columns are dropped; the input slices and maps
// are copied so later changes by the caller do not leak into the table.
func New(columns []string, rows []Row) (*Table, error) {
	index := make(map[string]int, len(columns))
	cols := make([]string, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c)
		}
		index[c] = i
		cols[i] = c
	}

	out := make([]Row, len(rows))
	for i, r := range rows {
		row := make(Row, len(cols))
		for col, cell := range r {
			if _, ok := index[col]; ok {
				row[col] = cell
			}
		}
		out[i] = row
	}

	return &Table{columns: cols, index: index, rows: out}, nil
}

// MustNew is like New but panics on error.
// Intended for tests and static fixtures.
func MustNew(columns []string, rows []Row) *Table {
	t, err := New(columns, rows)
	if err != nil {
		panic(err)
	}
	return t
}

// Empty returns a table with no columns and no rows.
func Empty() *Table {
	return &Table{index: map[string]int{}}
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether col is one of the table's columns.
func (t *Table) HasColumn(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns the i-th row. The returned map must not be modified.
func (t *Table) Row(i int) Row {
	return t.rows[i]
}

// Cell returns the cell at row i, column col. Unknown columns read as null.
func (t *Table) Cell(i int, col string) Cell {
	if !t.HasColumn(col) {
		return Null()
	}
	return t.rows[i].Get(col)
}

// Records renders the table as string records in column order, with nulls
// written as empty strings. The header is not included.
func (t *Table) Records() [][]string {
	out := make([][]string, len(t.rows))
	for i, r := range t.rows {
		rec := make([]string, len(t.columns))
		for j, c := range t.columns {
			rec[j] = r.Get(c).String()
		}
		out[i] = rec
	}
	return out
}

// Reindex returns a new table addressed by schema. Columns of t not in
// schema are dropped; schema columns t lacks are null in every row.
func (t *Table) Reindex(schema []string) (*Table, error) {
	return New(schema, t.rows)
}

// Head returns a table holding at most n rows and whether rows were cut.
// n <= 0 means no limit and returns t itself.
func (t *Table) Head(n int) (*Table, bool) {
	if n <= 0 || len(t.rows) <= n {
		return t, false
	}
	return &Table{columns: t.columns, index: t.index, rows: t.rows[:n]}, true
}
