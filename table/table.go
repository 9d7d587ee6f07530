package table

import (
	"sort"
)

// Column names used to order variant records.
const (
	ColumnChrom = "CHROM"
	ColumnPos   = "POS"
)

// Row is one record, a mapping from column name to value.
type Row map[string]Value

// Get returns the value of col, or Null if the row does not carry it.
func (row Row) Get(col string) Value {
	return row[col]
}

// Clone returns a shallow copy of row. Values are immutable, so the copy is independent.
func (row Row) Clone() Row {
	if row == nil {
		return nil
	}

	clone := make(Row, len(row))
	for k, v := range row {
		clone[k] = v
	}
	return clone
}

// Equal reports whether both rows carry the same columns with equal values.
func (row Row) Equal(other Row) bool {
	if len(row) != len(other) {
		return false
	}

	for k, v := range row {
		ov, ok := other[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}

	return true
}

// Table is an immutable sequence of rows sharing an ordered column list.
type Table struct {
	columns []string
	rows    []Row
}

// New creates a table with the given schema. Rows are not checked against it, columns
// missing from a row read as Null.
func New(columns []string, rows ...Row) *Table {
	return &Table{
		columns: append([]string(nil), columns...),
		rows:    append([]Row(nil), rows...),
	}
}

// FromRows builds a table whose schema is inferred from the keys the rows carry.
//
// Columns that appear in base keep the base order, any other column is appended in
// lexical order. An empty row set yields a table without columns.
func FromRows(rows []Row, base []string) *Table {
	if len(rows) == 0 {
		return &Table{}
	}

	seen := make(map[string]bool)
	for _, row := range rows {
		for col := range row {
			seen[col] = true
		}
	}

	columns := make([]string, 0, len(seen))
	for _, col := range base {
		if seen[col] {
			columns = append(columns, col)
			delete(seen, col)
		}
	}

	extra := make([]string, 0, len(seen))
	for col := range seen {
		extra = append(extra, col)
	}
	sort.Strings(extra)

	return &Table{
		columns: append(columns, extra...),
		rows:    append([]Row(nil), rows...),
	}
}

// Columns returns a copy of the schema.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Has reports whether col is part of the schema.
func (t *Table) Has(col string) bool {
	for _, c := range t.columns {
		if c == col {
			return true
		}
	}
	return false
}

func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) Row(i int) Row {
	return t.rows[i].Clone()
}

// Rows returns a copy of the rows.
func (t *Table) Rows() []Row {
	rows := make([]Row, len(t.rows))
	for i, row := range t.rows {
		rows[i] = row.Clone()
	}
	return rows
}

// SortByLocus returns a copy of t stably sorted ascending by (CHROM, POS) and true when
// both columns are in the schema. Otherwise t is returned as is with false.
func (t *Table) SortByLocus() (*Table, bool) {
	if !t.Has(ColumnChrom) || !t.Has(ColumnPos) {
		return t, false
	}

	rows := append([]Row(nil), t.rows...)
	sort.SliceStable(rows, func(i, j int) bool {
		if c := Compare(rows[i].Get(ColumnChrom), rows[j].Get(ColumnChrom)); c != 0 {
			return c < 0
		}
		return Compare(rows[i].Get(ColumnPos), rows[j].Get(ColumnPos)) < 0
	})

	return &Table{columns: t.Columns(), rows: rows}, true
}
