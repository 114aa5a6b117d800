// Package table provides the columnar trigger table passed between
// pipeline stages: named, equal-length float64 columns where one row is
// one trigger. Tables are immutable once read from disk except for row
// selection and cross-file concatenation.
package table

import (
	"fmt"
	"sort"
)

// Well-known column names stored in trigger files or attached by the
// pipeline.
const (
	ColSNR              = "snr"
	ColChisq            = "chisq"
	ColChisqDOF         = "chisq_dof"
	ColTemplateDuration = "template_duration"

	// ColStat holds the derived ranking statistic; it is attached by the
	// pipeline after reading and is never present in raw files.
	ColStat = "stat"
)

// Table is a mapping from column name to an ordered sequence of values.
// All columns have the same length.
type Table struct {
	columns map[string][]float64
	rows    int
}

// New returns an empty table with no columns and no rows.
func New() *Table {
	return &Table{columns: make(map[string][]float64)}
}

// FromColumns builds a table from the given columns. All columns must
// have the same length.
func FromColumns(cols map[string][]float64) (*Table, error) {
	t := New()
	for name, vals := range cols {
		if len(t.columns) > 0 && len(vals) != t.rows {
			return nil, fmt.Errorf("%w: column %q has %d values, want %d",
				ErrColumnLength, name, len(vals), t.rows)
		}
		t.rows = len(vals)
		t.columns[name] = vals
	}
	return t, nil
}

// Rows returns the number of rows in the table.
func (t *Table) Rows() int { return t.rows }

// Column returns the named column, or false if it is absent.
func (t *Table) Column(name string) ([]float64, bool) {
	c, ok := t.columns[name]
	return c, ok
}

// ColumnNames returns the table's column names in sorted order.
func (t *Table) ColumnNames() []string {
	names := make([]string, 0, len(t.columns))
	for name := range t.columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetColumn attaches a column to the table, replacing any existing column
// of the same name. The column length must match the table's row count,
// except on an empty table where it defines the row count.
func (t *Table) SetColumn(name string, vals []float64) error {
	if len(t.columns) > 0 && len(vals) != t.rows {
		return fmt.Errorf("%w: column %q has %d values, want %d",
			ErrColumnLength, name, len(vals), t.rows)
	}
	t.rows = len(vals)
	t.columns[name] = vals
	return nil
}

// Select returns a new table containing only the rows at the given
// indices, in the given order. Indices must be valid; Select is used with
// the output of the cut engine, which only produces valid indices.
func (t *Table) Select(indices []int) *Table {
	out := New()
	out.rows = len(indices)
	for name, vals := range t.columns {
		sel := make([]float64, len(indices))
		for i, idx := range indices {
			sel[i] = vals[idx]
		}
		out.columns[name] = sel
	}
	return out
}

// Append concatenates the rows of other onto t. Both tables must carry
// the same column set.
func (t *Table) Append(other *Table) error {
	if len(t.columns) == 0 {
		for name, vals := range other.columns {
			t.columns[name] = append([]float64(nil), vals...)
		}
		t.rows = other.rows
		return nil
	}
	if len(t.columns) != len(other.columns) {
		return fmt.Errorf("%w: %d columns vs %d", ErrColumnMismatch,
			len(t.columns), len(other.columns))
	}
	for name := range t.columns {
		if _, ok := other.columns[name]; !ok {
			return fmt.Errorf("%w: column %q missing from appended table",
				ErrColumnMismatch, name)
		}
	}
	for name, vals := range other.columns {
		t.columns[name] = append(t.columns[name], vals...)
	}
	t.rows += other.rows
	return nil
}
