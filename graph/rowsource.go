package graph

import (
	"database/sql"
	"fmt"
)

// RowSource is a lazy, finite, non-restartable sequence of rows for one
// entity type, with filter and order already applied upstream. It is the
// scanning subset of dialect/sql.ColumnScanner; *sql.Rows satisfies it
// directly.
//
// A row source is consumed once, fully, then closed. A half-consumed
// source yields an incomplete graph and must be treated as an error by
// the caller; the materializer never returns one.
type RowSource interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

var _ RowSource = (*sql.Rows)(nil)

// ValuesRowSource serves pre-decoded rows from memory. It backs tests and
// the session's query-cache replay path, where a cached result set is fed
// back through the same materialization pipeline as live rows.
type ValuesRowSource struct {
	columns []string
	rows    [][]any
	pos     int // 1-based position after Next
	closed  bool
}

// NewValuesRowSource returns a RowSource over the given column names and
// row values. Row values are assigned to scan destinations via the
// sql.Scanner interface.
func NewValuesRowSource(columns []string, rows [][]any) *ValuesRowSource {
	return &ValuesRowSource{columns: columns, rows: rows}
}

// Columns returns the column names.
func (v *ValuesRowSource) Columns() ([]string, error) {
	return v.columns, nil
}

// Next advances to the next row.
func (v *ValuesRowSource) Next() bool {
	if v.closed || v.pos >= len(v.rows) {
		return false
	}
	v.pos++
	return true
}

// Scan assigns the current row's values to the given destinations.
func (v *ValuesRowSource) Scan(dest ...any) error {
	if v.pos == 0 || v.pos > len(v.rows) {
		return fmt.Errorf("graph: Scan called without Next")
	}
	row := v.rows[v.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("graph: expected %d destination arguments in Scan, not %d", len(row), len(dest))
	}
	for i, d := range dest {
		if err := assignValue(d, row[i]); err != nil {
			return fmt.Errorf("graph: Scan column %q: %w", v.columns[i], err)
		}
	}
	return nil
}

// Err always returns nil; an in-memory source cannot fail mid-iteration.
func (v *ValuesRowSource) Err() error { return nil }

// Close marks the source as exhausted.
func (v *ValuesRowSource) Close() error {
	v.closed = true
	return nil
}

// assignValue assigns src to the dest pointer the same way database/sql
// drivers do: via the sql.Scanner interface where available, with direct
// assignment for the plain pointer types used in scan destinations.
func assignValue(dest, src any) error {
	switch d := dest.(type) {
	case sql.Scanner:
		return d.Scan(src)
	case *any:
		*d = src
		return nil
	case *int64:
		switch s := src.(type) {
		case int64:
			*d = s
			return nil
		case int:
			*d = int64(s)
			return nil
		}
	case *string:
		switch s := src.(type) {
		case string:
			*d = s
			return nil
		case []byte:
			*d = string(s)
			return nil
		}
	case *[]byte:
		if s, ok := src.([]byte); ok {
			*d = s
			return nil
		}
	case *float64:
		if s, ok := src.(float64); ok {
			*d = s
			return nil
		}
	case *bool:
		if s, ok := src.(bool); ok {
			*d = s
			return nil
		}
	}
	return fmt.Errorf("unsupported destination type %T for value type %T", dest, src)
}
