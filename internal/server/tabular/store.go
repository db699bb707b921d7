// Package tabular is the adapter over the spreadsheet-like backing store.
//
// A store holds named tables. Row 1 of every table is a header naming the
// columns; data rows follow and are addressed by a 1-based data index (the
// first row under the header is 1). Three operations are supported: read a
// whole table, append rows at the end, and overwrite a single cell.
//
// Mutations are not coordinated across writers: two concurrent appends land
// in an undefined relative order and the last cell write wins.
package tabular

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/timesheet/internal/common"
)

// Store is implemented by every backend and by the Cached decorator.
type Store interface {
	// ReadAll returns the header and all non-blank data rows of table.
	ReadAll(ctx context.Context, table string) (*Table, error)

	// AppendRows appends rows after the last data row. Each row is a tuple in
	// the table's column order.
	AppendRows(ctx context.Context, table string, rows [][]string) error

	// UpdateCell overwrites one cell. column is resolved against the current
	// header row.
	UpdateCell(ctx context.Context, table string, rowIndex int, column, value string) error

	// EnsureTable creates table with the given header if it does not exist.
	EnsureTable(ctx context.Context, table string, header []string) error
}

// Row is one data row.
type Row struct {
	// Index is the 1-based data row index used by UpdateCell.
	Index  int
	Values map[string]string
}

// Get returns the value of column, or "" if the row has no such column.
func (r Row) Get(column string) string {
	return r.Values[column]
}

// Table is a snapshot of a table.
type Table struct {
	Name   string
	Header []string
	Rows   []Row
}

// NewTable builds a Table from raw sheet rows, the first of which is the
// header. Blank data rows are skipped but still count towards Index.
func NewTable(name string, raw [][]string) *Table {
	t := &Table{Name: name}
	if len(raw) == 0 {
		return t
	}

	t.Header = make([]string, len(raw[0]))
	for i, h := range raw[0] {
		t.Header[i] = strings.TrimSpace(h)
	}

	for i, cells := range raw[1:] {
		if isBlank(cells) {
			continue
		}
		values := make(map[string]string, len(t.Header))
		for c, col := range t.Header {
			if col == "" {
				continue
			}
			if c < len(cells) {
				values[col] = strings.TrimSpace(cells[c])
			} else {
				values[col] = ""
			}
		}
		t.Rows = append(t.Rows, Row{Index: i + 1, Values: values})
	}
	return t
}

// ColumnIndex returns the 0-based position of column in the header, or -1.
func (t *Table) ColumnIndex(column string) int {
	for i, h := range t.Header {
		if h == column {
			return i
		}
	}
	return -1
}

// Require fails with common.ErrNotFound naming the first absent column.
func (t *Table) Require(columns ...string) error {
	for _, c := range columns {
		if t.ColumnIndex(c) < 0 {
			return fmt.Errorf("%w: column %q in table %q", common.ErrNotFound, c, t.Name)
		}
	}
	return nil
}

// Tuple lays values out in header order for AppendRows. Header columns
// missing from values are left blank; values without a column are dropped.
func Tuple(header []string, values map[string]string) []string {
	row := make([]string, len(header))
	for i, col := range header {
		row[i] = values[col]
	}
	return row
}

// Tuple lays values out in the order of t's header.
func (t *Table) Tuple(values map[string]string) []string {
	return Tuple(t.Header, values)
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := &Table{Name: t.Name, Header: append([]string(nil), t.Header...)}
	if t.Rows != nil {
		c.Rows = make([]Row, len(t.Rows))
	}
	for i, r := range t.Rows {
		values := make(map[string]string, len(r.Values))
		for k, v := range r.Values {
			values[k] = v
		}
		c.Rows[i] = Row{Index: r.Index, Values: values}
	}
	return c
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func tableNotFound(table string) error {
	return fmt.Errorf("%w: table %q", common.ErrNotFound, table)
}

func columnNotFound(table, column string) error {
	return fmt.Errorf("%w: column %q in table %q", common.ErrNotFound, column, table)
}

func rowNotFound(table string, rowIndex int) error {
	return fmt.Errorf("%w: row %d in table %q", common.ErrNotFound, rowIndex, table)
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
}
