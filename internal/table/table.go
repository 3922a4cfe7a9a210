// Package table holds the raw and canonical tabular shapes shared by the
// document extractor, the spreadsheet reader and the diff engines.
package table

import (
	"fmt"
	"strings"
)

// RawTable is a grid as it comes out of extraction. Rows may be shorter or
// longer than Header; a nil cell is an absent value.
type RawTable struct {
	Header []string    `json:"header,omitempty" yaml:"header,omitempty"`
	Rows   [][]*string `json:"rows" yaml:"rows"`
}

// Width returns the widest of the header and all rows
func (t RawTable) Width() int {
	width := len(t.Header)
	for _, row := range t.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// NormalizedTable is the canonical comparison shape: unique named columns,
// every value a string, every column exactly Rows long.
type NormalizedTable struct {
	Columns []string            `json:"columns" yaml:"columns"`
	Values  map[string][]string `json:"values" yaml:"values"`
	Rows    int                 `json:"rows" yaml:"rows"`
}

// Empty returns a table with zero columns and zero rows
func Empty() *NormalizedTable {
	return &NormalizedTable{
		Columns: []string{},
		Values:  map[string][]string{},
	}
}

// RowCount returns the number of rows
func (t *NormalizedTable) RowCount() int {
	if t == nil {
		return 0
	}
	return t.Rows
}

// Column returns the values of a column and whether it exists
func (t *NormalizedTable) Column(name string) ([]string, bool) {
	if t == nil {
		return nil, false
	}
	values, ok := t.Values[name]
	return values, ok
}

// HasColumn reports whether the table has a column with the given name
func (t *NormalizedTable) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// Row returns row i keyed by column name
func (t *NormalizedTable) Row(i int) (map[string]string, error) {
	if i < 0 || i >= t.RowCount() {
		return nil, fmt.Errorf("row index %d out of range [0, %d)", i, t.RowCount())
	}
	row := make(map[string]string, len(t.Columns))
	for _, col := range t.Columns {
		row[col] = t.Values[col][i]
	}
	return row, nil
}

// FlattenText renders the table body as text: every cell on its own line,
// row by row, columns in order. Headers are not included.
func (t *NormalizedTable) FlattenText() string {
	if t.RowCount() == 0 || len(t.Columns) == 0 {
		return ""
	}
	lines := make([]string, 0, t.Rows*len(t.Columns))
	for i := 0; i < t.Rows; i++ {
		for _, col := range t.Columns {
			lines = append(lines, t.Values[col][i])
		}
	}
	return strings.Join(lines, "\n")
}

// Cell returns a present cell value
func Cell(s string) *string {
	return &s
}

// Cells returns a row of present cell values
func Cells(values ...string) []*string {
	row := make([]*string, len(values))
	for i := range values {
		row[i] = Cell(values[i])
	}
	return row
}
