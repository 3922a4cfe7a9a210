package diff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/a3tai/pdfsheetdiff/internal/table"
)

// Alignment decides which rows of the two tables are compared
type Alignment string

const (
	// AlignPositional compares row i with row i
	AlignPositional Alignment = "positional"
	// AlignKey compares rows that share a value in the key column
	AlignKey Alignment = "key"
)

// ParseAlignment converts a configuration value into an Alignment
func ParseAlignment(s string) (Alignment, error) {
	switch Alignment(strings.ToLower(strings.TrimSpace(s))) {
	case "", AlignPositional:
		return AlignPositional, nil
	case AlignKey:
		return AlignKey, nil
	default:
		return "", fmt.Errorf("unknown alignment %q (must be positional or key)", s)
	}
}

// CellMismatch is one differing cell under a shared column
type CellMismatch struct {
	Column   string `json:"column" yaml:"column"`
	RowIndex int    `json:"row_index" yaml:"row_index"`
	Left     string `json:"left_value" yaml:"left_value"`
	Right    string `json:"right_value" yaml:"right_value"`
}

// TableOptions configures DiffTables
type TableOptions struct {
	Alignment Alignment
	KeyColumn string
	// Comparators overrides the comparison for individual columns
	Comparators map[string]Comparator
	// Default applies to columns without an override; nil means Exact
	Default Comparator
}

func (o TableOptions) comparator(column string) Comparator {
	if c, ok := o.Comparators[column]; ok && c != nil {
		return c
	}
	if o.Default != nil {
		return o.Default
	}
	return Exact
}

// SharedColumns returns the column names present in both tables, sorted
func SharedColumns(left, right *table.NormalizedTable) []string {
	shared := []string{}
	if left == nil || right == nil {
		return shared
	}
	for _, col := range left.Columns {
		if right.HasColumn(col) {
			shared = append(shared, col)
		}
	}
	sort.Strings(shared)
	return shared
}

// DiffTables compares the shared columns of two tables, column by column in
// sorted order. Rows present in only one table are not mismatches. The only
// error is a key column missing from either table under key alignment.
func DiffTables(left, right *table.NormalizedTable, opts TableOptions) ([]CellMismatch, error) {
	mismatches := []CellMismatch{}
	shared := SharedColumns(left, right)

	pairs, err := alignRows(left, right, opts)
	if err != nil {
		return nil, err
	}

	for _, col := range shared {
		if opts.Alignment == AlignKey && col == opts.KeyColumn {
			continue
		}

		cmp := opts.comparator(col)
		lv, _ := left.Column(col)
		rv, _ := right.Column(col)

		for _, p := range pairs {
			if !cmp.Equal(lv[p.left], rv[p.right]) {
				mismatches = append(mismatches, CellMismatch{
					Column:   col,
					RowIndex: p.left,
					Left:     lv[p.left],
					Right:    rv[p.right],
				})
			}
		}
	}

	return mismatches, nil
}

type rowPair struct {
	left, right int
}

func alignRows(left, right *table.NormalizedTable, opts TableOptions) ([]rowPair, error) {
	switch opts.Alignment {
	case "", AlignPositional:
		n := min(left.RowCount(), right.RowCount())
		pairs := make([]rowPair, n)
		for i := range pairs {
			pairs[i] = rowPair{left: i, right: i}
		}
		return pairs, nil

	case AlignKey:
		lk, lok := left.Column(opts.KeyColumn)
		rk, rok := right.Column(opts.KeyColumn)
		if opts.KeyColumn == "" || !lok || !rok {
			return nil, fmt.Errorf("key column %q must exist in both tables", opts.KeyColumn)
		}

		firstRight := make(map[string]int, len(rk))
		for i, key := range rk {
			if _, seen := firstRight[key]; !seen {
				firstRight[key] = i
			}
		}

		seenLeft := make(map[string]bool, len(lk))
		var pairs []rowPair
		for i, key := range lk {
			if seenLeft[key] {
				continue
			}
			seenLeft[key] = true
			if j, ok := firstRight[key]; ok {
				pairs = append(pairs, rowPair{left: i, right: j})
			}
		}
		return pairs, nil

	default:
		return nil, fmt.Errorf("unknown alignment %q", opts.Alignment)
	}
}
