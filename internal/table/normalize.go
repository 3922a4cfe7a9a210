package table

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Policy decides which columns survive when tables with different headers
// are concatenated.
type Policy string

const (
	// PolicyUnion keeps every column seen, padding rows that lack it
	PolicyUnion Policy = "union"
	// PolicyIntersection keeps only columns present in every table
	PolicyIntersection Policy = "intersection"
)

// ParsePolicy converts a configuration value into a Policy
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyUnion, "":
		return PolicyUnion, nil
	case PolicyIntersection:
		return PolicyIntersection, nil
	default:
		return "", fmt.Errorf("unknown concatenation policy %q (must be union or intersection)", s)
	}
}

type options struct {
	policy Policy
	nfc    bool
}

// Option configures normalization
type Option func(*options)

// WithPolicy selects the column concatenation policy
func WithPolicy(p Policy) Option {
	return func(o *options) {
		if p != "" {
			o.policy = p
		}
	}
}

// WithNFC applies Unicode NFC normalization to every cell value
func WithNFC(enabled bool) Option {
	return func(o *options) {
		o.nfc = enabled
	}
}

func newOptions(opts []Option) options {
	o := options{policy: PolicyUnion}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Normalize concatenates raw tables, in order, into one canonical table.
// No row is ever dropped; only the column set depends on the policy.
func Normalize(tables []RawTable, opts ...Option) *NormalizedTable {
	o := newOptions(opts)
	if len(tables) == 0 {
		return Empty()
	}

	names := make([][]string, len(tables))
	for i, t := range tables {
		names[i] = ColumnNames(t)
	}

	columns := selectColumns(tables, names, o.policy)
	result := &NormalizedTable{
		Columns: columns,
		Values:  make(map[string][]string, len(columns)),
	}
	for _, col := range columns {
		result.Values[col] = []string{}
	}

	for i, t := range tables {
		index := make(map[string]int, len(names[i]))
		for pos, name := range names[i] {
			index[name] = pos
		}

		for _, row := range t.Rows {
			for _, col := range columns {
				value := ""
				if pos, ok := index[col]; ok && pos < len(row) && row[pos] != nil {
					value = o.coerce(*row[pos])
				}
				result.Values[col] = append(result.Values[col], value)
			}
			result.Rows++
		}
	}

	return result
}

// NormalizeSpreadsheet builds a canonical table from a header row and data
// rows that are already column-homogeneous.
func NormalizeSpreadsheet(header []string, rows [][]*string, opts ...Option) *NormalizedTable {
	if len(header) == 0 && len(rows) == 0 {
		return Empty()
	}
	return Normalize([]RawTable{{Header: header, Rows: rows}}, opts...)
}

func (o options) coerce(s string) string {
	if o.nfc {
		return norm.NFC.String(s)
	}
	return s
}

// ColumnNames resolves the unique column names of a raw table.
// Headerless tables get positional names "0", "1", ...; blank header cells and
// cells past the header become "Unnamed: i"; repeated names get ".1", ".2", ...
func ColumnNames(t RawTable) []string {
	width := t.Width()
	names := make([]string, width)
	seen := make(map[string]bool, width)

	for i := 0; i < width; i++ {
		var name string
		switch {
		case len(t.Header) == 0:
			name = strconv.Itoa(i)
		case i >= len(t.Header) || strings.TrimSpace(t.Header[i]) == "":
			name = "Unnamed: " + strconv.Itoa(i)
		default:
			name = t.Header[i]
		}

		if seen[name] {
			base := name
			for n := 1; seen[name]; n++ {
				name = base + "." + strconv.Itoa(n)
			}
		}
		seen[name] = true
		names[i] = name
	}

	return names
}

func selectColumns(tables []RawTable, names [][]string, policy Policy) []string {
	var ordered []string
	counts := make(map[string]int)
	voters := 0
	headed := 0
	for _, t := range tables {
		if len(t.Header) > 0 {
			headed++
		}
	}
	for i, tableNames := range names {
		// headerless tables only vote on the intersection when nothing has a header
		vote := headed == 0 || len(tables[i].Header) > 0
		if vote {
			voters++
		}
		for _, name := range tableNames {
			if _, ok := counts[name]; !ok {
				ordered = append(ordered, name)
				counts[name] = 0
			}
			if vote {
				counts[name]++
			}
		}
	}

	if policy != PolicyIntersection {
		if ordered == nil {
			return []string{}
		}
		return ordered
	}

	columns := []string{}
	for _, name := range ordered {
		// names are unique within a table
		if counts[name] == voters {
			columns = append(columns, name)
		}
	}
	return columns
}
