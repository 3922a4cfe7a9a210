package diff

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Comparator decides whether two cell values are the same
type Comparator interface {
	Name() string
	Equal(left, right string) bool
}

type comparatorFunc struct {
	name string
	fn   func(left, right string) bool
}

func (c comparatorFunc) Name() string                  { return c.name }
func (c comparatorFunc) Equal(left, right string) bool { return c.fn(left, right) }

var (
	// Exact compares values byte for byte
	Exact Comparator = comparatorFunc{name: "exact", fn: func(l, r string) bool {
		return l == r
	}}

	// TrimSpace ignores leading and trailing whitespace
	TrimSpace Comparator = comparatorFunc{name: "trim", fn: func(l, r string) bool {
		return strings.TrimSpace(l) == strings.TrimSpace(r)
	}}

	// FoldCase ignores case, surrounding whitespace included
	FoldCase Comparator = comparatorFunc{name: "fold", fn: func(l, r string) bool {
		return strings.EqualFold(strings.TrimSpace(l), strings.TrimSpace(r))
	}}

	// Numeric compares values as numbers when both sides parse, so "1,000"
	// equals "1000.00". Anything else is compared exactly.
	Numeric Comparator = comparatorFunc{name: "numeric", fn: numericEqual}
)

var comparators = map[string]Comparator{
	Exact.Name():     Exact,
	TrimSpace.Name(): TrimSpace,
	FoldCase.Name():  FoldCase,
	Numeric.Name():   Numeric,
}

// ComparatorByName returns a built-in comparator
func ComparatorByName(name string) (Comparator, error) {
	c, ok := comparators[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown comparator %q (must be one of %s)", name, strings.Join(ComparatorNames(), ", "))
	}
	return c, nil
}

// ComparatorNames lists the built-in comparator names in sorted order
func ComparatorNames() []string {
	names := make([]string, 0, len(comparators))
	for name := range comparators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func numericEqual(left, right string) bool {
	l, lok := parseNumber(left)
	r, rok := parseNumber(right)
	if lok && rok {
		return l == r
	}
	return left == right
}

func parseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
