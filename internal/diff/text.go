// Package diff compares the canonical text and table forms of two inputs.
package diff

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultContextLines is the number of unchanged lines kept around each change
const DefaultContextLines = 5

// Op is the kind of a line in a text diff
type Op string

const (
	OpEqual  Op = "equal"
	OpInsert Op = "insert"
	OpDelete Op = "delete"
	OpChange Op = "change"
)

// LineDiff is one aligned line pair. Line numbers are 1-based; 0 means the
// line does not exist on that side.
type LineDiff struct {
	Op        Op     `json:"op" yaml:"op"`
	LeftLine  int    `json:"left_line" yaml:"left_line"`
	RightLine int    `json:"right_line" yaml:"right_line"`
	Left      string `json:"left" yaml:"left"`
	Right     string `json:"right" yaml:"right"`
}

// Hunk is a run of changes with its surrounding context
type Hunk struct {
	LeftStart  int        `json:"left_start" yaml:"left_start"`
	LeftCount  int        `json:"left_count" yaml:"left_count"`
	RightStart int        `json:"right_start" yaml:"right_start"`
	RightCount int        `json:"right_count" yaml:"right_count"`
	Lines      []LineDiff `json:"lines" yaml:"lines"`
}

// TextStats counts lines by outcome over the whole comparison
type TextStats struct {
	Equal    int `json:"equal" yaml:"equal"`
	Inserted int `json:"inserted" yaml:"inserted"`
	Deleted  int `json:"deleted" yaml:"deleted"`
	Changed  int `json:"changed" yaml:"changed"`
}

// TextDiffReport is the line-level comparison of two text bodies
type TextDiffReport struct {
	Hunks []Hunk    `json:"hunks" yaml:"hunks"`
	Stats TextStats `json:"stats" yaml:"stats"`
}

// Empty reports whether the two texts had no differences
func (r TextDiffReport) Empty() bool {
	return len(r.Hunks) == 0
}

// TextOptions configures DiffText
type TextOptions struct {
	ContextLines int `json:"context_lines" mapstructure:"context_lines"`
}

// DefaultTextOptions returns the default context window
func DefaultTextOptions() TextOptions {
	return TextOptions{ContextLines: DefaultContextLines}
}

// DiffText aligns the lines of left and right on their longest matching
// blocks and reports the rest as inserted, deleted or changed lines,
// grouped into hunks with ContextLines of unchanged context.
func DiffText(left, right string, opts TextOptions) TextDiffReport {
	contextLines := opts.ContextLines
	if contextLines < 0 {
		contextLines = 0
	}

	a := SplitLines(left)
	b := SplitLines(right)

	// autojunk off: frequent lines such as blank separators must still align
	m := difflib.NewMatcherWithJunk(a, b, false, nil)

	report := TextDiffReport{Hunks: []Hunk{}}
	for _, code := range m.GetOpCodes() {
		report.Stats.add(code)
	}

	for _, group := range m.GetGroupedOpCodes(contextLines) {
		first, last := group[0], group[len(group)-1]
		hunk := Hunk{
			LeftStart:  first.I1 + 1,
			LeftCount:  last.I2 - first.I1,
			RightStart: first.J1 + 1,
			RightCount: last.J2 - first.J1,
			Lines:      []LineDiff{},
		}
		for _, code := range group {
			hunk.Lines = append(hunk.Lines, lines(code, a, b)...)
		}
		report.Hunks = append(report.Hunks, hunk)
	}

	return report
}

func (s *TextStats) add(code difflib.OpCode) {
	left, right := code.I2-code.I1, code.J2-code.J1
	switch code.Tag {
	case 'e':
		s.Equal += left
	case 'd':
		s.Deleted += left
	case 'i':
		s.Inserted += right
	case 'r':
		paired := min(left, right)
		s.Changed += paired
		s.Deleted += left - paired
		s.Inserted += right - paired
	}
}

// lines expands an opcode into line pairs. A replace block pairs lines up
// as changes and reports the longer side's remainder as deletes or inserts.
func lines(code difflib.OpCode, a, b []string) []LineDiff {
	var out []LineDiff
	switch code.Tag {
	case 'e':
		for k := 0; k < code.I2-code.I1; k++ {
			i, j := code.I1+k, code.J1+k
			out = append(out, LineDiff{Op: OpEqual, LeftLine: i + 1, RightLine: j + 1, Left: a[i], Right: b[j]})
		}
	case 'd':
		for i := code.I1; i < code.I2; i++ {
			out = append(out, LineDiff{Op: OpDelete, LeftLine: i + 1, Left: a[i]})
		}
	case 'i':
		for j := code.J1; j < code.J2; j++ {
			out = append(out, LineDiff{Op: OpInsert, RightLine: j + 1, Right: b[j]})
		}
	case 'r':
		i, j := code.I1, code.J1
		for ; i < code.I2 && j < code.J2; i, j = i+1, j+1 {
			out = append(out, LineDiff{Op: OpChange, LeftLine: i + 1, RightLine: j + 1, Left: a[i], Right: b[j]})
		}
		for ; i < code.I2; i++ {
			out = append(out, LineDiff{Op: OpDelete, LeftLine: i + 1, Left: a[i]})
		}
		for ; j < code.J2; j++ {
			out = append(out, LineDiff{Op: OpInsert, RightLine: j + 1, Right: b[j]})
		}
	}
	return out
}

// SplitLines splits text on \n, \r\n and \r. Line terminators are dropped
// and a trailing terminator does not start a new line, so "a\n" is ["a"]
// and "" has no lines.
func SplitLines(text string) []string {
	if text == "" {
		return []string{}
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
