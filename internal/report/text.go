package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/a3tai/pdfsheetdiff/internal/compare"
)

// DefaultColumnWidth is the width of each side in the text layout
const DefaultColumnWidth = 40

// TextWriter outputs a side-by-side plain text report
type TextWriter struct {
	baseWriter

	width int
}

// TextWriterOption configures a TextWriter
type TextWriterOption func(*TextWriter)

// WithColumnWidth sets the width of each side of the text diff
func WithColumnWidth(width int) TextWriterOption {
	return func(w *TextWriter) {
		if width > 3 {
			w.width = width
		}
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
		width:      DefaultColumnWidth,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report
func (w *TextWriter) Write(result *compare.ComparisonResult) (int, error) {
	var sb strings.Builder

	rule := strings.Repeat("=", 2*w.width+13)
	sb.WriteString(rule + "\n")
	sb.WriteString("PDF / SPREADSHEET COMPARISON\n")
	sb.WriteString(rule + "\n")
	fmt.Fprintf(&sb, "Document:    %d page(s), %d table(s), %d row(s)\n",
		result.Document.Pages, result.Document.Tables, result.Document.Rows)
	fmt.Fprintf(&sb, "Spreadsheet: %s (%s), %d column(s), %d row(s)\n",
		result.Spreadsheet.Name, result.Spreadsheet.Format, result.Spreadsheet.Columns, result.Spreadsheet.Rows)
	sb.WriteString(summaryLine(result) + "\n\n")

	w.writeText(&sb, result)
	w.writeData(&sb, result)

	if len(result.Warnings) > 0 {
		sb.WriteString("WARNINGS\n")
		for _, warning := range result.Warnings {
			sb.WriteString("  - " + warning + "\n")
		}
	}

	return io.WriteString(w.output, sb.String())
}

func (w *TextWriter) writeText(sb *strings.Builder, result *compare.ComparisonResult) {
	sb.WriteString("TEXT DIFF\n")
	if result.TextDiff.Empty() {
		sb.WriteString("  No text differences.\n\n")
		return
	}

	for i, hunk := range result.TextDiff.Hunks {
		if i > 0 {
			sb.WriteString(strings.Repeat("-", 2*w.width+13) + "\n")
		}
		fmt.Fprintf(sb, "@@ -%d,%d +%d,%d @@\n", hunk.LeftStart, hunk.LeftCount, hunk.RightStart, hunk.RightCount)
		for _, line := range hunk.Lines {
			fmt.Fprintf(sb, "%5s %s %s %5s %s\n",
				lineNumber(line.LeftLine),
				pad(truncate(line.Left, w.width), w.width),
				marker(line.Op),
				lineNumber(line.RightLine),
				truncate(line.Right, w.width),
			)
		}
	}
	sb.WriteString("\n")
}

func (w *TextWriter) writeData(sb *strings.Builder, result *compare.ComparisonResult) {
	sb.WriteString("DATA DIFF\n")
	if len(result.SharedColumns) == 0 {
		sb.WriteString("  No shared columns.\n\n")
		return
	}
	if len(result.DataDiff) == 0 {
		sb.WriteString("  No cell mismatches.\n\n")
		return
	}

	colWidth := len("Column")
	for _, m := range result.DataDiff {
		if n := utf8.RuneCountInString(m.Column); n > colWidth {
			colWidth = n
		}
	}
	if colWidth > w.width {
		colWidth = w.width
	}

	fmt.Fprintf(sb, "  %s %5s  %s  %s\n", pad("Column", colWidth), "Row", pad("PDF", w.width), "Spreadsheet")
	for _, m := range result.DataDiff {
		fmt.Fprintf(sb, "  %s %5d  %s  %s\n",
			pad(truncate(m.Column, colWidth), colWidth),
			m.RowIndex,
			pad(truncate(m.Left, w.width), w.width),
			truncate(m.Right, w.width),
		)
	}
	sb.WriteString("\n")
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
