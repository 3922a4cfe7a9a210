package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/a3tai/pdfsheetdiff/internal/pdf"
	"github.com/a3tai/pdfsheetdiff/internal/sheet"
	"github.com/a3tai/pdfsheetdiff/internal/table"
	"github.com/nao1215/markdown"
)

// FormatDocument renders the pages, text and detected tables of an extracted PDF
func FormatDocument(path string, doc *pdf.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Document: %s\n", path)
	if doc.Version != "" {
		fmt.Fprintf(&b, "PDF version: %s\n", doc.Version)
	}
	fmt.Fprintf(&b, "Pages: %d\n", len(doc.Pages))
	fmt.Fprintf(&b, "Tables: %d\n", len(doc.Tables()))

	for _, page := range doc.Pages {
		fmt.Fprintf(&b, "\n--- Page %d ---\n", page.Number)
		if page.Text == "" {
			b.WriteString("(no text)\n")
		} else {
			b.WriteString(strings.TrimRight(page.Text, "\n") + "\n")
		}
		for i, t := range page.Tables {
			fmt.Fprintf(&b, "\nTable %d (%d row(s)):\n", i+1, len(t.Rows))
			b.WriteString(markdownTable(table.ColumnNames(t), rawRows(t.Rows)))
		}
	}

	if len(doc.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, w := range doc.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}

// FormatSheet renders a spreadsheet as it will be compared: normalized
// columns and at most limit rows (0 shows all)
func FormatSheet(path string, sh *sheet.Sheet, opts []table.Option, limit int) string {
	normalized := sh.Table(opts...)

	var b strings.Builder
	fmt.Fprintf(&b, "Spreadsheet: %s\n", path)
	fmt.Fprintf(&b, "Sheet: %s (%s)\n", sh.Name, sh.Format)
	fmt.Fprintf(&b, "Columns (%d): %s\n", len(normalized.Columns), strings.Join(normalized.Columns, ", "))
	fmt.Fprintf(&b, "Rows: %d\n", normalized.RowCount())

	if len(normalized.Columns) == 0 {
		return b.String()
	}

	shown := normalized.RowCount()
	if limit > 0 && shown > limit {
		shown = limit
	}

	rows := make([][]string, shown)
	for i := 0; i < shown; i++ {
		rows[i] = make([]string, len(normalized.Columns))
		for c, column := range normalized.Columns {
			rows[i][c] = normalized.Values[column][i]
		}
	}
	b.WriteString("\n")
	b.WriteString(markdownTable(normalized.Columns, rows))
	if shown < normalized.RowCount() {
		fmt.Fprintf(&b, "... and %d more row(s)\n", normalized.RowCount()-shown)
	}
	return b.String()
}

func rawRows(rows [][]*string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = make([]string, len(row))
		for c, cell := range row {
			if cell != nil {
				out[i][c] = *cell
			}
		}
	}
	return out
}

// markdownTable renders a grid, padding ragged rows to the widest row
func markdownTable(header []string, rows [][]string) string {
	width := len(header)
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return ""
	}

	escape := strings.NewReplacer("|", `\|`, "\n", " ")
	fit := func(cells []string) []string {
		out := make([]string, width)
		for i := range out {
			if i < len(cells) {
				out[i] = escape.Replace(cells[i])
			}
		}
		return out
	}

	set := markdown.TableSet{Header: fit(header), Rows: make([][]string, len(rows))}
	for i, row := range rows {
		set.Rows[i] = fit(row)
	}
	return markdown.NewMarkdown(io.Discard).Table(set).String()
}
