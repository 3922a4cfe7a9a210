package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/a3tai/pdfsheetdiff/internal/compare"
	"github.com/a3tai/pdfsheetdiff/internal/diff"
	"github.com/nao1215/markdown"
)

// MarkdownWriter outputs reports in GitHub-flavored markdown
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report
func (w *MarkdownWriter) Write(result *compare.ComparisonResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("PDF / Spreadsheet Comparison")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Input", "Details"},
		Rows: [][]string{
			{"Document", strconv.Itoa(result.Document.Pages) + " page(s), " +
				strconv.Itoa(result.Document.Tables) + " table(s), " +
				strconv.Itoa(result.Document.Rows) + " row(s)"},
			{"Spreadsheet", "`" + cell(result.Spreadsheet.Name) + "` (" + result.Spreadsheet.Format + "), " +
				strconv.Itoa(result.Spreadsheet.Columns) + " column(s), " +
				strconv.Itoa(result.Spreadsheet.Rows) + " row(s)"},
		},
	})
	md.PlainText("")

	if result.HasDifferences() {
		md.Warning(summaryLine(result))
	} else {
		md.Tip("The spreadsheet matches the document.")
	}
	md.PlainText("")

	w.writeText(md, result)
	w.writeData(md, result)

	if len(result.Warnings) > 0 {
		md.H2("Warnings")
		md.PlainText("")
		md.BulletList(result.Warnings...)
		md.PlainText("")
	}

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeText(md *markdown.Markdown, result *compare.ComparisonResult) {
	md.H2("Text Diff")
	md.PlainText("")

	if result.TextDiff.Empty() {
		md.PlainText("No text differences.")
		md.PlainText("")
		return
	}

	var b strings.Builder
	for _, hunk := range result.TextDiff.Hunks {
		b.WriteString("@@ -" + strconv.Itoa(hunk.LeftStart) + "," + strconv.Itoa(hunk.LeftCount) +
			" +" + strconv.Itoa(hunk.RightStart) + "," + strconv.Itoa(hunk.RightCount) + " @@\n")
		for _, line := range hunk.Lines {
			switch line.Op {
			case diff.OpEqual:
				b.WriteString(" " + line.Left + "\n")
			case diff.OpDelete:
				b.WriteString("-" + line.Left + "\n")
			case diff.OpInsert:
				b.WriteString("+" + line.Right + "\n")
			case diff.OpChange:
				b.WriteString("-" + line.Left + "\n")
				b.WriteString("+" + line.Right + "\n")
			}
		}
	}
	md.CodeBlocks(markdown.SyntaxHighlightDiff, strings.TrimSuffix(b.String(), "\n"))
	md.PlainText("")
}

func (w *MarkdownWriter) writeData(md *markdown.Markdown, result *compare.ComparisonResult) {
	md.H2("Data Diff")
	md.PlainText("")

	switch {
	case len(result.SharedColumns) == 0:
		md.PlainText("No shared columns.")
		md.PlainText("")
		return
	case len(result.DataDiff) == 0:
		md.PlainTextf("No cell mismatches in %d shared column(s).", len(result.SharedColumns))
		md.PlainText("")
		return
	}

	rows := make([][]string, len(result.DataDiff))
	for i, m := range result.DataDiff {
		rows[i] = []string{cell(m.Column), strconv.Itoa(m.RowIndex), cell(m.Left), cell(m.Right)}
	}
	md.Table(markdown.TableSet{
		Header:    []string{"Column", "Row", "PDF", "Spreadsheet"},
		Rows:      rows,
		Alignment: []markdown.TableAlignment{markdown.AlignLeft, markdown.AlignRight},
	})
	md.PlainText("")
}

// cell escapes a value for use inside a markdown table
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\n", " ")
	if s == "" {
		return "-"
	}
	return s
}
