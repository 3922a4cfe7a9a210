package report

import (
	"html/template"
	"io"

	"github.com/a3tai/pdfsheetdiff/internal/compare"
	"github.com/a3tai/pdfsheetdiff/internal/diff"
)

// HTMLWriter outputs a standalone page with the text diff side by side and
// the cell mismatches as a table. All content is escaped by html/template.
type HTMLWriter struct {
	baseWriter
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer
func NewHTMLWriter(output io.Writer) *HTMLWriter {
	return &HTMLWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report
func (w *HTMLWriter) Write(result *compare.ComparisonResult) (int, error) {
	cw := &countingWriter{w: w.output}
	err := htmlTemplate.Execute(cw, struct {
		*compare.ComparisonResult
		Summary string
	}{result, summaryLine(result)})
	return cw.n, err
}

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"lineClass": func(op diff.Op) string {
		switch op {
		case diff.OpChange:
			return "diff_chg"
		case diff.OpInsert:
			return "diff_add"
		case diff.OpDelete:
			return "diff_sub"
		default:
			return ""
		}
	},
	"lineNumber": lineNumber,
	"marker":     marker,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>PDF / Spreadsheet Comparison</title>
<style>
  body { font-family: sans-serif; }
  table.diff { font-family: monospace; border: medium; border-collapse: collapse; }
  table.diff td, table.diff th { padding: 0 4px; vertical-align: top; }
  .diff_header { background-color: #e0e0e0; text-align: right; }
  .diff_next { background-color: #c0c0c0; }
  .diff_add { background-color: #aaffaa; }
  .diff_chg { background-color: #ffff77; }
  .diff_sub { background-color: #ffaaaa; }
  table.cells { border-collapse: collapse; }
  table.cells td, table.cells th { border: 1px solid #c0c0c0; padding: 2px 6px; }
</style>
</head>
<body>
<h1>PDF / Spreadsheet Comparison</h1>
<p>Document: {{.Document.Pages}} page(s), {{.Document.Tables}} table(s), {{.Document.Rows}} row(s).
Spreadsheet: {{.Spreadsheet.Name}} ({{.Spreadsheet.Format}}), {{.Spreadsheet.Columns}} column(s), {{.Spreadsheet.Rows}} row(s).</p>
<p>{{.Summary}}</p>

<h2>Text Diff</h2>
{{- if not .TextDiff.Hunks}}
<p>No text differences.</p>
{{- else}}
<table class="diff">
  <thead><tr><th class="diff_header" colspan="2">PDF</th><th></th><th class="diff_header" colspan="2">Spreadsheet</th></tr></thead>
  {{- range $i, $hunk := .TextDiff.Hunks}}
  <tbody>
    {{- if $i}}
    <tr><td class="diff_next" colspan="5"></td></tr>
    {{- end}}
    {{- range $hunk.Lines}}
    <tr>
      <td class="diff_header">{{lineNumber .LeftLine}}</td>
      <td class="{{lineClass .Op}}">{{.Left}}</td>
      <td>{{marker .Op}}</td>
      <td class="diff_header">{{lineNumber .RightLine}}</td>
      <td class="{{lineClass .Op}}">{{.Right}}</td>
    </tr>
    {{- end}}
  </tbody>
  {{- end}}
</table>
{{- end}}

<h2>Data Diff</h2>
{{- if not .SharedColumns}}
<p>No shared columns.</p>
{{- else if not .DataDiff}}
<p>No cell mismatches.</p>
{{- else}}
<table class="cells">
  <thead><tr><th>Column</th><th>Row</th><th>PDF</th><th>Spreadsheet</th></tr></thead>
  <tbody>
  {{- range .DataDiff}}
    <tr><td>{{.Column}}</td><td>{{.RowIndex}}</td><td>{{.Left}}</td><td>{{.Right}}</td></tr>
  {{- end}}
  </tbody>
</table>
{{- end}}
{{- if .Warnings}}

<h2>Warnings</h2>
<ul>
{{- range .Warnings}}
  <li>{{.}}</li>
{{- end}}
</ul>
{{- end}}
</body>
</html>
`))
