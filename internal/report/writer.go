// Package report renders comparison results for people and tools.
//
// Writers implement the Writer interface so the CLI and the MCP server can
// pick a format by name:
//   - TextWriter: side-by-side plain text for terminals
//   - MarkdownWriter: GitHub-flavored markdown
//   - JSONWriter and YAMLWriter: the full result for tooling
//   - HTMLWriter: a standalone side-by-side diff page
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/a3tai/pdfsheetdiff/internal/compare"
	"github.com/a3tai/pdfsheetdiff/internal/diff"
)

// Format names
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatHTML     = "html"
)

// Formats lists every supported format name
var Formats = []string{FormatText, FormatMarkdown, FormatJSON, FormatYAML, FormatHTML}

// Writer outputs a comparison result.
// Write returns the number of bytes written.
type Writer interface {
	Write(result *compare.ComparisonResult) (int, error)
}

// NewWriter returns the writer for a format name
func NewWriter(format string, output io.Writer) (Writer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatText, "":
		return NewTextWriter(output), nil
	case FormatMarkdown, "md":
		return NewMarkdownWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatYAML, "yml":
		return NewYAMLWriter(output), nil
	case FormatHTML:
		return NewHTMLWriter(output), nil
	default:
		return nil, fmt.Errorf("unknown report format %q (must be one of: %s)", format, strings.Join(Formats, ", "))
	}
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// marker is the sdiff-style gutter symbol for a line
func marker(op diff.Op) string {
	switch op {
	case diff.OpChange:
		return "|"
	case diff.OpDelete:
		return "<"
	case diff.OpInsert:
		return ">"
	default:
		return " "
	}
}

func lineNumber(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprint(n)
}

func summaryLine(result *compare.ComparisonResult) string {
	s := result.TextDiff.Stats
	return fmt.Sprintf("%d changed, %d deleted, %d inserted line(s); %d cell mismatch(es) across %d shared column(s)",
		s.Changed, s.Deleted, s.Inserted, len(result.DataDiff), len(result.SharedColumns))
}
