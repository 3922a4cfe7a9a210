// Package compare runs the document against spreadsheet comparison and
// assembles its result.
package compare

import (
	"github.com/a3tai/pdfsheetdiff/internal/diff"
)

// DocumentSummary describes the PDF side of a comparison
type DocumentSummary struct {
	Pages   int    `json:"pages" yaml:"pages"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Tables  int    `json:"tables" yaml:"tables"`
	Columns int    `json:"columns" yaml:"columns"`
	Rows    int    `json:"rows" yaml:"rows"`
}

// SheetSummary describes the spreadsheet side of a comparison
type SheetSummary struct {
	Name    string `json:"name" yaml:"name"`
	Format  string `json:"format" yaml:"format"`
	Columns int    `json:"columns" yaml:"columns"`
	Rows    int    `json:"rows" yaml:"rows"`
}

// ComparisonResult is everything a presentation layer needs to show one
// comparison. TextDiff and DataDiff are always present, possibly empty.
type ComparisonResult struct {
	ID            string              `json:"id,omitempty" yaml:"id,omitempty"`
	TextDiff      diff.TextDiffReport `json:"text_diff" yaml:"text_diff"`
	DataDiff      []diff.CellMismatch `json:"data_diff" yaml:"data_diff"`
	SharedColumns []string            `json:"shared_columns" yaml:"shared_columns"`
	Document      DocumentSummary     `json:"document" yaml:"document"`
	Spreadsheet   SheetSummary        `json:"spreadsheet" yaml:"spreadsheet"`
	Warnings      []string            `json:"warnings" yaml:"warnings"`
}

// Assemble packages the two diff outputs. Nil collections become empty ones
// so the serialized form never carries null.
func Assemble(text diff.TextDiffReport, mismatches []diff.CellMismatch) *ComparisonResult {
	if text.Hunks == nil {
		text.Hunks = []diff.Hunk{}
	}
	for i := range text.Hunks {
		if text.Hunks[i].Lines == nil {
			text.Hunks[i].Lines = []diff.LineDiff{}
		}
	}
	if mismatches == nil {
		mismatches = []diff.CellMismatch{}
	}

	return &ComparisonResult{
		TextDiff:      text,
		DataDiff:      mismatches,
		SharedColumns: []string{},
		Warnings:      []string{},
	}
}

// HasDifferences reports whether either diff found anything
func (r *ComparisonResult) HasDifferences() bool {
	if r == nil {
		return false
	}
	return !r.TextDiff.Empty() || len(r.DataDiff) > 0
}
