package report

import (
	"testing"

	"github.com/a3tai/pdfsheetdiff/internal/pdf"
	"github.com/a3tai/pdfsheetdiff/internal/sheet"
	"github.com/a3tai/pdfsheetdiff/internal/table"
	"github.com/stretchr/testify/assert"
)

func ptr(s string) *string { return &s }

func TestFormatDocument(t *testing.T) {
	doc := &pdf.Document{
		Version: "1.7",
		Pages: []pdf.Page{
			{Number: 1, Text: "Invoice 7\n"},
			{Number: 2, Tables: []table.RawTable{{
				Header: []string{"Item", "Note"},
				Rows:   [][]*string{{ptr("Bolt"), ptr("a|b")}, {ptr("Nut")}},
			}}},
		},
		Warnings: []string{"page 3: unreadable"},
	}

	out := FormatDocument("/data/invoice.pdf", doc)
	assert.Contains(t, out, "Document: /data/invoice.pdf\nPDF version: 1.7\nPages: 2\nTables: 1\n")
	assert.Contains(t, out, "--- Page 1 ---\nInvoice 7\n")
	assert.Contains(t, out, "--- Page 2 ---\n(no text)\n")
	assert.Contains(t, out, "Table 1 (2 row(s)):")
	assert.Contains(t, out, `| Bolt | a\|b |`)
	assert.Contains(t, out, "| Nut |  |")
	assert.Contains(t, out, "Warnings:\n- page 3: unreadable\n")
}

func TestFormatSheet(t *testing.T) {
	sh := &sheet.Sheet{
		Name:   "Orders",
		Format: sheet.FormatXLSX,
		Header: []string{"Item", "Qty"},
		Rows:   [][]*string{{ptr("Bolt"), ptr("10")}, {ptr("Nut"), ptr("5")}, {ptr("Washer"), ptr("7")}},
	}

	tests := []struct {
		name     string
		limit    int
		contains []string
		excludes []string
	}{
		{name: "all rows", limit: 0, contains: []string{"| Washer | 7 |"}, excludes: []string{"more row(s)"}},
		{name: "limited", limit: 2, contains: []string{"| Nut", "... and 1 more row(s)"}, excludes: []string{"Washer"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := FormatSheet("orders.xlsx", sh, nil, tt.limit)
			assert.Contains(t, out, "Sheet: Orders (xlsx)\nColumns (2): Item, Qty\nRows: 3\n")
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}
