// Package main provides the pdfsheetdiff command line tool.
//
// pdfsheetdiff compares the text and tables of a PDF document against an
// XLSX or CSV spreadsheet and reports every discrepancy.
//
// Usage:
//
//	pdfsheetdiff compare <document.pdf> <spreadsheet.xlsx>
//	pdfsheetdiff extract <document.pdf>
//	pdfsheetdiff serve
//
// See --help for all available options.
package main

import "os"

func main() {
	os.Exit(Execute())
}
