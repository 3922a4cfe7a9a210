// Package sheet reads the sheet of interest out of a spreadsheet file.
package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/a3tai/pdfsheetdiff/internal/errors"
	"github.com/a3tai/pdfsheetdiff/internal/table"
	"github.com/xuri/excelize/v2"
)

// Format identifies a spreadsheet encoding
type Format string

const (
	FormatAuto Format = "auto"
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

var (
	zipMagic  = []byte("PK\x03\x04")
	ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	utf8BOM   = []byte{0xEF, 0xBB, 0xBF}
)

// Options selects what to read
type Options struct {
	// SheetName picks a workbook sheet; empty means the first sheet
	SheetName string
	// Format overrides content sniffing
	Format Format
}

// Sheet is a header row plus data rows. Cells past the end of a short row
// are absent (nil).
type Sheet struct {
	Name   string      `json:"name" yaml:"name"`
	Format Format      `json:"format" yaml:"format"`
	Header []string    `json:"header" yaml:"header"`
	Rows   [][]*string `json:"rows" yaml:"rows"`
}

// Table converts the sheet to its canonical form
func (s *Sheet) Table(opts ...table.Option) *table.NormalizedTable {
	return table.NormalizeSpreadsheet(s.Header, s.Rows, opts...)
}

// Read parses spreadsheet bytes. The first row is the header; an empty
// sheet has no columns and no rows.
func Read(data []byte, opts Options) (*Sheet, error) {
	if len(data) == 0 {
		return nil, errors.NewSpreadsheetReadError(errors.ErrorTypeEmptyInput, "spreadsheet is empty", nil)
	}

	format, err := detectFormat(data, opts.Format)
	if err != nil {
		return nil, err
	}

	var records [][]string
	name := opts.SheetName
	switch format {
	case FormatXLSX:
		name, records, err = readXLSX(data, opts.SheetName)
	case FormatCSV:
		records, err = readCSV(data)
		if name == "" {
			name = "csv"
		}
	}
	if err != nil {
		return nil, err
	}

	sheet := &Sheet{Name: name, Format: format, Header: []string{}, Rows: [][]*string{}}
	if len(records) == 0 {
		return sheet, nil
	}

	sheet.Header = records[0]
	for _, record := range records[1:] {
		row := make([]*string, len(record))
		for i := range record {
			value := record[i]
			row[i] = &value
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

// ParseFormat converts a configuration value into a Format
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown spreadsheet format %q (must be auto, xlsx or csv)", s)
	}
}

func detectFormat(data []byte, requested Format) (Format, error) {
	if bytes.HasPrefix(data, ole2Magic) {
		return "", errors.NewSpreadsheetReadError(errors.ErrorTypeUnsupportedFormat,
			"legacy .xls workbooks are not supported, save as .xlsx or .csv", nil)
	}

	switch requested {
	case FormatXLSX, FormatCSV:
		return requested, nil
	case "", FormatAuto:
	default:
		return "", errors.NewSpreadsheetReadError(errors.ErrorTypeUnsupportedFormat,
			fmt.Sprintf("unknown spreadsheet format %q", requested), nil)
	}

	if bytes.HasPrefix(data, zipMagic) {
		return FormatXLSX, nil
	}
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return "", errors.NewSpreadsheetReadError(errors.ErrorTypeUnsupportedFormat,
			"input is a PDF document, not a spreadsheet", nil)
	}
	return FormatCSV, nil
}

func readXLSX(data []byte, sheetName string) (string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", nil, errors.NewSpreadsheetReadError(errors.ErrorTypeMalformedDocument, "cannot open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, errors.NewSpreadsheetReadError(errors.ErrorTypeMalformedDocument, "workbook has no sheets", nil)
	}

	name := sheets[0]
	if sheetName != "" {
		found := false
		for _, s := range sheets {
			if s == sheetName {
				found = true
				break
			}
		}
		if !found {
			return "", nil, errors.NewSpreadsheetReadError(errors.ErrorTypeSheetNotFound,
				fmt.Sprintf("sheet %q not found (available: %s)", sheetName, strings.Join(sheets, ", ")), nil)
		}
		name = sheetName
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return "", nil, errors.NewSpreadsheetReadError(errors.ErrorTypeMalformedDocument,
			fmt.Sprintf("cannot read sheet %q", name), err)
	}
	return name, rows, nil
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if bytes.IndexByte(data, 0) >= 0 || !utf8.Valid(data) {
		return nil, errors.NewSpreadsheetReadError(errors.ErrorTypeUnsupportedFormat,
			"input is neither an .xlsx workbook nor UTF-8 CSV text", nil)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewSpreadsheetReadError(errors.ErrorTypeMalformedDocument, "cannot parse CSV", err)
		}
		records = append(records, record)
	}
	return records, nil
}
