package sheet

import (
	"testing"

	"github.com/a3tai/pdfsheetdiff/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, sheets map[string][][]interface{}, order ...string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			for c, value := range row {
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(name, cell, value))
			}
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func values(row []*string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		if c != nil {
			out[i] = *c
		}
	}
	return out
}

func TestReadXLSXFirstSheet(t *testing.T) {
	data := workbook(t, map[string][][]interface{}{
		"Orders": {
			{"Item", "Qty", "Price"},
			{"Bolt", 10, "0.25"},
			{"Nut"},
		},
		"Other": {{"ignored"}},
	}, "Orders", "Other")

	s, err := Read(data, Options{})
	require.NoError(t, err)

	assert.Equal(t, "Orders", s.Name)
	assert.Equal(t, FormatXLSX, s.Format)
	assert.Equal(t, []string{"Item", "Qty", "Price"}, s.Header)
	require.Len(t, s.Rows, 2)
	assert.Equal(t, []string{"Bolt", "10", "0.25"}, values(s.Rows[0]))
	assert.Len(t, s.Rows[1], 1, "short rows stay short, missing cells are absent")

	normalized := s.Table()
	assert.Equal(t, []string{"Nut"}, normalized.Values["Item"][1:])
	assert.Equal(t, "", normalized.Values["Qty"][1])
}

func TestReadXLSXNamedSheet(t *testing.T) {
	data := workbook(t, map[string][][]interface{}{
		"First":  {{"A"}, {"1"}},
		"Second": {{"B"}, {"2"}},
	}, "First", "Second")

	s, err := Read(data, Options{SheetName: "Second"})
	require.NoError(t, err)
	assert.Equal(t, "Second", s.Name)
	assert.Equal(t, []string{"B"}, s.Header)

	_, err = Read(data, Options{SheetName: "Missing"})
	require.Error(t, err)
	assert.True(t, errors.IsSpreadsheetReadError(err))
	assert.Equal(t, errors.ErrorTypeSheetNotFound, errors.TypeOf(err))
}

func TestReadXLSXEmptySheet(t *testing.T) {
	data := workbook(t, map[string][][]interface{}{"Empty": nil}, "Empty")

	s, err := Read(data, Options{})
	require.NoError(t, err)
	assert.Empty(t, s.Header)
	assert.Empty(t, s.Rows)
	assert.Equal(t, 0, s.Table().RowCount())
}

func TestReadCSV(t *testing.T) {
	data := []byte("\xEF\xBB\xBFName,Qty\nbolt,10\n\"nut, hex\"\nwasher,3,extra\n")

	s, err := Read(data, Options{})
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, s.Format)
	assert.Equal(t, []string{"Name", "Qty"}, s.Header)
	require.Len(t, s.Rows, 3)
	assert.Equal(t, []string{"nut, hex"}, values(s.Rows[1]))
	assert.Equal(t, []string{"washer", "3", "extra"}, values(s.Rows[2]))

	normalized := s.Table()
	assert.Equal(t, []string{"Name", "Qty", "Unnamed: 2"}, normalized.Columns)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		opts     Options
		wantType errors.ErrorType
	}{
		{name: "empty", data: nil, wantType: errors.ErrorTypeEmptyInput},
		{name: "legacy xls", data: []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0, 0}, wantType: errors.ErrorTypeUnsupportedFormat},
		{name: "pdf", data: []byte("%PDF-1.7\n..."), wantType: errors.ErrorTypeUnsupportedFormat},
		{name: "binary", data: []byte{0x01, 0x00, 0x02}, wantType: errors.ErrorTypeUnsupportedFormat},
		{name: "broken zip", data: []byte("PK\x03\x04 not really a workbook"), wantType: errors.ErrorTypeMalformedDocument},
		{name: "forced xlsx on csv", data: []byte("a,b\n1,2\n"), opts: Options{Format: FormatXLSX}, wantType: errors.ErrorTypeMalformedDocument},
		{name: "unknown format", data: []byte("a,b\n"), opts: Options{Format: "ods"}, wantType: errors.ErrorTypeUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Read(tt.data, tt.opts)
			require.Error(t, err)
			assert.Nil(t, s)
			assert.True(t, errors.IsSpreadsheetReadError(err))
			assert.False(t, errors.IsExtractionError(err))
			assert.Equal(t, tt.wantType, errors.TypeOf(err))
		})
	}
}

func TestParseFormat(t *testing.T) {
	for input, want := range map[string]Format{"": FormatAuto, "AUTO": FormatAuto, "xlsx": FormatXLSX, " csv ": FormatCSV} {
		got, err := ParseFormat(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("numbers")
	assert.Error(t, err)
}
