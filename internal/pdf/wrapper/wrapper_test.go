package wrapper

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/a3tai/pdfsheetdiff/internal/errors"
	"github.com/a3tai/pdfsheetdiff/internal/pdf/pdftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedongthucOpen(t *testing.T) {
	data := pdftest.Document(
		pdftest.Text("Invoice 1042", "Total due"),
		pdftest.Text(),
	)

	parser := NewLedongthuc()
	assert.Equal(t, LibraryLedongthuc, parser.Library())

	doc, err := parser.Open(data)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.NumPages())

	page, err := doc.Page(1)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number())

	text, err := page.Text()
	require.NoError(t, err)
	assert.Contains(t, text, "Invoice 1042")
	assert.Contains(t, text, "Total due")

	blank, err := doc.Page(2)
	require.NoError(t, err)
	text, err = blank.Text()
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(text))
}

func TestLedongthucWords(t *testing.T) {
	data := pdftest.Document(pdftest.Table(
		[]string{"Item", "Qty"},
		[]string{"Bolt", "10"},
	))

	doc, err := NewLedongthuc().Open(data)
	require.NoError(t, err)

	page, err := doc.Page(1)
	require.NoError(t, err)

	words, err := page.Words()
	require.NoError(t, err)
	require.NotEmpty(t, words)

	var glyphs strings.Builder
	for _, w := range words {
		glyphs.WriteString(w.Text)
	}
	assert.Contains(t, glyphs.String(), "Item")
	assert.Contains(t, glyphs.String(), "Bolt")
}

func TestLedongthucInvalidPage(t *testing.T) {
	doc, err := NewLedongthuc().Open(pdftest.Document(pdftest.Text("only")))
	require.NoError(t, err)

	for _, n := range []int{0, 2, -1} {
		_, err := doc.Page(n)
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, ErrInvalidPage))

		var wrapperErr *WrapperError
		require.ErrorAs(t, err, &wrapperErr)
		assert.Equal(t, LibraryLedongthuc, wrapperErr.Library)
	}
}

func TestLedongthucOpenGarbage(t *testing.T) {
	_, err := NewLedongthuc().Open([]byte("definitely not a pdf"))
	require.Error(t, err)

	var wrapperErr *WrapperError
	require.ErrorAs(t, err, &wrapperErr)
	assert.Equal(t, "open", wrapperErr.Op)
}

func TestPreflight(t *testing.T) {
	valid := pdftest.Document(pdftest.Text("a"), pdftest.Text("b"))

	tests := []struct {
		name     string
		data     []byte
		maxSize  int64
		wantType errors.ErrorType
		wantErr  bool
	}{
		{name: "valid", data: valid, maxSize: 0},
		{name: "empty", data: nil, wantType: errors.ErrorTypeEmptyInput, wantErr: true},
		{name: "too large", data: valid, maxSize: 10, wantType: errors.ErrorTypeTooLarge, wantErr: true},
		{name: "no header", data: []byte("PK\x03\x04 zip bytes"), wantType: errors.ErrorTypeInvalidHeader, wantErr: true},
		{name: "truncated", data: valid[:40], wantType: errors.ErrorTypeMalformedDocument, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Preflight(tt.data, tt.maxSize)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsExtractionError(err))
				assert.Equal(t, tt.wantType, errors.TypeOf(err))
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 2, result.PageCount)
			assert.Equal(t, "1.4", result.Version)
		})
	}
}

func TestWrapperErrorMessage(t *testing.T) {
	cause := stderrors.New("boom")
	err := &WrapperError{Library: LibraryPDFCPU, Op: "preflight", Err: cause}
	assert.Equal(t, "PDF pdfcpu library error in preflight: boom", err.Error())
	assert.ErrorIs(t, err, cause)
}
