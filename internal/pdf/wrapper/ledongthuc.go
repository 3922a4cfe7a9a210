package wrapper

import (
	"bytes"
	"fmt"

	"github.com/a3tai/pdfsheetdiff/internal/pdf/tables"
	"github.com/ledongthuc/pdf"
)

// Ledongthuc implements Parser using ledongthuc/pdf
type Ledongthuc struct{}

// NewLedongthuc creates a parser backed by ledongthuc/pdf
func NewLedongthuc() *Ledongthuc {
	return &Ledongthuc{}
}

// Library returns the library type
func (l *Ledongthuc) Library() LibraryType {
	return LibraryLedongthuc
}

// Open parses the document from memory
func (l *Ledongthuc) Open(data []byte) (doc Document, err error) {
	// the reader panics on some truncated trailers instead of returning an error
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = &WrapperError{Library: LibraryLedongthuc, Op: "open", Err: fmt.Errorf("panic while opening PDF: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "open",
			Err:     fmt.Errorf("failed to open PDF: %w", err),
		}
	}

	return &ledongthucDocument{reader: reader}, nil
}

type ledongthucDocument struct {
	reader *pdf.Reader
}

func (d *ledongthucDocument) NumPages() int {
	return d.reader.NumPage()
}

func (d *ledongthucDocument) Page(n int) (Page, error) {
	if n < 1 || n > d.reader.NumPage() {
		return nil, &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "get_page",
			Err:     fmt.Errorf("%w %d (document has %d pages)", ErrInvalidPage, n, d.reader.NumPage()),
		}
	}
	return &ledongthucPage{page: d.reader.Page(n), number: n}, nil
}

type ledongthucPage struct {
	page   pdf.Page
	number int
}

func (p *ledongthucPage) Number() int {
	return p.number
}

func (p *ledongthucPage) Text() (string, error) {
	if p.page.V.IsNull() {
		return "", nil
	}

	text, err := p.page.GetPlainText(nil)
	if err != nil {
		return "", &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "extract_text",
			Err:     fmt.Errorf("page %d: %w", p.number, err),
		}
	}
	return text, nil
}

func (p *ledongthucPage) Words() ([]tables.Word, error) {
	if p.page.V.IsNull() {
		return nil, nil
	}

	content := p.page.Content()
	words := make([]tables.Word, 0, len(content.Text))
	for _, text := range content.Text {
		if text.S == "" {
			continue
		}
		words = append(words, tables.Word{
			Text:     text.S,
			X:        text.X,
			Y:        text.Y,
			W:        text.W,
			FontSize: text.FontSize,
		})
	}
	return words, nil
}
