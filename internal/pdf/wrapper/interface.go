package wrapper

import (
	stderrors "errors"
	"fmt"

	"github.com/a3tai/pdfsheetdiff/internal/pdf/tables"
)

// Parser opens a fully buffered PDF document
type Parser interface {
	Open(data []byte) (Document, error)
	Library() LibraryType
}

// Document is an opened PDF. Pages are numbered from 1.
type Document interface {
	NumPages() int
	Page(n int) (Page, error)
}

// Page exposes the content of a single page
type Page interface {
	Number() int
	// Text returns the page's plain text; a page with no text returns ""
	Text() (string, error)
	// Words returns the positioned text runs used for table detection
	Words() ([]tables.Word, error)
}

// LibraryType represents the underlying PDF library being used
type LibraryType string

const (
	LibraryPDFCPU     LibraryType = "pdfcpu"
	LibraryLedongthuc LibraryType = "ledongthuc"
)

// WrapperError wraps a failure reported by an underlying PDF library
type WrapperError struct {
	Library LibraryType `json:"library"`
	Op      string      `json:"operation"`
	Err     error       `json:"error"`
}

func (e *WrapperError) Error() string {
	return fmt.Sprintf("PDF %s library error in %s: %v", e.Library, e.Op, e.Err)
}

func (e *WrapperError) Unwrap() error {
	return e.Err
}

// ErrInvalidPage is returned for page numbers outside the document
var ErrInvalidPage = stderrors.New("invalid page number")
