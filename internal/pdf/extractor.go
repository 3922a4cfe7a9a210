package pdf

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/a3tai/pdfsheetdiff/internal/errors"
	"github.com/a3tai/pdfsheetdiff/internal/logging"
	"github.com/a3tai/pdfsheetdiff/internal/pdf/tables"
	"github.com/a3tai/pdfsheetdiff/internal/pdf/wrapper"
	"github.com/a3tai/pdfsheetdiff/internal/table"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultPageTimeout bounds the work spent on a single page
	DefaultPageTimeout = 30 * time.Second
	// DefaultMaxFileSize is the largest document accepted
	DefaultMaxFileSize = 100 * 1024 * 1024
	// DefaultMaxPageTimeouts is how many pages in a row may time out before
	// the rest of the document is skipped
	DefaultMaxPageTimeouts = 3
)

// Extractor turns document bytes into pages of text and tables
type Extractor struct {
	parser      wrapper.Parser
	logger      logrus.FieldLogger
	pageTimeout time.Duration
	maxFileSize int64
	maxTimeouts int
	detect      tables.DetectOptions
}

// Option configures an Extractor
type Option func(*Extractor)

// WithPageTimeout sets the per-page budget; zero disables the timeout
func WithPageTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		e.pageTimeout = d
	}
}

// WithLogger sets the logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxFileSize sets the largest document accepted; zero means unlimited
func WithMaxFileSize(n int64) Option {
	return func(e *Extractor) {
		e.maxFileSize = n
	}
}

// WithMaxPageTimeouts sets how many consecutive page timeouts end
// extraction early. A timed out page keeps its goroutine until the parser
// returns, so the limit also bounds how many can pile up. Zero disables it.
func WithMaxPageTimeouts(n int) Option {
	return func(e *Extractor) {
		e.maxTimeouts = n
	}
}

// WithDetectOptions tunes table detection
func WithDetectOptions(opts tables.DetectOptions) Option {
	return func(e *Extractor) {
		e.detect = opts
	}
}

// NewExtractor creates an extractor. A nil parser uses ledongthuc/pdf.
func NewExtractor(parser wrapper.Parser, opts ...Option) *Extractor {
	if parser == nil {
		parser = wrapper.NewLedongthuc()
	}

	e := &Extractor{
		parser:      parser,
		logger:      logging.Discard(),
		pageTimeout: DefaultPageTimeout,
		maxFileSize: DefaultMaxFileSize,
		maxTimeouts: DefaultMaxPageTimeouts,
		detect:      tables.DefaultDetectOptions(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract reads every page of the document in order. Unreadable documents
// fail with an extraction error; a page that fails on its own is kept as an
// empty page and reported in Document.Warnings. After too many consecutive
// page timeouts the remaining pages are skipped and kept empty.
func (e *Extractor) Extract(ctx context.Context, data []byte) (*Document, error) {
	preflight, err := wrapper.Preflight(data, e.maxFileSize)
	if err != nil {
		return nil, err
	}

	doc, err := e.parser.Open(data)
	if err != nil {
		return nil, errors.NewExtractionError(errors.ErrorTypeMalformedDocument, "cannot open document", err)
	}

	numPages := doc.NumPages()
	if numPages != preflight.PageCount {
		e.logger.WithFields(logrus.Fields{
			"parser_pages":    numPages,
			"preflight_pages": preflight.PageCount,
		}).Warn("page count mismatch between parsers")
	}

	result := &Document{
		Pages:   make([]Page, 0, numPages),
		Version: preflight.Version,
	}

	timeouts := 0
	for n := 1; n <= numPages; n++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewExtractionError(errors.ErrorTypeCancelled, "extraction cancelled", err)
		}

		if e.maxTimeouts > 0 && timeouts >= e.maxTimeouts {
			warning := fmt.Sprintf("stopped after %d consecutive page timeouts; pages %d-%d skipped", timeouts, n, numPages)
			e.logger.WithFields(logrus.Fields{
				"first_skipped": n,
				"last_skipped":  numPages,
			}).Warn("too many page timeouts")
			result.Warnings = append(result.Warnings, warning)
			for ; n <= numPages; n++ {
				result.Pages = append(result.Pages, Page{Number: n, Tables: []table.RawTable{}})
			}
			break
		}

		page, err := guard(ctx, e.pageTimeout, func() (Page, error) {
			return e.extractPage(doc, n)
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, errors.NewExtractionError(errors.ErrorTypeCancelled, "extraction cancelled", ctxErr)
			}

			if stderrors.Is(err, ErrPageTimeout) {
				timeouts++
			} else {
				timeouts = 0
			}

			pageErr := &errors.PageError{Page: n, Err: err}
			e.logger.WithField("page", n).WithError(err).Warn("page extraction failed")
			result.Warnings = append(result.Warnings, pageErr.Error())
			page = Page{Number: n, Tables: []table.RawTable{}}
		} else {
			timeouts = 0
		}

		result.Pages = append(result.Pages, page)
	}

	e.logger.WithFields(logrus.Fields{
		"pages":  len(result.Pages),
		"tables": len(result.Tables()),
	}).Debug("document extracted")

	return result, nil
}

func (e *Extractor) extractPage(doc wrapper.Document, n int) (Page, error) {
	p, err := doc.Page(n)
	if err != nil {
		return Page{}, err
	}

	text, err := p.Text()
	if err != nil {
		return Page{}, err
	}

	words, err := p.Words()
	if err != nil {
		return Page{}, err
	}

	page := Page{Number: n, Text: text, Tables: []table.RawTable{}}
	for _, grid := range tables.Detect(words, e.detect) {
		if t, ok := gridToTable(grid); ok {
			page.Tables = append(page.Tables, t)
		}
	}

	e.logger.WithFields(logrus.Fields{
		"page":   n,
		"tables": len(page.Tables),
	}).Debug("page extracted")

	return page, nil
}
