package compare

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/a3tai/pdfsheetdiff/internal/config"
	"github.com/a3tai/pdfsheetdiff/internal/diff"
	"github.com/a3tai/pdfsheetdiff/internal/errors"
	"github.com/a3tai/pdfsheetdiff/internal/logging"
	"github.com/a3tai/pdfsheetdiff/internal/pdf"
	"github.com/a3tai/pdfsheetdiff/internal/sheet"
	"github.com/a3tai/pdfsheetdiff/internal/table"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// resultNamespace scopes result IDs so they never collide with other name-based UUIDs
var resultNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/a3tai/pdfsheetdiff/result"))

// Service compares PDF documents against spreadsheets using one configuration.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	extractor   *pdf.Extractor
	sheetOpts   sheet.Options
	tableOpts   []table.Option
	textOpts    diff.TextOptions
	diffOpts    diff.TableOptions
	maxFileSize int64
	settings    string
	logger      logrus.FieldLogger
}

// NewService creates a comparison service from a validated configuration
func NewService(cfg *config.Config, logger logrus.FieldLogger) (*Service, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	policy, err := table.ParsePolicy(cfg.Concat)
	if err != nil {
		return nil, err
	}
	alignment, err := diff.ParseAlignment(cfg.Alignment)
	if err != nil {
		return nil, err
	}
	format, err := sheet.ParseFormat(cfg.SheetFormat)
	if err != nil {
		return nil, err
	}
	defaultComparator, err := diff.ComparatorByName(cfg.DefaultComparator)
	if err != nil {
		return nil, err
	}

	comparators := make(map[string]diff.Comparator, len(cfg.Comparators))
	for column, name := range cfg.Comparators {
		c, err := diff.ComparatorByName(name)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", column, err)
		}
		comparators[column] = c
	}

	return &Service{
		extractor: pdf.NewExtractor(nil,
			pdf.WithLogger(logger),
			pdf.WithPageTimeout(cfg.PageTimeout),
			pdf.WithMaxFileSize(cfg.MaxFileSize),
			pdf.WithMaxPageTimeouts(cfg.MaxPageTimeouts),
			pdf.WithDetectOptions(cfg.DetectOptions()),
		),
		sheetOpts: sheet.Options{SheetName: cfg.SheetName, Format: format},
		tableOpts: []table.Option{table.WithPolicy(policy), table.WithNFC(cfg.NFC)},
		textOpts:  diff.TextOptions{ContextLines: cfg.ContextLines},
		diffOpts: diff.TableOptions{
			Alignment:   alignment,
			KeyColumn:   cfg.KeyColumn,
			Comparators: comparators,
			Default:     defaultComparator,
		},
		maxFileSize: cfg.MaxFileSize,
		settings:    settingsFingerprint(cfg),
		logger:      logger,
	}, nil
}

// Compare extracts both inputs, diffs their text and tables, and assembles
// the result. A failure to read either input is returned as an
// errors.InputError naming that input.
func (s *Service) Compare(ctx context.Context, document, spreadsheet []byte) (*ComparisonResult, error) {
	var (
		doc *pdf.Document
		sh  *sheet.Sheet
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		doc, err = s.extractor.Extract(gctx, document)
		return err
	})
	g.Go(func() error {
		if int64(len(spreadsheet)) > s.maxFileSize {
			return newInputError(errors.InputSpreadsheet, errors.ErrorTypeTooLarge,
				fmt.Sprintf("size %d exceeds maximum allowed size %d", len(spreadsheet), s.maxFileSize))
		}
		var err error
		sh, err = sheet.Read(spreadsheet, s.sheetOpts)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	left := table.Normalize(doc.Tables(), s.tableOpts...)
	right := sh.Table(s.tableOpts...)

	var (
		textReport diff.TextDiffReport
		mismatches []diff.CellMismatch
	)

	g = new(errgroup.Group)
	g.Go(func() error {
		textReport = diff.DiffText(doc.Text(), right.FlattenText(), s.textOpts)
		return nil
	})
	g.Go(func() error {
		var err error
		mismatches, err = diff.DiffTables(left, right, s.diffOpts)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := Assemble(textReport, mismatches)
	result.ID = resultID(document, spreadsheet, s.settings)
	result.SharedColumns = diff.SharedColumns(left, right)
	result.Document = DocumentSummary{
		Pages:   len(doc.Pages),
		Version: doc.Version,
		Tables:  len(doc.Tables()),
		Columns: len(left.Columns),
		Rows:    left.RowCount(),
	}
	result.Spreadsheet = SheetSummary{
		Name:    sh.Name,
		Format:  string(sh.Format),
		Columns: len(right.Columns),
		Rows:    right.RowCount(),
	}
	if len(doc.Warnings) > 0 {
		result.Warnings = append(result.Warnings, doc.Warnings...)
	}

	s.logger.WithFields(logrus.Fields{
		"id":         result.ID,
		"hunks":      len(result.TextDiff.Hunks),
		"columns":    len(result.SharedColumns),
		"mismatches": len(result.DataDiff),
		"warnings":   len(result.Warnings),
	}).Info("comparison complete")

	return result, nil
}

// CompareFiles reads both files, enforcing the size limit, then compares them
func (s *Service) CompareFiles(ctx context.Context, documentPath, spreadsheetPath string) (*ComparisonResult, error) {
	document, err := s.readFile(documentPath, errors.InputDocument)
	if err != nil {
		return nil, err
	}
	spreadsheet, err := s.readFile(spreadsheetPath, errors.InputSpreadsheet)
	if err != nil {
		return nil, err
	}
	return s.Compare(ctx, document, spreadsheet)
}

// ExtractFile extracts the pages and tables of a PDF file
func (s *Service) ExtractFile(ctx context.Context, path string) (*pdf.Document, error) {
	data, err := s.readFile(path, errors.InputDocument)
	if err != nil {
		return nil, err
	}
	return s.extractor.Extract(ctx, data)
}

// ReadSheetFile reads a spreadsheet file. sheetName overrides the configured sheet when set.
func (s *Service) ReadSheetFile(path, sheetName string) (*sheet.Sheet, error) {
	data, err := s.readFile(path, errors.InputSpreadsheet)
	if err != nil {
		return nil, err
	}
	opts := s.sheetOpts
	if sheetName != "" {
		opts.SheetName = sheetName
	}
	return sheet.Read(data, opts)
}

// TableOptions returns the normalization options the service applies
func (s *Service) TableOptions() []table.Option {
	return s.tableOpts
}

// MaxFileSize returns the largest input the service accepts
func (s *Service) MaxFileSize() int64 {
	return s.maxFileSize
}

func (s *Service) readFile(path string, input errors.Input) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s file %s: %w", input, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s path %s is a directory", input, path)
	}
	if info.Size() > s.maxFileSize {
		return nil, newInputError(input, errors.ErrorTypeTooLarge,
			fmt.Sprintf("file size %d exceeds maximum allowed size %d", info.Size(), s.maxFileSize))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s file %s: %w", input, path, err)
	}
	return data, nil
}

func newInputError(input errors.Input, errorType errors.ErrorType, message string) error {
	if input == errors.InputSpreadsheet {
		return errors.NewSpreadsheetReadError(errorType, message, nil)
	}
	return errors.NewExtractionError(errorType, message, nil)
}

// resultID derives a stable identifier from the inputs and the settings
// that shape the result
func resultID(document, spreadsheet []byte, settings string) string {
	docSum := sha256.Sum256(document)
	sheetSum := sha256.Sum256(spreadsheet)

	name := make([]byte, 0, len(docSum)+len(sheetSum)+len(settings))
	name = append(name, docSum[:]...)
	name = append(name, sheetSum[:]...)
	name = append(name, settings...)
	return uuid.NewSHA1(resultNamespace, name).String()
}

func settingsFingerprint(cfg *config.Config) string {
	columns := make([]string, 0, len(cfg.Comparators))
	for column, name := range cfg.Comparators {
		columns = append(columns, column+"="+name)
	}
	sort.Strings(columns)

	return strings.Join([]string{
		cfg.Concat,
		cfg.Alignment,
		cfg.KeyColumn,
		cfg.DefaultComparator,
		strings.Join(columns, ","),
		fmt.Sprint(cfg.NFC),
		fmt.Sprint(cfg.ContextLines),
		cfg.SheetName,
		cfg.SheetFormat,
		fmt.Sprintf("%+v", cfg.DetectOptions()),
	}, "|")
}
