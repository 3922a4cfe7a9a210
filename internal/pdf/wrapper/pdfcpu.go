package wrapper

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/a3tai/pdfsheetdiff/internal/errors"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// headerWindow is how far into the file a PDF header may appear
const headerWindow = 1024

var disableConfigDir sync.Once

// PreflightResult describes a document that pdfcpu could read
type PreflightResult struct {
	PageCount int    `json:"page_count"`
	Version   string `json:"version,omitempty"`
}

// Preflight classifies a document before text extraction. It rejects empty,
// oversized, headerless and structurally unreadable input with an
// extraction error naming the reason.
func Preflight(data []byte, maxSize int64) (result *PreflightResult, err error) {
	if len(data) == 0 {
		return nil, errors.NewExtractionError(errors.ErrorTypeEmptyInput, "document is empty", nil)
	}

	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, errors.NewExtractionError(errors.ErrorTypeTooLarge,
			fmt.Sprintf("document size %d exceeds maximum allowed size %d", len(data), maxSize), nil)
	}

	head := data
	if len(head) > headerWindow {
		head = head[:headerWindow]
	}
	if !bytes.Contains(head, []byte("%PDF-")) {
		return nil, errors.NewExtractionError(errors.ErrorTypeInvalidHeader, "missing %PDF- header", nil)
	}

	// pdfcpu writes a configuration directory on first use unless told not to
	disableConfigDir.Do(api.DisableConfigDir)

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = errors.NewExtractionError(errors.ErrorTypeMalformedDocument, "cannot read document structure",
				&WrapperError{Library: LibraryPDFCPU, Op: "preflight", Err: fmt.Errorf("panic: %v", r)})
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, errors.NewExtractionError(errors.ErrorTypeMalformedDocument, "cannot read document structure",
			&WrapperError{Library: LibraryPDFCPU, Op: "preflight", Err: fmt.Errorf("failed to read PDF context: %w", err)})
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, errors.NewExtractionError(errors.ErrorTypeMalformedDocument, "cannot determine page count",
			&WrapperError{Library: LibraryPDFCPU, Op: "preflight", Err: fmt.Errorf("failed to ensure page count: %w", err)})
	}

	result = &PreflightResult{PageCount: ctx.PageCount}
	if ctx.HeaderVersion != nil {
		result.Version = ctx.HeaderVersion.String()
	}
	return result, nil
}
