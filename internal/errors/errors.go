package errors

import (
	stderrors "errors"
	"fmt"
)

// Input identifies which of the two comparison inputs an error belongs to
type Input string

const (
	InputDocument    Input = "document"
	InputSpreadsheet Input = "spreadsheet"
)

// ErrorType represents the category of an input failure
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeInvalidHeader
	ErrorTypeMalformedDocument
	ErrorTypeUnsupportedFormat
	ErrorTypeTooLarge
	ErrorTypeEmptyInput
	ErrorTypeSheetNotFound
	ErrorTypeCancelled
)

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeInvalidHeader:
		return "INVALID_HEADER"
	case ErrorTypeMalformedDocument:
		return "MALFORMED_DOCUMENT"
	case ErrorTypeUnsupportedFormat:
		return "UNSUPPORTED_FORMAT"
	case ErrorTypeTooLarge:
		return "TOO_LARGE"
	case ErrorTypeEmptyInput:
		return "EMPTY_INPUT"
	case ErrorTypeSheetNotFound:
		return "SHEET_NOT_FOUND"
	case ErrorTypeCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// InputError is a fatal failure to read one of the comparison inputs.
// It always names the input so callers can tell the user which file was at fault.
type InputError struct {
	Input   Input     `json:"input"`
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// Error implements the error interface
func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s input: [%s] %s: %v", e.Input, e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s input: [%s] %s", e.Input, e.Type, e.Message)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// NewExtractionError creates an error for a document that could not be extracted
func NewExtractionError(errorType ErrorType, message string, cause error) *InputError {
	return &InputError{
		Input:   InputDocument,
		Type:    errorType,
		Message: message,
		Err:     cause,
	}
}

// NewSpreadsheetReadError creates an error for a spreadsheet that could not be read
func NewSpreadsheetReadError(errorType ErrorType, message string, cause error) *InputError {
	return &InputError{
		Input:   InputSpreadsheet,
		Type:    errorType,
		Message: message,
		Err:     cause,
	}
}

// IsExtractionError reports whether err is, or wraps, a document extraction failure
func IsExtractionError(err error) bool {
	var ie *InputError
	return stderrors.As(err, &ie) && ie.Input == InputDocument
}

// IsSpreadsheetReadError reports whether err is, or wraps, a spreadsheet read failure
func IsSpreadsheetReadError(err error) bool {
	var ie *InputError
	return stderrors.As(err, &ie) && ie.Input == InputSpreadsheet
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var ie *InputError
	if stderrors.As(err, &ie) {
		return ie.Type
	}
	return ErrorTypeUnknown
}

// PageError records a non-fatal failure on a single document page
type PageError struct {
	Page int
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d: %v", e.Page, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}
