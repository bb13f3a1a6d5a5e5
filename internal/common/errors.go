package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Request-level error codes surfaced in the response payload.
const (
	CodeInvalidDocumentTypes     = "INVALID_DOCUMENT_TYPES"
	CodeUnknownDocumentTypes     = "UNKNOWN_DOCUMENT_TYPES"
	CodeMixedDocumentTypes       = "MIXED_DOCUMENT_TYPES"
	CodePDFParseFailed           = "PDF_PARSE_FAILED"
	CodeReasoningResponseInvalid = "REASONING_RESPONSE_INVALID"
	CodeReasoningCallFailed      = "REASONING_CALL_FAILED"
	CodeMissingDocuments         = "MISSING_DOCUMENTS"
	CodeConfig                   = "CONFIG_ERROR"
)

// AppError represents application-specific errors
type AppError struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// GRPCStatus lets status.FromError map an AppError without a translation layer.
func (e *AppError) GRPCStatus() *status.Status {
	return status.New(grpcCode(e.Code), e.Error())
}

func grpcCode(code string) codes.Code {
	switch code {
	case CodeInvalidDocumentTypes, CodeUnknownDocumentTypes, CodeMixedDocumentTypes,
		CodeMissingDocuments, CodePDFParseFailed:
		return codes.InvalidArgument
	case CodeReasoningCallFailed:
		return codes.Unavailable
	case CodeConfig:
		return codes.FailedPrecondition
	default:
		return codes.Internal
	}
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrValidation   = errors.New("validation failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion returns e with a user-facing remediation hint attached.
func (e *AppError) WithSuggestion(s string) *AppError {
	e.Suggestion = s
	return e
}

// AsAppError unwraps err to the first *AppError in its chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// ErrorCode returns the AppError code in err's chain, or "" when there is none.
func ErrorCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
