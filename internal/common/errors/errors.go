// Package errors provides standardized error handling for the quoting service.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeMissingCredential ErrorCode = "CONFIG_MISSING_CREDENTIAL"

	ErrCodeTranscriptionFailed  ErrorCode = "TRANSCRIPTION_FAILED"
	ErrCodeTranscriptionTimeout ErrorCode = "TRANSCRIPTION_TIMEOUT"
	ErrCodeExtractionFailed     ErrorCode = "EXTRACTION_FAILED"
	ErrCodeExtractionTimeout    ErrorCode = "EXTRACTION_TIMEOUT"
	ErrCodeResponseParseFailed  ErrorCode = "RESPONSE_PARSE_FAILED"

	ErrCodeRenderFailed ErrorCode = "RENDER_FAILED"

	ErrCodeStoreReadFailed  ErrorCode = "STORE_READ_FAILED"
	ErrCodeStoreWriteFailed ErrorCode = "STORE_WRITE_FAILED"

	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. Error Constructors
// ==========================

// NewMissingCredentialError creates a non-retryable configuration error.
func NewMissingCredentialError(credential string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingCredential,
		Message:   "Required credential is not configured",
		Details:   fmt.Sprintf("credential: %s", credential),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTranscriptionFailedError creates a retryable transcription collaborator error.
func NewTranscriptionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTranscriptionFailed,
		Message:   "Transcription service call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewTranscriptionTimeoutError creates a retryable transcription timeout error.
func NewTranscriptionTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeTranscriptionTimeout,
		Message:   "Transcription service timeout",
		Details:   "call exceeded configured timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewExtractionFailedError creates a retryable structured-extraction collaborator error.
func NewExtractionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionFailed,
		Message:   "Quote extraction service call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewExtractionTimeoutError creates a retryable extraction timeout error.
func NewExtractionTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionTimeout,
		Message:   "Quote extraction service timeout",
		Details:   "call exceeded configured timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewResponseParseError creates a non-retryable parse error for a malformed
// collaborator response.
func NewResponseParseError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeResponseParseFailed,
		Message:   "Collaborator response is not a valid quote",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewRenderFailedError creates a non-retryable document rendering error.
func NewRenderFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRenderFailed,
		Message:   "Invoice rendering failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewStoreReadError creates a retryable profile store read error.
func NewStoreReadError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreReadFailed,
		Message:   "Profile store read failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewStoreWriteError creates a retryable profile store write error.
func NewStoreWriteError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreWriteFailed,
		Message:   "Profile store write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInvalidRequestError creates a non-retryable caller error.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Invalid request",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. HTTP Mapping
// ==========================

// HTTPStatusMapping maps internal error codes to HTTP status codes.
var HTTPStatusMapping = map[ErrorCode]int{
	ErrCodeMissingCredential:    http.StatusInternalServerError,
	ErrCodeTranscriptionFailed:  http.StatusBadGateway,
	ErrCodeTranscriptionTimeout: http.StatusGatewayTimeout,
	ErrCodeExtractionFailed:     http.StatusBadGateway,
	ErrCodeExtractionTimeout:    http.StatusGatewayTimeout,
	ErrCodeResponseParseFailed:  http.StatusBadGateway,
	ErrCodeRenderFailed:         http.StatusInternalServerError,
	ErrCodeStoreReadFailed:      http.StatusInternalServerError,
	ErrCodeStoreWriteFailed:     http.StatusInternalServerError,
	ErrCodeInvalidRequest:       http.StatusBadRequest,
}

// HTTPStatus returns the HTTP status code for an error. Unknown errors map
// to 500.
func HTTPStatus(err error) int {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		if status, ok := HTTPStatusMapping[stdErr.Code]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}

// AsStandardError unwraps err to a StandardError, or wraps it as an
// unclassified internal error so every failure carries a code.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Internal error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 4. Utility Functions
// ==========================

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CONFIG"):
		return "CONFIGURATION"
	case strings.Contains(codeStr, "PARSE"):
		return "PARSE"
	case strings.Contains(codeStr, "TRANSCRIPTION") || strings.Contains(codeStr, "EXTRACTION"):
		return "UPSTREAM"
	case strings.Contains(codeStr, "RENDER"):
		return "RENDERING"
	case strings.Contains(codeStr, "STORE"):
		return "STORE"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
