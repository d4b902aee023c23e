// Package errors provides structured error types for the intelligence core.
// All errors include a category, code, message, and retryable flag for
// consistent handling at the orchestration boundary.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by system component.
type ErrorCategory string

const (
	ErrCategoryCollection ErrorCategory = "COLLECTION"
	ErrCategoryStorage    ErrorCategory = "STORAGE"
	ErrCategorySynthesis  ErrorCategory = "SYNTHESIS"
	ErrCategoryMemory     ErrorCategory = "MEMORY"
	ErrCategoryDelivery   ErrorCategory = "DELIVERY"
	ErrCategoryInternal   ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Collection codes
	CodeSweepFailed   = "SWEEP_FAILED"
	CodeBridgeTimeout = "BRIDGE_TIMEOUT"

	// Storage codes
	CodeOpenFailed   = "OPEN_FAILED"
	CodeInsertFailed = "INSERT_FAILED"
	CodeQueryFailed  = "QUERY_FAILED"

	// Synthesis codes
	CodeReasoningFailed = "REASONING_FAILED"
	CodeEmptyResponse   = "EMPTY_RESPONSE"

	// Memory codes
	CodeReadFailed         = "READ_FAILED"
	CodeWriteFailed        = "WRITE_FAILED"
	CodeMalformedDirective = "MALFORMED_DIRECTIVE"

	// Delivery codes
	CodeSendFailed     = "SEND_FAILED"
	CodeBridgeRejected = "BRIDGE_REJECTED"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// CoreError is the structured error type used throughout the system.
type CoreError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Cause     error
	Retryable bool
}

// Error returns a formatted error string.
func (e *CoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *CoreError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *CoreError) Is(target error) bool {
	var t *CoreError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new CoreError.
func New(category ErrorCategory, code, message string) *CoreError {
	return &CoreError{
		Category:  category,
		Code:      code,
		Message:   message,
		Retryable: isRetryable(category, code),
	}
}

// Wrap creates a new CoreError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *CoreError {
	return &CoreError{
		Category:  category,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryable(category, code),
	}
}

// IsRetryable checks whether an error (or its chain) is retryable.
// Retryable means the next scheduled cycle is expected to absorb the
// failure without operator intervention.
func IsRetryable(err error) bool {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a CoreError.
func GetCategory(err error) ErrorCategory {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a CoreError.
func GetCode(err error) string {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// isRetryable determines if an error code is retryable. Collection sweeps,
// reasoning calls and deliveries are retried by the next scheduled cycle;
// storage initialization and malformed directives are not.
func isRetryable(category ErrorCategory, code string) bool {
	switch {
	case category == ErrCategoryCollection:
		return true
	case category == ErrCategorySynthesis && code == CodeReasoningFailed:
		return true
	case category == ErrCategoryDelivery && code == CodeSendFailed:
		return true
	default:
		return false
	}
}

// Convenience constructors for common errors.

func NewCollectionError(code, message string, cause error) *CoreError {
	return Wrap(ErrCategoryCollection, code, message, cause)
}

func NewStorageError(code, message string, cause error) *CoreError {
	return Wrap(ErrCategoryStorage, code, message, cause)
}

func NewSynthesisError(code, message string, cause error) *CoreError {
	return Wrap(ErrCategorySynthesis, code, message, cause)
}

func NewMemoryError(code, message string, cause error) *CoreError {
	return Wrap(ErrCategoryMemory, code, message, cause)
}

func NewDeliveryError(code, message string, cause error) *CoreError {
	return Wrap(ErrCategoryDelivery, code, message, cause)
}

func NewInternalError(message string, cause error) *CoreError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
