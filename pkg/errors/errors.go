package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeStoreUnavailable indicates the session store cannot be reached.
	// Transient; the caller decides whether to retry, the core never does.
	ErrorTypeStoreUnavailable ErrorType = "STORE_UNAVAILABLE"

	// ErrorTypeArtifactMissing indicates a serving artifact is absent.
	// Non-fatal; the caller falls back to a degraded strategy.
	ErrorTypeArtifactMissing ErrorType = "ARTIFACT_MISSING"

	// ErrorTypeMalformedRecord indicates a stored record could not be parsed
	ErrorTypeMalformedRecord ErrorType = "MALFORMED_RECORD"

	// ErrorTypeValidation indicates invalid request input
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewStoreUnavailableError creates a new store unavailable error
func NewStoreUnavailableError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeStoreUnavailable,
		Message: message,
		Err:     err,
	}
}

// NewArtifactMissingError creates a new artifact missing error
func NewArtifactMissingError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeArtifactMissing,
		Message: message,
	}
}

// NewMalformedRecordError creates a new malformed record error
func NewMalformedRecordError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeMalformedRecord,
		Message: message,
		Err:     err,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// TypeOf returns the AppError type wrapped anywhere in err's chain,
// or ErrorTypeInternal when err carries no AppError.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// IsStoreUnavailable reports whether err is a store availability failure.
func IsStoreUnavailable(err error) bool {
	return TypeOf(err) == ErrorTypeStoreUnavailable
}

// IsArtifactMissing reports whether err marks an absent artifact.
func IsArtifactMissing(err error) bool {
	return TypeOf(err) == ErrorTypeArtifactMissing
}
