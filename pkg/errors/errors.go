package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"
	ErrPermission    ErrorCode = "PERMISSION"

	// Validation errors
	ErrValidation         ErrorCode = "VALIDATION"
	ErrManifestInvalid    ErrorCode = "MANIFEST_INVALID"
	ErrMissingFrontMatter ErrorCode = "MISSING_FRONT_MATTER"

	// Version errors
	ErrInvalidVersion        ErrorCode = "INVALID_VERSION"
	ErrInvalidIncrementField ErrorCode = "INVALID_INCREMENT_FIELD"

	// Apply errors
	ErrConflictUnresolved ErrorCode = "CONFLICT_UNRESOLVED"
	ErrLocked             ErrorCode = "LOCKED"

	// FileSystem errors
	ErrIOFailure    ErrorCode = "IO_FAILURE"
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
)

// BundleError represents a structured error with code and details
type BundleError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *BundleError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *BundleError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *BundleError) Is(target error) bool {
	var targetErr *BundleError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new BundleError with the given code and message
func New(code ErrorCode, message string) *BundleError {
	return &BundleError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new BundleError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *BundleError {
	return &BundleError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a BundleError
func Wrap(err error, code ErrorCode, message string) *BundleError {
	if err == nil {
		return nil
	}
	return &BundleError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *BundleError {
	if err == nil {
		return nil
	}
	return &BundleError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *BundleError) WithDetail(key string, value interface{}) *BundleError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var bundleErr *BundleError
	if errors.As(err, &bundleErr) {
		return bundleErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a BundleError
func GetErrorCode(err error) ErrorCode {
	var bundleErr *BundleError
	if errors.As(err, &bundleErr) {
		return bundleErr.Code
	}
	return ErrUnknown
}
