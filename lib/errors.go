// ABOUTME: Error types and handling for the bookshelf library
// ABOUTME: Provides structured errors with context for library operations

package bookshelf

import (
	"errors"
	"fmt"

	"bookshelf-api/core/catalog"
	coreerrors "bookshelf-api/core/errors"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeValidation indicates a validation error
	ErrorTypeValidation ErrorType = "validation"
	
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "not_found"
	
	// ErrorTypeNetwork indicates a network error
	ErrorTypeNetwork ErrorType = "network"
	
	// ErrorTypeParsing indicates a parsing error
	ErrorTypeParsing ErrorType = "parsing"
	
	// ErrorTypeInternal indicates an internal error
	ErrorTypeInternal ErrorType = "internal"
	
	// ErrorTypeConfiguration indicates a configuration error
	ErrorTypeConfiguration ErrorType = "configuration"
)

// Error represents a structured error from the library
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new error with the given type and message
func NewError(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// WithCause adds a cause to the error
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Common errors
var (
	// ErrClientClosed is returned when operations are attempted on a closed client
	ErrClientClosed = NewError(ErrorTypeInternal, "client is closed")

	// ErrNoFeedURL is returned when the client is built without a catalog feed
	ErrNoFeedURL = NewError(ErrorTypeConfiguration, "no catalog feed URL configured")
)

func isType(err error, t ErrorType) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == t
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return isType(err, ErrorTypeValidation)
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// IsNetworkError checks if an error is a network error
func IsNetworkError(err error) bool {
	return isType(err, ErrorTypeNetwork)
}

// IsParsingError checks if an error is a parsing error
func IsParsingError(err error) bool {
	return isType(err, ErrorTypeParsing)
}

// wrapError converts core errors into library errors, keeping the cause
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var libErr *Error
	if errors.As(err, &libErr) {
		return err
	}

	switch {
	case coreerrors.IsNotFound(err):
		return NewError(ErrorTypeNotFound, "not found").WithCause(err)
	case coreerrors.IsValidation(err):
		return NewError(ErrorTypeValidation, "invalid input").WithCause(err)
	case coreerrors.IsFeedParse(err):
		return NewError(ErrorTypeParsing, "catalog feed could not be parsed").WithCause(err)
	case coreerrors.IsExternalAPI(err), errors.Is(err, catalog.ErrSourceUnavailable):
		return NewError(ErrorTypeNetwork, "catalog feed unavailable").WithCause(err)
	default:
		return NewError(ErrorTypeInternal, "operation failed").WithCause(err)
	}
}
