// ABOUTME: Custom error types for the core business logic
// ABOUTME: Provides structured errors for better error handling and API responses

package errors

import (
	"errors"
	"fmt"
)

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ExternalAPIError represents an error from an external API
type ExternalAPIError struct {
	StatusCode int
	Message    string
	API        string
}

// Error implements the error interface
func (e *ExternalAPIError) Error() string {
	return fmt.Sprintf("external API error from %s: %d - %s", e.API, e.StatusCode, e.Message)
}

// FeedParseKind classifies why a catalog feed could not be parsed
type FeedParseKind string

const (
	// MalformedXML means the input is not well-formed XML
	MalformedXML FeedParseKind = "malformed_xml"

	// InvalidRoot means the document root element is not <feed>
	InvalidRoot FeedParseKind = "invalid_root"
)

// FeedParseError represents a feed that could not be turned into a catalog
type FeedParseError struct {
	Kind FeedParseKind

	// Root is the local name of the document element, set for InvalidRoot
	Root string

	// Detected is the feed format detected for the input, e.g. "rss"
	Detected string

	Err error
}

// Error implements the error interface
func (e *FeedParseError) Error() string {
	switch e.Kind {
	case InvalidRoot:
		if e.Detected != "" && e.Detected != "unknown" {
			return fmt.Sprintf("invalid OPDS feed: root element <%s> is not <feed> (detected %s)", e.Root, e.Detected)
		}
		return fmt.Sprintf("invalid OPDS feed: root element <%s> is not <feed>", e.Root)
	default:
		if e.Err != nil {
			return fmt.Sprintf("malformed XML: %v", e.Err)
		}
		return "malformed XML"
	}
}

// Unwrap returns the underlying decode error
func (e *FeedParseError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsExternalAPI checks if an error is an ExternalAPIError
func IsExternalAPI(err error) bool {
	var apiErr *ExternalAPIError
	return errors.As(err, &apiErr)
}

// IsFeedParse checks if an error is a FeedParseError
func IsFeedParse(err error) bool {
	var parseErr *FeedParseError
	return errors.As(err, &parseErr)
}

// IsMalformedXML checks if an error is a FeedParseError of kind MalformedXML
func IsMalformedXML(err error) bool {
	var parseErr *FeedParseError
	return errors.As(err, &parseErr) && parseErr.Kind == MalformedXML
}

// IsInvalidRoot checks if an error is a FeedParseError of kind InvalidRoot
func IsInvalidRoot(err error) bool {
	var parseErr *FeedParseError
	return errors.As(err, &parseErr) && parseErr.Kind == InvalidRoot
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}