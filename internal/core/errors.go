package core

import (
	"fmt"
	"net/http"
	"strings"
)

// APIError is a structured service fault with a machine-readable code,
// a human-readable message, and the HTTP status it maps to on the wire.
// Backends return these directly; the dispatcher serializes them into the
// AWS JSON fault shape.
type APIError struct {
	Code    string
	Message string
	Status  int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAPIError creates a fault with an explicit status code.
func NewAPIError(code string, status int, format string, args ...interface{}) *APIError {
	return &APIError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Status:  status,
	}
}

// ResourceNotFound is the generic fault for operations on an unknown identifier.
func ResourceNotFound(message string) *APIError {
	return &APIError{
		Code:    "ResourceNotFoundException",
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// ResourceAlreadyExists is the fault for creating a resource whose identifier
// is already taken.
func ResourceAlreadyExists(message string) *APIError {
	return &APIError{
		Code:    "ResourceAlreadyExistsException",
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// ValidationError is the fault for input that fails a backend's validation.
func ValidationError(format string, args ...interface{}) *APIError {
	return &APIError{
		Code:    "ValidationException",
		Message: fmt.Sprintf(format, args...),
		Status:  http.StatusBadRequest,
	}
}

// UnsupportedLanguage is the fault raised by text-analysis operations when the
// requested language code is not supported for that operation.
func UnsupportedLanguage(language string, supported []string) *APIError {
	return ValidationError(
		"Value '%s' at 'languageCode' failed to satisfy constraint: Member must satisfy enum value set: [%s]",
		language, strings.Join(supported, ", "),
	)
}

// TextSizeLimitExceeded is the fault raised by text-analysis operations when
// the input document exceeds the per-operation byte limit.
func TextSizeLimitExceeded(size int) *APIError {
	return &APIError{
		Code: "TextSizeLimitExceededException",
		Message: fmt.Sprintf(
			"Input text size exceeds limit. Max length of request text allowed is 100000 bytes while in this request the text size is %d bytes", size),
		Status: http.StatusBadRequest,
	}
}
