package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError is the structured error payload every endpoint returns.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer for chi/render.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError carries field-level validation details.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates an APIError.
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates an APIError with additional details.
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidRequest   = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrValidationFailed = New(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed")
	ErrMissingParameter = New(http.StatusBadRequest, "MISSING_PARAMETER", "Required parameter is missing")

	ErrNotFound     = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrUserNotFound = New(http.StatusNotFound, "USER_NOT_FOUND", "No records for the requested user")

	ErrSourceNotConfigured = New(http.StatusServiceUnavailable, "SOURCE_NOT_CONFIGURED", "Data source is not configured")
	ErrInternalServer      = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
)

// ErrValidation creates a validation error with field details.
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// NotFoundError creates a not found error naming the resource.
func NotFoundError(resource string) *APIError {
	return NewWithDetails(http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("%s not found", resource), resource)
}

// UserNotFoundError creates a user not found error for the given email.
func UserNotFoundError(email string) *APIError {
	return NewWithDetails(http.StatusNotFound, "USER_NOT_FOUND", "No records for the requested user", email)
}

// SourceError wraps a data-loading failure as the single terminal error
// the analytics engine surfaces for a batch.
func SourceError(err error) *APIError {
	return NewWithDetails(http.StatusServiceUnavailable, "SOURCE_NOT_CONFIGURED", "Data source is not configured", err.Error())
}

// InternalError wraps an unexpected failure.
func InternalError(err error) *APIError {
	return NewWithDetails(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error", err.Error())
}
