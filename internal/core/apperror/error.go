// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes following domain-driven design
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"
	CodeTimeout  = "TIMEOUT_ERROR"

	// Validation errors (400)
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"

	// Business rule violations (422)
	CodeBusinessRule           = "BUSINESS_RULE_VIOLATION"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
	CodeLeaveExhausted         = "LEAVE_BALANCE_EXHAUSTED"

	// Propagation errors (permanent: the worker must not retry these)
	CodeUnknownAggregate = "UNKNOWN_AGGREGATE_TYPE"
	CodeAggregateGone    = "AGGREGATE_GONE"
	CodeUnknownEventType = "UNKNOWN_EVENT_TYPE"
	CodeCascadeDepth     = "CASCADE_DEPTH_EXCEEDED"

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict  = "CONFLICT"
	CodeDuplicate = "DUPLICATE_ENTRY"
)

// AppError is the standard error type for the platform.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, aggregate identity, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewBusinessRule creates a business rule violation error (422)
func NewBusinessRule(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewConcurrentModification creates an optimistic locking error
func NewConcurrentModification(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeConcurrentModification,
		Message:    "Record was modified by another user. Please refresh and try again.",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDuplicate creates a duplicate entry error (409)
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// --- Propagation error factories ---

// NewUnknownAggregate is returned when an aggregate type has no entry in the
// relation registry. Permanent: retrying cannot fix a registry gap.
func NewUnknownAggregate(aggregateType string) *AppError {
	return &AppError{
		Code:       CodeUnknownAggregate,
		Message:    fmt.Sprintf("aggregate type %q is not registered", aggregateType),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"aggregate_type": aggregateType},
	}
}

// NewAggregateGone is returned when the aggregate row no longer exists,
// i.e. it was hard-deleted outside the soft-delete capability. Permanent.
func NewAggregateGone(aggregateType, aggregateID string) *AppError {
	return &AppError{
		Code:       CodeAggregateGone,
		Message:    fmt.Sprintf("aggregate %s:%s no longer exists", aggregateType, aggregateID),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"aggregate_type": aggregateType, "aggregate_id": aggregateID},
	}
}

// NewUnknownEventType is returned when no handler is registered for an event
// type. Permanent.
func NewUnknownEventType(eventType string) *AppError {
	return &AppError{
		Code:       CodeUnknownEventType,
		Message:    fmt.Sprintf("no handler registered for event type %q", eventType),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"event_type": eventType},
	}
}

// NewCascadeDepthExceeded is returned when a cascade walk exceeds the depth
// backstop. Indicates a registry misconfiguration; permanent.
func NewCascadeDepthExceeded(aggregateType string, maxDepth int) *AppError {
	return &AppError{
		Code:       CodeCascadeDepth,
		Message:    fmt.Sprintf("cascade from %s exceeded max depth %d", aggregateType, maxDepth),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"aggregate_type": aggregateType, "max_depth": maxDepth},
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeNotFound
	}
	return false
}

// IsConcurrentModification checks if error is CodeConcurrentModification
func IsConcurrentModification(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeConcurrentModification
	}
	return false
}

// permanentCodes are propagation failures that retrying cannot fix.
var permanentCodes = map[string]bool{
	CodeUnknownAggregate: true,
	CodeAggregateGone:    true,
	CodeUnknownEventType: true,
	CodeCascadeDepth:     true,
}

// IsPermanent reports whether err is a permanent propagation failure.
// Everything else (store unavailable, deadlock, timeout) is treated as
// transient and eligible for bounded retry.
func IsPermanent(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return permanentCodes[appErr.Code]
	}
	return false
}
