// Package errors defines custom error types and error handling utilities for the AI Gateway.
// This package provides structured error types that map governance rejections to HTTP status codes.
package errors

import (
	"fmt"
	"net/http"

	"github.com/delang-zeta/ai-gateway/pkg/constants"
)

// ================================================================================
// Base Error Interface
// ================================================================================

// GovError represents a structured governance error with additional metadata
type GovError interface {
	error

	// Code returns the stable machine-readable error code
	Code() constants.ErrorCode

	// HTTPStatus returns the HTTP status code
	HTTPStatus() int

	// Description returns a human-readable description
	Description() string

	// Unwrap returns the underlying error for error chain support
	Unwrap() error

	// WithCause adds a cause error to the error chain
	WithCause(cause error) GovError

	// WithMetadata adds additional context metadata
	WithMetadata(key string, value interface{}) GovError

	// Metadata returns all metadata
	Metadata() map[string]interface{}
}

// ================================================================================
// Base Error Implementation
// ================================================================================

// baseError is the internal implementation of GovError
type baseError struct {
	code        constants.ErrorCode
	httpStatus  int
	description string
	message     string
	cause       error
	metadata    map[string]interface{}
}

// Error implements the error interface
func (e *baseError) Error() string {
	if e.message != "" {
		return e.message
	}
	return e.description
}

// Code returns the stable error code
func (e *baseError) Code() constants.ErrorCode {
	return e.code
}

// HTTPStatus returns the HTTP status code
func (e *baseError) HTTPStatus() int {
	return e.httpStatus
}

// Description returns the error description
func (e *baseError) Description() string {
	return e.description
}

// Unwrap returns the underlying cause error
func (e *baseError) Unwrap() error {
	return e.cause
}

// WithCause adds a cause error to the error chain
func (e *baseError) WithCause(cause error) GovError {
	e.cause = cause
	return e
}

// WithMetadata adds additional context metadata
func (e *baseError) WithMetadata(key string, value interface{}) GovError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

// Metadata returns all metadata
func (e *baseError) Metadata() map[string]interface{} {
	return e.metadata
}

// ================================================================================
// Error Constructor
// ================================================================================

// NewError creates a new GovError with the specified parameters
func NewError(code constants.ErrorCode, httpStatus int, description string, message string) GovError {
	return &baseError{
		code:        code,
		httpStatus:  httpStatus,
		description: description,
		message:     message,
		metadata:    make(map[string]interface{}),
	}
}

// ================================================================================
// Credential Error Constructors
// ================================================================================

// ErrMissingCredential creates an error for an absent or non-Bearer Authorization header
func ErrMissingCredential() GovError {
	return NewError(
		constants.ErrCodeMissingCredential,
		http.StatusUnauthorized,
		"Access token required",
		"request carried no bearer credential",
	)
}

// ErrMalformedCredential creates an error for an Authorization header with the wrong shape
func ErrMalformedCredential(reason string) GovError {
	return NewError(
		constants.ErrCodeMalformedCredential,
		http.StatusUnauthorized,
		"Access token required",
		fmt.Sprintf("credential is malformed: %s", reason),
	).WithMetadata("reason", reason)
}

// ErrExpiredCredential creates an error for a well-signed but expired token
func ErrExpiredCredential() GovError {
	return NewError(
		constants.ErrCodeExpiredCredential,
		http.StatusForbidden,
		"Token expired",
		"token signature is valid but the token has expired",
	)
}

// ErrInvalidCredential creates an error for a tampered or structurally invalid token
func ErrInvalidCredential(reason string) GovError {
	return NewError(
		constants.ErrCodeInvalidCredential,
		http.StatusForbidden,
		"Invalid or expired token",
		fmt.Sprintf("token verification failed: %s", reason),
	).WithMetadata("reason", reason)
}

// ErrVerificationUnavailable creates an error for a signing-key fetch failure
func ErrVerificationUnavailable(cause error) GovError {
	return NewError(
		constants.ErrCodeVerificationUnavailable,
		http.StatusInternalServerError,
		"Authentication service unavailable",
		"could not reach the secret store to verify the credential",
	).WithCause(cause)
}

// ================================================================================
// Admission Error Constructors
// ================================================================================

// ErrRateLimitExceeded creates a rate limit exceeded error carrying a retry hint.
// The window kind distinguishes the minute and hourly variants.
func ErrRateLimitExceeded(kind constants.WindowKind, retryAfterSeconds int64) GovError {
	description := "Rate limit exceeded"
	if kind == constants.WindowHour {
		description = "Hourly rate limit exceeded"
	}
	return NewError(
		constants.ErrCodeRateLimitExceeded,
		http.StatusTooManyRequests,
		description,
		fmt.Sprintf("%s window is full, retry in %ds", kind, retryAfterSeconds),
	).WithMetadata("window", string(kind)).
		WithMetadata("retry_after", retryAfterSeconds)
}

// ErrCostLimitExceeded creates a daily cost cap exceeded error
func ErrCostLimitExceeded(service constants.ServiceTag, limit float64) GovError {
	return NewError(
		constants.ErrCodeCostLimitExceeded,
		http.StatusTooManyRequests,
		"Cost limit exceeded",
		fmt.Sprintf("daily cost limit of %.2f reached for %s", limit, service),
	).WithMetadata("service", string(service)).
		WithMetadata("daily_limit", limit)
}

// ErrCircuitOpen creates an error for a fast-failed call behind an open breaker
func ErrCircuitOpen(integration string) GovError {
	return NewError(
		constants.ErrCodeCircuitOpen,
		http.StatusServiceUnavailable,
		"Integration temporarily unavailable",
		fmt.Sprintf("circuit breaker is open for %s", integration),
	).WithMetadata("integration", integration)
}

// ErrUnknownService creates an operator configuration error for an unconfigured tag
func ErrUnknownService(service string) GovError {
	return NewError(
		constants.ErrCodeUnknownService,
		http.StatusInternalServerError,
		"Service configuration error",
		fmt.Sprintf("no limits configured for service %q", service),
	).WithMetadata("service", service)
}

// ErrMonitoringUnavailable creates an error for an internal governance store failure
func ErrMonitoringUnavailable(store string, cause error) GovError {
	return NewError(
		constants.ErrCodeMonitoringUnavailable,
		http.StatusInternalServerError,
		"Monitoring store unavailable",
		fmt.Sprintf("governance store %q failed", store),
	).WithMetadata("store", store).WithCause(cause)
}

// ================================================================================
// Generic Error Constructors
// ================================================================================

// ErrInvalidRequest creates an invalid request error
func ErrInvalidRequest(message string) GovError {
	return NewError(
		constants.ErrCodeInvalidRequest,
		http.StatusBadRequest,
		"Invalid request",
		message,
	)
}

// ErrServerError creates a generic internal server error
func ErrServerError(message string) GovError {
	return NewError(
		constants.ErrCodeServerError,
		http.StatusInternalServerError,
		"Internal server error",
		message,
	)
}

// ================================================================================
// Error Validation Utilities
// ================================================================================

// AsGovError attempts to cast an error to GovError
func AsGovError(err error) (GovError, bool) {
	govErr, ok := err.(GovError)
	return govErr, ok
}

// IsCredentialError checks if an error belongs to the credential taxonomy
func IsCredentialError(err error) bool {
	if govErr, ok := AsGovError(err); ok {
		switch govErr.Code() {
		case constants.ErrCodeMissingCredential, constants.ErrCodeMalformedCredential,
			constants.ErrCodeExpiredCredential, constants.ErrCodeInvalidCredential:
			return true
		}
	}
	return false
}

// IsRateLimitError checks if an error is a rate or cost limit rejection
func IsRateLimitError(err error) bool {
	if govErr, ok := AsGovError(err); ok {
		return govErr.HTTPStatus() == http.StatusTooManyRequests
	}
	return false
}

// IsCircuitOpenError checks if an error is a fast-fail from an open breaker
func IsCircuitOpenError(err error) bool {
	if govErr, ok := AsGovError(err); ok {
		return govErr.Code() == constants.ErrCodeCircuitOpen
	}
	return false
}

// RetryAfterSeconds extracts the retry hint from a rejection, if present
func RetryAfterSeconds(err error) (int64, bool) {
	govErr, ok := AsGovError(err)
	if !ok {
		return 0, false
	}
	v, ok := govErr.Metadata()["retry_after"]
	if !ok {
		return 0, false
	}
	seconds, ok := v.(int64)
	return seconds, ok
}

// ShouldLogError determines if an error should be logged based on severity
func ShouldLogError(err error) bool {
	if govErr, ok := AsGovError(err); ok {
		// Client rejections are expected outcomes; log server faults and throttles.
		status := govErr.HTTPStatus()
		return status >= 500 || status == http.StatusTooManyRequests
	}
	return true
}

// ================================================================================
// Error Response Builder
// ================================================================================

// ErrorResponse represents the JSON structure for error responses
type ErrorResponse struct {
	Error      string                 `json:"error"`
	Code       string                 `json:"code"`
	RetryAfter *int64                 `json:"retryAfter,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// ToErrorResponse converts a GovError to an ErrorResponse
func ToErrorResponse(err GovError) *ErrorResponse {
	resp := &ErrorResponse{
		Error: err.Description(),
		Code:  string(err.Code()),
	}
	if seconds, ok := RetryAfterSeconds(err); ok {
		resp.RetryAfter = &seconds
	}
	return resp
}

// ToGenericErrorResponse converts any error to an ErrorResponse
func ToGenericErrorResponse(err error) *ErrorResponse {
	if govErr, ok := AsGovError(err); ok {
		return ToErrorResponse(govErr)
	}
	return &ErrorResponse{
		Error: "Internal server error",
		Code:  string(constants.ErrCodeServerError),
	}
}
