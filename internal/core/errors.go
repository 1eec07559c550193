package core

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors for handling decisions.
type ErrorCategory string

const (
	ErrCatValidation ErrorCategory = "validation" // Invalid input
	ErrCatConfig     ErrorCategory = "config"     // Assistant disabled or misconfigured
	ErrCatAuth       ErrorCategory = "auth"       // Provider rejected credentials
	ErrCatRateLimit  ErrorCategory = "rate_limit" // Provider or local limiter throttled
	ErrCatBudget     ErrorCategory = "budget"     // Provider account out of credits
	ErrCatProvider   ErrorCategory = "provider"   // Provider returned an error status
	ErrCatNetwork    ErrorCategory = "network"    // Transport failure
	ErrCatNotFound   ErrorCategory = "not_found"  // Resource not found
	ErrCatInternal   ErrorCategory = "internal"   // Unexpected internal error
)

// DomainError represents a structured error from the domain layer.
// Message is always safe to show to the end user.
type DomainError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Retryable bool
	Cause     error
	Details   map[string]interface{}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches on category and code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// WithCause wraps an underlying error.
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// WithDetail adds contextual information.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ErrValidation creates a validation error.
func ErrValidation(code, message string) *DomainError {
	return &DomainError{
		Category: ErrCatValidation,
		Code:     code,
		Message:  message,
	}
}

// ErrConfig creates a configuration error. These are raised before any
// provider call is made and are never retried.
func ErrConfig(code, message string) *DomainError {
	return &DomainError{
		Category: ErrCatConfig,
		Code:     code,
		Message:  message,
	}
}

// ErrAuth creates an authentication error.
func ErrAuth(message string) *DomainError {
	return &DomainError{
		Category: ErrCatAuth,
		Code:     CodeInvalidAPIKey,
		Message:  message,
	}
}

// ErrRateLimit creates a rate limit error. The caller may retry manually.
func ErrRateLimit(message string) *DomainError {
	return &DomainError{
		Category:  ErrCatRateLimit,
		Code:      CodeRateLimited,
		Message:   message,
		Retryable: true,
	}
}

// ErrBudget creates an insufficient-credits error.
func ErrBudget(message string) *DomainError {
	return &DomainError{
		Category: ErrCatBudget,
		Code:     CodeInsufficientCredits,
		Message:  message,
	}
}

// ErrProvider creates an error for a non-success provider response.
func ErrProvider(status int, message string) *DomainError {
	return &DomainError{
		Category: ErrCatProvider,
		Code:     CodeProviderFailed,
		Message:  message,
		Details:  map[string]interface{}{"status": status},
	}
}

// ErrNetwork creates a transport error.
func ErrNetwork(message string) *DomainError {
	return &DomainError{
		Category:  ErrCatNetwork,
		Code:      CodeNetwork,
		Message:   message,
		Retryable: true,
	}
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) *DomainError {
	return &DomainError{
		Category: ErrCatNotFound,
		Code:     "NOT_FOUND",
		Message:  fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Retryable
	}
	return false
}

// GetCategory extracts the error category.
func GetCategory(err error) ErrorCategory {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Category
	}
	return ErrCatInternal
}

// IsCategory checks if an error belongs to a category.
func IsCategory(err error, cat ErrorCategory) bool {
	return GetCategory(err) == cat
}

// UserMessage returns the message to surface to the user for err.
// Non-domain errors fall back to fallback.
func UserMessage(err error, fallback string) string {
	var domErr *DomainError
	if errors.As(err, &domErr) && domErr.Message != "" {
		return domErr.Message
	}
	return fallback
}

// Predefined error codes
const (
	CodeAIDisabled          = "AI_DISABLED"
	CodeMissingAPIKey       = "MISSING_API_KEY"
	CodeInvalidAPIKey       = "INVALID_API_KEY"
	CodeRateLimited         = "RATE_LIMITED"
	CodeInsufficientCredits = "INSUFFICIENT_CREDITS"
	CodeProviderFailed      = "PROVIDER_FAILED"
	CodeNetwork             = "NETWORK_ERROR"
	CodeInvalidConfig       = "INVALID_CONFIG"
	CodeDuplicateCommand    = "DUPLICATE_COMMAND"
	CodeInvalidCatalog      = "INVALID_CATALOG"
)

// MaxMessageLength bounds a single user chat message.
const MaxMessageLength = 8000
