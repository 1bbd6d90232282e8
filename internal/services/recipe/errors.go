package recipe

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apperrors "github.com/cortexcompose/compose/internal/errors"
)

// Provider error types
const (
	ErrTypeRateLimit   = "rate_limit"
	ErrTypeServerError = "server_error"
	ErrTypeClientError = "client_error"
	ErrTypeTimeout     = "timeout"
	ErrTypeCanceled    = "canceled"
	ErrTypeUnknown     = "unknown"
)

// ProviderError represents a classified error from an AI provider
type ProviderError struct {
	Type       string
	Message    string
	Provider   string
	StatusCode int
	Err        error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError classifies a provider response by its HTTP status code.
func NewProviderError(provider string, statusCode int, message string, err error) *ProviderError {
	pe := &ProviderError{
		Type:       ErrTypeUnknown,
		Message:    message,
		Provider:   provider,
		StatusCode: statusCode,
		Err:        err,
	}
	switch {
	case statusCode == http.StatusTooManyRequests:
		pe.Type = ErrTypeRateLimit
	case statusCode == http.StatusRequestTimeout || statusCode == http.StatusGatewayTimeout:
		pe.Type = ErrTypeTimeout
	case statusCode >= 500:
		pe.Type = ErrTypeServerError
	case statusCode >= 400:
		pe.Type = ErrTypeClientError
	}
	return pe
}

// ClassifyError analyzes an error and returns a ProviderError with classification
func ClassifyError(err error, provider string) *ProviderError {
	if err == nil {
		return nil
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}

	msg := err.Error()
	classified := func(t string) *ProviderError {
		return &ProviderError{Type: t, Message: msg, Provider: provider, Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return classified(ErrTypeTimeout)
	}
	if errors.Is(err, context.Canceled) {
		return classified(ErrTypeCanceled)
	}

	// Check for AppError with status code
	if appErr, ok := apperrors.As(err); ok && appErr.StatusCode > 0 {
		if appErr.StatusCode >= 500 {
			return classified(ErrTypeServerError)
		}
		if appErr.StatusCode >= 400 {
			return classified(ErrTypeClientError)
		}
	}

	switch {
	case containsAny(msg, "status 429", "HTTP 429", "rate limit", "too many requests", "resource_exhausted"):
		return classified(ErrTypeRateLimit)
	case containsAny(msg, "timeout", "deadline exceeded"):
		return classified(ErrTypeTimeout)
	case containsAny(msg, "status 5", "HTTP 5", "server error", "internal error", "unavailable", "connection reset", "connection refused"):
		return classified(ErrTypeServerError)
	case containsAny(msg, "status 4", "HTTP 4", "bad request", "unauthorized", "forbidden", "api key not valid", "permission_denied"):
		return classified(ErrTypeClientError)
	}

	return classified(ErrTypeUnknown)
}

// IsRetryableError returns true if the error is retryable (rate limit, timeout, or server error)
func IsRetryableError(err error) bool {
	providerErr := ClassifyError(err, "")
	if providerErr == nil {
		return false
	}

	switch providerErr.Type {
	case ErrTypeRateLimit, ErrTypeServerError, ErrTypeTimeout:
		return true
	default:
		return false
	}
}

// containsAny checks if s contains any of the substrings (case-insensitive)
func containsAny(s string, substrs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrs {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
