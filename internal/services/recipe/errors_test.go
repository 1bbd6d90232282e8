package recipe

import (
	"context"
	"errors"
	"fmt"
	"testing"

	apperrors "github.com/cortexcompose/compose/internal/errors"
)

func TestClassifyError_RateLimit(t *testing.T) {
	testCases := []string{
		"API error: status 429",
		"rate limit exceeded",
		"Rate Limit Error",
		"too many requests",
		"Error 429, Message: quota, Status: RESOURCE_EXHAUSTED",
	}

	for _, tc := range testCases {
		err := errors.New(tc)
		providerErr := ClassifyError(err, "gemini")

		if providerErr.Type != ErrTypeRateLimit {
			t.Errorf("Expected rate_limit for '%s', got %s", tc, providerErr.Type)
		}
		if providerErr.Provider != "gemini" {
			t.Errorf("Expected provider 'gemini', got %s", providerErr.Provider)
		}
	}
}

func TestClassifyError_ServerError(t *testing.T) {
	testCases := []string{
		"API error: status 500",
		"HTTP 503",
		"server error occurred",
		"Internal Error",
		"dial tcp: connection refused",
	}

	for _, tc := range testCases {
		err := errors.New(tc)
		providerErr := ClassifyError(err, "gemini")

		if providerErr.Type != ErrTypeServerError {
			t.Errorf("Expected server_error for '%s', got %s", tc, providerErr.Type)
		}
	}
}

func TestClassifyError_ClientError(t *testing.T) {
	testCases := []string{
		"API error: status 400",
		"HTTP 401",
		"bad request",
		"API key not valid. Please pass a valid API key.",
	}

	for _, tc := range testCases {
		err := errors.New(tc)
		providerErr := ClassifyError(err, "gemini")

		if providerErr.Type != ErrTypeClientError {
			t.Errorf("Expected client_error for '%s', got %s", tc, providerErr.Type)
		}
	}
}

func TestClassifyError_Context(t *testing.T) {
	deadline := fmt.Errorf("generate image: %w", context.DeadlineExceeded)
	if got := ClassifyError(deadline, "gemini").Type; got != ErrTypeTimeout {
		t.Errorf("Expected timeout, got %s", got)
	}

	canceled := fmt.Errorf("generate image: %w", context.Canceled)
	if got := ClassifyError(canceled, "gemini").Type; got != ErrTypeCanceled {
		t.Errorf("Expected canceled, got %s", got)
	}
}

func TestClassifyError_AppError(t *testing.T) {
	appErr := apperrors.NewServiceError("text service failed", "TEXT_SERVICE_FAILED", nil)
	providerErr := ClassifyError(appErr, "gemini")

	if providerErr.Type != ErrTypeServerError {
		t.Errorf("Expected server_error for AppError with 502 status, got %s", providerErr.Type)
	}

	appErr2 := apperrors.NewValidationError("bad input", "BAD_INPUT", "")
	providerErr2 := ClassifyError(appErr2, "gemini")

	if providerErr2.Type != ErrTypeClientError {
		t.Errorf("Expected client_error for AppError with 400 status, got %s", providerErr2.Type)
	}
}

func TestClassifyError_ProviderErrorPassesThrough(t *testing.T) {
	pe := NewProviderError("gemini", 429, "quota exhausted", nil)
	wrapped := fmt.Errorf("text call: %w", pe)

	got := ClassifyError(wrapped, "other")
	if got != pe {
		t.Errorf("Expected the original ProviderError, got %+v", got)
	}
}

func TestNewProviderError(t *testing.T) {
	testCases := []struct {
		status   int
		expected string
	}{
		{429, ErrTypeRateLimit},
		{504, ErrTypeTimeout},
		{500, ErrTypeServerError},
		{503, ErrTypeServerError},
		{403, ErrTypeClientError},
		{0, ErrTypeUnknown},
	}

	for _, tc := range testCases {
		pe := NewProviderError("gemini", tc.status, "msg", nil)
		if pe.Type != tc.expected {
			t.Errorf("status %d: expected %s, got %s", tc.status, tc.expected, pe.Type)
		}
	}
}

func TestClassifyError_Unknown(t *testing.T) {
	err := errors.New("some random error")
	providerErr := ClassifyError(err, "gemini")

	if providerErr.Type != ErrTypeUnknown {
		t.Errorf("Expected unknown for random error, got %s", providerErr.Type)
	}
}

func TestClassifyError_Nil(t *testing.T) {
	providerErr := ClassifyError(nil, "gemini")

	if providerErr != nil {
		t.Errorf("Expected nil for nil error, got %v", providerErr)
	}
}

func TestIsRetryableError(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{"rate limit", errors.New("status 429"), true},
		{"server error", errors.New("status 500"), true},
		{"timeout", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"client error", errors.New("status 400"), false},
		{"unknown error", errors.New("random"), false},
		{"nil error", nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := IsRetryableError(tc.err)
			if result != tc.expected {
				t.Errorf("IsRetryableError(%v) = %v, expected %v", tc.err, result, tc.expected)
			}
		})
	}
}
