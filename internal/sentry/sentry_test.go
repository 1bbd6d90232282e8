package sentry

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/cortexcompose/compose/internal/errors"
)

func TestInit_EmptyDSN(t *testing.T) {
	assert.NoError(t, Init("", "test", "cortex-compose", "dev"))
}

func TestHTTPMiddleware_RecoversPanic(t *testing.T) {
	h := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestHTTPMiddleware_PassesThrough(t *testing.T) {
	h := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotNil(t, sentry.GetHubFromContext(r.Context()))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/generate", nil))

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestDropExpected(t *testing.T) {
	event := &sentry.Event{}

	validation := apperrors.NewValidationError("Please enter some ingredients.", "EMPTY_INGREDIENTS", "")
	assert.Nil(t, dropExpected(event, &sentry.EventHint{OriginalException: validation}))

	service := apperrors.NewServiceError("down", "X", nil)
	assert.Same(t, event, dropExpected(event, &sentry.EventHint{OriginalException: service}))

	assert.Same(t, event, dropExpected(event, &sentry.EventHint{OriginalException: errors.New("other")}))
	assert.Same(t, event, dropExpected(event, nil))
}
