package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTTPError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"bad request", NewBadRequestError("x"), http.StatusBadRequest},
		{"validation", NewValidationError("startTime", "in the future"), http.StatusBadRequest},
		{"not found", NewNotFoundError("transaction", "abc"), http.StatusNotFound},
		{"authentication", NewAuthenticationError("signature mismatch"), http.StatusUnauthorized},
		{"configuration", NewConfigurationError("missing secret"), http.StatusInternalServerError},
		{"invalid transition", NewInvalidTransitionError("abc", "paid", "pending"), http.StatusConflict},
		{"duplicate", NewTransactionDuplicateError(), http.StatusUnprocessableEntity},
		{"too large", NewPayloadTooLargeError(1 << 20), http.StatusRequestEntityTooLarge},
		{"upstream", &UpstreamError{Op: "deposit-records", StatusCode: 503}, http.StatusBadGateway},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("load: %w", NewNotFoundError("transaction", "abc")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, ToHTTPError(tt.err).Code)
		})
	}
}

func TestHandleHTTPError_DoesNotLeakInternals(t *testing.T) {
	rr := httptest.NewRecorder()
	HandleHTTPError(rr, NewConfigurationError("PAYSTACK_SECRET_KEY is empty"))

	var body HTTPError
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Internal server error", body.Message)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestUpstreamError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("dial tcp: timeout")
	err := fmt.Errorf("fetch: %w", &UpstreamError{Op: "deposit-records", Retryable: true, Err: cause})

	var upstream *UpstreamError
	require.True(t, As(err, &upstream))
	assert.True(t, upstream.Retryable)
	assert.True(t, Is(err, cause))
	assert.Contains(t, err.Error(), "deposit-records")
}
