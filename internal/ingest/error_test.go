package ingest_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/isometry/payment-webhook/internal/ingest"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	testCases := []struct {
		Name         string
		Err          error
		ExpectedCode int
		ExpectedBody string
	}{
		{
			Name:         "success",
			ExpectedCode: http.StatusOK,
			ExpectedBody: "OK",
		},
		{
			Name:         "malformed_request",
			Err:          &ingest.MalformedRequestError{Method: http.MethodGet},
			ExpectedCode: http.StatusNotFound,
			ExpectedBody: "Not found",
		},
		{
			Name:         "admission_rejected",
			Err:          &ingest.AdmissionRejectedError{ClientKey: "203.0.113.7"},
			ExpectedCode: http.StatusTooManyRequests,
			ExpectedBody: "Too many requests",
		},
		{
			Name:         "authentication_failed",
			Err:          &ingest.AuthenticationFailedError{Cause: errors.New("missing signature")},
			ExpectedCode: http.StatusUnauthorized,
			ExpectedBody: "Invalid signature",
		},
		{
			Name:         "wrapped_authentication_failed",
			Err:          fmt.Errorf("stage: %w", &ingest.AuthenticationFailedError{}),
			ExpectedCode: http.StatusUnauthorized,
			ExpectedBody: "Invalid signature",
		},
		{
			Name:         "internal_error",
			Err:          ingest.NewInternalError("store unavailable: %s", "connection refused"),
			ExpectedCode: http.StatusInternalServerError,
			ExpectedBody: "Server error",
		},
		{
			Name:         "unknown_error",
			Err:          errors.New("boom"),
			ExpectedCode: http.StatusInternalServerError,
			ExpectedBody: "Server error",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			code, body := ingest.StatusFor(tc.Err)
			assert.Equal(t, tc.ExpectedCode, code)
			assert.Equal(t, tc.ExpectedBody, body)
			if tc.Err != nil {
				assert.NotContains(t, body, tc.Err.Error())
			}
		})
	}
}

func TestWrapInternalError(t *testing.T) {
	cause := errors.New("connection refused")

	err := ingest.WrapInternalError(cause, "failed to upsert transaction")

	var internal *ingest.InternalError
	assert.ErrorAs(t, err, &internal)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to upsert transaction: connection refused")
	assert.NoError(t, ingest.WrapInternalError(nil, "ignored"))
}
