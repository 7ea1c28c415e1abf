package helpers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/isometry/payment-webhook/internal/helpers"
	"github.com/isometry/payment-webhook/internal/models"
	"github.com/stretchr/testify/assert"
)

type testCase struct {
	Name     string
	Response models.Response
	Expected expectedResponse
}

type expectedResponse struct {
	StatusCode int
	Body       string
	Header     string
}

func TestRespondHTTP(t *testing.T) {
	testCases := []testCase{
		{
			Name: "with_valid_response",
			Response: models.Response{
				StatusCode: http.StatusOK,
				Body:       "OK",
			},
			Expected: expectedResponse{
				StatusCode: http.StatusOK,
				Body:       "OK",
				Header:     "text/plain; charset=utf-8",
			},
		},
		{
			Name: "with_custom_content_type",
			Response: models.Response{
				StatusCode: http.StatusInternalServerError,
				Body:       "Server error",
				Headers:    map[string]string{"Content-Type": "application/json"},
			},
			Expected: expectedResponse{
				StatusCode: http.StatusInternalServerError,
				Body:       "Server error",
				Header:     "application/json",
			},
		},
		{
			Name:     "with_empty_response",
			Response: models.Response{},
			Expected: expectedResponse{
				StatusCode: http.StatusOK,
				Body:       "",
				Header:     "text/plain; charset=utf-8",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			rw := httptest.NewRecorder()

			helpers.RespondHTTP(tc.Response, rw)

			assert.Equal(t, tc.Expected.StatusCode, rw.Code)
			assert.Equal(t, tc.Expected.Header, rw.Header().Get("Content-Type"))
			assert.Equal(t, tc.Expected.Body, rw.Body.String())
		})
	}
}

func TestLowerHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Verif-Hash", "abc")
	h.Add("X-Forwarded-For", "203.0.113.7")
	h.Add("X-Forwarded-For", "10.0.0.1")
	h["Empty"] = nil

	headers := helpers.LowerHeaders(h)

	assert.Equal(t, map[string]string{
		"verif-hash":      "abc",
		"x-forwarded-for": "203.0.113.7",
	}, headers)
}

func TestLowerKeys(t *testing.T) {
	headers := helpers.LowerKeys(map[string]string{
		"Verif-Hash":      "ABCdef",
		"X-FORWARDED-FOR": "203.0.113.7",
	})

	assert.Equal(t, map[string]string{
		"verif-hash":      "ABCdef",
		"x-forwarded-for": "203.0.113.7",
	}, headers)
	assert.Empty(t, helpers.LowerKeys(nil))
}
