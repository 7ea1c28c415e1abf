package helpers

import (
	"io"
	"net/http"
	"strings"

	"github.com/isometry/payment-webhook/internal/models"
)

// RespondHTTP writes the response to rw as plain text. A zero status code is sent as 200.
func RespondHTTP(response models.Response, rw http.ResponseWriter) {
	for k, v := range response.Headers {
		rw.Header().Set(k, v)
	}
	if rw.Header().Get("Content-Type") == "" {
		rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	statusCode := response.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	rw.WriteHeader(statusCode)
	_, _ = io.WriteString(rw, response.Body)
}

// LowerHeaders flattens h into a map keyed by lower-cased header names, keeping the first value of each.
func LowerHeaders(h http.Header) map[string]string {
	headers := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) == 0 {
			continue
		}
		headers[strings.ToLower(k)] = v[0]
	}
	return headers
}

// LowerKeys returns a copy of headers keyed by lower-cased header names.
func LowerKeys(headers map[string]string) map[string]string {
	lowered := make(map[string]string, len(headers))
	for k, v := range headers {
		lowered[strings.ToLower(k)] = v
	}
	return lowered
}
