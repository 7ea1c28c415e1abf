// Package models provides the core data structures for handling webhook requests and responses.
package models

import (
	"io"
	"strings"
)

// Request represents an incoming client request, independent of the transport that delivered it.
// Header keys are lower-cased.
type Request struct {
	Method     string
	Headers    map[string]string
	Body       io.Reader
	RemoteAddr string
}

// Header returns the value of the named header, matching case-insensitively.
func (r Request) Header(name string) (string, bool) {
	v, found := r.Headers[strings.ToLower(name)]
	return v, found
}

// Response defines the structure for an HTTP response containing a body, headers, and a status code.
type Response struct {
	Body       string
	Headers    map[string]string
	StatusCode int
}
