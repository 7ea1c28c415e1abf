package ingest

import (
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

// Response bodies. They never carry error details.
const (
	BodyOK               = "OK"
	BodyInvalidSignature = "Invalid signature"
	BodyNotFound         = "Not found"
	BodyTooManyRequests  = "Too many requests"
	BodyServerError      = "Server error"
)

// MalformedRequestError is returned for requests that are not webhook deliveries, e.g. a non-POST method.
type MalformedRequestError struct {
	Method string
}

func (e *MalformedRequestError) Error() string {
	return fmt.Sprintf("unsupported method: %s", e.Method)
}

// AdmissionRejectedError is returned when a client exceeded its request allowance.
type AdmissionRejectedError struct {
	ClientKey string
}

func (e *AdmissionRejectedError) Error() string {
	return fmt.Sprintf("rate limit exceeded for client: %s", e.ClientKey)
}

// AuthenticationFailedError is returned when the signature is missing, malformed or does not match.
type AuthenticationFailedError struct {
	Cause error
}

func (e *AuthenticationFailedError) Error() string {
	return fmt.Sprintf("signature verification failed: %v", e.Cause)
}

func (e *AuthenticationFailedError) Unwrap() error {
	return e.Cause
}

// InternalError wraps any unexpected failure: body read, parse or store errors.
type InternalError struct {
	Cause error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: %v", e.Cause)
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

// NewInternalError formats a new InternalError.
func NewInternalError(format string, args ...any) error {
	return &InternalError{Cause: pkgerrors.Errorf(format, args...)}
}

// WrapInternalError wraps err with message as an InternalError. A nil err returns nil.
func WrapInternalError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &InternalError{Cause: pkgerrors.Wrap(err, message)}
}

// StatusFor maps err to the response sent to the client. Unknown errors are internal failures.
func StatusFor(err error) (int, string) {
	if err == nil {
		return http.StatusOK, BodyOK
	}
	var (
		malformed *MalformedRequestError
		rejected  *AdmissionRejectedError
		auth      *AuthenticationFailedError
	)
	switch {
	case errors.As(err, &malformed):
		return http.StatusNotFound, BodyNotFound
	case errors.As(err, &rejected):
		return http.StatusTooManyRequests, BodyTooManyRequests
	case errors.As(err, &auth):
		return http.StatusUnauthorized, BodyInvalidSignature
	default:
		return http.StatusInternalServerError, BodyServerError
	}
}
