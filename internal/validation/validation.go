// Package validation provides functionality for validating webhook signatures to verify request authenticity.
package validation

import (
	"errors"
	"strings"

	"github.com/google/go-github/v84/github"
)

// SignaturePrefix is the optional algorithm prefix of a signature header value.
const SignaturePrefix = "sha256="

var (
	// ErrMissingSecret is returned when no shared secret is configured.
	ErrMissingSecret = errors.New("missing webhook secret")
	// ErrMissingSignature is returned when the request carries no signature.
	ErrMissingSignature = errors.New("missing HMAC-SHA256 signature")
)

// WebhookSecret represents a secret used to validate webhook signatures for verifying request authenticity.
type WebhookSecret string

// NewWebhookSecret creates a new WebhookSecret instance from the provided secret string and returns its address.
func NewWebhookSecret(secret string) *WebhookSecret {
	s := WebhookSecret(secret)
	return &s
}

// IsSet reports whether a non-empty secret is configured.
func (s *WebhookSecret) IsSet() bool {
	return s != nil && *s != ""
}

// ValidateSignature checks that signature is the hex-encoded HMAC-SHA256 of body under the secret.
// The signature may carry a leading "sha256=" prefix. The digest comparison is constant-time.
// The returned error describes the failure for operators only.
func (s *WebhookSecret) ValidateSignature(signature string, body []byte) error {
	if !s.IsSet() {
		return ErrMissingSecret
	}
	if signature == "" {
		return ErrMissingSignature
	}
	return github.ValidateSignature(SignaturePrefix+strings.TrimPrefix(signature, SignaturePrefix), body, []byte(*s))
}

// Verify reports whether signature authenticates body under secret. It fails closed on an empty secret.
func Verify(signature string, body []byte, secret string) bool {
	return NewWebhookSecret(secret).ValidateSignature(signature, body) == nil
}
