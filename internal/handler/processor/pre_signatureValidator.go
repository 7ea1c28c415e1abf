package processor

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/isometry/payment-webhook/internal/helpers"
	"github.com/isometry/payment-webhook/internal/ingest"
	"github.com/isometry/payment-webhook/internal/validation"
)

type signatureValidatorProcessor struct {
	secret          *validation.WebhookSecret
	signatureHeader string
	missingSecret   *rate.Sometimes
}

// NewSignatureValidatorProcessor verifies the HMAC-SHA256 signature carried in signatureHeader against the raw body.
// Without a secret every request fails verification.
func NewSignatureValidatorProcessor(secret *validation.WebhookSecret, signatureHeader string) Processor {
	return &signatureValidatorProcessor{
		secret:          secret,
		signatureHeader: signatureHeader,
		missingSecret:   helpers.EveryMinute(),
	}
}

func (p *signatureValidatorProcessor) Process(_ context.Context, logger *slog.Logger, bus *ingest.Bus) error {
	logger = logger.With("processor", "signature-validator")
	signature, _ := bus.Request.Header(p.signatureHeader)
	if err := p.secret.ValidateSignature(signature, bus.Body); err != nil {
		if errors.Is(err, validation.ErrMissingSecret) {
			p.missingSecret.Do(func() {
				logger.Error("webhook secret is not configured, rejecting every request")
			})
		} else {
			logger.Warn("invalid signature", slog.Any("error", err), slog.String("signature", helpers.Truncate(signature, 16)))
		}
		return &ingest.AuthenticationFailedError{Cause: err}
	}
	bus.Stage = ingest.SignatureVerified
	return nil
}
