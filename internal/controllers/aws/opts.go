package aws

import (
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// WithLogger sets a custom slog.Logger instance for the Controller struct to use for logging operations.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Controller) {
		a.logger = logger
	}
}

// WithConfig uses cfg instead of the default AWS configuration chain.
func WithConfig(cfg aws.Config) Option {
	return func(a *Controller) {
		a.config = &cfg
	}
}

// WithEndpoint points every client at a custom endpoint, e.g. LocalStack. S3 switches to path-style addressing.
func WithEndpoint(endpoint string) Option {
	return func(a *Controller) {
		a.endpoint = endpoint
	}
}

// WithClock sets the time source used to name archived objects.
func WithClock(now func() time.Time) Option {
	return func(a *Controller) {
		a.now = now
	}
}
