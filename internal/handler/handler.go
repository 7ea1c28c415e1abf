// Package handler turns a transport-neutral request into exactly one webhook response.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/isometry/payment-webhook/internal/handler/processor"
	"github.com/isometry/payment-webhook/internal/helpers"
	"github.com/isometry/payment-webhook/internal/ingest"
	"github.com/isometry/payment-webhook/internal/metrics"
	"github.com/isometry/payment-webhook/internal/models"
	"github.com/isometry/payment-webhook/internal/ratelimit"
	"github.com/isometry/payment-webhook/internal/store"
	"github.com/isometry/payment-webhook/internal/validation"
)

const (
	// DefaultSignatureHeader carries the provider's HMAC-SHA256 signature.
	DefaultSignatureHeader = "verif-hash"
	// DefaultClientKeyHeader carries the forwarded client address chain.
	DefaultClientKeyHeader = "x-forwarded-for"
	// RequestIDHeader is set on every response.
	RequestIDHeader = "X-Request-Id"
)

// Option is a function that configures a Handler.
type Option func(*Handler)

// Handler runs the webhook pipeline: method gate, rate limit, body read, signature check, parse and upsert.
// Every failure, including a panic, ends as a fixed-body response; causes are only logged.
type Handler struct {
	logger       *slog.Logger
	now          func() time.Time
	newRequestID func() string
	metrics      *metrics.Metrics

	limiter         ratelimit.Limiter
	clientKeyHeader string
	secret          *validation.WebhookSecret
	signatureHeader string
	maxBodyBytes    int64
	store           store.TransactionStore

	archiver      processor.Archiver
	archiveBucket string

	processors     []processor.Processor
	postProcessors []processor.Processor
}

// NewWebhookHandler builds a Handler. A store and a rate limiter are required; the limiter's
// reset loop is started by whoever owns its lifetime.
func NewWebhookHandler(opts ...Option) (*Handler, error) {
	_inst := &Handler{
		logger:          helpers.NewNoopLogger(),
		now:             time.Now,
		newRequestID:    uuid.NewString,
		clientKeyHeader: DefaultClientKeyHeader,
		signatureHeader: DefaultSignatureHeader,
	}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.store == nil {
		return nil, &MissingDependencyError{Name: "transaction store"}
	}
	if _inst.limiter == nil {
		return nil, &MissingDependencyError{Name: "rate limiter"}
	}
	if !_inst.secret.IsSet() {
		_inst.logger.Warn("no webhook secret configured, every request will be rejected")
	}

	_inst.processors = []processor.Processor{
		processor.NewMethodGateProcessor(nil),
		processor.NewRateLimiterProcessor(_inst.limiter, _inst.clientKeyHeader, _inst.metrics),
		processor.NewBodyReaderProcessor(_inst.maxBodyBytes),
		processor.NewSignatureValidatorProcessor(_inst.secret, _inst.signatureHeader),
		processor.NewPayloadParserProcessor(),
		processor.NewStoreUpserterProcessor(_inst.store, _inst.metrics, _inst.now),
	}
	if _inst.archiver != nil {
		_inst.postProcessors = append(_inst.postProcessors,
			processor.NewArchiverPostProcessor(_inst.archiver, _inst.archiveBucket, _inst.metrics))
	}
	return _inst, nil
}

// Process handles one request and returns its response. It never panics.
func (h *Handler) Process(ctx context.Context, req models.Request) (response models.Response) {
	bus := ingest.NewBus(h.newRequestID(), req, h.now())

	defer func() {
		if r := recover(); r != nil {
			h.metrics.PanicRecovered()
			h.logger.Error("recovered from panic",
				slog.Any("request", bus),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			response = h.respond(bus, &ingest.InternalError{Cause: fmt.Errorf("panic: %v", r)})
		}
	}()

	err := processor.Process(ctx, h.logger, bus, h.processors...)
	if err == nil {
		// post-processors are best effort
		if pErr := processor.Process(ctx, h.logger, bus, h.postProcessors...); pErr != nil {
			h.logger.Warn("post-processing failed", slog.Any("request", bus), slog.Any("error", pErr))
		}
	}
	return h.respond(bus, err)
}

func (h *Handler) respond(bus *ingest.Bus, err error) models.Response {
	status, body := ingest.StatusFor(err)
	logger := h.logger.With(slog.Any("request", bus), slog.Int("status", status))
	switch {
	case err == nil:
		logger.Info("request processed")
	case status >= 500:
		logger.Error("request failed", slog.Any("error", err))
	default:
		logger.Debug("request rejected", slog.Any("error", err))
	}
	h.metrics.ObserveResponse(status)
	bus.Stage = ingest.Responded
	bus.Response = models.Response{
		Body:       body,
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":  "text/plain; charset=utf-8",
			RequestIDHeader: bus.RequestID,
		},
	}
	return bus.Response
}
