package cmd

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/isometry/payment-webhook/internal/config"
	awsctl "github.com/isometry/payment-webhook/internal/controllers/aws"
	"github.com/isometry/payment-webhook/internal/handler"
	"github.com/isometry/payment-webhook/internal/metrics"
	"github.com/isometry/payment-webhook/internal/ratelimit"
	"github.com/isometry/payment-webhook/internal/runtime"
	"github.com/isometry/payment-webhook/internal/store"
)

// components is everything a mode needs to serve webhooks.
type components struct {
	runtime  *runtime.Runtime
	limiter  ratelimit.Limiter
	registry *prometheus.Registry
}

// awsControllerFactory is replaced in tests.
var awsControllerFactory = func(ctx context.Context, log *slog.Logger) (*awsctl.Controller, error) {
	return awsctl.NewController(ctx,
		awsctl.WithLogger(log),
		awsctl.WithEndpoint(config.AWS.Endpoint))
}

func setup(ctx context.Context, log *slog.Logger) (*components, error) {
	// The AWS controller is only built when a component needs it.
	var ctl *awsctl.Controller
	lazyAWS := func() (*awsctl.Controller, error) {
		if ctl != nil {
			return ctl, nil
		}
		var err error
		ctl, err = awsControllerFactory(ctx, log.With("component", "aws"))
		return ctl, err
	}

	secret, err := resolveSecret(ctx, lazyAWS)
	if err != nil {
		return nil, err
	}

	log.Debug("creating transaction store...", slog.String("backend", config.Store.Backend))
	s, err := newStore(log.With("component", "store"), lazyAWS)
	if err != nil {
		return nil, err
	}

	limiter, err := newLimiter(log.With("component", "ratelimit"))
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	opts := []handler.Option{
		handler.WithLogger(log.With("component", "webhook-handler")),
		handler.WithMetrics(m),
		handler.WithStore(s),
		handler.WithRateLimiter(limiter, config.RateLimit.ClientKeyHeader),
		handler.WithWebhookSecret(secret),
		handler.WithSignatureHeader(config.Webhook.SignatureHeader),
		handler.WithMaxBodyBytes(config.Service.MaxBodyBytes),
	}
	if config.Archive.Enabled {
		archiver, err := lazyAWS()
		if err != nil {
			return nil, errors.Wrap(err, "failed to create AWS controller for archiving")
		}
		opts = append(opts, handler.WithArchiver(archiver, config.Archive.BucketName))
	}

	log.Debug("creating webhook handler...")
	hdl, err := handler.NewWebhookHandler(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create webhook handler")
	}

	log.Debug("creating runtime...")
	rt := runtime.NewRuntime(hdl,
		runtime.WithLogger(log.With("component", "runtime")),
		runtime.WithLambdaPayloadType(config.Lambda.PayloadType),
		runtime.WithMaxBodyBytes(config.Service.MaxBodyBytes))

	return &components{runtime: rt, limiter: limiter, registry: registry}, nil
}

func resolveSecret(ctx context.Context, lazyAWS func() (*awsctl.Controller, error)) (string, error) {
	switch config.Webhook.SecretSource {
	case config.SecretSourceEnv:
		return config.Webhook.Secret, nil
	case config.SecretSourceSSM:
		ctl, err := lazyAWS()
		if err != nil {
			return "", errors.Wrap(err, "failed to create AWS controller for the webhook secret")
		}
		return ctl.GetSecret(ctx, config.Webhook.SecretKey, true)
	case config.SecretSourceSecretsManager:
		ctl, err := lazyAWS()
		if err != nil {
			return "", errors.Wrap(err, "failed to create AWS controller for the webhook secret")
		}
		return ctl.GetSecretValue(ctx, config.Webhook.SecretKey)
	default:
		return "", errors.Errorf("unsupported webhook secret source: %s", config.Webhook.SecretSource)
	}
}

func newStore(log *slog.Logger, lazyAWS func() (*awsctl.Controller, error)) (store.TransactionStore, error) {
	switch config.Store.Backend {
	case config.BackendMemory:
		log.Warn("transactions are kept in memory and lost on exit")
		return store.NewMemory(), nil
	case config.BackendSupabase:
		return store.NewSupabase(config.Store.URL, config.Store.Key, config.Store.Table)
	case config.BackendPostgres:
		return store.OpenPostgres(config.Store.URL, config.Store.Table, log)
	case config.BackendDynamoDB:
		ctl, err := lazyAWS()
		if err != nil {
			return nil, errors.Wrap(err, "failed to create AWS controller for the dynamodb store")
		}
		return store.NewDynamoDB(ctl.DynamoDB(), config.Store.Table), nil
	default:
		return nil, errors.Errorf("unsupported store backend: %s", config.Store.Backend)
	}
}

func newLimiter(log *slog.Logger) (ratelimit.Limiter, error) {
	switch config.RateLimit.Strategy {
	case config.StrategyFixedWindow:
		return ratelimit.NewFixedWindow(config.RateLimit.MaxRequests, config.RateLimit.Window, ratelimit.WithLogger(log)), nil
	case config.StrategyTokenBucket:
		return ratelimit.NewTokenBucket(config.RateLimit.MaxRequests, config.RateLimit.Window, ratelimit.WithLogger(log)), nil
	default:
		return nil, errors.Errorf("unsupported rate limit strategy: %s", config.RateLimit.Strategy)
	}
}
