package cmd

import (
	"context"
	"net"
	"net/http"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/isometry/payment-webhook/internal/config"
)

// HealthPath answers liveness probes.
const HealthPath = config.HealthPath

func cmdService() *cobra.Command {
	return &cobra.Command{
		Use:         "service",
		Aliases:     []string{"s", "serve", "standalone", "server"},
		Short:       "Serve the webhook over HTTP",
		Annotations: map[string]string{modeAnnotation: config.ModeService},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runService(cmd.Context())
		},
	}
}

func runService(ctx context.Context) error {
	logger.Info("Spawning...")
	c, err := setup(ctx, logger)
	if err != nil {
		return errors.Wrap(err, "failed to setup service")
	}
	c.limiter.Start(ctx)

	logger.Debug("Creating HTTP server...")
	s := &http.Server{
		Handler:      newServeMux(c),
		Addr:         net.JoinHostPort(config.Service.Addr, config.Service.Port),
		WriteTimeout: config.Service.Timeout,
		ReadTimeout:  config.Service.Timeout,
		IdleTimeout:  config.Service.Timeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Service.Timeout)
		defer cancel()
		logger.Info("Shutting down...")
		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	logger.Info("Serving...", "address", s.Addr, "path", config.Service.Path, "timeout", config.Service.Timeout.String())
	if err = s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newServeMux(c *components) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(config.Service.Path, c.runtime)
	if config.Service.Metrics {
		mux.Handle(config.Service.MetricsPath, promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))
	}
	mux.HandleFunc(HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("OK"))
	})
	return mux
}
