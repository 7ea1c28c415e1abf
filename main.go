// Package main provides the entrypoint for payment-webhook.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/isometry/payment-webhook/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.New().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
