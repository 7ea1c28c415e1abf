package cmd

import (
	"context"
	"slices"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/isometry/payment-webhook/internal/config"
	"github.com/isometry/payment-webhook/internal/runtime"
)

func cmdLambda() *cobra.Command {
	return &cobra.Command{
		Use:         "lambda",
		Short:       "Serve the webhook as an AWS Lambda function",
		Annotations: map[string]string{modeAnnotation: config.ModeLambda},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLambda(cmd.Context())
		},
	}
}

func runLambda(ctx context.Context) error {
	if !slices.Contains(runtime.PayloadTypes, config.Lambda.PayloadType) {
		return errors.Errorf("unsupported lambda payload type: %s", config.Lambda.PayloadType)
	}
	c, err := setup(ctx, logger)
	if err != nil {
		return errors.Wrap(err, "failed to setup lambda")
	}
	// Counts are per execution environment; each warm instance limits independently.
	c.limiter.Start(ctx)

	logger.Info("lambda starting...", "payloadType", config.Lambda.PayloadType)
	lambda.StartWithOptions(c.runtime.HandleEvent, lambda.WithContext(ctx))
	return nil
}
