package cmd

import (
	"time"

	"github.com/isometry/payment-webhook/internal/config"
	"github.com/isometry/payment-webhook/internal/helpers"
)

var envMapString = map[*string]boundEnvVar[string]{
	&config.Global.Mode: {
		Name:        "mode",
		Description: "The application runtime mode. Possible values are 'lambda' and 'service'",
		Short:       helpers.Ptr("m"),
	},
	&config.Webhook.SignatureHeader: {
		Name:        "webhook-signature-header",
		Description: "The request header carrying the HMAC-SHA256 signature of the body",
	},
	&config.Webhook.Secret: {
		Name:        "webhook-secret",
		Description: "The shared secret used to verify webhook signatures. Without it every request is rejected",
		Env:         helpers.Ptr("FLUTTERWAVE_SECRET_HASH"),
	},
	&config.Webhook.SecretSource: {
		Name:        "webhook-secret-source",
		Description: "Where the webhook secret is loaded from. Supported values are 'env', 'ssm' and 'secretsmanager'",
	},
	&config.Webhook.SecretKey: {
		Name:        "webhook-secret-key",
		Description: "The SSM parameter or Secrets Manager secret holding the webhook secret",
	},
	&config.RateLimit.Strategy: {
		Name:        "ratelimit-strategy",
		Description: "The rate limiting strategy. Supported values are 'fixed-window' and 'token-bucket'",
	},
	&config.RateLimit.ClientKeyHeader: {
		Name:        "ratelimit-client-key-header",
		Description: "The forwarded-address header whose first entry identifies the client",
	},
	&config.Store.Backend: {
		Name:        "store-backend",
		Description: "The transaction store. Supported values are 'supabase', 'postgres', 'dynamodb' and 'memory'",
		Short:       helpers.Ptr("s"),
	},
	&config.Store.Table: {
		Name:        "store-table",
		Description: "The table transactions are upserted into",
	},
	&config.Store.URL: {
		Name:        "store-url",
		Description: "The Supabase project URL or the Postgres DSN",
		Env:         helpers.Ptr("SUPABASE_URL"),
	},
	&config.Store.Key: {
		Name:        "store-key",
		Description: "The Supabase API key",
		Env:         helpers.Ptr("SUPABASE_ANON_KEY"),
	},
	&config.Archive.BucketName: {
		Name:        "archive-bucket-name",
		Description: "The S3 bucket verified payloads are archived to",
		Env:         helpers.Ptr("S3_BUCKET_NAME"),
	},
	&config.AWS.Endpoint: {
		Name:        "aws-endpoint",
		Description: "Override the endpoint of every AWS client, e.g. for LocalStack",
		Env:         helpers.Ptr("AWS_ENDPOINT_URL"),
	},
}

var envMapBool = map[*bool]boundEnvVar[bool]{
	&config.Global.Logging.CallerTrace: {
		Name:        "verbosity-caller-trace",
		Description: "Enable caller trace in logs",
		Short:       helpers.Ptr("V"),
	},
	&config.Archive.Enabled: {
		Name:        "archive",
		Description: "Archive every stored payload to S3",
	},
}

var envMapInt = map[*int]boundEnvVar[int]{
	&config.Global.Logging.Verbosity: {
		Name:        "verbosity",
		Description: "Increase logger verbosity (default WarnLevel)",
		Short:       helpers.Ptr("v"),
		Count:       true,
	},
	&config.RateLimit.MaxRequests: {
		Name:        "ratelimit-max-requests",
		Description: "The number of requests a client may send per window",
	},
}

var envMapDuration = map[*time.Duration]boundEnvVar[time.Duration]{
	&config.RateLimit.Window: {
		Name:        "ratelimit-window",
		Description: "The rate limiting window",
	},
}
