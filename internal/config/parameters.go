// Package config provides a centralized entrypoint for the application parameters.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/creasty/defaults"
	"go.yaml.in/yaml/v3"
)

const (
	// ModeService runs the webhook behind a standalone HTTP server.
	ModeService = "service"
	// ModeLambda runs the webhook as an AWS Lambda function.
	ModeLambda = "lambda"
)

const (
	// SecretSourceEnv uses Webhook.Secret as-is.
	SecretSourceEnv = "env"
	// SecretSourceSSM reads the secret from an SSM parameter named by Webhook.SecretKey.
	SecretSourceSSM = "ssm"
	// SecretSourceSecretsManager reads the secret from a Secrets Manager secret named by Webhook.SecretKey.
	SecretSourceSecretsManager = "secretsmanager"
)

const (
	// StrategyFixedWindow clears every client count at once when the window elapses.
	StrategyFixedWindow = "fixed-window"
	// StrategyTokenBucket refills each client continuously at MaxRequests per Window.
	StrategyTokenBucket = "token-bucket"
)

const (
	// BackendSupabase stores transactions through the Supabase PostgREST API.
	BackendSupabase = "supabase"
	// BackendDynamoDB stores transactions in a DynamoDB table.
	BackendDynamoDB = "dynamodb"
	// BackendPostgres stores transactions in a PostgreSQL table.
	BackendPostgres = "postgres"
	// BackendMemory keeps transactions in process memory.
	BackendMemory = "memory"
)

// HealthPath is the liveness route served next to the webhook in service mode.
const HealthPath = "/healthz"

var (
	// Global is a struct that contains the global configuration.
	Global global
	// Webhook is a struct that contains the configuration for signature verification.
	Webhook webhook
	// RateLimit is a struct that contains the configuration for client throttling.
	RateLimit rateLimit
	// Store is a struct that contains the configuration for the transaction store.
	Store store
	// Archive is a struct that contains the configuration for raw payload archiving.
	Archive archive
	// AWS is a struct that contains the configuration shared by the AWS clients.
	AWS aws
	// Service is a struct that contains the configuration for the service mode.
	Service service
	// Lambda is a struct that contains the configuration for the lambda mode.
	Lambda lambda
)

type global struct {
	// Mode is the runtime mode of the application.
	Mode string `yaml:"mode,omitempty" default:"service"`
	// Logging is a struct that contains the logging configuration.
	Logging struct {
		// Verbosity is the verbosity level of the application. It represents slog levels.
		Verbosity int `yaml:"verbosity,omitempty"`
		// CallerTrace is a flag that enables the caller trace in the logger.
		CallerTrace bool `yaml:"callerTrace,omitempty"`
	} `yaml:"logging,omitempty"`
}

type webhook struct {
	// SignatureHeader is the request header carrying the provider signature.
	SignatureHeader string `yaml:"signatureHeader,omitempty" default:"verif-hash"`
	// Secret is the shared HMAC secret when SecretSource is "env".
	Secret string `yaml:"secret,omitempty"`
	// SecretSource selects where the shared secret is loaded from.
	SecretSource string `yaml:"secretSource,omitempty" default:"env"`
	// SecretKey names the SSM parameter or Secrets Manager secret holding the shared secret.
	SecretKey string `yaml:"secretKey,omitempty"`
}

type rateLimit struct {
	Strategy    string        `yaml:"strategy,omitempty" default:"fixed-window"`
	MaxRequests int           `yaml:"maxRequests,omitempty" default:"100"`
	Window      time.Duration `yaml:"window,omitempty" default:"60s"`
	// ClientKeyHeader is the forwarded-address header used to group requests.
	ClientKeyHeader string `yaml:"clientKeyHeader,omitempty" default:"x-forwarded-for"`
}

type store struct {
	Backend string `yaml:"backend,omitempty" default:"supabase"`
	Table   string `yaml:"table,omitempty" default:"transactions"`
	// URL is the Supabase project URL, the Postgres DSN or the DynamoDB endpoint override.
	URL string `yaml:"url,omitempty"`
	// Key is the Supabase API key.
	Key string `yaml:"key,omitempty"`
}

type archive struct {
	Enabled    bool   `yaml:"enabled,omitempty"`
	BucketName string `yaml:"bucketName,omitempty"`
}

type aws struct {
	// Endpoint overrides the endpoint of every AWS client, e.g. for LocalStack.
	Endpoint string `yaml:"endpoint,omitempty"`
}

type service struct {
	Path         string        `yaml:"path,omitempty" default:"/"`
	Addr         string        `yaml:"addr,omitempty"`
	Port         string        `yaml:"port,omitempty" default:"8000"`
	Timeout      time.Duration `yaml:"timeout,omitempty" default:"5s"`
	MaxBodyBytes int64         `yaml:"maxBodyBytes,omitempty" default:"1048576"`
	Metrics      bool          `yaml:"metrics,omitempty" default:"true"`
	MetricsPath  string        `yaml:"metricsPath,omitempty" default:"/metrics"`
}

type lambda struct {
	PayloadType string `yaml:"payloadType,omitempty" default:"api-gateway-v2"`
}

// SetDefaults sets the default values for the configuration.
func SetDefaults() error {
	return errors.Join(
		defaults.Set(&Global),
		defaults.Set(&Webhook),
		defaults.Set(&RateLimit),
		defaults.Set(&Store),
		defaults.Set(&Archive),
		defaults.Set(&AWS),
		defaults.Set(&Service),
		defaults.Set(&Lambda),
	)
}

// LoadFromFile loads the configuration from a file.
func LoadFromFile(path string) error {
	if len(path) == 0 {
		return nil
	}
	fstat, err := os.Stat(path)
	if err != nil {
		return nil //nolint:nilerr // If the file does not exist, we ignore it.
	}
	if fstat.IsDir() {
		return fmt.Errorf("configuration file %s is a directory", path)
	}
	if !fstat.Mode().IsRegular() {
		return fmt.Errorf("configuration file %s is not a regular file", path)
	}

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}
	type all struct {
		Global    global    `yaml:"global,omitempty"`
		Webhook   webhook   `yaml:"webhook,omitempty"`
		RateLimit rateLimit `yaml:"rateLimit,omitempty"`
		Store     store     `yaml:"store,omitempty"`
		Archive   archive   `yaml:"archive,omitempty"`
		AWS       aws       `yaml:"aws,omitempty"`
		Service   service   `yaml:"service,omitempty"`
		Lambda    lambda    `yaml:"lambda,omitempty"`
	}
	var a all
	if err = yaml.Unmarshal(content, &a); err != nil {
		return fmt.Errorf("failed to unmarshal configuration file %s: %w", path, err)
	}
	Global = a.Global
	Webhook = a.Webhook
	RateLimit = a.RateLimit
	Store = a.Store
	Archive = a.Archive
	AWS = a.AWS
	Service = a.Service
	Lambda = a.Lambda

	return nil
}

// Validate reports configuration values that cannot be served.
func Validate() error {
	var errs []error
	switch Global.Mode {
	case ModeService, ModeLambda:
	default:
		errs = append(errs, fmt.Errorf("invalid mode: %q", Global.Mode))
	}
	switch Webhook.SecretSource {
	case SecretSourceEnv:
	case SecretSourceSSM, SecretSourceSecretsManager:
		if Webhook.SecretKey == "" {
			errs = append(errs, fmt.Errorf("webhook secret source %q requires a secret key", Webhook.SecretSource))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid webhook secret source: %q", Webhook.SecretSource))
	}
	switch RateLimit.Strategy {
	case StrategyFixedWindow, StrategyTokenBucket:
	default:
		errs = append(errs, fmt.Errorf("invalid rate limit strategy: %q", RateLimit.Strategy))
	}
	if RateLimit.MaxRequests <= 0 {
		errs = append(errs, fmt.Errorf("rate limit max requests must be positive, got %d", RateLimit.MaxRequests))
	}
	if RateLimit.Window <= 0 {
		errs = append(errs, fmt.Errorf("rate limit window must be positive, got %s", RateLimit.Window))
	}
	switch Store.Backend {
	case BackendMemory, BackendDynamoDB:
	case BackendSupabase, BackendPostgres:
		if Store.URL == "" {
			errs = append(errs, fmt.Errorf("store backend %q requires a url", Store.Backend))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid store backend: %q", Store.Backend))
	}
	if Archive.Enabled && Archive.BucketName == "" {
		errs = append(errs, errors.New("archive requires a bucket name"))
	}
	if Global.Mode == ModeService {
		errs = append(errs, validateRoutes()...)
	}
	return errors.Join(errs...)
}

// validateRoutes reports service paths that would be registered twice on the same mux.
func validateRoutes() []error {
	var errs []error
	if Service.Path == HealthPath {
		errs = append(errs, fmt.Errorf("service path %q is reserved for health checks", HealthPath))
	}
	if Service.Metrics {
		switch Service.MetricsPath {
		case Service.Path:
			errs = append(errs, fmt.Errorf("service metrics path %q collides with the webhook path", Service.MetricsPath))
		case HealthPath:
			errs = append(errs, fmt.Errorf("service metrics path %q is reserved for health checks", HealthPath))
		}
	}
	return errs
}
