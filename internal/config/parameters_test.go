package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/isometry/payment-webhook/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetConfig(t *testing.T) {
	t.Helper()
	require.NoError(t, config.LoadFromFile(writeConfig(t, "{}")))
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSetDefaults(t *testing.T) {
	resetConfig(t)
	require.NoError(t, config.SetDefaults())

	assert.Equal(t, config.ModeService, config.Global.Mode)
	assert.Equal(t, "verif-hash", config.Webhook.SignatureHeader)
	assert.Equal(t, config.SecretSourceEnv, config.Webhook.SecretSource)
	assert.Equal(t, config.StrategyFixedWindow, config.RateLimit.Strategy)
	assert.Equal(t, 100, config.RateLimit.MaxRequests)
	assert.Equal(t, time.Minute, config.RateLimit.Window)
	assert.Equal(t, "x-forwarded-for", config.RateLimit.ClientKeyHeader)
	assert.Equal(t, config.BackendSupabase, config.Store.Backend)
	assert.Equal(t, "transactions", config.Store.Table)
	assert.Equal(t, "8000", config.Service.Port)
	assert.Equal(t, "/", config.Service.Path)
	assert.Equal(t, int64(1<<20), config.Service.MaxBodyBytes)
	assert.Equal(t, "api-gateway-v2", config.Lambda.PayloadType)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
global:
  mode: lambda
webhook:
  secretSource: ssm
  secretKey: /payments/flw-secret-hash
rateLimit:
  maxRequests: 5
  window: 10s
store:
  backend: dynamodb
  table: payments
archive:
  enabled: true
  bucketName: webhook-archive
`)
	require.NoError(t, config.LoadFromFile(path))
	require.NoError(t, config.SetDefaults())
	t.Cleanup(func() { resetConfig(t) })

	assert.Equal(t, config.ModeLambda, config.Global.Mode)
	assert.Equal(t, config.SecretSourceSSM, config.Webhook.SecretSource)
	assert.Equal(t, "/payments/flw-secret-hash", config.Webhook.SecretKey)
	assert.Equal(t, "verif-hash", config.Webhook.SignatureHeader)
	assert.Equal(t, 5, config.RateLimit.MaxRequests)
	assert.Equal(t, 10*time.Second, config.RateLimit.Window)
	assert.Equal(t, config.BackendDynamoDB, config.Store.Backend)
	assert.Equal(t, "payments", config.Store.Table)
	assert.True(t, config.Archive.Enabled)
	assert.Equal(t, "webhook-archive", config.Archive.BucketName)
	assert.NoError(t, config.Validate())
}

func TestLoadFromFile_Errors(t *testing.T) {
	testCases := []struct {
		Name        string
		Path        func(t *testing.T) string
		ExpectError bool
	}{
		{
			Name:        "missing_file_is_ignored",
			Path:        func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.yaml") },
			ExpectError: false,
		},
		{
			Name:        "empty_path_is_ignored",
			Path:        func(*testing.T) string { return "" },
			ExpectError: false,
		},
		{
			Name:        "directory",
			Path:        func(t *testing.T) string { return t.TempDir() },
			ExpectError: true,
		},
		{
			Name:        "invalid_yaml",
			Path:        func(t *testing.T) string { return writeConfig(t, "global: [") },
			ExpectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			err := config.LoadFromFile(tc.Path(t))
			assert.Equal(t, tc.ExpectError, err != nil, "error: %v", err)
		})
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		Name        string
		Mutate      func()
		ExpectError bool
	}{
		{
			Name:   "defaults_with_store_url",
			Mutate: func() { config.Store.URL = "https://project.supabase.co" },
		},
		{
			Name:        "supabase_without_url",
			Mutate:      func() {},
			ExpectError: true,
		},
		{
			Name:   "memory_backend",
			Mutate: func() { config.Store.Backend = config.BackendMemory },
		},
		{
			Name: "invalid_mode",
			Mutate: func() {
				config.Store.Backend = config.BackendMemory
				config.Global.Mode = "daemon"
			},
			ExpectError: true,
		},
		{
			Name: "ssm_without_key",
			Mutate: func() {
				config.Store.Backend = config.BackendMemory
				config.Webhook.SecretSource = config.SecretSourceSSM
			},
			ExpectError: true,
		},
		{
			Name: "unknown_strategy",
			Mutate: func() {
				config.Store.Backend = config.BackendMemory
				config.RateLimit.Strategy = "sliding-log"
			},
			ExpectError: true,
		},
		{
			Name: "non_positive_limit",
			Mutate: func() {
				config.Store.Backend = config.BackendMemory
				config.RateLimit.MaxRequests = -1
			},
			ExpectError: true,
		},
		{
			Name: "webhook_on_health_path",
			Mutate: func() {
				config.Store.Backend = config.BackendMemory
				config.Service.Path = config.HealthPath
			},
			ExpectError: true,
		},
		{
			Name: "webhook_on_metrics_path",
			Mutate: func() {
				config.Store.Backend = config.BackendMemory
				config.Service.Path = "/metrics"
			},
			ExpectError: true,
		},
		{
			Name: "metrics_on_health_path",
			Mutate: func() {
				config.Store.Backend = config.BackendMemory
				config.Service.MetricsPath = config.HealthPath
			},
			ExpectError: true,
		},
		{
			Name: "webhook_on_metrics_path_with_metrics_disabled",
			Mutate: func() {
				config.Store.Backend = config.BackendMemory
				config.Service.Path = "/metrics"
				config.Service.Metrics = false
			},
		},
		{
			Name: "route_collision_ignored_in_lambda_mode",
			Mutate: func() {
				config.Store.Backend = config.BackendMemory
				config.Global.Mode = config.ModeLambda
				config.Service.Path = config.HealthPath
			},
		},
		{
			Name: "archive_without_bucket",
			Mutate: func() {
				config.Store.Backend = config.BackendMemory
				config.Archive.Enabled = true
			},
			ExpectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			resetConfig(t)
			require.NoError(t, config.SetDefaults())
			tc.Mutate()
			err := config.Validate()
			assert.Equal(t, tc.ExpectError, err != nil, "error: %v", err)
		})
	}
	resetConfig(t)
}
