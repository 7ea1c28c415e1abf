// Package aws provides the Controller struct that wraps the AWS services used by the webhook:
// S3 for payload archiving, SSM and Secrets Manager for the shared secret, and DynamoDB for storage.
package aws

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/smithy-go/logging"
	"github.com/pkg/errors"

	"github.com/isometry/payment-webhook/internal/helpers"
)

// Controller holds one client per AWS service, all built from a single configuration.
type Controller struct {
	logger   *slog.Logger
	config   *aws.Config
	endpoint string
	now      func() time.Time

	s3Client             *s3.Client
	ssmClient            *ssm.Client
	secretsManagerClient *secretsmanager.Client
	dynamoDBClient       *dynamodb.Client
}

// Option defines a function type used to configure an instance of the Controller struct.
type Option func(*Controller)

// NewController initializes a Controller. Without WithConfig the default AWS configuration chain is loaded.
func NewController(ctx context.Context, opts ...Option) (*Controller, error) {
	_inst := &Controller{}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	_inst.logger = _inst.logger.With("controller", "aws")
	if _inst.now == nil {
		_inst.now = time.Now
	}
	if _inst.config == nil {
		_inst.logger.Debug("loading default AWS configuration...")
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load AWS configuration")
		}
		_inst.config = &cfg
	}
	cfg := _inst.config.Copy()
	cfg.Logger = newAWSLogger(_inst.logger)
	if _inst.endpoint != "" {
		_inst.logger.Debug("overriding AWS endpoint", slog.String("endpoint", _inst.endpoint))
		cfg.BaseEndpoint = aws.String(_inst.endpoint)
	}

	_inst.s3Client = s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = _inst.endpoint != ""
	})
	_inst.ssmClient = ssm.NewFromConfig(cfg)
	_inst.secretsManagerClient = secretsmanager.NewFromConfig(cfg)
	_inst.dynamoDBClient = dynamodb.NewFromConfig(cfg)
	return _inst, nil
}

// GetSecret retrieves a value from the SSM Parameter Store. If encrypted is true, the value is returned decrypted.
func (a *Controller) GetSecret(ctx context.Context, key string, encrypted bool) (string, error) {
	a.logger.With("key", key).Debug("fetching SSM parameter...")
	ssmResponse, err := a.ssmClient.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(key),
		WithDecryption: aws.Bool(encrypted),
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to load SSM parameter")
	}
	if ssmResponse.Parameter == nil || ssmResponse.Parameter.Value == nil {
		return "", errors.Errorf("SSM parameter %s has no value", key)
	}
	return *ssmResponse.Parameter.Value, nil
}

// GetSecretValue retrieves the string value of a Secrets Manager secret.
func (a *Controller) GetSecretValue(ctx context.Context, name string) (string, error) {
	a.logger.With("name", name).Debug("fetching Secrets Manager secret...")
	out, err := a.secretsManagerClient.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to load Secrets Manager secret")
	}
	if out.SecretString == nil {
		return "", errors.Errorf("secret %s has no string value", name)
	}
	return *out.SecretString, nil
}

// PutS3Object uploads a JSON document to bucket under the key "<RFC3339Nano UTC>.<id>.json" and returns the key.
func (a *Controller) PutS3Object(ctx context.Context, id, bucket string, body []byte) (string, error) {
	if bucket == "" {
		return "", errors.New("bucket name is empty")
	}
	key := fmt.Sprintf("%s.%s.json", a.now().UTC().Format(time.RFC3339Nano), id)
	_, err := a.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to put object to S3")
	}
	return key, nil
}

// DynamoDB returns the DynamoDB client.
func (a *Controller) DynamoDB() *dynamodb.Client {
	return a.dynamoDBClient
}

type awsLogger struct {
	logger *slog.Logger
}

func newAWSLogger(logger *slog.Logger) *awsLogger {
	return &awsLogger{logger}
}

// Logf implements logging.Logger. SDK warnings are kept at warn level, everything else is debug.
func (a *awsLogger) Logf(classification logging.Classification, format string, args ...any) {
	level := slog.LevelDebug
	if classification == logging.Warn {
		level = slog.LevelWarn
	}
	a.logger.Log(context.Background(), level, fmt.Sprintf(format, args...), slog.String("classification", string(classification)))
}
