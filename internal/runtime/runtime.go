// Package runtime adapts the webhook handler to its transports: a plain HTTP server and AWS Lambda.
package runtime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/isometry/payment-webhook/internal/helpers"
	"github.com/isometry/payment-webhook/internal/models"
)

// Lambda payload types.
const (
	PayloadTypeAPIGatewayV1 = "api-gateway-v1"
	PayloadTypeAPIGatewayV2 = "api-gateway-v2"
	PayloadTypeLambdaURL    = "lambda-url"
)

// PayloadTypes lists the supported Lambda payload types.
var PayloadTypes = []string{PayloadTypeAPIGatewayV1, PayloadTypeAPIGatewayV2, PayloadTypeLambdaURL}

// Processor turns a request into its response.
type Processor interface {
	Process(ctx context.Context, req models.Request) models.Response
}

type Option func(*Runtime)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithLambdaPayloadType sets the event format HandleEvent expects.
func WithLambdaPayloadType(payloadType string) Option {
	return func(r *Runtime) {
		r.payloadType = payloadType
	}
}

// WithMaxBodyBytes bounds HTTP request bodies. Zero means unbounded.
func WithMaxBodyBytes(n int64) Option {
	return func(r *Runtime) {
		r.maxBodyBytes = n
	}
}

type Runtime struct {
	processor    Processor
	logger       *slog.Logger
	payloadType  string
	maxBodyBytes int64
}

// NewRuntime creates a new runtime instance
func NewRuntime(processor Processor, opts ...Option) *Runtime {
	_inst := &Runtime{processor: processor, payloadType: PayloadTypeAPIGatewayV2}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	return _inst
}

// ServeHTTP is the HTTP handler for the runtime
func (r *Runtime) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	r.logger.Debug("received HTTP request...", slog.String("requestor", req.RemoteAddr), slog.String("method", req.Method), slog.String("path", req.URL.Path))

	body := req.Body
	if r.maxBodyBytes > 0 {
		body = http.MaxBytesReader(resp, req.Body, r.maxBodyBytes)
	}
	result := r.processor.Process(req.Context(), models.Request{
		Method:     req.Method,
		Headers:    helpers.LowerHeaders(req.Header),
		Body:       body,
		RemoteAddr: req.RemoteAddr,
	})
	helpers.RespondHTTP(result, resp)
}

// HandleEvent is the Lambda handler for the runtime. The event is decoded according to the configured payload type.
func (r *Runtime) HandleEvent(ctx context.Context, event json.RawMessage) (any, error) {
	r.logger.Debug("received Lambda event", slog.String("payloadType", r.payloadType))

	switch r.payloadType {
	case PayloadTypeAPIGatewayV1:
		var e events.APIGatewayProxyRequest
		if err := json.Unmarshal(event, &e); err != nil {
			return nil, fmt.Errorf("failed to decode %s event: %w", r.payloadType, err)
		}
		headers := e.Headers
		if len(headers) == 0 {
			headers = firstValues(e.MultiValueHeaders)
		}
		result := r.processor.Process(ctx, models.Request{
			Method:     e.HTTPMethod,
			Headers:    helpers.LowerKeys(headers),
			Body:       eventBody(e.Body, e.IsBase64Encoded),
			RemoteAddr: e.RequestContext.Identity.SourceIP,
		})
		return events.APIGatewayProxyResponse{
			StatusCode: result.StatusCode,
			Headers:    result.Headers,
			Body:       result.Body,
		}, nil
	case PayloadTypeAPIGatewayV2:
		var e events.APIGatewayV2HTTPRequest
		if err := json.Unmarshal(event, &e); err != nil {
			return nil, fmt.Errorf("failed to decode %s event: %w", r.payloadType, err)
		}
		result := r.processor.Process(ctx, models.Request{
			Method:     e.RequestContext.HTTP.Method,
			Headers:    helpers.LowerKeys(e.Headers),
			Body:       eventBody(e.Body, e.IsBase64Encoded),
			RemoteAddr: e.RequestContext.HTTP.SourceIP,
		})
		return events.APIGatewayV2HTTPResponse{
			StatusCode: result.StatusCode,
			Headers:    result.Headers,
			Body:       result.Body,
		}, nil
	case PayloadTypeLambdaURL:
		var e events.LambdaFunctionURLRequest
		if err := json.Unmarshal(event, &e); err != nil {
			return nil, fmt.Errorf("failed to decode %s event: %w", r.payloadType, err)
		}
		result := r.processor.Process(ctx, models.Request{
			Method:     e.RequestContext.HTTP.Method,
			Headers:    helpers.LowerKeys(e.Headers),
			Body:       eventBody(e.Body, e.IsBase64Encoded),
			RemoteAddr: e.RequestContext.HTTP.SourceIP,
		})
		return events.LambdaFunctionURLResponse{
			StatusCode: result.StatusCode,
			Headers:    result.Headers,
			Body:       result.Body,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported lambda payload type: %s", r.payloadType)
	}
}

// eventBody returns a reader over the raw body of a Lambda event. Invalid base64 surfaces as a read error.
func eventBody(body string, isBase64Encoded bool) io.Reader {
	if isBase64Encoded {
		return base64.NewDecoder(base64.StdEncoding, strings.NewReader(body))
	}
	return strings.NewReader(body)
}

func firstValues(headers map[string][]string) map[string]string {
	first := make(map[string]string, len(headers))
	for k, v := range headers {
		if len(v) > 0 {
			first[k] = v[0]
		}
	}
	return first
}
