package runtime_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isometry/payment-webhook/internal/handler"
	"github.com/isometry/payment-webhook/internal/ratelimit"
	"github.com/isometry/payment-webhook/internal/runtime"
	"github.com/isometry/payment-webhook/internal/store"
)

const (
	testSecret = "s3cr3t"
	testBody   = `{"event":"charge.completed","data":{"tx_ref":"TX1","amount":100,"status":"successful"}}`
)

func sign(body string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func newRuntime(t *testing.T, opts ...runtime.Option) (*runtime.Runtime, *store.Memory) {
	t.Helper()
	s := store.NewMemory()
	h, err := handler.NewWebhookHandler(
		handler.WithStore(s),
		handler.WithRateLimiter(ratelimit.NewFixedWindow(100, time.Minute), ""),
		handler.WithWebhookSecret(testSecret))
	require.NoError(t, err)
	return runtime.NewRuntime(h, opts...), s
}

func TestServeHTTP(t *testing.T) {
	testCases := []struct {
		Name           string
		Method         string
		Body           string
		Signature      string
		ExpectedStatus int
		ExpectedBody   string
	}{
		{
			Name:           "valid",
			Method:         http.MethodPost,
			Body:           testBody,
			Signature:      sign(testBody),
			ExpectedStatus: http.StatusOK,
			ExpectedBody:   "OK",
		},
		{
			Name:           "get",
			Method:         http.MethodGet,
			ExpectedStatus: http.StatusNotFound,
			ExpectedBody:   "Not found",
		},
		{
			Name:           "invalid_signature",
			Method:         http.MethodPost,
			Body:           testBody,
			Signature:      strings.Repeat("0", 64),
			ExpectedStatus: http.StatusUnauthorized,
			ExpectedBody:   "Invalid signature",
		},
		{
			Name:           "body_too_large",
			Method:         http.MethodPost,
			Body:           testBody + strings.Repeat(" ", 1024),
			Signature:      sign(testBody + strings.Repeat(" ", 1024)),
			ExpectedStatus: http.StatusInternalServerError,
			ExpectedBody:   "Server error",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			rt, _ := newRuntime(t, runtime.WithMaxBodyBytes(512))
			server := httptest.NewServer(rt)
			defer server.Close()

			req, err := http.NewRequest(tc.Method, server.URL+"/", strings.NewReader(tc.Body))
			require.NoError(t, err)
			req.Header.Set("Verif-Hash", tc.Signature)
			req.Header.Set("Content-Type", "application/json")

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, tc.ExpectedStatus, resp.StatusCode)
			assert.Equal(t, tc.ExpectedBody, string(body))
			assert.NotEmpty(t, resp.Header.Get(handler.RequestIDHeader))
			assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
		})
	}
}

func TestServeHTTPStoresTransaction(t *testing.T) {
	rt, s := newRuntime(t)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(testBody))
	req.Header.Set("verif-hash", sign(testBody))
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	rw := httptest.NewRecorder()

	rt.ServeHTTP(rw, req)

	assert.Equal(t, http.StatusOK, rw.Code)
	record, found := s.Get("TX1")
	require.True(t, found)
	assert.Equal(t, "successful", record.Status)
	assert.InDelta(t, 100.0, record.Amount, 0)
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestHandleEvent(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte(testBody))
	signature := sign(testBody)

	testCases := []struct {
		Name           string
		PayloadType    string
		Event          any
		ExpectedStatus int
	}{
		{
			Name:        "api_gateway_v1",
			PayloadType: runtime.PayloadTypeAPIGatewayV1,
			Event: events.APIGatewayProxyRequest{
				HTTPMethod: http.MethodPost,
				Headers:    map[string]string{"Verif-Hash": signature, "X-Forwarded-For": "203.0.113.7"},
				Body:       testBody,
			},
			ExpectedStatus: http.StatusOK,
		},
		{
			Name:        "api_gateway_v1_multi_value_headers",
			PayloadType: runtime.PayloadTypeAPIGatewayV1,
			Event: events.APIGatewayProxyRequest{
				HTTPMethod:        http.MethodPost,
				MultiValueHeaders: map[string][]string{"verif-hash": {signature}},
				Body:              encoded,
				IsBase64Encoded:   true,
			},
			ExpectedStatus: http.StatusOK,
		},
		{
			Name:        "api_gateway_v1_get",
			PayloadType: runtime.PayloadTypeAPIGatewayV1,
			Event: events.APIGatewayProxyRequest{
				HTTPMethod: http.MethodGet,
			},
			ExpectedStatus: http.StatusNotFound,
		},
		{
			Name:        "api_gateway_v2",
			PayloadType: runtime.PayloadTypeAPIGatewayV2,
			Event: events.APIGatewayV2HTTPRequest{
				Headers: map[string]string{"verif-hash": signature},
				Body:    testBody,
				RequestContext: events.APIGatewayV2HTTPRequestContext{
					HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{Method: http.MethodPost, SourceIP: "203.0.113.7"},
				},
			},
			ExpectedStatus: http.StatusOK,
		},
		{
			Name:        "api_gateway_v2_base64",
			PayloadType: runtime.PayloadTypeAPIGatewayV2,
			Event: events.APIGatewayV2HTTPRequest{
				Headers:         map[string]string{"verif-hash": signature},
				Body:            encoded,
				IsBase64Encoded: true,
				RequestContext: events.APIGatewayV2HTTPRequestContext{
					HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{Method: http.MethodPost},
				},
			},
			ExpectedStatus: http.StatusOK,
		},
		{
			Name:        "api_gateway_v2_invalid_base64",
			PayloadType: runtime.PayloadTypeAPIGatewayV2,
			Event: events.APIGatewayV2HTTPRequest{
				Headers:         map[string]string{"verif-hash": signature},
				Body:            "%%%not-base64%%%",
				IsBase64Encoded: true,
				RequestContext: events.APIGatewayV2HTTPRequestContext{
					HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{Method: http.MethodPost},
				},
			},
			ExpectedStatus: http.StatusInternalServerError,
		},
		{
			Name:        "lambda_url",
			PayloadType: runtime.PayloadTypeLambdaURL,
			Event: events.LambdaFunctionURLRequest{
				Headers: map[string]string{"verif-hash": signature},
				Body:    testBody,
				RequestContext: events.LambdaFunctionURLRequestContext{
					HTTP: events.LambdaFunctionURLRequestContextHTTPDescription{Method: http.MethodPost},
				},
			},
			ExpectedStatus: http.StatusOK,
		},
		{
			Name:        "lambda_url_forged",
			PayloadType: runtime.PayloadTypeLambdaURL,
			Event: events.LambdaFunctionURLRequest{
				Headers: map[string]string{"verif-hash": sign(testBody + "x")},
				Body:    testBody,
				RequestContext: events.LambdaFunctionURLRequestContext{
					HTTP: events.LambdaFunctionURLRequestContextHTTPDescription{Method: http.MethodPost},
				},
			},
			ExpectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			rt, s := newRuntime(t, runtime.WithLambdaPayloadType(tc.PayloadType))

			result, err := rt.HandleEvent(context.Background(), mustJSON(t, tc.Event))
			require.NoError(t, err)

			var status int
			var headers map[string]string
			switch r := result.(type) {
			case events.APIGatewayProxyResponse:
				require.Equal(t, runtime.PayloadTypeAPIGatewayV1, tc.PayloadType)
				status, headers = r.StatusCode, r.Headers
			case events.APIGatewayV2HTTPResponse:
				require.Equal(t, runtime.PayloadTypeAPIGatewayV2, tc.PayloadType)
				status, headers = r.StatusCode, r.Headers
			case events.LambdaFunctionURLResponse:
				require.Equal(t, runtime.PayloadTypeLambdaURL, tc.PayloadType)
				status, headers = r.StatusCode, r.Headers
			default:
				t.Fatalf("unexpected response type %T", result)
			}
			assert.Equal(t, tc.ExpectedStatus, status)
			assert.NotEmpty(t, headers[handler.RequestIDHeader])

			_, stored := s.Get("TX1")
			assert.Equal(t, tc.ExpectedStatus == http.StatusOK, stored)
		})
	}
}

func TestHandleEventErrors(t *testing.T) {
	t.Run("unsupported_payload_type", func(t *testing.T) {
		rt, _ := newRuntime(t, runtime.WithLambdaPayloadType("alb"))
		_, err := rt.HandleEvent(context.Background(), json.RawMessage(`{}`))
		assert.ErrorContains(t, err, "unsupported lambda payload type")
	})

	t.Run("malformed_event", func(t *testing.T) {
		rt, _ := newRuntime(t)
		_, err := rt.HandleEvent(context.Background(), json.RawMessage(`[1,2,3]`))
		assert.Error(t, err)
	})
}
