package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"paypal-gateway/logging"
	"paypal-gateway/monitoring"
)

// Endpoint names label each PayPal call in metrics and errors.
const (
	EndpointToken        = "oauth2_token"
	EndpointCreateOrder  = "create_order"
	EndpointCaptureOrder = "capture_order"
	EndpointCreatePlan   = "create_plan"
	EndpointSubscription = "create_subscription"
)

// Options configures a Client.
type Options struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	// Transport defaults to an otelhttp-instrumented http.DefaultTransport.
	Transport http.RoundTripper
}

// Client talks to the PayPal REST API. It holds no per-request state and is safe
// for concurrent use.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

// NewClient creates a new PayPal REST client
func NewClient(opts Options) *Client {
	transport := opts.Transport
	if transport == nil {
		transport = otelhttp.NewTransport(http.DefaultTransport)
	}
	return &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
	}
}

// Token is the part of the OAuth2 token response the gateway uses.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// FetchToken performs the client-credentials grant against /v1/oauth2/token.
func (c *Client) FetchToken(ctx context.Context) (*Token, error) {
	form := url.Values{"grant_type": {"client_credentials"}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	body, err := c.do(ctx, EndpointToken, req, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var tok Token
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, fmt.Errorf("error decoding token response: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, &APIError{Endpoint: EndpointToken, StatusCode: http.StatusOK, Body: "response has no access_token"}
	}
	return &tok, nil
}

// Token returns a freshly fetched access token. It makes Client an uncached TokenSource.
func (c *Client) Token(ctx context.Context) (string, error) {
	tok, err := c.FetchToken(ctx)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// CreateOrder calls POST /v2/checkout/orders. PayPal answers 201 Created.
func (c *Client) CreateOrder(ctx context.Context, token string, order OrderRequest) (json.RawMessage, error) {
	return c.postJSON(ctx, EndpointCreateOrder, "/v2/checkout/orders", token, order, http.StatusCreated)
}

// CaptureOrder calls POST /v2/checkout/orders/{id}/capture. The id is only path-escaped;
// PayPal is left to reject ids it does not know.
func (c *Client) CaptureOrder(ctx context.Context, token, orderID string) (json.RawMessage, error) {
	path := "/v2/checkout/orders/" + escapeSegment(orderID) + "/capture"
	return c.postJSON(ctx, EndpointCaptureOrder, path, token, nil, http.StatusCreated)
}

// CreatePlan calls POST /v1/billing/plans. Both 200 and 201 count as success.
func (c *Client) CreatePlan(ctx context.Context, token string, plan PlanRequest) (json.RawMessage, error) {
	return c.postJSON(ctx, EndpointCreatePlan, "/v1/billing/plans", token, plan, http.StatusOK, http.StatusCreated)
}

// CreateSubscription calls POST /v1/billing/subscriptions. PayPal answers 201 Created.
func (c *Client) CreateSubscription(ctx context.Context, token string, sub SubscriptionRequest) (json.RawMessage, error) {
	return c.postJSON(ctx, EndpointSubscription, "/v1/billing/subscriptions", token, sub, http.StatusCreated)
}

func (c *Client) postJSON(ctx context.Context, endpoint, path, token string, payload any, accept ...int) (json.RawMessage, error) {
	var bodyReader io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("error marshalling json: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	body, err := c.do(ctx, endpoint, req, accept...)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// do sends req and returns the response body when the status is one of accept.
func (c *Client) do(ctx context.Context, endpoint string, req *http.Request, accept ...int) ([]byte, error) {
	span := trace.SpanFromContext(ctx)
	logger := logging.WithTraceContext(span)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start).Seconds()

	if err != nil {
		recordCall(ctx, endpoint, "error", duration)
		span.SetAttributes(attribute.String("paypal."+endpoint+".status", "error"))
		logger.Error("PayPal call failed",
			zap.String("endpoint", endpoint),
			zap.Float64("duration_s", duration),
			zap.Error(err),
		)
		if isTimeout(err) {
			return nil, fmt.Errorf("%s: %w", endpoint, ErrTimeout)
		}
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		recordCall(ctx, endpoint, "error", duration)
		if isTimeout(err) {
			return nil, fmt.Errorf("%s: %w", endpoint, ErrTimeout)
		}
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	span.SetAttributes(attribute.Int("paypal."+endpoint+".status_code", resp.StatusCode))

	for _, code := range accept {
		if resp.StatusCode == code {
			recordCall(ctx, endpoint, "success", duration)
			logger.Debug("PayPal call succeeded",
				zap.String("endpoint", endpoint),
				zap.Int("status_code", resp.StatusCode),
				zap.Float64("duration_s", duration),
			)
			return body, nil
		}
	}

	recordCall(ctx, endpoint, "failed", duration)
	logger.Warn("PayPal returned unexpected status",
		zap.String("endpoint", endpoint),
		zap.Int("status_code", resp.StatusCode),
		zap.String("debug_id", resp.Header.Get("Paypal-Debug-Id")),
	)
	return nil, &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(body)}
}

func recordCall(ctx context.Context, endpoint, status string, seconds float64) {
	monitoring.ExternalCallDuration.Record(ctx, seconds,
		metric.WithAttributes(
			attribute.String("endpoint", endpoint),
			attribute.String("status", status),
		),
	)
}

// escapeSegment path-escapes s as a single segment. "." and ".." are encoded
// too, otherwise they would be resolved as dot segments.
func escapeSegment(s string) string {
	if s == "." || s == ".." {
		return strings.ReplaceAll(s, ".", "%2E")
	}
	return url.PathEscape(s)
}
