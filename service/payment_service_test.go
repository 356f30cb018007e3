package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"paypal-gateway/models"
	"paypal-gateway/paypal"
)

// fakePayPal is an in-process PayPal sandbox. Responses are keyed by path and
// every request body is recorded.
type fakePayPal struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	calls     []recordedCall
}

type fakeResponse struct {
	status int
	body   string
}

type recordedCall struct {
	path string
	auth string
	body []byte
}

func newFakePayPal(t *testing.T) (*fakePayPal, *paypal.Client) {
	t.Helper()
	f := &fakePayPal{responses: map[string]fakeResponse{
		"/v1/oauth2/token":          {http.StatusOK, `{"access_token":"tok-1","token_type":"Bearer","expires_in":32400}`},
		"/v2/checkout/orders":       {http.StatusCreated, `{"id":"ORDER-1","status":"CREATED"}`},
		"/v1/billing/plans":         {http.StatusCreated, `{"id":"P-1","status":"ACTIVE"}`},
		"/v1/billing/subscriptions": {http.StatusCreated, `{"id":"I-1","status":"APPROVAL_PENDING"}`},
	}}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		f.mu.Lock()
		f.calls = append(f.calls, recordedCall{path: r.URL.EscapedPath(), auth: r.Header.Get("Authorization"), body: body})
		resp, ok := f.responses[r.URL.EscapedPath()]
		f.mu.Unlock()

		if !ok {
			resp = fakeResponse{http.StatusNotFound, `{"name":"RESOURCE_NOT_FOUND","message":"The specified resource does not exist."}`}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.status)
		_, _ = w.Write([]byte(resp.body))
	}))
	t.Cleanup(srv.Close)

	client := paypal.NewClient(paypal.Options{
		BaseURL:      srv.URL,
		ClientID:     "id",
		ClientSecret: "secret",
		Timeout:      2 * time.Second,
	})
	return f, client
}

func (f *fakePayPal) set(path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[path] = fakeResponse{status, body}
}

func (f *fakePayPal) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.path)
	}
	return out
}

func (f *fakePayPal) lastBody(t *testing.T, path string) map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].path == path {
			var m map[string]any
			require.NoError(t, json.Unmarshal(f.calls[i].body, &m))
			return m
		}
	}
	t.Fatalf("no call to %s", path)
	return nil
}

func newService(client *paypal.Client) *PaymentService {
	return NewPaymentService(noop.NewTracerProvider().Tracer("test"), client, client, Settings{
		ProductID: "PROD-1",
		BrandName: "Acme",
	})
}

func oneTime(amount float64, currency string) *models.OneTimePaymentRequest {
	return &models.OneTimePaymentRequest{
		Amount:    amount,
		Currency:  currency,
		ReturnURL: "http://localhost:5173/success",
		CancelURL: "http://localhost:5173/cancel",
	}
}

func subscription(price float64, currency string) *models.SubscriptionRequest {
	return &models.SubscriptionRequest{
		PlanName:  "Pro",
		Price:     price,
		Currency:  currency,
		ReturnURL: "http://localhost:5173/success",
		CancelURL: "http://localhost:5173/cancel",
	}
}

func TestCreateOneTimePayment_Payload(t *testing.T) {
	fake, client := newFakePayPal(t)
	svc := newService(client)

	doc, err := svc.CreateOneTimePayment(context.Background(), oneTime(19.99, "USD"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"ORDER-1","status":"CREATED"}`, string(doc))

	assert.Equal(t, []string{"/v1/oauth2/token", "/v2/checkout/orders"}, fake.paths())

	body := fake.lastBody(t, "/v2/checkout/orders")
	assert.Equal(t, "CAPTURE", body["intent"])
	assert.Equal(t, []any{
		map[string]any{"amount": map[string]any{"currency_code": "USD", "value": "19.99"}},
	}, body["purchase_units"])
	assert.Equal(t, map[string]any{
		"return_url": "http://localhost:5173/success",
		"cancel_url": "http://localhost:5173/cancel",
	}, body["application_context"])

	assert.Equal(t, "Bearer tok-1", fake.calls[1].auth)
}

func TestCreateOneTimePayment_AmountFormatting(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{10, "10.00"},
		{10.005, "10.01"},
		{0.5, "0.50"},
		{100.129, "100.13"},
	}

	for _, tt := range tests {
		fake, client := newFakePayPal(t)
		_, err := newService(client).CreateOneTimePayment(context.Background(), oneTime(tt.amount, "USD"))
		require.NoError(t, err)

		units := fake.lastBody(t, "/v2/checkout/orders")["purchase_units"].([]any)
		amount := units[0].(map[string]any)["amount"].(map[string]any)
		assert.Equal(t, tt.want, amount["value"], "amount %v", tt.amount)
	}
}

func TestCreateOneTimePayment_AuthFailureStopsBeforeOrder(t *testing.T) {
	fake, client := newFakePayPal(t)
	fake.set("/v1/oauth2/token", http.StatusUnauthorized, `{"error":"invalid_client"}`)

	_, err := newService(client).CreateOneTimePayment(context.Background(), oneTime(19.99, "USD"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthentication)

	var svcErr *Error
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, "PayPal Auth Failed", svcErr.Detail)

	assert.Equal(t, []string{"/v1/oauth2/token"}, fake.paths())
}

func TestCreateOneTimePayment_OrderNotCreated(t *testing.T) {
	fake, client := newFakePayPal(t)
	fake.set("/v2/checkout/orders", http.StatusBadRequest, `{"name":"INVALID_REQUEST"}`)

	_, err := newService(client).CreateOneTimePayment(context.Background(), oneTime(19.99, "USD"))
	assert.ErrorIs(t, err, ErrOrderCreation)

	var svcErr *Error
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, "Failed to create PayPal Order", svcErr.Detail)

	apiErr, ok := paypal.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestCapturePayment_Success(t *testing.T) {
	fake, client := newFakePayPal(t)
	fake.set("/v2/checkout/orders/ORDER-1/capture", http.StatusCreated, `{"id":"ORDER-1","status":"COMPLETED"}`)

	doc, err := newService(client).CapturePayment(context.Background(), "ORDER-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"ORDER-1","status":"COMPLETED"}`, string(doc))
}

func TestCapturePayment_EmptyOrMalformedIDReachesProvider(t *testing.T) {
	for _, id := range []string{"", "not an id", "../../v1/billing/plans"} {
		fake, client := newFakePayPal(t)

		_, err := newService(client).CapturePayment(context.Background(), id)
		require.Error(t, err, "id %q", id)
		assert.ErrorIs(t, err, ErrCapture)

		var svcErr *Error
		require.True(t, errors.As(err, &svcErr))
		assert.Contains(t, svcErr.Detail, "Failed to capture payment: ")
		assert.Contains(t, svcErr.Detail, "RESOURCE_NOT_FOUND")

		paths := fake.paths()
		require.Len(t, paths, 2)
		assert.Contains(t, paths[1], "/v2/checkout/orders/")
		assert.Contains(t, paths[1], "/capture")
	}
}

func TestCapturePayment_TwiceForwardsTwice(t *testing.T) {
	fake, client := newFakePayPal(t)
	fake.set("/v2/checkout/orders/ORDER-1/capture", http.StatusCreated, `{"status":"COMPLETED"}`)
	svc := newService(client)

	_, err := svc.CapturePayment(context.Background(), "ORDER-1")
	require.NoError(t, err)

	fake.set("/v2/checkout/orders/ORDER-1/capture", http.StatusUnprocessableEntity, `{"name":"UNPROCESSABLE_ENTITY","details":[{"issue":"ORDER_ALREADY_CAPTURED"}]}`)
	_, err = svc.CapturePayment(context.Background(), "ORDER-1")
	require.ErrorIs(t, err, ErrCapture)
	assert.Contains(t, err.(*Error).Detail, "ORDER_ALREADY_CAPTURED")

	assert.Equal(t, []string{
		"/v1/oauth2/token", "/v2/checkout/orders/ORDER-1/capture",
		"/v1/oauth2/token", "/v2/checkout/orders/ORDER-1/capture",
	}, fake.paths())
}

func TestCreateSubscription_Payloads(t *testing.T) {
	fake, client := newFakePayPal(t)

	doc, err := newService(client).CreateSubscription(context.Background(), subscription(9.5, "EUR"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"I-1","status":"APPROVAL_PENDING"}`, string(doc))

	assert.Equal(t, []string{"/v1/oauth2/token", "/v1/billing/plans", "/v1/billing/subscriptions"}, fake.paths())

	plan := fake.lastBody(t, "/v1/billing/plans")
	assert.Equal(t, "PROD-1", plan["product_id"])
	assert.Equal(t, "Pro", plan["name"])

	cycles := plan["billing_cycles"].([]any)
	require.Len(t, cycles, 1)
	assert.Equal(t, map[string]any{
		"frequency":    map[string]any{"interval_unit": "MINUTE", "interval_count": float64(1)},
		"tenure_type":  "REGULAR",
		"sequence":     float64(1),
		"total_cycles": float64(0),
		"pricing_scheme": map[string]any{
			"fixed_price": map[string]any{"value": "9.50", "currency_code": "EUR"},
		},
	}, cycles[0])
	assert.Equal(t, map[string]any{
		"auto_bill_outstanding":     true,
		"setup_fee_failure_action":  "CONTINUE",
		"payment_failure_threshold": float64(3),
	}, plan["payment_preferences"])

	sub := fake.lastBody(t, "/v1/billing/subscriptions")
	assert.Equal(t, "P-1", sub["plan_id"])
	assert.Equal(t, map[string]any{
		"brand_name":  "Acme",
		"user_action": "SUBSCRIBE_NOW",
		"return_url":  "http://localhost:5173/success",
		"cancel_url":  "http://localhost:5173/cancel",
	}, sub["application_context"])
}

func TestCreateSubscription_PlanAcceptsOK(t *testing.T) {
	fake, client := newFakePayPal(t)
	fake.set("/v1/billing/plans", http.StatusOK, `{"id":"P-9"}`)

	_, err := newService(client).CreateSubscription(context.Background(), subscription(5, "USD"))
	require.NoError(t, err)
	assert.Equal(t, "P-9", fake.lastBody(t, "/v1/billing/subscriptions")["plan_id"])
}

func TestCreateSubscription_PlanFailure(t *testing.T) {
	fake, client := newFakePayPal(t)
	fake.set("/v1/billing/plans", http.StatusBadRequest, `{"name":"INVALID_REQUEST","message":"product not found"}`)

	_, err := newService(client).CreateSubscription(context.Background(), subscription(5, "USD"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPlanCreation)
	assert.NotErrorIs(t, err, ErrSubscriptionCreation)
	assert.Equal(t, `Failed to create PayPal Plan: {"name":"INVALID_REQUEST","message":"product not found"}`, err.(*Error).Detail)

	assert.Equal(t, []string{"/v1/oauth2/token", "/v1/billing/plans"}, fake.paths())
}

func TestCreateSubscription_PlanWithoutID(t *testing.T) {
	fake, client := newFakePayPal(t)
	fake.set("/v1/billing/plans", http.StatusCreated, `{"status":"CREATED"}`)

	_, err := newService(client).CreateSubscription(context.Background(), subscription(5, "USD"))
	assert.ErrorIs(t, err, ErrPlanCreation)
	assert.Equal(t, []string{"/v1/oauth2/token", "/v1/billing/plans"}, fake.paths())
}

func TestCreateSubscription_SubscriptionFailure(t *testing.T) {
	fake, client := newFakePayPal(t)
	fake.set("/v1/billing/subscriptions", http.StatusUnprocessableEntity, `{"name":"UNPROCESSABLE_ENTITY"}`)

	_, err := newService(client).CreateSubscription(context.Background(), subscription(5, "USD"))
	assert.ErrorIs(t, err, ErrSubscriptionCreation)
	assert.NotErrorIs(t, err, ErrPlanCreation)
	assert.Equal(t, `Failed to create subscription: {"name":"UNPROCESSABLE_ENTITY"}`, err.(*Error).Detail)
}

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) CreateOrder(ctx context.Context, token string, order paypal.OrderRequest) (json.RawMessage, error) {
	args := m.Called(ctx, token, order)
	return nil, args.Error(1)
}

func (m *mockProvider) CaptureOrder(ctx context.Context, token, orderID string) (json.RawMessage, error) {
	args := m.Called(ctx, token, orderID)
	return nil, args.Error(1)
}

func (m *mockProvider) CreatePlan(ctx context.Context, token string, plan paypal.PlanRequest) (json.RawMessage, error) {
	args := m.Called(ctx, token, plan)
	return nil, args.Error(1)
}

func (m *mockProvider) CreateSubscription(ctx context.Context, token string, sub paypal.SubscriptionRequest) (json.RawMessage, error) {
	args := m.Called(ctx, token, sub)
	return nil, args.Error(1)
}

type failingTokens struct{ err error }

func (f failingTokens) Token(context.Context) (string, error) { return "", f.err }

func TestTokenFailure_NoDownstreamCalls(t *testing.T) {
	for _, tokenErr := range []error{
		&paypal.APIError{Endpoint: paypal.EndpointToken, StatusCode: http.StatusUnauthorized},
		errors.New("connection refused"),
	} {
		provider := &mockProvider{}
		svc := NewPaymentService(noop.NewTracerProvider().Tracer("test"), provider, failingTokens{tokenErr}, Settings{})

		_, err := svc.CreateOneTimePayment(context.Background(), oneTime(1, "USD"))
		assert.ErrorIs(t, err, ErrAuthentication)
		_, err = svc.CapturePayment(context.Background(), "ORDER-1")
		assert.ErrorIs(t, err, ErrAuthentication)
		_, err = svc.CreateSubscription(context.Background(), subscription(1, "USD"))
		assert.ErrorIs(t, err, ErrAuthentication)

		provider.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
		provider.AssertNotCalled(t, "CaptureOrder", mock.Anything, mock.Anything, mock.Anything)
		provider.AssertNotCalled(t, "CreatePlan", mock.Anything, mock.Anything, mock.Anything)
		provider.AssertNotCalled(t, "CreateSubscription", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestProviderTimeout(t *testing.T) {
	provider := &mockProvider{}
	provider.On("CaptureOrder", mock.Anything, "tok", "ORDER-1").Return(nil, paypal.ErrTimeout)

	svc := NewPaymentService(noop.NewTracerProvider().Tracer("test"), provider, staticTokens("tok"), Settings{})

	_, err := svc.CapturePayment(context.Background(), "ORDER-1")
	assert.ErrorIs(t, err, ErrCapture)
	assert.ErrorIs(t, err, ErrProviderTimeout)
	assert.Equal(t, "PayPal request timed out", err.(*Error).Detail)
}

type staticTokens string

func (s staticTokens) Token(context.Context) (string, error) { return string(s), nil }
