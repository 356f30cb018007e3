package service

import (
	"context"
	"encoding/json"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"paypal-gateway/logging"
	"paypal-gateway/models"
	"paypal-gateway/monitoring"
	"paypal-gateway/paypal"
)

const (
	OpOneTime   = "one_time_payment"
	OpCapture   = "capture_payment"
	OpRecurring = "recurring_subscription"
)

// Provider is the subset of the PayPal REST API the gateway forwards to.
type Provider interface {
	CreateOrder(ctx context.Context, token string, order paypal.OrderRequest) (json.RawMessage, error)
	CaptureOrder(ctx context.Context, token, orderID string) (json.RawMessage, error)
	CreatePlan(ctx context.Context, token string, plan paypal.PlanRequest) (json.RawMessage, error)
	CreateSubscription(ctx context.Context, token string, sub paypal.SubscriptionRequest) (json.RawMessage, error)
}

// Settings are the static values placed in provider payloads.
type Settings struct {
	ProductID string
	BrandName string
}

// PaymentService translates gateway requests into PayPal calls. It keeps no
// state between requests.
type PaymentService struct {
	tracer   trace.Tracer
	provider Provider
	tokens   paypal.TokenSource
	settings Settings
}

// NewPaymentService creates a new payment service
func NewPaymentService(tracer trace.Tracer, provider Provider, tokens paypal.TokenSource, settings Settings) *PaymentService {
	return &PaymentService{
		tracer:   tracer,
		provider: provider,
		tokens:   tokens,
		settings: settings,
	}
}

// CreateOneTimePayment creates a CAPTURE-intent order and returns PayPal's order document.
func (s *PaymentService) CreateOneTimePayment(ctx context.Context, req *models.OneTimePaymentRequest) (models.Document, error) {
	ctx, span := s.tracer.Start(ctx, OpOneTime)
	defer span.End()

	span.SetAttributes(
		attribute.Float64("payment.amount", req.Amount),
		attribute.String("payment.currency", req.Currency),
	)
	logger := logging.WithTraceContext(span)

	token, err := s.token(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, OpOneTime, err)
	}

	order, err := s.provider.CreateOrder(ctx, token, BuildOrderRequest(req))
	if err != nil {
		return nil, s.fail(ctx, span, OpOneTime, newError(ErrOrderCreation, "Failed to create PayPal Order", false, err))
	}

	s.succeed(ctx, OpOneTime, req.Amount, req.Currency)
	logger.Info("PayPal order created",
		zap.Float64("amount", req.Amount),
		zap.String("currency", req.Currency),
	)
	return order, nil
}

// CapturePayment captures a previously approved order. Repeated calls are forwarded
// each time; PayPal decides what a second capture means.
func (s *PaymentService) CapturePayment(ctx context.Context, orderID string) (models.Document, error) {
	ctx, span := s.tracer.Start(ctx, OpCapture)
	defer span.End()

	span.SetAttributes(attribute.String("payment.order_id", orderID))
	logger := logging.WithTraceContext(span)

	token, err := s.token(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, OpCapture, err)
	}

	capture, err := s.provider.CaptureOrder(ctx, token, orderID)
	if err != nil {
		return nil, s.fail(ctx, span, OpCapture, newError(ErrCapture, "Failed to capture payment", true, err))
	}

	s.succeed(ctx, OpCapture, 0, "")
	logger.Info("PayPal order captured", zap.String("order_id", orderID))
	return capture, nil
}

// CreateSubscription creates a billing plan and then a subscription to it. A plan
// created before a failed subscription call is left in place.
func (s *PaymentService) CreateSubscription(ctx context.Context, req *models.SubscriptionRequest) (models.Document, error) {
	ctx, span := s.tracer.Start(ctx, OpRecurring)
	defer span.End()

	span.SetAttributes(
		attribute.String("subscription.plan_name", req.PlanName),
		attribute.Float64("subscription.price", req.Price),
		attribute.String("subscription.currency", req.Currency),
	)
	logger := logging.WithTraceContext(span)

	token, err := s.token(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, OpRecurring, err)
	}

	plan, err := s.provider.CreatePlan(ctx, token, BuildPlanRequest(req, s.settings.ProductID))
	if err != nil {
		return nil, s.fail(ctx, span, OpRecurring, newError(ErrPlanCreation, "Failed to create PayPal Plan", true, err))
	}

	planID, err := planIDOf(plan)
	if err != nil {
		return nil, s.fail(ctx, span, OpRecurring, &Error{
			Kind:   ErrPlanCreation,
			Detail: "Failed to create PayPal Plan: " + string(plan),
			Err:    err,
		})
	}
	span.SetAttributes(attribute.String("subscription.plan_id", planID))
	logger.Info("PayPal plan created", zap.String("plan_id", planID), zap.String("plan_name", req.PlanName))

	sub, err := s.provider.CreateSubscription(ctx, token, BuildSubscriptionRequest(req, planID, s.settings.BrandName))
	if err != nil {
		logger.Warn("Subscription failed after plan creation, plan left in place", zap.String("plan_id", planID))
		return nil, s.fail(ctx, span, OpRecurring, newError(ErrSubscriptionCreation, "Failed to create subscription", true, err))
	}

	s.succeed(ctx, OpRecurring, req.Price, req.Currency)
	logger.Info("PayPal subscription created", zap.String("plan_id", planID))
	return sub, nil
}

func (s *PaymentService) token(ctx context.Context) (string, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return "", newError(ErrAuthentication, "PayPal Auth Failed", false, err)
	}
	return token, nil
}

func (s *PaymentService) fail(ctx context.Context, span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	logging.WithTraceContext(span).Error("Payment operation failed",
		zap.String("operation", op),
		zap.Error(err),
	)

	status := "failed"
	if errors.Is(err, ErrProviderTimeout) {
		status = "timeout"
	}
	monitoring.OperationCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("status", status),
		),
	)
	return err
}

func (s *PaymentService) succeed(ctx context.Context, op string, amount float64, currency string) {
	monitoring.OperationCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("status", "success"),
		),
	)
	if amount > 0 {
		monitoring.PaymentAmount.Record(ctx, amount,
			metric.WithAttributes(
				attribute.String("operation", op),
				attribute.String("currency", currency),
			),
		)
	}
}

func planIDOf(plan json.RawMessage) (string, error) {
	var p struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(plan, &p); err != nil {
		return "", err
	}
	if p.ID == "" {
		return "", errors.New("plan response has no id")
	}
	return p.ID, nil
}
