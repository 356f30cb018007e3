package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"paypal-gateway/logging"
	"paypal-gateway/models"
	"paypal-gateway/service"
)

// PaymentService is implemented by *service.PaymentService.
type PaymentService interface {
	CreateOneTimePayment(ctx context.Context, req *models.OneTimePaymentRequest) (models.Document, error)
	CapturePayment(ctx context.Context, orderID string) (models.Document, error)
	CreateSubscription(ctx context.Context, req *models.SubscriptionRequest) (models.Document, error)
}

// PaymentHandler handles HTTP requests for payments
type PaymentHandler struct {
	paymentService PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// RegisterRoutes mounts the payment endpoints on r.
func (h *PaymentHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)

	pay := r.Group("/pay")
	pay.POST("/one-time", h.CreateOneTimePayment)
	// Catch-all so empty and slash-containing ids are still forwarded to PayPal.
	pay.POST("/capture/*order_id", h.CapturePayment)
	pay.POST("/recurring", h.CreateSubscription)
}

// CreateOneTimePayment creates a PayPal order
// @Summary      Create a one-time payment
// @Description  Creates a CAPTURE-intent PayPal order and returns PayPal's order document unchanged.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request  body      models.OneTimePaymentRequest  true  "Payment details"
// @Success      200      {object}  object                        "PayPal order"
// @Failure      400      {object}  models.ErrorResponse
// @Failure      500      {object}  models.ErrorResponse
// @Failure      504      {object}  models.ErrorResponse
// @Router       /pay/one-time [post]
func (h *PaymentHandler) CreateOneTimePayment(c *gin.Context) {
	var req models.OneTimePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Detail: err.Error()})
		return
	}

	order, err := h.paymentService.CreateOneTimePayment(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err,
			zap.Float64("amount", req.Amount),
			zap.String("currency", req.Currency),
		)
		return
	}

	span := trace.SpanFromContext(c.Request.Context())
	span.AddEvent("order_created")
	c.Data(http.StatusOK, "application/json", order)
}

// CapturePayment captures an approved PayPal order
// @Summary      Capture a payment
// @Description  Captures a previously approved order. Not idempotent: every call is forwarded to PayPal.
// @Tags         payments
// @Produce      json
// @Param        order_id  path      string  true  "PayPal order id"
// @Success      200       {object}  object  "PayPal capture"
// @Failure      500       {object}  models.ErrorResponse
// @Failure      504       {object}  models.ErrorResponse
// @Router       /pay/capture/{order_id} [post]
func (h *PaymentHandler) CapturePayment(c *gin.Context) {
	orderID := strings.TrimPrefix(c.Param("order_id"), "/")

	capture, err := h.paymentService.CapturePayment(c.Request.Context(), orderID)
	if err != nil {
		respondWithError(c, err, zap.String("order_id", orderID))
		return
	}

	span := trace.SpanFromContext(c.Request.Context())
	span.AddEvent("order_captured")
	c.Data(http.StatusOK, "application/json", capture)
}

// CreateSubscription creates a billing plan and a subscription to it
// @Summary      Create a recurring subscription
// @Description  Creates a PayPal billing plan and subscribes to it. Returns PayPal's subscription document unchanged.
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Param        request  body      models.SubscriptionRequest  true  "Subscription details"
// @Success      200      {object}  object                      "PayPal subscription"
// @Failure      400      {object}  models.ErrorResponse
// @Failure      500      {object}  models.ErrorResponse
// @Failure      504      {object}  models.ErrorResponse
// @Router       /pay/recurring [post]
func (h *PaymentHandler) CreateSubscription(c *gin.Context) {
	var req models.SubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Detail: err.Error()})
		return
	}

	sub, err := h.paymentService.CreateSubscription(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err,
			zap.String("plan_name", req.PlanName),
			zap.Float64("price", req.Price),
		)
		return
	}

	span := trace.SpanFromContext(c.Request.Context())
	span.AddEvent("subscription_created")
	c.Data(http.StatusOK, "application/json", sub)
}

// HealthCheck handles health check requests
func (h *PaymentHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func respondWithError(c *gin.Context, err error, fields ...zap.Field) {
	status := http.StatusInternalServerError
	detail := "Internal server error"

	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		detail = svcErr.Detail
	}
	if errors.Is(err, service.ErrProviderTimeout) {
		status = http.StatusGatewayTimeout
	}

	logging.FromContext(c.Request.Context()).Error("Payment request failed",
		append(fields,
			zap.Error(err),
			zap.Int("status", status),
			zap.String("path", c.FullPath()),
		)...,
	)

	c.JSON(status, models.ErrorResponse{Detail: detail})
}
