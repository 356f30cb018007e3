package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"paypal-gateway/config"
	"paypal-gateway/handlers"
	"paypal-gateway/logging"
	"paypal-gateway/monitoring"
	"paypal-gateway/paypal"
	"paypal-gateway/server"
	"paypal-gateway/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP gateway",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logging.InitLogger(logging.Options{
		Level:        cfg.Logger.Level,
		OTLPEnabled:  cfg.Telemetry.Enabled,
		OTLPEndpoint: cfg.Telemetry.Endpoint,
	}); err != nil {
		return err
	}
	defer logging.Sync()
	defer func() {
		if err := logging.Shutdown(context.Background()); err != nil {
			logging.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()

	if cfg.Telemetry.Enabled {
		tp, err := monitoring.InitTracer(cfg.Telemetry.ServiceName, cfg.Telemetry.Endpoint)
		if err != nil {
			return err
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logging.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	mp, metricsHandler, err := monitoring.InitMeter(cfg.Telemetry.ServiceName, cfg.Telemetry.Endpoint, cfg.Telemetry.Enabled)
	if err != nil {
		return err
	}
	defer func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			logging.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	if cfg.PayPal.UsesPlaceholderProduct() {
		logging.Warn("PAYPAL_PRODUCT_ID is not set; subscription plans will reference a placeholder product",
			zap.String("product_id", cfg.PayPal.ProductID),
		)
	}

	paymentService := newPaymentService(cfg)
	paymentHandler := handlers.NewPaymentHandler(paymentService)

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(paymentHandler, server.Options{
		ServiceName: cfg.Telemetry.ServiceName,
		CORSOrigins: cfg.Server.CORSOrigins,
		Metrics:     metricsHandler,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		logging.Info("PayPal gateway starting",
			zap.String("port", cfg.Server.Port),
			zap.String("paypal_api_base", cfg.PayPal.APIBase),
			zap.Bool("token_cache", cfg.PayPal.TokenCache),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		if err != nil {
			logging.Error("Server error", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	logging.Info("Server exited")
	return nil
}

func newPaypalClient(cfg *config.Config) *paypal.Client {
	return paypal.NewClient(paypal.Options{
		BaseURL:      cfg.PayPal.APIBase,
		ClientID:     cfg.PayPal.ClientID,
		ClientSecret: cfg.PayPal.ClientSecret,
		Timeout:      cfg.PayPal.Timeout,
	})
}

func newPaymentService(cfg *config.Config) *service.PaymentService {
	client := newPaypalClient(cfg)

	var tokens paypal.TokenSource = client
	if cfg.PayPal.TokenCache {
		tokens = paypal.NewCachingTokenSource(client)
	}

	return service.NewPaymentService(
		otel.Tracer(cfg.Telemetry.ServiceName),
		client,
		tokens,
		service.Settings{
			ProductID: cfg.PayPal.ProductID,
			BrandName: cfg.PayPal.BrandName,
		},
	)
}
