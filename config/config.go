package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
)

// PlaceholderProductID is the product id used when PAYPAL_PRODUCT_ID is unset.
const PlaceholderProductID = "YOUR_PRODUCT_ID"

// Config holds application configuration
type Config struct {
	PayPal    PayPalConfig    `koanf:"paypal"`
	Server    ServerConfig    `koanf:"server"`
	Logger    LoggerConfig    `koanf:"logger"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// PayPalConfig holds the provider credentials and call settings.
type PayPalConfig struct {
	ClientID     string        `koanf:"client_id" validate:"required"`
	ClientSecret string        `koanf:"client_secret" validate:"required"`
	APIBase      string        `koanf:"api_base" validate:"required,url"`
	ProductID    string        `koanf:"product_id" validate:"required"`
	BrandName    string        `koanf:"brand_name"`
	Timeout      time.Duration `koanf:"timeout" validate:"required"`
	TokenCache   bool          `koanf:"token_cache"`
}

type ServerConfig struct {
	Port            string        `koanf:"port" validate:"required"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required"`
	CORSOrigins     []string      `koanf:"cors_origins" validate:"dive,url"`
}

type LoggerConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
}

type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Endpoint    string `koanf:"endpoint"`
	ServiceName string `koanf:"service_name" validate:"required"`
}

// UsesPlaceholderProduct reports whether plans would be created under the placeholder product.
func (c PayPalConfig) UsesPlaceholderProduct() bool {
	return c.ProductID == PlaceholderProductID
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"paypal.product_id":       PlaceholderProductID,
		"paypal.brand_name":       "Your Brand",
		"paypal.timeout":          "10s",
		"paypal.token_cache":      false,
		"server.port":             "8000",
		"server.shutdown_timeout": "15s",
		"server.cors_origins":     "http://localhost:5173,http://127.0.0.1:5173",
		"logger.level":            "info",
		"telemetry.enabled":       false,
		"telemetry.endpoint":      "localhost:4317",
		"telemetry.service_name":  "paypal-gateway",
	}
}

// Load loads configuration from defaults, the environment and an optional .env file
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// PAYPAL_CLIENT_ID -> paypal.client_id
	err := k.Load(env.Provider("PAYPAL_", ".", func(s string) string {
		return "paypal." + strings.ToLower(strings.TrimPrefix(s, "PAYPAL_"))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading PAYPAL_ environment: %w", err)
	}

	// GATEWAY_LOG_LEVEL -> logger.level, GATEWAY_CORS_ORIGINS -> server.cors_origins
	err = k.Load(env.Provider("GATEWAY_", ".", gatewayKey), nil)
	if err != nil {
		return nil, fmt.Errorf("loading GATEWAY_ environment: %w", err)
	}

	err = k.Load(env.Provider("OTEL_EXPORTER_OTLP_ENDPOINT", ".", func(string) string {
		return "telemetry.endpoint"
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading OTEL environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}
	cfg.Server.CORSOrigins = splitList(k.String("server.cors_origins"))

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

var gatewayKeys = map[string]string{
	"port":             "server.port",
	"shutdown_timeout": "server.shutdown_timeout",
	"cors_origins":     "server.cors_origins",
	"log_level":        "logger.level",
	"otel_enabled":     "telemetry.enabled",
	"service_name":     "telemetry.service_name",
}

// gatewayKey maps GATEWAY_* variables onto config keys. Unknown names are skipped.
func gatewayKey(s string) string {
	return gatewayKeys[strings.ToLower(strings.TrimPrefix(s, "GATEWAY_"))]
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
