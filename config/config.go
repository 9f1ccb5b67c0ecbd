package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is populated from the environment. Secrets never appear in flags or
// files.
type Config struct {
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	PostgresURL string `envconfig:"POSTGRES_URL" required:"true"`
	RedisAddr   string `envconfig:"REDIS_ADDR" required:"true"`

	JaegerEndpoint string `envconfig:"JAEGER_ENDPOINT" default:"http://localhost:14268/api/traces"`

	AdminToken string `envconfig:"ADMIN_TOKEN"`

	GatewayTimeout time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"10s"`

	Razorpay RazorpayConfig
	Stripe   StripeConfig

	DocumentsBaseURL    string `envconfig:"DOCUMENTS_BASE_URL"`
	FinanceSheetBaseURL string `envconfig:"FINANCE_SHEET_BASE_URL"`
}

type RazorpayConfig struct {
	BaseURL       string `envconfig:"RAZORPAY_BASE_URL" default:"https://api.razorpay.com"`
	KeyID         string `envconfig:"RAZORPAY_KEY_ID"`
	KeySecret     string `envconfig:"RAZORPAY_KEY_SECRET"`
	WebhookSecret string `envconfig:"RAZORPAY_WEBHOOK_SECRET"`
}

type StripeConfig struct {
	BaseURL       string `envconfig:"STRIPE_BASE_URL" default:"https://api.stripe.com"`
	APIKey        string `envconfig:"STRIPE_API_KEY"`
	WebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("could not load config: %w", err)
	}
	return cfg, nil
}
