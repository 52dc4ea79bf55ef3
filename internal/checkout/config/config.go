// Package config loads process configuration from the environment.
// Everything the orchestrator and reconciler need — gateway credentials,
// the operator distribution list, callback base URL — is injected through
// this struct rather than read from globals.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "checkout"

type Config struct {
	HTTPAddr     string `envconfig:"HTTP_ADDR" default:":8080"`
	DatabasePath string `envconfig:"DB_PATH" default:"./data/checkout.db"`

	// RedisAddr enables the order-status cache; empty disables it.
	RedisAddr string `envconfig:"REDIS_ADDR"`

	// AppURL is the public base URL of the storefront. Payment back URLs
	// and the webhook notification URL are derived from it.
	AppURL string `envconfig:"APP_URL" default:"http://localhost:3000"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// OTLPEndpoint enables trace export; empty disables tracing.
	OTLPEndpoint string `envconfig:"OTLP_ENDPOINT"`

	Gateway GatewayConfig
	Email   EmailConfig
	Product ProductConfig
}

type GatewayConfig struct {
	AccessToken string        `envconfig:"MP_ACCESS_TOKEN"`
	BaseURL     string        `envconfig:"MP_BASE_URL" default:"https://api.mercadopago.com"`
	Timeout     time.Duration `envconfig:"MP_TIMEOUT" default:"5s"`
}

type EmailConfig struct {
	ResendAPIKey string `envconfig:"RESEND_API_KEY"`
	From         string `envconfig:"EMAIL_FROM" default:"Gyroball Pro <noreply@gyroball.com.br>"`

	// AdminEmails is the comma-separated operator distribution list.
	AdminEmails []string `envconfig:"ADMIN_EMAILS"`
}

type ProductConfig struct {
	Name                string `envconfig:"PRODUCT_NAME" default:"Gyroball Pro"`
	Description         string `envconfig:"PRODUCT_DESCRIPTION" default:"Fortalecedor Muscular Giroscópico"`
	StatementDescriptor string `envconfig:"STATEMENT_DESCRIPTOR" default:"GYROBALL PRO"`
}

// Load reads configuration from CHECKOUT_-prefixed environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
