package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the billing engine.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// PG_DSN is optional; without it audit events are log-only.
	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`

	CatalogAPIURL string `envconfig:"CATALOG_API_URL" required:"true"`
	BillingAPIURL string `envconfig:"BILLING_API_URL" required:"true"`

	CatalogTTL     time.Duration `envconfig:"CATALOG_TTL" default:"15m"`
	ScanBurstGap   time.Duration `envconfig:"SCAN_BURST_GAP" default:"100ms"`
	ConfirmTTL     time.Duration `envconfig:"PAYMENT_CONFIRM_TTL" default:"5m"`
	CatalogRefresh time.Duration `envconfig:"CATALOG_REFRESH_INTERVAL" default:"10m"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.CatalogAPIURL == "" {
		return nil, errors.New("catalog api url must be provided")
	}
	if cfg.BillingAPIURL == "" {
		return nil, errors.New("billing api url must be provided")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
