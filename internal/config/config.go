// Package config loads runtime configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Ledger backends.
const (
	LedgerSQLite = "sqlite"
	LedgerSui    = "sui"
)

// Config holds runtime configuration for the server.
type Config struct {
	Addr         string        `envconfig:"APP_ADDR" default:":8080" validate:"required"`
	ReadTimeout  time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	FetchTimeout time.Duration `envconfig:"LEDGER_FETCH_TIMEOUT" default:"10s" validate:"gt=0"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	DBPath string `envconfig:"DB_PATH" default:"./data/suisplit.db" validate:"required"`

	// Ledger selects where expenses are read from.
	Ledger string `envconfig:"LEDGER_BACKEND" default:"sqlite" validate:"oneof=sqlite sui"`

	SuiRPCURL    string `envconfig:"SUI_RPC_URL" default:"https://fullnode.testnet.sui.io:443" validate:"required,url"`
	SuiPackageID string `envconfig:"SUI_PACKAGE_ID" default:"0x5ecfe35245a833bdf3e11c7dce072e41a34d7b29dc2f0890fa89806922644586" validate:"required"`
	SuiModule    string `envconfig:"SUI_MODULE" default:"expense_splitter" validate:"required"`

	// RedisAddr, when set, stores nicknames in Redis instead of SQLite.
	RedisAddr string `envconfig:"REDIS_ADDR" validate:"omitempty,hostname_port"`

	// JWTSecret enables authenticated writes. Without it, mutating procedures are rejected.
	JWTSecret string        `envconfig:"JWT_SECRET" validate:"omitempty,min=16"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	// ProxyRateLimit is requests per minute per client on the ledger proxy routes.
	ProxyRateLimit int `envconfig:"PROXY_RATE_LIMIT" default:"60" validate:"gte=1"`

	MetricsEnabled bool `envconfig:"METRICS_ENABLED" default:"true"`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// AuthEnabled reports whether a JWT secret is configured.
func (c *Config) AuthEnabled() bool {
	return c != nil && c.JWTSecret != ""
}
