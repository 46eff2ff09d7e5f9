// Package common provides shared utilities for Papertrade
package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for Papertrade
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Trading     TradingConfig `toml:"trading"`
	Auth        AuthConfig    `toml:"auth"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds SurrealDB connection configuration.
type StorageConfig struct {
	Address   string `toml:"address"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD EODHDConfig `toml:"eodhd"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// TradingConfig holds simulated brokerage parameters.
type TradingConfig struct {
	StartingCash string `toml:"starting_cash"`
}

// GetStartingCash parses the opening cash balance for new accounts.
func (c *TradingConfig) GetStartingCash() decimal.Decimal {
	d, err := decimal.NewFromString(c.StartingCash)
	if err != nil || d.IsNegative() {
		return decimal.RequireFromString("10000.00")
	}
	return d
}

// AuthConfig holds JWT authentication configuration.
type AuthConfig struct {
	JWTSecret   string `toml:"jwt_secret"`
	TokenExpiry string `toml:"token_expiry"` // duration string, default "24h"
}

// GetTokenExpiry parses and returns the token expiry duration.
func (c *AuthConfig) GetTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.TokenExpiry)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Address:   "ws://localhost:8000/rpc",
			Namespace: "papertrade",
			Database:  "papertrade",
			Username:  "root",
			Password:  "root",
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
			},
		},
		Trading: TradingConfig{
			StartingCash: "10000.00",
		},
		Auth: AuthConfig{
			JWTSecret:   "dev-jwt-secret-change-in-production",
			TokenExpiry: "24h",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("PAPERTRADE_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("PAPERTRADE_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("PAPERTRADE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if addr := os.Getenv("PAPERTRADE_STORAGE_ADDRESS"); addr != "" {
		config.Storage.Address = addr
	}

	if ns := os.Getenv("PAPERTRADE_STORAGE_NAMESPACE"); ns != "" {
		config.Storage.Namespace = ns
	}

	if db := os.Getenv("PAPERTRADE_STORAGE_DATABASE"); db != "" {
		config.Storage.Database = db
	}

	if user := os.Getenv("PAPERTRADE_STORAGE_USERNAME"); user != "" {
		config.Storage.Username = user
	}

	if pass := os.Getenv("PAPERTRADE_STORAGE_PASSWORD"); pass != "" {
		config.Storage.Password = pass
	}

	if key := os.Getenv("PAPERTRADE_EODHD_API_KEY"); key != "" {
		config.Clients.EODHD.APIKey = key
	}

	if secret := os.Getenv("PAPERTRADE_JWT_SECRET"); secret != "" {
		config.Auth.JWTSecret = secret
	}

	if cash := os.Getenv("PAPERTRADE_STARTING_CASH"); cash != "" {
		config.Trading.StartingCash = cash
	}

	if level := os.Getenv("PAPERTRADE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}
