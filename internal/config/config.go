// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port      string
	Env       string // "development", "staging", "production"
	LogLevel  string
	LogFormat string // "json" or "text"

	// Tracing
	OTLPEndpoint string // OTLP gRPC endpoint; tracing disabled when empty

	// Route aggregator (optional; static catalog when empty)
	RouteAPIURL string

	// Market data providers
	CoinGeckoAPIKey string
	EtherscanAPIKey string
	MarketCacheTTL  time.Duration

	// Risk inference provider (simulated when no API key is set)
	InferenceBaseURL string
	InferenceAPIKey  string
	InferenceTTL     time.Duration // result cache TTL

	// Hedera audit ledger (in-memory ledger when unset)
	HederaAccountID  string
	HederaPrivateKey string
	HederaNetwork    string // "testnet" or "mainnet"
}

// Defaults
const (
	DefaultPort             = "8080"
	DefaultEnv              = "development"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultInferenceBaseURL = "https://api.comput3.ai/api/v0"
	DefaultHederaNetwork    = "testnet"
	DefaultInferenceTTL     = 30 * time.Second
	DefaultMarketCacheTTL   = 60 * time.Second
)

// Load reads configuration from environment variables.
// It loads .env file if present (for local development).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", DefaultPort),
		Env:              getEnv("ENV", DefaultEnv),
		LogLevel:         getEnv("LOG_LEVEL", DefaultLogLevel),
		LogFormat:        getEnv("LOG_FORMAT", DefaultLogFormat),
		OTLPEndpoint:     os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		RouteAPIURL:      os.Getenv("ROUTE_API_URL"),
		CoinGeckoAPIKey:  os.Getenv("COINGECKO_API_KEY"),
		EtherscanAPIKey:  os.Getenv("ETHERSCAN_API_KEY"),
		MarketCacheTTL:   getEnvDuration("MARKET_CACHE_TTL", DefaultMarketCacheTTL),
		InferenceBaseURL: getEnv("COMPUT3_BASE_URL", DefaultInferenceBaseURL),
		InferenceAPIKey:  os.Getenv("COMPUT3_API_KEY"),
		InferenceTTL:     getEnvDuration("INFERENCE_CACHE_TTL", DefaultInferenceTTL),
		HederaAccountID:  os.Getenv("HEDERA_ACCOUNT_ID"),
		HederaPrivateKey: os.Getenv("HEDERA_PRIVATE_KEY"),
		HederaNetwork:    getEnv("HEDERA_NETWORK", DefaultHederaNetwork),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration consistency. Every external collaborator is
// optional (the engine degrades to simulated/in-memory implementations), but
// partially configured ones are rejected early.
func (c *Config) Validate() error {
	if (c.HederaAccountID == "") != (c.HederaPrivateKey == "") {
		return fmt.Errorf("HEDERA_ACCOUNT_ID and HEDERA_PRIVATE_KEY must be set together")
	}
	if c.HederaNetwork != "testnet" && c.HederaNetwork != "mainnet" {
		return fmt.Errorf("HEDERA_NETWORK must be testnet or mainnet, got %q", c.HederaNetwork)
	}
	if c.InferenceTTL <= 0 {
		return fmt.Errorf("INFERENCE_CACHE_TTL must be positive")
	}
	return nil
}

// HederaEnabled reports whether operator credentials are configured.
func (c *Config) HederaEnabled() bool {
	return c.HederaAccountID != "" && c.HederaPrivateKey != ""
}

// InferenceEnabled reports whether the remote inference API is configured.
func (c *Config) InferenceEnabled() bool {
	return c.InferenceAPIKey != ""
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
