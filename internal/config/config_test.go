package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ENV", "LOG_LEVEL", "LOG_FORMAT",
		"MARKET_CACHE_TTL", "INFERENCE_CACHE_TTL",
		"HEDERA_ACCOUNT_ID", "HEDERA_PRIVATE_KEY", "HEDERA_NETWORK",
		"COMPUT3_API_KEY",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultEnv, cfg.Env)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
	assert.Equal(t, DefaultInferenceTTL, cfg.InferenceTTL)
	assert.Equal(t, DefaultMarketCacheTTL, cfg.MarketCacheTTL)
	assert.Equal(t, DefaultHederaNetwork, cfg.HederaNetwork)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.HederaEnabled())
	assert.False(t, cfg.InferenceEnabled())
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("INFERENCE_CACHE_TTL", "45s")
	assert.Equal(t, 45*time.Second, getEnvDuration("INFERENCE_CACHE_TTL", DefaultInferenceTTL))

	// Bare integers are seconds.
	t.Setenv("INFERENCE_CACHE_TTL", "90")
	assert.Equal(t, 90*time.Second, getEnvDuration("INFERENCE_CACHE_TTL", DefaultInferenceTTL))

	t.Setenv("INFERENCE_CACHE_TTL", "not-a-duration")
	assert.Equal(t, DefaultInferenceTTL, getEnvDuration("INFERENCE_CACHE_TTL", DefaultInferenceTTL))
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{HederaNetwork: "testnet", InferenceTTL: 30 * time.Second}
	}

	assert.NoError(t, base().Validate())

	c := base()
	c.HederaAccountID = "0.0.1234"
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be set together")

	c = base()
	c.HederaAccountID = "0.0.1234"
	c.HederaPrivateKey = "302e0201"
	assert.NoError(t, c.Validate())
	assert.True(t, c.HederaEnabled())

	c = base()
	c.HederaNetwork = "devnet"
	assert.Error(t, c.Validate())

	c = base()
	c.InferenceTTL = 0
	assert.Error(t, c.Validate())
}
