package providers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGasPriceFallbackTable(t *testing.T) {
	// No Etherscan key, so every chain comes from the table without any
	// network traffic.
	o := NewOracle("", "", time.Minute)

	cases := map[string]float64{
		"ethereum": 25,
		"polygon":  30,
		"arbitrum": 0.5,
		"optimism": 0.001,
		"bsc":      5,
		"unknown":  20,
	}
	for chain, want := range cases {
		assert.InDelta(t, want, o.GasPrice(context.Background(), chain), 1e-9, chain)
	}
}

func TestGasPriceNormalizesChain(t *testing.T) {
	o := NewOracle("", "", time.Minute)
	assert.InDelta(t, 30, o.GasPrice(context.Background(), "  Polygon "), 1e-9)
}

func TestOracleCacheHit(t *testing.T) {
	o := NewOracle("", "", time.Minute)

	o.store(o.prices, "eth", 2500)
	v, ok := o.cached(o.prices, "eth")
	assert.True(t, ok)
	assert.InDelta(t, 2500, v, 1e-9)

	_, ok = o.cached(o.prices, "missing")
	assert.False(t, ok)
}

func TestOracleCacheExpiry(t *testing.T) {
	o := NewOracle("", "", time.Millisecond)

	o.store(o.gas, "ethereum", 99)
	time.Sleep(5 * time.Millisecond)

	_, ok := o.cached(o.gas, "ethereum")
	assert.False(t, ok, "entries past the TTL must miss")
	// And the lookup falls back to the table, not the stale value.
	assert.InDelta(t, 25, o.GasPrice(context.Background(), "ethereum"), 1e-9)
}
