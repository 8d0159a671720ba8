package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ayalabs/ayabridge/internal/logging"
	"github.com/ayalabs/ayabridge/internal/metrics"
	"github.com/ayalabs/ayabridge/internal/retry"
)

// Fallback tables used when a market API is unreachable or returns junk.
var (
	fallbackPrices = map[string]float64{
		"ethereum": 2200,
		"bitcoin":  45000,
		"usdc":     1,
		"usdt":     1,
		"matic":    0.8,
	}
	fallbackGas = map[string]float64{
		"ethereum": 25,
		"polygon":  30,
		"arbitrum": 0.5,
		"optimism": 0.001,
		"bsc":      5,
	}
)

const (
	defaultTokenPrice = 1.0
	defaultGasPrice   = 20.0

	coingeckoURL = "https://api.coingecko.com/api/v3/simple/price"
	etherscanURL = "https://api.etherscan.io/api"
)

type cachedFloat struct {
	value     float64
	fetchedAt time.Time
}

// Oracle supplies token prices (USD) and per-chain gas prices (gwei) with a
// short TTL cache. Lookups never fail: any fetch error falls back to the
// fixed tables above.
type Oracle struct {
	coingeckoKey string
	etherscanKey string
	ttl          time.Duration
	client       *http.Client

	mu     sync.RWMutex
	prices map[string]cachedFloat
	gas    map[string]cachedFloat
}

// NewOracle creates a market oracle. API keys may be empty (CoinGecko's
// demo tier works keyless; Etherscan falls back to the gas table).
func NewOracle(coingeckoKey, etherscanKey string, ttl time.Duration) *Oracle {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Oracle{
		coingeckoKey: coingeckoKey,
		etherscanKey: etherscanKey,
		ttl:          ttl,
		client:       &http.Client{Timeout: 5 * time.Second},
		prices:       make(map[string]cachedFloat),
		gas:          make(map[string]cachedFloat),
	}
}

// TokenPrice returns the USD price for a token symbol.
func (o *Oracle) TokenPrice(ctx context.Context, symbol string) float64 {
	symbol = strings.ToLower(strings.TrimSpace(symbol))

	if v, ok := o.cached(o.prices, symbol); ok {
		return v
	}

	price, err := o.fetchPrice(ctx, symbol)
	if err != nil {
		logging.L(ctx).Warn("token price fetch failed", "symbol", symbol, "error", err)
		metrics.ProviderFailuresTotal.WithLabelValues("price").Inc()
		if v, ok := fallbackPrices[symbol]; ok {
			return v
		}
		return defaultTokenPrice
	}

	o.store(o.prices, symbol, price)
	return price
}

// GasPrice returns the gas price in gwei for a chain.
func (o *Oracle) GasPrice(ctx context.Context, chain string) float64 {
	chain = strings.ToLower(strings.TrimSpace(chain))

	if v, ok := o.cached(o.gas, chain); ok {
		return v
	}

	// Only ethereum has a live gas tracker; other chains use the table.
	if chain == "ethereum" && o.etherscanKey != "" {
		price, err := o.fetchEthGas(ctx)
		if err == nil {
			o.store(o.gas, chain, price)
			return price
		}
		logging.L(ctx).Warn("gas price fetch failed", "chain", chain, "error", err)
		metrics.ProviderFailuresTotal.WithLabelValues("gas").Inc()
	}

	if v, ok := fallbackGas[chain]; ok {
		return v
	}
	return defaultGasPrice
}

func (o *Oracle) cached(m map[string]cachedFloat, key string) (float64, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	c, ok := m[key]
	if !ok || time.Since(c.fetchedAt) >= o.ttl {
		return 0, false
	}
	return c.value, true
}

func (o *Oracle) store(m map[string]cachedFloat, key string, value float64) {
	o.mu.Lock()
	m[key] = cachedFloat{value: value, fetchedAt: time.Now()}
	o.mu.Unlock()
}

func (o *Oracle) fetchPrice(ctx context.Context, symbol string) (float64, error) {
	q := url.Values{}
	q.Set("ids", symbol)
	q.Set("vs_currencies", "usd")

	var price float64
	err := retry.Do(ctx, 2, 200*time.Millisecond, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, coingeckoURL+"?"+q.Encode(), nil)
		if err != nil {
			return retry.Permanent(err)
		}
		if o.coingeckoKey != "" {
			req.Header.Set("X-CG-Demo-API-Key", o.coingeckoKey)
		}

		resp, err := o.client.Do(req)
		if err != nil {
			return fmt.Errorf("fetch price: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("price API returned status %d", resp.StatusCode)
		}

		var result map[string]struct {
			USD float64 `json:"usd"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("decode price response: %w", err)
		}

		entry, ok := result[symbol]
		if !ok || entry.USD <= 0 {
			return retry.Permanent(fmt.Errorf("no price for %q", symbol))
		}
		price = entry.USD
		return nil
	})
	return price, err
}

func (o *Oracle) fetchEthGas(ctx context.Context) (float64, error) {
	q := url.Values{}
	q.Set("module", "gastracker")
	q.Set("action", "gasoracle")
	q.Set("apikey", o.etherscanKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, etherscanURL+"?"+q.Encode(), nil)
	if err != nil {
		return 0, err
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch gas price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("gas API returned status %d", resp.StatusCode)
	}

	var result struct {
		Result struct {
			ProposeGasPrice string `json:"ProposeGasPrice"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decode gas response: %w", err)
	}

	price, err := strconv.ParseFloat(result.Result.ProposeGasPrice, 64)
	if err != nil || price <= 0 {
		return 0, fmt.Errorf("invalid gas price %q", result.Result.ProposeGasPrice)
	}
	return price, nil
}
