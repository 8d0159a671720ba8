// Package providers wraps the external market-data collaborators: the
// bridge route aggregator, the price/gas oracle, and the yield pool feed.
// Every client degrades to a fixed fallback table instead of propagating
// failures, and records the fallback in metrics.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/ayalabs/ayabridge/internal/logging"
	"github.com/ayalabs/ayabridge/internal/metrics"
)

// BridgeOption is a raw protocol offer for a (fromChain, toChain, token)
// query. Fees is a fractional rate, EstimatedTime is in seconds.
type BridgeOption struct {
	Name          string  `json:"name"`
	EstimatedTime int     `json:"estimatedTime"`
	Fees          float64 `json:"fees"`
	Liquidity     string  `json:"liquidity"` // low, medium, high
}

// catalog is the canonical set of bridge protocols used when no aggregator
// is configured or the aggregator call fails.
var catalog = []BridgeOption{
	{Name: "Stargate", EstimatedTime: 120, Fees: 0.0005, Liquidity: "high"},
	{Name: "Across", EstimatedTime: 300, Fees: 0.0003, Liquidity: "medium"},
	{Name: "Hop", EstimatedTime: 600, Fees: 0.0002, Liquidity: "high"},
	{Name: "Multichain", EstimatedTime: 900, Fees: 0.0001, Liquidity: "low"},
}

// DefaultOptions returns the two default protocols served when discovery
// comes back empty-handed.
func DefaultOptions() []BridgeOption {
	return []BridgeOption{catalog[0], catalog[1]}
}

// CanonicalBridges returns the names of all protocols in the catalog.
func CanonicalBridges() []string {
	names := make([]string, len(catalog))
	for i, b := range catalog {
		names[i] = b.Name
	}
	return names
}

// RouteClient discovers bridge options. With a base URL it queries an
// aggregator API and surfaces errors to the caller; without one it serves
// the static catalog filtered by a seeded support heuristic and never fails.
type RouteClient struct {
	baseURL string
	client  *http.Client

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRouteClient creates a route client. baseURL may be empty for catalog
// mode. The rng drives the synthetic chain-support filter and must be
// seeded by the caller so tests stay deterministic.
func NewRouteClient(baseURL string, rng *rand.Rand) *RouteClient {
	return &RouteClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		rng:     rng,
	}
}

// Options returns the bridge protocols usable for the chain pair. The
// result may be empty; chain support is heuristic, not chain-accurate.
func (c *RouteClient) Options(ctx context.Context, fromChain, toChain, token string) ([]BridgeOption, error) {
	if c.baseURL != "" {
		return c.fetch(ctx, fromChain, toChain, token)
	}
	return c.staticOptions(fromChain, toChain), nil
}

func (c *RouteClient) fetch(ctx context.Context, fromChain, toChain, token string) ([]BridgeOption, error) {
	q := url.Values{}
	q.Set("fromChain", fromChain)
	q.Set("toChain", toChain)
	q.Set("token", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/routes?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create routes request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ProviderFailuresTotal.WithLabelValues("routes").Inc()
		return nil, fmt.Errorf("fetch routes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderFailuresTotal.WithLabelValues("routes").Inc()
		return nil, fmt.Errorf("routes API returned status %d", resp.StatusCode)
	}

	var result struct {
		Options []BridgeOption `json:"options"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		metrics.ProviderFailuresTotal.WithLabelValues("routes").Inc()
		return nil, fmt.Errorf("decode routes response: %w", err)
	}

	logging.L(ctx).Debug("fetched bridge options", "count", len(result.Options),
		"from", fromChain, "to", toChain)
	return result.Options, nil
}

// staticOptions filters the catalog by a synthetic support heuristic:
// the two reference corridors are always supported, every other pair has a
// 70% chance per bridge. An empty filter result degrades to the first two
// catalog entries so discovery never comes back empty-handed.
func (c *RouteClient) staticOptions(fromChain, toChain string) []BridgeOption {
	var supported []BridgeOption
	for _, b := range catalog {
		if c.supports(fromChain, toChain) {
			supported = append(supported, b)
		}
	}
	if len(supported) == 0 {
		supported = DefaultOptions()
	}
	return supported
}

func (c *RouteClient) supports(fromChain, toChain string) bool {
	if fromChain == "ethereum" && toChain == "polygon" {
		return true
	}
	if fromChain == "polygon" && toChain == "arbitrum" {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.Float64() > 0.3
}
