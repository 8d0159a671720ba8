package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ayalabs/ayabridge/internal/logging"
	"github.com/ayalabs/ayabridge/internal/metrics"
)

// YieldPool is one lending/farming pool from the yield feed.
type YieldPool struct {
	Protocol  string  `json:"protocol"`
	APY       float64 `json:"apy"`
	TVL       string  `json:"tvl"`
	Chain     string  `json:"chain"`
	RiskLevel string  `json:"riskLevel"`
}

const defiLlamaPoolsURL = "https://yields.llama.fi/pools"

// fallbackPools is served when the yield feed is unreachable.
var fallbackPools = []YieldPool{
	{Protocol: "Aave", APY: 4.5, TVL: "$12.3B", Chain: "ethereum", RiskLevel: "low"},
	{Protocol: "Compound", APY: 3.8, TVL: "$8.7B", Chain: "ethereum", RiskLevel: "low"},
}

// YieldClient fetches pool data from the DeFiLlama yields API. Pools never
// fails: fetch errors fall back to a fixed two-pool list.
type YieldClient struct {
	baseURL string
	client  *http.Client
}

// NewYieldClient creates a yield feed client. baseURL overrides the
// DeFiLlama endpoint for tests; empty means the public API.
func NewYieldClient(baseURL string) *YieldClient {
	if baseURL == "" {
		baseURL = defiLlamaPoolsURL
	}
	return &YieldClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Pools returns up to 10 pools relevant to the token symbol, risk-labeled
// by APY (>20% high, >10% medium, else low).
func (c *YieldClient) Pools(ctx context.Context, token string) []YieldPool {
	pools, err := c.fetch(ctx, token)
	if err != nil {
		logging.L(ctx).Warn("yield pool fetch failed", "token", token, "error", err)
		metrics.ProviderFailuresTotal.WithLabelValues("yield").Inc()
		return fallbackPools
	}
	if len(pools) == 0 {
		return fallbackPools
	}
	return pools
}

func (c *YieldClient) fetch(ctx context.Context, token string) ([]YieldPool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch pools: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yield API returned status %d", resp.StatusCode)
	}

	var result struct {
		Data []struct {
			Project string  `json:"project"`
			Symbol  string  `json:"symbol"`
			APY     float64 `json:"apy"`
			TVLUsd  float64 `json:"tvlUsd"`
			Chain   string  `json:"chain"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode pools response: %w", err)
	}

	needle := strings.ToLower(token)
	var pools []YieldPool
	for _, p := range result.Data {
		if !strings.Contains(strings.ToLower(p.Symbol), needle) &&
			p.Project != "aave" && p.Project != "compound" {
			continue
		}
		pools = append(pools, YieldPool{
			Protocol:  p.Project,
			APY:       p.APY,
			TVL:       fmt.Sprintf("$%.1fM", p.TVLUsd/1e6),
			Chain:     p.Chain,
			RiskLevel: riskLevelForAPY(p.APY),
		})
		if len(pools) == 10 {
			break
		}
	}
	return pools, nil
}

func riskLevelForAPY(apy float64) string {
	switch {
	case apy > 20:
		return "high"
	case apy > 10:
		return "medium"
	default:
		return "low"
	}
}
