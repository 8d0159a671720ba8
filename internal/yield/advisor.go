// Package yield recommends post-bridge deployment of funds: live pool data
// fused with the yield optimization model into ranked opportunities and a
// suggested allocation.
package yield

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/ayalabs/ayabridge/internal/inference"
	"github.com/ayalabs/ayabridge/internal/logging"
	"github.com/ayalabs/ayabridge/internal/providers"
)

// PoolSource supplies candidate yield pools for a token.
type PoolSource interface {
	Pools(ctx context.Context, token string) []providers.YieldPool
}

// Opportunity is one recommended pool with AI-adjusted expectations.
type Opportunity struct {
	Protocol     string  `json:"protocol"`
	Chain        string  `json:"chain"`
	APY          float64 `json:"apy"`
	PredictedAPY float64 `json:"predictedApy"`
	TVL          string  `json:"tvl"`
	RiskLevel    string  `json:"riskLevel"`
}

// Advice is the full yield report for an amount landing on a chain.
type Advice struct {
	Opportunities     []Opportunity  `json:"opportunities"`
	OptimalAllocation map[string]int `json:"optimalAllocation"` // protocol -> percent
	ProjectedYield    string         `json:"projectedYearlyYield"`
	AverageAPY        float64        `json:"averageApy"`
	RiskDistribution  map[string]int `json:"riskDistribution"`
	AIConfidence      float64        `json:"aiConfidence"`
	FallbackUsed      bool           `json:"fallbackUsed"`
}

// Advisor builds yield recommendations.
type Advisor struct {
	pools    PoolSource
	provider inference.Provider
}

func NewAdvisor(pools PoolSource, provider inference.Provider) *Advisor {
	return &Advisor{pools: pools, provider: provider}
}

// Advise recommends where to deploy amount of token on chain, honoring the
// caller's risk tolerance (conservative, moderate, aggressive). Pool and
// inference degradation never fail the call.
func (a *Advisor) Advise(ctx context.Context, token, chain, amount, riskTolerance string) (*Advice, error) {
	amt, err := strconv.ParseFloat(amount, 64)
	if err != nil || amt < 0 {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}
	if riskTolerance == "" {
		riskTolerance = "moderate"
	}

	pools := a.pools.Pools(ctx, token)
	pools = FilterByRisk(pools, riskTolerance)
	SortByAPY(pools)

	res, err := a.provider.Infer(ctx, inference.Request{
		Model: inference.ModelYieldOptimizer,
		Input: inference.Input{
			Token:         token,
			Chain:         chain,
			Amount:        amt,
			RiskTolerance: riskTolerance,
		},
	})
	if err != nil {
		logging.L(ctx).Warn("yield inference failed, using fallback", "token", token, "error", err)
		res = inference.FallbackResult()
	}

	predicted := map[string]float64{}
	if res.Yield != nil {
		for _, p := range res.Yield.TopProtocols {
			predicted[p.Name] = p.APY
		}
	}

	opportunities := make([]Opportunity, 0, len(pools))
	totalAPY := 0.0
	riskDist := map[string]int{}
	for _, p := range pools {
		predictedAPY, ok := predicted[p.Protocol]
		if !ok {
			predictedAPY = p.APY
		}
		opportunities = append(opportunities, Opportunity{
			Protocol:     p.Protocol,
			Chain:        p.Chain,
			APY:          p.APY,
			PredictedAPY: predictedAPY,
			TVL:          p.TVL,
			RiskLevel:    p.RiskLevel,
		})
		totalAPY += p.APY
		riskDist[p.RiskLevel]++
	}

	averageAPY := 0.0
	if len(opportunities) > 0 {
		averageAPY = totalAPY / float64(len(opportunities))
	}

	return &Advice{
		Opportunities:     opportunities,
		OptimalAllocation: allocationFor(res, riskTolerance),
		ProjectedYield:    fmt.Sprintf("%.2f", amt*averageAPY/100),
		AverageAPY:        averageAPY,
		RiskDistribution:  riskDist,
		AIConfidence:      res.Confidence,
		FallbackUsed:      res.Fallback,
	}, nil
}

// allocationFor picks the model's allocation for the tolerance, defaulting
// to a fixed split when the model offers none.
func allocationFor(res inference.Result, riskTolerance string) map[string]int {
	if res.Yield != nil {
		if alloc, ok := res.Yield.OptimalAllocation[riskTolerance]; ok && len(alloc) > 0 {
			return alloc
		}
	}
	return map[string]int{"aave": 60, "compound": 40}
}

// FilterByRisk drops pools riskier than the tolerance allows. Conservative
// keeps low only, moderate drops high, aggressive keeps everything.
func FilterByRisk(pools []providers.YieldPool, riskTolerance string) []providers.YieldPool {
	var allowed map[string]bool
	switch riskTolerance {
	case "conservative":
		allowed = map[string]bool{"low": true}
	case "aggressive":
		return pools
	default:
		allowed = map[string]bool{"low": true, "medium": true}
	}

	out := pools[:0:0]
	for _, p := range pools {
		if allowed[p.RiskLevel] {
			out = append(out, p)
		}
	}
	return out
}

// SortByAPY orders pools highest APY first, stable on ties.
func SortByAPY(pools []providers.YieldPool) {
	sort.SliceStable(pools, func(i, j int) bool {
		return pools[i].APY > pools[j].APY
	})
}
