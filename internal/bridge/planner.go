package bridge

import (
	"context"
	"fmt"
	"math/big"
	"math/rand"
	"sort"
	"sync"

	"github.com/ayalabs/ayabridge/internal/logging"
	"github.com/ayalabs/ayabridge/internal/metrics"
	"github.com/ayalabs/ayabridge/internal/providers"
)

// RouteProvider supplies candidate bridge options for a corridor.
type RouteProvider interface {
	Options(ctx context.Context, fromChain, toChain, token string) ([]providers.BridgeOption, error)
}

// PriceSource supplies a spot price in USD for a token symbol.
type PriceSource interface {
	TokenPrice(ctx context.Context, symbol string) float64
}

// perUnitFeeRate is the proportional fee applied to the transfer amount on
// every candidate route.
var perUnitFeeRate = big.NewFloat(0.001)

// fallbackFeeRate prices the conservative single-route plan used when the
// route provider is unreachable.
var fallbackFeeRate = big.NewFloat(0.003)

// Planner ranks candidate routes by total cost.
type Planner struct {
	routes RouteProvider
	prices PriceSource

	mu  sync.Mutex
	rng *rand.Rand
}

func NewPlanner(routes RouteProvider, prices PriceSource, rng *rand.Rand) *Planner {
	return &Planner{routes: routes, prices: prices, rng: rng}
}

// Plan discovers candidate routes for the corridor, prices each one, and
// returns them ranked cheapest-first. A route provider failure degrades to a
// single conservative fallback route rather than an error; only a malformed
// amount fails the call.
func (p *Planner) Plan(ctx context.Context, fromChain, toChain, fromToken, toToken, amount string) (*RoutePlan, error) {
	amt, err := parseAmount(amount)
	if err != nil {
		return nil, err
	}

	tokenPrice := p.prices.TokenPrice(ctx, fromToken)

	options, err := p.routes.Options(ctx, fromChain, toChain, fromToken)
	if err != nil {
		logging.L(ctx).Warn("route provider unavailable, using fallback route",
			"from_chain", fromChain, "to_chain", toChain, "error", err)
		metrics.ProviderFailuresTotal.WithLabelValues("routes").Inc()
		return p.fallbackPlan(fromChain, toChain, fromToken, toToken, amount, amt, tokenPrice), nil
	}
	if len(options) == 0 {
		// An aggregator may legitimately answer with zero options; the plan
		// still has to recommend something.
		logging.L(ctx).Warn("route discovery returned no options, using defaults",
			"from_chain", fromChain, "to_chain", toChain)
		options = providers.DefaultOptions()
	}

	type priced struct {
		route BridgeRoute
		cost  *big.Float
	}
	candidates := make([]priced, 0, len(options))
	for i, opt := range options {
		cost := new(big.Float).SetPrec(128).Mul(amt, perUnitFeeRate)
		cost.Add(cost, big.NewFloat(opt.Fees))
		candidates = append(candidates, priced{
			route: BridgeRoute{
				ID:            fmt.Sprintf("route_%d", i),
				FromChain:     fromChain,
				ToChain:       toChain,
				FromToken:     fromToken,
				ToToken:       toToken,
				Amount:        amount,
				EstimatedTime: opt.EstimatedTime,
				TotalCost:     formatDecimal(cost),
				RiskScore:     p.placeholderRisk(),
				Bridges:       []string{opt.Name},
			},
			cost: cost,
		})
	}

	// Stable sort so providers' ordering breaks cost ties deterministically.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].cost.Cmp(candidates[j].cost) < 0
	})

	routes := make([]BridgeRoute, len(candidates))
	totalTime := 0
	for i, c := range candidates {
		routes[i] = c.route
		totalTime += c.route.EstimatedTime
	}

	alternatives := routes[1:]
	if len(alternatives) > 3 {
		alternatives = alternatives[:3]
	}

	return &RoutePlan{
		RecommendedRoute:  routes[0],
		AlternativeRoutes: alternatives,
		Analysis: RouteAnalysis{
			TotalRoutes:    len(routes),
			CheapestFee:    routes[0].TotalCost,
			CheapestFeeUSD: costUSD(candidates[0].cost, tokenPrice),
			AverageTime:    totalTime / len(routes),
			RiskAnalysis:   "Routes evaluated for liquidity and protocol risk",
		},
	}, nil
}

// fallbackPlan builds the single conservative route returned when no live
// route data is available.
func (p *Planner) fallbackPlan(fromChain, toChain, fromToken, toToken, amount string, amt *big.Float, tokenPrice float64) *RoutePlan {
	cost := new(big.Float).SetPrec(128).Mul(amt, fallbackFeeRate)
	route := BridgeRoute{
		ID:            "route_fallback",
		FromChain:     fromChain,
		ToChain:       toChain,
		FromToken:     fromToken,
		ToToken:       toToken,
		Amount:        amount,
		EstimatedTime: 300,
		TotalCost:     formatDecimal(cost),
		RiskScore:     85,
		Bridges:       []string{"Stargate"},
	}
	return &RoutePlan{
		RecommendedRoute:  route,
		AlternativeRoutes: []BridgeRoute{},
		Analysis: RouteAnalysis{
			TotalRoutes:    1,
			CheapestFee:    route.TotalCost,
			CheapestFeeUSD: costUSD(cost, tokenPrice),
			AverageTime:    route.EstimatedTime,
			RiskAnalysis:   "Conservative estimate, live route data unavailable",
		},
	}
}

// placeholderRisk assigns an interim per-route score in [70,100]; the risk
// assessor produces the authoritative score.
func (p *Planner) placeholderRisk() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return 70 + p.rng.Intn(31)
}

func costUSD(cost *big.Float, tokenPrice float64) string {
	usd := new(big.Float).SetPrec(128).Mul(cost, big.NewFloat(tokenPrice))
	return usd.Text('f', 2)
}
