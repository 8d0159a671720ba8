package bridge

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayalabs/ayabridge/internal/providers"
)

type fakeRoutes struct {
	options []providers.BridgeOption
	err     error
}

func (f *fakeRoutes) Options(ctx context.Context, fromChain, toChain, token string) ([]providers.BridgeOption, error) {
	return f.options, f.err
}

type fakePrices struct{ price float64 }

func (f *fakePrices) TokenPrice(ctx context.Context, symbol string) float64 { return f.price }

func testPlanner(routes RouteProvider) *Planner {
	return NewPlanner(routes, &fakePrices{price: 2200}, rand.New(rand.NewSource(1)))
}

func TestPlanRanksByCost(t *testing.T) {
	p := testPlanner(&fakeRoutes{options: []providers.BridgeOption{
		{Name: "Stargate", EstimatedTime: 120, Fees: 0.0005, Liquidity: "high"},
		{Name: "Hop", EstimatedTime: 600, Fees: 0.0002, Liquidity: "high"},
		{Name: "Across", EstimatedTime: 300, Fees: 0.0003, Liquidity: "medium"},
	}})

	plan, err := p.Plan(context.Background(), "ethereum", "polygon", "usdc", "usdc", "100")
	require.NoError(t, err)

	all := append([]BridgeRoute{plan.RecommendedRoute}, plan.AlternativeRoutes...)
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		prev, _ := strconv.ParseFloat(all[i-1].TotalCost, 64)
		cur, _ := strconv.ParseFloat(all[i].TotalCost, 64)
		assert.LessOrEqual(t, prev, cur, "routes must be sorted by cost")
	}
	assert.Equal(t, []string{"Hop"}, plan.RecommendedRoute.Bridges)
	assert.Equal(t, 3, plan.Analysis.TotalRoutes)
	assert.Equal(t, plan.RecommendedRoute.TotalCost, plan.Analysis.CheapestFee)
}

func TestPlanCostIsAmountProportionalPlusFees(t *testing.T) {
	p := testPlanner(&fakeRoutes{options: []providers.BridgeOption{
		{Name: "Stargate", EstimatedTime: 120, Fees: 0.0005},
	}})

	plan, err := p.Plan(context.Background(), "ethereum", "polygon", "usdc", "usdc", "1000")
	require.NoError(t, err)

	// 1000 * 0.001 + 0.0005
	assert.Equal(t, "1.000500", plan.RecommendedRoute.TotalCost)
}

func TestPlanTieBreakPreservesProviderOrder(t *testing.T) {
	p := testPlanner(&fakeRoutes{options: []providers.BridgeOption{
		{Name: "First", EstimatedTime: 120, Fees: 0.0003},
		{Name: "Second", EstimatedTime: 300, Fees: 0.0003},
	}})

	plan, err := p.Plan(context.Background(), "ethereum", "polygon", "usdc", "usdc", "50")
	require.NoError(t, err)
	assert.Equal(t, []string{"First"}, plan.RecommendedRoute.Bridges)
	assert.Equal(t, []string{"Second"}, plan.AlternativeRoutes[0].Bridges)
}

func TestPlanLimitsAlternatives(t *testing.T) {
	opts := make([]providers.BridgeOption, 6)
	for i := range opts {
		opts[i] = providers.BridgeOption{Name: "b" + strconv.Itoa(i), EstimatedTime: 100, Fees: float64(i) * 0.0001}
	}
	p := testPlanner(&fakeRoutes{options: opts})

	plan, err := p.Plan(context.Background(), "ethereum", "arbitrum", "usdt", "usdt", "10")
	require.NoError(t, err)
	assert.Len(t, plan.AlternativeRoutes, 3)
	assert.Equal(t, 6, plan.Analysis.TotalRoutes)
}

func TestPlanFallsBackWhenProviderFails(t *testing.T) {
	p := testPlanner(&fakeRoutes{err: errors.New("upstream down")})

	plan, err := p.Plan(context.Background(), "polygon", "ethereum", "matic", "eth", "1000")
	require.NoError(t, err)

	assert.Equal(t, "route_fallback", plan.RecommendedRoute.ID)
	assert.Equal(t, 300, plan.RecommendedRoute.EstimatedTime)
	assert.Equal(t, 85, plan.RecommendedRoute.RiskScore)
	assert.Equal(t, []string{"Stargate"}, plan.RecommendedRoute.Bridges)
	assert.Equal(t, "3.000000", plan.RecommendedRoute.TotalCost) // 1000 * 0.003
	assert.Empty(t, plan.AlternativeRoutes)
	assert.Equal(t, 1, plan.Analysis.TotalRoutes)
}

func TestPlanEmptyProviderResultUsesDefaults(t *testing.T) {
	p := testPlanner(&fakeRoutes{options: []providers.BridgeOption{}})

	plan, err := p.Plan(context.Background(), "ethereum", "polygon", "usdc", "usdc", "100")
	require.NoError(t, err)

	assert.Equal(t, 2, plan.Analysis.TotalRoutes)
	assert.Equal(t, []string{"Across"}, plan.RecommendedRoute.Bridges, "cheaper default wins")
	assert.Equal(t, "0.100300", plan.RecommendedRoute.TotalCost) // 100 * 0.001 + 0.0003
	require.Len(t, plan.AlternativeRoutes, 1)
	assert.Equal(t, []string{"Stargate"}, plan.AlternativeRoutes[0].Bridges)
}

func TestPlanRejectsBadAmount(t *testing.T) {
	p := testPlanner(&fakeRoutes{options: []providers.BridgeOption{{Name: "Stargate", Fees: 0.0005}}})

	for _, amount := range []string{"", "abc", "-5"} {
		_, err := p.Plan(context.Background(), "ethereum", "polygon", "usdc", "usdc", amount)
		assert.Error(t, err, "amount %q", amount)
	}
}

func TestPlaceholderRiskRange(t *testing.T) {
	p := testPlanner(&fakeRoutes{})
	for i := 0; i < 500; i++ {
		score := p.placeholderRisk()
		if score < 70 || score > 100 {
			t.Fatalf("placeholder risk %d outside [70,100]", score)
		}
	}
}
