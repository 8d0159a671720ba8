package bridge

import (
	"context"
	"fmt"
	"strconv"
)

// GasSource supplies a current gas price in gwei for a chain.
type GasSource interface {
	GasPrice(ctx context.Context, chain string) float64
}

// Cost split proportions. They always sum to 1 so the breakdown
// reconstructs the route total.
const (
	bridgeFeeShare   = 0.70
	gasFeeShare      = 0.25
	protocolFeeShare = 0.05
)

// Time band offsets around a route's estimate, in seconds.
const (
	optimisticLead   = 60
	optimisticFloor  = 30
	pessimisticSlack = 180
)

// Decomposer splits a route's cost into components and derives the
// completion time band.
type Decomposer struct {
	gas GasSource
}

func NewDecomposer(gas GasSource) *Decomposer {
	return &Decomposer{gas: gas}
}

// Decompose breaks route.TotalCost into the fixed-proportion components and
// builds the optimistic/realistic/pessimistic band. gasOverride, when
// non-empty, replaces the live gas price in the report.
func (d *Decomposer) Decompose(ctx context.Context, route BridgeRoute, gasOverride string) (*CostReport, error) {
	total, err := strconv.ParseFloat(route.TotalCost, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid route cost %q: %w", route.TotalCost, err)
	}

	gasPrice := ""
	if gasOverride != "" {
		if _, err := strconv.ParseFloat(gasOverride, 64); err != nil {
			return nil, fmt.Errorf("invalid gas price %q: %w", gasOverride, err)
		}
		gasPrice = gasOverride
	} else {
		gasPrice = strconv.FormatFloat(d.gas.GasPrice(ctx, route.FromChain), 'f', -1, 64)
	}

	optimistic := route.EstimatedTime - optimisticLead
	if optimistic < optimisticFloor {
		optimistic = optimisticFloor
	}
	realistic := route.EstimatedTime
	// Very short routes clamp up so the band stays ordered.
	if realistic < optimistic {
		realistic = optimistic
	}

	return &CostReport{
		CostBreakdown: CostBreakdown{
			BridgeFee:   total * bridgeFeeShare,
			GasFee:      total * gasFeeShare,
			ProtocolFee: total * protocolFeeShare,
			Total:       total,
		},
		TimeEstimate: TimeEstimate{
			Optimistic:  optimistic,
			Realistic:   realistic,
			Pessimistic: route.EstimatedTime + pessimisticSlack,
		},
		GasPrice: gasPrice,
		Recommendations: CostRecommendations{
			BestTimeToExecute: "Now, gas prices are favorable",
			PotentialSavings:  "Use Polygon route to save ~40% on fees",
			RiskFactors:       []string{"Bridge liquidity", "Network congestion"},
		},
	}, nil
}
