// Package bridge implements the route evaluation and transaction-lifecycle
// tracking engine: route discovery and ranking, cost decomposition, the
// execution lifecycle, elapsed-time status derivation, and the emergency
// pause control.
package bridge

import (
	"fmt"
	"math/big"
	"time"
)

// RecordStatus is the lifecycle state of an executed transaction:
// submitted → confirmed → bridging → completed, with failed terminal from
// any non-terminal state.
type RecordStatus string

const (
	StatusSubmitted RecordStatus = "submitted"
	StatusConfirmed RecordStatus = "confirmed"
	StatusBridging  RecordStatus = "bridging"
	StatusCompleted RecordStatus = "completed"
	StatusFailed    RecordStatus = "failed"
)

// BridgeRoute is a candidate or chosen transfer plan. Immutable once built.
// Amount and TotalCost are decimal strings and are never narrowed to a
// fixed-width number.
type BridgeRoute struct {
	ID            string   `json:"id"`
	FromChain     string   `json:"fromChain"`
	ToChain       string   `json:"toChain"`
	FromToken     string   `json:"fromToken"`
	ToToken       string   `json:"toToken"`
	Amount        string   `json:"amount"`
	EstimatedTime int      `json:"estimatedTime"` // seconds
	TotalCost     string   `json:"totalCost"`
	RiskScore     int      `json:"riskScore"` // 0-100
	Bridges       []string `json:"bridges"`   // ordered, non-empty
}

// RouteAnalysis summarizes a planning run.
type RouteAnalysis struct {
	TotalRoutes    int    `json:"totalRoutes"`
	CheapestFee    string `json:"cheapestFee"`
	CheapestFeeUSD string `json:"cheapestFeeUsd"`
	AverageTime    int    `json:"averageTime"`
	RiskAnalysis   string `json:"riskAnalysis"`
}

// RoutePlan is the planner output: the cheapest route, up to three
// alternatives, and the analysis summary.
type RoutePlan struct {
	RecommendedRoute  BridgeRoute   `json:"recommendedRoute"`
	AlternativeRoutes []BridgeRoute `json:"alternativeRoutes"`
	Analysis          RouteAnalysis `json:"analysis"`
}

// CostBreakdown splits a route's total cost into fixed proportions.
type CostBreakdown struct {
	BridgeFee   float64 `json:"bridgeFee"`
	GasFee      float64 `json:"gasFee"`
	ProtocolFee float64 `json:"protocolFee"`
	Total       float64 `json:"total"`
}

// TimeEstimate is a three-point completion band in seconds.
type TimeEstimate struct {
	Optimistic  int `json:"optimistic"`
	Realistic   int `json:"realistic"`
	Pessimistic int `json:"pessimistic"`
}

// CostRecommendations carries advisory context alongside the breakdown.
type CostRecommendations struct {
	BestTimeToExecute string   `json:"bestTimeToExecute"`
	PotentialSavings  string   `json:"potentialSavings"`
	RiskFactors       []string `json:"riskFactors"`
}

// CostReport is the decomposer output.
type CostReport struct {
	CostBreakdown   CostBreakdown       `json:"costBreakdown"`
	TimeEstimate    TimeEstimate        `json:"timeEstimate"`
	GasPrice        string              `json:"gasPrice"`
	Recommendations CostRecommendations `json:"recommendations"`
}

// TransactionRecord is the lifecycle state for one execution. Created at
// execution start, mutated only by the lifecycle and tracker, never deleted.
type TransactionRecord struct {
	BridgeTransactionID string       `json:"bridgeTransactionId"`
	FromChainTxHash     string       `json:"fromChainTxHash"`
	ToChainTxHash       *string      `json:"toChainTxHash"` // nil until delivery
	UserAddress         string       `json:"userAddress"`
	Route               BridgeRoute  `json:"route"`
	SubmittedAt         time.Time    `json:"submittedAt"`
	Status              RecordStatus `json:"status"`
}

// StatusSnapshot is derived on every query from elapsed time; it is never
// stored or mutated in place. Timestamps are epoch millis; the optional
// ones are populated only once their progress threshold is crossed.
type StatusSnapshot struct {
	Status                string `json:"status"`
	Confirmations         int    `json:"confirmations"`
	RequiredConfirmations int    `json:"requiredConfirmations"`
	ProgressPercent       int    `json:"progressPercent"`
	EstimatedCompletion   int64  `json:"estimatedCompletion"`
	ToChain               string `json:"toChain"`
	SubmittedAt           int64  `json:"submittedAt"`
	ConfirmedAt           *int64 `json:"confirmedAt,omitempty"`
	BridgeStartedAt       *int64 `json:"bridgeStartedAt,omitempty"`
	CompletedAt           *int64 `json:"completedAt,omitempty"`
}

// parseAmount parses a non-negative decimal string at 128-bit precision.
func parseAmount(s string) (*big.Float, error) {
	f, ok := new(big.Float).SetPrec(128).SetString(s)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if f.Sign() < 0 {
		return nil, fmt.Errorf("amount %q must be non-negative", s)
	}
	return f, nil
}

// formatDecimal renders a cost with six decimal places.
func formatDecimal(f *big.Float) string {
	return f.Text('f', 6)
}
