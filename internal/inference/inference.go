// Package inference wraps the external AI inference provider that scores
// bridge risk and predicts gas and yield. The provider is fallible and slow
// by assumption; callers go through Cached, which adds a TTL result cache,
// a per-model circuit breaker, and a fixed fallback result so inference
// never fails an invocation.
package inference

import "context"

// Model identifiers selecting the inference kind.
const (
	ModelBridgeRiskScorer = "bridge_risk_scorer"
	ModelGasPredictor     = "gas_predictor"
	ModelYieldOptimizer   = "yield_optimizer"
)

// Input carries the model features. Only the fields relevant to the chosen
// model are set; the zero values of the rest are omitted from the canonical
// serialization. Volatile values (wall-clock timestamps) are deliberately
// excluded so identical requests share a cache entry.
type Input struct {
	// bridge_risk_scorer
	Protocol       string  `json:"protocol,omitempty"`
	Amount         float64 `json:"amount,omitempty"`
	FromChain      string  `json:"fromChain,omitempty"`
	ToChain        string  `json:"toChain,omitempty"`
	HistoricalData bool    `json:"historicalData,omitempty"`

	// gas_predictor
	Chain             string  `json:"chain,omitempty"`
	TransactionType   string  `json:"transactionType,omitempty"`
	CurrentGasPrice   float64 `json:"currentGasPrice,omitempty"`
	TimeOfDay         int     `json:"timeOfDay,omitempty"`
	DayOfWeek         int     `json:"dayOfWeek,omitempty"`
	NetworkCongestion float64 `json:"networkCongestion,omitempty"`

	// yield_optimizer
	Token         string `json:"token,omitempty"`
	RiskTolerance string `json:"riskTolerance,omitempty"`
}

// Request selects a model and supplies its input features.
type Request struct {
	Model string `json:"model"`
	Input Input  `json:"input"`
}

// GasPrediction is the gas_predictor output.
type GasPrediction struct {
	OptimalGasPrice float64 `json:"optimalGasPrice"`
	OptimalTime     int64   `json:"optimalTime"` // epoch millis
	Savings         float64 `json:"savings"`
	Confidence      float64 `json:"confidence"`
}

// ProtocolYield is one ranked protocol in the yield_optimizer output.
type ProtocolYield struct {
	Name string  `json:"name"`
	APY  float64 `json:"apy"`
	Risk string  `json:"risk"`
}

// YieldPrediction is the yield_optimizer output. OptimalAllocation maps a
// risk tolerance to protocol percentage weights.
type YieldPrediction struct {
	TopProtocols      []ProtocolYield           `json:"topProtocols"`
	OptimalAllocation map[string]map[string]int `json:"optimalAllocation"`
}

// Result is the provider output; which fields are set depends on the model.
type Result struct {
	RiskScore      float64          `json:"riskScore,omitempty"`
	Confidence     float64          `json:"confidence,omitempty"`
	Gas            *GasPrediction   `json:"gasPrediction,omitempty"`
	Yield          *YieldPrediction `json:"yieldPrediction,omitempty"`
	ProcessingTime string           `json:"processingTime,omitempty"`
	Fallback       bool             `json:"fallback,omitempty"`
}

// Provider runs one inference request. Implementations may block on network
// calls and may fail outright.
type Provider interface {
	Infer(ctx context.Context, req Request) (Result, error)
}

// FallbackResult is returned (and cached) when the provider is unavailable.
func FallbackResult() Result {
	return Result{
		RiskScore:      80,
		Confidence:     0.5,
		ProcessingTime: "500ms",
		Fallback:       true,
	}
}
