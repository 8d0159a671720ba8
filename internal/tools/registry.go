package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ayalabs/ayabridge/internal/bridge"
	"github.com/ayalabs/ayabridge/internal/gasopt"
	"github.com/ayalabs/ayabridge/internal/logging"
	"github.com/ayalabs/ayabridge/internal/metrics"
	"github.com/ayalabs/ayabridge/internal/risk"
	"github.com/ayalabs/ayabridge/internal/traces"
	"github.com/ayalabs/ayabridge/internal/validation"
	"github.com/ayalabs/ayabridge/internal/yield"
)

// Args are the flat tool arguments as decoded JSON.
type Args map[string]any

// String returns the named argument as a string, "" when absent or not a
// string.
func (a Args) String(key string) string {
	v, _ := a[key].(string)
	return v
}

// Route decodes the named argument as a route object.
func (a Args) Route(key string) (bridge.BridgeRoute, error) {
	var route bridge.BridgeRoute
	raw, ok := a[key]
	if !ok {
		return route, fmt.Errorf("missing required argument %q", key)
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return route, fmt.Errorf("argument %q is not a route object: %w", key, err)
	}
	if err := json.Unmarshal(b, &route); err != nil {
		return route, fmt.Errorf("argument %q is not a route object: %w", key, err)
	}
	return route, nil
}

// Descriptor names a tool for listing surfaces.
type Descriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Registry dispatches tool invocations to the engine components and wraps
// every outcome in the response envelope.
type Registry struct {
	planner    *bridge.Planner
	decomposer *bridge.Decomposer
	assessor   *risk.Assessor
	lifecycle  *bridge.Lifecycle
	tracker    *bridge.Tracker
	yield      *yield.Advisor
	gas        *gasopt.Advisor
	pause      *bridge.Pause
	clock      func() time.Time

	handlers map[string]func(context.Context, Args) Response
}

// Deps are the engine components behind the tool surface.
type Deps struct {
	Planner    *bridge.Planner
	Decomposer *bridge.Decomposer
	Assessor   *risk.Assessor
	Lifecycle  *bridge.Lifecycle
	Tracker    *bridge.Tracker
	Yield      *yield.Advisor
	Gas        *gasopt.Advisor
	Pause      *bridge.Pause
	Clock      func() time.Time
}

func NewRegistry(d Deps) *Registry {
	if d.Clock == nil {
		d.Clock = time.Now
	}
	r := &Registry{
		planner:    d.Planner,
		decomposer: d.Decomposer,
		assessor:   d.Assessor,
		lifecycle:  d.Lifecycle,
		tracker:    d.Tracker,
		yield:      d.Yield,
		gas:        d.Gas,
		pause:      d.Pause,
		clock:      d.Clock,
	}
	r.handlers = map[string]func(context.Context, Args) Response{
		"analyze_bridge_route":       r.analyzeRoute,
		"calculate_bridge_costs":     r.calculateCosts,
		"assess_bridge_risks":        r.assessRisks,
		"execute_bridge_transaction": r.executeTransaction,
		"monitor_bridge_status":      r.monitorStatus,
		"find_yield_opportunities":   r.findYield,
		"optimize_gas_strategy":      r.optimizeGas,
		"emergency_bridge_pause":     r.emergencyPause,
		"resume_bridge_operations":   r.resumeOperations,
	}
	return r
}

// Descriptors lists the available tools in dispatch order.
func (r *Registry) Descriptors() []Descriptor {
	return []Descriptor{
		{"analyze_bridge_route", "Analyze and rank bridge routes between two chains"},
		{"calculate_bridge_costs", "Break a route's cost into components with a completion time band"},
		{"assess_bridge_risks", "AI risk assessment for a bridge protocol and transfer"},
		{"execute_bridge_transaction", "Execute a bridge transfer along a chosen route"},
		{"monitor_bridge_status", "Track a bridge transaction's progress"},
		{"find_yield_opportunities", "Find yield opportunities for bridged funds"},
		{"optimize_gas_strategy", "Predict the optimal gas window for a chain"},
		{"emergency_bridge_pause", "Pause bridge operations in an emergency"},
		{"resume_bridge_operations", "Resume bridge operations after a pause"},
	}
}

// Dispatch runs one tool invocation. Unknown tools, validation failures,
// component errors, and panics all come back as failure envelopes; Dispatch
// itself never panics.
func (r *Registry) Dispatch(ctx context.Context, tool string, args Args) (resp Response) {
	start := r.clock()
	ctx, span := traces.StartSpan(ctx, "tool."+tool, traces.Tool(tool))
	defer span.End()

	defer func() {
		if rec := recover(); rec != nil {
			logging.L(ctx).Error("tool handler panicked", "tool", tool, "panic", rec)
			resp = fail(fmt.Sprintf("internal error in %s", tool), r.clock())
		}
		outcome := "ok"
		if !resp.Success {
			outcome = "error"
		}
		metrics.ToolInvocationsTotal.WithLabelValues(tool, outcome).Inc()
		metrics.ToolDuration.WithLabelValues(tool).Observe(time.Since(start).Seconds())
	}()

	h, ok := r.handlers[tool]
	if !ok {
		return fail(fmt.Sprintf("unknown tool %q", tool), r.clock())
	}
	return h(ctx, args)
}

func (r *Registry) analyzeRoute(ctx context.Context, args Args) Response {
	fromChain := validation.NormalizeChain(args.String("fromChain"))
	toChain := validation.NormalizeChain(args.String("toChain"))
	token := args.String("token")
	amount := args.String("amount")

	if errs := validation.Validate(
		validation.Required("fromChain", fromChain),
		validation.ValidChain("fromChain", fromChain),
		validation.Required("toChain", toChain),
		validation.ValidChain("toChain", toChain),
		validation.Required("token", token),
		validation.Required("amount", amount),
		validation.ValidAmount("amount", amount),
	); len(errs) > 0 {
		return fail(errs.Error(), r.clock())
	}

	plan, err := r.planner.Plan(ctx, fromChain, toChain, token, token, amount)
	if err != nil {
		return fail(err.Error(), r.clock())
	}
	return ok(plan, r.clock())
}

func (r *Registry) calculateCosts(ctx context.Context, args Args) Response {
	route, err := args.Route("route")
	if err != nil {
		return fail(err.Error(), r.clock())
	}
	report, err := r.decomposer.Decompose(ctx, route, args.String("gasPrice"))
	if err != nil {
		return fail(err.Error(), r.clock())
	}
	return ok(report, r.clock())
}

func (r *Registry) assessRisks(ctx context.Context, args Args) Response {
	protocol := args.String("protocol")
	amount := args.String("amount")
	fromChain := validation.NormalizeChain(args.String("fromChain"))
	toChain := validation.NormalizeChain(args.String("toChain"))

	if errs := validation.Validate(
		validation.Required("protocol", protocol),
		validation.Required("amount", amount),
		validation.ValidAmount("amount", amount),
		validation.Required("fromChain", fromChain),
		validation.ValidChain("fromChain", fromChain),
		validation.Required("toChain", toChain),
		validation.ValidChain("toChain", toChain),
	); len(errs) > 0 {
		return fail(errs.Error(), r.clock())
	}

	a, err := r.assessor.Assess(ctx, protocol, amount, fromChain, toChain)
	if err != nil {
		return fail(err.Error(), r.clock())
	}

	return ok(map[string]any{
		"assessment": map[string]any{
			"score":          a.RiskScore,
			"riskLevel":      a.RiskLevel,
			"confidence":     a.AIAnalysis.Confidence,
			"factors":        a.Factors,
			"recommendation": a.Recommendations[0],
		},
		"aiAnalysis":      a.AIAnalysis,
		"recommendations": a.Recommendations,
		"auditLogId":      a.AuditLogID,
	}, r.clock())
}

func (r *Registry) executeTransaction(ctx context.Context, args Args) Response {
	route, err := args.Route("route")
	if err != nil {
		return fail(err.Error(), r.clock())
	}
	userAddress := args.String("userAddress")
	if errs := validation.Validate(
		validation.Required("userAddress", userAddress),
		validation.ValidAddress("userAddress", userAddress),
	); len(errs) > 0 {
		return fail(errs.Error(), r.clock())
	}

	rec, auditID, err := r.lifecycle.Execute(ctx, route, userAddress)
	if err != nil {
		return fail(err.Error(), r.clock())
	}

	return ok(map[string]any{
		"transactionHash":     rec.FromChainTxHash,
		"status":              "pending",
		"estimatedCompletion": rec.SubmittedAt.UnixMilli() + int64(route.EstimatedTime)*1000,
		"tracking": map[string]any{
			"auditLogId":  auditID,
			"bridgeId":    rec.BridgeTransactionID,
			"fromChainTx": rec.FromChainTxHash,
			"toChainTx":   nil,
		},
		"nextSteps": []string{
			"Monitor progress with monitor_bridge_status",
			"Funds arrive at the destination address on completion",
			"Keep the transaction hash for support inquiries",
		},
	}, r.clock())
}

func (r *Registry) monitorStatus(ctx context.Context, args Args) Response {
	txHash := args.String("txHash")
	fromChain := validation.NormalizeChain(args.String("fromChain"))

	if errs := validation.Validate(
		validation.Required("txHash", txHash),
		validation.ValidTxHash("txHash", txHash),
		validation.Required("fromChain", fromChain),
		validation.ValidChain("fromChain", fromChain),
	); len(errs) > 0 {
		return fail(errs.Error(), r.clock())
	}

	snap, err := r.tracker.Track(ctx, txHash, fromChain)
	if err != nil {
		return fail(err.Error(), r.clock())
	}

	return ok(map[string]any{
		"status":                snap.Status,
		"confirmations":         snap.Confirmations,
		"requiredConfirmations": snap.RequiredConfirmations,
		"estimatedCompletion":   snap.EstimatedCompletion,
		"bridgeDetails": map[string]any{
			"fromChain": fromChain,
			"toChain":   snap.ToChain,
			"progress":  snap.ProgressPercent,
			"steps":     transferSteps(snap),
		},
	}, r.clock())
}

func (r *Registry) findYield(ctx context.Context, args Args) Response {
	token := args.String("token")
	amount := args.String("amount")
	riskTolerance := args.String("riskTolerance")

	errs := validation.Validate(
		validation.Required("token", token),
		validation.Required("amount", amount),
		validation.ValidAmount("amount", amount),
	)
	switch riskTolerance {
	case "", "conservative", "moderate", "aggressive":
	default:
		errs = append(errs, validation.ValidationError{
			Field:   "riskTolerance",
			Message: "must be conservative, moderate, or aggressive",
		})
	}
	if len(errs) > 0 {
		return fail(errs.Error(), r.clock())
	}

	advice, err := r.yield.Advise(ctx, token, "", amount, riskTolerance)
	if err != nil {
		return fail(err.Error(), r.clock())
	}

	amt, _ := strconv.ParseFloat(amount, 64)
	yearly := amt * advice.AverageAPY / 100
	return ok(map[string]any{
		"opportunities": advice.Opportunities,
		"aiRecommendation": map[string]any{
			"strategy":          strategyFor(riskTolerance),
			"optimalAllocation": advice.OptimalAllocation,
			"projectedYield": map[string]string{
				"daily":   fmt.Sprintf("%.2f", yearly/365),
				"monthly": fmt.Sprintf("%.2f", yearly/12),
				"yearly":  fmt.Sprintf("%.2f", yearly),
			},
		},
		"marketAnalysis": map[string]any{
			"averageAPY":       advice.AverageAPY,
			"riskDistribution": advice.RiskDistribution,
			"recommendation":   yieldRecommendation(advice.AverageAPY),
		},
	}, r.clock())
}

func (r *Registry) optimizeGas(ctx context.Context, args Args) Response {
	chain := validation.NormalizeChain(args.String("chain"))
	if errs := validation.Validate(
		validation.Required("chain", chain),
		validation.ValidChain("chain", chain),
	); len(errs) > 0 {
		return fail(errs.Error(), r.clock())
	}

	advice := r.gas.Advise(ctx, chain, args.String("transactionType"))

	return ok(map[string]any{
		"currentGasPrice": advice.CurrentGasPrice,
		"optimizedStrategy": map[string]any{
			"recommendedGasPrice":  advice.PredictedOptimal.GasPrice,
			"optimalExecutionTime": advice.PredictedOptimal.Time,
			"estimatedSavings":     advice.PredictedOptimal.Savings,
			"confidence":           advice.MLInsights.Confidence,
		},
		"marketAnalysis": map[string]any{
			"trend":          advice.Trend,
			"volatility":     "medium",
			"recommendation": gasRecommendation(advice.Trend),
		},
		"mlInsights": advice.MLInsights,
	}, r.clock())
}

func (r *Registry) emergencyPause(ctx context.Context, args Args) Response {
	reason := args.String("reason")
	if errs := validation.Validate(
		validation.Required("reason", reason),
	); len(errs) > 0 {
		return fail(errs.Error(), r.clock())
	}
	receipt := r.pause.Activate(ctx, reason, args.String("bridgeId"))
	return ok(receipt, r.clock())
}

func (r *Registry) resumeOperations(ctx context.Context, args Args) Response {
	reason := args.String("reason")
	if errs := validation.Validate(
		validation.Required("reason", reason),
	); len(errs) > 0 {
		return fail(errs.Error(), r.clock())
	}
	receipt := r.pause.Resume(ctx, reason)
	return ok(receipt, r.clock())
}

// transferSteps renders the four-stage progress view from a snapshot.
func transferSteps(snap *bridge.StatusSnapshot) []map[string]string {
	stage := func(done bool, prevDone bool) string {
		switch {
		case done:
			return "completed"
		case prevDone:
			return "in_progress"
		default:
			return "pending"
		}
	}
	confirmed := snap.ConfirmedAt != nil
	started := snap.BridgeStartedAt != nil
	completed := snap.CompletedAt != nil
	return []map[string]string{
		{"step": "Transaction Submitted", "status": "completed"},
		{"step": "Source Chain Confirmation", "status": stage(confirmed, true)},
		{"step": "Bridge Transfer", "status": stage(started, confirmed)},
		{"step": "Destination Delivery", "status": stage(completed, started)},
	}
}

func strategyFor(riskTolerance string) string {
	switch riskTolerance {
	case "conservative":
		return "Capital preservation, blue-chip lending only"
	case "aggressive":
		return "Yield maximization across higher-risk vaults"
	default:
		return "Balanced lending with selective vault exposure"
	}
}

func yieldRecommendation(averageAPY float64) string {
	if averageAPY > 10 {
		return "Favorable yield environment, deploy promptly"
	}
	return "Yields are modest, ladder deployments over time"
}

func gasRecommendation(trend string) string {
	if trend == "decreasing" {
		return "Wait for the predicted window before executing"
	}
	return "Execute now, conditions are unlikely to improve"
}
