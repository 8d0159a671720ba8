package mcpserver

import (
	"context"
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayalabs/ayabridge/internal/audit"
	"github.com/ayalabs/ayabridge/internal/bridge"
	"github.com/ayalabs/ayabridge/internal/gasopt"
	"github.com/ayalabs/ayabridge/internal/inference"
	"github.com/ayalabs/ayabridge/internal/providers"
	"github.com/ayalabs/ayabridge/internal/risk"
	"github.com/ayalabs/ayabridge/internal/tools"
	"github.com/ayalabs/ayabridge/internal/yield"
)

// --- Test helpers ---

type stubOracle struct{}

func (stubOracle) TokenPrice(ctx context.Context, symbol string) float64 { return 1 }
func (stubOracle) GasPrice(ctx context.Context, chain string) float64    { return 25 }

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	ledger := audit.NewMemoryLedger()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	provider, err := inference.NewCached(inference.NewSimulated(rand.New(rand.NewSource(1)), clock), 30*time.Second)
	require.NoError(t, err)

	oracle := stubOracle{}
	pause := bridge.NewPause(ledger, clock)

	registry := tools.NewRegistry(tools.Deps{
		Planner:    bridge.NewPlanner(providers.NewRouteClient("", rand.New(rand.NewSource(2))), oracle, rand.New(rand.NewSource(3))),
		Decomposer: bridge.NewDecomposer(oracle),
		Assessor:   risk.NewAssessor(provider, ledger, rand.New(rand.NewSource(4))),
		Lifecycle:  bridge.NewLifecycle(bridge.NewSimulatedExecutor(clock, 0), ledger, pause, clock),
		Tracker:    bridge.NewTracker(ledger, clock),
		Yield:      yield.NewAdvisor(providers.NewYieldClient("invalid://unreachable"), provider),
		Gas:        gasopt.NewAdvisor(oracle, provider, clock),
		Pause:      pause,
		Clock:      clock,
	})
	return NewHandlers(registry)
}

func makeRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	if args == nil {
		args = map[string]any{}
	}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content, "expected at least one content block")
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return tc.Text
}

// ============================================================
// Handler tests
// ============================================================

func TestHandleAnalyzeRoute(t *testing.T) {
	h := newTestHandlers(t)

	result, err := h.Handle("analyze_bridge_route")(context.Background(), makeRequest(map[string]any{
		"fromChain": "ethereum", "toChain": "polygon", "token": "usdc", "amount": "1000",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			RecommendedRoute bridge.BridgeRoute `json:"recommendedRoute"`
		} `json:"data"`
		Timestamp int64 `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Data.RecommendedRoute.Bridges)
	assert.NotZero(t, resp.Timestamp)
}

func TestHandleValidationFailureIsToolError(t *testing.T) {
	h := newTestHandlers(t)

	result, err := h.Handle("analyze_bridge_route")(context.Background(), makeRequest(map[string]any{
		"fromChain": "ethereum", "toChain": "polygon", "token": "usdc",
	}))
	require.NoError(t, err, "validation failures must not be protocol errors")
	assert.True(t, result.IsError)

	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "amount")
}

func TestHandlePauseFlow(t *testing.T) {
	h := newTestHandlers(t)
	ctx := context.Background()

	result, err := h.Handle("emergency_bridge_pause")(ctx, makeRequest(map[string]any{"reason": "drill"}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "paused")

	result, err = h.Handle("execute_bridge_transaction")(ctx, makeRequest(map[string]any{
		"route": map[string]any{
			"id": "route_0", "estimatedTime": 120, "totalCost": "0.1",
			"bridges": []any{"Stargate"},
		},
		"userAddress": "0x742d35Cc6634C0532925a3b844Bc9e7595f8fA8e",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = h.Handle("resume_bridge_operations")(ctx, makeRequest(map[string]any{"reason": "drill over"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
}

func TestNewMCPServerRegistersAllTools(t *testing.T) {
	h := newTestHandlers(t)
	s := NewMCPServer(h.registry)
	assert.NotNil(t, s)
}
