package server

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayalabs/ayabridge/internal/audit"
	"github.com/ayalabs/ayabridge/internal/bridge"
	"github.com/ayalabs/ayabridge/internal/config"
	"github.com/ayalabs/ayabridge/internal/gasopt"
	"github.com/ayalabs/ayabridge/internal/inference"
	"github.com/ayalabs/ayabridge/internal/providers"
	"github.com/ayalabs/ayabridge/internal/risk"
	"github.com/ayalabs/ayabridge/internal/tools"
	"github.com/ayalabs/ayabridge/internal/yield"
)

type stubOracle struct{}

func (stubOracle) TokenPrice(ctx context.Context, symbol string) float64 { return 1 }
func (stubOracle) GasPrice(ctx context.Context, chain string) float64    { return 25 }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ledger := audit.NewMemoryLedger()
	clock := time.Now

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

	cfg := &config.Config{Port: "8080", Env: "development", LogLevel: "error", LogFormat: "text"}
	return New(cfg, registry, nil)
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ayabridge")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestToolsEndpoint(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, http.MethodGet, "/tools", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Tools []tools.Descriptor `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Tools, 9)
}

func TestInvokeEndpoint(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, http.MethodPost, "/invoke",
		`{"tool":"analyze_bridge_route","arguments":{"fromChain":"ethereum","toChain":"polygon","token":"usdc","amount":"1000"}}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp tools.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success, resp.Error)
	assert.NotNil(t, resp.Data)
}

func TestInvokeFailureEnvelope(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, http.MethodPost, "/invoke", `{"tool":"no_such_tool","arguments":{}}`)
	require.Equal(t, http.StatusOK, w.Code, "envelope failures are not transport failures")

	var resp tools.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "unknown tool")
}

func TestInvokeBadBody(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, http.MethodPost, "/invoke", `{"arguments":{}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
