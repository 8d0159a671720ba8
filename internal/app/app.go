// Package app wires configuration into a runnable engine: the audit
// ledger, market and route providers, inference, and the tool registry.
// Both binaries share this wiring.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

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

// App is the wired engine plus the resources that need closing.
type App struct {
	Registry *tools.Registry

	hedera *audit.HederaLedger
}

// New builds the engine from configuration. Unconfigured collaborators get
// their simulated or in-memory counterparts so the binaries always start.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{}
	clock := time.Now

	var ledger audit.Ledger
	if cfg.HederaEnabled() {
		h, err := audit.NewHederaLedger(cfg.HederaNetwork, cfg.HederaAccountID, cfg.HederaPrivateKey)
		if err != nil {
			return nil, fmt.Errorf("hedera ledger: %w", err)
		}
		a.hedera = h
		ledger = h
		logger.Info("audit ledger: hedera", "network", cfg.HederaNetwork)
	} else {
		ledger = audit.NewMemoryLedger()
		logger.Info("audit ledger: in-memory")
	}

	var provider inference.Provider
	if cfg.InferenceEnabled() {
		provider = inference.NewClient(cfg.InferenceBaseURL, cfg.InferenceAPIKey)
		logger.Info("inference provider: remote", "base_url", cfg.InferenceBaseURL)
	} else {
		provider = inference.NewSimulated(rand.New(rand.NewSource(time.Now().UnixNano())), clock)
		logger.Info("inference provider: simulated")
	}
	cached, err := inference.NewCached(provider, cfg.InferenceTTL)
	if err != nil {
		return nil, fmt.Errorf("inference cache: %w", err)
	}

	oracle := providers.NewOracle(cfg.CoinGeckoAPIKey, cfg.EtherscanAPIKey, cfg.MarketCacheTTL)
	routes := providers.NewRouteClient(cfg.RouteAPIURL, rand.New(rand.NewSource(time.Now().UnixNano())))
	pools := providers.NewYieldClient("")
	pause := bridge.NewPause(ledger, clock)
	executor := bridge.NewSimulatedExecutor(clock, time.Second)

	a.Registry = tools.NewRegistry(tools.Deps{
		Planner:    bridge.NewPlanner(routes, oracle, rand.New(rand.NewSource(time.Now().UnixNano()))),
		Decomposer: bridge.NewDecomposer(oracle),
		Assessor:   risk.NewAssessor(cached, ledger, rand.New(rand.NewSource(time.Now().UnixNano()))),
		Lifecycle:  bridge.NewLifecycle(executor, ledger, pause, clock),
		Tracker:    bridge.NewTracker(ledger, clock),
		Yield:      yield.NewAdvisor(pools, cached),
		Gas:        gasopt.NewAdvisor(oracle, cached, clock),
		Pause:      pause,
		Clock:      clock,
	})
	return a, nil
}

// Close releases external resources.
func (a *App) Close(ctx context.Context) error {
	if a.hedera != nil {
		return a.hedera.Close()
	}
	return nil
}
