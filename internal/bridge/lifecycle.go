package bridge

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ayalabs/ayabridge/internal/audit"
	"github.com/ayalabs/ayabridge/internal/idgen"
	"github.com/ayalabs/ayabridge/internal/logging"
	"github.com/ayalabs/ayabridge/internal/metrics"
)

// ExecutionResult is what an Executor returns on success: the source-chain
// transaction hash and the bridge-level transaction id.
type ExecutionResult struct {
	TxHash              string
	BridgeTransactionID string
}

// Executor submits a route for execution. Implementations must either
// return a fully populated result or an error, never a partial submission.
type Executor interface {
	Execute(ctx context.Context, route BridgeRoute, userAddress string) (ExecutionResult, error)
}

// SimulatedExecutor mints transaction identifiers locally after a short
// simulated submission delay. The submission time is embedded in the hash
// so the tracker can recover it later.
type SimulatedExecutor struct {
	clock func() time.Time
	delay time.Duration
}

func NewSimulatedExecutor(clock func() time.Time, delay time.Duration) *SimulatedExecutor {
	if clock == nil {
		clock = time.Now
	}
	return &SimulatedExecutor{clock: clock, delay: delay}
}

func (e *SimulatedExecutor) Execute(ctx context.Context, route BridgeRoute, userAddress string) (ExecutionResult, error) {
	if e.delay > 0 {
		select {
		case <-time.After(e.delay):
		case <-ctx.Done():
			return ExecutionResult{}, ctx.Err()
		}
	}
	now := e.clock()
	return ExecutionResult{
		TxHash:              idgen.TxHash(now),
		BridgeTransactionID: idgen.BridgeTransactionID(now),
	}, nil
}

const pausedMsg = "bridge operations are paused"

// Lifecycle runs executions end to end: pause gating, the audit trail
// around submission, and the transaction record store. Records are never
// deleted.
type Lifecycle struct {
	exec   Executor
	ledger audit.Ledger
	pause  *Pause
	clock  func() time.Time

	mu      sync.RWMutex
	records map[string]*TransactionRecord // keyed by fromChainTxHash
}

func NewLifecycle(exec Executor, ledger audit.Ledger, pause *Pause, clock func() time.Time) *Lifecycle {
	if clock == nil {
		clock = time.Now
	}
	return &Lifecycle{
		exec:    exec,
		ledger:  ledger,
		pause:   pause,
		clock:   clock,
		records: make(map[string]*TransactionRecord),
	}
}

// Execute validates the route, records the initiation, submits it, and on
// success creates the transaction record in state submitted. The returned
// audit id correlates the whole attempt. On failure no record is created.
func (l *Lifecycle) Execute(ctx context.Context, route BridgeRoute, userAddress string) (*TransactionRecord, string, error) {
	if len(route.Bridges) == 0 {
		return nil, "", fmt.Errorf("route %s has no bridges", route.ID)
	}
	if l.pause != nil {
		if active, reason := l.pause.Active(); active {
			metrics.ExecutionsTotal.WithLabelValues("blocked").Inc()
			return nil, "", fmt.Errorf("%s: %s", pausedMsg, reason)
		}
	}

	auditID := audit.Append(ctx, l.ledger, audit.Record{
		Type:     audit.TypeBridgeInitiated,
		Severity: "info",
		Fields: map[string]any{
			"userAddress":   userAddress,
			"fromChain":     route.FromChain,
			"toChain":       route.ToChain,
			"amount":        route.Amount,
			"bridges":       strings.Join(route.Bridges, ","),
			"estimatedCost": route.TotalCost,
		},
	})

	res, err := l.exec.Execute(ctx, route, userAddress)
	if err != nil {
		audit.Append(ctx, l.ledger, audit.Record{
			Type:     audit.TypeBridgeFailed,
			Severity: "error",
			Fields: map[string]any{
				"userAddress": userAddress,
				"routeId":     route.ID,
				"error":       err.Error(),
			},
		})
		metrics.ExecutionsTotal.WithLabelValues("failed").Inc()
		return nil, auditID, fmt.Errorf("bridge execution failed: %w", err)
	}

	audit.Append(ctx, l.ledger, audit.Record{
		Type:     audit.TypeBridgeExecuted,
		Severity: "info",
		Fields: map[string]any{
			"txHash":     res.TxHash,
			"status":     string(StatusSubmitted),
			"auditLogId": auditID,
		},
	})

	rec := &TransactionRecord{
		BridgeTransactionID: res.BridgeTransactionID,
		FromChainTxHash:     res.TxHash,
		ToChainTxHash:       nil,
		UserAddress:         userAddress,
		Route:               route,
		SubmittedAt:         l.clock(),
		Status:              StatusSubmitted,
	}

	l.mu.Lock()
	l.records[res.TxHash] = rec
	l.mu.Unlock()

	metrics.ExecutionsTotal.WithLabelValues("ok").Inc()
	logging.L(ctx).Info("bridge execution submitted",
		"tx_hash", res.TxHash, "bridge_tx_id", res.BridgeTransactionID,
		"from_chain", route.FromChain, "to_chain", route.ToChain)

	recCopy := *rec
	return &recCopy, auditID, nil
}

// Lookup returns a copy of the record for a source-chain hash.
func (l *Lifecycle) Lookup(txHash string) (TransactionRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rec, ok := l.records[txHash]
	if !ok {
		return TransactionRecord{}, false
	}
	return *rec, true
}

// Count reports the number of records ever created.
func (l *Lifecycle) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}
