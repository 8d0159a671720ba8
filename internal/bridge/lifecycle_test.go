package bridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayalabs/ayabridge/internal/audit"
)

type stubExecutor struct {
	result ExecutionResult
	err    error
	calls  int
}

func (s *stubExecutor) Execute(ctx context.Context, route BridgeRoute, userAddress string) (ExecutionResult, error) {
	s.calls++
	return s.result, s.err
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var testRoute = BridgeRoute{
	ID:            "route_0",
	FromChain:     "ethereum",
	ToChain:       "polygon",
	FromToken:     "usdc",
	ToToken:       "usdc",
	Amount:        "100",
	EstimatedTime: 120,
	TotalCost:     "0.100500",
	RiskScore:     82,
	Bridges:       []string{"Stargate"},
}

func TestExecuteCreatesRecord(t *testing.T) {
	ledger := audit.NewMemoryLedger()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	exec := &stubExecutor{result: ExecutionResult{TxHash: "0xabc", BridgeTransactionID: "bridge_1_aaaa"}}
	lc := NewLifecycle(exec, ledger, nil, fixedClock(now))

	rec, auditID, err := lc.Execute(context.Background(), testRoute, "0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.NotEmpty(t, auditID)
	assert.Equal(t, "0xabc", rec.FromChainTxHash)
	assert.Equal(t, "bridge_1_aaaa", rec.BridgeTransactionID)
	assert.Nil(t, rec.ToChainTxHash)
	assert.Equal(t, StatusSubmitted, rec.Status)
	assert.Equal(t, now, rec.SubmittedAt)

	stored, ok := lc.Lookup("0xabc")
	require.True(t, ok)
	assert.Equal(t, *rec, stored)

	types := []string{}
	for _, r := range ledger.Records() {
		types = append(types, r.Type)
	}
	assert.Equal(t, []string{audit.TypeBridgeInitiated, audit.TypeBridgeExecuted}, types)
}

func TestExecuteFailureLeavesNoRecord(t *testing.T) {
	ledger := audit.NewMemoryLedger()
	exec := &stubExecutor{err: errors.New("insufficient liquidity")}
	lc := NewLifecycle(exec, ledger, nil, nil)

	rec, auditID, err := lc.Execute(context.Background(), testRoute, "0x1111111111111111111111111111111111111111")
	require.Error(t, err)
	assert.Nil(t, rec)
	assert.NotEmpty(t, auditID, "failed attempts still correlate to the initiation event")
	assert.Contains(t, err.Error(), "insufficient liquidity")
	assert.Equal(t, 0, lc.Count())

	require.Len(t, ledger.ByType(audit.TypeBridgeFailed), 1)
}

func TestExecuteRejectsEmptyBridges(t *testing.T) {
	exec := &stubExecutor{}
	lc := NewLifecycle(exec, audit.NewMemoryLedger(), nil, nil)

	bad := testRoute
	bad.Bridges = nil
	_, _, err := lc.Execute(context.Background(), bad, "0x1111111111111111111111111111111111111111")
	require.Error(t, err)
	assert.Zero(t, exec.calls, "executor must not run for an invalid route")
}

func TestExecuteBlockedWhilePaused(t *testing.T) {
	ledger := audit.NewMemoryLedger()
	pause := NewPause(ledger, nil)
	pause.Activate(context.Background(), "exploit reported", "")

	exec := &stubExecutor{}
	lc := NewLifecycle(exec, ledger, pause, nil)

	_, _, err := lc.Execute(context.Background(), testRoute, "0x1111111111111111111111111111111111111111")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paused")
	assert.Contains(t, err.Error(), "exploit reported")
	assert.Zero(t, exec.calls)

	pause.Resume(context.Background(), "review complete")
	exec.result = ExecutionResult{TxHash: "0xdef", BridgeTransactionID: "bridge_2_bbbb"}
	_, _, err = lc.Execute(context.Background(), testRoute, "0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
}

func TestSimulatedExecutorMintsTrackableHashes(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	exec := NewSimulatedExecutor(fixedClock(now), 0)

	res, err := exec.Execute(context.Background(), testRoute, "0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	assert.Len(t, res.TxHash, 66)
	assert.Equal(t, "0x", res.TxHash[:2])

	got, err := submissionMillis(res.TxHash, now.UnixMilli())
	require.NoError(t, err)
	assert.Equal(t, now.UnixMilli(), got)
}

func TestSimulatedExecutorHonorsCancellation(t *testing.T) {
	exec := NewSimulatedExecutor(nil, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := exec.Execute(ctx, testRoute, "0x1111111111111111111111111111111111111111")
	assert.ErrorIs(t, err, context.Canceled)
}
