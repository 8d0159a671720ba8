package bridge

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ayalabs/ayabridge/internal/audit"
)

// Display statuses derived by the tracker. They are coarser than
// RecordStatus: the external view never distinguishes confirmed from
// bridging.
const (
	DisplayPending   = "pending"
	DisplayConfirmed = "confirmed"
	DisplayCompleted = "completed"
	DisplayFailed    = "failed"
)

const (
	// RequiredConfirmations is the source-chain confirmation target.
	RequiredConfirmations = 12

	// expectedDurationMillis is the assumed end-to-end transfer time that
	// progress is measured against.
	expectedDurationMillis = 300_000

	// Milestone offsets from submission, in millis. Each is reported only
	// once the corresponding progress threshold is crossed.
	confirmedOffsetMillis     = 60_000
	bridgeStartedOffsetMillis = 120_000
	completedOffsetMillis     = 280_000
)

// Tracker derives a transaction's status from elapsed time since
// submission. It holds no per-transaction state: the submission instant is
// recovered from the trailing bytes of the hash itself, so any hash minted
// by the executor can be tracked by any process.
type Tracker struct {
	ledger audit.Ledger
	clock  func() time.Time
}

func NewTracker(ledger audit.Ledger, clock func() time.Time) *Tracker {
	if clock == nil {
		clock = time.Now
	}
	return &Tracker{ledger: ledger, clock: clock}
}

// Track derives the current snapshot for txHash. Successive calls never
// move progress backwards as long as the clock does not.
func (t *Tracker) Track(ctx context.Context, txHash, fromChain string) (*StatusSnapshot, error) {
	now := t.clock().UnixMilli()
	submitted, err := submissionMillis(txHash, now)
	if err != nil {
		return nil, err
	}

	age := now - submitted
	if age < 0 {
		age = 0
	}
	progress := float64(age) / expectedDurationMillis * 100
	if progress > 100 {
		progress = 100
	}

	status := DisplayPending
	switch {
	case progress < 25:
		status = DisplayPending
	case progress < 75:
		status = DisplayConfirmed
	default:
		status = DisplayCompleted
	}

	confirmations := int(progress / 8)
	if confirmations > RequiredConfirmations {
		confirmations = RequiredConfirmations
	}

	remaining := int64(expectedDurationMillis) - age
	if remaining < 0 {
		remaining = 0
	}

	snap := &StatusSnapshot{
		Status:                status,
		Confirmations:         confirmations,
		RequiredConfirmations: RequiredConfirmations,
		ProgressPercent:       int(progress),
		EstimatedCompletion:   now + remaining,
		ToChain:               destinationFor(fromChain),
		SubmittedAt:           submitted,
	}
	if progress > 25 {
		snap.ConfirmedAt = millisPtr(submitted + confirmedOffsetMillis)
	}
	if progress > 50 {
		snap.BridgeStartedAt = millisPtr(submitted + bridgeStartedOffsetMillis)
	}
	if progress > 90 {
		snap.CompletedAt = millisPtr(submitted + completedOffsetMillis)
	}

	audit.Append(ctx, t.ledger, audit.Record{
		Type:     audit.TypeStatusCheck,
		Severity: "info",
		Fields: map[string]any{
			"txHash":    txHash,
			"fromChain": fromChain,
			"status":    status,
		},
	})

	return snap, nil
}

// submissionMillis recovers the submission instant embedded by the executor
// in the trailing eight hex digits of the hash. Only the low 32 bits are
// embedded; the high bits come from the current clock, choosing the most
// recent instant not after now.
func submissionMillis(txHash string, nowMillis int64) (int64, error) {
	if len(txHash) < 8 {
		return 0, fmt.Errorf("transaction hash %q too short", txHash)
	}
	low, err := strconv.ParseUint(txHash[len(txHash)-8:], 16, 32)
	if err != nil {
		return 0, fmt.Errorf("transaction hash %q has no embedded timestamp: %w", txHash, err)
	}
	candidate := (nowMillis &^ 0xFFFFFFFF) | int64(low)
	if candidate > nowMillis {
		candidate -= 1 << 32
	}
	return candidate, nil
}

func destinationFor(fromChain string) string {
	if fromChain == "ethereum" {
		return "polygon"
	}
	return "ethereum"
}

func millisPtr(v int64) *int64 {
	return &v
}
