// Package audit appends bridge lifecycle events to an external immutable
// ledger. Appends are strictly observational: no caller may fail because a
// ledger write failed, so the Append helper swallows errors and falls back
// to a locally minted correlation id.
package audit

import (
	"context"
	"time"

	"github.com/ayalabs/ayabridge/internal/idgen"
	"github.com/ayalabs/ayabridge/internal/logging"
	"github.com/ayalabs/ayabridge/internal/metrics"
)

// Event types appended by the core engine.
const (
	TypeBridgeInitiated = "bridge_initiated"
	TypeBridgeExecuted  = "bridge_executed"
	TypeBridgeFailed    = "bridge_failed"
	TypeRiskAssessment  = "risk_assessment"
	TypeStatusCheck     = "status_check"
	TypeEmergencyPause  = "emergency_pause"
	TypeEmergencyResume = "emergency_resume"
)

// Record is a single append-only audit event.
type Record struct {
	Type      string         `json:"type"`
	Severity  string         `json:"severity,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Ledger appends an opaque event record and returns a correlation id.
// Implementations may block on network calls; callers go through Append.
type Ledger interface {
	Append(ctx context.Context, rec Record) (string, error)
}

// Append writes rec to the ledger best-effort and always returns a
// correlation id. Failures (including a nil ledger) are logged, counted,
// and replaced by a locally minted id so responses still carry one.
func Append(ctx context.Context, l Ledger, rec Record) string {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	if l == nil {
		return idgen.WithPrefix("audit_")
	}

	id, err := l.Append(ctx, rec)
	if err != nil {
		logging.L(ctx).Warn("audit append failed", "type", rec.Type, "error", err)
		metrics.AuditAppendsTotal.WithLabelValues("failed").Inc()
		return idgen.WithPrefix("audit_")
	}
	metrics.AuditAppendsTotal.WithLabelValues("ok").Inc()
	return id
}
