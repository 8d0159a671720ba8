package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/ayalabs/ayabridge/internal/audit"
	"github.com/ayalabs/ayabridge/internal/metrics"
	"github.com/ayalabs/ayabridge/internal/providers"
)

// PauseReceipt acknowledges an emergency pause.
type PauseReceipt struct {
	EmergencyID     string        `json:"emergencyId"`
	Status          string        `json:"status"`
	Reason          string        `json:"reason"`
	AffectedBridges []string      `json:"affectedBridges"`
	PausedAt        int64         `json:"pausedAt"`
	Actions         []string      `json:"actions"`
	Recovery        PauseRecovery `json:"recovery"`
}

// PauseRecovery describes how operations come back after a pause.
type PauseRecovery struct {
	EstimatedResumeTime string `json:"estimatedResumeTime"`
	StatusCheckURL      string `json:"statusCheckUrl"`
	SupportContact      string `json:"supportContact"`
}

// ResumeReceipt acknowledges lifting a pause.
type ResumeReceipt struct {
	Status          string   `json:"status"`
	Reason          string   `json:"reason"`
	ResumedAt       int64    `json:"resumedAt"`
	AffectedBridges []string `json:"affectedBridges"`
}

// Pause is the process-wide emergency stop. While active, every new
// execution is rejected; in-flight status tracking keeps working.
type Pause struct {
	ledger audit.Ledger
	clock  func() time.Time

	mu       sync.RWMutex
	active   bool
	reason   string
	bridges  []string
	pausedAt time.Time
}

func NewPause(ledger audit.Ledger, clock func() time.Time) *Pause {
	if clock == nil {
		clock = time.Now
	}
	return &Pause{ledger: ledger, clock: clock}
}

// Activate pauses operations. bridgeID scopes the announcement to one
// bridge; empty means all. Activation is idempotent and always records an
// audit event with critical severity.
func (p *Pause) Activate(ctx context.Context, reason, bridgeID string) *PauseReceipt {
	affected := providers.CanonicalBridges()
	announced := "all_bridges"
	if bridgeID != "" {
		affected = []string{bridgeID}
		announced = bridgeID
	}

	auditID := audit.Append(ctx, p.ledger, audit.Record{
		Type:     audit.TypeEmergencyPause,
		Severity: "critical",
		Fields: map[string]any{
			"reason":   reason,
			"bridgeId": announced,
			"action":   "pause",
		},
	})

	p.mu.Lock()
	p.active = true
	p.reason = reason
	p.bridges = affected
	p.pausedAt = p.clock()
	pausedAt := p.pausedAt
	p.mu.Unlock()

	metrics.BridgePaused.Set(1)

	return &PauseReceipt{
		EmergencyID:     auditID,
		Status:          "paused",
		Reason:          reason,
		AffectedBridges: affected,
		PausedAt:        pausedAt.UnixMilli(),
		Actions: []string{
			"All pending transactions halted",
			"New bridge requests blocked",
			"Monitoring team alerted",
			"Incident response initiated",
		},
		Recovery: PauseRecovery{
			EstimatedResumeTime: "2-4 hours pending security review",
			StatusCheckURL:      "https://status.ayabridge.io",
			SupportContact:      "support@ayabridge.io",
		},
	}
}

// Resume lifts an active pause. Resuming when not paused is a no-op apart
// from the audit trail.
func (p *Pause) Resume(ctx context.Context, reason string) *ResumeReceipt {
	p.mu.Lock()
	affected := p.bridges
	p.active = false
	p.reason = ""
	p.bridges = nil
	p.mu.Unlock()

	if affected == nil {
		affected = []string{}
	}

	audit.Append(ctx, p.ledger, audit.Record{
		Type:     audit.TypeEmergencyResume,
		Severity: "info",
		Fields: map[string]any{
			"reason": reason,
			"action": "resume",
		},
	})

	metrics.BridgePaused.Set(0)

	return &ResumeReceipt{
		Status:          "resumed",
		Reason:          reason,
		ResumedAt:       p.clock().UnixMilli(),
		AffectedBridges: affected,
	}
}

// Active reports whether the pause is engaged and why.
func (p *Pause) Active() (bool, string) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.active, p.reason
}
