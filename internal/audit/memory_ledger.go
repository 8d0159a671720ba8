package audit

import (
	"context"
	"fmt"
	"sync"
)

// MemoryLedger stores audit records in memory for demo mode and testing.
type MemoryLedger struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemoryLedger creates an in-memory audit ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{}
}

// Append stores the record and returns a sequence-based correlation id.
func (l *MemoryLedger) Append(_ context.Context, rec Record) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
	return fmt.Sprintf("mem-%d", len(l.records)), nil
}

// Records returns a copy of all stored records.
func (l *MemoryLedger) Records() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// ByType returns stored records matching the given event type.
func (l *MemoryLedger) ByType(eventType string) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Record
	for _, r := range l.records {
		if r.Type == eventType {
			out = append(out, r)
		}
	}
	return out
}
