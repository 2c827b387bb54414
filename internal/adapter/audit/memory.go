// Package audit provides implementations of domain.AuditLog.
package audit

import (
	"context"
	"sync"

	"github.com/simaogato/walletflow-backend/internal/domain"
)

// MemoryLog keeps audit entries in memory.
// A non-nil Err makes every Append fail without recording.
type MemoryLog struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	Err     error
}

// NewMemoryLog creates an empty in-memory audit log
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// Append records the entry
func (l *MemoryLog) Append(ctx context.Context, entry domain.AuditEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Err != nil {
		return l.Err
	}
	l.entries = append(l.entries, entry)
	return nil
}

// Entries returns a copy of the recorded entries
func (l *MemoryLog) Entries() []domain.AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// SetErr changes the failure injected into Append
func (l *MemoryLog) SetErr(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Err = err
}
