package domain

import (
	"context"
	"time"
)

// AuditEntry records the post-mutation state of both wallets of a transfer attempt
type AuditEntry struct {
	Timestamp time.Time
	Sender    WalletSnapshot
	Receiver  WalletSnapshot
}

// AuditLog is an append-only sink for audit entries.
// Append must return only after the entry is durable.
type AuditLog interface {
	Append(ctx context.Context, entry AuditEntry) error
}
