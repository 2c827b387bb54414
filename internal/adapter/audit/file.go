package audit

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/simaogato/walletflow-backend/internal/domain"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	separator       = "-----------------------------------"
)

// FileLog appends human-readable audit entries to a file.
// Each entry is written in one call and synced before Append returns.
type FileLog struct {
	mu   sync.Mutex
	path string
}

// NewFileLog creates an audit log that appends to path.
// The file is created on first append.
func NewFileLog(path string) *FileLog {
	return &FileLog{path: path}
}

// Path returns the file the log appends to
func (l *FileLog) Path() string {
	return l.path
}

// Append writes one entry:
//
//	Timestamp: 2026-01-09 10:00:00
//	Wallet ID: <id> (Owner: <owner>) Balance: 500.00
//	Wallet ID: <id> (Owner: <owner>) Balance: 500.00
//	-----------------------------------
func (l *FileLog) Append(ctx context.Context, entry domain.AuditEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("could not open audit file %s: %w", l.path, err)
	}

	if _, err := io.WriteString(f, Format(entry)); err != nil {
		f.Close()
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to sync audit file: %w", err)
	}
	return f.Close()
}

// Format renders an entry in the audit file layout
func Format(entry domain.AuditEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Timestamp: %s\n", entry.Timestamp.Local().Format(timestampLayout))
	writeWallet(&b, entry.Sender)
	writeWallet(&b, entry.Receiver)
	b.WriteString(separator + "\n")
	return b.String()
}

func writeWallet(b *strings.Builder, s domain.WalletSnapshot) {
	fmt.Fprintf(b, "Wallet ID: %s (Owner: %s) Balance: %s\n",
		s.WalletID, s.OwnerUsername, s.Balance.StringFixed(2))
}
