package memory

import (
	"context"
	"sync"

	"github.com/simaogato/walletflow-backend/internal/domain"
)

// OwnerDirectory implements domain.OwnerDirectory in memory
type OwnerDirectory struct {
	mu     sync.RWMutex
	owners map[string]struct{}
}

// NewOwnerDirectory creates a directory preloaded with the given owners
func NewOwnerDirectory(owners ...string) *OwnerDirectory {
	d := &OwnerDirectory{owners: make(map[string]struct{}, len(owners))}
	for _, o := range owners {
		d.owners[o] = struct{}{}
	}
	return d
}

// Exists reports whether the owner is registered
func (d *OwnerDirectory) Exists(ctx context.Context, username string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, ok := d.owners[username]
	return ok, nil
}

// Register adds an owner
func (d *OwnerDirectory) Register(ctx context.Context, username string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.owners[username]; ok {
		return domain.ErrOwnerExists
	}
	d.owners[username] = struct{}{}
	return nil
}
