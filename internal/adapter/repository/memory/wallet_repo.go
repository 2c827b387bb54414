// Package memory provides in-process implementations of the domain repositories.
// Every read and write copies the record, so callers never share state with the store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/simaogato/walletflow-backend/internal/domain"
)

// WalletRepository implements domain.WalletRepository in memory
type WalletRepository struct {
	mu      sync.RWMutex
	wallets map[uuid.UUID]*domain.Wallet
}

// NewWalletRepository creates an empty wallet repository
func NewWalletRepository() *WalletRepository {
	return &WalletRepository{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

// GetByID retrieves a copy of the wallet with the given ID
func (r *WalletRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.wallets[id]
	if !ok {
		return nil, fmt.Errorf("wallet %s: %w", id, domain.ErrNotFound)
	}
	return w.Clone(), nil
}

// Create stores a new wallet
func (r *WalletRepository) Create(ctx context.Context, wallet *domain.Wallet) error {
	if err := wallet.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.wallets[wallet.ID]; ok {
		return fmt.Errorf("wallet %s already exists", wallet.ID)
	}
	r.wallets[wallet.ID] = wallet.Clone()
	return nil
}

// Save overwrites an existing wallet
func (r *WalletRepository) Save(ctx context.Context, wallet *domain.Wallet) error {
	if err := wallet.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.wallets[wallet.ID]; !ok {
		return fmt.Errorf("wallet %s: %w", wallet.ID, domain.ErrNotFound)
	}
	r.wallets[wallet.ID] = wallet.Clone()
	return nil
}

// ListByOwner retrieves the owner's wallets ordered by ID
func (r *WalletRepository) ListByOwner(ctx context.Context, ownerUsername string) ([]*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wallets := make([]*domain.Wallet, 0)
	for _, w := range r.wallets {
		if w.OwnerUsername == ownerUsername {
			wallets = append(wallets, w.Clone())
		}
	}
	sort.Slice(wallets, func(i, j int) bool {
		return wallets[i].ID.String() < wallets[j].ID.String()
	})
	return wallets, nil
}
