package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/simaogato/walletflow-backend/internal/domain"
)

// TransferRepository implements domain.TransferRepository in memory
type TransferRepository struct {
	mu        sync.RWMutex
	transfers map[uuid.UUID]*domain.Transfer
	newID     func() uuid.UUID
}

// NewTransferRepository creates an empty transfer repository
func NewTransferRepository() *TransferRepository {
	return &TransferRepository{
		transfers: make(map[uuid.UUID]*domain.Transfer),
		newID:     uuid.New,
	}
}

// NextID reserves a fresh transfer ID
func (r *TransferRepository) NextID() uuid.UUID {
	return r.newID()
}

// Create stores a copy of a new transfer
func (r *TransferRepository) Create(ctx context.Context, transfer *domain.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.transfers[transfer.ID]; ok {
		return fmt.Errorf("transfer %s: %w", transfer.ID, domain.ErrTransferExists)
	}
	r.transfers[transfer.ID] = transfer.Clone()
	return nil
}

// GetByID retrieves a copy of the transfer with the given ID
func (r *TransferRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.transfers[id]
	if !ok {
		return nil, fmt.Errorf("transfer %s: %w", id, domain.ErrNotFound)
	}
	return t.Clone(), nil
}

// Save overwrites an existing transfer
func (r *TransferRepository) Save(ctx context.Context, transfer *domain.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.transfers[transfer.ID]; !ok {
		return fmt.Errorf("transfer %s: %w", transfer.ID, domain.ErrNotFound)
	}
	r.transfers[transfer.ID] = transfer.Clone()
	return nil
}

// ListByWallet retrieves the wallet's transfers, newest first
func (r *TransferRepository) ListByWallet(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*domain.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*domain.Transfer, 0)
	for _, t := range r.transfers {
		if t.SenderWalletID == walletID || t.ReceiverWalletID == walletID {
			matched = append(matched, t.Clone())
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID.String() < matched[j].ID.String()
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if offset >= len(matched) {
		return []*domain.Transfer{}, nil
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], nil
}
