package domain

import (
	"context"

	"github.com/google/uuid"
)

// WalletRepository defines the interface for wallet persistence operations.
// Implementations return copies: changes to a returned wallet are not stored until Save.
type WalletRepository interface {
	// GetByID retrieves a wallet by its ID
	// Returns ErrNotFound if it does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*Wallet, error)

	// Create stores a new wallet
	Create(ctx context.Context, wallet *Wallet) error

	// Save overwrites the stored wallet with the given state
	Save(ctx context.Context, wallet *Wallet) error

	// ListByOwner retrieves all wallets of an owner
	ListByOwner(ctx context.Context, ownerUsername string) ([]*Wallet, error)
}

// TransferRepository defines the interface for transfer persistence operations
type TransferRepository interface {
	// NextID reserves an identifier for a transfer that is not stored yet
	NextID() uuid.UUID

	// Create stores a new transfer in whatever status it carries
	// Returns ErrTransferExists if the ID is already taken
	Create(ctx context.Context, transfer *Transfer) error

	// GetByID retrieves a transfer by its ID
	// Returns ErrNotFound if it does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*Transfer, error)

	// Save overwrites the stored transfer with the given state
	Save(ctx context.Context, transfer *Transfer) error

	// ListByWallet retrieves transfers where the wallet is sender or receiver, newest first
	ListByWallet(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*Transfer, error)
}

// OwnerDirectory answers whether a wallet owner exists.
// Credential management lives outside this service.
type OwnerDirectory interface {
	// Exists reports whether the owner is registered
	Exists(ctx context.Context, username string) (bool, error)

	// Register adds an owner
	// Returns ErrOwnerExists if the owner is already registered
	Register(ctx context.Context, username string) error
}

// Lease is exclusive access to a set of keys handed out by a locker
type Lease interface {
	// Check returns an error if any key is no longer held
	Check(ctx context.Context) error

	// Release gives every key back. Safe to call more than once.
	Release()
}

// EventPublisher publishes domain events to external systems
type EventPublisher interface {
	PublishTransferCompleted(ctx context.Context, transfer *Transfer) error
}
