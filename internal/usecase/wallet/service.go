package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/walletflow-backend/internal/domain"
)

// MaxPageSize caps ListTransfers page sizes
const MaxPageSize = 100

// WalletService handles wallet opening and read operations
type WalletService struct {
	WalletRepo   domain.WalletRepository
	TransferRepo domain.TransferRepository
	Owners       domain.OwnerDirectory
}

// NewWalletService creates a new WalletService instance
func NewWalletService(walletRepo domain.WalletRepository, transferRepo domain.TransferRepository, owners domain.OwnerDirectory) *WalletService {
	return &WalletService{
		WalletRepo:   walletRepo,
		TransferRepo: transferRepo,
		Owners:       owners,
	}
}

// OpenWallet creates a wallet for an existing owner
// Logic:
//  1. Verify the owner exists in the owner directory
//  2. Create the wallet with the initial credit (zero allowed, negative rejected)
//  3. Save using WalletRepo.Create
func (s *WalletService) OpenWallet(ctx context.Context, ownerUsername string, initialCredit decimal.Decimal) (*domain.Wallet, error) {
	ownerUsername = strings.TrimSpace(ownerUsername)
	if ownerUsername == "" {
		return nil, errors.New("owner username cannot be empty")
	}

	exists, err := s.Owners.Exists(ctx, ownerUsername)
	if err != nil {
		return nil, fmt.Errorf("failed to check owner: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrOwnerNotFound, ownerUsername)
	}

	w, err := domain.NewWallet(ownerUsername, initialCredit)
	if err != nil {
		return nil, err
	}

	if err := s.WalletRepo.Create(ctx, w); err != nil {
		return nil, err
	}

	return w, nil
}

// GetWallet retrieves a wallet by ID
func (s *WalletService) GetWallet(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	return s.WalletRepo.GetByID(ctx, id)
}

// ListWalletsByOwner retrieves all wallets of an owner
func (s *WalletService) ListWalletsByOwner(ctx context.Context, ownerUsername string) ([]*domain.Wallet, error) {
	return s.WalletRepo.ListByOwner(ctx, ownerUsername)
}

// GetTransfer retrieves a transfer record by ID
func (s *WalletService) GetTransfer(ctx context.Context, id uuid.UUID) (*domain.Transfer, error) {
	return s.TransferRepo.GetByID(ctx, id)
}

// ListTransfers retrieves a page of the wallet's transfers, newest first
func (s *WalletService) ListTransfers(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*domain.Transfer, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}
	if offset < 0 {
		return nil, errors.New("offset must be non-negative")
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	// Verify the wallet exists so an unknown wallet is not reported as an empty history
	if _, err := s.WalletRepo.GetByID(ctx, walletID); err != nil {
		return nil, err
	}

	return s.TransferRepo.ListByWallet(ctx, walletID, limit, offset)
}
