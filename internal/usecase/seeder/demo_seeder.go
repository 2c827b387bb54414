package seeder

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/walletflow-backend/internal/domain"
)

// DemoOwner defines an owner and the initial credit of their first wallet
type DemoOwner struct {
	Username      string
	InitialCredit decimal.Decimal
}

// DefaultDemoOwners returns the owners seeded on a fresh store
func DefaultDemoOwners() []DemoOwner {
	return []DemoOwner{
		{Username: "userA", InitialCredit: decimal.NewFromInt(1000)},
		{Username: "userB", InitialCredit: decimal.Zero},
	}
}

// WalletOpener opens wallets for registered owners
type WalletOpener interface {
	OpenWallet(ctx context.Context, ownerUsername string, initialCredit decimal.Decimal) (*domain.Wallet, error)
}

// DemoSeeder handles seeding of demo owners and their wallets
type DemoSeeder struct {
	owners  domain.OwnerDirectory
	wallets domain.WalletRepository
	opener  WalletOpener
}

// NewDemoSeeder creates a new DemoSeeder instance
func NewDemoSeeder(owners domain.OwnerDirectory, wallets domain.WalletRepository, opener WalletOpener) *DemoSeeder {
	return &DemoSeeder{
		owners:  owners,
		wallets: wallets,
		opener:  opener,
	}
}

// Seed ensures every demo owner exists and has at least one wallet.
// Existing owners and wallets are left untouched, so Seed can run on every start.
// Returns the first wallet ID of each owner.
func (s *DemoSeeder) Seed(ctx context.Context, demo []DemoOwner) (map[string]uuid.UUID, error) {
	walletIDs := make(map[string]uuid.UUID, len(demo))

	for _, d := range demo {
		exists, err := s.owners.Exists(ctx, d.Username)
		if err != nil {
			return nil, err
		}
		if !exists {
			if err := s.owners.Register(ctx, d.Username); err != nil && !errors.Is(err, domain.ErrOwnerExists) {
				return nil, fmt.Errorf("failed to register owner %s: %w", d.Username, err)
			}
		}

		existing, err := s.wallets.ListByOwner(ctx, d.Username)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			// Owner already has a wallet, no action needed
			walletIDs[d.Username] = existing[0].ID
			continue
		}

		w, err := s.opener.OpenWallet(ctx, d.Username, d.InitialCredit)
		if err != nil {
			return nil, fmt.Errorf("failed to open wallet for %s: %w", d.Username, err)
		}
		walletIDs[d.Username] = w.ID
	}

	return walletIDs, nil
}
