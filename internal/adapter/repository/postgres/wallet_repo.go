package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/simaogato/walletflow-backend/internal/domain"
)

// walletRepository implements domain.WalletRepository
type walletRepository struct {
	db *DB
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *DB) domain.WalletRepository {
	return &walletRepository{db: db}
}

const walletColumns = `id, owner_username, balance, applied_transfer_ids`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanWallet reads one wallet row. The balance travels as a string so no
// precision is lost between NUMERIC and decimal.Decimal.
func scanWallet(row rowScanner) (*domain.Wallet, error) {
	var w domain.Wallet
	var balanceStr string
	var applied []string

	if err := row.Scan(&w.ID, &w.OwnerUsername, &balanceStr, pq.Array(&applied)); err != nil {
		return nil, err
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance: %w", err)
	}
	w.Balance = balance

	w.AppliedTransferIDs = make([]uuid.UUID, 0, len(applied))
	for _, raw := range applied {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse applied transfer id: %w", err)
		}
		w.AppliedTransferIDs = append(w.AppliedTransferIDs, id)
	}

	return &w, nil
}

func appliedIDs(w *domain.Wallet) interface{} {
	ids := make([]string, 0, len(w.AppliedTransferIDs))
	for _, id := range w.AppliedTransferIDs {
		ids = append(ids, id.String())
	}
	return pq.Array(ids)
}

// GetByID retrieves a wallet by its ID
func (r *walletRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`

	w, err := scanWallet(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("wallet %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get wallet by ID: %w", err)
	}
	return w, nil
}

// Create creates a new wallet
func (r *walletRepository) Create(ctx context.Context, wallet *domain.Wallet) error {
	if err := wallet.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO wallets (id, owner_username, balance, applied_transfer_ids)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query,
		wallet.ID,
		wallet.OwnerUsername,
		wallet.Balance.String(),
		appliedIDs(wallet),
	)
	if err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}

	return nil
}

// Save overwrites the balance and transfer history of an existing wallet
func (r *walletRepository) Save(ctx context.Context, wallet *domain.Wallet) error {
	if err := wallet.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE wallets
		SET owner_username = $2, balance = $3, applied_transfer_ids = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		wallet.ID,
		wallet.OwnerUsername,
		wallet.Balance.String(),
		appliedIDs(wallet),
	)
	if err != nil {
		return fmt.Errorf("failed to save wallet: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("wallet %s: %w", wallet.ID, domain.ErrNotFound)
	}

	return nil
}

// ListByOwner retrieves all wallets of an owner ordered by ID
func (r *walletRepository) ListByOwner(ctx context.Context, ownerUsername string) ([]*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE owner_username = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, ownerUsername)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	defer rows.Close()

	wallets := make([]*domain.Wallet, 0)
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallets = append(wallets, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallets: %w", err)
	}

	return wallets, nil
}
