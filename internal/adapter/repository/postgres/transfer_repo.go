package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/walletflow-backend/internal/domain"
)

// transferRepository implements domain.TransferRepository
type transferRepository struct {
	db *DB
}

// NewTransferRepository creates a new transfer repository
func NewTransferRepository(db *DB) domain.TransferRepository {
	return &transferRepository{db: db}
}

const transferColumns = `id, sender_wallet_id, receiver_wallet_id, amount, memo, status, failure_reason, created_at, updated_at`

func scanTransfer(row rowScanner) (*domain.Transfer, error) {
	var t domain.Transfer
	var amountStr, statusStr string

	err := row.Scan(
		&t.ID,
		&t.SenderWalletID,
		&t.ReceiverWalletID,
		&amountStr,
		&t.Memo,
		&statusStr,
		&t.FailureReason,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}
	t.Amount = amount
	t.Status = domain.TransferStatus(statusStr)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()

	return &t, nil
}

// NextID reserves a fresh transfer ID
func (r *transferRepository) NextID() uuid.UUID {
	return uuid.New()
}

// Create inserts a new transfer
func (r *transferRepository) Create(ctx context.Context, t *domain.Transfer) error {
	query := `
		INSERT INTO transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.SenderWalletID,
		t.ReceiverWalletID,
		t.Amount.String(),
		t.Memo,
		string(t.Status),
		t.FailureReason,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("transfer %s: %w", t.ID, domain.ErrTransferExists)
		}
		return fmt.Errorf("failed to create transfer: %w", err)
	}

	return nil
}

// GetByID retrieves a transfer by its ID
func (r *transferRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1`

	t, err := scanTransfer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transfer %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get transfer by ID: %w", err)
	}
	return t, nil
}

// Save updates the status fields of an existing transfer
func (r *transferRepository) Save(ctx context.Context, transfer *domain.Transfer) error {
	query := `
		UPDATE transfers
		SET status = $2, failure_reason = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		transfer.ID,
		string(transfer.Status),
		transfer.FailureReason,
		transfer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save transfer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("transfer %s: %w", transfer.ID, domain.ErrNotFound)
	}

	return nil
}

// ListByWallet retrieves the wallet's transfers, newest first
func (r *transferRepository) ListByWallet(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*domain.Transfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM transfers
		WHERE sender_wallet_id = $1 OR receiver_wallet_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, walletID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer rows.Close()

	transfers := make([]*domain.Transfer, 0)
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		transfers = append(transfers, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transfers: %w", err)
	}

	return transfers, nil
}
