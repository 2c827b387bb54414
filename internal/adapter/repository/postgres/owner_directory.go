package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/simaogato/walletflow-backend/internal/domain"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation
const uniqueViolation = "23505"

// ownerDirectory implements domain.OwnerDirectory
type ownerDirectory struct {
	db *DB
}

// NewOwnerDirectory creates a new owner directory
func NewOwnerDirectory(db *DB) domain.OwnerDirectory {
	return &ownerDirectory{db: db}
}

// Exists reports whether the owner is registered
func (d *ownerDirectory) Exists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := d.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM owners WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check owner: %w", err)
	}
	return exists, nil
}

// Register adds an owner
func (d *ownerDirectory) Register(ctx context.Context, username string) error {
	_, err := d.db.ExecContext(ctx, `INSERT INTO owners (username) VALUES ($1)`, username)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOwnerExists
		}
		return fmt.Errorf("failed to register owner: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
