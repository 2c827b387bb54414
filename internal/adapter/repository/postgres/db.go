package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

//go:embed schema.sql
var schemaSQL string

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// NewDB creates a new database connection
// connectionString should be in the format: "host=localhost port=5432 user=postgres password=postgres dbname=walletflow sslmode=disable"
func NewDB(connectionString string) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Connect retries NewDB until the database answers or ctx is done.
// Containers started together rarely have Postgres ready on the first try.
func Connect(ctx context.Context, connectionString string, retryEvery time.Duration) (*DB, error) {
	for {
		db, err := NewDB(connectionString)
		if err == nil {
			return db, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("database not reachable: %w", err)
		case <-time.After(retryEvery):
		}
	}
}

// EnsureSchema creates the owners, wallets and transfers tables if they do not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
