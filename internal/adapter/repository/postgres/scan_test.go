package postgres

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/walletflow-backend/internal/domain"
)

// fakeRow feeds raw column values the way database/sql would
type fakeRow struct {
	values []interface{}
	err    error
}

func (r fakeRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("expected %d destinations, got %d", len(r.values), len(dest))
	}
	for i, d := range dest {
		switch target := d.(type) {
		case sql.Scanner:
			if err := target.Scan(r.values[i]); err != nil {
				return err
			}
		case *string:
			*target = r.values[i].(string)
		case *time.Time:
			*target = r.values[i].(time.Time)
		default:
			return fmt.Errorf("unsupported destination %T", d)
		}
	}
	return nil
}

func TestScanWallet(t *testing.T) {
	id := uuid.New()
	t1, t2 := uuid.New(), uuid.New()

	w, err := scanWallet(fakeRow{values: []interface{}{
		id.String(),
		"userA",
		"1000.50",
		[]byte(fmt.Sprintf("{%s,%s}", t1, t2)),
	}})
	require.NoError(t, err)

	assert.Equal(t, id, w.ID)
	assert.Equal(t, "userA", w.OwnerUsername)
	assert.True(t, w.Balance.Equal(decimal.RequireFromString("1000.50")))
	assert.Equal(t, []uuid.UUID{t1, t2}, w.AppliedTransferIDs)
}

func TestScanWallet_EmptyHistory(t *testing.T) {
	w, err := scanWallet(fakeRow{values: []interface{}{
		uuid.New().String(), "userB", "0", []byte("{}"),
	}})
	require.NoError(t, err)
	assert.Empty(t, w.AppliedTransferIDs)
	assert.True(t, w.Balance.IsZero())
}

func TestScanWallet_Errors(t *testing.T) {
	_, err := scanWallet(fakeRow{err: sql.ErrNoRows})
	assert.ErrorIs(t, err, sql.ErrNoRows)

	_, err = scanWallet(fakeRow{values: []interface{}{
		uuid.New().String(), "userA", "lots", []byte("{}"),
	}})
	assert.ErrorContains(t, err, "failed to parse balance")
}

func TestScanTransfer(t *testing.T) {
	id, sender, receiver := uuid.New(), uuid.New(), uuid.New()
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))

	tr, err := scanTransfer(fakeRow{values: []interface{}{
		id.String(),
		sender.String(),
		receiver.String(),
		"500.00",
		"Atomic transaction",
		"COMPLETED",
		"",
		created,
		created,
	}})
	require.NoError(t, err)

	assert.Equal(t, id, tr.ID)
	assert.Equal(t, sender, tr.SenderWalletID)
	assert.Equal(t, receiver, tr.ReceiverWalletID)
	assert.True(t, tr.Amount.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, domain.TransferStatusCompleted, tr.Status)
	assert.Equal(t, time.UTC, tr.CreatedAt.Location())
	assert.True(t, tr.CreatedAt.Equal(created))
}

func TestAppliedIDs(t *testing.T) {
	t1 := uuid.New()
	w := &domain.Wallet{AppliedTransferIDs: []uuid.UUID{t1}}

	valuer, ok := appliedIDs(w).(driver.Valuer)
	require.True(t, ok)

	value, err := valuer.Value()
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf(`{"%s"}`, t1), value)
}

func TestIsUniqueViolation(t *testing.T) {
	dup := &pq.Error{Code: uniqueViolation, Message: "duplicate key value violates unique constraint"}

	assert.True(t, isUniqueViolation(dup))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", dup)))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(sql.ErrNoRows))
}
