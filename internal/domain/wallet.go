package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet represents an owned balance record in the domain layer.
// Balance is only changed through Debit and Credit, and is never negative
// once an operation has completed.
type Wallet struct {
	ID                 uuid.UUID
	OwnerUsername      string
	Balance            decimal.Decimal
	AppliedTransferIDs []uuid.UUID // append-only, oldest first
}

// WalletSnapshot is an immutable view of a wallet at a point in time
type WalletSnapshot struct {
	WalletID      uuid.UUID
	OwnerUsername string
	Balance       decimal.Decimal
}

// NewWallet creates a wallet for the given owner with an optional initial credit
func NewWallet(ownerUsername string, initial decimal.Decimal) (*Wallet, error) {
	w := &Wallet{
		ID:            uuid.New(),
		OwnerUsername: ownerUsername,
		Balance:       decimal.Zero,
	}
	if initial.IsNegative() {
		return nil, fmt.Errorf("%w: initial credit %s", ErrInvalidAmount, initial)
	}
	if initial.IsPositive() {
		w.Credit(initial)
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// Validate ensures the wallet adheres to domain rules
func (w *Wallet) Validate() error {
	if w.ID == uuid.Nil {
		return errors.New("wallet ID cannot be empty")
	}
	if w.OwnerUsername == "" {
		return errors.New("wallet owner cannot be empty")
	}
	if w.Balance.IsNegative() {
		return errors.New("wallet balance cannot be negative")
	}
	return nil
}

// Debit removes amount from the wallet balance.
// Fails without touching the balance if amount is not positive or exceeds the balance.
func (w *Wallet) Debit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(w.Balance) {
		return ErrInsufficientFunds
	}
	w.Balance = w.Balance.Sub(amount)
	return nil
}

// Credit adds amount to the wallet balance. It never fails; callers
// validate the amount before debiting the other side.
func (w *Wallet) Credit(amount decimal.Decimal) {
	w.Balance = w.Balance.Add(amount)
}

// HasSufficientFunds reports whether the wallet can be debited by amount
func (w *Wallet) HasSufficientFunds(amount decimal.Decimal) bool {
	return w.Balance.GreaterThanOrEqual(amount)
}

// RecordTransfer appends a durably applied transfer to the wallet history
func (w *Wallet) RecordTransfer(transferID uuid.UUID) {
	w.AppliedTransferIDs = append(w.AppliedTransferIDs, transferID)
}

// Clone returns a deep copy that shares no state with w
func (w *Wallet) Clone() *Wallet {
	c := *w
	if w.AppliedTransferIDs != nil {
		c.AppliedTransferIDs = make([]uuid.UUID, len(w.AppliedTransferIDs))
		copy(c.AppliedTransferIDs, w.AppliedTransferIDs)
	}
	return &c
}

// Snapshot captures the identity and balance of the wallet
func (w *Wallet) Snapshot() WalletSnapshot {
	return WalletSnapshot{
		WalletID:      w.ID,
		OwnerUsername: w.OwnerUsername,
		Balance:       w.Balance,
	}
}
