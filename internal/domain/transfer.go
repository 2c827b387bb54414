package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferStatus represents the lifecycle state of a transfer
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusCompleted TransferStatus = "COMPLETED"
	TransferStatusFailed    TransferStatus = "FAILED"
)

// IsFinal reports whether the status is terminal
func (s TransferStatus) IsFinal() bool {
	return s == TransferStatusCompleted || s == TransferStatusFailed
}

// Transfer represents one transfer attempt between two wallets.
// Everything except Status, FailureReason and UpdatedAt is immutable after creation.
type Transfer struct {
	ID               uuid.UUID
	SenderWalletID   uuid.UUID
	ReceiverWalletID uuid.UUID
	Amount           decimal.Decimal
	Memo             string
	Status           TransferStatus
	FailureReason    string // set only when Status is FAILED
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewTransferParams carries the immutable fields of a transfer to be created
type NewTransferParams struct {
	SenderWalletID   uuid.UUID
	ReceiverWalletID uuid.UUID
	Amount           decimal.Decimal
	Memo             string
	Now              time.Time
}

// NewTransfer builds a PENDING transfer with the given ID
func NewTransfer(id uuid.UUID, p NewTransferParams) (*Transfer, error) {
	if p.SenderWalletID == p.ReceiverWalletID {
		return nil, ErrSameWallet
	}
	if !p.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if p.Now.IsZero() {
		p.Now = time.Now().UTC()
	}

	return &Transfer{
		ID:               id,
		SenderWalletID:   p.SenderWalletID,
		ReceiverWalletID: p.ReceiverWalletID,
		Amount:           p.Amount,
		Memo:             p.Memo,
		Status:           TransferStatusPending,
		CreatedAt:        p.Now,
		UpdatedAt:        p.Now,
	}, nil
}

// Complete moves a PENDING transfer to COMPLETED
func (t *Transfer) Complete(now time.Time) error {
	if err := t.checkPending(); err != nil {
		return err
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	t.Status = TransferStatusCompleted
	t.UpdatedAt = now
	return nil
}

// Fail moves a PENDING transfer to FAILED with a reason
func (t *Transfer) Fail(reason string, now time.Time) error {
	if err := t.checkPending(); err != nil {
		return err
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	t.Status = TransferStatusFailed
	t.FailureReason = strings.TrimSpace(reason)
	t.UpdatedAt = now
	return nil
}

func (t *Transfer) checkPending() error {
	if t.Status.IsFinal() {
		return ErrAlreadyFinalized
	}
	if t.Status != TransferStatusPending {
		return ErrInvalidStateTransition
	}
	return nil
}

// Clone returns a copy of the transfer
func (t *Transfer) Clone() *Transfer {
	c := *t
	return &c
}
