package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/simaogato/walletflow-backend/internal/domain"
)

// DefaultMemo is used when a transfer is requested without a memo
const DefaultMemo = "Atomic transaction"

// DefaultPublishTimeout bounds the best-effort completed event publish
const DefaultPublishTimeout = 5 * time.Second

// Locker grants exclusive access to a set of keys.
// Keys must be acquired in a globally consistent order.
type Locker interface {
	Acquire(ctx context.Context, keys ...string) (domain.Lease, error)
}

// TransferInput represents the input for moving funds between two wallets
type TransferInput struct {
	SenderWalletID   uuid.UUID
	ReceiverWalletID uuid.UUID
	Amount           decimal.Decimal
	Memo             string
}

// Coordinator moves funds between two wallets so that either both sides are
// applied and recorded, or neither is. The record store has no multi-key
// transactions, so a failure after mutation is compensated by re-persisting
// the original wallets.
type Coordinator struct {
	WalletRepo     domain.WalletRepository
	TransferRepo   domain.TransferRepository
	AuditLog       domain.AuditLog
	Locker         Locker
	Publisher      domain.EventPublisher // optional
	PublishTimeout time.Duration
	Logger         *zap.Logger
	Now            func() time.Time
}

// NewCoordinator creates a new Coordinator instance.
// Pass nil for publisher if no events should be emitted.
func NewCoordinator(
	walletRepo domain.WalletRepository,
	transferRepo domain.TransferRepository,
	auditLog domain.AuditLog,
	locker Locker,
	publisher domain.EventPublisher,
	logger *zap.Logger,
) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		WalletRepo:     walletRepo,
		TransferRepo:   transferRepo,
		AuditLog:       auditLog,
		Locker:         locker,
		Publisher:      publisher,
		PublishTimeout: DefaultPublishTimeout,
		Logger:         logger,
		Now:            func() time.Time { return time.Now().UTC() },
	}
}

// snapshot holds the pre-mutation state used for compensation
type snapshot struct {
	sender   *domain.Wallet
	receiver *domain.Wallet
}

// Transfer moves input.Amount from the sender wallet to the receiver wallet.
// A nil error means success; otherwise err.Error() is the diagnostic and the
// wrapped domain sentinel identifies the failure (see Diagnose).
// Logic:
//  1. Lock both wallets in ascending ID order
//  2. Check preconditions: sender exists, receiver exists, wallets differ,
//     amount > 0, funds
//  3. Snapshot both wallets, debit sender and credit receiver in memory
//  4. Append the audit entry
//  5. Confirm the lock lease is still held
//  6. Reserve a transfer ID, record it on both wallets and persist sender,
//     then receiver
//  7. Store the transfer record as COMPLETED
//  8. Release the locks and publish the completed event (best effort)
//
// Any failure in steps 4, 6 or 7 re-persists both snapshots before returning.
// A failed transfer leaves no transfer record behind.
func (c *Coordinator) Transfer(ctx context.Context, input TransferInput) (*domain.Transfer, error) {
	log := c.Logger.With(
		zap.String("sender_wallet_id", input.SenderWalletID.String()),
		zap.String("receiver_wallet_id", input.ReceiverWalletID.String()),
		zap.String("amount", input.Amount.String()),
	)

	// 1. Lock both wallets
	lease, err := c.Locker.Acquire(ctx, input.SenderWalletID.String(), input.ReceiverWalletID.String())
	if err != nil {
		return nil, c.reject(log, fmt.Errorf("%w: %v", domain.ErrLockFailed, err))
	}
	defer lease.Release()

	// 2. Preconditions, in order, without mutation
	sender, err := c.WalletRepo.GetByID(ctx, input.SenderWalletID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, c.reject(log, domain.ErrSenderNotFound)
		}
		return nil, c.reject(log, fmt.Errorf("failed to load sender wallet: %w", err))
	}

	receiver, err := c.WalletRepo.GetByID(ctx, input.ReceiverWalletID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, c.reject(log, domain.ErrReceiverNotFound)
		}
		return nil, c.reject(log, fmt.Errorf("failed to load receiver wallet: %w", err))
	}

	if sender.ID == receiver.ID {
		return nil, c.reject(log, domain.ErrSameWallet)
	}

	if !input.Amount.IsPositive() {
		return nil, c.reject(log, domain.ErrInvalidAmount)
	}

	if !sender.HasSufficientFunds(input.Amount) {
		return nil, c.reject(log, domain.ErrInsufficientFunds)
	}

	// 3. Mutate in memory only
	orig := snapshot{sender: sender.Clone(), receiver: receiver.Clone()}

	if err := sender.Debit(input.Amount); err != nil {
		return nil, c.reject(log, fmt.Errorf("%w: %v", domain.ErrDebitFailed, err))
	}
	receiver.Credit(input.Amount)

	// 4. Audit
	entry := domain.AuditEntry{
		Timestamp: c.Now(),
		Sender:    sender.Snapshot(),
		Receiver:  receiver.Snapshot(),
	}
	if err := c.AuditLog.Append(ctx, entry); err != nil {
		return nil, c.abort(ctx, log, "audit", fmt.Errorf("%w: %v", domain.ErrAuditWriteFailed, err), orig)
	}

	// 5. Nothing is written to the store unless the wallets are still ours
	if err := lease.Check(ctx); err != nil {
		return nil, c.reject(log, fmt.Errorf("%w: %v", domain.ErrLockFailed, err))
	}

	// 6. Persist both wallets with the transfer folded into their history
	transferID := c.TransferRepo.NextID()
	log = log.With(zap.String("transfer_id", transferID.String()))

	sender.RecordTransfer(transferID)
	receiver.RecordTransfer(transferID)

	if err := c.WalletRepo.Save(ctx, sender); err != nil {
		return nil, c.abort(ctx, log, "save_sender", fmt.Errorf("%w: sender wallet: %v", domain.ErrPersistFailed, err), orig)
	}
	if err := c.WalletRepo.Save(ctx, receiver); err != nil {
		return nil, c.abort(ctx, log, "save_receiver", fmt.Errorf("%w: receiver wallet: %v", domain.ErrPersistFailed, err), orig)
	}

	// 7. Transfer record, created PENDING and completed before it is stored
	memo := input.Memo
	if memo == "" {
		memo = DefaultMemo
	}
	completed, err := domain.NewTransfer(transferID, domain.NewTransferParams{
		SenderWalletID:   sender.ID,
		ReceiverWalletID: receiver.ID,
		Amount:           input.Amount,
		Memo:             memo,
		Now:              c.Now(),
	})
	if err == nil {
		err = completed.Complete(c.Now())
	}
	if err == nil {
		err = c.TransferRepo.Create(ctx, completed)
	}
	if err != nil {
		return nil, c.abort(ctx, log, "create_transfer", fmt.Errorf("%w: transfer record: %v", domain.ErrPersistFailed, err), orig)
	}

	log.Info("transfer completed")

	// 8. Publish outside the critical section
	lease.Release()
	c.publish(ctx, log, completed)

	return completed, nil
}

// publish emits the completed event. Failures are logged and never fail the transfer.
func (c *Coordinator) publish(ctx context.Context, log *zap.Logger, completed *domain.Transfer) {
	if c.Publisher == nil {
		return
	}

	pctx := context.WithoutCancel(ctx)
	if c.PublishTimeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(pctx, c.PublishTimeout)
		defer cancel()
	}

	if err := c.Publisher.PublishTransferCompleted(pctx, completed); err != nil {
		log.Warn("failed to publish transfer completed event", zap.Error(err))
	}
}

// reject logs a failure that left the store untouched
func (c *Coordinator) reject(log *zap.Logger, err error) error {
	log.Info("transfer rejected", zap.String("code", Diagnose(err)), zap.Error(err))
	return err
}

// abort compensates a failed critical section.
// Both original wallets are re-persisted, receiver first, on a context that
// ignores the caller's cancellation.
func (c *Coordinator) abort(ctx context.Context, log *zap.Logger, stage string, cause error, orig snapshot) error {
	cctx := context.WithoutCancel(ctx)
	log = log.With(zap.String("stage", stage))

	var restoreErrs []error
	if err := c.WalletRepo.Save(cctx, orig.receiver); err != nil {
		restoreErrs = append(restoreErrs, fmt.Errorf("receiver wallet: %w", err))
	}
	if err := c.WalletRepo.Save(cctx, orig.sender); err != nil {
		restoreErrs = append(restoreErrs, fmt.Errorf("sender wallet: %w", err))
	}

	if len(restoreErrs) > 0 {
		restoreErr := errors.Join(restoreErrs...)
		log.Error("compensation failed, ledger may be inconsistent",
			zap.Bool("ledger_inconsistent", true),
			zap.NamedError("cause", cause),
			zap.Error(restoreErr),
		)
		return fmt.Errorf("%w (%w: %v)", cause, domain.ErrCompensationFailed, restoreErr)
	}

	log.Warn("transfer rolled back", zap.String("code", Diagnose(cause)), zap.Error(cause))
	return cause
}
