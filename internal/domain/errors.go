package domain

import "errors"

var (
	// ErrNotFound is returned by repositories when a record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrSenderNotFound is returned when the sender wallet does not exist
	ErrSenderNotFound = errors.New("sender wallet not found")

	// ErrReceiverNotFound is returned when the receiver wallet does not exist
	ErrReceiverNotFound = errors.New("receiver wallet not found")

	// ErrInvalidAmount is returned when an amount is zero or negative
	ErrInvalidAmount = errors.New("invalid amount: must be positive")

	// ErrInsufficientFunds is returned when a debit exceeds the wallet balance
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrSameWallet is returned when sender and receiver are the same wallet
	ErrSameWallet = errors.New("sender and receiver must be different wallets")

	// ErrLockFailed is returned when the wallets of a transfer cannot be locked
	ErrLockFailed = errors.New("failed to lock wallets")

	// ErrDebitFailed is returned when the in-memory debit of the sender fails
	ErrDebitFailed = errors.New("failed to debit sender wallet")

	// ErrAuditWriteFailed is returned when the audit log rejects an entry
	ErrAuditWriteFailed = errors.New("failed to write audit entry")

	// ErrPersistFailed is returned when the record store rejects a write
	ErrPersistFailed = errors.New("failed to persist transfer")

	// ErrCompensationFailed is returned when restoring the original balances fails.
	// The ledger may be inconsistent when this error is returned.
	ErrCompensationFailed = errors.New("failed to restore original balances")

	// ErrTransferExists is returned when a transfer ID is stored twice
	ErrTransferExists = errors.New("transfer already exists")

	// ErrLockLost is returned when a held lock expired or was taken over
	ErrLockLost = errors.New("lock no longer held")

	// ErrOwnerNotFound is returned when opening a wallet for an unknown owner
	ErrOwnerNotFound = errors.New("wallet owner not found")

	// ErrOwnerExists is returned when registering an owner twice
	ErrOwnerExists = errors.New("wallet owner already exists")

	// ErrAlreadyFinalized is returned when a terminal transfer is transitioned again
	ErrAlreadyFinalized = errors.New("transfer already finalized")

	// ErrInvalidStateTransition is returned for any other illegal status change
	ErrInvalidStateTransition = errors.New("invalid transfer state transition")
)
