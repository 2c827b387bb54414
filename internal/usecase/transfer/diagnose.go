package transfer

import (
	"errors"

	"github.com/simaogato/walletflow-backend/internal/domain"
)

// Diagnostic codes returned by Diagnose
const (
	CodeSenderNotFound     = "SenderNotFound"
	CodeReceiverNotFound   = "ReceiverNotFound"
	CodeInvalidAmount      = "InvalidAmount"
	CodeInsufficientFunds  = "InsufficientFunds"
	CodeSameWallet         = "SameWallet"
	CodeLockFailed         = "LockFailed"
	CodeDebitFailed        = "DebitFailed"
	CodeAuditWriteFailed   = "AuditWriteFailed"
	CodePersistFailed      = "PersistFailed"
	CodeCompensationFailed = "CompensationFailed"
	CodeInternal           = "Internal"
)

// Diagnose maps an error returned by Coordinator.Transfer to its diagnostic code.
// It returns "" for a nil error.
func Diagnose(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrCompensationFailed):
		return CodeCompensationFailed
	case errors.Is(err, domain.ErrSenderNotFound):
		return CodeSenderNotFound
	case errors.Is(err, domain.ErrReceiverNotFound):
		return CodeReceiverNotFound
	case errors.Is(err, domain.ErrInvalidAmount):
		return CodeInvalidAmount
	case errors.Is(err, domain.ErrInsufficientFunds):
		return CodeInsufficientFunds
	case errors.Is(err, domain.ErrSameWallet):
		return CodeSameWallet
	case errors.Is(err, domain.ErrLockFailed):
		return CodeLockFailed
	case errors.Is(err, domain.ErrDebitFailed):
		return CodeDebitFailed
	case errors.Is(err, domain.ErrAuditWriteFailed):
		return CodeAuditWriteFailed
	case errors.Is(err, domain.ErrPersistFailed):
		return CodePersistFailed
	default:
		return CodeInternal
	}
}
