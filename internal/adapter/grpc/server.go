package grpc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/walletflow-backend/internal/domain"
	"github.com/simaogato/walletflow-backend/internal/usecase/transfer"
	"github.com/simaogato/walletflow-backend/internal/usecase/wallet"
)

// DefaultPageSize is used by ListTransfers when no limit is given
const DefaultPageSize = 20

// Server implements the TransferService gRPC server
type Server struct {
	Coordinator   *transfer.Coordinator
	WalletService *wallet.WalletService
}

// NewServer creates a new gRPC server instance
func NewServer(coordinator *transfer.Coordinator, walletService *wallet.WalletService) *Server {
	return &Server{
		Coordinator:   coordinator,
		WalletService: walletService,
	}
}

// Transfer handles the Transfer RPC.
// A transfer that the coordinator refuses or rolls back is not an RPC error:
// the response carries success=false with the diagnostic and its code.
// Only malformed requests fail with a gRPC status.
func (s *Server) Transfer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	senderID, err := uuidField(req, "sender_wallet_id")
	if err != nil {
		return nil, err
	}

	receiverID, err := uuidField(req, "receiver_wallet_id")
	if err != nil {
		return nil, err
	}

	amount, err := decimalField(req, "amount")
	if err != nil {
		return nil, err
	}

	input := transfer.TransferInput{
		SenderWalletID:   senderID,
		ReceiverWalletID: receiverID,
		Amount:           amount,
		Memo:             stringField(req, "memo"),
	}

	t, err := s.Coordinator.Transfer(ctx, input)
	if err != nil {
		return newStruct(map[string]interface{}{
			"success":    false,
			"diagnostic": err.Error(),
			"code":       transfer.Diagnose(err),
		})
	}

	return newStruct(map[string]interface{}{
		"success":    true,
		"diagnostic": "",
		"code":       "",
		"transfer":   transferToMap(t),
	})
}

// GetWallet handles the GetWallet RPC
func (s *Server) GetWallet(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := uuidField(req, "wallet_id")
	if err != nil {
		return nil, err
	}

	w, err := s.WalletService.GetWallet(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}

	return newStruct(map[string]interface{}{"wallet": walletToMap(w)})
}

// ListWallets handles the ListWallets RPC
func (s *Server) ListWallets(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	owner := stringField(req, "owner_username")
	if owner == "" {
		return nil, status.Error(codes.InvalidArgument, "owner_username is required")
	}

	wallets, err := s.WalletService.ListWalletsByOwner(ctx, owner)
	if err != nil {
		return nil, mapError(err)
	}

	items := make([]interface{}, 0, len(wallets))
	for _, w := range wallets {
		items = append(items, walletToMap(w))
	}

	return newStruct(map[string]interface{}{"wallets": items})
}

// OpenWallet handles the OpenWallet RPC.
// initial_credit is optional and defaults to zero.
func (s *Server) OpenWallet(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	initial := decimal.Zero
	if stringField(req, "initial_credit") != "" {
		var err error
		initial, err = decimalField(req, "initial_credit")
		if err != nil {
			return nil, err
		}
	}

	w, err := s.WalletService.OpenWallet(ctx, stringField(req, "owner_username"), initial)
	if err != nil {
		return nil, mapError(err)
	}

	return newStruct(map[string]interface{}{"wallet": walletToMap(w)})
}

// GetTransfer handles the GetTransfer RPC
func (s *Server) GetTransfer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := uuidField(req, "transfer_id")
	if err != nil {
		return nil, err
	}

	t, err := s.WalletService.GetTransfer(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}

	return newStruct(map[string]interface{}{"transfer": transferToMap(t)})
}

// ListTransfers handles the ListTransfers RPC
func (s *Server) ListTransfers(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	walletID, err := uuidField(req, "wallet_id")
	if err != nil {
		return nil, err
	}

	limit := intField(req, "limit", DefaultPageSize)
	offset := intField(req, "offset", 0)

	transfers, err := s.WalletService.ListTransfers(ctx, walletID, limit, offset)
	if err != nil {
		return nil, mapError(err)
	}

	items := make([]interface{}, 0, len(transfers))
	for _, t := range transfers {
		items = append(items, transferToMap(t))
	}

	return newStruct(map[string]interface{}{"transfers": items})
}

// stringField returns the trimmed string value of a field, or "" if absent
func stringField(req *structpb.Struct, name string) string {
	v, ok := req.GetFields()[name]
	if !ok {
		return ""
	}
	return strings.TrimSpace(v.GetStringValue())
}

// intField returns a numeric field as int, or def if absent
func intField(req *structpb.Struct, name string, def int) int {
	v, ok := req.GetFields()[name]
	if !ok {
		return def
	}
	if _, isNumber := v.GetKind().(*structpb.Value_NumberValue); !isNumber {
		return def
	}
	return int(v.GetNumberValue())
}

func uuidField(req *structpb.Struct, name string) (uuid.UUID, error) {
	raw := stringField(req, name)
	if raw == "" {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "%s is required", name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", name, err)
	}
	return id, nil
}

// decimalField parses a decimal carried as a string, the same way amounts
// are stored, so no precision is lost to float64
func decimalField(req *structpb.Struct, name string) (decimal.Decimal, error) {
	raw := stringField(req, name)
	if raw == "" {
		return decimal.Zero, status.Errorf(codes.InvalidArgument, "%s is required", name)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", name, err)
	}
	return d, nil
}

func newStruct(m map[string]interface{}) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return s, nil
}

func walletToMap(w *domain.Wallet) map[string]interface{} {
	applied := make([]interface{}, 0, len(w.AppliedTransferIDs))
	for _, id := range w.AppliedTransferIDs {
		applied = append(applied, id.String())
	}
	return map[string]interface{}{
		"id":                   w.ID.String(),
		"owner_username":       w.OwnerUsername,
		"balance":              w.Balance.StringFixed(2),
		"applied_transfer_ids": applied,
	}
}

func transferToMap(t *domain.Transfer) map[string]interface{} {
	return map[string]interface{}{
		"id":                 t.ID.String(),
		"sender_wallet_id":   t.SenderWalletID.String(),
		"receiver_wallet_id": t.ReceiverWalletID.String(),
		"amount":             t.Amount.StringFixed(2),
		"memo":               t.Memo,
		"status":             string(t.Status),
		"failure_reason":     t.FailureReason,
		"created_at":         t.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":         t.UpdatedAt.Format(time.RFC3339Nano),
	}
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	errorMsg := err.Error()

	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrSenderNotFound),
		errors.Is(err, domain.ErrReceiverNotFound),
		errors.Is(err, domain.ErrOwnerNotFound):
		return status.Errorf(codes.NotFound, "%s", errorMsg)
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrSameWallet):
		return status.Errorf(codes.InvalidArgument, "%s", errorMsg)
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrAlreadyFinalized),
		errors.Is(err, domain.ErrInvalidStateTransition):
		return status.Errorf(codes.FailedPrecondition, "%s", errorMsg)
	case errors.Is(err, domain.ErrOwnerExists):
		return status.Errorf(codes.AlreadyExists, "%s", errorMsg)
	case errors.Is(err, domain.ErrLockFailed):
		return status.Errorf(codes.Unavailable, "%s", errorMsg)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Errorf(codes.DeadlineExceeded, "%s", errorMsg)
	case errors.Is(err, context.Canceled):
		return status.Errorf(codes.Canceled, "%s", errorMsg)
	}

	// Plain validation errors from the services
	if strings.Contains(errorMsg, "cannot be empty") ||
		strings.Contains(errorMsg, "must be positive") ||
		strings.Contains(errorMsg, "must be non-negative") ||
		strings.Contains(errorMsg, "cannot be negative") {
		return status.Errorf(codes.InvalidArgument, "%s", errorMsg)
	}

	// Default to Internal error for unknown errors
	return status.Errorf(codes.Internal, "%s", errorMsg)
}
