package ports

import (
	"context"

	"github.com/cradle-labs/tuma-integrator/internal/models"
	"github.com/shopspring/decimal"
)

// AccountRepository defines persistence operations for chain accounts.
type AccountRepository interface {
	SaveAccount(ctx context.Context, account models.Account) error
	FindAccountByAddress(ctx context.Context, address string) (*models.Account, error)
}

// PaymentMethodRepository defines persistence operations for payment methods.
type PaymentMethodRepository interface {
	SavePaymentMethod(ctx context.Context, method models.PaymentMethod) error
	FindPaymentMethodByID(ctx context.Context, methodID string) (*models.PaymentMethod, error)
}

// FinalizeOnRampParams carries the result of an on-ramp settlement leg into
// the single conditional finalize update.
type FinalizeOnRampParams struct {
	TransactionRef  string
	Status          models.OnRampStatus
	FinalTokenQuote *decimal.Decimal
	OnChainTxHash   *string
	ReceiptNumber   *string
}

// OnRampRepository defines persistence operations for on-ramp requests.
//
// FinalizeRequest must be implemented as one atomic conditional statement
// ("... WHERE transaction_ref = ref AND status = pending"), never a
// read-then-write pair; its zero-rows outcome is ErrDoubleSubmission and is
// the sole idempotency mechanism against duplicate callbacks.
type OnRampRepository interface {
	SaveRequest(ctx context.Context, request models.OnRampRequest) error
	FindRequestByID(ctx context.Context, requestID string) (*models.OnRampRequest, error)
	FindRequestByTransactionRef(ctx context.Context, ref string) (*models.OnRampRequest, error)
	FinalizeRequest(ctx context.Context, params FinalizeOnRampParams) error
}

// RecordSettlementParams carries the fiat leg's result into a payment
// session, conditioned on the session not having been settled yet.
type RecordSettlementParams struct {
	SessionID         string
	TransactionHash   string
	TransactionCode   string
	TransferredAmount decimal.Decimal
	FinalFiatValue    decimal.Decimal
}

// SessionRepository defines persistence operations for off-ramp payment
// sessions. RecordSettlement and FinalizeSession carry the same atomic
// conditional-update contract as OnRampRepository.FinalizeRequest.
type SessionRepository interface {
	SaveSession(ctx context.Context, session models.PaymentSession) error
	FindSessionByID(ctx context.Context, sessionID string) (*models.PaymentSession, error)
	FindSessionByTransactionCode(ctx context.Context, code string) (*models.PaymentSession, error)
	RecordSettlement(ctx context.Context, params RecordSettlementParams) error
	FinalizeSession(ctx context.Context, code string, status models.SessionStatus, receiptNumber *string) error
}

// LedgerRepository defines persistence operations for the append-only audit
// ledger. There is deliberately no update or delete.
type LedgerRepository interface {
	SaveEntry(ctx context.Context, entry models.LedgerEntry) error
	FindEntriesByAddress(ctx context.Context, address string) ([]models.LedgerEntry, error)
	FindEntriesByPaymentMethod(ctx context.Context, methodID string) ([]models.LedgerEntry, error)
}

// KVRepository defines the operational settings store.
type KVRepository interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (*models.KVPair, error)
	Delete(ctx context.Context, key string) (bool, error)
}
