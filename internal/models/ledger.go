package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntryType says which side of the bridge an entry was observed on.
type LedgerEntryType string

const (
	LedgerEntryOnChain  LedgerEntryType = "on-chain"
	LedgerEntryOffChain LedgerEntryType = "off-chain"
)

// TransactionType is the direction of value relative to the account.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
)

// LedgerEntry is an append-only audit record of a finalized settlement leg.
// Entries are never updated or deleted.
type LedgerEntry struct {
	EntryID                   string           `json:"entryId"`
	Address                   string           `json:"address"`
	EntryType                 LedgerEntryType  `json:"entryType"`
	TransactionType           TransactionType  `json:"transactionType"`
	OnChainTransactionVersion *decimal.Decimal `json:"onChainTransactionVersion,omitempty"`
	TransactionHash           *string          `json:"transactionHash,omitempty"`
	PaymentMethodID           *string          `json:"paymentMethodId,omitempty"`
	RecordedAt                time.Time        `json:"recordedAt"`
}
