package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OnRampStatus is the lifecycle state of an on-ramp request. Pending is the
// only non-terminal state; a request transitions out of it exactly once.
type OnRampStatus string

const (
	OnRampStatusPending   OnRampStatus = "pending"
	OnRampStatusCompleted OnRampStatus = "completed"
	OnRampStatusFailed    OnRampStatus = "failed"
	OnRampStatusCanceled  OnRampStatus = "canceled"
)

// Terminal reports whether the status permits no further transition.
func (s OnRampStatus) Terminal() bool {
	return s != OnRampStatusPending
}

// OnRampRequest tracks one fiat-in / crypto-out settlement from creation to
// finalization. TransactionRef holds the provider's tracking code and is the
// idempotency key for callback reconciliation.
type OnRampRequest struct {
	RequestID       string           `json:"requestId"`
	Requester       string           `json:"requester"`
	PaymentMethodID string           `json:"paymentMethodId"`
	Status          OnRampStatus     `json:"status"`
	TransactionRef  string           `json:"transactionRef"`
	Amount          decimal.Decimal  `json:"amount"`
	TargetCurrency  string           `json:"targetCurrency"`
	RequestedAt     time.Time        `json:"requestedAt"`
	FinalizedAt     *time.Time       `json:"finalizedAt,omitempty"`
	FinalTokenQuote *decimal.Decimal `json:"finalTokenQuote,omitempty"`
	OnChainTxHash   *string          `json:"onChainTxHash,omitempty"`
	ReceiptNumber   *string          `json:"receiptNumber,omitempty"`
}
