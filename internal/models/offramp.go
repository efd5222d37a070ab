package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionStatus is the lifecycle state of an off-ramp payment session.
type SessionStatus string

const (
	SessionStatusPending   SessionStatus = "pending"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusFailed    SessionStatus = "failed"
)

// Terminal reports whether the status permits no further transition.
func (s SessionStatus) Terminal() bool {
	return s != SessionStatusPending
}

// PaymentSession tracks one crypto-in / fiat-out settlement. The inbound
// crypto transfer is observed externally and reported through Settle; the
// fiat leg's provider tracking code then keys the disburse callback.
type PaymentSession struct {
	SessionID         string          `json:"sessionId"`
	ProviderID        string          `json:"providerId"`
	PayerIdentity     string          `json:"payerIdentity"`
	AccountIdentity   *string         `json:"accountIdentity,omitempty"`
	Payer             string          `json:"payer"`
	Status            SessionStatus   `json:"status"`
	RequestedAt       time.Time       `json:"requestedAt"`
	FinalizedAt       *time.Time      `json:"finalizedAt,omitempty"`
	TransactionHash   *string         `json:"transactionHash,omitempty"`
	TransactionCode   *string         `json:"transactionCode,omitempty"`
	TransferredAmount decimal.Decimal `json:"transferredAmount"`
	TransferredToken  string          `json:"transferredToken"`
	FinalFiatValue    decimal.Decimal `json:"finalFiatValue"`
	ReceiptNumber     *string         `json:"receiptNumber,omitempty"`
}
