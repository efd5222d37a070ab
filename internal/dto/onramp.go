package dto

import (
	"time"

	"github.com/cradle-labs/tuma-integrator/internal/models"
)

// CreateOnRampRequest starts a fiat-in / crypto-out settlement.
type CreateOnRampRequest struct {
	PaymentMethodID string `json:"paymentMethodId" binding:"required,uuid"`
	Amount          string `json:"amount" binding:"required"`
	TargetCurrency  string `json:"targetCurrency" binding:"required"`
}

// TransactionCallback is the inbound webhook payload posted by the fiat
// provider for both collect and disburse legs. The caller is untrusted.
type TransactionCallback struct {
	Status          string  `json:"status" binding:"required"`
	TransactionCode string  `json:"transaction_code" binding:"required"`
	ReceiptNumber   *string `json:"receipt_number,omitempty"`
	PublicName      *string `json:"public_name,omitempty"`
	Message         string  `json:"message"`
}

// OnRampRequestResponse is the API view of an on-ramp request.
type OnRampRequestResponse struct {
	RequestID       string     `json:"requestId"`
	Requester       string     `json:"requester"`
	PaymentMethodID string     `json:"paymentMethodId"`
	Status          string     `json:"status"`
	TransactionRef  string     `json:"transactionRef"`
	Amount          string     `json:"amount"`
	TargetCurrency  string     `json:"targetCurrency"`
	RequestedAt     time.Time  `json:"requestedAt"`
	FinalizedAt     *time.Time `json:"finalizedAt,omitempty"`
	FinalTokenQuote *string    `json:"finalTokenQuote,omitempty"`
	OnChainTxHash   *string    `json:"onChainTxHash,omitempty"`
}

// ToOnRampRequestResponse maps the domain record into its API view.
func ToOnRampRequestResponse(r models.OnRampRequest) OnRampRequestResponse {
	resp := OnRampRequestResponse{
		RequestID:       r.RequestID,
		Requester:       r.Requester,
		PaymentMethodID: r.PaymentMethodID,
		Status:          string(r.Status),
		TransactionRef:  r.TransactionRef,
		Amount:          r.Amount.String(),
		TargetCurrency:  r.TargetCurrency,
		RequestedAt:     r.RequestedAt,
		FinalizedAt:     r.FinalizedAt,
		OnChainTxHash:   r.OnChainTxHash,
	}
	if r.FinalTokenQuote != nil {
		quote := r.FinalTokenQuote.String()
		resp.FinalTokenQuote = &quote
	}
	return resp
}
