package dto

import (
	"time"

	"github.com/cradle-labs/tuma-integrator/internal/models"
)

// CreateSessionRequest opens an off-ramp payment session. AccountIdentity is
// only set for pay-bill style destinations.
type CreateSessionRequest struct {
	Payer           string  `json:"payer" binding:"required,chain_address"`
	ProviderID      string  `json:"providerId" binding:"required"`
	PayerIdentity   string  `json:"payerIdentity" binding:"required"`
	AccountIdentity *string `json:"accountIdentity,omitempty"`
	Token           string  `json:"token" binding:"required"`
}

// SettleSessionRequest reports the observed inbound crypto transfer that
// triggers the fiat leg of a session.
type SettleSessionRequest struct {
	Amount          string `json:"amount" binding:"required"`
	TokenAddress    string `json:"tokenAddress" binding:"required,chain_address"`
	TransactionHash string `json:"transactionHash" binding:"required"`
}

// PaymentSessionResponse is the API view of a payment session.
type PaymentSessionResponse struct {
	SessionID         string     `json:"sessionId"`
	ProviderID        string     `json:"providerId"`
	PayerIdentity     string     `json:"payerIdentity"`
	AccountIdentity   *string    `json:"accountIdentity,omitempty"`
	Payer             string     `json:"payer"`
	Status            string     `json:"status"`
	RequestedAt       time.Time  `json:"requestedAt"`
	FinalizedAt       *time.Time `json:"finalizedAt,omitempty"`
	TransactionHash   *string    `json:"transactionHash,omitempty"`
	TransactionCode   *string    `json:"transactionCode,omitempty"`
	TransferredAmount string     `json:"transferredAmount"`
	TransferredToken  string     `json:"transferredToken"`
	FinalFiatValue    string     `json:"finalFiatValue"`
}

// ToPaymentSessionResponse maps the domain record into its API view.
func ToPaymentSessionResponse(s models.PaymentSession) PaymentSessionResponse {
	return PaymentSessionResponse{
		SessionID:         s.SessionID,
		ProviderID:        s.ProviderID,
		PayerIdentity:     s.PayerIdentity,
		AccountIdentity:   s.AccountIdentity,
		Payer:             s.Payer,
		Status:            string(s.Status),
		RequestedAt:       s.RequestedAt,
		FinalizedAt:       s.FinalizedAt,
		TransactionHash:   s.TransactionHash,
		TransactionCode:   s.TransactionCode,
		TransferredAmount: s.TransferredAmount.String(),
		TransferredToken:  s.TransferredToken,
		FinalFiatValue:    s.FinalFiatValue.String(),
	}
}
