package models

import "time"

// PaymentMethodType mirrors the provider rail the method belongs to.
type PaymentMethodType string

const (
	PaymentMethodTypeBank        PaymentMethodType = "bank"
	PaymentMethodTypeMobileMoney PaymentMethodType = "mobile-money"
)

// Account is a chain address known to the integrator.
type Account struct {
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
}

// PaymentMethod links an account to a fiat identity (phone number or bank
// account) at a specific provider. Created once, read-only afterwards.
type PaymentMethod struct {
	MethodID        string            `json:"methodId"`
	Owner           string            `json:"owner"`
	MethodType      PaymentMethodType `json:"methodType"`
	Identity        string            `json:"identity"`
	AccountIdentity *string           `json:"accountIdentity,omitempty"`
	ProviderID      string            `json:"providerId"`
	CreatedAt       time.Time         `json:"createdAt"`
}
