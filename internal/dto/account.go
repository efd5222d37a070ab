package dto

// CreateAccountRequest registers a chain address with the integrator.
type CreateAccountRequest struct {
	Address string `json:"address" binding:"required,chain_address"`
}

// CreatePaymentMethodRequest attaches a fiat identity to an account.
// AccountIdentity is only set for pay-bill style destinations.
type CreatePaymentMethodRequest struct {
	MethodType      string  `json:"methodType" binding:"required,oneof=bank mobile-money"`
	Identity        string  `json:"identity" binding:"required"`
	AccountIdentity *string `json:"accountIdentity,omitempty"`
	ProviderID      string  `json:"providerId" binding:"required"`
}

// SetSettingRequest writes one operational settings key.
type SetSettingRequest struct {
	Value string `json:"value" binding:"required"`
}
