package services

import (
	"github.com/cradle-labs/tuma-integrator/internal/core/ports"
	"github.com/cradle-labs/tuma-integrator/internal/registry"
)

// ServiceContainer bundles the service layer for handler wiring.
type ServiceContainer struct {
	Accounts *AccountService
	OnRamp   *OnRampService
	OffRamp  *OffRampService
	Rates    *RateService
	Ledger   *LedgerService
	Settings *SettingsService
}

// Repositories is the persistence surface the container consumes.
type Repositories struct {
	Accounts ports.AccountRepository
	Methods  ports.PaymentMethodRepository
	Requests ports.OnRampRepository
	Sessions ports.SessionRepository
	Ledger   ports.LedgerRepository
	KV       ports.KVRepository
}

// Clients is the external surface the container consumes. Events may be nil
// when no broker is configured.
type Clients struct {
	Oracle ports.PriceOracle
	Fiat   ports.FiatRates
	Rail   ports.FiatRail
	Chain  ports.ChainTransactor
	Events ports.EventPublisher
}

// NewServiceContainer wires all services.
func NewServiceContainer(repos Repositories, clients Clients, catalog *registry.Registry) *ServiceContainer {
	rates := NewRateService(clients.Oracle, clients.Fiat)
	sender := NewFiatSender(clients.Rail)
	return &ServiceContainer{
		Accounts: NewAccountService(repos.Accounts, repos.Methods, catalog),
		OnRamp:   NewOnRampService(repos.Methods, repos.Requests, repos.Ledger, catalog, rates, clients.Rail, clients.Chain, clients.Events),
		OffRamp:  NewOffRampService(repos.Sessions, repos.Ledger, catalog, rates, sender, clients.Events),
		Rates:    rates,
		Ledger:   NewLedgerService(repos.Ledger),
		Settings: NewSettingsService(repos.KV),
	}
}
