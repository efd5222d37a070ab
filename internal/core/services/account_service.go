package services

import (
	"context"
	"errors"
	"time"

	"github.com/cradle-labs/tuma-integrator/internal/apperrors"
	"github.com/cradle-labs/tuma-integrator/internal/core/ports"
	"github.com/cradle-labs/tuma-integrator/internal/dto"
	"github.com/cradle-labs/tuma-integrator/internal/models"
	"github.com/cradle-labs/tuma-integrator/internal/registry"
	"github.com/google/uuid"
)

// AccountService manages chain accounts and their attached payment methods.
type AccountService struct {
	accounts ports.AccountRepository
	methods  ports.PaymentMethodRepository
	catalog  *registry.Registry
}

// NewAccountService creates an AccountService.
func NewAccountService(accounts ports.AccountRepository, methods ports.PaymentMethodRepository, catalog *registry.Registry) *AccountService {
	return &AccountService{
		accounts: accounts,
		methods:  methods,
		catalog:  catalog,
	}
}

// Register records a chain address. Registering an already known address is
// a no-op returning the existing record.
func (s *AccountService) Register(ctx context.Context, req dto.CreateAccountRequest) (*models.Account, error) {
	existing, err := s.accounts.FindAccountByAddress(ctx, req.Address)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	account := models.Account{
		Address:   req.Address,
		CreatedAt: time.Now(),
	}
	if err := s.accounts.SaveAccount(ctx, account); err != nil {
		return nil, err
	}
	return &account, nil
}

// GetAccount returns one account by address.
func (s *AccountService) GetAccount(ctx context.Context, address string) (*models.Account, error) {
	return s.accounts.FindAccountByAddress(ctx, address)
}

// AddPaymentMethod attaches a fiat identity to an account. The provider must
// exist in the catalog.
func (s *AccountService) AddPaymentMethod(ctx context.Context, address string, req dto.CreatePaymentMethodRequest) (*models.PaymentMethod, error) {
	if _, err := s.accounts.FindAccountByAddress(ctx, address); err != nil {
		return nil, err
	}
	if _, err := s.catalog.LookupProvider(req.ProviderID); err != nil {
		return nil, err
	}

	method := models.PaymentMethod{
		MethodID:        uuid.NewString(),
		Owner:           address,
		MethodType:      models.PaymentMethodType(req.MethodType),
		Identity:        req.Identity,
		AccountIdentity: req.AccountIdentity,
		ProviderID:      req.ProviderID,
		CreatedAt:       time.Now(),
	}
	if err := s.methods.SavePaymentMethod(ctx, method); err != nil {
		return nil, err
	}
	return &method, nil
}

// GetPaymentMethod returns one payment method by id.
func (s *AccountService) GetPaymentMethod(ctx context.Context, methodID string) (*models.PaymentMethod, error) {
	return s.methods.FindPaymentMethodByID(ctx, methodID)
}
