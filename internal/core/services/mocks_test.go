package services_test

import (
	"context"

	"github.com/cradle-labs/tuma-integrator/internal/core/ports"
	"github.com/cradle-labs/tuma-integrator/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock PaymentMethodRepository ---

type MockPaymentMethodRepository struct {
	mock.Mock
}

var _ ports.PaymentMethodRepository = (*MockPaymentMethodRepository)(nil)

func (m *MockPaymentMethodRepository) SavePaymentMethod(ctx context.Context, method models.PaymentMethod) error {
	args := m.Called(ctx, method)
	return args.Error(0)
}

func (m *MockPaymentMethodRepository) FindPaymentMethodByID(ctx context.Context, methodID string) (*models.PaymentMethod, error) {
	args := m.Called(ctx, methodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentMethod), args.Error(1)
}

// --- Mock OnRampRepository ---

type MockOnRampRepository struct {
	mock.Mock
}

var _ ports.OnRampRepository = (*MockOnRampRepository)(nil)

func (m *MockOnRampRepository) SaveRequest(ctx context.Context, request models.OnRampRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockOnRampRepository) FindRequestByID(ctx context.Context, requestID string) (*models.OnRampRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OnRampRequest), args.Error(1)
}

func (m *MockOnRampRepository) FindRequestByTransactionRef(ctx context.Context, ref string) (*models.OnRampRequest, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OnRampRequest), args.Error(1)
}

func (m *MockOnRampRepository) FinalizeRequest(ctx context.Context, params ports.FinalizeOnRampParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

// --- Mock SessionRepository ---

type MockSessionRepository struct {
	mock.Mock
}

var _ ports.SessionRepository = (*MockSessionRepository)(nil)

func (m *MockSessionRepository) SaveSession(ctx context.Context, session models.PaymentSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) FindSessionByID(ctx context.Context, sessionID string) (*models.PaymentSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentSession), args.Error(1)
}

func (m *MockSessionRepository) FindSessionByTransactionCode(ctx context.Context, code string) (*models.PaymentSession, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentSession), args.Error(1)
}

func (m *MockSessionRepository) RecordSettlement(ctx context.Context, params ports.RecordSettlementParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *MockSessionRepository) FinalizeSession(ctx context.Context, code string, status models.SessionStatus, receiptNumber *string) error {
	args := m.Called(ctx, code, status, receiptNumber)
	return args.Error(0)
}

// --- Mock LedgerRepository ---

type MockLedgerRepository struct {
	mock.Mock
}

var _ ports.LedgerRepository = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) SaveEntry(ctx context.Context, entry models.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) FindEntriesByAddress(ctx context.Context, address string) ([]models.LedgerEntry, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) FindEntriesByPaymentMethod(ctx context.Context, methodID string) ([]models.LedgerEntry, error) {
	args := m.Called(ctx, methodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LedgerEntry), args.Error(1)
}

// --- Mock external clients ---

type MockPriceOracle struct {
	mock.Mock
}

var _ ports.PriceOracle = (*MockPriceOracle)(nil)

func (m *MockPriceOracle) USDPrice(ctx context.Context, tokenAddress string) (decimal.Decimal, error) {
	args := m.Called(ctx, tokenAddress)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockFiatRates struct {
	mock.Mock
}

var _ ports.FiatRates = (*MockFiatRates)(nil)

func (m *MockFiatRates) QuotedRate(ctx context.Context, currencySymbol string) (decimal.Decimal, error) {
	args := m.Called(ctx, currencySymbol)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockFiatRail struct {
	mock.Mock
}

var _ ports.FiatRail = (*MockFiatRail)(nil)

func (m *MockFiatRail) Collect(ctx context.Context, params ports.CollectParams) (*ports.RailReceipt, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.RailReceipt), args.Error(1)
}

func (m *MockFiatRail) Disburse(ctx context.Context, params ports.DisburseParams) (*ports.RailReceipt, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.RailReceipt), args.Error(1)
}

type MockChainTransactor struct {
	mock.Mock
}

var _ ports.ChainTransactor = (*MockChainTransactor)(nil)

func (m *MockChainTransactor) SendTransfer(ctx context.Context, params ports.ChainTransferParams) (string, error) {
	args := m.Called(ctx, params)
	return args.String(0), args.Error(1)
}

func (m *MockChainTransactor) Address() string {
	args := m.Called()
	return args.String(0)
}

type MockEventPublisher struct {
	mock.Mock
}

var _ ports.EventPublisher = (*MockEventPublisher)(nil)

func (m *MockEventPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	args := m.Called(ctx, routingKey, payload)
	return args.Error(0)
}
