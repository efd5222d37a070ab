package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cradle-labs/tuma-integrator/internal/apperrors"
	"github.com/cradle-labs/tuma-integrator/internal/core/ports"
	"github.com/cradle-labs/tuma-integrator/internal/core/services"
	"github.com/cradle-labs/tuma-integrator/internal/dto"
	"github.com/cradle-labs/tuma-integrator/internal/models"
	"github.com/cradle-labs/tuma-integrator/internal/registry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type OnRampServiceTestSuite struct {
	suite.Suite
	methods  *MockPaymentMethodRepository
	requests *MockOnRampRepository
	ledger   *MockLedgerRepository
	rail     *MockFiatRail
	chain    *MockChainTransactor
	oracle   *MockPriceOracle
	fiat     *MockFiatRates
	events   *MockEventPublisher
	service  *services.OnRampService
	ctx      context.Context
}

func (s *OnRampServiceTestSuite) SetupTest() {
	s.methods = new(MockPaymentMethodRepository)
	s.requests = new(MockOnRampRepository)
	s.ledger = new(MockLedgerRepository)
	s.rail = new(MockFiatRail)
	s.chain = new(MockChainTransactor)
	s.oracle = new(MockPriceOracle)
	s.fiat = new(MockFiatRates)
	s.events = new(MockEventPublisher)
	s.ctx = context.Background()

	rates := services.NewRateService(s.oracle, s.fiat)
	s.service = services.NewOnRampService(
		s.methods, s.requests, s.ledger,
		registry.Default(), rates, s.rail, s.chain, s.events,
	)
}

func TestOnRampServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OnRampServiceTestSuite))
}

func mobileMethod() *models.PaymentMethod {
	return &models.PaymentMethod{
		MethodID:   "8c2f6b9e-1111-4222-8333-444455556666",
		Owner:      "0xb0b",
		MethodType: models.PaymentMethodTypeMobileMoney,
		Identity:   "+254700000001",
		ProviderID: "safaricom",
		CreatedAt:  time.Now(),
	}
}

func bankMethod() *models.PaymentMethod {
	return &models.PaymentMethod{
		MethodID:   "9d3f7c0f-1111-4222-8333-444455557777",
		Owner:      "0xb0b",
		MethodType: models.PaymentMethodTypeBank,
		Identity:   "0011223344",
		ProviderID: "equity-bank",
		CreatedAt:  time.Now(),
	}
}

func (s *OnRampServiceTestSuite) TestCreate_PersistsPendingWithTrackingRef() {
	method := mobileMethod()
	s.methods.On("FindPaymentMethodByID", s.ctx, method.MethodID).Return(method, nil)
	s.rail.On("Collect", s.ctx, ports.CollectParams{
		Shortcode:     "+254700000001",
		Amount:        "1000",
		MobileNetwork: "Safaricom",
		CurrencyCode:  "KES",
	}).Return(&ports.RailReceipt{TransactionCode: "TRK-1", Status: "PENDING"}, nil)

	var saved models.OnRampRequest
	s.requests.On("SaveRequest", s.ctx, mock.AnythingOfType("models.OnRampRequest")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(models.OnRampRequest)
		}).Return(nil)

	request, err := s.service.Create(s.ctx, dto.CreateOnRampRequest{
		PaymentMethodID: method.MethodID,
		Amount:          "1000",
		TargetCurrency:  "apt",
	})
	s.Require().NoError(err)

	s.Equal(models.OnRampStatusPending, request.Status)
	s.Equal("TRK-1", request.TransactionRef)
	s.Equal("0xb0b", request.Requester)
	s.Equal(saved.RequestID, request.RequestID)
	s.rail.AssertExpectations(s.T())
	s.requests.AssertExpectations(s.T())
}

func (s *OnRampServiceTestSuite) TestCreate_BankProviderFailsBeforeAnyExternalCall() {
	method := bankMethod()
	s.methods.On("FindPaymentMethodByID", s.ctx, method.MethodID).Return(method, nil)

	_, err := s.service.Create(s.ctx, dto.CreateOnRampRequest{
		PaymentMethodID: method.MethodID,
		Amount:          "1000",
		TargetCurrency:  "apt",
	})
	s.ErrorIs(err, apperrors.ErrRouteNotSupported)
	s.rail.AssertNotCalled(s.T(), "Collect", mock.Anything, mock.Anything)
	s.requests.AssertNotCalled(s.T(), "SaveRequest", mock.Anything, mock.Anything)
}

func (s *OnRampServiceTestSuite) TestCreate_RejectsMalformedAmount() {
	_, err := s.service.Create(s.ctx, dto.CreateOnRampRequest{
		PaymentMethodID: "any",
		Amount:          "12.3.4",
		TargetCurrency:  "apt",
	})
	s.ErrorIs(err, apperrors.ErrMalformedAmount)
}

func (s *OnRampServiceTestSuite) TestHandleCallback_CompletionRunsChainLeg() {
	method := mobileMethod()
	pending := &models.OnRampRequest{
		RequestID:       "req-1",
		Requester:       "0xb0b",
		PaymentMethodID: method.MethodID,
		Status:          models.OnRampStatusPending,
		TransactionRef:  "TRK-1",
		Amount:          decimal.NewFromInt(1000),
		TargetCurrency:  "apt",
	}

	s.requests.On("FindRequestByTransactionRef", mock.Anything, "TRK-1").Return(pending, nil)
	s.methods.On("FindPaymentMethodByID", mock.Anything, method.MethodID).Return(method, nil)

	// 100 KES per USD and 5 USD per APT: 1000 KES settles as 2 APT
	s.fiat.On("QuotedRate", mock.Anything, "KES").Return(decimal.NewFromInt(100), nil)
	s.oracle.On("USDPrice", mock.Anything, "0xa").Return(decimal.NewFromInt(5), nil)

	s.chain.On("SendTransfer", mock.Anything, mock.MatchedBy(func(p ports.ChainTransferParams) bool {
		return p.To == "0xb0b" && p.Token.ID == "apt" && p.CorrelationID == "req-1" && p.Amount.Equal(decimal.NewFromInt(2))
	})).Return("0xhash", nil)

	s.requests.On("FinalizeRequest", mock.Anything, mock.MatchedBy(func(p ports.FinalizeOnRampParams) bool {
		return p.TransactionRef == "TRK-1" &&
			p.Status == models.OnRampStatusCompleted &&
			p.FinalTokenQuote != nil && p.FinalTokenQuote.Equal(decimal.NewFromInt(2)) &&
			p.OnChainTxHash != nil && *p.OnChainTxHash == "0xhash"
	})).Return(nil)

	s.ledger.On("SaveEntry", mock.Anything, mock.MatchedBy(func(e models.LedgerEntry) bool {
		return e.Address == "0xb0b" &&
			e.EntryType == models.LedgerEntryOnChain &&
			e.TransactionType == models.TransactionTypeDeposit
	})).Return(nil)

	s.events.On("Publish", mock.Anything, services.EventSettlementCompleted, mock.Anything).Return(nil)

	err := s.service.HandleCallback(s.ctx, dto.TransactionCallback{
		Status:          "COMPLETE",
		TransactionCode: "TRK-1",
	})
	s.Require().NoError(err)
	s.chain.AssertExpectations(s.T())
	s.requests.AssertExpectations(s.T())
	s.ledger.AssertExpectations(s.T())
	s.events.AssertExpectations(s.T())
}

func (s *OnRampServiceTestSuite) TestHandleCallback_FailureSkipsChainLeg() {
	pending := &models.OnRampRequest{
		RequestID:      "req-2",
		Requester:      "0xb0b",
		Status:         models.OnRampStatusPending,
		TransactionRef: "TRK-2",
		Amount:         decimal.NewFromInt(500),
		TargetCurrency: "apt",
	}
	s.requests.On("FindRequestByTransactionRef", mock.Anything, "TRK-2").Return(pending, nil)
	s.requests.On("FinalizeRequest", mock.Anything, mock.MatchedBy(func(p ports.FinalizeOnRampParams) bool {
		return p.Status == models.OnRampStatusFailed && p.OnChainTxHash == nil
	})).Return(nil)
	s.events.On("Publish", mock.Anything, services.EventSettlementFailed, mock.Anything).Return(nil)

	err := s.service.HandleCallback(s.ctx, dto.TransactionCallback{
		Status:          "FAILED",
		TransactionCode: "TRK-2",
	})
	s.Require().NoError(err)
	s.chain.AssertNotCalled(s.T(), "SendTransfer", mock.Anything, mock.Anything)
}

func (s *OnRampServiceTestSuite) TestHandleCallback_UnrecognizedStatusCancels() {
	pending := &models.OnRampRequest{
		RequestID:      "req-3",
		Status:         models.OnRampStatusPending,
		TransactionRef: "TRK-3",
	}
	s.requests.On("FindRequestByTransactionRef", mock.Anything, "TRK-3").Return(pending, nil)
	s.requests.On("FinalizeRequest", mock.Anything, mock.MatchedBy(func(p ports.FinalizeOnRampParams) bool {
		return p.Status == models.OnRampStatusCanceled
	})).Return(nil)
	s.events.On("Publish", mock.Anything, services.EventSettlementFailed, mock.Anything).Return(nil)

	err := s.service.HandleCallback(s.ctx, dto.TransactionCallback{
		Status:          "SOMETHING_ELSE",
		TransactionCode: "TRK-3",
	})
	s.Require().NoError(err)
}

func (s *OnRampServiceTestSuite) TestHandleCallback_UnknownCodeIsDoubleSubmission() {
	s.requests.On("FindRequestByTransactionRef", mock.Anything, "TRK-404").
		Return(nil, apperrors.ErrNotFound)

	err := s.service.HandleCallback(s.ctx, dto.TransactionCallback{
		Status:          "COMPLETE",
		TransactionCode: "TRK-404",
	})
	s.ErrorIs(err, apperrors.ErrDoubleSubmission)
}

func (s *OnRampServiceTestSuite) TestHandleCallback_TerminalRequestIsDoubleSubmission() {
	done := &models.OnRampRequest{
		RequestID:      "req-4",
		Status:         models.OnRampStatusCompleted,
		TransactionRef: "TRK-4",
	}
	s.requests.On("FindRequestByTransactionRef", mock.Anything, "TRK-4").Return(done, nil)

	err := s.service.HandleCallback(s.ctx, dto.TransactionCallback{
		Status:          "COMPLETE",
		TransactionCode: "TRK-4",
	})
	s.ErrorIs(err, apperrors.ErrDoubleSubmission)
	s.chain.AssertNotCalled(s.T(), "SendTransfer", mock.Anything, mock.Anything)
}

// atomicOnRampStore is an in-memory OnRampRepository whose FinalizeRequest is
// a real compare-and-set, for exercising concurrent duplicate callbacks.
type atomicOnRampStore struct {
	mu       sync.Mutex
	requests map[string]models.OnRampRequest
}

func newAtomicOnRampStore() *atomicOnRampStore {
	return &atomicOnRampStore{requests: make(map[string]models.OnRampRequest)}
}

func (s *atomicOnRampStore) SaveRequest(_ context.Context, request models.OnRampRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[request.TransactionRef] = request
	return nil
}

func (s *atomicOnRampStore) FindRequestByID(_ context.Context, requestID string) (*models.OnRampRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.requests {
		if r.RequestID == requestID {
			out := r
			return &out, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *atomicOnRampStore) FindRequestByTransactionRef(_ context.Context, ref string) (*models.OnRampRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[ref]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := r
	return &out, nil
}

func (s *atomicOnRampStore) FinalizeRequest(_ context.Context, params ports.FinalizeOnRampParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[params.TransactionRef]
	if !ok || r.Status != models.OnRampStatusPending {
		return fmt.Errorf("%w: request %s is not pending", apperrors.ErrDoubleSubmission, params.TransactionRef)
	}
	r.Status = params.Status
	r.FinalTokenQuote = params.FinalTokenQuote
	r.OnChainTxHash = params.OnChainTxHash
	r.ReceiptNumber = params.ReceiptNumber
	now := time.Now()
	r.FinalizedAt = &now
	s.requests[params.TransactionRef] = r
	return nil
}

func TestHandleCallback_ConcurrentDuplicatesHaveOneWinner(t *testing.T) {
	const workers = 16

	store := newAtomicOnRampStore()
	method := mobileMethod()
	require.NoError(t, store.SaveRequest(context.Background(), models.OnRampRequest{
		RequestID:       uuid.NewString(),
		Requester:       "0xb0b",
		PaymentMethodID: method.MethodID,
		Status:          models.OnRampStatusPending,
		TransactionRef:  "TRK-RACE",
		Amount:          decimal.NewFromInt(1000),
		TargetCurrency:  "apt",
	}))

	methods := new(MockPaymentMethodRepository)
	methods.On("FindPaymentMethodByID", mock.Anything, method.MethodID).Return(method, nil)
	ledger := new(MockLedgerRepository)
	ledger.On("SaveEntry", mock.Anything, mock.Anything).Return(nil)
	oracle := new(MockPriceOracle)
	oracle.On("USDPrice", mock.Anything, "0xa").Return(decimal.NewFromInt(5), nil)
	fiat := new(MockFiatRates)
	fiat.On("QuotedRate", mock.Anything, "KES").Return(decimal.NewFromInt(100), nil)
	chain := new(MockChainTransactor)
	chain.On("SendTransfer", mock.Anything, mock.Anything).Return("0xhash", nil)

	svc := services.NewOnRampService(
		methods, store, ledger,
		registry.Default(), services.NewRateService(oracle, fiat),
		new(MockFiatRail), chain, nil,
	)

	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.HandleCallback(context.Background(), dto.TransactionCallback{
				Status:          "COMPLETE",
				TransactionCode: "TRK-RACE",
			})
		}()
	}
	wg.Wait()
	close(results)

	var wins, duplicates int
	for err := range results {
		switch {
		case err == nil:
			wins++
		default:
			assert.ErrorIs(t, err, apperrors.ErrDoubleSubmission)
			duplicates++
		}
	}
	assert.Equal(t, 1, wins, "exactly one callback must win the finalize")
	assert.Equal(t, workers-1, duplicates)

	final, err := store.FindRequestByTransactionRef(context.Background(), "TRK-RACE")
	require.NoError(t, err)
	assert.Equal(t, models.OnRampStatusCompleted, final.Status)
	require.NotNil(t, final.OnChainTxHash)
	assert.Equal(t, "0xhash", *final.OnChainTxHash)
}
