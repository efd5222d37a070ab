package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/cradle-labs/tuma-integrator/internal/apperrors"
	"github.com/cradle-labs/tuma-integrator/internal/core/ports"
	"github.com/cradle-labs/tuma-integrator/internal/core/services"
	"github.com/cradle-labs/tuma-integrator/internal/dto"
	"github.com/cradle-labs/tuma-integrator/internal/models"
	"github.com/cradle-labs/tuma-integrator/internal/registry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type OffRampServiceTestSuite struct {
	suite.Suite
	sessions *MockSessionRepository
	ledger   *MockLedgerRepository
	rail     *MockFiatRail
	oracle   *MockPriceOracle
	fiat     *MockFiatRates
	events   *MockEventPublisher
	service  *services.OffRampService
	ctx      context.Context
}

func (s *OffRampServiceTestSuite) SetupTest() {
	s.sessions = new(MockSessionRepository)
	s.ledger = new(MockLedgerRepository)
	s.rail = new(MockFiatRail)
	s.oracle = new(MockPriceOracle)
	s.fiat = new(MockFiatRates)
	s.events = new(MockEventPublisher)
	s.ctx = context.Background()

	rates := services.NewRateService(s.oracle, s.fiat)
	s.service = services.NewOffRampService(
		s.sessions, s.ledger, registry.Default(), rates,
		services.NewFiatSender(s.rail), s.events,
	)
}

func TestOffRampServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OffRampServiceTestSuite))
}

func pendingSession() *models.PaymentSession {
	return &models.PaymentSession{
		SessionID:        "sess-1",
		ProviderID:       "safaricom",
		PayerIdentity:    "+254700000001",
		Payer:            "0xb0b",
		Status:           models.SessionStatusPending,
		RequestedAt:      time.Now(),
		TransferredToken: "apt",
	}
}

func (s *OffRampServiceTestSuite) TestCreateSession_ValidatesDestination() {
	var saved models.PaymentSession
	s.sessions.On("SaveSession", s.ctx, mock.AnythingOfType("models.PaymentSession")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(models.PaymentSession)
		}).Return(nil)

	session, err := s.service.CreateSession(s.ctx, dto.CreateSessionRequest{
		Payer:         "0xb0b",
		ProviderID:    "safaricom",
		PayerIdentity: "+254700000001",
		Token:         "apt",
	})
	s.Require().NoError(err)
	s.Equal(models.SessionStatusPending, session.Status)
	s.Equal("apt", session.TransferredToken)
	s.Equal(saved.SessionID, session.SessionID)
}

func (s *OffRampServiceTestSuite) TestCreateSession_UnknownProvider() {
	_, err := s.service.CreateSession(s.ctx, dto.CreateSessionRequest{
		Payer:         "0xb0b",
		ProviderID:    "no-such-provider",
		PayerIdentity: "+254700000001",
		Token:         "apt",
	})
	s.ErrorIs(err, apperrors.ErrNotFound)
	s.sessions.AssertNotCalled(s.T(), "SaveSession", mock.Anything, mock.Anything)
}

func (s *OffRampServiceTestSuite) TestSettle_DispatchesFiatAndRecordsSettlement() {
	session := pendingSession()
	settled := *session
	code := "TX-OFF-1"
	settled.TransactionCode = &code

	s.sessions.On("FindSessionByID", mock.Anything, "sess-1").Return(session, nil).Once()

	// 5 USD per APT, 100 KES per USD: 2 APT pays out 1000 KES
	s.oracle.On("USDPrice", mock.Anything, "0xa").Return(decimal.NewFromInt(5), nil)
	s.fiat.On("QuotedRate", mock.Anything, "KES").Return(decimal.NewFromInt(100), nil)

	s.rail.On("Disburse", mock.Anything, mock.MatchedBy(func(p ports.DisburseParams) bool {
		return p.Type == "MOBILE" && p.Shortcode == "+254700000001" && p.Amount == "1000"
	})).Return(&ports.RailReceipt{TransactionCode: "TX-OFF-1", Status: "PENDING"}, nil)

	s.sessions.On("RecordSettlement", mock.Anything, mock.MatchedBy(func(p ports.RecordSettlementParams) bool {
		return p.SessionID == "sess-1" &&
			p.TransactionCode == "TX-OFF-1" &&
			p.TransactionHash == "0xdeadbeef" &&
			p.TransferredAmount.Equal(decimal.NewFromInt(2)) &&
			p.FinalFiatValue.Equal(decimal.NewFromInt(1000))
	})).Return(nil)

	s.ledger.On("SaveEntry", mock.Anything, mock.MatchedBy(func(e models.LedgerEntry) bool {
		return e.Address == "0xb0b" &&
			e.EntryType == models.LedgerEntryOffChain &&
			e.TransactionType == models.TransactionTypeWithdrawal
	})).Return(nil)

	s.sessions.On("FindSessionByID", mock.Anything, "sess-1").Return(&settled, nil).Once()

	out, err := s.service.Settle(s.ctx, "sess-1", dto.SettleSessionRequest{
		Amount:          "2",
		TokenAddress:    "0xa",
		TransactionHash: "0xdeadbeef",
	})
	s.Require().NoError(err)
	s.Require().NotNil(out.TransactionCode)
	s.Equal("TX-OFF-1", *out.TransactionCode)
	s.sessions.AssertExpectations(s.T())
	s.rail.AssertExpectations(s.T())
	s.ledger.AssertExpectations(s.T())
}

func (s *OffRampServiceTestSuite) TestSettle_PayBillDestination() {
	session := pendingSession()
	account := "ACC-9"
	session.AccountIdentity = &account
	session.PayerIdentity = "400200"

	s.sessions.On("FindSessionByID", mock.Anything, "sess-1").Return(session, nil)
	s.oracle.On("USDPrice", mock.Anything, "0xa").Return(decimal.NewFromInt(5), nil)
	s.fiat.On("QuotedRate", mock.Anything, "KES").Return(decimal.NewFromInt(100), nil)
	s.rail.On("Disburse", mock.Anything, mock.MatchedBy(func(p ports.DisburseParams) bool {
		return p.Type == "PAYBILL" && p.PayBill == "400200" && p.AccountNumber == "ACC-9"
	})).Return(&ports.RailReceipt{TransactionCode: "TX-OFF-2"}, nil)
	s.sessions.On("RecordSettlement", mock.Anything, mock.Anything).Return(nil)
	s.ledger.On("SaveEntry", mock.Anything, mock.Anything).Return(nil)

	_, err := s.service.Settle(s.ctx, "sess-1", dto.SettleSessionRequest{
		Amount:          "2",
		TokenAddress:    "0xa",
		TransactionHash: "0xdeadbeef",
	})
	s.Require().NoError(err)
	s.rail.AssertExpectations(s.T())
}

func (s *OffRampServiceTestSuite) TestSettle_NonPendingSessionIsDoubleSubmission() {
	session := pendingSession()
	session.Status = models.SessionStatusCompleted
	s.sessions.On("FindSessionByID", mock.Anything, "sess-1").Return(session, nil)

	_, err := s.service.Settle(s.ctx, "sess-1", dto.SettleSessionRequest{
		Amount:          "2",
		TokenAddress:    "0xa",
		TransactionHash: "0xdeadbeef",
	})
	s.ErrorIs(err, apperrors.ErrDoubleSubmission)
	s.rail.AssertNotCalled(s.T(), "Disburse", mock.Anything, mock.Anything)
}

func (s *OffRampServiceTestSuite) TestSettle_AlreadySettledSessionIsDoubleSubmission() {
	session := pendingSession()
	code := "TX-OFF-1"
	session.TransactionCode = &code
	s.sessions.On("FindSessionByID", mock.Anything, "sess-1").Return(session, nil)

	_, err := s.service.Settle(s.ctx, "sess-1", dto.SettleSessionRequest{
		Amount:          "2",
		TokenAddress:    "0xa",
		TransactionHash: "0xdeadbeef",
	})
	s.ErrorIs(err, apperrors.ErrDoubleSubmission)
}

func (s *OffRampServiceTestSuite) TestSettle_UnknownTokenAddress() {
	session := pendingSession()
	s.sessions.On("FindSessionByID", mock.Anything, "sess-1").Return(session, nil)

	_, err := s.service.Settle(s.ctx, "sess-1", dto.SettleSessionRequest{
		Amount:          "2",
		TokenAddress:    "0xffff",
		TransactionHash: "0xdeadbeef",
	})
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *OffRampServiceTestSuite) TestHandleDisburseCallback_CompletesSession() {
	session := pendingSession()
	code := "TX-OFF-1"
	session.TransactionCode = &code

	s.sessions.On("FindSessionByTransactionCode", mock.Anything, "TX-OFF-1").Return(session, nil)
	s.sessions.On("FinalizeSession", mock.Anything, "TX-OFF-1", models.SessionStatusCompleted, mock.Anything).Return(nil)
	s.events.On("Publish", mock.Anything, services.EventSettlementCompleted, mock.Anything).Return(nil)

	err := s.service.HandleDisburseCallback(s.ctx, dto.TransactionCallback{
		Status:          "COMPLETE",
		TransactionCode: "TX-OFF-1",
	})
	s.Require().NoError(err)
	s.sessions.AssertExpectations(s.T())
	s.events.AssertExpectations(s.T())
}

func (s *OffRampServiceTestSuite) TestHandleDisburseCallback_NonCompleteFailsSession() {
	session := pendingSession()
	s.sessions.On("FindSessionByTransactionCode", mock.Anything, "TX-OFF-1").Return(session, nil)
	s.sessions.On("FinalizeSession", mock.Anything, "TX-OFF-1", models.SessionStatusFailed, mock.Anything).Return(nil)
	s.events.On("Publish", mock.Anything, services.EventSettlementFailed, mock.Anything).Return(nil)

	err := s.service.HandleDisburseCallback(s.ctx, dto.TransactionCallback{
		Status:          "TIMED_OUT",
		TransactionCode: "TX-OFF-1",
	})
	s.Require().NoError(err)
}

func (s *OffRampServiceTestSuite) TestHandleDisburseCallback_UnknownCodeIsDoubleSubmission() {
	s.sessions.On("FindSessionByTransactionCode", mock.Anything, "TX-404").
		Return(nil, apperrors.ErrNotFound)

	err := s.service.HandleDisburseCallback(s.ctx, dto.TransactionCallback{
		Status:          "COMPLETE",
		TransactionCode: "TX-404",
	})
	s.ErrorIs(err, apperrors.ErrDoubleSubmission)
}

func (s *OffRampServiceTestSuite) TestHandleDisburseCallback_FinalizedSessionIsDoubleSubmission() {
	session := pendingSession()
	session.Status = models.SessionStatusFailed
	s.sessions.On("FindSessionByTransactionCode", mock.Anything, "TX-OFF-1").Return(session, nil)

	err := s.service.HandleDisburseCallback(s.ctx, dto.TransactionCallback{
		Status:          "COMPLETE",
		TransactionCode: "TX-OFF-1",
	})
	s.ErrorIs(err, apperrors.ErrDoubleSubmission)
	s.sessions.AssertNotCalled(s.T(), "FinalizeSession", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
