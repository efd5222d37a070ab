package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cradle-labs/tuma-integrator/internal/apperrors"
	"github.com/cradle-labs/tuma-integrator/internal/core/ports"
	"github.com/cradle-labs/tuma-integrator/internal/dto"
	"github.com/cradle-labs/tuma-integrator/internal/middleware"
	"github.com/cradle-labs/tuma-integrator/internal/models"
	"github.com/cradle-labs/tuma-integrator/internal/registry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OffRampService owns payment sessions: a session is opened against a fiat
// destination, settled once the incoming crypto transfer is observed, and
// finalized by the fiat provider's disbursement callback.
type OffRampService struct {
	sessions ports.SessionRepository
	ledger   ports.LedgerRepository
	catalog  *registry.Registry
	rates    *RateService
	sender   *FiatSender
	events   ports.EventPublisher
}

// NewOffRampService creates an OffRampService. events may be nil.
func NewOffRampService(
	sessions ports.SessionRepository,
	ledger ports.LedgerRepository,
	catalog *registry.Registry,
	rates *RateService,
	sender *FiatSender,
	events ports.EventPublisher,
) *OffRampService {
	return &OffRampService{
		sessions: sessions,
		ledger:   ledger,
		catalog:  catalog,
		rates:    rates,
		sender:   sender,
		events:   events,
	}
}

// CreateSession opens a pending payment session. The fiat destination and
// the expected token are validated here, before any crypto is accepted
// against the session.
func (s *OffRampService) CreateSession(ctx context.Context, req dto.CreateSessionRequest) (*models.PaymentSession, error) {
	if _, err := s.catalog.LookupProvider(req.ProviderID); err != nil {
		return nil, err
	}
	if _, err := s.catalog.LookupByID(req.Token); err != nil {
		return nil, err
	}

	session := models.PaymentSession{
		SessionID:        uuid.NewString(),
		ProviderID:       req.ProviderID,
		PayerIdentity:    req.PayerIdentity,
		AccountIdentity:  req.AccountIdentity,
		Payer:            req.Payer,
		Status:           models.SessionStatusPending,
		RequestedAt:      time.Now(),
		TransferredToken: req.Token,
	}
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetSession returns one session by id.
func (s *OffRampService) GetSession(ctx context.Context, sessionID string) (*models.PaymentSession, error) {
	return s.sessions.FindSessionByID(ctx, sessionID)
}

// Settle processes an observed incoming crypto transfer for a session:
// values the transfer in the provider's settlement currency, dispatches the
// fiat payout, and records the settlement leg against the session. The
// session stays Pending until the provider's disbursement callback lands.
func (s *OffRampService) Settle(ctx context.Context, sessionID string, req dto.SettleSessionRequest) (*models.PaymentSession, error) {
	logger := middleware.GetLoggerFromCtx(ctx).With(slog.String("session_id", sessionID))

	session, err := s.sessions.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionStatusPending {
		return nil, fmt.Errorf("%w: session %s already %s", apperrors.ErrDoubleSubmission, sessionID, session.Status)
	}
	if session.TransactionCode != nil {
		return nil, fmt.Errorf("%w: session %s already settled", apperrors.ErrDoubleSubmission, sessionID)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: bad amount %q", apperrors.ErrMalformedAmount, req.Amount)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	token, err := s.catalog.LookupByAddress(req.TokenAddress)
	if err != nil {
		return nil, err
	}
	provider, err := s.catalog.LookupProvider(session.ProviderID)
	if err != nil {
		return nil, err
	}

	fiatValue, err := s.rates.Convert(ctx, amount, token, provider.SettlementCurrency)
	if err != nil {
		return nil, err
	}

	code, err := s.sender.Send(ctx, disburseRequestFor(session, provider, fiatValue))
	if err != nil {
		return nil, err
	}

	// Losing the conditional update here means a concurrent settle already
	// claimed the session after our pending check.
	if err := s.sessions.RecordSettlement(ctx, ports.RecordSettlementParams{
		SessionID:         sessionID,
		TransactionHash:   req.TransactionHash,
		TransactionCode:   code,
		TransferredAmount: amount,
		FinalFiatValue:    fiatValue,
	}); err != nil {
		return nil, err
	}

	txHash := req.TransactionHash
	if err := s.ledger.SaveEntry(ctx, models.LedgerEntry{
		EntryID:         uuid.NewString(),
		Address:         session.Payer,
		EntryType:       models.LedgerEntryOffChain,
		TransactionType: models.TransactionTypeWithdrawal,
		TransactionHash: &txHash,
		RecordedAt:      time.Now(),
	}); err != nil {
		logger.Error("failed to record audit ledger entry", slog.String("error", err.Error()))
	}

	logger.Info("session settlement dispatched",
		slog.String("transaction_code", code),
		slog.String("fiat_value", fiatValue.String()))

	return s.sessions.FindSessionByID(ctx, sessionID)
}

// HandleDisburseCallback finalizes the session the provider's tracking code
// references. Only a COMPLETE outcome completes the session; any other
// outcome fails it. Duplicate or unknown callbacks surface as
// ErrDoubleSubmission for the caller to absorb.
func (s *OffRampService) HandleDisburseCallback(ctx context.Context, callback dto.TransactionCallback) error {
	logger := middleware.GetLoggerFromCtx(ctx).With(
		slog.String("transaction_code", callback.TransactionCode))

	session, err := s.sessions.FindSessionByTransactionCode(ctx, callback.TransactionCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: no session for code %s", apperrors.ErrDoubleSubmission, callback.TransactionCode)
		}
		return err
	}
	if session.Status != models.SessionStatusPending {
		return fmt.Errorf("%w: session %s already %s", apperrors.ErrDoubleSubmission, session.SessionID, session.Status)
	}

	status := models.SessionStatusFailed
	routingKey := EventSettlementFailed
	if callback.Status == callbackStatusComplete {
		status = models.SessionStatusCompleted
		routingKey = EventSettlementCompleted
	}

	if err := s.sessions.FinalizeSession(ctx, callback.TransactionCode, status, callback.ReceiptNumber); err != nil {
		return err
	}

	if s.events != nil {
		payload := map[string]any{
			"sessionId":       session.SessionID,
			"transactionCode": callback.TransactionCode,
			"payer":           session.Payer,
			"direction":       "offramp",
			"status":          string(status),
		}
		if err := s.events.Publish(ctx, routingKey, payload); err != nil {
			logger.Warn("failed to publish settlement event",
				slog.String("routing_key", routingKey),
				slog.String("error", err.Error()))
		}
	}

	logger.Info("session finalized",
		slog.String("session_id", session.SessionID),
		slog.String("status", string(status)))
	return nil
}

// disburseRequestFor picks the payout shape from the session's destination:
// a bank-rail provider is passed through for the sender to reject, an
// account identity makes it a pay-bill payout, everything else is mobile.
func disburseRequestFor(session *models.PaymentSession, provider models.Provider, amount decimal.Decimal) SendFiatRequest {
	if provider.RailType == models.RailTypeBank {
		return SendFiatBank{
			Amount:        amount,
			AccountNumber: session.PayerIdentity,
			BankID:        provider.ID,
			Currency:      provider.SettlementCurrency,
		}
	}
	if session.AccountIdentity != nil && *session.AccountIdentity != "" {
		return SendFiatPayBill{
			Amount:        amount,
			PayBillNumber: session.PayerIdentity,
			AccountNumber: *session.AccountIdentity,
			NetworkID:     provider.Name,
			Currency:      provider.SettlementCurrency,
		}
	}
	return SendFiatMobile{
		Amount:    amount,
		Phone:     session.PayerIdentity,
		NetworkID: provider.Name,
		Currency:  provider.SettlementCurrency,
	}
}
