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

// Provider callback status values.
const (
	callbackStatusComplete = "COMPLETE"
	callbackStatusFailed   = "FAILED"
)

// Settlement event routing keys.
const (
	EventSettlementCompleted = "settlement.completed"
	EventSettlementFailed    = "settlement.failed"
)

// OnRampService owns the on-ramp request lifecycle: creation dispatches the
// fiat collection leg and persists Pending; the provider callback triggers
// the crypto leg and the single Pending-conditioned finalize update.
type OnRampService struct {
	methods  ports.PaymentMethodRepository
	requests ports.OnRampRepository
	ledger   ports.LedgerRepository
	catalog  *registry.Registry
	rates    *RateService
	rail     ports.FiatRail
	chain    ports.ChainTransactor
	events   ports.EventPublisher
}

// NewOnRampService creates an OnRampService. events may be nil.
func NewOnRampService(
	methods ports.PaymentMethodRepository,
	requests ports.OnRampRepository,
	ledger ports.LedgerRepository,
	catalog *registry.Registry,
	rates *RateService,
	rail ports.FiatRail,
	chain ports.ChainTransactor,
	events ports.EventPublisher,
) *OnRampService {
	return &OnRampService{
		methods:  methods,
		requests: requests,
		ledger:   ledger,
		catalog:  catalog,
		rates:    rates,
		rail:     rail,
		chain:    chain,
		events:   events,
	}
}

// Create starts an on-ramp request: resolves the payment method, its
// provider and the target currency, dispatches the fiat collection, and
// persists the request Pending keyed by the provider's tracking code.
// Bank-rail providers are rejected before any external call is made.
func (s *OnRampService) Create(ctx context.Context, req dto.CreateOnRampRequest) (*models.OnRampRequest, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: bad amount %q", apperrors.ErrMalformedAmount, req.Amount)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	method, err := s.methods.FindPaymentMethodByID(ctx, req.PaymentMethodID)
	if err != nil {
		return nil, err
	}
	provider, err := s.catalog.LookupProvider(method.ProviderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.catalog.LookupByID(req.TargetCurrency); err != nil {
		return nil, err
	}
	if provider.RailType != models.RailTypeMobileMoney {
		return nil, fmt.Errorf("%w: %s collection", apperrors.ErrRouteNotSupported, provider.RailType)
	}

	receipt, err := s.rail.Collect(ctx, ports.CollectParams{
		Shortcode:     method.Identity,
		Amount:        amount.String(),
		MobileNetwork: provider.Name,
		CurrencyCode:  provider.SettlementCurrency.Symbol,
	})
	if err != nil {
		return nil, err
	}

	request := models.OnRampRequest{
		RequestID:       uuid.NewString(),
		Requester:       method.Owner,
		PaymentMethodID: method.MethodID,
		Status:          models.OnRampStatusPending,
		TransactionRef:  receipt.TransactionCode,
		Amount:          amount,
		TargetCurrency:  req.TargetCurrency,
		RequestedAt:     time.Now(),
	}
	if err := s.requests.SaveRequest(ctx, request); err != nil {
		return nil, err
	}
	return &request, nil
}

// GetRequest returns one request by id.
func (s *OnRampService) GetRequest(ctx context.Context, requestID string) (*models.OnRampRequest, error) {
	return s.requests.FindRequestByID(ctx, requestID)
}

// HandleCallback reconciles a provider callback against the pending request
// it references. A missing request or a request already out of Pending is a
// duplicate/unknown submission: ErrDoubleSubmission is returned for the
// caller to absorb. A successful callback triggers the crypto settlement
// leg before the conditional finalize; the conditional update is the sole
// authority on which of any concurrent duplicate callbacks wins.
func (s *OnRampService) HandleCallback(ctx context.Context, callback dto.TransactionCallback) error {
	logger := middleware.GetLoggerFromCtx(ctx).With(
		slog.String("transaction_code", callback.TransactionCode))

	request, err := s.requests.FindRequestByTransactionRef(ctx, callback.TransactionCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: no request for code %s", apperrors.ErrDoubleSubmission, callback.TransactionCode)
		}
		return err
	}
	if request.Status.Terminal() {
		return fmt.Errorf("%w: request %s already %s", apperrors.ErrDoubleSubmission, request.RequestID, request.Status)
	}

	status := mapCallbackStatus(callback.Status)
	if status != models.OnRampStatusCompleted {
		// failed or unrecognized provider outcome: no crypto leg, finalize terminal
		if err := s.requests.FinalizeRequest(ctx, ports.FinalizeOnRampParams{
			TransactionRef: callback.TransactionCode,
			Status:         status,
			ReceiptNumber:  callback.ReceiptNumber,
		}); err != nil {
			return err
		}
		s.publish(ctx, EventSettlementFailed, request, nil)
		logger.Warn("on-ramp request finalized without settlement",
			slog.String("status", string(status)),
			slog.String("provider_message", callback.Message))
		return nil
	}

	method, err := s.methods.FindPaymentMethodByID(ctx, request.PaymentMethodID)
	if err != nil {
		return err
	}
	provider, err := s.catalog.LookupProvider(method.ProviderID)
	if err != nil {
		return err
	}
	target, err := s.catalog.LookupByID(request.TargetCurrency)
	if err != nil {
		return err
	}

	quote, err := s.rates.Convert(ctx, request.Amount, provider.SettlementCurrency, target)
	if err != nil {
		return err
	}

	// The request stays Pending when this leg fails: no automatic retry, the
	// sequence number may already be spent. Operator follow-up required.
	hash, err := s.chain.SendTransfer(ctx, ports.ChainTransferParams{
		To:            request.Requester,
		Amount:        quote,
		Token:         target,
		CorrelationID: request.RequestID,
	})
	if err != nil {
		return err
	}

	if err := s.requests.FinalizeRequest(ctx, ports.FinalizeOnRampParams{
		TransactionRef:  callback.TransactionCode,
		Status:          models.OnRampStatusCompleted,
		FinalTokenQuote: &quote,
		OnChainTxHash:   &hash,
		ReceiptNumber:   callback.ReceiptNumber,
	}); err != nil {
		return err
	}

	methodID := request.PaymentMethodID
	if err := s.ledger.SaveEntry(ctx, models.LedgerEntry{
		EntryID:         uuid.NewString(),
		Address:         request.Requester,
		EntryType:       models.LedgerEntryOnChain,
		TransactionType: models.TransactionTypeDeposit,
		TransactionHash: &hash,
		PaymentMethodID: &methodID,
		RecordedAt:      time.Now(),
	}); err != nil {
		logger.Error("failed to record audit ledger entry", slog.String("error", err.Error()))
	}

	s.publish(ctx, EventSettlementCompleted, request, &hash)
	logger.Info("on-ramp request completed",
		slog.String("request_id", request.RequestID),
		slog.String("tx_hash", hash),
		slog.String("final_quote", quote.String()))
	return nil
}

func (s *OnRampService) publish(ctx context.Context, routingKey string, request *models.OnRampRequest, hash *string) {
	if s.events == nil {
		return
	}
	payload := map[string]any{
		"requestId":      request.RequestID,
		"transactionRef": request.TransactionRef,
		"requester":      request.Requester,
		"direction":      "onramp",
	}
	if hash != nil {
		payload["onChainTxHash"] = *hash
	}
	if err := s.events.Publish(ctx, routingKey, payload); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("failed to publish settlement event",
			slog.String("routing_key", routingKey),
			slog.String("error", err.Error()))
	}
}

func mapCallbackStatus(status string) models.OnRampStatus {
	switch status {
	case callbackStatusComplete:
		return models.OnRampStatusCompleted
	case callbackStatusFailed:
		return models.OnRampStatusFailed
	default:
		return models.OnRampStatusCanceled
	}
}
