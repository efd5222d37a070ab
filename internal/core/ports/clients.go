package ports

import (
	"context"

	"github.com/cradle-labs/tuma-integrator/internal/models"
	"github.com/shopspring/decimal"
)

// PriceOracle quotes crypto valuations by on-chain token address. The
// returned price is USD per one whole token.
type PriceOracle interface {
	USDPrice(ctx context.Context, tokenAddress string) (decimal.Decimal, error)
}

// FiatRates quotes fiat valuations by currency symbol. The returned rate is
// local currency units per USD.
type FiatRates interface {
	QuotedRate(ctx context.Context, currencySymbol string) (decimal.Decimal, error)
}

// CollectParams describes a fiat collection (money in) on a mobile rail.
type CollectParams struct {
	Shortcode     string
	Amount        string
	MobileNetwork string
	CurrencyCode  string
}

// DisburseParams describes a fiat disbursement (money out). Type selects the
// provider call shape: MOBILE, BUY_GOODS or PAYBILL.
type DisburseParams struct {
	Shortcode     string
	PayBill       string
	AccountNumber string
	Amount        string
	Type          string
	MobileNetwork string
	CurrencyCode  string
}

// RailReceipt is the provider's acknowledgment of a collect or disburse.
// TransactionCode is the tracking reference later echoed by callbacks.
type RailReceipt struct {
	TransactionCode string
	Status          string
	Message         string
	ReceiptNumber   *string
}

// FiatRail is the outbound provider transport for fiat legs.
type FiatRail interface {
	Collect(ctx context.Context, params CollectParams) (*RailReceipt, error)
	Disburse(ctx context.Context, params DisburseParams) (*RailReceipt, error)
}

// ChainTransferParams describes one outbound crypto settlement leg. Amount is
// a whole-token decimal; the transactor encodes it to integer units at the
// token's declared scale.
type ChainTransferParams struct {
	To            string
	Amount        decimal.Decimal
	Token         models.Currency
	CorrelationID string
}

// ChainTransactor builds, signs, submits and confirms a transfer, returning
// the transaction hash once confirmed. An unconfirmed submission surfaces
// apperrors.ErrChainUnconfirmed and must never be retried automatically.
type ChainTransactor interface {
	SendTransfer(ctx context.Context, params ChainTransferParams) (string, error)
	Address() string
}

// EventPublisher emits settlement lifecycle events. Publishing is
// best-effort; failures must never affect the settlement outcome.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}
