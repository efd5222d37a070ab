package services

import (
	"context"
	"fmt"

	"github.com/cradle-labs/tuma-integrator/internal/apperrors"
	"github.com/cradle-labs/tuma-integrator/internal/core/ports"
	"github.com/cradle-labs/tuma-integrator/internal/models"
	"github.com/shopspring/decimal"
)

// SendFiatRequest is the closed set of outbound fiat leg shapes. Dispatch is
// exhaustive; adding a variant without a Send case is a compile-visible
// change, not a silent drop.
type SendFiatRequest interface {
	fiatRequest()
}

// SendFiatMobile pays out to a mobile wallet; BuyGoods switches the
// provider call to a buy-goods till payment.
type SendFiatMobile struct {
	Amount    decimal.Decimal
	Phone     string
	NetworkID string
	Currency  models.Currency
	BuyGoods  bool
}

// SendFiatPayBill pays out to a pay-bill number with an account reference.
type SendFiatPayBill struct {
	Amount        decimal.Decimal
	PayBillNumber string
	AccountNumber string
	NetworkID     string
	Currency      models.Currency
}

// SendFiatBank pays out to a bank account. Bank settlement is not
// implemented yet and always fails with ErrRouteNotSupported.
type SendFiatBank struct {
	Amount        decimal.Decimal
	AccountNumber string
	BankID        string
	Currency      models.Currency
}

func (SendFiatMobile) fiatRequest()  {}
func (SendFiatPayBill) fiatRequest() {}
func (SendFiatBank) fiatRequest()    {}

// FiatSender maps each fiat leg variant onto the provider's disburse call
// shape and returns the provider's tracking code.
type FiatSender struct {
	rail ports.FiatRail
}

// NewFiatSender creates a FiatSender.
func NewFiatSender(rail ports.FiatRail) *FiatSender {
	return &FiatSender{rail: rail}
}

// Send dispatches one outbound fiat leg.
func (s *FiatSender) Send(ctx context.Context, req SendFiatRequest) (string, error) {
	var params ports.DisburseParams

	switch r := req.(type) {
	case SendFiatMobile:
		params = ports.DisburseParams{
			Shortcode:     r.Phone,
			Amount:        r.Amount.String(),
			Type:          "MOBILE",
			MobileNetwork: r.NetworkID,
			CurrencyCode:  r.Currency.Symbol,
		}
		if r.BuyGoods {
			params.Type = "BUY_GOODS"
		}
	case SendFiatPayBill:
		params = ports.DisburseParams{
			PayBill:       r.PayBillNumber,
			AccountNumber: r.AccountNumber,
			Amount:        r.Amount.String(),
			Type:          "PAYBILL",
			MobileNetwork: r.NetworkID,
			CurrencyCode:  r.Currency.Symbol,
		}
	case SendFiatBank:
		return "", fmt.Errorf("%w: bank disbursement", apperrors.ErrRouteNotSupported)
	default:
		return "", fmt.Errorf("unhandled fiat request variant %T", req)
	}

	receipt, err := s.rail.Disburse(ctx, params)
	if err != nil {
		return "", err
	}
	return receipt.TransactionCode, nil
}
