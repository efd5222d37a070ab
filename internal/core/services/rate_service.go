package services

import (
	"context"
	"fmt"

	"github.com/cradle-labs/tuma-integrator/internal/apperrors"
	"github.com/cradle-labs/tuma-integrator/internal/core/ports"
	"github.com/cradle-labs/tuma-integrator/internal/models"
	"github.com/shopspring/decimal"
)

// RateService computes cross-rail amounts through a USD pivot.
//
// Valuations are normalized to one convention before any arithmetic: units
// of the currency per one USD. The fiat provider already quotes local units
// per USD, so its rate is used as-is; the crypto oracle quotes USD per
// token, so its price is inverted before use.
type RateService struct {
	oracle ports.PriceOracle
	fiat   ports.FiatRates
}

// NewRateService creates a RateService.
func NewRateService(oracle ports.PriceOracle, fiat ports.FiatRates) *RateService {
	return &RateService{
		oracle: oracle,
		fiat:   fiat,
	}
}

// UnitsPerUSD returns how many units of the currency one USD buys.
func (s *RateService) UnitsPerUSD(ctx context.Context, currency models.Currency) (decimal.Decimal, error) {
	switch currency.Kind {
	case models.CurrencyKindFiat:
		rate, err := s.fiat.QuotedRate(ctx, currency.Symbol)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to quote fiat rate for %s: %w", currency.Symbol, err)
		}
		if rate.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, fmt.Errorf("%w: non-positive quoted rate for %s", apperrors.ErrValidation, currency.Symbol)
		}
		return rate, nil

	case models.CurrencyKindCrypto:
		if currency.Chain != "aptos" {
			return decimal.Zero, fmt.Errorf("%w: %s settles on %q", apperrors.ErrChainNotSupported, currency.ID, currency.Chain)
		}
		if currency.Address == "" {
			return decimal.Zero, fmt.Errorf("%w: currency %s has no on-chain address", apperrors.ErrValidation, currency.ID)
		}
		usdPrice, err := s.oracle.USDPrice(ctx, currency.Address)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to quote usd price for %s: %w", currency.ID, err)
		}
		if usdPrice.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, fmt.Errorf("%w: non-positive usd price for %s", apperrors.ErrValidation, currency.ID)
		}
		return decimal.NewFromInt(1).Div(usdPrice), nil

	default:
		return decimal.Zero, fmt.Errorf("%w: unknown currency kind %q", apperrors.ErrValidation, currency.Kind)
	}
}

// Convert returns the amount of currency B equivalent to amount of currency
// A: amount / unitsPerUSD(A) * unitsPerUSD(B). Same-kind and mixed-kind
// pairs are both supported.
func (s *RateService) Convert(ctx context.Context, amount decimal.Decimal, from, to models.Currency) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative amount", apperrors.ErrValidation)
	}
	fromUnits, err := s.UnitsPerUSD(ctx, from)
	if err != nil {
		return decimal.Zero, err
	}
	toUnits, err := s.UnitsPerUSD(ctx, to)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Div(fromUnits).Mul(toUnits), nil
}
