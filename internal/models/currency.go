package models

import (
	"fmt"

	"github.com/cradle-labs/tuma-integrator/internal/apperrors"
)

// CurrencyKind distinguishes fiat currencies from chain-settled ones.
type CurrencyKind string

const (
	CurrencyKindFiat   CurrencyKind = "fiat"
	CurrencyKindCrypto CurrencyKind = "crypto"
)

// Currency is an immutable catalog entry. Crypto currencies must carry a
// chain, an on-chain address and a decimal count; those fields are validated
// at use time, not at load time.
type Currency struct {
	ID              string       `mapstructure:"id" json:"id"`
	Symbol          string       `mapstructure:"symbol" json:"symbol"`
	Name            string       `mapstructure:"name" json:"name"`
	Kind            CurrencyKind `mapstructure:"kind" json:"kind"`
	Country         string       `mapstructure:"country" json:"country,omitempty"`
	Description     string       `mapstructure:"description" json:"description,omitempty"`
	Chain           string       `mapstructure:"chain" json:"chain,omitempty"`
	Address         string       `mapstructure:"address" json:"address,omitempty"`
	IsFungibleAsset bool         `mapstructure:"is_fungible_asset" json:"is_fungible_asset,omitempty"`
	Decimals        *uint64      `mapstructure:"decimals" json:"decimals,omitempty"`
}

// Scale returns the currency's fixed-point scale (10^decimals). A crypto
// currency without a declared decimal count cannot cross the chain boundary.
func (c Currency) Scale() (uint64, error) {
	if c.Decimals == nil {
		return 0, fmt.Errorf("%w: currency %s has no decimal scale", apperrors.ErrValidation, c.ID)
	}
	scale := uint64(1)
	for i := uint64(0); i < *c.Decimals; i++ {
		scale *= 10
	}
	return scale, nil
}
