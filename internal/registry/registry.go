// Package registry holds the static currency and provider catalog. The
// catalog is loaded once at startup (from a YAML file or the built-in
// defaults) and treated as immutable for the process lifetime.
package registry

import (
	"fmt"

	"github.com/cradle-labs/tuma-integrator/internal/apperrors"
	"github.com/cradle-labs/tuma-integrator/internal/models"
	"github.com/spf13/viper"
)

// Registry answers read-only lookups against the catalog. Misses are
// terminal, non-retriable conditions for callers.
type Registry struct {
	currencies []models.Currency
	providers  []models.Provider
	byID       map[string]models.Currency
	byAddress  map[string]models.Currency
	providerID map[string]models.Provider
}

type catalogFile struct {
	Currencies []models.Currency `mapstructure:"currencies"`
	Providers  []providerEntry   `mapstructure:"providers"`
}

type providerEntry struct {
	ID          string          `mapstructure:"id"`
	Name        string          `mapstructure:"name"`
	Description string          `mapstructure:"description"`
	RailType    models.RailType `mapstructure:"rail_type"`
	CurrencyID  string          `mapstructure:"currency"`
}

// Load reads a catalog file. Provider entries reference their settlement
// currency by id; a dangling reference fails the load.
func Load(path string) (*Registry, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	var file catalogFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("failed to decode catalog file %s: %w", path, err)
	}
	return build(file)
}

// Default returns the built-in catalog used when no catalog file is
// configured: KES with a Safaricom mobile-money provider, the Aptos native
// coin, and USDC as a fungible asset.
func Default() *Registry {
	eight := uint64(8)
	six := uint64(6)
	file := catalogFile{
		Currencies: []models.Currency{
			{
				ID:          "kes",
				Symbol:      "KES",
				Name:        "Kenyan Shilling",
				Kind:        models.CurrencyKindFiat,
				Country:     "Kenya",
				Description: "Currency of the Republic of Kenya",
			},
			{
				ID:          "apt",
				Symbol:      "APT",
				Name:        "Aptos Coin",
				Kind:        models.CurrencyKindCrypto,
				Description: "Native currency on Aptos",
				Chain:       "aptos",
				Address:     "0xa",
				Decimals:    &eight,
			},
			{
				ID:              "usdc",
				Symbol:          "USDC",
				Name:            "USD Coin",
				Kind:            models.CurrencyKindCrypto,
				Description:     "Circle USD Coin on Aptos",
				Chain:           "aptos",
				Address:         "0xbae207659db88bea0cbead6da0ed00aac12edcdda169e591cd41c94180b46f3b",
				IsFungibleAsset: true,
				Decimals:        &six,
			},
		},
		Providers: []providerEntry{
			{
				ID:          "safaricom",
				Name:        "Safaricom",
				Description: "Safaricom M-Pesa mobile money",
				RailType:    models.RailTypeMobileMoney,
				CurrencyID:  "kes",
			},
			{
				ID:          "equity-bank",
				Name:        "Equity Bank",
				Description: "Equity Bank Kenya",
				RailType:    models.RailTypeBank,
				CurrencyID:  "kes",
			},
		},
	}
	reg, err := build(file)
	if err != nil {
		// the built-in catalog is internally consistent
		panic(err)
	}
	return reg
}

func build(file catalogFile) (*Registry, error) {
	reg := &Registry{
		currencies: file.Currencies,
		byID:       make(map[string]models.Currency, len(file.Currencies)),
		byAddress:  make(map[string]models.Currency),
		providerID: make(map[string]models.Provider, len(file.Providers)),
	}
	for _, c := range file.Currencies {
		reg.byID[c.ID] = c
		if c.Kind == models.CurrencyKindCrypto && c.Address != "" {
			reg.byAddress[c.Address] = c
		}
	}
	for _, p := range file.Providers {
		settlement, ok := reg.byID[p.CurrencyID]
		if !ok {
			return nil, fmt.Errorf("provider %s references unknown currency %s", p.ID, p.CurrencyID)
		}
		provider := models.Provider{
			ID:                 p.ID,
			Name:               p.Name,
			Description:        p.Description,
			RailType:           p.RailType,
			SettlementCurrency: settlement,
		}
		reg.providerID[p.ID] = provider
		reg.providers = append(reg.providers, provider)
	}
	return reg, nil
}

// LookupByID returns the currency with the given catalog id.
func (r *Registry) LookupByID(id string) (models.Currency, error) {
	c, ok := r.byID[id]
	if !ok {
		return models.Currency{}, fmt.Errorf("%w: currency %s", apperrors.ErrNotFound, id)
	}
	return c, nil
}

// LookupByAddress returns the crypto currency registered at the given
// on-chain address.
func (r *Registry) LookupByAddress(address string) (models.Currency, error) {
	c, ok := r.byAddress[address]
	if !ok {
		return models.Currency{}, fmt.Errorf("%w: no currency at address %s", apperrors.ErrNotFound, address)
	}
	return c, nil
}

// LookupProvider returns the fiat provider with the given id.
func (r *Registry) LookupProvider(id string) (models.Provider, error) {
	p, ok := r.providerID[id]
	if !ok {
		return models.Provider{}, fmt.Errorf("%w: provider %s", apperrors.ErrNotFound, id)
	}
	return p, nil
}

// Currencies returns the full currency catalog.
func (r *Registry) Currencies() []models.Currency {
	return r.currencies
}

// Providers returns the full provider catalog.
func (r *Registry) Providers() []models.Provider {
	return r.providers
}
