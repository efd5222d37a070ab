package registry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cradle-labs/tuma-integrator/internal/apperrors"
	"github.com/cradle-labs/tuma-integrator/internal/models"
	"github.com/cradle-labs/tuma-integrator/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogLookups(t *testing.T) {
	reg := registry.Default()

	kes, err := reg.LookupByID("kes")
	require.NoError(t, err)
	assert.Equal(t, models.CurrencyKindFiat, kes.Kind)
	assert.Equal(t, "KES", kes.Symbol)

	apt, err := reg.LookupByAddress("0xa")
	require.NoError(t, err)
	assert.Equal(t, "apt", apt.ID)
	require.NotNil(t, apt.Decimals)
	assert.Equal(t, uint64(8), *apt.Decimals)

	safaricom, err := reg.LookupProvider("safaricom")
	require.NoError(t, err)
	assert.Equal(t, models.RailTypeMobileMoney, safaricom.RailType)
	assert.Equal(t, "kes", safaricom.SettlementCurrency.ID)

	bank, err := reg.LookupProvider("equity-bank")
	require.NoError(t, err)
	assert.Equal(t, models.RailTypeBank, bank.RailType)
}

func TestLookupMissesAreNotFound(t *testing.T) {
	reg := registry.Default()

	_, err := reg.LookupByID("doge")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = reg.LookupByAddress("0xdead")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = reg.LookupProvider("mpesa-global")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLoadFromFile(t *testing.T) {
	catalog := `
currencies:
  - id: ngn
    symbol: NGN
    name: Nigerian Naira
    kind: fiat
  - id: apt
    symbol: APT
    name: Aptos Coin
    kind: crypto
    chain: aptos
    address: "0xa"
    decimals: 8
providers:
  - id: mtn
    name: MTN
    rail_type: mobile-money
    currency: ngn
`
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalog), 0o600))

	reg, err := registry.Load(path)
	require.NoError(t, err)

	mtn, err := reg.LookupProvider("mtn")
	require.NoError(t, err)
	assert.Equal(t, "NGN", mtn.SettlementCurrency.Symbol)
	assert.Len(t, reg.Currencies(), 2)
}

func TestLoadRejectsDanglingProviderCurrency(t *testing.T) {
	catalog := `
currencies: []
providers:
  - id: mtn
    name: MTN
    rail_type: mobile-money
    currency: ngn
`
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalog), 0o600))

	_, err := registry.Load(path)
	assert.Error(t, err)
}
