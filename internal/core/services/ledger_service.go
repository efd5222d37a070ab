package services

import (
	"context"

	"github.com/cradle-labs/tuma-integrator/internal/core/ports"
	"github.com/cradle-labs/tuma-integrator/internal/models"
)

// LedgerService reads the append-only settlement audit ledger. Writes happen
// inside the ramp services as part of finalizing a settlement leg.
type LedgerService struct {
	ledger ports.LedgerRepository
}

// NewLedgerService creates a LedgerService.
func NewLedgerService(ledger ports.LedgerRepository) *LedgerService {
	return &LedgerService{ledger: ledger}
}

// EntriesForAddress returns all entries recorded against a chain address.
func (s *LedgerService) EntriesForAddress(ctx context.Context, address string) ([]models.LedgerEntry, error) {
	return s.ledger.FindEntriesByAddress(ctx, address)
}

// EntriesForPaymentMethod returns all entries recorded against a payment
// method.
func (s *LedgerService) EntriesForPaymentMethod(ctx context.Context, methodID string) ([]models.LedgerEntry, error) {
	return s.ledger.FindEntriesByPaymentMethod(ctx, methodID)
}
