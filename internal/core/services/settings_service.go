package services

import (
	"context"

	"github.com/cradle-labs/tuma-integrator/internal/core/ports"
	"github.com/cradle-labs/tuma-integrator/internal/models"
)

// SettingsService exposes the operational key-value store.
type SettingsService struct {
	kv ports.KVRepository
}

// NewSettingsService creates a SettingsService.
func NewSettingsService(kv ports.KVRepository) *SettingsService {
	return &SettingsService{kv: kv}
}

// Set writes one key, overwriting any previous value.
func (s *SettingsService) Set(ctx context.Context, key, value string) error {
	return s.kv.Set(ctx, key, value)
}

// Get reads one key.
func (s *SettingsService) Get(ctx context.Context, key string) (*models.KVPair, error) {
	return s.kv.Get(ctx, key)
}

// Delete removes one key, reporting whether it existed.
func (s *SettingsService) Delete(ctx context.Context, key string) (bool, error) {
	return s.kv.Delete(ctx, key)
}
