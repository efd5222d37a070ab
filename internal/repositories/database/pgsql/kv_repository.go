package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cradle-labs/tuma-integrator/internal/apperrors"
	"github.com/cradle-labs/tuma-integrator/internal/core/ports"
	"github.com/cradle-labs/tuma-integrator/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxKVRepository struct {
	BaseRepository
}

// newPgxKVRepository creates a new repository for operational settings.
func newPgxKVRepository(pool *pgxpool.Pool) ports.KVRepository {
	return &PgxKVRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ ports.KVRepository = (*PgxKVRepository)(nil)

// Set writes one key, overwriting any previous value.
func (r *PgxKVRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at;
	`
	_, err := r.Pool.Exec(ctx, query, key, value, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Get reads one key.
func (r *PgxKVRepository) Get(ctx context.Context, key string) (*models.KVPair, error) {
	query := `
		SELECT key, value, updated_at
		FROM kv_store
		WHERE key = $1;
	`
	var pair models.KVPair
	err := r.Pool.QueryRow(ctx, query, key).Scan(
		&pair.Key,
		&pair.Value,
		&pair.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: key %s", apperrors.ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return &pair, nil
}

// Delete removes one key, reporting whether it existed.
func (r *PgxKVRepository) Delete(ctx context.Context, key string) (bool, error) {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM kv_store WHERE key = $1;`, key)
	if err != nil {
		return false, fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return tag.RowsAffected() > 0, nil
}
