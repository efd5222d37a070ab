package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cradle-labs/tuma-integrator/internal/apperrors"
	"github.com/cradle-labs/tuma-integrator/internal/core/ports"
	"github.com/cradle-labs/tuma-integrator/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for chain accounts.
func newPgxAccountRepository(pool *pgxpool.Pool) ports.AccountRepository {
	return &PgxAccountRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ ports.AccountRepository = (*PgxAccountRepository)(nil)

// SaveAccount inserts an account. Re-registering a known address is a no-op.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account models.Account) error {
	query := `
		INSERT INTO accounts (address, created_at)
		VALUES ($1, $2)
		ON CONFLICT (address) DO NOTHING;
	`
	_, err := r.Pool.Exec(ctx, query, account.Address, account.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save account %s: %w", account.Address, err)
	}
	return nil
}

// FindAccountByAddress retrieves an account by its chain address.
func (r *PgxAccountRepository) FindAccountByAddress(ctx context.Context, address string) (*models.Account, error) {
	query := `
		SELECT address, created_at
		FROM accounts
		WHERE address = $1;
	`
	var account models.Account
	err := r.Pool.QueryRow(ctx, query, address).Scan(
		&account.Address,
		&account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, address)
		}
		return nil, fmt.Errorf("failed to find account by address %s: %w", address, err)
	}
	return &account, nil
}
