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

type PgxPaymentMethodRepository struct {
	BaseRepository
}

// newPgxPaymentMethodRepository creates a new repository for payment methods.
func newPgxPaymentMethodRepository(pool *pgxpool.Pool) ports.PaymentMethodRepository {
	return &PgxPaymentMethodRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ ports.PaymentMethodRepository = (*PgxPaymentMethodRepository)(nil)

// SavePaymentMethod inserts a payment method. Methods are immutable once
// created.
func (r *PgxPaymentMethodRepository) SavePaymentMethod(ctx context.Context, method models.PaymentMethod) error {
	query := `
		INSERT INTO payment_methods (method_id, owner_address, method_type, identity, account_identity, provider_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.Pool.Exec(ctx, query,
		method.MethodID,
		method.Owner,
		method.MethodType,
		method.Identity,
		method.AccountIdentity,
		method.ProviderID,
		method.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save payment method %s: %w", method.MethodID, err)
	}
	return nil
}

// FindPaymentMethodByID retrieves a payment method by its id.
func (r *PgxPaymentMethodRepository) FindPaymentMethodByID(ctx context.Context, methodID string) (*models.PaymentMethod, error) {
	query := `
		SELECT method_id, owner_address, method_type, identity, account_identity, provider_id, created_at
		FROM payment_methods
		WHERE method_id = $1;
	`
	var method models.PaymentMethod
	err := r.Pool.QueryRow(ctx, query, methodID).Scan(
		&method.MethodID,
		&method.Owner,
		&method.MethodType,
		&method.Identity,
		&method.AccountIdentity,
		&method.ProviderID,
		&method.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payment method %s", apperrors.ErrNotFound, methodID)
		}
		return nil, fmt.Errorf("failed to find payment method %s: %w", methodID, err)
	}
	return &method, nil
}
