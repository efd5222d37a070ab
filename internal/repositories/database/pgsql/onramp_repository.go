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

type PgxOnRampRepository struct {
	BaseRepository
}

// newPgxOnRampRepository creates a new repository for on-ramp requests.
func newPgxOnRampRepository(pool *pgxpool.Pool) ports.OnRampRepository {
	return &PgxOnRampRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ ports.OnRampRepository = (*PgxOnRampRepository)(nil)

const onRampColumns = `request_id, requester, payment_method_id, status, transaction_ref, amount, target_currency, requested_at, finalized_at, final_token_quote, on_chain_tx_hash, receipt_number`

// SaveRequest inserts a new pending request.
func (r *PgxOnRampRepository) SaveRequest(ctx context.Context, request models.OnRampRequest) error {
	query := `
		INSERT INTO onramp_requests (request_id, requester, payment_method_id, status, transaction_ref, amount, target_currency, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		request.RequestID,
		request.Requester,
		request.PaymentMethodID,
		request.Status,
		request.TransactionRef,
		request.Amount,
		request.TargetCurrency,
		request.RequestedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save onramp request %s: %w", request.RequestID, err)
	}
	return nil
}

// FindRequestByID retrieves a request by its id.
func (r *PgxOnRampRepository) FindRequestByID(ctx context.Context, requestID string) (*models.OnRampRequest, error) {
	query := `SELECT ` + onRampColumns + ` FROM onramp_requests WHERE request_id = $1;`
	return r.scanRequest(ctx, query, requestID)
}

// FindRequestByTransactionRef retrieves a request by the provider's tracking
// code.
func (r *PgxOnRampRepository) FindRequestByTransactionRef(ctx context.Context, ref string) (*models.OnRampRequest, error) {
	query := `SELECT ` + onRampColumns + ` FROM onramp_requests WHERE transaction_ref = $1;`
	return r.scanRequest(ctx, query, ref)
}

// FinalizeRequest moves a request out of pending in one conditional update.
// Zero affected rows means another submission already won the transition and
// is reported as ErrDoubleSubmission.
func (r *PgxOnRampRepository) FinalizeRequest(ctx context.Context, params ports.FinalizeOnRampParams) error {
	query := `
		UPDATE onramp_requests
		SET status = $2,
			final_token_quote = $3,
			on_chain_tx_hash = $4,
			receipt_number = $5,
			finalized_at = now()
		WHERE transaction_ref = $1 AND status = 'pending';
	`
	tag, err := r.Pool.Exec(ctx, query,
		params.TransactionRef,
		params.Status,
		params.FinalTokenQuote,
		params.OnChainTxHash,
		params.ReceiptNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to finalize onramp request %s: %w", params.TransactionRef, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: request %s is not pending", apperrors.ErrDoubleSubmission, params.TransactionRef)
	}
	return nil
}

func (r *PgxOnRampRepository) scanRequest(ctx context.Context, query string, arg any) (*models.OnRampRequest, error) {
	var request models.OnRampRequest
	err := r.Pool.QueryRow(ctx, query, arg).Scan(
		&request.RequestID,
		&request.Requester,
		&request.PaymentMethodID,
		&request.Status,
		&request.TransactionRef,
		&request.Amount,
		&request.TargetCurrency,
		&request.RequestedAt,
		&request.FinalizedAt,
		&request.FinalTokenQuote,
		&request.OnChainTxHash,
		&request.ReceiptNumber,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: onramp request %v", apperrors.ErrNotFound, arg)
		}
		return nil, fmt.Errorf("failed to find onramp request %v: %w", arg, err)
	}
	return &request, nil
}
