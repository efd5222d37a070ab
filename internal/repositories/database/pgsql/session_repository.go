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

type PgxSessionRepository struct {
	BaseRepository
}

// newPgxSessionRepository creates a new repository for payment sessions.
func newPgxSessionRepository(pool *pgxpool.Pool) ports.SessionRepository {
	return &PgxSessionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ ports.SessionRepository = (*PgxSessionRepository)(nil)

const sessionColumns = `session_id, provider_id, payer_identity, account_identity, payer, status, requested_at, finalized_at, transaction_hash, transaction_code, transferred_amount, transferred_token, final_fiat_value, receipt_number`

// SaveSession inserts a new pending session.
func (r *PgxSessionRepository) SaveSession(ctx context.Context, session models.PaymentSession) error {
	query := `
		INSERT INTO payment_sessions (session_id, provider_id, payer_identity, account_identity, payer, status, requested_at, transferred_amount, transferred_token, final_fiat_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		session.SessionID,
		session.ProviderID,
		session.PayerIdentity,
		session.AccountIdentity,
		session.Payer,
		session.Status,
		session.RequestedAt,
		session.TransferredAmount,
		session.TransferredToken,
		session.FinalFiatValue,
	)
	if err != nil {
		return fmt.Errorf("failed to save payment session %s: %w", session.SessionID, err)
	}
	return nil
}

// FindSessionByID retrieves a session by its id.
func (r *PgxSessionRepository) FindSessionByID(ctx context.Context, sessionID string) (*models.PaymentSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM payment_sessions WHERE session_id = $1;`
	return r.scanSession(ctx, query, sessionID)
}

// FindSessionByTransactionCode retrieves a session by the fiat leg's
// provider tracking code.
func (r *PgxSessionRepository) FindSessionByTransactionCode(ctx context.Context, code string) (*models.PaymentSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM payment_sessions WHERE transaction_code = $1;`
	return r.scanSession(ctx, query, code)
}

// RecordSettlement attaches the crypto and fiat legs to a session in one
// conditional update. It only succeeds on a pending, unsettled session; zero
// affected rows is reported as ErrDoubleSubmission.
func (r *PgxSessionRepository) RecordSettlement(ctx context.Context, params ports.RecordSettlementParams) error {
	query := `
		UPDATE payment_sessions
		SET transaction_hash = $2,
			transaction_code = $3,
			transferred_amount = $4,
			final_fiat_value = $5
		WHERE session_id = $1 AND status = 'pending' AND transaction_code IS NULL;
	`
	tag, err := r.Pool.Exec(ctx, query,
		params.SessionID,
		params.TransactionHash,
		params.TransactionCode,
		params.TransferredAmount,
		params.FinalFiatValue,
	)
	if err != nil {
		return fmt.Errorf("failed to record settlement for session %s: %w", params.SessionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: session %s already settled or finalized", apperrors.ErrDoubleSubmission, params.SessionID)
	}
	return nil
}

// FinalizeSession moves a session out of pending in one conditional update
// keyed by the provider tracking code. Zero affected rows is reported as
// ErrDoubleSubmission.
func (r *PgxSessionRepository) FinalizeSession(ctx context.Context, code string, status models.SessionStatus, receiptNumber *string) error {
	query := `
		UPDATE payment_sessions
		SET status = $2,
			receipt_number = $3,
			finalized_at = now()
		WHERE transaction_code = $1 AND status = 'pending';
	`
	tag, err := r.Pool.Exec(ctx, query, code, status, receiptNumber)
	if err != nil {
		return fmt.Errorf("failed to finalize session with code %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: session with code %s is not pending", apperrors.ErrDoubleSubmission, code)
	}
	return nil
}

func (r *PgxSessionRepository) scanSession(ctx context.Context, query string, arg any) (*models.PaymentSession, error) {
	var session models.PaymentSession
	err := r.Pool.QueryRow(ctx, query, arg).Scan(
		&session.SessionID,
		&session.ProviderID,
		&session.PayerIdentity,
		&session.AccountIdentity,
		&session.Payer,
		&session.Status,
		&session.RequestedAt,
		&session.FinalizedAt,
		&session.TransactionHash,
		&session.TransactionCode,
		&session.TransferredAmount,
		&session.TransferredToken,
		&session.FinalFiatValue,
		&session.ReceiptNumber,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payment session %v", apperrors.ErrNotFound, arg)
		}
		return nil, fmt.Errorf("failed to find payment session %v: %w", arg, err)
	}
	return &session, nil
}
