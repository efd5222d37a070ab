package pgsql

import (
	"context"
	"fmt"

	"github.com/cradle-labs/tuma-integrator/internal/core/ports"
	"github.com/cradle-labs/tuma-integrator/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for the audit ledger.
func newPgxLedgerRepository(pool *pgxpool.Pool) ports.LedgerRepository {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ ports.LedgerRepository = (*PgxLedgerRepository)(nil)

const ledgerColumns = `entry_id, address, entry_type, transaction_type, on_chain_transaction_version, transaction_hash, payment_method_id, recorded_at`

// SaveEntry appends one ledger entry. The table carries no update path.
func (r *PgxLedgerRepository) SaveEntry(ctx context.Context, entry models.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (entry_id, address, entry_type, transaction_type, on_chain_transaction_version, transaction_hash, payment_method_id, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		entry.EntryID,
		entry.Address,
		entry.EntryType,
		entry.TransactionType,
		entry.OnChainTransactionVersion,
		entry.TransactionHash,
		entry.PaymentMethodID,
		entry.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save ledger entry %s: %w", entry.EntryID, err)
	}
	return nil
}

// FindEntriesByAddress retrieves all entries for a chain address, newest
// first.
func (r *PgxLedgerRepository) FindEntriesByAddress(ctx context.Context, address string) ([]models.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE address = $1 ORDER BY recorded_at DESC;`
	return r.scanEntries(ctx, query, address)
}

// FindEntriesByPaymentMethod retrieves all entries for a payment method,
// newest first.
func (r *PgxLedgerRepository) FindEntriesByPaymentMethod(ctx context.Context, methodID string) ([]models.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE payment_method_id = $1 ORDER BY recorded_at DESC;`
	return r.scanEntries(ctx, query, methodID)
}

func (r *PgxLedgerRepository) scanEntries(ctx context.Context, query string, arg any) ([]models.LedgerEntry, error) {
	rows, err := r.Pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var entry models.LedgerEntry
		if err := rows.Scan(
			&entry.EntryID,
			&entry.Address,
			&entry.EntryType,
			&entry.TransactionType,
			&entry.OnChainTransactionVersion,
			&entry.TransactionHash,
			&entry.PaymentMethodID,
			&entry.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}
	return entries, nil
}
