package pgsql

import (
	"github.com/cradle-labs/tuma-integrator/internal/core/services"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires all pgx-backed repositories over one pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) services.Repositories {
	return services.Repositories{
		Accounts: newPgxAccountRepository(dbPool),
		Methods:  newPgxPaymentMethodRepository(dbPool),
		Requests: newPgxOnRampRepository(dbPool),
		Sessions: newPgxSessionRepository(dbPool),
		Ledger:   newPgxLedgerRepository(dbPool),
		KV:       newPgxKVRepository(dbPool),
	}
}
