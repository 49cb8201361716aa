package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/monkesto/tally/internal/core/ports/repositories"
)

// NewRepositoryProvider wires the full PostgreSQL backend over one pool.
func NewRepositoryProvider(pool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		JournalRepo:     newPgxJournalRepository(pool),
		AccountRepo:     newPgxAccountRepository(pool),
		TransactionRepo: newPgxTransactionRepository(pool),
		UserRepo:        newPgxUserRepository(pool),
	}
}
