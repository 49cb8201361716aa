package memory

import (
	portsrepo "github.com/monkesto/tally/internal/core/ports/repositories"
)

// NewRepositoryProvider wires the full in-memory backend.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		JournalRepo:     NewJournalRepository(),
		AccountRepo:     NewAccountRepository(),
		TransactionRepo: NewTransactionRepository(),
		UserRepo:        NewUserRepository(),
	}
}
