package services

import (
	"context"

	"github.com/monkesto/tally/internal/core/domain"
)

// AccountReaderSvc defines read operations for account data.
type AccountReaderSvc interface {
	// GetAccount retrieves an account; READ-gated on its journal.
	GetAccount(ctx context.Context, accountID string, userID string) (*domain.AccountState, error)

	// ListJournalAccounts retrieves every account in the journal (READ-gated).
	ListJournalAccounts(ctx context.Context, journalID string, userID string) ([]domain.AccountState, error)

	// GetAccountFullPath resolves the chart-of-accounts path for an account
	// by walking parent links to the root, returned root-first. It returns
	// nil (no error) when any link in the chain is missing.
	GetAccountFullPath(ctx context.Context, accountID string, userID string) ([]string, error)
}

// AccountWriterSvc defines write operations for account data.
type AccountWriterSvc interface {
	// CreateAccount creates an account in the journal. The caller may supply
	// accountID to make retried creations idempotent-safe (a reused id fails
	// with apperrors.ErrAccountExists); an empty id is generated.
	CreateAccount(ctx context.Context, accountID string, journalID string, name string, parentAccountID string, creatorUserID string) (*domain.AccountState, error)

	// DeactivateAccount tombstones an account; requires DELETE on the journal.
	DeactivateAccount(ctx context.Context, accountID string, userID string) error
}

// AccountBalanceSvc is the balance-mutation seam the transaction service
// drives. Both methods re-validate per-account existence, making the account
// store the authoritative gate before a transaction event is recorded.
type AccountBalanceSvc interface {
	// UpdateBalances applies the balance consequences of a transaction event:
	// for TransactionCreated, each update moves its account by the signed
	// amount; for TransactionUpdatesAmended, every update of old is reversed
	// and every new update applied. A missing old state for an amendment is
	// an apperrors.ErrInternal: the store cannot reverse an amendment without
	// knowing what it amends.
	UpdateBalances(ctx context.Context, transactionID string, event domain.TransactionEvent, old *domain.TransactionState, by domain.Authority) error

	// RevertBalanceUpdates applies the opposite of the given updates. It is
	// the compensation used when a transaction event append fails after
	// balances were already moved.
	RevertBalanceUpdates(ctx context.Context, transactionID string, updates []domain.BalanceUpdate, by domain.Authority) error
}

// AccountSvcFacade combines all account-related service interfaces.
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountBalanceSvc
}
