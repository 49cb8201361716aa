package services

import (
	"context"

	"github.com/monkesto/tally/internal/core/domain"
)

// TransactionReaderSvc defines read operations for transaction data.
type TransactionReaderSvc interface {
	// GetTransaction retrieves a transaction; READ-gated on its journal.
	GetTransaction(ctx context.Context, transactionID string, userID string) (*domain.TransactionState, error)

	// ListJournalTransactions retrieves the journal's transactions in
	// creation order (READ-gated).
	ListJournalTransactions(ctx context.Context, journalID string, userID string) ([]domain.TransactionState, error)
}

// TransactionWriterSvc defines write operations for transaction data.
type TransactionWriterSvc interface {
	// CreateTransaction records a balanced transaction against the journal.
	// Requires APPENDTRANSACTION; every update's account must belong to the
	// journal; the updates must net to zero (apperrors.ErrBalanceMismatch is
	// raised before any store mutation). Balances are moved first, then the
	// transaction event is appended; a failed append triggers compensation.
	CreateTransaction(ctx context.Context, journalID string, updates []domain.BalanceUpdate, creatorUserID string) (*domain.TransactionState, error)

	// AmendTransaction replaces a transaction's balance updates. The account
	// store reverses the old updates and applies the new ones, so resulting
	// balances equal those of never having applied the old set at all.
	AmendTransaction(ctx context.Context, journalID string, transactionID string, updates []domain.BalanceUpdate, userID string) (*domain.TransactionState, error)
}

// TransactionSvcFacade combines all transaction-related service interfaces.
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
}
