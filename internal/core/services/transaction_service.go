package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/monkesto/tally/internal/apperrors"
	"github.com/monkesto/tally/internal/core/domain"
	portsrepo "github.com/monkesto/tally/internal/core/ports/repositories"
	portssvc "github.com/monkesto/tally/internal/core/ports/services"
	"github.com/monkesto/tally/internal/utils"
)

// transactionService provides double-entry transaction operations. Balance
// movement is delegated to the account service; this layer owns the
// validation order and the compensation path.
type transactionService struct {
	BaseService
	transactionRepo portsrepo.TransactionRepositoryFacade
	accountRepo     portsrepo.AccountRepositoryFacade
	accountSvc      portssvc.AccountBalanceSvc
	journalSvc      portssvc.JournalSvcFacade
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(
	transactionRepo portsrepo.TransactionRepositoryFacade,
	accountRepo portsrepo.AccountRepositoryFacade,
	accountSvc portssvc.AccountBalanceSvc,
	journalSvc portssvc.JournalSvcFacade,
) portssvc.TransactionSvcFacade {
	return &transactionService{
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
		accountSvc:      accountSvc,
		journalSvc:      journalSvc,
	}
}

// Ensure transactionService implements the portssvc.TransactionSvcFacade interface
var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// validateUpdates checks the shape of a balance-update set before any store
// access: non-empty, positive amounts, known entry types, and a zero net sum.
func (s *transactionService) validateUpdates(updates []domain.BalanceUpdate) error {
	if len(updates) == 0 {
		return fmt.Errorf("%w: a transaction needs at least one balance update", apperrors.ErrValidation)
	}
	for _, u := range updates {
		if u.AccountID == "" {
			return fmt.Errorf("%w: balance update without an account id", apperrors.ErrValidation)
		}
		if u.Amount <= 0 {
			return fmt.Errorf("%w: balance update amounts must be positive", apperrors.ErrValidation)
		}
		if u.EntryType != domain.Debit && u.EntryType != domain.Credit {
			return fmt.Errorf("%w: unknown entry type %q", apperrors.ErrValidation, u.EntryType)
		}
	}
	if sum := domain.SumUpdates(updates); sum != 0 {
		return fmt.Errorf("%w: updates net to %d", apperrors.ErrBalanceMismatch, sum)
	}
	return nil
}

// checkAccountsBelong verifies every update's account sits in the journal,
// using the journal→accounts index.
func (s *transactionService) checkAccountsBelong(ctx context.Context, journalID string, updates []domain.BalanceUpdate) error {
	ids, err := s.accountRepo.ListAccountIDsByJournal(ctx, journalID)
	if err != nil {
		return err
	}
	member := make(map[string]bool, len(ids))
	for _, id := range ids {
		member[id] = true
	}
	for _, u := range updates {
		if !member[u.AccountID] {
			return fmt.Errorf("%w: %s is not in journal %s", apperrors.ErrAccountNotFound, u.AccountID, journalID)
		}
	}
	return nil
}

// CreateTransaction records a balanced transaction against the journal.
func (s *transactionService) CreateTransaction(ctx context.Context, journalID string, updates []domain.BalanceUpdate, creatorUserID string) (*domain.TransactionState, error) {
	if err := s.validateUpdates(updates); err != nil {
		return nil, err
	}
	if _, err := s.journalSvc.AuthorizeJournalAction(ctx, journalID, creatorUserID, domain.PermissionAppendTransaction); err != nil {
		return nil, err
	}
	if err := s.checkAccountsBelong(ctx, journalID, updates); err != nil {
		return nil, err
	}

	transactionID := utils.NewID()
	by := domain.Direct(domain.UserActor(creatorUserID))
	event := domain.TransactionCreated{
		JournalID: journalID,
		Author:    creatorUserID,
		Updates:   updates,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.accountSvc.UpdateBalances(ctx, transactionID, event, nil, by); err != nil {
		s.LogError(ctx, err, "Failed to move balances for transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}

	if _, err := s.transactionRepo.Record(ctx, transactionID, by, event); err != nil {
		s.LogError(ctx, err, "Failed to record transaction, compensating balances", slog.String("transaction_id", transactionID))
		s.compensate(ctx, transactionID, updates, by)
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	transaction, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load created transaction: %w", err)
	}

	s.LogInfo(ctx, "Transaction created successfully",
		slog.String("transaction_id", transactionID),
		slog.String("journal_id", journalID),
		slog.Int("updates", len(updates)))
	return transaction, nil
}

// AmendTransaction replaces a transaction's balance updates: old updates are
// reversed and new ones applied before the amendment event is appended.
func (s *transactionService) AmendTransaction(ctx context.Context, journalID string, transactionID string, updates []domain.BalanceUpdate, userID string) (*domain.TransactionState, error) {
	if err := s.validateUpdates(updates); err != nil {
		return nil, err
	}
	if _, err := s.journalSvc.AuthorizeJournalAction(ctx, journalID, userID, domain.PermissionAppendTransaction); err != nil {
		return nil, err
	}

	old, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidTransaction
		}
		return nil, err
	}
	if old.JournalID != journalID {
		return nil, apperrors.ErrInvalidTransaction
	}

	if err := s.checkAccountsBelong(ctx, journalID, updates); err != nil {
		return nil, err
	}

	by := domain.Direct(domain.UserActor(userID))
	event := domain.TransactionUpdatesAmended{Updates: updates}

	if err := s.accountSvc.UpdateBalances(ctx, transactionID, event, old, by); err != nil {
		s.LogError(ctx, err, "Failed to move balances for amendment", slog.String("transaction_id", transactionID))
		return nil, err
	}

	if _, err := s.transactionRepo.Record(ctx, transactionID, by, event); err != nil {
		// The applied movement was reverse(old) followed by new, so undoing it
		// means reverting new followed by reverting reverse(old).
		s.LogError(ctx, err, "Failed to record amendment, compensating balances", slog.String("transaction_id", transactionID))
		applied := make([]domain.BalanceUpdate, 0, len(updates)+len(old.Updates))
		applied = append(applied, updates...)
		for _, u := range old.Updates {
			applied = append(applied, u.Reversed())
		}
		s.compensate(ctx, transactionID, applied, by)
		return nil, fmt.Errorf("failed to amend transaction: %w", err)
	}

	transaction, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load amended transaction: %w", err)
	}

	s.LogInfo(ctx, "Transaction amended successfully",
		slog.String("transaction_id", transactionID),
		slog.String("journal_id", journalID))
	return transaction, nil
}

// compensate reverts already applied balance updates after a failed event
// append. A failed compensation leaves the books inconsistent and is logged
// as such; there is no further automatic recovery.
func (s *transactionService) compensate(ctx context.Context, transactionID string, applied []domain.BalanceUpdate, by domain.Authority) {
	if err := s.accountSvc.RevertBalanceUpdates(ctx, transactionID, applied, by); err != nil {
		s.LogError(ctx, err, "Compensation failed, account balances are inconsistent",
			slog.String("transaction_id", transactionID))
	}
}

// GetTransaction retrieves a transaction; READ-gated on its journal.
func (s *transactionService) GetTransaction(ctx context.Context, transactionID string, userID string) (*domain.TransactionState, error) {
	transaction, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidTransaction
		}
		return nil, err
	}
	perms, err := s.journalSvc.GetUserPermissions(ctx, transaction.JournalID, userID)
	if err != nil {
		return nil, err
	}
	if !perms.Has(domain.PermissionRead) {
		return nil, apperrors.NewPermissionError(domain.PermissionRead)
	}
	return transaction, nil
}

// ListJournalTransactions retrieves the journal's transactions in creation order.
func (s *transactionService) ListJournalTransactions(ctx context.Context, journalID string, userID string) ([]domain.TransactionState, error) {
	perms, err := s.journalSvc.GetUserPermissions(ctx, journalID, userID)
	if err != nil {
		return nil, err
	}
	if !perms.Has(domain.PermissionRead) {
		return nil, apperrors.NewPermissionError(domain.PermissionRead)
	}
	return s.transactionRepo.ListTransactionsByJournal(ctx, journalID)
}
