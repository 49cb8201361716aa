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

var ErrParentAccountMismatch = errors.New("parent account belongs to a different journal")

// accountService provides account lifecycle, chart-of-accounts and balance
// operations.
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	journalSvc  portssvc.JournalSvcFacade
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, journalSvc portssvc.JournalSvcFacade) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo: accountRepo,
		journalSvc:  journalSvc,
	}
}

// Ensure accountService implements the portssvc.AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount creates an account in the journal. A caller-supplied
// accountID makes retries safe: the second attempt with the same id fails
// with ErrAccountExists instead of opening a second account.
func (s *accountService) CreateAccount(ctx context.Context, accountID string, journalID string, name string, parentAccountID string, creatorUserID string) (*domain.AccountState, error) {
	if err := validateEntityName(name); err != nil {
		return nil, err
	}

	if _, err := s.journalSvc.AuthorizeJournalAction(ctx, journalID, creatorUserID, domain.PermissionAddAccount); err != nil {
		return nil, err
	}

	if accountID == "" {
		accountID = utils.NewID()
	} else if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err == nil {
		return nil, apperrors.ErrAccountExists
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	if parentAccountID != "" {
		parent, err := s.accountRepo.FindAccountByID(ctx, parentAccountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent account", apperrors.ErrAccountNotFound)
			}
			return nil, err
		}
		if parent.JournalID != journalID {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrParentAccountMismatch)
		}
	}

	by := domain.Direct(domain.UserActor(creatorUserID))
	_, err := s.accountRepo.Record(ctx, accountID, by, domain.AccountCreated{
		JournalID:       journalID,
		Name:            name,
		Author:          creatorUserID,
		ParentAccountID: parentAccountID,
		CreatedAt:       time.Now().UTC(),
	})
	if err != nil {
		// A concurrent creation with the same id loses the race inside the
		// store and surfaces as a creation-event rejection.
		if errors.Is(err, apperrors.ErrIncorrectEventType) {
			return nil, apperrors.ErrAccountExists
		}
		s.LogError(ctx, err, "Failed to record account creation", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load created account: %w", err)
	}

	s.LogInfo(ctx, "Account created successfully",
		slog.String("account_id", accountID),
		slog.String("journal_id", journalID))
	return account, nil
}

// loadAccountForRead resolves an account and checks READ on its journal.
// Tombstoned journals stay readable.
func (s *accountService) loadAccountForRead(ctx context.Context, accountID string, userID string) (*domain.AccountState, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, err
	}
	perms, err := s.journalSvc.GetUserPermissions(ctx, account.JournalID, userID)
	if err != nil {
		return nil, err
	}
	if !perms.Has(domain.PermissionRead) {
		return nil, apperrors.NewPermissionError(domain.PermissionRead)
	}
	return account, nil
}

// GetAccount retrieves an account; READ-gated on its journal.
func (s *accountService) GetAccount(ctx context.Context, accountID string, userID string) (*domain.AccountState, error) {
	return s.loadAccountForRead(ctx, accountID, userID)
}

// ListJournalAccounts retrieves every account in the journal.
func (s *accountService) ListJournalAccounts(ctx context.Context, journalID string, userID string) ([]domain.AccountState, error) {
	perms, err := s.journalSvc.GetUserPermissions(ctx, journalID, userID)
	if err != nil {
		return nil, err
	}
	if !perms.Has(domain.PermissionRead) {
		return nil, apperrors.NewPermissionError(domain.PermissionRead)
	}

	ids, err := s.accountRepo.ListAccountIDsByJournal(ctx, journalID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts for journal", slog.String("journal_id", journalID))
		return nil, err
	}

	accounts := make([]domain.AccountState, 0, len(ids))
	for _, id := range ids {
		account, err := s.accountRepo.FindAccountByID(ctx, id)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	return accounts, nil
}

// GetAccountFullPath resolves the chart-of-accounts path for an account by
// walking parent links to the root, returned root-first. A missing link in
// the chain yields nil without error; a parent cycle is treated the same way
// rather than looping forever.
func (s *accountService) GetAccountFullPath(ctx context.Context, accountID string, userID string) ([]string, error) {
	account, err := s.loadAccountForRead(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}

	path := []string{account.Name}
	seen := map[string]bool{account.AccountID: true}
	for account.ParentAccountID != "" {
		parent, err := s.accountRepo.FindAccountByID(ctx, account.ParentAccountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				s.LogWarn(ctx, "Account path chain broken",
					slog.String("account_id", accountID),
					slog.String("missing_parent_id", account.ParentAccountID))
				return nil, nil
			}
			return nil, err
		}
		if seen[parent.AccountID] {
			s.LogWarn(ctx, "Account path chain cyclic", slog.String("account_id", accountID))
			return nil, nil
		}
		seen[parent.AccountID] = true
		path = append([]string{parent.Name}, path...)
		account = parent
	}
	return path, nil
}

// DeactivateAccount tombstones an account. Requires DELETE on the journal.
func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrAccountNotFound
		}
		return err
	}
	if _, err := s.journalSvc.AuthorizeJournalAction(ctx, account.JournalID, userID, domain.PermissionDelete); err != nil {
		return err
	}

	by := domain.Direct(domain.UserActor(userID))
	if _, err := s.accountRepo.Record(ctx, accountID, by, domain.AccountDeactivated{}); err != nil {
		s.LogError(ctx, err, "Failed to record account deactivation", slog.String("account_id", accountID))
		return fmt.Errorf("failed to deactivate account: %w", err)
	}

	s.LogInfo(ctx, "Account deactivated", slog.String("account_id", accountID))
	return nil
}

// UpdateBalances applies the balance consequences of a transaction event. For
// a creation every update moves its account by the signed amount; for an
// amendment every update of old is reversed and every new update applied. All
// touched accounts must exist before anything is recorded, so a bad set of
// updates never moves money partially.
func (s *accountService) UpdateBalances(ctx context.Context, transactionID string, event domain.TransactionEvent, old *domain.TransactionState, by domain.Authority) error {
	var updates []domain.BalanceUpdate
	switch e := event.(type) {
	case domain.TransactionCreated:
		updates = e.Updates
	case domain.TransactionUpdatesAmended:
		if old == nil {
			return fmt.Errorf("%w: amendment without prior transaction state", apperrors.ErrInternal)
		}
		updates = make([]domain.BalanceUpdate, 0, len(old.Updates)+len(e.Updates))
		for _, u := range old.Updates {
			updates = append(updates, u.Reversed())
		}
		updates = append(updates, e.Updates...)
	default:
		return fmt.Errorf("%w: unhandled transaction event %q", apperrors.ErrInternal, event.EventType())
	}
	return s.adjustBalances(ctx, transactionID, updates, by)
}

// RevertBalanceUpdates applies the opposite of the given updates. It is the
// compensation path for a transaction event append that failed after balances
// already moved.
func (s *accountService) RevertBalanceUpdates(ctx context.Context, transactionID string, updates []domain.BalanceUpdate, by domain.Authority) error {
	reversed := make([]domain.BalanceUpdate, 0, len(updates))
	for _, u := range updates {
		reversed = append(reversed, u.Reversed())
	}
	return s.adjustBalances(ctx, transactionID, reversed, by)
}

// adjustBalances nets the updates per account, verifies every touched account
// exists, then records one AccountBalanceAdjusted per account in first-seen
// order.
func (s *accountService) adjustBalances(ctx context.Context, transactionID string, updates []domain.BalanceUpdate, by domain.Authority) error {
	deltas := make(map[string]int64, len(updates))
	order := make([]string, 0, len(updates))
	for _, u := range updates {
		if _, ok := deltas[u.AccountID]; !ok {
			order = append(order, u.AccountID)
		}
		deltas[u.AccountID] += u.SignedAmount()
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, order)
	if err != nil {
		return err
	}
	for _, id := range order {
		if _, ok := accounts[id]; !ok {
			return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, id)
		}
	}

	for _, id := range order {
		_, err := s.accountRepo.Record(ctx, id, by, domain.AccountBalanceAdjusted{
			Delta:         deltas[id],
			TransactionID: transactionID,
		})
		if err != nil {
			s.LogError(ctx, err, "Failed to record balance adjustment",
				slog.String("account_id", id),
				slog.String("transaction_id", transactionID))
			return fmt.Errorf("failed to adjust balance of account %s: %w", id, err)
		}
	}

	s.LogDebug(ctx, "Balances adjusted",
		slog.String("transaction_id", transactionID),
		slog.Int("accounts", len(order)))
	return nil
}
