package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/monkesto/tally/internal/apperrors"
	"github.com/monkesto/tally/internal/core/domain"
	portsrepo "github.com/monkesto/tally/internal/core/ports/repositories"
)

// AccountRepository owns the account aggregates and the journal→accounts index.
type AccountRepository struct {
	*store[domain.AccountEvent, domain.AccountState]

	indexMu   sync.RWMutex
	byJournal map[string][]string // journalID → account ids, creation order
}

// NewAccountRepository creates the in-memory account store.
func NewAccountRepository() *AccountRepository {
	r := &AccountRepository{
		store:     newStore[domain.AccountEvent, domain.AccountState](domain.ApplyAccountEvent),
		byJournal: make(map[string][]string),
	}
	r.store.onRecorded = r.indexEvent
	return r
}

var _ portsrepo.AccountRepositoryFacade = (*AccountRepository)(nil)

func (r *AccountRepository) indexEvent(accountID string, event domain.AccountEvent, _ domain.AccountState) {
	created, ok := event.(domain.AccountCreated)
	if !ok {
		return
	}
	r.indexMu.Lock()
	defer r.indexMu.Unlock()
	r.byJournal[created.JournalID] = append(r.byJournal[created.JournalID], accountID)
}

// FindAccountByID returns the account's cached projection.
func (r *AccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.AccountState, error) {
	state, ok := r.getState(accountID)
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return &state, nil
}

// FindAccountsByIDs returns the projections for the given ids; absent ids are
// missing from the result map.
func (r *AccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.AccountState, error) {
	out := make(map[string]domain.AccountState, len(accountIDs))
	for _, id := range accountIDs {
		if state, ok := r.getState(id); ok {
			out[id] = state
		}
	}
	return out, nil
}

// ListAccountIDsByJournal reads the journal→accounts index.
func (r *AccountRepository) ListAccountIDsByJournal(ctx context.Context, journalID string) ([]string, error) {
	r.indexMu.RLock()
	defer r.indexMu.RUnlock()
	return append([]string(nil), r.byJournal[journalID]...), nil
}
