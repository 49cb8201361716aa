package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/monkesto/tally/internal/apperrors"
	"github.com/monkesto/tally/internal/core/domain"
	portsrepo "github.com/monkesto/tally/internal/core/ports/repositories"
)

// TransactionRepository owns the transaction aggregates and the
// journal→transactions index.
type TransactionRepository struct {
	*store[domain.TransactionEvent, domain.TransactionState]

	indexMu   sync.RWMutex
	byJournal map[string][]string // journalID → transaction ids, creation order
}

// NewTransactionRepository creates the in-memory transaction store.
func NewTransactionRepository() *TransactionRepository {
	r := &TransactionRepository{
		store:     newStore[domain.TransactionEvent, domain.TransactionState](domain.ApplyTransactionEvent),
		byJournal: make(map[string][]string),
	}
	r.store.onRecorded = r.indexEvent
	return r
}

var _ portsrepo.TransactionRepositoryFacade = (*TransactionRepository)(nil)

func (r *TransactionRepository) indexEvent(transactionID string, event domain.TransactionEvent, _ domain.TransactionState) {
	created, ok := event.(domain.TransactionCreated)
	if !ok {
		return
	}
	r.indexMu.Lock()
	defer r.indexMu.Unlock()
	r.byJournal[created.JournalID] = append(r.byJournal[created.JournalID], transactionID)
}

// FindTransactionByID returns the transaction's cached projection.
func (r *TransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.TransactionState, error) {
	state, ok := r.getState(transactionID)
	if !ok {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}
	return &state, nil
}

// ListTransactionsByJournal returns the journal's transactions in creation order.
func (r *TransactionRepository) ListTransactionsByJournal(ctx context.Context, journalID string) ([]domain.TransactionState, error) {
	r.indexMu.RLock()
	ids := append([]string(nil), r.byJournal[journalID]...)
	r.indexMu.RUnlock()

	out := make([]domain.TransactionState, 0, len(ids))
	for _, id := range ids {
		if state, ok := r.getState(id); ok {
			out = append(out, state)
		}
	}
	return out, nil
}
