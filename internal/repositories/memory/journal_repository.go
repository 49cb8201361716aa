package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/monkesto/tally/internal/apperrors"
	"github.com/monkesto/tally/internal/core/domain"
	portsrepo "github.com/monkesto/tally/internal/core/ports/repositories"
)

// JournalRepository owns the journal aggregates and the user→journals index.
type JournalRepository struct {
	*store[domain.JournalEvent, domain.JournalState]

	indexMu sync.RWMutex
	byUser  map[string][]string // userID → journal ids, insertion order
}

// NewJournalRepository creates the in-memory journal store.
func NewJournalRepository() *JournalRepository {
	r := &JournalRepository{
		store:  newStore[domain.JournalEvent, domain.JournalState](domain.ApplyJournalEvent),
		byUser: make(map[string][]string),
	}
	// Index maintenance runs inside the aggregate's critical section so the
	// index observes tenancy changes in recorded order.
	r.store.onRecorded = r.indexEvent
	return r
}

var _ portsrepo.JournalRepositoryFacade = (*JournalRepository)(nil)

func (r *JournalRepository) indexEvent(journalID string, event domain.JournalEvent, _ domain.JournalState) {
	switch e := event.(type) {
	case domain.JournalCreated:
		r.addToUserIndex(e.Owner, journalID)
	case domain.JournalTenantAdded:
		r.addToUserIndex(e.UserID, journalID)
	case domain.JournalTenantRemoved:
		r.removeFromUserIndex(e.UserID, journalID)
	}
}

func (r *JournalRepository) addToUserIndex(userID, journalID string) {
	r.indexMu.Lock()
	defer r.indexMu.Unlock()
	for _, id := range r.byUser[userID] {
		if id == journalID {
			return
		}
	}
	r.byUser[userID] = append(r.byUser[userID], journalID)
}

func (r *JournalRepository) removeFromUserIndex(userID, journalID string) {
	r.indexMu.Lock()
	defer r.indexMu.Unlock()
	ids := r.byUser[userID]
	for i, id := range ids {
		if id == journalID {
			r.byUser[userID] = append(ids[:i], ids[i+1:]...)
			return
		}
	}
}

// FindJournalByID returns the journal's cached projection.
func (r *JournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.JournalState, error) {
	state, ok := r.getState(journalID)
	if !ok {
		return nil, fmt.Errorf("%w: journal %s", apperrors.ErrNotFound, journalID)
	}
	return &state, nil
}

// ListJournalIDsByUser reads the user→journals index.
func (r *JournalRepository) ListJournalIDsByUser(ctx context.Context, userID string) ([]string, error) {
	r.indexMu.RLock()
	defer r.indexMu.RUnlock()
	return append([]string(nil), r.byUser[userID]...), nil
}
