package repositories

import (
	"context"
	"time"

	"github.com/monkesto/tally/internal/core/domain"
)

// EventID identifies a single recorded event. Ids are store-generated and
// unique within a backend.
type EventID string

// Envelope wraps a recorded event with its store metadata.
type Envelope[E any] struct {
	EventID    EventID          `json:"eventID"`
	By         domain.Authority `json:"by"`
	RecordedAt time.Time        `json:"recordedAt"`
	Event      E                `json:"event"`
}

// EventStore is the append-only contract every aggregate store implements.
//
// Record appends the event, tagged with the acting authority, to the
// aggregate's ordered log and folds it into the cached projection. A creation
// event is only valid when no log exists for id (otherwise
// apperrors.ErrIncorrectEventType); any other event requires the log to exist
// (otherwise apperrors.ErrNotFound). Concurrent Record calls on the same id
// serialize; calls on different ids proceed in parallel.
//
// GetEvents pages the log with the cursor convention: after is the index of
// the last event already seen, so after=0 returns events starting at index 1
// (the creation event sits at index 0 and is skipped by the smallest legal
// cursor). Pass after=-1 for the full log. At most limit events are returned;
// a cursor at or past the end yields an empty page, never an error.
type EventStore[E any] interface {
	Record(ctx context.Context, id string, by domain.Authority, event E) (EventID, error)
	GetEvents(ctx context.Context, id string, after int, limit int) ([]E, error)
}

// JournalRepositoryFacade is the journal aggregate store: the event log plus
// projection and index queries. FindJournalByID returns
// apperrors.ErrNotFound for unknown ids; a tombstoned journal is still
// returned (callers decide what a tombstone means).
type JournalRepositoryFacade interface {
	EventStore[domain.JournalEvent]

	FindJournalByID(ctx context.Context, journalID string) (*domain.JournalState, error)

	// ListJournalIDsByUser reads the user→journals index: every journal the
	// user owns or is a tenant of. The index is maintained incrementally as
	// ownership and tenancy events are recorded.
	ListJournalIDsByUser(ctx context.Context, userID string) ([]string, error)
}

// AccountRepositoryFacade is the account aggregate store.
type AccountRepositoryFacade interface {
	EventStore[domain.AccountEvent]

	FindAccountByID(ctx context.Context, accountID string) (*domain.AccountState, error)

	// FindAccountsByIDs returns the projections for the given ids; absent ids
	// are simply missing from the result map.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.AccountState, error)

	// ListAccountIDsByJournal reads the journal→accounts index, maintained
	// incrementally at account creation. No full scan.
	ListAccountIDsByJournal(ctx context.Context, journalID string) ([]string, error)
}

// TransactionRepositoryFacade is the transaction aggregate store.
type TransactionRepositoryFacade interface {
	EventStore[domain.TransactionEvent]

	FindTransactionByID(ctx context.Context, transactionID string) (*domain.TransactionState, error)

	// ListTransactionsByJournal returns the journal's transactions in
	// creation order, via the journal→transactions index.
	ListTransactionsByJournal(ctx context.Context, journalID string) ([]domain.TransactionState, error)
}

// UserRepositoryFacade stores user records. Users are not event-sourced.
type UserRepositoryFacade interface {
	SaveUser(ctx context.Context, user domain.User) error
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	JournalRepo     JournalRepositoryFacade
	AccountRepo     AccountRepositoryFacade
	TransactionRepo TransactionRepositoryFacade
	UserRepo        UserRepositoryFacade
}
