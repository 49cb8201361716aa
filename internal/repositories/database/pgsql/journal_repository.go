package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/monkesto/tally/internal/apperrors"
	"github.com/monkesto/tally/internal/core/domain"
	portsrepo "github.com/monkesto/tally/internal/core/ports/repositories"
)

// PgxJournalRepository persists journal aggregates: the event log, the cached
// projection and the user membership index.
type PgxJournalRepository struct {
	eventStore[domain.JournalEvent, domain.JournalState]
}

// newPgxJournalRepository creates a new repository for journal data.
func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepositoryFacade {
	r := &PgxJournalRepository{}
	r.eventStore = eventStore[domain.JournalEvent, domain.JournalState]{
		BaseRepository: BaseRepository{Pool: pool},
		eventsTable:    "journal_events",
		registry:       journalEventRegistry(),
		apply:          domain.ApplyJournalEvent,
		loadState:      loadJournalState,
		saveState:      saveJournalState,
		onRecorded:     indexJournalEvent,
	}
	return r
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

func loadJournalState(ctx context.Context, q queryer, journalID string) (*domain.JournalState, error) {
	var raw json.RawMessage
	err := q.QueryRow(ctx, `SELECT state FROM journals WHERE journal_id = $1`, journalID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load journal %s: %w", journalID, err)
	}
	var state domain.JournalState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("%w: decoding journal %s: %w", apperrors.ErrInternal, journalID, err)
	}
	return &state, nil
}

func saveJournalState(ctx context.Context, tx pgx.Tx, journalID string, state domain.JournalState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("%w: encoding journal %s: %w", apperrors.ErrInternal, journalID, err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO journals (journal_id, state, deleted)
		VALUES ($1, $2, $3)
		ON CONFLICT (journal_id) DO UPDATE SET state = EXCLUDED.state, deleted = EXCLUDED.deleted`,
		journalID, raw, state.Deleted)
	if err != nil {
		return fmt.Errorf("failed to save journal %s: %w", journalID, err)
	}
	return nil
}

// indexJournalEvent keeps the journal_users membership index in step with
// ownership and tenancy events.
func indexJournalEvent(ctx context.Context, tx pgx.Tx, journalID string, event domain.JournalEvent, _ domain.JournalState) error {
	switch e := event.(type) {
	case domain.JournalCreated:
		return addJournalUser(ctx, tx, journalID, e.Owner)
	case domain.JournalTenantAdded:
		return addJournalUser(ctx, tx, journalID, e.UserID)
	case domain.JournalTenantRemoved:
		_, err := tx.Exec(ctx, `DELETE FROM journal_users WHERE journal_id = $1 AND user_id = $2`, journalID, e.UserID)
		if err != nil {
			return fmt.Errorf("failed to unindex journal user: %w", err)
		}
	}
	return nil
}

func addJournalUser(ctx context.Context, tx pgx.Tx, journalID string, userID string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO journal_users (journal_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, journalID, userID)
	if err != nil {
		return fmt.Errorf("failed to index journal user: %w", err)
	}
	return nil
}

func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.JournalState, error) {
	return loadJournalState(ctx, r.Pool, journalID)
}

func (r *PgxJournalRepository) ListJournalIDsByUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT journal_id FROM journal_users
		WHERE user_id = $1
		ORDER BY ord`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list journals for user %s: %w", userID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan journal id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
