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

// PgxAccountRepository persists account aggregates. The journal_id column on
// the projection doubles as the journal→accounts index.
type PgxAccountRepository struct {
	eventStore[domain.AccountEvent, domain.AccountState]
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	r := &PgxAccountRepository{}
	r.eventStore = eventStore[domain.AccountEvent, domain.AccountState]{
		BaseRepository: BaseRepository{Pool: pool},
		eventsTable:    "account_events",
		registry:       accountEventRegistry(),
		apply:          domain.ApplyAccountEvent,
		loadState:      loadAccountState,
		saveState:      saveAccountState,
	}
	return r
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func loadAccountState(ctx context.Context, q queryer, accountID string) (*domain.AccountState, error) {
	var raw json.RawMessage
	err := q.QueryRow(ctx, `SELECT state FROM accounts WHERE account_id = $1`, accountID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load account %s: %w", accountID, err)
	}
	var state domain.AccountState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("%w: decoding account %s: %w", apperrors.ErrInternal, accountID, err)
	}
	return &state, nil
}

func saveAccountState(ctx context.Context, tx pgx.Tx, accountID string, state domain.AccountState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("%w: encoding account %s: %w", apperrors.ErrInternal, accountID, err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO accounts (account_id, journal_id, state)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id) DO UPDATE SET state = EXCLUDED.state`,
		accountID, state.JournalID, raw)
	if err != nil {
		return fmt.Errorf("failed to save account %s: %w", accountID, err)
	}
	return nil
}

func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.AccountState, error) {
	return loadAccountState(ctx, r.Pool, accountID)
}

func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.AccountState, error) {
	rows, err := r.Pool.Query(ctx, `SELECT account_id, state FROM accounts WHERE account_id = ANY($1)`, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	states := make(map[string]domain.AccountState, len(accountIDs))
	for rows.Next() {
		var id string
		var raw json.RawMessage
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		var state domain.AccountState
		if err := json.Unmarshal(raw, &state); err != nil {
			return nil, fmt.Errorf("%w: decoding account %s: %w", apperrors.ErrInternal, id, err)
		}
		states[id] = state
	}
	return states, rows.Err()
}

func (r *PgxAccountRepository) ListAccountIDsByJournal(ctx context.Context, journalID string) ([]string, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT account_id FROM accounts
		WHERE journal_id = $1
		ORDER BY ord`, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for journal %s: %w", journalID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan account id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
