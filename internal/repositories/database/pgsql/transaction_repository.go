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

// PgxTransactionRepository persists transaction aggregates. The insertion
// order column on the projection gives ListTransactionsByJournal its
// creation-order guarantee.
type PgxTransactionRepository struct {
	eventStore[domain.TransactionEvent, domain.TransactionState]
}

// newPgxTransactionRepository creates a new repository for transaction data.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	r := &PgxTransactionRepository{}
	r.eventStore = eventStore[domain.TransactionEvent, domain.TransactionState]{
		BaseRepository: BaseRepository{Pool: pool},
		eventsTable:    "transaction_events",
		registry:       transactionEventRegistry(),
		apply:          domain.ApplyTransactionEvent,
		loadState:      loadTransactionState,
		saveState:      saveTransactionState,
	}
	return r
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryFacade
var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func loadTransactionState(ctx context.Context, q queryer, transactionID string) (*domain.TransactionState, error) {
	var raw json.RawMessage
	err := q.QueryRow(ctx, `SELECT state FROM transactions WHERE transaction_id = $1`, transactionID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load transaction %s: %w", transactionID, err)
	}
	var state domain.TransactionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("%w: decoding transaction %s: %w", apperrors.ErrInternal, transactionID, err)
	}
	return &state, nil
}

func saveTransactionState(ctx context.Context, tx pgx.Tx, transactionID string, state domain.TransactionState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("%w: encoding transaction %s: %w", apperrors.ErrInternal, transactionID, err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (transaction_id, journal_id, state)
		VALUES ($1, $2, $3)
		ON CONFLICT (transaction_id) DO UPDATE SET state = EXCLUDED.state`,
		transactionID, state.JournalID, raw)
	if err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", transactionID, err)
	}
	return nil
}

func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.TransactionState, error) {
	return loadTransactionState(ctx, r.Pool, transactionID)
}

func (r *PgxTransactionRepository) ListTransactionsByJournal(ctx context.Context, journalID string) ([]domain.TransactionState, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT transaction_id, state FROM transactions
		WHERE journal_id = $1
		ORDER BY ord`, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for journal %s: %w", journalID, err)
	}
	defer rows.Close()

	var states []domain.TransactionState
	for rows.Next() {
		var id string
		var raw json.RawMessage
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		var state domain.TransactionState
		if err := json.Unmarshal(raw, &state); err != nil {
			return nil, fmt.Errorf("%w: decoding transaction %s: %w", apperrors.ErrInternal, id, err)
		}
		states = append(states, state)
	}
	return states, rows.Err()
}
