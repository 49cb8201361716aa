package pgsql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/monkesto/tally/internal/apperrors"
	"github.com/monkesto/tally/internal/core/domain"
	portsrepo "github.com/monkesto/tally/internal/core/ports/repositories"
	"github.com/monkesto/tally/internal/utils"
)

// queryer is the read surface shared by the pool and an open transaction.
type queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// eventStore is the append-only log shared by the aggregate repositories.
// Events live in eventsTable keyed by (aggregate_id, seq); the cached
// projection is persisted by saveState and reloaded by loadState. Everything
// for one Record call happens in a single database transaction, serialized
// per aggregate with an advisory lock.
type eventStore[E interface{ EventType() string }, S any] struct {
	BaseRepository
	eventsTable string
	registry    *eventRegistry[E]
	apply       func(id string, state S, event E) S
	loadState   func(ctx context.Context, q queryer, id string) (*S, error)
	saveState   func(ctx context.Context, tx pgx.Tx, id string, state S) error
	// onRecorded, when set, maintains the repository's index tables inside
	// the same transaction.
	onRecorded func(ctx context.Context, tx pgx.Tx, id string, event E, state S) error
}

// Record appends the event to the aggregate's log and folds it into the
// persisted projection. The creation discipline matches the in-memory
// backend: a creation event needs an absent log, anything else a present one.
func (s *eventStore[E, S]) Record(ctx context.Context, id string, by domain.Authority, event E) (portsrepo.EventID, error) {
	tx, err := s.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = s.Rollback(ctx, tx) }()

	// Serialize concurrent appends to the same aggregate.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, s.eventsTable+"/"+id); err != nil {
		return "", fmt.Errorf("failed to lock aggregate %s: %w", id, err)
	}

	var lastSeq int
	query := fmt.Sprintf(`SELECT COALESCE(MAX(seq), -1) FROM %s WHERE aggregate_id = $1`, s.eventsTable)
	if err := tx.QueryRow(ctx, query, id).Scan(&lastSeq); err != nil {
		return "", fmt.Errorf("failed to read log head for %s: %w", id, err)
	}

	isCreation := domain.IsCreationEvent(event)
	if isCreation && lastSeq >= 0 {
		return "", apperrors.ErrIncorrectEventType
	}
	if !isCreation && lastSeq < 0 {
		return "", apperrors.ErrNotFound
	}

	var state S
	if !isCreation {
		loaded, err := s.loadState(ctx, tx, id)
		if err != nil {
			return "", err
		}
		state = *loaded
	}
	state = s.apply(id, state, event)

	payload, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("%w: encoding %s: %w", apperrors.ErrInternal, event.EventType(), err)
	}

	eventID := utils.NewID()
	insert := fmt.Sprintf(`
		INSERT INTO %s (event_id, aggregate_id, seq, event_type, payload, actor_kind, actor_user_id, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())`, s.eventsTable)
	_, err = tx.Exec(ctx, insert, eventID, id, lastSeq+1, event.EventType(), payload, string(by.Actor.Kind), by.Actor.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to append event for %s: %w", id, err)
	}

	if err := s.saveState(ctx, tx, id, state); err != nil {
		return "", err
	}
	if s.onRecorded != nil {
		if err := s.onRecorded(ctx, tx, id, event, state); err != nil {
			return "", err
		}
	}

	if err := s.Commit(ctx, tx); err != nil {
		return "", err
	}
	return portsrepo.EventID(eventID), nil
}

// GetEvents pages the aggregate's log. The after cursor is the seq of the
// last event already seen; -1 requests the log from its creation event.
func (s *eventStore[E, S]) GetEvents(ctx context.Context, id string, after int, limit int) ([]E, error) {
	var exists bool
	existsQuery := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE aggregate_id = $1)`, s.eventsTable)
	if err := s.Pool.QueryRow(ctx, existsQuery, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check log for %s: %w", id, err)
	}
	if !exists {
		return nil, apperrors.ErrNotFound
	}
	if limit <= 0 {
		return []E{}, nil
	}
	if after < -1 {
		after = -1
	}

	query := fmt.Sprintf(`
		SELECT event_type, payload FROM %s
		WHERE aggregate_id = $1 AND seq > $2
		ORDER BY seq
		LIMIT $3`, s.eventsTable)
	rows, err := s.Pool.Query(ctx, query, id, after, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events for %s: %w", id, err)
	}
	defer rows.Close()

	events := make([]E, 0, limit)
	for rows.Next() {
		var eventType string
		var payload json.RawMessage
		if err := rows.Scan(&eventType, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		event, err := s.registry.decode(eventType, payload)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
