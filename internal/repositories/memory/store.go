// Package memory implements the aggregate event stores on concurrent maps.
// It is a first-class backend (not a test double): the unit of mutual
// exclusion is a single aggregate's map entry, so record calls on the same
// aggregate serialize while different aggregates proceed in parallel. There
// is no global lock around event application.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/monkesto/tally/internal/apperrors"
	"github.com/monkesto/tally/internal/core/domain"
	portsrepo "github.com/monkesto/tally/internal/core/ports/repositories"
)

// aggregate is one map entry: the ordered log and cached projection of a
// single aggregate, guarded by its own lock.
type aggregate[E any, S any] struct {
	mu    sync.RWMutex
	log   []portsrepo.Envelope[E]
	state S
}

// store is the generic event store shared by the journal, account and
// transaction backends. The outer lock guards only the map structure;
// per-aggregate work happens under the entry lock.
type store[E any, S any] struct {
	mu      sync.RWMutex
	entries map[string]*aggregate[E, S]

	apply func(id string, state S, event E) S

	// onRecorded, when set, runs inside the entry's critical section after a
	// successful append. Concrete stores use it to maintain their secondary
	// indexes in the same order events are recorded.
	onRecorded func(id string, event E, state S)
}

func newStore[E any, S any](apply func(string, S, E) S) *store[E, S] {
	return &store[E, S]{
		entries: make(map[string]*aggregate[E, S]),
		apply:   apply,
	}
}

// newEventID returns a 16-character collision-resistant event id.
func newEventID() portsrepo.EventID {
	return portsrepo.EventID(gonanoid.Must(16))
}

// Record appends an event to the aggregate's log and folds it into the cached
// projection. See portsrepo.EventStore for the creation-event discipline.
func (s *store[E, S]) Record(ctx context.Context, id string, by domain.Authority, event E) (portsrepo.EventID, error) {
	if domain.IsCreationEvent(event) {
		s.mu.Lock()
		if _, exists := s.entries[id]; exists {
			s.mu.Unlock()
			return "", fmt.Errorf("%w: aggregate %s already has a log", apperrors.ErrIncorrectEventType, id)
		}
		entry := &aggregate[E, S]{}
		entry.mu.Lock()
		s.entries[id] = entry
		s.mu.Unlock()
		defer entry.mu.Unlock()
		return s.append(entry, id, by, event), nil
	}

	s.mu.RLock()
	entry, exists := s.entries[id]
	s.mu.RUnlock()
	if !exists {
		return "", fmt.Errorf("%w: aggregate %s has no log", apperrors.ErrNotFound, id)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return s.append(entry, id, by, event), nil
}

// append runs under the entry lock: once begun, a single event is applied in
// full, so a partially applied event is never observable.
func (s *store[E, S]) append(entry *aggregate[E, S], id string, by domain.Authority, event E) portsrepo.EventID {
	env := portsrepo.Envelope[E]{
		EventID:    newEventID(),
		By:         by,
		RecordedAt: time.Now().UTC(),
		Event:      event,
	}
	entry.log = append(entry.log, env)
	entry.state = s.apply(id, entry.state, event)
	if s.onRecorded != nil {
		s.onRecorded(id, event, entry.state)
	}
	return env.EventID
}

// GetEvents returns up to limit events strictly after index `after`, clamped
// to the log length. Out-of-range cursors yield an empty page.
func (s *store[E, S]) GetEvents(ctx context.Context, id string, after int, limit int) ([]E, error) {
	s.mu.RLock()
	entry, exists := s.entries[id]
	s.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: aggregate %s has no log", apperrors.ErrNotFound, id)
	}

	entry.mu.RLock()
	defer entry.mu.RUnlock()

	start := after + 1
	if start < 0 {
		start = 0
	}
	if start >= len(entry.log) || limit <= 0 {
		return []E{}, nil
	}
	end := start + limit
	if end > len(entry.log) {
		end = len(entry.log)
	}

	out := make([]E, 0, end-start)
	for _, env := range entry.log[start:end] {
		out = append(out, env.Event)
	}
	return out, nil
}

// getState returns a copy of the aggregate's cached projection.
func (s *store[E, S]) getState(id string) (S, bool) {
	var zero S
	s.mu.RLock()
	entry, exists := s.entries[id]
	s.mu.RUnlock()
	if !exists {
		return zero, false
	}
	entry.mu.RLock()
	defer entry.mu.RUnlock()
	return entry.state, true
}
