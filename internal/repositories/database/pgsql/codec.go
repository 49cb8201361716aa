package pgsql

import (
	"encoding/json"
	"fmt"

	"github.com/monkesto/tally/internal/apperrors"
	"github.com/monkesto/tally/internal/core/domain"
)

// eventRegistry maps persisted event type tags to decoders so stored JSON
// payloads round-trip to their concrete event types.
type eventRegistry[E any] struct {
	decoders map[string]func(json.RawMessage) (E, error)
}

func newEventRegistry[E any]() *eventRegistry[E] {
	return &eventRegistry[E]{decoders: map[string]func(json.RawMessage) (E, error){}}
}

// registerEvent registers the decoder for concrete event type T under its
// EventType tag. Events decode to values, matching what the reducers expect.
func registerEvent[E any, T any](r *eventRegistry[E], eventType string) {
	r.decoders[eventType] = func(data json.RawMessage) (E, error) {
		var event T
		if err := json.Unmarshal(data, &event); err != nil {
			var zero E
			return zero, fmt.Errorf("%w: decoding %s: %w", apperrors.ErrInternal, eventType, err)
		}
		return any(event).(E), nil
	}
}

func (r *eventRegistry[E]) decode(eventType string, data json.RawMessage) (E, error) {
	decoder, ok := r.decoders[eventType]
	if !ok {
		var zero E
		return zero, fmt.Errorf("%w: unknown event type %q", apperrors.ErrInternal, eventType)
	}
	return decoder(data)
}

func journalEventRegistry() *eventRegistry[domain.JournalEvent] {
	r := newEventRegistry[domain.JournalEvent]()
	registerEvent[domain.JournalEvent, domain.JournalCreated](r, domain.JournalCreated{}.EventType())
	registerEvent[domain.JournalEvent, domain.JournalRenamed](r, domain.JournalRenamed{}.EventType())
	registerEvent[domain.JournalEvent, domain.JournalDeleted](r, domain.JournalDeleted{}.EventType())
	registerEvent[domain.JournalEvent, domain.JournalTenantAdded](r, domain.JournalTenantAdded{}.EventType())
	registerEvent[domain.JournalEvent, domain.JournalTenantPermissionsUpdated](r, domain.JournalTenantPermissionsUpdated{}.EventType())
	registerEvent[domain.JournalEvent, domain.JournalTenantRemoved](r, domain.JournalTenantRemoved{}.EventType())
	return r
}

func accountEventRegistry() *eventRegistry[domain.AccountEvent] {
	r := newEventRegistry[domain.AccountEvent]()
	registerEvent[domain.AccountEvent, domain.AccountCreated](r, domain.AccountCreated{}.EventType())
	registerEvent[domain.AccountEvent, domain.AccountRenamed](r, domain.AccountRenamed{}.EventType())
	registerEvent[domain.AccountEvent, domain.AccountDeactivated](r, domain.AccountDeactivated{}.EventType())
	registerEvent[domain.AccountEvent, domain.AccountBalanceAdjusted](r, domain.AccountBalanceAdjusted{}.EventType())
	return r
}

func transactionEventRegistry() *eventRegistry[domain.TransactionEvent] {
	r := newEventRegistry[domain.TransactionEvent]()
	registerEvent[domain.TransactionEvent, domain.TransactionCreated](r, domain.TransactionCreated{}.EventType())
	registerEvent[domain.TransactionEvent, domain.TransactionUpdatesAmended](r, domain.TransactionUpdatesAmended{}.EventType())
	return r
}
