package domain

import "time"

// EntryType indicates whether a balance update is a Debit or a Credit.
type EntryType string

const (
	Debit  EntryType = "DEBIT"
	Credit EntryType = "CREDIT"
)

// BalanceUpdate is one leg of a transaction: it moves a single account by a
// positive amount in minor units, in the debit or credit direction.
type BalanceUpdate struct {
	AccountID string    `json:"accountID"`
	Amount    int64     `json:"amount"` // always > 0; direction comes from EntryType
	EntryType EntryType `json:"entryType"`
}

// SignedAmount returns the balance delta the update applies to its account:
// credits add, debits subtract.
func (u BalanceUpdate) SignedAmount() int64 {
	if u.EntryType == Debit {
		return -u.Amount
	}
	return u.Amount
}

// Reversed returns the update with the opposite entry type, used when
// amendments or compensations undo a previously applied update.
func (u BalanceUpdate) Reversed() BalanceUpdate {
	if u.EntryType == Debit {
		u.EntryType = Credit
	} else {
		u.EntryType = Debit
	}
	return u
}

// SumUpdates nets a set of updates: zero for a well-formed transaction.
func SumUpdates(updates []BalanceUpdate) int64 {
	var sum int64
	for _, u := range updates {
		sum += u.SignedAmount()
	}
	return sum
}

// TransactionState is the cached projection of a transaction aggregate.
type TransactionState struct {
	TransactionID string          `json:"transactionID"`
	JournalID     string          `json:"journalID"`
	Author        string          `json:"author"`
	Updates       []BalanceUpdate `json:"updates"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// TransactionEvent is the tagged union of transaction aggregate events.
type TransactionEvent interface {
	EventType() string
}

// TransactionCreated seeds a transaction aggregate with its balance updates.
// Callers validate the zero-sum invariant before recording; the aggregate
// itself does not enforce it.
type TransactionCreated struct {
	JournalID string          `json:"journalID"`
	Author    string          `json:"author"`
	Updates   []BalanceUpdate `json:"updates"`
	CreatedAt time.Time       `json:"createdAt"`
}

// TransactionUpdatesAmended replaces the transaction's balance updates.
// Balance reconciliation (reverse old, apply new) happens in the account
// store before this event is recorded.
type TransactionUpdatesAmended struct {
	Updates []BalanceUpdate `json:"updates"`
}

func (TransactionCreated) EventType() string        { return "transaction.created" }
func (TransactionUpdatesAmended) EventType() string { return "transaction.updates_amended" }

func (TransactionCreated) isCreationEvent() {}

// ApplyTransactionEvent is the pure reducer folding one event into the
// transaction projection.
func ApplyTransactionEvent(transactionID string, state TransactionState, event TransactionEvent) TransactionState {
	state.TransactionID = transactionID
	switch e := event.(type) {
	case TransactionCreated:
		state.JournalID = e.JournalID
		state.Author = e.Author
		state.Updates = append([]BalanceUpdate(nil), e.Updates...)
		state.CreatedAt = e.CreatedAt
	case TransactionUpdatesAmended:
		state.Updates = append([]BalanceUpdate(nil), e.Updates...)
	}
	return state
}

// IsCreationEvent reports whether the event seeds a new aggregate log.
// Stores use it to enforce the creation discipline: a creation event needs an
// absent log, any other event needs a present one.
func IsCreationEvent(event any) bool {
	_, ok := event.(interface{ isCreationEvent() })
	return ok
}
