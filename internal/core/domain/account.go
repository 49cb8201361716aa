package domain

import "time"

// AccountState is the cached projection of an account aggregate. Balance is
// the running signed sum, in minor currency units, of every adjustment ever
// applied to the account: debits subtract, credits add. An account belongs to
// exactly one journal for its whole lifetime.
type AccountState struct {
	AccountID       string    `json:"accountID"`
	Name            string    `json:"name"`
	JournalID       string    `json:"journalID"`
	Author          string    `json:"author"`
	Balance         int64     `json:"balance"`
	CreatedAt       time.Time `json:"createdAt"`
	Deleted         bool      `json:"deleted"`
	ParentAccountID string    `json:"parentAccountID,omitempty"` // empty means root
}

// AccountEvent is the tagged union of account aggregate events.
type AccountEvent interface {
	EventType() string
}

// AccountCreated seeds an account aggregate inside a journal.
type AccountCreated struct {
	JournalID       string    `json:"journalID"`
	Name            string    `json:"name"`
	Author          string    `json:"author"`
	ParentAccountID string    `json:"parentAccountID,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// AccountRenamed changes the account's display name.
type AccountRenamed struct {
	Name string `json:"name"`
}

// AccountDeactivated tombstones the account. Its balance and history remain.
type AccountDeactivated struct{}

// AccountBalanceAdjusted moves the running balance by a signed delta in minor
// units. Transaction creation, amendment and compensation all funnel through
// this event, so the per-account log is a complete audit of balance changes.
type AccountBalanceAdjusted struct {
	Delta         int64  `json:"delta"`
	TransactionID string `json:"transactionID"`
}

func (AccountCreated) EventType() string         { return "account.created" }
func (AccountRenamed) EventType() string         { return "account.renamed" }
func (AccountDeactivated) EventType() string     { return "account.deactivated" }
func (AccountBalanceAdjusted) EventType() string { return "account.balance_adjusted" }

func (AccountCreated) isCreationEvent() {}

// ApplyAccountEvent is the pure reducer folding one event into the account projection.
func ApplyAccountEvent(accountID string, state AccountState, event AccountEvent) AccountState {
	state.AccountID = accountID
	switch e := event.(type) {
	case AccountCreated:
		state.JournalID = e.JournalID
		state.Name = e.Name
		state.Author = e.Author
		state.ParentAccountID = e.ParentAccountID
		state.CreatedAt = e.CreatedAt
	case AccountRenamed:
		state.Name = e.Name
	case AccountDeactivated:
		state.Deleted = true
	case AccountBalanceAdjusted:
		state.Balance += e.Delta
	}
	return state
}
