package domain_test

import (
	"testing"
	"time"

	"github.com/monkesto/tally/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestBalanceUpdateSignedAmount(t *testing.T) {
	debit := domain.BalanceUpdate{AccountID: "a1", Amount: 500, EntryType: domain.Debit}
	credit := domain.BalanceUpdate{AccountID: "a2", Amount: 500, EntryType: domain.Credit}

	assert.Equal(t, int64(-500), debit.SignedAmount())
	assert.Equal(t, int64(500), credit.SignedAmount())
}

func TestBalanceUpdateReversed(t *testing.T) {
	debit := domain.BalanceUpdate{AccountID: "a1", Amount: 500, EntryType: domain.Debit}
	rev := debit.Reversed()

	assert.Equal(t, domain.Credit, rev.EntryType)
	assert.Equal(t, debit.Amount, rev.Amount)
	assert.Equal(t, -debit.SignedAmount(), rev.SignedAmount())
	// original untouched
	assert.Equal(t, domain.Debit, debit.EntryType)
}

func TestSumUpdates(t *testing.T) {
	balanced := []domain.BalanceUpdate{
		{AccountID: "a1", Amount: 500000, EntryType: domain.Debit},
		{AccountID: "a2", Amount: 500000, EntryType: domain.Credit},
	}
	assert.Equal(t, int64(0), domain.SumUpdates(balanced))

	unbalanced := []domain.BalanceUpdate{
		{AccountID: "a1", Amount: 100, EntryType: domain.Debit},
	}
	assert.Equal(t, int64(-100), domain.SumUpdates(unbalanced))

	assert.Equal(t, int64(0), domain.SumUpdates(nil))
}

func TestApplyTransactionEvent(t *testing.T) {
	now := time.Now().UTC()
	created := domain.TransactionCreated{
		JournalID: "j1",
		Author:    "u1",
		Updates: []domain.BalanceUpdate{
			{AccountID: "a1", Amount: 100, EntryType: domain.Debit},
			{AccountID: "a2", Amount: 100, EntryType: domain.Credit},
		},
		CreatedAt: now,
	}

	state := domain.ApplyTransactionEvent("t1", domain.TransactionState{}, created)
	assert.Equal(t, "t1", state.TransactionID)
	assert.Equal(t, "j1", state.JournalID)
	assert.Len(t, state.Updates, 2)

	amended := domain.TransactionUpdatesAmended{
		Updates: []domain.BalanceUpdate{
			{AccountID: "a1", Amount: 250, EntryType: domain.Debit},
			{AccountID: "a2", Amount: 250, EntryType: domain.Credit},
		},
	}
	next := domain.ApplyTransactionEvent("t1", state, amended)
	assert.Equal(t, int64(250), next.Updates[0].Amount)
	// prior projection keeps its own update slice
	assert.Equal(t, int64(100), state.Updates[0].Amount)
}

func TestApplyAccountEventBalance(t *testing.T) {
	now := time.Now().UTC()
	state := domain.ApplyAccountEvent("a1", domain.AccountState{}, domain.AccountCreated{
		JournalID: "j1", Name: "Assets", Author: "u1", CreatedAt: now,
	})
	assert.Equal(t, int64(0), state.Balance)

	state = domain.ApplyAccountEvent("a1", state, domain.AccountBalanceAdjusted{Delta: -500000, TransactionID: "t1"})
	state = domain.ApplyAccountEvent("a1", state, domain.AccountBalanceAdjusted{Delta: 200, TransactionID: "t2"})
	assert.Equal(t, int64(-499800), state.Balance)

	state = domain.ApplyAccountEvent("a1", state, domain.AccountDeactivated{})
	assert.True(t, state.Deleted)
	assert.Equal(t, int64(-499800), state.Balance)
}

func TestIsCreationEvent(t *testing.T) {
	assert.True(t, domain.IsCreationEvent(domain.JournalCreated{}))
	assert.True(t, domain.IsCreationEvent(domain.AccountCreated{}))
	assert.True(t, domain.IsCreationEvent(domain.TransactionCreated{}))
	assert.False(t, domain.IsCreationEvent(domain.JournalRenamed{}))
	assert.False(t, domain.IsCreationEvent(domain.AccountBalanceAdjusted{}))
	assert.False(t, domain.IsCreationEvent(domain.TransactionUpdatesAmended{}))
}
