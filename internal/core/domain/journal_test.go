package domain_test

import (
	"testing"
	"time"

	"github.com/monkesto/tally/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyJournalEventLifecycle(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	events := []domain.JournalEvent{
		domain.JournalCreated{Name: "Household", Owner: "u1", Creator: "u1", CreatedAt: now},
		domain.JournalTenantAdded{UserID: "u2", Permissions: domain.PermissionRead, InvitingUser: "u1", InvitedAt: now},
		domain.JournalRenamed{Name: "Household 2025"},
		domain.JournalTenantPermissionsUpdated{UserID: "u2", Permissions: domain.PermissionRead | domain.PermissionInvite},
	}

	var state domain.JournalState
	for _, e := range events {
		state = domain.ApplyJournalEvent("j1", state, e)
	}

	assert.Equal(t, "j1", state.JournalID)
	assert.Equal(t, "Household 2025", state.Name)
	assert.Equal(t, "u1", state.Owner)
	assert.False(t, state.Deleted)
	require.Contains(t, state.Tenants, "u2")
	assert.Equal(t, domain.PermissionRead|domain.PermissionInvite, state.Tenants["u2"].TenantPermissions)
	assert.Equal(t, "u1", state.Tenants["u2"].InvitingUser)

	state = domain.ApplyJournalEvent("j1", state, domain.JournalTenantRemoved{UserID: "u2"})
	assert.NotContains(t, state.Tenants, "u2")

	state = domain.ApplyJournalEvent("j1", state, domain.JournalDeleted{})
	assert.True(t, state.Deleted)
}

// Replay equivalence: folding events 1..N must equal folding 1..N-1 and then N.
func TestApplyJournalEventReplayEquivalence(t *testing.T) {
	now := time.Now().UTC()
	events := []domain.JournalEvent{
		domain.JournalCreated{Name: "A", Owner: "u1", Creator: "u1", CreatedAt: now},
		domain.JournalTenantAdded{UserID: "u2", Permissions: domain.PermissionRead, InvitingUser: "u1", InvitedAt: now},
		domain.JournalRenamed{Name: "B"},
		domain.JournalTenantRemoved{UserID: "u2"},
		domain.JournalDeleted{},
	}

	for n := 1; n <= len(events); n++ {
		var full domain.JournalState
		for _, e := range events[:n] {
			full = domain.ApplyJournalEvent("j1", full, e)
		}

		var prefix domain.JournalState
		for _, e := range events[:n-1] {
			prefix = domain.ApplyJournalEvent("j1", prefix, e)
		}
		stepped := domain.ApplyJournalEvent("j1", prefix, events[n-1])

		assert.Equal(t, full, stepped, "prefix length %d", n)
	}
}

// The reducer must not mutate the projection it was handed: callers may hold
// a reference to the previous state while a new event is folded in.
func TestApplyJournalEventDoesNotMutateInput(t *testing.T) {
	now := time.Now().UTC()
	base := domain.ApplyJournalEvent("j1", domain.JournalState{}, domain.JournalCreated{Name: "A", Owner: "u1", Creator: "u1", CreatedAt: now})
	base = domain.ApplyJournalEvent("j1", base, domain.JournalTenantAdded{UserID: "u2", Permissions: domain.PermissionRead, InvitedAt: now})

	_ = domain.ApplyJournalEvent("j1", base, domain.JournalTenantRemoved{UserID: "u2"})
	assert.Contains(t, base.Tenants, "u2")

	_ = domain.ApplyJournalEvent("j1", base, domain.JournalTenantPermissionsUpdated{UserID: "u2", Permissions: domain.AllPermissions})
	assert.Equal(t, domain.PermissionRead, base.Tenants["u2"].TenantPermissions)
}
