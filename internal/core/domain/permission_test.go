package domain_test

import (
	"testing"

	"github.com/monkesto/tally/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestPermissionHas(t *testing.T) {
	p := domain.PermissionRead | domain.PermissionAppendTransaction

	assert.True(t, p.Has(domain.PermissionRead))
	assert.True(t, p.Has(domain.PermissionAppendTransaction))
	assert.True(t, p.Has(domain.PermissionRead|domain.PermissionAppendTransaction))
	assert.False(t, p.Has(domain.PermissionAddAccount))
	assert.False(t, p.Has(domain.PermissionRead|domain.PermissionOwner))
}

func TestPermissionWithWithout(t *testing.T) {
	p := domain.PermissionRead
	p = p.With(domain.PermissionInvite | domain.PermissionDelete)
	assert.True(t, p.Has(domain.PermissionInvite))

	p = p.Without(domain.PermissionInvite)
	assert.False(t, p.Has(domain.PermissionInvite))
	assert.True(t, p.Has(domain.PermissionRead))
	assert.True(t, p.Has(domain.PermissionDelete))
}

func TestAllPermissionsCoversEveryBit(t *testing.T) {
	for _, bit := range []domain.Permission{
		domain.PermissionRead,
		domain.PermissionAddAccount,
		domain.PermissionAppendTransaction,
		domain.PermissionInvite,
		domain.PermissionDelete,
		domain.PermissionOwner,
	} {
		assert.True(t, domain.AllPermissions.Has(bit))
	}
}

func TestPermissionString(t *testing.T) {
	assert.Equal(t, "NONE", domain.Permission(0).String())
	assert.Equal(t, "READ|INVITE", (domain.PermissionRead | domain.PermissionInvite).String())
}

func TestJournalUserPermissions(t *testing.T) {
	state := domain.JournalState{
		Owner: "owner-1",
		Tenants: map[string]domain.JournalTenantInfo{
			"tenant-1": {TenantPermissions: domain.PermissionRead | domain.PermissionAppendTransaction},
		},
	}

	assert.Equal(t, domain.AllPermissions, state.UserPermissions("owner-1"))
	assert.Equal(t, domain.PermissionRead|domain.PermissionAppendTransaction, state.UserPermissions("tenant-1"))
	assert.Equal(t, domain.Permission(0), state.UserPermissions("stranger"))
}
