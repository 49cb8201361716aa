package domain

import "strings"

// Permission is a bitset over the capabilities a user can hold on a journal.
// The journal owner implicitly holds every permission; tenants hold the
// subset recorded in their JournalTenantInfo.
type Permission uint8

const (
	PermissionRead Permission = 1 << iota
	PermissionAddAccount
	PermissionAppendTransaction
	PermissionInvite
	PermissionDelete
	PermissionOwner
)

// AllPermissions is the full set, held implicitly by the journal owner.
const AllPermissions = PermissionRead | PermissionAddAccount | PermissionAppendTransaction |
	PermissionInvite | PermissionDelete | PermissionOwner

// Has reports whether p contains every permission in required.
func (p Permission) Has(required Permission) bool {
	return p&required == required
}

// With returns p with the given permissions added.
func (p Permission) With(perms Permission) Permission {
	return p | perms
}

// Without returns p with the given permissions removed.
func (p Permission) Without(perms Permission) Permission {
	return p &^ perms
}

var permissionNames = []struct {
	bit  Permission
	name string
}{
	{PermissionRead, "READ"},
	{PermissionAddAccount, "ADDACCOUNT"},
	{PermissionAppendTransaction, "APPENDTRANSACTION"},
	{PermissionInvite, "INVITE"},
	{PermissionDelete, "DELETE"},
	{PermissionOwner, "OWNER"},
}

func (p Permission) String() string {
	if p == 0 {
		return "NONE"
	}
	parts := make([]string, 0, len(permissionNames))
	for _, pn := range permissionNames {
		if p.Has(pn.bit) {
			parts = append(parts, pn.name)
		}
	}
	return strings.Join(parts, "|")
}
