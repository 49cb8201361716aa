package domain

import "time"

// JournalTenantInfo records the access a non-owner user holds on a journal.
type JournalTenantInfo struct {
	TenantPermissions Permission `json:"tenantPermissions"`
	InvitingUser      string     `json:"invitingUser"`
	InvitedAt         time.Time  `json:"invitedAt"`
}

// JournalState is the cached projection of a journal aggregate: the fold of
// its event log. The journal owner implicitly holds every permission; the
// Deleted flag is a tombstone, never an erasure.
type JournalState struct {
	JournalID string                       `json:"journalID"`
	Name      string                       `json:"name"`
	Creator   string                       `json:"creator"`
	CreatedAt time.Time                    `json:"createdAt"`
	Owner     string                       `json:"owner"`
	Tenants   map[string]JournalTenantInfo `json:"tenants"`
	Deleted   bool                         `json:"deleted"`
}

// UserPermissions resolves the permission bitset the given user holds on this
// journal: owner implies all permissions, tenants hold their recorded subset,
// anyone else holds none.
func (s *JournalState) UserPermissions(userID string) Permission {
	if s.Owner == userID {
		return AllPermissions
	}
	if info, ok := s.Tenants[userID]; ok {
		return info.TenantPermissions
	}
	return 0
}

// JournalEvent is the tagged union of journal aggregate events.
type JournalEvent interface {
	EventType() string
}

// JournalCreated seeds a journal aggregate. Valid only as the first event of a log.
type JournalCreated struct {
	Name      string    `json:"name"`
	Owner     string    `json:"owner"`
	Creator   string    `json:"creator"`
	CreatedAt time.Time `json:"createdAt"`
}

// JournalRenamed changes the journal's display name.
type JournalRenamed struct {
	Name string `json:"name"`
}

// JournalDeleted marks the journal tombstoned. Enforcement of the tombstone is
// a service-layer concern; the reducer stays total.
type JournalDeleted struct{}

// JournalTenantAdded grants a user a permission subset on the journal.
type JournalTenantAdded struct {
	UserID       string     `json:"userID"`
	Permissions  Permission `json:"permissions"`
	InvitingUser string     `json:"invitingUser"`
	InvitedAt    time.Time  `json:"invitedAt"`
}

// JournalTenantPermissionsUpdated replaces a tenant's permission subset.
type JournalTenantPermissionsUpdated struct {
	UserID      string     `json:"userID"`
	Permissions Permission `json:"permissions"`
}

// JournalTenantRemoved revokes a tenant's access entirely.
type JournalTenantRemoved struct {
	UserID string `json:"userID"`
}

func (JournalCreated) EventType() string                  { return "journal.created" }
func (JournalRenamed) EventType() string                  { return "journal.renamed" }
func (JournalDeleted) EventType() string                  { return "journal.deleted" }
func (JournalTenantAdded) EventType() string              { return "journal.tenant_added" }
func (JournalTenantPermissionsUpdated) EventType() string { return "journal.tenant_permissions_updated" }
func (JournalTenantRemoved) EventType() string            { return "journal.tenant_removed" }

func (JournalCreated) isCreationEvent() {}

// ApplyJournalEvent is the pure reducer folding one event into the journal
// projection. It never fails: unknown or out-of-place events leave the state
// unchanged apart from the id, which always tracks the aggregate's log key.
func ApplyJournalEvent(journalID string, state JournalState, event JournalEvent) JournalState {
	state.JournalID = journalID
	switch e := event.(type) {
	case JournalCreated:
		state.Name = e.Name
		state.Owner = e.Owner
		state.Creator = e.Creator
		state.CreatedAt = e.CreatedAt
		state.Tenants = map[string]JournalTenantInfo{}
	case JournalRenamed:
		state.Name = e.Name
	case JournalDeleted:
		state.Deleted = true
	case JournalTenantAdded:
		state.Tenants = copyTenants(state.Tenants)
		state.Tenants[e.UserID] = JournalTenantInfo{
			TenantPermissions: e.Permissions,
			InvitingUser:      e.InvitingUser,
			InvitedAt:         e.InvitedAt,
		}
	case JournalTenantPermissionsUpdated:
		if info, ok := state.Tenants[e.UserID]; ok {
			state.Tenants = copyTenants(state.Tenants)
			info.TenantPermissions = e.Permissions
			state.Tenants[e.UserID] = info
		}
	case JournalTenantRemoved:
		state.Tenants = copyTenants(state.Tenants)
		delete(state.Tenants, e.UserID)
	}
	return state
}

// copyTenants keeps the reducer pure: callers may hold references to the
// previous projection while a new event is folded in.
func copyTenants(tenants map[string]JournalTenantInfo) map[string]JournalTenantInfo {
	out := make(map[string]JournalTenantInfo, len(tenants)+1)
	for k, v := range tenants {
		out[k] = v
	}
	return out
}
