package dto

import (
	"time"

	"github.com/monkesto/tally/internal/core/domain"
	portssvc "github.com/monkesto/tally/internal/core/ports/services"
)

// CreateJournalRequest defines the data needed to create a new journal.
type CreateJournalRequest struct {
	Name string `json:"name" binding:"required,max=64"`
}

// RenameJournalRequest defines the data for renaming a journal.
type RenameJournalRequest struct {
	Name string `json:"name" binding:"required,max=64"`
}

// InviteTenantRequest defines the data for inviting a user to a journal.
type InviteTenantRequest struct {
	Email       string   `json:"email" binding:"required,email"`
	Permissions []string `json:"permissions" binding:"required,min=1,dive,oneof=READ ADDACCOUNT APPENDTRANSACTION INVITE DELETE"`
}

// UpdateTenantPermissionsRequest defines the replacement permission set for a tenant.
type UpdateTenantPermissionsRequest struct {
	Permissions []string `json:"permissions" binding:"required,min=1,dive,oneof=READ ADDACCOUNT APPENDTRANSACTION INVITE DELETE"`
}

// JournalResponse defines the data returned for a journal.
type JournalResponse struct {
	JournalID string    `json:"journalID"`
	Name      string    `json:"name"`
	Owner     string    `json:"owner"`
	Creator   string    `json:"creator"`
	CreatedAt time.Time `json:"createdAt"`
	Deleted   bool      `json:"deleted,omitempty"`
}

// JournalUserResponse describes one user's standing on a journal.
type JournalUserResponse struct {
	UserID      string   `json:"userID"`
	Permissions []string `json:"permissions"`
	IsOwner     bool     `json:"isOwner,omitempty"`
}

// JournalEventResponse is one entry of a journal's event log.
type JournalEventResponse struct {
	EventType string              `json:"eventType"`
	Event     domain.JournalEvent `json:"event"`
}

var permissionBits = map[string]domain.Permission{
	"READ":              domain.PermissionRead,
	"ADDACCOUNT":        domain.PermissionAddAccount,
	"APPENDTRANSACTION": domain.PermissionAppendTransaction,
	"INVITE":            domain.PermissionInvite,
	"DELETE":            domain.PermissionDelete,
}

// ToPermission folds validated permission names into the domain bitset.
func ToPermission(names []string) domain.Permission {
	var p domain.Permission
	for _, name := range names {
		p = p.With(permissionBits[name])
	}
	return p
}

// ToPermissionNames expands a permission bitset into its names.
func ToPermissionNames(p domain.Permission) []string {
	names := make([]string, 0, len(permissionBits))
	for _, name := range []string{"READ", "ADDACCOUNT", "APPENDTRANSACTION", "INVITE", "DELETE"} {
		if p.Has(permissionBits[name]) {
			names = append(names, name)
		}
	}
	return names
}

// ToJournalResponse converts a domain.JournalState to its DTO.
func ToJournalResponse(j *domain.JournalState) JournalResponse {
	return JournalResponse{
		JournalID: j.JournalID,
		Name:      j.Name,
		Owner:     j.Owner,
		Creator:   j.Creator,
		CreatedAt: j.CreatedAt,
		Deleted:   j.Deleted,
	}
}

// ToJournalResponses converts a slice of journals to DTOs.
func ToJournalResponses(journals []domain.JournalState) []JournalResponse {
	responses := make([]JournalResponse, len(journals))
	for i := range journals {
		responses[i] = ToJournalResponse(&journals[i])
	}
	return responses
}

// ToJournalUserResponses converts journal user infos to DTOs.
func ToJournalUserResponses(users []portssvc.JournalUserInfo) []JournalUserResponse {
	responses := make([]JournalUserResponse, len(users))
	for i, u := range users {
		responses[i] = JournalUserResponse{
			UserID:      u.UserID,
			Permissions: ToPermissionNames(u.Permissions),
			IsOwner:     u.IsOwner,
		}
	}
	return responses
}

// ToJournalEventResponses wraps journal events with their type tags.
func ToJournalEventResponses(events []domain.JournalEvent) []JournalEventResponse {
	responses := make([]JournalEventResponse, len(events))
	for i, e := range events {
		responses[i] = JournalEventResponse{
			EventType: e.EventType(),
			Event:     e,
		}
	}
	return responses
}
