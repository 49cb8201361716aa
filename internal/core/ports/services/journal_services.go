package services

import (
	"context"

	"github.com/monkesto/tally/internal/core/domain"
)

// JournalUserInfo describes one user with access to a journal: the owner or a tenant.
type JournalUserInfo struct {
	UserID      string            `json:"userID"`
	Permissions domain.Permission `json:"permissions"`
	IsOwner     bool              `json:"isOwner"`
}

// JournalReaderSvc defines read operations for journal data.
type JournalReaderSvc interface {
	// GetJournal retrieves a journal. It returns (nil, nil) when the journal
	// exists but the user lacks READ, so the boundary cannot distinguish
	// "forbidden" from "absent"; a genuinely missing journal is an
	// apperrors.ErrNotFound.
	GetJournal(ctx context.Context, journalID string, userID string) (*domain.JournalState, error)

	// ListJournals retrieves every journal the user owns or is a tenant of.
	ListJournals(ctx context.Context, userID string) ([]domain.JournalState, error)

	// GetJournalUsers lists the owner and tenants of a journal (READ-gated).
	GetJournalUsers(ctx context.Context, journalID string, userID string) ([]JournalUserInfo, error)

	// GetUserPermissions resolves the permission bitset a user holds on a journal.
	GetUserPermissions(ctx context.Context, journalID string, userID string) (domain.Permission, error)

	// GetJournalEvents pages the journal's event log (READ-gated), using the
	// store cursor convention: events strictly after index `after`.
	GetJournalEvents(ctx context.Context, journalID string, userID string, after int, limit int) ([]domain.JournalEvent, error)
}

// JournalWriterSvc defines write operations for journal data.
type JournalWriterSvc interface {
	// CreateJournal creates a journal owned by the creator.
	CreateJournal(ctx context.Context, name string, creatorUserID string) (*domain.JournalState, error)

	// RenameJournal renames the journal (owner only).
	RenameJournal(ctx context.Context, journalID string, name string, userID string) error

	// DeleteJournal tombstones the journal; requires DELETE.
	DeleteJournal(ctx context.Context, journalID string, userID string) error

	// InviteTenant grants the user behind inviteeEmail a permission subset on
	// the journal. Requires INVITE; rejects invitees who already have access.
	InviteTenant(ctx context.Context, journalID string, inviteeEmail string, permissions domain.Permission, invitingUserID string) error

	// UpdateTenantPermissions replaces a tenant's permissions. Owner only.
	UpdateTenantPermissions(ctx context.Context, journalID string, tenantUserID string, permissions domain.Permission, userID string) error

	// RemoveTenant revokes a tenant's access. Owner only.
	RemoveTenant(ctx context.Context, journalID string, tenantUserID string, userID string) error
}

// JournalAuthorizerSvc is the cross-service permission gate. Account and
// transaction services consult it before every journal-scoped mutation.
type JournalAuthorizerSvc interface {
	// AuthorizeJournalAction loads the journal and verifies it exists, is not
	// tombstoned, and that the user holds the required permissions. It
	// returns the loaded projection so callers do not fetch twice. A missing
	// or deleted journal is apperrors.ErrInvalidJournal; a failed permission
	// check is an apperrors.PermissionError carrying `required`.
	AuthorizeJournalAction(ctx context.Context, journalID string, userID string, required domain.Permission) (*domain.JournalState, error)
}

// JournalSvcFacade combines all journal-related service interfaces.
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
	JournalAuthorizerSvc
}
