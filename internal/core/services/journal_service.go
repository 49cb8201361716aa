package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/monkesto/tally/internal/apperrors"
	"github.com/monkesto/tally/internal/core/domain"
	portsrepo "github.com/monkesto/tally/internal/core/ports/repositories"
	portssvc "github.com/monkesto/tally/internal/core/ports/services"
	"github.com/monkesto/tally/internal/utils"
)

var (
	ErrTenantNotFound     = errors.New("user is not a tenant of this journal")
	ErrOwnerPermission    = errors.New("the owner permission cannot be granted to a tenant")
	ErrInviteeDoesntExist = errors.New("no user registered under the invitee email")
	ErrSelfTenancyChange  = errors.New("the owner cannot be made a tenant of their own journal")
)

// journalService provides journal lifecycle, tenancy and permission operations.
type journalService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryFacade
	userSvc     portssvc.UserSvcFacade
}

// NewJournalService creates a new JournalService.
func NewJournalService(journalRepo portsrepo.JournalRepositoryFacade, userSvc portssvc.UserSvcFacade) portssvc.JournalSvcFacade {
	return &journalService{
		journalRepo: journalRepo,
		userSvc:     userSvc,
	}
}

// Ensure journalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// AuthorizeJournalAction is the mutation gate shared by all services: the
// journal must exist, must not be tombstoned, and the user must hold the
// required permissions. Read paths use loadJournalForRead instead, which
// permits tombstoned journals.
func (s *journalService) AuthorizeJournalAction(ctx context.Context, journalID string, userID string, required domain.Permission) (*domain.JournalState, error) {
	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidJournal
		}
		s.LogError(ctx, err, "Failed to load journal for authorization", slog.String("journal_id", journalID))
		return nil, err
	}
	if journal.Deleted {
		return nil, apperrors.ErrInvalidJournal
	}
	if perms := journal.UserPermissions(userID); !perms.Has(required) {
		s.LogWarn(ctx, "Authorization failed for journal action",
			slog.String("journal_id", journalID),
			slog.String("user_id", userID),
			slog.String("required", required.String()),
			slog.String("held", perms.String()))
		return nil, apperrors.NewPermissionError(required)
	}
	return journal, nil
}

// loadJournalForRead checks READ without rejecting tombstoned journals:
// history stays visible after deletion.
func (s *journalService) loadJournalForRead(ctx context.Context, journalID string, userID string) (*domain.JournalState, error) {
	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidJournal
		}
		return nil, err
	}
	if !journal.UserPermissions(userID).Has(domain.PermissionRead) {
		return nil, apperrors.NewPermissionError(domain.PermissionRead)
	}
	return journal, nil
}

// CreateJournal creates a journal owned by the creator.
func (s *journalService) CreateJournal(ctx context.Context, name string, creatorUserID string) (*domain.JournalState, error) {
	if err := validateEntityName(name); err != nil {
		return nil, err
	}

	journalID := utils.NewID()
	now := time.Now().UTC()
	by := domain.Direct(domain.UserActor(creatorUserID))

	_, err := s.journalRepo.Record(ctx, journalID, by, domain.JournalCreated{
		Name:      name,
		Owner:     creatorUserID,
		Creator:   creatorUserID,
		CreatedAt: now,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to record journal creation", slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to create journal: %w", err)
	}

	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load created journal: %w", err)
	}

	s.LogInfo(ctx, "Journal created successfully", slog.String("journal_id", journalID), slog.String("owner", creatorUserID))
	return journal, nil
}

// GetJournal retrieves a journal. It returns (nil, nil) when the journal
// exists but the user lacks READ; a missing journal is an error.
func (s *journalService) GetJournal(ctx context.Context, journalID string, userID string) (*domain.JournalState, error) {
	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidJournal
		}
		s.LogError(ctx, err, "Failed to find journal by ID", slog.String("journal_id", journalID))
		return nil, err
	}
	if !journal.UserPermissions(userID).Has(domain.PermissionRead) {
		s.LogDebug(ctx, "GetJournal without READ", slog.String("journal_id", journalID), slog.String("user_id", userID))
		return nil, nil
	}
	return journal, nil
}

// ListJournals retrieves every journal the user owns or is a tenant of.
func (s *journalService) ListJournals(ctx context.Context, userID string) ([]domain.JournalState, error) {
	ids, err := s.journalRepo.ListJournalIDsByUser(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journals for user", slog.String("user_id", userID))
		return nil, err
	}

	journals := make([]domain.JournalState, 0, len(ids))
	for _, id := range ids {
		journal, err := s.journalRepo.FindJournalByID(ctx, id)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		journals = append(journals, *journal)
	}

	s.LogDebug(ctx, "Journals listed successfully", slog.Int("count", len(journals)), slog.String("user_id", userID))
	return journals, nil
}

// GetJournalUsers lists the owner and tenants of a journal.
func (s *journalService) GetJournalUsers(ctx context.Context, journalID string, userID string) ([]portssvc.JournalUserInfo, error) {
	journal, err := s.loadJournalForRead(ctx, journalID, userID)
	if err != nil {
		return nil, err
	}

	users := make([]portssvc.JournalUserInfo, 0, len(journal.Tenants)+1)
	users = append(users, portssvc.JournalUserInfo{
		UserID:      journal.Owner,
		Permissions: domain.AllPermissions,
		IsOwner:     true,
	})
	tenantIDs := make([]string, 0, len(journal.Tenants))
	for id := range journal.Tenants {
		tenantIDs = append(tenantIDs, id)
	}
	sort.Strings(tenantIDs)
	for _, id := range tenantIDs {
		users = append(users, portssvc.JournalUserInfo{
			UserID:      id,
			Permissions: journal.Tenants[id].TenantPermissions,
		})
	}
	return users, nil
}

// GetUserPermissions resolves the permission bitset a user holds on a journal:
// owner implies all permissions, tenants hold their recorded subset, anyone
// else holds none.
func (s *journalService) GetUserPermissions(ctx context.Context, journalID string, userID string) (domain.Permission, error) {
	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return 0, apperrors.ErrInvalidJournal
		}
		return 0, err
	}
	return journal.UserPermissions(userID), nil
}

// GetJournalEvents pages the journal's event log.
func (s *journalService) GetJournalEvents(ctx context.Context, journalID string, userID string, after int, limit int) ([]domain.JournalEvent, error) {
	if _, err := s.loadJournalForRead(ctx, journalID, userID); err != nil {
		return nil, err
	}
	return s.journalRepo.GetEvents(ctx, journalID, after, limit)
}

// RenameJournal renames the journal. Owner only.
func (s *journalService) RenameJournal(ctx context.Context, journalID string, name string, userID string) error {
	if err := validateEntityName(name); err != nil {
		return err
	}
	if _, err := s.AuthorizeJournalAction(ctx, journalID, userID, domain.PermissionOwner); err != nil {
		return err
	}

	by := domain.Direct(domain.UserActor(userID))
	if _, err := s.journalRepo.Record(ctx, journalID, by, domain.JournalRenamed{Name: name}); err != nil {
		s.LogError(ctx, err, "Failed to record journal rename", slog.String("journal_id", journalID))
		return fmt.Errorf("failed to rename journal: %w", err)
	}

	s.LogInfo(ctx, "Journal renamed", slog.String("journal_id", journalID))
	return nil
}

// DeleteJournal tombstones the journal. Requires DELETE.
func (s *journalService) DeleteJournal(ctx context.Context, journalID string, userID string) error {
	if _, err := s.AuthorizeJournalAction(ctx, journalID, userID, domain.PermissionDelete); err != nil {
		return err
	}

	by := domain.Direct(domain.UserActor(userID))
	if _, err := s.journalRepo.Record(ctx, journalID, by, domain.JournalDeleted{}); err != nil {
		s.LogError(ctx, err, "Failed to record journal deletion", slog.String("journal_id", journalID))
		return fmt.Errorf("failed to delete journal: %w", err)
	}

	s.LogInfo(ctx, "Journal deleted", slog.String("journal_id", journalID))
	return nil
}

// InviteTenant grants the user behind inviteeEmail a permission subset on the
// journal. Requires INVITE; the invitee must not already have access.
func (s *journalService) InviteTenant(ctx context.Context, journalID string, inviteeEmail string, permissions domain.Permission, invitingUserID string) error {
	if permissions.Has(domain.PermissionOwner) {
		return fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrOwnerPermission)
	}

	journal, err := s.AuthorizeJournalAction(ctx, journalID, invitingUserID, domain.PermissionInvite)
	if err != nil {
		return err
	}

	invitee, err := s.userSvc.GetUserByEmail(ctx, inviteeEmail)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: %w", apperrors.ErrNotFound, ErrInviteeDoesntExist)
		}
		s.LogError(ctx, err, "Failed to look up invitee by email", slog.String("journal_id", journalID))
		return err
	}

	if journal.UserPermissions(invitee.UserID) != 0 {
		return apperrors.ErrUserCanAccessJournal
	}

	by := domain.Direct(domain.UserActor(invitingUserID))
	_, err = s.journalRepo.Record(ctx, journalID, by, domain.JournalTenantAdded{
		UserID:       invitee.UserID,
		Permissions:  permissions,
		InvitingUser: invitingUserID,
		InvitedAt:    time.Now().UTC(),
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to record tenant invitation", slog.String("journal_id", journalID))
		return fmt.Errorf("failed to invite tenant: %w", err)
	}

	s.LogInfo(ctx, "Tenant invited to journal",
		slog.String("journal_id", journalID),
		slog.String("tenant_user_id", invitee.UserID),
		slog.String("permissions", permissions.String()))
	return nil
}

// UpdateTenantPermissions replaces a tenant's permission subset. Only the
// owner may alter tenancy; an INVITE-holding tenant cannot.
func (s *journalService) UpdateTenantPermissions(ctx context.Context, journalID string, tenantUserID string, permissions domain.Permission, userID string) error {
	if permissions.Has(domain.PermissionOwner) {
		return fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrOwnerPermission)
	}

	journal, err := s.AuthorizeJournalAction(ctx, journalID, userID, domain.PermissionOwner)
	if err != nil {
		return err
	}
	if journal.Owner == tenantUserID {
		return fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrSelfTenancyChange)
	}
	if _, ok := journal.Tenants[tenantUserID]; !ok {
		return fmt.Errorf("%w: %w", apperrors.ErrNotFound, ErrTenantNotFound)
	}

	by := domain.Direct(domain.UserActor(userID))
	_, err = s.journalRepo.Record(ctx, journalID, by, domain.JournalTenantPermissionsUpdated{
		UserID:      tenantUserID,
		Permissions: permissions,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to record tenant permission update", slog.String("journal_id", journalID))
		return fmt.Errorf("failed to update tenant permissions: %w", err)
	}

	s.LogInfo(ctx, "Tenant permissions updated",
		slog.String("journal_id", journalID),
		slog.String("tenant_user_id", tenantUserID),
		slog.String("permissions", permissions.String()))
	return nil
}

// RemoveTenant revokes a tenant's access. Owner only.
func (s *journalService) RemoveTenant(ctx context.Context, journalID string, tenantUserID string, userID string) error {
	journal, err := s.AuthorizeJournalAction(ctx, journalID, userID, domain.PermissionOwner)
	if err != nil {
		return err
	}
	if _, ok := journal.Tenants[tenantUserID]; !ok {
		return fmt.Errorf("%w: %w", apperrors.ErrNotFound, ErrTenantNotFound)
	}

	by := domain.Direct(domain.UserActor(userID))
	if _, err := s.journalRepo.Record(ctx, journalID, by, domain.JournalTenantRemoved{UserID: tenantUserID}); err != nil {
		s.LogError(ctx, err, "Failed to record tenant removal", slog.String("journal_id", journalID))
		return fmt.Errorf("failed to remove tenant: %w", err)
	}

	s.LogInfo(ctx, "Tenant removed from journal",
		slog.String("journal_id", journalID),
		slog.String("tenant_user_id", tenantUserID))
	return nil
}
