package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/monkesto/tally/internal/apperrors"
	"github.com/monkesto/tally/internal/core/domain"
	portssvc "github.com/monkesto/tally/internal/core/ports/services"
	"github.com/monkesto/tally/internal/core/services"
	"github.com/monkesto/tally/internal/platform/config"
	"github.com/monkesto/tally/internal/repositories/memory"
)

// newTestContainer wires the full service stack over fresh in-memory stores.
func newTestContainer() *portssvc.ServiceContainer {
	cfg := &config.Config{
		JWTSecret:                  "test-access-secret",
		JWTIssuer:                  "tally-test",
		JWTExpiryDuration:          time.Hour,
		RefreshTokenSecret:         "test-refresh-secret",
		RefreshTokenExpiryDuration: time.Hour,
	}
	return services.NewServiceContainer(cfg, memory.NewRepositoryProvider())
}

// registerUser is a test helper creating a user with a fixed password.
func registerUser(t *testing.T, svc portssvc.UserSvcFacade, name, email string) *domain.User {
	t.Helper()
	user, err := svc.RegisterUser(context.Background(), name, email, "correct horse battery")
	require.NoError(t, err)
	return user
}

type JournalServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	svcs   *portssvc.ServiceContainer
	owner  *domain.User
	tenant *domain.User
}

func (s *JournalServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.svcs = newTestContainer()
	s.owner = registerUser(s.T(), s.svcs.User, "Alice", "alice@example.com")
	s.tenant = registerUser(s.T(), s.svcs.User, "Bob", "bob@example.com")
}

func (s *JournalServiceTestSuite) TestCreateAndGetJournal() {
	journal, err := s.svcs.Journal.CreateJournal(s.ctx, "Household", s.owner.UserID)
	s.Require().NoError(err)
	s.Equal("Household", journal.Name)
	s.Equal(s.owner.UserID, journal.Owner)
	s.False(journal.Deleted)

	got, err := s.svcs.Journal.GetJournal(s.ctx, journal.JournalID, s.owner.UserID)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(journal.JournalID, got.JournalID)

	// A stranger gets neither the journal nor an error.
	got, err = s.svcs.Journal.GetJournal(s.ctx, journal.JournalID, s.tenant.UserID)
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *JournalServiceTestSuite) TestCreateJournalValidatesName() {
	_, err := s.svcs.Journal.CreateJournal(s.ctx, "", s.owner.UserID)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *JournalServiceTestSuite) TestGetUnknownJournal() {
	_, err := s.svcs.Journal.GetJournal(s.ctx, "no-such-journal", s.owner.UserID)
	s.ErrorIs(err, apperrors.ErrInvalidJournal)
}

func (s *JournalServiceTestSuite) TestInviteTenantGrantsPermissions() {
	journal, err := s.svcs.Journal.CreateJournal(s.ctx, "Shared", s.owner.UserID)
	s.Require().NoError(err)

	granted := domain.PermissionRead | domain.PermissionAppendTransaction
	err = s.svcs.Journal.InviteTenant(s.ctx, journal.JournalID, s.tenant.Email, granted, s.owner.UserID)
	s.Require().NoError(err)

	perms, err := s.svcs.Journal.GetUserPermissions(s.ctx, journal.JournalID, s.tenant.UserID)
	s.Require().NoError(err)
	s.Equal(granted, perms)

	// The tenant can now read the journal.
	got, err := s.svcs.Journal.GetJournal(s.ctx, journal.JournalID, s.tenant.UserID)
	s.Require().NoError(err)
	s.Require().NotNil(got)

	// Inviting the same user again is rejected.
	err = s.svcs.Journal.InviteTenant(s.ctx, journal.JournalID, s.tenant.Email, domain.PermissionRead, s.owner.UserID)
	s.ErrorIs(err, apperrors.ErrUserCanAccessJournal)
}

func (s *JournalServiceTestSuite) TestInviteRejectsOwnerBitAndUnknownEmail() {
	journal, err := s.svcs.Journal.CreateJournal(s.ctx, "Shared", s.owner.UserID)
	s.Require().NoError(err)

	err = s.svcs.Journal.InviteTenant(s.ctx, journal.JournalID, s.tenant.Email, domain.PermissionOwner, s.owner.UserID)
	s.ErrorIs(err, apperrors.ErrValidation)

	err = s.svcs.Journal.InviteTenant(s.ctx, journal.JournalID, "nobody@example.com", domain.PermissionRead, s.owner.UserID)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *JournalServiceTestSuite) TestTenantWithInviteCannotAlterTenancy() {
	journal, err := s.svcs.Journal.CreateJournal(s.ctx, "Shared", s.owner.UserID)
	s.Require().NoError(err)

	err = s.svcs.Journal.InviteTenant(s.ctx, journal.JournalID, s.tenant.Email,
		domain.PermissionRead|domain.PermissionInvite, s.owner.UserID)
	s.Require().NoError(err)

	third := registerUser(s.T(), s.svcs.User, "Carol", "carol@example.com")
	err = s.svcs.Journal.InviteTenant(s.ctx, journal.JournalID, third.Email, domain.PermissionRead, s.tenant.UserID)
	s.Require().NoError(err)

	// Changing or removing tenants is owner-only, INVITE does not suffice.
	err = s.svcs.Journal.UpdateTenantPermissions(s.ctx, journal.JournalID, third.UserID, domain.PermissionRead, s.tenant.UserID)
	var permErr apperrors.PermissionError
	s.ErrorAs(err, &permErr)
	s.Equal(domain.PermissionOwner, permErr.Required)

	err = s.svcs.Journal.RemoveTenant(s.ctx, journal.JournalID, third.UserID, s.tenant.UserID)
	s.ErrorAs(err, &permErr)
}

func (s *JournalServiceTestSuite) TestUpdateAndRemoveTenant() {
	journal, err := s.svcs.Journal.CreateJournal(s.ctx, "Shared", s.owner.UserID)
	s.Require().NoError(err)
	err = s.svcs.Journal.InviteTenant(s.ctx, journal.JournalID, s.tenant.Email, domain.PermissionRead, s.owner.UserID)
	s.Require().NoError(err)

	err = s.svcs.Journal.UpdateTenantPermissions(s.ctx, journal.JournalID, s.tenant.UserID,
		domain.PermissionRead|domain.PermissionAddAccount, s.owner.UserID)
	s.Require().NoError(err)

	perms, err := s.svcs.Journal.GetUserPermissions(s.ctx, journal.JournalID, s.tenant.UserID)
	s.Require().NoError(err)
	s.True(perms.Has(domain.PermissionAddAccount))

	err = s.svcs.Journal.RemoveTenant(s.ctx, journal.JournalID, s.tenant.UserID, s.owner.UserID)
	s.Require().NoError(err)

	perms, err = s.svcs.Journal.GetUserPermissions(s.ctx, journal.JournalID, s.tenant.UserID)
	s.Require().NoError(err)
	s.Equal(domain.Permission(0), perms)

	err = s.svcs.Journal.RemoveTenant(s.ctx, journal.JournalID, s.tenant.UserID, s.owner.UserID)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *JournalServiceTestSuite) TestListJournals() {
	j1, err := s.svcs.Journal.CreateJournal(s.ctx, "First", s.owner.UserID)
	s.Require().NoError(err)
	_, err = s.svcs.Journal.CreateJournal(s.ctx, "Second", s.owner.UserID)
	s.Require().NoError(err)
	err = s.svcs.Journal.InviteTenant(s.ctx, j1.JournalID, s.tenant.Email, domain.PermissionRead, s.owner.UserID)
	s.Require().NoError(err)

	owned, err := s.svcs.Journal.ListJournals(s.ctx, s.owner.UserID)
	s.Require().NoError(err)
	s.Len(owned, 2)

	shared, err := s.svcs.Journal.ListJournals(s.ctx, s.tenant.UserID)
	s.Require().NoError(err)
	s.Require().Len(shared, 1)
	s.Equal(j1.JournalID, shared[0].JournalID)
}

func (s *JournalServiceTestSuite) TestGetJournalUsers() {
	journal, err := s.svcs.Journal.CreateJournal(s.ctx, "Shared", s.owner.UserID)
	s.Require().NoError(err)
	err = s.svcs.Journal.InviteTenant(s.ctx, journal.JournalID, s.tenant.Email, domain.PermissionRead, s.owner.UserID)
	s.Require().NoError(err)

	users, err := s.svcs.Journal.GetJournalUsers(s.ctx, journal.JournalID, s.owner.UserID)
	s.Require().NoError(err)
	s.Require().Len(users, 2)
	s.True(users[0].IsOwner)
	s.Equal(s.owner.UserID, users[0].UserID)
	s.Equal(domain.AllPermissions, users[0].Permissions)
	s.Equal(s.tenant.UserID, users[1].UserID)
	s.Equal(domain.PermissionRead, users[1].Permissions)
}

func (s *JournalServiceTestSuite) TestRenameJournalOwnerOnly() {
	journal, err := s.svcs.Journal.CreateJournal(s.ctx, "Old name", s.owner.UserID)
	s.Require().NoError(err)
	err = s.svcs.Journal.InviteTenant(s.ctx, journal.JournalID, s.tenant.Email,
		domain.AllPermissions.Without(domain.PermissionOwner), s.owner.UserID)
	s.Require().NoError(err)

	err = s.svcs.Journal.RenameJournal(s.ctx, journal.JournalID, "New name", s.tenant.UserID)
	var permErr apperrors.PermissionError
	s.ErrorAs(err, &permErr)

	err = s.svcs.Journal.RenameJournal(s.ctx, journal.JournalID, "New name", s.owner.UserID)
	s.Require().NoError(err)

	got, err := s.svcs.Journal.GetJournal(s.ctx, journal.JournalID, s.owner.UserID)
	s.Require().NoError(err)
	s.Equal("New name", got.Name)
}

func (s *JournalServiceTestSuite) TestDeletedJournalRejectsMutationsButStaysReadable() {
	journal, err := s.svcs.Journal.CreateJournal(s.ctx, "Doomed", s.owner.UserID)
	s.Require().NoError(err)
	err = s.svcs.Journal.DeleteJournal(s.ctx, journal.JournalID, s.owner.UserID)
	s.Require().NoError(err)

	got, err := s.svcs.Journal.GetJournal(s.ctx, journal.JournalID, s.owner.UserID)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.True(got.Deleted)

	err = s.svcs.Journal.RenameJournal(s.ctx, journal.JournalID, "Undead", s.owner.UserID)
	s.ErrorIs(err, apperrors.ErrInvalidJournal)
	err = s.svcs.Journal.InviteTenant(s.ctx, journal.JournalID, s.tenant.Email, domain.PermissionRead, s.owner.UserID)
	s.ErrorIs(err, apperrors.ErrInvalidJournal)
}

func (s *JournalServiceTestSuite) TestGetJournalEvents() {
	journal, err := s.svcs.Journal.CreateJournal(s.ctx, "Audited", s.owner.UserID)
	s.Require().NoError(err)
	err = s.svcs.Journal.RenameJournal(s.ctx, journal.JournalID, "Audited v2", s.owner.UserID)
	s.Require().NoError(err)

	full, err := s.svcs.Journal.GetJournalEvents(s.ctx, journal.JournalID, s.owner.UserID, -1, 100)
	s.Require().NoError(err)
	s.Require().Len(full, 2)
	s.IsType(domain.JournalCreated{}, full[0])
	s.IsType(domain.JournalRenamed{}, full[1])

	// after=0 skips the creation event.
	tail, err := s.svcs.Journal.GetJournalEvents(s.ctx, journal.JournalID, s.owner.UserID, 0, 100)
	s.Require().NoError(err)
	s.Require().Len(tail, 1)
	s.IsType(domain.JournalRenamed{}, tail[0])

	_, err = s.svcs.Journal.GetJournalEvents(s.ctx, journal.JournalID, s.tenant.UserID, -1, 100)
	var permErr apperrors.PermissionError
	s.ErrorAs(err, &permErr)
	s.Equal(domain.PermissionRead, permErr.Required)
}

func TestJournalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}

func TestJournalServicePermissionErrorUnwraps(t *testing.T) {
	err := apperrors.NewPermissionError(domain.PermissionInvite)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
