package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/monkesto/tally/internal/apperrors"
	"github.com/monkesto/tally/internal/core/domain"
	portsrepo "github.com/monkesto/tally/internal/core/ports/repositories"
	portssvc "github.com/monkesto/tally/internal/core/ports/services"
	"github.com/monkesto/tally/internal/core/services"
	"github.com/monkesto/tally/internal/repositories/memory"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	svcs    *portssvc.ServiceContainer
	owner   *domain.User
	tenant  *domain.User
	journal *domain.JournalState
	assets  *domain.AccountState
	revenue *domain.AccountState
}

func (s *TransactionServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.svcs = newTestContainer()
	s.owner = registerUser(s.T(), s.svcs.User, "Alice", "alice@example.com")
	s.tenant = registerUser(s.T(), s.svcs.User, "Bob", "bob@example.com")

	journal, err := s.svcs.Journal.CreateJournal(s.ctx, "Books", s.owner.UserID)
	s.Require().NoError(err)
	s.journal = journal

	s.assets, err = s.svcs.Account.CreateAccount(s.ctx, "", journal.JournalID, "Assets", "", s.owner.UserID)
	s.Require().NoError(err)
	s.revenue, err = s.svcs.Account.CreateAccount(s.ctx, "", journal.JournalID, "Revenue", "", s.owner.UserID)
	s.Require().NoError(err)

	err = s.svcs.Journal.InviteTenant(s.ctx, journal.JournalID, s.tenant.Email,
		domain.PermissionRead|domain.PermissionAppendTransaction, s.owner.UserID)
	s.Require().NoError(err)
}

func (s *TransactionServiceTestSuite) balanceOf(accountID string) int64 {
	account, err := s.svcs.Account.GetAccount(s.ctx, accountID, s.owner.UserID)
	s.Require().NoError(err)
	return account.Balance
}

func (s *TransactionServiceTestSuite) TestBalancedTransactionMovesBalances() {
	updates := []domain.BalanceUpdate{
		{AccountID: s.assets.AccountID, Amount: 500000, EntryType: domain.Debit},
		{AccountID: s.revenue.AccountID, Amount: 500000, EntryType: domain.Credit},
	}
	transaction, err := s.svcs.Transaction.CreateTransaction(s.ctx, s.journal.JournalID, updates, s.tenant.UserID)
	s.Require().NoError(err)
	s.Equal(s.tenant.UserID, transaction.Author)
	s.Len(transaction.Updates, 2)

	s.Equal(int64(-500000), s.balanceOf(s.assets.AccountID))
	s.Equal(int64(500000), s.balanceOf(s.revenue.AccountID))
}

func (s *TransactionServiceTestSuite) TestUnbalancedTransactionRejected() {
	updates := []domain.BalanceUpdate{
		{AccountID: s.assets.AccountID, Amount: 100, EntryType: domain.Debit},
	}
	_, err := s.svcs.Transaction.CreateTransaction(s.ctx, s.journal.JournalID, updates, s.owner.UserID)
	s.ErrorIs(err, apperrors.ErrBalanceMismatch)

	s.Zero(s.balanceOf(s.assets.AccountID))
	s.Zero(s.balanceOf(s.revenue.AccountID))
}

func (s *TransactionServiceTestSuite) TestUpdateValidation() {
	_, err := s.svcs.Transaction.CreateTransaction(s.ctx, s.journal.JournalID, nil, s.owner.UserID)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.svcs.Transaction.CreateTransaction(s.ctx, s.journal.JournalID, []domain.BalanceUpdate{
		{AccountID: s.assets.AccountID, Amount: -100, EntryType: domain.Debit},
		{AccountID: s.revenue.AccountID, Amount: -100, EntryType: domain.Credit},
	}, s.owner.UserID)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.svcs.Transaction.CreateTransaction(s.ctx, s.journal.JournalID, []domain.BalanceUpdate{
		{AccountID: s.assets.AccountID, Amount: 100, EntryType: "TRANSFER"},
		{AccountID: s.revenue.AccountID, Amount: 100, EntryType: domain.Credit},
	}, s.owner.UserID)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *TransactionServiceTestSuite) TestForeignAccountRejected() {
	other, err := s.svcs.Journal.CreateJournal(s.ctx, "Other books", s.owner.UserID)
	s.Require().NoError(err)
	foreign, err := s.svcs.Account.CreateAccount(s.ctx, "", other.JournalID, "Foreign", "", s.owner.UserID)
	s.Require().NoError(err)

	_, err = s.svcs.Transaction.CreateTransaction(s.ctx, s.journal.JournalID, []domain.BalanceUpdate{
		{AccountID: s.assets.AccountID, Amount: 100, EntryType: domain.Debit},
		{AccountID: foreign.AccountID, Amount: 100, EntryType: domain.Credit},
	}, s.owner.UserID)
	s.ErrorIs(err, apperrors.ErrAccountNotFound)

	s.Zero(s.balanceOf(s.assets.AccountID))
}

func (s *TransactionServiceTestSuite) TestCreateRequiresAppendTransaction() {
	err := s.svcs.Journal.UpdateTenantPermissions(s.ctx, s.journal.JournalID, s.tenant.UserID,
		domain.PermissionRead, s.owner.UserID)
	s.Require().NoError(err)

	_, err = s.svcs.Transaction.CreateTransaction(s.ctx, s.journal.JournalID, []domain.BalanceUpdate{
		{AccountID: s.assets.AccountID, Amount: 100, EntryType: domain.Debit},
		{AccountID: s.revenue.AccountID, Amount: 100, EntryType: domain.Credit},
	}, s.tenant.UserID)
	var permErr apperrors.PermissionError
	s.Require().ErrorAs(err, &permErr)
	s.Equal(domain.PermissionAppendTransaction, permErr.Required)
}

func (s *TransactionServiceTestSuite) TestAmendTransactionReversesOldUpdates() {
	created, err := s.svcs.Transaction.CreateTransaction(s.ctx, s.journal.JournalID, []domain.BalanceUpdate{
		{AccountID: s.assets.AccountID, Amount: 300, EntryType: domain.Debit},
		{AccountID: s.revenue.AccountID, Amount: 300, EntryType: domain.Credit},
	}, s.owner.UserID)
	s.Require().NoError(err)

	amended, err := s.svcs.Transaction.AmendTransaction(s.ctx, s.journal.JournalID, created.TransactionID,
		[]domain.BalanceUpdate{
			{AccountID: s.assets.AccountID, Amount: 120, EntryType: domain.Debit},
			{AccountID: s.revenue.AccountID, Amount: 120, EntryType: domain.Credit},
		}, s.owner.UserID)
	s.Require().NoError(err)
	s.Len(amended.Updates, 2)
	s.Equal(int64(120), amended.Updates[0].Amount)

	// Balances equal those of never having applied the first set.
	s.Equal(int64(-120), s.balanceOf(s.assets.AccountID))
	s.Equal(int64(120), s.balanceOf(s.revenue.AccountID))
}

func (s *TransactionServiceTestSuite) TestAmendUnknownOrForeignTransaction() {
	_, err := s.svcs.Transaction.AmendTransaction(s.ctx, s.journal.JournalID, "no-such-txn",
		[]domain.BalanceUpdate{
			{AccountID: s.assets.AccountID, Amount: 100, EntryType: domain.Debit},
			{AccountID: s.revenue.AccountID, Amount: 100, EntryType: domain.Credit},
		}, s.owner.UserID)
	s.ErrorIs(err, apperrors.ErrInvalidTransaction)

	other, err := s.svcs.Journal.CreateJournal(s.ctx, "Other books", s.owner.UserID)
	s.Require().NoError(err)
	a1, err := s.svcs.Account.CreateAccount(s.ctx, "", other.JournalID, "A", "", s.owner.UserID)
	s.Require().NoError(err)
	a2, err := s.svcs.Account.CreateAccount(s.ctx, "", other.JournalID, "B", "", s.owner.UserID)
	s.Require().NoError(err)
	foreign, err := s.svcs.Transaction.CreateTransaction(s.ctx, other.JournalID, []domain.BalanceUpdate{
		{AccountID: a1.AccountID, Amount: 50, EntryType: domain.Debit},
		{AccountID: a2.AccountID, Amount: 50, EntryType: domain.Credit},
	}, s.owner.UserID)
	s.Require().NoError(err)

	_, err = s.svcs.Transaction.AmendTransaction(s.ctx, s.journal.JournalID, foreign.TransactionID,
		[]domain.BalanceUpdate{
			{AccountID: s.assets.AccountID, Amount: 100, EntryType: domain.Debit},
			{AccountID: s.revenue.AccountID, Amount: 100, EntryType: domain.Credit},
		}, s.owner.UserID)
	s.ErrorIs(err, apperrors.ErrInvalidTransaction)
}

func (s *TransactionServiceTestSuite) TestGetAndListTransactions() {
	first, err := s.svcs.Transaction.CreateTransaction(s.ctx, s.journal.JournalID, []domain.BalanceUpdate{
		{AccountID: s.assets.AccountID, Amount: 10, EntryType: domain.Debit},
		{AccountID: s.revenue.AccountID, Amount: 10, EntryType: domain.Credit},
	}, s.owner.UserID)
	s.Require().NoError(err)
	second, err := s.svcs.Transaction.CreateTransaction(s.ctx, s.journal.JournalID, []domain.BalanceUpdate{
		{AccountID: s.assets.AccountID, Amount: 20, EntryType: domain.Credit},
		{AccountID: s.revenue.AccountID, Amount: 20, EntryType: domain.Debit},
	}, s.owner.UserID)
	s.Require().NoError(err)

	got, err := s.svcs.Transaction.GetTransaction(s.ctx, first.TransactionID, s.tenant.UserID)
	s.Require().NoError(err)
	s.Equal(first.TransactionID, got.TransactionID)

	list, err := s.svcs.Transaction.ListJournalTransactions(s.ctx, s.journal.JournalID, s.owner.UserID)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(first.TransactionID, list[0].TransactionID)
	s.Equal(second.TransactionID, list[1].TransactionID)

	stranger := registerUser(s.T(), s.svcs.User, "Eve", "eve@example.com")
	_, err = s.svcs.Transaction.GetTransaction(s.ctx, first.TransactionID, stranger.UserID)
	var permErr apperrors.PermissionError
	s.ErrorAs(err, &permErr)
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}

// --- Mock TransactionRepository for the compensation path ---

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Record(ctx context.Context, id string, by domain.Authority, event domain.TransactionEvent) (portsrepo.EventID, error) {
	args := m.Called(ctx, id, by, event)
	return portsrepo.EventID(args.String(0)), args.Error(1)
}

func (m *MockTransactionRepository) GetEvents(ctx context.Context, id string, after int, limit int) ([]domain.TransactionEvent, error) {
	args := m.Called(ctx, id, after, limit)
	var events []domain.TransactionEvent
	if args.Get(0) != nil {
		events = args.Get(0).([]domain.TransactionEvent)
	}
	return events, args.Error(1)
}

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.TransactionState, error) {
	args := m.Called(ctx, transactionID)
	var state *domain.TransactionState
	if args.Get(0) != nil {
		state = args.Get(0).(*domain.TransactionState)
	}
	return state, args.Error(1)
}

func (m *MockTransactionRepository) ListTransactionsByJournal(ctx context.Context, journalID string) ([]domain.TransactionState, error) {
	args := m.Called(ctx, journalID)
	var states []domain.TransactionState
	if args.Get(0) != nil {
		states = args.Get(0).([]domain.TransactionState)
	}
	return states, args.Error(1)
}

// TestFailedAppendCompensatesBalances drives the create path against a
// transaction store whose append fails after balances already moved, and
// checks the compensation restores every balance.
func TestFailedAppendCompensatesBalances(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositoryProvider()

	mockTxnRepo := new(MockTransactionRepository)
	mockTxnRepo.On("Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("disk full"))

	userSvc := services.NewUserService(repos.UserRepo)
	journalSvc := services.NewJournalService(repos.JournalRepo, userSvc)
	accountSvc := services.NewAccountService(repos.AccountRepo, journalSvc)
	transactionSvc := services.NewTransactionService(mockTxnRepo, repos.AccountRepo, accountSvc, journalSvc)

	owner, err := userSvc.RegisterUser(ctx, "Alice", "alice@example.com", "correct horse battery")
	require.NoError(t, err)
	journal, err := journalSvc.CreateJournal(ctx, "Books", owner.UserID)
	require.NoError(t, err)
	assets, err := accountSvc.CreateAccount(ctx, "", journal.JournalID, "Assets", "", owner.UserID)
	require.NoError(t, err)
	revenue, err := accountSvc.CreateAccount(ctx, "", journal.JournalID, "Revenue", "", owner.UserID)
	require.NoError(t, err)

	_, err = transactionSvc.CreateTransaction(ctx, journal.JournalID, []domain.BalanceUpdate{
		{AccountID: assets.AccountID, Amount: 700, EntryType: domain.Debit},
		{AccountID: revenue.AccountID, Amount: 700, EntryType: domain.Credit},
	}, owner.UserID)
	require.Error(t, err)
	mockTxnRepo.AssertCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	gotAssets, err := repos.AccountRepo.FindAccountByID(ctx, assets.AccountID)
	require.NoError(t, err)
	require.Zero(t, gotAssets.Balance)
	gotRevenue, err := repos.AccountRepo.FindAccountByID(ctx, revenue.AccountID)
	require.NoError(t, err)
	require.Zero(t, gotRevenue.Balance)
}
