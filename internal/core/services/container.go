package services

import (
	portsrepo "github.com/monkesto/tally/internal/core/ports/repositories"
	portssvc "github.com/monkesto/tally/internal/core/ports/services"
	"github.com/monkesto/tally/internal/platform/config"
)

// NewServiceContainer wires the services over the given repositories. The
// journal service needs the user service for invitation lookups, and the
// transaction service drives balance movement through the account service.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	userSvc := NewUserService(repos.UserRepo)
	journalSvc := NewJournalService(repos.JournalRepo, userSvc)
	accountSvc := NewAccountService(repos.AccountRepo, journalSvc)
	transactionSvc := NewTransactionService(repos.TransactionRepo, repos.AccountRepo, accountSvc, journalSvc)
	tokenSvc := NewTokenService(cfg, userSvc)

	return &portssvc.ServiceContainer{
		Journal:     journalSvc,
		Account:     accountSvc,
		Transaction: transactionSvc,
		User:        userSvc,
		Token:       tokenSvc,
	}
}
