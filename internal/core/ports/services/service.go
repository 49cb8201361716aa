package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and is the
// only surface the handlers consume.
type ServiceContainer struct {
	Journal     JournalSvcFacade
	Account     AccountSvcFacade
	Transaction TransactionSvcFacade
	User        UserSvcFacade
	Token       TokenSvcFacade
}
