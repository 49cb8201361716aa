package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/monkesto/tally/internal/core/domain"
)

// CreateAccountRequest defines the data needed to create a new account.
// AccountID is optional: clients retrying a creation may pin the id so the
// retry cannot open a second account.
type CreateAccountRequest struct {
	AccountID       string `json:"accountID"`
	Name            string `json:"name" binding:"required,max=64"`
	ParentAccountID string `json:"parentAccountID"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID       string          `json:"accountID"`
	Name            string          `json:"name"`
	JournalID       string          `json:"journalID"`
	Author          string          `json:"author"`
	Balance         decimal.Decimal `json:"balance"`
	ParentAccountID string          `json:"parentAccountID,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	Deleted         bool            `json:"deleted,omitempty"`
}

// AccountPathResponse is the chart-of-accounts path for an account, root first.
type AccountPathResponse struct {
	Path []string `json:"path"`
}

// ToAccountResponse converts a domain.AccountState to its DTO.
func ToAccountResponse(acc *domain.AccountState) AccountResponse {
	return AccountResponse{
		AccountID:       acc.AccountID,
		Name:            acc.Name,
		JournalID:       acc.JournalID,
		Author:          acc.Author,
		Balance:         FromMinorUnits(acc.Balance),
		ParentAccountID: acc.ParentAccountID,
		CreatedAt:       acc.CreatedAt,
		Deleted:         acc.Deleted,
	}
}

// ToAccountResponses converts a slice of accounts to DTOs.
func ToAccountResponses(accounts []domain.AccountState) []AccountResponse {
	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = ToAccountResponse(&accounts[i])
	}
	return responses
}
