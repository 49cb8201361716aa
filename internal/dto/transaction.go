package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/monkesto/tally/internal/apperrors"
	"github.com/monkesto/tally/internal/core/domain"
)

// BalanceUpdateRequest is one leg of a transaction as submitted by clients.
type BalanceUpdateRequest struct {
	AccountID string          `json:"accountID" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required,money"`
	EntryType string          `json:"entryType" binding:"required,oneof=DEBIT CREDIT"`
}

// CreateTransactionRequest defines the data needed to record a transaction.
type CreateTransactionRequest struct {
	Updates []BalanceUpdateRequest `json:"updates" binding:"required,min=1,dive"`
}

// AmendTransactionRequest defines the replacement update set for a transaction.
type AmendTransactionRequest struct {
	Updates []BalanceUpdateRequest `json:"updates" binding:"required,min=1,dive"`
}

// BalanceUpdateResponse is one leg of a transaction in API responses.
type BalanceUpdateResponse struct {
	AccountID string          `json:"accountID"`
	Amount    decimal.Decimal `json:"amount"`
	EntryType string          `json:"entryType"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID string                  `json:"transactionID"`
	JournalID     string                  `json:"journalID"`
	Author        string                  `json:"author"`
	Updates       []BalanceUpdateResponse `json:"updates"`
	CreatedAt     time.Time               `json:"createdAt"`
}

// ToBalanceUpdates converts request legs into domain updates, translating
// decimal amounts to integer minor units.
func ToBalanceUpdates(reqs []BalanceUpdateRequest) ([]domain.BalanceUpdate, error) {
	updates := make([]domain.BalanceUpdate, 0, len(reqs))
	for _, r := range reqs {
		if !r.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: amounts must be positive", apperrors.ErrValidation)
		}
		minor, err := ToMinorUnits(r.Amount)
		if err != nil {
			return nil, err
		}
		updates = append(updates, domain.BalanceUpdate{
			AccountID: r.AccountID,
			Amount:    minor,
			EntryType: domain.EntryType(r.EntryType),
		})
	}
	return updates, nil
}

// ToTransactionResponse converts a domain.TransactionState to its DTO.
func ToTransactionResponse(txn *domain.TransactionState) TransactionResponse {
	updates := make([]BalanceUpdateResponse, len(txn.Updates))
	for i, u := range txn.Updates {
		updates[i] = BalanceUpdateResponse{
			AccountID: u.AccountID,
			Amount:    FromMinorUnits(u.Amount),
			EntryType: string(u.EntryType),
		}
	}
	return TransactionResponse{
		TransactionID: txn.TransactionID,
		JournalID:     txn.JournalID,
		Author:        txn.Author,
		Updates:       updates,
		CreatedAt:     txn.CreatedAt,
	}
}

// ToTransactionResponses converts a slice of transactions to DTOs.
func ToTransactionResponses(txns []domain.TransactionState) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToTransactionResponse(&txns[i])
	}
	return responses
}
