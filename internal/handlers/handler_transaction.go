package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/monkesto/tally/internal/core/ports/services"
	"github.com/monkesto/tally/internal/dto"
	"github.com/monkesto/tally/internal/middleware"
)

// transactionHandler handles HTTP requests related to transactions.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

func newTransactionHandler(ts portssvc.TransactionSvcFacade) *transactionHandler {
	return &transactionHandler{transactionService: ts}
}

// registerTransactionRoutes registers transaction routes nested under a journal.
func registerTransactionRoutes(journal *gin.RouterGroup, transactionService portssvc.TransactionSvcFacade) {
	h := newTransactionHandler(transactionService)

	transactions := journal.Group("/transactions")
	{
		transactions.POST("", h.createTransaction)
		transactions.GET("", h.listTransactions)
		transactions.GET("/:transactionID", h.getTransaction)
		transactions.PUT("/:transactionID", h.amendTransaction)
	}
}

func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	updates, err := dto.ToBalanceUpdates(req.Updates)
	if err != nil {
		respondError(c, err)
		return
	}

	transaction, err := h.transactionService.CreateTransaction(c.Request.Context(), c.Param("journalID"), updates, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Transaction created", slog.String("transaction_id", transaction.TransactionID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(transaction))
}

func (h *transactionHandler) amendTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AmendTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	updates, err := dto.ToBalanceUpdates(req.Updates)
	if err != nil {
		respondError(c, err)
		return
	}

	transaction, err := h.transactionService.AmendTransaction(c.Request.Context(), c.Param("journalID"),
		c.Param("transactionID"), updates, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Transaction amended", slog.String("transaction_id", transaction.TransactionID))
	c.JSON(http.StatusOK, dto.ToTransactionResponse(transaction))
}

func (h *transactionHandler) getTransaction(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	transaction, err := h.transactionService.GetTransaction(c.Request.Context(), c.Param("transactionID"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(transaction))
}

func (h *transactionHandler) listTransactions(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	transactions, err := h.transactionService.ListJournalTransactions(c.Request.Context(), c.Param("journalID"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": dto.ToTransactionResponses(transactions)})
}
