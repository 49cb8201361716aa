package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/monkesto/tally/internal/core/ports/services"
	"github.com/monkesto/tally/internal/dto"
	"github.com/monkesto/tally/internal/middleware"
)

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{accountService: as}
}

// registerAccountRoutes registers account routes nested under a journal.
func registerAccountRoutes(journal *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := journal.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:accountID", h.getAccount)
		accounts.GET("/:accountID/path", h.getAccountPath)
		accounts.DELETE("/:accountID", h.deactivateAccount)
	}
}

func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), req.AccountID,
		c.Param("journalID"), req.Name, req.ParentAccountID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

func (h *accountHandler) listAccounts(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	accounts, err := h.accountService.ListJournalAccounts(c.Request.Context(), c.Param("journalID"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": dto.ToAccountResponses(accounts)})
}

func (h *accountHandler) getAccount(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	account, err := h.accountService.GetAccount(c.Request.Context(), c.Param("accountID"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

func (h *accountHandler) getAccountPath(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	path, err := h.accountService.GetAccountFullPath(c.Request.Context(), c.Param("accountID"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if path == nil {
		// A broken parent chain means the path cannot be resolved.
		c.JSON(http.StatusNotFound, gin.H{"error": "account path could not be resolved"})
		return
	}
	c.JSON(http.StatusOK, dto.AccountPathResponse{Path: path})
}

func (h *accountHandler) deactivateAccount(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.accountService.DeactivateAccount(c.Request.Context(), c.Param("accountID"), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
