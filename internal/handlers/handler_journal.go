package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/monkesto/tally/internal/core/ports/services"
	"github.com/monkesto/tally/internal/dto"
	"github.com/monkesto/tally/internal/middleware"
)

const (
	defaultEventPageSize = 100
	maxEventPageSize     = 1000
)

// journalHandler handles HTTP requests related to journals and their tenants.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

func newJournalHandler(js portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{journalService: js}
}

// registerJournalRoutes registers routes related to journals. Account and
// transaction routes nest under a specific journal.
func registerJournalRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newJournalHandler(services.Journal)

	journals := rg.Group("/journals")
	{
		journals.POST("", h.createJournal)
		journals.GET("", h.listJournals)
	}

	journal := rg.Group("/journals/:journalID")
	{
		journal.GET("", h.getJournal)
		journal.PUT("/name", h.renameJournal)
		journal.DELETE("", h.deleteJournal)
		journal.GET("/events", h.getJournalEvents)

		tenants := journal.Group("/users")
		{
			tenants.GET("", h.getJournalUsers)
			tenants.POST("", h.inviteTenant)
			tenants.PUT("/:userID/permissions", h.updateTenantPermissions)
			tenants.DELETE("/:userID", h.removeTenant)
		}

		registerAccountRoutes(journal, services.Account)
		registerTransactionRoutes(journal, services.Transaction)
	}
}

func (h *journalHandler) createJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	journal, err := h.journalService.CreateJournal(c.Request.Context(), req.Name, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Journal created", slog.String("journal_id", journal.JournalID))
	c.JSON(http.StatusCreated, dto.ToJournalResponse(journal))
}

func (h *journalHandler) listJournals(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	journals, err := h.journalService.ListJournals(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"journals": dto.ToJournalResponses(journals)})
}

func (h *journalHandler) getJournal(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	journal, err := h.journalService.GetJournal(c.Request.Context(), c.Param("journalID"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if journal == nil {
		// The journal exists but the caller may not see it.
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
}

func (h *journalHandler) renameJournal(c *gin.Context) {
	var req dto.RenameJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.journalService.RenameJournal(c.Request.Context(), c.Param("journalID"), req.Name, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *journalHandler) deleteJournal(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.journalService.DeleteJournal(c.Request.Context(), c.Param("journalID"), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// getJournalEvents pages the journal's event log. The after cursor is the
// index of the last event already seen; -1 requests the full log.
func (h *journalHandler) getJournalEvents(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	after, err := strconv.Atoi(c.DefaultQuery("after", "-1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "after must be an integer"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultEventPageSize)))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	if limit > maxEventPageSize {
		limit = maxEventPageSize
	}

	events, err := h.journalService.GetJournalEvents(c.Request.Context(), c.Param("journalID"), userID, after, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": dto.ToJournalEventResponses(events)})
}

func (h *journalHandler) getJournalUsers(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	users, err := h.journalService.GetJournalUsers(c.Request.Context(), c.Param("journalID"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": dto.ToJournalUserResponses(users)})
}

func (h *journalHandler) inviteTenant(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.InviteTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	journalID := c.Param("journalID")
	err := h.journalService.InviteTenant(c.Request.Context(), journalID, req.Email, dto.ToPermission(req.Permissions), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Tenant invited", slog.String("journal_id", journalID))
	c.Status(http.StatusNoContent)
}

func (h *journalHandler) updateTenantPermissions(c *gin.Context) {
	var req dto.UpdateTenantPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	err := h.journalService.UpdateTenantPermissions(c.Request.Context(), c.Param("journalID"),
		c.Param("userID"), dto.ToPermission(req.Permissions), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *journalHandler) removeTenant(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	err := h.journalService.RemoveTenant(c.Request.Context(), c.Param("journalID"), c.Param("userID"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
