package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	domainErrors "github.com/shopforge/account-service/internal/domain/errors"
	"github.com/shopforge/account-service/internal/domain/models"
	"github.com/shopforge/account-service/internal/service"
)

// AdminHandler exposes the administrative account lifecycle operations.
type AdminHandler struct {
	accounts *service.AccountService
	logger   *zap.Logger
}

func NewAdminHandler(accounts *service.AccountService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		accounts: accounts,
		logger:   logger,
	}
}

func (h *AdminHandler) accountID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondWithError(c, domainErrors.ErrInvalidRequest, h.logger)
		return uuid.Nil, false
	}
	return id, true
}

// List handles GET /admin/accounts.
func (h *AdminHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	accounts, err := h.accounts.List(c.Request.Context(), limit, offset)
	if err != nil {
		RespondWithError(c, err, h.logger)
		return
	}

	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	RespondWithData(c, http.StatusOK, gin.H{"accounts": out})
}

// Get handles GET /admin/accounts/:id.
func (h *AdminHandler) Get(c *gin.Context) {
	id, ok := h.accountID(c)
	if !ok {
		return
	}

	account, err := h.accounts.Get(c.Request.Context(), id)
	if err != nil {
		RespondWithError(c, err, h.logger)
		return
	}
	RespondWithData(c, http.StatusOK, toAccountResponse(account))
}

// Suspend handles POST /admin/accounts/:id/suspend.
func (h *AdminHandler) Suspend(c *gin.Context) {
	id, ok := h.accountID(c)
	if !ok {
		return
	}
	var req models.SuspendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, domainErrors.ErrSuspensionReasonEmpty, h.logger)
		return
	}

	if err := h.accounts.Suspend(c.Request.Context(), id, req.Reason); err != nil {
		RespondWithError(c, err, h.logger)
		return
	}
	RespondWithSuccess(c, http.StatusOK, "account suspended", nil)
}

// Resume handles POST /admin/accounts/:id/resume.
func (h *AdminHandler) Resume(c *gin.Context) {
	id, ok := h.accountID(c)
	if !ok {
		return
	}
	if err := h.accounts.Resume(c.Request.Context(), id); err != nil {
		RespondWithError(c, err, h.logger)
		return
	}
	RespondWithSuccess(c, http.StatusOK, "account resumed", nil)
}

// Unblock handles POST /admin/accounts/:id/unblock.
func (h *AdminHandler) Unblock(c *gin.Context) {
	id, ok := h.accountID(c)
	if !ok {
		return
	}
	if err := h.accounts.Unblock(c.Request.Context(), id); err != nil {
		RespondWithError(c, err, h.logger)
		return
	}
	RespondWithSuccess(c, http.StatusOK, "account unblocked", nil)
}

// Delete handles DELETE /admin/accounts/:id (soft delete).
func (h *AdminHandler) Delete(c *gin.Context) {
	id, ok := h.accountID(c)
	if !ok {
		return
	}
	if err := h.accounts.SoftDelete(c.Request.Context(), id); err != nil {
		RespondWithError(c, err, h.logger)
		return
	}
	RespondWithNoContent(c)
}

// Restore handles POST /admin/accounts/:id/restore.
func (h *AdminHandler) Restore(c *gin.Context) {
	id, ok := h.accountID(c)
	if !ok {
		return
	}
	if err := h.accounts.Restore(c.Request.Context(), id); err != nil {
		RespondWithError(c, err, h.logger)
		return
	}
	RespondWithSuccess(c, http.StatusOK, "account restored", nil)
}

// Purge handles DELETE /admin/accounts/:id/purge (hard delete).
func (h *AdminHandler) Purge(c *gin.Context) {
	id, ok := h.accountID(c)
	if !ok {
		return
	}
	if err := h.accounts.HardDelete(c.Request.Context(), id); err != nil {
		RespondWithError(c, err, h.logger)
		return
	}
	RespondWithNoContent(c)
}
