package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainErrors "github.com/shopforge/account-service/internal/domain/errors"
	"github.com/shopforge/account-service/internal/handler/http/middleware"
)

// CSRFHandler hands out double-submit tokens.
type CSRFHandler struct {
	guard  *middleware.CSRFGuard
	logger *zap.Logger
}

func NewCSRFHandler(guard *middleware.CSRFGuard, logger *zap.Logger) *CSRFHandler {
	return &CSRFHandler{
		guard:  guard,
		logger: logger,
	}
}

// Token handles GET /csrf/token: sets the cookie and echoes the token so
// non-browser clients can use it too.
func (h *CSRFHandler) Token(c *gin.Context) {
	token, err := h.guard.IssueToken(c)
	if err != nil {
		h.logger.Error("Failed to issue CSRF token", zap.Error(err))
		RespondWithError(c, domainErrors.ErrInternal, h.logger)
		return
	}
	RespondWithData(c, http.StatusOK, gin.H{"csrf_token": token})
}
