package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainErrors "github.com/shopforge/account-service/internal/domain/errors"
	"github.com/shopforge/account-service/internal/domain/models"
	"github.com/shopforge/account-service/internal/handler/http/middleware"
	"github.com/shopforge/account-service/internal/service"
)

// AuthHandler exposes registration, login, token refresh and logout.
type AuthHandler struct {
	auth         *service.AuthService
	tokens       *service.TokenService
	logger       *zap.Logger
	cookieSecure bool
}

func NewAuthHandler(auth *service.AuthService, tokens *service.TokenService, cookieSecure bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		tokens:       tokens,
		logger:       logger,
		cookieSecure: cookieSecure,
	}
}

// setAccessCookie installs the HttpOnly access-token cookie for browser
// clients. SameSite=Lax so top-level navigation still carries it.
func (h *AuthHandler) setAccessCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, token, maxAge, "/", "", h.cookieSecure, true)
}

type accountResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Status   string `json:"status"`
	Role     string `json:"role"`
}

func toAccountResponse(a *models.Account) accountResponse {
	return accountResponse{
		ID:       a.ID.String(),
		Email:    a.Email,
		Username: a.Username,
		Status:   string(a.Status),
		Role:     string(a.Role),
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, domainErrors.ErrInvalidRequest, h.logger)
		return
	}

	account, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		// The account exists even when code delivery failed, but the caller
		// must see a retryable error, not success: tell them the account was
		// created and to request a resend.
		if account != nil && errors.Is(err, domainErrors.ErrCodeDeliveryFailed) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, ResponseError{
				Error: "account created but the verification code could not be delivered, request a resend",
				Code:  "delivery_failed",
			})
			return
		}
		RespondWithError(c, err, h.logger)
		return
	}

	RespondWithSuccess(c, http.StatusCreated,
		"account created, verification code sent",
		toAccountResponse(account))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, domainErrors.ErrInvalidRequest, h.logger)
		return
	}

	account, pair, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		RespondWithError(c, err, h.logger)
		return
	}

	// The access token travels only in the cookie; the body carries the
	// refresh token for the rotation call.
	h.setAccessCookie(c, pair.AccessToken, int(time.Until(pair.AccessExpiresAt).Seconds()))
	RespondWithData(c, http.StatusOK, gin.H{
		"message":       "login successful",
		"refresh_token": pair.RefreshToken,
		"account":       toAccountResponse(account),
	})
}

// Refresh handles POST /auth/refresh-token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, domainErrors.ErrInvalidRequest, h.logger)
		return
	}

	pair, err := h.tokens.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		RespondWithError(c, err, h.logger)
		return
	}
	expiresIn := int(time.Until(pair.AccessExpiresAt).Seconds())
	h.setAccessCookie(c, pair.AccessToken, expiresIn)
	RespondWithData(c, http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_in":    expiresIn,
	})
}

// Logout handles POST /auth/logout. Requires authentication.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		RespondWithError(c, domainErrors.ErrUnauthorized, h.logger)
		return
	}

	if err := h.auth.Logout(c.Request.Context(), claims.AccountID); err != nil {
		RespondWithError(c, err, h.logger)
		return
	}
	h.setAccessCookie(c, "", -1)
	RespondWithNoContent(c)
}

// ChangePassword handles POST /auth/change-password. Requires
// authentication; the current password is re-verified before the swap.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		RespondWithError(c, domainErrors.ErrUnauthorized, h.logger)
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, domainErrors.ErrInvalidRequest, h.logger)
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), claims.AccountID, req.CurrentPassword, req.NewPassword); err != nil {
		RespondWithError(c, err, h.logger)
		return
	}
	RespondWithSuccess(c, http.StatusOK, "password changed", nil)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	account := middleware.AccountFromContext(c)
	if account == nil {
		RespondWithError(c, domainErrors.ErrUnauthorized, h.logger)
		return
	}
	RespondWithData(c, http.StatusOK, toAccountResponse(account))
}
