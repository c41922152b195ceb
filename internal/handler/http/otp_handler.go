package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainErrors "github.com/shopforge/account-service/internal/domain/errors"
	"github.com/shopforge/account-service/internal/domain/models"
	"github.com/shopforge/account-service/internal/service"
)

// OTPHandler exposes email verification and the password-reset flow.
type OTPHandler struct {
	otp    *service.OTPService
	logger *zap.Logger
}

func NewOTPHandler(otp *service.OTPService, logger *zap.Logger) *OTPHandler {
	return &OTPHandler{
		otp:    otp,
		logger: logger,
	}
}

// VerifyOTP handles POST /otp/verify-otp.
func (h *OTPHandler) VerifyOTP(c *gin.Context) {
	var req models.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, domainErrors.ErrInvalidRequest, h.logger)
		return
	}

	if err := h.otp.VerifyEmail(c.Request.Context(), req.Email, req.OTP); err != nil {
		RespondWithError(c, err, h.logger)
		return
	}
	RespondWithSuccess(c, http.StatusOK, "account activated", nil)
}

// ResendOTP handles POST /otp/resend-otp.
func (h *OTPHandler) ResendOTP(c *gin.Context) {
	var req models.ResendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, domainErrors.ErrInvalidRequest, h.logger)
		return
	}

	if err := h.otp.ResendVerificationCode(c.Request.Context(), req.Email); err != nil {
		RespondWithError(c, err, h.logger)
		return
	}
	RespondWithSuccess(c, http.StatusOK, "verification code sent", nil)
}

// ForgotPassword handles POST /auth/forgot-password. Always 200 for unknown
// emails.
func (h *OTPHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, domainErrors.ErrInvalidRequest, h.logger)
		return
	}

	if err := h.otp.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		RespondWithError(c, err, h.logger)
		return
	}
	RespondWithSuccess(c, http.StatusOK, "if the account exists, a reset code was sent", nil)
}

// VerifyReset handles POST /auth/verify-reset.
func (h *OTPHandler) VerifyReset(c *gin.Context) {
	var req models.VerifyResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, domainErrors.ErrInvalidRequest, h.logger)
		return
	}

	if err := h.otp.VerifyReset(c.Request.Context(), req.Email, req.Code); err != nil {
		RespondWithError(c, err, h.logger)
		return
	}
	RespondWithSuccess(c, http.StatusOK, "reset code verified", nil)
}

// ResetPassword handles POST /auth/reset-password.
func (h *OTPHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, domainErrors.ErrInvalidRequest, h.logger)
		return
	}

	if err := h.otp.CompletePasswordReset(c.Request.Context(), req.Email, req.NewPassword); err != nil {
		RespondWithError(c, err, h.logger)
		return
	}
	RespondWithSuccess(c, http.StatusOK, "password updated", nil)
}
