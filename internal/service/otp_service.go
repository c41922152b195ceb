package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/shopforge/account-service/internal/config"
	domainErrors "github.com/shopforge/account-service/internal/domain/errors"
	"github.com/shopforge/account-service/internal/domain/models"
	"github.com/shopforge/account-service/internal/domain/repository"
	"github.com/shopforge/account-service/internal/infrastructure/security"
	"github.com/shopforge/account-service/internal/utils/metrics"
)

const otpDigits = 6

// OTPService issues and consumes short-lived numeric one-time codes. An
// account holds at most one pending code; issuing a new one displaces the
// old, and a code is cleared the moment it is consumed or found expired.
type OTPService struct {
	repo   repository.AccountRepository
	hasher security.PasswordHasher
	sender CodeSender
	events EventSink
	logger *zap.Logger
	cfg    config.OTPConfig
}

func NewOTPService(
	repo repository.AccountRepository,
	hasher security.PasswordHasher,
	sender CodeSender,
	events EventSink,
	cfg config.OTPConfig,
	logger *zap.Logger,
) *OTPService {
	return &OTPService{
		repo:   repo,
		hasher: hasher,
		sender: sender,
		events: events,
		logger: logger,
		cfg:    cfg,
	}
}

// IssueCode generates a code for the given purpose, persists its hash and
// delivers the plaintext. Delivery failure is propagated; the stored code
// stays pending so a later resend can replace it.
func (s *OTPService) IssueCode(ctx context.Context, account *models.Account, purpose models.OTPPurpose) error {
	code, err := security.GenerateNumericCode(otpDigits)
	if err != nil {
		s.logger.Error("Failed to generate one-time code", zap.Error(err))
		return domainErrors.ErrInternal
	}

	expiresAt := time.Now().UTC().Add(s.cfg.CodeTTL)
	if err := s.repo.SetOneTimeCode(ctx, account.ID, security.HashToken(code), purpose, expiresAt); err != nil {
		return err
	}

	metrics.CodesIssuedTotal.WithLabelValues(string(purpose)).Inc()
	if err := s.sender.SendCode(ctx, account.Email, code, string(purpose)); err != nil {
		s.logger.Error("Failed to deliver one-time code",
			zap.String("account_id", account.ID.String()),
			zap.String("purpose", string(purpose)),
			zap.Error(err))
		return domainErrors.ErrCodeDeliveryFailed
	}
	return nil
}

// ResendVerificationCode issues a fresh email-verification code for an
// account still awaiting activation.
func (s *OTPService) ResendVerificationCode(ctx context.Context, email string) error {
	account, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return err
	}
	if account.Status == models.AccountStatusActive {
		return domainErrors.ErrAlreadyActive
	}
	if account.Status == models.AccountStatusSuspended {
		return domainErrors.ErrAccountSuspended
	}
	if s.inCooldown(account, models.OTPPurposeEmailVerification, time.Now().UTC()) {
		return domainErrors.ErrRateLimitExceeded
	}
	return s.issueBestEffort(ctx, account, models.OTPPurposeEmailVerification)
}

// VerifyEmail consumes a pending email-verification code and activates the
// account. The state change and the code consumption happen in one guarded
// update, so a concurrent double-verify succeeds at most once.
func (s *OTPService) VerifyEmail(ctx context.Context, email, code string) error {
	account, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return err
	}
	if account.Status == models.AccountStatusActive {
		return domainErrors.ErrAlreadyActive
	}
	if err := s.checkPendingCode(ctx, account, models.OTPPurposeEmailVerification); err != nil {
		return err
	}

	if err := s.repo.ActivateWithCode(ctx, account.ID, security.HashToken(code)); err != nil {
		return err
	}

	s.events.Dispatch(models.EventAccountActivated, account.ID.String(), models.AccountEventPayload{
		AccountID: account.ID.String(),
		Email:     account.Email,
		Status:    string(models.AccountStatusActive),
		At:        time.Now().UTC(),
	})
	return nil
}

// RequestPasswordReset issues a reset code. The anonymous reset flow is only
// for active accounts without a live session; everything else (unknown email,
// suspended, already logged in) succeeds silently with no code issued, so the
// endpoint neither enumerates accounts nor bypasses authenticated
// change-password.
func (s *OTPService) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if domainErrors.IsNotFound(err) {
			return nil
		}
		return err
	}
	if account.Status != models.AccountStatusActive {
		return nil
	}
	if account.HasLiveSession(time.Now().UTC()) {
		return nil
	}
	if s.inCooldown(account, models.OTPPurposePasswordReset, time.Now().UTC()) {
		return nil
	}
	return s.issueBestEffort(ctx, account, models.OTPPurposePasswordReset)
}

// issueBestEffort issues a code but swallows delivery failures: on resend
// flows the code is already persisted and IssueCode has logged the failure,
// so the caller can simply try again.
func (s *OTPService) issueBestEffort(ctx context.Context, account *models.Account, purpose models.OTPPurpose) error {
	err := s.IssueCode(ctx, account, purpose)
	if errors.Is(err, domainErrors.ErrCodeDeliveryFailed) {
		return nil
	}
	return err
}

// VerifyReset consumes a pending password-reset code, unlocking a single
// subsequent CompletePasswordReset.
func (s *OTPService) VerifyReset(ctx context.Context, email, code string) error {
	account, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return err
	}
	if err := s.checkPendingCode(ctx, account, models.OTPPurposePasswordReset); err != nil {
		return err
	}
	return s.repo.MarkResetVerified(ctx, account.ID, security.HashToken(code))
}

// CompletePasswordReset installs the new password. Requires a verified
// reset; also clears the lockout state and revokes any live session.
func (s *OTPService) CompletePasswordReset(ctx context.Context, email, newPassword string) error {
	account, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return err
	}
	if !account.ResetVerified {
		return domainErrors.ErrResetNotVerified
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return domainErrors.ErrInternal
	}
	if err := s.repo.CompletePasswordReset(ctx, account.ID, passwordHash); err != nil {
		return err
	}

	s.events.Dispatch(models.EventPasswordReset, account.ID.String(), models.AccountEventPayload{
		AccountID: account.ID.String(),
		Email:     account.Email,
		At:        time.Now().UTC(),
	})
	return nil
}

// inCooldown reports whether a pending code of the same purpose was issued
// too recently to replace. Issue time is derived from the stored expiry.
func (s *OTPService) inCooldown(account *models.Account, purpose models.OTPPurpose, now time.Time) bool {
	if s.cfg.ResendCooldown <= 0 || account.OTPExpiresAt == nil || account.OTPPurpose == nil {
		return false
	}
	if *account.OTPPurpose != purpose {
		return false
	}
	issuedAt := account.OTPExpiresAt.Add(-s.cfg.CodeTTL)
	return now.Sub(issuedAt) < s.cfg.ResendCooldown
}

// checkPendingCode classifies the account's pending-code state before the
// guarded consume runs, so callers get precise errors: no code at all,
// wrong purpose, or an expired code (which is cleared on sight).
func (s *OTPService) checkPendingCode(ctx context.Context, account *models.Account, purpose models.OTPPurpose) error {
	if account.OTPCodeHash == nil || account.OTPPurpose == nil {
		return domainErrors.ErrNoActiveCode
	}
	if *account.OTPPurpose != purpose {
		return domainErrors.ErrNoActiveCode
	}
	if account.OTPExpiresAt == nil || !account.OTPExpiresAt.After(time.Now().UTC()) {
		if err := s.repo.ClearOneTimeCode(ctx, account.ID); err != nil {
			s.logger.Error("Failed to clear expired code",
				zap.String("account_id", account.ID.String()), zap.Error(err))
		}
		return domainErrors.ErrExpiredCode
	}
	return nil
}
