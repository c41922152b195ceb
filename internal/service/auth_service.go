package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopforge/account-service/internal/config"
	domainErrors "github.com/shopforge/account-service/internal/domain/errors"
	"github.com/shopforge/account-service/internal/domain/models"
	"github.com/shopforge/account-service/internal/domain/repository"
	"github.com/shopforge/account-service/internal/infrastructure/security"
	"github.com/shopforge/account-service/internal/utils/metrics"
)

// AuthService implements registration, credential verification with
// progressive lockout, and logout.
type AuthService struct {
	repo    repository.AccountRepository
	hasher  security.PasswordHasher
	tokens  *TokenService
	otp     *OTPService
	events  EventSink
	logger  *zap.Logger
	lockout config.LockoutConfig
}

func NewAuthService(
	repo repository.AccountRepository,
	hasher security.PasswordHasher,
	tokens *TokenService,
	otp *OTPService,
	events EventSink,
	lockout config.LockoutConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		repo:    repo,
		hasher:  hasher,
		tokens:  tokens,
		otp:     otp,
		events:  events,
		logger:  logger,
		lockout: lockout,
	}
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
// Usernames go through the same normalization.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// findByIdentifier resolves a login identifier that may be either an email
// address or a username. An identifier with an "@" is tried as email first,
// otherwise as username first, falling back to the other on not-found.
func (s *AuthService) findByIdentifier(ctx context.Context, identifier string) (*models.Account, error) {
	first, second := s.repo.FindByUsername, s.repo.FindByEmail
	if strings.Contains(identifier, "@") {
		first, second = second, first
	}
	account, err := first(ctx, identifier)
	if err != nil && domainErrors.IsNotFound(err) {
		return second(ctx, identifier)
	}
	return account, err
}

// Register creates an inactive account and issues an email-verification
// code. Code delivery is awaited: if the code cannot be sent the account is
// still created, but the caller learns delivery failed and can use resend.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.Account, error) {
	email := NormalizeEmail(req.Email)
	username := NormalizeEmail(req.Username)

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, domainErrors.ErrInternal
	}

	account := &models.Account{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		Status:       models.AccountStatusInactive,
		Role:         models.RoleUser,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	s.events.Dispatch(models.EventAccountRegistered, account.ID.String(), models.AccountEventPayload{
		AccountID: account.ID.String(),
		Email:     account.Email,
		Username:  account.Username,
		Status:    string(account.Status),
		At:        time.Now().UTC(),
	})

	if err := s.otp.IssueCode(ctx, account, models.OTPPurposeEmailVerification); err != nil {
		s.logger.Warn("Verification code delivery failed after registration",
			zap.String("account_id", account.ID.String()), zap.Error(err))
		return account, domainErrors.ErrCodeDeliveryFailed
	}
	return account, nil
}

// Login verifies credentials and issues a token pair. Failed attempts bump a
// per-account counter; reaching the configured threshold blocks the account
// until an administrator intervenes or a password reset completes. The
// blocked check runs before password verification, so a blocked account
// rejects even the correct password.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.Account, *models.TokenPair, error) {
	identifier := NormalizeEmail(req.Identifier)

	account, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		if domainErrors.IsNotFound(err) {
			metrics.LoginAttemptsTotal.WithLabelValues("unknown_identifier").Inc()
		}
		return nil, nil, err
	}

	if account.IsBlocked {
		metrics.LoginAttemptsTotal.WithLabelValues("blocked").Inc()
		s.dispatchLoginFailed(account, true)
		return nil, nil, domainErrors.ErrAccountBlocked
	}

	ok, err := s.hasher.Verify(req.Password, account.PasswordHash)
	if err != nil {
		s.logger.Error("Failed to verify password hash",
			zap.String("account_id", account.ID.String()), zap.Error(err))
		return nil, nil, domainErrors.ErrInternal
	}
	if !ok {
		attempts, blocked, incErr := s.repo.IncrementLoginAttempts(ctx, account.ID, s.lockout.MaxFailedAttempts)
		if incErr != nil {
			s.logger.Error("Failed to record login attempt",
				zap.String("account_id", account.ID.String()), zap.Error(incErr))
		}
		metrics.LoginAttemptsTotal.WithLabelValues("bad_password").Inc()
		if blocked {
			metrics.AccountsBlockedTotal.Inc()
			s.logger.Warn("Account blocked after repeated login failures",
				zap.String("account_id", account.ID.String()),
				zap.Int("attempts", attempts))
			s.events.Dispatch(models.EventAccountBlocked, account.ID.String(), models.LoginEventPayload{
				AccountID: account.ID.String(),
				Email:     account.Email,
				Attempts:  attempts,
				Blocked:   true,
				At:        time.Now().UTC(),
			})
		} else {
			s.dispatchLoginFailed(account, false)
		}
		return nil, nil, domainErrors.ErrInvalidCredentials
	}

	switch account.Status {
	case models.AccountStatusSuspended:
		metrics.LoginAttemptsTotal.WithLabelValues("suspended").Inc()
		return nil, nil, domainErrors.ErrAccountSuspended
	case models.AccountStatusInactive:
		metrics.LoginAttemptsTotal.WithLabelValues("inactive").Inc()
		return nil, nil, domainErrors.ErrAccountNotActive
	}

	if account.LoginAttempts > 0 {
		if err := s.repo.ResetLoginAttempts(ctx, account.ID); err != nil {
			s.logger.Error("Failed to reset login attempts",
				zap.String("account_id", account.ID.String()), zap.Error(err))
		}
	}

	pair, err := s.tokens.IssuePair(ctx, account)
	if err != nil {
		return nil, nil, err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.events.Dispatch(models.EventLoginSucceeded, account.ID.String(), models.LoginEventPayload{
		AccountID: account.ID.String(),
		Email:     account.Email,
		At:        time.Now().UTC(),
	})
	return account, pair, nil
}

// Logout revokes the account's refresh session. Logging out without a live
// session is an authorization error, not a no-op: the guarded revoke admits
// exactly one winner, so a concurrent double logout cannot both succeed.
func (s *AuthService) Logout(ctx context.Context, accountID uuid.UUID) error {
	return s.tokens.Revoke(ctx, accountID)
}

// ChangePassword replaces the password of an authenticated account after
// re-verifying the current one. Unlike the anonymous reset flow the live
// session survives.
func (s *AuthService) ChangePassword(ctx context.Context, accountID uuid.UUID, currentPassword, newPassword string) error {
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(currentPassword, account.PasswordHash)
	if err != nil {
		s.logger.Error("Failed to verify password hash",
			zap.String("account_id", account.ID.String()), zap.Error(err))
		return domainErrors.ErrInternal
	}
	if !ok {
		return domainErrors.ErrInvalidCredentials
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return domainErrors.ErrInternal
	}
	if err := s.repo.UpdatePassword(ctx, account.ID, newHash); err != nil {
		return err
	}

	s.events.Dispatch(models.EventPasswordChanged, account.ID.String(), models.AccountEventPayload{
		AccountID: account.ID.String(),
		Email:     account.Email,
		Username:  account.Username,
		Status:    string(account.Status),
		At:        time.Now().UTC(),
	})
	return nil
}

func (s *AuthService) dispatchLoginFailed(account *models.Account, blocked bool) {
	s.events.Dispatch(models.EventLoginFailed, account.ID.String(), models.LoginEventPayload{
		AccountID: account.ID.String(),
		Email:     account.Email,
		Blocked:   blocked,
		At:        time.Now().UTC(),
	})
}
