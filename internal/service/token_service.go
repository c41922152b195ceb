package service

import (
	"context"
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

const refreshTokenByteLength = 32

// TokenService issues and rotates the access/refresh token pair. An account
// holds at most one refresh session; issuing a new pair displaces the old
// one, and rotation is a compare-and-swap so a replayed refresh token (or the
// loser of a concurrent refresh race) is rejected.
type TokenService struct {
	repo   repository.AccountRepository
	jwt    *security.JWTManager
	logger *zap.Logger
	cfg    config.JWTConfig
}

func NewTokenService(repo repository.AccountRepository, jwt *security.JWTManager, cfg config.JWTConfig, logger *zap.Logger) *TokenService {
	return &TokenService{
		repo:   repo,
		jwt:    jwt,
		logger: logger,
		cfg:    cfg,
	}
}

// IssuePair mints a fresh session for the account: a new session id, a new
// opaque refresh token (stored hashed) and an access token bound to that
// session.
func (s *TokenService) IssuePair(ctx context.Context, account *models.Account) (*models.TokenPair, error) {
	now := time.Now().UTC()
	sessionID := uuid.New()

	refreshToken, err := security.GenerateOpaqueToken(refreshTokenByteLength)
	if err != nil {
		return nil, domainErrors.ErrInternal
	}
	refreshExpiresAt := now.Add(s.cfg.RefreshTokenTTL)

	session := models.Session{
		SessionID:        sessionID,
		RefreshTokenHash: security.HashToken(refreshToken),
		ExpiresAt:        refreshExpiresAt,
	}
	if err := s.repo.SetSession(ctx, account.ID, session); err != nil {
		return nil, err
	}

	accessToken, accessExpiresAt, err := s.jwt.Sign(account.ID, account.Role, sessionID, now)
	if err != nil {
		s.logger.Error("Failed to sign access token", zap.Error(err))
		return nil, domainErrors.ErrInternal
	}

	return &models.TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExpiresAt,
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}

// Refresh validates the presented refresh token against the stored session
// and rotates it. Exactly one caller can win for a given stored hash; every
// other presentation of that token fails with ErrInvalidRefreshToken.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	presentedHash := security.HashToken(refreshToken)
	account, err := s.repo.FindByRefreshTokenHash(ctx, presentedHash)
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	if err := s.checkAccountUsable(account); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if account.RefreshExpiresAt == nil || !account.RefreshExpiresAt.After(now) {
		metrics.TokenRefreshTotal.WithLabelValues("expired").Inc()
		return nil, domainErrors.ErrInvalidRefreshToken
	}

	sessionID := uuid.New()
	newRefreshToken, err := security.GenerateOpaqueToken(refreshTokenByteLength)
	if err != nil {
		return nil, domainErrors.ErrInternal
	}
	refreshExpiresAt := now.Add(s.cfg.RefreshTokenTTL)

	session := models.Session{
		SessionID:        sessionID,
		RefreshTokenHash: security.HashToken(newRefreshToken),
		ExpiresAt:        refreshExpiresAt,
	}
	if err := s.repo.RotateSession(ctx, account.ID, presentedHash, session); err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	accessToken, accessExpiresAt, err := s.jwt.Sign(account.ID, account.Role, sessionID, now)
	if err != nil {
		s.logger.Error("Failed to sign access token", zap.Error(err))
		return nil, domainErrors.ErrInternal
	}

	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
	return &models.TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     newRefreshToken,
		AccessExpiresAt:  accessExpiresAt,
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}

// VerifyAccess parses an access token and returns its claims.
func (s *TokenService) VerifyAccess(tokenString string) (*models.AccessClaims, error) {
	return s.jwt.Verify(tokenString)
}

// Revoke drops the account's refresh session.
func (s *TokenService) Revoke(ctx context.Context, accountID uuid.UUID) error {
	return s.repo.ClearSession(ctx, accountID)
}

func (s *TokenService) checkAccountUsable(account *models.Account) error {
	if account.IsBlocked {
		return domainErrors.ErrAccountBlocked
	}
	if account.Status == models.AccountStatusSuspended {
		return domainErrors.ErrAccountSuspended
	}
	if account.Status == models.AccountStatusInactive {
		return domainErrors.ErrAccountNotActive
	}
	return nil
}
