package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/shopforge/account-service/internal/config"
	domainErrors "github.com/shopforge/account-service/internal/domain/errors"
	"github.com/shopforge/account-service/internal/domain/models"
	"github.com/shopforge/account-service/internal/infrastructure/security"
)

const maxFailedAttempts = 3

func testHasher(t *testing.T) security.PasswordHasher {
	t.Helper()
	hasher, err := security.NewArgon2idHasher(config.PasswordHashConfig{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("failed to build hasher: %v", err)
	}
	return hasher
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:          "test-secret",
		Issuer:          "account-service-test",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	}
}

type AuthServiceTestSuite struct {
	suite.Suite
	repo   *MockAccountRepository
	sender *MockCodeSender
	sink   *recordingSink
	hasher security.PasswordHasher
	tokens *TokenService
	svc    *AuthService
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.repo = new(MockAccountRepository)
	s.sender = new(MockCodeSender)
	s.sink = &recordingSink{}
	s.hasher = testHasher(s.T())

	logger := zap.NewNop()
	jwtCfg := testJWTConfig()
	s.tokens = NewTokenService(s.repo, security.NewJWTManager(jwtCfg), jwtCfg, logger)
	otp := NewOTPService(s.repo, s.hasher, s.sender, s.sink, config.OTPConfig{CodeTTL: 2 * time.Minute}, logger)
	s.svc = NewAuthService(s.repo, s.hasher, s.tokens, otp, s.sink,
		config.LockoutConfig{MaxFailedAttempts: maxFailedAttempts}, logger)
}

func (s *AuthServiceTestSuite) activeAccount(password string) *models.Account {
	hash, err := s.hasher.Hash(password)
	s.Require().NoError(err)
	return &models.Account{
		ID:           uuid.New(),
		Email:        "user@example.com",
		Username:     "user",
		PasswordHash: hash,
		Status:       models.AccountStatusActive,
		Role:         models.RoleUser,
	}
}

func (s *AuthServiceTestSuite) TestLoginSuccess() {
	account := s.activeAccount("correct horse")
	s.repo.On("FindByEmail", mock.Anything, account.Email).Return(account, nil).Once()
	s.repo.On("SetSession", mock.Anything, account.ID, mock.Anything).Return(nil).Once()

	got, pair, err := s.svc.Login(context.Background(), models.LoginRequest{
		Identifier: "User@Example.com",
		Password:   "correct horse",
	})

	s.Require().NoError(err)
	s.Equal(account.ID, got.ID)
	s.NotEmpty(pair.AccessToken)
	s.NotEmpty(pair.RefreshToken)

	claims, err := s.tokens.VerifyAccess(pair.AccessToken)
	s.Require().NoError(err)
	s.Equal(account.ID, claims.AccountID)
	s.Contains(s.sink.events, models.EventLoginSucceeded)
	s.repo.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestLoginSuccessResetsAttemptCounter() {
	account := s.activeAccount("correct horse")
	account.LoginAttempts = 2
	s.repo.On("FindByEmail", mock.Anything, account.Email).Return(account, nil).Once()
	s.repo.On("ResetLoginAttempts", mock.Anything, account.ID).Return(nil).Once()
	s.repo.On("SetSession", mock.Anything, account.ID, mock.Anything).Return(nil).Once()

	_, _, err := s.svc.Login(context.Background(), models.LoginRequest{
		Identifier: account.Email,
		Password:   "correct horse",
	})

	s.Require().NoError(err)
	s.repo.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestLoginWrongPasswordIncrementsCounter() {
	account := s.activeAccount("correct horse")
	s.repo.On("FindByEmail", mock.Anything, account.Email).Return(account, nil).Once()
	s.repo.On("IncrementLoginAttempts", mock.Anything, account.ID, maxFailedAttempts).
		Return(1, false, nil).Once()

	_, _, err := s.svc.Login(context.Background(), models.LoginRequest{
		Identifier: account.Email,
		Password:   "wrong",
	})

	s.Require().ErrorIs(err, domainErrors.ErrInvalidCredentials)
	s.NotContains(s.sink.events, models.EventAccountBlocked)
	s.repo.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestLoginFinalAttemptBlocksAccount() {
	account := s.activeAccount("correct horse")
	s.repo.On("FindByEmail", mock.Anything, account.Email).Return(account, nil).Once()
	s.repo.On("IncrementLoginAttempts", mock.Anything, account.ID, maxFailedAttempts).
		Return(maxFailedAttempts, true, nil).Once()

	_, _, err := s.svc.Login(context.Background(), models.LoginRequest{
		Identifier: account.Email,
		Password:   "wrong",
	})

	s.Require().ErrorIs(err, domainErrors.ErrInvalidCredentials)
	s.Contains(s.sink.events, models.EventAccountBlocked)
	s.repo.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestLoginBlockedRejectsCorrectPassword() {
	account := s.activeAccount("correct horse")
	account.IsBlocked = true
	s.repo.On("FindByEmail", mock.Anything, account.Email).Return(account, nil).Once()

	_, _, err := s.svc.Login(context.Background(), models.LoginRequest{
		Identifier: account.Email,
		Password:   "correct horse",
	})

	s.Require().ErrorIs(err, domainErrors.ErrAccountBlocked)
	s.repo.AssertNotCalled(s.T(), "IncrementLoginAttempts", mock.Anything, mock.Anything, mock.Anything)
	s.repo.AssertNotCalled(s.T(), "SetSession", mock.Anything, mock.Anything, mock.Anything)
}

func (s *AuthServiceTestSuite) TestLoginUnknownIdentifier() {
	s.repo.On("FindByEmail", mock.Anything, "ghost@example.com").
		Return(nil, domainErrors.ErrAccountNotFound).Once()
	s.repo.On("FindByUsername", mock.Anything, "ghost@example.com").
		Return(nil, domainErrors.ErrAccountNotFound).Once()

	_, _, err := s.svc.Login(context.Background(), models.LoginRequest{
		Identifier: "ghost@example.com",
		Password:   "anything",
	})

	s.Require().ErrorIs(err, domainErrors.ErrAccountNotFound)
}

func (s *AuthServiceTestSuite) TestLoginByUsername() {
	account := s.activeAccount("correct horse")
	s.repo.On("FindByUsername", mock.Anything, account.Username).Return(account, nil).Once()
	s.repo.On("SetSession", mock.Anything, account.ID, mock.Anything).Return(nil).Once()

	got, _, err := s.svc.Login(context.Background(), models.LoginRequest{
		Identifier: "User",
		Password:   "correct horse",
	})

	s.Require().NoError(err)
	s.Equal(account.ID, got.ID)
	s.repo.AssertNotCalled(s.T(), "FindByEmail", mock.Anything, mock.Anything)
}

func (s *AuthServiceTestSuite) TestLoginSuspendedAccount() {
	account := s.activeAccount("correct horse")
	account.Status = models.AccountStatusSuspended
	s.repo.On("FindByEmail", mock.Anything, account.Email).Return(account, nil).Once()

	_, _, err := s.svc.Login(context.Background(), models.LoginRequest{
		Identifier: account.Email,
		Password:   "correct horse",
	})

	s.Require().ErrorIs(err, domainErrors.ErrAccountSuspended)
}

func (s *AuthServiceTestSuite) TestLoginInactiveAccount() {
	account := s.activeAccount("correct horse")
	account.Status = models.AccountStatusInactive
	s.repo.On("FindByEmail", mock.Anything, account.Email).Return(account, nil).Once()

	_, _, err := s.svc.Login(context.Background(), models.LoginRequest{
		Identifier: account.Email,
		Password:   "correct horse",
	})

	s.Require().ErrorIs(err, domainErrors.ErrAccountNotActive)
}

func (s *AuthServiceTestSuite) TestRegisterIssuesVerificationCode() {
	s.repo.On("Create", mock.Anything, mock.MatchedBy(func(a *models.Account) bool {
		return a.Email == "new@example.com" && a.Status == models.AccountStatusInactive
	})).Return(nil).Once()
	s.repo.On("SetOneTimeCode", mock.Anything, mock.Anything, mock.Anything,
		models.OTPPurposeEmailVerification, mock.Anything).Return(nil).Once()
	s.sender.On("SendCode", mock.Anything, "new@example.com", mock.Anything,
		string(models.OTPPurposeEmailVerification)).Return(nil).Once()

	account, err := s.svc.Register(context.Background(), models.RegisterRequest{
		Email:    "New@Example.com",
		Username: "newuser",
		Password: "long enough password",
	})

	s.Require().NoError(err)
	s.Equal("new@example.com", account.Email)
	s.Contains(s.sink.events, models.EventAccountRegistered)
	s.repo.AssertExpectations(s.T())
	s.sender.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestRegisterDuplicateEmail() {
	s.repo.On("Create", mock.Anything, mock.Anything).Return(domainErrors.ErrEmailExists).Once()

	_, err := s.svc.Register(context.Background(), models.RegisterRequest{
		Email:    "taken@example.com",
		Username: "someone",
		Password: "long enough password",
	})

	s.Require().ErrorIs(err, domainErrors.ErrEmailExists)
}

func (s *AuthServiceTestSuite) TestRegisterDeliveryFailureStillCreatesAccount() {
	s.repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	s.repo.On("SetOneTimeCode", mock.Anything, mock.Anything, mock.Anything,
		models.OTPPurposeEmailVerification, mock.Anything).Return(nil).Once()
	s.sender.On("SendCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(assert.AnError).Once()

	account, err := s.svc.Register(context.Background(), models.RegisterRequest{
		Email:    "new@example.com",
		Username: "newuser",
		Password: "long enough password",
	})

	s.Require().ErrorIs(err, domainErrors.ErrCodeDeliveryFailed)
	s.NotNil(account)
}

func (s *AuthServiceTestSuite) TestLogoutClearsSession() {
	account := s.activeAccount("correct horse")
	s.repo.On("ClearSession", mock.Anything, account.ID).Return(nil).Once()

	s.Require().NoError(s.svc.Logout(context.Background(), account.ID))
	s.repo.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestLogoutWithoutSession() {
	account := s.activeAccount("correct horse")
	s.repo.On("ClearSession", mock.Anything, account.ID).
		Return(domainErrors.ErrNoActiveSession).Once()

	err := s.svc.Logout(context.Background(), account.ID)
	s.Require().ErrorIs(err, domainErrors.ErrNoActiveSession)
}

func (s *AuthServiceTestSuite) TestChangePassword() {
	account := s.activeAccount("correct horse")
	s.repo.On("FindByID", mock.Anything, account.ID).Return(account, nil).Once()
	s.repo.On("UpdatePassword", mock.Anything, account.ID, mock.MatchedBy(func(hash string) bool {
		ok, err := s.hasher.Verify("brand new password", hash)
		return err == nil && ok
	})).Return(nil).Once()

	err := s.svc.ChangePassword(context.Background(), account.ID, "correct horse", "brand new password")

	s.Require().NoError(err)
	s.Contains(s.sink.events, models.EventPasswordChanged)
	s.repo.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestChangePasswordWrongCurrent() {
	account := s.activeAccount("correct horse")
	s.repo.On("FindByID", mock.Anything, account.ID).Return(account, nil).Once()

	err := s.svc.ChangePassword(context.Background(), account.ID, "not it", "brand new password")

	s.Require().ErrorIs(err, domainErrors.ErrInvalidCredentials)
	s.repo.AssertNotCalled(s.T(), "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
