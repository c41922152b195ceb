package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/shopforge/account-service/internal/domain/models"
)

// MockAccountRepository is a testify mock of repository.AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	args := m.Called(ctx, id)
	if acc, ok := args.Get(0).(*models.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	if acc, ok := args.Get(0).(*models.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	args := m.Called(ctx, username)
	if acc, ok := args.Get(0).(*models.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) FindByIDIncludingDeleted(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	args := m.Called(ctx, id)
	if acc, ok := args.Get(0).(*models.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) FindByRefreshTokenHash(ctx context.Context, tokenHash string) (*models.Account, error) {
	args := m.Called(ctx, tokenHash)
	if acc, ok := args.Get(0).(*models.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*models.Account, error) {
	args := m.Called(ctx, limit, offset)
	if accs, ok := args.Get(0).([]*models.Account); ok {
		return accs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) IncrementLoginAttempts(ctx context.Context, id uuid.UUID, threshold int) (int, bool, error) {
	args := m.Called(ctx, id, threshold)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *MockAccountRepository) ResetLoginAttempts(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccountRepository) SetSession(ctx context.Context, id uuid.UUID, session models.Session) error {
	args := m.Called(ctx, id, session)
	return args.Error(0)
}

func (m *MockAccountRepository) RotateSession(ctx context.Context, id uuid.UUID, oldHash string, session models.Session) error {
	args := m.Called(ctx, id, oldHash, session)
	return args.Error(0)
}

func (m *MockAccountRepository) ClearSession(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.AccountStatus, reason *string) error {
	args := m.Called(ctx, id, status, reason)
	return args.Error(0)
}

func (m *MockAccountRepository) Suspend(ctx context.Context, id uuid.UUID, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockAccountRepository) SetOneTimeCode(ctx context.Context, id uuid.UUID, codeHash string, purpose models.OTPPurpose, expiresAt time.Time) error {
	args := m.Called(ctx, id, codeHash, purpose, expiresAt)
	return args.Error(0)
}

func (m *MockAccountRepository) ClearOneTimeCode(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccountRepository) ActivateWithCode(ctx context.Context, id uuid.UUID, codeHash string) error {
	args := m.Called(ctx, id, codeHash)
	return args.Error(0)
}

func (m *MockAccountRepository) MarkResetVerified(ctx context.Context, id uuid.UUID, codeHash string) error {
	args := m.Called(ctx, id, codeHash)
	return args.Error(0)
}

func (m *MockAccountRepository) CompletePasswordReset(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockAccountRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccountRepository) Restore(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccountRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCodeSender records delivered codes.
type MockCodeSender struct {
	mock.Mock
}

func (m *MockCodeSender) SendCode(ctx context.Context, email, code, purpose string) error {
	args := m.Called(ctx, email, code, purpose)
	return args.Error(0)
}

// recordingSink collects dispatched events for assertions.
type recordingSink struct {
	events []string
}

func (s *recordingSink) Dispatch(eventType, _ string, _ interface{}) {
	s.events = append(s.events, eventType)
}
