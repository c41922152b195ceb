package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainErrors "github.com/shopforge/account-service/internal/domain/errors"
	"github.com/shopforge/account-service/internal/domain/models"
	"github.com/shopforge/account-service/internal/domain/repository"
)

// AccountService implements the account lifecycle: the status machine,
// soft-delete with restore, and hard delete.
type AccountService struct {
	repo   repository.AccountRepository
	events EventSink
	logger *zap.Logger
}

func NewAccountService(repo repository.AccountRepository, events EventSink, logger *zap.Logger) *AccountService {
	return &AccountService{
		repo:   repo,
		events: events,
		logger: logger,
	}
}

func (s *AccountService) Get(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *AccountService) List(ctx context.Context, limit, offset int) ([]*models.Account, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// Suspend moves an account to suspended and revokes its session so already
// issued refresh tokens die immediately. A reason is mandatory.
func (s *AccountService) Suspend(ctx context.Context, id uuid.UUID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domainErrors.ErrSuspensionReasonEmpty
	}

	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !account.CanTransitionTo(models.AccountStatusSuspended) {
		return domainErrors.ErrInvalidStateTransition
	}

	if err := s.repo.Suspend(ctx, id, reason); err != nil {
		return err
	}

	s.events.Dispatch(models.EventAccountSuspended, id.String(), models.AccountEventPayload{
		AccountID: id.String(),
		Status:    string(models.AccountStatusSuspended),
		Reason:    reason,
		At:        time.Now().UTC(),
	})
	return nil
}

// Resume lifts a suspension, returning the account to active and clearing
// the stored reason.
func (s *AccountService) Resume(ctx context.Context, id uuid.UUID) error {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if account.Status != models.AccountStatusSuspended {
		return domainErrors.ErrInvalidStateTransition
	}

	if err := s.repo.UpdateStatus(ctx, id, models.AccountStatusActive, nil); err != nil {
		return err
	}

	s.events.Dispatch(models.EventAccountResumed, id.String(), models.AccountEventPayload{
		AccountID: id.String(),
		Status:    string(models.AccountStatusActive),
		At:        time.Now().UTC(),
	})
	return nil
}

// Unblock resets the lockout counter so the account may attempt login again.
func (s *AccountService) Unblock(ctx context.Context, id uuid.UUID) error {
	return s.repo.ResetLoginAttempts(ctx, id)
}

// SoftDelete hides the account from all lookups and revokes its session and
// any pending code. The row survives for Restore.
func (s *AccountService) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.events.Dispatch(models.EventAccountDeleted, id.String(), models.AccountEventPayload{
		AccountID: id.String(),
		At:        time.Now().UTC(),
	})
	return nil
}

// Restore brings a soft-deleted account back. It is an error to restore an
// account that was never deleted.
func (s *AccountService) Restore(ctx context.Context, id uuid.UUID) error {
	account, err := s.repo.FindByIDIncludingDeleted(ctx, id)
	if err != nil {
		return err
	}
	if !account.IsDeleted() {
		return domainErrors.ErrInvalidStateTransition
	}

	if err := s.repo.Restore(ctx, id); err != nil {
		return err
	}
	s.events.Dispatch(models.EventAccountRestored, id.String(), models.AccountEventPayload{
		AccountID: id.String(),
		Status:    string(account.Status),
		At:        time.Now().UTC(),
	})
	return nil
}

// HardDelete removes the row permanently. Only soft-deleted accounts may be
// purged; this makes accidental irreversible deletion a two-step mistake.
func (s *AccountService) HardDelete(ctx context.Context, id uuid.UUID) error {
	account, err := s.repo.FindByIDIncludingDeleted(ctx, id)
	if err != nil {
		return err
	}
	if !account.IsDeleted() {
		return domainErrors.ErrInvalidStateTransition
	}
	return s.repo.HardDelete(ctx, id)
}
