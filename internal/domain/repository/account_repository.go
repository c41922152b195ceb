package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shopforge/account-service/internal/domain/models"
)

// AccountRepository persists accounts. Mutations that race with each other
// (attempt counting, session rotation, code consumption) are expressed as
// single guarded statements so concurrency is resolved at the database, not
// in application locks.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error

	// FindByID, FindByEmail and FindByUsername exclude soft-deleted rows.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByUsername(ctx context.Context, username string) (*models.Account, error)
	// FindByIDIncludingDeleted is used by restore and hard delete.
	FindByIDIncludingDeleted(ctx context.Context, id uuid.UUID) (*models.Account, error)
	// FindByRefreshTokenHash resolves the account holding the given refresh
	// session. ErrInvalidRefreshToken when no live row matches.
	FindByRefreshTokenHash(ctx context.Context, tokenHash string) (*models.Account, error)
	List(ctx context.Context, limit, offset int) ([]*models.Account, error)

	// IncrementLoginAttempts atomically bumps the failed-attempt counter and
	// flips is_blocked when the incremented value reaches threshold. Returns
	// the post-increment counter and blocked flag.
	IncrementLoginAttempts(ctx context.Context, id uuid.UUID, threshold int) (attempts int, blocked bool, err error)
	ResetLoginAttempts(ctx context.Context, id uuid.UUID) error

	// SetSession installs a fresh refresh session, displacing any previous one.
	SetSession(ctx context.Context, id uuid.UUID, session models.Session) error
	// RotateSession replaces the session only if the stored hash still equals
	// oldHash. A zero-row update means the presented token was already
	// rotated (replay or lost race) and surfaces as ErrInvalidRefreshToken.
	RotateSession(ctx context.Context, id uuid.UUID, oldHash string, session models.Session) error
	// ClearSession revokes the live session. Guarded on session_id being
	// set, so of two concurrent logouts only one succeeds; the other gets
	// ErrNoActiveSession.
	ClearSession(ctx context.Context, id uuid.UUID) error

	UpdateStatus(ctx context.Context, id uuid.UUID, status models.AccountStatus, reason *string) error
	// Suspend records the status, the reason and the session revocation in a
	// single statement, so no live session ever coexists with suspension.
	Suspend(ctx context.Context, id uuid.UUID, reason string) error

	// UpdatePassword stores a new password hash for the authenticated
	// change-password flow. The refresh session stays live.
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	// SetOneTimeCode installs a pending code, displacing any previous one.
	SetOneTimeCode(ctx context.Context, id uuid.UUID, codeHash string, purpose models.OTPPurpose, expiresAt time.Time) error
	ClearOneTimeCode(ctx context.Context, id uuid.UUID) error
	// ActivateWithCode consumes a pending email-verification code and moves
	// the account to active in one guarded update.
	ActivateWithCode(ctx context.Context, id uuid.UUID, codeHash string) error
	// MarkResetVerified consumes a pending password-reset code and records
	// that a reset may proceed.
	MarkResetVerified(ctx context.Context, id uuid.UUID, codeHash string) error
	// CompletePasswordReset sets the new password hash, clears the reset
	// marker and any live session. Fails with ErrResetNotVerified when no
	// verified reset is pending.
	CompletePasswordReset(ctx context.Context, id uuid.UUID, passwordHash string) error

	SoftDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
	HardDelete(ctx context.Context, id uuid.UUID) error
}
