package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/shopforge/account-service/internal/domain/errors"
	"github.com/shopforge/account-service/internal/domain/models"
	"github.com/shopforge/account-service/internal/domain/repository"
)

const uniqueViolationCode = "23505"

type pgxAccountRepository struct {
	pool *pgxpool.Pool
}

// NewPgxAccountRepository creates an AccountRepository backed by a pgx pool.
func NewPgxAccountRepository(pool *pgxpool.Pool) repository.AccountRepository {
	return &pgxAccountRepository{pool: pool}
}

const accountColumns = `
	id, email, username, password_hash, status, role,
	login_attempts, is_blocked, suspension_reason,
	refresh_token_hash, refresh_expires_at, session_id,
	otp_code_hash, otp_expires_at, otp_purpose, reset_verified,
	created_at, updated_at, deleted_at`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.ID, &a.Email, &a.Username, &a.PasswordHash, &a.Status, &a.Role,
		&a.LoginAttempts, &a.IsBlocked, &a.SuspensionReason,
		&a.RefreshTokenHash, &a.RefreshExpiresAt, &a.SessionID,
		&a.OTPCodeHash, &a.OTPExpiresAt, &a.OTPPurpose, &a.ResetVerified,
		&a.CreatedAt, &a.UpdatedAt, &a.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	return &a, nil
}

func (r *pgxAccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, email, username, password_hash, status, role)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query,
		account.ID, account.Email, account.Username, account.PasswordHash, account.Status, account.Role)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			switch pgErr.ConstraintName {
			case "accounts_email_key":
				return domainErrors.ErrEmailExists
			case "accounts_username_key":
				return domainErrors.ErrUsernameExists
			}
			return domainErrors.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *pgxAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE id = $1 AND deleted_at IS NULL`, accountColumns)
	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

func (r *pgxAccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE email = $1 AND deleted_at IS NULL`, accountColumns)
	return scanAccount(r.pool.QueryRow(ctx, query, email))
}

func (r *pgxAccountRepository) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE username = $1 AND deleted_at IS NULL`, accountColumns)
	return scanAccount(r.pool.QueryRow(ctx, query, username))
}

func (r *pgxAccountRepository) FindByIDIncludingDeleted(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE id = $1`, accountColumns)
	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

func (r *pgxAccountRepository) FindByRefreshTokenHash(ctx context.Context, tokenHash string) (*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE refresh_token_hash = $1 AND deleted_at IS NULL`, accountColumns)
	account, err := scanAccount(r.pool.QueryRow(ctx, query, tokenHash))
	if err != nil {
		if errors.Is(err, domainErrors.ErrAccountNotFound) {
			return nil, domainErrors.ErrInvalidRefreshToken
		}
		return nil, err
	}
	return account, nil
}

func (r *pgxAccountRepository) List(ctx context.Context, limit, offset int) ([]*models.Account, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM accounts
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, accountColumns)
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// IncrementLoginAttempts bumps the counter and flips is_blocked in one
// statement so concurrent failed logins each observe a distinct count.
func (r *pgxAccountRepository) IncrementLoginAttempts(ctx context.Context, id uuid.UUID, threshold int) (int, bool, error) {
	query := `
		UPDATE accounts
		SET login_attempts = login_attempts + 1,
		    is_blocked = (login_attempts + 1 >= $2),
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING login_attempts, is_blocked`
	var attempts int
	var blocked bool
	err := r.pool.QueryRow(ctx, query, id, threshold).Scan(&attempts, &blocked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, domainErrors.ErrAccountNotFound
		}
		return 0, false, fmt.Errorf("failed to increment login attempts: %w", err)
	}
	return attempts, blocked, nil
}

func (r *pgxAccountRepository) ResetLoginAttempts(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE accounts
		SET login_attempts = 0, is_blocked = FALSE, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`
	return r.execExpectingRow(ctx, query, domainErrors.ErrAccountNotFound, id)
}

func (r *pgxAccountRepository) SetSession(ctx context.Context, id uuid.UUID, session models.Session) error {
	query := `
		UPDATE accounts
		SET refresh_token_hash = $2, refresh_expires_at = $3, session_id = $4, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`
	return r.execExpectingRow(ctx, query, domainErrors.ErrAccountNotFound,
		id, session.RefreshTokenHash, session.ExpiresAt, session.SessionID)
}

// RotateSession is a compare-and-swap on the stored hash. Losing the race
// (or replaying an already-rotated token) matches zero rows.
func (r *pgxAccountRepository) RotateSession(ctx context.Context, id uuid.UUID, oldHash string, session models.Session) error {
	query := `
		UPDATE accounts
		SET refresh_token_hash = $3, refresh_expires_at = $4, session_id = $5, updated_at = NOW()
		WHERE id = $1 AND refresh_token_hash = $2 AND deleted_at IS NULL`
	return r.execExpectingRow(ctx, query, domainErrors.ErrInvalidRefreshToken,
		id, oldHash, session.RefreshTokenHash, session.ExpiresAt, session.SessionID)
}

// ClearSession revokes the live session. The session_id guard makes
// concurrent logouts race for a single winner; the loser sees
// ErrNoActiveSession.
func (r *pgxAccountRepository) ClearSession(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE accounts
		SET refresh_token_hash = NULL, refresh_expires_at = NULL, session_id = NULL, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL AND session_id IS NOT NULL`
	return r.execExpectingRow(ctx, query, domainErrors.ErrNoActiveSession, id)
}

func (r *pgxAccountRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.AccountStatus, reason *string) error {
	query := `
		UPDATE accounts
		SET status = $2, suspension_reason = $3, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`
	return r.execExpectingRow(ctx, query, domainErrors.ErrAccountNotFound, id, status, reason)
}

func (r *pgxAccountRepository) Suspend(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE accounts
		SET status = $2, suspension_reason = $3,
		    refresh_token_hash = NULL, refresh_expires_at = NULL, session_id = NULL,
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`
	return r.execExpectingRow(ctx, query, domainErrors.ErrAccountNotFound, id, models.AccountStatusSuspended, reason)
}

func (r *pgxAccountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `
		UPDATE accounts
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`
	return r.execExpectingRow(ctx, query, domainErrors.ErrAccountNotFound, id, passwordHash)
}

func (r *pgxAccountRepository) SetOneTimeCode(ctx context.Context, id uuid.UUID, codeHash string, purpose models.OTPPurpose, expiresAt time.Time) error {
	query := `
		UPDATE accounts
		SET otp_code_hash = $2, otp_expires_at = $3, otp_purpose = $4, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`
	return r.execExpectingRow(ctx, query, domainErrors.ErrAccountNotFound, id, codeHash, expiresAt, purpose)
}

func (r *pgxAccountRepository) ClearOneTimeCode(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE accounts
		SET otp_code_hash = NULL, otp_expires_at = NULL, otp_purpose = NULL, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`
	return r.execExpectingRow(ctx, query, domainErrors.ErrAccountNotFound, id)
}

// ActivateWithCode activates the account and consumes the code in one guarded
// update; a second verify with the same code matches zero rows.
func (r *pgxAccountRepository) ActivateWithCode(ctx context.Context, id uuid.UUID, codeHash string) error {
	query := `
		UPDATE accounts
		SET status = $3,
		    otp_code_hash = NULL, otp_expires_at = NULL, otp_purpose = NULL,
		    updated_at = NOW()
		WHERE id = $1 AND otp_code_hash = $2 AND otp_expires_at > NOW()
		  AND otp_purpose = $4 AND deleted_at IS NULL`
	return r.execExpectingRow(ctx, query, domainErrors.ErrInvalidCode,
		id, codeHash, models.AccountStatusActive, models.OTPPurposeEmailVerification)
}

func (r *pgxAccountRepository) MarkResetVerified(ctx context.Context, id uuid.UUID, codeHash string) error {
	query := `
		UPDATE accounts
		SET reset_verified = TRUE,
		    otp_code_hash = NULL, otp_expires_at = NULL, otp_purpose = NULL,
		    updated_at = NOW()
		WHERE id = $1 AND otp_code_hash = $2 AND otp_expires_at > NOW()
		  AND otp_purpose = $3 AND deleted_at IS NULL`
	return r.execExpectingRow(ctx, query, domainErrors.ErrInvalidCode,
		id, codeHash, models.OTPPurposePasswordReset)
}

// CompletePasswordReset rotates the credential, drops the reset marker and
// revokes any live session so stolen refresh tokens die with the password.
func (r *pgxAccountRepository) CompletePasswordReset(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `
		UPDATE accounts
		SET password_hash = $2, reset_verified = FALSE,
		    login_attempts = 0, is_blocked = FALSE,
		    refresh_token_hash = NULL, refresh_expires_at = NULL, session_id = NULL,
		    updated_at = NOW()
		WHERE id = $1 AND reset_verified = TRUE AND deleted_at IS NULL`
	return r.execExpectingRow(ctx, query, domainErrors.ErrResetNotVerified, id, passwordHash)
}

func (r *pgxAccountRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE accounts
		SET deleted_at = NOW(),
		    refresh_token_hash = NULL, refresh_expires_at = NULL, session_id = NULL,
		    otp_code_hash = NULL, otp_expires_at = NULL, otp_purpose = NULL,
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`
	return r.execExpectingRow(ctx, query, domainErrors.ErrAccountNotFound, id)
}

func (r *pgxAccountRepository) Restore(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE accounts
		SET deleted_at = NULL, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NOT NULL`
	return r.execExpectingRow(ctx, query, domainErrors.ErrAccountNotFound, id)
}

func (r *pgxAccountRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM accounts WHERE id = $1`
	return r.execExpectingRow(ctx, query, domainErrors.ErrAccountNotFound, id)
}

// execExpectingRow runs an update that must touch exactly one row, returning
// notMatched when the guard clause filtered everything out.
func (r *pgxAccountRepository) execExpectingRow(ctx context.Context, query string, notMatched error, args ...interface{}) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to execute update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notMatched
	}
	return nil
}
