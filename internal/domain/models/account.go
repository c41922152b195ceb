package models

import (
	"time"

	"github.com/google/uuid"
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountStatusInactive  AccountStatus = "inactive"
	AccountStatusActive    AccountStatus = "active"
	AccountStatusSuspended AccountStatus = "suspended"
)

// AccountRole controls access to administrative operations.
type AccountRole string

const (
	RoleUser  AccountRole = "user"
	RoleAdmin AccountRole = "admin"
)

// OTPPurpose names what a pending one-time code is allowed to do.
type OTPPurpose string

const (
	OTPPurposeEmailVerification OTPPurpose = "email_verification"
	OTPPurposePasswordReset     OTPPurpose = "password_reset"
)

// Account is the aggregate root of the service. A single credential row also
// carries the current session (refresh token hash + session id) and the
// pending one-time code, so most state changes are single-row updates.
type Account struct {
	ID           uuid.UUID     `json:"id"`
	Email        string        `json:"email"`
	Username     string        `json:"username"`
	PasswordHash string        `json:"-"`
	Status       AccountStatus `json:"status"`
	Role         AccountRole   `json:"role"`

	LoginAttempts    int     `json:"-"`
	IsBlocked        bool    `json:"-"`
	SuspensionReason *string `json:"suspension_reason,omitempty"`

	RefreshTokenHash *string    `json:"-"`
	RefreshExpiresAt *time.Time `json:"-"`
	SessionID        *uuid.UUID `json:"-"`

	OTPCodeHash   *string     `json:"-"`
	OTPExpiresAt  *time.Time  `json:"-"`
	OTPPurpose    *OTPPurpose `json:"-"`
	ResetVerified bool        `json:"-"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`
}

// IsDeleted reports whether the account is soft-deleted.
func (a *Account) IsDeleted() bool {
	return a.DeletedAt != nil
}

// HasLiveSession reports whether the account holds an unexpired refresh
// session at the given instant.
func (a *Account) HasLiveSession(now time.Time) bool {
	return a.RefreshTokenHash != nil &&
		a.RefreshExpiresAt != nil &&
		a.RefreshExpiresAt.After(now)
}

// CanTransitionTo reports whether moving the account to target is a legal
// lifecycle transition.
func (a *Account) CanTransitionTo(target AccountStatus) bool {
	switch a.Status {
	case AccountStatusInactive:
		return target == AccountStatusActive || target == AccountStatusSuspended
	case AccountStatusActive:
		return target == AccountStatusSuspended
	case AccountStatusSuspended:
		return target == AccountStatusActive
	}
	return false
}
