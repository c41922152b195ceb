package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the account-security domain. Handlers translate these
// to HTTP statuses through the classifier helpers below; services never
// reference HTTP status codes directly.
var (
	// General errors.
	ErrInternal       = errors.New("internal server error")
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyExists  = errors.New("resource already exists")
	ErrForbidden      = errors.New("access denied")
	ErrUnauthorized   = errors.New("unauthorized")

	// Authentication errors.
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidToken        = errors.New("invalid token")
	ErrExpiredToken        = errors.New("token expired")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrStaleSession        = errors.New("session is no longer valid")
	ErrNoActiveSession     = errors.New("no active session")

	// Account errors.
	ErrAccountNotFound  = errors.New("account not found")
	ErrEmailExists      = errors.New("email already in use")
	ErrUsernameExists   = errors.New("username already in use")
	ErrAccountBlocked   = errors.New("account is blocked")
	ErrAccountSuspended = errors.New("account is suspended")
	ErrAccountNotActive = errors.New("account is not activated")
	ErrAlreadyActive    = errors.New("account is already active")

	// State-machine errors.
	ErrInvalidStateTransition = errors.New("invalid account state transition")
	ErrSuspensionReasonEmpty  = errors.New("suspension reason is required")

	// One-time-code errors.
	ErrNoActiveCode     = errors.New("no active verification code")
	ErrInvalidCode      = errors.New("incorrect verification code")
	ErrExpiredCode      = errors.New("verification code expired")
	ErrResetNotVerified = errors.New("password reset has not been verified")

	// Request-guard errors.
	ErrCSRFMismatch      = errors.New("csrf token missing or mismatched")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrRoleMismatch      = errors.New("role does not permit this operation")

	// Collaborator errors.
	ErrCodeDeliveryFailed = errors.New("failed to deliver verification code")
)

// AppError carries a caller-safe message and an API error code alongside the
// wrapped cause.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
	Code       string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new application error.
func NewAppError(err error, message string, statusCode int, code string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: statusCode,
		Code:       code,
	}
}

// IsNotFound reports whether err maps to the NotFound class.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAccountNotFound)
}

// IsUnauthorized reports whether err maps to the Unauthorized class: bad
// credentials, blocked accounts, invalid/expired/reused tokens, expired
// codes, stale sessions, and role mismatches.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrAccountBlocked) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrInvalidRefreshToken) ||
		errors.Is(err, ErrStaleSession) ||
		errors.Is(err, ErrNoActiveSession) ||
		errors.Is(err, ErrExpiredCode) ||
		errors.Is(err, ErrRoleMismatch)
}

// IsForbidden reports whether err maps to the Forbidden class: suspended
// accounts, unverified accounts, and CSRF mismatches.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrAccountSuspended) ||
		errors.Is(err, ErrAccountNotActive) ||
		errors.Is(err, ErrCSRFMismatch)
}

// IsConflict reports whether err maps to the Conflict class.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrEmailExists) ||
		errors.Is(err, ErrUsernameExists) ||
		errors.Is(err, ErrAlreadyActive)
}

// IsBadRequest reports whether err maps to the BadRequest class: malformed
// requests, incorrect codes, and invalid state-transition requests.
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidCode) ||
		errors.Is(err, ErrNoActiveCode) ||
		errors.Is(err, ErrInvalidStateTransition) ||
		errors.Is(err, ErrSuspensionReasonEmpty) ||
		errors.Is(err, ErrResetNotVerified)
}

// IsRateLimited reports whether err maps to the TooManyRequests class.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimitExceeded)
}

// IsRetryable reports whether err is a transient collaborator failure the
// caller should retry, not a rejection of the request itself.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrCodeDeliveryFailed)
}
