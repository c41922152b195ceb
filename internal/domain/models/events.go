package models

import "time"

// Event types published to the account events topic.
const (
	EventAccountRegistered = "account.registered"
	EventAccountActivated  = "account.activated"
	EventAccountBlocked    = "account.blocked"
	EventAccountSuspended  = "account.suspended"
	EventAccountResumed    = "account.resumed"
	EventAccountDeleted    = "account.deleted"
	EventAccountRestored   = "account.restored"
	EventLoginSucceeded    = "account.login_succeeded"
	EventLoginFailed       = "account.login_failed"
	EventPasswordReset     = "account.password_reset"
	EventPasswordChanged   = "account.password_changed"
)

// AccountEventPayload is the data section of every account lifecycle event.
type AccountEventPayload struct {
	AccountID string    `json:"account_id"`
	Email     string    `json:"email,omitempty"`
	Username  string    `json:"username,omitempty"`
	Status    string    `json:"status,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	At        time.Time `json:"at"`
}

// LoginEventPayload is the data section of login outcome events.
type LoginEventPayload struct {
	AccountID string    `json:"account_id,omitempty"`
	Email     string    `json:"email"`
	Attempts  int       `json:"attempts,omitempty"`
	Blocked   bool      `json:"blocked,omitempty"`
	At        time.Time `json:"at"`
}
