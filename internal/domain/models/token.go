package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims are the registered + private claims carried by an access
// token. SessionID ties the token to the refresh session it was minted
// under; logout or rotation of that session invalidates the token for
// session-bound routes.
type AccessClaims struct {
	AccountID uuid.UUID   `json:"-"`
	Role      AccountRole `json:"role"`
	SessionID uuid.UUID   `json:"sid"`
	jwt.RegisteredClaims
}

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// Session describes the refresh-session state persisted on the account row.
type Session struct {
	SessionID        uuid.UUID
	RefreshTokenHash string
	ExpiresAt        time.Time
}
