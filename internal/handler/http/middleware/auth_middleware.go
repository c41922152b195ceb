package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainErrors "github.com/shopforge/account-service/internal/domain/errors"
	"github.com/shopforge/account-service/internal/domain/models"
	"github.com/shopforge/account-service/internal/domain/repository"
	"github.com/shopforge/account-service/internal/service"
)

// Context keys set by the guard chain.
const (
	ContextClaimsKey  = "claims"
	ContextAccountKey = "account"
)

// AccessTokenCookie is the HttpOnly cookie carrying the access token for
// browser clients; API clients use the Authorization header instead.
const AccessTokenCookie = "access_token"

// GuardChain holds the dependencies of the per-request guards. Guards are
// applied in a fixed order: authenticate, then account-state checks, then
// session liveness, then rate limiting, then role. Each guard assumes its
// predecessors ran.
type GuardChain struct {
	tokens *service.TokenService
	repo   repository.AccountRepository
	logger *zap.Logger
}

func NewGuardChain(tokens *service.TokenService, repo repository.AccountRepository, logger *zap.Logger) *GuardChain {
	return &GuardChain{
		tokens: tokens,
		repo:   repo,
		logger: logger,
	}
}

// Authenticate verifies the Bearer access token, loads the account and
// stores both in the request context. Blocked and soft-deleted accounts are
// rejected here.
func (g *GuardChain) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if header := c.GetHeader("Authorization"); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				abortUnauthorized(c, "authorization header must be a bearer token")
				return
			}
			tokenString = parts[1]
		} else if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
			tokenString = cookie
		}
		if tokenString == "" {
			abortUnauthorized(c, "access token required")
			return
		}

		claims, err := g.tokens.VerifyAccess(tokenString)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		account, err := g.repo.FindByID(c.Request.Context(), claims.AccountID)
		if err != nil {
			// A token for a deleted account is indistinguishable from a
			// forged one.
			abortUnauthorized(c, domainErrors.ErrInvalidToken.Error())
			return
		}
		if account.IsBlocked {
			abortUnauthorized(c, domainErrors.ErrAccountBlocked.Error())
			return
		}

		c.Set(ContextClaimsKey, claims)
		c.Set(ContextAccountKey, account)
		c.Next()
	}
}

// RequireNotSuspended rejects suspended accounts with 403.
func (g *GuardChain) RequireNotSuspended() gin.HandlerFunc {
	return func(c *gin.Context) {
		account := AccountFromContext(c)
		if account == nil {
			abortUnauthorized(c, domainErrors.ErrUnauthorized.Error())
			return
		}
		if account.Status == models.AccountStatusSuspended {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": domainErrors.ErrAccountSuspended.Error(),
				"code":  "forbidden",
			})
			return
		}
		c.Next()
	}
}

// RequireLiveSession rejects access tokens whose session has been rotated
// away or revoked. An otherwise valid token outliving its session gets 401.
func (g *GuardChain) RequireLiveSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFromContext(c)
		account := AccountFromContext(c)
		if claims == nil || account == nil {
			abortUnauthorized(c, domainErrors.ErrUnauthorized.Error())
			return
		}
		if account.SessionID == nil {
			abortUnauthorized(c, domainErrors.ErrNoActiveSession.Error())
			return
		}
		if *account.SessionID != claims.SessionID {
			abortUnauthorized(c, domainErrors.ErrStaleSession.Error())
			return
		}
		c.Next()
	}
}

// RequireRole rejects accounts whose role differs from required. Role
// mismatch is reported as 401, not 403: the token simply does not authorize
// the route.
func (g *GuardChain) RequireRole(required models.AccountRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFromContext(c)
		if claims == nil {
			abortUnauthorized(c, domainErrors.ErrUnauthorized.Error())
			return
		}
		if claims.Role != required {
			g.logger.Warn("Role mismatch",
				zap.String("required", string(required)),
				zap.String("actual", string(claims.Role)),
				zap.String("path", c.Request.URL.Path))
			abortUnauthorized(c, domainErrors.ErrRoleMismatch.Error())
			return
		}
		c.Next()
	}
}

// ClaimsFromContext returns the access claims set by Authenticate, or nil.
func ClaimsFromContext(c *gin.Context) *models.AccessClaims {
	v, ok := c.Get(ContextClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*models.AccessClaims)
	return claims
}

// AccountFromContext returns the account loaded by Authenticate, or nil.
func AccountFromContext(c *gin.Context) *models.Account {
	v, ok := c.Get(ContextAccountKey)
	if !ok {
		return nil
	}
	account, _ := v.(*models.Account)
	return account
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": message,
		"code":  "unauthorized",
	})
}
