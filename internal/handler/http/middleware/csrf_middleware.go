package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shopforge/account-service/internal/config"
	domainErrors "github.com/shopforge/account-service/internal/domain/errors"
	"github.com/shopforge/account-service/internal/infrastructure/security"
	"github.com/shopforge/account-service/internal/utils/metrics"
)

const csrfTokenByteLength = 32

// safeMethods never mutate state and bypass the CSRF check.
var safeMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodOptions: true,
	http.MethodTrace:   true,
}

// CSRFGuard implements the double-submit-cookie pattern: the client echoes
// the value of a non-HttpOnly cookie in a request header, which a cross-site
// attacker cannot read. Stateless: nothing is stored server-side.
type CSRFGuard struct {
	cfg    config.CSRFConfig
	logger *zap.Logger
	exempt []string
}

// NewCSRFGuard creates the guard. exemptPaths are matched exactly against
// the request path; they cover pre-auth endpoints that a fresh client must
// reach before it could have fetched a token.
func NewCSRFGuard(cfg config.CSRFConfig, exemptPaths []string, logger *zap.Logger) *CSRFGuard {
	return &CSRFGuard{
		cfg:    cfg,
		logger: logger,
		exempt: exemptPaths,
	}
}

// Protect verifies the cookie/header pair on every unsafe request.
func (g *CSRFGuard) Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.cfg.Enabled || safeMethods[c.Request.Method] || g.isExempt(c.Request.URL.Path) {
			c.Next()
			return
		}

		cookie, err := c.Cookie(g.cfg.CookieName)
		header := c.GetHeader(g.cfg.HeaderName)
		if err != nil || cookie == "" || header == "" ||
			subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) != 1 {
			metrics.CSRFRejectionsTotal.Inc()
			g.logger.Warn("CSRF check failed",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": domainErrors.ErrCSRFMismatch.Error(),
				"code":  "forbidden",
			})
			return
		}
		c.Next()
	}
}

// IssueToken generates a fresh token and sets the cookie. The cookie is
// deliberately not HttpOnly; the whole scheme depends on the page script
// reading it back into the header.
func (g *CSRFGuard) IssueToken(c *gin.Context) (string, error) {
	token, err := security.GenerateOpaqueToken(csrfTokenByteLength)
	if err != nil {
		return "", err
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(g.cfg.CookieName, token, 0, "/", "", g.cfg.Secure, false)
	return token, nil
}

func (g *CSRFGuard) isExempt(path string) bool {
	for _, p := range g.exempt {
		if p == path {
			return true
		}
	}
	return false
}
