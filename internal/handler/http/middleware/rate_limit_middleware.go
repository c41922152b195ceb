package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainErrors "github.com/shopforge/account-service/internal/domain/errors"
	"github.com/shopforge/account-service/internal/utils/metrics"
)

// allowFunc asks the limiter whether the request identified by key fits the
// current window.
type allowFunc func(ctx context.Context, key string) (bool, error)

// RateLimitByIP throttles unauthenticated endpoints per client IP.
func RateLimitByIP(allow allowFunc, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limitOrNext(c, allow, c.ClientIP(), logger)
	}
}

// RateLimitByAccount throttles authenticated endpoints per account. Must run
// after Authenticate.
func RateLimitByAccount(allow allowFunc, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFromContext(c)
		if claims == nil {
			abortUnauthorized(c, domainErrors.ErrUnauthorized.Error())
			return
		}
		limitOrNext(c, allow, claims.AccountID.String(), logger)
	}
}

func limitOrNext(c *gin.Context, allow allowFunc, key string, logger *zap.Logger) {
	ok, err := allow(c.Request.Context(), key)
	if err != nil {
		// Limiter store errors already fail open inside the limiter; log and
		// continue.
		logger.Debug("Rate limiter error", zap.Error(err))
	}
	if !ok {
		metrics.RateLimitRejectionsTotal.Inc()
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": domainErrors.ErrRateLimitExceeded.Error(),
			"code":  "rate_limited",
		})
		return
	}
	c.Next()
}
