package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainErrors "github.com/shopforge/account-service/internal/domain/errors"
)

// ResponseError is the error body of every non-2xx API response.
type ResponseError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ResponseSuccess wraps successful responses that carry a message.
type ResponseSuccess struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// RespondWithError translates a domain error into an HTTP response. The body
// carries the sentinel's message, never internal detail.
func RespondWithError(c *gin.Context, err error, logger *zap.Logger) {
	statusCode, code := classify(err)

	message := err.Error()
	if statusCode == http.StatusInternalServerError {
		logger.Error("Internal error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		message = domainErrors.ErrInternal.Error()
	}

	c.AbortWithStatusJSON(statusCode, ResponseError{
		Error: message,
		Code:  code,
	})
}

func classify(err error) (int, string) {
	switch {
	case domainErrors.IsNotFound(err):
		return http.StatusNotFound, "not_found"
	case domainErrors.IsUnauthorized(err):
		return http.StatusUnauthorized, "unauthorized"
	case domainErrors.IsForbidden(err):
		return http.StatusForbidden, "forbidden"
	case domainErrors.IsConflict(err):
		return http.StatusConflict, "conflict"
	case domainErrors.IsBadRequest(err):
		return http.StatusBadRequest, "bad_request"
	case domainErrors.IsRateLimited(err):
		return http.StatusTooManyRequests, "rate_limited"
	case domainErrors.IsRetryable(err):
		return http.StatusServiceUnavailable, "delivery_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// RespondWithSuccess sends a response with a message and optional data.
func RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, ResponseSuccess{
		Message: message,
		Data:    data,
	})
}

// RespondWithData sends a bare data response.
func RespondWithData(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// RespondWithNoContent sends an empty 204 response.
func RespondWithNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
