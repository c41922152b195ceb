package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	domainErrors "github.com/shopforge/account-service/internal/domain/errors"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domainErrors.ErrAccountNotFound, http.StatusNotFound, "not_found"},
		{domainErrors.ErrInvalidCredentials, http.StatusUnauthorized, "unauthorized"},
		{domainErrors.ErrAccountBlocked, http.StatusUnauthorized, "unauthorized"},
		{domainErrors.ErrInvalidRefreshToken, http.StatusUnauthorized, "unauthorized"},
		{domainErrors.ErrRoleMismatch, http.StatusUnauthorized, "unauthorized"},
		{domainErrors.ErrAccountSuspended, http.StatusForbidden, "forbidden"},
		{domainErrors.ErrAccountNotActive, http.StatusForbidden, "forbidden"},
		{domainErrors.ErrEmailExists, http.StatusConflict, "conflict"},
		{domainErrors.ErrAlreadyActive, http.StatusConflict, "conflict"},
		{domainErrors.ErrInvalidCode, http.StatusBadRequest, "bad_request"},
		{domainErrors.ErrRateLimitExceeded, http.StatusTooManyRequests, "rate_limited"},
		{domainErrors.ErrCodeDeliveryFailed, http.StatusServiceUnavailable, "delivery_failed"},
		{fmt.Errorf("database on fire"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		status, code := classify(tc.err)
		assert.Equal(t, tc.status, status, "status for %v", tc.err)
		assert.Equal(t, tc.code, code, "code for %v", tc.err)
	}
}

func TestClassifyWrappedError(t *testing.T) {
	err := fmt.Errorf("while suspending: %w", domainErrors.ErrInvalidStateTransition)
	status, code := classify(err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "bad_request", code)
}
