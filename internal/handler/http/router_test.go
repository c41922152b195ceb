package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/shopforge/account-service/internal/config"
	"github.com/shopforge/account-service/internal/handler/http/middleware"
	"github.com/shopforge/account-service/internal/infrastructure/ratelimit"
)

func TestRouteTable(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.CORSOrigins = []string{"http://localhost:3000"}
	cfg.Security.CSRF.HeaderName = "X-CSRF-Token"

	router := NewRouter(RouterDeps{
		Config:  cfg,
		Logger:  zap.NewNop(),
		Auth:    &AuthHandler{},
		OTP:     &OTPHandler{},
		Admin:   &AdminHandler{},
		CSRF:    &CSRFHandler{},
		Health:  &HealthHandler{},
		Guards:  &middleware.GuardChain{},
		CSRFMid: middleware.NewCSRFGuard(cfg.Security.CSRF, CSRFExemptPaths(), zap.NewNop()),
		Limiter: &ratelimit.Limiter{},
	})

	registered := make(map[string]bool)
	for _, route := range router.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"POST /api/v1/auth/register",
		"POST /api/v1/auth/login",
		"POST /api/v1/auth/refresh-token",
		"POST /api/v1/auth/logout",
		"POST /api/v1/otp/verify-otp",
		"POST /api/v1/otp/resend-otp",
		"GET /api/v1/csrf/token",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}

func TestCSRFExemptPathsAreRegistered(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.CORSOrigins = []string{"http://localhost:3000"}
	cfg.Security.CSRF.HeaderName = "X-CSRF-Token"

	router := NewRouter(RouterDeps{
		Config:  cfg,
		Logger:  zap.NewNop(),
		Auth:    &AuthHandler{},
		OTP:     &OTPHandler{},
		Admin:   &AdminHandler{},
		CSRF:    &CSRFHandler{},
		Health:  &HealthHandler{},
		Guards:  &middleware.GuardChain{},
		CSRFMid: middleware.NewCSRFGuard(cfg.Security.CSRF, CSRFExemptPaths(), zap.NewNop()),
		Limiter: &ratelimit.Limiter{},
	})

	registered := make(map[string]bool)
	for _, route := range router.Routes() {
		registered[route.Path] = true
	}

	// A stale exempt entry silently stops protecting nothing; every entry
	// must point at a live route.
	for _, path := range CSRFExemptPaths() {
		assert.True(t, registered[path], "exempt path %s has no route", path)
	}
}
